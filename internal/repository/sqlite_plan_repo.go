package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/planman/internal/model"
)

// SQLitePlanRepo はローカルストア（SQLite）を使用した日次予定リポジトリ。
type SQLitePlanRepo struct {
	db *sql.DB
}

// NewSQLitePlanRepo はSQLitePlanRepoを生成する。
func NewSQLitePlanRepo(db *sql.DB) *SQLitePlanRepo {
	return &SQLitePlanRepo{db: db}
}

// FindByUserAndDate は指定ユーザー・日付の予定を取得する。見つからない場合はnilを返す。
func (r *SQLitePlanRepo) FindByUserAndDate(ctx context.Context, userID, date string) (*model.DailyPlan, error) {
	plan := &model.DailyPlan{}
	var itemsRaw string

	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, date, items, notes, updated_at
		 FROM daily_plans WHERE user_id = ? AND date = ?`,
		userID, date,
	).Scan(&plan.UserID, &plan.Date, &itemsRaw, &plan.Notes, &plan.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find plan: %w", err)
	}

	if plan.Items, err = unmarshalScheduleItems(itemsRaw); err != nil {
		return nil, err
	}

	return plan, nil
}

// Upsert は予定を挿入または置換する。
func (r *SQLitePlanRepo) Upsert(ctx context.Context, plan *model.DailyPlan) error {
	items, err := marshalScheduleItems(plan.Items)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO daily_plans (user_id, date, items, notes, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, date)
		 DO UPDATE SET items = excluded.items, notes = excluded.notes, updated_at = excluded.updated_at`,
		plan.UserID, plan.Date, items, plan.Notes, plan.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert plan: %w", err)
	}

	return nil
}

// ListByUserID は指定ユーザーの予定一覧を日付昇順で返す。
func (r *SQLitePlanRepo) ListByUserID(ctx context.Context, userID string) ([]model.DailyPlan, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, date, items, notes, updated_at
		 FROM daily_plans WHERE user_id = ? ORDER BY date ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	var plans []model.DailyPlan
	for rows.Next() {
		var plan model.DailyPlan
		var itemsRaw string
		if err := rows.Scan(&plan.UserID, &plan.Date, &itemsRaw, &plan.Notes, &plan.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		if plan.Items, err = unmarshalScheduleItems(itemsRaw); err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate plans: %w", err)
	}

	return plans, nil
}

// compile-time interface check
var _ PlanRepository = (*SQLitePlanRepo)(nil)
