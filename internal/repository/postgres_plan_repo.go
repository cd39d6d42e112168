package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/planman/internal/model"
)

// PostgresPlanRepo はリモートストア（PostgreSQL）を使用した日次予定リポジトリ。
type PostgresPlanRepo struct {
	db *sql.DB
}

// NewPostgresPlanRepo はPostgresPlanRepoを生成する。
func NewPostgresPlanRepo(db *sql.DB) *PostgresPlanRepo {
	return &PostgresPlanRepo{db: db}
}

// FindByUserAndDate は指定ユーザー・日付の予定を取得する。見つからない場合はnilを返す。
func (r *PostgresPlanRepo) FindByUserAndDate(ctx context.Context, userID, date string) (*model.DailyPlan, error) {
	plan := &model.DailyPlan{}
	var itemsRaw string

	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, date, items, notes, updated_at
		 FROM daily_plans WHERE user_id = $1 AND date = $2`,
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
func (r *PostgresPlanRepo) Upsert(ctx context.Context, plan *model.DailyPlan) error {
	items, err := marshalScheduleItems(plan.Items)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO daily_plans (user_id, date, items, notes, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, date)
		 DO UPDATE SET items = EXCLUDED.items, notes = EXCLUDED.notes, updated_at = EXCLUDED.updated_at`,
		plan.UserID, plan.Date, items, plan.Notes, plan.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert plan: %w", err)
	}

	return nil
}

// ListByUserID は指定ユーザーの予定一覧を日付昇順で返す。
func (r *PostgresPlanRepo) ListByUserID(ctx context.Context, userID string) ([]model.DailyPlan, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, date, items, notes, updated_at
		 FROM daily_plans WHERE user_id = $1 ORDER BY date ASC`,
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
var _ PlanRepository = (*PostgresPlanRepo)(nil)
