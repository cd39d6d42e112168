package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/planman/internal/model"
)

// SQLiteTemplateRepo はローカルストア（SQLite）を使用したテンプレートリポジトリ。
type SQLiteTemplateRepo struct {
	db *sql.DB
}

// NewSQLiteTemplateRepo はSQLiteTemplateRepoを生成する。
func NewSQLiteTemplateRepo(db *sql.DB) *SQLiteTemplateRepo {
	return &SQLiteTemplateRepo{db: db}
}

// ListByUserID は指定ユーザーのテンプレート一覧を返す。
func (r *SQLiteTemplateRepo) ListByUserID(ctx context.Context, userID string) ([]model.PlanTemplate, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, label, icon, prompt
		 FROM plan_templates WHERE user_id = ? ORDER BY label ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var templates []model.PlanTemplate
	for rows.Next() {
		var t model.PlanTemplate
		if err := rows.Scan(&t.ID, &t.UserID, &t.Label, &t.Icon, &t.Prompt); err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate templates: %w", err)
	}

	return templates, nil
}

// Create はテンプレートを作成する。
func (r *SQLiteTemplateRepo) Create(ctx context.Context, template *model.PlanTemplate) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO plan_templates (id, user_id, label, icon, prompt)
		 VALUES (?, ?, ?, ?, ?)`,
		template.ID, template.UserID, template.Label, template.Icon, template.Prompt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert template: %w", err)
	}
	return nil
}

// Update はIDをキーにテンプレート全体を置き換える。IDが存在しない場合は何もしない。
func (r *SQLiteTemplateRepo) Update(ctx context.Context, template *model.PlanTemplate) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE plan_templates
		 SET user_id = ?, label = ?, icon = ?, prompt = ?
		 WHERE id = ?`,
		template.UserID, template.Label, template.Icon, template.Prompt,
		template.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}
	return nil
}

// Delete は指定IDのテンプレートを削除する。冪等。
func (r *SQLiteTemplateRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM plan_templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	return nil
}

// compile-time interface check
var _ TemplateRepository = (*SQLiteTemplateRepo)(nil)
