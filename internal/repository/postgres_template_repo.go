package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/planman/internal/model"
)

// PostgresTemplateRepo はリモートストア（PostgreSQL）を使用したテンプレートリポジトリ。
type PostgresTemplateRepo struct {
	db *sql.DB
}

// NewPostgresTemplateRepo はPostgresTemplateRepoを生成する。
func NewPostgresTemplateRepo(db *sql.DB) *PostgresTemplateRepo {
	return &PostgresTemplateRepo{db: db}
}

// ListByUserID は指定ユーザーのテンプレート一覧を返す。
func (r *PostgresTemplateRepo) ListByUserID(ctx context.Context, userID string) ([]model.PlanTemplate, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, label, icon, prompt
		 FROM plan_templates WHERE user_id = $1 ORDER BY label ASC`,
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
func (r *PostgresTemplateRepo) Create(ctx context.Context, template *model.PlanTemplate) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO plan_templates (id, user_id, label, icon, prompt)
		 VALUES ($1, $2, $3, $4, $5)`,
		template.ID, template.UserID, template.Label, template.Icon, template.Prompt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert template: %w", err)
	}
	return nil
}

// Update はIDをキーにテンプレート全体を置き換える。IDが存在しない場合は何もしない。
func (r *PostgresTemplateRepo) Update(ctx context.Context, template *model.PlanTemplate) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE plan_templates
		 SET user_id = $2, label = $3, icon = $4, prompt = $5
		 WHERE id = $1`,
		template.ID, template.UserID, template.Label, template.Icon, template.Prompt,
	)
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}
	return nil
}

// Delete は指定IDのテンプレートを削除する。冪等。
func (r *PostgresTemplateRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM plan_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	return nil
}

// compile-time interface check
var _ TemplateRepository = (*PostgresTemplateRepo)(nil)
