package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/planman/internal/model"
)

// PostgresContactRepo はリモートストア（PostgreSQL）を使用した連絡先リポジトリ。
type PostgresContactRepo struct {
	db *sql.DB
}

// NewPostgresContactRepo はPostgresContactRepoを生成する。
func NewPostgresContactRepo(db *sql.DB) *PostgresContactRepo {
	return &PostgresContactRepo{db: db}
}

// ListByUserID は指定ユーザーの連絡先一覧を作成日時昇順で返す。
func (r *PostgresContactRepo) ListByUserID(ctx context.Context, userID string) ([]model.EmailContact, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, email, name, active, created_at
		 FROM email_contacts WHERE user_id = $1 ORDER BY created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []model.EmailContact
	for rows.Next() {
		var c model.EmailContact
		if err := rows.Scan(&c.ID, &c.UserID, &c.Email, &c.Name, &c.Active, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contacts: %w", err)
	}

	return contacts, nil
}

// Create は連絡先を作成する。
func (r *PostgresContactRepo) Create(ctx context.Context, contact *model.EmailContact) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO email_contacts (id, user_id, email, name, active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		contact.ID, contact.UserID, contact.Email, contact.Name, contact.Active, contact.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert contact: %w", err)
	}
	return nil
}

// Update はIDをキーに連絡先全体を置き換える。IDが存在しない場合は何もしない。
func (r *PostgresContactRepo) Update(ctx context.Context, contact *model.EmailContact) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE email_contacts
		 SET user_id = $2, email = $3, name = $4, active = $5, created_at = $6
		 WHERE id = $1`,
		contact.ID, contact.UserID, contact.Email, contact.Name, contact.Active, contact.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	return nil
}

// Delete は指定IDの連絡先を削除する。冪等。
func (r *PostgresContactRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM email_contacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	return nil
}

// compile-time interface check
var _ ContactRepository = (*PostgresContactRepo)(nil)
