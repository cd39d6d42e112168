package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/planman/internal/model"
)

// SQLiteContactRepo はローカルストア（SQLite）を使用した連絡先リポジトリ。
type SQLiteContactRepo struct {
	db *sql.DB
}

// NewSQLiteContactRepo はSQLiteContactRepoを生成する。
func NewSQLiteContactRepo(db *sql.DB) *SQLiteContactRepo {
	return &SQLiteContactRepo{db: db}
}

// ListByUserID は指定ユーザーの連絡先一覧を作成日時昇順で返す。
func (r *SQLiteContactRepo) ListByUserID(ctx context.Context, userID string) ([]model.EmailContact, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, email, name, active, created_at
		 FROM email_contacts WHERE user_id = ? ORDER BY created_at ASC, id ASC`,
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
func (r *SQLiteContactRepo) Create(ctx context.Context, contact *model.EmailContact) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO email_contacts (id, user_id, email, name, active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		contact.ID, contact.UserID, contact.Email, contact.Name, contact.Active, contact.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert contact: %w", err)
	}
	return nil
}

// Update はIDをキーに連絡先全体を置き換える。IDが存在しない場合は何もしない。
func (r *SQLiteContactRepo) Update(ctx context.Context, contact *model.EmailContact) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE email_contacts
		 SET user_id = ?, email = ?, name = ?, active = ?, created_at = ?
		 WHERE id = ?`,
		contact.UserID, contact.Email, contact.Name, contact.Active, contact.CreatedAt,
		contact.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	return nil
}

// Delete は指定IDの連絡先を削除する。冪等。
func (r *SQLiteContactRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM email_contacts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	return nil
}

// compile-time interface check
var _ ContactRepository = (*SQLiteContactRepo)(nil)
