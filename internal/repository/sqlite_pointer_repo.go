package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLitePointerRepo はアクティブプロファイルポインタのSQLite実装。
// current_profileテーブルの単一行を読み書きする。
type SQLitePointerRepo struct {
	db *sql.DB
}

// NewSQLitePointerRepo はSQLitePointerRepoを生成する。
func NewSQLitePointerRepo(db *sql.DB) *SQLitePointerRepo {
	return &SQLitePointerRepo{db: db}
}

// Get はアクティブユーザーのIDを返す。未設定の場合は空文字列を返す。
func (r *SQLitePointerRepo) Get(ctx context.Context) (string, error) {
	var userID string
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id FROM current_profile WHERE device = 1`,
	).Scan(&userID)

	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get profile pointer: %w", err)
	}

	return userID, nil
}

// Set はアクティブユーザーのIDを設定する。
func (r *SQLitePointerRepo) Set(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO current_profile (device, user_id) VALUES (1, ?)
		 ON CONFLICT (device) DO UPDATE SET user_id = excluded.user_id`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to set profile pointer: %w", err)
	}
	return nil
}

// compile-time interface check
var _ ProfilePointerRepository = (*SQLitePointerRepo)(nil)
