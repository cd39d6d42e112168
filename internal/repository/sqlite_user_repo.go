package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/planman/internal/model"
)

// SQLiteUserRepo はローカルストア（SQLite）を使用したプロファイルリポジトリ。
// ローカル認証シミュレーションのユーザーテーブルを兼ねる。
type SQLiteUserRepo struct {
	db *sql.DB
}

// NewSQLiteUserRepo はSQLiteUserRepoを生成する。
func NewSQLiteUserRepo(db *sql.DB) *SQLiteUserRepo {
	return &SQLiteUserRepo{db: db}
}

// FindByID は指定IDのプロファイルを取得する。見つからない場合はnilを返す。
func (r *SQLiteUserRepo) FindByID(ctx context.Context, id string) (*model.UserProfile, error) {
	profile := &model.UserProfile{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, joined_at FROM user_profiles WHERE id = ?`,
		id,
	).Scan(&profile.ID, &profile.Name, &profile.Email, &profile.PasswordHash, &profile.JoinedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find profile by ID: %w", err)
	}

	return profile, nil
}

// FindByEmail はメールアドレスでプロファイルを検索する。見つからない場合はnilを返す。
func (r *SQLiteUserRepo) FindByEmail(ctx context.Context, email string) (*model.UserProfile, error) {
	profile := &model.UserProfile{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, joined_at FROM user_profiles WHERE email = ?`,
		email,
	).Scan(&profile.ID, &profile.Name, &profile.Email, &profile.PasswordHash, &profile.JoinedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find profile by email: %w", err)
	}

	return profile, nil
}

// Create はプロファイルを作成する。
func (r *SQLiteUserRepo) Create(ctx context.Context, profile *model.UserProfile) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_profiles (id, name, email, password_hash, joined_at)
		 VALUES (?, ?, ?, ?, ?)`,
		profile.ID, profile.Name, profile.Email, profile.PasswordHash, profile.JoinedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	return nil
}

// Update はIDをキーにプロファイル全体を置き換える。IDが存在しない場合は何もしない。
func (r *SQLiteUserRepo) Update(ctx context.Context, profile *model.UserProfile) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE user_profiles
		 SET name = ?, email = ?, password_hash = ?, joined_at = ?
		 WHERE id = ?`,
		profile.Name, profile.Email, profile.PasswordHash, profile.JoinedAt,
		profile.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

// compile-time interface check
var _ UserRepository = (*SQLiteUserRepo)(nil)
