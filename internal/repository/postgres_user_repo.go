package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/planman/internal/model"
)

// PostgresUserRepo はリモートストア（PostgreSQL）を使用したプロファイルリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindByID は指定IDのプロファイルを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.UserProfile, error) {
	profile := &model.UserProfile{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, joined_at FROM user_profiles WHERE id = $1`,
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
func (r *PostgresUserRepo) FindByEmail(ctx context.Context, email string) (*model.UserProfile, error) {
	profile := &model.UserProfile{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, joined_at FROM user_profiles WHERE email = $1`,
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
func (r *PostgresUserRepo) Create(ctx context.Context, profile *model.UserProfile) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_profiles (id, name, email, password_hash, joined_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		profile.ID, profile.Name, profile.Email, profile.PasswordHash, profile.JoinedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	return nil
}

// Update はIDをキーにプロファイル全体を置き換える。IDが存在しない場合は何もしない。
func (r *PostgresUserRepo) Update(ctx context.Context, profile *model.UserProfile) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE user_profiles
		 SET name = $2, email = $3, password_hash = $4, joined_at = $5
		 WHERE id = $1`,
		profile.ID, profile.Name, profile.Email, profile.PasswordHash, profile.JoinedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
