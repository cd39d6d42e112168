package dataservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/planman/internal/auth"
	"github.com/hitoshi/planman/internal/model"
)

// Register は新規ユーザーを登録し、セッションを発行する。
// メールアドレスが既に登録済みの場合のみ型付きエラーを返す。
func (s *Service) Register(ctx context.Context, name, email, password string) (*model.UserProfile, *model.Session, error) {
	existing, err := s.findUserByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		return nil, nil, model.NewDuplicateEmailError(email)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, nil, err
	}

	profile := &model.UserProfile{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		JoinedAt:     time.Now(),
	}

	if err := executeVoid(ctx, s, profile.ID, "user_create", func(ctx context.Context, repos *RepoSet) error {
		return repos.Users.Create(ctx, profile)
	}); err != nil {
		return nil, nil, err
	}

	session, err := s.auth.CreateSession(ctx, profile.ID)
	if err != nil {
		return nil, nil, err
	}

	slog.Info("user registered",
		slog.String("user_id", profile.ID),
		slog.String("email", email),
	)
	return profile, session, nil
}

// Login はメールアドレスとパスワードで認証し、セッションを発行する。
// 認証失敗時のみ型付きエラーを返す。デモ認証情報は常に成功し、
// ゲストプロファイルに解決される。
func (s *Service) Login(ctx context.Context, email, password string) (*model.UserProfile, *model.Session, error) {
	if email == s.demoAuth.Email && password == s.demoAuth.Password {
		profile, err := s.ensureGuestProfile(ctx)
		if err != nil {
			return nil, nil, err
		}
		session, err := s.auth.CreateSession(ctx, model.GuestUserID)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("demo login resolved to guest profile")
		return profile, session, nil
	}

	profile, err := s.findUserByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	// ソーシャルログインユーザーはパスワードハッシュが空のため、パスワード認証は常に失敗する
	if profile == nil || profile.PasswordHash == "" || !auth.VerifyPassword(password, profile.PasswordHash) {
		return nil, nil, model.NewInvalidCredentialsError()
	}

	session, err := s.auth.CreateSession(ctx, profile.ID)
	if err != nil {
		return nil, nil, err
	}

	slog.Info("user logged in", slog.String("user_id", profile.ID))
	return profile, session, nil
}

// ResetPassword は指定メールアドレスのパスワードを再設定する。
// アカウントの存在を漏らさないため、未知のメールアドレスに対しても成功を返す。
func (s *Service) ResetPassword(ctx context.Context, email, newPassword string) error {
	profile, err := s.findUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if profile == nil {
		slog.Info("password reset requested for unknown email")
		return nil
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	profile.PasswordHash = hash

	if err := executeVoid(ctx, s, profile.ID, "user_update", func(ctx context.Context, repos *RepoSet) error {
		return repos.Users.Update(ctx, profile)
	}); err != nil {
		return err
	}

	slog.Info("password reset", slog.String("user_id", profile.ID))
	return nil
}

// SocialLogin は認可コードを交換し、対応するプロファイルでセッションを発行する。
// 未登録のメールアドレスの場合はプロファイルを自動作成する。
func (s *Service) SocialLogin(ctx context.Context, code string) (*model.UserProfile, *model.Session, error) {
	userInfo, err := s.auth.ExchangeCode(ctx, code)
	if err != nil {
		return nil, nil, err
	}

	profile, err := s.findUserByEmail(ctx, userInfo.Email)
	if err != nil {
		return nil, nil, err
	}

	if profile == nil {
		profile = &model.UserProfile{
			ID:       uuid.New().String(),
			Name:     userInfo.Name,
			Email:    userInfo.Email,
			JoinedAt: time.Now(),
		}
		if err := executeVoid(ctx, s, profile.ID, "user_create", func(ctx context.Context, repos *RepoSet) error {
			return repos.Users.Create(ctx, profile)
		}); err != nil {
			return nil, nil, err
		}
		slog.Info("social login created new profile",
			slog.String("user_id", profile.ID),
			slog.String("provider", userInfo.Provider),
		)
	}

	session, err := s.auth.CreateSession(ctx, profile.ID)
	if err != nil {
		return nil, nil, err
	}

	return profile, session, nil
}

// SocialLoginURL はOAuth認証URLを生成する。
func (s *Service) SocialLoginURL(state string) string {
	return s.auth.GetLoginURL(state)
}

// Logout はセッションを破棄し、アクティブプロファイルをゲストに戻す。
// プロファイルとそのデータは削除されない。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	return s.auth.Logout(ctx, sessionID)
}

// CurrentUser はアクティブユーザーのプロファイルを返す。
// この操作は全域的であり、必ずプロファイルを返す: ゲストプロファイルが
// 未作成の場合は生成して永続化し、非ゲストのプロファイルが見つからない
// 場合もゲストに解決する。
func (s *Service) CurrentUser(ctx context.Context, userID string) (*model.UserProfile, error) {
	if userID != model.GuestUserID {
		profile, err := execute(ctx, s, userID, "user_find", func(ctx context.Context, repos *RepoSet) (*model.UserProfile, error) {
			return repos.Users.FindByID(ctx, userID)
		})
		if err != nil {
			return nil, err
		}
		if profile != nil {
			return profile, nil
		}
		slog.Warn("active profile not found, resolving to guest", slog.String("user_id", userID))
	}

	return s.ensureGuestProfile(ctx)
}

// UpdateProfile はプロファイルを更新する。IDが存在しない場合は何もしない。
func (s *Service) UpdateProfile(ctx context.Context, profile *model.UserProfile) error {
	if profile.ID == "" {
		return fmt.Errorf("profile ID is required")
	}

	return executeVoid(ctx, s, profile.ID, "user_update", func(ctx context.Context, repos *RepoSet) error {
		return repos.Users.Update(ctx, profile)
	})
}

// ensureGuestProfile はゲストプロファイルを取得し、存在しない場合は
// 生成して永続化する。アクティブプロファイルポインタが未設定の場合は
// ゲストに設定する。ゲストは常にローカルストアに保存される。
func (s *Service) ensureGuestProfile(ctx context.Context) (*model.UserProfile, error) {
	profile, err := s.local.Users.FindByID(ctx, model.GuestUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find guest profile: %w", err)
	}
	if profile == nil {
		profile = model.NewGuestProfile(time.Now())
		if err := s.local.Users.Create(ctx, profile); err != nil {
			return nil, fmt.Errorf("failed to create guest profile: %w", err)
		}
		slog.Info("guest profile bootstrapped")
	}

	active, err := s.pointer.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read active profile pointer: %w", err)
	}
	if active == "" {
		if err := s.pointer.Set(ctx, model.GuestUserID); err != nil {
			return nil, fmt.Errorf("failed to set active profile pointer: %w", err)
		}
	}

	return profile, nil
}

// findUserByEmail はメールアドレスでプロファイルを検索する。
// リモートストアが有効な場合はリモートを優先し、失敗時はローカルに切り替える。
func (s *Service) findUserByEmail(ctx context.Context, email string) (*model.UserProfile, error) {
	// メール検索の対象ユーザーは未確定のため、非ゲストとしてストアを選択する
	return execute(ctx, s, email, "user_find_by_email", func(ctx context.Context, repos *RepoSet) (*model.UserProfile, error) {
		return repos.Users.FindByEmail(ctx, email)
	})
}
