// Package auth はパスワード認証、ソーシャルログイン、セッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/planman/internal/model"
	"github.com/hitoshi/planman/internal/repository"
)

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service はセッションの発行・破棄とOAuthコード交換を提供する。
// プロファイル自体の検索・作成はストア選択を伴うためdataservice層が担い、
// Serviceはデバイスローカルな認証機構のみを扱う。
type Service struct {
	oauth       OAuthProvider
	sessionRepo repository.SessionRepository
	pointerRepo repository.ProfilePointerRepository
	config      ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	oauth OAuthProvider,
	sessionRepo repository.SessionRepository,
	pointerRepo repository.ProfilePointerRepository,
	config ServiceConfig,
) *Service {
	return &Service{
		oauth:       oauth,
		sessionRepo: sessionRepo,
		pointerRepo: pointerRepo,
		config:      config,
	}
}

// GetLoginURL はOAuth認証URLを生成する。
func (s *Service) GetLoginURL(state string) string {
	return s.oauth.GetLoginURL(state)
}

// ExchangeCode は認可コードをプロバイダーで交換し、ユーザー情報を取得する。
func (s *Service) ExchangeCode(ctx context.Context, code string) (*OAuthUserInfo, error) {
	userInfo, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}
	return userInfo, nil
}

// CreateSession はセッションを発行し、アクティブプロファイルポインタを更新する。
// セッションはデバイス固有のため常にローカルストアに保存される。
func (s *Service) CreateSession(ctx context.Context, userID string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	if err := s.pointerRepo.Set(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to set active profile: %w", err)
	}

	return session, nil
}

// Logout はセッションを破棄し、アクティブプロファイルをゲストに戻す。
// プロファイル自体は削除されない。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID != "" {
		if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
	}

	if err := s.pointerRepo.Set(ctx, model.GuestUserID); err != nil {
		return fmt.Errorf("failed to reset active profile: %w", err)
	}

	slog.Info("user logged out", slog.String("session_id", sessionID))
	return nil
}

// FindSession はセッションを取得する。期限切れ・未知のIDの場合はnilを返す。
func (s *Service) FindSession(ctx context.Context, sessionID string) (*model.Session, error) {
	if sessionID == "" {
		return nil, nil
	}
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return session, nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
