package auth

import (
	"context"
	"testing"
	"time"

	"github.com/hitoshi/planman/internal/model"
)

type mockSessionRepo struct {
	sessions map[string]*model.Session
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[string]*model.Session)}
}

func (m *mockSessionRepo) Create(ctx context.Context, session *model.Session) error {
	copied := *session
	m.sessions[session.ID] = &copied
	return nil
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	session, ok := m.sessions[id]
	if !ok || session.ExpiresAt.Before(time.Now()) {
		return nil, nil
	}
	copied := *session
	return &copied, nil
}

func (m *mockSessionRepo) DeleteByID(ctx context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var deleted int64
	for id, s := range m.sessions {
		if s.ExpiresAt.Before(now) {
			delete(m.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

type mockPointerRepo struct {
	userID string
}

func (m *mockPointerRepo) Get(ctx context.Context) (string, error) { return m.userID, nil }

func (m *mockPointerRepo) Set(ctx context.Context, userID string) error {
	m.userID = userID
	return nil
}

func newTestAuthService() (*Service, *mockSessionRepo, *mockPointerRepo) {
	sessions := newMockSessionRepo()
	pointer := &mockPointerRepo{}
	svc := NewService(
		NewSimulatedProvider("http://localhost:8080"),
		sessions,
		pointer,
		ServiceConfig{SessionMaxAge: 3600},
	)
	return svc, sessions, pointer
}

// TestCreateSession はセッション発行がポインタを更新し、
// 発行したセッションを検索できることをテストする。
func TestCreateSession(t *testing.T) {
	svc, _, pointer := newTestAuthService()
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "user-1")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if session.ID == "" {
		t.Fatal("セッションIDが空")
	}
	if session.UserID != "user-1" {
		t.Errorf("UserID = %s, want user-1", session.UserID)
	}
	if pointer.userID != "user-1" {
		t.Errorf("アクティブプロファイルポインタ = %s, want user-1", pointer.userID)
	}

	found, err := svc.FindSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("FindSession failed: %v", err)
	}
	if found == nil || found.UserID != "user-1" {
		t.Errorf("発行済みセッションが検索できない: %+v", found)
	}
}

// TestCreateSession_UniqueIDs は発行ごとにセッションIDが異なることをテストする。
func TestCreateSession_UniqueIDs(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	s1, _ := svc.CreateSession(ctx, "user-1")
	s2, _ := svc.CreateSession(ctx, "user-1")
	if s1.ID == s2.ID {
		t.Error("セッションIDが重複している")
	}
}

// TestLogout はログアウトがセッションを削除し、ポインタをゲストへ戻すことをテストする。
func TestLogout(t *testing.T) {
	svc, _, pointer := newTestAuthService()
	ctx := context.Background()

	session, _ := svc.CreateSession(ctx, "user-1")
	if err := svc.Logout(ctx, session.ID); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	found, _ := svc.FindSession(ctx, session.ID)
	if found != nil {
		t.Error("ログアウト後もセッションが残っている")
	}
	if pointer.userID != model.GuestUserID {
		t.Errorf("ポインタ = %s, want %s", pointer.userID, model.GuestUserID)
	}
}

// TestLogout_EmptySessionID はセッションIDなしのログアウトが
// ポインタのリセットのみを行うことをテストする。
func TestLogout_EmptySessionID(t *testing.T) {
	svc, _, pointer := newTestAuthService()

	if err := svc.Logout(context.Background(), ""); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if pointer.userID != model.GuestUserID {
		t.Errorf("ポインタ = %s, want %s", pointer.userID, model.GuestUserID)
	}
}

// TestFindSession_UnknownAndEmpty は未知・空のセッションIDが
// エラーなしでnilを返すことをテストする。
func TestFindSession_UnknownAndEmpty(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	for _, id := range []string{"", "no-such-session"} {
		found, err := svc.FindSession(ctx, id)
		if err != nil {
			t.Errorf("FindSession(%q) failed: %v", id, err)
		}
		if found != nil {
			t.Errorf("FindSession(%q) = %+v, want nil", id, found)
		}
	}
}

// TestFindSession_Expired は期限切れセッションがnilに解決されることをテストする。
func TestFindSession_Expired(t *testing.T) {
	svc, sessions, _ := newTestAuthService()
	ctx := context.Background()

	sessions.sessions["expired"] = &model.Session{
		ID:        "expired",
		UserID:    "user-1",
		ExpiresAt: time.Now().Add(-time.Hour),
	}

	found, err := svc.FindSession(ctx, "expired")
	if err != nil {
		t.Fatalf("FindSession failed: %v", err)
	}
	if found != nil {
		t.Error("期限切れセッションはnilに解決されるべき")
	}
}
