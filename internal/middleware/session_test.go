package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/planman/internal/model"
)

// mockSessionFinder は固定のセッションマップから検索するSessionFinder。
type mockSessionFinder struct {
	sessions map[string]*model.Session
	err      error
}

func (m *mockSessionFinder) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.sessions[id], nil
}

// captureUserID はコンテキストのユーザーIDを記録するハンドラを返す。
func captureUserID(t *testing.T, got *string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := UserIDFromContext(r.Context())
		if err != nil {
			t.Errorf("UserIDFromContext failed: %v", err)
		}
		*got = userID
		w.WriteHeader(http.StatusOK)
	})
}

// TestSessionMiddleware_ValidCookie は有効なセッションCookieが
// セッションのユーザーIDに解決されることをテストする。
func TestSessionMiddleware_ValidCookie(t *testing.T) {
	finder := &mockSessionFinder{sessions: map[string]*model.Session{
		"session-abc": {ID: "session-abc", UserID: "user-1", ExpiresAt: time.Now().Add(time.Hour)},
	}}

	var gotUserID string
	handler := NewSessionMiddleware(finder)(captureUserID(t, &gotUserID))

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "session-abc"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if gotUserID != "user-1" {
		t.Errorf("ユーザーID = %q, want user-1", gotUserID)
	}
}

// TestSessionMiddleware_ResolvesToGuest はCookieなし・未知のセッション・
// 検索失敗のいずれの場合もゲストとして通過することをテストする。
func TestSessionMiddleware_ResolvesToGuest(t *testing.T) {
	tests := []struct {
		name   string
		finder *mockSessionFinder
		cookie *http.Cookie
	}{
		{"no_cookie", &mockSessionFinder{}, nil},
		{"unknown_session", &mockSessionFinder{sessions: map[string]*model.Session{}}, &http.Cookie{Name: "session_id", Value: "no-such"}},
		{"finder_error", &mockSessionFinder{err: errors.New("db down")}, &http.Cookie{Name: "session_id", Value: "any"}},
		{"empty_value", &mockSessionFinder{}, &http.Cookie{Name: "session_id", Value: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUserID string
			handler := NewSessionMiddleware(tt.finder)(captureUserID(t, &gotUserID))

			req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Errorf("ステータス = %d, want 200 (リクエストは拒否されないべき)", rec.Code)
			}
			if gotUserID != model.GuestUserID {
				t.Errorf("ユーザーID = %q, want %s", gotUserID, model.GuestUserID)
			}
		})
	}
}

// TestUserIDFromContext_Missing はユーザーIDなしのコンテキストが
// エラーになることをテストする。
func TestUserIDFromContext_Missing(t *testing.T) {
	if _, err := UserIDFromContext(context.Background()); err == nil {
		t.Error("ユーザーIDなしのコンテキストはエラーになるべき")
	}
}

// TestContextWithUserID は注入したユーザーIDが取得できることをテストする。
func TestContextWithUserID(t *testing.T) {
	ctx := ContextWithUserID(context.Background(), "user-9")

	userID, err := UserIDFromContext(ctx)
	if err != nil {
		t.Fatalf("UserIDFromContext failed: %v", err)
	}
	if userID != "user-9" {
		t.Errorf("ユーザーID = %q, want user-9", userID)
	}
}
