package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/planman/internal/model"
)

// mockAuthService はAuthServiceInterfaceのモック実装。
type mockAuthService struct {
	registerFn       func(ctx context.Context, name, email, password string) (*model.UserProfile, *model.Session, error)
	loginFn          func(ctx context.Context, email, password string) (*model.UserProfile, *model.Session, error)
	resetPasswordFn  func(ctx context.Context, email, newPassword string) error
	socialLoginFn    func(ctx context.Context, code string) (*model.UserProfile, *model.Session, error)
	socialLoginURLFn func(state string) string
	logoutFn         func(ctx context.Context, sessionID string) error
	currentUserFn    func(ctx context.Context, userID string) (*model.UserProfile, error)
}

func (m *mockAuthService) Register(ctx context.Context, name, email, password string) (*model.UserProfile, *model.Session, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, name, email, password)
	}
	return nil, nil, nil
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*model.UserProfile, *model.Session, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return nil, nil, nil
}

func (m *mockAuthService) ResetPassword(ctx context.Context, email, newPassword string) error {
	if m.resetPasswordFn != nil {
		return m.resetPasswordFn(ctx, email, newPassword)
	}
	return nil
}

func (m *mockAuthService) SocialLogin(ctx context.Context, code string) (*model.UserProfile, *model.Session, error) {
	if m.socialLoginFn != nil {
		return m.socialLoginFn(ctx, code)
	}
	return nil, nil, nil
}

func (m *mockAuthService) SocialLoginURL(state string) string {
	if m.socialLoginURLFn != nil {
		return m.socialLoginURLFn(state)
	}
	return "http://localhost:8080/api/auth/social/callback?state=" + state
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return nil
}

func (m *mockAuthService) CurrentUser(ctx context.Context, userID string) (*model.UserProfile, error) {
	if m.currentUserFn != nil {
		return m.currentUserFn(ctx, userID)
	}
	return model.NewGuestProfile(time.Now()), nil
}

func newTestAuthHandler(svc AuthServiceInterface) *AuthHandler {
	return NewAuthHandler(svc, AuthHandlerConfig{
		BaseURL:       "http://localhost:8080",
		CookieSecure:  false,
		SessionMaxAge: 3600,
	})
}

// sessionCookieFrom はレスポンスからセッションCookieを探すヘルパー。
func sessionCookieFrom(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookieName {
			return c
		}
	}
	return nil
}

// --- POST /auth/register ---

func TestAuthHandler_Register_Success(t *testing.T) {
	svc := &mockAuthService{
		registerFn: func(ctx context.Context, name, email, password string) (*model.UserProfile, *model.Session, error) {
			return &model.UserProfile{
					ID:           "user-1",
					Name:         name,
					Email:        email,
					PasswordHash: "secret-hash",
					JoinedAt:     time.Now(),
				}, &model.Session{
					ID:     "session-1",
					UserID: "user-1",
				}, nil
		},
	}

	h := newTestAuthHandler(svc)

	body := `{"name": "田中", "email": "tanaka@example.com", "password": "secret"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	cookie := sessionCookieFrom(t, w)
	if cookie == nil || cookie.Value != "session-1" {
		t.Fatal("セッションCookieが設定されていない")
	}
	if !cookie.HttpOnly {
		t.Error("セッションCookieはHttpOnlyであるべき")
	}

	// パスワードハッシュがレスポンスに漏れない
	if bytes.Contains(w.Body.Bytes(), []byte("secret-hash")) {
		t.Error("レスポンスに認証情報が含まれている")
	}
}

func TestAuthHandler_Register_MissingFields(t *testing.T) {
	h := newTestAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(`{"name": "名前だけ"}`))
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	svc := &mockAuthService{
		registerFn: func(ctx context.Context, name, email, password string) (*model.UserProfile, *model.Session, error) {
			return nil, nil, model.NewDuplicateEmailError(email)
		},
	}

	h := newTestAuthHandler(svc)

	body := `{"email": "dup@example.com", "password": "x"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusConflict)
	}
	errResp := parseAPIErrorResponse(t, w)
	if errResp["code"] != model.ErrCodeDuplicateEmail {
		t.Errorf("code = %q, want %s", errResp["code"], model.ErrCodeDuplicateEmail)
	}
}

// --- POST /auth/login ---

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, email, password string) (*model.UserProfile, *model.Session, error) {
			return nil, nil, model.NewInvalidCredentialsError()
		},
	}

	h := newTestAuthHandler(svc)

	body := `{"email": "tanaka@example.com", "password": "wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	h.Login(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	errResp := parseAPIErrorResponse(t, w)
	if errResp["code"] != model.ErrCodeInvalidCredentials {
		t.Errorf("code = %q, want %s", errResp["code"], model.ErrCodeInvalidCredentials)
	}
}

func TestAuthHandler_Login_SetsSessionCookie(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, email, password string) (*model.UserProfile, *model.Session, error) {
			return &model.UserProfile{ID: "user-1", Email: email}, &model.Session{ID: "session-xyz", UserID: "user-1"}, nil
		},
	}

	h := newTestAuthHandler(svc)

	body := `{"email": "tanaka@example.com", "password": "correct"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	h.Login(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	cookie := sessionCookieFrom(t, w)
	if cookie == nil || cookie.Value != "session-xyz" {
		t.Error("セッションCookieが設定されていない")
	}
}

// --- POST /auth/reset-password ---

func TestAuthHandler_ResetPassword_AlwaysNoContent(t *testing.T) {
	h := newTestAuthHandler(&mockAuthService{})

	body := `{"email": "unknown@example.com", "new_password": "newpass"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/reset-password", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	h.ResetPassword(w, req)

	// アカウントの存在に関わらず204
	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
}

// --- GET /auth/social/{provider}/login ---

func TestAuthHandler_SocialLoginStart_Redirects(t *testing.T) {
	h := newTestAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/auth/social/local/login", nil)
	w := httptest.NewRecorder()

	h.SocialLoginStart(w, req)

	if w.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusTemporaryRedirect)
	}
	if w.Header().Get("Location") == "" {
		t.Error("リダイレクト先が設定されていない")
	}

	var stateCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == oauthStateCookie {
			stateCookie = c
		}
	}
	if stateCookie == nil || stateCookie.Value == "" {
		t.Error("stateのCookieが設定されていない")
	}
}

// --- POST /auth/logout ---

func TestAuthHandler_Logout_WithSession(t *testing.T) {
	var gotSessionID string
	svc := &mockAuthService{
		logoutFn: func(ctx context.Context, sessionID string) error {
			gotSessionID = sessionID
			return nil
		},
	}

	h := newTestAuthHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "session-1"})
	w := httptest.NewRecorder()

	h.Logout(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if gotSessionID != "session-1" {
		t.Errorf("破棄されたセッションID = %q, want session-1", gotSessionID)
	}

	cookie := sessionCookieFrom(t, w)
	if cookie == nil || cookie.MaxAge != -1 {
		t.Error("セッションCookieが削除されていない")
	}
}

func TestAuthHandler_Logout_NoCookie(t *testing.T) {
	h := newTestAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	w := httptest.NewRecorder()

	h.Logout(w, req)

	// Cookieなしでもログアウト成功扱い
	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
}

// --- GET /auth/me ---

func TestAuthHandler_Me_GuestFallback(t *testing.T) {
	var gotUserID string
	svc := &mockAuthService{
		currentUserFn: func(ctx context.Context, userID string) (*model.UserProfile, error) {
			gotUserID = userID
			return model.NewGuestProfile(time.Now()), nil
		},
	}

	h := newTestAuthHandler(svc)

	// セッションミドルウェアを経由しないリクエスト
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotUserID != model.GuestUserID {
		t.Errorf("サービスへ渡ったユーザーID = %q, want %s", gotUserID, model.GuestUserID)
	}

	var resp profileResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Guest {
		t.Error("ゲストフラグが立っていない")
	}
}

func TestAuthHandler_Me_SignedInUser(t *testing.T) {
	svc := &mockAuthService{
		currentUserFn: func(ctx context.Context, userID string) (*model.UserProfile, error) {
			return &model.UserProfile{ID: userID, Name: "田中", Email: "tanaka@example.com", JoinedAt: time.Now()}, nil
		},
	}

	h := newTestAuthHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req = withUserID(req, "user-1")
	w := httptest.NewRecorder()

	h.Me(w, req)

	var resp profileResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "user-1" || resp.Guest {
		t.Errorf("レスポンスが期待と異なる: %+v", resp)
	}
}
