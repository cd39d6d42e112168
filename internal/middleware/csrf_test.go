package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newCSRFTestHandler(t *testing.T) (http.Handler, *bool) {
	t.Helper()

	called := false
	mw := NewCSRFMiddleware(CSRFConfig{})
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	return handler, &called
}

// TestCSRFMiddleware_ReadOnlyMethods は読み取りメソッドがトークンなしで
// 通過することをテストする。
func TestCSRFMiddleware_ReadOnlyMethods(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		t.Run(method, func(t *testing.T) {
			handler, called := newCSRFTestHandler(t)

			req := httptest.NewRequest(method, "/api/tasks", nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if !*called {
				t.Fatalf("%s はトークンなしで通過すべき", method)
			}
		})
	}
}

// TestCSRFMiddleware_MutatingMethodsRequireToken は状態変更メソッドが
// トークンなしで403になることをテストする。
func TestCSRFMiddleware_MutatingMethodsRequireToken(t *testing.T) {
	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			handler, called := newCSRFTestHandler(t)

			req := httptest.NewRequest(method, "/api/tasks", nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if *called {
				t.Fatalf("%s はトークンなしで拒否されるべき", method)
			}
			if w.Code != http.StatusForbidden {
				t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
			}

			var body map[string]string
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("エラーレスポンスのデコードに失敗: %v", err)
			}
			if body["code"] != "CSRF_TOKEN_INVALID" {
				t.Errorf("code = %q, want CSRF_TOKEN_INVALID", body["code"])
			}
		})
	}
}

// TestCSRFMiddleware_TokenValidation はCookieとヘッダーの組み合わせごとの
// 検証結果をテストする。
func TestCSRFMiddleware_TokenValidation(t *testing.T) {
	tests := []struct {
		name        string
		cookieValue string
		headerValue string
		wantStatus  int
	}{
		{"一致するトークン", "token-1", "token-1", http.StatusOK},
		{"ヘッダーなし", "token-1", "", http.StatusForbidden},
		{"Cookieなし", "", "token-1", http.StatusForbidden},
		{"不一致", "token-1", "token-2", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := newCSRFTestHandler(t)

			req := httptest.NewRequest(http.MethodPost, "/api/tasks", nil)
			if tt.cookieValue != "" {
				req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: tt.cookieValue})
			}
			if tt.headerValue != "" {
				req.Header.Set(csrfHeaderName, tt.headerValue)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

// TestCSRFMiddleware_GETIssuesCookie は読み取りリクエストでトークンCookieが
// 発行されることをテストする。
func TestCSRFMiddleware_GETIssuesCookie(t *testing.T) {
	handler, _ := newCSRFTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	var csrfCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == csrfCookieName {
			csrfCookie = c
			break
		}
	}

	if csrfCookie == nil {
		t.Fatal("トークンCookieが発行されていない")
	}
	if csrfCookie.Value == "" {
		t.Error("トークンが空")
	}
	if csrfCookie.HttpOnly {
		t.Error("トークンCookieはHttpOnlyであってはならない")
	}
	if csrfCookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("SameSite = %v, want Lax", csrfCookie.SameSite)
	}
}

// TestCSRFMiddleware_ExistingCookieNotReplaced は発行済みCookieが
// 再発行されないことをテストする。
func TestCSRFMiddleware_ExistingCookieNotReplaced(t *testing.T) {
	handler, _ := newCSRFTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: "issued-token"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.Name == csrfCookieName {
			t.Error("発行済みCookieを上書きしている")
		}
	}
}

// TestCSRFTokenHandler はトークン取得エンドポイントがCookieとボディで
// 同一のトークンを返すことをテストする。
func TestCSRFTokenHandler(t *testing.T) {
	h := NewCSRFTokenHandler(CSRFConfig{})

	req := httptest.NewRequest(http.MethodGet, "/api/csrf-token", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("レスポンスのデコードに失敗: %v", err)
	}
	if body.Token == "" {
		t.Fatal("トークンが空")
	}

	var csrfCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == csrfCookieName {
			csrfCookie = c
			break
		}
	}
	if csrfCookie == nil {
		t.Fatal("トークンCookieが発行されていない")
	}
	if csrfCookie.Value != body.Token {
		t.Errorf("Cookie = %q, ボディ = %q; 一致すべき", csrfCookie.Value, body.Token)
	}
}

// TestCSRFTokenHandler_ReturnsExistingToken は発行済みトークンが
// そのまま返されることをテストする。
func TestCSRFTokenHandler_ReturnsExistingToken(t *testing.T) {
	h := NewCSRFTokenHandler(CSRFConfig{})

	req := httptest.NewRequest(http.MethodGet, "/api/csrf-token", nil)
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: "issued-token"})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("レスポンスのデコードに失敗: %v", err)
	}
	if body.Token != "issued-token" {
		t.Errorf("token = %q, want issued-token", body.Token)
	}
}
