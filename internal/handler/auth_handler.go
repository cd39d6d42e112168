package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/planman/internal/middleware"
	"github.com/hitoshi/planman/internal/model"
)

const (
	sessionCookieName = "session_id"
	oauthStateCookie  = "oauth_state"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Register は新規ユーザーを登録しセッションを発行する。
	Register(ctx context.Context, name, email, password string) (*model.UserProfile, *model.Session, error)
	// Login はパスワード認証しセッションを発行する。
	Login(ctx context.Context, email, password string) (*model.UserProfile, *model.Session, error)
	// ResetPassword はパスワードを再設定する。未知のメールアドレスでも成功を返す。
	ResetPassword(ctx context.Context, email, newPassword string) error
	// SocialLogin は認可コードを交換しセッションを発行する。
	SocialLogin(ctx context.Context, code string) (*model.UserProfile, *model.Session, error)
	// SocialLoginURL はOAuth認証URLを生成する。
	SocialLoginURL(state string) string
	// Logout はセッションを破棄しアクティブプロファイルをゲストに戻す。
	Logout(ctx context.Context, sessionID string) error
	// CurrentUser はアクティブユーザーのプロファイルを返す。常に成功する。
	CurrentUser(ctx context.Context, userID string) (*model.UserProfile, error)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	BaseURL       string
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler は認証関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
	}
}

// registerRequest はユーザー登録リクエストのボディ。
type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// resetPasswordRequest はパスワード再設定リクエストのボディ。
type resetPasswordRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"new_password"`
}

// socialLoginRequest はソーシャルログインリクエストのボディ。
type socialLoginRequest struct {
	Code string `json:"code"`
}

// profileResponse はプロファイルのAPIレスポンス。
type profileResponse struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Guest    bool      `json:"guest"`
	JoinedAt time.Time `json:"joined_at"`
}

// Register はユーザー登録を処理する。
// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestError(w)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "メールアドレスとパスワードは必須です。",
			Category: "validation",
			Action:   "メールアドレスとパスワードを入力してください。",
		})
		return
	}

	profile, session, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.setSessionCookie(w, session.ID)
	writeJSON(w, http.StatusCreated, toProfileResponse(profile))
}

// Login はパスワードログインを処理する。
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestError(w)
		return
	}

	profile, session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.setSessionCookie(w, session.ID)
	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}

// ResetPassword はパスワード再設定を処理する。
// アカウントの存在に関わらず204を返す。
// POST /auth/reset-password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestError(w)
		return
	}
	if req.Email == "" || req.NewPassword == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "メールアドレスと新しいパスワードは必須です。",
			Category: "validation",
			Action:   "メールアドレスと新しいパスワードを入力してください。",
		})
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.Email, req.NewPassword); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SocialLoginStart はソーシャルログインフローを開始する。
// GET /auth/social/{provider}/login
func (h *AuthHandler) SocialLoginStart(w http.ResponseWriter, r *http.Request) {
	state, err := generateState()
	if err != nil {
		slog.Error("failed to generate oauth state", slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	// stateをCookieに保存（CSRF対策）
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10分
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.service.SocialLoginURL(state), http.StatusTemporaryRedirect)
}

// SocialLogin は認可コードを交換しログインする。
// POST /auth/social/{provider}
func (h *AuthHandler) SocialLogin(w http.ResponseWriter, r *http.Request) {
	var req socialLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestError(w)
		return
	}
	if req.Code == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "認可コードが空です。",
			Category: "validation",
			Action:   "ソーシャルログインをやり直してください。",
		})
		return
	}

	profile, session, err := h.service.SocialLogin(r.Context(), req.Code)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.setSessionCookie(w, session.ID)
	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}

// Logout はログアウトを処理する。
// プロファイルとデータは削除されず、アクティブプロファイルがゲストに戻るだけ。
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		// セッションCookieがない場合もログアウト成功として扱う
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := h.service.Logout(r.Context(), cookie.Value); err != nil {
		handleServiceError(w, err)
		return
	}

	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me は現在のアクティブユーザーのプロファイルを返す。
// セッションがない場合はゲストプロファイルを返す（総じて必ず成功する）。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		// セッションミドルウェア外から呼ばれた場合はゲスト扱い
		userID = model.GuestUserID
	}

	profile, err := h.service.CurrentUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}

// setSessionCookie はセッションIDをHTTP Only Cookieに設定する。
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie はセッションCookieを削除する。
func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// toProfileResponse はmodel.UserProfileからAPIレスポンスに変換する。
// パスワードハッシュとソルトはレスポンスに含めない。
func toProfileResponse(profile *model.UserProfile) profileResponse {
	return profileResponse{
		ID:       profile.ID,
		Name:     profile.Name,
		Email:    profile.Email,
		Guest:    profile.IsGuest(),
		JoinedAt: profile.JoinedAt,
	}
}

// generateState はCSRF対策用のstateパラメータを生成する。
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
