package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
)

// OAuthUserInfo はOAuthプロバイダーから取得したユーザー情報を表す。
type OAuthUserInfo struct {
	ProviderUserID string
	Email          string
	Name           string
	Provider       string // "google", "github" 等
}

// OAuthProvider はOAuth認証プロバイダーのインターフェース。
// 将来的に複数IdP（Google, GitHub等）に対応するための抽象化。
type OAuthProvider interface {
	// GetLoginURL はOAuth認証URLを生成する。
	GetLoginURL(state string) string
	// ExchangeCode は認可コードをトークンに交換し、ユーザー情報を取得する。
	ExchangeCode(ctx context.Context, code string) (*OAuthUserInfo, error)
}

// SimulatedProvider は外部IdPなしで動作するローカル用OAuthプロバイダー。
// 認可コードはbase64urlエンコードされたユーザー情報JSONであり、
// ExchangeCodeはそれをデコードするだけで外部通信を行わない。
type SimulatedProvider struct {
	BaseURL string
}

// NewSimulatedProvider はSimulatedProviderを生成する。
func NewSimulatedProvider(baseURL string) *SimulatedProvider {
	return &SimulatedProvider{BaseURL: baseURL}
}

var _ OAuthProvider = (*SimulatedProvider)(nil)

// simulatedCode は認可コードにエンコードされるユーザー情報。
type simulatedCode struct {
	Sub      string `json:"sub"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

// EncodeCode はユーザー情報を認可コードにエンコードする。
// テストおよびローカル開発用のログイン画面から使用する。
func EncodeCode(provider, sub, email, name string) string {
	payload, _ := json.Marshal(simulatedCode{
		Sub:      sub,
		Email:    email,
		Name:     name,
		Provider: provider,
	})
	return base64.RawURLEncoding.EncodeToString(payload)
}

// GetLoginURL はローカルコールバックへのURLを生成する。
func (p *SimulatedProvider) GetLoginURL(state string) string {
	params := url.Values{
		"state": {state},
	}
	return p.BaseURL + "/api/auth/social/callback?" + params.Encode()
}

// ExchangeCode は認可コードをデコードしてユーザー情報を返す。
func (p *SimulatedProvider) ExchangeCode(_ context.Context, code string) (*OAuthUserInfo, error) {
	raw, err := base64.RawURLEncoding.DecodeString(code)
	if err != nil {
		return nil, fmt.Errorf("failed to decode authorization code: %w", err)
	}

	var sc simulatedCode
	if err := json.Unmarshal(raw, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse authorization code: %w", err)
	}
	if sc.Email == "" || sc.Sub == "" {
		return nil, fmt.Errorf("authorization code is missing required fields")
	}
	if sc.Provider == "" {
		sc.Provider = "local"
	}

	return &OAuthUserInfo{
		ProviderUserID: sc.Sub,
		Email:          sc.Email,
		Name:           sc.Name,
		Provider:       sc.Provider,
	}, nil
}
