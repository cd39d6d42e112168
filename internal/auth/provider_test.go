package auth

import (
	"context"
	"strings"
	"testing"
)

// TestSimulatedProvider_RoundTrip はエンコードした認可コードが
// 同じユーザー情報に復元されることをテストする。
func TestSimulatedProvider_RoundTrip(t *testing.T) {
	provider := NewSimulatedProvider("http://localhost:8080")

	code := EncodeCode("google", "sub-42", "user@example.com", "山田")
	info, err := provider.ExchangeCode(context.Background(), code)
	if err != nil {
		t.Fatalf("ExchangeCode failed: %v", err)
	}

	if info.ProviderUserID != "sub-42" {
		t.Errorf("ProviderUserID = %q, want sub-42", info.ProviderUserID)
	}
	if info.Email != "user@example.com" {
		t.Errorf("Email = %q, want user@example.com", info.Email)
	}
	if info.Name != "山田" {
		t.Errorf("Name = %q, want 山田", info.Name)
	}
	if info.Provider != "google" {
		t.Errorf("Provider = %q, want google", info.Provider)
	}
}

// TestSimulatedProvider_InvalidCode は不正なコードがエラーになることをテストする。
func TestSimulatedProvider_InvalidCode(t *testing.T) {
	provider := NewSimulatedProvider("http://localhost:8080")

	tests := []struct {
		name string
		code string
	}{
		{"not_base64", "!!!not-base64!!!"},
		{"not_json", "bm90LWpzb24"},
		{"missing_email", EncodeCode("local", "sub-1", "", "名前あり")},
		{"missing_sub", EncodeCode("local", "", "mail@example.com", "名前あり")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := provider.ExchangeCode(context.Background(), tt.code); err == nil {
				t.Error("不正なコードはエラーになるべき")
			}
		})
	}
}

// TestSimulatedProvider_GetLoginURL は認証URLにstateが含まれることをテストする。
func TestSimulatedProvider_GetLoginURL(t *testing.T) {
	provider := NewSimulatedProvider("http://localhost:8080")

	url := provider.GetLoginURL("random-state")
	if !strings.Contains(url, "state=random-state") {
		t.Errorf("認証URLにstateが含まれていない: %s", url)
	}
	if !strings.HasPrefix(url, "http://localhost:8080") {
		t.Errorf("認証URLがベースURLで始まっていない: %s", url)
	}
}
