// Package model はドメインモデルを定義する。
package model

import "time"

// GuestUserID はゲストユーザーの固定ID。
// リモートアカウントが有効でないデバイスでは、このIDを持つ
// UserProfileが唯一のアクティブユーザーとなる。
const GuestUserID = "local-guest-user"

// UserProfile はサービス利用ユーザーを表す。
// ゲストプロファイルはデバイスごとに1つだけ存在し、初回起動時に自動生成される。
// プロファイルは物理削除されない（ログアウトはアクティブポインタをゲストに戻すだけ）。
type UserProfile struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string // bcryptハッシュ。ゲストおよびソーシャルログインユーザーは空
	JoinedAt     time.Time
}

// IsGuest はゲストプロファイルかどうかを返す。
func (u *UserProfile) IsGuest() bool {
	return u.ID == GuestUserID
}

// NewGuestProfile はゲストプロファイルを生成する。
// デバイス初回起動時のブートストラップおよびログアウト時に使用する。
func NewGuestProfile(now time.Time) *UserProfile {
	return &UserProfile{
		ID:       GuestUserID,
		Name:     "ゲスト",
		Email:    "",
		JoinedAt: now,
	}
}

// Session はユーザーのログインセッションを表す。
// セッションはデバイス固有のポインタであるため、常にローカルストアに保存される。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
