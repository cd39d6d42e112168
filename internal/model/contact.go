// Package model はドメインモデルを定義する。
package model

import "time"

// EmailContact はブリーフィングメールの宛先候補を表す。
// Activeがtrueの連絡先のみがブリーフィング生成の宛先に含まれる。
// Taskとは独立したライフサイクルを持つ。
type EmailContact struct {
	ID        string
	UserID    string
	Email     string
	Name      string
	Active    bool
	CreatedAt time.Time
}
