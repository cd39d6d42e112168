// Package repository はデータ永続化のインターフェースを定義する。
//
// 各インターフェースにはリモートストア（PostgreSQL）とローカルストア
// （SQLite）の2つの実装が存在する。どちらを使用するかの判断は
// dataservice層が呼び出しごとに行い、repository層は選択に関与しない。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/planman/internal/model"
)

// TaskRepository はタスクデータの永続化インターフェース。
type TaskRepository interface {
	// ListByUserID は指定ユーザーの全タスクを作成日時昇順で返す。
	ListByUserID(ctx context.Context, userID string) ([]model.Task, error)

	// FindByID は指定IDのタスクを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Task, error)

	// Create はタスクを作成する。IDは呼び出し元が付与する。
	Create(ctx context.Context, task *model.Task) error

	// Update はIDをキーにタスク全体を置き換える。
	// IDが存在しない場合は何もしない（エラーを返さない）。
	Update(ctx context.Context, task *model.Task) error

	// Delete は指定IDのタスクを削除する。存在しないIDに対しても冪等。
	Delete(ctx context.Context, id string) error

	// DeleteCompletedByUserID は指定ユーザーの完了済みタスクを一括削除する。
	// 単一文で実行されるため、呼び出し元から見て全削除か無削除のいずれかとなる。
	DeleteCompletedByUserID(ctx context.Context, userID string) error
}

// ContactRepository はブリーフィング宛先連絡先の永続化インターフェース。
type ContactRepository interface {
	// ListByUserID は指定ユーザーの連絡先一覧を作成日時昇順で返す。
	ListByUserID(ctx context.Context, userID string) ([]model.EmailContact, error)

	// Create は連絡先を作成する。
	Create(ctx context.Context, contact *model.EmailContact) error

	// Update はIDをキーに連絡先全体を置き換える。IDが存在しない場合は何もしない。
	Update(ctx context.Context, contact *model.EmailContact) error

	// Delete は指定IDの連絡先を削除する。冪等。
	Delete(ctx context.Context, id string) error
}

// TemplateRepository はユーザー作成テンプレートの永続化インターフェース。
// 組み込みテンプレートは永続化されず、model.BuiltinTemplatesが提供する。
type TemplateRepository interface {
	// ListByUserID は指定ユーザーのテンプレート一覧を返す。
	ListByUserID(ctx context.Context, userID string) ([]model.PlanTemplate, error)

	// Create はテンプレートを作成する。
	Create(ctx context.Context, template *model.PlanTemplate) error

	// Update はIDをキーにテンプレート全体を置き換える。IDが存在しない場合は何もしない。
	Update(ctx context.Context, template *model.PlanTemplate) error

	// Delete は指定IDのテンプレートを削除する。冪等。
	Delete(ctx context.Context, id string) error
}

// PlanRepository は日次予定の永続化インターフェース。
// (userID, date) の組が複合キーとなり、高々1件しか存在しない。
type PlanRepository interface {
	// FindByUserAndDate は指定ユーザー・日付の予定を取得する。見つからない場合はnilを返す。
	FindByUserAndDate(ctx context.Context, userID, date string) (*model.DailyPlan, error)

	// Upsert は予定を挿入または置換する。
	Upsert(ctx context.Context, plan *model.DailyPlan) error

	// ListByUserID は指定ユーザーの予定一覧を日付昇順で返す。
	ListByUserID(ctx context.Context, userID string) ([]model.DailyPlan, error)
}

// UserRepository はユーザープロファイルの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのプロファイルを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.UserProfile, error)

	// FindByEmail はメールアドレスでプロファイルを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.UserProfile, error)

	// Create はプロファイルを作成する。
	Create(ctx context.Context, profile *model.UserProfile) error

	// Update はIDをキーにプロファイル全体を置き換える。IDが存在しない場合は何もしない。
	Update(ctx context.Context, profile *model.UserProfile) error
}

// SessionRepository はログインセッションの永続化インターフェース。
// セッションはデバイス固有のため、ローカルストア実装のみが存在する。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error

	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)

	// DeleteByID は指定IDのセッションを削除する。冪等。
	DeleteByID(ctx context.Context, id string) error

	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// ProfilePointerRepository はアクティブプロファイルポインタの永続化インターフェース。
// デバイスにつき1件のみ存在し、ローカルストア実装のみが存在する。
type ProfilePointerRepository interface {
	// Get はアクティブユーザーのIDを返す。未設定の場合は空文字列を返す。
	Get(ctx context.Context) (string, error)

	// Set はアクティブユーザーのIDを設定する。
	Set(ctx context.Context, userID string) error
}
