// Package dataservice はリモート/ローカル二層永続化の統合データサービスを提供する。
//
// すべての操作は呼び出しごとにストアを選択する: リモートストアが初期化済みで、
// かつ対象ユーザーがゲストでない場合のみリモートを使用し、それ以外はローカルを
// 使用する。リモート操作の失敗は呼び出し元に伝播せず、ログとメトリクスに記録した
// うえで同じ操作をローカルストアに対して再実行する。
//
// フォールバック後のリモート/ローカル間の差分は修復しない。以降のリモート復帰時に
// リモート側の状態が優先される。
package dataservice

import (
	"context"
	"log/slog"

	"github.com/hitoshi/planman/internal/auth"
	"github.com/hitoshi/planman/internal/metrics"
	"github.com/hitoshi/planman/internal/model"
	"github.com/hitoshi/planman/internal/repository"
)

const (
	backendRemote = "remote"
	backendLocal  = "local"
)

// RepoSet は1つのストアバックエンドに属するリポジトリの組。
type RepoSet struct {
	Tasks     repository.TaskRepository
	Contacts  repository.ContactRepository
	Templates repository.TemplateRepository
	Plans     repository.PlanRepository
	Users     repository.UserRepository
}

// URLValidator は添付URLの安全性と疎通を検証するインターフェース。
// security.AttachmentGuardServiceが実装する。
type URLValidator interface {
	ValidateURL(rawURL string) error
	VerifyReachable(ctx context.Context, rawURL string) error
}

// Service は統合データサービス。
// remoteはDATABASE_URL未設定時にnilとなり、その場合すべての操作がローカルで実行される。
type Service struct {
	remote   *RepoSet // nil可
	local    *RepoSet
	auth     *auth.Service
	pointer  repository.ProfilePointerRepository
	guard    URLValidator
	metrics  metrics.MetricsCollector
	demoAuth DemoCredentials
}

// DemoCredentials はデモ用バックドア認証情報。
// この組み合わせでのログインは常に成功し、ゲストプロファイルに解決される。
type DemoCredentials struct {
	Email    string
	Password string
}

// DefaultDemoCredentials はデフォルトのデモ認証情報を返す。
func DefaultDemoCredentials() DemoCredentials {
	return DemoCredentials{
		Email:    "demo@planman.app",
		Password: "demo-planman",
	}
}

// NewService はServiceを生成する。remoteはリモートストア無効時にnilを渡す。
func NewService(
	remote *RepoSet,
	local *RepoSet,
	authService *auth.Service,
	pointer repository.ProfilePointerRepository,
	guard URLValidator,
	collector metrics.MetricsCollector,
) *Service {
	return &Service{
		remote:   remote,
		local:    local,
		auth:     authService,
		pointer:  pointer,
		guard:    guard,
		metrics:  collector,
		demoAuth: DefaultDemoCredentials(),
	}
}

// RemoteEnabled はリモートストアが初期化されているかどうかを返す。
func (s *Service) RemoteEnabled() bool {
	return s.remote != nil
}

// selectRepos は操作対象ユーザーに応じてストアを選択する。
// 選択は呼び出しごとに再評価される（ログイン/ログアウトでアクティブユーザーが変わるため）。
func (s *Service) selectRepos(userID string) (*RepoSet, string) {
	if s.remote != nil && userID != model.GuestUserID {
		return s.remote, backendRemote
	}
	return s.local, backendLocal
}

// execute はストア選択とリモート失敗時のローカルフォールバックを行う共通経路。
// リモートの失敗は呼び出し元に伝播しない。ローカルの失敗はそのまま返す。
func execute[T any](ctx context.Context, s *Service, userID, op string, fn func(ctx context.Context, repos *RepoSet) (T, error)) (T, error) {
	repos, backend := s.selectRepos(userID)
	s.metrics.RecordStorageOp(backend, op)

	result, err := fn(ctx, repos)
	if err == nil || backend == backendLocal {
		return result, err
	}

	// リモート失敗: 記録してローカルに切り替え再実行
	s.metrics.RecordStorageError(backendRemote, op)
	s.metrics.RecordFallback(op)
	slog.Warn("remote store failed, falling back to local",
		slog.String("operation", op),
		slog.String("user_id", userID),
		slog.String("error", err.Error()),
	)

	s.metrics.RecordStorageOp(backendLocal, op)
	return fn(ctx, s.local)
}

// executeVoid は戻り値を持たない操作用のexecute。
func executeVoid(ctx context.Context, s *Service, userID, op string, fn func(ctx context.Context, repos *RepoSet) error) error {
	_, err := execute(ctx, s, userID, op, func(ctx context.Context, repos *RepoSet) (struct{}, error) {
		return struct{}{}, fn(ctx, repos)
	})
	return err
}
