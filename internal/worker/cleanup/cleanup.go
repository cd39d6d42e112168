// Package cleanup はローカルストアの定期メンテナンスジョブを提供する。
// 期限切れセッションの削除を定期バッチで実行する。
// プロファイルおよびユーザーデータは削除対象に含めない（プロファイルは
// 物理削除されない設計のため）。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/planman/internal/repository"
)

// CleanupJob は期限切れセッションの自動削除ジョブ。
// 定期実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type CleanupJob struct {
	sessions repository.SessionRepository
	logger   *slog.Logger
}

// NewCleanupJob は新しいCleanupJobを生成する。
func NewCleanupJob(sessions repository.SessionRepository, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		sessions: sessions,
		logger:   logger,
	}
}

// Run は期限切れセッションを削除する。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	deletedCount, err := j.sessions.DeleteExpired(ctx, time.Now())
	if err != nil {
		j.logger.Error("セッションクリーンアップジョブの実行に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("セッションクリーンアップの実行に失敗: %w", err)
	}

	duration := time.Since(start)
	j.logger.Info("セッションクリーンアップジョブが完了しました",
		slog.Int64("deleted_count", deletedCount),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// Start は指定間隔でRunを繰り返すバックグラウンドループを開始する。
// ctxのキャンセルで停止する。起動直後に1回実行する。
func (j *CleanupJob) Start(ctx context.Context, interval time.Duration) {
	go func() {
		if err := j.Run(ctx); err != nil {
			j.logger.Error("initial cleanup run failed", slog.String("error", err.Error()))
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := j.Run(ctx); err != nil {
					j.logger.Error("cleanup run failed", slog.String("error", err.Error()))
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
