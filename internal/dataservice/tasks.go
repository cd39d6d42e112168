package dataservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/planman/internal/model"
)

// ListTasks は指定ユーザーの全タスクを返す。
func (s *Service) ListTasks(ctx context.Context, userID string) ([]model.Task, error) {
	return execute(ctx, s, userID, "task_list", func(ctx context.Context, repos *RepoSet) ([]model.Task, error) {
		return repos.Tasks.ListByUserID(ctx, userID)
	})
}

// CreateTask はタスクを作成する。IDが未設定の場合は付与する。
// 優先度・状態・添付URLの検証はストア書き込み前に行う。
func (s *Service) CreateTask(ctx context.Context, task *model.Task) error {
	if err := s.validateTask(task); err != nil {
		return err
	}

	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}

	return executeVoid(ctx, s, task.UserID, "task_create", func(ctx context.Context, repos *RepoSet) error {
		return repos.Tasks.Create(ctx, task)
	})
}

// UpdateTask はIDをキーにタスク全体を置き換える。
// IDが存在しない場合は何もしない。
// 作成日時はクライアントから送信されないため、未設定の場合は保存済みの値を引き継ぐ。
func (s *Service) UpdateTask(ctx context.Context, task *model.Task) error {
	if task.ID == "" {
		return fmt.Errorf("task ID is required")
	}
	if err := s.validateTask(task); err != nil {
		return err
	}

	return executeVoid(ctx, s, task.UserID, "task_update", func(ctx context.Context, repos *RepoSet) error {
		if task.CreatedAt.IsZero() {
			stored, err := repos.Tasks.FindByID(ctx, task.ID)
			if err != nil {
				return err
			}
			if stored != nil {
				task.CreatedAt = stored.CreatedAt
			}
		}
		return repos.Tasks.Update(ctx, task)
	})
}

// DeleteTask は指定IDのタスクを削除する。存在しないIDに対しても冪等。
func (s *Service) DeleteTask(ctx context.Context, userID, taskID string) error {
	return executeVoid(ctx, s, userID, "task_delete", func(ctx context.Context, repos *RepoSet) error {
		return repos.Tasks.Delete(ctx, taskID)
	})
}

// ClearCompletedTasks は指定ユーザーの完了済みタスクを一括削除する。
// 削除は単一文で実行され、未完了タスクには影響しない。
func (s *Service) ClearCompletedTasks(ctx context.Context, userID string) error {
	return executeVoid(ctx, s, userID, "task_clear_completed", func(ctx context.Context, repos *RepoSet) error {
		return repos.Tasks.DeleteCompletedByUserID(ctx, userID)
	})
}

// VerifyAttachmentURL は添付URLの安全性と疎通を確認する。
// 保存前の静的検証と異なり、検証機能付きクライアントで実際にアクセスする。
// 検証に失敗した場合は型付きエラーを返す。
func (s *Service) VerifyAttachmentURL(ctx context.Context, rawURL string) error {
	if err := s.guard.VerifyReachable(ctx, rawURL); err != nil {
		slog.Info("attachment URL verification failed",
			slog.String("error", err.Error()),
		)
		return model.NewUnsafeAttachmentURLError()
	}
	return nil
}

// validateTask はタスクのフィールド検証を行う。
func (s *Service) validateTask(task *model.Task) error {
	if !model.ValidPriority(task.Priority) {
		return model.NewInvalidPriorityError(string(task.Priority))
	}
	if !model.ValidTaskStatus(task.Status) {
		return model.NewInvalidStatusError(string(task.Status))
	}
	if task.Attachment != nil {
		if err := s.guard.ValidateURL(task.Attachment.URL); err != nil {
			return model.NewUnsafeAttachmentURLError()
		}
	}
	return nil
}
