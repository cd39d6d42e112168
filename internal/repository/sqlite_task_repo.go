package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/planman/internal/model"
)

// SQLiteTaskRepo はローカルストア（SQLite）を使用したタスクリポジトリ。
// リモートストアの障害時フォールバック先として、またゲストユーザーの
// 主ストレージとして使用される。
type SQLiteTaskRepo struct {
	db *sql.DB
}

// NewSQLiteTaskRepo はSQLiteTaskRepoを生成する。
func NewSQLiteTaskRepo(db *sql.DB) *SQLiteTaskRepo {
	return &SQLiteTaskRepo{db: db}
}

// ListByUserID は指定ユーザーの全タスクを作成日時昇順で返す。
func (r *SQLiteTaskRepo) ListByUserID(ctx context.Context, userID string) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, description, due_date, priority, status, created_at, subtasks, attachment
		 FROM tasks WHERE user_id = ? ORDER BY created_at ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	return tasks, nil
}

// FindByID は指定IDのタスクを取得する。見つからない場合はnilを返す。
func (r *SQLiteTaskRepo) FindByID(ctx context.Context, id string) (*model.Task, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, description, due_date, priority, status, created_at, subtasks, attachment
		 FROM tasks WHERE id = ?`,
		id,
	)

	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return task, nil
}

// Create はタスクを作成する。
func (r *SQLiteTaskRepo) Create(ctx context.Context, task *model.Task) error {
	subtasks, err := marshalSubtasks(task.Subtasks)
	if err != nil {
		return err
	}
	attachment, err := marshalAttachment(task.Attachment)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, user_id, title, description, due_date, priority, status, created_at, subtasks, attachment)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.UserID, task.Title, task.Description, task.DueDate,
		string(task.Priority), string(task.Status), task.CreatedAt, subtasks, attachment,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	return nil
}

// Update はIDをキーにタスク全体を置き換える。IDが存在しない場合は何もしない。
func (r *SQLiteTaskRepo) Update(ctx context.Context, task *model.Task) error {
	subtasks, err := marshalSubtasks(task.Subtasks)
	if err != nil {
		return err
	}
	attachment, err := marshalAttachment(task.Attachment)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE tasks
		 SET user_id = ?, title = ?, description = ?, due_date = ?,
		     priority = ?, status = ?, created_at = ?, subtasks = ?, attachment = ?
		 WHERE id = ?`,
		task.UserID, task.Title, task.Description, task.DueDate,
		string(task.Priority), string(task.Status), task.CreatedAt, subtasks, attachment,
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	return nil
}

// Delete は指定IDのタスクを削除する。冪等。
func (r *SQLiteTaskRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// DeleteCompletedByUserID は指定ユーザーの完了済みタスクを一括削除する。
func (r *SQLiteTaskRepo) DeleteCompletedByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE user_id = ? AND status = ?`,
		userID, string(model.StatusCompleted),
	)
	if err != nil {
		return fmt.Errorf("failed to delete completed tasks: %w", err)
	}
	return nil
}

// compile-time interface check
var _ TaskRepository = (*SQLiteTaskRepo)(nil)
