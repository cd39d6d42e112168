package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/planman/internal/model"
)

// PostgresTaskRepo はリモートストア（PostgreSQL）を使用したタスクリポジトリ。
type PostgresTaskRepo struct {
	db *sql.DB
}

// NewPostgresTaskRepo はPostgresTaskRepoを生成する。
func NewPostgresTaskRepo(db *sql.DB) *PostgresTaskRepo {
	return &PostgresTaskRepo{db: db}
}

// ListByUserID は指定ユーザーの全タスクを作成日時昇順で返す。
func (r *PostgresTaskRepo) ListByUserID(ctx context.Context, userID string) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, description, due_date, priority, status, created_at, subtasks, attachment
		 FROM tasks WHERE user_id = $1 ORDER BY created_at ASC`,
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
func (r *PostgresTaskRepo) FindByID(ctx context.Context, id string) (*model.Task, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, description, due_date, priority, status, created_at, subtasks, attachment
		 FROM tasks WHERE id = $1`,
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
func (r *PostgresTaskRepo) Create(ctx context.Context, task *model.Task) error {
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
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		task.ID, task.UserID, task.Title, task.Description, task.DueDate,
		string(task.Priority), string(task.Status), task.CreatedAt, subtasks, attachment,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	return nil
}

// Update はIDをキーにタスク全体を置き換える。IDが存在しない場合は何もしない。
func (r *PostgresTaskRepo) Update(ctx context.Context, task *model.Task) error {
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
		 SET user_id = $2, title = $3, description = $4, due_date = $5,
		     priority = $6, status = $7, created_at = $8, subtasks = $9, attachment = $10
		 WHERE id = $1`,
		task.ID, task.UserID, task.Title, task.Description, task.DueDate,
		string(task.Priority), string(task.Status), task.CreatedAt, subtasks, attachment,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	return nil
}

// Delete は指定IDのタスクを削除する。冪等。
func (r *PostgresTaskRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// DeleteCompletedByUserID は指定ユーザーの完了済みタスクを一括削除する。
func (r *PostgresTaskRepo) DeleteCompletedByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE user_id = $1 AND status = $2`,
		userID, string(model.StatusCompleted),
	)
	if err != nil {
		return fmt.Errorf("failed to delete completed tasks: %w", err)
	}
	return nil
}

// rowScanner はsql.Rowとsql.Rowsの共通部分。
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask は1行分のタスクをスキャンする。
func scanTask(row rowScanner) (*model.Task, error) {
	task := &model.Task{}
	var priority, status, subtasksRaw string
	var attachmentRaw sql.NullString

	err := row.Scan(
		&task.ID, &task.UserID, &task.Title, &task.Description, &task.DueDate,
		&priority, &status, &task.CreatedAt, &subtasksRaw, &attachmentRaw,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}

	task.Priority = model.Priority(priority)
	task.Status = model.TaskStatus(status)

	if task.Subtasks, err = unmarshalSubtasks(subtasksRaw); err != nil {
		return nil, err
	}
	if task.Attachment, err = unmarshalAttachment(attachmentRaw); err != nil {
		return nil, err
	}

	return task, nil
}

// compile-time interface check
var _ TaskRepository = (*PostgresTaskRepo)(nil)
