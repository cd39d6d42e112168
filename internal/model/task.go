// Package model はドメインモデルを定義する。
package model

import "time"

// Priority はタスクの優先度を表す。
type Priority string

const (
	// PriorityLow は低優先度。
	PriorityLow Priority = "LOW"
	// PriorityMedium は中優先度。
	PriorityMedium Priority = "MEDIUM"
	// PriorityHigh は高優先度。
	PriorityHigh Priority = "HIGH"
	// PriorityUrgent は緊急優先度。
	PriorityUrgent Priority = "URGENT"
)

// ValidPriority は優先度が定義済みの値かどうかを返す。
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// TaskStatus はタスクの進行状態を表す。
type TaskStatus string

const (
	// StatusTodo は未着手状態。
	StatusTodo TaskStatus = "TODO"
	// StatusInProgress は作業中状態。
	StatusInProgress TaskStatus = "IN_PROGRESS"
	// StatusCompleted は完了状態。
	StatusCompleted TaskStatus = "COMPLETED"
)

// ValidTaskStatus は状態が定義済みの値かどうかを返す。
func ValidTaskStatus(s TaskStatus) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Subtask はタスク内のチェックリスト項目を表す。
// 親タスクに完全に所有され、独立したライフサイクルを持たない。
// タスクドキュメントの一部としてJSONで保存される。
type Subtask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Attachment はタスクに紐づく添付メタデータを表す。
// URLは保存前にAttachmentGuardによる検証を通過している必要がある。
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Mime string `json:"mime,omitempty"`
}

// Task はユーザーのタスクを表す。
// すべてのTaskはちょうど1人のユーザーに属し、そのユーザーにのみ可視となる。
type Task struct {
	ID          string
	UserID      string
	Title       string
	Description string
	// DueDate は期限のISO-8601文字列。
	// AI抽出由来の値はパース不能な場合があるため、文字列のまま保持する。
	// パース不能なタスクのバケット判定はDueTimeの第2戻り値で分岐する。
	DueDate     string
	Priority    Priority
	Status      TaskStatus
	CreatedAt   time.Time
	Subtasks    []Subtask
	Attachment  *Attachment
}

// dueDateLayouts はDueTimeが受理する日付レイアウト。
var dueDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// DueTime はDueDateをパースして返す。
// パース不能な場合は第2戻り値がfalseとなる（ゼロ値のtime.Timeを返す）。
func (t *Task) DueTime() (time.Time, bool) {
	for _, layout := range dueDateLayouts {
		if parsed, err := time.Parse(layout, t.DueDate); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
