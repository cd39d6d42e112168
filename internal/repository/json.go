package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hitoshi/planman/internal/model"
)

// marshalSubtasks はサブタスク配列をJSON文字列に変換する。nilは空配列として扱う。
func marshalSubtasks(subtasks []model.Subtask) (string, error) {
	if subtasks == nil {
		subtasks = []model.Subtask{}
	}
	b, err := json.Marshal(subtasks)
	if err != nil {
		return "", fmt.Errorf("failed to marshal subtasks: %w", err)
	}
	return string(b), nil
}

// unmarshalSubtasks はJSON文字列をサブタスク配列に変換する。
func unmarshalSubtasks(raw string) ([]model.Subtask, error) {
	if raw == "" {
		return nil, nil
	}
	var subtasks []model.Subtask
	if err := json.Unmarshal([]byte(raw), &subtasks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal subtasks: %w", err)
	}
	if len(subtasks) == 0 {
		return nil, nil
	}
	return subtasks, nil
}

// marshalAttachment は添付メタデータをJSON文字列に変換する。nilはNULLとして扱う。
func marshalAttachment(att *model.Attachment) (sql.NullString, error) {
	if att == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(att)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to marshal attachment: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

// unmarshalAttachment はJSON文字列を添付メタデータに変換する。
func unmarshalAttachment(raw sql.NullString) (*model.Attachment, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var att model.Attachment
	if err := json.Unmarshal([]byte(raw.String), &att); err != nil {
		return nil, fmt.Errorf("failed to unmarshal attachment: %w", err)
	}
	return &att, nil
}

// marshalScheduleItems はスケジュール項目配列をJSON文字列に変換する。nilは空配列として扱う。
func marshalScheduleItems(items []model.ScheduleItem) (string, error) {
	if items == nil {
		items = []model.ScheduleItem{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to marshal schedule items: %w", err)
	}
	return string(b), nil
}

// unmarshalScheduleItems はJSON文字列をスケジュール項目配列に変換する。
func unmarshalScheduleItems(raw string) ([]model.ScheduleItem, error) {
	if raw == "" {
		return nil, nil
	}
	var items []model.ScheduleItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schedule items: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items, nil
}
