// Package model はドメインモデルを定義する。
package model

import "time"

// ScheduleItemType はスケジュール項目の種別を表す。
type ScheduleItemType string

const (
	// ScheduleItemTask はタスク作業の時間枠。
	ScheduleItemTask ScheduleItemType = "task"
	// ScheduleItemBreak は休憩の時間枠。
	ScheduleItemBreak ScheduleItemType = "break"
	// ScheduleItemFocus は集中作業の時間枠。
	ScheduleItemFocus ScheduleItemType = "focus"
)

// ValidScheduleItemType は種別が定義済みの値かどうかを返す。
func ValidScheduleItemType(t ScheduleItemType) bool {
	switch t {
	case ScheduleItemTask, ScheduleItemBreak, ScheduleItemFocus:
		return true
	}
	return false
}

// ScheduleItem は1日の予定の中の1枠を表す。
// 独立した識別子を持たず、常にDailyPlanに埋め込まれる。順序は配列順。
type ScheduleItem struct {
	Time     string           `json:"time"` // "HH:MM - HH:MM" 形式
	Activity string           `json:"activity"`
	Type     ScheduleItemType `json:"type"`
	Notes    string           `json:"notes,omitempty"`
}

// DailyPlan は特定ユーザーの特定日の予定を表す。
// (UserID, Date) の組につき高々1件しか存在しない（UPSERTセマンティクス）。
type DailyPlan struct {
	UserID    string
	Date      string // "YYYY-MM-DD" 形式
	Items     []ScheduleItem
	Notes     string
	UpdatedAt time.Time
}

// Key は(userID, date)の複合キー文字列を返す。
// リモートストアのドキュメントIDとして使用する。
func (p *DailyPlan) Key() string {
	return p.UserID + "_" + p.Date
}
