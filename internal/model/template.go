// Package model はドメインモデルを定義する。
package model

// PlanTemplate はスケジュール生成のプロンプトテンプレートを表す。
// UserIDが空のものは組み込みテンプレート（プロセス全体で不変）、
// 設定されているものはユーザー作成テンプレート（通常のCRUDライフサイクル）。
type PlanTemplate struct {
	ID     string
	UserID string
	Label  string
	Icon   string
	Prompt string
}

// IsBuiltin は組み込みテンプレートかどうかを返す。
func (t *PlanTemplate) IsBuiltin() bool {
	return t.UserID == ""
}

// builtinTemplates は組み込みテンプレートの定義。
// 変更から保護するため、公開はBuiltinTemplatesのコピー経由でのみ行う。
var builtinTemplates = []PlanTemplate{
	{
		ID:     "builtin-deep-work",
		Label:  "集中作業の日",
		Icon:   "focus",
		Prompt: "午前中に90分の集中ブロックを2つ確保し、会議や連絡作業は午後にまとめてください。",
	},
	{
		ID:     "builtin-balanced",
		Label:  "バランス重視",
		Icon:   "scale",
		Prompt: "作業と休憩を交互に配置し、60分ごとに10分の休憩を挟んでください。",
	},
	{
		ID:     "builtin-light-day",
		Label:  "軽めの日",
		Icon:   "leaf",
		Prompt: "優先度の高いタスクを1つだけ選び、残りは短い作業に分割してください。",
	},
}

// BuiltinTemplates は組み込みテンプレートのコピーを返す。
func BuiltinTemplates() []PlanTemplate {
	out := make([]PlanTemplate, len(builtinTemplates))
	copy(out, builtinTemplates)
	return out
}
