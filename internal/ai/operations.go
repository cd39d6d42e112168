package ai

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/hitoshi/planman/internal/model"
)

// ExtractedTask はタスク抽出・目標ブレインストーミングの契約スキーマ。
type ExtractedTask struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DueDate     string   `json:"dueDate"`
	Priority    string   `json:"priority"`
	Tags        []string `json:"tags,omitempty"`
}

// EmailDraft はメール草稿サービスの契約スキーマ。
// Bodyはサニタイズ済みHTMLとなる。
type EmailDraft struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// timeRangePattern はスケジュール項目の時間枠形式 "HH:MM - HH:MM"。
var timeRangePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d - ([01]\d|2[0-3]):[0-5]\d$`)

// ExtractTask は自由入力テキストから1件のタスクを抽出する。
// 応答が契約スキーマを満たさない場合は型付きエラーを返す。
func (c *Client) ExtractTask(ctx context.Context, text, mood string) (*ExtractedTask, error) {
	const op = "extract_task"

	systemPrompt := "あなたはタスク管理アプリのタスク抽出サービスです。" +
		"ユーザーの自由入力からタスクを1件抽出し、次のJSONオブジェクトのみを返してください: " +
		`{"title": string, "description": string, "dueDate": "ISO-8601文字列", "priority": "LOW|MEDIUM|HIGH|URGENT", "tags": [string]}`

	userPrompt := fmt.Sprintf("入力テキスト: %s", text)
	if mood != "" {
		userPrompt += fmt.Sprintf("\n現在の気分: %s", mood)
	}

	raw, err := c.complete(ctx, op, systemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	var task ExtractedTask
	if err := decodeInto(op, raw, &task); err != nil {
		return nil, err
	}
	if err := validateExtractedTask(op, &task); err != nil {
		return nil, err
	}

	return &task, nil
}

// BrainstormGoal は目標から複数のタスク案を生成する。3〜5件が期待されるが強制はしない。
func (c *Client) BrainstormGoal(ctx context.Context, goal, mood string) ([]ExtractedTask, error) {
	const op = "brainstorm_goal"

	systemPrompt := "あなたはタスク管理アプリの目標ブレインストーミングサービスです。" +
		"ユーザーの目標を達成するための具体的なタスクを3〜5件提案し、次のJSONオブジェクトのみを返してください: " +
		`{"tasks": [{"title": string, "description": string, "dueDate": "ISO-8601文字列", "priority": "LOW|MEDIUM|HIGH|URGENT"}]}`

	userPrompt := fmt.Sprintf("目標: %s", goal)
	if mood != "" {
		userPrompt += fmt.Sprintf("\n現在の気分: %s", mood)
	}

	raw, err := c.complete(ctx, op, systemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Tasks []ExtractedTask `json:"tasks"`
	}
	if err := decodeInto(op, raw, &envelope); err != nil {
		return nil, err
	}
	if len(envelope.Tasks) == 0 {
		return nil, model.NewAIEmptyResponseError(op)
	}
	for i := range envelope.Tasks {
		if err := validateExtractedTask(op, &envelope.Tasks[i]); err != nil {
			return nil, err
		}
	}

	return envelope.Tasks, nil
}

// BreakdownSubtasks はタスクを短い手順の配列に分解する。3〜5件が期待されるが強制はしない。
func (c *Client) BreakdownSubtasks(ctx context.Context, title, description string) ([]string, error) {
	const op = "breakdown_subtasks"

	systemPrompt := "あなたはタスク管理アプリのサブタスク分解サービスです。" +
		"タスクを3〜5個の短い手順に分解し、次のJSONオブジェクトのみを返してください: " +
		`{"steps": [string]}`

	userPrompt := fmt.Sprintf("タスク名: %s\n説明: %s", title, description)

	raw, err := c.complete(ctx, op, systemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Steps []string `json:"steps"`
	}
	if err := decodeInto(op, raw, &envelope); err != nil {
		return nil, err
	}

	steps := make([]string, 0, len(envelope.Steps))
	for _, step := range envelope.Steps {
		if s := strings.TrimSpace(step); s != "" {
			steps = append(steps, s)
		}
	}
	if len(steps) == 0 {
		return nil, model.NewAIEmptyResponseError(op)
	}

	return steps, nil
}

// DraftReminderEmail は単一タスクのリマインダーメール草稿を生成する。
// 本文HTMLはサニタイズされて返る。
func (c *Client) DraftReminderEmail(ctx context.Context, task *model.Task, mood, persona string) (*EmailDraft, error) {
	const op = "draft_reminder_email"

	systemPrompt := "あなたはタスク管理アプリのリマインダーメール作成サービスです。" +
		"指定されたタスクのリマインダーメールを作成し、次のJSONオブジェクトのみを返してください: " +
		`{"subject": string, "body": "HTML文字列"}`
	if persona != "" {
		systemPrompt += fmt.Sprintf(" 文体の指定: %s", persona)
	}

	userPrompt := fmt.Sprintf("タスク名: %s\n説明: %s\n期限: %s\n優先度: %s",
		task.Title, task.Description, task.DueDate, task.Priority)
	if mood != "" {
		userPrompt += fmt.Sprintf("\n現在の気分: %s", mood)
	}

	return c.draftEmail(ctx, op, systemPrompt, userPrompt)
}

// DraftBriefingEmail はタスク一覧の日次ブリーフィングメール草稿を生成する。
// 本文HTMLはサニタイズされて返る。
func (c *Client) DraftBriefingEmail(ctx context.Context, tasks []model.Task, mood, persona string) (*EmailDraft, error) {
	const op = "draft_briefing_email"

	systemPrompt := "あなたはタスク管理アプリの日次ブリーフィングメール作成サービスです。" +
		"タスク一覧を要約したブリーフィングメールを作成し、次のJSONオブジェクトのみを返してください: " +
		`{"subject": string, "body": "HTML文字列"}`
	if persona != "" {
		systemPrompt += fmt.Sprintf(" 文体の指定: %s", persona)
	}

	var sb strings.Builder
	sb.WriteString("タスク一覧:\n")
	for _, task := range tasks {
		fmt.Fprintf(&sb, "- %s (期限: %s, 優先度: %s, 状態: %s)\n",
			task.Title, task.DueDate, task.Priority, task.Status)
	}
	if mood != "" {
		fmt.Fprintf(&sb, "現在の気分: %s\n", mood)
	}

	return c.draftEmail(ctx, op, systemPrompt, sb.String())
}

// GenerateSchedule はアクティブタスクと自由記述メモから1日のスケジュールを生成する。
func (c *Client) GenerateSchedule(ctx context.Context, tasks []model.Task, notes, date string) ([]model.ScheduleItem, error) {
	const op = "generate_schedule"

	systemPrompt := "あなたはタスク管理アプリのスケジュール生成サービスです。" +
		"タスク一覧とメモをもとに1日のスケジュールを作成し、次のJSONオブジェクトのみを返してください: " +
		`{"items": [{"time": "HH:MM - HH:MM", "activity": string, "type": "task|break|focus", "notes": string}]}`

	var sb strings.Builder
	fmt.Fprintf(&sb, "対象日: %s\n", date)
	sb.WriteString("アクティブタスク:\n")
	for _, task := range tasks {
		fmt.Fprintf(&sb, "- %s (期限: %s, 優先度: %s)\n", task.Title, task.DueDate, task.Priority)
	}
	if notes != "" {
		fmt.Fprintf(&sb, "メモ: %s\n", notes)
	}

	raw, err := c.complete(ctx, op, systemPrompt, sb.String())
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Items []model.ScheduleItem `json:"items"`
	}
	if err := decodeInto(op, raw, &envelope); err != nil {
		return nil, err
	}
	if len(envelope.Items) == 0 {
		return nil, model.NewAIEmptyResponseError(op)
	}
	for _, item := range envelope.Items {
		if !timeRangePattern.MatchString(item.Time) {
			return nil, model.NewAIParseFailedError(op)
		}
		if item.Activity == "" || !model.ValidScheduleItemType(item.Type) {
			return nil, model.NewAIParseFailedError(op)
		}
	}

	return envelope.Items, nil
}

// draftEmail はメール草稿系サービスの共通経路。本文をサニタイズして返す。
func (c *Client) draftEmail(ctx context.Context, op, systemPrompt, userPrompt string) (*EmailDraft, error) {
	raw, err := c.complete(ctx, op, systemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	var draft EmailDraft
	if err := decodeInto(op, raw, &draft); err != nil {
		return nil, err
	}
	if draft.Subject == "" || draft.Body == "" {
		return nil, model.NewAIParseFailedError(op)
	}

	draft.Body = c.sanitizer.Sanitize(draft.Body)

	return &draft, nil
}

// validateExtractedTask はタスク抽出スキーマの検証と優先度の正規化を行う。
func validateExtractedTask(op string, task *ExtractedTask) error {
	if strings.TrimSpace(task.Title) == "" {
		return model.NewAIParseFailedError(op)
	}
	task.Priority = strings.ToUpper(strings.TrimSpace(task.Priority))
	if !model.ValidPriority(model.Priority(task.Priority)) {
		return model.NewAIParseFailedError(op)
	}
	return nil
}
