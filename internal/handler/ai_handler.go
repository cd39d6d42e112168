package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/planman/internal/ai"
	"github.com/hitoshi/planman/internal/middleware"
	"github.com/hitoshi/planman/internal/model"
)

// AIServiceInterface はAI支援ハンドラーが必要とするサービスインターフェース。
type AIServiceInterface interface {
	// ExtractTask は自由入力テキストからタスクを1件抽出する。
	ExtractTask(ctx context.Context, text, mood string) (*ai.ExtractedTask, error)
	// BrainstormGoal は目標から複数のタスク案を生成する。
	BrainstormGoal(ctx context.Context, goal, mood string) ([]ai.ExtractedTask, error)
	// BreakdownSubtasks はタスクを短い手順の配列に分解する。
	BreakdownSubtasks(ctx context.Context, title, description string) ([]string, error)
	// DraftReminderEmail は単一タスクのリマインダーメール草稿を生成する。
	DraftReminderEmail(ctx context.Context, task *model.Task, mood, persona string) (*ai.EmailDraft, error)
	// DraftBriefingEmail はタスク一覧のブリーフィングメール草稿を生成する。
	DraftBriefingEmail(ctx context.Context, tasks []model.Task, mood, persona string) (*ai.EmailDraft, error)
	// GenerateSchedule はタスクとメモから1日のスケジュールを生成する。
	GenerateSchedule(ctx context.Context, tasks []model.Task, notes, date string) ([]model.ScheduleItem, error)
}

// AIHandler はAI支援エンドポイントのHTTPハンドラー。
// serviceがnilの場合（AI_API_KEY未設定）はすべてのエンドポイントが503を返す。
type AIHandler struct {
	service AIServiceInterface
	tasks   TaskServiceInterface
}

// NewAIHandler はAIHandlerを生成する。サービス無効時はserviceにnilを渡す。
func NewAIHandler(service AIServiceInterface, tasks TaskServiceInterface) *AIHandler {
	return &AIHandler{
		service: service,
		tasks:   tasks,
	}
}

// extractRequest はタスク抽出リクエストのボディ。
type extractRequest struct {
	Text string `json:"text"`
	Mood string `json:"mood,omitempty"`
}

// brainstormRequest は目標ブレインストーミングリクエストのボディ。
type brainstormRequest struct {
	Goal string `json:"goal"`
	Mood string `json:"mood,omitempty"`
}

// breakdownRequest はサブタスク分解リクエストのボディ。
type breakdownRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// reminderRequest はリマインダーメール草稿リクエストのボディ。
type reminderRequest struct {
	TaskID  string `json:"task_id"`
	Mood    string `json:"mood,omitempty"`
	Persona string `json:"persona,omitempty"`
}

// briefingRequest はブリーフィングメール草稿リクエストのボディ。
type briefingRequest struct {
	Mood    string `json:"mood,omitempty"`
	Persona string `json:"persona,omitempty"`
}

// scheduleRequest はスケジュール生成リクエストのボディ。
type scheduleRequest struct {
	Date  string `json:"date"`
	Notes string `json:"notes,omitempty"`
}

// available はAIサービスが利用可能かどうかを確認し、不可の場合は503を書き込む。
func (h *AIHandler) available(w http.ResponseWriter) bool {
	if h.service == nil {
		writeAPIErrorResponse(w, http.StatusServiceUnavailable, model.NewAIUnavailableError())
		return false
	}
	return true
}

// Extract は自由入力テキストからタスクを抽出する。
// POST /api/ai/extract
func (h *AIHandler) Extract(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}

	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestError(w)
		return
	}
	if req.Text == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "入力テキストが空です。",
			Category: "validation",
			Action:   "タスクにしたい内容を入力してください。",
		})
		return
	}

	task, err := h.service.ExtractTask(r.Context(), req.Text, req.Mood)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// Brainstorm は目標から複数のタスク案を生成する。
// POST /api/ai/brainstorm
func (h *AIHandler) Brainstorm(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}

	var req brainstormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestError(w)
		return
	}
	if req.Goal == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "目標が空です。",
			Category: "validation",
			Action:   "達成したい目標を入力してください。",
		})
		return
	}

	tasks, err := h.service.BrainstormGoal(r.Context(), req.Goal, req.Mood)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

// Breakdown はタスクをサブタスク手順に分解する。
// POST /api/ai/subtasks
func (h *AIHandler) Breakdown(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}

	var req breakdownRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestError(w)
		return
	}
	if req.Title == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "タスク名が空です。",
			Category: "validation",
			Action:   "分解するタスク名を入力してください。",
		})
		return
	}

	steps, err := h.service.BreakdownSubtasks(r.Context(), req.Title, req.Description)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"steps": steps})
}

// Reminder は指定タスクのリマインダーメール草稿を生成する。
// POST /api/ai/reminder
func (h *AIHandler) Reminder(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}

	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedError(w)
		return
	}

	var req reminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestError(w)
		return
	}

	task, err := h.findTask(r.Context(), userID, req.TaskID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if task == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewTaskNotFoundError(req.TaskID))
		return
	}

	draft, err := h.service.DraftReminderEmail(r.Context(), task, req.Mood, req.Persona)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, draft)
}

// Briefing はアクティブタスク一覧のブリーフィングメール草稿を生成する。
// POST /api/ai/briefing
func (h *AIHandler) Briefing(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}

	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedError(w)
		return
	}

	var req briefingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestError(w)
		return
	}

	tasks, err := h.tasks.ListTasks(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	draft, err := h.service.DraftBriefingEmail(r.Context(), activeTasks(tasks), req.Mood, req.Persona)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, draft)
}

// Schedule はアクティブタスクとメモから1日のスケジュールを生成する。
// POST /api/ai/schedule
func (h *AIHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}

	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedError(w)
		return
	}

	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestError(w)
		return
	}
	if req.Date == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "対象日が空です。",
			Category: "validation",
			Action:   "スケジュールを生成する日付を指定してください。",
		})
		return
	}

	tasks, err := h.tasks.ListTasks(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	items, err := h.service.GenerateSchedule(r.Context(), activeTasks(tasks), req.Notes, req.Date)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// findTask は指定ユーザーのタスクをIDで検索する。見つからない場合はnilを返す。
func (h *AIHandler) findTask(ctx context.Context, userID, taskID string) (*model.Task, error) {
	tasks, err := h.tasks.ListTasks(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		if tasks[i].ID == taskID {
			return &tasks[i], nil
		}
	}
	return nil, nil
}

// activeTasks は未完了のタスクのみを返す。
func activeTasks(tasks []model.Task) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, task := range tasks {
		if task.Status != model.StatusCompleted {
			out = append(out, task)
		}
	}
	return out
}
