package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/planman/internal/middleware"
	"github.com/hitoshi/planman/internal/model"
)

// TaskServiceInterface はタスクハンドラーが必要とするサービスインターフェース。
type TaskServiceInterface interface {
	// ListTasks は指定ユーザーの全タスクを返す。
	ListTasks(ctx context.Context, userID string) ([]model.Task, error)
	// CreateTask はタスクを作成する。
	CreateTask(ctx context.Context, task *model.Task) error
	// UpdateTask はIDをキーにタスク全体を置き換える。
	UpdateTask(ctx context.Context, task *model.Task) error
	// DeleteTask は指定IDのタスクを削除する。冪等。
	DeleteTask(ctx context.Context, userID, taskID string) error
	// ClearCompletedTasks は完了済みタスクを一括削除する。
	ClearCompletedTasks(ctx context.Context, userID string) error
	// VerifyAttachmentURL は添付URLの安全性と到達可能性を検証する。
	VerifyAttachmentURL(ctx context.Context, rawURL string) error
}

// TaskHandler はタスク管理のHTTPハンドラー。
type TaskHandler struct {
	service TaskServiceInterface
}

// NewTaskHandler はTaskHandlerを生成する。
func NewTaskHandler(service TaskServiceInterface) *TaskHandler {
	return &TaskHandler{service: service}
}

// subtaskPayload はサブタスクのリクエスト/レスポンス表現。
type subtaskPayload struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// attachmentPayload は添付メタデータのリクエスト/レスポンス表現。
type attachmentPayload struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Mime string `json:"mime,omitempty"`
}

// taskRequest はタスク作成・更新リクエストのボディ。
type taskRequest struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	DueDate     string             `json:"due_date"`
	Priority    string             `json:"priority"`
	Status      string             `json:"status"`
	Subtasks    []subtaskPayload   `json:"subtasks,omitempty"`
	Attachment  *attachmentPayload `json:"attachment,omitempty"`
}

// taskResponse はタスクのAPIレスポンス。
type taskResponse struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	DueDate     string             `json:"due_date"`
	Priority    string             `json:"priority"`
	Status      string             `json:"status"`
	CreatedAt   time.Time          `json:"created_at"`
	Subtasks    []subtaskPayload   `json:"subtasks"`
	Attachment  *attachmentPayload `json:"attachment,omitempty"`
}

// ListTasks はタスク一覧を取得する。
// GET /api/tasks
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedError(w)
		return
	}

	tasks, err := h.service.ListTasks(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	out := make([]taskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, toTaskResponse(&tasks[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateTask はタスクを作成する。
// POST /api/tasks
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedError(w)
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestError(w)
		return
	}
	if req.Title == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "タスク名が空です。",
			Category: "validation",
			Action:   "タスク名を入力してください。",
		})
		return
	}

	task := toTaskModel(userID, "", &req)
	if err := h.service.CreateTask(r.Context(), task); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTaskResponse(task))
}

// UpdateTask はタスク全体を置き換える。
// PUT /api/tasks/:id
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedError(w)
		return
	}

	taskID := chi.URLParam(r, "id")

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestError(w)
		return
	}

	task := toTaskModel(userID, taskID, &req)
	if err := h.service.UpdateTask(r.Context(), task); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTaskResponse(task))
}

// DeleteTask はタスクを削除する。存在しないIDでも204を返す。
// DELETE /api/tasks/:id
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedError(w)
		return
	}

	taskID := chi.URLParam(r, "id")

	if err := h.service.DeleteTask(r.Context(), userID, taskID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ClearCompleted は完了済みタスクを一括削除する。
// DELETE /api/tasks/completed
func (h *TaskHandler) ClearCompleted(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedError(w)
		return
	}

	if err := h.service.ClearCompletedTasks(r.Context(), userID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// verifyAttachmentRequest は添付URL検証リクエストのボディ。
type verifyAttachmentRequest struct {
	URL string `json:"url"`
}

// VerifyAttachment は添付URLの安全性と到達可能性を検証する。
// POST /api/tasks/attachment/verify
func (h *TaskHandler) VerifyAttachment(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.UserIDFromContext(r.Context()); err != nil {
		writeUnauthorizedError(w)
		return
	}

	var req verifyAttachmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestError(w)
		return
	}
	if req.URL == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "URLが空です。",
			Category: "validation",
			Action:   "検証するURLを指定してください。",
		})
		return
	}

	if err := h.service.VerifyAttachmentURL(r.Context(), req.URL); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"reachable": true})
}

// --- ヘルパー関数 ---

// toTaskModel はリクエストからmodel.Taskに変換する。
func toTaskModel(userID, taskID string, req *taskRequest) *model.Task {
	task := &model.Task{
		ID:          taskID,
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    model.Priority(req.Priority),
		Status:      model.TaskStatus(req.Status),
	}

	for _, st := range req.Subtasks {
		task.Subtasks = append(task.Subtasks, model.Subtask{
			ID:        st.ID,
			Title:     st.Title,
			Completed: st.Completed,
		})
	}

	if req.Attachment != nil {
		task.Attachment = &model.Attachment{
			Name: req.Attachment.Name,
			URL:  req.Attachment.URL,
			Mime: req.Attachment.Mime,
		}
	}

	return task
}

// toTaskResponse はmodel.TaskからAPIレスポンスに変換する。
func toTaskResponse(task *model.Task) taskResponse {
	resp := taskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		DueDate:     task.DueDate,
		Priority:    string(task.Priority),
		Status:      string(task.Status),
		CreatedAt:   task.CreatedAt,
		Subtasks:    make([]subtaskPayload, 0, len(task.Subtasks)),
	}

	for _, st := range task.Subtasks {
		resp.Subtasks = append(resp.Subtasks, subtaskPayload{
			ID:        st.ID,
			Title:     st.Title,
			Completed: st.Completed,
		})
	}

	if task.Attachment != nil {
		resp.Attachment = &attachmentPayload{
			Name: task.Attachment.Name,
			URL:  task.Attachment.URL,
			Mime: task.Attachment.Mime,
		}
	}

	return resp
}

// writeUnauthorizedError は認証エラーレスポンスを書き込む。
func writeUnauthorizedError(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusUnauthorized, &model.APIError{
		Code:     "UNAUTHORIZED",
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	})
}
