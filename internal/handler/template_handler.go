package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/planman/internal/middleware"
	"github.com/hitoshi/planman/internal/model"
)

// TemplateServiceInterface はテンプレートハンドラーが必要とするサービスインターフェース。
type TemplateServiceInterface interface {
	// ListTemplates は組み込みテンプレートとユーザー作成テンプレートを結合して返す。
	ListTemplates(ctx context.Context, userID string) ([]model.PlanTemplate, error)
	// CreateTemplate はユーザー作成テンプレートを作成する。
	CreateTemplate(ctx context.Context, template *model.PlanTemplate) error
	// UpdateTemplate はIDをキーにテンプレート全体を置き換える。組み込みは変更不可。
	UpdateTemplate(ctx context.Context, template *model.PlanTemplate) error
	// DeleteTemplate は指定IDのテンプレートを削除する。組み込みは削除不可。
	DeleteTemplate(ctx context.Context, userID, templateID string) error
}

// TemplateHandler はスケジュールテンプレートのHTTPハンドラー。
type TemplateHandler struct {
	service TemplateServiceInterface
}

// NewTemplateHandler はTemplateHandlerを生成する。
func NewTemplateHandler(service TemplateServiceInterface) *TemplateHandler {
	return &TemplateHandler{service: service}
}

// templateRequest はテンプレート作成・更新リクエストのボディ。
type templateRequest struct {
	Label  string `json:"label"`
	Icon   string `json:"icon"`
	Prompt string `json:"prompt"`
}

// templateResponse はテンプレートのAPIレスポンス。
type templateResponse struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Icon    string `json:"icon"`
	Prompt  string `json:"prompt"`
	Builtin bool   `json:"builtin"`
}

// ListTemplates はテンプレート一覧を取得する。組み込みが先頭に並ぶ。
// GET /api/templates
func (h *TemplateHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedError(w)
		return
	}

	templates, err := h.service.ListTemplates(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	out := make([]templateResponse, 0, len(templates))
	for i := range templates {
		out = append(out, toTemplateResponse(&templates[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateTemplate はユーザー作成テンプレートを作成する。
// POST /api/templates
func (h *TemplateHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedError(w)
		return
	}

	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestError(w)
		return
	}
	if req.Label == "" || req.Prompt == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "テンプレート名とプロンプトは必須です。",
			Category: "validation",
			Action:   "テンプレート名とプロンプトを入力してください。",
		})
		return
	}

	template := &model.PlanTemplate{
		UserID: userID,
		Label:  req.Label,
		Icon:   req.Icon,
		Prompt: req.Prompt,
	}
	if err := h.service.CreateTemplate(r.Context(), template); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTemplateResponse(template))
}

// UpdateTemplate はテンプレート全体を置き換える。
// PUT /api/templates/:id
func (h *TemplateHandler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedError(w)
		return
	}

	templateID := chi.URLParam(r, "id")

	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestError(w)
		return
	}

	template := &model.PlanTemplate{
		ID:     templateID,
		UserID: userID,
		Label:  req.Label,
		Icon:   req.Icon,
		Prompt: req.Prompt,
	}
	if err := h.service.UpdateTemplate(r.Context(), template); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTemplateResponse(template))
}

// DeleteTemplate はテンプレートを削除する。
// DELETE /api/templates/:id
func (h *TemplateHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedError(w)
		return
	}

	templateID := chi.URLParam(r, "id")

	if err := h.service.DeleteTemplate(r.Context(), userID, templateID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// toTemplateResponse はmodel.PlanTemplateからAPIレスポンスに変換する。
func toTemplateResponse(template *model.PlanTemplate) templateResponse {
	return templateResponse{
		ID:      template.ID,
		Label:   template.Label,
		Icon:    template.Icon,
		Prompt:  template.Prompt,
		Builtin: template.IsBuiltin(),
	}
}
