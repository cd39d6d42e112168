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

// ContactServiceInterface は連絡先ハンドラーが必要とするサービスインターフェース。
type ContactServiceInterface interface {
	// ListContacts は指定ユーザーの連絡先一覧を返す。
	ListContacts(ctx context.Context, userID string) ([]model.EmailContact, error)
	// CreateContact は連絡先を作成する。
	CreateContact(ctx context.Context, contact *model.EmailContact) error
	// UpdateContact はIDをキーに連絡先全体を置き換える。
	UpdateContact(ctx context.Context, contact *model.EmailContact) error
	// DeleteContact は指定IDの連絡先を削除する。冪等。
	DeleteContact(ctx context.Context, userID, contactID string) error
}

// ContactHandler はブリーフィング宛先連絡先のHTTPハンドラー。
type ContactHandler struct {
	service ContactServiceInterface
}

// NewContactHandler はContactHandlerを生成する。
func NewContactHandler(service ContactServiceInterface) *ContactHandler {
	return &ContactHandler{service: service}
}

// contactRequest は連絡先作成・更新リクエストのボディ。
type contactRequest struct {
	Email  string `json:"email"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// contactResponse は連絡先のAPIレスポンス。
type contactResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// ListContacts は連絡先一覧を取得する。
// GET /api/contacts
func (h *ContactHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedError(w)
		return
	}

	contacts, err := h.service.ListContacts(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	out := make([]contactResponse, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, toContactResponse(&c))
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateContact は連絡先を作成する。
// POST /api/contacts
func (h *ContactHandler) CreateContact(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedError(w)
		return
	}

	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestError(w)
		return
	}
	if req.Email == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "メールアドレスが空です。",
			Category: "validation",
			Action:   "メールアドレスを入力してください。",
		})
		return
	}

	contact := &model.EmailContact{
		UserID: userID,
		Email:  req.Email,
		Name:   req.Name,
		Active: req.Active,
	}
	if err := h.service.CreateContact(r.Context(), contact); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toContactResponse(contact))
}

// UpdateContact は連絡先全体を置き換える。
// PUT /api/contacts/:id
func (h *ContactHandler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedError(w)
		return
	}

	contactID := chi.URLParam(r, "id")

	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestError(w)
		return
	}

	contact := &model.EmailContact{
		ID:     contactID,
		UserID: userID,
		Email:  req.Email,
		Name:   req.Name,
		Active: req.Active,
	}
	if err := h.service.UpdateContact(r.Context(), contact); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toContactResponse(contact))
}

// DeleteContact は連絡先を削除する。存在しないIDでも204を返す。
// DELETE /api/contacts/:id
func (h *ContactHandler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedError(w)
		return
	}

	contactID := chi.URLParam(r, "id")

	if err := h.service.DeleteContact(r.Context(), userID, contactID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// toContactResponse はmodel.EmailContactからAPIレスポンスに変換する。
func toContactResponse(contact *model.EmailContact) contactResponse {
	return contactResponse{
		ID:        contact.ID,
		Email:     contact.Email,
		Name:      contact.Name,
		Active:    contact.Active,
		CreatedAt: contact.CreatedAt,
	}
}
