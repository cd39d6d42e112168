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

// PlanServiceInterface は日次予定ハンドラーが必要とするサービスインターフェース。
type PlanServiceInterface interface {
	// SavePlan は日次予定を保存する。(userID, date) へのUPSERT。
	SavePlan(ctx context.Context, plan *model.DailyPlan) error
	// GetPlan は指定日の予定を返す。見つからない場合はnil。
	GetPlan(ctx context.Context, userID, date string) (*model.DailyPlan, error)
	// ListPlans は予定一覧を日付昇順で返す。
	ListPlans(ctx context.Context, userID string) ([]model.DailyPlan, error)
}

// PlanHandler は日次予定のHTTPハンドラー。
type PlanHandler struct {
	service PlanServiceInterface
}

// NewPlanHandler はPlanHandlerを生成する。
func NewPlanHandler(service PlanServiceInterface) *PlanHandler {
	return &PlanHandler{service: service}
}

// scheduleItemPayload はスケジュール項目のリクエスト/レスポンス表現。
type scheduleItemPayload struct {
	Time     string `json:"time"`
	Activity string `json:"activity"`
	Type     string `json:"type"`
	Notes    string `json:"notes,omitempty"`
}

// planRequest は予定保存リクエストのボディ。
type planRequest struct {
	Items []scheduleItemPayload `json:"items"`
	Notes string                `json:"notes"`
}

// planResponse は予定のAPIレスポンス。
type planResponse struct {
	Date      string                `json:"date"`
	Items     []scheduleItemPayload `json:"items"`
	Notes     string                `json:"notes"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// SavePlan は指定日の予定を保存する。同じ日への保存は前の内容を置き換える。
// PUT /api/plans/:date
func (h *PlanHandler) SavePlan(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedError(w)
		return
	}

	date := chi.URLParam(r, "date")

	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestError(w)
		return
	}

	plan := &model.DailyPlan{
		UserID: userID,
		Date:   date,
		Notes:  req.Notes,
	}
	for _, item := range req.Items {
		plan.Items = append(plan.Items, model.ScheduleItem{
			Time:     item.Time,
			Activity: item.Activity,
			Type:     model.ScheduleItemType(item.Type),
			Notes:    item.Notes,
		})
	}

	if err := h.service.SavePlan(r.Context(), plan); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPlanResponse(plan))
}

// GetPlan は指定日の予定を取得する。
// GET /api/plans/:date
func (h *PlanHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedError(w)
		return
	}

	date := chi.URLParam(r, "date")

	plan, err := h.service.GetPlan(r.Context(), userID, date)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if plan == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewPlanNotFoundError(date))
		return
	}

	writeJSON(w, http.StatusOK, toPlanResponse(plan))
}

// ListPlans は予定一覧を取得する。
// GET /api/plans
func (h *PlanHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedError(w)
		return
	}

	plans, err := h.service.ListPlans(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	out := make([]planResponse, 0, len(plans))
	for i := range plans {
		out = append(out, toPlanResponse(&plans[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// toPlanResponse はmodel.DailyPlanからAPIレスポンスに変換する。
func toPlanResponse(plan *model.DailyPlan) planResponse {
	resp := planResponse{
		Date:      plan.Date,
		Items:     make([]scheduleItemPayload, 0, len(plan.Items)),
		Notes:     plan.Notes,
		UpdatedAt: plan.UpdatedAt,
	}
	for _, item := range plan.Items {
		resp.Items = append(resp.Items, scheduleItemPayload{
			Time:     item.Time,
			Activity: item.Activity,
			Type:     string(item.Type),
			Notes:    item.Notes,
		})
	}
	return resp
}
