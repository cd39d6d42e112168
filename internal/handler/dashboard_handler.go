package handler

import (
	"net/http"
	"time"

	"github.com/hitoshi/planman/internal/dashboard"
	"github.com/hitoshi/planman/internal/middleware"
	"github.com/hitoshi/planman/internal/model"
)

// DashboardHandler はダッシュボード導出のHTTPハンドラー。
// タスク一覧を取得し、バケット分類・進捗率・ヒートマップを導出して返す。
// 導出自体は純粋関数であり、このハンドラーはI/Oと結線のみを担う。
type DashboardHandler struct {
	service TaskServiceInterface
	now     func() time.Time // テスト用に差し替え可能
}

// NewDashboardHandler はDashboardHandlerを生成する。
func NewDashboardHandler(service TaskServiceInterface) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		now:     time.Now,
	}
}

// dashboardResponse はダッシュボードのAPIレスポンス。
type dashboardResponse struct {
	Buckets  bucketsResponse        `json:"buckets"`
	Progress int                    `json:"progress"`
	Heatmap  []dashboard.HeatmapDay `json:"heatmap"`
}

// bucketsResponse はバケット分類のAPIレスポンス。
type bucketsResponse struct {
	Overdue   []taskResponse `json:"overdue"`
	Today     []taskResponse `json:"today"`
	Upcoming  []taskResponse `json:"upcoming"`
	Completed []taskResponse `json:"completed"`
}

// GetDashboard はダッシュボード構造を返す。
// ?q= で検索フィルタを適用する（バケット分類の前に適用される）。
// GET /api/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
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

	now := h.now()
	filtered := dashboard.Filter(tasks, r.URL.Query().Get("q"))
	buckets := dashboard.Bucketize(filtered, now)

	resp := dashboardResponse{
		Buckets: bucketsResponse{
			Overdue:   toTaskResponses(buckets.Overdue),
			Today:     toTaskResponses(buckets.Today),
			Upcoming:  toTaskResponses(buckets.Upcoming),
			Completed: toTaskResponses(buckets.Completed),
		},
		Progress: dashboard.Progress(filtered, now),
		Heatmap:  dashboard.WeeklyHeatmap(filtered, now),
	}

	writeJSON(w, http.StatusOK, resp)
}

// toTaskResponses はタスクスライスをAPIレスポンスに変換する。
func toTaskResponses(tasks []model.Task) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, toTaskResponse(&tasks[i]))
	}
	return out
}
