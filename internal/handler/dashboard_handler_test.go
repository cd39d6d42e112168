package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/planman/internal/model"
)

// TestDashboardHandler_GetDashboard はタスク一覧がバケット・進捗率・
// ヒートマップに導出されることをテストする。
func TestDashboardHandler_GetDashboard(t *testing.T) {
	now := time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC)

	svc := &mockTaskService{
		listTasksFn: func(ctx context.Context, userID string) ([]model.Task, error) {
			return []model.Task{
				{ID: "overdue", Title: "昨日の分", DueDate: now.AddDate(0, 0, -1).Format(time.RFC3339), Priority: model.PriorityHigh, Status: model.StatusTodo, CreatedAt: now},
				{ID: "today-done", Title: "今日の完了分", DueDate: now.Format(time.RFC3339), Priority: model.PriorityMedium, Status: model.StatusCompleted, CreatedAt: now},
				{ID: "today-todo", Title: "今日の未完了分", DueDate: now.Format(time.RFC3339), Priority: model.PriorityMedium, Status: model.StatusTodo, CreatedAt: now},
			}, nil
		},
	}

	h := NewDashboardHandler(svc)
	h.now = func() time.Time { return now }

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	req = withUserID(req, "user-123")
	w := httptest.NewRecorder()

	h.GetDashboard(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp dashboardResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(resp.Buckets.Overdue) != 1 || resp.Buckets.Overdue[0].ID != "overdue" {
		t.Errorf("overdue = %+v", resp.Buckets.Overdue)
	}
	if len(resp.Buckets.Today) != 1 || resp.Buckets.Today[0].ID != "today-todo" {
		t.Errorf("today = %+v", resp.Buckets.Today)
	}
	if len(resp.Buckets.Completed) != 1 {
		t.Errorf("completed = %+v", resp.Buckets.Completed)
	}
	// 今日が期限の2件中1件完了 = 50%
	if resp.Progress != 50 {
		t.Errorf("progress = %d, want 50", resp.Progress)
	}
	if len(resp.Heatmap) != 7 {
		t.Errorf("heatmap length = %d, want 7", len(resp.Heatmap))
	}
}

// TestDashboardHandler_SearchFilter は?q=が分類前に適用されることをテストする。
func TestDashboardHandler_SearchFilter(t *testing.T) {
	now := time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC)

	svc := &mockTaskService{
		listTasksFn: func(ctx context.Context, userID string) ([]model.Task, error) {
			return []model.Task{
				{ID: "match", Title: "レポート作成", DueDate: now.Format(time.RFC3339), Priority: model.PriorityMedium, Status: model.StatusTodo, CreatedAt: now},
				{ID: "no-match", Title: "散歩", DueDate: now.Format(time.RFC3339), Priority: model.PriorityLow, Status: model.StatusTodo, CreatedAt: now},
			}, nil
		},
	}

	h := NewDashboardHandler(svc)
	h.now = func() time.Time { return now }

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard?q="+("%E3%83%AC%E3%83%9D%E3%83%BC%E3%83%88"), nil) // "レポート"
	req = withUserID(req, "user-123")
	w := httptest.NewRecorder()

	h.GetDashboard(w, req)

	var resp dashboardResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(resp.Buckets.Today) != 1 || resp.Buckets.Today[0].ID != "match" {
		t.Errorf("フィルタ後のtoday = %+v", resp.Buckets.Today)
	}
}

// TestDashboardHandler_NoUserID はユーザーIDなしのリクエストが
// 401になることをテストする。
func TestDashboardHandler_NoUserID(t *testing.T) {
	h := NewDashboardHandler(&mockTaskService{})

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	w := httptest.NewRecorder()

	h.GetDashboard(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}
