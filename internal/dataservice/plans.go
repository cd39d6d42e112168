package dataservice

import (
	"context"
	"fmt"
	"time"

	"github.com/hitoshi/planman/internal/model"
)

// SavePlan は日次予定を保存する。(userID, date) の組へのUPSERTとなり、
// 同一日の保存は常に前の内容を置き換える。
func (s *Service) SavePlan(ctx context.Context, plan *model.DailyPlan) error {
	if plan.UserID == "" {
		return fmt.Errorf("plan user ID is required")
	}
	if _, err := time.Parse("2006-01-02", plan.Date); err != nil {
		return fmt.Errorf("invalid plan date %q: %w", plan.Date, err)
	}
	for _, item := range plan.Items {
		if !model.ValidScheduleItemType(item.Type) {
			return fmt.Errorf("invalid schedule item type %q", item.Type)
		}
	}

	plan.UpdatedAt = time.Now()

	return executeVoid(ctx, s, plan.UserID, "plan_save", func(ctx context.Context, repos *RepoSet) error {
		return repos.Plans.Upsert(ctx, plan)
	})
}

// GetPlan は指定ユーザー・日付の予定を返す。見つからない場合はnilを返す。
func (s *Service) GetPlan(ctx context.Context, userID, date string) (*model.DailyPlan, error) {
	return execute(ctx, s, userID, "plan_get", func(ctx context.Context, repos *RepoSet) (*model.DailyPlan, error) {
		return repos.Plans.FindByUserAndDate(ctx, userID, date)
	})
}

// ListPlans は指定ユーザーの予定一覧を日付昇順で返す。
func (s *Service) ListPlans(ctx context.Context, userID string) ([]model.DailyPlan, error) {
	return execute(ctx, s, userID, "plan_list", func(ctx context.Context, repos *RepoSet) ([]model.DailyPlan, error) {
		return repos.Plans.ListByUserID(ctx, userID)
	})
}
