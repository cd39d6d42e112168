package dataservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/hitoshi/planman/internal/model"
)

// ListTemplates は組み込みテンプレートとユーザー作成テンプレートを結合して返す。
// 組み込みが常に先頭に並ぶ。
func (s *Service) ListTemplates(ctx context.Context, userID string) ([]model.PlanTemplate, error) {
	userTemplates, err := execute(ctx, s, userID, "template_list", func(ctx context.Context, repos *RepoSet) ([]model.PlanTemplate, error) {
		return repos.Templates.ListByUserID(ctx, userID)
	})
	if err != nil {
		return nil, err
	}

	return append(model.BuiltinTemplates(), userTemplates...), nil
}

// CreateTemplate はユーザー作成テンプレートを作成する。IDが未設定の場合は付与する。
// 組み込みテンプレートのID空間（builtin-接頭辞）は使用できない。
func (s *Service) CreateTemplate(ctx context.Context, template *model.PlanTemplate) error {
	if template.UserID == "" {
		return fmt.Errorf("template user ID is required")
	}
	if strings.HasPrefix(template.ID, "builtin-") {
		return model.NewBuiltinImmutableError()
	}

	if template.ID == "" {
		template.ID = uuid.New().String()
	}

	return executeVoid(ctx, s, template.UserID, "template_create", func(ctx context.Context, repos *RepoSet) error {
		return repos.Templates.Create(ctx, template)
	})
}

// UpdateTemplate はIDをキーにテンプレート全体を置き換える。
// 組み込みテンプレートは変更できない。IDが存在しない場合は何もしない。
func (s *Service) UpdateTemplate(ctx context.Context, template *model.PlanTemplate) error {
	if template.ID == "" {
		return fmt.Errorf("template ID is required")
	}
	if template.IsBuiltin() || strings.HasPrefix(template.ID, "builtin-") {
		return model.NewBuiltinImmutableError()
	}

	return executeVoid(ctx, s, template.UserID, "template_update", func(ctx context.Context, repos *RepoSet) error {
		return repos.Templates.Update(ctx, template)
	})
}

// DeleteTemplate は指定IDのテンプレートを削除する。組み込みテンプレートは削除できない。
func (s *Service) DeleteTemplate(ctx context.Context, userID, templateID string) error {
	if strings.HasPrefix(templateID, "builtin-") {
		return model.NewBuiltinImmutableError()
	}

	return executeVoid(ctx, s, userID, "template_delete", func(ctx context.Context, repos *RepoSet) error {
		return repos.Templates.Delete(ctx, templateID)
	})
}
