package dataservice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/planman/internal/model"
)

// ListContacts は指定ユーザーの連絡先一覧を返す。
func (s *Service) ListContacts(ctx context.Context, userID string) ([]model.EmailContact, error) {
	return execute(ctx, s, userID, "contact_list", func(ctx context.Context, repos *RepoSet) ([]model.EmailContact, error) {
		return repos.Contacts.ListByUserID(ctx, userID)
	})
}

// CreateContact は連絡先を作成する。IDが未設定の場合は付与する。
func (s *Service) CreateContact(ctx context.Context, contact *model.EmailContact) error {
	if contact.Email == "" {
		return fmt.Errorf("contact email is required")
	}

	if contact.ID == "" {
		contact.ID = uuid.New().String()
	}
	if contact.CreatedAt.IsZero() {
		contact.CreatedAt = time.Now()
	}

	return executeVoid(ctx, s, contact.UserID, "contact_create", func(ctx context.Context, repos *RepoSet) error {
		return repos.Contacts.Create(ctx, contact)
	})
}

// UpdateContact はIDをキーに連絡先全体を置き換える。IDが存在しない場合は何もしない。
func (s *Service) UpdateContact(ctx context.Context, contact *model.EmailContact) error {
	if contact.ID == "" {
		return fmt.Errorf("contact ID is required")
	}

	return executeVoid(ctx, s, contact.UserID, "contact_update", func(ctx context.Context, repos *RepoSet) error {
		return repos.Contacts.Update(ctx, contact)
	})
}

// DeleteContact は指定IDの連絡先を削除する。冪等。
func (s *Service) DeleteContact(ctx context.Context, userID, contactID string) error {
	return executeVoid(ctx, s, userID, "contact_delete", func(ctx context.Context, repos *RepoSet) error {
		return repos.Contacts.Delete(ctx, contactID)
	})
}
