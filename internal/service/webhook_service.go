package service

import (
	"context"

	"formbridge/internal/repository"
)

// WebhookService drives the webhook's own lifecycle for an existing form:
// enabling notifications and refreshing the registration before it expires.
type WebhookService struct {
	forms     *repository.FormRepo
	users     *repository.UserRepo
	newClient ClientFactory
}

func NewWebhookService(forms *repository.FormRepo, users *repository.UserRepo, newClient ClientFactory) *WebhookService {
	return &WebhookService{forms: forms, users: users, newClient: newClient}
}

func (s *WebhookService) Enable(ctx context.Context, formID, ownerID string) error {
	form, err := s.forms.FindByID(ctx, formID)
	if err != nil {
		return err
	}
	if form == nil || form.Owner.Hex() != ownerID {
		return ErrNotFound
	}
	if form.WebhookID == "" {
		return ErrNoWebhook
	}
	user, err := s.users.FindByID(ctx, ownerID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}
	return s.newClient(user.AccessToken).EnableWebhook(ctx, form.AirtableBaseID, form.WebhookID)
}

// Refresh extends the webhook's expiry upstream and persists the returned
// cursor as the form's new paging baseline.
func (s *WebhookService) Refresh(ctx context.Context, formID, ownerID string) (int, error) {
	form, err := s.forms.FindByID(ctx, formID)
	if err != nil {
		return 0, err
	}
	if form == nil || form.Owner.Hex() != ownerID {
		return 0, ErrNotFound
	}
	if form.WebhookID == "" {
		return 0, ErrNoWebhook
	}
	user, err := s.users.FindByID(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, ErrNotFound
	}

	result, err := s.newClient(user.AccessToken).RefreshWebhook(ctx, form.AirtableBaseID, form.WebhookID)
	if err != nil {
		return 0, err
	}
	if result.Cursor > 0 {
		if err := s.forms.SetWebhookCursor(ctx, formID, result.Cursor); err != nil {
			return 0, err
		}
	}
	return result.Cursor, nil
}
