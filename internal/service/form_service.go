package service

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"formbridge/internal/airtable"
	"formbridge/internal/models"
	"formbridge/internal/repository"
)

type FormService struct {
	forms      *repository.FormRepo
	users      *repository.UserRepo
	newClient  ClientFactory
	backendURL string
}

func NewFormService(forms *repository.FormRepo, users *repository.UserRepo, newClient ClientFactory, backendURL string) *FormService {
	return &FormService{
		forms:      forms,
		users:      users,
		newClient:  newClient,
		backendURL: backendURL,
	}
}

// Create saves the form, then registers and enables an Airtable webhook
// scoped to the form's table. Registration is best-effort: a form without a
// webhook still collects submissions, it just won't see upstream edits
// until the webhook is registered on a later attempt.
func (s *FormService) Create(ctx context.Context, ownerID, title, baseID, tableID string, questions []models.Question) (*models.Form, error) {
	if title == "" || baseID == "" || tableID == "" || len(questions) == 0 {
		return nil, validationf("missing required fields")
	}
	for _, q := range questions {
		if !models.IsSupportedQuestionType(q.Type) {
			return nil, validationf("unsupported field type: %s", q.Type)
		}
	}
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, validationf("invalid owner id")
	}

	form := &models.Form{
		Owner:           owner,
		Title:           title,
		AirtableBaseID:  baseID,
		AirtableTableID: tableID,
		Questions:       questions,
	}
	if err := s.forms.Create(ctx, form); err != nil {
		return nil, err
	}

	s.registerWebhook(ctx, form, ownerID)
	return form, nil
}

func (s *FormService) registerWebhook(ctx context.Context, form *models.Form, ownerID string) {
	user, err := s.users.FindByID(ctx, ownerID)
	if err != nil || user == nil {
		log.Printf("Warning: webhook registration skipped for form %s: owner unavailable", form.ID.Hex())
		return
	}
	client := s.newClient(user.AccessToken)

	spec := airtable.WebhookSpec{
		Options: airtable.WebhookOptions{
			Filters: airtable.WebhookFilters{
				DataTypes:         []string{"tableData"},
				RecordChangeScope: form.AirtableTableID,
			},
		},
	}
	notificationURL := s.backendURL + "/api/webhooks/airtable"

	wh, err := client.CreateWebhook(ctx, form.AirtableBaseID, notificationURL, spec)
	if err != nil {
		log.Printf("Warning: webhook registration failed for form %s: %v", form.ID.Hex(), err)
		return
	}
	if err := client.EnableWebhook(ctx, form.AirtableBaseID, wh.ID); err != nil {
		log.Printf("Warning: webhook enable failed for form %s: %v", form.ID.Hex(), err)
	}
	if err := s.forms.SetWebhook(ctx, form.ID.Hex(), wh.ID); err != nil {
		log.Printf("Warning: saving webhook id failed for form %s: %v", form.ID.Hex(), err)
		return
	}
	form.WebhookID = wh.ID
}

func (s *FormService) List(ctx context.Context, ownerID string) ([]models.Form, error) {
	return s.forms.FindByOwner(ctx, ownerID)
}

// Get is public: the form viewer loads the definition (including the
// conditional rules the renderer evaluates) without authentication.
func (s *FormService) Get(ctx context.Context, formID string) (*models.Form, error) {
	form, err := s.forms.FindByID(ctx, formID)
	if err != nil {
		return nil, err
	}
	if form == nil {
		return nil, ErrNotFound
	}
	return form, nil
}

func (s *FormService) Update(ctx context.Context, formID, ownerID, title string, questions []models.Question) (*models.Form, error) {
	form, err := s.ownedForm(ctx, formID, ownerID)
	if err != nil {
		return nil, err
	}
	if title != "" {
		form.Title = title
	}
	if questions != nil {
		for _, q := range questions {
			if !models.IsSupportedQuestionType(q.Type) {
				return nil, validationf("unsupported field type: %s", q.Type)
			}
		}
		form.Questions = questions
	}
	if err := s.forms.Update(ctx, form); err != nil {
		return nil, err
	}
	return form, nil
}

// Delete removes the form and best-effort removes its upstream webhook so
// Airtable stops notifying a dead endpoint.
func (s *FormService) Delete(ctx context.Context, formID, ownerID string) error {
	form, err := s.ownedForm(ctx, formID, ownerID)
	if err != nil {
		return err
	}
	if form.WebhookID != "" {
		if user, err := s.users.FindByID(ctx, ownerID); err == nil && user != nil {
			client := s.newClient(user.AccessToken)
			if err := client.DeleteWebhook(ctx, form.AirtableBaseID, form.WebhookID); err != nil {
				log.Printf("Warning: webhook delete failed for form %s: %v", formID, err)
			}
		}
	}
	return s.forms.Delete(ctx, formID)
}

func (s *FormService) ownedForm(ctx context.Context, formID, ownerID string) (*models.Form, error) {
	form, err := s.forms.FindByID(ctx, formID)
	if err != nil {
		return nil, err
	}
	if form == nil {
		return nil, ErrNotFound
	}
	if form.Owner.Hex() != ownerID {
		return nil, ErrForbidden
	}
	return form, nil
}
