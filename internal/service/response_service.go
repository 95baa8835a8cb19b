package service

import (
	"context"
	"fmt"

	"formbridge/internal/models"
	"formbridge/internal/repository"
	"formbridge/internal/visibility"
)

type ResponseService struct {
	responses *repository.ResponseRepo
	forms     *repository.FormRepo
	users     *repository.UserRepo
	newClient ClientFactory
}

func NewResponseService(responses *repository.ResponseRepo, forms *repository.FormRepo, users *repository.UserRepo, newClient ClientFactory) *ResponseService {
	return &ResponseService{
		responses: responses,
		forms:     forms,
		users:     users,
		newClient: newClient,
	}
}

type SubmitResult struct {
	ID               string `json:"id"`
	AirtableRecordID string `json:"airtableRecordId"`
}

// Submit validates a public submission, writes the record to Airtable, and
// mirrors it locally keyed by the returned record id. Required-field checks
// run only against questions the visibility engine deems active for these
// answers, so a respondent is never blocked by a hidden question — the same
// verdict the viewer renders from.
func (s *ResponseService) Submit(ctx context.Context, formID string, answers map[string]any) (*SubmitResult, error) {
	form, err := s.forms.FindByID(ctx, formID)
	if err != nil {
		return nil, err
	}
	if form == nil {
		return nil, ErrNotFound
	}

	for _, q := range form.Questions {
		if !visibility.ShouldShow(q.ConditionalRules, answers) {
			continue
		}
		if q.Required {
			v, ok := answers[q.QuestionKey]
			if !ok || v == nil || v == "" {
				return nil, validationf("required field missing: %s", q.Label)
			}
		}
	}

	owner, err := s.users.FindByID(ctx, form.Owner.Hex())
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, fmt.Errorf("form owner not found")
	}

	fields := make(map[string]any)
	for _, q := range form.Questions {
		if v, ok := answers[q.QuestionKey]; ok {
			fields[q.Label] = v
		}
	}

	rec, err := s.newClient(owner.AccessToken).CreateRecord(ctx, form.AirtableBaseID, form.AirtableTableID, fields)
	if err != nil {
		return nil, fmt.Errorf("create airtable record: %w", err)
	}

	resp := &models.Response{
		FormID:           form.ID,
		AirtableRecordID: rec.ID,
		Answers:          answers,
	}
	if err := s.responses.Create(ctx, resp); err != nil {
		return nil, err
	}
	return &SubmitResult{ID: resp.ID.Hex(), AirtableRecordID: rec.ID}, nil
}

// List returns a form's responses, tombstones included, newest first.
func (s *ResponseService) List(ctx context.Context, formID, ownerID string) ([]models.Response, error) {
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
	return s.responses.FindByFormID(ctx, formID)
}
