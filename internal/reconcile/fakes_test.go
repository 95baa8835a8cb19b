package reconcile

import (
	"context"
	"errors"
	"sync"

	"formbridge/internal/airtable"
	"formbridge/internal/models"
)

var errStoreDown = errors.New("store down")

type fakeResponseStore struct {
	mu      sync.Mutex
	byID    map[string]*models.Response
	updates int
	failOn  string // record id whose update fails
}

func newFakeResponseStore(responses ...*models.Response) *fakeResponseStore {
	s := &fakeResponseStore{byID: make(map[string]*models.Response)}
	for _, r := range responses {
		s.byID[r.AirtableRecordID] = r
	}
	return s
}

func (s *fakeResponseStore) FindByAirtableRecordID(ctx context.Context, recordID string) (*models.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[recordID]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (s *fakeResponseStore) Update(ctx context.Context, resp *models.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn != "" && resp.AirtableRecordID == s.failOn {
		return errStoreDown
	}
	cp := *resp
	s.byID[resp.AirtableRecordID] = &cp
	s.updates++
	return nil
}

func (s *fakeResponseStore) get(recordID string) *models.Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byID[recordID]
}

type fakeFormStore struct {
	mu      sync.Mutex
	forms   []*models.Form
	cursors map[string]int
}

func newFakeFormStore(forms ...*models.Form) *fakeFormStore {
	return &fakeFormStore{forms: forms, cursors: make(map[string]int)}
}

func (s *fakeFormStore) FindByWebhookID(ctx context.Context, webhookID string) (*models.Form, error) {
	for _, f := range s.forms {
		if f.WebhookID == webhookID {
			return f, nil
		}
	}
	return nil, nil
}

func (s *fakeFormStore) FindByBaseID(ctx context.Context, baseID string) ([]models.Form, error) {
	var out []models.Form
	for _, f := range s.forms {
		if f.AirtableBaseID == baseID {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (s *fakeFormStore) SetWebhookCursor(ctx context.Context, formID string, cursor int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursors[formID] = cursor
	return nil
}

func (s *fakeFormStore) committedCursor(formID string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cursors[formID]
	return c, ok
}

type fakeUserStore struct {
	users map[string]*models.User
}

func (s *fakeUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	return s.users[id], nil
}

// fakePayloadSource returns queued pages in order, then empty pages.
type fakePayloadSource struct {
	mu    sync.Mutex
	pages []*airtable.PayloadList
	calls []int // cursors seen
	err   error
}

func (s *fakePayloadSource) GetWebhookPayloads(ctx context.Context, baseID, webhookID string, cursor int) (*airtable.PayloadList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, cursor)
	if s.err != nil {
		return nil, s.err
	}
	if len(s.pages) == 0 {
		c := cursor
		return &airtable.PayloadList{Cursor: &c}, nil
	}
	page := s.pages[0]
	s.pages = s.pages[1:]
	return page, nil
}

func intPtr(v int) *int { return &v }

func updatePayload(tableID, recordID string, fields map[string]any) airtable.Payload {
	return airtable.Payload{
		ChangedTablesByID: map[string]airtable.TableChanges{
			tableID: {
				ChangedRecordsByID: map[string]airtable.RecordChange{
					recordID: {Current: &airtable.RecordData{CellValuesByFieldID: fields}},
				},
			},
		},
	}
}

func deletePayload(tableID, recordID string) airtable.Payload {
	return airtable.Payload{
		ChangedTablesByID: map[string]airtable.TableChanges{
			tableID: {
				ChangedRecordsByID: map[string]airtable.RecordChange{
					recordID: {Previous: &airtable.RecordData{CellValuesByFieldID: map[string]any{"old": true}}},
				},
			},
		},
	}
}
