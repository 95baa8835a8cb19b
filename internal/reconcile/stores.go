// Package reconcile keeps the local response mirror aligned with edits and
// deletions made directly in Airtable, driven by webhook notifications and
// the cursor-paginated payload queue.
package reconcile

import (
	"context"

	"formbridge/internal/airtable"
	"formbridge/internal/models"
)

// FormStore is the slice of form persistence the reconciler needs.
// Lookups return nil with no error when nothing matches.
type FormStore interface {
	FindByWebhookID(ctx context.Context, webhookID string) (*models.Form, error)
	FindByBaseID(ctx context.Context, baseID string) ([]models.Form, error)
	SetWebhookCursor(ctx context.Context, formID string, cursor int) error
}

// UserStore resolves a form owner's stored credential.
type UserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// ResponseStore is the slice of response persistence the applier needs.
type ResponseStore interface {
	FindByAirtableRecordID(ctx context.Context, recordID string) (*models.Response, error)
	Update(ctx context.Context, resp *models.Response) error
}

// PayloadSource fetches buffered change payloads from the remote source.
type PayloadSource interface {
	GetWebhookPayloads(ctx context.Context, baseID, webhookID string, cursor int) (*airtable.PayloadList, error)
}

// SourceFactory builds a PayloadSource authenticated as one user's access
// token. The reconciler resolves the token per run, since each form owner
// holds their own credential.
type SourceFactory func(accessToken string) PayloadSource
