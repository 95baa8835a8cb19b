package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"formbridge/internal/airtable"
)

var (
	// ErrInvalidNotification rejects a notification body missing its base
	// or webhook identifier before any state is touched.
	ErrInvalidNotification = errors.New("reconcile: notification missing base or webhook id")

	// ErrOwnerNotFound means the owning form exists but its user record
	// (and with it the credential) could not be resolved.
	ErrOwnerNotFound = errors.New("reconcile: form owner not found")
)

// Notification is the inbound webhook ping. It names the base and webhook,
// and may arrive "warm" with a payload already inlined.
type Notification struct {
	Base struct {
		ID string `json:"id"`
	} `json:"base"`
	Webhook struct {
		ID string `json:"id"`
	} `json:"webhook"`
	ChangedTablesByID map[string]airtable.TableChanges `json:"changedTablesById,omitempty"`
}

// Stats counts local records touched by one reconciliation run.
type Stats struct {
	Updated int `json:"updated"`
	Deleted int `json:"deleted"`
}

// Reconciler runs the resolve → page → apply → commit sequence for webhook
// notifications. Runs for the same webhook are serialized; the cursor
// watermark only advances after a payload batch has been fully applied, so
// an aborted run leaves state exactly as it found it.
type Reconciler struct {
	forms     FormStore
	users     UserStore
	responses ResponseStore
	applier   *Applier
	source    SourceFactory
	locks     *webhookLocks
}

func NewReconciler(forms FormStore, users UserStore, responses ResponseStore, source SourceFactory) *Reconciler {
	return &Reconciler{
		forms:     forms,
		users:     users,
		responses: responses,
		applier:   NewApplier(responses),
		source:    source,
		locks:     newWebhookLocks(),
	}
}

// Run processes one notification end to end and reports how many local
// records it touched. A notification for a webhook no form owns is
// acknowledged as a no-op, not an error.
func (r *Reconciler) Run(ctx context.Context, n *Notification) (*Stats, error) {
	if n == nil || n.Base.ID == "" || n.Webhook.ID == "" {
		return nil, ErrInvalidNotification
	}
	runID := uuid.New().String()

	lock := r.locks.get(n.Webhook.ID)
	lock.Lock()
	defer lock.Unlock()

	form, err := r.forms.FindByWebhookID(ctx, n.Webhook.ID)
	if err != nil {
		return nil, fmt.Errorf("reconcile: find form for webhook %s: %w", n.Webhook.ID, err)
	}
	if form == nil {
		log.Printf("reconcile %s: no form for webhook %s", runID, n.Webhook.ID)
		return &Stats{}, nil
	}

	owner, err := r.users.FindByID(ctx, form.Owner.Hex())
	if err != nil {
		return nil, fmt.Errorf("reconcile: find owner of form %s: %w", form.ID.Hex(), err)
	}
	if owner == nil {
		return nil, ErrOwnerNotFound
	}
	src := r.source(owner.AccessToken)

	// Page through the payload queue from the stored watermark.
	cursor := form.WebhookCursor
	committed := cursor
	hasCursor := false
	var payloads []airtable.Payload
	for {
		page, err := src.GetWebhookPayloads(ctx, n.Base.ID, n.Webhook.ID, cursor)
		if err != nil {
			return nil, fmt.Errorf("reconcile: fetch payloads: %w", err)
		}
		payloads = append(payloads, page.Payloads...)
		if page.Cursor == nil {
			break
		}
		hasCursor = true
		if *page.Cursor == cursor || len(page.Payloads) == 0 {
			break
		}
		cursor = *page.Cursor
	}

	// A warm notification carries one payload inline; append it so it is
	// applied exactly once without a second fetch.
	if n.ChangedTablesByID != nil {
		payloads = append(payloads, airtable.Payload{ChangedTablesByID: n.ChangedTablesByID})
	}

	if len(payloads) == 0 {
		log.Printf("reconcile %s: no new payloads for form %s", runID, form.ID.Hex())
		return &Stats{}, nil
	}

	// The same base can host forms over different tables; only changes to a
	// table some form watches are relevant.
	siblings, err := r.forms.FindByBaseID(ctx, n.Base.ID)
	if err != nil {
		return nil, fmt.Errorf("reconcile: list forms for base %s: %w", n.Base.ID, err)
	}
	watched := make(map[string]bool, len(siblings))
	for i := range siblings {
		watched[siblings[i].AirtableTableID] = true
	}

	stats := &Stats{}
	for _, p := range payloads {
		for tableID, changes := range p.ChangedTablesByID {
			if !watched[tableID] {
				continue
			}
			if err := r.applyTable(ctx, changes, stats); err != nil {
				return nil, err
			}
		}
	}

	// Commit the watermark only now that the whole batch applied. A queue
	// that returned no cursor leaves the stored watermark untouched.
	if hasCursor && cursor != committed {
		if err := r.forms.SetWebhookCursor(ctx, form.ID.Hex(), cursor); err != nil {
			return nil, fmt.Errorf("reconcile: commit cursor %d: %w", cursor, err)
		}
	}

	log.Printf("reconcile %s: form %s updated=%d deleted=%d cursor=%d",
		runID, form.ID.Hex(), stats.Updated, stats.Deleted, cursor)
	return stats, nil
}

func (r *Reconciler) applyTable(ctx context.Context, changes airtable.TableChanges, stats *Stats) error {
	for recordID, change := range changes.ChangedRecordsByID {
		switch {
		case change.Current != nil:
			touched, err := r.applier.ApplyUpdate(ctx, recordID, change.Current.CellValuesByFieldID)
			if err != nil {
				return err
			}
			if touched {
				stats.Updated++
			}
		case change.Previous != nil:
			touched, err := r.applier.ApplyDelete(ctx, recordID)
			if err != nil {
				return err
			}
			if touched {
				stats.Deleted++
			}
		}
	}
	for _, recordID := range changes.DestroyedRecordIDs {
		touched, err := r.applier.ApplyDelete(ctx, recordID)
		if err != nil {
			return err
		}
		if touched {
			stats.Deleted++
		}
	}
	return nil
}
