package reconcile

import (
	"context"
	"fmt"
	"time"
)

// Applier applies one decoded upstream record change to the local response
// mirror, keyed by Airtable record id. Only records created through a form
// submission are mirrored; changes to anything else are no-ops, which makes
// every apply idempotent under at-least-once redelivery.
type Applier struct {
	responses ResponseStore
}

func NewApplier(responses ResponseStore) *Applier {
	return &Applier{responses: responses}
}

// ApplyUpdate replaces the mirrored answers wholesale with the record's
// current field values and clears any tombstone. Returns whether a local
// record was touched.
func (a *Applier) ApplyUpdate(ctx context.Context, recordID string, fields map[string]any) (bool, error) {
	resp, err := a.responses.FindByAirtableRecordID(ctx, recordID)
	if err != nil {
		return false, fmt.Errorf("reconcile: find response %s: %w", recordID, err)
	}
	if resp == nil {
		return false, nil
	}

	// A change event without cell values keeps the last-known answers.
	if fields != nil {
		resp.Answers = fields
	}
	resp.DeletedInAirtable = false
	resp.UpdatedAt = time.Now().UTC()

	if err := a.responses.Update(ctx, resp); err != nil {
		return false, fmt.Errorf("reconcile: update response %s: %w", recordID, err)
	}
	return true, nil
}

// ApplyDelete tombstones the mirrored response. The record itself is kept
// so the last-known answers stay inspectable.
func (a *Applier) ApplyDelete(ctx context.Context, recordID string) (bool, error) {
	resp, err := a.responses.FindByAirtableRecordID(ctx, recordID)
	if err != nil {
		return false, fmt.Errorf("reconcile: find response %s: %w", recordID, err)
	}
	if resp == nil {
		return false, nil
	}

	resp.DeletedInAirtable = true
	resp.UpdatedAt = time.Now().UTC()

	if err := a.responses.Update(ctx, resp); err != nil {
		return false, fmt.Errorf("reconcile: tombstone response %s: %w", recordID, err)
	}
	return true, nil
}
