package airtable

// UserInfo is the authenticated user, from the whoami endpoint.
type UserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type Base struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	PermissionLevel string `json:"permissionLevel,omitempty"`
}

type Field struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Type    string         `json:"type"`
	Options map[string]any `json:"options,omitempty"`
}

type Table struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

type Record struct {
	ID          string         `json:"id"`
	Fields      map[string]any `json:"fields"`
	CreatedTime string         `json:"createdTime,omitempty"`
}

// Webhook is the upstream registration that feeds change notifications to
// our notification URL.
type Webhook struct {
	ID                   string `json:"id"`
	MacSecretBase64      string `json:"macSecretBase64,omitempty"`
	ExpirationTime       string `json:"expirationTime,omitempty"`
	CursorForNextPayload int    `json:"cursorForNextPayload,omitempty"`
}

type WebhookSpec struct {
	Options WebhookOptions `json:"options"`
}

type WebhookOptions struct {
	Filters WebhookFilters `json:"filters"`
}

type WebhookFilters struct {
	DataTypes         []string `json:"dataTypes"`
	RecordChangeScope string   `json:"recordChangeScope,omitempty"`
}

// RefreshResult is returned by the webhook refresh endpoint: an extended
// expiry plus a fresh cursor baseline for the payload queue.
type RefreshResult struct {
	Cursor         int    `json:"cursor"`
	ExpirationTime string `json:"expirationTime,omitempty"`
}

// PayloadList is one page of the webhook payload queue. Cursor is nil when
// the endpoint did not return a new position.
type PayloadList struct {
	Payloads      []Payload `json:"payloads"`
	Cursor        *int      `json:"cursor"`
	MightHaveMore bool      `json:"mightHaveMore,omitempty"`
}

// Payload is one buffered unit of change data.
type Payload struct {
	Timestamp         string                  `json:"timestamp,omitempty"`
	ChangedTablesByID map[string]TableChanges `json:"changedTablesById,omitempty"`
}

type TableChanges struct {
	ChangedRecordsByID map[string]RecordChange `json:"changedRecordsById,omitempty"`
	DestroyedRecordIDs []string                `json:"destroyedRecordIds,omitempty"`
}

// RecordChange carries the record's state after the change (Current) and
// before it (Previous). A change with no Current but a Previous state is a
// deletion.
type RecordChange struct {
	Current  *RecordData `json:"current,omitempty"`
	Previous *RecordData `json:"previous,omitempty"`
}

type RecordData struct {
	CellValuesByFieldID map[string]any `json:"cellValuesByFieldId,omitempty"`
}
