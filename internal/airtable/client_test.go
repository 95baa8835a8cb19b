package airtable

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient("test-token", 5*time.Second)
	c.baseURL = srv.URL
	return c
}

func TestGetWebhookPayloadsCursorParam(t *testing.T) {
	var gotPath, gotCursor, gotAuth string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotCursor = r.URL.Query().Get("cursor")
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{
			"payloads":      []any{},
			"cursor":        8,
			"mightHaveMore": false,
		})
	})

	out, err := c.GetWebhookPayloads(context.Background(), "appBase", "achHook", 5)
	require.NoError(t, err)
	assert.Equal(t, "/bases/appBase/webhooks/achHook/payloads", gotPath)
	assert.Equal(t, "5", gotCursor)
	assert.Equal(t, "Bearer test-token", gotAuth)
	require.NotNil(t, out.Cursor)
	assert.Equal(t, 8, *out.Cursor)
	assert.False(t, out.MightHaveMore)
}

// A zero cursor means "from the beginning" and must not be sent upstream.
func TestGetWebhookPayloadsZeroCursorOmitted(t *testing.T) {
	var hadCursor bool
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		hadCursor = r.URL.Query().Has("cursor")
		json.NewEncoder(w).Encode(map[string]any{"payloads": []any{}})
	})

	out, err := c.GetWebhookPayloads(context.Background(), "appBase", "achHook", 0)
	require.NoError(t, err)
	assert.False(t, hadCursor)
	assert.Nil(t, out.Cursor)
}

func TestGetWebhookPayloadsDecodesChanges(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"payloads": []any{map[string]any{
				"changedTablesById": map[string]any{
					"tblMain": map[string]any{
						"changedRecordsById": map[string]any{
							"rec1": map[string]any{
								"current": map[string]any{
									"cellValuesByFieldId": map[string]any{"fld1": "v"},
								},
							},
						},
						"destroyedRecordIds": []string{"rec2"},
					},
				},
			}},
			"cursor": 3,
		})
	})

	out, err := c.GetWebhookPayloads(context.Background(), "appBase", "achHook", 0)
	require.NoError(t, err)
	require.Len(t, out.Payloads, 1)

	changes, ok := out.Payloads[0].ChangedTablesByID["tblMain"]
	require.True(t, ok)
	change := changes.ChangedRecordsByID["rec1"]
	require.NotNil(t, change.Current)
	assert.Equal(t, map[string]any{"fld1": "v"}, change.Current.CellValuesByFieldID)
	assert.Nil(t, change.Previous)
	assert.Equal(t, []string{"rec2"}, changes.DestroyedRecordIDs)
}

func TestCreateRecordSendsFields(t *testing.T) {
	var body map[string]any
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/appBase/tblMain", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		json.NewEncoder(w).Encode(map[string]any{"id": "recNew", "fields": body["fields"]})
	})

	rec, err := c.CreateRecord(context.Background(), "appBase", "tblMain", map[string]any{"Name": "x"})
	require.NoError(t, err)
	assert.Equal(t, "recNew", rec.ID)
	assert.Equal(t, map[string]any{"Name": "x"}, body["fields"])
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		temporary bool
	}{
		{"rate limited", http.StatusTooManyRequests, true},
		{"server error", http.StatusBadGateway, true},
		{"unauthorized", http.StatusUnauthorized, false},
		{"unprocessable", http.StatusUnprocessableEntity, false},
		{"not found", http.StatusNotFound, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"error":"nope"}`, tt.status)
			})

			_, err := c.GetWebhookPayloads(context.Background(), "appBase", "achHook", 0)
			require.Error(t, err)
			var ae *Error
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, tt.status, ae.StatusCode)
			assert.Equal(t, tt.temporary, IsTemporary(err))
		})
	}
}

func TestTransportErrorIsTemporary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on
	c := NewClient("test-token", time.Second)
	c.baseURL = srv.URL

	_, err := c.WhoAmI(context.Background())
	require.Error(t, err)
	assert.True(t, IsTemporary(err))
}

func TestIsTemporaryOtherErrors(t *testing.T) {
	assert.False(t, IsTemporary(nil))
	assert.False(t, IsTemporary(context.Canceled))
}
