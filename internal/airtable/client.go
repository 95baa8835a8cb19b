// Package airtable is a client for the slice of the Airtable Web API this
// service uses: user metadata, base schema, record writes, the webhook
// lifecycle, and the webhook payload queue.
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultBaseURL = "https://api.airtable.com/v0"

// Client talks to the Airtable API as one access token. Every request is
// bounded by the HTTP client timeout, so a stalled remote call surfaces as
// a transient error instead of blocking its caller.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

func NewClient(token string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    defaultBaseURL,
		token:      token,
	}
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Op: op, Err: fmt.Errorf("marshal request: %w", err)}
		}
		rdr = bytes.NewReader(data)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &Error{Op: op, StatusCode: resp.StatusCode, Body: string(data)}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &Error{Op: op, Err: fmt.Errorf("decode response: %w", err)}
		}
	}
	return nil
}

// ---------------------------------------------------------------
// Metadata
// ---------------------------------------------------------------

func (c *Client) WhoAmI(ctx context.Context) (*UserInfo, error) {
	var info UserInfo
	if err := c.do(ctx, "whoami", http.MethodGet, "/meta/whoami", nil, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) ListBases(ctx context.Context) ([]Base, error) {
	var out struct {
		Bases []Base `json:"bases"`
	}
	if err := c.do(ctx, "list bases", http.MethodGet, "/meta/bases", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Bases, nil
}

func (c *Client) ListTables(ctx context.Context, baseID string) ([]Table, error) {
	var out struct {
		Tables []Table `json:"tables"`
	}
	path := "/meta/bases/" + baseID + "/tables"
	if err := c.do(ctx, "list tables", http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Tables, nil
}

// ---------------------------------------------------------------
// Records
// ---------------------------------------------------------------

func (c *Client) CreateRecord(ctx context.Context, baseID, tableID string, fields map[string]any) (*Record, error) {
	var rec Record
	path := "/" + baseID + "/" + tableID
	body := map[string]any{"fields": fields}
	if err := c.do(ctx, "create record", http.MethodPost, path, nil, body, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) UpdateRecord(ctx context.Context, baseID, tableID, recordID string, fields map[string]any) (*Record, error) {
	var rec Record
	path := "/" + baseID + "/" + tableID + "/" + recordID
	body := map[string]any{"fields": fields}
	if err := c.do(ctx, "update record", http.MethodPatch, path, nil, body, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) DeleteRecord(ctx context.Context, baseID, tableID, recordID string) error {
	path := "/" + baseID + "/" + tableID + "/" + recordID
	return c.do(ctx, "delete record", http.MethodDelete, path, nil, nil, nil)
}

// ---------------------------------------------------------------
// Webhooks
// ---------------------------------------------------------------

func (c *Client) CreateWebhook(ctx context.Context, baseID, notificationURL string, spec WebhookSpec) (*Webhook, error) {
	var wh Webhook
	path := "/bases/" + baseID + "/webhooks"
	body := map[string]any{
		"notificationUrl": notificationURL,
		"specification":   spec,
	}
	if err := c.do(ctx, "create webhook", http.MethodPost, path, nil, body, &wh); err != nil {
		return nil, err
	}
	return &wh, nil
}

func (c *Client) EnableWebhook(ctx context.Context, baseID, webhookID string) error {
	path := "/bases/" + baseID + "/webhooks/" + webhookID + "/enableNotifications"
	return c.do(ctx, "enable webhook", http.MethodPost, path, nil, map[string]any{"enable": true}, nil)
}

func (c *Client) RefreshWebhook(ctx context.Context, baseID, webhookID string) (*RefreshResult, error) {
	var out RefreshResult
	path := "/bases/" + baseID + "/webhooks/" + webhookID + "/refresh"
	if err := c.do(ctx, "refresh webhook", http.MethodPost, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListWebhooks(ctx context.Context, baseID string) ([]Webhook, error) {
	var out struct {
		Webhooks []Webhook `json:"webhooks"`
	}
	path := "/bases/" + baseID + "/webhooks"
	if err := c.do(ctx, "list webhooks", http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Webhooks, nil
}

func (c *Client) DeleteWebhook(ctx context.Context, baseID, webhookID string) error {
	path := "/bases/" + baseID + "/webhooks/" + webhookID
	return c.do(ctx, "delete webhook", http.MethodDelete, path, nil, nil, nil)
}

// GetWebhookPayloads fetches one page of the payload queue starting at
// cursor. A cursor of zero or less asks for the queue's beginning.
func (c *Client) GetWebhookPayloads(ctx context.Context, baseID, webhookID string, cursor int) (*PayloadList, error) {
	var out PayloadList
	path := "/bases/" + baseID + "/webhooks/" + webhookID + "/payloads"
	var query url.Values
	if cursor > 0 {
		query = url.Values{"cursor": []string{strconv.Itoa(cursor)}}
	}
	if err := c.do(ctx, "get webhook payloads", http.MethodGet, path, query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
