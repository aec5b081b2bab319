// Package helpdesk is a thin client for the helpdesk REST API: the
// three endpoints the importer needs, plus a retrying Pusher for
// ticket creation.
package helpdesk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nhle/helpdesk-import/internal/model"
)

// basicAuthPassword is the fixed placeholder the API expects alongside
// the key-as-username.
const basicAuthPassword = "X"

// maxErrorBodyRead limits how much of an error response body is kept
// for error messages.
const maxErrorBodyRead = 4096

// Client is a hand-rolled HTTP client for the helpdesk REST API v2.
// It handles basic-auth with the API key, JSON marshaling, and maps
// failures onto the APIError/TransportError taxonomy. Retrying is the
// Pusher's concern, not the Client's.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a helpdesk client. baseURL is the API root (e.g.
// https://acme.freshdesk.com/api/v2) and apiKey the agent's API key.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// TicketFields lists the ticket field definitions of the helpdesk.
func (c *Client) TicketFields(ctx context.Context) ([]TicketField, error) {
	var fields []TicketField
	if err := c.do(ctx, http.MethodGet, "/ticket_fields", nil, &fields); err != nil {
		return nil, fmt.Errorf("listing ticket fields: %w", err)
	}
	return fields, nil
}

// Groups lists the agent groups of the helpdesk.
func (c *Client) Groups(ctx context.Context) ([]Group, error) {
	var groups []Group
	if err := c.do(ctx, http.MethodGet, "/groups", nil, &groups); err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}
	return groups, nil
}

// CreateTicket creates one ticket. Any 2xx response is success.
func (c *Client) CreateTicket(ctx context.Context, payload model.TicketPayload) error {
	return c.do(ctx, http.MethodPost, "/tickets", payload, nil)
}

// do builds the request, handles auth and JSON (de)serialization, and
// classifies failures.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	result interface{},
) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.SetBasicAuth(c.apiKey, basicAuthPassword)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyRead))
		return &APIError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Err: err}
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("unmarshaling response from %s %s: %w", method, path, err)
	}

	return nil
}
