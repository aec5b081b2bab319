package helpdesk

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/helpdesk-import/internal/model"
)

func TestCreateTicketSendsBasicAuthAndJSON(t *testing.T) {
	var gotAuth string
	var gotBody map[string]json.RawMessage

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/tickets", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")

		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, &gotBody))

		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret-key")
	err := c.CreateTicket(context.Background(), model.TicketPayload{
		Subject:     "s",
		Description: "d",
		Status:      model.TicketStatusClosed,
		Priority:    model.TicketPriorityLow,
	})
	require.NoError(t, err)

	// Basic auth is api key as username, fixed placeholder password.
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth("secret-key", "X")
	assert.Equal(t, req.Header.Get("Authorization"), gotAuth)

	// Unset optional fields never reach the wire.
	assert.NotContains(t, gotBody, "email")
	assert.NotContains(t, gotBody, "group_id")
	assert.Contains(t, gotBody, "subject")
}

func TestCreateTicketErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		transient bool
	}{
		{"server error", http.StatusInternalServerError, true},
		{"bad gateway", http.StatusBadGateway, true},
		{"rate limited", http.StatusTooManyRequests, true},
		{"bad request", http.StatusBadRequest, false},
		{"unauthorized", http.StatusUnauthorized, false},
		{"not found", http.StatusNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "k")
			err := c.CreateTicket(context.Background(), model.TicketPayload{Subject: "s"})
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.transient, IsTransient(err))
		})
	}
}

func TestConnectionFailureIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewClient(srv.URL, "k")
	err := c.CreateTicket(context.Background(), model.TicketPayload{Subject: "s"})
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}

func TestTicketFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ticket_fields", r.URL.Path)
		json.NewEncoder(w).Encode([]TicketField{
			{ID: 1, Name: "cf_original_date", Label: "Original date", Type: "custom_date"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	fields, err := c.TicketFields(context.Background())
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "cf_original_date", fields[0].Name)
}

func TestGroups(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/groups", r.URL.Path)
		json.NewEncoder(w).Encode([]Group{{ID: 9, Name: "imported"}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	groups, err := c.Groups(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, int64(9), groups[0].ID)
}
