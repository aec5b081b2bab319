package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketPayloadOmitsUnsetFields(t *testing.T) {
	payload := TicketPayload{
		Subject:     "no requester",
		Description: "<p>body</p>",
		Status:      TicketStatusClosed,
		Priority:    TicketPriorityLow,
	}

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))

	// Optional fields must be absent from the wire payload entirely,
	// not serialized as null.
	assert.NotContains(t, raw, "email")
	assert.NotContains(t, raw, "name")
	assert.NotContains(t, raw, "group_id")
	assert.NotContains(t, raw, "tags")
	assert.NotContains(t, raw, "custom_fields")

	assert.Contains(t, raw, "subject")
	assert.Contains(t, raw, "description")
	assert.Contains(t, raw, "status")
	assert.Contains(t, raw, "priority")
}

func TestTicketPayloadFullSerialization(t *testing.T) {
	payload := TicketPayload{
		Email:        "alice@example.com",
		Name:         "Alice",
		Subject:      "s",
		Description:  "d",
		Status:       TicketStatusClosed,
		Priority:     TicketPriorityLow,
		Tags:         []string{ImportedTag},
		GroupID:      42,
		CustomFields: map[string]string{"cf_original_date": "2015-06-01"},
	}

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Equal(t, "alice@example.com", raw["email"])
	assert.Equal(t, float64(42), raw["group_id"])
	assert.Equal(t, float64(5), raw["status"])
}

func TestHeaderCaseInsensitiveLookup(t *testing.T) {
	h := NewHeader(map[string]string{"x-gm-thrid": "123"})

	assert.Equal(t, "123", h.Get("X-GM-THRID"))
	assert.Equal(t, "123", h.Get("x-gm-thrid"))
	assert.True(t, h.Has("X-Gm-Thrid"))
	assert.Equal(t, "", h.Get("Missing"))
}

func TestRawMessageDateFallback(t *testing.T) {
	m := RawMessage{Header: NewHeader(map[string]string{"Date": "garbage"})}
	assert.True(t, m.Date().IsZero())

	m = RawMessage{Header: NewHeader(map[string]string{
		"Date": "Mon, 01 Jun 2015 10:00:00 +0000",
	})}
	assert.Equal(t, 2015, m.Date().Year())
}
