package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/helpdesk-import/internal/model"
)

func TestIsNoise(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    bool
	}{
		{
			name: "plain message",
			headers: map[string]string{
				"From":    "Alice <alice@example.com>",
				"Subject": "Help with my order",
			},
			want: false,
		},
		{
			name:    "no headers at all",
			headers: map[string]string{},
			want:    false,
		},
		{
			name: "gmail spam label",
			headers: map[string]string{
				"X-Gmail-Labels": "Inbox,Spam",
				"From":           "alice@example.com",
			},
			want: true,
		},
		{
			name: "gmail trash label mixed case",
			headers: map[string]string{
				"X-Gmail-Labels": "Archived, TRASH",
			},
			want: true,
		},
		{
			name: "gmail labels without markers",
			headers: map[string]string{
				"X-Gmail-Labels": "Inbox,Important",
			},
			want: false,
		},
		{
			name:    "precedence bulk",
			headers: map[string]string{"Precedence": "bulk"},
			want:    true,
		},
		{
			name:    "precedence junk uppercase",
			headers: map[string]string{"Precedence": "Junk"},
			want:    true,
		},
		{
			name:    "precedence list",
			headers: map[string]string{"Precedence": "list"},
			want:    true,
		},
		{
			name:    "precedence first-class",
			headers: map[string]string{"Precedence": "first-class"},
			want:    false,
		},
		{
			name:    "auto-submitted auto-replied",
			headers: map[string]string{"Auto-Submitted": "auto-replied"},
			want:    true,
		},
		{
			name:    "auto-submitted no",
			headers: map[string]string{"Auto-Submitted": "No"},
			want:    false,
		},
		{
			name:    "auto-submitted empty",
			headers: map[string]string{"Auto-Submitted": ""},
			want:    false,
		},
		{
			name:    "auto-response-suppress all",
			headers: map[string]string{"X-Auto-Response-Suppress": "DR, All"},
			want:    true,
		},
		{
			name:    "auto-response-suppress partial",
			headers: map[string]string{"X-Auto-Response-Suppress": "DR, OOF"},
			want:    false,
		},
		{
			name:    "mailer-daemon sender",
			headers: map[string]string{"From": "Mail Delivery <MAILER-DAEMON@example.com>"},
			want:    true,
		},
		{
			name:    "postmaster sender",
			headers: map[string]string{"From": "postmaster@example.com"},
			want:    true,
		},
		{
			name:    "no-reply sender",
			headers: map[string]string{"From": "Acme <no-reply@acme.com>"},
			want:    true,
		},
		{
			name:    "no_reply sender",
			headers: map[string]string{"From": "no_reply@acme.com"},
			want:    true,
		},
		{
			name:    "ordinary sender",
			headers: map[string]string{"From": "Bob <bob@example.com>"},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := model.NewHeader(tt.headers)
			assert.Equal(t, tt.want, IsNoise(h))
		})
	}
}

func TestIsNoiseHeaderCaseInsensitive(t *testing.T) {
	h := model.NewHeader(map[string]string{"x-gmail-labels": "spam"})
	assert.True(t, IsNoise(h))
}
