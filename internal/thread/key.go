package thread

import (
	"github.com/google/uuid"

	"github.com/nhle/helpdesk-import/internal/model"
)

// Key derives the stable identifier used for dedup and resume. Gmail
// exports carry a numeric thread id; other archives fall back to the
// Message-ID. A message with neither gets a random token, which makes
// it its own single-message thread.
func Key(h model.Header) string {
	if id := h.Get("X-GM-THRID"); id != "" {
		return id
	}
	if id := h.Get("Message-Id"); id != "" {
		return id
	}
	return uuid.NewString()
}
