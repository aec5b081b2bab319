// Package thread groups mail messages into logical conversations and
// renders one ticket payload per conversation.
package thread

import (
	"html"
	"net/mail"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/nhle/helpdesk-import/internal/model"
)

// htmlTagRe detects markup in a message body. Bodies that already look
// like HTML are embedded as-is; everything else is escaped.
var htmlTagRe = regexp.MustCompile(`(?is)<[a-z].*>`)

// noSubject is the ticket subject used when a thread has none.
const noSubject = "(no subject)"

// blockSeparator joins the per-message blocks of a description.
const blockSeparator = "<hr>"

// Thread is one logical conversation: all messages sharing a key.
type Thread struct {
	// Key is the dedup/resume identifier for this conversation.
	Key string

	// Messages holds the thread's messages in arrival order; BuildTicket
	// sorts them by send time.
	Messages []model.RawMessage
}

// Group partitions messages into threads by key, preserving the order
// in which each thread was first seen in the archive.
func Group(msgs []model.RawMessage) []Thread {
	var threads []Thread
	index := make(map[string]int)

	for _, m := range msgs {
		key := Key(m.Header)
		if i, ok := index[key]; ok {
			threads[i].Messages = append(threads[i].Messages, m)
			continue
		}
		index[key] = len(threads)
		threads = append(threads, Thread{
			Key:      key,
			Messages: []model.RawMessage{m},
		})
	}

	return threads
}

// BuildOptions carries the per-run settings a ticket build needs.
type BuildOptions struct {
	// DateField is the helpdesk custom field receiving the thread's
	// original send date.
	DateField string

	// GroupID is the helpdesk group the ticket is assigned to.
	GroupID int64
}

// BuildTicket renders one ticket covering a whole thread. Messages are
// ordered by send time; the earliest message supplies the requester
// identity, the subject, and the original-date custom field. Messages
// without a parsable date sort first and report the Unix epoch.
func BuildTicket(t Thread, opts BuildOptions) model.TicketPayload {
	msgs := make([]model.RawMessage, len(t.Messages))
	copy(msgs, t.Messages)
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Date().Before(msgs[j].Date())
	})

	blocks := make([]string, 0, len(msgs))
	for _, m := range msgs {
		blocks = append(blocks, renderBlock(m))
	}

	first := msgs[0]
	name, email := senderIdentity(first.Header.Get("From"))

	subject := strings.TrimSpace(first.Header.Get("Subject"))
	if subject == "" {
		subject = noSubject
	}

	return model.TicketPayload{
		Email:       email,
		Name:        name,
		Subject:     subject,
		Description: strings.Join(blocks, blockSeparator),
		Status:      model.TicketStatusClosed,
		Priority:    model.TicketPriorityLow,
		Tags:        []string{model.ImportedTag},
		GroupID:     opts.GroupID,
		CustomFields: map[string]string{
			opts.DateField: sentAt(first).Format("2006-01-02"),
		},
	}
}

// renderBlock formats one message as an HTML fragment: a bold header
// line with timestamp and sender, then the body. Bodies that already
// contain markup are embedded untouched; plain text is escaped with
// line breaks converted to <br>.
func renderBlock(m model.RawMessage) string {
	ts := sentAt(m).Format("2006-01-02 15:04:05")
	sender := strings.TrimSpace(m.Header.Get("From"))

	var b strings.Builder
	b.WriteString("<strong>")
	b.WriteString(html.EscapeString(ts))
	if sender != "" {
		b.WriteString(" ")
		b.WriteString(html.EscapeString(sender))
	}
	b.WriteString("</strong>")
	head := b.String()

	if htmlTagRe.MatchString(m.Body) {
		return "<p>" + head + "</p>" + m.Body
	}

	bodyHTML := strings.ReplaceAll(html.EscapeString(m.Body), "\n", "<br>")
	return "<p>" + head + "<br>" + bodyHTML + "</p>"
}

// sentAt returns the message's send time, substituting the Unix epoch
// when the Date header is missing or unparsable.
func sentAt(m model.RawMessage) time.Time {
	if d := m.Date(); !d.IsZero() {
		return d
	}
	return time.Unix(0, 0).UTC()
}

// senderIdentity splits a From header into display name and address.
// Unparsable values are treated as having neither.
func senderIdentity(from string) (name, email string) {
	if from == "" {
		return "", ""
	}
	addr, err := mail.ParseAddress(from)
	if err != nil {
		return "", ""
	}
	return strings.TrimSpace(addr.Name), addr.Address
}
