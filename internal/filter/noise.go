// Package filter classifies mail messages as importable or noise.
package filter

import (
	"net/mail"
	"regexp"
	"strings"

	"github.com/nhle/helpdesk-import/internal/model"
)

// adminSenderRe matches administrative sender addresses that never
// belong in a support ticket.
var adminSenderRe = regexp.MustCompile(`(?i)(mailer-daemon@|postmaster@|no[-_]reply@)`)

// skipLabels are provider labels that mark a message as unwanted.
var skipLabels = map[string]bool{
	"spam":  true,
	"trash": true,
}

// bulkPrecedence are Precedence header values used by mailing lists and
// automated senders.
var bulkPrecedence = map[string]bool{
	"bulk": true,
	"junk": true,
	"list": true,
}

// IsNoise reports whether a message should be skipped during import.
// It is a pure predicate over headers; absent headers behave as empty
// strings. The rules are checked in order and any match wins:
//
//  1. a Gmail label of spam or trash
//  2. a bulk/junk/list Precedence value
//  3. an Auto-Submitted header other than "no"
//  4. an X-Auto-Response-Suppress header covering "all"
//  5. an administrative sender (mailer-daemon, postmaster, no-reply)
func IsNoise(h model.Header) bool {
	for _, label := range strings.Split(h.Get("X-Gmail-Labels"), ",") {
		if skipLabels[strings.ToLower(strings.TrimSpace(label))] {
			return true
		}
	}

	if bulkPrecedence[strings.ToLower(h.Get("Precedence"))] {
		return true
	}

	if auto := strings.ToLower(strings.TrimSpace(h.Get("Auto-Submitted"))); auto != "" && auto != "no" {
		return true
	}

	if strings.Contains(strings.ToLower(h.Get("X-Auto-Response-Suppress")), "all") {
		return true
	}

	return adminSenderRe.MatchString(senderAddress(h.Get("From")))
}

// senderAddress extracts the bare address from a From header value,
// falling back to the raw value when it cannot be parsed.
func senderAddress(from string) string {
	if from == "" {
		return ""
	}
	addr, err := mail.ParseAddress(from)
	if err != nil {
		return strings.TrimSpace(from)
	}
	return addr.Address
}
