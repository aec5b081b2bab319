package model

import (
	"net/mail"
	"net/textproto"
	"time"
)

// Header is a case-insensitive mapping of mail header names to their
// decoded values. Keys are normalized to canonical MIME form on both
// insert and lookup, so callers never need to care about the casing a
// particular mail client used on the wire. A lookup of an absent header
// returns the empty string.
type Header map[string]string

// NewHeader builds a Header from raw name/value pairs, normalizing keys.
// Later duplicates of the same header overwrite earlier ones.
func NewHeader(pairs map[string]string) Header {
	h := make(Header, len(pairs))
	for name, value := range pairs {
		h.Set(name, value)
	}
	return h
}

// Get returns the value for the given header name, or "" if absent.
func (h Header) Get(name string) string {
	return h[textproto.CanonicalMIMEHeaderKey(name)]
}

// Set stores a value under the canonical form of the given header name.
func (h Header) Set(name, value string) {
	h[textproto.CanonicalMIMEHeaderKey(name)] = value
}

// Has reports whether the header is present, even with an empty value.
func (h Header) Has(name string) bool {
	_, ok := h[textproto.CanonicalMIMEHeaderKey(name)]
	return ok
}

// RawMessage is a single mail message lifted out of the mbox archive:
// its decoded headers and its decoded text body. Instances are built
// once by the mbox reader and never mutated afterwards.
type RawMessage struct {
	// Header holds the RFC 2047-decoded header values.
	Header Header

	// Body is the decoded primary text payload of the message.
	Body string
}

// Date returns the parsed Date header. Messages with a missing or
// unparsable date report the zero time, which sorts before any real
// timestamp and keeps ordering deterministic.
func (m RawMessage) Date() time.Time {
	t, err := mail.ParseDate(m.Header.Get("Date"))
	if err != nil {
		return time.Time{}
	}
	return t
}
