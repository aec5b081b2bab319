// Package mbox reads a local mbox archive and exposes each stored mail
// as a decoded RawMessage. Parsing is deliberately forgiving: unknown
// charsets fall back to replacement characters and individual malformed
// entries are skipped instead of failing the whole archive.
package mbox

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"strings"

	gombox "github.com/emersion/go-mbox"
	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"

	"github.com/nhle/helpdesk-import/internal/model"
)

// Reader iterates over the messages of one mbox archive. Every call to
// Each or Messages re-opens the file and starts from the beginning;
// there is no mid-stream resume.
type Reader struct {
	path   string
	logger *slog.Logger
}

// NewReader creates a Reader for the archive at path.
func NewReader(path string, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{path: path, logger: logger}
}

// Each streams the archive, invoking fn for every message with a
// non-empty decoded body. Returning an error from fn stops iteration
// and propagates the error.
func (r *Reader) Each(fn func(model.RawMessage) error) error {
	f, err := os.Open(r.path)
	if err != nil {
		return fmt.Errorf("opening mbox %s: %w", r.path, err)
	}
	defer f.Close()

	mr := gombox.NewReader(f)
	for i := 0; ; i++ {
		section, err := mr.NextMessage()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading mbox entry %d: %w", i, err)
		}

		msg, ok := r.parseEntry(i, section)
		if !ok {
			continue
		}
		if strings.TrimSpace(msg.Body) == "" {
			continue
		}

		if err := fn(msg); err != nil {
			return err
		}
	}
}

// Messages collects the whole archive into memory.
func (r *Reader) Messages() ([]model.RawMessage, error) {
	var msgs []model.RawMessage
	err := r.Each(func(m model.RawMessage) error {
		msgs = append(msgs, m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

// parseEntry parses one mbox section into a RawMessage. Unknown
// charsets degrade to replacement characters; entries whose MIME
// structure cannot be parsed at all are dropped with a warning.
func (r *Reader) parseEntry(index int, section io.Reader) (model.RawMessage, bool) {
	entity, err := message.Read(section)
	if message.IsUnknownCharset(err) {
		r.logger.Debug("unknown charset, decoding with replacements",
			"entry", index, "error", err)
	} else if err != nil {
		r.logger.Warn("skipping unparsable mbox entry",
			"entry", index, "error", err)
		return model.RawMessage{}, false
	}

	header := decodeHeader(entity.Header)
	body := primaryText(entity)

	return model.RawMessage{
		Header: header,
		Body:   strings.ToValidUTF8(body, "�"),
	}, true
}

// decodeHeader converts an entity header into the importer's
// case-insensitive Header map, decoding RFC 2047 encoded words.
func decodeHeader(h message.Header) model.Header {
	out := make(model.Header)
	fields := h.Fields()
	for fields.Next() {
		value, err := fields.Text()
		if err != nil {
			// Encoded word with an unknown charset: keep the
			// raw value rather than dropping the header.
			value = fields.Value()
		}
		out.Set(fields.Key(), value)
	}
	return out
}

// primaryText extracts the message's main text payload: the first
// text/plain part, else the first text/html part, else the raw
// top-level body.
func primaryText(entity *message.Entity) string {
	mr := entity.MultipartReader()
	if mr == nil {
		return readAll(entity.Body)
	}

	var html string
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			break
		}

		mediaType, _, err := part.Header.ContentType()
		if err != nil {
			mediaType, _, _ = mime.ParseMediaType(
				part.Header.Get("Content-Type"))
		}
		switch {
		case strings.EqualFold(mediaType, "text/plain"):
			return readAll(part.Body)
		case strings.EqualFold(mediaType, "text/html") && html == "":
			html = readAll(part.Body)
		case strings.HasPrefix(mediaType, "multipart/"):
			if nested := primaryText(part); nested != "" {
				return nested
			}
		}
	}
	return html
}

// readAll drains a body reader, tolerating partial reads from
// truncated messages.
func readAll(r io.Reader) string {
	if r == nil {
		return ""
	}
	data, _ := io.ReadAll(r)
	return string(data)
}
