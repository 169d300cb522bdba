package mail

import (
	"bytes"
	"fmt"
	"io"
	"time"

	gomail "github.com/emersion/go-message/mail"
)

// DefaultFrom is used when no sender address is configured.
const DefaultFrom = "Kit Librarian <no-reply@example.com>"

// Compose renders m as an RFC 5322 multipart/alternative message.
func Compose(from string, m Message, at time.Time) ([]byte, error) {
	fromAddr, err := gomail.ParseAddress(from)
	if err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", from, err)
	}
	toAddr, err := gomail.ParseAddress(m.To)
	if err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", m.To, err)
	}

	var h gomail.Header
	h.SetDate(at)
	h.SetAddressList("From", []*gomail.Address{fromAddr})
	h.SetAddressList("To", []*gomail.Address{toAddr})
	h.SetSubject(m.Subject)
	if err := h.GenerateMessageID(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	mw, err := gomail.CreateWriter(&buf, h)
	if err != nil {
		return nil, err
	}
	alt, err := mw.CreateInline()
	if err != nil {
		return nil, err
	}
	if err := writePart(alt, "text/plain", m.Text); err != nil {
		return nil, err
	}
	if err := writePart(alt, "text/html", m.HTML); err != nil {
		return nil, err
	}
	if err := alt.Close(); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writePart(w *gomail.InlineWriter, contentType, body string) error {
	var ph gomail.InlineHeader
	ph.SetContentType(contentType, map[string]string{"charset": "utf-8"})
	pw, err := w.CreatePart(ph)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(pw, body); err != nil {
		return err
	}
	return pw.Close()
}

// address extracts the bare address used on the SMTP envelope.
func address(s string) (string, error) {
	a, err := gomail.ParseAddress(s)
	if err != nil {
		return "", err
	}
	return a.Address, nil
}
