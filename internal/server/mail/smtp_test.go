package mail

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net"
	"net/textproto"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/kitlibrarian/internal/logging"
	gomail "github.com/emersion/go-message/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type smtpSession struct {
	authed bool
	creds  string
	from   string
	to     string
	data   string
}

// startFakeSMTP accepts a single connection and speaks just enough SMTP for
// the client. withAuth controls whether AUTH PLAIN is advertised.
func startFakeSMTP(t *testing.T, withAuth bool) (string, int, <-chan smtpSession) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	got := make(chan smtpSession, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		tp := textproto.NewConn(conn)
		var s smtpSession
		_ = tp.PrintfLine("220 localhost ESMTP")
		for {
			line, err := tp.ReadLine()
			if err != nil {
				return
			}
			upper := strings.ToUpper(line)
			switch {
			case strings.HasPrefix(upper, "EHLO"):
				if withAuth {
					_ = tp.PrintfLine("250-localhost")
					_ = tp.PrintfLine("250 AUTH PLAIN")
				} else {
					_ = tp.PrintfLine("250 localhost")
				}
			case strings.HasPrefix(upper, "AUTH PLAIN "):
				s.authed = true
				if b, err := base64.StdEncoding.DecodeString(line[len("AUTH PLAIN "):]); err == nil {
					s.creds = string(b)
				}
				_ = tp.PrintfLine("235 2.7.0 Authentication successful")
			case strings.HasPrefix(upper, "MAIL FROM:"):
				s.from = strings.Trim(line[len("MAIL FROM:"):], "<>")
				_ = tp.PrintfLine("250 OK")
			case strings.HasPrefix(upper, "RCPT TO:"):
				s.to = strings.Trim(line[len("RCPT TO:"):], "<>")
				_ = tp.PrintfLine("250 OK")
			case upper == "DATA":
				_ = tp.PrintfLine("354 End data with <CR><LF>.<CR><LF>")
				b, err := tp.ReadDotBytes()
				if err != nil {
					return
				}
				s.data = string(b)
				_ = tp.PrintfLine("250 OK queued")
			case upper == "QUIT":
				_ = tp.PrintfLine("221 Bye")
				got <- s
				return
			default:
				_ = tp.PrintfLine("502 Command not implemented")
			}
		}
	}()

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return host, port, got
}

func testMessage() Message {
	return Message{
		BorrowerID: "s1",
		To:         "Ann <ann@example.com>",
		Subject:    "Overdue library books",
		Text:       "Hello Ann,",
		HTML:       "<p>Hello Ann,</p>",
	}
}

func TestSMTPConfig_Configured(t *testing.T) {
	assert.True(t, SMTPConfig{Host: "h", User: "u", Pass: "p"}.Configured())
	assert.False(t, SMTPConfig{Host: "h", User: "u"}.Configured())
	assert.False(t, SMTPConfig{User: "u", Pass: "p"}.Configured())
}

func TestNewSMTPTransport_Defaults(t *testing.T) {
	tr := NewSMTPTransport(SMTPConfig{}, logging.Nop{})
	assert.Equal(t, DefaultFrom, tr.cfg.From)
	assert.Equal(t, 587, tr.cfg.Port)
}

func TestSend_SkipsWhenDisabledOrUnconfigured(t *testing.T) {
	orig := dialContext
	t.Cleanup(func() { dialContext = orig })
	dialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		t.Fatal("must not dial")
		return nil, nil
	}

	disabled := NewSMTPTransport(SMTPConfig{Enabled: false, Host: "h", User: "u", Pass: "p"}, logging.Nop{})
	out, err := disabled.Send(context.Background(), testMessage())
	require.NoError(t, err)
	assert.Equal(t, Skipped, out)

	unconfigured := NewSMTPTransport(SMTPConfig{Enabled: true, Host: "h"}, logging.Nop{})
	out, err = unconfigured.Send(context.Background(), testMessage())
	require.NoError(t, err)
	assert.Equal(t, Skipped, out)
}

func TestSend_DeliversOverSMTP(t *testing.T) {
	host, port, got := startFakeSMTP(t, true)

	tr := NewSMTPTransport(SMTPConfig{Enabled: true, Host: host, Port: port, User: "u", Pass: "p"}, logging.Nop{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out, err := tr.Send(ctx, testMessage())
	require.NoError(t, err)
	assert.Equal(t, Delivered, out)

	select {
	case s := <-got:
		assert.True(t, s.authed)
		assert.Equal(t, "\x00u\x00p", s.creds)
		assert.Equal(t, "no-reply@example.com", s.from)
		assert.Equal(t, "ann@example.com", s.to)
		assert.Contains(t, s.data, "Subject: Overdue library books")
		assert.Contains(t, s.data, "Hello Ann,")
	case <-time.After(5 * time.Second):
		t.Fatal("fake SMTP server did not receive the message")
	}
}

func TestSend_SkipsAuthWhenNotOffered(t *testing.T) {
	host, port, got := startFakeSMTP(t, false)

	tr := NewSMTPTransport(SMTPConfig{Enabled: true, Host: host, Port: port, User: "u", Pass: "p"}, logging.Nop{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out, err := tr.Send(ctx, testMessage())
	require.NoError(t, err)
	assert.Equal(t, Delivered, out)

	select {
	case s := <-got:
		assert.False(t, s.authed)
		assert.Equal(t, "ann@example.com", s.to)
	case <-time.After(5 * time.Second):
		t.Fatal("fake SMTP server did not receive the message")
	}
}

func TestSend_DialErrorIsDeliveryError(t *testing.T) {
	orig := dialContext
	t.Cleanup(func() { dialContext = orig })
	dialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		return nil, errors.New("connection refused")
	}

	tr := NewSMTPTransport(SMTPConfig{Enabled: true, Host: "smtp.example.com", User: "u", Pass: "p"}, logging.Nop{})
	_, err := tr.Send(context.Background(), testMessage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp delivery to ann@example.com")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestSend_InvalidRecipient(t *testing.T) {
	tr := NewSMTPTransport(SMTPConfig{Enabled: true, Host: "h", User: "u", Pass: "p"}, logging.Nop{})
	m := testMessage()
	m.To = "not an address"
	_, err := tr.Send(context.Background(), m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid recipient")
}

func TestCompose_MultipartAlternative(t *testing.T) {
	at := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)
	raw, err := Compose(DefaultFrom, testMessage(), at)
	require.NoError(t, err)

	mr, err := gomail.CreateReader(strings.NewReader(string(raw)))
	require.NoError(t, err)

	subject, err := mr.Header.Subject()
	require.NoError(t, err)
	assert.Equal(t, "Overdue library books", subject)

	date, err := mr.Header.Date()
	require.NoError(t, err)
	assert.True(t, at.Equal(date))

	bodies := map[string]string{}
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		if h, ok := p.Header.(*gomail.InlineHeader); ok {
			ct, _, err := h.ContentType()
			require.NoError(t, err)
			b, err := io.ReadAll(p.Body)
			require.NoError(t, err)
			bodies[ct] = string(b)
		}
	}
	assert.Equal(t, "Hello Ann,", bodies["text/plain"])
	assert.Equal(t, "<p>Hello Ann,</p>", bodies["text/html"])
}

func TestCompose_InvalidSender(t *testing.T) {
	_, err := Compose("???", testMessage(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid sender")
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "delivered", Delivered.String())
	assert.Equal(t, "skipped", Skipped.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}
