package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/dmitrijs2005/kitlibrarian/internal/logging"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

// SMTPConfig holds the relay settings. Delivery is skipped unless Host, User
// and Pass are all set.
type SMTPConfig struct {
	Enabled bool
	Host    string
	Port    int
	User    string
	Pass    string
	From    string
}

// Configured reports whether the relay settings are complete.
func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.User != "" && c.Pass != ""
}

// dialContext is a seam for tests.
var dialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, network, addr)
}

// SMTPTransport delivers messages through an authenticated SMTP relay.
// Port 465 uses implicit TLS; other ports upgrade with STARTTLS when offered.
type SMTPTransport struct {
	cfg    SMTPConfig
	logger logging.Logger
	now    func() time.Time
}

func NewSMTPTransport(cfg SMTPConfig, l logging.Logger) *SMTPTransport {
	if cfg.From == "" {
		cfg.From = DefaultFrom
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPTransport{cfg: cfg, logger: l.With("module", "smtp"), now: time.Now}
}

func (t *SMTPTransport) Send(ctx context.Context, m Message) (Outcome, error) {
	if !t.cfg.Enabled {
		t.logger.Debug(ctx, "notifications disabled, skipping email", "to", m.To)
		return Skipped, nil
	}
	if !t.cfg.Configured() {
		t.logger.Warn(ctx, "SMTP not fully configured, skipping email", "to", m.To)
		return Skipped, nil
	}

	raw, err := Compose(t.cfg.From, m, t.now())
	if err != nil {
		return Delivered, err
	}
	from, err := address(t.cfg.From)
	if err != nil {
		return Delivered, err
	}
	to, err := address(m.To)
	if err != nil {
		return Delivered, err
	}

	if err := t.deliver(ctx, from, to, raw); err != nil {
		return Delivered, fmt.Errorf("smtp delivery to %s: %w", to, err)
	}
	return Delivered, nil
}

func (t *SMTPTransport) deliver(ctx context.Context, from, to string, raw []byte) error {
	addr := net.JoinHostPort(t.cfg.Host, strconv.Itoa(t.cfg.Port))
	conn, err := dialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return err
		}
	}

	tlsConfig := &tls.Config{ServerName: t.cfg.Host}
	if t.cfg.Port == 465 {
		conn = tls.Client(conn, tlsConfig)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if t.cfg.Port != 465 {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(tlsConfig); err != nil {
				return err
			}
		}
	}
	if c.SupportsAuth(sasl.Plain) {
		if err := c.Auth(sasl.NewPlainClient("", t.cfg.User, t.cfg.Pass)); err != nil {
			return err
		}
	}
	if err := c.Mail(from, nil); err != nil {
		return err
	}
	if err := c.Rcpt(to, nil); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}
