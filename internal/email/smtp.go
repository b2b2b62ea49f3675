// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/pdiddy/research-digest/pkg/types"
)

// DefaultDialTimeout bounds connection setup when ctx has no deadline.
const DefaultDialTimeout = 30 * time.Second

// SMTPProvider sends through an SMTP relay, upgrading with STARTTLS when
// configured and authenticating with PLAIN when credentials are set.
type SMTPProvider struct {
	cfg types.SMTPConfig

	// TLSConfig overrides the STARTTLS client config (tests).
	TLSConfig *tls.Config
}

// NewSMTPProvider returns a provider for cfg.
func NewSMTPProvider(cfg types.SMTPConfig) *SMTPProvider {
	return &SMTPProvider{cfg: cfg}
}

// Name returns "smtp".
func (p *SMTPProvider) Name() string { return "smtp" }

// Send delivers msg to every recipient in one transaction.
func (p *SMTPProvider) Send(ctx context.Context, msg Message) error {
	data, err := build(msg, time.Now())
	if err != nil {
		return &SendError{Kind: KindTransport, Err: fmt.Errorf("building message: %w", err)}
	}

	addr := net.JoinHostPort(p.cfg.Host, strconv.Itoa(p.cfg.Port))
	dialer := net.Dialer{Timeout: DefaultDialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return &SendError{Kind: KindConnect, Err: err}
	}
	if dl, ok := ctx.Deadline(); ok {
		conn.SetDeadline(dl)
	}

	c, err := smtp.NewClient(conn, p.cfg.Host)
	if err != nil {
		conn.Close()
		return &SendError{Kind: KindConnect, Err: err}
	}
	defer c.Close()

	if p.cfg.UseTLS {
		tc := p.TLSConfig
		if tc == nil {
			tc = &tls.Config{ServerName: p.cfg.Host}
		}
		if err := c.StartTLS(tc); err != nil {
			return &SendError{Kind: KindConnect, Err: fmt.Errorf("starttls: %w", err)}
		}
	}

	if p.cfg.User != "" && p.cfg.Password != "" {
		if err := c.Auth(smtp.PlainAuth("", p.cfg.User, p.cfg.Password, p.cfg.Host)); err != nil {
			return &SendError{Kind: KindAuth, Err: err}
		}
	}

	if err := c.Mail(msg.From); err != nil {
		return &SendError{Kind: KindTransport, Err: err}
	}
	for _, rcpt := range msg.To {
		if err := c.Rcpt(rcpt); err != nil {
			return &SendError{Kind: KindRecipients, Err: fmt.Errorf("%s: %w", rcpt, err)}
		}
	}

	w, err := c.Data()
	if err != nil {
		return &SendError{Kind: KindTransport, Err: err}
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return &SendError{Kind: KindTransport, Err: err}
	}
	if err := w.Close(); err != nil {
		return &SendError{Kind: KindTransport, Err: err}
	}

	// The message is accepted once DATA completes; a failed QUIT is not
	// a delivery failure.
	_ = c.Quit()
	return nil
}
