// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package email delivers rendered digests.
package email

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"strings"
	"sync"
	"time"
)

// Message is one digest email with plain-text and HTML alternatives.
type Message struct {
	From    string
	To      []string
	Subject string
	Text    string
	HTML    string
}

// Provider delivers messages. Every failure is a *SendError.
type Provider interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Kind classifies a delivery failure.
type Kind string

const (
	KindConnect    Kind = "connect"
	KindAuth       Kind = "auth"
	KindRecipients Kind = "recipients"
	KindTransport  Kind = "transport"
)

// SendError wraps any delivery failure with its kind.
type SendError struct {
	Kind Kind
	Err  error
}

func (e *SendError) Error() string {
	switch e.Kind {
	case KindConnect:
		return fmt.Sprintf("failed to connect to SMTP server: %v", e.Err)
	case KindAuth:
		return fmt.Sprintf("SMTP authentication failed: %v", e.Err)
	case KindRecipients:
		return fmt.Sprintf("recipients refused: %v", e.Err)
	default:
		return fmt.Sprintf("SMTP error: %v", e.Err)
	}
}

func (e *SendError) Unwrap() error { return e.Err }

// build renders msg as a multipart/alternative MIME message. The text
// part comes first so clients that prefer the last part show HTML.
func build(msg Message, now time.Time) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	parts := []struct {
		contentType string
		content     string
	}{
		{"text/plain; charset=utf-8", msg.Text},
		{"text/html; charset=utf-8", msg.HTML},
	}
	for _, p := range parts {
		w, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {p.contentType},
			"Content-Transfer-Encoding": {"quoted-printable"},
		})
		if err != nil {
			return nil, err
		}
		qp := quotedprintable.NewWriter(w)
		if _, err := qp.Write([]byte(p.content)); err != nil {
			return nil, err
		}
		if err := qp.Close(); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	header := func(k, v string) { fmt.Fprintf(&out, "%s: %s\r\n", k, v) }
	header("From", msg.From)
	header("To", strings.Join(msg.To, ", "))
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("Date", now.Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", "multipart/alternative; boundary="+mw.Boundary())
	out.WriteString("\r\n")
	out.Write(body.Bytes())
	return out.Bytes(), nil
}

// DryRunProvider records messages instead of sending them.
type DryRunProvider struct {
	Logger *slog.Logger

	mu   sync.Mutex
	sent []Message
}

// Name returns "dry-run".
func (p *DryRunProvider) Name() string { return "dry-run" }

// Send records msg.
func (p *DryRunProvider) Send(_ context.Context, msg Message) error {
	p.mu.Lock()
	p.sent = append(p.sent, msg)
	p.mu.Unlock()

	log := p.Logger
	if log == nil {
		log = slog.Default()
	}
	log.Info("dry run: email not sent",
		"subject", msg.Subject, "recipient_count", len(msg.To), "text_bytes", len(msg.Text))
	return nil
}

// Sent returns the recorded messages.
func (p *DryRunProvider) Sent() []Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Message(nil), p.sent...)
}
