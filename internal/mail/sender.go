// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package mail delivers rendered reports over SMTP.
package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ManuGH/epgnotify/internal/log"
	"github.com/ManuGH/epgnotify/internal/metrics"
	"github.com/ManuGH/epgnotify/internal/report"
	gomail "github.com/wneessen/go-mail"
)

// Upstream is the metrics label used for SMTP deliveries.
const Upstream = "smtp"

var (
	// ErrEmptyReport is returned when asked to send a report without a body.
	ErrEmptyReport = errors.New("report has no text body")
	// ErrSend classifies transport failures.
	ErrSend = errors.New("smtp send failed")
)

// Config is the SMTP transport plus the static envelope.
type Config struct {
	Host      string
	Port      int
	HELO      string
	Username  string
	Password  string
	TLSPolicy string // mandatory|opportunistic|none
	Timeout   time.Duration

	From    string
	To      []string
	Subject string
}

// transport is the part of *gomail.Client the sender relies on.
type transport interface {
	DialAndSendWithContext(ctx context.Context, messages ...*gomail.Msg) error
}

// Sender builds a multipart message from a report and hands it to SMTP.
type Sender struct {
	cfg  Config
	dial func(Config) (transport, error)
	now  func() time.Time
}

// NewSender returns a Sender that dials a fresh SMTP connection per Send.
func NewSender(cfg Config) *Sender {
	return &Sender{
		cfg:  cfg,
		dial: dialSMTP,
		now:  time.Now,
	}
}

func tlsPolicy(name string) (gomail.TLSPolicy, error) {
	switch strings.ToLower(name) {
	case "", "opportunistic":
		return gomail.TLSOpportunistic, nil
	case "mandatory":
		return gomail.TLSMandatory, nil
	case "none":
		return gomail.NoTLS, nil
	default:
		return gomail.NoTLS, fmt.Errorf("unknown tls policy %q", name)
	}
}

func dialSMTP(cfg Config) (transport, error) {
	policy, err := tlsPolicy(cfg.TLSPolicy)
	if err != nil {
		return nil, err
	}
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(policy),
	}
	if cfg.HELO != "" {
		opts = append(opts, gomail.WithHELO(cfg.HELO))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, gomail.WithTimeout(cfg.Timeout))
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}
	return gomail.NewClient(cfg.Host, opts...)
}

// Message builds the outgoing message. The plain body is always present;
// an HTML alternative is attached when the report has one.
func (s *Sender) Message(out report.Output) (*gomail.Msg, error) {
	if out.Text == "" {
		return nil, ErrEmptyReport
	}
	m := gomail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("envelope from: %w", err)
	}
	if err := m.To(s.cfg.To...); err != nil {
		return nil, fmt.Errorf("envelope to: %w", err)
	}
	m.Subject(s.cfg.Subject)
	m.SetDateWithValue(s.now())
	m.SetMessageID()
	m.SetBodyString(gomail.TypeTextPlain, out.Text)
	if out.HTML != "" {
		m.AddAlternativeString(gomail.TypeTextHTML, out.HTML)
	}
	return m, nil
}

// Send delivers out to the configured recipients.
func (s *Sender) Send(ctx context.Context, out report.Output) (err error) {
	logger := log.WithComponentFromContext(ctx, "mail")
	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		metrics.ObserveUpstream(Upstream, "send", status, time.Since(start))
	}()

	m, err := s.Message(out)
	if err != nil {
		return err
	}
	client, err := s.dial(s.cfg)
	if err != nil {
		return fmt.Errorf("%w: configure client: %w", ErrSend, err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("%w: %s:%d: %w", ErrSend, s.cfg.Host, s.cfg.Port, err)
	}

	logger.Info().
		Str(log.FieldEvent, "mail.sent").
		Strs("to", s.cfg.To).
		Bool("html", out.HTML != "").
		Dur("duration", time.Since(start)).
		Msg("report sent")
	return nil
}
