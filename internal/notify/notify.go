// Package notify delivers one-off messages to users by email or SMS.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
)

var (
	ErrInvalidRecipient = errors.New("invalid recipient")
	ErrChannelDisabled  = errors.New("delivery channel not configured")
)

type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// Sender delivers over both channels.
type Sender interface {
	EmailSender
	SMSSender
}

type RetryConfig struct {
	MaxTries        uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Timeout         time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxTries:        3,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		Timeout:         15 * time.Second,
	}
}

// Dispatcher retries transient delivery failures with exponential backoff.
// ErrInvalidRecipient and ErrChannelDisabled are never retried.
type Dispatcher struct {
	email  EmailSender
	sms    SMSSender
	retry  RetryConfig
	logger *slog.Logger
}

func NewDispatcher(email EmailSender, sms SMSSender, retry RetryConfig, logger *slog.Logger) *Dispatcher {
	if retry.MaxTries == 0 {
		retry.MaxTries = 1
	}
	return &Dispatcher{email: email, sms: sms, retry: retry, logger: logger}
}

func (d *Dispatcher) SendEmail(ctx context.Context, to, subject, body string) error {
	if to == "" {
		return ErrInvalidRecipient
	}
	return d.do(ctx, "email", func(ctx context.Context) error {
		return d.email.SendEmail(ctx, to, subject, body)
	})
}

func (d *Dispatcher) SendSMS(ctx context.Context, to, body string) error {
	if to == "" {
		return ErrInvalidRecipient
	}
	return d.do(ctx, "sms", func(ctx context.Context) error {
		return d.sms.SendSMS(ctx, to, body)
	})
}

func (d *Dispatcher) do(ctx context.Context, channel string, send func(ctx context.Context) error) error {
	if d.retry.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.retry.Timeout)
		defer cancel()
	}

	b := backoff.NewExponentialBackOff()
	if d.retry.InitialInterval > 0 {
		b.InitialInterval = d.retry.InitialInterval
	}
	if d.retry.MaxInterval > 0 {
		b.MaxInterval = d.retry.MaxInterval
	}

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		err := send(ctx)
		if err == nil {
			return struct{}{}, nil
		}
		if errors.Is(err, ErrInvalidRecipient) || errors.Is(err, ErrChannelDisabled) {
			return struct{}{}, backoff.Permanent(err)
		}
		d.logger.WarnContext(ctx, "delivery attempt failed",
			"channel", channel,
			"attempt", attempt,
			"error", err,
		)
		return struct{}{}, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(d.retry.MaxTries))
	return err
}

// DisabledSender stands in for a transport with no credentials. Every send
// fails with ErrChannelDisabled.
type DisabledSender struct{}

func (DisabledSender) SendEmail(context.Context, string, string, string) error {
	return ErrChannelDisabled
}

func (DisabledSender) SendSMS(context.Context, string, string) error {
	return ErrChannelDisabled
}

// LogSender writes messages to the log instead of delivering them.
// Use it for local development only: it logs message bodies.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendEmail(ctx context.Context, to, subject, body string) error {
	s.logger.InfoContext(ctx, "email issued",
		"to", to,
		"subject", subject,
		"body", body,
	)
	return nil
}

func (s *LogSender) SendSMS(ctx context.Context, to, body string) error {
	s.logger.InfoContext(ctx, "sms issued",
		"to", to,
		"body", body,
	)
	return nil
}
