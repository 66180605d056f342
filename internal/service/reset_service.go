package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"pixfeed-server/internal/domain"
	"pixfeed-server/internal/notify"
	"pixfeed-server/internal/repository"
	"pixfeed-server/pkg/hash"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultResetCodeTTL = 10 * time.Minute
	codeSpace           = 1_000_000

	resetSubject = "Password reset code"
)

// ResetService issues and redeems single-use password reset codes.
type ResetService struct {
	store    repository.Store
	sender   notify.Sender
	ttl      time.Duration
	logger   *slog.Logger
	now      func() time.Time
	generate func() (int, error)
}

func NewResetService(store repository.Store, sender notify.Sender, ttl time.Duration, logger *slog.Logger) *ResetService {
	if ttl <= 0 {
		ttl = DefaultResetCodeTTL
	}
	return &ResetService{
		store:    store,
		sender:   sender,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
		generate: generateCode,
	}
}

// generateCode draws a uniform value in [0, 999999]. Leading zeros are kept
// when the code is rendered.
func generateCode() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpace))
	if err != nil {
		return 0, fmt.Errorf("failed to generate code: %w", err)
	}
	return int(n.Int64()), nil
}

func FormatCode(code int) string {
	return fmt.Sprintf("%06d", code)
}

// RequestReset resolves login to a user and sends them a fresh code.
// A login that is not a username, phone number or email is reported as
// domain.ErrUserNotFound without touching the store.
func (s *ResetService) RequestReset(ctx context.Context, login string) (ticket *domain.ResetTicket, err error) {
	ctx, span := tracer().Start(ctx, "ResetService.RequestReset")
	defer func() { endSpan(span, err) }()

	user, err := findUserByLogin(ctx, s.store.Users(), login)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownLogin) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return s.issue(ctx, user)
}

// RequestResetFor sends a code to an already authenticated user.
func (s *ResetService) RequestResetFor(ctx context.Context, userID string) (ticket *domain.ResetTicket, err error) {
	ctx, span := tracer().Start(ctx, "ResetService.RequestResetFor")
	defer func() { endSpan(span, err) }()

	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

// issue persists the code and delivers it in one transaction, so a code that
// could not be delivered is never left behind.
func (s *ResetService) issue(ctx context.Context, user *domain.User) (*domain.ResetTicket, error) {
	channel := deliveryChannel(user)
	if channel == "" {
		return nil, domain.ErrNoDeliveryChannel
	}

	value, err := s.generate()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	code := &domain.ResetCode{
		UserID:    user.ID,
		Code:      value,
		Purpose:   domain.PurposePasswordReset,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	err = s.store.InTx(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := tx.ResetCodes().Create(ctx, code); err != nil {
			return err
		}
		if err := s.deliver(ctx, user, channel, value); err != nil {
			s.logger.ErrorContext(ctx, "failed to deliver reset code",
				"user_id", user.ID,
				"channel", channel,
				"error", err,
			)
			return fmt.Errorf("%w: %w", domain.ErrDeliveryFailed, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "reset code issued", "user_id", user.ID, "channel", channel)
	return &domain.ResetTicket{UserID: user.ID, Channel: channel}, nil
}

func deliveryChannel(user *domain.User) string {
	switch {
	case user.Email != nil && *user.Email != "":
		return "email"
	case user.PhoneNumber != nil && *user.PhoneNumber != "":
		return "sms"
	default:
		return ""
	}
}

func (s *ResetService) deliver(ctx context.Context, user *domain.User, channel string, code int) error {
	body := fmt.Sprintf("Your password reset code is %s. It expires in %d minutes.",
		FormatCode(code), int(s.ttl.Minutes()))
	if channel == "email" {
		return s.sender.SendEmail(ctx, *user.Email, resetSubject, body)
	}
	return s.sender.SendSMS(ctx, *user.PhoneNumber, body)
}

// Consume redeems code for userID and sets newPassword. The code is removed in
// the same transaction that updates the password, so a code can be redeemed
// at most once even under concurrent requests.
func (s *ResetService) Consume(ctx context.Context, userID string, code int, newPassword string) (err error) {
	ctx, span := tracer().Start(ctx, "ResetService.Consume")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("user.id", userID))

	if _, err := uuid.Parse(userID); err != nil || code < 0 || code >= codeSpace {
		return domain.ErrCodeNotFound
	}

	hashed, err := hash.Hash(newPassword)
	if err != nil {
		return passwordError(err)
	}

	now := s.now().UTC()
	err = s.store.InTx(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := tx.ResetCodes().Consume(ctx, userID, code, domain.PurposePasswordReset, now); err != nil {
			return err
		}
		return tx.Users().UpdatePassword(ctx, userID, hashed, now)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "password reset", "user_id", userID)
	return nil
}

func (s *ResetService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.store.ResetCodes().DeleteExpired(ctx, s.now().UTC())
}

// RunPurger deletes expired codes every interval until ctx is cancelled.
func (s *ResetService) RunPurger(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.PurgeExpired(ctx)
			if err != nil {
				if ctx.Err() == nil {
					s.logger.ErrorContext(ctx, "failed to purge reset codes", "error", err)
				}
				continue
			}
			if n > 0 {
				s.logger.DebugContext(ctx, "purged reset codes", "count", n)
			}
		}
	}
}
