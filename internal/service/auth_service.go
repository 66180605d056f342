package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"pixfeed-server/internal/domain"
	"pixfeed-server/internal/repository"
	"pixfeed-server/pkg/hash"
	"pixfeed-server/pkg/jwt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

type AuthService struct {
	store    repository.Store
	tokens   *jwt.Manager
	location *time.Location
	logger   *slog.Logger
	now      func() time.Time
}

// NewAuthService builds the service. location only affects how token expiry
// instants are rendered in responses.
func NewAuthService(store repository.Store, tokens *jwt.Manager, location *time.Location, logger *slog.Logger) *AuthService {
	if location == nil {
		location = time.UTC
	}
	return &AuthService{
		store:    store,
		tokens:   tokens,
		location: location,
		logger:   logger,
		now:      time.Now,
	}
}

// Register creates the account and signs the new user in.
func (s *AuthService) Register(ctx context.Context, req *domain.RegisterRequest) (resp *domain.TokenResponse, err error) {
	ctx, span := tracer().Start(ctx, "AuthService.Register")
	defer func() { endSpan(span, err) }()

	hashed, err := hash.Hash(req.Password)
	if err != nil {
		return nil, passwordError(err)
	}

	now := s.now().UTC()
	user := &domain.User{
		ID:          uuid.New().String(),
		Username:    req.Username,
		Password:    hashed,
		FullName:    req.FullName,
		Gender:      nilIfEmpty(req.Gender),
		AvatarPic:   domain.DefaultAvatar,
		Email:       nilIfEmpty(req.Email),
		PhoneNumber: nilIfEmpty(req.PhoneNumber),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.Users().Create(ctx, user); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("user.id", user.ID))
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return s.issue(user)
}

// Login accepts a username, phone number or email. Every failure reports the
// same invalid-credentials error.
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (resp *domain.TokenResponse, err error) {
	ctx, span := tracer().Start(ctx, "AuthService.Login")
	defer func() { endSpan(span, err) }()

	user, err := findUserByLogin(ctx, s.store.Users(), req.Login)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrUnknownLogin) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := hash.Compare(user.Password, req.Password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.issue(user)
}

// Refresh exchanges a refresh token for a new pair. The user must still exist.
func (s *AuthService) Refresh(ctx context.Context, req *domain.RefreshTokenRequest) (resp *domain.TokenResponse, err error) {
	ctx, span := tracer().Start(ctx, "AuthService.Refresh")
	defer func() { endSpan(span, err) }()

	claims, ok := s.tokens.VerifyKind(req.RefreshToken, jwt.TokenTypeRefresh)
	if !ok {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.store.Users().FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}

	return s.issue(user)
}

func (s *AuthService) issue(user *domain.User) (*domain.TokenResponse, error) {
	pair, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	return &domain.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
		ExpiresAt:    pair.AccessExpiresAt.In(s.location),
	}, nil
}
