package service

import (
	"context"
	"strings"

	"pixfeed-server/internal/domain"
	"pixfeed-server/internal/repository"
)

// findUserByLogin resolves a username, phone number or email to a user.
// Strings matching none of them fail with domain.ErrUnknownLogin before
// any lookup happens.
func findUserByLogin(ctx context.Context, users repository.UserRepository, login string) (*domain.User, error) {
	login = strings.TrimSpace(login)
	switch domain.ClassifyLogin(login) {
	case domain.LoginUsername:
		return users.FindByUsername(ctx, login)
	case domain.LoginPhone:
		return users.FindByPhone(ctx, login)
	case domain.LoginEmail:
		return users.FindByEmail(ctx, login)
	default:
		return nil, domain.ErrUnknownLogin
	}
}

func nilIfEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
