package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"pixfeed-server/internal/domain"
	"pixfeed-server/internal/repository"
	"pixfeed-server/pkg/hash"
)

const searchLimit = 20

type UserService struct {
	store  repository.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewUserService(store repository.Store, logger *slog.Logger) *UserService {
	return &UserService{store: store, logger: logger, now: time.Now}
}

func (s *UserService) Me(ctx context.Context, userID string) (_ *domain.User, err error) {
	ctx, span := tracer().Start(ctx, "UserService.Me")
	defer func() { endSpan(span, err) }()

	return s.store.Users().FindByID(ctx, userID)
}

// Update applies the fields present in req. An empty email or phone number
// clears it.
func (s *UserService) Update(ctx context.Context, userID string, req *domain.UpdateUserRequest) (_ *domain.User, err error) {
	ctx, span := tracer().Start(ctx, "UserService.Update")
	defer func() { endSpan(span, err) }()

	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Gender != nil {
		user.Gender = nilIfEmpty(req.Gender)
	}
	if req.BirthDate != nil {
		user.BirthDate = req.BirthDate
	}
	if req.Bio != nil {
		user.Bio = req.Bio
	}
	if req.Email != nil {
		user.Email = nilIfEmpty(req.Email)
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = nilIfEmpty(req.PhoneNumber)
	}
	user.UpdatedAt = s.now().UTC()

	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID string, req *domain.ChangePasswordRequest) (err error) {
	ctx, span := tracer().Start(ctx, "UserService.ChangePassword")
	defer func() { endSpan(span, err) }()

	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := hash.Compare(user.Password, req.LastPassword); err != nil {
		return domain.ErrWrongPassword
	}

	hashed, err := hash.Hash(req.NewPassword)
	if err != nil {
		return passwordError(err)
	}

	if err := s.store.Users().UpdatePassword(ctx, userID, hashed, s.now().UTC()); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "password changed", "user_id", userID)
	return nil
}

// Delete removes the account. Posts, comments, likes, saves and codes go with it.
func (s *UserService) Delete(ctx context.Context, userID string) (err error) {
	ctx, span := tracer().Start(ctx, "UserService.Delete")
	defer func() { endSpan(span, err) }()

	if err := s.store.Users().Delete(ctx, userID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "user deleted", "user_id", userID)
	return nil
}

// Search finds users whose username contains query, ignoring case, and
// returns each with their posts.
func (s *UserService) Search(ctx context.Context, query string) (_ []*domain.UserProfile, err error) {
	ctx, span := tracer().Start(ctx, "UserService.Search")
	defer func() { endSpan(span, err) }()

	query = strings.TrimSpace(query)
	if query == "" {
		return []*domain.UserProfile{}, nil
	}

	users, err := s.store.Users().Search(ctx, query, searchLimit)
	if err != nil {
		return nil, err
	}

	profiles := make([]*domain.UserProfile, 0, len(users))
	for _, u := range users {
		posts, err := s.store.Posts().ListByOwner(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, &domain.UserProfile{
			ID:        u.ID,
			Username:  u.Username,
			FullName:  u.FullName,
			BirthDate: u.BirthDate,
			Bio:       u.Bio,
			Gender:    u.Gender,
			AvatarPic: u.AvatarPic,
			Posts:     posts,
		})
	}
	return profiles, nil
}
