package service

import (
	"context"
	"time"

	"pixfeed-server/internal/domain"
	"pixfeed-server/internal/policy"
	"pixfeed-server/internal/repository"

	"github.com/google/uuid"
)

type SaveService struct {
	store repository.Store
	now   func() time.Time
}

func NewSaveService(store repository.Store) *SaveService {
	return &SaveService{store: store, now: time.Now}
}

func (s *SaveService) Save(ctx context.Context, userID, postID string) (_ *domain.Save, err error) {
	ctx, span := tracer().Start(ctx, "SaveService.Save")
	defer func() { endSpan(span, err) }()

	if _, err := uuid.Parse(postID); err != nil {
		return nil, domain.ErrPostNotFound
	}
	if _, err := s.store.Posts().FindByID(ctx, postID); err != nil {
		return nil, err
	}

	save := &domain.Save{
		ID:        uuid.New().String(),
		UserID:    userID,
		PostID:    postID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Saves().Create(ctx, save); err != nil {
		return nil, err
	}
	return save, nil
}

func (s *SaveService) Unsave(ctx context.Context, actorID, saveID string) (err error) {
	ctx, span := tracer().Start(ctx, "SaveService.Unsave")
	defer func() { endSpan(span, err) }()

	if _, err := uuid.Parse(saveID); err != nil {
		return domain.ErrSaveNotFound
	}
	save, err := s.store.Saves().FindByID(ctx, saveID)
	if err != nil {
		return err
	}
	if err := policy.Authorize(actorID, save.UserID); err != nil {
		return err
	}
	return s.store.Saves().Delete(ctx, saveID)
}

func (s *SaveService) ListMine(ctx context.Context, userID string) (_ []*domain.Save, err error) {
	ctx, span := tracer().Start(ctx, "SaveService.ListMine")
	defer func() { endSpan(span, err) }()

	return s.store.Saves().ListByUser(ctx, userID)
}
