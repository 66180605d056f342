package service

import (
	"context"
	"time"

	"pixfeed-server/internal/domain"
	"pixfeed-server/internal/repository"

	"github.com/google/uuid"
)

type LikeService struct {
	store repository.Store
	now   func() time.Time
}

func NewLikeService(store repository.Store) *LikeService {
	return &LikeService{store: store, now: time.Now}
}

// Like records that userID likes the post. A second like by the same user
// fails with domain.ErrAlreadyLiked.
func (s *LikeService) Like(ctx context.Context, userID, postID string) (_ *domain.PostLike, err error) {
	ctx, span := tracer().Start(ctx, "LikeService.Like")
	defer func() { endSpan(span, err) }()

	if _, err := uuid.Parse(postID); err != nil {
		return nil, domain.ErrPostNotFound
	}
	if _, err := s.store.Posts().FindByID(ctx, postID); err != nil {
		return nil, err
	}

	like := &domain.PostLike{
		ID:        uuid.New().String(),
		UserID:    userID,
		PostID:    postID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Likes().Create(ctx, like); err != nil {
		return nil, err
	}
	return like, nil
}

func (s *LikeService) Unlike(ctx context.Context, userID, postID string) (err error) {
	ctx, span := tracer().Start(ctx, "LikeService.Unlike")
	defer func() { endSpan(span, err) }()

	if _, err := uuid.Parse(postID); err != nil {
		return domain.ErrLikeNotFound
	}
	return s.store.Likes().Delete(ctx, userID, postID)
}

func (s *LikeService) ListMine(ctx context.Context, userID string) (_ []*domain.Post, err error) {
	ctx, span := tracer().Start(ctx, "LikeService.ListMine")
	defer func() { endSpan(span, err) }()

	return s.store.Likes().ListLikedPosts(ctx, userID)
}
