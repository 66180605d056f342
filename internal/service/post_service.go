package service

import (
	"context"
	"log/slog"
	"time"

	"pixfeed-server/internal/domain"
	"pixfeed-server/internal/policy"
	"pixfeed-server/internal/repository"

	"github.com/google/uuid"
)

type PostService struct {
	store  repository.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewPostService(store repository.Store, logger *slog.Logger) *PostService {
	return &PostService{store: store, logger: logger, now: time.Now}
}

func (s *PostService) Create(ctx context.Context, ownerID string, req *domain.PostRequest) (_ *domain.Post, err error) {
	ctx, span := tracer().Start(ctx, "PostService.Create")
	defer func() { endSpan(span, err) }()

	now := s.now().UTC()
	post := &domain.Post{
		ID:               uuid.New().String(),
		OwnerID:          ownerID,
		Title:            req.Title,
		PostFile:         nilIfEmpty(req.PostFile),
		AccessToViews:    req.AccessToViews,
		AccessToLikes:    req.AccessToLikes,
		AccessToComments: req.AccessToComments,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.store.Posts().Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Get returns the post as viewerID sees it and counts the view once per viewer.
func (s *PostService) Get(ctx context.Context, viewerID, postID string) (_ *domain.PostView, err error) {
	ctx, span := tracer().Start(ctx, "PostService.Get")
	defer func() { endSpan(span, err) }()

	if _, err := uuid.Parse(postID); err != nil {
		return nil, domain.ErrPostNotFound
	}

	post, err := s.store.Posts().FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if err := s.store.Posts().RecordView(ctx, viewerID, postID); err != nil {
		return nil, err
	}

	return s.view(ctx, post)
}

func (s *PostService) ListMine(ctx context.Context, ownerID string) (_ []*domain.PostView, err error) {
	ctx, span := tracer().Start(ctx, "PostService.ListMine")
	defer func() { endSpan(span, err) }()

	posts, err := s.store.Posts().ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, posts)
}

func (s *PostService) Update(ctx context.Context, actorID, postID string, req *domain.PostRequest) (_ *domain.Post, err error) {
	ctx, span := tracer().Start(ctx, "PostService.Update")
	defer func() { endSpan(span, err) }()

	post, err := s.owned(ctx, actorID, postID)
	if err != nil {
		return nil, err
	}

	post.Title = req.Title
	post.AccessToViews = req.AccessToViews
	post.AccessToLikes = req.AccessToLikes
	post.AccessToComments = req.AccessToComments
	post.UpdatedAt = s.now().UTC()

	if err := s.store.Posts().Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) Delete(ctx context.Context, actorID, postID string) (err error) {
	ctx, span := tracer().Start(ctx, "PostService.Delete")
	defer func() { endSpan(span, err) }()

	if _, err := s.owned(ctx, actorID, postID); err != nil {
		return err
	}
	if err := s.store.Posts().Delete(ctx, postID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "post deleted", "post_id", postID, "user_id", actorID)
	return nil
}

// owned loads the post and checks that actorID owns it.
func (s *PostService) owned(ctx context.Context, actorID, postID string) (*domain.Post, error) {
	if _, err := uuid.Parse(postID); err != nil {
		return nil, domain.ErrPostNotFound
	}
	post, err := s.store.Posts().FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actorID, post.OwnerID); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) view(ctx context.Context, post *domain.Post) (*domain.PostView, error) {
	stats, err := s.store.Posts().Stats(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	return domain.NewPostView(post, stats), nil
}

func (s *PostService) views(ctx context.Context, posts []*domain.Post) ([]*domain.PostView, error) {
	out := make([]*domain.PostView, 0, len(posts))
	for _, p := range posts {
		v, err := s.view(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
