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

// CommentService handles comments and replies. Both are addressed by id
// through the same operations.
type CommentService struct {
	store  repository.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewCommentService(store repository.Store, logger *slog.Logger) *CommentService {
	return &CommentService{store: store, logger: logger, now: time.Now}
}

// List returns the post's comments, each with its replies.
func (s *CommentService) List(ctx context.Context, postID string) (_ []*domain.Comment, err error) {
	ctx, span := tracer().Start(ctx, "CommentService.List")
	defer func() { endSpan(span, err) }()

	if err := s.postExists(ctx, postID); err != nil {
		return nil, err
	}

	comments, err := s.store.Comments().ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	replies, err := s.store.Comments().ListRepliesByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*domain.Comment, len(comments))
	for _, c := range comments {
		byID[c.ID] = c
	}
	for _, r := range replies {
		if parent, ok := byID[r.ParentID]; ok {
			parent.Replies = append(parent.Replies, r)
		}
	}
	return comments, nil
}

func (s *CommentService) Add(ctx context.Context, userID, postID string, req *domain.CommentRequest) (_ *domain.Comment, err error) {
	ctx, span := tracer().Start(ctx, "CommentService.Add")
	defer func() { endSpan(span, err) }()

	if err := s.postExists(ctx, postID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	c := &domain.Comment{
		ID:        uuid.New().String(),
		PostID:    postID,
		UserID:    userID,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Comments().Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Reply answers a comment. Replying to a reply attaches the new reply to the
// same top-level comment.
func (s *CommentService) Reply(ctx context.Context, userID, commentID string, req *domain.ReplyRequest) (_ *domain.Comment, err error) {
	ctx, span := tracer().Start(ctx, "CommentService.Reply")
	defer func() { endSpan(span, err) }()

	parent, err := s.find(ctx, commentID)
	if err != nil {
		return nil, err
	}

	parentID := parent.ID
	if parent.IsReply() {
		parentID = parent.ParentID
	}

	now := s.now().UTC()
	r := &domain.Comment{
		ID:        uuid.New().String(),
		PostID:    parent.PostID,
		ParentID:  parentID,
		UserID:    userID,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Comments().Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *CommentService) Update(ctx context.Context, actorID, commentID, content string) (_ *domain.Comment, err error) {
	ctx, span := tracer().Start(ctx, "CommentService.Update")
	defer func() { endSpan(span, err) }()

	c, err := s.find(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actorID, c.UserID); err != nil {
		return nil, err
	}

	c.Content = content
	c.UpdatedAt = s.now().UTC()
	if err := s.store.Comments().UpdateContent(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CommentService) Delete(ctx context.Context, actorID, commentID string) (err error) {
	ctx, span := tracer().Start(ctx, "CommentService.Delete")
	defer func() { endSpan(span, err) }()

	c, err := s.find(ctx, commentID)
	if err != nil {
		return err
	}
	if err := policy.Authorize(actorID, c.UserID); err != nil {
		return err
	}
	return s.store.Comments().Delete(ctx, c)
}

func (s *CommentService) Like(ctx context.Context, userID, commentID string) (err error) {
	ctx, span := tracer().Start(ctx, "CommentService.Like")
	defer func() { endSpan(span, err) }()

	c, err := s.find(ctx, commentID)
	if err != nil {
		return err
	}
	return s.store.Comments().Like(ctx, userID, c)
}

// Unlike removes the caller's own like. Other users' likes are never touched.
func (s *CommentService) Unlike(ctx context.Context, userID, commentID string) (err error) {
	ctx, span := tracer().Start(ctx, "CommentService.Unlike")
	defer func() { endSpan(span, err) }()

	c, err := s.find(ctx, commentID)
	if err != nil {
		return err
	}
	return s.store.Comments().Unlike(ctx, userID, c)
}

func (s *CommentService) find(ctx context.Context, id string) (*domain.Comment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrCommentNotFound
	}
	return s.store.Comments().FindByID(ctx, id)
}

func (s *CommentService) postExists(ctx context.Context, postID string) error {
	if _, err := uuid.Parse(postID); err != nil {
		return domain.ErrPostNotFound
	}
	_, err := s.store.Posts().FindByID(ctx, postID)
	return err
}
