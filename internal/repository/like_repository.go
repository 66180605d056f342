package repository

import (
	"context"
	"fmt"

	"pixfeed-server/internal/domain"
)

type likeRepository struct {
	db DBTX
}

func NewLikeRepository(db DBTX) LikeRepository {
	return &likeRepository{db: db}
}

// Create inserts the like, reporting domain.ErrAlreadyLiked when the user
// already likes the post.
func (r *likeRepository) Create(ctx context.Context, like *domain.PostLike) error {
	query := `INSERT INTO post_likes (id, user_id, post_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING`

	res, err := r.db.ExecContext(ctx, query, like.ID, like.UserID, like.PostID, like.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to like post: %w", err)
	}
	return expectOne(res, domain.ErrAlreadyLiked)
}

func (r *likeRepository) Delete(ctx context.Context, userID, postID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM post_likes WHERE user_id = $1 AND post_id = $2`, userID, postID)
	if err != nil {
		return fmt.Errorf("failed to unlike post: %w", err)
	}
	return expectOne(res, domain.ErrLikeNotFound)
}

func (r *likeRepository) ListLikedPosts(ctx context.Context, userID string) ([]*domain.Post, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.id, p.owner_id, p.title, p.post_file, p.access_to_views, p.access_to_likes,
			p.access_to_comments, p.created_at, p.updated_at
		FROM post_likes l
		JOIN posts p ON p.id = l.post_id
		WHERE l.user_id = $1
		ORDER BY l.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list liked posts: %w", err)
	}
	return collectPosts(rows)
}
