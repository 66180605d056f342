package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pixfeed-server/internal/domain"
)

// commentRepository stores top-level comments and replies in separate tables.
// A domain.Comment with a ParentID lives in replies.
type commentRepository struct {
	db DBTX
}

func NewCommentRepository(db DBTX) CommentRepository {
	return &commentRepository{db: db}
}

func tableFor(c *domain.Comment) string {
	if c.IsReply() {
		return "replies"
	}
	return "comments"
}

func (r *commentRepository) Create(ctx context.Context, c *domain.Comment) error {
	var err error
	if c.IsReply() {
		_, err = r.db.ExecContext(ctx,
			`INSERT INTO replies (id, comment_id, user_id, content, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			c.ID, c.ParentID, c.UserID, c.Content, c.CreatedAt, c.UpdatedAt)
	} else {
		_, err = r.db.ExecContext(ctx,
			`INSERT INTO comments (id, post_id, user_id, content, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			c.ID, c.PostID, c.UserID, c.Content, c.CreatedAt, c.UpdatedAt)
	}
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// FindByID resolves id against comments first, then replies.
func (r *commentRepository) FindByID(ctx context.Context, id string) (*domain.Comment, error) {
	query := `SELECT c.id, c.post_id, '' AS parent_id, c.user_id, c.content,
			(SELECT count(*) FROM comment_likes cl WHERE cl.comment_id = c.id),
			c.created_at, c.updated_at
		FROM comments c WHERE c.id = $1
		UNION ALL
		SELECT r.id, c.post_id, r.comment_id::text, r.user_id, r.content,
			(SELECT count(*) FROM comment_likes cl WHERE cl.reply_id = r.id),
			r.created_at, r.updated_at
		FROM replies r JOIN comments c ON c.id = r.comment_id WHERE r.id = $1
		LIMIT 1`

	c, err := scanComment(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to query comment: %w", err)
	}
	return c, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID string) ([]*domain.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.post_id, '' AS parent_id, c.user_id, c.content,
			(SELECT count(*) FROM comment_likes cl WHERE cl.comment_id = c.id),
			c.created_at, c.updated_at
		FROM comments c
		WHERE c.post_id = $1
		ORDER BY c.created_at`, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return collectComments(rows)
}

func (r *commentRepository) ListRepliesByPost(ctx context.Context, postID string) ([]*domain.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT r.id, c.post_id, r.comment_id::text, r.user_id, r.content,
			(SELECT count(*) FROM comment_likes cl WHERE cl.reply_id = r.id),
			r.created_at, r.updated_at
		FROM replies r
		JOIN comments c ON c.id = r.comment_id
		WHERE c.post_id = $1
		ORDER BY r.created_at`, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list replies: %w", err)
	}
	return collectComments(rows)
}

func (r *commentRepository) UpdateContent(ctx context.Context, c *domain.Comment) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE `+tableFor(c)+` SET content = $2, updated_at = $3 WHERE id = $1`,
		c.ID, c.Content, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	return expectOne(res, domain.ErrCommentNotFound)
}

func (r *commentRepository) Delete(ctx context.Context, c *domain.Comment) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM `+tableFor(c)+` WHERE id = $1`, c.ID)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return expectOne(res, domain.ErrCommentNotFound)
}

func (r *commentRepository) Like(ctx context.Context, userID string, target *domain.Comment) error {
	commentID, replyID := likeTarget(target)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO comment_likes (user_id, comment_id, reply_id)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING`, userID, commentID, replyID)
	if err != nil {
		return fmt.Errorf("failed to like comment: %w", err)
	}
	return expectOne(res, domain.ErrAlreadyLiked)
}

func (r *commentRepository) Unlike(ctx context.Context, userID string, target *domain.Comment) error {
	column := "comment_id"
	if target.IsReply() {
		column = "reply_id"
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM comment_likes WHERE user_id = $1 AND `+column+` = $2`, userID, target.ID)
	if err != nil {
		return fmt.Errorf("failed to unlike comment: %w", err)
	}
	return expectOne(res, domain.ErrLikeNotFound)
}

func likeTarget(c *domain.Comment) (commentID, replyID any) {
	if c.IsReply() {
		return nil, c.ID
	}
	return c.ID, nil
}

func scanComment(row scanner) (*domain.Comment, error) {
	var c domain.Comment
	err := row.Scan(&c.ID, &c.PostID, &c.ParentID, &c.UserID, &c.Content, &c.Likes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func collectComments(rows *sql.Rows) ([]*domain.Comment, error) {
	defer rows.Close()

	comments := []*domain.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
