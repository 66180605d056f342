package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pixfeed-server/internal/domain"
)

const postColumns = `id, owner_id, title, post_file, access_to_views, access_to_likes,
		access_to_comments, created_at, updated_at`

type postRepository struct {
	db DBTX
}

func NewPostRepository(db DBTX) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *domain.Post) error {
	query := `INSERT INTO posts (` + postColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		post.ID, post.OwnerID, post.Title, post.PostFile, post.AccessToViews,
		post.AccessToLikes, post.AccessToComments, post.CreatedAt, post.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (r *postRepository) FindByID(ctx context.Context, id string) (*domain.Post, error) {
	post, err := scanPost(r.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to query post: %w", err)
	}
	return post, nil
}

func (r *postRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Post, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return collectPosts(rows)
}

func (r *postRepository) Update(ctx context.Context, post *domain.Post) error {
	query := `UPDATE posts SET title = $2, access_to_views = $3, access_to_likes = $4,
		access_to_comments = $5, updated_at = $6
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		post.ID, post.Title, post.AccessToViews, post.AccessToLikes, post.AccessToComments, post.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	return expectOne(res, domain.ErrPostNotFound)
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return expectOne(res, domain.ErrPostNotFound)
}

func (r *postRepository) Stats(ctx context.Context, id string) (domain.PostStats, error) {
	query := `SELECT
		(SELECT count(*) FROM post_likes WHERE post_id = $1),
		(SELECT count(*) FROM post_views WHERE post_id = $1),
		(SELECT count(*) FROM comments WHERE post_id = $1)`

	var s domain.PostStats
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&s.Likes, &s.Views, &s.Comments); err != nil {
		return domain.PostStats{}, fmt.Errorf("failed to count post stats: %w", err)
	}
	return s, nil
}

func (r *postRepository) RecordView(ctx context.Context, userID, postID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO post_views (user_id, post_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, postID)
	if err != nil {
		return fmt.Errorf("failed to record view: %w", err)
	}
	return nil
}

func scanPost(row scanner) (*domain.Post, error) {
	var p domain.Post
	err := row.Scan(&p.ID, &p.OwnerID, &p.Title, &p.PostFile, &p.AccessToViews,
		&p.AccessToLikes, &p.AccessToComments, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectPosts(rows *sql.Rows) ([]*domain.Post, error) {
	defer rows.Close()

	posts := []*domain.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}
