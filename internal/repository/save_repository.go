package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pixfeed-server/internal/domain"
)

type saveRepository struct {
	db DBTX
}

func NewSaveRepository(db DBTX) SaveRepository {
	return &saveRepository{db: db}
}

func (r *saveRepository) Create(ctx context.Context, save *domain.Save) error {
	query := `INSERT INTO saves (id, user_id, post_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING`

	res, err := r.db.ExecContext(ctx, query, save.ID, save.UserID, save.PostID, save.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save post: %w", err)
	}
	return expectOne(res, domain.ErrAlreadySaved)
}

func (r *saveRepository) FindByID(ctx context.Context, id string) (*domain.Save, error) {
	var s domain.Save
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, post_id, created_at FROM saves WHERE id = $1`, id).
		Scan(&s.ID, &s.UserID, &s.PostID, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSaveNotFound
		}
		return nil, fmt.Errorf("failed to query save: %w", err)
	}
	return &s, nil
}

func (r *saveRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM saves WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete save: %w", err)
	}
	return expectOne(res, domain.ErrSaveNotFound)
}

func (r *saveRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Save, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT s.id, s.user_id, s.post_id, s.created_at,
			p.id, p.owner_id, p.title, p.post_file, p.access_to_views, p.access_to_likes,
			p.access_to_comments, p.created_at, p.updated_at
		FROM saves s
		JOIN posts p ON p.id = s.post_id
		WHERE s.user_id = $1
		ORDER BY s.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list saves: %w", err)
	}
	defer rows.Close()

	saves := []*domain.Save{}
	for rows.Next() {
		var s domain.Save
		var p domain.Post
		err := rows.Scan(&s.ID, &s.UserID, &s.PostID, &s.CreatedAt,
			&p.ID, &p.OwnerID, &p.Title, &p.PostFile, &p.AccessToViews, &p.AccessToLikes,
			&p.AccessToComments, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan save: %w", err)
		}
		s.Post = &p
		saves = append(saves, &s)
	}
	return saves, rows.Err()
}
