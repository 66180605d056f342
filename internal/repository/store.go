package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pixfeed-server/internal/domain"
	"pixfeed-server/internal/repository/migrations"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByPhone(ctx context.Context, phone string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, id, hashed string, at time.Time) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string, limit int) ([]*domain.User, error)
}

type ResetCodeRepository interface {
	Create(ctx context.Context, code *domain.ResetCode) error
	// Consume deletes the matching unexpired code and reports
	// domain.ErrCodeNotFound when there is none.
	Consume(ctx context.Context, userID string, code int, purpose string, now time.Time) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	FindByID(ctx context.Context, id string) (*domain.Post, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Post, error)
	Update(ctx context.Context, post *domain.Post) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, id string) (domain.PostStats, error)
	RecordView(ctx context.Context, userID, postID string) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	FindByID(ctx context.Context, id string) (*domain.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]*domain.Comment, error)
	ListRepliesByPost(ctx context.Context, postID string) ([]*domain.Comment, error)
	UpdateContent(ctx context.Context, comment *domain.Comment) error
	Delete(ctx context.Context, comment *domain.Comment) error
	Like(ctx context.Context, userID string, target *domain.Comment) error
	Unlike(ctx context.Context, userID string, target *domain.Comment) error
}

type LikeRepository interface {
	Create(ctx context.Context, like *domain.PostLike) error
	Delete(ctx context.Context, userID, postID string) error
	ListLikedPosts(ctx context.Context, userID string) ([]*domain.Post, error)
}

type SaveRepository interface {
	Create(ctx context.Context, save *domain.Save) error
	FindByID(ctx context.Context, id string) (*domain.Save, error)
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]*domain.Save, error)
}

// Store hands out repositories bound to one connection or transaction.
type Store interface {
	Users() UserRepository
	ResetCodes() ResetCodeRepository
	Posts() PostRepository
	Comments() CommentRepository
	Likes() LikeRepository
	Saves() SaveRepository
	// InTx runs fn with a Store whose repositories share one transaction.
	// Calling InTx on a transactional Store reuses the open transaction.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

type PostgresStore struct {
	db *sql.DB
	q  DBTX
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, q: db}
}

func (s *PostgresStore) Users() UserRepository           { return NewUserRepository(s.q) }
func (s *PostgresStore) ResetCodes() ResetCodeRepository { return NewResetCodeRepository(s.q) }
func (s *PostgresStore) Posts() PostRepository           { return NewPostRepository(s.q) }
func (s *PostgresStore) Comments() CommentRepository     { return NewCommentRepository(s.q) }
func (s *PostgresStore) Likes() LikeRepository           { return NewLikeRepository(s.q) }
func (s *PostgresStore) Saves() SaveRepository           { return NewSaveRepository(s.q) }

func (s *PostgresStore) InTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	if s.db == nil {
		return fn(ctx, s)
	}
	return WithTx(ctx, s.db, nil, func(ctx context.Context, tx DBTX) error {
		return fn(ctx, &PostgresStore{q: tx})
	})
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Migrate applies the embedded migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

const uniqueViolation = "23505"

var constraintErrors = map[string]error{
	"users_username_key":             domain.ErrUsernameTaken,
	"users_email_key":                domain.ErrEmailTaken,
	"users_phone_number_key":         domain.ErrPhoneTaken,
	"post_likes_user_post_key":       domain.ErrAlreadyLiked,
	"comment_likes_user_comment_key": domain.ErrAlreadyLiked,
	"comment_likes_user_reply_key":   domain.ErrAlreadyLiked,
	"saves_user_post_key":            domain.ErrAlreadySaved,
}

// uniqueError translates a unique-constraint violation into its domain error.
// It returns nil for any other error.
func uniqueError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}
	if mapped, ok := constraintErrors[pgErr.ConstraintName]; ok {
		return mapped
	}
	return domain.ErrConflict
}
