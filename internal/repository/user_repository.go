package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"pixfeed-server/internal/domain"
)

const userColumns = `id, username, password, full_name, gender, birth_date, bio,
		avatar_pic, email, phone_number, created_at, updated_at`

type userRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (id, username, password, full_name, gender, avatar_pic,
		email, phone_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Username, user.Password, user.FullName, user.Gender, user.AvatarPic,
		user.Email, user.PhoneNumber, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if mapped := uniqueError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, "id", id)
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, "username", username)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "email", email)
}

func (r *userRepository) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.findOne(ctx, "phone_number", phone)
}

// findOne looks a user up by a unique column. column is never user input.
func (r *userRepository) findOne(ctx context.Context, column, value string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to query user by %s: %w", column, err)
	}
	return user, nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	query := `UPDATE users SET username = $2, full_name = $3, gender = $4, birth_date = $5,
		bio = $6, email = $7, phone_number = $8, updated_at = $9
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		user.ID, user.Username, user.FullName, user.Gender, user.BirthDate,
		user.Bio, user.Email, user.PhoneNumber, user.UpdatedAt)
	if err != nil {
		if mapped := uniqueError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return expectOne(res, domain.ErrUserNotFound)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, hashed string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password = $2, updated_at = $3 WHERE id = $1`, id, hashed, at)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return expectOne(res, domain.ErrUserNotFound)
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return expectOne(res, domain.ErrUserNotFound)
}

func (r *userRepository) Search(ctx context.Context, query string, limit int) ([]*domain.User, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users
		WHERE lower(username) LIKE $1 ESCAPE '\'
		ORDER BY username
		LIMIT $2`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.Password, &u.FullName, &u.Gender, &u.BirthDate,
		&u.Bio, &u.AvatarPic, &u.Email, &u.PhoneNumber, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func expectOne(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
