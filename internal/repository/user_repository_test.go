package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"pixfeed-server/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

var userRowColumns = []string{"id", "username", "password", "full_name", "gender", "birth_date",
	"bio", "avatar_pic", "email", "phone_number", "created_at", "updated_at"}

func TestUserRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	now := time.Now()

	mock.ExpectExec(`INSERT INTO users \(id, username, password`).
		WithArgs("u-1", "alice", "digest", "Alice", sqlmock.AnyArg(), domain.DefaultAvatar,
			sqlmock.AnyArg(), sqlmock.AnyArg(), now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &domain.User{
		ID: "u-1", Username: "alice", Password: "digest", FullName: "Alice",
		AvatarPic: domain.DefaultAvatar, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
}

func TestUserRepository_CreateUniqueViolations(t *testing.T) {
	tests := []struct {
		constraint string
		want       error
	}{
		{constraint: "users_username_key", want: domain.ErrUsernameTaken},
		{constraint: "users_email_key", want: domain.ErrEmailTaken},
		{constraint: "users_phone_number_key", want: domain.ErrPhoneTaken},
		{constraint: "something_else", want: domain.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			db, mock := newMock(t)
			repo := NewUserRepository(db)

			mock.ExpectExec(`INSERT INTO users`).
				WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: tt.constraint})

			err := repo.Create(context.Background(), &domain.User{ID: "u-1", Username: "alice"})
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, domain.ErrConflict)
		})
	}
}

func TestUserRepository_CreateDBError(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(`INSERT INTO users`).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &domain.User{ID: "u-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.False(t, errors.Is(err, domain.ErrConflict))
}

func TestUserRepository_FindByEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	now := time.Now()
	email := "alice@example.com"

	mock.ExpectQuery(`SELECT id, username, password, .* FROM users WHERE email = \$1`).
		WithArgs(email).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow("u-1", "alice", "digest", "Alice", nil, nil, nil, domain.DefaultAvatar, email, nil, now, now))

	user, err := repo.FindByEmail(context.Background(), email)
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	require.NotNil(t, user.Email)
	assert.Equal(t, email, *user.Email)
	assert.Nil(t, user.PhoneNumber)
	assert.Nil(t, user.BirthDate)
}

func TestUserRepository_FindNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`FROM users WHERE phone_number = \$1`).
		WithArgs("+998901234567").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByPhone(context.Background(), "+998901234567")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	now := time.Now()

	mock.ExpectExec(`UPDATE users SET password = \$2, updated_at = \$3 WHERE id = \$1`).
		WithArgs("u-1", "new-digest", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE users SET password`).
		WithArgs("ghost", "new-digest", now).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.UpdatePassword(context.Background(), "u-1", "new-digest", now))
	assert.ErrorIs(t, repo.UpdatePassword(context.Background(), "ghost", "new-digest", now), domain.ErrUserNotFound)
}

func TestUserRepository_Search(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	now := time.Now()

	mock.ExpectQuery(`WHERE lower\(username\) LIKE \$1`).
		WithArgs(`%al\_i%`, 20).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow("u-1", "al_ice", "digest", "Alice", nil, nil, nil, domain.DefaultAvatar, nil, nil, now, now))

	users, err := repo.Search(context.Background(), "AL_I", 20)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "al_ice", users[0].Username)
}

func TestStore_InTxCommits(t *testing.T) {
	db, mock := newMock(t)
	store := NewPostgresStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.InTx(context.Background(), func(ctx context.Context, tx Store) error {
		return tx.Users().Delete(ctx, "u-1")
	})
	require.NoError(t, err)
}

func TestStore_InTxRollsBack(t *testing.T) {
	db, mock := newMock(t)
	store := NewPostgresStore(db)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO reset_codes`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectRollback()

	err := store.InTx(context.Background(), func(ctx context.Context, tx Store) error {
		if err := tx.ResetCodes().Create(ctx, &domain.ResetCode{UserID: "u-1", Code: 42}); err != nil {
			return err
		}
		// nested InTx joins the open transaction
		return tx.InTx(ctx, func(ctx context.Context, tx Store) error { return boom })
	})
	assert.ErrorIs(t, err, boom)
}

func TestMigrate(t *testing.T) {
	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}

	require.NoError(t, Migrate(context.Background(), nil))
	assert.Equal(t, ".", gotDir)

	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("migration failed")
	}
	assert.Error(t, Migrate(context.Background(), nil))
}
