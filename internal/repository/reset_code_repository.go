package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pixfeed-server/internal/domain"
)

type resetCodeRepository struct {
	db DBTX
}

func NewResetCodeRepository(db DBTX) ResetCodeRepository {
	return &resetCodeRepository{db: db}
}

func (r *resetCodeRepository) Create(ctx context.Context, code *domain.ResetCode) error {
	query := `INSERT INTO reset_codes (user_id, code, purpose, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		code.UserID, code.Code, code.Purpose, code.CreatedAt, code.ExpiresAt).Scan(&code.ID)
	if err != nil {
		return fmt.Errorf("failed to create reset code: %w", err)
	}
	return nil
}

// Consume removes at most one live code. Two callers racing on the same code
// cannot both see a returned row.
func (r *resetCodeRepository) Consume(ctx context.Context, userID string, code int, purpose string, now time.Time) error {
	query := `DELETE FROM reset_codes
		WHERE id = (
			SELECT id FROM reset_codes
			WHERE user_id = $1 AND code = $2 AND purpose = $3 AND expires_at > $4
			ORDER BY id
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id`

	var id int64
	err := r.db.QueryRowContext(ctx, query, userID, code, purpose, now).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrCodeNotFound
		}
		return fmt.Errorf("failed to consume reset code: %w", err)
	}
	return nil
}

func (r *resetCodeRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reset_codes WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to purge reset codes: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}
