package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/journal/internal/domain/user"
	"github.com/geocoder89/journal/internal/domain/verification"
	"github.com/geocoder89/journal/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type VerificationCodesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewVerificationCodesRepo(pool *pgxpool.Pool, prom *observability.Prom) *VerificationCodesRepo {
	return &VerificationCodesRepo{pool: pool, prom: prom}
}

func (r *VerificationCodesRepo) Create(ctx context.Context, userID int64, code string, expiresAt, createdAt time.Time) (verification.Code, error) {
	c := verification.Code{
		UserID:    userID,
		Code:      code,
		ExpiresAt: expiresAt,
		CreatedAt: createdAt,
	}

	err := r.prom.ObserveDB("verification_codes.create", func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO two_factor_verification (user_id, code, expires_at, created_at)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id`,
			userID, code, expiresAt, createdAt,
		).Scan(&c.ID)
	})

	if err != nil {
		if _, ok := isForeignKeyViolation(err); ok {
			return verification.Code{}, user.ErrNotFound
		}
		return verification.Code{}, err
	}
	return c, nil
}

// FindValid returns the newest matching code that has not expired at now.
func (r *VerificationCodesRepo) FindValid(ctx context.Context, userID int64, code string, now time.Time) (verification.Code, error) {
	var c verification.Code

	err := r.prom.ObserveDB("verification_codes.find_valid", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, user_id, code, expires_at, created_at
			 FROM two_factor_verification
			 WHERE user_id = $1 AND code = $2 AND expires_at > $3
			 ORDER BY id DESC
			 LIMIT 1`,
			userID, code, now,
		).Scan(&c.ID, &c.UserID, &c.Code, &c.ExpiresAt, &c.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return verification.Code{}, verification.ErrNotFound
		}
		return verification.Code{}, err
	}
	return c, nil
}
