package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/journal/internal/domain/prompt"
	"github.com/geocoder89/journal/internal/domain/user"
	"github.com/geocoder89/journal/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PromptsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewPromptsRepo(pool *pgxpool.Pool, prom *observability.Prom) *PromptsRepo {
	return &PromptsRepo{pool: pool, prom: prom}
}

func (r *PromptsRepo) Create(ctx context.Context, text string, ownerID *int64) (prompt.Prompt, error) {
	p := prompt.Prompt{Text: text, OwnerID: ownerID}

	err := r.prom.ObserveDB("prompts.create", func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO questions (text, user_id) VALUES ($1, $2) RETURNING id`,
			text, ownerID,
		).Scan(&p.ID)
	})

	if err != nil {
		if _, ok := isForeignKeyViolation(err); ok {
			return prompt.Prompt{}, user.ErrNotFound
		}
		return prompt.Prompt{}, err
	}
	return p, nil
}

// SeedGlobal inserts texts as global prompts only when the table is empty.
// The table lock keeps two instances starting together from both seeding.
func (r *PromptsRepo) SeedGlobal(ctx context.Context, texts []string) (seeded bool, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var count int
	err = r.prom.ObserveDB("prompts.seed.count", func() error {
		if _, e := tx.Exec(ctx, `LOCK TABLE questions IN EXCLUSIVE MODE`); e != nil {
			return e
		}
		return tx.QueryRow(ctx, `SELECT COUNT(*) FROM questions`).Scan(&count)
	})
	if err != nil {
		return false, err
	}

	if count > 0 || len(texts) == 0 {
		return false, nil
	}

	batch := &pgx.Batch{}
	for _, t := range texts {
		batch.Queue(`INSERT INTO questions (text, user_id) VALUES ($1, NULL)`, t)
	}

	err = r.prom.ObserveDB("prompts.seed.insert", func() error {
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return false, err
	}

	if err = tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (r *PromptsRepo) GetByID(ctx context.Context, id int64) (prompt.Prompt, error) {
	var p prompt.Prompt

	err := r.prom.ObserveDB("prompts.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, text, user_id FROM questions WHERE id = $1`, id,
		).Scan(&p.ID, &p.Text, &p.OwnerID)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return prompt.Prompt{}, prompt.ErrNotFound
		}
		return prompt.Prompt{}, err
	}
	return p, nil
}

func (r *PromptsRepo) ListEligible(ctx context.Context, userID int64) ([]prompt.Prompt, error) {
	var rows pgx.Rows

	err := r.prom.ObserveDB("prompts.list_eligible", func() error {
		var err error
		rows, err = r.pool.Query(ctx,
			`SELECT id, text, user_id
			 FROM questions
			 WHERE user_id IS NULL OR user_id = $1
			 ORDER BY id ASC`,
			userID,
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]prompt.Prompt, 0)
	for rows.Next() {
		var p prompt.Prompt
		if err := rows.Scan(&p.ID, &p.Text, &p.OwnerID); err != nil {
			return nil, err
		}
		out = append(out, p)
	}

	return out, rows.Err()
}
