package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/geocoder89/journal/internal/domain/entry"
	"github.com/geocoder89/journal/internal/domain/prompt"
	"github.com/geocoder89/journal/internal/domain/user"
	"github.com/geocoder89/journal/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EntriesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewEntriesRepo(pool *pgxpool.Pool, prom *observability.Prom) *EntriesRepo {
	return &EntriesRepo{pool: pool, prom: prom}
}

// dateExpr renders created_at exactly like entry.TimestampLayout.
const dateExpr = `to_char(a.created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS.MS"Z"')`

func (r *EntriesRepo) Create(ctx context.Context, e entry.Entry) (entry.Entry, error) {
	e.CreatedAt = entry.Stamp(e.CreatedAt)

	err := r.prom.ObserveDB("entries.create", func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO answers (question_id, user_id, text, created_at)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id`,
			e.PromptID, e.OwnerID, e.Text, e.CreatedAt,
		).Scan(&e.ID)
	})

	if err != nil {
		if constraint, ok := isForeignKeyViolation(err); ok {
			if strings.Contains(constraint, "question") {
				return entry.Entry{}, prompt.ErrNotFound
			}
			return entry.Entry{}, user.ErrNotFound
		}
		return entry.Entry{}, err
	}
	return e, nil
}

func (r *EntriesRepo) GetOwned(ctx context.Context, id, ownerID int64) (entry.Entry, error) {
	var e entry.Entry

	err := r.prom.ObserveDB("entries.get_owned", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, question_id, user_id, text, created_at
			 FROM answers
			 WHERE id = $1 AND user_id = $2`,
			id, ownerID,
		).Scan(&e.ID, &e.PromptID, &e.OwnerID, &e.Text, &e.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entry.Entry{}, entry.ErrNotFound
		}
		return entry.Entry{}, err
	}
	return e, nil
}

// UpdateText locks the row, re-checks ownership and the edit window, then
// writes. A concurrent update waits on the lock instead of racing the check.
func (r *EntriesRepo) UpdateText(ctx context.Context, id, ownerID int64, text string, now time.Time) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var (
		owner     int64
		createdAt time.Time
	)
	err = r.prom.ObserveDB("entries.update.lock", func() error {
		return tx.QueryRow(ctx,
			`SELECT user_id, created_at FROM answers WHERE id = $1 FOR UPDATE`, id,
		).Scan(&owner, &createdAt)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entry.ErrNotFound
		}
		return err
	}

	if owner != ownerID {
		return entry.ErrNotFound
	}
	if !entry.EditableAt(createdAt, now) {
		return entry.ErrEditWindowClosed
	}

	err = r.prom.ObserveDB("entries.update.write", func() error {
		_, e := tx.Exec(ctx, `UPDATE answers SET text = $2 WHERE id = $1`, id, text)
		return e
	})
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// filterSQL returns the WHERE clause shared by List and Count.
func filterSQL(f entry.ListFilter) (string, []any) {
	args := []any{f.OwnerID}
	where := `a.user_id = $1`

	if f.Search == "" {
		return where, args
	}

	args = append(args, containsPattern(f.Search))
	match := func(expr string) string { return expr + ` ILIKE $2 ESCAPE '\'` }

	switch f.Scope {
	case entry.ScopeKeyword:
		where += ` AND (` + match("a.text") + ` OR ` + match("q.text") + `)`
	case entry.ScopeQuestion:
		where += ` AND ` + match("q.text")
	case entry.ScopeDate:
		where += ` AND ` + match(dateExpr)
	default:
		where += ` AND (` + match("a.text") + ` OR ` + match("q.text") + ` OR ` + match(dateExpr) + `)`
	}

	return where, args
}

func (r *EntriesRepo) List(ctx context.Context, f entry.ListFilter) ([]entry.View, error) {
	where, args := filterSQL(f)

	query := `SELECT a.id, a.question_id, a.text, a.created_at, q.text
		FROM answers a
		JOIN questions q ON q.id = a.question_id
		WHERE ` + where + `
		ORDER BY a.created_at DESC, a.id ASC`

	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	var rows pgx.Rows
	err := r.prom.ObserveDB("entries.list", func() error {
		var err error
		rows, err = r.pool.Query(ctx, query, args...)
		return err
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entry.View, 0)
	for rows.Next() {
		var v entry.View
		if err := rows.Scan(&v.ID, &v.PromptID, &v.Text, &v.CreatedAt, &v.PromptText); err != nil {
			return nil, err
		}
		v.Date = entry.FormatTimestamp(v.CreatedAt)
		out = append(out, v)
	}

	return out, rows.Err()
}

func (r *EntriesRepo) Count(ctx context.Context, f entry.ListFilter) (int, error) {
	where, args := filterSQL(f)

	var n int
	err := r.prom.ObserveDB("entries.count", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT COUNT(*)
			 FROM answers a
			 JOIN questions q ON q.id = a.question_id
			 WHERE `+where,
			args...,
		).Scan(&n)
	})

	return n, err
}
