package resource

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockhubapp/stockhub/internal/observability"
)

// PgxRunner executes rendered SQL against a pgx pool, decoding result rows
// into schema-less Row maps keyed by the columns the query actually
// selected.
type PgxRunner struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

// NewPgxRunner wires a pool and optional metrics. prom may be nil in tests.
func NewPgxRunner(pool *pgxpool.Pool, prom *observability.Prom) *PgxRunner {
	return &PgxRunner{pool: pool, prom: prom}
}

func (r *PgxRunner) Select(ctx context.Context, sql string, args ...any) ([]Row, error) {
	out := []Row{}

	err := r.observe("select", func() error {
		rows, err := r.pool.Query(ctx, sql, args...)

		if err != nil {
			return err
		}

		defer rows.Close()

		fields := rows.FieldDescriptions()

		for rows.Next() {
			vals, err := rows.Values()

			if err != nil {
				return err
			}

			m := make(Row, len(fields))

			for i, f := range fields {
				m[f.Name] = vals[i]
			}

			out = append(out, m)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *PgxRunner) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	var affected int64

	err := r.observe("exec", func() error {
		tag, err := r.pool.Exec(ctx, sql, args...)

		if err != nil {
			return err
		}

		affected = tag.RowsAffected()

		return nil
	})

	if err != nil {
		return 0, err
	}

	return affected, nil
}

func (r *PgxRunner) observe(op string, fn func() error) error {
	if r.prom == nil {
		return fn()
	}

	return r.prom.ObserveDB(op, fn)
}
