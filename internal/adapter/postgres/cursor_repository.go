package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// cursorRepo implements port.CursorRepository on the consumer_cursors table.
type cursorRepo struct{ t *ledgerTx }

func (r cursorRepo) Get(ctx context.Context, name string) (int64, error) {
	var seq int64
	err := r.t.tx.QueryRow(ctx, `SELECT seq FROM consumer_cursors WHERE name = $1`, name).Scan(&seq)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return seq, err
}

func (r cursorRepo) Set(ctx context.Context, name string, seq int64) error {
	if err := r.t.checkWritable(); err != nil {
		return err
	}
	_, err := r.t.tx.Exec(ctx, `INSERT INTO consumer_cursors (name, seq, updated_at) VALUES ($1, $2, now())
ON CONFLICT (name) DO UPDATE SET seq = EXCLUDED.seq, updated_at = now()`, name, seq)
	return err
}
