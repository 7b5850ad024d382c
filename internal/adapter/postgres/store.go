package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fundraiser/internal/core/domain"
	"fundraiser/internal/core/port"
)

// ledgerLockKey is the advisory lock every writable unit of work takes, so
// mutations stay serialized even across several service instances.
const ledgerLockKey int64 = 0x46524300 // "FRC\x00"

// Store implements port.Store using pgxpool for PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore returns a new store instance.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// InTx runs fn in a read-committed transaction holding the ledger advisory
// lock. Every statement after the lock sees the commits of the previous
// holder, and together with the row locks taken by Get this makes the lock
// holder the only writer. The transaction commits only when fn succeeds.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx port.LedgerTx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if err = tx.Commit(ctx); err != nil {
			err = fmt.Errorf("commit: %w", err)
		}
	}()
	if _, err = tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, ledgerLockKey); err != nil {
		return fmt.Errorf("acquire ledger lock: %w", err)
	}
	return fn(ctx, &ledgerTx{tx: tx, writable: true})
}

// View runs fn in a read-only repeatable-read transaction. Readers never take
// the advisory lock, so they see the last committed state without waiting.
func (s *Store) View(ctx context.Context, fn func(ctx context.Context, tx port.LedgerTx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	return fn(ctx, &ledgerTx{tx: tx})
}

type ledgerTx struct {
	tx       pgx.Tx
	writable bool
}

func (t *ledgerTx) Campaigns() port.CampaignRepository { return campaignRepo{t} }
func (t *ledgerTx) Registry() port.OwnershipRegistry   { return registry{t} }
func (t *ledgerTx) Treasury() port.Treasury            { return treasury{t} }
func (t *ledgerTx) Events() port.EventLog              { return eventLog{t} }
func (t *ledgerTx) Cursors() port.CursorRepository     { return cursorRepo{t} }

func (t *ledgerTx) checkWritable() error {
	if !t.writable {
		return port.ErrReadOnly
	}
	return nil
}

// bigint reports whether v fits a BIGINT column.
func bigint(v uint64) error {
	return domain.CheckAmount(v)
}
