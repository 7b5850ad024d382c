// Package relay forwards committed ledger notifications to external
// publishers. The store's event log is the source of truth; the relay keeps a
// cursor into it and only advances past a batch once every publisher has
// accepted it.
package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fundraiser/internal/core/domain"
	"fundraiser/internal/core/port"
)

// Source reads committed events after a sequence number.
type Source interface {
	Events(ctx context.Context, after int64, limit int) ([]domain.Event, error)
}

// Checkpoint persists the relay cursor across restarts.
type Checkpoint interface {
	Load(ctx context.Context) (int64, error)
	Save(ctx context.Context, seq int64) error
}

// Relay polls a Source and fans batches out to publishers.
type Relay struct {
	src        Source
	publishers []port.EventPublisher
	checkpoint Checkpoint
	logger     *slog.Logger
	interval   time.Duration
	batchSize  int
	cursor     int64
}

// New creates a relay starting at the beginning of the log.
func New(src Source, publishers []port.EventPublisher, interval time.Duration, batchSize int, logger *slog.Logger) *Relay {
	if interval <= 0 {
		interval = time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Relay{
		src:        src,
		publishers: publishers,
		logger:     logger,
		interval:   interval,
		batchSize:  batchSize,
	}
}

// Resume loads the cursor from cp and saves it there after every delivered
// batch. Without Resume the relay starts at the beginning of the log and
// keeps its cursor in memory only.
func (r *Relay) Resume(ctx context.Context, cp Checkpoint) error {
	seq, err := cp.Load(ctx)
	if err != nil {
		return fmt.Errorf("load relay cursor: %w", err)
	}
	r.cursor = seq
	r.checkpoint = cp
	return nil
}

// Cursor returns the sequence number of the last event delivered.
func (r *Relay) Cursor() int64 { return r.cursor }

// Run flushes on every tick until ctx is cancelled. Failed flushes are
// logged and retried on the next tick.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := r.Flush(ctx); err != nil && !errors.Is(err, context.Canceled) {
				r.logger.Error("relay flush error", slog.Int64("cursor", r.cursor), slog.Any("error", err))
			}
		}
	}
}

// Flush delivers every event after the cursor and returns how many were
// delivered. It stops at the first publisher error without advancing past
// the failing batch.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	delivered := 0
	for {
		events, err := r.src.Events(ctx, r.cursor, r.batchSize)
		if err != nil {
			return delivered, fmt.Errorf("read events after %d: %w", r.cursor, err)
		}
		if len(events) == 0 {
			return delivered, nil
		}
		for _, p := range r.publishers {
			if err = p.Publish(ctx, events); err != nil {
				return delivered, fmt.Errorf("publish %d events: %w", len(events), err)
			}
		}
		r.cursor = events[len(events)-1].Seq
		delivered += len(events)
		if r.checkpoint != nil {
			if err = r.checkpoint.Save(ctx, r.cursor); err != nil {
				return delivered, fmt.Errorf("save relay cursor %d: %w", r.cursor, err)
			}
		}
		if len(events) < r.batchSize {
			return delivered, nil
		}
	}
}

// StoreCheckpoint keeps the cursor in the ledger store under a consumer name.
type StoreCheckpoint struct {
	store port.Store
	name  string
}

// NewStoreCheckpoint returns a checkpoint stored under name.
func NewStoreCheckpoint(store port.Store, name string) *StoreCheckpoint {
	return &StoreCheckpoint{store: store, name: name}
}

// Load implements Checkpoint.
func (c *StoreCheckpoint) Load(ctx context.Context) (int64, error) {
	var seq int64
	err := c.store.View(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		var err error
		seq, err = tx.Cursors().Get(ctx, c.name)
		return err
	})
	return seq, err
}

// Save implements Checkpoint.
func (c *StoreCheckpoint) Save(ctx context.Context, seq int64) error {
	return c.store.InTx(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		return tx.Cursors().Set(ctx, c.name, seq)
	})
}

// LogPublisher writes every event to a structured logger.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher returns a publisher logging at info level.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish implements port.EventPublisher.
func (p *LogPublisher) Publish(ctx context.Context, events []domain.Event) error {
	for _, e := range events {
		p.logger.LogAttrs(ctx, slog.LevelInfo, "ledger event",
			slog.Int64("seq", e.Seq),
			slog.String("kind", string(e.Kind)),
			slog.Uint64("campaign_id", e.CampaignID),
			slog.String("actor", e.Actor.String()),
			slog.Uint64("amount", e.Amount))
	}
	return nil
}
