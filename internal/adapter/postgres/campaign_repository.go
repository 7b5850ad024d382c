package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"fundraiser/internal/core/domain"
)

type campaignRepo struct{ t *ledgerTx }

// NextID bumps the counter row inside the transaction, so a rolled back
// start leaves no gap in the id sequence.
func (r campaignRepo) NextID(ctx context.Context) (uint64, error) {
	if err := r.t.checkWritable(); err != nil {
		return 0, err
	}
	var id uint64
	err := r.t.tx.QueryRow(ctx, `UPDATE token_counter SET last_id = last_id + 1 WHERE id = 1 RETURNING last_id`).Scan(&id)
	return id, err
}

func (r campaignRepo) LastID(ctx context.Context) (uint64, error) {
	var id uint64
	err := r.t.tx.QueryRow(ctx, `SELECT last_id FROM token_counter WHERE id = 1`).Scan(&id)
	return id, err
}

func (r campaignRepo) Insert(ctx context.Context, c domain.Campaign) error {
	if err := r.t.checkWritable(); err != nil {
		return err
	}
	if bigint(c.RequiredAmt) != nil || bigint(c.CurrAmt) != nil {
		return domain.ErrAmountOverflow
	}
	_, err := r.t.tx.Exec(ctx, `INSERT INTO campaigns (id, required_amt, curr_amt, completed, created_at, updated_at)
VALUES ($1, $2, $3, $4, now(), now())`, c.ID, c.RequiredAmt, c.CurrAmt, c.Completed)
	return err
}

// Get locks the campaign row when called from a writable transaction.
func (r campaignRepo) Get(ctx context.Context, id uint64) (*domain.Campaign, error) {
	query := `SELECT c.id, c.required_amt, c.curr_amt, c.completed, t.uri
FROM campaigns c
JOIN certificates t ON t.id = c.id
WHERE c.id = $1`
	if r.t.writable {
		query += ` FOR UPDATE OF c`
	}
	var c domain.Campaign
	err := r.t.tx.QueryRow(ctx, query, id).Scan(&c.ID, &c.RequiredAmt, &c.CurrAmt, &c.Completed, &c.URI)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r campaignRepo) Update(ctx context.Context, c domain.Campaign) error {
	if err := r.t.checkWritable(); err != nil {
		return err
	}
	if bigint(c.RequiredAmt) != nil || bigint(c.CurrAmt) != nil {
		return domain.ErrAmountOverflow
	}
	tag, err := r.t.tx.Exec(ctx, `UPDATE campaigns SET required_amt = $2, curr_amt = $3, completed = $4, updated_at = now() WHERE id = $1`,
		c.ID, c.RequiredAmt, c.CurrAmt, c.Completed)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("campaign %d: %w", c.ID, domain.ErrDoesNotExist)
	}
	return nil
}
