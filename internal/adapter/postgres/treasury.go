package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"fundraiser/internal/core/domain"
)

// treasury implements port.Treasury on the escrow and accounts tables.
type treasury struct{ t *ledgerTx }

func (tr treasury) Hold(ctx context.Context, amount uint64) error {
	if err := tr.t.checkWritable(); err != nil {
		return err
	}
	if err := bigint(amount); err != nil {
		return err
	}
	tag, err := tr.t.tx.Exec(ctx, `UPDATE escrow SET balance = balance + $1 WHERE id = 1 AND balance <= $2 - $1`,
		amount, domain.MaxAmount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAmountOverflow
	}
	return nil
}

func (tr treasury) Pay(ctx context.Context, to domain.Address, amount uint64) error {
	if err := tr.t.checkWritable(); err != nil {
		return err
	}
	if err := bigint(amount); err != nil {
		return err
	}
	accepts, err := tr.AcceptsFunds(ctx, to)
	if err != nil {
		return err
	}
	if !accepts {
		return domain.ErrTransferRejected
	}
	tag, err := tr.t.tx.Exec(ctx, `UPDATE escrow SET balance = balance - $1 WHERE id = 1 AND balance >= $1`, amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEscrowShortfall
	}
	tag, err = tr.t.tx.Exec(ctx, `INSERT INTO accounts (address, balance, accepts_funds, updated_at)
VALUES ($1, $2, true, now())
ON CONFLICT (address) DO UPDATE SET balance = accounts.balance + EXCLUDED.balance, updated_at = now()
WHERE accounts.balance <= $3 - EXCLUDED.balance`,
		to.String(), amount, domain.MaxAmount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAmountOverflow
	}
	return nil
}

func (tr treasury) Balance(ctx context.Context, addr domain.Address) (uint64, error) {
	var bal uint64
	err := tr.t.tx.QueryRow(ctx, `SELECT balance FROM accounts WHERE address = $1`, addr.String()).Scan(&bal)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return bal, err
}

func (tr treasury) AcceptsFunds(ctx context.Context, addr domain.Address) (bool, error) {
	var accepts bool
	err := tr.t.tx.QueryRow(ctx, `SELECT accepts_funds FROM accounts WHERE address = $1`, addr.String()).Scan(&accepts)
	if errors.Is(err, pgx.ErrNoRows) {
		return true, nil
	}
	return accepts, err
}

func (tr treasury) SetAcceptsFunds(ctx context.Context, addr domain.Address, accepts bool) error {
	if err := tr.t.checkWritable(); err != nil {
		return err
	}
	_, err := tr.t.tx.Exec(ctx, `INSERT INTO accounts (address, balance, accepts_funds, updated_at)
VALUES ($1, 0, $2, now())
ON CONFLICT (address) DO UPDATE SET accepts_funds = EXCLUDED.accepts_funds, updated_at = now()`,
		addr.String(), accepts)
	return err
}

func (tr treasury) EscrowBalance(ctx context.Context) (uint64, error) {
	var bal uint64
	err := tr.t.tx.QueryRow(ctx, `SELECT balance FROM escrow WHERE id = 1`).Scan(&bal)
	return bal, err
}
