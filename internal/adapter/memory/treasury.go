package memory

import (
	"context"

	"fundraiser/internal/core/domain"
)

type treasury struct{ tx *ledgerTx }

func (t treasury) Hold(_ context.Context, amount uint64) error {
	if err := t.tx.checkWritable(); err != nil {
		return err
	}
	if amount > domain.MaxAmount-t.tx.escrow {
		return domain.ErrAmountOverflow
	}
	t.tx.escrow += amount
	return nil
}

func (t treasury) Pay(_ context.Context, to domain.Address, amount uint64) error {
	if err := t.tx.checkWritable(); err != nil {
		return err
	}
	acc := t.tx.account(to)
	if acc.refusing {
		return domain.ErrTransferRejected
	}
	if amount > t.tx.escrow {
		return domain.ErrEscrowShortfall
	}
	if amount > domain.MaxAmount-acc.balance {
		return domain.ErrAmountOverflow
	}
	t.tx.escrow -= amount
	acc.balance += amount
	t.tx.accounts[to] = acc
	return nil
}

func (t treasury) Balance(_ context.Context, addr domain.Address) (uint64, error) {
	return t.tx.account(addr).balance, nil
}

func (t treasury) AcceptsFunds(_ context.Context, addr domain.Address) (bool, error) {
	return !t.tx.account(addr).refusing, nil
}

func (t treasury) SetAcceptsFunds(_ context.Context, addr domain.Address, accepts bool) error {
	if err := t.tx.checkWritable(); err != nil {
		return err
	}
	acc := t.tx.account(addr)
	acc.refusing = !accepts
	t.tx.accounts[addr] = acc
	return nil
}

func (t treasury) EscrowBalance(_ context.Context) (uint64, error) {
	return t.tx.escrow, nil
}
