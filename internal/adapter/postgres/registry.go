package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"fundraiser/internal/core/domain"
)

// registry implements port.OwnershipRegistry on the certificates table.
type registry struct{ t *ledgerTx }

func (r registry) Exists(ctx context.Context, id uint64) (bool, error) {
	var ok bool
	err := r.t.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM certificates WHERE id = $1)`, id).Scan(&ok)
	return ok, err
}

func (r registry) OwnerOf(ctx context.Context, id uint64) (domain.Address, error) {
	var owner string
	err := r.t.tx.QueryRow(ctx, `SELECT owner FROM certificates WHERE id = $1`, id).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrDoesNotExist
	}
	return domain.Address(owner), err
}

func (r registry) TokenURI(ctx context.Context, id uint64) (string, error) {
	var uri string
	err := r.t.tx.QueryRow(ctx, `SELECT uri FROM certificates WHERE id = $1`, id).Scan(&uri)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrDoesNotExist
	}
	return uri, err
}

func (r registry) Mint(ctx context.Context, to domain.Address, id uint64, uri string) error {
	if err := r.t.checkWritable(); err != nil {
		return err
	}
	if to == "" {
		return domain.ErrInvalidAddress
	}
	_, err := r.t.tx.Exec(ctx, `INSERT INTO certificates (id, owner, uri, created_at, updated_at) VALUES ($1, $2, $3, now(), now())`,
		id, to.String(), uri)
	return err
}

func (r registry) Transfer(ctx context.Context, from, to domain.Address, id uint64) error {
	if err := r.t.checkWritable(); err != nil {
		return err
	}
	if to == "" {
		return domain.ErrInvalidAddress
	}
	var owner string
	err := r.t.tx.QueryRow(ctx, `SELECT owner FROM certificates WHERE id = $1 FOR UPDATE`, id).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrDoesNotExist
	}
	if err != nil {
		return err
	}
	if domain.Address(owner) != from {
		return domain.ErrNotTokenOwner
	}
	_, err = r.t.tx.Exec(ctx, `UPDATE certificates SET owner = $2, updated_at = now() WHERE id = $1`, id, to.String())
	return err
}

func (r registry) BalanceOf(ctx context.Context, owner domain.Address) (uint64, error) {
	var n uint64
	err := r.t.tx.QueryRow(ctx, `SELECT count(*) FROM certificates WHERE owner = $1`, owner.String()).Scan(&n)
	return n, err
}
