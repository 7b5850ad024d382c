package memory

import (
	"context"
	"fmt"

	"fundraiser/internal/core/domain"
)

type registry struct{ tx *ledgerTx }

func (r registry) Exists(_ context.Context, id uint64) (bool, error) {
	_, ok := r.tx.cert(id)
	return ok, nil
}

func (r registry) OwnerOf(_ context.Context, id uint64) (domain.Address, error) {
	cert, ok := r.tx.cert(id)
	if !ok {
		return "", domain.ErrDoesNotExist
	}
	return cert.Owner, nil
}

func (r registry) TokenURI(_ context.Context, id uint64) (string, error) {
	cert, ok := r.tx.cert(id)
	if !ok {
		return "", domain.ErrDoesNotExist
	}
	return cert.URI, nil
}

func (r registry) Mint(_ context.Context, to domain.Address, id uint64, uri string) error {
	if err := r.tx.checkWritable(); err != nil {
		return err
	}
	if to == "" {
		return domain.ErrInvalidAddress
	}
	if _, ok := r.tx.cert(id); ok {
		return fmt.Errorf("certificate %d already minted", id)
	}
	r.tx.certs[id] = domain.Certificate{ID: id, Owner: to, URI: uri}
	r.tx.holdings[to] = r.tx.holding(to) + 1
	return nil
}

func (r registry) Transfer(_ context.Context, from, to domain.Address, id uint64) error {
	if err := r.tx.checkWritable(); err != nil {
		return err
	}
	cert, ok := r.tx.cert(id)
	if !ok {
		return domain.ErrDoesNotExist
	}
	if cert.Owner != from {
		return domain.ErrNotTokenOwner
	}
	if to == "" {
		return domain.ErrInvalidAddress
	}
	cert.Owner = to
	r.tx.certs[id] = cert
	r.tx.holdings[from] = r.tx.holding(from) - 1
	r.tx.holdings[to] = r.tx.holding(to) + 1
	return nil
}

func (r registry) BalanceOf(_ context.Context, owner domain.Address) (uint64, error) {
	return r.tx.holding(owner), nil
}
