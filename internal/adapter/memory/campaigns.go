package memory

import (
	"context"
	"fmt"

	"fundraiser/internal/core/domain"
)

type campaignRepo struct{ tx *ledgerTx }

func (r campaignRepo) NextID(_ context.Context) (uint64, error) {
	if err := r.tx.checkWritable(); err != nil {
		return 0, err
	}
	r.tx.lastID++
	return r.tx.lastID, nil
}

func (r campaignRepo) LastID(_ context.Context) (uint64, error) {
	return r.tx.lastID, nil
}

func (r campaignRepo) Insert(_ context.Context, c domain.Campaign) error {
	if err := r.tx.checkWritable(); err != nil {
		return err
	}
	if _, ok := r.tx.campaign(c.ID); ok {
		return fmt.Errorf("campaign %d already exists", c.ID)
	}
	c.URI = ""
	r.tx.campaigns[c.ID] = c
	return nil
}

func (r campaignRepo) Get(_ context.Context, id uint64) (*domain.Campaign, error) {
	c, ok := r.tx.campaign(id)
	if !ok {
		return nil, nil
	}
	cert, _ := r.tx.cert(id)
	c.URI = cert.URI
	return &c, nil
}

func (r campaignRepo) Update(_ context.Context, c domain.Campaign) error {
	if err := r.tx.checkWritable(); err != nil {
		return err
	}
	if _, ok := r.tx.campaign(c.ID); !ok {
		return domain.ErrDoesNotExist
	}
	c.URI = ""
	r.tx.campaigns[c.ID] = c
	return nil
}
