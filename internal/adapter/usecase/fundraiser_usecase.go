package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"fundraiser/internal/core/domain"
	"fundraiser/internal/core/port"
)

// FundraiserUseCase implements port.FundraiserUseCase on top of a port.Store.
// Mutating calls are serialized by mu and each one runs as a single unit of
// work, so a failed payout discards every change staged by the same call.
type FundraiserUseCase struct {
	store  port.Store
	logger *slog.Logger

	mu  sync.Mutex
	now func() time.Time
}

// NewFundraiserUseCase creates a ledger service backed by store.
func NewFundraiserUseCase(store port.Store, logger *slog.Logger) *FundraiserUseCase {
	return &FundraiserUseCase{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// StartCampaign allocates the next id, mints the certificate to caller and
// records the target.
func (u *FundraiserUseCase) StartCampaign(ctx context.Context, caller domain.Address, uri string, requiredAmt uint64) (uint64, error) {
	if caller == "" {
		return 0, domain.ErrInvalidAddress
	}
	if err := domain.CheckAmount(requiredAmt); err != nil {
		return 0, err
	}
	var id uint64
	err := u.mutate(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		var err error
		if id, err = tx.Campaigns().NextID(ctx); err != nil {
			return fmt.Errorf("allocate id: %w", err)
		}
		if err = tx.Registry().Mint(ctx, caller, id, uri); err != nil {
			return fmt.Errorf("mint certificate %d: %w", id, err)
		}
		if err = tx.Campaigns().Insert(ctx, domain.NewCampaign(id, requiredAmt)); err != nil {
			return fmt.Errorf("insert campaign %d: %w", id, err)
		}
		return u.emit(ctx, tx, domain.Event{
			Kind:       domain.EventStartCampaign,
			CampaignID: id,
			Actor:      caller,
			Amount:     requiredAmt,
		})
	})
	if err != nil {
		return 0, err
	}
	u.logger.Info("campaign started",
		slog.Uint64("campaign_id", id),
		slog.String("owner", caller.String()),
		slog.Uint64("required_amt", requiredAmt))
	return id, nil
}

// ExtendCampaign raises the target. Checks run in the order existence,
// ownership, completion.
func (u *FundraiserUseCase) ExtendCampaign(ctx context.Context, caller domain.Address, id, amount uint64) error {
	return u.mutate(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		c, err := u.loadOwned(ctx, tx, caller, id)
		if err != nil {
			return err
		}
		if err = c.Extend(amount); err != nil {
			return err
		}
		if err = tx.Campaigns().Update(ctx, *c); err != nil {
			return fmt.Errorf("update campaign %d: %w", id, err)
		}
		return u.emit(ctx, tx, domain.Event{
			Kind:       domain.EventExtendCampaign,
			CampaignID: id,
			Actor:      caller,
			Amount:     amount,
		})
	})
}

// Donate credits value to the campaign and moves it into escrow. Anyone may
// donate, including the owner.
func (u *FundraiserUseCase) Donate(ctx context.Context, donor domain.Address, id, value uint64) error {
	if donor == "" {
		return domain.ErrInvalidAddress
	}
	return u.mutate(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		c, err := u.load(ctx, tx, id)
		if err != nil {
			return err
		}
		if err = c.Donate(value); err != nil {
			return err
		}
		if err = tx.Campaigns().Update(ctx, *c); err != nil {
			return fmt.Errorf("update campaign %d: %w", id, err)
		}
		if err = tx.Treasury().Hold(ctx, value); err != nil {
			return fmt.Errorf("hold donation: %w", err)
		}
		return u.emit(ctx, tx, domain.Event{
			Kind:       domain.EventDonate,
			CampaignID: id,
			Actor:      donor,
			Amount:     value,
		})
	})
}

// Withdraw lowers balance and target by amount and pays the owner. The
// payout is the last step of the unit of work.
func (u *FundraiserUseCase) Withdraw(ctx context.Context, caller domain.Address, id, amount uint64) error {
	return u.mutate(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		c, err := u.loadOwned(ctx, tx, caller, id)
		if err != nil {
			return err
		}
		if err = c.Withdraw(amount); err != nil {
			return err
		}
		if err = tx.Campaigns().Update(ctx, *c); err != nil {
			return fmt.Errorf("update campaign %d: %w", id, err)
		}
		err = u.emit(ctx, tx, domain.Event{
			Kind:       domain.EventWithdraw,
			CampaignID: id,
			Actor:      caller,
			Amount:     amount,
		})
		if err != nil {
			return err
		}
		return u.pay(ctx, tx, caller, id, amount)
	})
}

// EndCampaign marks the campaign completed and sweeps its balance to the
// owner. RequiredAmt and CurrAmt keep their final values.
func (u *FundraiserUseCase) EndCampaign(ctx context.Context, caller domain.Address, id uint64) error {
	return u.mutate(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		c, err := u.loadOwned(ctx, tx, caller, id)
		if err != nil {
			return err
		}
		swept, err := c.End()
		if err != nil {
			return err
		}
		if err = tx.Campaigns().Update(ctx, *c); err != nil {
			return fmt.Errorf("update campaign %d: %w", id, err)
		}
		err = u.emit(ctx, tx, domain.Event{
			Kind:       domain.EventEndCampaign,
			CampaignID: id,
			Actor:      caller,
			Amount:     swept,
		})
		if err != nil {
			return err
		}
		return u.pay(ctx, tx, caller, id, swept)
	})
}

// TransferCertificate moves control of a campaign to another account. The
// ledger does not restrict transfers beyond requiring caller to hold the
// certificate; completed campaigns may change hands too.
func (u *FundraiserUseCase) TransferCertificate(ctx context.Context, caller, to domain.Address, id uint64) error {
	if caller == "" || to == "" {
		return domain.ErrInvalidAddress
	}
	return u.mutate(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		if err := tx.Registry().Transfer(ctx, caller, to, id); err != nil {
			return err
		}
		return u.emit(ctx, tx, domain.Event{
			Kind:       domain.EventTransfer,
			CampaignID: id,
			Actor:      caller,
			Recipient:  to,
		})
	})
}

// SetAcceptsFunds lets an account refuse or accept payouts.
func (u *FundraiserUseCase) SetAcceptsFunds(ctx context.Context, caller domain.Address, accepts bool) error {
	if caller == "" {
		return domain.ErrInvalidAddress
	}
	return u.mutate(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		return tx.Treasury().SetAcceptsFunds(ctx, caller, accepts)
	})
}

// GetCampaign returns the committed record of id joined with its owner.
func (u *FundraiserUseCase) GetCampaign(ctx context.Context, id uint64) (*port.CampaignView, error) {
	view := &port.CampaignView{Campaign: domain.Campaign{ID: id}}
	err := u.store.View(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		c, err := tx.Campaigns().Get(ctx, id)
		if err != nil || c == nil {
			return err
		}
		owner, err := tx.Registry().OwnerOf(ctx, id)
		if err != nil {
			return err
		}
		view.Campaign = *c
		view.Owner = owner
		view.Exists = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// GetLastTokenID returns the number of campaigns ever started.
func (u *FundraiserUseCase) GetLastTokenID(ctx context.Context) (uint64, error) {
	var last uint64
	err := u.store.View(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		var err error
		last, err = tx.Campaigns().LastID(ctx)
		return err
	})
	return last, err
}

// Certificate returns owner and metadata URI of a certificate.
func (u *FundraiserUseCase) Certificate(ctx context.Context, id uint64) (*domain.Certificate, error) {
	cert := &domain.Certificate{ID: id}
	err := u.store.View(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		var err error
		if cert.Owner, err = tx.Registry().OwnerOf(ctx, id); err != nil {
			return err
		}
		cert.URI, err = tx.Registry().TokenURI(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cert, nil
}

// Account returns the payout balance and certificate count of addr.
func (u *FundraiserUseCase) Account(ctx context.Context, addr domain.Address) (*port.AccountView, error) {
	view := &port.AccountView{Address: addr}
	err := u.store.View(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		var err error
		if view.Balance, err = tx.Treasury().Balance(ctx, addr); err != nil {
			return err
		}
		if view.AcceptsFunds, err = tx.Treasury().AcceptsFunds(ctx, addr); err != nil {
			return err
		}
		view.Certificates, err = tx.Registry().BalanceOf(ctx, addr)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// EscrowBalance returns the value held on behalf of all campaigns.
func (u *FundraiserUseCase) EscrowBalance(ctx context.Context) (uint64, error) {
	var bal uint64
	err := u.store.View(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		var err error
		bal, err = tx.Treasury().EscrowBalance(ctx)
		return err
	})
	return bal, err
}

// Events lists committed notifications after the given sequence number.
func (u *FundraiserUseCase) Events(ctx context.Context, after int64, limit int) ([]domain.Event, error) {
	var events []domain.Event
	err := u.store.View(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		var err error
		events, err = tx.Events().After(ctx, after, limit)
		return err
	})
	return events, err
}

// mutate runs fn as one serialized unit of work.
func (u *FundraiserUseCase) mutate(ctx context.Context, fn func(ctx context.Context, tx port.LedgerTx) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.store.InTx(ctx, fn)
}

// load fetches a campaign, failing with ErrDoesNotExist for unknown ids.
func (u *FundraiserUseCase) load(ctx context.Context, tx port.LedgerTx, id uint64) (*domain.Campaign, error) {
	exists, err := tx.Registry().Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrDoesNotExist
	}
	c, err := tx.Campaigns().Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load campaign %d: %w", id, err)
	}
	if c == nil {
		return nil, fmt.Errorf("certificate %d has no ledger record", id)
	}
	return c, nil
}

// loadOwned is load followed by the current-owner check.
func (u *FundraiserUseCase) loadOwned(ctx context.Context, tx port.LedgerTx, caller domain.Address, id uint64) (*domain.Campaign, error) {
	c, err := u.load(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	owner, err := tx.Registry().OwnerOf(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller == "" || owner != caller {
		return nil, domain.ErrNotOwner
	}
	return c, nil
}

func (u *FundraiserUseCase) pay(ctx context.Context, tx port.LedgerTx, to domain.Address, id, amount uint64) error {
	if err := tx.Treasury().Pay(ctx, to, amount); err != nil {
		u.logger.Warn("payout failed, rolling back",
			slog.Uint64("campaign_id", id),
			slog.String("recipient", to.String()),
			slog.Uint64("amount", amount),
			slog.Any("error", err))
		return fmt.Errorf("pay %s: %w", to, err)
	}
	return nil
}

func (u *FundraiserUseCase) emit(ctx context.Context, tx port.LedgerTx, e domain.Event) error {
	e.ID = uuid.NewString()
	e.CreatedAt = u.now()
	if _, err := tx.Events().Append(ctx, e); err != nil {
		return fmt.Errorf("append %s event: %w", e.Kind, err)
	}
	return nil
}
