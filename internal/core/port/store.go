package port

import (
	"context"
	"errors"

	"fundraiser/internal/core/domain"
)

// ErrReadOnly is returned when a write is attempted inside Store.View.
var ErrReadOnly = errors.New("read-only unit of work")

// Store is the outbound persistence port. Every mutating ledger call runs
// inside exactly one InTx unit of work: if fn returns an error nothing it
// staged becomes visible, including events and payouts. Implementations must
// serialize units of work so that no two run interleaved.
type Store interface {
	// InTx runs fn in a writable unit of work and commits when fn returns nil.
	InTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error
	// View runs fn against the last committed state. It never waits for an
	// in-flight InTx to finish.
	View(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error
}

// LedgerTx groups the repositories bound to one unit of work.
type LedgerTx interface {
	Campaigns() CampaignRepository
	Registry() OwnershipRegistry
	Treasury() Treasury
	Events() EventLog
	Cursors() CursorRepository
}

// CampaignRepository stores the monetary state of campaigns.
type CampaignRepository interface {
	// NextID allocates the next dense campaign identifier.
	NextID(ctx context.Context) (uint64, error)
	// LastID returns the highest identifier issued so far, 0 when none.
	LastID(ctx context.Context) (uint64, error)
	// Insert stores a new campaign record.
	Insert(ctx context.Context, c domain.Campaign) error
	// Get returns a campaign by id, or nil when it was never issued. Inside
	// InTx the row stays locked until the unit of work ends.
	Get(ctx context.Context, id uint64) (*domain.Campaign, error)
	// Update overwrites the monetary fields of an existing campaign.
	Update(ctx context.Context, c domain.Campaign) error
}

// OwnershipRegistry tracks certificate ownership and metadata. The ledger
// only consults it; it never decides who may transfer a certificate beyond
// requiring the sender to be the holder.
type OwnershipRegistry interface {
	Exists(ctx context.Context, id uint64) (bool, error)
	// OwnerOf returns domain.ErrDoesNotExist for unknown ids.
	OwnerOf(ctx context.Context, id uint64) (domain.Address, error)
	// TokenURI returns domain.ErrDoesNotExist for unknown ids.
	TokenURI(ctx context.Context, id uint64) (string, error)
	Mint(ctx context.Context, to domain.Address, id uint64, uri string) error
	// Transfer moves the certificate from -> to. It fails with
	// domain.ErrNotTokenOwner when from does not hold it.
	Transfer(ctx context.Context, from, to domain.Address, id uint64) error
	// BalanceOf counts the certificates held by owner.
	BalanceOf(ctx context.Context, owner domain.Address) (uint64, error)
}

// Treasury holds donated value in escrow and pays it out.
type Treasury interface {
	// Hold adds donated value to escrow.
	Hold(ctx context.Context, amount uint64) error
	// Pay moves amount out of escrow to the recipient. It fails with
	// domain.ErrTransferRejected when the recipient refuses funds and with
	// domain.ErrEscrowShortfall when escrow cannot cover the amount.
	Pay(ctx context.Context, to domain.Address, amount uint64) error
	Balance(ctx context.Context, addr domain.Address) (uint64, error)
	AcceptsFunds(ctx context.Context, addr domain.Address) (bool, error)
	SetAcceptsFunds(ctx context.Context, addr domain.Address, accepts bool) error
	EscrowBalance(ctx context.Context) (uint64, error)
}

// EventLog is the append-only notification log.
type EventLog interface {
	// Append stores e and returns its sequence number.
	Append(ctx context.Context, e domain.Event) (int64, error)
	// After returns up to limit events with Seq > seq in ascending order.
	After(ctx context.Context, seq int64, limit int) ([]domain.Event, error)
}

// CursorRepository remembers how far named consumers of the event log have
// read, so they resume after a restart instead of replaying the log.
type CursorRepository interface {
	// Get returns the last sequence number stored under name, 0 when none.
	Get(ctx context.Context, name string) (int64, error)
	Set(ctx context.Context, name string, seq int64) error
}
