package port

import (
	"context"

	"fundraiser/internal/core/domain"
)

// FundraiserUseCase defines the operations exposed by the campaign ledger.
// It is the primary port into the application domain. Mutating calls are
// serialized and atomic; queries read the latest committed state.
type FundraiserUseCase interface {
	// StartCampaign mints a certificate for caller and opens a campaign with
	// the given target. It returns the new campaign id.
	StartCampaign(ctx context.Context, caller domain.Address, uri string, requiredAmt uint64) (uint64, error)

	// ExtendCampaign raises the target of an open campaign owned by caller.
	ExtendCampaign(ctx context.Context, caller domain.Address, id, amount uint64) error

	// Donate records value against an open campaign. The value is held in
	// escrow until the owner withdraws or ends the campaign.
	Donate(ctx context.Context, donor domain.Address, id, value uint64) error

	// Withdraw pays amount out of the campaign balance to its owner and
	// lowers the target by the same amount.
	Withdraw(ctx context.Context, caller domain.Address, id, amount uint64) error

	// EndCampaign finalizes a campaign and pays its remaining balance to the
	// owner.
	EndCampaign(ctx context.Context, caller domain.Address, id uint64) error

	// GetCampaign returns the campaign record. Unknown ids yield a zero
	// record with Exists unset rather than an error.
	GetCampaign(ctx context.Context, id uint64) (*CampaignView, error)

	// GetLastTokenID returns the highest campaign id issued so far.
	GetLastTokenID(ctx context.Context) (uint64, error)

	// Certificate returns the ownership record of a campaign certificate.
	Certificate(ctx context.Context, id uint64) (*domain.Certificate, error)

	// TransferCertificate hands a certificate, and with it control over the
	// campaign, from caller to another account.
	TransferCertificate(ctx context.Context, caller, to domain.Address, id uint64) error

	// Account returns the payout balance and holdings of an address.
	Account(ctx context.Context, addr domain.Address) (*AccountView, error)

	// SetAcceptsFunds toggles whether caller's account accepts payouts.
	SetAcceptsFunds(ctx context.Context, caller domain.Address, accepts bool) error

	// EscrowBalance returns the value currently held on behalf of campaigns.
	EscrowBalance(ctx context.Context) (uint64, error)

	// Events lists notifications with a sequence number above after.
	Events(ctx context.Context, after int64, limit int) ([]domain.Event, error)
}

// CampaignView is a campaign record joined with its certificate owner.
type CampaignView struct {
	domain.Campaign
	Owner  domain.Address
	Exists bool
}

// AccountView summarises an address.
type AccountView struct {
	Address      domain.Address
	Balance      uint64
	Certificates uint64
	AcceptsFunds bool
}
