package domain

import "errors"

// Precondition failures. Each one rejects the whole call with no state change.
var (
	ErrNotOwner         = errors.New("caller is not the campaign owner")
	ErrCompleted        = errors.New("campaign is completed")
	ErrDoesNotExist     = errors.New("campaign does not exist")
	ErrDonatedZero      = errors.New("donation must be greater than zero")
	ErrOverPayment      = errors.New("donation exceeds remaining target")
	ErrNotEnoughBalance = errors.New("withdrawal exceeds campaign balance")
	ErrAmountOverflow   = errors.New("amount overflows")
)

// Registry and treasury failures.
var (
	ErrInvalidAddress   = errors.New("invalid address")
	ErrNotTokenOwner    = errors.New("caller does not own the certificate")
	ErrTransferRejected = errors.New("recipient rejected transfer")
	ErrEscrowShortfall  = errors.New("escrow balance too low for payout")
	ErrInvalidAmount    = errors.New("invalid amount")
)
