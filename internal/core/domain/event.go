package domain

import "time"

// EventKind names the mutating call a notification was emitted by.
type EventKind string

const (
	EventStartCampaign  EventKind = "StartCampaign"
	EventExtendCampaign EventKind = "ExtendCampaign"
	EventDonate         EventKind = "Donate"
	EventWithdraw       EventKind = "Withdraw"
	EventEndCampaign    EventKind = "EndCampaign"
	EventTransfer       EventKind = "Transfer"
)

// Event is one append-only notification. Seq is assigned by the store on
// commit and orders events by call sequence. Amount carries requiredAmt for
// StartCampaign, the extension for ExtendCampaign, the donated value, the
// withdrawn amount or the swept balance. Recipient is only set for Transfer.
type Event struct {
	Seq        int64
	ID         string
	Kind       EventKind
	CampaignID uint64
	Actor      Address
	Recipient  Address
	Amount     uint64
	CreatedAt  time.Time
}
