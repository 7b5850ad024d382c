package domain

import "math"

// MaxAmount bounds every amount the ledger stores: targets, balances, escrow
// and account balances. It matches the signed 64-bit columns of the postgres
// backend, and the memory backend enforces the same limit.
const MaxAmount uint64 = math.MaxInt64

// CheckAmount rejects amounts above MaxAmount.
func CheckAmount(v uint64) error {
	if v > MaxAmount {
		return ErrAmountOverflow
	}
	return nil
}

// Campaign is the ledger record kept for one certificate. Amounts are in the
// smallest monetary unit. The URI and owner live in the ownership registry
// and are copied in by queries for convenience only.
type Campaign struct {
	ID          uint64
	RequiredAmt uint64
	CurrAmt     uint64
	Completed   bool
	URI         string
}

// NewCampaign returns a fresh, open campaign with nothing donated yet.
func NewCampaign(id, requiredAmt uint64) Campaign {
	return Campaign{ID: id, RequiredAmt: requiredAmt}
}

// Remaining is the gap a donation may still fill.
func (c Campaign) Remaining() uint64 {
	if c.CurrAmt >= c.RequiredAmt {
		return 0
	}
	return c.RequiredAmt - c.CurrAmt
}

// Extend raises the target by amount.
func (c *Campaign) Extend(amount uint64) error {
	if c.Completed {
		return ErrCompleted
	}
	if amount > MaxAmount-c.RequiredAmt {
		return ErrAmountOverflow
	}
	c.RequiredAmt += amount
	return nil
}

// Donate records value against the campaign. The value may not exceed the
// remaining gap between target and balance.
func (c *Campaign) Donate(value uint64) error {
	if c.Completed {
		return ErrCompleted
	}
	if value == 0 {
		return ErrDonatedZero
	}
	if value > c.Remaining() {
		return ErrOverPayment
	}
	c.CurrAmt += value
	return nil
}

// Withdraw shrinks balance and target together by amount.
func (c *Campaign) Withdraw(amount uint64) error {
	if c.Completed {
		return ErrCompleted
	}
	if amount > c.CurrAmt {
		return ErrNotEnoughBalance
	}
	c.CurrAmt -= amount
	// RequiredAmt >= CurrAmt+amount holds for every record produced by
	// Donate, but guard the subtraction anyway so it never wraps.
	if amount > c.RequiredAmt {
		c.RequiredAmt = 0
	} else {
		c.RequiredAmt -= amount
	}
	return nil
}

// End finalizes the campaign and reports the balance to sweep. Amounts are
// left untouched so the record keeps its final figures.
func (c *Campaign) End() (uint64, error) {
	if c.Completed {
		return 0, ErrCompleted
	}
	c.Completed = true
	return c.CurrAmt, nil
}
