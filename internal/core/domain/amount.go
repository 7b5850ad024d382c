package domain

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

var maxUint64 = units(math.MaxUint64)

// Denomination converts between smallest-unit integers and human readable
// decimal strings, e.g. with Decimals=2 the amount 1050 reads "10.50".
type Denomination struct {
	Decimals int32
}

// Format renders amount with exactly Decimals fractional digits.
func (d Denomination) Format(amount uint64) string {
	return units(amount).Shift(-d.Decimals).StringFixed(d.Decimals)
}

// Parse reads a decimal string into smallest units. Values with more
// precision than Decimals, negative values and values above uint64 are
// rejected.
func (d Denomination) Parse(s string) (uint64, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	n := v.Shift(d.Decimals)
	if n.IsNegative() || !n.Equal(n.Truncate(0)) || n.GreaterThan(maxUint64) {
		return 0, ErrInvalidAmount
	}
	return n.BigInt().Uint64(), nil
}

func units(amount uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), 0)
}
