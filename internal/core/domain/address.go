package domain

import (
	"strings"
	"unicode"
)

// Address identifies an account: a certificate holder, donor or payout
// recipient. Addresses are case-insensitive and stored lower-cased.
type Address string

const maxAddressLen = 128

// ParseAddress normalises s and rejects empty or malformed addresses.
func ParseAddress(s string) (Address, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || len(s) > maxAddressLen {
		return "", ErrInvalidAddress
	}
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) || r == '/' {
			return "", ErrInvalidAddress
		}
	}
	return Address(s), nil
}

func (a Address) String() string { return string(a) }
