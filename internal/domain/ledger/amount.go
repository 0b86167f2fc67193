package ledger

import (
	"fmt"
	"math/big"
	"strings"
)

// ParseAmount parses a token amount given in the smallest on-chain
// denomination. The amount must be a positive integer; fractional, zero and
// negative values are rejected. big.Int is used because on-chain
// denominations routinely exceed int64.
func ParseAmount(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("amount is required")
	}

	amount, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %q", s)
	}
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("amount must be a positive integer, got %q", s)
	}
	return amount, nil
}
