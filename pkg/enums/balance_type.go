package enums

import (
	"fmt"
	"strings"
)

// BalanceType tags an account type as credit-normal or debit-normal.
type BalanceType string

const (
	BalanceTypeCredit BalanceType = "credit"
	BalanceTypeDebit  BalanceType = "debit"
)

var validBalanceTypes = []BalanceType{
	BalanceTypeCredit,
	BalanceTypeDebit,
}

// String implements fmt.Stringer.
func (b BalanceType) String() string {
	return string(b)
}

// IsValid reports whether the value is known.
func (b BalanceType) IsValid() bool {
	for _, candidate := range validBalanceTypes {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBalanceType converts raw input into a BalanceType.
func ParseBalanceType(value string) (BalanceType, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validBalanceTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid balance type %q", value)
}
