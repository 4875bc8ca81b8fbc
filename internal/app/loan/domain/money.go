package domain

import (
	"fmt"
	"math/big"
)

// Money is an exact decimal amount backed by big.Rat. A nil *Money means
// the amount is unset.
type Money struct {
	rat *big.Rat
}

// NewMoney returns numerator/denominator, e.g. NewMoney(10050, 100) is 100.50.
func NewMoney(numerator, denominator int64) (*Money, error) {
	if denominator == 0 {
		return nil, fmt.Errorf("money %d/0: %w", numerator, ErrInvalidAmount)
	}
	return &Money{rat: big.NewRat(numerator, denominator)}, nil
}

// MustMoney is NewMoney for whole amounts known to be valid.
func MustMoney(units int64) *Money {
	return &Money{rat: new(big.Rat).SetInt64(units)}
}

// ParseMoney accepts decimal ("100.50") and fraction ("201/2") forms.
func ParseMoney(s string) (*Money, error) {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, fmt.Errorf("money %q: %w", s, ErrInvalidAmount)
	}
	return &Money{rat: r}, nil
}

func NewMoneyFromRat(r *big.Rat) *Money {
	if r == nil {
		return &Money{rat: new(big.Rat)}
	}
	return &Money{rat: new(big.Rat).Set(r)}
}

// Rat returns a copy of the underlying value.
func (m *Money) Rat() *big.Rat {
	return new(big.Rat).Set(m.rat)
}

func (m *Money) Add(o *Money) *Money {
	return &Money{rat: new(big.Rat).Add(m.rat, o.rat)}
}

func (m *Money) Sub(o *Money) *Money {
	return &Money{rat: new(big.Rat).Sub(m.rat, o.rat)}
}

func (m *Money) IsZero() bool     { return m.rat.Sign() == 0 }
func (m *Money) IsNegative() bool { return m.rat.Sign() < 0 }

// Equal compares amounts, so 1/2 equals 0.50. Two nil amounts are equal.
func (m *Money) Equal(o *Money) bool {
	if m == nil || o == nil {
		return m == o
	}
	return m.rat.Cmp(o.rat) == 0
}

// String renders two decimal places.
func (m *Money) String() string {
	if m == nil {
		return ""
	}
	return m.rat.FloatString(2)
}
