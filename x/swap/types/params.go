package types

import (
	"fmt"

	"cosmossdk.io/math"
)

// Params holds the swap fee as a retained-input fraction.
// A swap credits amountIn*FeeNumerator/FeeDenominator toward the output formula.
type Params struct {
	FeeNumerator   uint64 `json:"fee_numerator"`
	FeeDenominator uint64 `json:"fee_denominator"`
}

// DefaultParams returns the 0.3% fee used by constant-product pools.
func DefaultParams() Params {
	return Params{
		FeeNumerator:   997,
		FeeDenominator: 1000,
	}
}

// Validate checks the fee fraction is well formed.
func (p Params) Validate() error {
	if p.FeeDenominator == 0 {
		return ErrInvalidParams.Wrap("fee denominator must be positive")
	}
	if p.FeeNumerator == 0 {
		return ErrInvalidParams.Wrap("fee numerator must be positive")
	}
	// A positive fee keeps k strictly increasing on every swap.
	if p.FeeNumerator >= p.FeeDenominator {
		return ErrInvalidParams.Wrapf("fee numerator %d must be below denominator %d", p.FeeNumerator, p.FeeDenominator)
	}
	return nil
}

// FeeRate returns the fraction of input withheld by the pool.
func (p Params) FeeRate() math.LegacyDec {
	num := math.LegacyNewDec(int64(p.FeeDenominator - p.FeeNumerator))
	return num.QuoInt64(int64(p.FeeDenominator))
}

func (p Params) String() string {
	return fmt.Sprintf("fee=%d/%d", p.FeeNumerator, p.FeeDenominator)
}
