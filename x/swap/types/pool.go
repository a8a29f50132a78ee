package types

import (
	"fmt"

	"cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
)

// Pool is the single persisted pool record.
type Pool struct {
	Token0      common.Address `json:"token0"`
	Token1      common.Address `json:"token1"`
	Reserve0    math.Int       `json:"reserve0"`
	Reserve1    math.Int       `json:"reserve1"`
	TotalShares math.Int       `json:"total_shares"`
	Initialized bool           `json:"initialized"`
}

// NewPool returns an uninitialized, empty pool over the given tokens.
func NewPool(token0, token1 common.Address) Pool {
	return Pool{
		Token0:      token0,
		Token1:      token1,
		Reserve0:    math.ZeroInt(),
		Reserve1:    math.ZeroInt(),
		TotalShares: math.ZeroInt(),
	}
}

// IsEmpty reports whether the pool holds no liquidity.
func (p Pool) IsEmpty() bool {
	return p.TotalShares.IsZero()
}

// Validate checks the record is self-consistent.
func (p Pool) Validate() error {
	if p.Token0 == (common.Address{}) || p.Token1 == (common.Address{}) {
		return fmt.Errorf("pool token address cannot be empty")
	}
	if p.Token0 == p.Token1 {
		return fmt.Errorf("pool tokens must differ: %s", p.Token0.Hex())
	}
	if p.Reserve0.IsNil() || p.Reserve1.IsNil() || p.TotalShares.IsNil() {
		return fmt.Errorf("pool amounts must be set")
	}
	if p.Reserve0.IsNegative() || p.Reserve1.IsNegative() || p.TotalShares.IsNegative() {
		return fmt.Errorf("pool amounts cannot be negative")
	}

	// Either fully funded on both sides or completely empty.
	empty0, empty1, emptyT := p.Reserve0.IsZero(), p.Reserve1.IsZero(), p.TotalShares.IsZero()
	if empty0 != empty1 || empty0 != emptyT {
		return fmt.Errorf("pool partially funded: reserve0=%s reserve1=%s total_shares=%s",
			p.Reserve0, p.Reserve1, p.TotalShares)
	}
	if !p.Initialized && !emptyT {
		return fmt.Errorf("uninitialized pool holds liquidity")
	}
	return nil
}

// SwapDirection names the side of the pool the input enters.
type SwapDirection string

const (
	Token0To1 SwapDirection = "token0_to_1"
	Token1To0 SwapDirection = "token1_to_0"
)

// SwapResult describes an executed or simulated swap.
type SwapResult struct {
	Direction SwapDirection  `json:"direction"`
	TokenIn   common.Address `json:"token_in"`
	TokenOut  common.Address `json:"token_out"`
	AmountIn  math.Int       `json:"amount_in"`
	AmountOut math.Int       `json:"amount_out"`
	Fee       math.Int       `json:"fee"`
}
