package types

import (
	"math/big"
	"strings"

	"cosmossdk.io/errors"
	"cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Metadata describes a fungible token.
type Metadata struct {
	Address  common.Address `json:"address"`
	Name     string         `json:"name"`
	Symbol   string         `json:"symbol"`
	Decimals uint8          `json:"decimals"`
}

// DefaultAddress derives a token address from its symbol.
func DefaultAddress(symbol string) common.Address {
	return common.BytesToAddress(crypto.Keccak256([]byte(StoreKey + "/" + symbol))[12:])
}

// Validate checks the metadata is usable.
func (m Metadata) Validate() error {
	if strings.TrimSpace(m.Symbol) == "" {
		return ErrInvalidMetadata.Wrap("symbol cannot be empty")
	}
	if m.Address == (common.Address{}) {
		return ErrInvalidMetadata.Wrapf("token %s has no address", m.Symbol)
	}
	if m.Decimals > 36 {
		return ErrInvalidMetadata.Wrapf("token %s: decimals %d out of range", m.Symbol, m.Decimals)
	}
	return nil
}

// Balance is an owner's holding in genesis.
type Balance struct {
	Owner  common.Address `json:"owner"`
	Amount math.Int       `json:"amount"`
}

// Allowance is an owner->spender approval in genesis.
type Allowance struct {
	Owner   common.Address `json:"owner"`
	Spender common.Address `json:"spender"`
	Amount  math.Int       `json:"amount"`
}

// GenesisState is the exported ledger of one token.
type GenesisState struct {
	Metadata   Metadata    `json:"metadata"`
	Balances   []Balance   `json:"balances,omitempty"`
	Allowances []Allowance `json:"allowances,omitempty"`
}

// Validate performs stateless checks on a token genesis.
func (gs GenesisState) Validate() error {
	if err := gs.Metadata.Validate(); err != nil {
		return err
	}

	supply := math.ZeroInt()
	seen := make(map[common.Address]struct{}, len(gs.Balances))
	for _, b := range gs.Balances {
		if _, dup := seen[b.Owner]; dup {
			return ErrInvalidMetadata.Wrapf("token %s: duplicate balance for %s", gs.Metadata.Symbol, b.Owner.Hex())
		}
		seen[b.Owner] = struct{}{}
		if b.Amount.IsNil() || b.Amount.IsNegative() {
			return ErrInvalidAmount.Wrapf("token %s: balance of %s", gs.Metadata.Symbol, b.Owner.Hex())
		}
		var err error
		if supply, err = CheckedAdd(supply, b.Amount); err != nil {
			return errors.Wrapf(err, "token %s: total supply", gs.Metadata.Symbol)
		}
	}
	for _, a := range gs.Allowances {
		if a.Amount.IsNil() || a.Amount.IsNegative() {
			return ErrInvalidAmount.Wrapf("token %s: allowance %s->%s", gs.Metadata.Symbol, a.Owner.Hex(), a.Spender.Hex())
		}
	}
	return nil
}

// maxAmount is one past the largest amount a ledger can hold; math.Int
// panics past 256 bits.
var maxAmount = new(big.Int).Lsh(big.NewInt(1), 256)

// CheckedAdd returns a+b, or ErrInvalidAmount when the sum does not fit in
// a ledger amount.
func CheckedAdd(a, b math.Int) (math.Int, error) {
	sum := new(big.Int).Add(a.BigInt(), b.BigInt())
	if sum.Cmp(maxAmount) >= 0 {
		return math.Int{}, ErrInvalidAmount.Wrapf("%s + %s exceeds 256 bits", a, b)
	}
	return math.NewIntFromBigInt(sum), nil
}
