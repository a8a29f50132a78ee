package types

import (
	"cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
)

// ShareRecord is one provider's shares in genesis.
type ShareRecord struct {
	Provider common.Address `json:"provider"`
	Shares   math.Int       `json:"shares"`
}

// GenesisState is the exported form of the swap module.
type GenesisState struct {
	Params Params        `json:"params"`
	Pool   *Pool         `json:"pool,omitempty"`
	Shares []ShareRecord `json:"shares,omitempty"`
}

// DefaultGenesis returns a genesis with default params and no pool record.
func DefaultGenesis() *GenesisState {
	return &GenesisState{
		Params: DefaultParams(),
	}
}

// Validate performs stateless checks on the genesis state.
func (gs GenesisState) Validate() error {
	if err := gs.Params.Validate(); err != nil {
		return err
	}

	if gs.Pool == nil {
		if len(gs.Shares) > 0 {
			return ErrInvalidGenesis.Wrap("shares present without a pool")
		}
		return nil
	}

	if err := gs.Pool.Validate(); err != nil {
		return ErrInvalidGenesis.Wrap(err.Error())
	}

	seen := make(map[common.Address]struct{}, len(gs.Shares))
	sum := math.ZeroInt()
	for _, rec := range gs.Shares {
		if _, dup := seen[rec.Provider]; dup {
			return ErrInvalidGenesis.Wrapf("duplicate shares for %s", rec.Provider.Hex())
		}
		seen[rec.Provider] = struct{}{}

		if rec.Shares.IsNil() || !rec.Shares.IsPositive() {
			return ErrInvalidGenesis.Wrapf("non-positive shares for %s", rec.Provider.Hex())
		}
		sum = sum.Add(rec.Shares)
	}

	if !sum.Equal(gs.Pool.TotalShares) {
		return ErrInvalidGenesis.Wrapf("sum of shares %s != total shares %s", sum, gs.Pool.TotalShares)
	}
	return nil
}
