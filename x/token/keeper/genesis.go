package keeper

import (
	"context"
	"fmt"

	dbm "github.com/cosmos/cosmos-db"
	"github.com/ethereum/go-ethereum/common"

	"github.com/paw-chain/swap/x/token/types"
)

// InitGenesis loads balances and allowances into an empty ledger.
func (k *Keeper) InitGenesis(ctx context.Context, gs types.GenesisState) error {
	if err := gs.Validate(); err != nil {
		return err
	}
	if gs.Metadata.Address != k.meta.Address {
		return types.ErrUnknownToken.Wrapf("genesis for %s loaded into %s", gs.Metadata.Address.Hex(), k.meta.Address.Hex())
	}

	for _, b := range gs.Balances {
		if err := k.Mint(ctx, b.Owner, b.Amount); err != nil {
			return fmt.Errorf("InitGenesis: balance of %s: %w", b.Owner.Hex(), err)
		}
	}
	for _, a := range gs.Allowances {
		if err := k.Approve(ctx, a.Owner, a.Spender, a.Amount); err != nil {
			return fmt.Errorf("InitGenesis: allowance %s->%s: %w", a.Owner.Hex(), a.Spender.Hex(), err)
		}
	}
	return nil
}

// ExportGenesis dumps the ledger.
func (k *Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	gs := &types.GenesisState{Metadata: k.meta}

	err := k.iterate(types.BalanceKey, func(key []byte) error {
		amount, err := k.getInt(key)
		if err != nil {
			return err
		}
		owner := common.BytesToAddress(key[len(types.BalanceKey):])
		gs.Balances = append(gs.Balances, types.Balance{Owner: owner, Amount: amount})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ExportGenesis: balances: %w", err)
	}

	err = k.iterate(types.AllowanceKey, func(key []byte) error {
		amount, err := k.getInt(key)
		if err != nil {
			return err
		}
		rest := key[len(types.AllowanceKey):]
		gs.Allowances = append(gs.Allowances, types.Allowance{
			Owner:   common.BytesToAddress(rest[:common.AddressLength]),
			Spender: common.BytesToAddress(rest[common.AddressLength:]),
			Amount:  amount,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ExportGenesis: allowances: %w", err)
	}

	return gs, nil
}

func (k *Keeper) iterate(prefix []byte, cb func(key []byte) error) error {
	iter, err := dbm.IteratePrefix(k.db, prefix)
	if err != nil {
		return err
	}
	defer iter.Close()

	for ; iter.Valid(); iter.Next() {
		if err := cb(iter.Key()); err != nil {
			return err
		}
	}
	return iter.Error()
}
