package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/paw-chain/swap/x/swap/types"
)

// InitGenesis initializes the swap module's state from a genesis state.
// Token ledgers must be loaded first so the reserves can be checked against
// the pool's balances.
func (k *Keeper) InitGenesis(ctx context.Context, genState types.GenesisState) error {
	if err := genState.Validate(); err != nil {
		return err
	}

	if err := k.SetParams(ctx, genState.Params); err != nil {
		return fmt.Errorf("failed to set params: %w", err)
	}

	if genState.Pool == nil {
		return nil
	}

	pool := *genState.Pool
	if pool.Token0 != k.token0.Address() || pool.Token1 != k.token1.Address() {
		return types.ErrInvalidGenesis.Wrapf("genesis pool trades %s/%s, keeper configured for %s/%s",
			pool.Token0.Hex(), pool.Token1.Hex(), k.token0.Address().Hex(), k.token1.Address().Hex())
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if k.pool.Initialized {
		return types.ErrInvalidGenesis.Wrap("store already holds an initialized pool")
	}

	batch := k.db.NewBatch()
	defer batch.Close()

	if err := stagePool(batch, pool); err != nil {
		return fmt.Errorf("InitGenesis: %w", err)
	}
	for _, rec := range genState.Shares {
		if err := stageShares(batch, rec.Provider, rec.Shares); err != nil {
			return fmt.Errorf("InitGenesis: shares of %s: %w", rec.Provider.Hex(), err)
		}
	}

	balance0, err := k.token0.BalanceOf(ctx, k.address)
	if err != nil {
		return fmt.Errorf("InitGenesis: token0 balance: %w", err)
	}
	balance1, err := k.token1.BalanceOf(ctx, k.address)
	if err != nil {
		return fmt.Errorf("InitGenesis: token1 balance: %w", err)
	}
	if balance0.LT(pool.Reserve0) || balance1.LT(pool.Reserve1) {
		return types.ErrInvalidGenesis.Wrapf("pool balances %s/%s do not back reserves %s/%s",
			balance0, balance1, pool.Reserve0, pool.Reserve1)
	}

	if err := batch.Write(); err != nil {
		return fmt.Errorf("InitGenesis: write: %w", err)
	}

	k.pool = pool
	k.updateGauges()
	return nil
}

// ExportGenesis returns the swap module's exported genesis.
func (k *Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	genesis := types.DefaultGenesis()
	genesis.Params = k.params

	if !k.pool.Initialized {
		return genesis, nil
	}

	pool := k.pool
	genesis.Pool = &pool

	err := k.iterateShares(func(provider common.Address, shares math.Int) bool {
		genesis.Shares = append(genesis.Shares, types.ShareRecord{Provider: provider, Shares: shares})
		return false
	})
	if err != nil {
		return nil, fmt.Errorf("ExportGenesis: %w", err)
	}
	return genesis, nil
}
