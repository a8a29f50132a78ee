package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/ethereum/go-ethereum/common"

	"github.com/paw-chain/swap/x/swap/types"
)

// leg is one token movement between the pool and a caller.
type leg struct {
	token  types.TokenKeeper
	amount math.Int
}

// settlement collects the token legs of one pool operation and the pool
// record it produces into a single batch of the shared DB. Nothing reaches
// the store before commit, so a failure at any step leaves balances, reserves
// and shares as they were. Staged ledgers stay locked until close.
type settlement struct {
	k        *Keeper
	batch    dbm.Batch
	releases []func()
}

// settle starts a settlement. Caller holds mu exclusively and must close it.
func (k *Keeper) settle() *settlement {
	return &settlement{k: k, batch: k.root.NewBatch()}
}

// close discards anything not yet written and unlocks the staged ledgers.
func (s *settlement) close() {
	if err := s.batch.Close(); err != nil {
		s.k.logger.Debug("close settlement batch", "error", err)
	}
	for i := len(s.releases) - 1; i >= 0; i-- {
		s.releases[i]()
	}
	s.releases = nil
}

// pull stages every leg from caller into the pool, spending the allowance
// caller granted the pool.
func (s *settlement) pull(ctx context.Context, caller common.Address, legs ...leg) error {
	for _, l := range legs {
		if l.amount.IsZero() {
			continue
		}
		release, err := l.token.StageTransferFrom(ctx, s.batch, s.k.address, caller, s.k.address, l.amount)
		if err != nil {
			return fmt.Errorf("%w: pull %s of %s from %s: %w",
				types.ErrTokenTransferFailed, l.amount, l.token.Address().Hex(), caller.Hex(), err)
		}
		s.releases = append(s.releases, release)
	}
	return nil
}

// pay stages every leg from the pool to caller. Pool balances are checked
// first: a pool that cannot cover its own reserves is an invariant breach,
// not a transfer failure. The legs' ledgers must not be staged yet.
func (s *settlement) pay(ctx context.Context, caller common.Address, legs ...leg) error {
	for _, l := range legs {
		balance, err := l.token.BalanceOf(ctx, s.k.address)
		if err != nil {
			return fmt.Errorf("%w: read pool balance of %s: %w",
				types.ErrTokenTransferFailed, l.token.Address().Hex(), err)
		}
		if balance.LT(l.amount) {
			return types.ErrInvariantViolation.Wrapf("pool holds %s of %s, owes %s",
				balance, l.token.Address().Hex(), l.amount)
		}
	}

	for _, l := range legs {
		if l.amount.IsZero() {
			continue
		}
		release, err := l.token.StageTransfer(ctx, s.batch, s.k.address, caller, l.amount)
		if err != nil {
			return fmt.Errorf("%w: pay %s of %s to %s: %w",
				types.ErrTokenTransferFailed, l.amount, l.token.Address().Hex(), caller.Hex(), err)
		}
		s.releases = append(s.releases, release)
	}
	return nil
}

// commit stages the pool record and one provider's shares next to the
// token legs, writes the batch, then publishes the new pool to readers.
// Zero shares delete the entry.
func (s *settlement) commit(pool types.Pool, provider common.Address, shares math.Int) error {
	w := prefixed{s.batch}
	if err := stagePool(w, pool); err != nil {
		return err
	}
	if err := stageShares(w, provider, shares); err != nil {
		return err
	}
	if err := s.batch.Write(); err != nil {
		return fmt.Errorf("write batch: %w", err)
	}

	s.k.pool = pool
	s.k.updateGauges()
	return nil
}
