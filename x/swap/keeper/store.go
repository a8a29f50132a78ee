package keeper

import (
	"encoding/json"
	"fmt"

	"cosmossdk.io/math"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/ethereum/go-ethereum/common"

	"github.com/paw-chain/swap/x/swap/types"
)

// getShares reads a provider's shares. Returns zero if absent.
// Caller holds mu.
func (k *Keeper) getShares(provider common.Address) (math.Int, error) {
	bz, err := k.db.Get(types.GetSharesKey(provider))
	if err != nil {
		return math.Int{}, fmt.Errorf("read shares: %w", err)
	}
	if bz == nil {
		return math.ZeroInt(), nil
	}

	var shares math.Int
	if err := shares.Unmarshal(bz); err != nil {
		return math.Int{}, types.ErrStateCorruption.Wrapf("decode shares of %s: %v", provider.Hex(), err)
	}
	return shares, nil
}

// storePrefix scopes the pool's keys inside the shared DB.
var storePrefix = []byte(types.StoreKey + "/")

// writer is the write half of a dbm.Batch.
type writer interface {
	Set(key, value []byte) error
	Delete(key []byte) error
}

// prefixed writes into a batch of the shared DB under storePrefix.
type prefixed struct{ w writer }

func (p prefixed) Set(key, value []byte) error { return p.w.Set(p.key(key), value) }

func (p prefixed) Delete(key []byte) error { return p.w.Delete(p.key(key)) }

func (prefixed) key(key []byte) []byte {
	return append(append(make([]byte, 0, len(storePrefix)+len(key)), storePrefix...), key...)
}

func stagePool(w writer, pool types.Pool) error {
	bz, err := json.Marshal(pool)
	if err != nil {
		return fmt.Errorf("encode pool: %w", err)
	}
	if err := w.Set(types.PoolKey, bz); err != nil {
		return fmt.Errorf("stage pool: %w", err)
	}
	return nil
}

func stageShares(w writer, provider common.Address, shares math.Int) error {
	key := types.GetSharesKey(provider)
	if shares.IsZero() {
		if err := w.Delete(key); err != nil {
			return fmt.Errorf("stage shares delete: %w", err)
		}
		return nil
	}

	bz, err := shares.Marshal()
	if err != nil {
		return fmt.Errorf("encode shares: %w", err)
	}
	if err := w.Set(key, bz); err != nil {
		return fmt.Errorf("stage shares: %w", err)
	}
	return nil
}

// IterateShares calls cb for every provider holding shares, stopping when cb
// returns true.
func (k *Keeper) IterateShares(cb func(provider common.Address, shares math.Int) (stop bool)) error {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.iterateShares(cb)
}

func (k *Keeper) iterateShares(cb func(provider common.Address, shares math.Int) (stop bool)) error {
	iter, err := dbm.IteratePrefix(k.db, types.SharesKey)
	if err != nil {
		return fmt.Errorf("iterate shares: %w", err)
	}
	defer iter.Close()

	for ; iter.Valid(); iter.Next() {
		var shares math.Int
		if err := shares.Unmarshal(iter.Value()); err != nil {
			return types.ErrStateCorruption.Wrapf("decode shares at %x: %v", iter.Key(), err)
		}
		if cb(types.ProviderFromSharesKey(iter.Key()), shares) {
			break
		}
	}
	return iter.Error()
}
