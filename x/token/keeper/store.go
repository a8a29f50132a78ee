package keeper

import (
	"encoding/json"
	"fmt"

	"cosmossdk.io/math"

	"github.com/paw-chain/swap/x/token/types"
)

// writer is the write half of a dbm.Batch.
type writer interface {
	Set(key, value []byte) error
	Delete(key []byte) error
}

// prefixed writes into a batch of the parent DB under the ledger's prefix.
type prefixed struct {
	w      writer
	prefix []byte
}

func (p prefixed) Set(key, value []byte) error { return p.w.Set(p.key(key), value) }

func (p prefixed) Delete(key []byte) error { return p.w.Delete(p.key(key)) }

func (p prefixed) key(key []byte) []byte {
	return append(append(make([]byte, 0, len(p.prefix)+len(key)), p.prefix...), key...)
}

// getInt reads an amount, zero when the key is absent. Read and decode
// failures are reported as ErrStateCorruption.
func (k *Keeper) getInt(key []byte) (math.Int, error) {
	bz, err := k.db.Get(key)
	if err != nil {
		return math.Int{}, types.ErrStateCorruption.Wrapf("%s: read %x: %v", k.meta.Symbol, key, err)
	}
	if bz == nil {
		return math.ZeroInt(), nil
	}

	var v math.Int
	if err := v.Unmarshal(bz); err != nil {
		k.logger.Error("failed to decode stored amount", "key", fmt.Sprintf("%x", key), "error", err)
		return math.Int{}, types.ErrStateCorruption.Wrapf("%s: decode %x: %v", k.meta.Symbol, key, err)
	}
	return v, nil
}

// setInt stages an amount write; zero amounts are deleted.
func setInt(w writer, key []byte, v math.Int) error {
	if v.IsZero() {
		if err := w.Delete(key); err != nil {
			return fmt.Errorf("delete %x: %w", key, err)
		}
		return nil
	}

	bz, err := v.Marshal()
	if err != nil {
		return fmt.Errorf("encode %x: %w", key, err)
	}
	if err := w.Set(key, bz); err != nil {
		return fmt.Errorf("set %x: %w", key, err)
	}
	return nil
}

func marshalJSON(v any) ([]byte, error) {
	bz, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return bz, nil
}
