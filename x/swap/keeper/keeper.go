package keeper

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"cosmossdk.io/log"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/ethereum/go-ethereum/common"

	"github.com/paw-chain/swap/x/swap/types"
)

// Keeper owns the pool. Mutating operations hold mu exclusively for their
// whole duration; reads share it.
type Keeper struct {
	root    dbm.DB
	db      dbm.DB
	address common.Address
	token0  types.TokenKeeper
	token1  types.TokenKeeper
	logger  log.Logger
	metrics *SwapMetrics

	mu     sync.RWMutex
	pool   types.Pool
	params types.Params
}

// NewKeeper creates a swap Keeper over db, loading any persisted pool.
// Both token ledgers must live in db so their transfers can be committed
// in the same batch as the pool. metrics may be nil.
func NewKeeper(
	db dbm.DB,
	token0, token1 types.TokenKeeper,
	logger log.Logger,
	metrics *SwapMetrics,
) (*Keeper, error) {
	if token0 == nil || token1 == nil {
		return nil, types.ErrInvalidToken.Wrap("both pool tokens are required")
	}
	if token0.Address() == token1.Address() {
		return nil, types.ErrInvalidToken.Wrapf("pool tokens must differ: %s", token0.Address().Hex())
	}

	k := &Keeper{
		root:    db,
		db:      dbm.NewPrefixDB(db, storePrefix),
		address: types.ModuleAddress(types.ModuleName),
		token0:  token0,
		token1:  token1,
		logger:  logger.With("module", "x/"+types.ModuleName),
		metrics: metrics,
		pool:    types.NewPool(token0.Address(), token1.Address()),
		params:  types.DefaultParams(),
	}

	if err := k.load(); err != nil {
		return nil, err
	}
	k.updateGauges()
	return k, nil
}

// load restores the pool record and params from the store.
func (k *Keeper) load() error {
	bz, err := k.db.Get(types.PoolKey)
	if err != nil {
		return fmt.Errorf("NewKeeper: read pool: %w", err)
	}
	if bz != nil {
		var pool types.Pool
		if err := json.Unmarshal(bz, &pool); err != nil {
			return types.ErrStateCorruption.Wrapf("decode pool: %v", err)
		}
		if pool.Token0 != k.pool.Token0 || pool.Token1 != k.pool.Token1 {
			return types.ErrStateCorruption.Wrapf("stored pool trades %s/%s, keeper configured for %s/%s",
				pool.Token0.Hex(), pool.Token1.Hex(), k.pool.Token0.Hex(), k.pool.Token1.Hex())
		}
		if err := pool.Validate(); err != nil {
			return types.ErrStateCorruption.Wrap(err.Error())
		}
		k.pool = pool
	}

	bz, err = k.db.Get(types.ParamsKey)
	if err != nil {
		return fmt.Errorf("NewKeeper: read params: %w", err)
	}
	if bz != nil {
		var params types.Params
		if err := json.Unmarshal(bz, &params); err != nil {
			return types.ErrStateCorruption.Wrapf("decode params: %v", err)
		}
		k.params = params
	}
	return nil
}

// Address returns the account that holds the pool's reserves. Callers
// approve this address before Init, AddLiquidity and swaps.
func (k *Keeper) Address() common.Address {
	return k.address
}

// Logger returns the module logger.
func (k *Keeper) Logger() log.Logger {
	return k.logger
}

// GetParams returns the current params.
func (k *Keeper) GetParams(ctx context.Context) types.Params {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.params
}

// SetParams validates and persists params.
func (k *Keeper) SetParams(ctx context.Context, params types.Params) error {
	if err := params.Validate(); err != nil {
		return err
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	bz, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("SetParams: encode: %w", err)
	}
	if err := k.db.Set(types.ParamsKey, bz); err != nil {
		return fmt.Errorf("SetParams: save: %w", err)
	}
	k.params = params
	return nil
}

// tokenFor returns the keeper of the given token and whether it is token0.
func (k *Keeper) tokenFor(token common.Address) (types.TokenKeeper, bool, error) {
	switch token {
	case k.token0.Address():
		return k.token0, true, nil
	case k.token1.Address():
		return k.token1, false, nil
	default:
		return nil, false, types.ErrInvalidToken.Wrapf("%s", token.Hex())
	}
}
