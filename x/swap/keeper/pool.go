package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/paw-chain/swap/app/telemetry"
	"github.com/paw-chain/swap/x/swap/types"
)

// Init funds the empty pool with amount0 of token0 and amount1 of token1 from
// caller, minting floor(sqrt(amount0*amount1)) shares to caller. The pool can
// be initialized once; the latch survives a full drain.
func (k *Keeper) Init(ctx context.Context, caller common.Address, amount0, amount1 math.Int) (math.Int, error) {
	ctx, span := telemetry.StartModuleSpan(ctx, types.ModuleName, "init")
	defer span.End()

	if err := ctx.Err(); err != nil {
		return math.Int{}, err
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	shares, err := k.init(ctx, caller, amount0, amount1)
	k.recordLiquidityOp("init", err)
	telemetry.RecordError(span, err)
	return shares, err
}

func (k *Keeper) init(ctx context.Context, caller common.Address, amount0, amount1 math.Int) (math.Int, error) {
	// 1. One-way latch, checked before anything else.
	if k.pool.Initialized {
		return math.Int{}, types.ErrAlreadyInitialized
	}

	// 2. Validate amounts.
	if !isPositive(amount0) || !isPositive(amount1) {
		return math.Int{}, types.ErrZeroAmount.Wrapf("init amounts must be positive: amount0=%s amount1=%s", amount0, amount1)
	}

	// 3. Initial shares are the geometric mean of the deposit.
	product, err := SafeMul(amount0, amount1)
	if err != nil {
		return math.Int{}, types.ErrOverflow.Wrapf("initial shares: %v", err)
	}
	shares := SafeSqrt(product)

	pool := k.pool
	pool.Reserve0 = amount0
	pool.Reserve1 = amount1
	pool.TotalShares = shares
	pool.Initialized = true

	// 4. Pull both sides from the caller and persist in one batch.
	s := k.settle()
	defer s.close()

	if err := s.pull(ctx, caller, leg{k.token0, amount0}, leg{k.token1, amount1}); err != nil {
		return math.Int{}, err
	}
	if err := s.commit(pool, caller, shares); err != nil {
		return math.Int{}, fmt.Errorf("Init: %w", err)
	}

	k.emit(ctx, types.EventTypePoolInitialized,
		types.AttributeKeyCaller, caller.Hex(),
		types.AttributeKeyAmount0, amount0.String(),
		types.AttributeKeyAmount1, amount1.String(),
		types.AttributeKeyShares, shares.String(),
	)
	return shares, nil
}

// GetTokens returns the two pool tokens in order.
func (k *Keeper) GetTokens(ctx context.Context) (common.Address, common.Address) {
	return k.token0.Address(), k.token1.Address()
}

// GetReserves returns the pool's holdings of token0 and token1.
func (k *Keeper) GetReserves(ctx context.Context) (math.Int, math.Int) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.pool.Reserve0, k.pool.Reserve1
}

// GetTotalShares returns the sum of all outstanding shares.
func (k *Keeper) GetTotalShares(ctx context.Context) math.Int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.pool.TotalShares
}

// GetPool returns a snapshot of the pool record.
func (k *Keeper) GetPool(ctx context.Context) types.Pool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.pool
}

// IsInitialized reports whether Init has ever succeeded.
func (k *Keeper) IsInitialized(ctx context.Context) bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.pool.Initialized
}

// GetShares returns provider's shares, zero if it holds none.
func (k *Keeper) GetShares(ctx context.Context, provider common.Address) (math.Int, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.getShares(provider)
}

// GetSpotPrice returns the price of token0 in units of token1 (reserve1/reserve0).
func (k *Keeper) GetSpotPrice(ctx context.Context) (math.LegacyDec, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if k.pool.IsEmpty() {
		return math.LegacyDec{}, types.ErrInsufficientLiquidity.Wrap("pool holds no liquidity")
	}
	return math.LegacyNewDecFromInt(k.pool.Reserve1).QuoInt(k.pool.Reserve0), nil
}

func isPositive(v math.Int) bool {
	return !v.IsNil() && v.IsPositive()
}

// emit logs a pool event and attaches it to the active span.
func (k *Keeper) emit(ctx context.Context, event string, kv ...string) {
	args := make([]any, 0, len(kv)+2)
	args = append(args, "event", event)
	for _, v := range kv {
		args = append(args, v)
	}
	k.logger.Info(fmt.Sprintf("swap pool %s", event), args...)
	telemetry.AddSpanEvent(ctx, event, kv...)
}
