package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/paw-chain/swap/app/telemetry"
	"github.com/paw-chain/swap/x/swap/types"
)

// AddLiquidity deposits amount0 of token0 and the matching amount of token1
// at the current reserve ratio, minting shares proportional to amount0.
// It returns the token1 amount pulled and the shares minted.
func (k *Keeper) AddLiquidity(ctx context.Context, caller common.Address, amount0 math.Int) (math.Int, math.Int, error) {
	ctx, span := telemetry.StartModuleSpan(ctx, types.ModuleName, "add_liquidity")
	defer span.End()

	if err := ctx.Err(); err != nil {
		return math.Int{}, math.Int{}, err
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	amount1, minted, err := k.addLiquidity(ctx, caller, amount0)
	k.recordLiquidityOp("add", err)
	telemetry.RecordError(span, err)
	return amount1, minted, err
}

func (k *Keeper) addLiquidity(ctx context.Context, caller common.Address, amount0 math.Int) (math.Int, math.Int, error) {
	amount1, minted, err := k.quoteAddLiquidity(amount0)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}

	pool := k.pool
	if pool.Reserve0, err = SafeAdd(pool.Reserve0, amount0); err != nil {
		return math.Int{}, math.Int{}, types.ErrOverflow.Wrapf("reserve0: %v", err)
	}
	if pool.Reserve1, err = SafeAdd(pool.Reserve1, amount1); err != nil {
		return math.Int{}, math.Int{}, types.ErrOverflow.Wrapf("reserve1: %v", err)
	}
	if pool.TotalShares, err = SafeAdd(pool.TotalShares, minted); err != nil {
		return math.Int{}, math.Int{}, types.ErrOverflow.Wrapf("total shares: %v", err)
	}

	held, err := k.getShares(caller)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	held = held.Add(minted)

	s := k.settle()
	defer s.close()

	if err := s.pull(ctx, caller, leg{k.token0, amount0}, leg{k.token1, amount1}); err != nil {
		return math.Int{}, math.Int{}, err
	}
	if err := s.commit(pool, caller, held); err != nil {
		return math.Int{}, math.Int{}, fmt.Errorf("AddLiquidity: %w", err)
	}

	k.emit(ctx, types.EventTypeLiquidityAdded,
		types.AttributeKeyCaller, caller.Hex(),
		types.AttributeKeyAmount0, amount0.String(),
		types.AttributeKeyAmount1, amount1.String(),
		types.AttributeKeyShares, minted.String(),
	)
	return amount1, minted, nil
}

// QuoteAddLiquidity returns the token1 amount AddLiquidity(amount0) would pull
// and the shares it would mint, without moving funds.
func (k *Keeper) QuoteAddLiquidity(ctx context.Context, amount0 math.Int) (math.Int, math.Int, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.quoteAddLiquidity(amount0)
}

func (k *Keeper) quoteAddLiquidity(amount0 math.Int) (math.Int, math.Int, error) {
	if !isPositive(amount0) {
		return math.Int{}, math.Int{}, types.ErrZeroAmount.Wrapf("amount0 must be positive, got %s", amount0)
	}
	if !k.pool.Initialized {
		return math.Int{}, math.Int{}, types.ErrNotInitialized
	}
	if k.pool.IsEmpty() {
		return math.Int{}, math.Int{}, types.ErrInsufficientLiquidity.Wrap("pool is drained; deposit ratio is undefined")
	}

	// amount1 keeps the reserve ratio; shares are proportional to amount0.
	amount1, err := SafeMulDiv(amount0, k.pool.Reserve1, k.pool.Reserve0)
	if err != nil {
		return math.Int{}, math.Int{}, types.ErrOverflow.Wrapf("amount1: %v", err)
	}
	minted, err := SafeMulDiv(amount0, k.pool.TotalShares, k.pool.Reserve0)
	if err != nil {
		return math.Int{}, math.Int{}, types.ErrOverflow.Wrapf("shares: %v", err)
	}
	return amount1, minted, nil
}

// RemoveLiquidity burns shares from caller and pays out the proportional
// part of each reserve.
func (k *Keeper) RemoveLiquidity(ctx context.Context, caller common.Address, shares math.Int) (math.Int, math.Int, error) {
	ctx, span := telemetry.StartModuleSpan(ctx, types.ModuleName, "remove_liquidity")
	defer span.End()

	if err := ctx.Err(); err != nil {
		return math.Int{}, math.Int{}, err
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	amount0, amount1, err := k.removeLiquidity(ctx, caller, shares)
	k.recordLiquidityOp("remove", err)
	telemetry.RecordError(span, err)
	return amount0, amount1, err
}

func (k *Keeper) removeLiquidity(ctx context.Context, caller common.Address, shares math.Int) (math.Int, math.Int, error) {
	if !isPositive(shares) {
		return math.Int{}, math.Int{}, types.ErrZeroAmount.Wrapf("shares must be positive, got %s", shares)
	}

	held, err := k.getShares(caller)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	if held.LT(shares) {
		return math.Int{}, math.Int{}, types.ErrInsufficientShares.Wrapf("have %s, need %s", held, shares)
	}

	pool := k.pool
	amount0, err := SafeMulDiv(shares, pool.Reserve0, pool.TotalShares)
	if err != nil {
		return math.Int{}, math.Int{}, types.ErrStateCorruption.Wrapf("amount0: %v", err)
	}
	amount1, err := SafeMulDiv(shares, pool.Reserve1, pool.TotalShares)
	if err != nil {
		return math.Int{}, math.Int{}, types.ErrStateCorruption.Wrapf("amount1: %v", err)
	}

	if pool.Reserve0, err = SafeSub(pool.Reserve0, amount0); err != nil {
		return math.Int{}, math.Int{}, types.ErrStateCorruption.Wrapf("reserve0: %v", err)
	}
	if pool.Reserve1, err = SafeSub(pool.Reserve1, amount1); err != nil {
		return math.Int{}, math.Int{}, types.ErrStateCorruption.Wrapf("reserve1: %v", err)
	}
	if pool.TotalShares, err = SafeSub(pool.TotalShares, shares); err != nil {
		return math.Int{}, math.Int{}, types.ErrStateCorruption.Wrapf("total shares: %v", err)
	}

	s := k.settle()
	defer s.close()

	if err := s.pay(ctx, caller, leg{k.token0, amount0}, leg{k.token1, amount1}); err != nil {
		return math.Int{}, math.Int{}, err
	}
	if err := s.commit(pool, caller, held.Sub(shares)); err != nil {
		return math.Int{}, math.Int{}, fmt.Errorf("RemoveLiquidity: %w", err)
	}

	k.emit(ctx, types.EventTypeLiquidityRemoved,
		types.AttributeKeyCaller, caller.Hex(),
		types.AttributeKeyAmount0, amount0.String(),
		types.AttributeKeyAmount1, amount1.String(),
		types.AttributeKeyShares, shares.String(),
	)
	return amount0, amount1, nil
}
