package keeper

import (
	"context"
	"fmt"
	"time"

	"cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/paw-chain/swap/app/telemetry"
	"github.com/paw-chain/swap/x/swap/types"
)

// Token0To1 sells amountIn of token0 for token1.
func (k *Keeper) Token0To1(ctx context.Context, caller common.Address, amountIn math.Int) (math.Int, error) {
	res, err := k.executeSwap(ctx, caller, types.Token0To1, amountIn, math.ZeroInt())
	if err != nil {
		return math.Int{}, err
	}
	return res.AmountOut, nil
}

// Token1To0 sells amountIn of token1 for token0.
func (k *Keeper) Token1To0(ctx context.Context, caller common.Address, amountIn math.Int) (math.Int, error) {
	res, err := k.executeSwap(ctx, caller, types.Token1To0, amountIn, math.ZeroInt())
	if err != nil {
		return math.Int{}, err
	}
	return res.AmountOut, nil
}

// Swap sells amountIn of tokenIn, failing with ErrSlippageTooHigh when the
// output would fall below minAmountOut.
func (k *Keeper) Swap(
	ctx context.Context,
	caller common.Address,
	tokenIn common.Address,
	amountIn, minAmountOut math.Int,
) (*types.SwapResult, error) {
	_, isToken0, err := k.tokenFor(tokenIn)
	if err != nil {
		return nil, err
	}

	direction := types.Token1To0
	if isToken0 {
		direction = types.Token0To1
	}
	return k.executeSwap(ctx, caller, direction, amountIn, minAmountOut)
}

// SimulateSwap quotes a swap of amountIn of tokenIn against current reserves.
func (k *Keeper) SimulateSwap(ctx context.Context, tokenIn common.Address, amountIn math.Int) (*types.SwapResult, error) {
	_, isToken0, err := k.tokenFor(tokenIn)
	if err != nil {
		return nil, err
	}

	direction := types.Token1To0
	if isToken0 {
		direction = types.Token0To1
	}

	k.mu.RLock()
	defer k.mu.RUnlock()

	res, _, err := k.planSwap(direction, amountIn)
	return res, err
}

func (k *Keeper) executeSwap(
	ctx context.Context,
	caller common.Address,
	direction types.SwapDirection,
	amountIn, minAmountOut math.Int,
) (*types.SwapResult, error) {
	start := time.Now()
	ctx, span := telemetry.StartModuleSpan(ctx, types.ModuleName, string(direction))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	res, err := k.swap(ctx, caller, direction, amountIn, minAmountOut)
	k.recordSwap(direction, res, err, time.Since(start))
	telemetry.RecordError(span, err)
	return res, err
}

func (k *Keeper) swap(
	ctx context.Context,
	caller common.Address,
	direction types.SwapDirection,
	amountIn, minAmountOut math.Int,
) (*types.SwapResult, error) {
	// 1. Price the trade against current reserves.
	res, pool, err := k.planSwap(direction, amountIn)
	if err != nil {
		return nil, err
	}

	// 2. Slippage protection.
	if !minAmountOut.IsNil() && res.AmountOut.LT(minAmountOut) {
		return nil, types.ErrSlippageTooHigh.Wrapf("expected at least %s, got %s", minAmountOut, res.AmountOut)
	}

	// 3. The retained fee must grow k.
	oldK := constantProduct(k.pool.Reserve0, k.pool.Reserve1)
	newK := constantProduct(pool.Reserve0, pool.Reserve1)
	if newK.Cmp(oldK) <= 0 {
		k.logger.Error("constant product would not grow",
			"direction", string(direction),
			"old_k", oldK.String(),
			"new_k", newK.String(),
		)
		k.recordInvariantViolation("constant-product")
		return nil, types.ErrInvariantViolation.Wrapf("k would move from %s to %s", oldK, newK)
	}

	tokenIn, tokenOut := k.token0, k.token1
	if direction == types.Token1To0 {
		tokenIn, tokenOut = k.token1, k.token0
	}

	// Swaps leave the caller's shares untouched.
	held, err := k.getShares(caller)
	if err != nil {
		return nil, err
	}

	// 4. Pull the full input, pay the output and persist in one batch.
	s := k.settle()
	defer s.close()

	if err := s.pull(ctx, caller, leg{tokenIn, amountIn}); err != nil {
		return nil, err
	}
	if err := s.pay(ctx, caller, leg{tokenOut, res.AmountOut}); err != nil {
		return nil, err
	}
	if err := s.commit(pool, caller, held); err != nil {
		return nil, fmt.Errorf("Swap: %w", err)
	}

	k.emit(ctx, types.EventTypeSwap,
		types.AttributeKeyCaller, caller.Hex(),
		types.AttributeKeyTokenIn, res.TokenIn.Hex(),
		types.AttributeKeyTokenOut, res.TokenOut.Hex(),
		types.AttributeKeyAmountIn, amountIn.String(),
		types.AttributeKeyAmountOut, res.AmountOut.String(),
		types.AttributeKeyReserve0, pool.Reserve0.String(),
		types.AttributeKeyReserve1, pool.Reserve1.String(),
	)
	return res, nil
}

// planSwap prices a swap and returns the pool as it would be afterwards.
// Caller holds mu.
func (k *Keeper) planSwap(direction types.SwapDirection, amountIn math.Int) (*types.SwapResult, types.Pool, error) {
	if !isPositive(amountIn) {
		return nil, types.Pool{}, types.ErrZeroAmount.Wrapf("amount in must be positive, got %s", amountIn)
	}
	if !k.pool.Initialized {
		return nil, types.Pool{}, types.ErrNotInitialized
	}

	pool := k.pool
	reserveIn, reserveOut := pool.Reserve0, pool.Reserve1
	tokenIn, tokenOut := pool.Token0, pool.Token1
	if direction == types.Token1To0 {
		reserveIn, reserveOut = reserveOut, reserveIn
		tokenIn, tokenOut = tokenOut, tokenIn
	}

	amountOut, fee, err := CalculateSwapOutput(amountIn, reserveIn, reserveOut, k.params)
	if err != nil {
		return nil, types.Pool{}, err
	}

	newIn, err := SafeAdd(reserveIn, amountIn)
	if err != nil {
		return nil, types.Pool{}, types.ErrOverflow.Wrapf("reserve in: %v", err)
	}
	newOut := reserveOut.Sub(amountOut)

	if direction == types.Token0To1 {
		pool.Reserve0, pool.Reserve1 = newIn, newOut
	} else {
		pool.Reserve0, pool.Reserve1 = newOut, newIn
	}

	return &types.SwapResult{
		Direction: direction,
		TokenIn:   tokenIn,
		TokenOut:  tokenOut,
		AmountIn:  amountIn,
		AmountOut: amountOut,
		Fee:       fee,
	}, pool, nil
}

// CalculateSwapOutput applies the constant-product formula:
//
//	effective = floor(amountIn * feeNumerator / feeDenominator)
//	amountOut = floor(reserveOut * effective / (reserveIn + effective))
//
// The fee is amountIn - effective and stays in the pool.
func CalculateSwapOutput(amountIn, reserveIn, reserveOut math.Int, params types.Params) (math.Int, math.Int, error) {
	if !reserveIn.IsPositive() || !reserveOut.IsPositive() {
		return math.Int{}, math.Int{}, types.ErrInsufficientLiquidity.Wrap("pool holds no liquidity")
	}

	effective, err := SafeMulDiv(amountIn, math.NewIntFromUint64(params.FeeNumerator), math.NewIntFromUint64(params.FeeDenominator))
	if err != nil {
		return math.Int{}, math.Int{}, types.ErrOverflow.Wrapf("effective input: %v", err)
	}

	denominator, err := SafeAdd(reserveIn, effective)
	if err != nil {
		return math.Int{}, math.Int{}, types.ErrOverflow.Wrapf("denominator: %v", err)
	}

	amountOut, err := SafeMulDiv(reserveOut, effective, denominator)
	if err != nil {
		return math.Int{}, math.Int{}, types.ErrOverflow.Wrapf("amount out: %v", err)
	}

	if amountOut.IsZero() {
		return math.Int{}, math.Int{}, types.ErrInsufficientOutputAmount.Wrapf("input %s yields no output", amountIn)
	}
	if amountOut.GTE(reserveOut) {
		return math.Int{}, math.Int{}, types.ErrInsufficientLiquidity.Wrapf("output %s would drain reserve %s", amountOut, reserveOut)
	}

	return amountOut, amountIn.Sub(effective), nil
}
