// Package keeper implements the swap module keeper.
//
// The swap module is a single two-token constant-product pool. Any address
// may provide liquidity, withdraw it, or trade one token for the other.
//
// # Core Functionality
//
// Liquidity: Init funds the empty pool once and mints floor(sqrt(a0*a1))
// shares. AddLiquidity deposits at the current reserve ratio and mints shares
// proportional to the token0 deposit. RemoveLiquidity burns shares for the
// matching fraction of both reserves.
//
// Swaps: Token0To1 and Token1To0 price trades with x*y=k after withholding
// the fee fraction of the input (997/1000 by default). The whole input is
// added to reserves, so k grows on every swap. Swap adds a minimum-output
// guard; SimulateSwap quotes without moving funds.
//
// Rounding: every division truncates. Remainders stay in the pool.
//
// # Concurrency
//
// One writer at a time. Mutating calls hold the keeper lock from validation
// to commit; reads share the lock and always observe a committed pool.
//
// # Atomicity
//
// Preconditions are checked before any token moves. The token legs, the pool
// record and the caller's shares are staged into one batch of the DB the
// pool and its token ledgers share, then written at once. A failed leg or a
// failed write leaves every balance and the pool as they were.
//
// # Usage Patterns
//
// Providing liquidity:
//
//	_ = token0.Approve(ctx, lp, k.Address(), amount0)
//	_ = token1.Approve(ctx, lp, k.Address(), amount1)
//	shares, err := k.Init(ctx, lp, amount0, amount1)
//
// Swapping with slippage protection:
//
//	res, err := k.Swap(ctx, trader, tokenIn, amountIn, minAmountOut)
//
// # Metrics
//
// The keeper exposes Prometheus metrics for swaps, liquidity operations,
// reserves and invariant failures via SwapMetrics.
package keeper
