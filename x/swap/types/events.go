package types

// Event types for the swap module
const (
	EventTypePoolInitialized  = "pool_initialized"
	EventTypeLiquidityAdded   = "liquidity_added"
	EventTypeLiquidityRemoved = "liquidity_removed"
	EventTypeSwap             = "swap"
)

// Event attribute keys
const (
	AttributeKeyCaller    = "caller"
	AttributeKeyAmount0   = "amount0"
	AttributeKeyAmount1   = "amount1"
	AttributeKeyShares    = "shares"
	AttributeKeyTokenIn   = "token_in"
	AttributeKeyTokenOut  = "token_out"
	AttributeKeyAmountIn  = "amount_in"
	AttributeKeyAmountOut = "amount_out"
	AttributeKeyReserve0  = "reserve0"
	AttributeKeyReserve1  = "reserve1"
)
