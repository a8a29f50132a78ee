package api

// ==================== Common Types ====================

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// StatusResponse acknowledges a completed write
type StatusResponse struct {
	Status string `json:"status"`
}

// TokenInfo describes one pool token
type TokenInfo struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals uint8  `json:"decimals"`
}

// ==================== Pool Types ====================

// TokensResponse lists the pool's tokens in order
type TokensResponse struct {
	Pool   string    `json:"pool"`
	Token0 TokenInfo `json:"token0"`
	Token1 TokenInfo `json:"token1"`
}

// ReservesResponse reports pool reserves and outstanding shares
type ReservesResponse struct {
	Reserve0    string `json:"reserve0"`
	Reserve1    string `json:"reserve1"`
	TotalShares string `json:"total_shares"`
	Initialized bool   `json:"initialized"`
}

// SharesResponse reports one provider's shares
type SharesResponse struct {
	Address string `json:"address"`
	Shares  string `json:"shares"`
}

// PriceResponse is the marginal price of token0 in token1
type PriceResponse struct {
	Token0 string `json:"token0"`
	Token1 string `json:"token1"`
	Price  string `json:"price"`
}

// InitRequest funds the empty pool
type InitRequest struct {
	Caller  string `json:"caller" binding:"required"`
	Amount0 string `json:"amount0" binding:"required"`
	Amount1 string `json:"amount1" binding:"required"`
}

// InitResponse reports the shares minted by Init
type InitResponse struct {
	Shares string `json:"shares"`
}

// AddLiquidityRequest deposits amount0 plus the matching token1
type AddLiquidityRequest struct {
	Caller  string `json:"caller" binding:"required"`
	Amount0 string `json:"amount0" binding:"required"`
}

// AddLiquidityResponse reports the deposit and minted shares
type AddLiquidityResponse struct {
	Amount0 string `json:"amount0"`
	Amount1 string `json:"amount1"`
	Shares  string `json:"shares"`
}

// RemoveLiquidityRequest burns shares
type RemoveLiquidityRequest struct {
	Caller string `json:"caller" binding:"required"`
	Shares string `json:"shares" binding:"required"`
}

// RemoveLiquidityResponse reports the withdrawn amounts
type RemoveLiquidityResponse struct {
	Amount0 string `json:"amount0"`
	Amount1 string `json:"amount1"`
}

// ==================== Swap Types ====================

// SwapRequest sells amount_in of the direction's input token
type SwapRequest struct {
	Caller       string `json:"caller" binding:"required"`
	AmountIn     string `json:"amount_in" binding:"required"`
	MinAmountOut string `json:"min_amount_out,omitempty"`
}

// SwapResponse describes an executed or quoted swap
type SwapResponse struct {
	Direction string `json:"direction"`
	TokenIn   string `json:"token_in"`
	TokenOut  string `json:"token_out"`
	AmountIn  string `json:"amount_in"`
	AmountOut string `json:"amount_out"`
	Fee       string `json:"fee"`
}

// ==================== Token Types ====================

// BalanceResponse reports a token balance
type BalanceResponse struct {
	Token   string `json:"token"`
	Address string `json:"address"`
	Balance string `json:"balance"`
}

// AllowanceResponse reports an owner->spender allowance
type AllowanceResponse struct {
	Token     string `json:"token"`
	Owner     string `json:"owner"`
	Spender   string `json:"spender"`
	Allowance string `json:"allowance"`
}

// TransferRequest moves the caller's tokens
type TransferRequest struct {
	Caller string `json:"caller" binding:"required"`
	To     string `json:"to" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

// ApproveRequest sets the caller's allowance for spender
type ApproveRequest struct {
	Caller  string `json:"caller" binding:"required"`
	Spender string `json:"spender" binding:"required"`
	Amount  string `json:"amount" binding:"required"`
}
