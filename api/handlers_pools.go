package api

import (
	"net/http"

	"cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

// handleGetTokens returns the pool address and its token pair
func (s *Server) handleGetTokens(c *gin.Context) {
	token0, token1 := s.pool.GetTokens(c.Request.Context())
	c.JSON(http.StatusOK, TokensResponse{
		Pool:   s.pool.Address().Hex(),
		Token0: tokenInfo(s.tokens[token0]),
		Token1: tokenInfo(s.tokens[token1]),
	})
}

// handleGetReserves returns reserves and total shares
func (s *Server) handleGetReserves(c *gin.Context) {
	pool := s.pool.GetPool(c.Request.Context())
	c.JSON(http.StatusOK, ReservesResponse{
		Reserve0:    pool.Reserve0.String(),
		Reserve1:    pool.Reserve1.String(),
		TotalShares: pool.TotalShares.String(),
		Initialized: pool.Initialized,
	})
}

// handleGetShares returns a provider's shares
func (s *Server) handleGetShares(c *gin.Context) {
	var (
		verr     ValidationErrors
		provider common.Address
	)
	verr.address("address", c.Param("address"), &provider)
	if verr.HasErrors() {
		s.respondError(c, &verr)
		return
	}

	shares, err := s.pool.GetShares(c.Request.Context(), provider)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, SharesResponse{Address: provider.Hex(), Shares: shares.String()})
}

// handleGetPrice returns the marginal price of token0 in token1
func (s *Server) handleGetPrice(c *gin.Context) {
	price, err := s.pool.GetSpotPrice(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	token0, token1 := s.pool.GetTokens(c.Request.Context())
	c.JSON(http.StatusOK, PriceResponse{
		Token0: s.tokens[token0].Metadata().Symbol,
		Token1: s.tokens[token1].Metadata().Symbol,
		Price:  price.String(),
	})
}

// handleQuote simulates a swap without moving funds
func (s *Server) handleQuote(c *gin.Context) {
	var (
		verr     ValidationErrors
		amountIn math.Int
	)
	verr.amount("amount_in", c.Query("amount_in"), &amountIn)
	if c.Query("token_in") == "" {
		verr.Add("token_in", "is required")
	}
	if verr.HasErrors() {
		s.respondError(c, &verr)
		return
	}

	tokenIn, err := s.token(c.Query("token_in"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	res, err := s.pool.SimulateSwap(c.Request.Context(), tokenIn.Address(), amountIn)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.swapResponse(res))
}

// handleInit seeds the empty pool
func (s *Server) handleInit(c *gin.Context) {
	var req InitRequest
	if !s.bindJSON(c, &req) {
		return
	}

	var (
		verr             ValidationErrors
		caller           common.Address
		amount0, amount1 math.Int
	)
	verr.address("caller", req.Caller, &caller)
	verr.amount("amount0", req.Amount0, &amount0)
	verr.amount("amount1", req.Amount1, &amount1)
	if verr.HasErrors() {
		s.respondError(c, &verr)
		return
	}

	shares, err := s.pool.Init(c.Request.Context(), caller, amount0, amount1)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, InitResponse{Shares: shares.String()})
}

// handleAddLiquidity deposits at the current ratio
func (s *Server) handleAddLiquidity(c *gin.Context) {
	var req AddLiquidityRequest
	if !s.bindJSON(c, &req) {
		return
	}

	var (
		verr    ValidationErrors
		caller  common.Address
		amount0 math.Int
	)
	verr.address("caller", req.Caller, &caller)
	verr.amount("amount0", req.Amount0, &amount0)
	if verr.HasErrors() {
		s.respondError(c, &verr)
		return
	}

	amount1, minted, err := s.pool.AddLiquidity(c.Request.Context(), caller, amount0)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, AddLiquidityResponse{
		Amount0: amount0.String(),
		Amount1: amount1.String(),
		Shares:  minted.String(),
	})
}

// handleRemoveLiquidity burns shares for a pro-rata withdrawal
func (s *Server) handleRemoveLiquidity(c *gin.Context) {
	var req RemoveLiquidityRequest
	if !s.bindJSON(c, &req) {
		return
	}

	var (
		verr   ValidationErrors
		caller common.Address
		shares math.Int
	)
	verr.address("caller", req.Caller, &caller)
	verr.amount("shares", req.Shares, &shares)
	if verr.HasErrors() {
		s.respondError(c, &verr)
		return
	}

	amount0, amount1, err := s.pool.RemoveLiquidity(c.Request.Context(), caller, shares)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, RemoveLiquidityResponse{
		Amount0: amount0.String(),
		Amount1: amount1.String(),
	})
}
