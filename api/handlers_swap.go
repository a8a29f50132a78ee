package api

import (
	"net/http"

	"cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	swaptypes "github.com/paw-chain/swap/x/swap/types"
)

// handleToken0To1 sells token0 for token1
func (s *Server) handleToken0To1(c *gin.Context) {
	token0, _ := s.pool.GetTokens(c.Request.Context())
	s.handleSwap(c, token0)
}

// handleToken1To0 sells token1 for token0
func (s *Server) handleToken1To0(c *gin.Context) {
	_, token1 := s.pool.GetTokens(c.Request.Context())
	s.handleSwap(c, token1)
}

func (s *Server) handleSwap(c *gin.Context, tokenIn common.Address) {
	var req SwapRequest
	if !s.bindJSON(c, &req) {
		return
	}

	var (
		verr     ValidationErrors
		caller   common.Address
		amountIn math.Int
	)
	minOut := math.ZeroInt()
	verr.address("caller", req.Caller, &caller)
	verr.amount("amount_in", req.AmountIn, &amountIn)
	if req.MinAmountOut != "" {
		verr.amount("min_amount_out", req.MinAmountOut, &minOut)
	}
	if verr.HasErrors() {
		s.respondError(c, &verr)
		return
	}

	res, err := s.pool.Swap(c.Request.Context(), caller, tokenIn, amountIn, minOut)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.swapResponse(res))
}

func (s *Server) swapResponse(res *swaptypes.SwapResult) SwapResponse {
	return SwapResponse{
		Direction: string(res.Direction),
		TokenIn:   s.tokens[res.TokenIn].Metadata().Symbol,
		TokenOut:  s.tokens[res.TokenOut].Metadata().Symbol,
		AmountIn:  res.AmountIn.String(),
		AmountOut: res.AmountOut.String(),
		Fee:       res.Fee.String(),
	}
}
