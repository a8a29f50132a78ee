package api

import (
	"net/http"

	"cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

// handleGetBalance returns an address's balance of :token
func (s *Server) handleGetBalance(c *gin.Context) {
	token, err := s.token(c.Param("token"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	var (
		verr  ValidationErrors
		owner common.Address
	)
	verr.address("address", c.Param("address"), &owner)
	if verr.HasErrors() {
		s.respondError(c, &verr)
		return
	}

	balance, err := token.BalanceOf(c.Request.Context(), owner)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, BalanceResponse{
		Token:   token.Metadata().Symbol,
		Address: owner.Hex(),
		Balance: balance.String(),
	})
}

// handleGetAllowance returns the owner->spender allowance of :token
func (s *Server) handleGetAllowance(c *gin.Context) {
	token, err := s.token(c.Param("token"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	var (
		verr           ValidationErrors
		owner, spender common.Address
	)
	verr.address("owner", c.Param("owner"), &owner)
	verr.address("spender", c.Param("spender"), &spender)
	if verr.HasErrors() {
		s.respondError(c, &verr)
		return
	}

	allowance, err := token.Allowance(c.Request.Context(), owner, spender)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, AllowanceResponse{
		Token:     token.Metadata().Symbol,
		Owner:     owner.Hex(),
		Spender:   spender.Hex(),
		Allowance: allowance.String(),
	})
}

// handleTransfer moves the caller's tokens
func (s *Server) handleTransfer(c *gin.Context) {
	token, err := s.token(c.Param("token"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	var req TransferRequest
	if !s.bindJSON(c, &req) {
		return
	}

	var (
		verr       ValidationErrors
		caller, to common.Address
		amount     math.Int
	)
	s.caller(&verr, req.Caller, &caller)
	verr.address("to", req.To, &to)
	verr.amount("amount", req.Amount, &amount)
	if verr.HasErrors() {
		s.respondError(c, &verr)
		return
	}

	if err := token.Transfer(c.Request.Context(), caller, to, amount); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// handleApprove sets the caller's allowance for spender
func (s *Server) handleApprove(c *gin.Context) {
	token, err := s.token(c.Param("token"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	var req ApproveRequest
	if !s.bindJSON(c, &req) {
		return
	}

	var (
		verr            ValidationErrors
		caller, spender common.Address
		amount          math.Int
	)
	s.caller(&verr, req.Caller, &caller)
	verr.address("spender", req.Spender, &spender)
	verr.amount("amount", req.Amount, &amount)
	if verr.HasErrors() {
		s.respondError(c, &verr)
		return
	}

	if err := token.Approve(c.Request.Context(), caller, spender, amount); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// caller parses a token-operation caller. The pool's own holdings only
// move through pool operations.
func (s *Server) caller(verr *ValidationErrors, raw string, dst *common.Address) {
	var addr common.Address
	verr.address("caller", raw, &addr)
	if addr == s.pool.Address() {
		verr.Add("caller", "cannot act as the pool")
		return
	}
	*dst = addr
}
