package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	errorsmod "cosmossdk.io/errors"
	"github.com/gin-gonic/gin"

	swaptypes "github.com/paw-chain/swap/x/swap/types"
	tokentypes "github.com/paw-chain/swap/x/token/types"
)

// errorStatus maps module errors to HTTP status codes. Swap errors come
// first so a wrapped ledger failure reports as a failed transfer, unless the
// ledger itself is unreadable.
var errorStatus = []struct {
	err    error
	status int
}{
	{tokentypes.ErrStateCorruption, http.StatusInternalServerError},
	{swaptypes.ErrZeroAmount, http.StatusBadRequest},
	{swaptypes.ErrInvalidToken, http.StatusBadRequest},
	{swaptypes.ErrAlreadyInitialized, http.StatusConflict},
	{swaptypes.ErrNotInitialized, http.StatusConflict},
	{swaptypes.ErrInsufficientShares, http.StatusUnprocessableEntity},
	{swaptypes.ErrInsufficientOutputAmount, http.StatusUnprocessableEntity},
	{swaptypes.ErrSlippageTooHigh, http.StatusUnprocessableEntity},
	{swaptypes.ErrInsufficientLiquidity, http.StatusUnprocessableEntity},
	{swaptypes.ErrTokenTransferFailed, http.StatusUnprocessableEntity},
	{tokentypes.ErrInvalidAddress, http.StatusBadRequest},
	{tokentypes.ErrInvalidAmount, http.StatusBadRequest},
	{tokentypes.ErrUnknownToken, http.StatusNotFound},
	{tokentypes.ErrInsufficientBalance, http.StatusUnprocessableEntity},
	{tokentypes.ErrInsufficientAllowance, http.StatusUnprocessableEntity},
	{context.DeadlineExceeded, http.StatusRequestTimeout},
}

func statusFor(err error) int {
	var verr *ValidationErrors
	if errors.As(err, &verr) {
		return http.StatusBadRequest
	}
	for _, m := range errorStatus {
		if errors.Is(err, m.err) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

// errorCode reports codespace:code for registered module errors.
func errorCode(err error) string {
	var coded *errorsmod.Error
	for _, m := range errorStatus {
		if errors.Is(err, m.err) && errors.As(m.err, &coded) {
			return fmt.Sprintf("%s:%d", coded.Codespace(), coded.ABCICode())
		}
	}
	codespace, code, _ := errorsmod.ABCIInfo(err, false)
	if code == 0 || codespace == errorsmod.UndefinedCodespace {
		return ""
	}
	return fmt.Sprintf("%s:%d", codespace, code)
}

// respondError writes err as an ErrorResponse.
func (s *Server) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	resp := ErrorResponse{
		Error: http.StatusText(status),
		Code:  errorCode(err),
	}
	var verr *ValidationErrors
	switch {
	case errors.As(err, &verr):
		resp.Error = "Invalid request"
		resp.Code = "VALIDATION"
		resp.Details = verr.Error()
	case status == http.StatusInternalServerError:
		s.logger.Error("request failed", "path", c.FullPath(), "request_id", c.GetString(requestIDKey), "error", err)
	default:
		resp.Details = err.Error()
	}
	if status == http.StatusRequestTimeout {
		resp.Code = "TIMEOUT"
	}
	c.AbortWithStatusJSON(status, resp)
}

// bindJSON decodes the request body, reporting malformed JSON as a
// validation error.
func (s *Server) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		verr := &ValidationErrors{}
		verr.Add("body", err.Error())
		s.respondError(c, verr)
		return false
	}
	return true
}
