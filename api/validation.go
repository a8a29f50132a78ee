package api

import (
	"fmt"
	"strings"

	"cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
)

// Validation constants
const (
	MaxRequestSize  = 1 << 16 // 64 KB
	MaxAmountLength = 78      // decimal digits of 2^256
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors holds multiple validation errors
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v *ValidationErrors) Add(field, message string) {
	v.Errors = append(v.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

func (v *ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v.Errors))
	for _, e := range v.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return strings.Join(msgs, "; ")
}

// address parses a hex address into dst, recording a validation error
// on failure.
func (v *ValidationErrors) address(field, raw string, dst *common.Address) {
	raw = strings.TrimSpace(raw)
	if !common.IsHexAddress(raw) {
		v.Add(field, "must be a 20-byte hex address")
		return
	}
	addr := common.HexToAddress(raw)
	if addr == (common.Address{}) {
		v.Add(field, "cannot be the zero address")
		return
	}
	*dst = addr
}

// amount parses a non-negative base-unit integer into dst.
func (v *ValidationErrors) amount(field, raw string, dst *math.Int) {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > MaxAmountLength {
		v.Add(field, fmt.Sprintf("must be 1 to %d digits", MaxAmountLength))
		return
	}
	n, ok := math.NewIntFromString(raw)
	if !ok {
		v.Add(field, "must be a base-10 integer")
		return
	}
	if n.IsNegative() {
		v.Add(field, "cannot be negative")
		return
	}
	*dst = n
}
