package types

import (
	"cosmossdk.io/errors"
)

// Token module sentinel errors
var (
	ErrInsufficientBalance   = errors.Register(ModuleName, 2, "insufficient balance")
	ErrInsufficientAllowance = errors.Register(ModuleName, 3, "insufficient allowance")
	ErrInvalidAddress        = errors.Register(ModuleName, 4, "invalid address")
	ErrInvalidAmount         = errors.Register(ModuleName, 5, "invalid amount")
	ErrUnknownToken          = errors.Register(ModuleName, 6, "unknown token")
	ErrInvalidMetadata       = errors.Register(ModuleName, 7, "invalid token metadata")
	ErrStateCorruption       = errors.Register(ModuleName, 8, "ledger state corruption")
)
