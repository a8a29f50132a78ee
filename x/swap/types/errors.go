package types

import (
	"cosmossdk.io/errors"
)

// Swap module sentinel errors
var (
	ErrAlreadyInitialized       = errors.Register(ModuleName, 2, "pool already initialized")
	ErrZeroAmount               = errors.Register(ModuleName, 3, "amount cannot be zero")
	ErrInsufficientShares       = errors.Register(ModuleName, 4, "insufficient liquidity shares")
	ErrInsufficientOutputAmount = errors.Register(ModuleName, 5, "insufficient output amount")
	ErrTokenTransferFailed      = errors.Register(ModuleName, 6, "token transfer failed")
	ErrNotInitialized           = errors.Register(ModuleName, 7, "pool not initialized")
	ErrInsufficientLiquidity    = errors.Register(ModuleName, 8, "insufficient liquidity in pool")
	ErrSlippageTooHigh          = errors.Register(ModuleName, 9, "output amount less than minimum required")
	ErrInvariantViolation       = errors.Register(ModuleName, 10, "pool invariant violated")
	ErrStateCorruption          = errors.Register(ModuleName, 11, "pool state corruption")
	ErrOverflow                 = errors.Register(ModuleName, 12, "arithmetic overflow")
	ErrInvalidToken             = errors.Register(ModuleName, 13, "token is not part of the pool")
	ErrInvalidParams            = errors.Register(ModuleName, 14, "invalid params")
	ErrInvalidGenesis           = errors.Register(ModuleName, 15, "invalid genesis state")
)
