package types

import (
	"github.com/ethereum/go-ethereum/common"
)

const (
	// ModuleName defines the module name
	ModuleName = "token"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName
)

// Store key prefixes, scoped per token by StorePrefix.
var (
	MetadataKey    = []byte{0x01}
	BalanceKey     = []byte{0x02}
	AllowanceKey   = []byte{0x03}
	TotalSupplyKey = []byte{0x04}
)

// StorePrefix returns the prefix under which a token's ledger lives.
func StorePrefix(token common.Address) []byte {
	key := append([]byte(StoreKey+"/"), token.Bytes()...)
	return append(key, '/')
}

// GetBalanceKey returns the store key for an owner's balance.
func GetBalanceKey(owner common.Address) []byte {
	return append(append([]byte{}, BalanceKey...), owner.Bytes()...)
}

// GetAllowanceKey returns the store key for an owner->spender allowance.
func GetAllowanceKey(owner, spender common.Address) []byte {
	key := append(append([]byte{}, AllowanceKey...), owner.Bytes()...)
	return append(key, spender.Bytes()...)
}
