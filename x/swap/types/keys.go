package types

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	// ModuleName defines the module name
	ModuleName = "swap"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName
)

// Store key prefixes
var (
	PoolKey   = []byte{0x01} // single pool record
	SharesKey = []byte{0x02} // prefix for liquidity provider shares
	ParamsKey = []byte{0x03} // module params
)

// GetSharesKey returns the store key for a provider's shares
func GetSharesKey(provider common.Address) []byte {
	key := make([]byte, 0, len(SharesKey)+common.AddressLength)
	key = append(key, SharesKey...)
	return append(key, provider.Bytes()...)
}

// ProviderFromSharesKey recovers the provider address from a shares key.
func ProviderFromSharesKey(key []byte) common.Address {
	return common.BytesToAddress(key[len(SharesKey):])
}

// ModuleAddress returns the deterministic address that holds pool reserves.
func ModuleAddress(name string) common.Address {
	return common.BytesToAddress(crypto.Keccak256([]byte(name))[12:])
}
