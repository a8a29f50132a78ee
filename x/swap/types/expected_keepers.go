package types

import (
	"context"

	"cosmossdk.io/math"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/ethereum/go-ethereum/common"
)

// TokenKeeper is the fungible-token collaborator the pool moves balances through.
// The Stage methods check a Transfer or TransferFrom against the ledger and
// stage its writes into a batch of the DB the ledger and the pool share,
// keeping the ledger locked until release is called.
type TokenKeeper interface {
	Address() common.Address
	BalanceOf(ctx context.Context, owner common.Address) (math.Int, error)
	StageTransfer(ctx context.Context, batch dbm.Batch, from, to common.Address, amount math.Int) (release func(), err error)
	StageTransferFrom(ctx context.Context, batch dbm.Batch, spender, from, to common.Address, amount math.Int) (release func(), err error)
}
