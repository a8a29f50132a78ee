package keeper_test

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/swap/x/token/keeper"
	"github.com/paw-chain/swap/x/token/types"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob   = common.HexToAddress("0x00000000000000000000000000000000000000a2")
	carol = common.HexToAddress("0x00000000000000000000000000000000000000a3")
)

func newToken(t *testing.T, db dbm.DB, symbol string) *keeper.Keeper {
	t.Helper()
	k, err := keeper.NewKeeper(db, types.Metadata{
		Address:  types.DefaultAddress(symbol),
		Name:     symbol,
		Symbol:   symbol,
		Decimals: 8,
	}, log.NewNopLogger())
	require.NoError(t, err)
	return k
}

func balance(t *testing.T, k *keeper.Keeper, owner common.Address) math.Int {
	t.Helper()
	v, err := k.BalanceOf(context.Background(), owner)
	require.NoError(t, err)
	return v
}

func allowance(t *testing.T, k *keeper.Keeper, owner, spender common.Address) math.Int {
	t.Helper()
	v, err := k.Allowance(context.Background(), owner, spender)
	require.NoError(t, err)
	return v
}

func supply(t *testing.T, k *keeper.Keeper) math.Int {
	t.Helper()
	v, err := k.TotalSupply(context.Background())
	require.NoError(t, err)
	return v
}

// failingDB fails reads of one key and, when failWrites is set, every batch
// write.
type failingDB struct {
	dbm.DB
	failKey    []byte
	failWrites bool
}

var errDiskRead = errors.New("disk read failed")

func (db *failingDB) Get(key []byte) ([]byte, error) {
	if db.failKey != nil && bytes.Equal(key, db.failKey) {
		return nil, errDiskRead
	}
	return db.DB.Get(key)
}

func (db *failingDB) NewBatch() dbm.Batch {
	return &failingBatch{Batch: db.DB.NewBatch(), db: db}
}

type failingBatch struct {
	dbm.Batch
	db *failingDB
}

var errDiskWrite = errors.New("disk write failed")

func (b *failingBatch) Write() error {
	if b.db.failWrites {
		return errDiskWrite
	}
	return b.Batch.Write()
}

func ledgerKey(k *keeper.Keeper, key []byte) []byte {
	return append(types.StorePrefix(k.Address()), key...)
}

func TestMintAndTransfer(t *testing.T) {
	ctx := context.Background()
	k := newToken(t, dbm.NewMemDB(), "sBNB")

	require.NoError(t, k.Mint(ctx, alice, math.NewInt(1000)))
	require.Equal(t, math.NewInt(1000), balance(t, k, alice))
	require.Equal(t, math.NewInt(1000), supply(t, k))

	require.NoError(t, k.Transfer(ctx, alice, bob, math.NewInt(300)))
	require.Equal(t, math.NewInt(700), balance(t, k, alice))
	require.Equal(t, math.NewInt(300), balance(t, k, bob))

	err := k.Transfer(ctx, bob, carol, math.NewInt(301))
	require.ErrorIs(t, err, types.ErrInsufficientBalance)
	require.Equal(t, math.NewInt(300), balance(t, k, bob))
	require.True(t, balance(t, k, carol).IsZero())

	require.ErrorIs(t, k.Transfer(ctx, alice, common.Address{}, math.NewInt(1)), types.ErrInvalidAddress)
	require.ErrorIs(t, k.Transfer(ctx, alice, bob, math.NewInt(-1)), types.ErrInvalidAmount)

	// self transfer is a no-op
	require.NoError(t, k.Transfer(ctx, alice, alice, math.NewInt(700)))
	require.Equal(t, math.NewInt(700), balance(t, k, alice))
	require.Equal(t, math.NewInt(1000), supply(t, k))
}

func TestApproveAndTransferFrom(t *testing.T) {
	ctx := context.Background()
	k := newToken(t, dbm.NewMemDB(), "sTSLA")
	require.NoError(t, k.Mint(ctx, alice, math.NewInt(500)))

	err := k.TransferFrom(ctx, bob, alice, carol, math.NewInt(1))
	require.ErrorIs(t, err, types.ErrInsufficientAllowance)

	require.NoError(t, k.Approve(ctx, alice, bob, math.NewInt(200)))
	require.Equal(t, math.NewInt(200), allowance(t, k, alice, bob))

	require.NoError(t, k.TransferFrom(ctx, bob, alice, carol, math.NewInt(150)))
	require.Equal(t, math.NewInt(350), balance(t, k, alice))
	require.Equal(t, math.NewInt(150), balance(t, k, carol))
	require.Equal(t, math.NewInt(50), allowance(t, k, alice, bob))

	err = k.TransferFrom(ctx, bob, alice, carol, math.NewInt(51))
	require.ErrorIs(t, err, types.ErrInsufficientAllowance)

	// allowance larger than balance still fails on balance, leaving the allowance intact
	require.NoError(t, k.Approve(ctx, alice, bob, math.NewInt(1000)))
	err = k.TransferFrom(ctx, bob, alice, carol, math.NewInt(351))
	require.ErrorIs(t, err, types.ErrInsufficientBalance)
	require.Equal(t, math.NewInt(1000), allowance(t, k, alice, bob))
	require.Equal(t, math.NewInt(350), balance(t, k, alice))

	require.ErrorIs(t, k.Approve(ctx, alice, common.Address{}, math.NewInt(1)), types.ErrInvalidAddress)
}

func TestLedgersAreIsolated(t *testing.T) {
	ctx := context.Background()
	db := dbm.NewMemDB()
	bnb := newToken(t, db, "sBNB")
	tsla := newToken(t, db, "sTSLA")

	require.NoError(t, bnb.Mint(ctx, alice, math.NewInt(10)))
	require.True(t, balance(t, tsla, alice).IsZero())
	require.NotEqual(t, bnb.Address(), tsla.Address())
}

func TestLedgerSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	db := dbm.NewMemDB()
	k := newToken(t, db, "sBNB")
	require.NoError(t, k.Mint(ctx, alice, math.NewInt(42)))
	require.NoError(t, k.Approve(ctx, alice, bob, math.NewInt(7)))

	reopened := newToken(t, db, "sBNB")
	require.Equal(t, math.NewInt(42), balance(t, reopened, alice))
	require.Equal(t, math.NewInt(7), allowance(t, reopened, alice, bob))
}

func TestGenesisRoundTrip(t *testing.T) {
	ctx := context.Background()
	k := newToken(t, dbm.NewMemDB(), "sBNB")
	require.NoError(t, k.Mint(ctx, alice, math.NewInt(1000)))
	require.NoError(t, k.Mint(ctx, bob, math.NewInt(5)))
	require.NoError(t, k.Approve(ctx, alice, carol, math.NewInt(33)))

	gs, err := k.ExportGenesis(ctx)
	require.NoError(t, err)
	require.Len(t, gs.Balances, 2)
	require.Len(t, gs.Allowances, 1)

	fresh := newToken(t, dbm.NewMemDB(), "sBNB")
	require.NoError(t, fresh.InitGenesis(ctx, *gs))
	require.Equal(t, math.NewInt(1000), balance(t, fresh, alice))
	require.Equal(t, math.NewInt(5), balance(t, fresh, bob))
	require.Equal(t, math.NewInt(33), allowance(t, fresh, alice, carol))
	require.Equal(t, math.NewInt(1005), supply(t, fresh))

	other := newToken(t, dbm.NewMemDB(), "sTSLA")
	require.ErrorIs(t, other.InitGenesis(ctx, *gs), types.ErrUnknownToken)
}

func TestMetadataValidate(t *testing.T) {
	_, err := keeper.NewKeeper(dbm.NewMemDB(), types.Metadata{Symbol: "X"}, log.NewNopLogger())
	require.ErrorIs(t, err, types.ErrInvalidMetadata)

	_, err = keeper.NewKeeper(dbm.NewMemDB(), types.Metadata{Address: alice}, log.NewNopLogger())
	require.ErrorIs(t, err, types.ErrInvalidMetadata)
}

func TestUnreadableBalanceAbortsTransfer(t *testing.T) {
	ctx := context.Background()
	db := &failingDB{DB: dbm.NewMemDB()}
	k := newToken(t, db, "sBNB")
	require.NoError(t, k.Mint(ctx, alice, math.NewInt(10)))
	require.NoError(t, k.Mint(ctx, bob, math.NewInt(1000)))
	require.NoError(t, k.Approve(ctx, alice, carol, math.NewInt(10)))

	db.failKey = ledgerKey(k, types.GetBalanceKey(bob))

	err := k.Transfer(ctx, alice, bob, math.NewInt(1))
	require.ErrorIs(t, err, types.ErrStateCorruption)
	require.ErrorIs(t, k.TransferFrom(ctx, carol, alice, bob, math.NewInt(1)), types.ErrStateCorruption)
	require.ErrorIs(t, k.Transfer(ctx, bob, alice, math.NewInt(1)), types.ErrStateCorruption)
	require.ErrorIs(t, k.Mint(ctx, bob, math.NewInt(1)), types.ErrStateCorruption)

	_, err = k.BalanceOf(ctx, bob)
	require.ErrorIs(t, err, types.ErrStateCorruption)
	_, err = k.ExportGenesis(ctx)
	require.ErrorIs(t, err, types.ErrStateCorruption)

	db.failKey = ledgerKey(k, types.GetAllowanceKey(alice, carol))
	_, err = k.Allowance(ctx, alice, carol)
	require.ErrorIs(t, err, types.ErrStateCorruption)
	require.ErrorIs(t, k.TransferFrom(ctx, carol, alice, bob, math.NewInt(1)), types.ErrStateCorruption)

	db.failKey = nil
	require.Equal(t, math.NewInt(10), balance(t, k, alice))
	require.Equal(t, math.NewInt(1000), balance(t, k, bob))
	require.Equal(t, math.NewInt(10), allowance(t, k, alice, carol))
	require.Equal(t, math.NewInt(1010), supply(t, k))
}

func TestCorruptAmountIsReported(t *testing.T) {
	ctx := context.Background()
	db := dbm.NewMemDB()
	k := newToken(t, db, "sBNB")
	require.NoError(t, k.Mint(ctx, alice, math.NewInt(10)))

	require.NoError(t, db.Set(ledgerKey(k, types.GetBalanceKey(bob)), []byte("not a number")))

	require.ErrorIs(t, k.Transfer(ctx, alice, bob, math.NewInt(1)), types.ErrStateCorruption)
	require.Equal(t, math.NewInt(10), balance(t, k, alice))
}

func TestMintRejectsSupplyOverflow(t *testing.T) {
	ctx := context.Background()
	k := newToken(t, dbm.NewMemDB(), "sBNB")

	maxInt := math.NewIntFromBigInt(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)))
	require.NoError(t, k.Mint(ctx, alice, maxInt))

	require.NotPanics(t, func() {
		require.ErrorIs(t, k.Mint(ctx, bob, math.OneInt()), types.ErrInvalidAmount)
	})
	require.Equal(t, maxInt, supply(t, k))
	require.True(t, balance(t, k, bob).IsZero())

	// the whole supply can still move
	require.NoError(t, k.Transfer(ctx, alice, bob, maxInt))
	require.Equal(t, maxInt, balance(t, k, bob))
}

func TestGenesisRejectsSupplyOverflow(t *testing.T) {
	half := math.NewIntFromBigInt(new(big.Int).Lsh(big.NewInt(1), 255))
	gs := types.GenesisState{
		Metadata: types.Metadata{Address: types.DefaultAddress("sBNB"), Name: "sBNB", Symbol: "sBNB", Decimals: 8},
		Balances: []types.Balance{{Owner: alice, Amount: half}, {Owner: bob, Amount: half}},
	}
	require.ErrorIs(t, gs.Validate(), types.ErrInvalidAmount)

	gs.Balances[1].Amount = half.SubRaw(1)
	require.NoError(t, gs.Validate())
}

func TestStagedTransferLandsWithBatch(t *testing.T) {
	ctx := context.Background()
	db := dbm.NewMemDB()
	k := newToken(t, db, "sBNB")
	require.NoError(t, k.Mint(ctx, alice, math.NewInt(100)))
	require.NoError(t, k.Approve(ctx, alice, carol, math.NewInt(40)))

	// a discarded batch changes nothing
	batch := db.NewBatch()
	release, err := k.StageTransfer(ctx, batch, alice, bob, math.NewInt(30))
	require.NoError(t, err)
	require.NoError(t, batch.Close())
	release()
	require.Equal(t, math.NewInt(100), balance(t, k, alice))
	require.True(t, balance(t, k, bob).IsZero())

	batch = db.NewBatch()
	release, err = k.StageTransferFrom(ctx, batch, carol, alice, bob, math.NewInt(40))
	require.NoError(t, err)
	require.NoError(t, batch.Write())
	require.NoError(t, batch.Close())
	release()
	release()

	require.Equal(t, math.NewInt(60), balance(t, k, alice))
	require.Equal(t, math.NewInt(40), balance(t, k, bob))
	require.True(t, allowance(t, k, alice, carol).IsZero())
}

func TestStageFailureReleasesLedger(t *testing.T) {
	ctx := context.Background()
	db := dbm.NewMemDB()
	k := newToken(t, db, "sBNB")
	require.NoError(t, k.Mint(ctx, alice, math.NewInt(100)))

	batch := db.NewBatch()
	defer batch.Close()

	_, err := k.StageTransferFrom(ctx, batch, carol, alice, bob, math.NewInt(1))
	require.ErrorIs(t, err, types.ErrInsufficientAllowance)
	_, err = k.StageTransfer(ctx, batch, alice, bob, math.NewInt(101))
	require.ErrorIs(t, err, types.ErrInsufficientBalance)
	_, err = k.StageTransfer(ctx, batch, alice, common.Address{}, math.NewInt(1))
	require.ErrorIs(t, err, types.ErrInvalidAddress)

	require.NoError(t, k.Transfer(ctx, alice, bob, math.NewInt(1)))
}

func TestFailedWriteLeavesLedgerUnchanged(t *testing.T) {
	ctx := context.Background()
	db := &failingDB{DB: dbm.NewMemDB()}
	k := newToken(t, db, "sBNB")
	require.NoError(t, k.Mint(ctx, alice, math.NewInt(100)))

	db.failWrites = true
	require.ErrorIs(t, k.Transfer(ctx, alice, bob, math.NewInt(1)), errDiskWrite)
	require.ErrorIs(t, k.Mint(ctx, alice, math.NewInt(1)), errDiskWrite)

	db.failWrites = false
	require.Equal(t, math.NewInt(100), balance(t, k, alice))
	require.Equal(t, math.NewInt(100), supply(t, k))
}
