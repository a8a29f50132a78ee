package keeper

import (
	"context"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/swap/x/swap/keeper"
	tokenkeeper "github.com/paw-chain/swap/x/token/keeper"
	tokentypes "github.com/paw-chain/swap/x/token/types"
)

// Token symbols used by the fixture pool.
const (
	Token0Symbol = "sBNB"
	Token1Symbol = "sTSLA"
	Decimals     = 8
)

// TB is the part of testing.TB the fixture helpers use. *rapid.T satisfies
// it, so property checks can build a fixture per run.
type TB interface {
	require.TestingT
	Helper()
}

// SwapFixture bundles a swap keeper with the token ledgers it trades.
type SwapFixture struct {
	Ctx      context.Context
	DB       dbm.DB
	Keeper   *keeper.Keeper
	Token0   *tokenkeeper.Keeper
	Token1   *tokenkeeper.Keeper
	Metrics  *keeper.SwapMetrics
	Registry *prometheus.Registry
}

// SwapKeeper creates a swap keeper over an in-memory DB with fresh sBNB/sTSLA
// ledgers and an isolated metrics registry.
func SwapKeeper(t TB) *SwapFixture {
	t.Helper()
	return SwapKeeperWithDB(t, dbm.NewMemDB())
}

// SwapKeeperWithDB is SwapKeeper over an existing DB, for reopen tests.
func SwapKeeperWithDB(t TB, db dbm.DB) *SwapFixture {
	t.Helper()

	logger := log.NewNopLogger()
	token0 := NewToken(t, db, Token0Symbol)
	token1 := NewToken(t, db, Token1Symbol)

	reg := prometheus.NewRegistry()
	metrics := keeper.NewSwapMetrics(reg)

	k, err := keeper.NewKeeper(db, token0, token1, logger, metrics)
	require.NoError(t, err)

	return &SwapFixture{
		Ctx:      context.Background(),
		DB:       db,
		Keeper:   k,
		Token0:   token0,
		Token1:   token1,
		Metrics:  metrics,
		Registry: reg,
	}
}

// NewToken opens an 8-decimal token ledger named symbol inside db.
func NewToken(t TB, db dbm.DB, symbol string) *tokenkeeper.Keeper {
	t.Helper()
	k, err := tokenkeeper.NewKeeper(db, tokentypes.Metadata{
		Address:  tokentypes.DefaultAddress(symbol),
		Name:     symbol,
		Symbol:   symbol,
		Decimals: Decimals,
	}, log.NewNopLogger())
	require.NoError(t, err)
	return k
}

// Fund mints amount0 of token0 and amount1 of token1 to owner.
func (f *SwapFixture) Fund(t TB, owner common.Address, amount0, amount1 math.Int) {
	t.Helper()
	if amount0.IsPositive() {
		require.NoError(t, f.Token0.Mint(f.Ctx, owner, amount0))
	}
	if amount1.IsPositive() {
		require.NoError(t, f.Token1.Mint(f.Ctx, owner, amount1))
	}
}

// Approve lets the pool pull up to amount0/amount1 from owner.
func (f *SwapFixture) Approve(t TB, owner common.Address, amount0, amount1 math.Int) {
	t.Helper()
	require.NoError(t, f.Token0.Approve(f.Ctx, owner, f.Keeper.Address(), amount0))
	require.NoError(t, f.Token1.Approve(f.Ctx, owner, f.Keeper.Address(), amount1))
}

// FundAndApprove funds owner and approves the pool for the same amounts.
func (f *SwapFixture) FundAndApprove(t TB, owner common.Address, amount0, amount1 math.Int) {
	t.Helper()
	f.Fund(t, owner, amount0, amount1)
	f.Approve(t, owner, amount0, amount1)
}

// InitPool funds, approves and initializes the pool from owner.
func (f *SwapFixture) InitPool(t TB, owner common.Address, amount0, amount1 math.Int) math.Int {
	t.Helper()
	f.FundAndApprove(t, owner, amount0, amount1)
	shares, err := f.Keeper.Init(f.Ctx, owner, amount0, amount1)
	require.NoError(t, err)
	return shares
}

// RequireInvariants fails the test if any pool invariant is broken.
func (f *SwapFixture) RequireInvariants(t TB) {
	t.Helper()
	msg, broken := keeper.AllInvariants(f.Keeper)(f.Ctx)
	require.False(t, broken, msg)
}

// Units converts whole tokens to base units at the fixture's decimals.
func Units(whole int64) math.Int {
	return math.NewInt(whole).Mul(math.NewInt(100_000_000))
}

// BalanceReader reports token balances.
type BalanceReader interface {
	BalanceOf(ctx context.Context, owner common.Address) (math.Int, error)
}

// BalanceOf reads owner's balance of token, failing the test on a read error.
func BalanceOf(t TB, token BalanceReader, owner common.Address) math.Int {
	t.Helper()
	balance, err := token.BalanceOf(context.Background(), owner)
	require.NoError(t, err)
	return balance
}

// Allowance reads the owner->spender allowance of token.
func Allowance(t TB, token *tokenkeeper.Keeper, owner, spender common.Address) math.Int {
	t.Helper()
	allowance, err := token.Allowance(context.Background(), owner, spender)
	require.NoError(t, err)
	return allowance
}

// TotalSupply reads the minted supply of token.
func TotalSupply(t TB, token *tokenkeeper.Keeper) math.Int {
	t.Helper()
	supply, err := token.TotalSupply(context.Background())
	require.NoError(t, err)
	return supply
}
