package app

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	keepertest "github.com/paw-chain/swap/testutil/keeper"
	swaptypes "github.com/paw-chain/swap/x/swap/types"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob   = common.HexToAddress("0x00000000000000000000000000000000000000a2")
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.DB.Backend = BackendMemDB
	return cfg
}

func newTestApp(t *testing.T, db dbm.DB) *SwapApp {
	t.Helper()
	a, err := NewSwapApp(log.NewNopLogger(), db, testConfig(), prometheus.NewRegistry())
	require.NoError(t, err)
	return a
}

// fundedPool mints to alice and bob and opens the pool from alice.
func fundedPool(t *testing.T, a *SwapApp) {
	t.Helper()
	ctx := context.Background()
	pool := a.SwapKeeper.Address()
	for _, k := range a.TokenKeepers {
		for _, who := range []common.Address{alice, bob} {
			require.NoError(t, k.Mint(ctx, who, math.NewInt(1_000_000)))
			require.NoError(t, k.Approve(ctx, who, pool, math.NewInt(1_000_000)))
		}
	}
	_, err := a.SwapKeeper.Init(ctx, alice, math.NewInt(100_000), math.NewInt(400_000))
	require.NoError(t, err)
	_, err = a.SwapKeeper.Token0To1(ctx, bob, math.NewInt(5_000))
	require.NoError(t, err)
}

func TestNewSwapApp(t *testing.T) {
	a := newTestApp(t, dbm.NewMemDB())
	require.NotNil(t, a.SwapKeeper)
	require.NotNil(t, a.Metrics)

	token0, token1 := a.SwapKeeper.GetTokens(context.Background())
	require.Equal(t, a.TokenKeepers[0].Address(), token0)
	require.Equal(t, a.TokenKeepers[1].Address(), token1)

	k, ok := a.Token("sbnb")
	require.True(t, ok)
	require.Equal(t, token0, k.Address())
	k, ok = a.Token(token1.Hex())
	require.True(t, ok)
	require.Equal(t, "sTSLA", k.Metadata().Symbol)
	_, ok = a.Token("DOGE")
	require.False(t, ok)
}

func TestNewSwapAppRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Tokens = cfg.Tokens[:1]
	_, err := NewSwapApp(log.NewNopLogger(), dbm.NewMemDB(), cfg, nil)
	require.ErrorContains(t, err, "invalid config")
}

func TestOpenDB(t *testing.T) {
	db, err := OpenDB(DBConfig{Backend: BackendMemDB})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	dir := filepath.Join(t.TempDir(), "data")
	db, err = OpenDB(DBConfig{Backend: BackendGoLevelDB, Dir: dir})
	require.NoError(t, err)
	require.NoError(t, db.Set([]byte("k"), []byte("v")))
	require.NoError(t, db.Close())

	_, err = OpenDB(DBConfig{Backend: "badger"})
	require.Error(t, err)
}

func TestPoolSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()
	cfg.DB = DBConfig{Backend: BackendGoLevelDB, Dir: dir}

	db, err := OpenDB(cfg.DB)
	require.NoError(t, err)
	a, err := NewSwapApp(log.NewNopLogger(), db, cfg, nil)
	require.NoError(t, err)
	fundedPool(t, a)
	before := a.SwapKeeper.GetPool(context.Background())
	require.NoError(t, a.Close())

	db, err = OpenDB(cfg.DB)
	require.NoError(t, err)
	a, err = NewSwapApp(log.NewNopLogger(), db, cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	after := a.SwapKeeper.GetPool(context.Background())
	require.Equal(t, before.Reserve0.String(), after.Reserve0.String())
	require.Equal(t, before.Reserve1.String(), after.Reserve1.String())
	require.Equal(t, before.TotalShares.String(), after.TotalShares.String())
	require.True(t, after.Initialized)
}

func TestDefaultGenesisImports(t *testing.T) {
	cfg := testConfig()
	cfg.Pool.FeeNumerator = 995

	gs, err := NewDefaultGenesisState(cfg)
	require.NoError(t, err)

	a := newTestApp(t, dbm.NewMemDB())
	imported, err := a.HasGenesis()
	require.NoError(t, err)
	require.False(t, imported)

	require.NoError(t, a.InitGenesis(context.Background(), gs))
	imported, err = a.HasGenesis()
	require.NoError(t, err)
	require.True(t, imported)
	require.Equal(t, swaptypes.Params{FeeNumerator: 995, FeeDenominator: 1000}, a.SwapKeeper.GetParams(context.Background()))
	require.False(t, a.SwapKeeper.IsInitialized(context.Background()))
}

func TestGenesisExportImport(t *testing.T) {
	ctx := context.Background()
	src := newTestApp(t, dbm.NewMemDB())
	fundedPool(t, src)

	gs, err := src.ExportGenesis(ctx)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "genesis.json")
	require.NoError(t, WriteGenesisFile(path, gs))
	loaded, err := ReadGenesisFile(path)
	require.NoError(t, err)

	dst := newTestApp(t, dbm.NewMemDB())
	require.NoError(t, dst.InitGenesis(ctx, loaded))

	require.Equal(t, src.SwapKeeper.GetPool(ctx).Reserve0.String(), dst.SwapKeeper.GetPool(ctx).Reserve0.String())
	for i := range src.TokenKeepers {
		for _, who := range []common.Address{alice, bob, src.SwapKeeper.Address()} {
			require.Equal(t,
				keepertest.BalanceOf(t, src.TokenKeepers[i], who).String(),
				keepertest.BalanceOf(t, dst.TokenKeepers[i], who).String())
		}
	}
	held, err := dst.SwapKeeper.GetShares(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, "200000", held.String())

	// the imported pool keeps trading
	_, err = dst.SwapKeeper.Token1To0(ctx, bob, math.NewInt(5_000))
	require.NoError(t, err)

	again, err := dst.ExportGenesis(ctx)
	require.NoError(t, err)
	require.NotEqual(t, string(gs[swaptypes.ModuleName]), string(again[swaptypes.ModuleName]))
}

func TestInitGenesisRejectsForeignLedger(t *testing.T) {
	other := testConfig()
	other.Tokens[1].Symbol = "sAAPL"
	gs, err := NewDefaultGenesisState(other)
	require.NoError(t, err)

	a := newTestApp(t, dbm.NewMemDB())
	err = a.InitGenesis(context.Background(), gs)
	require.ErrorContains(t, err, "sAAPL")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(LogConfig{Level: "info", Format: LogFormatJSON}, &buf)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("pool opened", "token", "sBNB")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), `"token":"sBNB"`)
	require.Contains(t, buf.String(), `"service":"swapd"`)

	_, err = NewLogger(LogConfig{Level: "chatty"}, &buf)
	require.Error(t, err)
}
