package keeper_test

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	keepertest "github.com/paw-chain/swap/testutil/keeper"
	"github.com/paw-chain/swap/x/swap/keeper"
	"github.com/paw-chain/swap/x/swap/types"
)

func TestNewSwapMetricsRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := keeper.NewSwapMetrics(reg)
	m.SwapsTotal.WithLabelValues(string(types.Token0To1), "success").Inc()
	m.LiquidityOps.WithLabelValues("init", "success").Inc()
	m.PoolReserve.WithLabelValues("x").Set(1)
	m.InvariantViolations.WithLabelValues("x").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	for _, name := range []string{
		"swap_pool_swaps_total",
		"swap_pool_liquidity_ops_total",
		"swap_pool_reserve",
		"swap_pool_total_shares",
		"swap_pool_swap_latency_seconds",
		"swap_pool_invariant_violations_total",
	} {
		require.True(t, names[name], name)
	}

	// a second registration on the same registry panics
	require.Panics(t, func() { keeper.NewSwapMetrics(reg) })
}

func TestMetricsTrackPoolActivity(t *testing.T) {
	f := keepertest.SwapKeeper(t)
	token0, token1 := f.Keeper.GetTokens(f.Ctx)

	f.InitPool(t, alice, math.NewInt(1_000_000), math.NewInt(1_000_000))
	require.Equal(t, float64(1), testutil.ToFloat64(f.Metrics.LiquidityOps.WithLabelValues("init", "success")))
	require.Equal(t, float64(1_000_000), testutil.ToFloat64(f.Metrics.TotalShares))

	f.FundAndApprove(t, bob, math.NewInt(10_000), math.ZeroInt())
	_, err := f.Keeper.Token0To1(f.Ctx, bob, math.NewInt(10_000))
	require.NoError(t, err)

	_, err = f.Keeper.Token0To1(f.Ctx, bob, math.ZeroInt())
	require.Error(t, err)

	dir := string(types.Token0To1)
	require.Equal(t, float64(1), testutil.ToFloat64(f.Metrics.SwapsTotal.WithLabelValues(dir, "success")))
	require.Equal(t, float64(1), testutil.ToFloat64(f.Metrics.SwapsTotal.WithLabelValues(dir, "failure")))
	require.Equal(t, float64(10_000), testutil.ToFloat64(f.Metrics.SwapVolume.WithLabelValues(token0.Hex())))
	require.Equal(t, float64(30), testutil.ToFloat64(f.Metrics.SwapFees.WithLabelValues(token0.Hex())))

	r0, r1 := f.Keeper.GetReserves(f.Ctx)
	require.Equal(t, float64(r0.Int64()), testutil.ToFloat64(f.Metrics.PoolReserve.WithLabelValues(token0.Hex())))
	require.Equal(t, float64(r1.Int64()), testutil.ToFloat64(f.Metrics.PoolReserve.WithLabelValues(token1.Hex())))

	_, _, err = f.Keeper.RemoveLiquidity(f.Ctx, bob, math.OneInt())
	require.Error(t, err)
	require.Equal(t, float64(1), testutil.ToFloat64(f.Metrics.LiquidityOps.WithLabelValues("remove", "failure")))
}

func TestKeeperWithoutMetrics(t *testing.T) {
	f := keepertest.SwapKeeper(t)
	k, err := keeper.NewKeeper(f.DB, f.Token0, f.Token1, f.Keeper.Logger(), nil)
	require.NoError(t, err)

	f.FundAndApprove(t, alice, math.NewInt(100), math.NewInt(100))
	_, err = k.Init(f.Ctx, alice, math.NewInt(100), math.NewInt(100))
	require.NoError(t, err)
}
