package keeper_test

import (
	"context"
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	keepertest "github.com/paw-chain/swap/testutil/keeper"
	"github.com/paw-chain/swap/x/swap/types"
	tokentypes "github.com/paw-chain/swap/x/token/types"
)

func TestInitSymmetric(t *testing.T) {
	f := keepertest.SwapKeeper(t)
	amount := keepertest.Units(500000)

	shares := f.InitPool(t, alice, amount, amount)
	require.Equal(t, amount, shares)

	r0, r1 := f.Keeper.GetReserves(f.Ctx)
	require.Equal(t, amount, r0)
	require.Equal(t, amount, r1)

	held, err := f.Keeper.GetShares(f.Ctx, alice)
	require.NoError(t, err)
	require.Equal(t, amount, held)
	require.Equal(t, amount, f.Keeper.GetTotalShares(f.Ctx))
	require.True(t, f.Keeper.IsInitialized(f.Ctx))

	// funds moved to the pool address
	require.True(t, keepertest.BalanceOf(t, f.Token0, alice).IsZero())
	require.Equal(t, amount, keepertest.BalanceOf(t, f.Token0, f.Keeper.Address()))
	require.Equal(t, amount, keepertest.BalanceOf(t, f.Token1, f.Keeper.Address()))
	f.RequireInvariants(t)
}

func TestInitAsymmetricUsesGeometricMean(t *testing.T) {
	tests := []struct {
		amount0, amount1 int64
		want             int64
	}{
		{1000, 4000, 2000},
		{3, 5, 3},
		{1, 1, 1},
		{2, 1_000_000, 1414},
	}

	for _, tc := range tests {
		f := keepertest.SwapKeeper(t)
		shares := f.InitPool(t, alice, math.NewInt(tc.amount0), math.NewInt(tc.amount1))
		require.Equal(t, math.NewInt(tc.want), shares, "init(%d, %d)", tc.amount0, tc.amount1)
		f.RequireInvariants(t)
	}
}

func TestInitRejectsZeroAmounts(t *testing.T) {
	f := keepertest.SwapKeeper(t)
	f.FundAndApprove(t, alice, math.NewInt(100), math.NewInt(100))

	_, err := f.Keeper.Init(f.Ctx, alice, math.ZeroInt(), math.NewInt(100))
	require.ErrorIs(t, err, types.ErrZeroAmount)

	_, err = f.Keeper.Init(f.Ctx, alice, math.NewInt(100), math.ZeroInt())
	require.ErrorIs(t, err, types.ErrZeroAmount)

	_, err = f.Keeper.Init(f.Ctx, alice, math.NewInt(-5), math.NewInt(100))
	require.ErrorIs(t, err, types.ErrZeroAmount)

	require.False(t, f.Keeper.IsInitialized(f.Ctx))
	require.Equal(t, math.NewInt(100), keepertest.BalanceOf(t, f.Token0, alice))
}

func TestInitTwiceFails(t *testing.T) {
	f := keepertest.SwapKeeper(t)
	amount := keepertest.Units(500000)
	f.InitPool(t, alice, amount, amount)

	f.FundAndApprove(t, alice, amount, amount)
	_, err := f.Keeper.Init(f.Ctx, alice, amount, amount)
	require.ErrorIs(t, err, types.ErrAlreadyInitialized)

	// regardless of arguments, even zero ones
	_, err = f.Keeper.Init(f.Ctx, bob, math.ZeroInt(), math.ZeroInt())
	require.ErrorIs(t, err, types.ErrAlreadyInitialized)

	r0, _ := f.Keeper.GetReserves(f.Ctx)
	require.Equal(t, amount, r0)
}

func TestInitAfterFullDrainStillFails(t *testing.T) {
	f := keepertest.SwapKeeper(t)
	shares := f.InitPool(t, alice, math.NewInt(1000), math.NewInt(1000))

	_, _, err := f.Keeper.RemoveLiquidity(f.Ctx, alice, shares)
	require.NoError(t, err)
	require.True(t, f.Keeper.GetTotalShares(f.Ctx).IsZero())

	f.Approve(t, alice, math.NewInt(1000), math.NewInt(1000))
	_, err = f.Keeper.Init(f.Ctx, alice, math.NewInt(1000), math.NewInt(1000))
	require.ErrorIs(t, err, types.ErrAlreadyInitialized)
}

func TestInitWithoutAllowanceIsAtomic(t *testing.T) {
	f := keepertest.SwapKeeper(t)
	f.Fund(t, alice, math.NewInt(1000), math.NewInt(1000))
	// only token0 approved
	require.NoError(t, f.Token0.Approve(f.Ctx, alice, f.Keeper.Address(), math.NewInt(1000)))

	_, err := f.Keeper.Init(f.Ctx, alice, math.NewInt(1000), math.NewInt(1000))
	require.ErrorIs(t, err, types.ErrTokenTransferFailed)
	require.ErrorIs(t, err, tokentypes.ErrInsufficientAllowance)

	// nothing moved, the token0 allowance is untouched
	require.Equal(t, math.NewInt(1000), keepertest.BalanceOf(t, f.Token0, alice))
	require.Equal(t, math.NewInt(1000), keepertest.Allowance(t, f.Token0, alice, f.Keeper.Address()))
	require.True(t, keepertest.BalanceOf(t, f.Token0, f.Keeper.Address()).IsZero())
	require.False(t, f.Keeper.IsInitialized(f.Ctx))
	held, err := f.Keeper.GetShares(f.Ctx, alice)
	require.NoError(t, err)
	require.True(t, held.IsZero())
}

func TestInitWithInsufficientBalance(t *testing.T) {
	f := keepertest.SwapKeeper(t)
	f.Fund(t, alice, math.NewInt(1000), math.NewInt(999))
	f.Approve(t, alice, math.NewInt(1000), math.NewInt(1000))

	_, err := f.Keeper.Init(f.Ctx, alice, math.NewInt(1000), math.NewInt(1000))
	require.ErrorIs(t, err, types.ErrTokenTransferFailed)
	require.ErrorIs(t, err, tokentypes.ErrInsufficientBalance)
	require.Equal(t, math.NewInt(1000), keepertest.BalanceOf(t, f.Token0, alice))
	require.False(t, f.Keeper.IsInitialized(f.Ctx))
}

func TestInitHonorsCancelledContext(t *testing.T) {
	f := keepertest.SwapKeeper(t)
	f.FundAndApprove(t, alice, math.NewInt(100), math.NewInt(100))

	ctx, cancel := context.WithCancel(f.Ctx)
	cancel()

	_, err := f.Keeper.Init(ctx, alice, math.NewInt(100), math.NewInt(100))
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, f.Keeper.IsInitialized(f.Ctx))
}
