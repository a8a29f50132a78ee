package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/paw-chain/swap/x/swap/types"
)

// Invariant checks one pool property, returning a report and whether the
// property is broken.
type Invariant func(ctx context.Context) (string, bool)

// InvariantRegistry collects named invariants.
type InvariantRegistry interface {
	RegisterRoute(moduleName, route string, invariant Invariant)
}

// RegisterInvariants registers all swap invariants
func RegisterInvariants(ir InvariantRegistry, k *Keeper) {
	ir.RegisterRoute(types.ModuleName, "share-conservation", ShareConservationInvariant(k))
	ir.RegisterRoute(types.ModuleName, "funding-symmetry", FundingSymmetryInvariant(k))
	ir.RegisterRoute(types.ModuleName, "shares-bounded", SharesBoundedInvariant(k))
	ir.RegisterRoute(types.ModuleName, "reserves-backed", ReservesBackedInvariant(k))
}

// AllInvariants runs all invariants of the swap module
func AllInvariants(k *Keeper) Invariant {
	return func(ctx context.Context) (string, bool) {
		for _, inv := range []Invariant{
			ShareConservationInvariant(k),
			FundingSymmetryInvariant(k),
			SharesBoundedInvariant(k),
			ReservesBackedInvariant(k),
		} {
			if res, stop := inv(ctx); stop {
				return res, stop
			}
		}
		return "", false
	}
}

// ShareConservationInvariant checks total shares equal the sum of all holdings.
func ShareConservationInvariant(k *Keeper) Invariant {
	return func(ctx context.Context) (string, bool) {
		k.mu.RLock()
		defer k.mu.RUnlock()

		sum := math.ZeroInt()
		err := k.iterateShares(func(_ common.Address, shares math.Int) bool {
			sum = sum.Add(shares)
			return false
		})
		if err != nil {
			return k.broken("share-conservation", fmt.Sprintf("cannot read shares: %v\n", err))
		}

		if !sum.Equal(k.pool.TotalShares) {
			return k.broken("share-conservation",
				fmt.Sprintf("sum of shares %s != total shares %s\n", sum, k.pool.TotalShares))
		}
		return formatInvariant("share-conservation", "total shares match holdings\n"), false
	}
}

// FundingSymmetryInvariant checks the pool is either empty or funded on both sides.
func FundingSymmetryInvariant(k *Keeper) Invariant {
	return func(ctx context.Context) (string, bool) {
		k.mu.RLock()
		defer k.mu.RUnlock()

		p := k.pool
		empty0, empty1, emptyT := p.Reserve0.IsZero(), p.Reserve1.IsZero(), p.TotalShares.IsZero()
		if empty0 != empty1 || empty0 != emptyT {
			return k.broken("funding-symmetry", fmt.Sprintf("reserve0=%s reserve1=%s total_shares=%s\n",
				p.Reserve0, p.Reserve1, p.TotalShares))
		}
		return formatInvariant("funding-symmetry", "pool funding is symmetric\n"), false
	}
}

// SharesBoundedInvariant checks no holding exceeds total shares.
func SharesBoundedInvariant(k *Keeper) Invariant {
	return func(ctx context.Context) (string, bool) {
		k.mu.RLock()
		defer k.mu.RUnlock()

		var (
			msg   string
			count int
		)
		err := k.iterateShares(func(provider common.Address, shares math.Int) bool {
			if shares.GT(k.pool.TotalShares) {
				count++
				msg += fmt.Sprintf("%s holds %s > total %s\n", provider.Hex(), shares, k.pool.TotalShares)
			}
			return false
		})
		if err != nil {
			return k.broken("shares-bounded", fmt.Sprintf("cannot read shares: %v\n", err))
		}

		if count != 0 {
			return k.broken("shares-bounded", msg)
		}
		return formatInvariant("shares-bounded", "all holdings within total\n"), false
	}
}

// ReservesBackedInvariant checks the pool address holds at least its reserves.
func ReservesBackedInvariant(k *Keeper) Invariant {
	return func(ctx context.Context) (string, bool) {
		k.mu.RLock()
		defer k.mu.RUnlock()

		balance0, err := k.token0.BalanceOf(ctx, k.address)
		if err != nil {
			return k.broken("reserves-backed", fmt.Sprintf("cannot read token0 balance: %v\n", err))
		}
		balance1, err := k.token1.BalanceOf(ctx, k.address)
		if err != nil {
			return k.broken("reserves-backed", fmt.Sprintf("cannot read token1 balance: %v\n", err))
		}

		var msg string
		if balance0.LT(k.pool.Reserve0) {
			msg += fmt.Sprintf("token0 balance %s < reserve %s\n", balance0, k.pool.Reserve0)
		}
		if balance1.LT(k.pool.Reserve1) {
			msg += fmt.Sprintf("token1 balance %s < reserve %s\n", balance1, k.pool.Reserve1)
		}

		if msg != "" {
			return k.broken("reserves-backed", msg)
		}
		return formatInvariant("reserves-backed", "reserves backed by token balances\n"), false
	}
}

func (k *Keeper) broken(route, msg string) (string, bool) {
	k.recordInvariantViolation(route)
	return formatInvariant(route, msg), true
}

func formatInvariant(route, msg string) string {
	return fmt.Sprintf("%s: %s invariant\n%s", types.ModuleName, route, msg)
}
