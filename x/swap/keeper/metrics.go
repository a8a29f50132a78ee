package keeper

import (
	"math/big"
	"time"

	"cosmossdk.io/math"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/paw-chain/swap/x/swap/types"
)

// SwapMetrics holds all Prometheus metrics for the swap module
type SwapMetrics struct {
	// Swap metrics
	SwapsTotal  *prometheus.CounterVec
	SwapVolume  *prometheus.CounterVec
	SwapFees    *prometheus.CounterVec
	SwapLatency prometheus.Histogram

	// Liquidity metrics
	LiquidityOps *prometheus.CounterVec
	PoolReserve  *prometheus.GaugeVec
	TotalShares  prometheus.Gauge

	// Safety metrics
	InvariantViolations *prometheus.CounterVec
}

// NewSwapMetrics creates the swap metrics and registers them with reg.
// A nil reg yields unregistered collectors.
func NewSwapMetrics(reg prometheus.Registerer) *SwapMetrics {
	f := promauto.With(reg)
	return &SwapMetrics{
		SwapsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "swap",
				Subsystem: "pool",
				Name:      "swaps_total",
				Help:      "Total number of swaps attempted",
			},
			[]string{"direction", "status"},
		),
		SwapVolume: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "swap",
				Subsystem: "pool",
				Name:      "swap_volume_total",
				Help:      "Total swap input volume in base units",
			},
			[]string{"token"},
		),
		SwapFees: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "swap",
				Subsystem: "pool",
				Name:      "swap_fees_total",
				Help:      "Total input retained by the pool as fees",
			},
			[]string{"token"},
		),
		SwapLatency: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "swap",
				Subsystem: "pool",
				Name:      "swap_latency_seconds",
				Help:      "Swap execution latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		LiquidityOps: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "swap",
				Subsystem: "pool",
				Name:      "liquidity_ops_total",
				Help:      "Liquidity operations by kind and outcome",
			},
			[]string{"op", "status"},
		),
		PoolReserve: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "swap",
				Subsystem: "pool",
				Name:      "reserve",
				Help:      "Current pool reserve per token",
			},
			[]string{"token"},
		),
		TotalShares: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "swap",
				Subsystem: "pool",
				Name:      "total_shares",
				Help:      "Outstanding liquidity shares",
			},
		),
		InvariantViolations: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "swap",
				Subsystem: "pool",
				Name:      "invariant_violations_total",
				Help:      "Invariant checks that failed",
			},
			[]string{"invariant"},
		),
	}
}

func statusLabel(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

func (k *Keeper) recordSwap(direction types.SwapDirection, res *types.SwapResult, err error, elapsed time.Duration) {
	if k.metrics == nil {
		return
	}

	k.metrics.SwapsTotal.WithLabelValues(string(direction), statusLabel(err)).Inc()
	k.metrics.SwapLatency.Observe(elapsed.Seconds())
	if err != nil || res == nil {
		return
	}

	token := res.TokenIn.Hex()
	k.metrics.SwapVolume.WithLabelValues(token).Add(toFloat(res.AmountIn))
	k.metrics.SwapFees.WithLabelValues(token).Add(toFloat(res.Fee))
}

func (k *Keeper) recordLiquidityOp(op string, err error) {
	if k.metrics == nil {
		return
	}
	k.metrics.LiquidityOps.WithLabelValues(op, statusLabel(err)).Inc()
}

func (k *Keeper) recordInvariantViolation(name string) {
	if k.metrics == nil {
		return
	}
	k.metrics.InvariantViolations.WithLabelValues(name).Inc()
}

// updateGauges publishes the current pool. Caller holds mu.
func (k *Keeper) updateGauges() {
	if k.metrics == nil {
		return
	}

	k.metrics.PoolReserve.WithLabelValues(k.pool.Token0.Hex()).Set(toFloat(k.pool.Reserve0))
	k.metrics.PoolReserve.WithLabelValues(k.pool.Token1.Hex()).Set(toFloat(k.pool.Reserve1))
	k.metrics.TotalShares.Set(toFloat(k.pool.TotalShares))
}

func toFloat(v math.Int) float64 {
	if v.IsNil() {
		return 0
	}
	f, _ := new(big.Float).SetInt(v.BigInt()).Float64()
	return f
}
