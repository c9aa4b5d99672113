package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus collectors for the guard cycle. Registered on the default
// registry and exposed by the web server's /metrics endpoint.
var (
	CyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "jitguard",
		Name:      "cycles_total",
		Help:      "Number of guard cycles started.",
	})

	CyclesSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jitguard",
		Name:      "cycles_skipped_total",
		Help:      "Number of guard cycles that ended without a publication, by reason.",
	}, []string{"reason"})

	CycleErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jitguard",
		Name:      "cycle_errors_total",
		Help:      "Number of guard cycles aborted by an error, by stage.",
	}, []string{"stage"})

	SolveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "jitguard",
		Name:      "solve_duration_seconds",
		Help:      "Wall time spent solving the full tier ladder in one cycle.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
	})

	CriticalFeePips = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "jitguard",
		Name:      "critical_fee_pips",
		Help:      "Latest computed critical fee, in pips, per ratio tier.",
	}, []string{"ratio_bps"})

	PoolActiveLiquidity = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "jitguard",
		Name:      "pool_active_liquidity",
		Help:      "Unit-normalized active liquidity observed at the last cycle.",
	})

	PublicationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jitguard",
		Name:      "publications_total",
		Help:      "Number of fee tier publication attempts, by result.",
	}, []string{"result"})
)
