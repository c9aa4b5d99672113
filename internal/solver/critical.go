/*
Package solver computes critical fee rates for JIT-liquidity defense.

For a given attack-size ratio tier, the critical fee rate phi* is the minimal
per-swap fee at which a rational attacker's maximal achievable profit is
exactly zero. The computation is a two-level numeric search: an outer
bisection over the fee rate and, for each candidate rate, an inner bounded
maximization of the attacker's profit over attack size.

The solver is pure and deterministic: no I/O, no shared state, fixed iteration
counts. Callers are responsible for rejecting degenerate pool states (zero
active liquidity) before invoking it.
*/
package solver

import (
	"math"

	"github.com/imbue-bit/no-JIT/internal/types"
	"github.com/imbue-bit/no-JIT/internal/utils"
)

const (
	// PhiLowerBound and PhiUpperBound bracket the outer search: 5 bps to
	// 1000 bps.
	PhiLowerBound = 0.0005
	PhiUpperBound = 0.1

	// BisectionIterations is fixed rather than tolerance-based so that the
	// result is reproducible bit-for-bit across runs. 20 halvings resolve
	// the bracket to under one part in a million of its width, below the
	// fee-pips rounding granularity.
	BisectionIterations = 20

	// The inner search window is centered on the tier's nominal attack size
	// alpha = activeLiquidity * ratioBps / 10000; sizes beyond 1.2x alpha
	// belong to the next tier up, not this one.
	attackWindowLow  = 0.8
	attackWindowHigh = 1.2

	// goldenIterations bounds the inner golden-section search. 48 steps
	// shrink the bracket by invPhi^48, far past float64 resolution on any
	// realistic window.
	goldenIterations = 48

	// WeiPerUnit converts gasPrice (wei per gas) times gas usage into the
	// pool's value unit.
	WeiPerUnit = 1e18
)

// invPhi is the inverse golden ratio, (sqrt(5)-1)/2.
var invPhi = (math.Sqrt(5) - 1) / 2

// profit is the attacker's net profit at fee rate phi and attack size a.
// Revenue follows a saturating-fraction law: injecting a against existing
// liquidity L captures the share a/(L+a) of the fee on the nominal swap
// volume. Costs are a fixed gas cost plus a quadratic cost of capital.
func profit(phi, a, activeLiquidity, gasCost float64, m types.MarketAssumptions) float64 {
	capture := a / (activeLiquidity + a)
	return phi*capture*m.NominalSwapVolume - (gasCost + 0.5*m.Kappa*a*a)
}

// gasCostInValueUnits is the fixed per-attack gas cost expressed in the
// pool's value unit.
func gasCostInValueUnits(gasPrice float64, m types.MarketAssumptions) float64 {
	return gasPrice * float64(m.GasUsagePerAttack) / WeiPerUnit
}

// MaxProfit returns the attacker's best achievable profit at fee rate phi for
// the given tier, maximizing attack size over [0.8*alpha, 1.2*alpha]. The
// profit function is concave in attack size (saturating revenue, quadratic
// cost), so the golden-section search converges to the window's maximum.
func MaxProfit(phi float64, ratioBps uint32, pool types.PoolState, m types.MarketAssumptions) float64 {
	alpha := pool.ActiveLiquidity * float64(ratioBps) / 10000
	gasCost := gasCostInValueUnits(pool.GasPrice, m)

	_, best := maximize(func(a float64) float64 {
		return profit(phi, a, pool.ActiveLiquidity, gasCost, m)
	}, attackWindowLow*alpha, attackWindowHigh*alpha)
	return best
}

// CriticalFeeRate finds phi* in [PhiLowerBound, PhiUpperBound] such that the
// attacker's maximal profit is approximately zero, by bisection. It returns
// the upper end of the final bracket: the smallest tested rate at which
// profit is provably non-positive, so ties resolve toward the safer, higher
// fee.
//
// The bisection assumes MaxProfit crosses zero at most once over the search
// range, moving from profitable to non-profitable as phi rises. That is a
// modeling assumption carried over from the attacker model, not verified
// here; parameter regimes that violate it make the search converge to a
// point that is not the true root. Known limitation, kept deliberately so
// results stay reproducible across runs and releases.
func CriticalFeeRate(ratioBps uint32, pool types.PoolState, m types.MarketAssumptions) float64 {
	low, high := PhiLowerBound, PhiUpperBound
	for i := 0; i < BisectionIterations; i++ {
		mid := (low + high) / 2
		if MaxProfit(mid, ratioBps, pool, m) > 0 {
			// Attack still profitable at this fee; search higher.
			low = mid
		} else {
			high = mid
		}
	}
	return high
}

// SolveTiers evaluates every configured ratio tier independently against the
// same pool snapshot and returns one fee tier record per configured tier, in
// configured order. Duplicate tiers yield duplicate records.
//
// A pool with zero active liquidity is degenerate (the capture fraction is
// undefined); no tiers are produced and the caller must take no publication
// action.
func SolveTiers(ratioTiersBps []uint32, pool types.PoolState, m types.MarketAssumptions) ([]types.FeeTier, error) {
	if pool.ActiveLiquidity == 0 {
		return nil, nil
	}

	tiers := make([]types.FeeTier, 0, len(ratioTiersBps))
	for _, ratioBps := range ratioTiersBps {
		phi := CriticalFeeRate(ratioBps, pool, m)
		feePips, err := utils.FeeRateToPips(phi)
		if err != nil {
			return nil, err
		}
		tiers = append(tiers, types.FeeTier{RatioBps: ratioBps, FeePips: feePips})
	}
	return tiers, nil
}

// maximize performs a fixed-iteration golden-section search for the maximum
// of f on [lo, hi] and returns the located point and its value. f must be
// unimodal on the interval for the bracket argument to hold.
func maximize(f func(float64) float64, lo, hi float64) (float64, float64) {
	a, b := lo, hi
	c := b - (b-a)*invPhi
	d := a + (b-a)*invPhi
	fc, fd := f(c), f(d)

	for i := 0; i < goldenIterations; i++ {
		if fc > fd {
			b = d
			d, fd = c, fc
			c = b - (b-a)*invPhi
			fc = f(c)
		} else {
			a = c
			c, fc = d, fd
			d = a + (b-a)*invPhi
			fd = f(d)
		}
	}

	x := (a + b) / 2
	return x, f(x)
}
