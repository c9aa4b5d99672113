package solver

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imbue-bit/no-JIT/internal/types"
)

// deterrentAssumptions is the reference scenario: capital costs dominate, so
// the attack is unprofitable across the whole fee band and the solver pins
// the conservative floor.
var deterrentAssumptions = types.MarketAssumptions{
	GasUsagePerAttack: 300_000,
	Kappa:             1e-6,
	NominalSwapVolume: 10,
}

var referencePool = types.PoolState{
	ActiveLiquidity: 1_000_000,
	Tick:            -887_220,
	GasPrice:        30e9,
}

// bisectionResolution is the final bracket width of the outer search.
const bisectionResolution = (PhiUpperBound - PhiLowerBound) / (1 << BisectionIterations)

func TestCriticalFeeRateDeterminism(t *testing.T) {
	first := CriticalFeeRate(50, referencePool, deterrentAssumptions)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, CriticalFeeRate(50, referencePool, deterrentAssumptions))
	}
}

func TestCriticalFeeRateBoundedness(t *testing.T) {
	pools := []types.PoolState{
		{ActiveLiquidity: 1, GasPrice: 1},
		{ActiveLiquidity: 100, GasPrice: 30e9},
		{ActiveLiquidity: 1_000_000, GasPrice: 30e9},
		{ActiveLiquidity: 1e12, GasPrice: 500e9},
	}
	assumptions := []types.MarketAssumptions{
		deterrentAssumptions,
		{GasUsagePerAttack: 300_000, Kappa: 1e-12, NominalSwapVolume: 1e6},
		{GasUsagePerAttack: 21_000, Kappa: 1, NominalSwapVolume: 0.001},
	}

	for _, pool := range pools {
		for _, m := range assumptions {
			for _, ratioBps := range []uint32{1, 10, 50, 200, 10_000} {
				phi := CriticalFeeRate(ratioBps, pool, m)
				assert.GreaterOrEqual(t, phi, PhiLowerBound)
				assert.LessOrEqual(t, phi, PhiUpperBound)
				assert.False(t, math.IsNaN(phi))
			}
		}
	}
}

// TestCriticalFeeRateConvergenceScenario is the reference convergence check:
// with capital costs dominating every attack size in every window, profit is
// non-positive across the entire fee band, and 20 bisection iterations must
// collapse the bracket onto the conservative floor.
func TestCriticalFeeRateConvergenceScenario(t *testing.T) {
	phi := CriticalFeeRate(50, referencePool, deterrentAssumptions)

	assert.LessOrEqual(t, MaxProfit(phi, 50, referencePool, deterrentAssumptions), 0.0)
	assert.InDelta(t, PhiLowerBound, phi, 2*bisectionResolution)
	assert.Greater(t, phi, PhiLowerBound, "returned rate is the bracket's upper end, strictly above the floor")
}

// TestCriticalFeeRateSaturatesWhenAttackAlwaysPays covers the opposite
// regime: negligible costs against enormous swap volume keep the attack
// profitable at every tested rate, so the solver returns the band's ceiling.
func TestCriticalFeeRateSaturatesWhenAttackAlwaysPays(t *testing.T) {
	m := types.MarketAssumptions{
		GasUsagePerAttack: 300_000,
		Kappa:             1e-12,
		NominalSwapVolume: 1e6,
	}
	pool := types.PoolState{ActiveLiquidity: 1_000_000, GasPrice: 1e9}

	phi := CriticalFeeRate(50, pool, m)
	assert.Equal(t, PhiUpperBound, phi)
	assert.Greater(t, MaxProfit(phi, 50, pool, m), 0.0)
}

// TestCriticalFeeRateMonotonicInRatio checks the tier-sensitivity invariant:
// under one pool state, a larger attack-size tier never yields a smaller
// critical rate.
func TestCriticalFeeRateMonotonicInRatio(t *testing.T) {
	phi10 := CriticalFeeRate(10, referencePool, deterrentAssumptions)
	phi50 := CriticalFeeRate(50, referencePool, deterrentAssumptions)
	phi200 := CriticalFeeRate(200, referencePool, deterrentAssumptions)

	assert.LessOrEqual(t, phi10, phi50)
	assert.LessOrEqual(t, phi50, phi200)
}

// TestMaxProfitTracksAttackWindow pins the inner maximizer against a direct
// evaluation: with quadratic costs dwarfed by revenue growth, profit rises
// across the whole window and the best attack size sits at 1.2x alpha.
func TestMaxProfitTracksAttackWindow(t *testing.T) {
	m := types.MarketAssumptions{
		GasUsagePerAttack: 300_000,
		Kappa:             1e-9,
		NominalSwapVolume: 1000,
	}
	pool := types.PoolState{ActiveLiquidity: 1_000_000, GasPrice: 30e9}
	const phi = 0.05

	// alpha = 1e6 * 50 / 10000 = 5000; window upper end = 6000.
	a := 6000.0
	gasCost := pool.GasPrice * float64(m.GasUsagePerAttack) / WeiPerUnit
	want := phi*(a/(pool.ActiveLiquidity+a))*m.NominalSwapVolume - (gasCost + 0.5*m.Kappa*a*a)

	got := MaxProfit(phi, 50, pool, m)
	require.InEpsilon(t, want, got, 1e-9)
}

func TestSolveTiersZeroLiquidityProducesNoRecords(t *testing.T) {
	pool := types.PoolState{ActiveLiquidity: 0, GasPrice: 30e9}

	tiers, err := SolveTiers([]uint32{10, 50, 200}, pool, deterrentAssumptions)
	require.NoError(t, err)
	assert.Empty(t, tiers)
}

func TestSolveTiersPreservesOrderAndDuplicates(t *testing.T) {
	tiers, err := SolveTiers([]uint32{50, 10, 50}, referencePool, deterrentAssumptions)
	require.NoError(t, err)
	require.Len(t, tiers, 3)

	assert.Equal(t, uint32(50), tiers[0].RatioBps)
	assert.Equal(t, uint32(10), tiers[1].RatioBps)
	assert.Equal(t, uint32(50), tiers[2].RatioBps)
	assert.Equal(t, tiers[0].FeePips, tiers[2].FeePips, "duplicate tiers yield duplicate records")
}

// TestSolveTiersIndependence verifies evaluating tiers in one pass yields the
// same per-tier results as evaluating each tier alone.
func TestSolveTiersIndependence(t *testing.T) {
	batch, err := SolveTiers([]uint32{10, 50, 200}, referencePool, deterrentAssumptions)
	require.NoError(t, err)
	require.Len(t, batch, 3)

	for i, ratioBps := range []uint32{10, 50, 200} {
		alone, err := SolveTiers([]uint32{ratioBps}, referencePool, deterrentAssumptions)
		require.NoError(t, err)
		require.Len(t, alone, 1)
		assert.Equal(t, alone[0], batch[i])
	}
}

// TestSolveTiersRoundingContract checks feePips equals round(phi * 1e6) for
// the solver's actual outputs.
func TestSolveTiersRoundingContract(t *testing.T) {
	tiers, err := SolveTiers([]uint32{10, 50, 200}, referencePool, deterrentAssumptions)
	require.NoError(t, err)

	for i, ratioBps := range []uint32{10, 50, 200} {
		phi := CriticalFeeRate(ratioBps, referencePool, deterrentAssumptions)
		assert.Equal(t, uint32(math.Round(phi*1_000_000)), tiers[i].FeePips)
	}
}
