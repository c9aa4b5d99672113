/*

This file contains the default market parameters for the guard.

These defaults are used to seed the database on first start; operational
tuning happens through new parameter versions in the market_parameters table,
not by editing this file.

*/

package config

import (
	"github.com/imbue-bit/no-JIT/internal/types"
)

// DefaultMarketParameters provides a baseline attacker model and tier ladder
// for the critical fee solver. These values are used if no active parameters
// are found in the database during initialization.
var DefaultMarketParameters = types.MarketParameters{
	MarketAssumptions: types.MarketAssumptions{
		GasUsagePerAttack: 300_000, // Gas for one full JIT round trip (mint, swap capture, burn).
		// Rationale: measured against v4-style hooks, a JIT attack needs two
		// liquidity operations plus bookkeeping; 300k is a conservative figure
		// for the attacker, which keeps the computed deterrent fee conservative
		// for the pool.

		Kappa: 1e-6, // Marginal cost-of-capital coefficient.
		// Rationale: the quadratic term 0.5*kappa*a^2 prices the attacker's
		// capital lockup and inventory risk. Larger kappa assumes a more
		// capital-constrained attacker and yields lower critical fees; this
		// default errs toward a well-funded attacker.

		NominalSwapVolume: 10, // Expected front-run swap value, in pool value units.
		// Rationale: sized for the typical large swap on the defended pool.
		// The solver's output scales with this figure, so it should track the
		// pool's observed swap distribution rather than its extremes.
	},

	// RatioTiersBps is the ladder of attack sizes, in basis points of active
	// liquidity, the hook prices separately. Order is preserved on-chain.
	RatioTiersBps: []uint32{10, 50, 200},
}
