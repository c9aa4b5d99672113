package types

// MarketAssumptions are the attacker-model constants consumed by the critical
// fee solver. They are loaded once per run and held constant across cycles.
type MarketAssumptions struct {
	// GasUsagePerAttack is the gas consumed by one JIT attack transaction
	// (mint + swap capture + burn).
	GasUsagePerAttack uint64
	// Kappa is the attacker's marginal cost-of-capital coefficient. The
	// quadratic capital cost term is 0.5 * Kappa * a^2 for attack size a.
	Kappa float64
	// NominalSwapVolume is the expected swap value (in pool value units) an
	// attacker front-runs.
	NominalSwapVolume float64
}

// MarketParameters bundles the attacker model with the ordered list of attack
// size ratio tiers (basis points of active liquidity) the guard defends
// against. This is the unit of versioned configuration in the database.
type MarketParameters struct {
	MarketAssumptions

	// RatioTiersBps is ordered; output fee tiers preserve this order.
	RatioTiersBps []uint32
}
