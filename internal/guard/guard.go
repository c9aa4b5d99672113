package guard

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/imbue-bit/no-JIT/internal/chain"
	"github.com/imbue-bit/no-JIT/internal/logger"
	"github.com/imbue-bit/no-JIT/internal/metrics"
	"github.com/imbue-bit/no-JIT/internal/publisher"
	"github.com/imbue-bit/no-JIT/internal/solver"
	"github.com/imbue-bit/no-JIT/internal/state"
	"github.com/imbue-bit/no-JIT/internal/types"
)

const (
	// Export constants for use in main.go
	DEFAULT_PARAMS_CONFIG_NAME    = "default_guard_strategy"
	DEFAULT_PARAMS_CONFIG_VERSION = 1
)

// Guard drives the periodic solve-and-publish cycle for one pool. All chain
// and credential concerns live behind the injected provider and publisher.
type Guard struct {
	// Core dependencies
	logger    zerolog.Logger
	provider  chain.StateProvider
	publisher publisher.FeePublisher
	params    *types.MarketParameters

	// Configuration
	configName    string
	configVersion int

	// Runtime state
	cycleCount    int
	lastPublished *types.PublishedFeeTable
}

// Config holds the configuration for creating a new Guard instance
type Config struct {
	Provider      chain.StateProvider
	Publisher     publisher.FeePublisher
	Params        *types.MarketParameters
	ConfigName    string
	ConfigVersion int
}

// New creates a new Guard instance with dependency injection
func New(cfg Config) (*Guard, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("guard configuration validation failed: %w", err)
	}

	g := &Guard{
		logger:        logger.GetForComponent("guard_core"),
		provider:      cfg.Provider,
		publisher:     cfg.Publisher,
		params:        cfg.Params,
		configName:    cfg.ConfigName,
		configVersion: cfg.ConfigVersion,
		cycleCount:    0,
	}

	// Resume the publish-skip comparison from the persisted table, if any.
	if table, err := state.LoadPublishedFeeTable(); err == nil && table != nil {
		g.lastPublished = table
	}

	g.logger.Info().
		Str("configName", g.configName).
		Int("configVersion", g.configVersion).
		Uints32("ratioTiersBps", g.params.RatioTiersBps).
		Msg("Guard instance created successfully with dependency injection")

	return g, nil
}

// validateConfig validates the Guard configuration
func validateConfig(cfg Config) error {
	if cfg.Provider == nil {
		return fmt.Errorf("state provider cannot be nil")
	}
	if cfg.Publisher == nil {
		return fmt.Errorf("fee publisher cannot be nil")
	}
	if cfg.Params == nil {
		return fmt.Errorf("market parameters cannot be nil")
	}
	if cfg.Params.GasUsagePerAttack == 0 {
		return fmt.Errorf("gas usage per attack must be positive")
	}
	if cfg.Params.Kappa <= 0 {
		return fmt.Errorf("kappa must be positive")
	}
	if cfg.Params.NominalSwapVolume <= 0 {
		return fmt.Errorf("nominal swap volume must be positive")
	}
	for _, tier := range cfg.Params.RatioTiersBps {
		if tier == 0 {
			return fmt.Errorf("ratio tiers must be positive")
		}
	}
	if cfg.ConfigName == "" {
		return fmt.Errorf("config name cannot be empty")
	}
	if cfg.ConfigVersion <= 0 {
		return fmt.Errorf("config version must be positive")
	}
	return nil
}

// RunLoop starts the main guard loop with the specified interval
func (g *Guard) RunLoop(ctx context.Context, interval time.Duration) {
	g.logger.Info().
		Dur("interval", interval).
		Msg("Starting guard main loop")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run first cycle immediately
	g.cycleCount++
	g.logger.Info().Int("cycle", g.cycleCount).Msg("Initiating guard cycle")
	g.RunCycle(ctx)
	g.logger.Info().Int("cycle", g.cycleCount).Msg("Guard cycle completed")

	// Continue with ticker
	for {
		select {
		case <-ctx.Done():
			g.logger.Info().Msg("Guard loop stopped due to context cancellation")
			return
		case <-ticker.C:
			g.cycleCount++
			g.logger.Info().Int("cycle", g.cycleCount).Msg("Initiating guard cycle")
			g.RunCycle(ctx)
			g.logger.Info().Int("cycle", g.cycleCount).Msg("Guard cycle completed")
		}
	}
}

// RunCycle executes one complete solve-and-publish cycle
func (g *Guard) RunCycle(ctx context.Context) {
	cycleStartTime := time.Now()
	metrics.CyclesTotal.Inc()

	// Unique cycle ID for tracing logs across the entire cycle
	cycleID := uuid.New().String()
	cycleLogger := g.logger.With().Str("cycle_id", cycleID).Logger()

	cycleLogger.Info().Msg("--- Starting guard cycle ---")

	// --- Step 1: Data Fetching ---
	cycleLogger.Info().Msg("Step 1: Fetching live pool state...")
	pool, err := g.provider.PoolState(ctx)
	if err != nil {
		metrics.CycleErrors.WithLabelValues("fetch").Inc()
		cycleLogger.Error().Err(err).Msg("Cycle aborted: Failed to fetch pool state.")
		return
	}
	metrics.PoolActiveLiquidity.Set(pool.ActiveLiquidity)
	cycleLogger.Info().
		Float64("activeLiquidity", pool.ActiveLiquidity).
		Int32("tick", pool.Tick).
		Float64("gasPrice", pool.GasPrice).
		Msg("Step 1: Pool state fetched.")

	// --- Step 2: Precondition Check ---
	// The profit model's capture fraction is undefined at zero liquidity;
	// the whole cycle is skipped and nothing is published.
	if pool.ActiveLiquidity == 0 {
		metrics.CyclesSkipped.WithLabelValues("zero_liquidity").Inc()
		cycleLogger.Warn().Msg("Pool has zero active liquidity. Skipping cycle without publication.")
		return
	}

	// --- Step 3: Solving ---
	cycleLogger.Info().Msg("Step 3: Solving critical fee rates per tier...")
	solveStart := time.Now()
	tiers, err := solver.SolveTiers(g.params.RatioTiersBps, pool, g.params.MarketAssumptions)
	if err != nil {
		metrics.CycleErrors.WithLabelValues("solve").Inc()
		cycleLogger.Error().Err(err).Msg("Cycle aborted: Failed to solve fee tiers.")
		return
	}
	metrics.SolveDuration.Observe(time.Since(solveStart).Seconds())

	for _, tier := range tiers {
		metrics.CriticalFeePips.
			WithLabelValues(strconv.FormatUint(uint64(tier.RatioBps), 10)).
			Set(float64(tier.FeePips))
		cycleLogger.Info().
			Uint32("ratioBps", tier.RatioBps).
			Uint32("feePips", tier.FeePips).
			Msg("Solved critical fee for tier")
	}
	cycleLogger.Info().Int("tiers", len(tiers)).Msg("Step 3: Solving complete.")

	// --- Step 4: Publication ---
	// The solver is deterministic, so an unchanged pool yields an unchanged
	// table; pushing it again would only burn gas.
	if g.lastPublished != nil && g.lastPublished.Equal(tiers) {
		metrics.CyclesSkipped.WithLabelValues("unchanged").Inc()
		cycleLogger.Info().Msg("Fee table unchanged since last publication. No update needed.")
		g.logEndOfCycleState(cycleStartTime, cycleLogger)
		return
	}

	cycleLogger.Info().Msg("Step 4: Publishing fee tier table...")
	txHash, err := g.publisher.PublishFeeTiers(ctx, tiers)
	if err != nil {
		metrics.PublicationsTotal.WithLabelValues("error").Inc()
		cycleLogger.Error().Err(err).Msg("Cycle aborted: Failed to publish fee tiers. Will recompute next cycle.")
		return
	}
	metrics.PublicationsTotal.WithLabelValues("success").Inc()

	g.lastPublished = &types.PublishedFeeTable{
		Tiers:     tiers,
		TxHash:    txHash,
		UpdatedAt: time.Now(),
	}
	g.savePublishedFeeTable(tiers, txHash, cycleLogger)

	cycleLogger.Info().
		Str("txHash", txHash).
		Int("tiers", len(tiers)).
		Msg("Step 4: Publication complete.")
	g.logEndOfCycleState(cycleStartTime, cycleLogger)
}

// FeeTiers computes the current fee tier table without publishing it. A pool
// with zero active liquidity yields no records.
func (g *Guard) FeeTiers(pool types.PoolState) ([]types.FeeTier, error) {
	return solver.SolveTiers(g.params.RatioTiersBps, pool, g.params.MarketAssumptions)
}

// savePublishedFeeTable persists the current table. Persistence failures are
// logged, not fatal: the in-memory copy still drives the publish-skip
// comparison and the table is recomputed every cycle anyway.
func (g *Guard) savePublishedFeeTable(tiers []types.FeeTier, txHash string, cycleLogger zerolog.Logger) {
	if err := state.SavePublishedFeeTable(tiers, txHash); err != nil {
		cycleLogger.Warn().Err(err).Msg("Failed to persist published fee table")
	}
}

func (g *Guard) logEndOfCycleState(cycleStartTime time.Time, cycleLogger zerolog.Logger) {
	cycleLogger.Info().
		Dur("duration", time.Since(cycleStartTime)).
		Msg("--- Guard cycle finished ---")
}
