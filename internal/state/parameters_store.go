// ./internal/state/parameters_store.go
package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/imbue-bit/no-JIT/internal/types"
)

// SaveMarketParameters saves a new version of market parameters.
func SaveMarketParameters(params types.MarketParameters, configName string, version int, makeActive bool) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	tx, err := DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p) // Re-panic after rollback
		} else if err != nil {
			tx.Rollback() // Rollback if error occurred
		}
	}()

	if makeActive {
		stmtDeactivate := `UPDATE market_parameters SET is_active = FALSE WHERE config_name = $1 AND is_active = TRUE;`
		_, err = tx.Exec(stmtDeactivate, configName)
		if err != nil {
			return 0, fmt.Errorf("failed to deactivate existing active parameters for %s: %w", configName, err)
		}
	}

	stmt := `
        INSERT INTO market_parameters (
            version, config_name, is_active, activated_at, created_at,
            gas_usage_per_attack, kappa, nominal_swap_volume, ratio_tiers_bps
        ) VALUES (
            $1, $2, $3, $4, $5,
            $6, $7, $8, $9
        ) RETURNING params_id;`

	tiers := make([]int64, len(params.RatioTiersBps))
	for i, t := range params.RatioTiersBps {
		tiers[i] = int64(t)
	}

	var paramsID int64
	currentTime := time.Now()
	err = tx.QueryRow(
		stmt,
		version, configName, makeActive, currentTime, currentTime,
		int64(params.GasUsagePerAttack), params.Kappa, params.NominalSwapVolume, pq.Array(tiers),
	).Scan(&paramsID)

	if err != nil {
		return 0, fmt.Errorf("failed to insert market parameters: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Info().
		Int("version", version).
		Str("config", configName).
		Int64("params_id", paramsID).
		Bool("active", makeActive).
		Msg("Saved market parameters")
	return paramsID, nil
}

// LoadActiveMarketParameters loads the currently active market parameters.
func LoadActiveMarketParameters(configName string) (*types.MarketParameters, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
        SELECT gas_usage_per_attack, kappa, nominal_swap_volume, ratio_tiers_bps
        FROM market_parameters
        WHERE config_name = $1 AND is_active = TRUE
        ORDER BY activated_at DESC
        LIMIT 1;`

	p := &types.MarketParameters{}
	var gasUsage int64
	var tiers []int64
	row := DB.QueryRow(query, configName)
	err := row.Scan(&gasUsage, &p.Kappa, &p.NominalSwapVolume, pq.Array(&tiers))

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no active market parameters found for config '%s'", configName)
		}
		return nil, fmt.Errorf("failed to scan active market parameters for config '%s': %w", configName, err)
	}

	if gasUsage <= 0 {
		return nil, fmt.Errorf("active market parameters for config '%s' carry non-positive gas usage: %d", configName, gasUsage)
	}
	p.GasUsagePerAttack = uint64(gasUsage)
	p.RatioTiersBps = make([]uint32, len(tiers))
	for i, t := range tiers {
		if t <= 0 {
			return nil, fmt.Errorf("active market parameters for config '%s' carry non-positive ratio tier: %d", configName, t)
		}
		p.RatioTiersBps[i] = uint32(t)
	}

	log.Info().Str("config", configName).Msg("Loaded active market parameters")
	return p, nil
}

// GetActiveMarketParametersID returns the params_id of the currently active
// market parameters, or nil if none are active.
func GetActiveMarketParametersID(configName string) (*int64, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
        SELECT params_id
        FROM market_parameters
        WHERE config_name = $1 AND is_active = TRUE
        ORDER BY activated_at DESC
        LIMIT 1;`

	var paramsID int64
	row := DB.QueryRow(query, configName)
	err := row.Scan(&paramsID)

	if err != nil {
		if err == sql.ErrNoRows {
			// No active parameters found - this is valid, return nil
			log.Debug().Str("config", configName).Msg("No active market parameters found")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active market parameters ID for config '%s': %w", configName, err)
	}

	log.Debug().
		Str("config", configName).
		Int64("params_id", paramsID).
		Msg("Retrieved active market parameters ID")

	return &paramsID, nil
}
