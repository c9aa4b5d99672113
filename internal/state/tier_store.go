// ./internal/state/tier_store.go
package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/imbue-bit/no-JIT/internal/types"
)

// SavePublishedFeeTable upserts the single current published fee table row.
func SavePublishedFeeTable(tiers []types.FeeTier, txHash string) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	payload, err := json.Marshal(tiers)
	if err != nil {
		return fmt.Errorf("failed to marshal fee tiers: %w", err)
	}

	stmt := `
        INSERT INTO published_fee_tiers (id, updated_at, tx_hash, tiers)
        VALUES (1, $1, $2, $3)
        ON CONFLICT (id) DO UPDATE SET updated_at = $1, tx_hash = $2, tiers = $3;`

	_, err = DB.Exec(stmt, time.Now(), txHash, payload)
	if err != nil {
		return fmt.Errorf("failed to upsert published fee table: %w", err)
	}

	log.Info().
		Int("tiers", len(tiers)).
		Str("tx_hash", txHash).
		Msg("Saved published fee table")
	return nil
}

// LoadPublishedFeeTable loads the current published fee table, or nil if
// nothing has been published yet.
func LoadPublishedFeeTable() (*types.PublishedFeeTable, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `SELECT updated_at, COALESCE(tx_hash, ''), tiers FROM published_fee_tiers WHERE id = 1;`

	var table types.PublishedFeeTable
	var payload []byte
	row := DB.QueryRow(query)
	err := row.Scan(&table.UpdatedAt, &table.TxHash, &payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan published fee table: %w", err)
	}

	if err := json.Unmarshal(payload, &table.Tiers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal published fee tiers: %w", err)
	}
	return &table, nil
}
