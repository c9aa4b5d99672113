package types

import "time"

// FeeTier is one published record: for attacks sized at or above RatioBps of
// active liquidity, the hook charges FeePips (millionths of the swap value).
type FeeTier struct {
	RatioBps uint32 `json:"ratioBps"`
	FeePips  uint32 `json:"feePips"`
}

// PublishedFeeTable is the fee tier table most recently pushed to the hook,
// with the transaction that carried it. Only the current table is retained.
type PublishedFeeTable struct {
	Tiers     []FeeTier `json:"tiers"`
	TxHash    string    `json:"txHash,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Equal reports whether two fee tables carry the same tiers in the same
// order. Used to skip redundant publications.
func (p PublishedFeeTable) Equal(tiers []FeeTier) bool {
	if len(p.Tiers) != len(tiers) {
		return false
	}
	for i := range tiers {
		if p.Tiers[i] != tiers[i] {
			return false
		}
	}
	return true
}
