package publisher

import (
	"context"

	"github.com/imbue-bit/no-JIT/internal/types"
)

// FeePublisher defines the interface for pushing a computed fee tier table to
// the control surface. Transaction construction, signing and submission live
// behind this interface so the guard core never touches credentials.
type FeePublisher interface {
	// PublishFeeTiers encodes and submits the fee tier table, returning the
	// transaction hash of the submitted update.
	PublishFeeTiers(ctx context.Context, tiers []types.FeeTier) (string, error)

	// Close cleans up any resources used by the publisher.
	Close() error
}
