package chain

import (
	"context"

	"github.com/imbue-bit/no-JIT/internal/types"
)

// StateProvider defines the interface for reading live pool state.
// This interface abstracts away the chain client and credentials, so the
// guard core can be driven against a live node or a fixture in tests.
type StateProvider interface {
	// PoolState returns an immutable snapshot of the defended pool: active
	// liquidity (unit-normalized), slot0 data and the current gas price.
	PoolState(ctx context.Context) (types.PoolState, error)

	// Close cleans up any resources used by the provider.
	Close() error
}
