package ports

import (
	"context"
	"math/rand/v2"
)

// RNGPort provides random number streams for simulation runs. Each
// simulation owns its stream; streams are never shared across concurrent
// invocations.
type RNGPort interface {
	// SeededStream creates a deterministic stream for a named operation.
	// The same (name, seed) pair always yields the same stream, so seeded
	// simulations are bit-for-bit reproducible.
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)

	// Stream creates an independently randomized stream for a named
	// operation, for callers that did not request reproducibility.
	Stream(ctx context.Context, name string) (*rand.Rand, error)
}
