package rng

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math/rand/v2"

	"casesim/ports"
)

// Adapter implements ports.RNGPort over PCG streams.
type Adapter struct{}

// New creates the RNG adapter.
func New() *Adapter {
	return &Adapter{}
}

var _ ports.RNGPort = (*Adapter)(nil)

// SeededStream derives a deterministic stream from (name, seed). The name
// is folded into the second PCG word so distinct operations sharing one
// request seed still see distinct streams.
func (a *Adapter) SeededStream(_ context.Context, name string, seed int64) (*rand.Rand, error) {
	h := sha256.Sum256([]byte(name))
	nameWord := binary.LittleEndian.Uint64(h[:8])
	return rand.New(rand.NewPCG(uint64(seed), nameWord)), nil
}

// Stream creates an independently randomized stream.
func (a *Adapter) Stream(_ context.Context, _ string) (*rand.Rand, error) {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), nil
}
