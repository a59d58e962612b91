package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Domain-specific hash types
type (
	// RegistryHash fingerprints a variable spec table so run audit rows
	// can prove which configuration produced a result.
	RegistryHash Hash
	// ModelHash fingerprints a fitted model's point estimate.
	ModelHash Hash
)

func NewRegistryHash(data []byte) RegistryHash { return RegistryHash(NewHash(data)) }
func NewModelHash(data []byte) ModelHash       { return ModelHash(NewHash(data)) }

func (h RegistryHash) String() string { return Hash(h).String() }
func (h ModelHash) String() string    { return Hash(h).String() }

// HashKeyedValues produces a stable hash over a string-keyed float map,
// independent of map iteration order.
func HashKeyedValues(values map[string]float64) Hash {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%g;", k, values[k])
	}
	return NewHash([]byte(b.String()))
}
