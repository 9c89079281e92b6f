// Package abtest implements the sticky A/B split used by the cancellation flow.
package abtest

import (
	"crypto/rand"
	"io"
	mrand "math/rand"
)

// Variant is the A/B test group controlling whether a downsell is offered.
type Variant string

const (
	VariantA Variant = "A"
	VariantB Variant = "B"
)

// Valid reports whether v is one of the two known groups.
func (v Variant) Valid() bool {
	return v == VariantA || v == VariantB
}

// Draw returns a uniformly random variant using the crypto/rand source.
// A single byte decides the split: 0-127 is A, 128-255 is B. If the secure
// source is unavailable the draw falls back to math/rand rather than failing,
// since assignment fairness matters more than unpredictability here.
func Draw() Variant {
	return DrawFrom(rand.Reader)
}

// DrawFrom draws a variant from the given random source. Exposed so callers
// can make assignment deterministic in tests.
func DrawFrom(r io.Reader) Variant {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		if mrand.Intn(2) == 0 {
			return VariantA
		}
		return VariantB
	}
	if b[0] < 128 {
		return VariantA
	}
	return VariantB
}
