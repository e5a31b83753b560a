// Package filter defines the fixed 3×3 convolution kernels and the
// overflow policy used to truncate the single-precision accumulator back to
// an 8-bit channel value.
package filter

import "fmt"

// Matrix is a 3×3 matrix of normalized floating-point coefficients, identical
// on every rank and identical every iteration.
type Matrix [3][3]float32

// Filter pairs a name with its coefficient matrix.
type Filter struct {
	Name   string
	Coeffs Matrix
}

// Built-in filters, matching the three choices in the original program
// (there, selected by commenting/uncommenting two lines at compile time;
// here, a runtime lookup via Parse).
var (
	Box = Filter{
		Name: "box",
		Coeffs: scale(Matrix{
			{1, 1, 1},
			{1, 1, 1},
			{1, 1, 1},
		}, 1.0/9.0),
	}

	Gaussian = Filter{
		Name: "gaussian",
		Coeffs: scale(Matrix{
			{1, 2, 1},
			{2, 4, 2},
			{1, 2, 1},
		}, 1.0/16.0),
	}

	Edge = Filter{
		Name: "edge",
		Coeffs: scale(Matrix{
			{1, 4, 1},
			{4, 8, 4},
			{1, 4, 1},
		}, 1.0/28.0),
	}

	// Identity reproduces the input bytes unchanged every iteration; used by
	// the round-trip property test (spec §8).
	Identity = Filter{
		Name: "identity",
		Coeffs: Matrix{
			{0, 0, 0},
			{0, 1, 0},
			{0, 0, 0},
		},
	}
)

func scale(m Matrix, s float32) Matrix {
	for i := range m {
		for j := range m[i] {
			m[i][j] *= s
		}
	}
	return m
}

// Parse resolves a filter by name (case-sensitive, matching the CLI's -filter
// flag). Resolves spec.md §9's "filter selection must be a runtime argument"
// open question.
func Parse(name string) (Filter, error) {
	switch name {
	case "box":
		return Box, nil
	case "gaussian":
		return Gaussian, nil
	case "edge":
		return Edge, nil
	case "identity":
		return Identity, nil
	default:
		return Filter{}, fmt.Errorf("filter: unknown filter %q (want box, gaussian, edge, or identity)", name)
	}
}

// OverflowPolicy governs how the float32 accumulator is truncated back to a
// byte when the coefficient sum can exceed 255 (spec.md §9's second open
// question: edge-detection coefficients can sum to more than 1). Never
// silently guessed — callers must pick one.
type OverflowPolicy int

const (
	// PolicyClamp saturates the accumulator to [0, 255] before the
	// truncating cast. This is the spec's recommendation and the default.
	PolicyClamp OverflowPolicy = iota
	// PolicyWrap reproduces the C source's implementation-defined
	// (uint8_t)float cast by truncating toward zero and then wrapping
	// modulo 256, matching what an out-of-range C cast does in practice on
	// common platforms.
	PolicyWrap
)

func (p OverflowPolicy) String() string {
	switch p {
	case PolicyClamp:
		return "clamp"
	case PolicyWrap:
		return "wrap"
	default:
		return "unknown"
	}
}

// ParsePolicy resolves an OverflowPolicy by name.
func ParsePolicy(name string) (OverflowPolicy, error) {
	switch name {
	case "", "clamp":
		return PolicyClamp, nil
	case "wrap":
		return PolicyWrap, nil
	default:
		return 0, fmt.Errorf("filter: unknown overflow policy %q (want clamp or wrap)", name)
	}
}

// Truncate converts a float32 accumulator to a byte according to policy.
// Truncation is toward zero (matching the C source's `(uint8_t) float`
// cast), not rounded — spec.md §4.3.
func Truncate(v float32, policy OverflowPolicy) uint8 {
	switch policy {
	case PolicyWrap:
		// Truncate toward zero into a wide integer, then wrap modulo 256,
		// which is what (uint8_t) does to an in-range-for-int32 float.
		i := int32(v)
		return uint8(i)
	default: // PolicyClamp
		if v < 0 {
			return 0
		}
		if v > 255 {
			return 255
		}
		return uint8(v)
	}
}
