// Package search holds the embedding vectors and similarity ranking types.
package search

import (
	"errors"
	"fmt"
)

// ErrDimensionMismatch indicates two vectors (or a vector and a store) do not
// share the same length.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Vector is a fixed-length embedding produced by a text model.
type Vector struct {
	values []float32
}

// NewVector creates a Vector. The input is copied.
func NewVector(values []float32) Vector {
	cp := make([]float32, len(values))
	copy(cp, values)
	return Vector{values: cp}
}

// NewVectorFromFloat64 creates a Vector from float64 values, narrowing each element.
func NewVectorFromFloat64(values []float64) Vector {
	cp := make([]float32, len(values))
	for i, v := range values {
		cp[i] = float32(v)
	}
	return Vector{values: cp}
}

// Dimension returns the number of elements.
func (v Vector) Dimension() int { return len(v.values) }

// IsZero reports whether the vector has no elements.
func (v Vector) IsZero() bool { return len(v.values) == 0 }

// Floats returns a copy of the elements.
func (v Vector) Floats() []float32 {
	cp := make([]float32, len(v.values))
	copy(cp, v.values)
	return cp
}

// Float64s returns the elements widened to float64.
func (v Vector) Float64s() []float64 {
	out := make([]float64, len(v.values))
	for i, f := range v.values {
		out[i] = float64(f)
	}
	return out
}

// Equal reports whether both vectors hold bit-identical elements.
func (v Vector) Equal(other Vector) bool {
	if len(v.values) != len(other.values) {
		return false
	}
	for i := range v.values {
		if v.values[i] != other.values[i] {
			return false
		}
	}
	return true
}

// Dot returns the dot product of v and other. Accumulation is done in
// float64 to match the precision database engines use for DOT_PRODUCT.
func (v Vector) Dot(other Vector) (float64, error) {
	if len(v.values) != len(other.values) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(v.values), len(other.values))
	}
	var sum float64
	for i := range v.values {
		sum += float64(v.values[i]) * float64(other.values[i])
	}
	return sum, nil
}

// CheckDimension returns ErrDimensionMismatch unless v has exactly dim elements.
func (v Vector) CheckDimension(dim int) error {
	if len(v.values) != dim {
		return fmt.Errorf("%w: got %d, expected %d", ErrDimensionMismatch, len(v.values), dim)
	}
	return nil
}
