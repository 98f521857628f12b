package database

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
)

// ErrInvalidBlob indicates a stored vector blob that is not a whole number
// of float32 elements.
var ErrInvalidBlob = errors.New("invalid vector blob")

// PackFloat32 encodes a vector as packed little-endian float32, the layout
// SingleStore's JSON_ARRAY_PACK and sqlite-vec both use.
func PackFloat32(values []float32) ([]byte, error) {
	blob, err := sqlite_vec.SerializeFloat32(values)
	if err != nil {
		return nil, fmt.Errorf("serialize vector: %w", err)
	}
	return blob, nil
}

// UnpackFloat32 decodes a blob written by PackFloat32.
func UnpackFloat32(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("%w: length %d is not a multiple of 4", ErrInvalidBlob, len(blob))
	}
	values := make([]float32, len(blob)/4)
	for i := range values {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return values, nil
}

// DotProduct scores two packed vectors. It backs the DOT_PRODUCT SQL
// function on SQLite connections.
func DotProduct(a, b []byte) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("dot_product: blob lengths differ: %d != %d", len(a), len(b))
	}
	x, err := UnpackFloat32(a)
	if err != nil {
		return 0, err
	}
	y, err := UnpackFloat32(b)
	if err != nil {
		return 0, err
	}
	var sum float64
	for i := range x {
		sum += float64(x[i]) * float64(y[i])
	}
	return sum, nil
}
