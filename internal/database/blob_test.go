package database

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackFloat32_RoundTripBitExact(t *testing.T) {
	values := []float32{0, -0.0, 1, -1, 0.1, math.MaxFloat32, math.SmallestNonzeroFloat32, 3.1415927}

	blob, err := PackFloat32(values)
	require.NoError(t, err)
	require.Len(t, blob, len(values)*4)

	got, err := UnpackFloat32(blob)
	require.NoError(t, err)
	require.Len(t, got, len(values))
	for i := range values {
		assert.Equal(t, math.Float32bits(values[i]), math.Float32bits(got[i]), "element %d", i)
	}
}

func TestPackFloat32_LittleEndian(t *testing.T) {
	blob, err := PackFloat32([]float32{1})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0x3f}, blob)
}

func TestUnpackFloat32_InvalidLength(t *testing.T) {
	_, err := UnpackFloat32([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrInvalidBlob)
}

func TestDotProduct(t *testing.T) {
	a, _ := PackFloat32([]float32{0.9, 0.1, 0})
	b, _ := PackFloat32([]float32{1, 0, 0})

	score, err := DotProduct(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 0.9, score, 1e-6)

	_, err = DotProduct(a, []byte{1, 2, 3, 4})
	require.Error(t, err)
}
