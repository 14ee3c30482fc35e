package icclu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var d65 = CIEXYZ{X: 0.95047, Y: 1.0, Z: 1.08883}

func TestAdaptationMatrix_MapsWhite(t *testing.T) {
	var m MAT3
	require.True(t, adaptationMatrix(&m, D50, d65))

	var got VEC3
	mat3eval(&got, &m, &VEC3{N: [3]float64{D50.X, D50.Y, D50.Z}})
	assert.InDeltaSlice(t, d65.slice(), got.N[:], 1e-9)

	require.True(t, adaptationMatrix(&m, D50, D50))
	assert.True(t, mat3isIdentity(&m))
}

func TestAdaptationMatrix_RoundTrip(t *testing.T) {
	var there, back MAT3
	require.True(t, adaptationMatrix(&there, D50, d65))
	require.True(t, adaptationMatrix(&back, d65, D50))

	var v, w VEC3
	mat3eval(&v, &there, &VEC3{N: [3]float64{0.3, 0.4, 0.2}})
	mat3eval(&w, &back, &v)
	assert.InDeltaSlice(t, []float64{0.3, 0.4, 0.2}, w.N[:], 1e-9)
}
