package icclu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMat3Inverse(t *testing.T) {
	a := mat3FromArray([3][3]float64{{2, 0, 1}, {1, 3, 0}, {0, 1, 4}})
	var inv MAT3
	require.True(t, mat3inverse(&a, &inv))

	p := mat3per(&a, &inv)
	assert.True(t, mat3isIdentity(&p))
}

func TestMat3Inverse_Singular(t *testing.T) {
	a := mat3FromArray([3][3]float64{{1, 2, 3}, {2, 4, 6}, {0, 1, 1}})
	var inv MAT3
	assert.False(t, mat3inverse(&a, &inv))
}

func TestMatrix_IdentityIsNOP(t *testing.T) {
	m := NewIdentityMatrix()
	defer m.Release()
	assert.True(t, m.IsUnity())
	assert.True(t, m.ConstIsZero())
	assert.Equal(t, OpNOP, m.Attr().Op)

	// a constant makes it real
	m.Set([3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}, [3]float64{0.1, 0, 0})
	assert.Equal(t, OpMatrix, m.Attr().Op)
	assert.True(t, m.IsUnity())
	assert.False(t, m.ConstIsZero())
}

func TestMatrix_RoundTrip(t *testing.T) {
	m := NewMatrix([3][3]float64{{0.5, 0.2, 0.1}, {0.1, 0.8, 0.1}, {0.0, 0.1, 0.9}}, [3]float64{0.01, -0.02, 0.03})
	defer m.Release()
	a := m.Attr()
	assert.True(t, a.Fwd)
	assert.True(t, a.Bwd)

	in := pt(0.3, 0.6, 0.9)
	out := pt()
	assert.Equal(t, ResultOK, m.LookupFwd(out, in))
	assert.InDelta(t, 0.5*0.3+0.2*0.6+0.1*0.9+0.01, out[0], 1e-12)

	back := pt()
	assert.Equal(t, ResultOK, m.LookupBwd(back, out))
	assert.InDeltaSlice(t, in[:3], back[:3], 1e-12)
}

func TestMatrix_SingularHasNoBwd(t *testing.T) {
	m := NewMatrix([3][3]float64{{1, 2, 3}, {2, 4, 6}, {0, 1, 1}}, [3]float64{})
	defer m.Release()
	assert.False(t, m.Attr().Bwd)
	assert.Equal(t, ResultNotImpl, m.LookupBwd(pt(), pt(1, 1, 1)))
}

func TestMatrix_InPlace(t *testing.T) {
	m := NewMatrix([3][3]float64{{0, 1, 0}, {0, 0, 1}, {1, 0, 0}}, [3]float64{})
	defer m.Release()
	v := pt(1, 2, 3)
	m.LookupFwd(v, v)
	assert.Equal(t, []float64{2, 3, 1}, v[:3])
}

func TestMatrix_EqualAndCopy(t *testing.T) {
	a := NewMatrix([3][3]float64{{2, 0, 0}, {0, 2, 0}, {0, 0, 2}}, [3]float64{})
	defer a.Release()
	b := NewIdentityMatrix()
	defer b.Release()

	eq, _ := a.Equal(b)
	assert.False(t, eq)
	require.NoError(t, b.CopyFrom(a))
	eq, _ = a.Equal(b)
	assert.True(t, eq)
	assert.Equal(t, OpMatrix, b.Attr().Op)

	mv, c := b.Values()
	assert.Equal(t, 2.0, mv[1][1])
	assert.Equal(t, [3]float64{}, c)
}

func TestAbsRelMatrices(t *testing.T) {
	toAbs, fromAbs, err := absRelMatrices(D50, testMediaWhite)
	require.NoError(t, err)

	v := D50.slice()
	mulBy3x3(v, &toAbs, v)
	assert.InDeltaSlice(t, testMediaWhite.slice(), v, 1e-9)

	mulBy3x3(v, &fromAbs, v)
	assert.InDeltaSlice(t, D50.slice(), v, 1e-9)
}

func TestAbsRelMatrices_SameWhiteIsIdentity(t *testing.T) {
	toAbs, _, err := absRelMatrices(D50, D50)
	require.NoError(t, err)
	assert.True(t, mat3isIdentity(&toAbs))
}

func TestAbsRelMatrices_DegenerateWhite(t *testing.T) {
	_, _, err := absRelMatrices(D50, CIEXYZ{})
	assert.ErrorIs(t, err, ErrFormat)
}
