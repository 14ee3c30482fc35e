package icclu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func affineLut(t *testing.T, mx [3][3]float64) *Lut816 {
	t.Helper()
	l, err := NewLut816(Lut816Data{
		In: 3, Out: 3, GridPoints: 5,
		Matrix:    mx,
		InputTab:  bentTabs(3),
		OutputTab: bentTabs(3),
		Clut: gridOf(3, 5, func(pos []float64) []float64 {
			v := affineLab(pos)
			return v[:]
		}),
	}, nil)
	require.NoError(t, err)
	t.Cleanup(l.Release)
	return l
}

func TestLut816_UnityMatrixIsSkipped(t *testing.T) {
	l := affineLut(t, [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}})
	assert.Equal(t, KindLut816, l.Kind())
	assert.True(t, l.Attr().Comp)
	assert.Equal(t, OpClut, l.Attr().Op)

	var kinds []Kind
	for _, m := range l.Members() {
		kinds = append(kinds, m.Kind())
	}
	assert.Equal(t, []Kind{KindCurveSet, KindClut, KindCurveSet}, kinds)
	assert.NotNil(t, l.Matrix(), "3 input luts keep their matrix")
}

func TestLut816_LookupComposesStages(t *testing.T) {
	l := affineLut(t, [3][3]float64{{0.5, 0, 0}, {0, 1, 0}, {0, 0, 0.8}})
	require.Len(t, l.Members(), 4)
	assert.Equal(t, OpComplex, l.Attr().Op)

	for _, in := range [][]float64{{0.2, 0.4, 0.6}, {1, 0, 0.5}, {0.9, 0.9, 0.1}} {
		want := pt(in...)
		l.Matrix().LookupFwd(want, want)
		l.InputCurves().LookupFwd(want, want)
		l.Clut().LookupFwd(want, want)
		l.OutputCurves().LookupFwd(want, want)

		got := pt()
		l.LookupFwd(got, pt(in...))
		assert.InDeltaSlice(t, want[:3], got[:3], 1e-12, "in=%v", in)
	}
	// a clut has no inverse
	assert.False(t, l.Attr().Bwd)
}

func TestLut816_Lut8EntryWarnings(t *testing.T) {
	var w warnRecorder
	l, err := NewLut816(Lut816Data{
		Bits8: true,
		In:    1, Out: 1, GridPoints: 2,
		Matrix:    [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		InputTab:  [][]float64{{0, 1}},
		OutputTab: [][]float64{{0, 1}},
		Clut:      []float64{0, 1},
	}, w.warn)
	require.NoError(t, err)
	defer l.Release()

	assert.Equal(t, []ErrorCode{CodeFormat, CodeFormat}, w.codes())
	assert.True(t, l.Bits8())
	assert.Nil(t, l.Matrix())
}

func TestLut816_MatrixWarnings(t *testing.T) {
	var w warnRecorder
	l, err := NewLut816(Lut816Data{
		In: 1, Out: 1, GridPoints: 2,
		Matrix:    [3][3]float64{{2, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		InputTab:  [][]float64{{0, 1}},
		OutputTab: [][]float64{{0, 1}},
		Clut:      []float64{0, 1},
	}, w.warn)
	require.NoError(t, err)
	defer l.Release()
	assert.Equal(t, []ErrorCode{CodeFormat}, w.codes())

	w = warnRecorder{}
	l3, err := NewLut816(Lut816Data{
		In: 3, Out: 3, GridPoints: 2,
		Matrix:    [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		Const:     [3]float64{0.1, 0, 0},
		InputTab:  linearTabs(3, 2),
		OutputTab: linearTabs(3, 2),
		Clut:      identityGrid(3, 2),
	}, w.warn)
	require.NoError(t, err)
	defer l3.Release()
	assert.Equal(t, []ErrorCode{CodeFormat}, w.codes())

	// the constant is still applied
	out := pt()
	l3.LookupFwd(out, pt(0.5, 0.5, 0.5))
	assert.InDeltaSlice(t, []float64{0.6, 0.5, 0.5}, out[:3], 1e-12)
}

func TestLut816_BadTables(t *testing.T) {
	_, err := NewLut816(Lut816Data{
		In: 3, Out: 3, GridPoints: 2,
		InputTab:  linearTabs(2, 2),
		OutputTab: linearTabs(3, 2),
		Clut:      identityGrid(3, 2),
	}, nil)
	assert.ErrorIs(t, err, ErrFormat)

	_, err = NewLut816(Lut816Data{In: 0, Out: 3}, nil)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestLut816From_ChecksStages(t *testing.T) {
	in, err := NewLinearCurveSet(3)
	require.NoError(t, err)
	defer in.Release()
	out, err := NewLinearCurveSet(1)
	require.NoError(t, err)
	defer out.Release()
	cl, err := NewClut(3, 3, []int{2, 2, 2}, identityGrid(3, 2), nil)
	require.NoError(t, err)
	defer cl.Release()

	_, err = NewLut816From(false, nil, in, cl, out)
	assert.ErrorIs(t, err, ErrConfig)
	_, err = NewLut816From(false, nil, in, nil, out)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestLut816_CopyAndEqual(t *testing.T) {
	a := affineLut(t, [3][3]float64{{0.5, 0, 0}, {0, 1, 0}, {0, 0, 1}})
	b := affineLut(t, [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}})

	eq, err := a.Equal(b)
	require.NoError(t, err)
	assert.False(t, eq)

	require.NoError(t, b.CopyFrom(a))
	eq, err = a.Equal(b)
	require.NoError(t, err)
	assert.True(t, eq)
	assert.Same(t, a.Clut(), b.Clut())
}
