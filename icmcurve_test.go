package icclu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurve_LinearIsNOP(t *testing.T) {
	c := NewLinearCurve()
	defer c.Release()
	assert.Equal(t, OpNOP, c.Attr().Op)
	assert.True(t, IsNOP(c))

	g := NewGammaCurve(1.0)
	defer g.Release()
	assert.Equal(t, OpNOP, g.Attr().Op)

	tab, err := NewTableCurve([]float64{0, 1})
	require.NoError(t, err)
	defer tab.Release()
	assert.Equal(t, OpNOP, tab.Attr().Op)
}

func TestCurve_Gamma(t *testing.T) {
	c := NewGammaCurve(2.2)
	defer c.Release()
	assert.Equal(t, OpPerCh, c.Attr().Op)

	v, rv := c.Eval(0.5)
	assert.Equal(t, ResultOK, rv)
	assert.InDelta(t, math.Pow(0.5, 2.2), v, 1e-12)

	back, rv := c.EvalInv(v)
	assert.Equal(t, ResultOK, rv)
	assert.InDelta(t, 0.5, back, 1e-12)

	// odd extension below zero
	neg, _ := c.Eval(-0.5)
	assert.InDelta(t, -math.Pow(0.5, 2.2), neg, 1e-12)
}

func TestCurve_ZeroGammaInverse(t *testing.T) {
	c := NewGammaCurve(0)
	defer c.Release()
	_, rv := c.EvalInv(0.3)
	assert.Equal(t, ResultNum, rv)
}

func TestCurve_TableEval(t *testing.T) {
	c, err := NewTableCurve([]float64{0, 0.25, 1})
	require.NoError(t, err)
	defer c.Release()

	v, rv := c.Eval(0.25)
	assert.Equal(t, ResultOK, rv)
	assert.InDelta(t, 0.125, v, 1e-12)

	v, rv = c.Eval(1.5)
	assert.Equal(t, ResultClip, rv)
	assert.InDelta(t, 1.0, v, 1e-12)

	v, rv = c.Eval(-0.1)
	assert.Equal(t, ResultClip, rv)
	assert.InDelta(t, 0.0, v, 1e-12)
}

func TestCurve_TableNaN(t *testing.T) {
	c, err := NewTableCurve([]float64{0.1, 0.25, 1})
	require.NoError(t, err)
	defer c.Release()

	v, rv := c.Eval(math.NaN())
	assert.Equal(t, ResultNum, rv)
	assert.InDelta(t, 0.1, v, 1e-12)

	v, rv = c.EvalInv(math.NaN())
	assert.Equal(t, ResultNum, rv)
	assert.Equal(t, 0.0, v)

	// the index itself must not fault either
	_, rv = c.index().lookup(math.NaN())
	assert.Equal(t, ResultClip, rv)
}

func TestCurve_TableTooShort(t *testing.T) {
	_, err := NewTableCurve([]float64{0.5})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestCurve_MonotoneInverse(t *testing.T) {
	table := make([]float64, 33)
	for i := range table {
		x := float64(i) / 32
		table[i] = math.Pow(x, 1.8)
	}
	c, err := NewTableCurve(table)
	require.NoError(t, err)
	defer c.Release()

	for _, x := range []float64{0, 0.03, 0.2, 0.5, 0.77, 0.99, 1} {
		y, rv := c.Eval(x)
		require.Equal(t, ResultOK, rv)
		back, rv := c.EvalInv(y)
		assert.Equal(t, ResultOK, rv)
		assert.InDelta(t, x, back, 1e-9, "x=%v", x)
	}
}

func TestCurve_InverseOutOfRangeClips(t *testing.T) {
	c, err := NewTableCurve([]float64{0.1, 0.5, 0.9})
	require.NoError(t, err)
	defer c.Release()

	v, rv := c.EvalInv(0.95)
	assert.Equal(t, ResultClip, rv)
	assert.InDelta(t, 1.0, v, 1e-12)

	v, rv = c.EvalInv(0.0)
	assert.Equal(t, ResultClip, rv)
	assert.InDelta(t, 0.0, v, 1e-12)
}

func TestCurve_NonMonotoneInverse(t *testing.T) {
	// rises then falls; the first segment containing the value wins
	c, err := NewTableCurve([]float64{0, 1, 0})
	require.NoError(t, err)
	defer c.Release()

	v, rv := c.EvalInv(0.5)
	assert.Equal(t, ResultOK, rv)
	y, _ := c.Eval(v)
	assert.InDelta(t, 0.5, y, 1e-12)
}

func TestCurve_FlatSegmentInverse(t *testing.T) {
	c, err := NewTableCurve([]float64{0, 0.5, 0.5, 1})
	require.NoError(t, err)
	defer c.Release()

	// the segment reaching the value first wins
	v, rv := c.EvalInv(0.5)
	assert.Equal(t, ResultOK, rv)
	assert.InDelta(t, 1.0/3, v, 1e-9)
}

func TestCurve_RebuildIndexAfterEdit(t *testing.T) {
	c, err := NewTableCurve([]float64{0, 0.5, 1})
	require.NoError(t, err)
	defer c.Release()

	v, _ := c.EvalInv(0.5)
	assert.InDelta(t, 0.5, v, 1e-12)

	c.Table()[1] = 0.25
	c.RebuildIndex()
	v, _ = c.EvalInv(0.25)
	assert.InDelta(t, 0.5, v, 1e-12)
}

func TestCurve_LookupUsesFirstChannel(t *testing.T) {
	c := NewGammaCurve(2)
	defer c.Release()
	out := pt()
	assert.Equal(t, ResultOK, c.LookupFwd(out, pt(0.5, 0.9)))
	assert.InDelta(t, 0.25, out[0], 1e-12)
	assert.Equal(t, ResultOK, c.LookupBwd(out, pt(0.25)))
	assert.InDelta(t, 0.5, out[0], 1e-12)
}

func TestCurve_EqualAndCopy(t *testing.T) {
	a, err := NewTableCurve([]float64{0, 0.3, 1})
	require.NoError(t, err)
	defer a.Release()
	b := NewLinearCurve()
	defer b.Release()

	eq, err := a.Equal(b)
	require.NoError(t, err)
	assert.False(t, eq)

	require.NoError(t, b.CopyFrom(a))
	eq, err = a.Equal(b)
	require.NoError(t, err)
	assert.True(t, eq)
	assert.Equal(t, CurveTable, b.Type())

	// deep copy
	b.Table()[1] = 0.6
	assert.InDelta(t, 0.3, a.Table()[1], 0)

	m := NewIdentityMatrix()
	defer m.Release()
	assert.ErrorIs(t, b.CopyFrom(m), ErrIncompatible)
}

func TestCurveSet_Lookup(t *testing.T) {
	sq, sqrt := NewGammaCurve(2), NewGammaCurve(0.5)
	cs, err := NewCurveSet(sq, nil, sqrt)
	sq.Release()
	sqrt.Release()
	require.NoError(t, err)
	defer cs.Release()

	assert.Equal(t, 3, cs.Len())
	assert.Equal(t, OpPerCh, cs.Attr().Op)

	out := pt()
	cs.LookupFwd(out, pt(0.5, 0.5, 0.25))
	assert.InDeltaSlice(t, []float64{0.25, 0.5, 0.5}, out[:3], 1e-12)

	back := pt()
	cs.LookupBwd(back, out)
	assert.InDeltaSlice(t, []float64{0.5, 0.5, 0.25}, back[:3], 1e-12)
}

func TestCurveSet_LinearIsNOP(t *testing.T) {
	cs, err := NewLinearCurveSet(4)
	require.NoError(t, err)
	defer cs.Release()
	assert.Equal(t, OpNOP, cs.Attr().Op)
	in, out := cs.Channels()
	assert.Equal(t, 4, in)
	assert.Equal(t, 4, out)
}

func TestCurveSet_MaxRes(t *testing.T) {
	a, err := NewTableCurve(linearTable(17))
	require.NoError(t, err)
	b, err := NewTableCurve(linearTable(256))
	require.NoError(t, err)
	cs, err := NewCurveSet(a, b)
	require.NoError(t, err)
	a.Release()
	b.Release()
	defer cs.Release()

	assert.Equal(t, 256, cs.MaxRes())
}
