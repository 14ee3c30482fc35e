package icclu

import (
	"context"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupObject_WhiteBlack(t *testing.T) {
	lu := mustBuild(t, matrixProfile(SpaceXYZ, 2.2), testOptions(), Request{Func: FuncFwd, Intent: IntentRelative})

	pcs, white, black, assumed := lu.WhiteBlack()
	assert.Equal(t, D50, pcs)
	assert.Equal(t, testMediaWhite, white)
	assert.Equal(t, CIEXYZ{}, black)
	assert.True(t, assumed)

	_, white, _, _ = lu.LuWhiteBlack()
	assert.InDeltaSlice(t, D50.slice(), white.slice(), 1e-9)

	abs := mustBuild(t, matrixProfile(SpaceXYZ, 2.2), testOptions(), Request{Func: FuncFwd, Intent: IntentAbsolute})
	_, white, _, _ = abs.LuWhiteBlack()
	assert.Equal(t, testMediaWhite, white)
}

func TestLookupObject_BlackPoint(t *testing.T) {
	p := matrixProfile(SpaceXYZ, 2.2)
	p.SetXYZ(TagBlack, CIEXYZ{X: 0.01, Y: 0.01, Z: 0.01})
	lu := mustBuild(t, p, testOptions(), Request{Func: FuncFwd})
	_, _, black, assumed := lu.WhiteBlack()
	assert.False(t, assumed)
	assert.Equal(t, 0.01, black.Y)
}

func TestLookupObject_RelAbs(t *testing.T) {
	lu := mustBuild(t, matrixProfile(SpaceXYZ, 2.2), testOptions(), Request{Func: FuncFwd})

	v := D50.slice()
	lu.XYZRel2Abs(v, v)
	assert.InDeltaSlice(t, testMediaWhite.slice(), v, 1e-9)
	lu.XYZAbs2Rel(v, v)
	assert.InDeltaSlice(t, D50.slice(), v, 1e-9)
}

func TestLookupObject_Identity(t *testing.T) {
	p := matrixProfile(SpaceXYZ, 2.2)
	a := mustBuild(t, p, testOptions(), Request{Func: FuncFwd})
	b := mustBuild(t, p, testOptions(), Request{Func: FuncFwd})
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, ClassDisplay, a.Class())
	assert.Equal(t, FuncFwd, a.Func())
	assert.Equal(t, OpMatrix, a.Op())
}

func TestLookupObject_Resolutions(t *testing.T) {
	lu := mustBuild(t, lutProfile(t, true), testOptions(), Request{Func: FuncFwd})

	res, _, err := lu.MaxInRes()
	require.NoError(t, err)
	assert.Equal(t, 5, res)
	res, _, err = lu.MaxOutRes()
	require.NoError(t, err)
	assert.Equal(t, 5, res)
	res, per, err := lu.MaxClutRes()
	require.NoError(t, err)
	assert.Equal(t, 5, res)
	assert.Equal(t, []int{5, 5, 5}, per[:3])

	m := mustBuild(t, matrixProfile(SpaceXYZ, 2.2), testOptions(), Request{Func: FuncFwd})
	res, _, err = m.MaxClutRes()
	require.NoError(t, err)
	assert.Equal(t, 0, res)
}

func TestLookupObject_LinearLight(t *testing.T) {
	xyz := mustBuild(t, matrixProfile(SpaceXYZ, 2.2), testOptions(), Request{Func: FuncFwd})
	ll, err := xyz.LinearLightInOut(false)
	require.NoError(t, err)
	assert.True(t, ll)

	// only XYZ profiles qualify
	lab := mustBuild(t, matrixProfile(SpaceLab, 2.2), testOptions(), Request{Func: FuncFwd})
	ll, err = lab.LinearLightInOut(false)
	require.NoError(t, err)
	assert.False(t, ll)
}

func TestLookupObject_StageNames(t *testing.T) {
	assert.Equal(t, "core5", StageCore5.String())
	assert.Equal(t, "stage?", Stage(99).String())
	assert.Equal(t, "matrix_bwd", AlgMatrixBwd.String())
	assert.Equal(t, "alg?", AlgType(-1).String())
}

func randomRows(n, ch int) [][]float64 {
	r := rand.New(rand.NewPCG(1, 2))
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, ch)
		for j := range rows[i] {
			rows[i][j] = r.Float64()
		}
	}
	return rows
}

func TestLookupObject_FwdBatch(t *testing.T) {
	lu := mustBuild(t, lutProfile(t, true), testOptions(), Request{Func: FuncFwd, PCS: SpaceXYZ})

	in := randomRows(1000, 3)
	out := make([][]float64, len(in))
	for i := range out {
		out[i] = make([]float64, 3)
	}
	rv, err := lu.FwdBatch(t.Context(), out, in)
	require.NoError(t, err)
	assert.False(t, rv.IsError())

	for i, row := range in {
		want := pt()
		lu.Fwd(want, pt(row...))
		assert.InDeltaSlice(t, want[:3], out[i], 1e-12, "row %d", i)
	}
}

func TestLookupObject_BwdBatch(t *testing.T) {
	lu := mustBuild(t, matrixProfile(SpaceXYZ, 2.2), testOptions(), Request{Func: FuncFwd})

	rgb := randomRows(300, 3)
	xyz := make([][]float64, len(rgb))
	back := make([][]float64, len(rgb))
	for i := range xyz {
		xyz[i] = make([]float64, 3)
		back[i] = make([]float64, 3)
	}
	_, err := lu.FwdBatch(t.Context(), xyz, rgb)
	require.NoError(t, err)
	_, err = lu.BwdBatch(t.Context(), back, xyz)
	require.NoError(t, err)
	for i := range rgb {
		assert.InDeltaSlice(t, rgb[i], back[i], 1e-9, "row %d", i)
	}
}

func TestLookupObject_BatchErrors(t *testing.T) {
	lu := mustBuild(t, matrixProfile(SpaceXYZ, 2.2), testOptions(), Request{Func: FuncFwd})

	rv, err := lu.FwdBatch(t.Context(), make([][]float64, 2), make([][]float64, 3))
	assert.Equal(t, ResultCfg, rv)
	assert.ErrorIs(t, err, ErrConfig)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	in := randomRows(10, 3)
	out := randomRows(10, 3)
	_, err = lu.FwdBatch(ctx, out, in)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLookupObject_Concurrent(t *testing.T) {
	lu := mustBuild(t, lutProfile(t, true), testOptions(), Request{Func: FuncFwd})
	want := pt()
	lu.Fwd(want, pt(0.3, 0.2, 0.1))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				got := pt()
				lu.Fwd(got, pt(0.3, 0.2, 0.1))
				assert.InDeltaSlice(t, want, got, 0)
			}
		}()
	}
	wg.Wait()
}

// countingObserver tallies the events it receives.
type countingObserver struct {
	mu      sync.Mutex
	builds  []BuildInfo
	errs    []error
	lookups int
	steps   map[Kind]int
}

func (o *countingObserver) BuildDone(info BuildInfo, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.builds = append(o.builds, info)
	o.errs = append(o.errs, err)
}

func (o *countingObserver) LookupDone(bool, Result) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lookups++
}

func (o *countingObserver) StepDone(kind Kind, _ bool, _ Result) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.steps == nil {
		o.steps = make(map[Kind]int)
	}
	o.steps[kind]++
}

func TestLookupObject_Observer(t *testing.T) {
	obs := &countingObserver{}
	opts := testOptions()
	opts.Observer = obs

	lu := mustBuild(t, matrixProfile(SpaceXYZ, 2.2), opts, Request{Func: FuncFwd, Intent: IntentRelative})
	require.Len(t, obs.builds, 1)
	assert.NoError(t, obs.errs[0])
	assert.Equal(t, TagShaperMatrix, obs.builds[0].Tag)
	assert.Equal(t, 2, obs.builds[0].Steps)
	assert.Equal(t, IntentRelative, obs.builds[0].Intent)

	lu.Fwd(pt(), pt(0.5, 0.5, 0.5))
	lu.Bwd(pt(), pt(0.3, 0.3, 0.3))
	assert.Equal(t, 2, obs.lookups)
	assert.Equal(t, 2, obs.steps[KindCurveSet])
	assert.Equal(t, 2, obs.steps[KindMatrix])

	_, err := NewBuilder(NewProfile(Header{Class: ClassNamedColor}), opts).BuildRequest(t.Context(), Request{})
	require.Error(t, err)
	require.Len(t, obs.errs, 2)
	assert.ErrorIs(t, obs.errs[1], ErrNotImplemented)
}
