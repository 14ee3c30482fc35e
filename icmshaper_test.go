package icclu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gammaCurves(g float64) [3]*Curve {
	return [3]*Curve{NewGammaCurve(g), NewGammaCurve(g), NewGammaCurve(g)}
}

func TestShaperMatrix_Fwd(t *testing.T) {
	curves := gammaCurves(2.2)
	sh, err := NewShaperMatrix(curves, [3]CIEXYZ{testRed, testGreen, testBlue}, false)
	releaseCurves(curves[:])
	require.NoError(t, err)
	defer sh.Release()

	assert.Equal(t, KindShaperMatrix, sh.Kind())
	assert.False(t, sh.Inverted())
	assert.Equal(t, OpMatrix, sh.Attr().Op)

	// equal device values give a scaled D50
	out := pt()
	sh.LookupFwd(out, pt(1, 1, 1))
	assert.InDeltaSlice(t, D50.slice(), out[:3], 1e-4)

	sh.LookupFwd(out, pt(0.5, 0.5, 0.5))
	y := math.Pow(0.5, 2.2)
	assert.InDelta(t, y*testRed.Y+y*testGreen.Y+y*testBlue.Y, out[1], 1e-12)
}

func TestShaperMatrix_InvertedRoundTrip(t *testing.T) {
	curves := gammaCurves(1.8)
	fwd, err := NewShaperMatrix(curves, [3]CIEXYZ{testRed, testGreen, testBlue}, false)
	require.NoError(t, err)
	defer fwd.Release()
	bwd, err := NewShaperMatrix(curves, [3]CIEXYZ{testRed, testGreen, testBlue}, true)
	require.NoError(t, err)
	defer bwd.Release()
	releaseCurves(curves[:])

	assert.True(t, bwd.Inverted())
	assert.True(t, bwd.Attr().Inv)

	for _, rgb := range [][]float64{{0.1, 0.5, 0.9}, {0.7, 0.2, 0.3}, {1, 1, 1}} {
		xyz := pt()
		fwd.LookupFwd(xyz, pt(rgb...))
		back := pt()
		bwd.LookupFwd(back, xyz)
		assert.InDeltaSlice(t, rgb, back[:3], 1e-9, "rgb=%v", rgb)
	}
}

func TestShaperMono(t *testing.T) {
	c := NewGammaCurve(2)
	sh, err := NewShaperMono(c, SpaceLab, D50, false)
	c.Release()
	require.NoError(t, err)
	defer sh.Release()

	in, out := sh.Channels()
	assert.Equal(t, 1, in)
	assert.Equal(t, 3, out)

	lab := pt()
	sh.LookupFwd(lab, pt(0.5))
	assert.InDeltaSlice(t, []float64{25, 0, 0}, lab[:3], 1e-12)

	inv, err := NewShaperMono(sh.Curves().Curve(0), SpaceLab, D50, true)
	require.NoError(t, err)
	defer inv.Release()
	gray := pt()
	inv.LookupFwd(gray, lab)
	assert.InDelta(t, 0.5, gray[0], 1e-12)
}

func TestReadShaperMatrix(t *testing.T) {
	opts := testOptions()
	n, err := readShaperMatrix(matrixProfile(SpaceXYZ, 2.2), &opts, false)
	require.NoError(t, err)
	require.NotNil(t, n)
	defer n.Release()
	assert.Equal(t, KindShaperMatrix, n.Kind())
}

func TestReadShaperMatrix_MissingTags(t *testing.T) {
	opts := testOptions()
	p := NewProfile(Header{Class: ClassDisplay, ColorSpace: SpaceRGB, PCS: SpaceXYZ})
	p.SetTagFunc(TagRedTRC, gammaTag(2))
	n, err := readShaperMatrix(p, &opts, false)
	assert.NoError(t, err)
	assert.Nil(t, n)

	// gray profiles are not matrix candidates
	n, err = readShaperMatrix(monoProfile(SpaceXYZ, 2), &opts, false)
	assert.NoError(t, err)
	assert.Nil(t, n)
}

func kcmsProfile() *Profile {
	p := matrixProfile(SpaceXYZ, 1)
	h := p.Header()
	h.CMMID = "KCMS"
	kp := NewProfile(h)
	for _, sig := range []TagSig{TagRedTRC, TagGreenTRC, TagBlueTRC} {
		kp.SetTagFunc(sig, gammaTag(1))
	}
	kp.SetXYZ(TagRedXYZ, CIEXYZ{X: 43.61, Y: 22.25, Z: 1.39})
	kp.SetXYZ(TagGreenXYZ, CIEXYZ{X: 38.51, Y: 71.69, Z: 9.71})
	kp.SetXYZ(TagBlueXYZ, CIEXYZ{X: 14.30, Y: 6.06, Z: 71.39})
	return kp
}

func TestReadShaperMatrix_KCMSQuirk(t *testing.T) {
	var w warnRecorder
	opts := testOptions()
	opts.AllowQuirks = true
	opts.Warn = w.warn

	n, err := readShaperMatrix(kcmsProfile(), &opts, false)
	require.NoError(t, err)
	require.NotNil(t, n)
	defer n.Release()
	assert.Equal(t, []ErrorCode{CodeQuirk}, w.codes())

	out := pt()
	n.LookupFwd(out, pt(1, 1, 1))
	assert.InDeltaSlice(t, D50.slice(), out[:3], 1e-4)
}

func TestReadShaperMatrix_KCMSStrict(t *testing.T) {
	var w warnRecorder
	opts := testOptions()
	opts.AllowQuirks = false
	opts.Warn = w.warn

	n, err := readShaperMatrix(kcmsProfile(), &opts, false)
	assert.NoError(t, err)
	assert.Nil(t, n)
	assert.Equal(t, []ErrorCode{CodeFormat}, w.codes())
}

func TestBuilder_KCMSNeedsOptIn(t *testing.T) {
	var w warnRecorder
	opts := DefaultOptions()
	opts.Telemetry = false
	opts.Warn = w.warn

	lu, err := NewBuilder(kcmsProfile(), opts).BuildRequest(t.Context(), Request{Func: FuncFwd})
	assert.Nil(t, lu)
	assert.ErrorIs(t, err, ErrNoTransform)
	assert.Contains(t, w.codes(), CodeFormat)

	opts.AllowQuirks = true
	lu, err = NewBuilder(kcmsProfile(), opts).BuildRequest(t.Context(), Request{Func: FuncFwd})
	require.NoError(t, err)
	lu.Release()
}

func TestKCMSQuirk_NeedsCMM(t *testing.T) {
	cols := [3]CIEXYZ{{X: 43, Y: 22, Z: 1}, {X: 38, Y: 71, Z: 9}, {X: 14, Y: 6, Z: 71}}
	assert.True(t, kcmsQuirk(Header{CMMID: "KCMS"}, cols))
	assert.False(t, kcmsQuirk(Header{CMMID: "lcms"}, cols))
	assert.False(t, kcmsQuirk(Header{CMMID: "KCMS"}, [3]CIEXYZ{testRed, testGreen, testBlue}))
}
