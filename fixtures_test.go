package icclu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Colorants summing exactly to D50.
var (
	testRed   = CIEXYZ{X: 0.4361, Y: 0.2225, Z: 0.0139}
	testGreen = CIEXYZ{X: 0.3851, Y: 0.7169, Z: 0.0971}
	testBlue  = CIEXYZ{X: 0.1430, Y: 0.0606, Z: 0.7139}

	// A D65-ish media white, far enough from D50 to tell abs from rel.
	testMediaWhite = CIEXYZ{X: 0.9505, Y: 1.0, Z: 1.0890}
)

// warnRecorder collects the warnings a WarnFunc receives.
type warnRecorder struct {
	got []*Error
}

func (w *warnRecorder) warn(e *Error) { w.got = append(w.got, e) }

func (w *warnRecorder) codes() []ErrorCode {
	var c []ErrorCode
	for _, e := range w.got {
		c = append(c, e.Code)
	}
	return c
}

func testOptions() Options {
	o := DefaultOptions()
	o.Telemetry = false
	return o
}

func gammaTag(g float64) TagFunc {
	return func() (Node, error) { return NewGammaCurve(g), nil }
}

// matrixProfile is an RGB display profile with gamma curves.
func matrixProfile(pcs ColorSpace, gamma float64) *Profile {
	p := NewProfile(Header{
		Class:      ClassDisplay,
		ColorSpace: SpaceRGB,
		PCS:        pcs,
		Intent:     IntentPerceptual,
		Illuminant: D50,
	})
	for _, sig := range []TagSig{TagRedTRC, TagGreenTRC, TagBlueTRC} {
		p.SetTagFunc(sig, gammaTag(gamma))
	}
	p.SetXYZ(TagRedXYZ, testRed)
	p.SetXYZ(TagGreenXYZ, testGreen)
	p.SetXYZ(TagBlueXYZ, testBlue)
	p.SetXYZ(TagWhite, testMediaWhite)
	return p
}

// monoProfile is a gray display profile.
func monoProfile(pcs ColorSpace, gamma float64) *Profile {
	p := NewProfile(Header{
		Class:      ClassDisplay,
		ColorSpace: SpaceGray,
		PCS:        pcs,
		Intent:     IntentPerceptual,
		Illuminant: D50,
	})
	p.SetTagFunc(TagGrayTRC, gammaTag(gamma))
	return p
}

// affineLab is the normalized LabV2 value the test A2B0 table holds at
// an RGB point. Being affine, both interpolators reproduce it exactly.
func affineLab(rgb []float64) [3]float64 {
	r, g, b := rgb[0], rgb[1], rgb[2]
	return [3]float64{
		0.1 + 0.3*r + 0.4*g + 0.1*b,
		0.5 + 0.2*r - 0.2*g,
		0.5 + 0.1*g - 0.2*b,
	}
}

func gridOf(in, res int, fn func(pos []float64) []float64) []float64 {
	var data []float64
	gc := make([]int, in)
	pos := make([]float64, in)
	for {
		for e := range gc {
			pos[e] = float64(gc[e]) / float64(res-1)
		}
		data = append(data, fn(pos)...)
		e := in - 1
		for ; e >= 0; e-- {
			if gc[e]++; gc[e] < res {
				break
			}
			gc[e] = 0
		}
		if e < 0 {
			return data
		}
	}
}

func linearTabs(n, entries int) [][]float64 {
	t := make([][]float64, n)
	for i := range t {
		t[i] = linearTable(entries)
	}
	return t
}

// bentTabs are monotonic but not linear tables.
func bentTabs(n int) [][]float64 {
	t := make([][]float64, n)
	for i := range t {
		t[i] = []float64{0, 0.05, 0.2, 0.45, 1}
	}
	return t
}

// lutProfile is an RGB output profile with a Lab PCS and 16 bit A2B0 and
// B2A0 tags. With curves the tables get non-linear input and output
// curves.
func lutProfile(t *testing.T, curves bool) *Profile {
	t.Helper()
	p := NewProfile(Header{
		Class:      ClassOutput,
		ColorSpace: SpaceRGB,
		PCS:        SpaceLab,
		Intent:     IntentPerceptual,
		Illuminant: D50,
	})

	a2b := Lut816Data{
		In: 3, Out: 3, GridPoints: 5,
		Matrix:    [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		InputTab:  linearTabs(3, 2),
		OutputTab: linearTabs(3, 2),
		Clut: gridOf(3, 5, func(pos []float64) []float64 {
			v := affineLab(pos)
			return v[:]
		}),
	}
	b2a := Lut816Data{
		In: 3, Out: 3, GridPoints: 5,
		Matrix:    [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		InputTab:  linearTabs(3, 2),
		OutputTab: linearTabs(3, 2),
		Clut:      identityGrid(3, 5),
	}
	if curves {
		a2b.InputTab = bentTabs(3)
		a2b.OutputTab = bentTabs(3)
		b2a.InputTab = bentTabs(3)
		b2a.OutputTab = bentTabs(3)
	}

	// decode once so bad fixtures fail here
	for _, d := range []Lut816Data{a2b, b2a} {
		l, err := NewLut816(d, nil)
		require.NoError(t, err)
		l.Release()
	}
	p.SetTagFunc(TagA2B0, func() (Node, error) { return NewLut816(a2b, nil) })
	p.SetTagFunc(TagB2A0, func() (Node, error) { return NewLut816(b2a, nil) })
	p.SetXYZ(TagWhite, D50)
	return p
}

// lut8Profile is lutProfile with 8 bit tables, whose PCS side uses the
// Lab8 or XYZ8 encodings.
func lut8Profile(t *testing.T) *Profile {
	t.Helper()
	p := NewProfile(Header{
		Class:      ClassOutput,
		ColorSpace: SpaceRGB,
		PCS:        SpaceLab,
		Intent:     IntentPerceptual,
		Illuminant: D50,
	})
	a2b := Lut816Data{
		Bits8: true,
		In:    3, Out: 3, GridPoints: 5,
		Matrix:    [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		InputTab:  linearTabs(3, 256),
		OutputTab: linearTabs(3, 256),
		Clut: gridOf(3, 5, func(pos []float64) []float64 {
			v := affineLab(pos)
			return v[:]
		}),
	}
	b2a := a2b
	b2a.Clut = identityGrid(3, 5)

	var w warnRecorder
	for _, d := range []Lut816Data{a2b, b2a} {
		l, err := NewLut816(d, w.warn)
		require.NoError(t, err)
		l.Release()
	}
	require.Empty(t, w.got)
	p.SetTagFunc(TagA2B0, func() (Node, error) { return NewLut816(a2b, nil) })
	p.SetTagFunc(TagB2A0, func() (Node, error) { return NewLut816(b2a, nil) })
	p.SetXYZ(TagWhite, D50)
	return p
}

func mustBuild(t *testing.T, src TagSource, opts Options, req Request) *LookupObject {
	t.Helper()
	lu, err := NewBuilder(src, opts).BuildRequest(t.Context(), req)
	require.NoError(t, err)
	require.NotNil(t, lu)
	t.Cleanup(lu.Release)
	return lu
}

func pt(v ...float64) []float64 {
	p := make([]float64, MaxChan)
	copy(p, v)
	return p
}
