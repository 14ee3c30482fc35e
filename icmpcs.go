package icclu

import (
	"math"
)

// Inter PCS conversions XYZ <-> CIE L* a* b*.
//
// CIE 15:2004 CIELab is defined as
//
//	L* = 116*f(Y/Yn) - 16                     0 <= L* <= 100
//	a* = 500*[f(X/Xn) - f(Y/Yn)]
//	b* = 200*[f(Y/Yn) - f(Z/Zn)]
//
// with
//
//	f(t) = t^(1/3)                     1 >= t >  (24/116)^3
//	       (841/108)*t + (16/116)      0 <= t <= (24/116)^3

type CIEXYZ struct {
	X, Y, Z float64
}

type CIELab struct {
	L, A, B float64
}

// D50 is the ICC PCS illuminant.
var D50 = CIEXYZ{X: 0.9642, Y: 1.0000, Z: 0.8249}

// 6/29 = 24/116
const (
	labBreak      = (24.0 / 116.0) * (24.0 / 116.0) * (24.0 / 116.0) // (6/29)^3
	labInvBreak   = 24.0 / 116.0                                     // 6/29
	labLinearK    = 841.0 / 108.0
	labLinearBias = 16.0 / 116.0
)

// f(t) used in XYZ -> Lab
func f(t float64) float64 {
	if t <= labBreak {
		return labLinearK*t + labLinearBias
	}
	return math.Cbrt(t)
}

// f⁻¹(t) used in Lab -> XYZ
func f_1(t float64) float64 {
	if t <= labInvBreak {
		return (108.0 / 841.0) * (t - labLinearBias)
	}
	return t * t * t
}

// XYZ2Lab converts relative to the given white.
func XYZ2Lab(wp CIEXYZ, xyz CIEXYZ) CIELab {
	fx := f(xyz.X / wp.X)
	fy := f(xyz.Y / wp.Y)
	fz := f(xyz.Z / wp.Z)

	return CIELab{
		L: 116.0*fy - 16.0,
		A: 500.0 * (fx - fy),
		B: 200.0 * (fy - fz),
	}
}

// Lab2XYZ converts relative to the given white.
func Lab2XYZ(wp CIEXYZ, lab CIELab) CIEXYZ {
	y := (lab.L + 16.0) / 116.0
	x := y + 0.002*lab.A
	z := y - 0.005*lab.B

	return CIEXYZ{
		X: f_1(x) * wp.X,
		Y: f_1(y) * wp.Y,
		Z: f_1(z) * wp.Z,
	}
}

func (c CIEXYZ) slice() []float64 { return []float64{c.X, c.Y, c.Z} }

func xyzOf(v []float64) CIEXYZ { return CIEXYZ{X: v[0], Y: v[1], Z: v[2]} }
