package icclu

import (
	"math"
)

// Bradford cone response
var lamRigg = MAT3{
	V: [3]VEC3{
		{N: [3]float64{0.8951, 0.2664, -0.1614}},
		{N: [3]float64{-0.7502, 1.7135, 0.0367}},
		{N: [3]float64{0.0389, -0.0685, 1.0296}},
	},
}

func computeChromaticAdaptation(conversion *MAT3, src, dst CIEXYZ, chad *MAT3) bool {
	var chadInv, cone MAT3
	var coneSrcRGB, coneDstRGB VEC3

	if !mat3inverse(chad, &chadInv) {
		return false
	}

	mat3eval(&coneSrcRGB, chad, &VEC3{N: [3]float64{src.X, src.Y, src.Z}})
	mat3eval(&coneDstRGB, chad, &VEC3{N: [3]float64{dst.X, dst.Y, dst.Z}})

	if math.Abs(coneSrcRGB.N[0]) < matrixDetTolerance ||
		math.Abs(coneSrcRGB.N[1]) < matrixDetTolerance ||
		math.Abs(coneSrcRGB.N[2]) < matrixDetTolerance {
		return false
	}

	vec3init(&cone.V[0], coneDstRGB.N[0]/coneSrcRGB.N[0], 0.0, 0.0)
	vec3init(&cone.V[1], 0.0, coneDstRGB.N[1]/coneSrcRGB.N[1], 0.0)
	vec3init(&cone.V[2], 0.0, 0.0, coneDstRGB.N[2]/coneSrcRGB.N[2])

	tmp := mat3per(&cone, chad)
	*conversion = mat3per(&chadInv, &tmp)
	return true
}

// adaptationMatrix returns the Bradford adaptation from one illuminant to
// another.
func adaptationMatrix(r *MAT3, from, to CIEXYZ) bool {
	return computeChromaticAdaptation(r, from, to, &lamRigg)
}

// absRelMatrices returns the matrices taking relative colorimetric XYZ to
// absolute (toAbs) and back (fromAbs), for a medium white wp under the
// PCS illuminant pcswht.
func absRelMatrices(pcswht, wp CIEXYZ) (toAbs, fromAbs MAT3, err error) {
	if !adaptationMatrix(&toAbs, pcswht, wp) {
		return toAbs, fromAbs, newError(CodeFormat, "can't adapt from %v to white point %v", pcswht, wp)
	}
	if !mat3inverse(&toAbs, &fromAbs) {
		return toAbs, fromAbs, newError(CodeFormat, "white point %v gives a singular adaptation", wp)
	}
	return toAbs, fromAbs, nil
}
