package icclu

import (
	"math"
)

const (
	VX = 0
	VY = 1
	VZ = 2
)

// Matrices whose determinant is below this are treated as singular.
const matrixDetTolerance = 0.0001

type VEC3 struct {
	N [3]float64
}

type MAT3 struct {
	V [3]VEC3
}

// Initiate a vector
func vec3init(r *VEC3, x, y, z float64) {
	r.N[VX] = x
	r.N[VY] = y
	r.N[VZ] = z
}

// Vector subtraction
func vec3minus(r, a, b *VEC3) {
	r.N[VX] = a.N[VX] - b.N[VX]
	r.N[VY] = a.N[VY] - b.N[VY]
	r.N[VZ] = a.N[VZ] - b.N[VZ]
}

// Euclidean length
func vec3length(a *VEC3) float64 {
	return math.Sqrt(a.N[VX]*a.N[VX] + a.N[VY]*a.N[VY] + a.N[VZ]*a.N[VZ])
}

// 3x3 Identity
func mat3identity(a *MAT3) {
	vec3init(&a.V[0], 1.0, 0.0, 0.0)
	vec3init(&a.V[1], 0.0, 1.0, 0.0)
	vec3init(&a.V[2], 0.0, 0.0, 1.0)
}

// CloseEnough compares to 16 bit precision.
func CloseEnough(a, b float64) bool {
	return math.Abs(b-a) < (1.0 / 65535.0)
}

func mat3isIdentity(a *MAT3) bool {
	var identity MAT3
	mat3identity(&identity)

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if !CloseEnough(a.V[i].N[j], identity.V[i].N[j]) {
				return false
			}
		}
	}
	return true
}

// Multiply two matrices
func mat3per(a, b *MAT3) MAT3 {
	rowCol := func(i, j int) float64 {
		return a.V[i].N[0]*b.V[0].N[j] + a.V[i].N[1]*b.V[1].N[j] + a.V[i].N[2]*b.V[2].N[j]
	}

	return MAT3{
		V: [3]VEC3{
			{N: [3]float64{rowCol(0, 0), rowCol(0, 1), rowCol(0, 2)}},
			{N: [3]float64{rowCol(1, 0), rowCol(1, 1), rowCol(1, 2)}},
			{N: [3]float64{rowCol(2, 0), rowCol(2, 1), rowCol(2, 2)}},
		},
	}
}

// Inverse of a matrix b = a^(-1)
func mat3inverse(a, b *MAT3) bool {
	c0 := a.V[1].N[1]*a.V[2].N[2] - a.V[1].N[2]*a.V[2].N[1]
	c1 := -a.V[1].N[0]*a.V[2].N[2] + a.V[1].N[2]*a.V[2].N[0]
	c2 := a.V[1].N[0]*a.V[2].N[1] - a.V[1].N[1]*a.V[2].N[0]

	det := a.V[0].N[0]*c0 + a.V[0].N[1]*c1 + a.V[0].N[2]*c2

	if math.Abs(det) < matrixDetTolerance {
		return false // singular matrix; can't invert
	}

	var r MAT3
	r.V[0].N[0] = c0 / det
	r.V[0].N[1] = (a.V[0].N[2]*a.V[2].N[1] - a.V[0].N[1]*a.V[2].N[2]) / det
	r.V[0].N[2] = (a.V[0].N[1]*a.V[1].N[2] - a.V[0].N[2]*a.V[1].N[1]) / det
	r.V[1].N[0] = c1 / det
	r.V[1].N[1] = (a.V[0].N[0]*a.V[2].N[2] - a.V[0].N[2]*a.V[2].N[0]) / det
	r.V[1].N[2] = (a.V[0].N[2]*a.V[1].N[0] - a.V[0].N[0]*a.V[1].N[2]) / det
	r.V[2].N[0] = c2 / det
	r.V[2].N[1] = (a.V[0].N[1]*a.V[2].N[0] - a.V[0].N[0]*a.V[2].N[1]) / det
	r.V[2].N[2] = (a.V[0].N[0]*a.V[1].N[1] - a.V[0].N[1]*a.V[1].N[0]) / det
	*b = r

	return true
}

// Evaluate a vector across a matrix
func mat3eval(r *VEC3, a *MAT3, v *VEC3) {
	x := a.V[0].N[VX]*v.N[VX] + a.V[0].N[VY]*v.N[VY] + a.V[0].N[VZ]*v.N[VZ]
	y := a.V[1].N[VX]*v.N[VX] + a.V[1].N[VY]*v.N[VY] + a.V[1].N[VZ]*v.N[VZ]
	z := a.V[2].N[VX]*v.N[VX] + a.V[2].N[VY]*v.N[VY] + a.V[2].N[VZ]*v.N[VZ]
	r.N[VX], r.N[VY], r.N[VZ] = x, y, z
}

// mulBy3x3 applies a to in, writing out. out and in may alias.
func mulBy3x3(out []float64, a *MAT3, in []float64) {
	v := VEC3{N: [3]float64{in[0], in[1], in[2]}}
	mat3eval(&v, a, &v)
	out[0], out[1], out[2] = v.N[0], v.N[1], v.N[2]
}

func mat3FromArray(m [3][3]float64) MAT3 {
	var r MAT3
	for i := 0; i < 3; i++ {
		vec3init(&r.V[i], m[i][0], m[i][1], m[i][2])
	}
	return r
}

// ---------------------------------------------------------------------------

// Matrix is a 3x3 matrix plus offset node: out = M.in + C.
type Matrix struct {
	pe
	mx MAT3
	ct VEC3

	// cached
	imx     MAT3
	canInv  bool
	isUnity bool
	ctZero  bool
}

// NewMatrix returns an initialized matrix node.
func NewMatrix(m [3][3]float64, c [3]float64) *Matrix {
	p := &Matrix{mx: mat3FromArray(m), ct: VEC3{N: c}}
	p.setup(KindMatrix, 3, 3)
	_ = p.Init()
	return p
}

// NewIdentityMatrix returns a unity matrix with a zero constant.
func NewIdentityMatrix() *Matrix {
	return NewMatrix([3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}, [3]float64{})
}

func (p *Matrix) Init() error {
	if err := p.checkChannels(3, 3, 3, 3); err != nil {
		return err
	}
	p.canInv = mat3inverse(&p.mx, &p.imx)
	p.isUnity = mat3isIdentity(&p.mx)
	p.ctZero = CloseEnough(p.ct.N[0], 0) && CloseEnough(p.ct.N[1], 0) && CloseEnough(p.ct.N[2], 0)

	op := OpMatrix
	if p.isUnity && p.ctZero {
		op = OpNOP
	}
	p.setAttr(op, true, p.canInv)
	return nil
}

// Values returns the matrix and constant.
func (p *Matrix) Values() (m [3][3]float64, c [3]float64) {
	for i := 0; i < 3; i++ {
		m[i] = p.mx.V[i].N
	}
	return m, p.ct.N
}

// Set replaces the matrix and constant and recomputes the cached state.
func (p *Matrix) Set(m [3][3]float64, c [3]float64) {
	p.mx = mat3FromArray(m)
	p.ct = VEC3{N: c}
	_ = p.Init()
}

// IsUnity reports a unity matrix, ignoring the constant.
func (p *Matrix) IsUnity() bool { return p.isUnity }

// ConstIsZero reports a zero constant.
func (p *Matrix) ConstIsZero() bool { return p.ctZero }

func (p *Matrix) LookupFwd(out, in []float64) Result {
	v := VEC3{N: [3]float64{in[0], in[1], in[2]}}
	mat3eval(&v, &p.mx, &v)
	out[0] = v.N[0] + p.ct.N[0]
	out[1] = v.N[1] + p.ct.N[1]
	out[2] = v.N[2] + p.ct.N[2]
	return ResultOK
}

func (p *Matrix) LookupBwd(out, in []float64) Result {
	if !p.canInv {
		return ResultNotImpl
	}
	var v VEC3
	vec3minus(&v, &VEC3{N: [3]float64{in[0], in[1], in[2]}}, &p.ct)
	mat3eval(&v, &p.imx, &v)
	out[0], out[1], out[2] = v.N[0], v.N[1], v.N[2]
	return ResultOK
}

func (p *Matrix) Release() {
	p.unref()
}

func (p *Matrix) Equal(other Node) (bool, error) {
	o, ok := other.(*Matrix)
	if !ok {
		return false, nil
	}
	return p.mx == o.mx && p.ct == o.ct, nil
}

func (p *Matrix) CopyFrom(other Node) error {
	o, ok := other.(*Matrix)
	if !ok {
		return newError(CodeIncompatible, "matrix: can't copy from %s", other.Kind())
	}
	p.mx = o.mx
	p.ct = o.ct
	return p.Init()
}
