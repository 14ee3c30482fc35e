package icclu

import (
	"math"
	"slices"
)

// Largest number of grid entries (points * output channels) accepted.
const maxClutEntries = 1 << 28

// InterpAlg selects the Clut interpolation strategy.
type InterpAlg uint8

const (
	InterpSimplex     InterpAlg = iota // N+1 vertices per lookup
	InterpMultilinear                  // 2^N vertices per lookup
)

func (a InterpAlg) String() string {
	if a == InterpMultilinear {
		return "multilinear"
	}
	return "simplex"
}

// Clut is a multi-dimensional lookup table on a regular grid. Inputs are
// normalized 0..1 on every axis. The first input channel varies slowest
// in the table.
type Clut struct {
	pe
	res  []int
	data []float64

	// cached
	dinc   []int // per axis stride in floats
	dcube  []int // offsets of the 2^N cell corners
	alg    InterpAlg
	interp func(p *Clut, out, in []float64) Result
}

// NewClut returns an initialized Clut. data holds prod(res)*out values,
// first channel slowest. A resolution below 2 is reported through warn
// and leaves a node that refuses lookups. The table is copied.
func NewClut(in, out int, res []int, data []float64, warn WarnFunc) (*Clut, error) {
	if in < 1 || in > MaxChan || out < 1 || out > MaxChan || len(res) != in {
		return nil, newError(CodeConfig, "clut: bad channel counts %d -> %d (%d resolutions)", in, out, len(res))
	}
	n, err := clutSize(out, res)
	if err != nil {
		return nil, err
	}
	if data != nil && len(data) != n {
		return nil, newError(CodeFormat, "clut: table has %d values, expected %d", len(data), n)
	}
	p := &Clut{res: slices.Clone(res), data: make([]float64, n)}
	copy(p.data, data)
	p.setup(KindClut, in, out)

	for i, r := range res {
		if r < 2 {
			signalWarning(warn, CodeFormat, "clut: axis %d has resolution %d, need at least 2", i, r)
		}
	}
	if err := p.Init(); err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

// clutSize returns the number of table values, checking for overflow.
func clutSize(out int, res []int) (int, error) {
	n := out
	for _, r := range res {
		if r < 0 {
			return 0, newError(CodeFormat, "clut: negative resolution %d", r)
		}
		if r > 0 && n > maxClutEntries/r {
			return 0, newError(CodeGridTooBig, "clut: grid %v x %d overflows", res, out)
		}
		n *= r
	}
	return n, nil
}

// Res returns the per axis resolutions.
func (p *Clut) Res() []int { return p.res }

// Data exposes the table for in place edits. Call Init afterwards.
func (p *Clut) Data() []float64 { return p.data }

// Alg returns the interpolation strategy in use.
func (p *Clut) Alg() InterpAlg { return p.alg }

// SetAlg forces an interpolation strategy.
func (p *Clut) SetAlg(a InterpAlg) {
	p.alg = a
	if a == InterpMultilinear {
		p.interp = (*Clut).lookupNL
	} else {
		p.interp = (*Clut).lookupSX
	}
}

// MaxRes returns the largest axis resolution.
func (p *Clut) MaxRes() int {
	return slices.Max(p.res)
}

// isDegenerate reports a clut with every axis at resolution 2.
func (p *Clut) isDegenerate() bool {
	for _, r := range p.res {
		if r != 2 {
			return false
		}
	}
	return true
}

func (p *Clut) Init() error {
	if err := p.checkChannels(1, MaxChan, 1, MaxChan); err != nil {
		return err
	}
	if len(p.res) != p.inCh {
		return newError(CodeConfig, "clut: %d resolutions for %d inputs", len(p.res), p.inCh)
	}

	usable := true
	for _, r := range p.res {
		if r < 2 {
			usable = false
		}
	}

	p.dinc = make([]int, p.inCh)
	p.dinc[p.inCh-1] = p.outCh
	for e := p.inCh - 2; e >= 0; e-- {
		p.dinc[e] = p.dinc[e+1] * p.res[e+1]
	}

	p.dcube = make([]int, 1<<p.inCh)
	for e := 0; e < p.inCh; e++ {
		for k := 0; k < 1<<e; k++ {
			p.dcube[(1<<e)+k] = p.dcube[k] + p.dinc[e]
		}
	}

	if p.interp == nil {
		p.SetAlg(InterpSimplex)
	}

	op := OpClut
	if usable && p.isDegenerate() && p.inCh == p.outCh && p.isIdentity() {
		op = OpNOP
	}
	p.setAttr(op, usable, false)
	return nil
}

// isIdentity reports a 2 point per axis table holding its own corner
// coordinates.
func (p *Clut) isIdentity() bool {
	for c, off := range p.dcube {
		for f := 0; f < p.outCh; f++ {
			// corner bit e is set when axis e is at its top
			want := 0.0
			if c&(1<<f) != 0 {
				want = 1.0
			}
			if math.Abs(p.data[off+f]-want) > 1e-12 {
				return false
			}
		}
	}
	return true
}

// locate clamps in to the grid and returns the base offset of the
// enclosing cell and the fractional position within it.
func (p *Clut) locate(co *[MaxChan]float64, in []float64) (int, Result) {
	rv := ResultOK
	off := 0
	for e := 0; e < p.inCh; e++ {
		top := float64(p.res[e] - 1)
		val := in[e] * top
		if math.IsNaN(val) {
			val = 0
			rv |= ResultNum
		}
		if val < 0 {
			val = 0
			rv |= ResultClip
		} else if val > top {
			val = top
			rv |= ResultClip
		}
		x := int(math.Floor(val))
		if x > p.res[e]-2 {
			x = p.res[e] - 2
		}
		co[e] = val - float64(x)
		off += x * p.dinc[e]
	}
	return off, rv
}

func (p *Clut) LookupFwd(out, in []float64) Result {
	if !p.attr.Fwd {
		return ResultNotImpl
	}
	return p.interp(p, out, in)
}

// LookupBwd is not implemented: inverting a grid needs a search.
func (p *Clut) LookupBwd(out, in []float64) Result {
	return ResultNotImpl
}

func (p *Clut) Release() {
	if p.unref() {
		p.data = nil
	}
}

func (p *Clut) Equal(other Node) (bool, error) {
	o, ok := other.(*Clut)
	if !ok {
		return false, nil
	}
	return p.inCh == o.inCh && p.outCh == o.outCh &&
		slices.Equal(p.res, o.res) && slices.Equal(p.data, o.data), nil
}

func (p *Clut) CopyFrom(other Node) error {
	o, ok := other.(*Clut)
	if !ok {
		return newError(CodeIncompatible, "clut: can't copy from %s", other.Kind())
	}
	p.inCh, p.outCh = o.inCh, o.outCh
	p.res = slices.Clone(o.res)
	p.data = slices.Clone(o.data)
	p.SetAlg(o.alg)
	return p.Init()
}
