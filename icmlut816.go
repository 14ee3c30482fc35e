package icclu

// Lut816Data is the decoded content of an 8 or 16 bit ICC lut tag. Table
// values are already scaled to 0..1.
type Lut816Data struct {
	Bits8      bool
	In, Out    int
	GridPoints int
	Matrix     [3][3]float64
	Const      [3]float64 // not part of the tag; a non-zero value is reported
	InputTab   [][]float64
	Clut       []float64
	OutputTab  [][]float64
}

// Lut816 is the fixed four stage transform of a Lut8 or Lut16 tag: an
// optional matrix, input curves, a clut and output curves. Its stages are
// visible as sequence members.
type Lut816 struct {
	composite
	bits8 bool

	mx  *Matrix // nil when not applicable
	in  *CurveSet
	cl  *Clut
	out *CurveSet
}

// NewLut816 builds a lut from decoded tag data. Anomalies that can be
// lived with are reported through warn.
func NewLut816(d Lut816Data, warn WarnFunc) (*Lut816, error) {
	if d.In < 1 || d.In > MaxChan || d.Out < 1 || d.Out > MaxChan {
		return nil, newError(CodeFormat, "lut: bad channel counts %d -> %d", d.In, d.Out)
	}
	if len(d.InputTab) != d.In {
		return nil, newError(CodeFormat, "lut: %d input tables for %d channels", len(d.InputTab), d.In)
	}
	if len(d.OutputTab) != d.Out {
		return nil, newError(CodeFormat, "lut: %d output tables for %d channels", len(d.OutputTab), d.Out)
	}
	checkEntries(d.Bits8, "input", d.InputTab, warn)
	checkEntries(d.Bits8, "output", d.OutputTab, warn)

	var mx *Matrix
	if d.Const != [3]float64{} {
		signalWarning(warn, CodeFormat, "lut: matrix has a non-zero constant %v", d.Const)
	}
	m := NewMatrix(d.Matrix, d.Const)
	if d.In == 3 {
		mx = m
	} else {
		if !m.IsUnity() || !m.ConstIsZero() {
			signalWarning(warn, CodeFormat, "lut: non-unity matrix ignored for %d input channels", d.In)
		}
		m.Release()
	}
	if mx != nil {
		defer mx.Release()
	}

	in, err := curveSetFromTables(d.InputTab)
	if err != nil {
		return nil, err
	}
	defer in.Release()
	out, err := curveSetFromTables(d.OutputTab)
	if err != nil {
		return nil, err
	}
	defer out.Release()

	res := make([]int, d.In)
	for i := range res {
		res[i] = d.GridPoints
	}
	cl, err := NewClut(d.In, d.Out, res, d.Clut, warn)
	if err != nil {
		return nil, err
	}
	defer cl.Release()

	return NewLut816From(d.Bits8, mx, in, cl, out)
}

// NewLut816From assembles a lut from its stages, taking a reference to
// each. mx may be nil and must be nil unless there are 3 inputs.
func NewLut816From(bits8 bool, mx *Matrix, in *CurveSet, cl *Clut, out *CurveSet) (*Lut816, error) {
	if in == nil || cl == nil || out == nil {
		return nil, newError(CodeConfig, "lut: missing stage")
	}
	cin, cout := cl.Channels()
	if in.Len() != cin || out.Len() != cout {
		return nil, newError(CodeConfig, "lut: curves %d/%d don't match clut %d -> %d", in.Len(), out.Len(), cin, cout)
	}
	if mx != nil && cin != 3 {
		return nil, newError(CodeConfig, "lut: matrix needs 3 inputs, have %d", cin)
	}
	p := &Lut816{bits8: bits8, mx: mx, in: in, cl: cl, out: out}
	for _, n := range []Node{in, cl, out} {
		n.Reference()
	}
	if mx != nil {
		mx.Reference()
	}
	p.setup(KindLut816, cin, cout)
	if err := p.Init(); err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

func checkEntries(bits8 bool, what string, tabs [][]float64, warn WarnFunc) {
	for i, t := range tabs {
		if i > 0 && len(t) != len(tabs[0]) {
			signalWarning(warn, CodeFormat, "lut: %s table %d has %d entries, table 0 has %d", what, i, len(t), len(tabs[0]))
		}
		switch {
		case bits8 && len(t) != 256:
			signalWarning(warn, CodeFormat, "lut8: %s table %d has %d entries, expected 256", what, i, len(t))
		case !bits8 && len(t) > 4096:
			signalWarning(warn, CodeFormat, "lut16: %s table %d has %d entries, limit is 4096", what, i, len(t))
		}
	}
}

func curveSetFromTables(tabs [][]float64) (*CurveSet, error) {
	cs := make([]*Curve, len(tabs))
	defer func() {
		for _, c := range cs {
			if c != nil {
				c.Release()
			}
		}
	}()
	for i, t := range tabs {
		c, err := NewTableCurve(t)
		if err != nil {
			return nil, err
		}
		cs[i] = c
	}
	return NewCurveSet(cs...)
}

// Bits8 reports an 8 bit lut.
func (p *Lut816) Bits8() bool { return p.bits8 }

// Matrix returns the matrix stage, nil if the lut has none.
func (p *Lut816) Matrix() *Matrix { return p.mx }

func (p *Lut816) InputCurves() *CurveSet  { return p.in }
func (p *Lut816) Clut() *Clut             { return p.cl }
func (p *Lut816) OutputCurves() *CurveSet { return p.out }

// Init re-initializes the stages and rebuilds the member list, so that in
// place edits of the stage data take effect.
func (p *Lut816) Init() error {
	var stages []Node
	if p.mx != nil {
		if err := p.mx.Init(); err != nil {
			return err
		}
		stages = append(stages, p.mx)
	}
	for _, n := range []Node{p.in, p.cl, p.out} {
		if err := n.Init(); err != nil {
			return err
		}
	}
	stages = append(stages, p.in, p.cl, p.out)
	return p.build(p.inCh, p.outCh, stages...)
}

func (p *Lut816) Release() {
	if !p.release() {
		return
	}
	p.releaseStages()
	p.mx, p.in, p.cl, p.out = nil, nil, nil, nil
}

func (p *Lut816) releaseStages() {
	if p.mx != nil {
		p.mx.Release()
	}
	p.in.Release()
	p.cl.Release()
	p.out.Release()
}

func (p *Lut816) Equal(other Node) (bool, error) {
	o, ok := other.(*Lut816)
	if !ok || o.bits8 != p.bits8 || (o.mx == nil) != (p.mx == nil) {
		return false, nil
	}
	if p.mx != nil {
		if eq, _ := p.mx.Equal(o.mx); !eq {
			return false, nil
		}
	}
	for _, pair := range [][2]Node{{p.in, o.in}, {p.cl, o.cl}, {p.out, o.out}} {
		eq, err := pair[0].Equal(pair[1])
		if err != nil || !eq {
			return false, err
		}
	}
	return true, nil
}

// CopyFrom shares the stages of another lut.
func (p *Lut816) CopyFrom(other Node) error {
	o, ok := other.(*Lut816)
	if !ok {
		return newError(CodeIncompatible, "lut: can't copy from %s", other.Kind())
	}
	if o.mx != nil {
		o.mx.Reference()
	}
	o.in.Reference()
	o.cl.Reference()
	o.out.Reference()
	p.releaseStages()
	p.bits8, p.mx, p.in, p.cl, p.out = o.bits8, o.mx, o.in, o.cl, o.out
	p.inCh, p.outCh = o.inCh, o.outCh
	return p.Init()
}
