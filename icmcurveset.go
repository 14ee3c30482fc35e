package icclu

// CurveSet applies one Curve per channel.
type CurveSet struct {
	pe
	curves []*Curve
}

// NewCurveSet takes a reference to each curve. A nil entry is replaced by
// a linear curve.
func NewCurveSet(curves ...*Curve) (*CurveSet, error) {
	if len(curves) < 1 || len(curves) > MaxChan {
		return nil, newError(CodeConfig, "curveset: bad channel count %d", len(curves))
	}
	p := &CurveSet{curves: make([]*Curve, len(curves))}
	for i, c := range curves {
		if c == nil {
			c = NewLinearCurve()
		} else {
			c.Reference()
		}
		p.curves[i] = c
	}
	p.setup(KindCurveSet, len(curves), len(curves))
	if err := p.Init(); err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

// NewLinearCurveSet returns n identity curves.
func NewLinearCurveSet(n int) (*CurveSet, error) {
	return NewCurveSet(make([]*Curve, n)...)
}

// Curve returns the curve of channel i.
func (p *CurveSet) Curve(i int) *Curve { return p.curves[i] }

// Len returns the number of channels.
func (p *CurveSet) Len() int { return len(p.curves) }

// MaxRes returns the largest table size of the member curves, or 0 if
// none are tables.
func (p *CurveSet) MaxRes() int {
	res := 0
	for _, c := range p.curves {
		if c.ctype == CurveTable && len(c.table) > res {
			res = len(c.table)
		}
	}
	return res
}

func (p *CurveSet) Init() error {
	if err := p.checkChannels(1, MaxChan, 1, MaxChan); err != nil {
		return err
	}
	if p.inCh != p.outCh || p.inCh != len(p.curves) {
		return newError(CodeConfig, "curveset: %d curves for %d -> %d channels", len(p.curves), p.inCh, p.outCh)
	}
	op := OpNOP
	for _, c := range p.curves {
		if err := c.Init(); err != nil {
			return err
		}
		if c.attr.Op != OpNOP {
			op = OpPerCh
		}
	}
	p.setAttr(op, true, true)
	return nil
}

func (p *CurveSet) LookupFwd(out, in []float64) Result {
	rv := ResultOK
	for i, c := range p.curves {
		var r Result
		out[i], r = c.Eval(in[i])
		rv |= r
	}
	return rv
}

func (p *CurveSet) LookupBwd(out, in []float64) Result {
	rv := ResultOK
	for i, c := range p.curves {
		var r Result
		out[i], r = c.EvalInv(in[i])
		rv |= r
	}
	return rv
}

func (p *CurveSet) Release() {
	if !p.unref() {
		return
	}
	for _, c := range p.curves {
		c.Release()
	}
	p.curves = nil
}

func (p *CurveSet) Equal(other Node) (bool, error) {
	o, ok := other.(*CurveSet)
	if !ok || len(o.curves) != len(p.curves) {
		return false, nil
	}
	for i := range p.curves {
		if eq, _ := p.curves[i].Equal(o.curves[i]); !eq {
			return false, nil
		}
	}
	return true, nil
}

// CopyFrom deep copies the curves of another CurveSet. Shared curves are
// not shared with the copy.
func (p *CurveSet) CopyFrom(other Node) error {
	o, ok := other.(*CurveSet)
	if !ok {
		return newError(CodeIncompatible, "curveset: can't copy from %s", other.Kind())
	}
	curves := make([]*Curve, len(o.curves))
	for i, c := range o.curves {
		nc := NewLinearCurve()
		if err := nc.CopyFrom(c); err != nil {
			return err
		}
		curves[i] = nc
	}
	for _, c := range p.curves {
		c.Release()
	}
	p.curves = curves
	p.inCh, p.outCh = len(curves), len(curves)
	return p.Init()
}
