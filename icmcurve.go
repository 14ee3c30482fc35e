package icclu

import (
	"math"
	"slices"
	"sync/atomic"
)

// CurveType selects how a Curve evaluates.
type CurveType uint8

const (
	CurveLinear CurveType = iota // identity
	CurveGamma                   // sign(x)*|x|^g
	CurveTable                   // sampled, linearly interpolated
)

// Curve is a single channel transfer function.
type Curve struct {
	pe
	ctype CurveType
	gamma float64
	table []float64

	rev atomic.Pointer[revIndex]
}

// NewLinearCurve returns an identity curve.
func NewLinearCurve() *Curve {
	p := &Curve{ctype: CurveLinear}
	p.setup(KindCurve, 1, 1)
	_ = p.Init()
	return p
}

// NewGammaCurve returns a power law curve.
func NewGammaCurve(g float64) *Curve {
	p := &Curve{ctype: CurveGamma, gamma: g}
	p.setup(KindCurve, 1, 1)
	_ = p.Init()
	return p
}

// NewTableCurve returns a sampled curve. The table is copied and need not
// be monotonic.
func NewTableCurve(table []float64) (*Curve, error) {
	if len(table) < 2 {
		return nil, newError(CodeFormat, "curve: table needs at least 2 entries, got %d", len(table))
	}
	p := &Curve{ctype: CurveTable, table: slices.Clone(table)}
	p.setup(KindCurve, 1, 1)
	_ = p.Init()
	return p, nil
}

func (p *Curve) Type() CurveType { return p.ctype }

// Gamma returns the exponent of a power law curve.
func (p *Curve) Gamma() float64 { return p.gamma }

// Table exposes the samples of a table curve for in place edits. Call
// RebuildIndex after changing them.
func (p *Curve) Table() []float64 { return p.table }

func (p *Curve) isNOP() bool {
	switch p.ctype {
	case CurveLinear:
		return true
	case CurveGamma:
		return p.gamma == 1.0
	default:
		return len(p.table) == 2 && p.table[0] == 0.0 && p.table[1] == 1.0
	}
}

func (p *Curve) Init() error {
	if err := p.checkChannels(1, 1, 1, 1); err != nil {
		return err
	}
	op := OpPerCh
	if p.isNOP() {
		op = OpNOP
	}
	p.setAttr(op, true, true)
	return nil
}

// RebuildIndex drops the reverse lookup index so it is rebuilt from the
// current table on the next backward lookup.
func (p *Curve) RebuildIndex() {
	p.rev.Store(nil)
	_ = p.Init()
}

// Eval returns the forward value of a single input.
func (p *Curve) Eval(in float64) (float64, Result) {
	switch p.ctype {
	case CurveLinear:
		return in, ResultOK

	case CurveGamma:
		if in < 0 {
			return -math.Pow(-in, p.gamma), ResultOK
		}
		return math.Pow(in, p.gamma), ResultOK

	default:
		rv := ResultOK
		n := len(p.table)
		val := in * float64(n-1)
		if math.IsNaN(val) {
			val = 0
			rv |= ResultNum
		}
		if val < 0 {
			val = 0
			rv |= ResultClip
		} else if val > float64(n-1) {
			val = float64(n - 1)
			rv |= ResultClip
		}
		ix := int(math.Floor(val))
		if ix > n-2 {
			ix = n - 2
		}
		w := val - float64(ix)
		return p.table[ix] + w*(p.table[ix+1]-p.table[ix]), rv
	}
}

// EvalInv returns the backward value of a single input.
func (p *Curve) EvalInv(in float64) (float64, Result) {
	switch p.ctype {
	case CurveLinear:
		return in, ResultOK

	case CurveGamma:
		if p.gamma == 0 {
			return 0, ResultNum
		}
		if in < 0 {
			return -math.Pow(-in, 1.0/p.gamma), ResultOK
		}
		return math.Pow(in, 1.0/p.gamma), ResultOK

	default:
		if math.IsNaN(in) {
			return 0, ResultNum
		}
		return p.index().lookup(in)
	}
}

func (p *Curve) index() *revIndex {
	if r := p.rev.Load(); r != nil {
		return r
	}
	r := newRevIndex(p.table)
	if p.rev.CompareAndSwap(nil, r) {
		return r
	}
	return p.rev.Load()
}

func (p *Curve) LookupFwd(out, in []float64) Result {
	v, rv := p.Eval(in[0])
	out[0] = v
	return rv
}

func (p *Curve) LookupBwd(out, in []float64) Result {
	v, rv := p.EvalInv(in[0])
	out[0] = v
	return rv
}

func (p *Curve) Release() {
	p.unref()
}

func (p *Curve) Equal(other Node) (bool, error) {
	o, ok := other.(*Curve)
	if !ok {
		return false, nil
	}
	if p.ctype != o.ctype {
		return false, nil
	}
	switch p.ctype {
	case CurveGamma:
		return p.gamma == o.gamma, nil
	case CurveTable:
		return slices.Equal(p.table, o.table), nil
	}
	return true, nil
}

func (p *Curve) CopyFrom(other Node) error {
	o, ok := other.(*Curve)
	if !ok {
		return newError(CodeIncompatible, "curve: can't copy from %s", other.Kind())
	}
	p.ctype = o.ctype
	p.gamma = o.gamma
	p.table = slices.Clone(o.table)
	p.RebuildIndex()
	return nil
}
