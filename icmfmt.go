package icclu

import (
	"math"
)

// Fixed function converters. None of these are ever read from a profile;
// the builder creates them to bridge between PCS encodings.

// ---------------------------------------------------------------------------
// XYZ <-> Lab

// PCSConv converts XYZ to Lab relative to a PCS white. Inverted it
// converts Lab to XYZ.
type PCSConv struct {
	pe
	wp CIEXYZ
}

// NewXYZ2Lab returns an XYZ to Lab converter, or Lab to XYZ if invert.
func NewXYZ2Lab(wp CIEXYZ, invert bool) *PCSConv {
	p := &PCSConv{wp: wp}
	p.setup(KindXYZ2Lab, 3, 3)
	p.attr.Inv = invert
	_ = p.Init()
	return p
}

func (p *PCSConv) Init() error {
	if err := p.checkChannels(3, 3, 3, 3); err != nil {
		return err
	}
	p.setAttr(OpMatrix, true, true)
	return nil
}

func (p *PCSConv) toLab(out, in []float64) Result {
	lab := XYZ2Lab(p.wp, xyzOf(in))
	out[0], out[1], out[2] = lab.L, lab.A, lab.B
	return ResultOK
}

func (p *PCSConv) toXYZ(out, in []float64) Result {
	xyz := Lab2XYZ(p.wp, CIELab{L: in[0], A: in[1], B: in[2]})
	out[0], out[1], out[2] = xyz.X, xyz.Y, xyz.Z
	return ResultOK
}

func (p *PCSConv) LookupFwd(out, in []float64) Result {
	if p.attr.Inv {
		return p.toXYZ(out, in)
	}
	return p.toLab(out, in)
}

func (p *PCSConv) LookupBwd(out, in []float64) Result {
	if p.attr.Inv {
		return p.toLab(out, in)
	}
	return p.toXYZ(out, in)
}

func (p *PCSConv) Release() { p.unref() }

func (p *PCSConv) Equal(Node) (bool, error) { return false, ErrNotImplemented }

func (p *PCSConv) CopyFrom(other Node) error {
	o, ok := other.(*PCSConv)
	if !ok {
		return newError(CodeIncompatible, "xyz2lab: can't copy from %s", other.Kind())
	}
	p.wp = o.wp
	p.attr.Inv = o.attr.Inv
	return p.Init()
}

// ---------------------------------------------------------------------------
// absolute <-> relative XYZ

// AbsRel converts absolute XYZ to relative XYZ. Inverted it converts
// relative to absolute.
type AbsRel struct {
	pe
	toAbs   MAT3
	fromAbs MAT3
}

// NewAbs2Rel returns an absolute to relative converter built from the
// relative to absolute matrix and its inverse.
func NewAbs2Rel(toAbs, fromAbs MAT3, invert bool) *AbsRel {
	p := &AbsRel{toAbs: toAbs, fromAbs: fromAbs}
	p.setup(KindAbs2Rel, 3, 3)
	p.attr.Inv = invert
	_ = p.Init()
	return p
}

func (p *AbsRel) Init() error {
	if err := p.checkChannels(3, 3, 3, 3); err != nil {
		return err
	}
	p.setAttr(OpMatrix, true, true)
	return nil
}

func (p *AbsRel) LookupFwd(out, in []float64) Result {
	if p.attr.Inv {
		mulBy3x3(out, &p.toAbs, in)
	} else {
		mulBy3x3(out, &p.fromAbs, in)
	}
	return ResultOK
}

func (p *AbsRel) LookupBwd(out, in []float64) Result {
	if p.attr.Inv {
		mulBy3x3(out, &p.fromAbs, in)
	} else {
		mulBy3x3(out, &p.toAbs, in)
	}
	return ResultOK
}

func (p *AbsRel) Release() { p.unref() }

func (p *AbsRel) Equal(Node) (bool, error) { return false, ErrNotImplemented }

func (p *AbsRel) CopyFrom(other Node) error {
	o, ok := other.(*AbsRel)
	if !ok {
		return newError(CodeIncompatible, "abs2rel: can't copy from %s", other.Kind())
	}
	p.toAbs, p.fromAbs = o.toAbs, o.fromAbs
	p.attr.Inv = o.attr.Inv
	return p.Init()
}

// ---------------------------------------------------------------------------
// Fixed point PCS encodings

// PCSNorm maps a full range PCS value to one of the 0..1 fixed point
// encodings: out = (in + off) / div per channel.
type PCSNorm struct {
	pe
	off [3]float64
	div [3]float64
}

const (
	xyz8Max  = 1.0 + 127.0/128.0
	xyz16Max = 1.0 + 32767.0/32768.0
	labV2L   = 100.0 * 65535.0 / 65280.0
	labV2ab  = 255.0 * 65535.0 / 65280.0
)

func newPCSNorm(kind Kind, off, div [3]float64, invert bool) *PCSNorm {
	p := &PCSNorm{off: off, div: div}
	p.setup(kind, 3, 3)
	p.attr.Inv = invert
	_ = p.Init()
	return p
}

// NewXYZ2XYZ8 returns the 8 bit lut XYZ encoding, 0..1+127/128.
func NewXYZ2XYZ8(invert bool) *PCSNorm {
	return newPCSNorm(KindXYZ2XYZ8, [3]float64{}, [3]float64{xyz8Max, xyz8Max, xyz8Max}, invert)
}

// NewXYZ2XYZ16 returns the 16 bit XYZ encoding, 0..1+32767/32768.
func NewXYZ2XYZ16(invert bool) *PCSNorm {
	return newPCSNorm(KindXYZ2XYZ16, [3]float64{}, [3]float64{xyz16Max, xyz16Max, xyz16Max}, invert)
}

// NewLab2Lab8 returns the 8 bit (and V4 16 bit) Lab encoding.
func NewLab2Lab8(invert bool) *PCSNorm {
	return newPCSNorm(KindLab2Lab8, [3]float64{0, 128, 128}, [3]float64{100, 255, 255}, invert)
}

// NewLab2LabV2 returns the legacy 16 bit Lab encoding, where 0xff00
// stands for L* 100.
func NewLab2LabV2(invert bool) *PCSNorm {
	return newPCSNorm(KindLab2LabV2, [3]float64{0, 128, 128}, [3]float64{labV2L, labV2ab, labV2ab}, invert)
}

func (p *PCSNorm) Init() error {
	if err := p.checkChannels(3, 3, 3, 3); err != nil {
		return err
	}
	p.attr.Norm = true
	p.setAttr(OpPerCh, true, true)
	return nil
}

func (p *PCSNorm) norm(out, in []float64) Result {
	for i := 0; i < 3; i++ {
		out[i] = (in[i] + p.off[i]) / p.div[i]
	}
	return ResultOK
}

func (p *PCSNorm) denorm(out, in []float64) Result {
	for i := 0; i < 3; i++ {
		out[i] = in[i]*p.div[i] - p.off[i]
	}
	return ResultOK
}

func (p *PCSNorm) LookupFwd(out, in []float64) Result {
	if p.attr.Inv {
		return p.denorm(out, in)
	}
	return p.norm(out, in)
}

func (p *PCSNorm) LookupBwd(out, in []float64) Result {
	if p.attr.Inv {
		return p.norm(out, in)
	}
	return p.denorm(out, in)
}

func (p *PCSNorm) Release() { p.unref() }

func (p *PCSNorm) Equal(Node) (bool, error) { return false, ErrNotImplemented }

func (p *PCSNorm) CopyFrom(other Node) error {
	o, ok := other.(*PCSNorm)
	if !ok || o.kind != p.kind {
		return newError(CodeIncompatible, "%s: can't copy from %s", p.kind, other.Kind())
	}
	p.off, p.div = o.off, o.div
	p.attr.Inv = o.attr.Inv
	return p.Init()
}

// ---------------------------------------------------------------------------
// Generic normalization

// Generic2Norm maps a per channel range onto another, 0..1 by default.
// Values are not clipped.
type Generic2Norm struct {
	pe
	name       string
	min, max   [MaxChan]float64
	nmin, nmax [MaxChan]float64
}

// NewGeneric2Norm normalizes min..max to 0..1.
func NewGeneric2Norm(min, max []float64, name string, invert bool) (*Generic2Norm, error) {
	return NewFullyGeneric2Norm(min, max, nil, nil, name, invert)
}

// NewFullyGeneric2Norm maps min..max onto nmin..nmax. Nil target
// slices mean 0..1. Reversed ranges are swapped and every range is
// widened to at least 1e-4.
func NewFullyGeneric2Norm(min, max, nmin, nmax []float64, name string, invert bool) (*Generic2Norm, error) {
	n := len(min)
	if n < 1 || n > MaxChan || len(max) != n ||
		(nmin != nil && len(nmin) != n) || (nmax != nil && len(nmax) != n) {
		return nil, newError(CodeConfig, "generic2norm: bad range lengths")
	}
	p := &Generic2Norm{name: name}
	for i := 0; i < n; i++ {
		p.min[i], p.max[i] = sanitizeRange(min[i], max[i])
		lo, hi := 0.0, 1.0
		if nmin != nil {
			lo = nmin[i]
		}
		if nmax != nil {
			hi = nmax[i]
		}
		p.nmin[i], p.nmax[i] = sanitizeRange(lo, hi)
	}
	p.setup(KindGeneric2Norm, n, n)
	p.attr.Inv = invert
	_ = p.Init()
	return p, nil
}

func sanitizeRange(lo, hi float64) (float64, float64) {
	if lo > hi {
		lo, hi = hi, lo
	}
	if hi-lo < 1e-4 {
		hi += 0.5e-4
		lo -= 0.5e-4
	}
	return lo, hi
}

// Name returns the encoding identifier.
func (p *Generic2Norm) Name() string { return p.name }

func (p *Generic2Norm) Init() error {
	if err := p.checkChannels(1, MaxChan, 1, MaxChan); err != nil {
		return err
	}
	p.attr.Norm = true
	p.setAttr(OpPerCh, true, true)
	return nil
}

func (p *Generic2Norm) norm(out, in []float64) Result {
	for i := 0; i < p.inCh; i++ {
		v := (in[i] - p.min[i]) / (p.max[i] - p.min[i])
		out[i] = v*(p.nmax[i]-p.nmin[i]) + p.nmin[i]
	}
	return ResultOK
}

func (p *Generic2Norm) denorm(out, in []float64) Result {
	for i := 0; i < p.inCh; i++ {
		v := (in[i] - p.nmin[i]) / (p.nmax[i] - p.nmin[i])
		out[i] = v*(p.max[i]-p.min[i]) + p.min[i]
	}
	return ResultOK
}

func (p *Generic2Norm) LookupFwd(out, in []float64) Result {
	if p.attr.Inv {
		return p.denorm(out, in)
	}
	return p.norm(out, in)
}

func (p *Generic2Norm) LookupBwd(out, in []float64) Result {
	if p.attr.Inv {
		return p.norm(out, in)
	}
	return p.denorm(out, in)
}

func (p *Generic2Norm) Release() { p.unref() }

func (p *Generic2Norm) Equal(Node) (bool, error) { return false, ErrNotImplemented }

func (p *Generic2Norm) CopyFrom(other Node) error {
	o, ok := other.(*Generic2Norm)
	if !ok {
		return newError(CodeIncompatible, "generic2norm: can't copy from %s", other.Kind())
	}
	p.name = o.name
	p.min, p.max, p.nmin, p.nmax = o.min, o.max, o.nmin, o.nmax
	p.inCh, p.outCh = o.inCh, o.outCh
	p.attr.Inv = o.attr.Inv
	return p.Init()
}

// ---------------------------------------------------------------------------
// Grid alignment

// GridAlign bends each channel piecewise linearly so that a chosen point
// lands exactly on a clut grid point. Inputs are 0..1.
type GridAlign struct {
	pe
	src, dst            [MaxChan]float64
	fwdlow, fwdhigh     [MaxChan]float64
	bwdlow, bwdlowoff   [MaxChan]float64
	bwdhigh, bwdhighoff [MaxChan]float64
}

// NewGridAlign aligns point with the grid of the given per channel
// resolutions. Channels with fewer than 9 grid points are left alone.
func NewGridAlign(point []float64, res []int, invert bool) (*GridAlign, error) {
	n := len(point)
	if n < 1 || n > MaxChan || len(res) != n {
		return nil, newError(CodeConfig, "gridalign: %d point values for %d resolutions", n, len(res))
	}
	p := &GridAlign{}
	for i := 0; i < n; i++ {
		p.fwdlow[i], p.fwdhigh[i] = 1, 1
		p.bwdlow[i], p.bwdhigh[i] = 1, 1
		if res[i] < 9 {
			p.src[i], p.dst[i] = 0.5, 0.5
			continue
		}
		top := float64(res[i] - 1)
		p.src[i] = point[i]
		p.dst[i] = math.Floor(point[i]*top+0.5) / top

		if math.Abs(p.src[i]) > 1e-9 {
			p.fwdlow[i] = p.dst[i] / p.src[i]
		}
		if math.Abs(p.src[i]-1.0) > 1e-9 {
			p.fwdhigh[i] = (1.0 - p.dst[i]) / (1.0 - p.src[i])
		}

		// dst on an edge with src inside clips to src
		if math.Abs(p.dst[i]) > 1e-9 {
			p.bwdlow[i] = p.src[i] / p.dst[i]
		} else {
			p.bwdlow[i] = 0
			p.bwdlowoff[i] = p.src[i]
		}
		if math.Abs(p.dst[i]-1.0) > 1e-9 {
			p.bwdhigh[i] = (1.0 - p.src[i]) / (1.0 - p.dst[i])
		} else {
			p.bwdhigh[i] = 0
			p.bwdhighoff[i] = p.src[i] - 1.0
		}
	}
	p.setup(KindGridAlign, n, n)
	p.attr.Inv = invert
	_ = p.Init()
	return p, nil
}

func (p *GridAlign) Init() error {
	if err := p.checkChannels(1, MaxChan, 1, MaxChan); err != nil {
		return err
	}
	p.setAttr(OpPerCh, true, true)
	return nil
}

func (p *GridAlign) align(out, in []float64) Result {
	for i := 0; i < p.inCh; i++ {
		if in[i] <= p.src[i] {
			out[i] = in[i] * p.fwdlow[i]
		} else {
			out[i] = 1.0 - (1.0-in[i])*p.fwdhigh[i]
		}
	}
	return ResultOK
}

func (p *GridAlign) unalign(out, in []float64) Result {
	for i := 0; i < p.inCh; i++ {
		if in[i] < p.dst[i] {
			out[i] = p.bwdlowoff[i] + in[i]*p.bwdlow[i]
		} else {
			out[i] = p.bwdhighoff[i] + 1.0 - (1.0-in[i])*p.bwdhigh[i]
		}
	}
	return ResultOK
}

func (p *GridAlign) LookupFwd(out, in []float64) Result {
	if p.attr.Inv {
		return p.unalign(out, in)
	}
	return p.align(out, in)
}

func (p *GridAlign) LookupBwd(out, in []float64) Result {
	if p.attr.Inv {
		return p.align(out, in)
	}
	return p.unalign(out, in)
}

func (p *GridAlign) Release() { p.unref() }

func (p *GridAlign) Equal(Node) (bool, error) { return false, ErrNotImplemented }

func (p *GridAlign) CopyFrom(other Node) error {
	o, ok := other.(*GridAlign)
	if !ok {
		return newError(CodeIncompatible, "gridalign: can't copy from %s", other.Kind())
	}
	p.src, p.dst = o.src, o.dst
	p.fwdlow, p.fwdhigh = o.fwdlow, o.fwdhigh
	p.bwdlow, p.bwdlowoff = o.bwdlow, o.bwdlowoff
	p.bwdhigh, p.bwdhighoff = o.bwdhigh, o.bwdhighoff
	p.inCh, p.outCh = o.inCh, o.outCh
	p.attr.Inv = o.attr.Inv
	return p.Init()
}

// ---------------------------------------------------------------------------
// NOP

// NOP copies its input. It is classified per channel, not as a no-op, so
// that it can hold a place in a sequence.
type NOP struct {
	pe
}

// NewNOP returns an n channel pass through.
func NewNOP(n int) (*NOP, error) {
	p := &NOP{}
	p.setup(KindNOP, n, n)
	if err := p.Init(); err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

func (p *NOP) Init() error {
	if err := p.checkChannels(1, MaxChan, 1, MaxChan); err != nil {
		return err
	}
	p.setAttr(OpPerCh, true, true)
	return nil
}

func (p *NOP) LookupFwd(out, in []float64) Result {
	copyN(out, in, p.inCh)
	return ResultOK
}

func (p *NOP) LookupBwd(out, in []float64) Result {
	copyN(out, in, p.inCh)
	return ResultOK
}

func (p *NOP) Release() { p.unref() }

func (p *NOP) Equal(other Node) (bool, error) {
	o, ok := other.(*NOP)
	return ok && o.inCh == p.inCh, nil
}

func (p *NOP) CopyFrom(other Node) error {
	o, ok := other.(*NOP)
	if !ok {
		return newError(CodeIncompatible, "nop: can't copy from %s", other.Kind())
	}
	p.inCh, p.outCh = o.inCh, o.outCh
	return p.Init()
}

// ---------------------------------------------------------------------------
// Mono

// Mono expands a single achromatic channel to relative PCS: L* for a Lab
// PCS, or a scaled illuminant for XYZ.
type Mono struct {
	pe
	lab   bool
	illum CIEXYZ
}

// NewMono returns a 1 -> 3 channel converter to pcs.
func NewMono(pcs ColorSpace, illum CIEXYZ) *Mono {
	p := &Mono{lab: pcs == SpaceLab, illum: illum}
	p.setup(KindMono, 1, 3)
	_ = p.Init()
	return p
}

func (p *Mono) Init() error {
	if err := p.checkChannels(1, 1, 3, 3); err != nil {
		return err
	}
	p.setAttr(OpMatrix, true, true)
	return nil
}

func (p *Mono) LookupFwd(out, in []float64) Result {
	v := in[0]
	if p.lab {
		out[0], out[1], out[2] = 100.0*v, 0, 0
	} else {
		out[0], out[1], out[2] = v*p.illum.X, v*p.illum.Y, v*p.illum.Z
	}
	return ResultOK
}

func (p *Mono) LookupBwd(out, in []float64) Result {
	if p.lab {
		out[0] = in[0] / 100.0
		return ResultOK
	}
	if math.Abs(p.illum.Y) < 1e-12 {
		out[0] = 0
		return ResultNum
	}
	out[0] = in[1] / p.illum.Y
	return ResultOK
}

func (p *Mono) Release() { p.unref() }

func (p *Mono) Equal(other Node) (bool, error) {
	o, ok := other.(*Mono)
	return ok && o.lab == p.lab && o.illum == p.illum, nil
}

func (p *Mono) CopyFrom(other Node) error {
	o, ok := other.(*Mono)
	if !ok {
		return newError(CodeIncompatible, "mono: can't copy from %s", other.Kind())
	}
	p.lab, p.illum = o.lab, o.illum
	return p.Init()
}

// ---------------------------------------------------------------------------
// Inverter

// Inverter makes a node appear as its inverse. The wrapped node may be
// shared, so it is never modified.
type Inverter struct {
	pe
	n Node
}

// NewInverter takes a reference to n.
func NewInverter(n Node) *Inverter {
	n.Reference()
	in, out := n.Channels()
	p := &Inverter{n: n}
	p.setup(KindInverter, out, in)
	_ = p.Init()
	return p
}

// Wrapped returns the node being inverted.
func (p *Inverter) Wrapped() Node { return p.n }

// Init refreshes the attributes from the wrapped node. The wrapped node
// is not re-initialized.
func (p *Inverter) Init() error {
	a := p.n.Attr()
	p.attr = Attr{Inv: !a.Inv, Norm: a.Norm, Op: a.Op, Fwd: a.Bwd, Bwd: a.Fwd}
	return nil
}

func (p *Inverter) LookupFwd(out, in []float64) Result { return p.n.LookupBwd(out, in) }
func (p *Inverter) LookupBwd(out, in []float64) Result { return p.n.LookupFwd(out, in) }

func (p *Inverter) Release() {
	if p.unref() {
		p.n.Release()
		p.n = nil
	}
}

func (p *Inverter) Equal(other Node) (bool, error) {
	o, ok := other.(*Inverter)
	if !ok {
		return false, nil
	}
	return p.n.Equal(o.n)
}

func (p *Inverter) CopyFrom(other Node) error {
	o, ok := other.(*Inverter)
	if !ok {
		return newError(CodeIncompatible, "inverter: can't copy from %s", other.Kind())
	}
	o.n.Reference()
	p.n.Release()
	p.n = o.n
	p.inCh, p.outCh = o.inCh, o.outCh
	return p.Init()
}

// ---------------------------------------------------------------------------

// newNSig2Norm returns the converter from the full range form of a
// normalized encoding to the encoding itself, and the full range space.
// Inverted it goes from the encoding to full range. Full range PCS and
// plain device spaces need no conversion and return a nil node.
func newNSig2Norm(nsig ColorSpace, invert bool) (Node, ColorSpace, error) {
	tofrom := Norm2Sig(nsig)
	switch nsig {
	case SpaceXYZ, SpaceLab:
		return nil, tofrom, nil
	case SpaceXYZ8:
		return NewXYZ2XYZ8(invert), tofrom, nil
	case SpaceXYZ16:
		return NewXYZ2XYZ16(invert), tofrom, nil
	case SpaceLab8:
		return NewLab2Lab8(invert), tofrom, nil
	case SpaceLabV2:
		return NewLab2LabV2(invert), tofrom, nil
	case SpaceLuv16:
		top := 127.0 + 255.0/256.0
		n, err := NewGeneric2Norm([]float64{0, -128, -128}, []float64{100, top, top}, "Luv16", invert)
		return n, tofrom, err
	case SpaceYCbCr16:
		n, err := NewGeneric2Norm([]float64{0, -0.5, -0.5}, []float64{1, 0.5, 0.5}, "YCbCr16", invert)
		return n, tofrom, err
	case SpaceYxy16:
		n, err := NewGeneric2Norm([]float64{0, 0, 0}, []float64{1, 1, 1}, "Yxy16", invert)
		return n, tofrom, err
	}
	if nsig.Type()&TypeDev != 0 {
		return nil, tofrom, nil
	}
	return nil, tofrom, newError(CodeFmtState, "no normalization for colour space %s", nsig)
}
