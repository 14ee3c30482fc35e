package icclu

// Shaper is a transform synthesized from the curve and colorant tags of a
// matrix or monochrome profile: per channel curves then a linear stage to
// the PCS. An inverted Shaper goes from the PCS to the device.
type Shaper struct {
	composite
	inv bool
	cs  *CurveSet
	lin Node // *Matrix or *Mono
}

// NewShaperMatrix returns the device to XYZ transform of three curves and
// the red, green and blue colorants. Curves may be nil for linear.
func NewShaperMatrix(curves [3]*Curve, colorants [3]CIEXYZ, invert bool) (*Shaper, error) {
	cs, err := NewCurveSet(curves[:]...)
	if err != nil {
		return nil, err
	}
	defer cs.Release()

	// colorants are the matrix columns
	var m [3][3]float64
	for j, c := range colorants {
		m[0][j], m[1][j], m[2][j] = c.X, c.Y, c.Z
	}
	mx := NewMatrix(m, [3]float64{})
	defer mx.Release()
	return newShaper(KindShaperMatrix, cs, mx, invert)
}

// NewShaperMono returns the gray to pcs transform of a single curve.
func NewShaperMono(curve *Curve, pcs ColorSpace, illum CIEXYZ, invert bool) (*Shaper, error) {
	cs, err := NewCurveSet(curve)
	if err != nil {
		return nil, err
	}
	defer cs.Release()
	mono := NewMono(pcs, illum)
	defer mono.Release()
	return newShaper(KindShaperMono, cs, mono, invert)
}

func newShaper(kind Kind, cs *CurveSet, lin Node, invert bool) (*Shaper, error) {
	cs.Reference()
	lin.Reference()
	p := &Shaper{inv: invert, cs: cs, lin: lin}
	in, out := cs.Len(), 3
	if invert {
		in, out = out, in
	}
	p.setup(kind, in, out)
	if err := p.Init(); err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

// Inverted reports a PCS to device shaper.
func (p *Shaper) Inverted() bool { return p.inv }

// Curves returns the device curves.
func (p *Shaper) Curves() *CurveSet { return p.cs }

func (p *Shaper) Init() error {
	if err := p.cs.Init(); err != nil {
		return err
	}
	if err := p.lin.Init(); err != nil {
		return err
	}
	if !p.inv {
		return p.build(p.inCh, p.outCh, p.cs, p.lin)
	}
	il, ic := NewInverter(p.lin), NewInverter(p.cs)
	defer il.Release()
	defer ic.Release()
	if err := p.build(p.inCh, p.outCh, il, ic); err != nil {
		return err
	}
	p.attr.Inv = true
	return nil
}

func (p *Shaper) Release() {
	if !p.release() {
		return
	}
	p.cs.Release()
	p.lin.Release()
	p.cs, p.lin = nil, nil
}

func (p *Shaper) Equal(other Node) (bool, error) {
	o, ok := other.(*Shaper)
	if !ok || o.kind != p.kind || o.inv != p.inv {
		return false, nil
	}
	if eq, err := p.cs.Equal(o.cs); err != nil || !eq {
		return false, err
	}
	return p.lin.Equal(o.lin)
}

// CopyFrom shares the stages of another shaper.
func (p *Shaper) CopyFrom(other Node) error {
	o, ok := other.(*Shaper)
	if !ok || o.kind != p.kind {
		return newError(CodeIncompatible, "%s: can't copy from %s", p.kind, other.Kind())
	}
	o.cs.Reference()
	o.lin.Reference()
	p.cs.Release()
	p.lin.Release()
	p.cs, p.lin, p.inv = o.cs, o.lin, o.inv
	p.inCh, p.outCh = o.inCh, o.outCh
	return p.Init()
}

// ---------------------------------------------------------------------------
// Synthesis from profile tags. A profile that lacks the tags, or has them
// in an unusable form, gives a nil node and no error so the caller can
// try the next candidate.

// kcmsQuirk reports colorants written as percentages, as some KCMS
// generated profiles do.
func kcmsQuirk(h Header, cols [3]CIEXYZ) bool {
	if h.CMMID != "KCMS" {
		return false
	}
	n := 0
	for _, c := range cols {
		for _, v := range [3]float64{c.X, c.Y, c.Z} {
			if v > 5.0 {
				n++
			}
		}
	}
	return n > 4
}

// readCurve returns a curve tag, to be released by the caller.
func readCurve(src TagSource, sig TagSig) *Curve {
	n, err := src.ReadTag(sig)
	if err != nil {
		log().Debug("shaper: curve tag unavailable", "tag", sig.String(), "err", err)
		return nil
	}
	c, ok := n.(*Curve)
	if !ok {
		log().Debug("shaper: tag is not a curve", "tag", sig.String(), "kind", n.Kind().String())
		n.Release()
		return nil
	}
	return c
}

func releaseCurves(cs []*Curve) {
	for _, c := range cs {
		if c != nil {
			c.Release()
		}
	}
}

func readShaperMatrix(src TagSource, opts *Options, invert bool) (Node, error) {
	h := src.Header()
	if h.ColorSpace.Channels() != 3 || h.ColorSpace.Type()&TypeDev == 0 || h.PCS.Type()&TypePCS == 0 {
		return nil, nil
	}
	var curves [3]*Curve
	defer releaseCurves(curves[:])
	for i, sig := range [3]TagSig{TagRedTRC, TagGreenTRC, TagBlueTRC} {
		if curves[i] = readCurve(src, sig); curves[i] == nil {
			return nil, nil
		}
	}
	var cols [3]CIEXYZ
	for i, sig := range [3]TagSig{TagRedXYZ, TagGreenXYZ, TagBlueXYZ} {
		c, err := src.ReadXYZ(sig)
		if err != nil {
			log().Debug("shaper: colorant unavailable", "tag", sig.String(), "err", err)
			return nil, nil
		}
		cols[i] = c
	}

	if kcmsQuirk(h, cols) {
		if !opts.AllowQuirks {
			signalWarning(opts.Warn, CodeFormat, "shaper: colorants look like percentages (KCMS), matrix unusable")
			return nil, nil
		}
		signalWarning(opts.Warn, CodeQuirk, "shaper: scaled KCMS percentage colorants by 1/100")
		for i := range cols {
			cols[i] = CIEXYZ{X: cols[i].X / 100, Y: cols[i].Y / 100, Z: cols[i].Z / 100}
		}
	}
	sh, err := NewShaperMatrix(curves, cols, invert)
	if err != nil {
		return nil, err
	}
	return sh, nil
}

func readShaperMono(src TagSource, invert bool) (Node, error) {
	h := src.Header()
	if h.ColorSpace.Channels() != 1 || h.ColorSpace.Type()&TypeDev == 0 || h.PCS.Type()&TypePCS == 0 {
		return nil, nil
	}
	c := readCurve(src, TagGrayTRC)
	if c == nil {
		return nil, nil
	}
	defer c.Release()
	sh, err := NewShaperMono(c, h.PCS, h.Illuminant, invert)
	if err != nil {
		return nil, err
	}
	return sh, nil
}
