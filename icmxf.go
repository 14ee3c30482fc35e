package icclu

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"

	"github.com/CursedHardware/argyllcms-unofficial-mirror-sub001/mem"
)

// Builder makes LookupObjects from the tags of one profile.
type Builder struct {
	src  TagSource
	opts Options
}

// NewBuilder returns a builder reading from src.
func NewBuilder(src TagSource, opts Options) *Builder {
	return &Builder{src: src, opts: opts}
}

// Request names the conversion to build.
type Request struct {
	Func   Func
	Intent Intent
	PCS    ColorSpace // SpaceNone keeps the profile PCS
	Order  Order
}

// Build makes a conversion using the PCS override and search order of the
// builder options.
func (b *Builder) Build(ctx context.Context, fn Func, intent Intent) (*LookupObject, error) {
	return b.BuildRequest(ctx, Request{Func: fn, Intent: intent, PCS: b.opts.PCS, Order: b.opts.Order})
}

// BuildRequest makes the conversion described by req.
func (b *Builder) BuildRequest(ctx context.Context, req Request) (*LookupObject, error) {
	h := b.src.Header()
	start := time.Now()

	var lu *LookupObject
	var err error
	if b.opts.Telemetry {
		sctx, span := startBuildSpan(ctx, h, req.Func, req.Intent, req.Order)
		lu, err = b.build(req)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			setBuildSpanResult(span, lu.tag, lu.stages[StageLookup].Len())
		}
		span.End()
		recordBuildMetrics(sctx, h.Class, req.Func, time.Since(start), err)
	} else {
		lu, err = b.build(req)
	}

	info := BuildInfo{Class: h.Class, Func: req.Func, Intent: req.Intent, Duration: time.Since(start)}
	if err == nil {
		info.Intent = lu.intent
		info.Tag = lu.tag
		info.Steps = lu.stages[StageLookup].Len()
		log().Debug("built lookup",
			"id", lu.id.String(), "class", h.Class.String(), "func", req.Func.String(),
			"intent", lu.intent.String(), "tag", lu.tag.String(), "steps", info.Steps)
	} else {
		log().Debug("lookup build failed",
			"class", h.Class.String(), "func", req.Func.String(),
			"intent", req.Intent.String(), "err", err)
	}
	b.opts.observer().BuildDone(info, err)
	return lu, err
}

// candidate is one entry of the tag search list.
type candidate struct {
	tag       TagSig
	in, out   ColorSpace
	ina, outa bool
}

func (c candidate) isShaper() bool {
	return c.tag == TagShaperMatrix || c.tag == TagShaperMono
}

// plan is the outcome of the class rules.
type plan struct {
	intent      Intent
	eIns, eOuts ColorSpace
	eIna, eOuta bool
	cands       []candidate
}

var (
	a2bTags = [3]TagSig{TagA2B0, TagA2B1, TagA2B2}
	b2aTags = [3]TagSig{TagB2A0, TagB2A1, TagB2A2}
	preTags = [3]TagSig{TagPre0, TagPre1, TagPre2}
)

// intentTags returns the lut tags to try for intent, best first, and
// whether the PCS side is absolute.
func intentTags(tags [3]TagSig, intent Intent) ([]TagSig, bool, error) {
	switch intent {
	case IntentAbsolute:
		return []TagSig{tags[1], tags[0]}, true, nil
	case IntentRelative:
		return []TagSig{tags[1], tags[0]}, false, nil
	case IntentAbsPerceptual:
		return []TagSig{tags[0]}, true, nil
	case IntentPerceptual:
		return []TagSig{tags[0]}, false, nil
	case IntentAbsSaturation:
		return []TagSig{tags[2], tags[0]}, true, nil
	case IntentSaturation:
		return []TagSig{tags[2], tags[0]}, false, nil
	}
	return nil, false, newError(CodeIntent, "unknown intent %s", intent).with("intent", int(intent))
}

// lutPCS returns the encoding lut tags use for a PCS or PCS-like space.
func lutPCS(c ColorSpace) ColorSpace {
	switch c {
	case SpaceLab:
		return SpaceLabV2
	case SpaceXYZ:
		return SpaceXYZ16
	}
	return c
}

// devicePlan applies the rules shared by the device classes for the
// forward and backward functions.
func devicePlan(h Header, fn Func, intent Intent, ePCS ColorSpace, shapers []TagSig) (plan, error) {
	pl := plan{intent: intent}
	if pl.intent == IntentDefault {
		pl.intent = h.Intent
	}
	tdev, tpcs := lutPCS(h.ColorSpace), lutPCS(h.PCS)

	var tags []TagSig
	var abs bool
	var err error
	switch fn {
	case FuncFwd:
		pl.eIns, pl.eOuts = h.ColorSpace, ePCS
		tags, abs, err = intentTags(a2bTags, pl.intent)
		pl.eOuta = abs
		for _, t := range tags {
			pl.cands = append(pl.cands, candidate{tag: t, in: tdev, out: tpcs})
		}
	case FuncBwd:
		pl.eIns, pl.eOuts = ePCS, h.ColorSpace
		tags, abs, err = intentTags(b2aTags, pl.intent)
		pl.eIna = abs
		for _, t := range tags {
			pl.cands = append(pl.cands, candidate{tag: t, in: tpcs, out: tdev})
		}
	default:
		return pl, newError(CodeFunc, "function %s is inappropriate for %s profile", fn, h.Class)
	}
	if err != nil {
		return pl, err
	}

	// Stated forward; the search loop swaps them when it inverts.
	for _, t := range shapers {
		out := h.PCS
		if t == TagShaperMatrix {
			out = SpaceXYZ
		}
		pl.cands = append(pl.cands, candidate{tag: t, in: h.ColorSpace, out: out})
	}
	return pl, nil
}

// makePlan applies the class rules to req.
func (b *Builder) makePlan(h Header, req Request, ePCS ColorSpace) (plan, error) {
	tdev, tpcs := lutPCS(h.ColorSpace), lutPCS(h.PCS)
	intent := req.Intent

	switch h.Class {
	case ClassInput, ClassDisplay, ClassColorSpace:
		return devicePlan(h, req.Func, intent, ePCS, []TagSig{TagShaperMatrix, TagShaperMono})

	case ClassOutput:
		switch req.Func {
		case FuncFwd, FuncBwd:
			return devicePlan(h, req.Func, intent, ePCS, []TagSig{TagShaperMono})

		case FuncGamut:
			pl := plan{intent: intent, eIns: ePCS, eOuts: SpaceGray}
			if !b.opts.AllowQuirks {
				switch intent {
				case IntentDefault:
				case IntentAbsolute:
					pl.eIna = true
				default:
					return pl, newError(CodeIntent, "intent %s is unexpected for a gamut table", intent).with("intent", int(intent))
				}
			} else {
				switch intent {
				case IntentDefault:
				case IntentAbsolute:
					pl.eIna = true
				case IntentAbsPerceptual, IntentAbsSaturation:
					pl.eIna = true
					signalWarning(b.opts.Warn, CodeQuirk, "intent %s is unexpected for a gamut table", intent)
				case IntentRelative, IntentPerceptual, IntentSaturation:
					signalWarning(b.opts.Warn, CodeQuirk, "intent %s is unexpected for a gamut table, using default", intent)
					pl.intent = IntentDefault
				default:
					return pl, newError(CodeIntent, "unknown intent %s", intent).with("intent", int(intent))
				}
			}
			pl.cands = []candidate{{tag: TagGamut, in: tpcs, out: SpaceGray}}
			return pl, nil

		case FuncPreview:
			pl := plan{intent: intent, eIns: ePCS, eOuts: ePCS}
			if pl.intent == IntentDefault {
				pl.intent = h.Intent
			}
			var t TagSig
			switch pl.intent {
			case IntentPerceptual:
				t = preTags[0]
			case IntentRelative:
				t = preTags[1]
			case IntentSaturation:
				t = preTags[2]
			case IntentAbsolute, IntentAbsPerceptual, IntentAbsSaturation:
				return pl, newError(CodeIntent, "intent %s is inappropriate for a preview table", pl.intent).with("intent", int(pl.intent))
			default:
				return pl, newError(CodeIntent, "unknown intent %s", pl.intent).with("intent", int(pl.intent))
			}
			pl.cands = []candidate{{tag: t, in: tpcs, out: tpcs}}
			return pl, nil
		}
		return plan{}, newError(CodeFunc, "unknown function %s", req.Func)

	case ClassLink:
		if intent != IntentDefault && intent != h.Intent {
			return plan{}, newError(CodeIntent, "intent %s is inappropriate for a link profile", intent).with("intent", int(intent))
		}
		pl := plan{intent: h.Intent}
		switch req.Func {
		case FuncFwd:
			pl.eIns, pl.eOuts = h.ColorSpace, h.PCS
			pl.cands = []candidate{{tag: TagA2B0, in: tdev, out: tpcs}}
		case FuncBwd:
			pl.eIns, pl.eOuts = h.PCS, h.ColorSpace
			pl.cands = []candidate{{tag: TagB2A0, in: tpcs, out: tdev}}
		default:
			return pl, newError(CodeFunc, "function %s is inappropriate for a link profile", req.Func)
		}
		return pl, nil

	case ClassAbstract:
		if intent != IntentDefault && intent != IntentRelative && intent != IntentAbsolute {
			return plan{}, newError(CodeIntent, "intent %s is inappropriate for an abstract profile", intent).with("intent", int(intent))
		}
		pl := plan{intent: intent, eIns: ePCS, eOuts: ePCS}
		if intent == IntentAbsolute {
			pl.eIna, pl.eOuta = true, true
		}
		switch req.Func {
		case FuncFwd:
			pl.cands = []candidate{{tag: TagA2B0, in: tdev, out: tpcs}}
		case FuncBwd:
			pl.cands = []candidate{{tag: TagB2A0, in: tpcs, out: tdev}}
		default:
			return pl, newError(CodeFunc, "function %s is inappropriate for an abstract profile", req.Func)
		}
		return pl, nil

	case ClassNamedColor:
		return plan{}, newError(CodeNotImplemented, "named colour profiles are not implemented")
	}
	return plan{}, newError(CodeUnknownKind, "unknown profile class %s", h.Class)
}

// selectTag walks the candidates and returns the first usable transform,
// which the caller must release, with its candidate entry.
func (b *Builder) selectTag(pl plan, fn Func, order Order) (Node, candidate, error) {
	cands := slices.Clone(pl.cands)
	if order == OrderReverse {
		slices.Reverse(cands)
	}
	for _, c := range cands {
		var n Node
		var err error
		invert := fn == FuncBwd
		switch c.tag {
		case TagShaperMatrix:
			n, err = readShaperMatrix(b.src, &b.opts, invert)
		case TagShaperMono:
			n, err = readShaperMono(b.src, invert)
		default:
			n, err = b.src.ReadTag(c.tag)
		}
		if err != nil {
			log().Debug("candidate unusable", "tag", c.tag.String(), "err", err)
			continue
		}
		if n == nil {
			continue
		}
		if n.Kind() == KindUnknown {
			log().Debug("candidate of unknown kind", "tag", c.tag.String())
			n.Release()
			continue
		}
		if c.isShaper() && invert {
			c.in, c.out = c.out, c.in
			c.ina, c.outa = c.outa, c.ina
		}

		if l, ok := n.(*Lut816); ok {
			if l.Bits8() {
				c.in, c.out = lut8PCS(c.in), lut8PCS(c.out)
			}
			c.in, c.out = Sig2NormSig(c.in, false), Sig2NormSig(c.out, false)
		}

		in, out := n.Channels()
		if in != c.in.Channels() || out != c.out.Channels() {
			signalWarning(b.opts.Warn, CodeConfig, "tag %s has %d -> %d channels, expected %s -> %s",
				c.tag, in, out, c.in, c.out)
			n.Release()
			continue
		}
		return n, c, nil
	}
	return nil, candidate{}, ErrNoTransform
}

func lut8PCS(c ColorSpace) ColorSpace {
	switch c {
	case SpaceLabV2:
		return SpaceLab8
	case SpaceXYZ16:
		return SpaceXYZ8
	}
	return c
}

// bridge holds what the format state machine needs.
type bridge struct {
	illum   CIEXYZ
	toAbs   MAT3
	fromAbs MAT3
}

// appendFmt appends to seq the converters taking src to dst, including a
// change between relative and absolute colorimetry.
func (br *bridge) appendFmt(seq *Sequence, src ColorSpace, srca bool, dst ColorSpace, dsta bool) error {
	for {
		if src == dst && srca == dsta {
			return nil
		}
		st, dt := src.Type(), dst.Type()
		switch {
		case st&TypeGPCS == 0 && dt&TypeGPCS == 0 && dt&TypeNorm != 0:
			conv, tofrom, err := newNSig2Norm(dst, false)
			if err != nil {
				return err
			}
			if src != tofrom {
				return newError(CodeFmtState, "can't convert %s to %s", src, dst)
			}
			if err := appendOwned(seq, conv); err != nil {
				return err
			}
			src = dst

		case st&TypeGPCS == 0 && st&TypeNorm != 0 && dt&TypeGPCS == 0:
			conv, tofrom, err := newNSig2Norm(src, true)
			if err != nil {
				return err
			}
			if err := appendOwned(seq, conv); err != nil {
				return err
			}
			src = tofrom

		case st&TypeGPCS == 0 || dt&TypeGPCS == 0:
			return newError(CodeFmtState, "can't convert %s to %s", src, dst)

		case srca != dsta:
			if src != SpaceXYZ {
				if err := br.appendFmt(seq, src, srca, SpaceXYZ, srca); err != nil {
					return err
				}
				src = SpaceXYZ
			}
			if err := appendOwned(seq, NewAbs2Rel(br.toAbs, br.fromAbs, dsta)); err != nil {
				return err
			}
			srca = dsta

		case st&TypeNPCS != 0:
			conv, tofrom, err := newNSig2Norm(src, true)
			if err != nil {
				return err
			}
			if err := appendOwned(seq, conv); err != nil {
				return err
			}
			src = tofrom

		case src == SpaceXYZ && dt&TypeGLab != 0:
			if err := appendOwned(seq, NewXYZ2Lab(br.illum, false)); err != nil {
				return err
			}
			src = SpaceLab

		case src == SpaceLab && dt&TypeGXYZ != 0:
			if err := appendOwned(seq, NewXYZ2Lab(br.illum, true)); err != nil {
				return err
			}
			src = SpaceXYZ

		case dt&TypeNPCS != 0:
			conv, _, err := newNSig2Norm(dst, false)
			if err != nil {
				return err
			}
			if err := appendOwned(seq, conv); err != nil {
				return err
			}
			src = dst

		default:
			return newError(CodeFmtState, "can't convert %s to %s", src, dst)
		}
	}
}

// appendOwned appends n and drops the constructor reference.
func appendOwned(seq *Sequence, n Node) error {
	if n == nil {
		return nil
	}
	defer n.Release()
	return seq.Append(n)
}

func prependOwned(seq *Sequence, n Node) error {
	if n == nil {
		return nil
	}
	defer n.Release()
	return seq.Prepend(n)
}

// split returns the bounds of the core of ms: the members before ix1 and
// from ix2 on are leading and trailing per channel runs. With foldNorm a
// run with nothing but normalizations stays in the core.
func split(ms []Node, foldNorm bool) (ix1, ix2 int) {
	cnt := len(ms)
	perCh := func(n Node) bool {
		return IsNOP(n) || n.Attr().Op == OpPerCh
	}
	plain := func(n Node) bool {
		a := n.Attr()
		return a.Op == OpPerCh && !a.Norm
	}

	found := false
	for ix1 = 0; ix1 < cnt && perCh(ms[ix1]); ix1++ {
		found = found || plain(ms[ix1])
	}
	if foldNorm && !found {
		ix1 = 0
	}
	if ix1 >= cnt {
		return 0, cnt
	}

	found = false
	for ix2 = cnt - 1; ix2 > ix1 && perCh(ms[ix2]); ix2-- {
		found = found || plain(ms[ix2])
	}
	ix2++
	if foldNorm && !found {
		ix2 = cnt
	}
	return ix1, ix2
}

// normPair returns the converters into and out of a normalized encoding.
func normPair(sig ColorSpace) (toNorm, fromNorm Node, err error) {
	if toNorm, _, err = newNSig2Norm(sig, false); err != nil {
		return nil, nil, err
	}
	if fromNorm, _, err = newNSig2Norm(sig, true); err != nil {
		release(toNorm)
		return nil, nil, err
	}
	return toNorm, fromNorm, nil
}

func (b *Builder) build(req Request) (*LookupObject, error) {
	h := b.src.Header()
	ePCS := h.PCS
	if req.PCS != SpaceNone && h.Class != ClassLink {
		if req.PCS != SpaceXYZ && req.PCS != SpaceLab {
			return nil, newError(CodeConfig, "PCS override must be XYZ or Lab, got %s", req.PCS)
		}
		ePCS = req.PCS
	}

	pl, err := b.makePlan(h, req, ePCS)
	if err != nil {
		return nil, err
	}
	tt, sel, err := b.selectTag(pl, req.Func, req.Order)
	if err != nil {
		return nil, err
	}
	defer tt.Release()
	inch, outch := tt.Channels()

	lu := &LookupObject{
		id:     uuid.New(),
		class:  h.Class,
		fn:     req.Func,
		intent: pl.intent,
		order:  req.Order,
		tag:    sel.tag,
		ina:    sel.ina,
		outa:   sel.outa,
		eina:   pl.eIna,
		eouta:  pl.eOuta,
		obs:    b.opts.observer(),
		mm:     mem.NewManager(),
	}
	if err := b.initSpaces(lu, h, sel, pl, ePCS); err != nil {
		return nil, err
	}
	if err := b.initWhiteBlack(lu, h); err != nil {
		return nil, err
	}

	dims := [numStages][2]int{
		StageLookup:    {inch, outch},
		StageInput:     {inch, inch},
		StageCore3:     {inch, outch},
		StageOutput:    {outch, outch},
		StageInputFmt:  {inch, inch},
		StageInputPch:  {inch, inch},
		StageCore5:     {inch, outch},
		StageOutputPch: {outch, outch},
		StageOutputFmt: {outch, outch},
	}
	for s, d := range dims {
		lu.stages[s] = NewSequence(d[0], d[1])
	}
	if err := b.assemble(lu, tt, sel, pl); err != nil {
		lu.Release()
		return nil, err
	}
	b.chooseAlg(lu)
	return lu, nil
}

func (b *Builder) initSpaces(lu *LookupObject, h Header, sel candidate, pl plan, ePCS ColorSpace) error {
	withRange := func(info *CSInfo, sig ColorSpace) {
		info.Min, info.Max = DefaultRange(sig)
	}
	copyRange := func(dst *CSInfo, src CSInfo) {
		dst.Min, dst.Max = slices.Clone(src.Min), slices.Clone(src.Max)
	}

	lu.ini = newCSInfo(Norm2Sig(sel.in))
	lu.outi = newCSInfo(Norm2Sig(sel.out))
	lu.pcsi = newCSInfo(h.PCS)
	withRange(&lu.ini, sel.in)
	withRange(&lu.outi, sel.out)
	switch h.PCS {
	case lu.ini.Sig:
		copyRange(&lu.pcsi, lu.ini)
	case lu.outi.Sig:
		copyRange(&lu.pcsi, lu.outi)
	default:
		withRange(&lu.pcsi, h.PCS)
	}

	lu.eini = newCSInfo(pl.eIns)
	lu.eouti = newCSInfo(pl.eOuts)
	lu.epcsi = newCSInfo(ePCS)
	if pl.eIns == lu.ini.Sig {
		copyRange(&lu.eini, lu.ini)
	} else {
		withRange(&lu.eini, pl.eIns)
	}
	if pl.eOuts == lu.outi.Sig {
		copyRange(&lu.eouti, lu.outi)
	} else {
		withRange(&lu.eouti, pl.eOuts)
	}
	switch ePCS {
	case lu.eini.Sig:
		copyRange(&lu.epcsi, lu.eini)
	case lu.eouti.Sig:
		copyRange(&lu.epcsi, lu.eouti)
	default:
		withRange(&lu.epcsi, ePCS)
	}
	return nil
}

// initWhiteBlack reads the media white and black points. A missing white
// point is taken to be the PCS illuminant, a missing black point zero.
func (b *Builder) initWhiteBlack(lu *LookupObject, h Header) error {
	lu.pcsWhite = h.Illuminant
	wp, err := b.src.ReadXYZ(TagWhite)
	if err != nil {
		log().Debug("no media white point, using illuminant", "err", err)
		wp = h.Illuminant
	}
	bp, err := b.src.ReadXYZ(TagBlack)
	if err != nil {
		bp = CIEXYZ{}
		lu.blackAssumed = true
	}
	lu.white, lu.black = wp, bp

	lu.toAbs, lu.fromAbs, err = absRelMatrices(h.Illuminant, wp)
	return err
}

// assemble fills the nine pipelines of lu from the selected transform.
func (b *Builder) assemble(lu *LookupObject, tt Node, sel candidate, pl plan) error {
	br := &bridge{illum: lu.pcsWhite, toAbs: lu.toAbs, fromAbs: lu.fromAbs}
	st := &lu.stages

	inch, outch := tt.Channels()
	ttSeq := NewSequence(inch, outch)
	defer ttSeq.Release()
	if err := ttSeq.Append(tt); err != nil {
		return err
	}

	// overall
	lookup := st[StageLookup]
	if err := br.appendFmt(lookup, pl.eIns, pl.eIna, sel.in, sel.ina); err != nil {
		return err
	}
	if err := lookup.Append(ttSeq); err != nil {
		return err
	}
	if err := br.appendFmt(lookup, sel.out, sel.outa, pl.eOuts, pl.eOuta); err != nil {
		return err
	}

	// 3 part view
	ix1, ix2 := split(lookup.Members(), true)
	if err := st[StageInput].AppendFrom(lookup, 0, ix1); err != nil {
		return err
	}
	if err := st[StageCore3].AppendFrom(lookup, ix1, ix2); err != nil {
		return err
	}
	if err := st[StageOutput].AppendFrom(lookup, ix2, lookup.Len()); err != nil {
		return err
	}
	if !IsNOP(st[StageInput]) && sel.in.IsNorm() {
		toNorm, fromNorm, err := normPair(sel.in)
		if err != nil {
			return err
		}
		err1 := appendOwned(st[StageInput], fromNorm)
		err2 := prependOwned(st[StageCore3], toNorm)
		if err1 != nil {
			return err1
		}
		if err2 != nil {
			return err2
		}
	}
	if !IsNOP(st[StageOutput]) && sel.out.IsNorm() {
		toNorm, fromNorm, err := normPair(sel.out)
		if err != nil {
			return err
		}
		err1 := appendOwned(st[StageCore3], fromNorm)
		err2 := prependOwned(st[StageOutput], toNorm)
		if err1 != nil {
			return err1
		}
		if err2 != nil {
			return err2
		}
	}

	// 5 part view, split before the format conversions are added
	ix1, ix2 = split(ttSeq.Members(), false)
	if err := st[StageInputPch].AppendFrom(ttSeq, 0, ix1); err != nil {
		return err
	}
	if err := st[StageCore5].AppendFrom(ttSeq, ix1, ix2); err != nil {
		return err
	}
	if err := st[StageOutputPch].AppendFrom(ttSeq, ix2, ttSeq.Len()); err != nil {
		return err
	}
	if err := br.appendFmt(st[StageInputFmt], pl.eIns, pl.eIna, lu.ini.Sig, sel.ina); err != nil {
		return err
	}
	if err := br.appendFmt(st[StageOutputFmt], lu.outi.Sig, sel.outa, pl.eOuts, pl.eOuta); err != nil {
		return err
	}
	if sel.in.IsNorm() {
		if err := wrapNorm(sel.in, st[StageInputPch], st[StageCore5], true); err != nil {
			return err
		}
	}
	if sel.out.IsNorm() {
		if err := wrapNorm(sel.out, st[StageOutputPch], st[StageCore5], false); err != nil {
			return err
		}
	}

	for _, s := range st {
		if err := s.Err(); err != nil {
			return err
		}
	}
	return nil
}

// wrapNorm makes a per channel stage and the core of the 5 part view take
// and give full range values. pch precedes core if input, follows it
// otherwise.
func wrapNorm(sig ColorSpace, pch, core *Sequence, input bool) error {
	toNorm, fromNorm, err := normPair(sig)
	if err != nil {
		return err
	}
	defer toNorm.Release()
	defer fromNorm.Release()

	if !IsNOP(pch) {
		if err := pch.Prepend(toNorm); err != nil {
			return err
		}
		if err := pch.Append(fromNorm); err != nil {
			return err
		}
	}
	if input {
		return core.Prepend(toNorm)
	}
	return core.Append(fromNorm)
}

// chooseAlg sets the interpolation of the first clut of the conversion,
// looking through one inverter.
func (b *Builder) chooseAlg(lu *LookupObject) {
	for _, m := range lu.stages[StageLookup].Members() {
		if inv, ok := m.(*Inverter); ok {
			m = inv.Wrapped()
		}
		cl, ok := m.(*Clut)
		if !ok {
			continue
		}
		if b.opts.ForceAlg {
			cl.SetAlg(b.opts.Alg)
		} else {
			cl.ChooseAlg(lu.ini.Sig, lu.outi.Sig)
		}
		return
	}
}
