package icclu

// Sequence is an ordered composition of nodes. It never holds a nil
// member, a no-op member or a nested plain sequence: those are skipped or
// inlined as they are added.
//
// A structural error met while mutating is kept. Every later mutator
// returns it and lookups report ResultCfg.
type Sequence struct {
	pe
	members []Node
	dinCh   int // channels when empty
	doutCh  int
	err     error
}

// NewSequence returns an empty sequence. in and out are the channel
// counts reported while it has no members; 0 is fine if members will be
// added.
func NewSequence(in, out int) *Sequence {
	p := &Sequence{dinCh: in, doutCh: out}
	p.setup(KindSequence, in, out)
	_ = p.Init()
	return p
}

// Members returns the member list. It must not be modified.
func (p *Sequence) Members() []Node { return p.members }

// Len returns the number of members.
func (p *Sequence) Len() int { return len(p.members) }

// Err returns the stored structural error, if any.
func (p *Sequence) Err() error { return p.err }

// flatten returns the members n contributes, each with a new reference.
func flatten(n Node) ([]Node, error) {
	if IsNOP(n) {
		return nil, nil
	}
	if s, ok := asSeq(n); ok {
		var out []Node
		for _, m := range s.Members() {
			sub, err := flatten(m)
			if err != nil {
				releaseAll(out)
				return nil, err
			}
			out = append(out, sub...)
		}
		return out, nil
	}
	if inv, ok := n.(*Inverter); ok {
		if _, isSeq := asSeq(inv.Wrapped()); isSeq {
			return nil, ErrInvertedSequence
		}
	}
	n.Reference()
	return []Node{n}, nil
}

func releaseAll(ns []Node) {
	for _, n := range ns {
		n.Release()
	}
}

func (p *Sequence) fail(err error) error {
	if p.err == nil {
		p.err = err
	}
	return err
}

func (p *Sequence) splice(ix, del int, n Node) error {
	add, err := flatten(n)
	if err != nil {
		return p.fail(err)
	}
	for _, m := range p.members[ix : ix+del] {
		m.Release()
	}
	p.members = append(p.members[:ix], append(add, p.members[ix+del:]...)...)
	if err := p.Init(); err != nil {
		return p.fail(err)
	}
	return nil
}

func (p *Sequence) checkIndex(op string, ix int) error {
	if ix < 0 || ix >= len(p.members) {
		return newError(CodeRange, "sequence %s: index %d out of range 0..%d", op, ix, len(p.members)).with("index", ix)
	}
	return nil
}

// Append adds n to the end, taking a reference.
func (p *Sequence) Append(n Node) error {
	if p.err != nil {
		return p.err
	}
	return p.splice(len(p.members), 0, n)
}

// Prepend adds n to the front. An empty sequence accepts it too.
func (p *Sequence) Prepend(n Node) error {
	if p.err != nil {
		return p.err
	}
	return p.splice(0, 0, n)
}

// Insert adds n before index ix.
func (p *Sequence) Insert(ix int, n Node) error {
	if p.err != nil {
		return p.err
	}
	if err := p.checkIndex("insert", ix); err != nil {
		return err
	}
	return p.splice(ix, 0, n)
}

// Replace swaps the member at ix for n. A nil or no-op n removes it.
func (p *Sequence) Replace(ix int, n Node) error {
	if p.err != nil {
		return p.err
	}
	if err := p.checkIndex("replace", ix); err != nil {
		return err
	}
	return p.splice(ix, 1, n)
}

// Remove drops the member at ix.
func (p *Sequence) Remove(ix int) error {
	if p.err != nil {
		return p.err
	}
	if err := p.checkIndex("remove", ix); err != nil {
		return err
	}
	return p.splice(ix, 1, nil)
}

// AppendFrom appends src members start..end-1, inlining nested
// sequences. A sequence wrapped in an inverter gives ErrInvertedSequence.
func (p *Sequence) AppendFrom(src Seq, start, end int) error {
	if p.err != nil {
		return p.err
	}
	ms := src.Members()
	if start < 0 {
		start = 0
	}
	if end > len(ms) {
		end = len(ms)
	}
	for ix := start; ix < end; ix++ {
		if err := p.splice(len(p.members), 0, ms[ix]); err != nil {
			return err
		}
	}
	return nil
}

// Init recomputes the channel counts, the capabilities and the dominant
// operation. Members are expected to be initialized already.
func (p *Sequence) Init() error {
	p.attr = Attr{Comp: true, Op: OpNOP, Fwd: true, Bwd: true}
	p.inCh, p.outCh = p.dinCh, p.doutCh
	if len(p.members) == 0 {
		return nil
	}
	p.inCh, _ = p.members[0].Channels()
	_, p.outCh = p.members[len(p.members)-1].Channels()

	var count [OpComplex + 1]int
	prev := Op(255)
	lastOut := -1
	for i, m := range p.members {
		in, out := m.Channels()
		if lastOut >= 0 && in != lastOut {
			return newError(CodeConfig, "sequence: member %d (%s) takes %d channels, previous gives %d", i, m.Kind(), in, lastOut)
		}
		lastOut = out

		a := m.Attr()
		// runs of the same mergeable op count once
		if a.Op == OpClut || a.Op == OpFmt || a.Op == OpComplex || a.Op != prev {
			count[a.Op]++
		}
		prev = a.Op
		p.attr.Fwd = p.attr.Fwd && a.Fwd
		p.attr.Bwd = p.attr.Bwd && a.Bwd
	}

	others := count[OpMatrix] + count[OpClut] + count[OpFmt] + count[OpComplex]
	switch {
	case count[OpPerCh] == 0 && others == 0:
		p.attr.Op = OpNOP
	case others == 0:
		p.attr.Op = OpPerCh
	case others == 1 && count[OpMatrix] == 1:
		p.attr.Op = OpMatrix
	case others == 1 && count[OpClut] == 1:
		p.attr.Op = OpClut
	case others == 1 && count[OpFmt] == 1:
		p.attr.Op = OpFmt
	default:
		p.attr.Op = OpComplex
	}
	return nil
}

func (p *Sequence) empty(out, in []float64) Result {
	if p.inCh != p.outCh {
		return ResultCfg
	}
	copyN(out, in, p.inCh)
	return ResultOK
}

func (p *Sequence) LookupFwd(out, in []float64) Result {
	return p.Trace(out, in, false, nil)
}

func (p *Sequence) LookupBwd(out, in []float64) Result {
	return p.Trace(out, in, true, nil)
}

// Trace looks up in through every member, backwards if bwd, calling visit
// after each step. visit may be nil.
func (p *Sequence) Trace(out, in []float64, bwd bool, visit Visitor) Result {
	if p.err != nil {
		return ResultCfg
	}
	if len(p.members) == 0 {
		return p.empty(out, in)
	}
	if (!bwd && !p.attr.Fwd) || (bwd && !p.attr.Bwd) {
		return ResultNotImpl
	}

	var tmp [MaxChan]float64
	rv := ResultOK
	if !bwd {
		copyN(tmp[:], in, p.inCh)
		for i, m := range p.members {
			r := m.LookupFwd(tmp[:], tmp[:])
			rv |= r
			if visit != nil {
				_, n := m.Channels()
				visit(i, m, tmp[:n], r)
			}
		}
		copyN(out, tmp[:], p.outCh)
		return rv
	}

	copyN(tmp[:], in, p.outCh)
	for i := len(p.members) - 1; i >= 0; i-- {
		m := p.members[i]
		r := m.LookupBwd(tmp[:], tmp[:])
		rv |= r
		if visit != nil {
			n, _ := m.Channels()
			visit(i, m, tmp[:n], r)
		}
	}
	copyN(out, tmp[:], p.inCh)
	return rv
}

func (p *Sequence) Release() {
	if !p.unref() {
		return
	}
	releaseAll(p.members)
	p.members = nil
}

func (p *Sequence) Equal(other Node) (bool, error) {
	o, ok := other.(*Sequence)
	if !ok || len(o.members) != len(p.members) {
		return false, nil
	}
	for i, m := range p.members {
		if m.Kind() != o.members[i].Kind() {
			return false, nil
		}
		eq, err := m.Equal(o.members[i])
		if err != nil || !eq {
			return false, err
		}
	}
	return true, nil
}

// CopyFrom makes the receiver share the members of another sequence.
func (p *Sequence) CopyFrom(other Node) error {
	o, ok := other.(*Sequence)
	if !ok {
		return newError(CodeIncompatible, "sequence: can't copy from %s", other.Kind())
	}
	for _, m := range o.members {
		m.Reference()
	}
	releaseAll(p.members)
	p.members = append([]Node(nil), o.members...)
	p.dinCh, p.doutCh = o.dinCh, o.doutCh
	p.err = o.err
	return p.Init()
}

// ---------------------------------------------------------------------------
// Analysis. These expect a flattened sequence and report
// ErrNestedSequence otherwise.

// unwrap returns the node inside an inverter, or n.
func unwrap(n Node) Node {
	if inv, ok := n.(*Inverter); ok {
		return inv.Wrapped()
	}
	return n
}

func (p *Sequence) member(ix int, what string) (Node, error) {
	m := p.members[ix]
	if _, ok := asSeq(m); ok {
		return nil, newError(CodeNestedSeq, "%s: nested sequence at %d", what, ix)
	}
	return unwrap(m), nil
}

// curveRes folds the table sizes of a curve or curve set into res.
func curveRes(n Node, res []int, maxres int) int {
	bump := func(e, r int) {
		if r > maxres {
			maxres = r
		}
		if r > res[e] {
			res[e] = r
		}
	}
	switch c := n.(type) {
	case *Curve:
		if c.ctype == CurveTable {
			bump(0, len(c.table))
		}
	case *CurveSet:
		for e, cv := range c.curves {
			if cv.ctype == CurveTable {
				bump(e, len(cv.table))
			}
		}
	}
	return maxres
}

// endsShaper reports a node that closes the per channel run at an end.
func endsShaper(n Node) bool {
	switch n.Kind() {
	case KindMatrix, KindClut, KindMono:
		return n.Attr().Op != OpNOP
	}
	return false
}

func (p *Sequence) maxShaperRes(fromEnd bool, what string) (int, []int, error) {
	res := make([]int, MaxChan)
	maxres := 0
	n := len(p.members)
	for k := 0; k < n; k++ {
		ix := k
		if fromEnd {
			ix = n - 1 - k
		}
		m, err := p.member(ix, what)
		if err != nil {
			return 0, nil, err
		}
		if endsShaper(m) {
			break
		}
		maxres = curveRes(m, res, maxres)
	}
	return maxres, res, nil
}

// MaxInRes returns the largest table size of the per channel curves at
// the input end, overall and per channel. 0 means there are none.
func (p *Sequence) MaxInRes() (int, []int, error) {
	return p.maxShaperRes(false, "max in res")
}

// MaxOutRes is MaxInRes for the output end.
func (p *Sequence) MaxOutRes() (int, []int, error) {
	return p.maxShaperRes(true, "max out res")
}

// MaxClutRes returns the largest grid resolution of any clut, overall and
// per input channel. 0 means there is no clut.
func (p *Sequence) MaxClutRes() (int, []int, error) {
	res := make([]int, MaxChan)
	maxres := 0
	for ix := range p.members {
		m, err := p.member(ix, "max clut res")
		if err != nil {
			return 0, nil, err
		}
		if cl, ok := m.(*Clut); ok {
			for e, r := range cl.res {
				maxres = max(maxres, r)
				res[e] = max(res[e], r)
			}
		}
	}
	return maxres, res, nil
}

// LinearLightInOut reports whether the per channel stage at the input
// end (or output end if out) feeds a matrix, suggesting linear light
// values. A clut with every axis at 2 points counts as a matrix.
func (p *Sequence) LinearLightInOut(out bool) (bool, error) {
	n := len(p.members)
	for k := 0; k < n; k++ {
		ix := k
		if out {
			ix = n - 1 - k
		}
		m, err := p.member(ix, "linear light")
		if err != nil {
			return false, err
		}
		if inv, ok := m.(*Inverter); ok {
			m = inv.Wrapped()
		}
		switch m.Attr().Op {
		case OpNOP, OpPerCh, OpFmt:
			continue
		case OpComplex:
			return false, newError(CodeNestedSeq, "linear light: complex member %s at %d", m.Kind(), ix)
		}
		// only a true matrix, or a clut no finer than one, counts
		switch m.Kind() {
		case KindMatrix:
			return true, nil
		case KindClut:
			return m.(*Clut).isDegenerate(), nil
		}
		return false, nil
	}
	return false, nil
}

// GetLut returns the last clut with a reference taken, and a sequence of
// what follows it (nil if that is a no-op). Both must be released. The
// clut is nil if there is none.
func (p *Sequence) GetLut() (*Clut, *Sequence, error) {
	for ix := len(p.members) - 1; ix >= 0; ix-- {
		m := p.members[ix]
		if _, ok := asSeq(m); ok {
			return nil, nil, newError(CodeNestedSeq, "get lut: nested sequence at %d", ix)
		}
		cl, ok := m.(*Clut)
		if !ok {
			continue
		}
		_, out := cl.Channels()
		tail := NewSequence(out, out)
		if err := tail.AppendFrom(p, ix+1, len(p.members)); err != nil {
			tail.Release()
			return nil, nil, err
		}
		if IsNOP(tail) {
			tail.Release()
			tail = nil
		}
		cl.Reference()
		return cl, tail, nil
	}
	return nil, nil, nil
}

// TAC returns the total ink limit and per channel maxima of the last
// clut, passed through the rest of the sequence and cal. Without a clut
// the limit is 1.
func (p *Sequence) TAC(cal CalFunc) (float64, []float64, error) {
	cl, tail, err := p.GetLut()
	if err != nil || cl == nil {
		return 1, nil, err
	}
	defer cl.Release()
	var tn Node
	if tail != nil {
		defer tail.Release()
		tn = tail
	}
	tac, chmax := cl.TAC(tn, cal)
	return tac, chmax, nil
}

// ---------------------------------------------------------------------------

// composite is a fixed multi-stage node that looks up through an owned
// sequence of its stages. It reports itself as a sequence so containers
// inline its stages.
type composite struct {
	pe
	seq *Sequence
}

// build replaces the stage sequence with stages, skipping nil ones.
func (p *composite) build(in, out int, stages ...Node) error {
	s := NewSequence(in, out)
	for _, n := range stages {
		if n == nil {
			continue
		}
		if err := s.Append(n); err != nil {
			s.Release()
			return err
		}
	}
	if p.seq != nil {
		p.seq.Release()
	}
	p.seq = s
	p.inCh, p.outCh = in, out
	a := s.Attr()
	p.attr = Attr{Comp: true, Op: a.Op, Fwd: a.Fwd, Bwd: a.Bwd}
	return nil
}

func (p *composite) Members() []Node { return p.seq.Members() }

func (p *composite) LookupFwd(out, in []float64) Result { return p.seq.LookupFwd(out, in) }
func (p *composite) LookupBwd(out, in []float64) Result { return p.seq.LookupBwd(out, in) }

func (p *composite) release() bool {
	if !p.unref() {
		return false
	}
	if p.seq != nil {
		p.seq.Release()
		p.seq = nil
	}
	return true
}
