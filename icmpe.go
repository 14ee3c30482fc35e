package icclu

import (
	"strings"
	"sync/atomic"
)

// MaxChan is the largest channel count a node may have.
const MaxChan = 15

// Result is the bit flag outcome of a lookup. Flags from the steps of a
// pipeline are OR'd together.
type Result uint8

const (
	ResultOK      Result = 0x00
	ResultClip    Result = 0x01 // input was clipped to the domain
	ResultNum     Result = 0x04 // numerical limit hit
	ResultNotImpl Result = 0x08 // direction not implemented
	ResultCfg     Result = 0x10 // configuration error

	resultErrMask = ResultNotImpl | ResultCfg
)

// IsError reports whether r carries a flag that invalidates the output.
func (r Result) IsError() bool { return r&resultErrMask != 0 }

func (r Result) String() string {
	if r == ResultOK {
		return "ok"
	}
	var s []string
	if r&ResultClip != 0 {
		s = append(s, "clip")
	}
	if r&ResultNum != 0 {
		s = append(s, "num")
	}
	if r&ResultNotImpl != 0 {
		s = append(s, "notimpl")
	}
	if r&ResultCfg != 0 {
		s = append(s, "cfg")
	}
	return strings.Join(s, "|")
}

// Op classifies what a node does to its input.
type Op uint8

const (
	OpNOP     Op = iota // identity
	OpPerCh             // independent per channel
	OpMatrix            // linear (or treated as such)
	OpClut              // multi-dimensional table
	OpFmt               // format conversion
	OpComplex           // anything else
)

var opNames = [...]string{"nop", "perch", "matrix", "clut", "fmt", "complex"}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "op?"
}

// Attr holds the cached attributes of a node.
type Attr struct {
	Comp bool // is a sequence
	Inv  bool // is an inverse of its natural direction
	Norm bool // is a normalization only
	Op   Op
	Fwd  bool // forward lookup implemented
	Bwd  bool // backward lookup implemented
}

// Kind tags the concrete node variant.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindCurve
	KindMatrix
	KindClut
	KindCurveSet
	KindSequence
	KindLut816
	KindShaperMatrix
	KindShaperMono
	KindInverter
	KindXYZ2Lab
	KindAbs2Rel
	KindXYZ2XYZ8
	KindXYZ2XYZ16
	KindLab2Lab8
	KindLab2LabV2
	KindGeneric2Norm
	KindGridAlign
	KindNOP
	KindMono
)

var kindNames = [...]string{
	"unknown", "curve", "matrix", "clut", "curveset", "sequence", "lut816",
	"shapermatrix", "shapermono", "inverter", "xyz2lab", "abs2rel", "xyz2xyz8",
	"xyz2xyz16", "lab2lab8", "lab2labv2", "generic2norm", "gridalign", "nop", "mono",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind?"
}

// Node is a transform processing element.
//
// LookupFwd and LookupBwd may be called with out and in being the same
// slice. Both must be at least as long as the relevant channel count.
type Node interface {
	Kind() Kind
	Channels() (in, out int)
	Attr() Attr

	// Init recomputes the cached attributes. It is idempotent and only
	// needs calling after the node data has been changed in place.
	Init() error

	LookupFwd(out, in []float64) Result
	LookupBwd(out, in []float64) Result

	// Reference takes a shared reference, Release drops one. The last
	// Release releases any owned children.
	Reference()
	Release()
	Refs() int32

	// Equal is a structural comparison. Kinds without one return
	// ErrNotImplemented rather than false.
	Equal(other Node) (bool, error)

	// CopyFrom deep copies other into the receiver.
	CopyFrom(other Node) error
}

// Seq is a node made of an ordered list of member nodes.
type Seq interface {
	Node
	Members() []Node
}

// Node lifetime counters, for leak checks.
var (
	nodesCreated   atomic.Int64
	nodesDestroyed atomic.Int64
)

// NodeStats returns the number of nodes constructed and destroyed so far.
func NodeStats() (created, destroyed int64) {
	return nodesCreated.Load(), nodesDestroyed.Load()
}

// pe is the state common to every node.
type pe struct {
	kind  Kind
	inCh  int
	outCh int
	attr  Attr
	refs  atomic.Int32
}

func (p *pe) setup(kind Kind, in, out int) {
	p.kind = kind
	p.inCh = in
	p.outCh = out
	p.refs.Store(1)
	nodesCreated.Add(1)
}

func (p *pe) Kind() Kind           { return p.kind }
func (p *pe) Channels() (int, int) { return p.inCh, p.outCh }
func (p *pe) Attr() Attr           { return p.attr }
func (p *pe) Reference()           { p.refs.Add(1) }
func (p *pe) Refs() int32          { return p.refs.Load() }

func (p *pe) setAttr(op Op, fwd, bwd bool) {
	p.attr.Op = op
	p.attr.Fwd = fwd
	p.attr.Bwd = bwd
}

// unref drops a reference and reports whether it was the last one.
func (p *pe) unref() bool {
	n := p.refs.Add(-1)
	if n == 0 {
		nodesDestroyed.Add(1)
		return true
	}
	if n < 0 {
		// over-release: keep the counter pinned so we never destroy twice
		p.refs.Store(0)
	}
	return false
}

func (p *pe) checkChannels(minIn, maxIn, minOut, maxOut int) error {
	if p.inCh < minIn || p.inCh > maxIn || p.outCh < minOut || p.outCh > maxOut {
		return newError(CodeConfig, "%s: bad channel counts %d -> %d", p.kind, p.inCh, p.outCh)
	}
	return nil
}

// release drops one reference on n if it is not nil.
func release(n Node) {
	if n != nil {
		n.Release()
	}
}

// IsNOP reports whether n is absent or classified as a no-op.
func IsNOP(n Node) bool {
	return n == nil || n.Attr().Op == OpNOP
}

// asSeq returns n as a plain sequence if it is one.
func asSeq(n Node) (Seq, bool) {
	if n == nil || !n.Attr().Comp {
		return nil, false
	}
	s, ok := n.(Seq)
	return s, ok
}

func copyN(out, in []float64, n int) {
	copy(out[:n], in[:n])
}
