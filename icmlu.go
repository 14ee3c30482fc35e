package icclu

import (
	"context"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/CursedHardware/argyllcms-unofficial-mirror-sub001/mem"
)

// Stage names one of the pipelines of a LookupObject.
type Stage int

const (
	StageLookup Stage = iota // whole conversion

	// 3 part view
	StageInput
	StageCore3
	StageOutput

	// 5 part view
	StageInputFmt
	StageInputPch
	StageCore5
	StageOutputPch
	StageOutputFmt

	numStages
)

var stageNames = [...]string{
	"lookup", "input", "core3", "output",
	"input_fmt", "input_pch", "core5", "output_pch", "output_fmt",
}

func (s Stage) String() string {
	if s >= 0 && s < numStages {
		return stageNames[s]
	}
	return "stage?"
}

// Stages3 and Stages5 list the parts of the two split views in order.
var (
	Stages3 = []Stage{StageInput, StageCore3, StageOutput}
	Stages5 = []Stage{StageInputFmt, StageInputPch, StageCore5, StageOutputPch, StageOutputFmt}
)

// AlgType is the conventional name of the algorithm a lookup amounts to.
type AlgType int

const (
	AlgLut AlgType = iota
	AlgMatrixFwd
	AlgMatrixBwd
	AlgMonoFwd
	AlgMonoBwd
)

var algTypeNames = [...]string{"lut", "matrix_fwd", "matrix_bwd", "mono_fwd", "mono_bwd"}

func (a AlgType) String() string {
	if a >= 0 && int(a) < len(algTypeNames) {
		return algTypeNames[a]
	}
	return "alg?"
}

// LookupObject is a built conversion. It is immutable and safe for
// concurrent lookups.
type LookupObject struct {
	id     uuid.UUID
	class  ProfileClass
	fn     Func
	intent Intent
	order  Order
	tag    TagSig

	// native and effective spaces
	ini, outi, pcsi        CSInfo
	eini, eouti, epcsi     CSInfo
	ina, outa, eina, eouta bool

	pcsWhite     CIEXYZ
	white        CIEXYZ
	black        CIEXYZ
	blackAssumed bool
	toAbs        MAT3
	fromAbs      MAT3

	stages [numStages]*Sequence
	obs    Observer
	mm     mem.Manager
}

// Release drops the pipelines.
func (lu *LookupObject) Release() {
	for i, s := range lu.stages {
		if s != nil {
			s.Release()
			lu.stages[i] = nil
		}
	}
}

// ID identifies the object in logs.
func (lu *LookupObject) ID() uuid.UUID { return lu.id }

func (lu *LookupObject) Class() ProfileClass { return lu.class }
func (lu *LookupObject) Func() Func          { return lu.fn }
func (lu *LookupObject) Order() Order        { return lu.order }

// Intent returns the intent in effect, after defaulting to the header
// intent where the class does so.
func (lu *LookupObject) Intent() Intent { return lu.intent }

// SourceTag returns the tag the conversion was built from.
func (lu *LookupObject) SourceTag() TagSig { return lu.tag }

// NativeSpaces describes the spaces of the selected tag.
func (lu *LookupObject) NativeSpaces() (in, out, pcs CSInfo) {
	return lu.ini, lu.outi, lu.pcsi
}

// Spaces describes the spaces of the conversion as the caller sees them,
// including any PCS override.
func (lu *LookupObject) Spaces() (in, out, pcs CSInfo) {
	return lu.eini, lu.eouti, lu.epcsi
}

// AbsFlags reports which ends are absolute colorimetric, for the tag and
// for the conversion.
func (lu *LookupObject) AbsFlags() (nativeIn, nativeOut, in, out bool) {
	return lu.ina, lu.outa, lu.eina, lu.eouta
}

// Op returns the dominant operation of the whole conversion.
func (lu *LookupObject) Op() Op { return lu.stages[StageLookup].Attr().Op }

// CanBwd reports whether Bwd is implemented.
func (lu *LookupObject) CanBwd() bool { return lu.stages[StageLookup].Attr().Bwd }

// AlgType classifies the conversion as a matrix or mono shaper in either
// direction, or a general lut.
func (lu *LookupObject) AlgType() AlgType {
	if !lu.CanBwd() {
		return AlgLut
	}
	if lu.fn == FuncFwd && IsNOP(lu.stages[StageOutputPch]) {
		switch lu.eini.Sig {
		case SpaceGray:
			return AlgMonoFwd
		case SpaceRGB, SpaceCMY:
			return AlgMatrixFwd
		}
	} else if IsNOP(lu.stages[StageInputPch]) {
		switch lu.eouti.Sig {
		case SpaceGray:
			return AlgMonoBwd
		case SpaceRGB, SpaceCMY:
			return AlgMatrixBwd
		}
	}
	return AlgLut
}

// WhiteBlack returns the PCS illuminant and the media white and black
// points, absolute XYZ. assumed is set when the profile has no black
// point and zero is returned.
func (lu *LookupObject) WhiteBlack() (pcs, white, black CIEXYZ, assumed bool) {
	return lu.pcsWhite, lu.white, lu.black, lu.blackAssumed
}

// LuWhiteBlack is WhiteBlack in the colorimetry of the conversion: relative
// unless the intent is an absolute one.
func (lu *LookupObject) LuWhiteBlack() (pcs, white, black CIEXYZ, assumed bool) {
	pcs, white, black, assumed = lu.WhiteBlack()
	switch lu.intent {
	case IntentAbsolute, IntentAbsPerceptual, IntentAbsSaturation:
		return
	}
	rel := func(c CIEXYZ) CIEXYZ {
		v := c.slice()
		mulBy3x3(v, &lu.fromAbs, v)
		return xyzOf(v)
	}
	return rel(pcs), rel(white), rel(black), assumed
}

// XYZRel2Abs converts relative XYZ to absolute for this media white.
func (lu *LookupObject) XYZRel2Abs(out, in []float64) { mulBy3x3(out, &lu.toAbs, in) }

// XYZAbs2Rel converts absolute XYZ to relative for this media white.
func (lu *LookupObject) XYZAbs2Rel(out, in []float64) { mulBy3x3(out, &lu.fromAbs, in) }

// Stage returns one of the pipelines. It must not be modified.
func (lu *LookupObject) Stage(s Stage) *Sequence { return lu.stages[s] }

// StageFwd looks up in through a single stage.
func (lu *LookupObject) StageFwd(s Stage, out, in []float64) Result {
	return lu.stages[s].LookupFwd(out, in)
}

// StageBwd looks up in backwards through a single stage.
func (lu *LookupObject) StageBwd(s Stage, out, in []float64) Result {
	return lu.stages[s].LookupBwd(out, in)
}

func (lu *LookupObject) trace(out, in []float64, bwd bool) Result {
	obs := lu.obs
	rv := lu.stages[StageLookup].Trace(out, in, bwd, stepVisitor(obs, bwd))
	obs.LookupDone(bwd, rv)
	return rv
}

// Fwd converts in through the whole conversion.
func (lu *LookupObject) Fwd(out, in []float64) Result { return lu.trace(out, in, false) }

// Bwd converts in backwards through the whole conversion.
func (lu *LookupObject) Bwd(out, in []float64) Result { return lu.trace(out, in, true) }

// Chain looks up in through the given stages in turn, backwards and in
// reverse order if bwd. Used with Stages3 or Stages5 it reproduces Fwd
// and Bwd.
func (lu *LookupObject) Chain(stages []Stage, out, in []float64, bwd bool) Result {
	var tmp [MaxChan]float64
	n, _ := lu.stages[StageLookup].Channels()
	if bwd {
		_, n = lu.stages[StageLookup].Channels()
	}
	copyN(tmp[:], in, n)
	rv := ResultOK
	for k := range stages {
		s := stages[k]
		if bwd {
			s = stages[len(stages)-1-k]
		}
		seq := lu.stages[s]
		if bwd {
			rv |= seq.LookupBwd(tmp[:], tmp[:])
			n, _ = seq.Channels()
		} else {
			rv |= seq.LookupFwd(tmp[:], tmp[:])
			_, n = seq.Channels()
		}
	}
	copyN(out, tmp[:], n)
	return rv
}

// MaxInRes returns the largest input curve table size, overall and per
// channel.
func (lu *LookupObject) MaxInRes() (int, []int, error) {
	return lu.stages[StageLookup].MaxInRes()
}

// MaxOutRes returns the largest output curve table size.
func (lu *LookupObject) MaxOutRes() (int, []int, error) {
	return lu.stages[StageLookup].MaxOutRes()
}

// MaxClutRes returns the largest clut resolution.
func (lu *LookupObject) MaxClutRes() (int, []int, error) {
	return lu.stages[StageLookup].MaxClutRes()
}

// LinearLightInOut reports an end feeding a matrix directly. It is false
// unless the PCS is XYZ.
func (lu *LookupObject) LinearLightInOut(out bool) (bool, error) {
	if lu.pcsi.Sig != SpaceXYZ {
		return false, nil
	}
	return lu.stages[StageLookup].LinearLightInOut(out)
}

// GetLut returns the clut of the conversion and what follows it; see
// Sequence.GetLut.
func (lu *LookupObject) GetLut() (*Clut, *Sequence, error) {
	return lu.stages[StageLookup].GetLut()
}

// TAC returns the total ink limit of the conversion output.
func (lu *LookupObject) TAC(cal CalFunc) (float64, []float64, error) {
	return lu.stages[StageLookup].TAC(cal)
}

// FwdBatch converts every row of in into the matching row of out,
// spreading the work over the available CPUs. It returns the combined
// result flags.
func (lu *LookupObject) FwdBatch(ctx context.Context, out, in [][]float64) (Result, error) {
	return lu.batch(ctx, out, in, false)
}

// BwdBatch is FwdBatch for the backward direction.
func (lu *LookupObject) BwdBatch(ctx context.Context, out, in [][]float64) (Result, error) {
	return lu.batch(ctx, out, in, true)
}

const batchChunk = 256

func (lu *LookupObject) batch(ctx context.Context, out, in [][]float64, bwd bool) (Result, error) {
	if len(out) != len(in) {
		return ResultCfg, newError(CodeConfig, "batch: %d outputs for %d inputs", len(out), len(in))
	}
	seq := lu.stages[StageLookup]
	nin, nout := seq.Channels()
	if bwd {
		nin, nout = nout, nin
	}

	nchunks := (len(in) + batchChunk - 1) / batchChunk
	results := make([]Result, nchunks)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for c := range nchunks {
		g.Go(func() error {
			lo := c * batchChunk
			hi := min(lo+batchChunk, len(in))
			var rv Result
			lu.mm.WithFrame(func(f mem.Manager) {
				sc := f.Scratch()
				for i := lo; i < hi; i++ {
					if i&63 == 0 && gctx.Err() != nil {
						return
					}
					copyN(sc.In, in[i], nin)
					if bwd {
						rv |= seq.LookupBwd(sc.Out, sc.In)
					} else {
						rv |= seq.LookupFwd(sc.Out, sc.In)
					}
					copyN(out[i], sc.Out, nout)
				}
			})
			results[c] = rv
			return gctx.Err()
		})
	}
	err := g.Wait()

	rv := ResultOK
	for _, r := range results {
		rv |= r
	}
	lu.obs.LookupDone(bwd, rv)
	return rv, err
}
