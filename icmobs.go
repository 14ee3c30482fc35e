package icclu

import (
	"time"
)

// Visitor is called after each step of a traced lookup with the member
// index, the member and its output.
type Visitor func(step int, n Node, out []float64, rv Result)

// BuildInfo describes a finished Builder.Build call.
type BuildInfo struct {
	Class    ProfileClass
	Func     Func
	Intent   Intent
	Tag      TagSig // selected candidate, 0 on failure
	Steps    int    // members of the overall lookup
	Duration time.Duration
}

// Observer receives builder and lookup events. Implementations must be
// safe for concurrent use.
type Observer interface {
	BuildDone(info BuildInfo, err error)
	LookupDone(bwd bool, rv Result)
	StepDone(kind Kind, bwd bool, rv Result)
}

// nopObserver discards everything.
type nopObserver struct{}

func (nopObserver) BuildDone(BuildInfo, error)  {}
func (nopObserver) LookupDone(bool, Result)     {}
func (nopObserver) StepDone(Kind, bool, Result) {}

// stepVisitor returns a Visitor feeding obs, or nil when there is
// nothing to feed.
func stepVisitor(obs Observer, bwd bool) Visitor {
	if obs == nil {
		return nil
	}
	if _, ok := obs.(nopObserver); ok {
		return nil
	}
	return func(_ int, n Node, _ []float64, rv Result) {
		obs.StepDone(n.Kind(), bwd, rv)
	}
}
