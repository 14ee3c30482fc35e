//go:build goexperiment.arenas

package mem

import (
	"arena"
)

// Manager carries an optional arena and one reusable Scratch bundle.
// An arena is not safe for concurrent use, so every frame carves its
// Scratch from an arena of its own.
type Manager struct {
	A  *arena.Arena
	Sc *Scratch
}

func newArenaScratch(a *arena.Arena) *Scratch {
	return &Scratch{
		In:  arena.MakeSlice[float64](a, MaxScratchChannels, MaxScratchChannels),
		Out: arena.MakeSlice[float64](a, MaxScratchChannels, MaxScratchChannels),
	}
}

func NewManager() Manager {
	return Manager{A: nil, Sc: newHeapScratch()}
}

// NewArena returns a Manager whose allocations live until FreeAll.
func NewArena() Manager {
	a := arena.NewArena()
	return Manager{A: a, Sc: newArenaScratch(a)}
}

// Scratch returns the reusable scratch bundle.
func (m Manager) Scratch() *Scratch { return m.Sc }

func (m Manager) FreeAll() {
	if m.A != nil {
		m.A.Free()
	}
}

func (m Manager) IsZero() bool { return m.Sc == nil }

// NewFrame returns a child Manager with its own Scratch bundle.
// Arena-backed: the child gets a fresh arena, freed by Close.
// Heap-backed: Scratch objects are taken from a pool.
func (m Manager) NewFrame() Manager {
	if m.A != nil {
		return NewArena()
	}
	sc := heapScratchPool.Get().(*Scratch)
	sc.Reset()
	return Manager{Sc: sc}
}

// Close releases the frame's Scratch: back to the pool on the heap, or
// with its arena.
func (m Manager) Close() {
	if m.A != nil {
		m.A.Free()
		return
	}
	if m.Sc != nil {
		heapScratchPool.Put(m.Sc)
	}
}

// WithFrame runs fn with a child Manager and closes it on return.
func (m Manager) WithFrame(fn func(Manager)) {
	child := m.NewFrame()
	defer child.Close()
	fn(child)
}
