//go:build !goexperiment.arenas

package mem

// Manager allocates from the regular Go heap in this build and carries one
// reusable Scratch bundle.
type Manager struct {
	Sc *Scratch
}

// NewManager returns a Manager using standard allocation.
func NewManager() Manager { return Manager{Sc: newHeapScratch()} }

// Scratch returns the reusable scratch bundle.
func (m Manager) Scratch() *Scratch { return m.Sc }

// FreeAll is a no-op on the heap build.
func (Manager) FreeAll() {}

func (m Manager) IsZero() bool { return m.Sc == nil }

// NewFrame returns a child Manager with a pooled Scratch bundle.
func (m Manager) NewFrame() Manager {
	sc := heapScratchPool.Get().(*Scratch)
	sc.Reset()
	return Manager{Sc: sc}
}

// Close returns the Scratch bundle to the pool.
func (m Manager) Close() {
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
