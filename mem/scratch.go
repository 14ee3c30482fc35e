package mem

import "sync"

// MaxScratchChannels bounds the channel count of a scratch point.
const MaxScratchChannels = 16

// Scratch holds the working buffers of one lookup worker.
type Scratch struct {
	In  []float64 // len == MaxScratchChannels
	Out []float64 // len == MaxScratchChannels
}

var heapScratchPool = sync.Pool{
	New: func() any { return newHeapScratch() },
}

func newHeapScratch() *Scratch {
	return &Scratch{
		In:  make([]float64, MaxScratchChannels),
		Out: make([]float64, MaxScratchChannels),
	}
}

// Reset zeroes the buffers.
func (s *Scratch) Reset() {
	clear(s.In)
	clear(s.Out)
}
