package icclu

import (
	"math"
)

// revIndex accelerates the inverse lookup of a sampled curve. The value
// range of the table is split into buckets, each listing the table
// segments whose span touches it.
type revIndex struct {
	data    []float64
	rmin    float64
	rmax    float64
	qscale  float64
	buckets [][]int32
}

func newRevIndex(data []float64) *revIndex {
	n := len(data)
	r := &revIndex{data: data, rmin: math.Inf(1), rmax: math.Inf(-1)}

	for _, v := range data {
		if v < r.rmin {
			r.rmin = v
		}
		if v > r.rmax {
			r.rmax = v
		}
	}

	rsize := (n + 2) / 2
	r.buckets = make([][]int32, rsize)
	if r.rmax-r.rmin > 1e-12 {
		r.qscale = float64(rsize) / (r.rmax - r.rmin)
	}

	for i := 0; i < n-1; i++ {
		s := r.bucket(data[i])
		e := r.bucket(data[i+1])
		if s > e {
			s, e = e, s
		}
		for j := s; j <= e; j++ {
			r.buckets[j] = append(r.buckets[j], int32(i))
		}
	}
	return r
}

// bucket maps a value to its clamped bucket index. NaN maps to 0.
func (r *revIndex) bucket(v float64) int {
	val := (v - r.rmin) * r.qscale
	if !(val > 0) {
		val = 0
	}
	if top := float64(len(r.buckets) - 1); val > top {
		val = top
	}
	return int(val)
}

// lookup returns the table position (0..1) that produces in.
func (r *revIndex) lookup(in float64) (float64, Result) {
	n := len(r.data)
	scale := 1.0 / float64(n-1)

	for _, k := range r.buckets[r.bucket(in)] {
		lv := r.data[k]
		hv := r.data[k+1]
		if (in >= lv && in <= hv) || (in <= lv && in >= hv) {
			if hv == lv {
				return (float64(k) + 0.5) * scale, ResultOK
			}
			return (float64(k) + (in-lv)/(hv-lv)) * scale, ResultOK
		}
	}

	// Out of range or a gap in a non-monotonic table
	best, bi := math.Inf(1), 0
	for i, v := range r.data {
		if d := math.Abs(v - in); d < best {
			best, bi = d, i
		}
	}
	return float64(bi) * scale, ResultClip
}
