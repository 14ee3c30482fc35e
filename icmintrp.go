package icclu

import (
	"math"
)

// N-linear interpolation. Weights are the tensor product of the
// fractional offsets over the 2^N corners of the cell.
func (p *Clut) lookupNL(out, in []float64) Result {
	var co [MaxChan]float64
	off, rv := p.locate(&co, in)

	var sgw [256]float64
	gw := sgw[:]
	if len(p.dcube) > len(sgw) {
		gw = make([]float64, len(p.dcube))
	}
	gw[0] = 1.0
	for e := 0; e < p.inCh; e++ {
		n := 1 << e
		for k := 0; k < n; k++ {
			gw[n+k] = gw[k] * co[e]
			gw[k] *= 1.0 - co[e]
		}
	}

	var res [MaxChan]float64
	for c, d := range p.dcube {
		w := gw[c]
		gp := p.data[off+d:]
		for f := 0; f < p.outCh; f++ {
			res[f] += w * gp[f]
		}
	}
	copy(out[:p.outCh], res[:p.outCh])
	return rv
}

// Simplex interpolation. The cell is split into N! simplexes; the one
// holding the point is found by sorting the fractional offsets, and the
// N+1 vertices are visited from the base to the far corner.
func (p *Clut) lookupSX(out, in []float64) Result {
	var co [MaxChan]float64
	off, rv := p.locate(&co, in)

	// si[] sorted by ascending co[]
	var si [MaxChan]int
	n := p.inCh
	for e := 0; e < n; e++ {
		si[e] = e
	}
	for e := 1; e < n; e++ {
		for k := e; k > 0 && co[si[k-1]] > co[si[k]]; k-- {
			si[k-1], si[k] = si[k], si[k-1]
		}
	}

	var res [MaxChan]float64
	gp := off

	w := 1.0 - co[si[n-1]] // base of cell
	for f := 0; f < p.outCh; f++ {
		res[f] = w * p.data[gp+f]
	}
	for e := n - 1; e > 0; e-- {
		w = co[si[e]] - co[si[e-1]]
		gp += p.dinc[si[e]]
		for f := 0; f < p.outCh; f++ {
			res[f] += w * p.data[gp+f]
		}
	}
	w = co[si[0]]
	gp += p.dinc[si[0]] // far corner
	for f := 0; f < p.outCh; f++ {
		res[f] += w * p.data[gp+f]
	}

	copy(out[:p.outCh], res[:p.outCh])
	return rv
}

// forEachPoint calls fn with the normalized coordinate and values of
// every grid point, in table order.
func (p *Clut) forEachPoint(fn func(pos []float64, v []float64)) {
	if !p.attr.Fwd {
		return
	}
	var gc [MaxChan]int
	var pos [MaxChan]float64
	for off := 0; off < len(p.data); off += p.outCh {
		for e := 0; e < p.inCh; e++ {
			pos[e] = float64(gc[e]) / float64(p.res[e]-1)
		}
		fn(pos[:p.inCh], p.data[off:off+p.outCh])

		// last axis varies fastest
		for e := p.inCh - 1; e >= 0; e-- {
			if gc[e]++; gc[e] < p.res[e] {
				break
			}
			gc[e] = 0
		}
	}
}

// MinMax returns the normalized grid positions of the minimum and maximum
// of output channel ch, or of the sum of all outputs if ch is negative.
func (p *Clut) MinMax(ch int) (minp, maxp []float64) {
	minp = make([]float64, p.inCh)
	maxp = make([]float64, p.inCh)
	minv, maxv := math.Inf(1), math.Inf(-1)

	p.forEachPoint(func(pos, v []float64) {
		var s float64
		if ch < 0 {
			for _, x := range v {
				s += x
			}
		} else {
			s = v[ch]
		}
		if s < minv {
			minv = s
			copy(minp, pos)
		}
		if s > maxv {
			maxv = s
			copy(maxp, pos)
		}
	})
	return minp, maxp
}

// CalFunc is an optional device calibration applied to TAC samples.
type CalFunc func(out, in []float64)

// TAC returns the total ink limit and per channel maxima of the table
// outputs, optionally passed through tail and cal first.
func (p *Clut) TAC(tail Node, cal CalFunc) (tac float64, chmax []float64) {
	outn := p.outCh
	if tail != nil {
		_, outn = tail.Channels()
	}
	chmax = make([]float64, outn)

	var vv [MaxChan]float64
	p.forEachPoint(func(_ []float64, v []float64) {
		copy(vv[:], v)
		if tail != nil {
			tail.LookupFwd(vv[:], vv[:])
		}
		if cal != nil {
			cal(vv[:], vv[:])
		}
		var tot float64
		for f := 0; f < outn; f++ {
			tot += vv[f]
			if vv[f] > chmax[f] {
				chmax[f] = vv[f]
			}
		}
		if tot > tac {
			tac = tot
		}
	})
	return tac, chmax
}

// ChooseAlg picks the interpolation strategy from the native spaces of the
// transform the table belongs to.
//
// Spaces where luminance follows the diagonal of the input cube suit
// simplex, spaces with a dedicated luminance channel suit multilinear.
// Otherwise the positions of the luminance extremes in the grid are
// compared with the main diagonal.
func (p *Clut) ChooseAlg(ins, outs ColorSpace) InterpAlg {
	alg := chooseAlg(p, ins, outs)
	p.SetAlg(alg)
	return alg
}

func chooseAlg(p *Clut, ins, outs ColorSpace) InterpAlg {
	switch ins {
	case SpaceXYZ, SpaceRGB, SpaceGray, SpaceCMYK, SpaceCMY, SpaceMch6:
		return InterpSimplex
	case SpaceLab, SpaceLuv, SpaceYCbCr, SpaceYxy, SpaceHLS, SpaceHSV:
		return InterpMultilinear
	}

	lc := -2
	switch outs {
	case SpaceRGB, SpaceGray, SpaceCMYK, SpaceCMY, SpaceMch6:
		lc = -1
	case SpaceLab, SpaceLuv, SpaceYCbCr, SpaceYxy:
		lc = 0
	case SpaceXYZ, SpaceHLS:
		lc = 1
	case SpaceHSV:
		lc = 2
	}
	if lc == -2 || lc >= p.outCh {
		return InterpMultilinear
	}

	minp, maxp := p.MinMax(lc)
	var tt float64
	for e := range minp {
		minp[e] = maxp[e] - minp[e]
		tt += minp[e] * minp[e]
	}
	if tt > 0 {
		tt = math.Sqrt(tt)
	} else {
		tt = 1.0
	}
	tt *= math.Sqrt(float64(p.inCh))

	var diag float64
	for _, d := range minp {
		diag += d / tt
	}
	if math.Abs(diag) > 0.8 {
		return InterpSimplex
	}
	return InterpMultilinear
}
