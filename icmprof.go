package icclu

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// TagFunc makes a fresh node for a tag on every call.
type TagFunc func() (Node, error)

// Profile is an in-memory TagSource. It is safe for concurrent reads once
// populated.
type Profile struct {
	hdr  Header
	tags map[TagSig]TagFunc
	xyz  map[TagSig]CIEXYZ
}

// NewProfile returns a profile with no tags. An unset header intent is
// taken as perceptual, the ICC header default.
func NewProfile(h Header) *Profile {
	if h.Intent == IntentDefault {
		h.Intent = IntentPerceptual
	}
	return &Profile{
		hdr:  h,
		tags: make(map[TagSig]TagFunc),
		xyz:  make(map[TagSig]CIEXYZ),
	}
}

func (p *Profile) Header() Header { return p.hdr }

// SetTagFunc sets the constructor of a transform or curve tag.
func (p *Profile) SetTagFunc(sig TagSig, fn TagFunc) { p.tags[sig] = fn }

// SetXYZ sets an XYZ number tag.
func (p *Profile) SetXYZ(sig TagSig, v CIEXYZ) { p.xyz[sig] = v }

// Tags returns the signatures present, sorted.
func (p *Profile) Tags() []TagSig {
	all := slices.Collect(maps.Keys(p.tags))
	all = append(all, slices.Collect(maps.Keys(p.xyz))...)
	slices.Sort(all)
	return all
}

func (p *Profile) ReadTag(sig TagSig) (Node, error) {
	fn, ok := p.tags[sig]
	if !ok {
		if _, isXYZ := p.xyz[sig]; isXYZ {
			return nil, newError(CodeTag, "tag %s is not a transform", sig).with("tag", sig.String())
		}
		return nil, newError(CodeTag, "tag %s not found", sig).with("tag", sig.String())
	}
	return fn()
}

func (p *Profile) ReadXYZ(sig TagSig) (CIEXYZ, error) {
	v, ok := p.xyz[sig]
	if !ok {
		return CIEXYZ{}, newError(CodeTag, "XYZ tag %s not found", sig).with("tag", sig.String())
	}
	return v, nil
}

// ---------------------------------------------------------------------------
// YAML description

type profileFile struct {
	Class      string             `yaml:"class"`
	ColorSpace string             `yaml:"colorspace"`
	PCS        string             `yaml:"pcs"`
	Intent     string             `yaml:"intent"`
	Illuminant []float64          `yaml:"illuminant"`
	CMM        string             `yaml:"cmm"`
	Tags       map[string]tagDesc `yaml:"tags"`
}

type tagDesc struct {
	XYZ   []float64 `yaml:"xyz"`
	Gamma *float64  `yaml:"gamma"`
	Table []float64 `yaml:"table"`
	Lut   *lutDesc  `yaml:"lut"`
}

type lutDesc struct {
	Bits     int         `yaml:"bits"`
	In       int         `yaml:"in"`
	Out      int         `yaml:"out"`
	Grid     int         `yaml:"grid"`
	Matrix   [][]float64 `yaml:"matrix"`
	Input    [][]float64 `yaml:"input"`
	Clut     []float64   `yaml:"clut"`
	Identity bool        `yaml:"identity"` // fill the grid with its own coordinates
	Output   [][]float64 `yaml:"output"`
}

// LoadProfile reads a YAML profile description from path.
func LoadProfile(path string, warn WarnFunc) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	p, err := ParseProfile(data, warn)
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", path, err)
	}
	return p, nil
}

// ParseProfile decodes a YAML profile description. Every tag is decoded
// once here, so format errors surface now and warnings are reported to
// warn only once.
func ParseProfile(data []byte, warn WarnFunc) (*Profile, error) {
	var f profileFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	h, err := f.header()
	if err != nil {
		return nil, err
	}
	p := NewProfile(h)
	for name, d := range f.Tags {
		sig, err := ParseTagSig(name)
		if err != nil {
			return nil, err
		}
		if d.XYZ != nil {
			v, err := xyzFrom(d.XYZ, name)
			if err != nil {
				return nil, err
			}
			p.SetXYZ(sig, v)
			continue
		}
		fn, err := d.tagFunc(name, warn)
		if err != nil {
			return nil, err
		}
		p.SetTagFunc(sig, fn)
	}
	return p, nil
}

func xyzFrom(v []float64, what string) (CIEXYZ, error) {
	if len(v) != 3 {
		return CIEXYZ{}, newError(CodeFormat, "%s: XYZ needs 3 values, got %d", what, len(v))
	}
	return CIEXYZ{X: v[0], Y: v[1], Z: v[2]}, nil
}

func (f *profileFile) header() (Header, error) {
	var h Header
	var err error
	if h.Class, err = ParseProfileClass(f.Class); err != nil {
		return h, err
	}
	if h.ColorSpace, err = ParseColorSpace(f.ColorSpace); err != nil {
		return h, err
	}
	if h.PCS, err = ParseColorSpace(f.PCS); err != nil {
		return h, err
	}
	if h.Class != ClassLink && h.PCS != SpaceXYZ && h.PCS != SpaceLab {
		return h, newError(CodeFormat, "profile PCS must be XYZ or Lab, got %s", h.PCS)
	}
	if h.Intent, err = ParseIntent(f.Intent); err != nil {
		return h, err
	}
	if h.Intent == IntentDefault {
		h.Intent = IntentPerceptual
	}
	h.Illuminant = D50
	if f.Illuminant != nil {
		if h.Illuminant, err = xyzFrom(f.Illuminant, "illuminant"); err != nil {
			return h, err
		}
	}
	h.CMMID = f.CMM
	return h, nil
}

// tagFunc validates the description by decoding it once, then returns a
// constructor that decodes it silently.
func (d tagDesc) tagFunc(name string, warn WarnFunc) (TagFunc, error) {
	n, err := d.node(name, warn)
	if err != nil {
		return nil, err
	}
	n.Release()
	quiet := func(*Error) {}
	return func() (Node, error) { return d.node(name, quiet) }, nil
}

func (d tagDesc) node(name string, warn WarnFunc) (Node, error) {
	switch {
	case d.Gamma != nil:
		return NewGammaCurve(*d.Gamma), nil
	case d.Table != nil:
		c, err := NewTableCurve(d.Table)
		if err != nil {
			return nil, err
		}
		return c, nil
	case d.Lut != nil:
		l, err := d.Lut.build(warn)
		if err != nil {
			return nil, fmt.Errorf("tag %s: %w", name, err)
		}
		return l, nil
	}
	return nil, newError(CodeFormat, "tag %s: no content", name)
}

func linearTable(n int) []float64 {
	t := make([]float64, n)
	for i := range t {
		t[i] = float64(i) / float64(n-1)
	}
	return t
}

func (l *lutDesc) build(warn WarnFunc) (*Lut816, error) {
	d := Lut816Data{
		Bits8:      l.Bits == 8,
		In:         l.In,
		Out:        l.Out,
		GridPoints: l.Grid,
		Matrix:     [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		InputTab:   l.Input,
		Clut:       l.Clut,
		OutputTab:  l.Output,
	}
	if l.Bits != 8 && l.Bits != 16 {
		return nil, newError(CodeFormat, "lut: bits must be 8 or 16, got %d", l.Bits)
	}
	if l.Matrix != nil {
		if len(l.Matrix) != 3 {
			return nil, newError(CodeFormat, "lut: matrix needs 3 rows")
		}
		for i, row := range l.Matrix {
			if len(row) != 3 {
				return nil, newError(CodeFormat, "lut: matrix row %d needs 3 values", i)
			}
			copy(d.Matrix[i][:], row)
		}
	}
	ent := 2
	if d.Bits8 {
		ent = 256
	}
	if d.InputTab == nil {
		for range l.In {
			d.InputTab = append(d.InputTab, linearTable(ent))
		}
	}
	if d.OutputTab == nil {
		for range l.Out {
			d.OutputTab = append(d.OutputTab, linearTable(ent))
		}
	}
	if l.Identity {
		if l.In != l.Out || l.Grid < 2 {
			return nil, newError(CodeFormat, "lut: identity grid needs in == out and grid >= 2")
		}
		d.Clut = identityGrid(l.In, l.Grid)
	}
	return NewLut816(d, warn)
}

// identityGrid returns an n input, n output table whose values are the
// grid coordinates, first channel slowest.
func identityGrid(n, res int) []float64 {
	total := n
	for range n {
		total *= res
	}
	data := make([]float64, 0, total)
	gc := make([]int, n)
	for len(data) < total {
		for e := 0; e < n; e++ {
			data = append(data, float64(gc[e])/float64(res-1))
		}
		for e := n - 1; e >= 0; e-- {
			if gc[e]++; gc[e] < res {
				break
			}
			gc[e] = 0
		}
	}
	return data
}
