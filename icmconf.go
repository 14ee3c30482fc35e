package icclu

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Options tune how lookup objects are built.
type Options struct {
	// AllowQuirks corrects known vendor profile defects with a warning
	// instead of rejecting them.
	AllowQuirks bool

	// Order is the candidate tag search order.
	Order Order

	// PCS overrides the profile connection space of the result. SpaceNone
	// keeps the profile PCS.
	PCS ColorSpace

	// ForceAlg skips the interpolation chooser and uses Alg.
	ForceAlg bool
	Alg      InterpAlg

	// Telemetry enables the OpenTelemetry span and meters on Build.
	Telemetry bool

	// Warn receives format warnings. Nil logs them.
	Warn WarnFunc

	// Observer receives build and lookup events. Nil disables them.
	Observer Observer
}

// DefaultOptions returns the defaults. Vendor quirks are rejected unless
// AllowQuirks is set.
func DefaultOptions() Options {
	return Options{
		Order:     OrderNormal,
		Telemetry: true,
	}
}

// optionsFile is the YAML form of Options.
type optionsFile struct {
	AllowQuirks   *bool  `yaml:"allow_quirks"`
	Order         string `yaml:"order"`
	PCS           string `yaml:"pcs"`
	Interpolation string `yaml:"interpolation"`
	Telemetry     *bool  `yaml:"telemetry"`
}

// ParseOptions decodes YAML options on top of DefaultOptions.
func ParseOptions(data []byte) (Options, error) {
	opts := DefaultOptions()
	var f optionsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return opts, fmt.Errorf("parse options: %w", err)
	}
	if f.AllowQuirks != nil {
		opts.AllowQuirks = *f.AllowQuirks
	}
	if f.Telemetry != nil {
		opts.Telemetry = *f.Telemetry
	}

	switch strings.ToLower(f.Order) {
	case "", "normal":
		opts.Order = OrderNormal
	case "reverse":
		opts.Order = OrderReverse
	default:
		return opts, fmt.Errorf("parse options: unknown order %q", f.Order)
	}

	if f.PCS != "" {
		pcs, err := ParseColorSpace(f.PCS)
		if err != nil {
			return opts, fmt.Errorf("parse options: %w", err)
		}
		if pcs != SpaceXYZ && pcs != SpaceLab {
			return opts, fmt.Errorf("parse options: pcs must be XYZ or Lab, got %s", pcs)
		}
		opts.PCS = pcs
	}

	switch strings.ToLower(f.Interpolation) {
	case "", "auto":
	case "simplex":
		opts.ForceAlg, opts.Alg = true, InterpSimplex
	case "multilinear":
		opts.ForceAlg, opts.Alg = true, InterpMultilinear
	default:
		return opts, fmt.Errorf("parse options: unknown interpolation %q", f.Interpolation)
	}
	return opts, nil
}

// LoadOptions reads YAML options from path.
func LoadOptions(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultOptions(), fmt.Errorf("load options: %w", err)
	}
	return ParseOptions(data)
}

func (o *Options) observer() Observer {
	if o.Observer == nil {
		return nopObserver{}
	}
	return o.Observer
}
