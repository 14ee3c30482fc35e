package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	icc "github.com/CursedHardware/argyllcms-unofficial-mirror-sub001"
)

// buildFlags select the conversion to build.
type buildFlags struct {
	Func   string
	Intent string
	PCS    string
	Order  string
}

func (f *buildFlags) register(cmd *cobra.Command, defFunc string) {
	cmd.Flags().StringVarP(&f.Func, "func", "f", defFunc, "lookup function (fwd|bwd|gamut|preview)")
	cmd.Flags().StringVarP(&f.Intent, "intent", "i", "default", "rendering intent (p|r|s|a|ap|as)")
	cmd.Flags().StringVar(&f.PCS, "pcs", "", "PCS override (XYZ|Lab)")
	cmd.Flags().StringVar(&f.Order, "order", "", "tag search order (normal|reverse)")
}

func (f *buildFlags) request(opts icc.Options) (icc.Request, error) {
	req := icc.Request{PCS: opts.PCS, Order: opts.Order}
	var err error
	if req.Func, err = icc.ParseFunc(f.Func); err != nil {
		return req, err
	}
	if req.Intent, err = icc.ParseIntent(f.Intent); err != nil {
		return req, err
	}
	if f.PCS != "" {
		if req.PCS, err = icc.ParseColorSpace(f.PCS); err != nil {
			return req, err
		}
	}
	switch strings.ToLower(f.Order) {
	case "":
	case "normal":
		req.Order = icc.OrderNormal
	case "reverse":
		req.Order = icc.OrderReverse
	default:
		return req, fmt.Errorf("unknown order %q", f.Order)
	}
	return req, nil
}

// build loads the profile at path and builds the conversion the flags
// describe.
func build(ctx context.Context, ro *rootOptions, f *buildFlags, path string) (*icc.LookupObject, error) {
	prof, err := icc.LoadProfile(path, ro.opts.Warn)
	if err != nil {
		return nil, err
	}
	req, err := f.request(ro.opts)
	if err != nil {
		return nil, err
	}
	return icc.NewBuilder(prof, ro.opts).BuildRequest(ctx, req)
}

func parseValues(fields []string) ([]float64, error) {
	v := make([]float64, 0, len(fields))
	for _, s := range fields {
		x, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("bad value %q: %w", s, err)
		}
		v = append(v, x)
	}
	return v, nil
}

func formatValues(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'f', 6, 64)
	}
	return strings.Join(parts, " ")
}
