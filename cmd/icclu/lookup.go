package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	icc "github.com/CursedHardware/argyllcms-unofficial-mirror-sub001"
)

type lookupFlags struct {
	buildFlags
	Bwd    bool
	Stages int
}

func newLookupCommand(ro *rootOptions) *cobra.Command {
	f := &lookupFlags{}
	cmd := &cobra.Command{
		Use:   "lookup <profile.yaml> [values...]",
		Short: "Convert values through a profile",
		Long: `Convert one point given as arguments, or one point per line of
standard input, through the conversion selected by the flags.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(cmd, ro, f, args[0], args[1:])
		},
	}
	f.register(cmd, "fwd")
	cmd.Flags().BoolVar(&f.Bwd, "inverse", false, "run the conversion backwards")
	cmd.Flags().IntVar(&f.Stages, "stages", 0, "evaluate through the 3 or 5 part view")
	return cmd
}

func runLookup(cmd *cobra.Command, ro *rootOptions, f *lookupFlags, path string, args []string) error {
	if f.Stages != 0 && f.Stages != 3 && f.Stages != 5 {
		return fmt.Errorf("--stages must be 3 or 5")
	}
	lu, err := build(cmd.Context(), ro, &f.buildFlags, path)
	if err != nil {
		return err
	}
	defer lu.Release()

	in, out, _ := lu.Spaces()
	nin, nout := in.Nch, out.Nch
	if f.Bwd {
		nin, nout = nout, nin
	}

	var points [][]float64
	if len(args) > 0 {
		p, err := parseValues(args)
		if err != nil {
			return err
		}
		points = append(points, p)
	} else {
		if points, err = readPoints(cmd.InOrStdin()); err != nil {
			return err
		}
	}
	for i, p := range points {
		if len(p) != nin {
			return fmt.Errorf("point %d: %d values, expected %d", i+1, len(p), nin)
		}
	}

	results := make([][]float64, len(points))
	for i := range results {
		results[i] = make([]float64, icc.MaxChan)
	}
	flags := make([]icc.Result, len(points))

	switch f.Stages {
	case 3, 5:
		stages := icc.Stages3
		if f.Stages == 5 {
			stages = icc.Stages5
		}
		for i, p := range points {
			flags[i] = lu.Chain(stages, results[i], pad(p), f.Bwd)
		}
	default:
		if len(points) == 1 {
			if f.Bwd {
				flags[0] = lu.Bwd(results[0], pad(points[0]))
			} else {
				flags[0] = lu.Fwd(results[0], pad(points[0]))
			}
			break
		}
		padded := make([][]float64, len(points))
		for i, p := range points {
			padded[i] = pad(p)
		}
		var rv icc.Result
		if f.Bwd {
			rv, err = lu.BwdBatch(cmd.Context(), results, padded)
		} else {
			rv, err = lu.FwdBatch(cmd.Context(), results, padded)
		}
		if err != nil {
			return err
		}
		for i := range flags {
			flags[i] = rv
		}
	}

	w := cmd.OutOrStdout()
	for i, r := range results {
		line := formatValues(r[:nout])
		if flags[i] != icc.ResultOK {
			line += " [" + flags[i].String() + "]"
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

func pad(p []float64) []float64 {
	v := make([]float64, icc.MaxChan)
	copy(v, p)
	return v
}

func readPoints(r io.Reader) ([][]float64, error) {
	var points [][]float64
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		p, err := parseValues(strings.Fields(line))
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, sc.Err()
}
