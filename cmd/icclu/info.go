package main

import (
	"fmt"

	"github.com/spf13/cobra"

	icc "github.com/CursedHardware/argyllcms-unofficial-mirror-sub001"
)

func newInfoCommand(ro *rootOptions) *cobra.Command {
	f := &buildFlags{}
	cmd := &cobra.Command{
		Use:   "info <profile.yaml>",
		Short: "Describe a profile and the conversion selected by the flags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd, ro, f, args[0])
		},
	}
	f.register(cmd, "fwd")
	return cmd
}

func runInfo(cmd *cobra.Command, ro *rootOptions, f *buildFlags, path string) error {
	prof, err := icc.LoadProfile(path, ro.opts.Warn)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	h := prof.Header()
	fmt.Fprintf(w, "class:      %s\n", h.Class)
	fmt.Fprintf(w, "colorspace: %s\n", h.ColorSpace)
	fmt.Fprintf(w, "pcs:        %s\n", h.PCS)
	fmt.Fprintf(w, "intent:     %s\n", h.Intent)
	fmt.Fprint(w, "tags:      ")
	for _, t := range prof.Tags() {
		fmt.Fprintf(w, " %s", t)
	}
	fmt.Fprintln(w)

	req, err := f.request(ro.opts)
	if err != nil {
		return err
	}
	lu, err := icc.NewBuilder(prof, ro.opts).BuildRequest(cmd.Context(), req)
	if err != nil {
		return err
	}
	defer lu.Release()

	nin, nout, npcs := lu.NativeSpaces()
	ein, eout, epcs := lu.Spaces()
	fmt.Fprintf(w, "\nconversion %s (%s, %s)\n", lu.ID(), lu.Func(), lu.Intent())
	fmt.Fprintf(w, "  source tag:  %s\n", lu.SourceTag())
	fmt.Fprintf(w, "  native:      %s -> %s (pcs %s)\n", nin.Sig, nout.Sig, npcs.Sig)
	fmt.Fprintf(w, "  effective:   %s -> %s (pcs %s)\n", ein.Sig, eout.Sig, epcs.Sig)
	fmt.Fprintf(w, "  in range:    %v .. %v\n", ein.Min, ein.Max)
	fmt.Fprintf(w, "  out range:   %v .. %v\n", eout.Min, eout.Max)
	fmt.Fprintf(w, "  op:          %s (bwd %t)\n", lu.Op(), lu.CanBwd())
	fmt.Fprintf(w, "  algorithm:   %s\n", lu.AlgType())

	_, white, black, assumed := lu.WhiteBlack()
	fmt.Fprintf(w, "  white:       %.4f %.4f %.4f\n", white.X, white.Y, white.Z)
	fmt.Fprintf(w, "  black:       %.4f %.4f %.4f", black.X, black.Y, black.Z)
	if assumed {
		fmt.Fprint(w, " (assumed)")
	}
	fmt.Fprintln(w)

	if res, _, err := lu.MaxInRes(); err == nil {
		fmt.Fprintf(w, "  in res:      %d\n", res)
	}
	if res, _, err := lu.MaxClutRes(); err == nil {
		fmt.Fprintf(w, "  clut res:    %d\n", res)
	}
	if res, _, err := lu.MaxOutRes(); err == nil {
		fmt.Fprintf(w, "  out res:     %d\n", res)
	}
	for _, out := range []bool{false, true} {
		if ll, err := lu.LinearLightInOut(out); err == nil && ll {
			end := "input"
			if out {
				end = "output"
			}
			fmt.Fprintf(w, "  linear light %s\n", end)
		}
	}

	fmt.Fprintln(w, "  stages:")
	stages := append([]icc.Stage{icc.StageLookup}, icc.Stages3...)
	for _, s := range append(stages, icc.Stages5...) {
		seq := lu.Stage(s)
		fmt.Fprintf(w, "    %-10s", s)
		for _, m := range seq.Members() {
			fmt.Fprintf(w, " %s", m.Kind())
		}
		fmt.Fprintln(w)
	}
	return nil
}
