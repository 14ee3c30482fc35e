// Command icclu builds colour conversions from YAML profile descriptions
// and runs values through them.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	icc "github.com/CursedHardware/argyllcms-unofficial-mirror-sub001"
)

// rootOptions holds the global flags.
type rootOptions struct {
	Config  string
	Verbose bool
	Metrics bool
	Quirks  bool

	opts icc.Options
	reg  *prometheus.Registry
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	ro := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "icclu",
		Short:         "Build and evaluate ICC colour conversions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(ro.Verbose)
			return ro.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if ro.reg != nil {
				dumpMetrics(cmd, ro.reg)
			}
		},
	}

	cmd.PersistentFlags().StringVar(&ro.Config, "config", "", "YAML options file")
	cmd.PersistentFlags().BoolVarP(&ro.Verbose, "verbose", "v", false, "debug logging")
	cmd.PersistentFlags().BoolVar(&ro.Metrics, "metrics", false, "print collected metrics on exit")
	cmd.PersistentFlags().BoolVar(&ro.Quirks, "allow-quirks", false, "correct known vendor profile defects")

	cmd.AddCommand(newLookupCommand(ro))
	cmd.AddCommand(newInfoCommand(ro))
	cmd.AddCommand(newTACCommand(ro))
	return cmd
}

// setupLogging picks a text handler for terminals and JSON otherwise.
func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		h = slog.NewTextHandler(os.Stderr, hopts)
	} else {
		h = slog.NewJSONHandler(os.Stderr, hopts)
	}
	icc.SetLogger(slog.New(h))
}

func (ro *rootOptions) load() error {
	ro.opts = icc.DefaultOptions()
	if ro.Config != "" {
		o, err := icc.LoadOptions(ro.Config)
		if err != nil {
			return err
		}
		ro.opts = o
	}
	if ro.Quirks {
		ro.opts.AllowQuirks = true
	}
	// no exporter is installed, so spans would go nowhere
	ro.opts.Telemetry = false
	if ro.Metrics {
		ro.reg = prometheus.NewRegistry()
		ro.opts.Observer = icc.NewPromObserver(ro.reg)
	}
	return nil
}

func dumpMetrics(cmd *cobra.Command, reg *prometheus.Registry) {
	mfs, err := reg.Gather()
	if err != nil {
		slog.Warn("gather metrics", "err", err)
		return
	}
	w := cmd.ErrOrStderr()
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			labels := ""
			for _, lp := range m.GetLabel() {
				labels += fmt.Sprintf(" %s=%s", lp.GetName(), lp.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(w, "%s%s %g\n", mf.GetName(), labels, m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				fmt.Fprintf(w, "%s%s count=%d sum=%g\n", mf.GetName(), labels,
					m.GetHistogram().GetSampleCount(), m.GetHistogram().GetSampleSum())
			}
		}
	}
}
