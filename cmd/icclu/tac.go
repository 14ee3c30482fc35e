package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTACCommand(ro *rootOptions) *cobra.Command {
	f := &buildFlags{}
	cmd := &cobra.Command{
		Use:   "tac <profile.yaml>",
		Short: "Report the total ink limit of a PCS to device conversion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lu, err := build(cmd.Context(), ro, f, args[0])
			if err != nil {
				return err
			}
			defer lu.Release()

			tac, chmax, err := lu.TAC(nil)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "tac: %.4f\n", tac)
			fmt.Fprintf(w, "channel max: %s\n", formatValues(chmax))
			return nil
		},
	}
	f.register(cmd, "bwd")
	return cmd
}
