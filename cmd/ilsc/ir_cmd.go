package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ilsc/internal/ir"
)

var irCmd = &cobra.Command{
	Use:   "ir [flags] file.ils",
	Short: "Print the IR of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		noPrune, err := cmd.Flags().GetBool("no-prune")
		if err != nil {
			return err
		}
		verify, err := cmd.Flags().GetBool("verify")
		if err != nil {
			return err
		}
		c, nodes, err := lowerFile(cmd.Context(), args[0], !noPrune)
		if err != nil {
			color, _ := useColor(cmd, os.Stderr)
			return renderError(os.Stderr, err, color)
		}
		if verify {
			if err := ir.Validate(c, nodes); err != nil {
				return fmt.Errorf("ir verification failed: %w", err)
			}
		}
		return ir.Dump(cmd.OutOrStdout(), c, nodes)
	},
}

func init() {
	irCmd.Flags().Bool("no-prune", false, "keep functions nothing calls")
	irCmd.Flags().Bool("verify", false, "check IR invariants")
}
