package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ilsc/internal/diag"
	"ilsc/internal/ir"
)

var cfgCmd = &cobra.Command{
	Use:   "cfg [flags] file.ils",
	Short: "Print the control-flow graph of a file as Graphviz DOT",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dead, err := cmd.Flags().GetBool("dead")
		if err != nil {
			return err
		}
		color, _ := useColor(cmd, os.Stderr)
		c, nodes, err := lowerFile(cmd.Context(), args[0], true)
		if err != nil {
			return renderError(os.Stderr, err, color)
		}
		g, err := ir.BuildGraph(nodes)
		if err != nil {
			return renderError(os.Stderr, diag.InFile(err, c.File), color)
		}
		if !dead {
			return g.WriteDOT(cmd.OutOrStdout(), c)
		}
		for _, b := range g.Parentless() {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), b.Label); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	cfgCmd.Flags().Bool("dead", false, "list blocks nothing jumps to instead of the graph")
}
