package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCommand(env *rootEnv) *cobra.Command {
	var graphPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Parse and construct a graph from a manifest without running it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if graphPath == "" {
				return newCliError(ExitValidationError, fmt.Errorf("--graph is required"))
			}
			g, err := loadGraph(graphPath, env.cfg.WorkDir)
			if err != nil {
				return newCliError(ExitValidationError, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d nodes\n", g.Len())
			return nil
		},
	}
	cmd.Flags().StringVar(&graphPath, "graph", "", "path to the workflow manifest")
	return cmd
}
