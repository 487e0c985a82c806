package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"weaveflow/internal/snapshot"
)

func newInspectCommand(env *rootEnv) *cobra.Command {
	var graphPath string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print per-node status from a frozen snapshot, in topological order",
		RunE: func(cmd *cobra.Command, args []string) error {
			if graphPath == "" {
				return newCliError(ExitValidationError, fmt.Errorf("--graph is required"))
			}

			g, err := loadGraph(graphPath, env.cfg.WorkDir)
			if err != nil {
				return newCliError(ExitValidationError, err)
			}

			f, err := os.Open(env.cfg.SnapshotPath)
			if err != nil {
				return newCliError(ExitArgOrSystemError, fmt.Errorf("open snapshot %q: %w", env.cfg.SnapshotPath, err))
			}
			defer f.Close()

			frozen, err := snapshot.Load(f, g)
			if err != nil {
				return newCliError(ExitValidationError, err)
			}

			out := cmd.OutOrStdout()
			for _, n := range g.TopologicalOrder() {
				st := frozen.Statuses[n.Key()]
				fmt.Fprintf(out, "%-32s %s\n", n.Key(), st.State)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&graphPath, "graph", "", "path to the workflow manifest matching the frozen snapshot")
	return cmd
}
