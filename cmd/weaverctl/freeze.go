package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"weaveflow/internal/execution"
)

// newFreezeCommand writes an initial, not-yet-run snapshot for a target:
// every node starts READY/NOT_READY/IRRELEVANT exactly as a fresh run
// would start it, without dispatching any task. This lets a caller stage a
// snapshot file ahead of time and hand it to `resume` later, e.g. from a
// separate process that owns the TaskScheduler.
func newFreezeCommand(env *rootEnv) *cobra.Command {
	var (
		graphPath string
		startKeys []string
		stopKeys  []string
	)

	cmd := &cobra.Command{
		Use:   "freeze",
		Short: "Write a not-yet-run snapshot for a target, for later resume",
		RunE: func(cmd *cobra.Command, args []string) error {
			if graphPath == "" {
				return newCliError(ExitValidationError, fmt.Errorf("--graph is required"))
			}

			g, err := loadGraph(graphPath, env.cfg.WorkDir)
			if err != nil {
				return newCliError(ExitValidationError, err)
			}

			target, err := selectTarget(g, startKeys, stopKeys)
			if err != nil {
				return newCliError(ExitValidationError, err)
			}

			exec, err := execution.New(target, noSubmitScheduler{})
			if err != nil {
				return newCliError(ExitArgOrSystemError, err)
			}

			if err := saveSnapshot(env.cfg.SnapshotPath, exec); err != nil {
				return newCliError(ExitArgOrSystemError, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "froze %d nodes to %s\n", g.Len(), env.cfg.SnapshotPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&graphPath, "graph", "", "path to the workflow manifest")
	cmd.Flags().StringSliceVar(&startKeys, "start", nil, "restrict the target to nodes reachable forward from these keys")
	cmd.Flags().StringSliceVar(&stopKeys, "stop", nil, "restrict the target to nodes reachable backward from these keys")
	return cmd
}
