package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"weaveflow/internal/execution"
	"weaveflow/internal/scheduler/pool"
	"weaveflow/internal/snapshot"
	"weaveflow/internal/telemetry"
	"weaveflow/internal/wfio"
)

func newResumeCommand(env *rootEnv) *cobra.Command {
	var (
		graphPath   string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Continue a run from a previously frozen snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			if graphPath == "" {
				return newCliError(ExitValidationError, fmt.Errorf("--graph is required"))
			}

			g, err := loadGraph(graphPath, env.cfg.WorkDir)
			if err != nil {
				return newCliError(ExitValidationError, err)
			}

			snapFile, err := os.Open(env.cfg.SnapshotPath)
			if err != nil {
				return newCliError(ExitArgOrSystemError, fmt.Errorf("open snapshot %q: %w", env.cfg.SnapshotPath, err))
			}
			frozen, err := snapshot.Load(snapFile, g)
			snapFile.Close()
			if err != nil {
				return newCliError(ExitValidationError, err)
			}

			reg := prometheus.NewRegistry()
			schedMetrics := telemetry.NewSchedulerMetrics(reg)
			driverMetrics := telemetry.NewDriverMetrics(reg)
			driverHooks := telemetry.NewDriverHooks(driverMetrics)

			sched := pool.New(env.cfg.Concurrency, wfio.Run, pool.WithMetrics(schedMetrics))
			defer sched.Close()

			exec, err := execution.Thaw(frozen, sched, execution.WithLifecycleHooks(driverHooks))
			if err != nil {
				return newCliError(ExitArgOrSystemError, err)
			}
			driverHooks.Attach(exec)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			serveMetrics(ctx, metricsAddr, reg, env.logger)

			runErr := exec.Run(ctx)
			if saveErr := saveSnapshot(env.cfg.SnapshotPath, exec); saveErr != nil {
				env.logger.Printf("weaverctl: failed to persist snapshot: %v", saveErr)
			}
			if runErr != nil {
				return newCliError(ExitExecutionFailure, runErr)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}

	cmd.Flags().StringVar(&graphPath, "graph", "", "path to the workflow manifest matching the frozen snapshot")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics for this run at this address (e.g. :9090)")
	return cmd
}
