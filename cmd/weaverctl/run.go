package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"weaveflow/internal/execution"
	"weaveflow/internal/graph"
	"weaveflow/internal/pluginengine"
	"weaveflow/internal/scheduler/pool"
	"weaveflow/internal/snapshot"
	"weaveflow/internal/telemetry"
	"weaveflow/internal/wfio"
)

func newRunCommand(env *rootEnv) *cobra.Command {
	var (
		graphPath   string
		startKeys   []string
		stopKeys    []string
		fullRerun   bool
		pluginDir   string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a workflow graph, skipping already-fresh outputs unless --no-incremental is set",
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

			reg := prometheus.NewRegistry()
			schedMetrics := telemetry.NewSchedulerMetrics(reg)
			driverMetrics := telemetry.NewDriverMetrics(reg)
			driverHooks := telemetry.NewDriverHooks(driverMetrics)

			sched := pool.New(env.cfg.Concurrency, wfio.Run, pool.WithMetrics(schedMetrics))
			defer sched.Close()

			hooks, pluginErrs, err := attachPluginHooks(pluginDir, driverHooks, env.logger)
			if err != nil {
				return newCliError(ExitPluginError, err)
			}

			var exec *execution.Execution
			if fullRerun {
				exec, err = execution.New(target, sched, execution.WithLifecycleHooks(hooks))
			} else {
				exec, err = execution.NewSkippingFresh(target, sched, execution.WithLifecycleHooks(hooks))
			}
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

			for _, perr := range pluginErrs() {
				env.logger.Printf("weaverctl: plugin error: %v", perr)
			}

			if runErr != nil {
				return newCliError(ExitExecutionFailure, runErr)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}

	cmd.Flags().StringVar(&graphPath, "graph", "", "path to the workflow manifest")
	cmd.Flags().StringSliceVar(&startKeys, "start", nil, "restrict the target to nodes reachable forward from these keys")
	cmd.Flags().StringSliceVar(&stopKeys, "stop", nil, "restrict the target to nodes reachable backward from these keys")
	cmd.Flags().BoolVar(&fullRerun, "no-incremental", false, "run every node regardless of output freshness")
	cmd.Flags().StringVar(&pluginDir, "plugin-dir", "", "directory of plugin subdirectories to discover and run")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics for this run at this address (e.g. :9090)")
	return cmd
}

// selectTarget builds a graph.Target, applying --start/--stop restrictions
// in sequence when given.
func selectTarget(g *graph.Graph, startKeys, stopKeys []string) (*graph.Target, error) {
	target := g.AsTarget()
	if len(startKeys) > 0 {
		var err error
		target, err = target.StartingFrom(startKeys...)
		if err != nil {
			return nil, fmt.Errorf("--start: %w", err)
		}
	}
	if len(stopKeys) > 0 {
		var err error
		target, err = target.StoppingAfter(stopKeys...)
		if err != nil {
			return nil, fmt.Errorf("--stop: %w", err)
		}
	}
	return target, nil
}

// attachPluginHooks discovers plugins under dir (if non-empty), wraps them
// alongside the telemetry driver hooks, and returns a function to retrieve
// accumulated plugin hook errors after the run completes.
func attachPluginHooks(dir string, driverHooks execution.LifecycleHooks, log pluginengine.Logger) (execution.LifecycleHooks, func() []error, error) {
	if dir == "" {
		return driverHooks, func() []error { return nil }, nil
	}

	reg, discoverErrs := pluginengine.DiscoverAndRegister(dir, log)
	for _, derr := range discoverErrs {
		log.Printf("weaverctl: plugin discovery: %v", derr)
	}

	plugins := make([]pluginengine.RuntimePlugin, 0, len(reg.Manifests))
	for _, m := range reg.Manifests {
		plugins = append(plugins, manifestOnlyPlugin{manifest: m})
	}

	eng, err := pluginengine.NewHookEngine(plugins, log)
	if err != nil {
		return nil, nil, err
	}
	return combineHooks(driverHooks, eng), eng.Errors, nil
}

// manifestOnlyPlugin satisfies pluginengine.RuntimePlugin for plugins whose
// manifest declares no hooks this build can execute out of process; a real
// deployment would load an executable or RPC-backed plugin here instead.
type manifestOnlyPlugin struct {
	manifest pluginengine.PluginManifest
}

func (p manifestOnlyPlugin) Manifest() pluginengine.PluginManifest { return p.manifest }

func saveSnapshot(path string, exec *execution.Execution) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return snapshot.Save(f, exec.Freeze())
}
