package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"weaveflow/internal/config"
	"weaveflow/internal/wflog"
)

// Exit code taxonomy, adapted from the teacher's internal/cli/sw exit codes.
const (
	ExitSuccess          = 0
	ExitValidationError  = 1
	ExitArgOrSystemError = 2
	ExitExecutionFailure = 3
	ExitPluginError      = 4
)

type rootEnv struct {
	v      *viper.Viper
	cfg    config.Config
	logger *wflog.Logger
}

func newRootCommand() (*cobra.Command, *rootEnv) {
	env := &rootEnv{v: viper.New()}

	root := &cobra.Command{
		Use:           "weaverctl",
		Short:         "Run and inspect incremental workflow graphs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := pflag.NewFlagSet("weaverctl", pflag.ContinueOnError)
	if err := config.RegisterFlags(env.v, flags); err != nil {
		fmt.Fprintf(os.Stderr, "weaverctl: %v\n", err)
		os.Exit(ExitArgOrSystemError)
	}
	root.PersistentFlags().AddFlagSet(flags)

	var verbose bool
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug-level logging")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// config.RegisterFlags already bound each config key directly to its
		// flag.Flag; rebinding the whole (possibly subcommand-local) flag set
		// here would pull unrelated per-command flags like --graph into
		// viper's key space and trip config.Load's unknown-field check.
		cfg, err := config.Load(env.v)
		if err != nil {
			return err
		}
		env.cfg = cfg

		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		env.logger = wflog.New(level)
		return nil
	}

	root.AddCommand(
		newValidateCommand(env),
		newRunCommand(env),
		newResumeCommand(env),
		newFreezeCommand(env),
		newInspectCommand(env),
		newPluginsCommand(env),
	)

	return root, env
}

func main() {
	root, _ := newRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "weaverctl: %v\n", err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps a returned error to a process exit code. Commands that
// need a specific code wrap their error in *cliError; anything else is
// treated as an argument or system error, mirroring the teacher's
// cli/sw.toExitCode fallback behavior.
func exitCodeFor(err error) int {
	var ce *cliError
	if asCliError(err, &ce) {
		return ce.code
	}
	return ExitArgOrSystemError
}

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }

func newCliError(code int, err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: code, err: err}
}

func asCliError(err error, target **cliError) bool {
	for err != nil {
		if ce, ok := err.(*cliError); ok {
			*target = ce
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}
