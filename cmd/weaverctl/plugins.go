package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"weaveflow/internal/pluginengine"
)

func newPluginsCommand(env *rootEnv) *cobra.Command {
	var pluginDir string

	list := &cobra.Command{
		Use:   "list",
		Short: "Discover plugin manifests under --plugin-dir and print them",
		RunE: func(cmd *cobra.Command, args []string) error {
			if pluginDir == "" {
				return newCliError(ExitValidationError, fmt.Errorf("--plugin-dir is required"))
			}

			reg, errs := pluginengine.DiscoverAndRegister(pluginDir, env.logger)
			for _, m := range reg.Manifests {
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s v%-12s hooks=%v\n", m.PluginID, m.Version, m.Hooks)
			}
			if len(errs) > 0 {
				for _, derr := range errs {
					fmt.Fprintf(cmd.ErrOrStderr(), "weaverctl: %v\n", derr)
				}
				return newCliError(ExitPluginError, fmt.Errorf("%d plugin(s) failed to load", len(errs)))
			}
			return nil
		},
	}
	list.Flags().StringVar(&pluginDir, "plugin-dir", pluginengine.DefaultPluginsRoot, "directory of plugin subdirectories to discover")

	root := &cobra.Command{
		Use:   "plugins",
		Short: "Inspect plugins",
	}
	root.AddCommand(list)
	return root
}
