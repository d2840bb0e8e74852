// Package cli defines the portside command line surface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/portside/portside/internal/app"
)

// RootOptions holds the flags shared by the dashboard invocation.
type RootOptions struct {
	ConfigPath string
	PrefsPath  string
	Host       string
}

// NewRootCommand creates the root command. Running it with no subcommand
// starts the dashboard.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:          "portside",
		Short:        "portside - terminal dashboard for a container engine",
		Long:         "A keyboard-driven terminal dashboard for containers, images, volumes, networks and compose projects.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), app.Options{
				ConfigPath: opts.ConfigPath,
				PrefsPath:  opts.PrefsPath,
				Host:       opts.Host,
			})
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file path (default ~/.config/portside/config.toml)")
	cmd.PersistentFlags().StringVar(&opts.PrefsPath, "prefs", "", "preferences file path (default ~/.config/portside/prefs.toml)")
	cmd.PersistentFlags().StringVar(&opts.Host, "host", "", "engine host (overrides config, e.g. unix:///var/run/docker.sock)")

	cmd.AddCommand(NewVersionCommand())

	return cmd
}
