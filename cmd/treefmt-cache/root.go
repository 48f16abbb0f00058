package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/treefmt-pre-commit/treefmt-shim/internal/app"
	"github.com/treefmt-pre-commit/treefmt-shim/internal/config"
)

// rootOptions holds the global flags.
type rootOptions struct {
	configFile string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "treefmt-cache",
		Short: "Manage the treefmt binary cache",
		Long: `treefmt-cache manages the per-user cache the treefmt shim installs
release binaries into.

Settings come from TREEFMT_PRE_COMMIT_* environment variables and an
optional settings file, the same sources the shim reads.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "settings file (default $"+config.ConfigFileEnv+")")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(newInstallCmd(opts))
	cmd.AddCommand(newPathCmd(opts))
	cmd.AddCommand(newPlatformCmd(opts))
	cmd.AddCommand(newStatusCmd(opts))
	cmd.AddCommand(newUnlockCmd(opts))

	return cmd
}

// load builds the application components for a subcommand. Logs go to the
// command's stderr.
func (o *rootOptions) load(cmd *cobra.Command) (*app.App, error) {
	settings, err := config.Load(config.LoadOptions{
		ConfigFile: o.configFile,
		Version:    Version,
	})
	if err != nil {
		return nil, err
	}

	if o.logLevel != "" {
		if _, err := log.ParseLevel(o.logLevel); err != nil {
			return nil, fmt.Errorf("invalid --log-level: %w", err)
		}
		settings.LogLevel = o.logLevel
	}

	return app.FromSettings(settings, cmd.ErrOrStderr())
}

// resolveVersion returns the --version flag value normalized, or the
// configured version when the flag is unset.
func resolveVersion(flag string, a *app.App) (string, error) {
	if flag == "" {
		return a.Settings.Version, nil
	}
	return config.NormalizeVersion(flag)
}
