// Package cli implements feedbackctl, the admin tool for the feedback data file
// and the configured feedback store.
package cli

import (
	"fmt"

	"github.com/NomadCrew/feedback-backend/config"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "yaml"
	DataDir string

	// LoadConfig is swapped out in tests.
	LoadConfig func() (*config.Config, error)
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"json", "yaml"}

// NewRootCommand creates the root command for feedbackctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{LoadConfig: config.LoadConfig}

	cmd := &cobra.Command{
		Use:   "feedbackctl",
		Short: "Manage feedback data",
		Long:  "Initialize, inspect, seed and back up the feedback data file, and list or delete entries in the configured store.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "json", "output format (json|yaml)")
	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "feedback data directory (overrides FEEDBACK_DATA_DIR)")

	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewReadCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewBackupCommand(opts))

	return cmd
}

// config loads the service configuration and applies flag overrides.
func (o *RootOptions) config() (*config.Config, error) {
	load := o.LoadConfig
	if load == nil {
		load = config.LoadConfig
	}
	cfg, err := load()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	if o.DataDir != "" {
		cfg.Storage.DataDir = o.DataDir
	}
	return cfg, nil
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
