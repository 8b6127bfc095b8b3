package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/NomadCrew/feedback-backend/internal/store/backend"
	"github.com/NomadCrew/feedback-backend/types"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the data directory and reset the data file to an empty array",
		Long: `Create the feedback data directory if needed and overwrite the data file
with an empty array. Existing entries are discarded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(rootOpts, cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

func runInit(rootOpts *RootOptions, cmd *cobra.Command) error {
	cfg, err := rootOpts.config()
	if err != nil {
		return err
	}
	st := backend.OpenFile(&cfg.Storage)
	if err := st.Reset(cmd.Context()); err != nil {
		return WrapExitError(ExitFailure, "failed to initialize data file", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s\n", st.Path())
	return nil
}

// NewReadCommand creates the read command.
func NewReadCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "read",
		Short: "Print the content of the data file",
		Long: `Print the feedback data file. The file is never modified: with --format json
the bytes are printed as stored, with --format yaml the content is converted and
content that does not parse is reported as an error.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRead(rootOpts, cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

func runRead(rootOpts *RootOptions, cmd *cobra.Command) error {
	cfg, err := rootOpts.config()
	if err != nil {
		return err
	}
	path := backend.OpenFile(&cfg.Storage).Path()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewExitError(ExitFailure, fmt.Sprintf("file does not exist: %s", path))
	}
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read data file", err)
	}
	if rootOpts.Verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "Content of %s (%d bytes):\n", path, len(data))
	}

	out := cmd.OutOrStdout()
	if rootOpts.Format != "yaml" {
		if _, err := out.Write(data); err != nil {
			return err
		}
		if len(data) > 0 && data[len(data)-1] != '\n' {
			_, err = fmt.Fprintln(out)
		}
		return err
	}

	if !json.Valid(data) {
		return NewExitError(ExitFailure, fmt.Sprintf("data file is not valid JSON: %s", path))
	}
	// JSON is a subset of YAML, so the stored content parses as-is.
	var content any
	if err := yaml.Unmarshal(data, &content); err != nil {
		return WrapExitError(ExitFailure, "failed to convert data file", err)
	}
	return writeValue(out, rootOpts.Format, content)
}

type seedOptions struct {
	count int
}

// sampleFeedback is cycled through when seeding.
var sampleFeedback = []types.Feedback{
	{FullName: "Test User", Email: "test@example.com", Message: "This is a test feedback message"},
	{FullName: "Another User", Email: "another@example.com", Message: "This is another test feedback message"},
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &seedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Append sample entries to the data file",
		Long: `Append sample entries to the feedback data file, creating it if needed.
A file that does not hold a JSON array is reset before the samples are added.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(rootOpts, opts, cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().IntVar(&opts.count, "count", len(sampleFeedback), "number of entries to add")

	return cmd
}

func runSeed(rootOpts *RootOptions, opts *seedOptions, cmd *cobra.Command) error {
	if opts.count < 1 {
		return NewExitError(ExitCommandError, "--count must be at least 1")
	}
	cfg, err := rootOpts.config()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	st := backend.OpenFile(&cfg.Storage)
	if err := st.Initialize(ctx); err != nil {
		return WrapExitError(ExitFailure, "failed to prepare data file", err)
	}
	records, err := st.ReadAll(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read data file", err)
	}

	now := time.Now().UTC()
	for i := 0; i < opts.count; i++ {
		record := sampleFeedback[i%len(sampleFeedback)]
		if i >= len(sampleFeedback) {
			record.FullName = fmt.Sprintf("%s %d", record.FullName, i+1)
		}
		record.ID = types.FeedbackID(uuid.NewString())
		record.CreatedAt = types.FormatTimestamp(now)
		records = append(records, record)
	}

	if err := st.WriteAll(ctx, records); err != nil {
		return WrapExitError(ExitFailure, "failed to write data file", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %d entries to %s (%d total)\n", opts.count, st.Path(), len(records))
	if rootOpts.Verbose {
		return writeValue(cmd.OutOrStdout(), rootOpts.Format, records)
	}
	return nil
}
