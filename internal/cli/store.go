package cli

import (
	"errors"
	"fmt"

	"github.com/NomadCrew/feedback-backend/internal/store"
	"github.com/NomadCrew/feedback-backend/internal/store/backend"
	"github.com/NomadCrew/feedback-backend/types"
	"github.com/spf13/cobra"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List feedback in the configured store",
		Long: `List every feedback entry held by the store selected with STORAGE_BACKEND
(file, postgres or supabase).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

func runList(rootOpts *RootOptions, cmd *cobra.Command) error {
	cfg, err := rootOpts.config()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	opened, err := backend.Open(ctx, cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open store", err)
	}
	defer opened.Close()

	if err := opened.Store.Initialize(ctx); err != nil {
		return WrapExitError(ExitFailure, "storage unavailable", err)
	}
	records, err := opened.Store.ListFeedback(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to list feedback", err)
	}
	if records == nil {
		records = []types.Feedback{}
	}
	if rootOpts.Verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d entries in %s store\n", len(records), opened.Backend)
	}
	return writeValue(cmd.OutOrStdout(), rootOpts.Format, records)
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a feedback entry by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(rootOpts, args[0], cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

func runDelete(rootOpts *RootOptions, id string, cmd *cobra.Command) error {
	if id == "" {
		return NewExitError(ExitCommandError, "feedback id is required")
	}
	cfg, err := rootOpts.config()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	opened, err := backend.Open(ctx, cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open store", err)
	}
	defer opened.Close()

	err = opened.Store.DeleteFeedback(ctx, id)
	switch {
	case errors.Is(err, store.ErrStorageMissing):
		return NewExitError(ExitFailure, "no feedback data found")
	case errors.Is(err, store.ErrNotFound):
		return NewExitError(ExitFailure, fmt.Sprintf("feedback %s not found", id))
	case err != nil:
		return WrapExitError(ExitFailure, "failed to delete feedback", err)
	}
	return writeValue(cmd.OutOrStdout(), rootOpts.Format, types.MessageResponse{Message: "Feedback deleted successfully"})
}
