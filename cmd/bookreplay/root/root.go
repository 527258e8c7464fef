package root

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/flarebyte/bookreplay/cmd/bookreplay/listings"
	"github.com/flarebyte/bookreplay/cmd/bookreplay/run"
	"github.com/flarebyte/bookreplay/cmd/bookreplay/version"
	"github.com/flarebyte/bookreplay/internal/logging"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for bookreplay.
func NewRootCmd() *cobra.Command {
	var logLevel string
	cmd := &cobra.Command{
		Use:   "bookreplay",
		Short: "Replay a book chapter's listings against its example repository",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.New(logLevel, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			cmd.SetContext(logging.WithLogger(cmd.Context(), l))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logging.FromContext(cmd.Context()).Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Show help when no subcommand is provided.
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", logging.DefaultLevel, "Log level: debug, info, warn, error")

	// Subcommands
	cmd.AddCommand(version.NewCmd())
	cmd.AddCommand(run.NewCmd())
	cmd.AddCommand(listings.NewCmd())

	return cmd
}

// Execute runs the root command with provided args. SIGINT and SIGTERM
// cancel the replay, which kills the running listing command.
func Execute(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}
