package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var owner int64

	root := &cobra.Command{
		Use:           "kumarajiva",
		Short:         "Spaced-repetition vocabulary trainer",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd.Context())
		},
	}
	root.PersistentFlags().Int64Var(&owner, "owner", 0, "user id whose vocabulary to use (0 = shared legacy vocabulary)")

	root.AddCommand(
		&cobra.Command{
			Use:   "bot",
			Short: "Run the Telegram study bot",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runBot(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations and exit",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigrate(cmd.Context())
			},
		},
		newImportCmd(&owner),
		newExportCmd(&owner),
	)
	return root
}
