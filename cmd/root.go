package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Execute runs the CLI. Cancelling ctx stops a tally from dispatching further
// options; fetches already in flight still finish.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "rt",
		Short:         "Reaction tally (rt): count emoji-reaction votes in a Discord channel",
		Long:          "rt scans a Discord channel for map options, counts each voter's reactions under a per-voter cap, ranks the options with random tie-breaks and can publish the results back to the channel.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug|info|warn|error), overrides log.level")

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		app.logger.SetOutput(cmd.ErrOrStderr())
		if logLevel == "" {
			return nil
		}
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("parse log level: %w", err)
		}
		app.logger.SetLevel(level)
		return nil
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(app),
		newAuthCmd(app),
		newTallyCmd(app),
	)

	return rootCmd
}
