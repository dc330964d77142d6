package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	resultsadapter "github.com/bnema/reaction-tally/internal/adapters/render/results"
	"github.com/bnema/reaction-tally/internal/application"
	"github.com/bnema/reaction-tally/internal/domain"
	"github.com/spf13/cobra"
)

type tallyOptions struct {
	channel    string
	publish    bool
	asJSON     bool
	page       int
	showVoters bool
}

func newTallyCmd(app *app) *cobra.Command {
	var opts tallyOptions

	cmd := &cobra.Command{
		Use:   "tally",
		Short: "Count the reaction votes in a channel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTally(cmd, app, opts)
		},
	}

	cmd.Flags().StringVar(&opts.channel, "channel", "", "Channel ID holding the option messages")
	cmd.Flags().BoolVar(&opts.publish, "publish", false, "Post winners and full results back to the channel")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Render JSON output")
	cmd.Flags().IntVar(&opts.page, "page", 1, "Full-results page to display")
	cmd.Flags().BoolVar(&opts.showVoters, "voters", false, "Include the per-voter log")
	_ = cmd.MarkFlagRequired("channel")

	return cmd
}

func runTally(cmd *cobra.Command, app *app, opts tallyOptions) error {
	settings, err := app.settings.Load(cmd.Context())
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	runtime, err := app.newTallyRuntime(cmd.Context(), settings)
	if err != nil {
		return err
	}

	tallyCmd := application.TallyCommandFromSettings(settings, domain.ChannelID(opts.channel))

	var report application.TallyReport
	run := func(ctx context.Context, progress application.ProgressFunc) error {
		tallyCmd.Progress = progress

		var runErr error
		if opts.publish {
			report, runErr = runtime.service.RunAndPublish(ctx, tallyCmd, runtime.publisher)
		} else {
			report, runErr = runtime.service.Run(ctx, tallyCmd)
		}
		return runErr
	}

	if opts.asJSON {
		if err := run(cmd.Context(), nil); err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	if err := runTallySpinner(cmd.Context(), cmd.ErrOrStderr(), run); err != nil {
		return err
	}

	rendered, err := app.resultRenderer(report, resultsadapter.RenderOptions{
		Page:         opts.page,
		ShowVoterLog: opts.showVoters,
	})
	if err != nil {
		return fmt.Errorf("render results: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
