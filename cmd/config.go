package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bnema/reaction-tally/internal/domain"
	"github.com/spf13/cobra"
)

func newConfigCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage tally settings",
	}

	cmd.AddCommand(
		newConfigInitCmd(app),
		newConfigShowCmd(app),
		newConfigValidateCmd(app),
		newConfigSetRulesCmd(app),
	)

	return cmd
}

func newConfigInitCmd(app *app) *cobra.Command {
	var guildID string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default settings file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			exists, err := app.settings.Exists(cmd.Context())
			if err != nil {
				return err
			}
			if exists && !force {
				return fmt.Errorf("settings already exist at %s (use --force to overwrite)", app.settings.Path())
			}

			settings := domain.DefaultSettings()
			settings.Discord.GuildID = guildID
			if err := app.settings.Save(cmd.Context(), settings); err != nil {
				return fmt.Errorf("write settings: %w", err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote settings to %s\n", app.settings.Path())
			return err
		},
	}

	cmd.Flags().StringVar(&guildID, "guild", "", "Discord guild (server) ID")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing settings file")

	return cmd
}

func newConfigShowCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := app.settings.Load(cmd.Context())
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(settings)
		},
	}
}

func newConfigValidateCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the settings a tally run depends on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := app.settings.Load(cmd.Context())
			if err != nil {
				return err
			}
			if err := settings.Validate(); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Settings OK (%s)\n", app.settings.Path())
			return err
		},
	}
}

func newConfigSetRulesCmd(app *app) *cobra.Command {
	var maxVotes int
	var winners int

	cmd := &cobra.Command{
		Use:   "set-rules",
		Short: "Set the per-voter vote cap and the number of winners",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			if !flags.Changed("max-votes") && !flags.Changed("winners") {
				return errors.New("at least one of --max-votes or --winners is required")
			}

			settings, err := app.settings.Load(cmd.Context())
			if err != nil {
				return err
			}
			if flags.Changed("max-votes") {
				settings.Voting.MaxVotesPerVoter = maxVotes
			}
			if flags.Changed("winners") {
				settings.Voting.NumberOfWinners = winners
			}
			if err := settings.Voting.Validate(); err != nil {
				return fmt.Errorf("%w: %w", domain.ErrInvalidSettings, err)
			}
			if err := app.settings.Save(cmd.Context(), settings); err != nil {
				return fmt.Errorf("write settings: %w", err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Voting rules: %d votes per voter, %d winners\n",
				settings.Voting.MaxVotesPerVoter, settings.Voting.NumberOfWinners)
			return err
		},
	}

	cmd.Flags().IntVar(&maxVotes, "max-votes", domain.DefaultMaxVotesPerVoter, "Votes counted per voter (1-32)")
	cmd.Flags().IntVar(&winners, "winners", domain.DefaultNumberOfWinners, "Number of winners to announce (1-32)")

	return cmd
}
