package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	authadapter "github.com/bnema/reaction-tally/internal/adapters/auth"
	"github.com/bnema/reaction-tally/internal/application"
	"github.com/bnema/reaction-tally/internal/domain"
	"github.com/spf13/cobra"
)

func newAuthCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the bot token and install the bot",
	}

	cmd.AddCommand(
		newAuthSetTokenCmd(app),
		newAuthRemoveTokenCmd(app),
		newAuthSetClientSecretCmd(app),
		newAuthInstallCmd(app),
	)

	return cmd
}

func newAuthSetTokenCmd(app *app) *cobra.Command {
	var token string
	var secretKey string

	cmd := &cobra.Command{
		Use:   "set-token",
		Short: "Store the bot token in the secret store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.credentials.SetToken(cmd.Context(), application.SetTokenCommand{
				SecretKey: secretKey,
				Token:     token,
			}); err != nil {
				return err
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Bot token stored")
			return err
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Discord bot token")
	cmd.Flags().StringVar(&secretKey, "secret-key", "", "Secret-store key (default "+domain.DefaultTokenRef+")")
	_ = cmd.MarkFlagRequired("token")

	return cmd
}

func newAuthRemoveTokenCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-token",
		Short: "Delete the stored bot token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.credentials.RemoveToken(cmd.Context()); err != nil {
				return err
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Bot token removed")
			return err
		},
	}
}

func newAuthSetClientSecretCmd(app *app) *cobra.Command {
	var secret string
	var secretKey string

	cmd := &cobra.Command{
		Use:   "set-client-secret",
		Short: "Store the OAuth2 client secret used by install",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.credentials.SetClientSecret(cmd.Context(), application.SetClientSecretCommand{
				SecretKey: secretKey,
				Secret:    secret,
			}); err != nil {
				return err
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Client secret stored")
			return err
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "Discord application client secret")
	cmd.Flags().StringVar(&secretKey, "secret-key", "", "Secret-store key")
	_ = cmd.MarkFlagRequired("secret")

	return cmd
}

func newAuthInstallCmd(app *app) *cobra.Command {
	var clientID string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Add the bot to a guild through the OAuth2 browser flow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInstall(cmd, app, clientID, timeout)
		},
	}

	cmd.Flags().StringVar(&clientID, "client-id", "", "Discord application client ID (default: oauth.client_id from settings)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "How long to wait for the browser callback")

	return cmd
}

func runInstall(cmd *cobra.Command, app *app, clientID string, timeout time.Duration) error {
	ctx := cmd.Context()

	settings, err := app.settings.Load(ctx)
	if err != nil {
		return err
	}
	if clientID == "" {
		clientID = settings.OAuth.ClientID
	}
	if clientID == "" {
		return fmt.Errorf("client id is required: pass --client-id or set oauth.client_id in %s", app.settings.Path())
	}
	if timeout <= 0 {
		timeout = app.install.Timeout
	}

	clientSecret, err := app.credentials.ClientSecret(ctx)
	if err != nil {
		return fmt.Errorf("resolve client secret (run `rt auth set-client-secret`): %w", err)
	}

	state, err := authadapter.NewState()
	if err != nil {
		return fmt.Errorf("generate oauth state: %w", err)
	}

	server, err := authadapter.StartCallbackServer(settings.OAuth.ListenAddr, state)
	if err != nil {
		return fmt.Errorf("start callback server: %w", err)
	}

	installURL, err := authadapter.BuildInstallURL(authadapter.InstallRequest{
		AuthURL:     app.install.AuthURL,
		ClientID:    clientID,
		RedirectURI: server.RedirectURI(),
		Scopes:      settings.OAuth.Scopes,
		Permissions: settings.OAuth.Permissions,
		State:       state,
		GuildID:     settings.Discord.GuildID,
	})
	if err != nil {
		_ = server.Close()
		return fmt.Errorf("build install url: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Open this URL to add the bot to your server:\n%s\n", installURL)

	callback, err := server.Wait(ctx, timeout)
	if err != nil {
		return fmt.Errorf("wait for oauth callback: %w", err)
	}

	tokens, err := authadapter.ExchangeCode(ctx, app.httpClient, authadapter.TokenExchangeRequest{
		TokenURL:     authadapter.TokenURL(app.apiBaseURL(settings)),
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURI:  server.RedirectURI(),
		Code:         callback.Code,
	})
	if err != nil {
		return fmt.Errorf("exchange install code: %w", err)
	}

	grant, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("encode install grant: %w", err)
	}

	guildID := tokens.GuildID(callback)
	adopted, err := app.credentials.RecordInstall(ctx, application.RecordInstallCommand{
		Grant:   string(grant),
		GuildID: guildID,
	})
	if err != nil {
		return fmt.Errorf("record install: %w", err)
	}

	if adopted {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Bot installed in guild %s (saved to settings)\n", guildID)
		return nil
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Bot installed in guild %s\n", guildID)
	return nil
}
