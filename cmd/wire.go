package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/reaction-tally/internal/adapters/discord"
	resultsadapter "github.com/bnema/reaction-tally/internal/adapters/render/results"
	tomlrepo "github.com/bnema/reaction-tally/internal/adapters/repo/toml"
	chainstore "github.com/bnema/reaction-tally/internal/adapters/secrets/chain"
	"github.com/bnema/reaction-tally/internal/application"
	"github.com/bnema/reaction-tally/internal/domain"
	"github.com/bnema/reaction-tally/internal/logging"
	"github.com/bnema/reaction-tally/internal/ports"
	"github.com/bnema/reaction-tally/internal/ratelimit"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const envFileName = ".env"

type app struct {
	cfg            *viper.Viper
	logger         *logrus.Logger
	settings       *tomlrepo.Repository
	credentials    *application.CredentialService
	resultRenderer func(application.TallyReport, resultsadapter.RenderOptions) (string, error)
	install        installConfig
	httpClient     *http.Client
	clock          ports.Clock
}

type installConfig struct {
	AuthURL string
	Timeout time.Duration
}

// tallyRuntime is the per-run object graph built once a token is available.
type tallyRuntime struct {
	service   *application.TallyService
	publisher *application.Publisher
}

func wireApp() (*app, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	cfg := viper.New()
	repo, err := tomlrepo.NewRepository(cfg)
	if err != nil {
		return nil, fmt.Errorf("wire settings repository: %w", err)
	}

	logger, err := logging.New(os.Stderr, cfg.GetString(tomlrepo.LogLevelKey))
	if err != nil {
		return nil, err
	}

	secretStore, err := chainstore.NewPassFirstWithFileFallback(cfg.GetString(tomlrepo.SecretsDirKey), logger)
	if err != nil {
		return nil, fmt.Errorf("wire secret store chain: %w", err)
	}

	return &app{
		cfg:            cfg,
		logger:         logger,
		settings:       repo,
		credentials:    application.NewCredentialService(repo, secretStore),
		resultRenderer: resultsadapter.Render,
		install: installConfig{
			AuthURL: envOrDefault("RT_OAUTH_AUTHORIZE_URL", "https://discord.com/oauth2/authorize"),
			Timeout: 5 * time.Minute,
		},
		httpClient: &http.Client{Timeout: 30 * time.Second},
		clock:      ports.SystemClock{},
	}, nil
}

// loadDotEnv reads ~/.reaction-tally/.env when present. Variables already in
// the environment win.
func loadDotEnv() error {
	dir, err := tomlrepo.ConfigDir()
	if err != nil {
		return err
	}

	if err := godotenv.Load(filepath.Join(dir, envFileName)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", envFileName, err)
	}
	return nil
}

// apiBaseURL prefers the config/env override over the settings file.
func (a *app) apiBaseURL(settings domain.Settings) string {
	if override := strings.TrimSpace(a.cfg.GetString(tomlrepo.APIBaseURLKey)); override != "" {
		return override
	}
	if settings.Discord.APIBaseURL != "" {
		return settings.Discord.APIBaseURL
	}
	return domain.DefaultAPIBaseURL
}

func (a *app) newTallyRuntime(ctx context.Context, settings domain.Settings) (*tallyRuntime, error) {
	token, err := a.credentials.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve bot token: %w", err)
	}

	executor := ratelimit.New(
		ratelimit.WithPolicy(settings.RateLimit),
		ratelimit.WithLogger(a.logger),
	)

	client, err := discord.NewClient(a.apiBaseURL(settings), token,
		discord.WithHTTPClient(a.httpClient),
		discord.WithObserver(executor),
		discord.WithLogger(a.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("wire discord client: %w", err)
	}

	return &tallyRuntime{
		service:   application.NewTallyService(client, executor, a.clock, nil, a.logger),
		publisher: application.NewPublisher(client, executor, a.logger),
	}, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
