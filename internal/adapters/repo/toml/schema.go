package toml

import (
	"fmt"
	"time"

	"github.com/bnema/reaction-tally/internal/domain"
)

const currentSchemaVersion = 1

type fileSchema struct {
	Version   int             `toml:"version"`
	Discord   discordSchema   `toml:"discord"`
	Voting    votingSchema    `toml:"voting"`
	Variants  map[string]bool `toml:"variants,omitempty"`
	RateLimit rateLimitSchema `toml:"rate_limit"`
	Scan      scanSchema      `toml:"scan"`
	OAuth     oauthSchema     `toml:"oauth"`
}

type discordSchema struct {
	GuildID       string   `toml:"guild_id"`
	CategoryID    string   `toml:"category_id,omitempty"`
	VotingRoleIDs []string `toml:"voting_role_ids,omitempty"`
	APIBaseURL    string   `toml:"api_base_url,omitempty"`
	TokenRef      string   `toml:"token_ref"`
}

type votingSchema struct {
	MaxVotesPerVoter int `toml:"max_votes_per_voter"`
	NumberOfWinners  int `toml:"number_of_winners"`
}

type rateLimitSchema struct {
	Concurrency    int     `toml:"concurrency"`
	CallsPerSecond float64 `toml:"calls_per_second"`
	BucketLimit    int     `toml:"bucket_limit"`
	MaxRetries     int     `toml:"max_retries"`
	BucketWindow   string  `toml:"bucket_window"`
	ResetBuffer    string  `toml:"reset_buffer"`
}

type scanSchema struct {
	MessageLimit int `toml:"message_limit"`
}

type oauthSchema struct {
	ClientID        string   `toml:"client_id,omitempty"`
	ClientSecretRef string   `toml:"client_secret_ref,omitempty"`
	ListenAddr      string   `toml:"listen_addr,omitempty"`
	Scopes          []string `toml:"scopes,omitempty"`
	Permissions     string   `toml:"permissions,omitempty"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported settings schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

func toSchema(settings domain.Settings) fileSchema {
	var variants map[string]bool
	if len(settings.Variants) > 0 {
		variants = make(map[string]bool, len(settings.Variants))
		for variant, enabled := range settings.Variants {
			variants[string(variant)] = enabled
		}
	}

	return fileSchema{
		Version: currentSchemaVersion,
		Discord: discordSchema{
			GuildID:       settings.Discord.GuildID,
			CategoryID:    settings.Discord.CategoryID,
			VotingRoleIDs: settings.Discord.VotingRoleIDs,
			APIBaseURL:    settings.Discord.APIBaseURL,
			TokenRef:      settings.Discord.TokenRef,
		},
		Voting: votingSchema{
			MaxVotesPerVoter: settings.Voting.MaxVotesPerVoter,
			NumberOfWinners:  settings.Voting.NumberOfWinners,
		},
		Variants: variants,
		RateLimit: rateLimitSchema{
			Concurrency:    settings.RateLimit.Concurrency,
			CallsPerSecond: settings.RateLimit.CallsPerSecond,
			BucketLimit:    settings.RateLimit.BucketLimit,
			MaxRetries:     settings.RateLimit.MaxRetries,
			BucketWindow:   formatDuration(settings.RateLimit.BucketWindow),
			ResetBuffer:    formatDuration(settings.RateLimit.ResetBuffer),
		},
		Scan: scanSchema{MessageLimit: settings.Scan.MessageLimit},
		OAuth: oauthSchema{
			ClientID:        settings.OAuth.ClientID,
			ClientSecretRef: settings.OAuth.ClientSecretRef,
			ListenAddr:      settings.OAuth.ListenAddr,
			Scopes:          settings.OAuth.Scopes,
			Permissions:     settings.OAuth.Permissions,
		},
	}
}

// fromSchema fills every zero field from domain.DefaultSettings, except the
// token ref which may be cleared on purpose.
func fromSchema(file fileSchema) (domain.Settings, error) {
	settings := domain.DefaultSettings()

	settings.Discord.GuildID = file.Discord.GuildID
	settings.Discord.CategoryID = file.Discord.CategoryID
	settings.Discord.VotingRoleIDs = file.Discord.VotingRoleIDs
	settings.Discord.TokenRef = file.Discord.TokenRef
	setIfNotZero(&settings.Discord.APIBaseURL, file.Discord.APIBaseURL)

	setIfNotZero(&settings.Voting.MaxVotesPerVoter, file.Voting.MaxVotesPerVoter)
	setIfNotZero(&settings.Voting.NumberOfWinners, file.Voting.NumberOfWinners)

	for name, enabled := range file.Variants {
		variant, ok := domain.ParseVariant(name)
		if !ok {
			return domain.Settings{}, fmt.Errorf("%w: unknown variant %q", domain.ErrInvalidSettings, name)
		}
		settings.Variants[variant] = enabled
	}

	setIfNotZero(&settings.RateLimit.Concurrency, file.RateLimit.Concurrency)
	setIfNotZero(&settings.RateLimit.CallsPerSecond, file.RateLimit.CallsPerSecond)
	setIfNotZero(&settings.RateLimit.BucketLimit, file.RateLimit.BucketLimit)
	setIfNotZero(&settings.RateLimit.MaxRetries, file.RateLimit.MaxRetries)
	window, err := parseDuration("rate_limit.bucket_window", file.RateLimit.BucketWindow)
	if err != nil {
		return domain.Settings{}, err
	}
	setIfNotZero(&settings.RateLimit.BucketWindow, window)
	buffer, err := parseDuration("rate_limit.reset_buffer", file.RateLimit.ResetBuffer)
	if err != nil {
		return domain.Settings{}, err
	}
	setIfNotZero(&settings.RateLimit.ResetBuffer, buffer)

	setIfNotZero(&settings.Scan.MessageLimit, file.Scan.MessageLimit)

	setIfNotZero(&settings.OAuth.ClientID, file.OAuth.ClientID)
	setIfNotZero(&settings.OAuth.ClientSecretRef, file.OAuth.ClientSecretRef)
	setIfNotZero(&settings.OAuth.ListenAddr, file.OAuth.ListenAddr)
	setIfNotZero(&settings.OAuth.Permissions, file.OAuth.Permissions)
	if len(file.OAuth.Scopes) > 0 {
		settings.OAuth.Scopes = file.OAuth.Scopes
	}

	return settings, nil
}

func setIfNotZero[T comparable](dst *T, value T) {
	var zero T
	if value != zero {
		*dst = value
	}
}

func parseDuration(key, raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", domain.ErrInvalidSettings, key, err)
	}

	return parsed, nil
}

func formatDuration(value time.Duration) string {
	if value == 0 {
		return ""
	}

	return value.String()
}
