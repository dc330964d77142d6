package domain

import (
	"errors"
	"fmt"
	"time"
)

const (
	MinVotingRule = 1
	MaxVotingRule = 32

	DefaultMaxVotesPerVoter = 3
	DefaultNumberOfWinners  = 3
	DefaultMessageLimit     = 100
	DefaultAPIBaseURL       = "https://discord.com/api/v10"
	DefaultTokenRef         = "reaction-tally/discord/bot_token"
	DefaultClientSecretRef  = "reaction-tally/discord/client_secret"
	DefaultInstallGrantRef  = "reaction-tally/discord/install_grant"
)

type Settings struct {
	Discord   DiscordTarget
	Voting    VotingRules
	Variants  VariantToggles
	RateLimit RateLimitPolicy
	Scan      ScanPolicy
	OAuth     OAuthApp
}

type DiscordTarget struct {
	GuildID string
	// CategoryID and VotingRoleIDs are carried through settings.toml
	// unchanged for bots sharing the file; the tally does not read them.
	CategoryID    string
	VotingRoleIDs []string
	APIBaseURL    string
	TokenRef      string
}

type VotingRules struct {
	MaxVotesPerVoter int
	NumberOfWinners  int
}

// VariantToggles lists which variants are collected. A variant missing from
// the map is enabled.
type VariantToggles map[Variant]bool

func (t VariantToggles) Enabled() []Variant {
	enabled := make([]Variant, 0, len(AllVariants()))
	for _, variant := range AllVariants() {
		if on, ok := t[variant]; ok && !on {
			continue
		}
		enabled = append(enabled, variant)
	}
	return enabled
}

type RateLimitPolicy struct {
	Concurrency    int
	CallsPerSecond float64
	BucketLimit    int
	MaxRetries     int
	BucketWindow   time.Duration
	ResetBuffer    time.Duration
}

type ScanPolicy struct {
	MessageLimit int
}

type OAuthApp struct {
	ClientID        string
	ClientSecretRef string
	ListenAddr      string
	Scopes          []string
	Permissions     string
}

func DefaultSettings() Settings {
	return Settings{
		Discord: DiscordTarget{
			APIBaseURL: DefaultAPIBaseURL,
			TokenRef:   DefaultTokenRef,
		},
		Voting: VotingRules{
			MaxVotesPerVoter: DefaultMaxVotesPerVoter,
			NumberOfWinners:  DefaultNumberOfWinners,
		},
		Variants:  VariantToggles{},
		RateLimit: DefaultRateLimitPolicy(),
		Scan:      ScanPolicy{MessageLimit: DefaultMessageLimit},
		OAuth: OAuthApp{
			ListenAddr:  "127.0.0.1:53682",
			Scopes:      []string{"bot", "applications.commands"},
			Permissions: "277025459264",
		},
	}
}

func DefaultRateLimitPolicy() RateLimitPolicy {
	return RateLimitPolicy{
		Concurrency:    5,
		CallsPerSecond: 1,
		BucketLimit:    5,
		MaxRetries:     8,
		BucketWindow:   time.Second,
		ResetBuffer:    50 * time.Millisecond,
	}
}

func (r VotingRules) Validate() error {
	var errs []error
	if r.MaxVotesPerVoter < MinVotingRule || r.MaxVotesPerVoter > MaxVotingRule {
		errs = append(errs, fmt.Errorf("max votes per voter must be between %d and %d, got %d", MinVotingRule, MaxVotingRule, r.MaxVotesPerVoter))
	}
	if r.NumberOfWinners < MinVotingRule || r.NumberOfWinners > MaxVotingRule {
		errs = append(errs, fmt.Errorf("number of winners must be between %d and %d, got %d", MinVotingRule, MaxVotingRule, r.NumberOfWinners))
	}
	return errors.Join(errs...)
}

func (p RateLimitPolicy) Validate() error {
	var errs []error
	if p.Concurrency <= 0 {
		errs = append(errs, errors.New("rate limit concurrency must be positive"))
	}
	if p.CallsPerSecond <= 0 {
		errs = append(errs, errors.New("rate limit calls per second must be positive"))
	}
	if p.BucketLimit <= 0 {
		errs = append(errs, errors.New("rate limit bucket limit must be positive"))
	}
	if p.MaxRetries <= 0 {
		errs = append(errs, errors.New("rate limit max retries must be positive"))
	}
	return errors.Join(errs...)
}

// Validate checks everything a tally run depends on. The returned error
// wraps ErrInvalidSettings.
func (s Settings) Validate() error {
	var errs []error
	if s.Discord.GuildID == "" {
		errs = append(errs, errors.New("discord guild id is required"))
	}
	if err := s.Voting.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(s.Variants.Enabled()) == 0 {
		errs = append(errs, errors.New("at least one variant must be enabled"))
	}
	if err := s.RateLimit.Validate(); err != nil {
		errs = append(errs, err)
	}
	if s.Scan.MessageLimit <= 0 {
		errs = append(errs, errors.New("message scan limit must be positive"))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidSettings, errors.Join(errs...))
}
