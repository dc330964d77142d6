package application

import (
	"github.com/bnema/reaction-tally/internal/domain"
)

type TallyCommand struct {
	ChannelID    domain.ChannelID
	Rules        domain.VotingRules
	Variants     []domain.Variant
	MessageLimit int
	// InFlight bounds concurrently dispatched reaction fetches. Zero means
	// unbounded.
	InFlight int
	Progress ProgressFunc
}

// TallyCommandFromSettings fills everything but the channel from settings.
func TallyCommandFromSettings(settings domain.Settings, channel domain.ChannelID) TallyCommand {
	return TallyCommand{
		ChannelID:    channel,
		Rules:        settings.Voting,
		Variants:     settings.Variants.Enabled(),
		MessageLimit: settings.Scan.MessageLimit,
		InFlight:     settings.RateLimit.Concurrency,
	}
}

type SetTokenCommand struct {
	SecretKey string
	Token     string
}

type SetClientSecretCommand struct {
	SecretKey string
	Secret    string
}

// RecordInstallCommand carries the outcome of an OAuth2 bot install.
type RecordInstallCommand struct {
	Grant   string
	GuildID string
}
