package ports

import (
	"context"

	"github.com/bnema/reaction-tally/internal/domain"
)

// ChannelReader pages through channel history and reaction users. A zero
// cursor starts from the newest message or the lowest user id.
type ChannelReader interface {
	ListMessages(ctx context.Context, channel domain.ChannelID, before domain.MessageID, limit int) ([]domain.Message, error)
	ReactionUsers(ctx context.Context, channel domain.ChannelID, message domain.MessageID, emoji string, after domain.UserID, limit int) ([]domain.User, error)
}

type ChannelWriter interface {
	SendMessage(ctx context.Context, channel domain.ChannelID, post domain.Post) (domain.MessageID, error)
	EditMessage(ctx context.Context, channel domain.ChannelID, message domain.MessageID, post domain.Post) error
	DeleteMessage(ctx context.Context, channel domain.ChannelID, message domain.MessageID) error
	CreateThread(ctx context.Context, channel domain.ChannelID, name string) (domain.Thread, error)
}

type ChannelProvider interface {
	ChannelReader
	ChannelWriter
}
