package application

import (
	"context"
	"fmt"
	"slices"

	"github.com/bnema/reaction-tally/internal/domain"
	"github.com/bnema/reaction-tally/internal/logging"
	"github.com/bnema/reaction-tally/internal/ports"
	"github.com/bnema/reaction-tally/internal/ratelimit"
	"github.com/sirupsen/logrus"
)

// MaxPageSize is the largest page the channel API serves for messages and
// reaction users.
const MaxPageSize = 100

// ReactionFetcher reads channel history and reaction users through the
// rate-limited executor.
type ReactionFetcher struct {
	reader   ports.ChannelReader
	executor ports.Executor
	logger   logrus.FieldLogger
}

func NewReactionFetcher(reader ports.ChannelReader, executor ports.Executor, logger logrus.FieldLogger) *ReactionFetcher {
	return &ReactionFetcher{
		reader:   reader,
		executor: executor,
		logger:   logging.OrDiscard(logger),
	}
}

// ReactingUsers returns every non-bot user that reacted to message with the
// marker of variant, ordered by id. Pages of at most limit users are read
// until a short page comes back.
func (f *ReactionFetcher) ReactingUsers(ctx context.Context, message domain.Message, variant domain.Variant, limit int) ([]domain.User, error) {
	if !variant.Valid() {
		return nil, fmt.Errorf("unknown variant %q", variant)
	}
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}

	emoji := message.ReactionEmoji(variant)
	routeKey := domain.ReactionRouteKey(message.ChannelID)
	seen := make(map[domain.UserID]domain.User)
	var after domain.UserID
	for {
		page, err := ratelimit.Execute(ctx, f.executor, routeKey, func(ctx context.Context) ([]domain.User, error) {
			return f.reader.ReactionUsers(ctx, message.ChannelID, message.ID, emoji, after, limit)
		})
		if err != nil {
			return nil, fmt.Errorf("fetch %s reactions on message %s: %w", variant, message.ID, err)
		}

		for _, user := range page {
			if user.Bot {
				continue
			}
			if _, ok := seen[user.ID]; !ok {
				seen[user.ID] = user
			}
		}

		if len(page) < limit {
			break
		}
		next := page[len(page)-1].ID
		if next == after {
			break
		}
		after = next
	}

	users := make([]domain.User, 0, len(seen))
	for _, user := range seen {
		users = append(users, user)
	}
	slices.SortFunc(users, func(a, b domain.User) int {
		return domain.CompareUserIDs(a.ID, b.ID)
	})

	f.logger.WithFields(logrus.Fields{
		"message": message.ID,
		"variant": variant,
		"users":   len(users),
	}).Debug("fetched reaction users")

	return users, nil
}

// Messages returns up to limit messages of channel, newest first.
func (f *ReactionFetcher) Messages(ctx context.Context, channel domain.ChannelID, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = domain.DefaultMessageLimit
	}

	routeKey := domain.MessagesRouteKey(channel)
	messages := make([]domain.Message, 0, min(limit, MaxPageSize))
	var before domain.MessageID
	for len(messages) < limit {
		want := min(limit-len(messages), MaxPageSize)
		page, err := ratelimit.Execute(ctx, f.executor, routeKey, func(ctx context.Context) ([]domain.Message, error) {
			return f.reader.ListMessages(ctx, channel, before, want)
		})
		if err != nil {
			return nil, fmt.Errorf("list messages in channel %s: %w", channel, err)
		}

		for _, message := range page {
			if message.ChannelID == "" {
				message.ChannelID = channel
			}
			messages = append(messages, message)
		}

		if len(page) < want {
			break
		}
		next := page[len(page)-1].ID
		if next == before {
			break
		}
		before = next
	}

	return messages, nil
}
