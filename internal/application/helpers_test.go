package application

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/bnema/reaction-tally/internal/domain"
	"github.com/stretchr/testify/mock"
)

type directExecutor struct{}

func (directExecutor) Do(ctx context.Context, _ string, work func(ctx context.Context) error) error {
	return work(ctx)
}

type fixedClock struct {
	now time.Time
}

func (f fixedClock) Now() time.Time {
	return f.now
}

// steppingClock advances by step on every read.
type steppingClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now
	c.now = c.now.Add(c.step)
	return now
}

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func mockAnyContext() interface{} {
	return mock.Anything
}

type sentPost struct {
	Channel domain.ChannelID
	Post    domain.Post
}

// fakeChannel is an in-memory channel with reactions keyed by message and
// marker emoji.
type fakeChannel struct {
	mu        sync.Mutex
	messages  []domain.Message
	reactions map[domain.MessageID]map[string][]domain.User
	failOn    map[domain.MessageID]error
	onReact   func(ctx context.Context, message domain.MessageID)

	reactionCalls int
	sent          []sentPost
	deleted       []domain.MessageID
	threads       []string
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{
		reactions: make(map[domain.MessageID]map[string][]domain.User),
		failOn:    make(map[domain.MessageID]error),
	}
}

// addOption posts a message titled title with voters reacting per variant.
func (c *fakeChannel) addOption(id domain.MessageID, title string, votes map[domain.Variant][]domain.User) {
	message := domain.Message{
		ID:        id,
		ChannelID: "votes",
		Embeds:    []domain.Embed{{Title: title}},
	}
	c.reactions[id] = make(map[string][]domain.User)
	for _, variant := range domain.AllVariants() {
		users, ok := votes[variant]
		if !ok {
			continue
		}
		message.Reactions = append(message.Reactions, domain.ReactionCount{Emoji: variant.Emoji(), Count: len(users)})
		c.reactions[id][variant.Emoji()] = users
	}
	c.messages = append(c.messages, message)
}

func (c *fakeChannel) ListMessages(_ context.Context, _ domain.ChannelID, before domain.MessageID, limit int) ([]domain.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := 0
	if before != "" {
		start = slices.IndexFunc(c.messages, func(m domain.Message) bool { return m.ID == before }) + 1
	}
	end := min(start+limit, len(c.messages))
	return slices.Clone(c.messages[start:end]), nil
}

func (c *fakeChannel) ReactionUsers(ctx context.Context, _ domain.ChannelID, message domain.MessageID, emoji string, after domain.UserID, limit int) ([]domain.User, error) {
	if c.onReact != nil {
		c.onReact(ctx, message)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.reactionCalls++
	if err := c.failOn[message]; err != nil {
		return nil, err
	}

	users := slices.Clone(c.reactions[message][emoji])
	slices.SortFunc(users, func(a, b domain.User) int { return domain.CompareUserIDs(a.ID, b.ID) })
	page := make([]domain.User, 0, limit)
	for _, user := range users {
		if after != "" && domain.CompareUserIDs(user.ID, after) <= 0 {
			continue
		}
		if len(page) == limit {
			break
		}
		page = append(page, user)
	}
	return page, nil
}

func (c *fakeChannel) SendMessage(_ context.Context, channel domain.ChannelID, post domain.Post) (domain.MessageID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sent = append(c.sent, sentPost{Channel: channel, Post: post})
	return domain.MessageID(fmt.Sprintf("sent-%d", len(c.sent))), nil
}

func (c *fakeChannel) EditMessage(context.Context, domain.ChannelID, domain.MessageID, domain.Post) error {
	return nil
}

func (c *fakeChannel) DeleteMessage(_ context.Context, _ domain.ChannelID, message domain.MessageID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.deleted = append(c.deleted, message)
	return nil
}

func (c *fakeChannel) CreateThread(_ context.Context, channel domain.ChannelID, name string) (domain.Thread, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.threads = append(c.threads, name)
	return domain.Thread{ID: channel + "-thread", Name: name}, nil
}

func voter(id string) domain.User {
	return domain.User{ID: domain.UserID(id), Username: "user" + id}
}
