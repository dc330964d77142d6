package application

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bnema/reaction-tally/internal/domain"
	"github.com/bnema/reaction-tally/internal/logging"
	"github.com/bnema/reaction-tally/internal/ports"
	"github.com/bnema/reaction-tally/internal/ratelimit"
	"github.com/sirupsen/logrus"
)

const (
	ResultsThreadName = "Full Vote Results"

	colorGold       = 0xF1C40F
	colorDarkerGrey = 0x546E7A
	colorLightGrey  = 0x979C9F
)

// Per-post limits of the channel API. Longer posts are split before sending.
const (
	PostMaxFields     = 25
	PostMaxChars      = 6000
	PostMaxFieldValue = 1024
)

// Publisher writes a tally report back to the channel: the winners post,
// then a results thread holding every result page and every voter-log page.
type Publisher struct {
	writer   ports.ChannelWriter
	executor ports.Executor
	logger   logrus.FieldLogger
}

func NewPublisher(writer ports.ChannelWriter, executor ports.Executor, logger logrus.FieldLogger) *Publisher {
	return &Publisher{
		writer:   writer,
		executor: executor,
		logger:   logging.OrDiscard(logger),
	}
}

func (p *Publisher) PostPlaceholder(ctx context.Context, channel domain.ChannelID) (domain.MessageID, error) {
	return p.send(ctx, channel, PlaceholderPost())
}

func (p *Publisher) RemovePlaceholder(ctx context.Context, channel domain.ChannelID, message domain.MessageID) error {
	if message == "" {
		return nil
	}
	return p.executor.Do(ctx, domain.PublishRouteKey(channel), func(ctx context.Context) error {
		return p.writer.DeleteMessage(ctx, channel, message)
	})
}

func (p *Publisher) Publish(ctx context.Context, channel domain.ChannelID, report TallyReport) error {
	if err := p.sendSplit(ctx, channel, WinnersPost(report)); err != nil {
		return fmt.Errorf("send winners: %w", err)
	}

	thread, err := ratelimit.Execute(ctx, p.executor, domain.PublishRouteKey(channel), func(ctx context.Context) (domain.Thread, error) {
		return p.writer.CreateThread(ctx, channel, ResultsThreadName)
	})
	if err != nil {
		return fmt.Errorf("create results thread: %w", err)
	}

	posts := make([]domain.Post, 0, len(report.Results)+len(report.VoterLog)+2)
	for _, page := range report.Results {
		posts = append(posts, ResultsPagePost(page))
	}
	posts = append(posts, domain.Post{
		Title:  "Final Vote Results",
		Color:  colorDarkerGrey,
		Fields: []domain.PostField{{Name: "All entries processed", Value: "All maps and their votes have been processed."}},
	})
	for _, page := range report.VoterLog {
		posts = append(posts, VoterLogPagePost(page))
	}
	posts = append(posts, domain.Post{
		Title:  "Final User Vote Logs",
		Color:  colorLightGrey,
		Fields: []domain.PostField{{Name: "All entries processed", Value: "All user votes have been processed."}},
	})

	for _, post := range posts {
		if err := p.sendSplit(ctx, thread.ID, post); err != nil {
			return fmt.Errorf("send %q to results thread: %w", post.Title, err)
		}
	}

	p.logger.WithFields(logrus.Fields{
		"run":    report.RunID,
		"thread": thread.ID,
		"posts":  len(posts) + 1,
	}).Info("published tally")
	return nil
}

func (p *Publisher) send(ctx context.Context, channel domain.ChannelID, post domain.Post) (domain.MessageID, error) {
	return ratelimit.Execute(ctx, p.executor, domain.PublishRouteKey(channel), func(ctx context.Context) (domain.MessageID, error) {
		return p.writer.SendMessage(ctx, channel, post)
	})
}

// sendSplit sends post as one or more messages, each within the API limits.
func (p *Publisher) sendSplit(ctx context.Context, channel domain.ChannelID, post domain.Post) error {
	parts := SplitPost(post)
	if len(parts) > 1 {
		p.logger.WithFields(logrus.Fields{"title": post.Title, "parts": len(parts)}).Debug("splitting oversized post")
	}
	for _, part := range parts {
		if _, err := p.send(ctx, channel, part); err != nil {
			return err
		}
	}
	return nil
}

// SplitPost breaks post into posts holding at most PostMaxFields fields and
// PostMaxChars characters each. Field values longer than PostMaxFieldValue
// continue in a following field under the same name. Continuations keep the
// title, color and footer; only the first part carries the description.
func SplitPost(post domain.Post) []domain.Post {
	if len(post.Fields) == 0 {
		return []domain.Post{post}
	}

	var fields []domain.PostField
	for _, field := range post.Fields {
		for _, value := range splitFieldValue(field.Value, PostMaxFieldValue) {
			fields = append(fields, domain.PostField{Name: field.Name, Value: value})
		}
	}

	frame := runeLen(post.Title) + runeLen(post.Footer)
	current := domain.Post{Title: post.Title, Description: post.Description, Color: post.Color, Footer: post.Footer}
	size := frame + runeLen(post.Description)

	var parts []domain.Post
	for _, field := range fields {
		fieldSize := max(runeLen(field.Name), 1) + max(runeLen(field.Value), 1)
		if len(current.Fields) > 0 && (len(current.Fields) == PostMaxFields || size+fieldSize > PostMaxChars) {
			parts = append(parts, current)
			current = domain.Post{Title: post.Title, Color: post.Color, Footer: post.Footer}
			size = frame
		}
		current.Fields = append(current.Fields, field)
		size += fieldSize
	}
	return append(parts, current)
}

// splitFieldValue cuts value into chunks of at most limit runes, breaking
// after a ballot separator when one is in range.
func splitFieldValue(value string, limit int) []string {
	runes := []rune(value)
	var chunks []string
	for len(runes) > limit {
		cut := strings.LastIndex(string(runes[:limit]), domain.BallotSeparator)
		if cut <= 0 {
			chunks = append(chunks, string(runes[:limit]))
			runes = runes[limit:]
			continue
		}
		head := string(runes[:limit])[:cut]
		chunks = append(chunks, head)
		runes = runes[utf8.RuneCountInString(head)+utf8.RuneCountInString(domain.BallotSeparator):]
	}
	return append(chunks, string(runes))
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

func PlaceholderPost() domain.Post {
	return domain.Post{
		Title:       "Tallying votes",
		Description: "Counting reactions, this can take a few minutes.",
		Color:       colorGold,
	}
}

func WinnersPost(report TallyReport) domain.Post {
	post := domain.Post{
		Title:  fmt.Sprintf("Top %d Winners", report.Rules.NumberOfWinners),
		Color:  colorGold,
		Footer: report.Stats.Footer(),
	}
	if len(report.Winners) == 0 {
		post.Description = "No votes were cast."
	}
	for _, winner := range report.Winners {
		post.Fields = append(post.Fields, domain.PostField{
			Name:  fmt.Sprintf("Winner #%d", winner.Rank),
			Value: fmt.Sprintf("**Map:** %s\n**Votes:** %d", winner.Label, winner.Count),
		})
	}
	return post
}

func ResultsPagePost(page domain.Page[domain.Standing]) domain.Post {
	post := domain.Post{
		Title:  "Full Vote Results",
		Color:  colorDarkerGrey,
		Footer: fmt.Sprintf("Page %d of %d", page.Number, page.Total),
	}
	for _, standing := range page.Items {
		post.Fields = append(post.Fields, domain.PostField{
			Name:  fmt.Sprintf("**Map:** %s", standing.Label),
			Value: fmt.Sprintf("**Votes:** %d", standing.Count),
		})
	}
	return post
}

func VoterLogPagePost(page domain.Page[domain.VoterLogEntry]) domain.Post {
	post := domain.Post{
		Title:  "User Vote Logs",
		Color:  colorLightGrey,
		Footer: fmt.Sprintf("Page %d of %d", page.Number, page.Total),
	}
	for _, entry := range page.Items {
		post.Fields = append(post.Fields, domain.PostField{
			Name:  entry.Name,
			Value: entry.Line(),
		})
	}
	return post
}
