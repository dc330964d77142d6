package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/bnema/reaction-tally/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidatesFromMessagesKeepsEnabledReactedVariants(t *testing.T) {
	t.Parallel()

	messages := []domain.Message{
		{
			ID:     "m1",
			Embeds: []domain.Embed{{Title: "Map-A"}, {Title: ""}},
			Reactions: []domain.ReactionCount{
				{Emoji: domain.VariantDay.Emoji(), Count: 2},
				{Emoji: domain.VariantSnow.Emoji(), Count: 1},
				{Emoji: domain.VariantFog.Emoji(), Count: 0},
			},
		},
		{
			ID:        "m2",
			Embeds:    []domain.Embed{{Title: "Map-B"}},
			Reactions: []domain.ReactionCount{{Emoji: "\U0001F44D", Count: 4}},
		},
		{
			ID:        "m3",
			Reactions: []domain.ReactionCount{{Emoji: domain.VariantDay.Emoji(), Count: 1}},
		},
	}

	candidates := CandidatesFromMessages(messages, []domain.Variant{domain.VariantDay, domain.VariantFog, domain.VariantDusk})
	require.Len(t, candidates, 1)
	assert.Equal(t, "Map-A", candidates[0].Title)
	assert.Equal(t, []domain.Variant{domain.VariantDay}, candidates[0].Variants)
}

func TestBallotAggregatorCollectsEveryMarker(t *testing.T) {
	t.Parallel()

	channel := newFakeChannel()
	channel.addOption("m1", "Map-A", map[domain.Variant][]domain.User{
		domain.VariantDay:  {voter("1"), voter("2")},
		domain.VariantDusk: {voter("1")},
	})
	channel.addOption("m2", "Map-B", map[domain.Variant][]domain.User{
		domain.VariantNight: {voter("2"), {ID: "99", Bot: true}},
	})

	aggregator := NewBallotAggregator(NewReactionFetcher(channel, directExecutor{}, nil), nil)
	records, stats := aggregator.Aggregate(context.Background(), CandidatesFromMessages(channel.messages, domain.AllVariants()))

	assert.Equal(t, AggregateStats{Candidates: 2, Dispatched: 3}, stats)
	assert.Equal(t, []domain.VoterID{"1", "2"}, records.Voters())
	assert.Equal(t, 2, records.Count("1"))
	assert.Equal(t, 2, records.Count("2"))
	assert.Equal(t, 4, records.BallotCount())
}

func TestBallotAggregatorDropsFailedMarkerOnly(t *testing.T) {
	t.Parallel()

	channel := newFakeChannel()
	for i := range 10 {
		channel.addOption(domain.MessageID(fmt.Sprintf("m%d", i)), fmt.Sprintf("Map-%d", i), map[domain.Variant][]domain.User{
			domain.VariantDay: {voter("1")},
		})
	}
	channel.failOn["m7"] = errors.New("unknown message")

	aggregator := NewBallotAggregator(NewReactionFetcher(channel, directExecutor{}, nil), nil)
	records, stats := aggregator.Aggregate(context.Background(), CandidatesFromMessages(channel.messages, domain.AllVariants()))

	assert.Equal(t, 10, stats.Dispatched)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 9, records.Count("1"))
	for _, ballot := range records.Ballots("1") {
		assert.NotEqual(t, "Map-7", ballot.Title)
	}
}

func TestBallotAggregatorSkipsCandidatesAfterCancellation(t *testing.T) {
	t.Parallel()

	channel := newFakeChannel()
	channel.addOption("m1", "Map-A", map[domain.Variant][]domain.User{domain.VariantDay: {voter("1")}})
	channel.addOption("m2", "Map-B", map[domain.Variant][]domain.User{domain.VariantDay: {voter("1")}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	aggregator := NewBallotAggregator(NewReactionFetcher(channel, directExecutor{}, nil), nil)
	records, stats := aggregator.Aggregate(ctx, CandidatesFromMessages(channel.messages, domain.AllVariants()))

	assert.Equal(t, 2, stats.Skipped)
	assert.Zero(t, stats.Dispatched)
	assert.Zero(t, records.VoterCount())
	assert.Zero(t, channel.reactionCalls)
}

func TestBallotAggregatorLetsDispatchedFetchFinishAfterCancellation(t *testing.T) {
	t.Parallel()

	channel := newFakeChannel()
	channel.addOption("m1", "Map-A", map[domain.Variant][]domain.User{domain.VariantDay: {voter("1")}})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var fetchErr error
	channel.onReact = func(fetchCtx context.Context, _ domain.MessageID) {
		cancel()
		fetchErr = fetchCtx.Err()
	}

	aggregator := NewBallotAggregator(NewReactionFetcher(channel, directExecutor{}, nil), nil)
	records, stats := aggregator.Aggregate(ctx, CandidatesFromMessages(channel.messages, domain.AllVariants()))

	require.NoError(t, fetchErr)
	assert.Zero(t, stats.Failed)
	assert.Equal(t, 1, records.Count("1"))
}

func TestBallotAggregatorStopsQueuedCandidatesWhenBounded(t *testing.T) {
	t.Parallel()

	channel := newFakeChannel()
	for i, title := range []string{"Map-A", "Map-B", "Map-C", "Map-D"} {
		channel.addOption(domain.MessageID(fmt.Sprintf("m%d", i)), title, map[domain.Variant][]domain.User{domain.VariantDay: {voter("1")}})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	channel.onReact = func(context.Context, domain.MessageID) { cancel() }

	aggregator := NewBallotAggregator(NewReactionFetcher(channel, directExecutor{}, nil), nil, WithInFlight(1))
	records, stats := aggregator.Aggregate(ctx, CandidatesFromMessages(channel.messages, domain.AllVariants()))

	assert.GreaterOrEqual(t, stats.Skipped, 2)
	assert.Equal(t, 4, stats.Dispatched+stats.Skipped)
	assert.Zero(t, stats.Failed)
	assert.Equal(t, stats.Dispatched, records.Count("1"))
}

func TestBallotAggregatorReportsProgressPerFetch(t *testing.T) {
	t.Parallel()

	channel := newFakeChannel()
	channel.addOption("m1", "Map-A", map[domain.Variant][]domain.User{
		domain.VariantDay:  {voter("1")},
		domain.VariantDusk: {voter("2")},
	})
	channel.addOption("m2", "Map-B", map[domain.Variant][]domain.User{domain.VariantNight: {voter("3")}})
	channel.failOn["m2"] = errors.New("boom")

	var mu sync.Mutex
	var updates []AggregateProgress
	progress := func(p AggregateProgress) {
		mu.Lock()
		defer mu.Unlock()
		updates = append(updates, p)
	}

	aggregator := NewBallotAggregator(NewReactionFetcher(channel, directExecutor{}, nil), nil, WithProgress(progress))
	_, stats := aggregator.Aggregate(context.Background(), CandidatesFromMessages(channel.messages, domain.AllVariants()))

	require.Len(t, updates, 3)
	for _, update := range updates {
		assert.Equal(t, 3, update.Fetches)
	}
	assert.Equal(t, 1, stats.Failed)

	maxFinished := 0
	for _, update := range updates {
		maxFinished = max(maxFinished, update.Finished)
	}
	assert.Equal(t, 3, maxFinished)
}
