package application

import (
	"context"
	"sync/atomic"

	"github.com/bnema/reaction-tally/internal/domain"
	"github.com/bnema/reaction-tally/internal/logging"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// CandidatesFromMessages turns every titled embed into a candidate whose
// variants are the enabled ones already reacted on the message.
func CandidatesFromMessages(messages []domain.Message, enabled []domain.Variant) []domain.Candidate {
	var candidates []domain.Candidate
	for _, message := range messages {
		var variants []domain.Variant
		for _, variant := range enabled {
			if message.HasReaction(variant) {
				variants = append(variants, variant)
			}
		}
		if len(variants) == 0 {
			continue
		}

		for _, embed := range message.Embeds {
			if embed.Title == "" {
				continue
			}
			candidates = append(candidates, domain.Candidate{
				Message:  message,
				Title:    embed.Title,
				Variants: variants,
			})
		}
	}
	return candidates
}

type AggregateStats struct {
	Candidates int
	Dispatched int
	Failed     int
	// Skipped counts candidates never dispatched because shutdown was
	// requested.
	Skipped int
}

// AggregateProgress is reported after every finished reaction fetch.
type AggregateProgress struct {
	Fetches  int
	Finished int
	Failed   int
}

type ProgressFunc func(AggregateProgress)

type AggregatorOption func(*BallotAggregator)

// WithInFlight bounds how many fetches are dispatched at once, so shutdown
// is observed while candidates are still queued.
func WithInFlight(n int) AggregatorOption {
	return func(a *BallotAggregator) {
		if n > 0 {
			a.inFlight = n
		}
	}
}

func WithProgress(fn ProgressFunc) AggregatorOption {
	return func(a *BallotAggregator) {
		a.progress = fn
	}
}

// BallotAggregator fans reaction fetches out for every candidate marker and
// folds the results into one VoterRecords table.
type BallotAggregator struct {
	fetcher  *ReactionFetcher
	logger   logrus.FieldLogger
	limit    int
	inFlight int
	progress ProgressFunc
}

func NewBallotAggregator(fetcher *ReactionFetcher, logger logrus.FieldLogger, opts ...AggregatorOption) *BallotAggregator {
	a := &BallotAggregator{
		fetcher: fetcher,
		logger:  logging.OrDiscard(logger),
		limit:   MaxPageSize,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate never fails as a whole. A failed fetch drops that marker's
// ballots and is counted in the stats. Fetches already dispatched finish even
// if ctx is cancelled; cancellation only stops new candidates from starting.
func (a *BallotAggregator) Aggregate(ctx context.Context, candidates []domain.Candidate) (*domain.VoterRecords, AggregateStats) {
	records := domain.NewVoterRecords()
	stats := AggregateStats{Candidates: len(candidates)}
	fetchCtx := context.WithoutCancel(ctx)

	total := 0
	for _, candidate := range candidates {
		total += len(candidate.Variants)
	}

	var finished, failed atomic.Int64
	report := func() {
		if a.progress == nil {
			return
		}
		a.progress(AggregateProgress{
			Fetches:  total,
			Finished: int(finished.Load()),
			Failed:   int(failed.Load()),
		})
	}

	var group errgroup.Group
	if a.inFlight > 0 {
		group.SetLimit(a.inFlight)
	}
	for i, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			stats.Skipped = len(candidates) - i
			a.logger.WithError(err).Warnf("shutdown requested, skipping %d remaining options", stats.Skipped)
			break
		}

		for _, variant := range candidate.Variants {
			stats.Dispatched++
			group.Go(func() error {
				defer report()

				users, err := a.fetcher.ReactingUsers(fetchCtx, candidate.Message, variant, a.limit)
				if err != nil {
					failed.Add(1)
					finished.Add(1)
					a.logger.WithError(err).WithFields(logrus.Fields{
						"title":   candidate.Title,
						"variant": variant,
					}).Error("dropping reactions for option")
					return nil
				}

				for _, user := range users {
					records.Add(user, candidate.Title, variant)
				}
				finished.Add(1)
				return nil
			})
		}
	}
	_ = group.Wait()

	stats.Failed = int(failed.Load())
	return records, stats
}
