package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/reaction-tally/internal/domain"
	"github.com/bnema/reaction-tally/internal/logging"
	"github.com/bnema/reaction-tally/internal/ports"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrChannelRequired = errors.New("channel id is required")

// TallyService runs one full tally: scan the channel, aggregate reactions,
// enforce the vote cap, then rank.
type TallyService struct {
	fetcher *ReactionFetcher
	rng     ports.Random
	clock   ports.Clock
	logger  logrus.FieldLogger
	newID   func() string
}

func NewTallyService(reader ports.ChannelReader, executor ports.Executor, clock ports.Clock, rng ports.Random, logger logrus.FieldLogger) *TallyService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	logger = logging.OrDiscard(logger)

	return &TallyService{
		fetcher: NewReactionFetcher(reader, executor, logger),
		rng:     orGlobalRandom(rng),
		clock:   clock,
		logger:  logger,
		newID:   uuid.NewString,
	}
}

func (s *TallyService) Run(ctx context.Context, cmd TallyCommand) (TallyReport, error) {
	if cmd.ChannelID == "" {
		return TallyReport{}, ErrChannelRequired
	}
	if err := cmd.Rules.Validate(); err != nil {
		return TallyReport{}, fmt.Errorf("%w: %w", domain.ErrInvalidSettings, err)
	}

	runID := s.newID()
	logger := s.logger.WithFields(logrus.Fields{"run": runID, "channel": cmd.ChannelID})
	started := s.clock.Now()

	messages, err := s.fetcher.Messages(ctx, cmd.ChannelID, cmd.MessageLimit)
	if err != nil {
		return TallyReport{}, fmt.Errorf("scan channel: %w", err)
	}
	candidates := CandidatesFromMessages(messages, cmd.Variants)
	logger.Infof("found %d options in %d messages", len(candidates), len(messages))

	aggregator := NewBallotAggregator(s.fetcher, logger, WithInFlight(cmd.InFlight), WithProgress(cmd.Progress))
	records, aggregate := aggregator.Aggregate(ctx, candidates)
	trimmed := NewVoteCapEnforcer(s.rng, logger).Enforce(records, cmd.Rules.MaxVotesPerVoter)

	ranking := NewRankingEngine(s.rng)
	tally := ranking.Tally(records)

	report := TallyReport{
		RunID:     runID,
		ChannelID: cmd.ChannelID,
		Rules:     cmd.Rules,
		Winners:   ranking.Rank(tally, cmd.Rules.NumberOfWinners),
		Results:   domain.Paginate(ranking.FullResults(tally), domain.ResultsPageSize),
		VoterLog:  domain.Paginate(ranking.VoterLog(records), domain.ResultsPageSize),
		Stats: TallyStats{
			Messages:       len(messages),
			Candidates:     aggregate.Candidates,
			Fetches:        aggregate.Dispatched,
			FailedFetches:  aggregate.Failed,
			SkippedOptions: aggregate.Skipped,
			Trimmed:        trimmed,
			Voters:         records.VoterCount(),
			Ballots:        records.BallotCount(),
			Elapsed:        s.clock.Now().Sub(started),
		},
	}

	entry := logger.WithFields(logrus.Fields{
		"voters":  report.Stats.Voters,
		"ballots": report.Stats.Ballots,
		"failed":  report.Stats.FailedFetches,
	})
	if report.Partial() {
		entry.Warn("tally completed with missing reactions")
	} else {
		entry.Info("tally completed")
	}

	return report, nil
}

// RunAndPublish posts a placeholder, runs the tally, publishes the report and
// removes the placeholder whatever the outcome. A run interrupted by shutdown
// is returned but not published.
func (s *TallyService) RunAndPublish(ctx context.Context, cmd TallyCommand, publisher *Publisher) (TallyReport, error) {
	if cmd.ChannelID == "" {
		return TallyReport{}, ErrChannelRequired
	}

	placeholder, err := publisher.PostPlaceholder(ctx, cmd.ChannelID)
	if err != nil {
		return TallyReport{}, fmt.Errorf("post placeholder: %w", err)
	}

	report, runErr := s.Run(ctx, cmd)
	if runErr == nil && ctx.Err() != nil {
		runErr = fmt.Errorf("publish skipped: %w", context.Cause(ctx))
	}
	if runErr == nil {
		if err := publisher.Publish(ctx, cmd.ChannelID, report); err != nil {
			runErr = fmt.Errorf("publish report: %w", err)
		}
	}

	if err := publisher.RemovePlaceholder(context.WithoutCancel(ctx), cmd.ChannelID, placeholder); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("delete placeholder: %w", err))
	}

	return report, runErr
}
