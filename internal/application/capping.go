package application

import (
	"github.com/bnema/reaction-tally/internal/domain"
	"github.com/bnema/reaction-tally/internal/logging"
	"github.com/bnema/reaction-tally/internal/ports"
	"github.com/sirupsen/logrus"
)

// VoteCapEnforcer trims voters over the per-voter cap by removing uniformly
// random ballots one at a time.
type VoteCapEnforcer struct {
	rng    ports.Random
	logger logrus.FieldLogger
}

func NewVoteCapEnforcer(rng ports.Random, logger logrus.FieldLogger) *VoteCapEnforcer {
	return &VoteCapEnforcer{
		rng:    orGlobalRandom(rng),
		logger: logging.OrDiscard(logger),
	}
}

// Enforce returns the number of ballots removed.
func (e *VoteCapEnforcer) Enforce(records *domain.VoterRecords, maxVotesPerVoter int) int {
	maxVotesPerVoter = max(maxVotesPerVoter, 0)

	removed := 0
	for _, voter := range records.Voters() {
		count := records.Count(voter)
		if count <= maxVotesPerVoter {
			continue
		}

		e.logger.WithFields(logrus.Fields{
			"voter": records.Name(voter),
			"votes": count,
			"cap":   maxVotesPerVoter,
		}).Info("voter over cap, removing random ballots")

		for count > maxVotesPerVoter {
			records.RemoveAt(voter, e.rng.IntN(count))
			count--
			removed++
		}
	}
	return removed
}
