package application

import (
	"fmt"
	"time"

	"github.com/bnema/reaction-tally/internal/domain"
)

type TallyStats struct {
	Messages       int
	Candidates     int
	Fetches        int
	FailedFetches  int
	SkippedOptions int
	Trimmed        int
	Voters         int
	Ballots        int
	Elapsed        time.Duration
}

// Footer is the closing line of the winners post.
func (s TallyStats) Footer() string {
	return fmt.Sprintf("Processed %d Voters with %d votes in %s.", s.Voters, s.Ballots, domain.FormatElapsed(s.Elapsed))
}

type TallyReport struct {
	RunID     string
	ChannelID domain.ChannelID
	Rules     domain.VotingRules
	Winners   []domain.Standing
	Results   []domain.Page[domain.Standing]
	VoterLog  []domain.Page[domain.VoterLogEntry]
	Stats     TallyStats
}

// Partial reports whether some reaction fetches were dropped or skipped.
func (r TallyReport) Partial() bool {
	return r.Stats.FailedFetches > 0 || r.Stats.SkippedOptions > 0
}
