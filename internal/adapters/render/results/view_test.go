package results

import (
	"testing"
	"time"

	"github.com/bnema/reaction-tally/internal/application"
	"github.com/bnema/reaction-tally/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() application.TallyReport {
	standings := []domain.Standing{
		{Rank: 1, Label: "Ascent (Day)", Count: 5},
		{Rank: 2, Label: "Bind (Night)", Count: 3},
		{Rank: 3, Label: "Haven", Count: 1},
	}
	return application.TallyReport{
		RunID:     "run-1",
		ChannelID: "votes",
		Rules:     domain.VotingRules{MaxVotesPerVoter: 3, NumberOfWinners: 2},
		Winners:   standings[:2],
		Results:   domain.Paginate(standings, 2),
		VoterLog: domain.Paginate([]domain.VoterLogEntry{
			{Voter: "1", Name: "ana", Ballots: []string{"Ascent (Day)", "Haven"}},
			{Voter: "2", Ballots: []string{"Bind (Night)"}},
		}, domain.ResultsPageSize),
		Stats: application.TallyStats{Voters: 2, Ballots: 9, Elapsed: 90 * time.Second},
	}
}

func TestRenderShowsWinnersFirstPageAndFooter(t *testing.T) {
	t.Parallel()

	output, err := Render(sampleReport(), RenderOptions{})
	require.NoError(t, err)

	assert.Contains(t, output, "Top 2 Winners")
	assert.Contains(t, output, "channel: votes  run: run-1")
	assert.Contains(t, output, "#1 Ascent (Day)")
	assert.Contains(t, output, "5 votes")
	assert.Contains(t, output, "Results page 1 of 2")
	assert.NotContains(t, output, "Results page 2 of 2")
	assert.Contains(t, output, "[====================]")
	assert.Contains(t, output, "Processed 2 Voters with 9 votes in 1 minute and 30 seconds.")
	assert.NotContains(t, output, "Voter log")
	assert.NotContains(t, output, "[partial]")
}

func TestRenderSelectsRequestedPage(t *testing.T) {
	t.Parallel()

	output, err := Render(sampleReport(), RenderOptions{Page: 2})
	require.NoError(t, err)

	assert.Contains(t, output, "Results page 2 of 2")
	assert.Contains(t, output, "3. Haven")
}

func TestRenderRejectsPageBeyondResults(t *testing.T) {
	t.Parallel()

	_, err := Render(sampleReport(), RenderOptions{Page: 3})
	require.ErrorIs(t, err, ErrPageOutOfRange)
}

func TestRenderVoterLogFallsBackToVoterID(t *testing.T) {
	t.Parallel()

	output, err := Render(sampleReport(), RenderOptions{ShowVoterLog: true})
	require.NoError(t, err)

	assert.Contains(t, output, "Voter log")
	assert.Contains(t, output, "ana: Ascent (Day), Haven")
	assert.Contains(t, output, "2: Bind (Night)")
}

func TestRenderFlagsPartialReports(t *testing.T) {
	t.Parallel()

	report := sampleReport()
	report.Stats.FailedFetches = 1

	output, err := Render(report, RenderOptions{})
	require.NoError(t, err)
	assert.Contains(t, output, "[partial] 1 reaction fetches failed, 0 options skipped")
}

func TestRenderEmptyReport(t *testing.T) {
	t.Parallel()

	output, err := Render(application.TallyReport{
		Rules: domain.VotingRules{MaxVotesPerVoter: 3, NumberOfWinners: 3},
	}, RenderOptions{})
	require.NoError(t, err)
	assert.Contains(t, output, "Top 3 Winners")
	assert.Contains(t, output, "No votes were cast.")
	assert.Contains(t, output, "Processed 0 Voters with 0 votes in")
}

func TestRenderBarScalesToTopCount(t *testing.T) {
	t.Parallel()

	s := newStyles()
	assert.Equal(t, "[=====-----]", renderBar(1, 2, 10, s))
	assert.Equal(t, "[----------]", renderBar(0, 0, 10, s))
	assert.Empty(t, renderBar(1, 1, 0, s))
}
