package application

import (
	"sort"

	"github.com/bnema/reaction-tally/internal/domain"
	"github.com/bnema/reaction-tally/internal/ports"
)

type RankingEngine struct {
	rng ports.Random
}

func NewRankingEngine(rng ports.Random) *RankingEngine {
	return &RankingEngine{rng: orGlobalRandom(rng)}
}

// Tally counts one vote per ballot for its option key.
func (r *RankingEngine) Tally(records *domain.VoterRecords) domain.OptionTally {
	tally := make(domain.OptionTally)
	for _, voter := range records.Voters() {
		for _, ballot := range records.Ballots(voter) {
			tally[ballot.Option()]++
		}
	}
	return tally
}

// Rank returns the n top options. Equal counts are ordered by a fresh random
// draw per option, so ties at the cut are broken at random.
func (r *RankingEngine) Rank(tally domain.OptionTally, n int) []domain.Standing {
	if n <= 0 {
		return nil
	}

	type keyedStanding struct {
		domain.Standing
		key uint64
	}
	rows := make([]keyedStanding, 0, len(tally))
	for label, count := range tally {
		if count <= 0 {
			continue
		}
		rows = append(rows, keyedStanding{
			Standing: domain.Standing{Label: label, Count: count},
			key:      r.rng.Uint64(),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		if rows[i].key != rows[j].key {
			return rows[i].key < rows[j].key
		}
		return rows[i].Label < rows[j].Label
	})

	winners := make([]domain.Standing, 0, min(n, len(rows)))
	for i, row := range rows[:min(n, len(rows))] {
		row.Standing.Rank = i + 1
		winners = append(winners, row.Standing)
	}
	return winners
}

// FullResults lists every option by count descending, then label.
func (r *RankingEngine) FullResults(tally domain.OptionTally) []domain.Standing {
	results := make([]domain.Standing, 0, len(tally))
	for label, count := range tally {
		if count <= 0 {
			continue
		}
		results = append(results, domain.Standing{Label: label, Count: count})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Count != results[j].Count {
			return results[i].Count > results[j].Count
		}
		return results[i].Label < results[j].Label
	})
	for i := range results {
		results[i].Rank = i + 1
	}
	return results
}

// VoterLog lists every voter with the ballots that survived capping.
func (r *RankingEngine) VoterLog(records *domain.VoterRecords) []domain.VoterLogEntry {
	voters := records.Voters()
	entries := make([]domain.VoterLogEntry, 0, len(voters))
	for _, voter := range voters {
		ballots := records.Ballots(voter)
		if len(ballots) == 0 {
			continue
		}
		labels := make([]string, 0, len(ballots))
		for _, ballot := range ballots {
			labels = append(labels, ballot.LogLabel())
		}
		entries = append(entries, domain.VoterLogEntry{
			Voter:   voter,
			Name:    records.Name(voter),
			Ballots: labels,
		})
	}
	return entries
}
