package domain

import "strings"

// ResultsPageSize bounds every published results or voter-log page.
const ResultsPageSize = 25

// BallotSeparator joins a voter's ballots in the voter log line.
const BallotSeparator = ", "

type OptionTally map[OptionKey]int

type Standing struct {
	Rank  int
	Label OptionKey
	Count int
}

type VoterLogEntry struct {
	Voter   VoterID
	Name    string
	Ballots []string
}

func (e VoterLogEntry) Line() string {
	return strings.Join(e.Ballots, BallotSeparator)
}

type Page[T any] struct {
	Number int
	Total  int
	Items  []T
}

// Paginate splits items into pages of at most size entries. The last page
// holds the remainder. Empty input yields no pages.
func Paginate[T any](items []T, size int) []Page[T] {
	if size <= 0 {
		size = ResultsPageSize
	}
	if len(items) == 0 {
		return nil
	}

	total := (len(items) + size - 1) / size
	pages := make([]Page[T], 0, total)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		pages = append(pages, Page[T]{
			Number: len(pages) + 1,
			Total:  total,
			Items:  items[start:end:end],
		})
	}
	return pages
}
