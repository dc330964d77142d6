package domain

import (
	"slices"
	"sync"
)

type VoterID = UserID

type OptionKey string

func NewOptionKey(title string, variant Variant) OptionKey {
	return OptionKey(title + " " + string(variant))
}

type Ballot struct {
	Voter   VoterID
	Title   string
	Variant Variant
}

func (b Ballot) Option() OptionKey {
	return NewOptionKey(b.Title, b.Variant)
}

// LogLabel is the form used in voter logs, e.g. "Map-A (Day)".
func (b Ballot) LogLabel() string {
	return b.Title + " (" + string(b.Variant) + ")"
}

// VoterRecords is the per-voter ballot table for one tally run. It is safe
// for concurrent writers.
type VoterRecords struct {
	mu      sync.Mutex
	ballots map[VoterID][]Ballot
	names   map[VoterID]string
}

func NewVoterRecords() *VoterRecords {
	return &VoterRecords{
		ballots: make(map[VoterID][]Ballot),
		names:   make(map[VoterID]string),
	}
}

func (r *VoterRecords) Add(user User, title string, variant Variant) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ballots[user.ID] = append(r.ballots[user.ID], Ballot{Voter: user.ID, Title: title, Variant: variant})
	if _, ok := r.names[user.ID]; !ok {
		r.names[user.ID] = user.DisplayName()
	}
}

// Voters returns every voter id in ascending order.
func (r *VoterRecords) Voters() []VoterID {
	r.mu.Lock()
	defer r.mu.Unlock()

	voters := make([]VoterID, 0, len(r.ballots))
	for voter := range r.ballots {
		voters = append(voters, voter)
	}
	slices.SortFunc(voters, CompareUserIDs)
	return voters
}

func (r *VoterRecords) Ballots(voter VoterID) []Ballot {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.ballots[voter])
}

func (r *VoterRecords) Count(voter VoterID) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.ballots[voter])
}

// RemoveAt deletes the ballot at index i of voter's list. Out of range
// indexes are ignored.
func (r *VoterRecords) RemoveAt(voter VoterID, i int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.ballots[voter]
	if i < 0 || i >= len(current) {
		return
	}
	r.ballots[voter] = slices.Delete(current, i, i+1)
}

func (r *VoterRecords) Name(voter VoterID) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name, ok := r.names[voter]; ok && name != "" {
		return name
	}
	return string(voter)
}

func (r *VoterRecords) VoterCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.ballots)
}

func (r *VoterRecords) BallotCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	total := 0
	for _, ballots := range r.ballots {
		total += len(ballots)
	}
	return total
}
