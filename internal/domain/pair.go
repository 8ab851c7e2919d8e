package domain

import (
	"sort"
	"time"
)

// Pair is a source phrase and its translation owned by one user
type Pair struct {
	ID           int64
	UserID       int64
	Source       string
	Target       string
	PollCount    int
	CorrectCount int
	WrongCount   int
	Active       bool
	CreatedAt    time.Time
}

// Candidate is a proposed pair that is not stored yet
type Candidate struct {
	Source string
	Target string
}

// Side selects which text of a pair is used
type Side int

const (
	SideSource Side = iota
	SideTarget
)

// Text returns the text on the given side
func (p Pair) Text(side Side) string {
	if side == SideTarget {
		return p.Target
	}
	return p.Source
}

// SortByPollCount orders pairs least-polled first, keeping the input order for ties
func SortByPollCount(pairs []Pair) []Pair {
	sorted := make([]Pair, len(pairs))
	copy(sorted, pairs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PollCount < sorted[j].PollCount
	})
	return sorted
}
