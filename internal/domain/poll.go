package domain

// PollRecord links an outstanding quiz poll to the pair it tests
type PollRecord struct {
	PollID     string
	UserID     int64
	PairSource string
}

// SuggestionRecord links an outstanding suggestion poll to its candidates.
// Candidates are in the same order as the poll options.
type SuggestionRecord struct {
	PollID     string
	UserID     int64
	Candidates []Candidate
}

// PollResult is the state of a poll reported by the messenger
type PollResult struct {
	PollID        string
	Quiz          bool
	Closed        bool
	VoterCounts   []int
	CorrectOption int
}

// Answered reports whether anyone voted or the poll was closed
func (r PollResult) Answered() bool {
	if r.Closed {
		return true
	}
	for _, c := range r.VoterCounts {
		if c > 0 {
			return true
		}
	}
	return false
}

// AnsweredCorrectly reports whether the correct quiz option received a vote
func (r PollResult) AnsweredCorrectly() bool {
	if r.CorrectOption < 0 || r.CorrectOption >= len(r.VoterCounts) {
		return false
	}
	return r.VoterCounts[r.CorrectOption] > 0
}

// SelectedOptions returns the indexes of options with at least one vote
func (r PollResult) SelectedOptions() []int {
	var selected []int
	for i, c := range r.VoterCounts {
		if c > 0 {
			selected = append(selected, i)
		}
	}
	return selected
}
