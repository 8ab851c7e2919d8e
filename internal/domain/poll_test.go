package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPollResult(t *testing.T) {
	tests := []struct {
		name              string
		result            PollResult
		expectedAnswered  bool
		expectedCorrect   bool
		expectedSelection []int
	}{
		{
			name:              "correct vote",
			result:            PollResult{VoterCounts: []int{0, 1, 0}, CorrectOption: 1},
			expectedAnswered:  true,
			expectedCorrect:   true,
			expectedSelection: []int{1},
		},
		{
			name:              "wrong vote",
			result:            PollResult{VoterCounts: []int{1, 0, 0}, CorrectOption: 2},
			expectedAnswered:  true,
			expectedCorrect:   false,
			expectedSelection: []int{0},
		},
		{
			name:             "no votes yet",
			result:           PollResult{VoterCounts: []int{0, 0}, CorrectOption: 0},
			expectedAnswered: false,
		},
		{
			name:             "closed without votes",
			result:           PollResult{Closed: true, VoterCounts: []int{0, 0}},
			expectedAnswered: true,
		},
		{
			name:              "correct option out of range",
			result:            PollResult{VoterCounts: []int{1}, CorrectOption: 3},
			expectedAnswered:  true,
			expectedSelection: []int{0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedAnswered, tt.result.Answered())
			assert.Equal(t, tt.expectedCorrect, tt.result.AnsweredCorrectly())
			assert.Equal(t, tt.expectedSelection, tt.result.SelectedOptions())
		})
	}
}
