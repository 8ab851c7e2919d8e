package service

import (
	"context"
	"fmt"
	"testing"

	"vocabpoll/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCleanupService_CleanupStalePolls(t *testing.T) {
	tests := []struct {
		name            string
		pollError       error
		suggestionError error
		expectedError   bool
	}{
		{
			name: "successful cleanup",
		},
		{
			name:          "quiz polls error",
			pollError:     fmt.Errorf("db error"),
			expectedError: true,
		},
		{
			name:            "suggestion polls error",
			suggestionError: fmt.Errorf("db error"),
			expectedError:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			polls := new(testutil.MockPollRepository)
			suggestions := new(testutil.MockSuggestionRepository)
			polls.On("DeleteStale", mock.Anything, PollRetentionDays).Return(int64(2), tt.pollError)
			if tt.pollError == nil {
				suggestions.On("DeleteStale", mock.Anything, PollRetentionDays).Return(int64(1), tt.suggestionError)
			}

			service := NewCleanupService(polls, suggestions, testutil.NewTestLogger())

			err := service.CleanupStalePolls(context.Background())

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			polls.AssertExpectations(t)
			suggestions.AssertExpectations(t)
		})
	}
}
