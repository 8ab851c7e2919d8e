package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"vocabpoll/internal/domain"
	"vocabpoll/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPairService_ListPairs(t *testing.T) {
	tests := []struct {
		name          string
		mockPairs     []domain.Pair
		mockError     error
		expectedLines []string
		expectedError bool
	}{
		{
			name:          "no pairs",
			mockPairs:     []domain.Pair{},
			expectedLines: []string{"You have no translation pairs yet"},
		},
		{
			name: "sorted by poll count",
			mockPairs: []domain.Pair{
				testutil.NewTestPair(1, "often", "часто", 5),
				testutil.NewTestPair(1, "rarely", "рідко", 1),
			},
			expectedLines: []string{
				"<b>Your translation pairs (2)</b>",
				"rarely - рідко <i>(polled 1 times, correct 0, wrong 0)</i>\noften - часто <i>(polled 5 times",
			},
		},
		{
			name:          "html is escaped",
			mockPairs:     []domain.Pair{testutil.NewTestPair(1, "<b>bold</b>", "a & b", 0)},
			expectedLines: []string{"&lt;b&gt;bold&lt;/b&gt; - a &amp; b"},
		},
		{
			name:          "database error",
			mockError:     fmt.Errorf("db error"),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(testutil.MockPairRepository)
			mockRepo.On("ListActive", mock.Anything, int64(1), 0).Return(tt.mockPairs, tt.mockError)

			service := NewPairService(mockRepo)

			messages, err := service.ListPairs(context.Background(), 1)

			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, messages, 1)
			for _, line := range tt.expectedLines {
				assert.Contains(t, messages[0], line)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestPairService_ListPairs_SplitsLongVocabulary(t *testing.T) {
	pairs := make([]domain.Pair, 0, 200)
	for i := 0; i < 200; i++ {
		source := fmt.Sprintf("%s%d", strings.Repeat("x", 30), i)
		pairs = append(pairs, testutil.NewTestPair(1, source, strings.Repeat("y", 30), 0))
	}

	mockRepo := new(testutil.MockPairRepository)
	mockRepo.On("ListActive", mock.Anything, int64(1), 0).Return(pairs, nil)

	messages, err := NewPairService(mockRepo).ListPairs(context.Background(), 1)

	require.NoError(t, err)
	assert.Greater(t, len(messages), 1)
	total := 0
	for _, m := range messages {
		assert.LessOrEqual(t, len(m), maxMessageLength)
		total += strings.Count(m, "polled 0 times")
	}
	assert.Equal(t, 200, total)
}

func TestPairService_ListPairs_TruncatesOversizedPair(t *testing.T) {
	pairs := []domain.Pair{
		testutil.NewTestPair(1, strings.Repeat("я", 5000), strings.Repeat("&", 5000), 3),
		testutil.NewTestPair(1, "short", "коротко", 4),
	}

	mockRepo := new(testutil.MockPairRepository)
	mockRepo.On("ListActive", mock.Anything, int64(1), 0).Return(pairs, nil)

	messages, err := NewPairService(mockRepo).ListPairs(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.LessOrEqual(t, len(messages[0]), maxMessageLength)
	assert.Contains(t, messages[0], strings.Repeat("я", maxListedText)+"… - ")
	assert.Contains(t, messages[0], "polled 3 times")
	assert.Contains(t, messages[0], "short - коротко")
}
