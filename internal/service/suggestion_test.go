package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"vocabpoll/internal/domain"
	"vocabpoll/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type suggestionMocks struct {
	users       *testutil.MockUserRepository
	pairs       *testutil.MockPairRepository
	suggestions *testutil.MockSuggestionRepository
	suggester   *testutil.MockSuggester
	messenger   *testutil.MockMessenger
	scheduler   *testutil.MockScheduler
}

func newSuggestionService() (*SuggestionService, suggestionMocks) {
	m := suggestionMocks{
		users:       new(testutil.MockUserRepository),
		pairs:       new(testutil.MockPairRepository),
		suggestions: new(testutil.MockSuggestionRepository),
		suggester:   new(testutil.MockSuggester),
		messenger:   new(testutil.MockMessenger),
		scheduler:   new(testutil.MockScheduler),
	}
	logger := testutil.NewTestLogger()
	remover := NewUserService(m.users, m.scheduler, m.messenger, nil, logger)
	cfg := SuggestionConfig{Concurrency: 2, Retries: 3, Count: 5, HistorySize: 20}
	s := NewSuggestionService(m.users, m.pairs, m.suggestions, m.suggester, m.messenger, remover, cfg, logger)
	return s, m
}

func TestSuggestionService_SuggestForUser(t *testing.T) {
	learnt := []domain.Pair{testutil.NewTestPair(1, "hello", "привіт", 3)}
	candidates := []domain.Candidate{
		{Source: "good morning", Target: "доброго ранку"},
		{Source: "Hello", Target: "привіт"},
		{Source: "good night", Target: "на добраніч"},
		{Source: "good night", Target: "добраніч"},
	}

	s, m := newSuggestionService()
	m.pairs.On("ListActive", mock.Anything, int64(1), 20).Return(learnt, nil)
	m.suggester.On("SuggestPairs", mock.Anything, learnt, 5).Return(candidates, nil)
	m.messenger.On("SendSuggestion", mock.Anything, int64(1), suggestionQuestion,
		[]string{"good morning - доброго ранку", "good night - на добраніч"}).Return("poll-1", nil)
	m.suggestions.On("Create", mock.Anything, domain.SuggestionRecord{
		PollID: "poll-1",
		UserID: 1,
		Candidates: []domain.Candidate{
			{Source: "good morning", Target: "доброго ранку"},
			{Source: "good night", Target: "на добраніч"},
		},
	}).Return(nil)

	err := s.SuggestForUser(context.Background(), 1)

	require.NoError(t, err)
	m.messenger.AssertExpectations(t)
	m.suggestions.AssertExpectations(t)
}

func TestSuggestionService_SuggestForUser_Retries(t *testing.T) {
	tests := []struct {
		name        string
		failures    int
		failure     error
		expectCalls int
		expectErr   bool
	}{
		{name: "recovers after malformed answer", failures: 2, failure: domain.ErrUpstreamFormat, expectCalls: 3},
		{name: "gives up after retries", failures: 3, failure: domain.ErrUpstreamFormat, expectCalls: 3, expectErr: true},
		{name: "other errors are not retried", failures: 1, failure: errors.New("rate limited"), expectCalls: 1, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, m := newSuggestionService()
			m.pairs.On("ListActive", mock.Anything, int64(1), 20).Return([]domain.Pair{}, nil)
			m.suggester.On("SuggestPairs", mock.Anything, mock.Anything, 5).
				Return(nil, fmt.Errorf("parse: %w", tt.failure)).Times(tt.failures)
			m.suggester.On("SuggestPairs", mock.Anything, mock.Anything, 5).
				Return([]domain.Candidate{{Source: "a", Target: "б"}, {Source: "c", Target: "д"}}, nil)
			if !tt.expectErr {
				m.messenger.On("SendSuggestion", mock.Anything, int64(1), suggestionQuestion, mock.Anything).Return("poll-1", nil)
				m.suggestions.On("Create", mock.Anything, mock.Anything).Return(nil)
			}

			err := s.SuggestForUser(context.Background(), 1)

			if tt.expectErr {
				assert.Error(t, err)
				m.messenger.AssertNotCalled(t, "SendSuggestion", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
			}
			m.suggester.AssertNumberOfCalls(t, "SuggestPairs", tt.expectCalls)
		})
	}
}

func TestSuggestionService_SuggestForUser_NotEnoughCandidates(t *testing.T) {
	s, m := newSuggestionService()
	m.pairs.On("ListActive", mock.Anything, int64(1), 20).Return([]domain.Pair{}, nil)
	m.suggester.On("SuggestPairs", mock.Anything, mock.Anything, 5).
		Return([]domain.Candidate{{Source: "only", Target: "єдиний"}}, nil)

	err := s.SuggestForUser(context.Background(), 1)

	assert.NoError(t, err)
	m.messenger.AssertNotCalled(t, "SendSuggestion", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSuggestionService_SuggestAll(t *testing.T) {
	s, m := newSuggestionService()
	m.users.On("List", mock.Anything).Return([]domain.User{{ID: 1}, {ID: 2}, {ID: 3}}, nil)
	for _, id := range []int64{1, 2, 3} {
		m.pairs.On("ListActive", mock.Anything, id, 20).Return([]domain.Pair{}, nil)
	}
	m.suggester.On("SuggestPairs", mock.Anything, mock.Anything, 5).
		Return([]domain.Candidate{{Source: "a", Target: "б"}, {Source: "c", Target: "д"}}, nil)
	m.messenger.On("SendSuggestion", mock.Anything, int64(1), mock.Anything, mock.Anything).Return("poll-1", nil)
	m.messenger.On("SendSuggestion", mock.Anything, int64(2), mock.Anything, mock.Anything).
		Return("", fmt.Errorf("send: %w", domain.ErrUnauthorizedSender))
	m.messenger.On("SendSuggestion", mock.Anything, int64(3), mock.Anything, mock.Anything).
		Return("", errors.New("network down"))
	m.suggestions.On("Create", mock.Anything, mock.Anything).Return(nil)
	m.scheduler.On("Delete", mock.Anything, int64(2)).Return(nil)
	m.users.On("DeleteCascade", mock.Anything, int64(2)).Return(nil)

	err := s.SuggestAll(context.Background())

	require.NoError(t, err)
	m.users.AssertCalled(t, "DeleteCascade", mock.Anything, int64(2))
	m.users.AssertNotCalled(t, "DeleteCascade", mock.Anything, int64(3))
	m.suggestions.AssertNumberOfCalls(t, "Create", 1)
}

func TestSuggestionService_HandleSuggestionResult(t *testing.T) {
	record := &domain.SuggestionRecord{
		PollID: "poll-1",
		UserID: 1,
		Candidates: []domain.Candidate{
			{Source: "good morning", Target: "доброго ранку"},
			{Source: "good night", Target: "на добраніч"},
			{Source: "hello", Target: "привіт"},
		},
	}

	t.Run("selected pairs are added", func(t *testing.T) {
		s, m := newSuggestionService()
		m.suggestions.On("Get", mock.Anything, "poll-1").Return(record, nil)
		m.pairs.On("Create", mock.Anything, int64(1), "good morning", "доброго ранку").Return(nil)
		m.pairs.On("Create", mock.Anything, int64(1), "hello", "привіт").Return(domain.ErrConflict)
		m.suggestions.On("Delete", mock.Anything, "poll-1").Return(nil)
		m.messenger.On("SendMessage", mock.Anything, int64(1),
			"New translation pairs are added:\ngood morning - доброго ранку", false).Return(nil)

		err := s.HandleSuggestionResult(context.Background(), domain.PollResult{
			PollID:      "poll-1",
			VoterCounts: []int{1, 0, 1},
		})

		require.NoError(t, err)
		m.pairs.AssertExpectations(t)
		m.suggestions.AssertExpectations(t)
		m.messenger.AssertExpectations(t)
	})

	t.Run("unknown poll", func(t *testing.T) {
		s, m := newSuggestionService()
		m.suggestions.On("Get", mock.Anything, "poll-9").Return(nil, nil)

		err := s.HandleSuggestionResult(context.Background(), domain.PollResult{PollID: "poll-9", VoterCounts: []int{1}})

		assert.NoError(t, err)
		m.pairs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		m.suggestions.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("nothing selected", func(t *testing.T) {
		s, m := newSuggestionService()

		err := s.HandleSuggestionResult(context.Background(), domain.PollResult{PollID: "poll-1", Closed: true, VoterCounts: []int{0, 0, 0}})

		assert.NoError(t, err)
		m.suggestions.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})
}
