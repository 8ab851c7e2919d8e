package testutil

import (
	"context"

	"vocabpoll/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock for UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, userID int64, username string) error {
	args := m.Called(ctx, userID, username)
	return args.Error(0)
}

func (m *MockUserRepository) Get(ctx context.Context, userID int64) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) DeleteCascade(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockPairRepository is a mock for PairRepository
type MockPairRepository struct {
	mock.Mock
}

func (m *MockPairRepository) Create(ctx context.Context, userID int64, source, target string) error {
	args := m.Called(ctx, userID, source, target)
	return args.Error(0)
}

func (m *MockPairRepository) GetActive(ctx context.Context, userID int64, source string) (*domain.Pair, error) {
	args := m.Called(ctx, userID, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Pair), args.Error(1)
}

func (m *MockPairRepository) ListActive(ctx context.Context, userID int64, limit int) ([]domain.Pair, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Pair), args.Error(1)
}

func (m *MockPairRepository) Deactivate(ctx context.Context, userID int64, source string) (bool, error) {
	args := m.Called(ctx, userID, source)
	return args.Bool(0), args.Error(1)
}

func (m *MockPairRepository) IncrementPollCount(ctx context.Context, userID int64, source string) error {
	args := m.Called(ctx, userID, source)
	return args.Error(0)
}

func (m *MockPairRepository) IncrementCorrect(ctx context.Context, userID int64, source string) error {
	args := m.Called(ctx, userID, source)
	return args.Error(0)
}

func (m *MockPairRepository) IncrementWrong(ctx context.Context, userID int64, source string) error {
	args := m.Called(ctx, userID, source)
	return args.Error(0)
}

// MockActionRepository is a mock for ActionRepository
type MockActionRepository struct {
	mock.Mock
}

func (m *MockActionRepository) Get(ctx context.Context, userID int64) (domain.Action, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Action), args.Error(1)
}

func (m *MockActionRepository) Create(ctx context.Context, userID int64, action domain.Action) error {
	args := m.Called(ctx, userID, action)
	return args.Error(0)
}

func (m *MockActionRepository) Update(ctx context.Context, userID int64, action domain.Action) error {
	args := m.Called(ctx, userID, action)
	return args.Error(0)
}

func (m *MockActionRepository) Delete(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

// MockPollRepository is a mock for PollRepository
type MockPollRepository struct {
	mock.Mock
}

func (m *MockPollRepository) Create(ctx context.Context, record domain.PollRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockPollRepository) Get(ctx context.Context, pollID string) (*domain.PollRecord, error) {
	args := m.Called(ctx, pollID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PollRecord), args.Error(1)
}

func (m *MockPollRepository) Delete(ctx context.Context, pollID string) error {
	args := m.Called(ctx, pollID)
	return args.Error(0)
}

func (m *MockPollRepository) DeleteStale(ctx context.Context, days int) (int64, error) {
	args := m.Called(ctx, days)
	return args.Get(0).(int64), args.Error(1)
}

// MockSuggestionRepository is a mock for SuggestionRepository
type MockSuggestionRepository struct {
	mock.Mock
}

func (m *MockSuggestionRepository) Create(ctx context.Context, record domain.SuggestionRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockSuggestionRepository) Get(ctx context.Context, pollID string) (*domain.SuggestionRecord, error) {
	args := m.Called(ctx, pollID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SuggestionRecord), args.Error(1)
}

func (m *MockSuggestionRepository) Delete(ctx context.Context, pollID string) error {
	args := m.Called(ctx, pollID)
	return args.Error(0)
}

func (m *MockSuggestionRepository) DeleteStale(ctx context.Context, days int) (int64, error) {
	args := m.Called(ctx, days)
	return args.Get(0).(int64), args.Error(1)
}

// MockScheduleRepository is a mock for ScheduleRepository
type MockScheduleRepository struct {
	mock.Mock
}

func (m *MockScheduleRepository) Save(ctx context.Context, schedule domain.Schedule) error {
	args := m.Called(ctx, schedule)
	return args.Error(0)
}

func (m *MockScheduleRepository) Get(ctx context.Context, userID int64) (*domain.Schedule, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Schedule), args.Error(1)
}

func (m *MockScheduleRepository) List(ctx context.Context) ([]domain.Schedule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Schedule), args.Error(1)
}

func (m *MockScheduleRepository) Delete(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockMessenger is a mock for service.Messenger
type MockMessenger struct {
	mock.Mock
}

func (m *MockMessenger) SendMessage(ctx context.Context, chatID int64, text string, html bool) error {
	args := m.Called(ctx, chatID, text, html)
	return args.Error(0)
}

func (m *MockMessenger) SendQuiz(ctx context.Context, chatID int64, question string, options []string, correctOption int) (string, error) {
	args := m.Called(ctx, chatID, question, options, correctOption)
	return args.String(0), args.Error(1)
}

func (m *MockMessenger) SendSuggestion(ctx context.Context, chatID int64, question string, options []string) (string, error) {
	args := m.Called(ctx, chatID, question, options)
	return args.String(0), args.Error(1)
}

// MockScheduler is a mock for service.Scheduler
type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) Put(ctx context.Context, userID int64, rate domain.Rate) error {
	args := m.Called(ctx, userID, rate)
	return args.Error(0)
}

func (m *MockScheduler) Exists(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockScheduler) Delete(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockTranslator is a mock for service.Translator
type MockTranslator struct {
	mock.Mock
}

func (m *MockTranslator) Translate(ctx context.Context, text string) (string, error) {
	args := m.Called(ctx, text)
	return args.String(0), args.Error(1)
}

// MockSuggester is a mock for service.Suggester
type MockSuggester struct {
	mock.Mock
}

func (m *MockSuggester) SuggestPairs(ctx context.Context, learnt []domain.Pair, count int) ([]domain.Candidate, error) {
	args := m.Called(ctx, learnt, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Candidate), args.Error(1)
}
