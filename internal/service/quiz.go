package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"vocabpoll/internal/domain"
	"vocabpoll/internal/repository"

	"go.uber.org/zap"
)

const (
	minPairsForPoll         = 2
	maxQuizOptions          = 4
	openQuestionProbability = 0.2
)

// poolSizes is the distribution of how many least-polled pairs a quiz pair is picked from.
// Small pools dominate so under-practised pairs come up more often.
var poolSizes = buildPoolSizes(map[int]int{5: 7, 8: 6, 12: 5, 15: 4, 20: 3, 25: 3, 30: 1})

func buildPoolSizes(weights map[int]int) []int {
	sizes := []int{5, 8, 12, 15, 20, 25, 30}
	var dist []int
	for _, size := range sizes {
		for i := 0; i < weights[size]; i++ {
			dist = append(dist, size)
		}
	}
	return dist
}

// globalRandom uses the goroutine-safe top-level functions of math/rand
type globalRandom struct{}

func (globalRandom) Intn(n int) int   { return rand.Intn(n) }
func (globalRandom) Float64() float64 { return rand.Float64() }

// QuizService picks pairs to quiz users on and records the answers
type QuizService struct {
	pairs     repository.PairRepository
	actions   repository.ActionRepository
	polls     repository.PollRepository
	messenger Messenger
	quiet     domain.QuietHours
	random    Random
	now       func() time.Time
	logger    *zap.Logger
}

// NewQuizService creates a new quiz service
func NewQuizService(
	pairs repository.PairRepository,
	actions repository.ActionRepository,
	polls repository.PollRepository,
	messenger Messenger,
	quiet domain.QuietHours,
	logger *zap.Logger,
) *QuizService {
	return &QuizService{
		pairs:     pairs,
		actions:   actions,
		polls:     polls,
		messenger: messenger,
		quiet:     quiet,
		random:    globalRandom{},
		now:       time.Now,
		logger:    logger,
	}
}

// WithRandom replaces the randomness source
func (s *QuizService) WithRandom(r Random) *QuizService {
	s.random = r
	return s
}

// WithClock replaces the time source
func (s *QuizService) WithClock(now func() time.Time) *QuizService {
	s.now = now
	return s
}

// RunPoll quizzes the user on one of their pairs
func (s *QuizService) RunPoll(ctx context.Context, userID int64) error {
	if s.quiet.Contains(s.now()) {
		s.logger.Debug("Skipping poll during quiet hours", zap.Int64("user_id", userID))
		return nil
	}

	pairs, err := s.pairs.ListActive(ctx, userID, 0)
	if err != nil {
		return fmt.Errorf("failed to list pairs: %w", err)
	}

	if len(pairs) < minPairsForPoll {
		text := fmt.Sprintf(
			"I tried to send you a poll, but you don't have enough translation pairs.\n"+
				"Current number - %d, needed - %d or more. Please, add some words/phrases with /add_pair",
			len(pairs), minPairsForPoll,
		)
		return s.messenger.SendMessage(ctx, userID, text, false)
	}

	questionSide, answerSide := domain.SideSource, domain.SideTarget
	if s.random.Intn(2) == 0 {
		questionSide, answerSide = answerSide, questionSide
	}

	pair := s.selectPair(pairs)
	question := pair.Text(questionSide)
	answer := pair.Text(answerSide)

	if s.random.Float64() < openQuestionProbability {
		asked, err := s.askOpenQuestion(ctx, userID, pair, question, answer)
		if err != nil || asked {
			return err
		}
	}

	options, correct := s.gatherOptions(pairs, answer, answerSide)

	pollID, err := s.messenger.SendQuiz(ctx, userID, question, options, correct)
	if err != nil {
		return fmt.Errorf("failed to send quiz: %w", err)
	}

	if err := s.polls.Create(ctx, domain.PollRecord{PollID: pollID, UserID: userID, PairSource: pair.Source}); err != nil {
		return fmt.Errorf("failed to record poll: %w", err)
	}
	if err := s.pairs.IncrementPollCount(ctx, userID, pair.Source); err != nil {
		return fmt.Errorf("failed to increment poll count: %w", err)
	}

	s.logger.Info("Quiz sent",
		zap.Int64("user_id", userID),
		zap.String("poll_id", pollID),
		zap.String("source", pair.Source),
	)
	return nil
}

// selectPair picks uniformly from a randomly sized prefix of the least-polled pairs
func (s *QuizService) selectPair(pairs []domain.Pair) domain.Pair {
	sorted := domain.SortByPollCount(pairs)
	size := poolSizes[s.random.Intn(len(poolSizes))]
	if size > len(sorted) {
		size = len(sorted)
	}
	return sorted[s.random.Intn(size)]
}

// gatherOptions returns shuffled distinct answers including the correct one
// and the index of the correct one
func (s *QuizService) gatherOptions(pairs []domain.Pair, answer string, side domain.Side) ([]string, int) {
	distinct := map[string]bool{}
	for _, p := range pairs {
		distinct[p.Text(side)] = true
	}
	distinct[answer] = true

	limit := maxQuizOptions
	if len(distinct) < limit {
		limit = len(distinct)
	}

	options := []string{answer}
	seen := map[string]bool{answer: true}
	for len(options) < limit {
		candidate := pairs[s.random.Intn(len(pairs))].Text(side)
		if seen[candidate] {
			continue
		}
		seen[candidate] = true
		options = append(options, candidate)
	}

	for i := len(options) - 1; i > 0; i-- {
		j := s.random.Intn(i + 1)
		options[i], options[j] = options[j], options[i]
	}

	correct := 0
	for i, o := range options {
		if o == answer {
			correct = i
			break
		}
	}
	return options, correct
}

// askOpenQuestion opens a free-text question. It reports false when a
// different operation is in flight and a quiz should be sent instead.
func (s *QuizService) askOpenQuestion(ctx context.Context, userID int64, pair domain.Pair, question, answer string) (bool, error) {
	current, err := s.actions.Get(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to get pending action: %w", err)
	}

	if open, ok := current.(domain.OpenQuestion); ok {
		text := fmt.Sprintf("Reminder: Send me the translation for '%s'", open.Question)
		return true, s.messenger.SendMessage(ctx, userID, text, false)
	}
	if current != nil {
		return false, nil
	}

	err = s.actions.Create(ctx, userID, domain.OpenQuestion{
		Question:   question,
		Answer:     answer,
		PairSource: pair.Source,
	})
	if errors.Is(err, domain.ErrConflict) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create open question: %w", err)
	}

	s.logger.Info("Open question asked",
		zap.Int64("user_id", userID),
		zap.String("source", pair.Source),
	)
	return true, s.messenger.SendMessage(ctx, userID, fmt.Sprintf("Send me the translation for '%s'", question), false)
}

// HandleQuizResult records the answer to a quiz poll and forgets the poll.
// Unknown polls are ignored since results may be delivered more than once.
func (s *QuizService) HandleQuizResult(ctx context.Context, result domain.PollResult) error {
	if !result.Answered() {
		return nil
	}

	record, err := s.polls.Get(ctx, result.PollID)
	if err != nil {
		return fmt.Errorf("failed to get poll: %w", err)
	}
	if record == nil {
		s.logger.Debug("Result for unknown quiz poll", zap.String("poll_id", result.PollID))
		return nil
	}

	if len(result.SelectedOptions()) > 0 {
		if result.AnsweredCorrectly() {
			err = s.pairs.IncrementCorrect(ctx, record.UserID, record.PairSource)
		} else {
			err = s.pairs.IncrementWrong(ctx, record.UserID, record.PairSource)
		}
		if err != nil {
			return domain.WithOwner(record.UserID, fmt.Errorf("failed to record quiz answer: %w", err))
		}
	}

	if err := s.polls.Delete(ctx, result.PollID); err != nil {
		return domain.WithOwner(record.UserID, fmt.Errorf("failed to delete poll: %w", err))
	}

	s.logger.Info("Quiz answered",
		zap.Int64("user_id", record.UserID),
		zap.String("poll_id", result.PollID),
		zap.Bool("correct", result.AnsweredCorrectly()),
	)
	return nil
}
