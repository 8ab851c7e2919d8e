package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vocabpoll/internal/domain"
	"vocabpoll/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const suggestionQuestion = "Hi. I have a few new words for you. You can select the ones you would like to learn and I will add it to your vocabulary."

// maxPollOptions is the Telegram limit for poll options
const maxPollOptions = 10

// SuggestionConfig tunes the suggestion run
type SuggestionConfig struct {
	// Concurrency is the number of users handled at once
	Concurrency int
	// Retries is how many times a malformed answer is regenerated
	Retries int
	// Count is the number of pairs asked from the generator
	Count int
	// HistorySize is the number of recent pairs the generator is shown
	HistorySize int
}

// DefaultSuggestionConfig returns the settings used when none are configured
func DefaultSuggestionConfig() SuggestionConfig {
	return SuggestionConfig{Concurrency: 4, Retries: 3, Count: 5, HistorySize: 20}
}

// SuggestionService offers users new pairs based on what they already learn
type SuggestionService struct {
	users       repository.UserRepository
	pairs       repository.PairRepository
	suggestions repository.SuggestionRepository
	suggester   Suggester
	messenger   Messenger
	remover     UserRemover
	cfg         SuggestionConfig
	logger      *zap.Logger
}

// NewSuggestionService creates a new suggestion service
func NewSuggestionService(
	users repository.UserRepository,
	pairs repository.PairRepository,
	suggestions repository.SuggestionRepository,
	suggester Suggester,
	messenger Messenger,
	remover UserRemover,
	cfg SuggestionConfig,
	logger *zap.Logger,
) *SuggestionService {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.Retries < 1 {
		cfg.Retries = 1
	}
	return &SuggestionService{
		users:       users,
		pairs:       pairs,
		suggestions: suggestions,
		suggester:   suggester,
		messenger:   messenger,
		remover:     remover,
		cfg:         cfg,
		logger:      logger,
	}
}

// SuggestAll sends a suggestion poll to every user.
// A failure for one user is logged and does not stop the others.
func (s *SuggestionService) SuggestAll(ctx context.Context) error {
	users, err := s.users.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	s.logger.Info("Sending suggestions", zap.Int("users", len(users)))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for _, u := range users {
		u := u
		g.Go(func() error {
			err := s.SuggestForUser(gctx, u.ID)
			switch {
			case err == nil:
			case errors.Is(err, domain.ErrUnauthorizedSender):
				if err := s.remover.Remove(gctx, u.ID); err != nil {
					s.logger.Error("Failed to remove blocked user", zap.Error(err), zap.Int64("user_id", u.ID))
				}
			default:
				s.logger.Error("Failed to send suggestions",
					zap.Error(err),
					zap.Int64("user_id", u.ID),
					zap.String("user", u.DisplayName()),
				)
			}
			return nil
		})
	}

	return g.Wait()
}

// SuggestForUser generates new pairs for the user and sends them as a multi-select poll
func (s *SuggestionService) SuggestForUser(ctx context.Context, userID int64) error {
	learnt, err := s.pairs.ListActive(ctx, userID, s.cfg.HistorySize)
	if err != nil {
		return fmt.Errorf("failed to list pairs: %w", err)
	}

	candidates, err := s.generate(ctx, learnt)
	if err != nil {
		return err
	}

	candidates = filterCandidates(candidates, learnt)
	if len(candidates) < minPairsForPoll {
		s.logger.Info("Not enough new suggestions",
			zap.Int64("user_id", userID),
			zap.Int("candidates", len(candidates)),
		)
		return nil
	}

	options := make([]string, len(candidates))
	for i, c := range candidates {
		options[i] = fmt.Sprintf("%s - %s", c.Source, c.Target)
	}

	pollID, err := s.messenger.SendSuggestion(ctx, userID, suggestionQuestion, options)
	if err != nil {
		return fmt.Errorf("failed to send suggestion poll: %w", err)
	}

	record := domain.SuggestionRecord{PollID: pollID, UserID: userID, Candidates: candidates}
	if err := s.suggestions.Create(ctx, record); err != nil {
		return fmt.Errorf("failed to record suggestion poll: %w", err)
	}

	s.logger.Info("Suggestions sent",
		zap.Int64("user_id", userID),
		zap.String("poll_id", pollID),
		zap.Int("candidates", len(candidates)),
	)
	return nil
}

// generate asks the suggester again while its answers cannot be parsed
func (s *SuggestionService) generate(ctx context.Context, learnt []domain.Pair) ([]domain.Candidate, error) {
	var lastErr error
	for attempt := 1; attempt <= s.cfg.Retries; attempt++ {
		candidates, err := s.suggester.SuggestPairs(ctx, learnt, s.cfg.Count)
		if err == nil {
			return candidates, nil
		}
		if !errors.Is(err, domain.ErrUpstreamFormat) {
			return nil, fmt.Errorf("failed to generate suggestions: %w", err)
		}
		s.logger.Warn("Malformed suggestions", zap.Error(err), zap.Int("attempt", attempt))
		lastErr = err
	}
	return nil, fmt.Errorf("suggestions still malformed after %d attempts: %w", s.cfg.Retries, lastErr)
}

// filterCandidates drops empty, repeated and already learnt candidates
func filterCandidates(candidates []domain.Candidate, learnt []domain.Pair) []domain.Candidate {
	seen := map[string]bool{}
	for _, p := range learnt {
		seen[strings.ToLower(p.Source)] = true
	}

	var filtered []domain.Candidate
	for _, c := range candidates {
		c.Source = strings.TrimSpace(c.Source)
		c.Target = strings.TrimSpace(c.Target)
		key := strings.ToLower(c.Source)
		if c.Source == "" || c.Target == "" || seen[key] {
			continue
		}
		seen[key] = true
		filtered = append(filtered, c)
		if len(filtered) == maxPollOptions {
			break
		}
	}
	return filtered
}

// HandleSuggestionResult adds the pairs the user selected and forgets the poll
func (s *SuggestionService) HandleSuggestionResult(ctx context.Context, result domain.PollResult) error {
	selected := result.SelectedOptions()
	if len(selected) == 0 {
		return nil
	}

	record, err := s.suggestions.Get(ctx, result.PollID)
	if err != nil {
		return fmt.Errorf("failed to get suggestion poll: %w", err)
	}
	if record == nil {
		s.logger.Debug("Result for unknown suggestion poll", zap.String("poll_id", result.PollID))
		return nil
	}

	var added []string
	for _, i := range selected {
		if i >= len(record.Candidates) {
			continue
		}
		c := record.Candidates[i]
		err := s.pairs.Create(ctx, record.UserID, c.Source, c.Target)
		if errors.Is(err, domain.ErrConflict) {
			s.logger.Debug("Suggested pair already exists",
				zap.Int64("user_id", record.UserID),
				zap.String("source", c.Source),
			)
			continue
		}
		if err != nil {
			return domain.WithOwner(record.UserID, fmt.Errorf("failed to add suggested pair: %w", err))
		}
		added = append(added, fmt.Sprintf("%s - %s", c.Source, c.Target))
	}

	if err := s.suggestions.Delete(ctx, result.PollID); err != nil {
		return domain.WithOwner(record.UserID, fmt.Errorf("failed to delete suggestion poll: %w", err))
	}

	s.logger.Info("Suggestions accepted",
		zap.Int64("user_id", record.UserID),
		zap.String("poll_id", result.PollID),
		zap.Int("added", len(added)),
	)

	if len(added) == 0 {
		return nil
	}
	text := "New translation pairs are added:\n" + strings.Join(added, "\n")
	return domain.WithOwner(record.UserID, s.messenger.SendMessage(ctx, record.UserID, text, false))
}
