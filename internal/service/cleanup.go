package service

import (
	"context"
	"fmt"

	"vocabpoll/internal/repository"

	"go.uber.org/zap"
)

// PollRetentionDays is how long an unanswered poll is remembered
const PollRetentionDays = 7

// CleanupService forgets polls the users never answered
type CleanupService struct {
	polls       repository.PollRepository
	suggestions repository.SuggestionRepository
	logger      *zap.Logger
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(polls repository.PollRepository, suggestions repository.SuggestionRepository, logger *zap.Logger) *CleanupService {
	return &CleanupService{
		polls:       polls,
		suggestions: suggestions,
		logger:      logger,
	}
}

// CleanupStalePolls removes poll records older than PollRetentionDays
func (s *CleanupService) CleanupStalePolls(ctx context.Context) error {
	s.logger.Info("Starting cleanup of stale polls", zap.Int("retention_days", PollRetentionDays))

	quizzes, err := s.polls.DeleteStale(ctx, PollRetentionDays)
	if err != nil {
		s.logger.Error("Failed to cleanup quiz polls", zap.Error(err))
		return fmt.Errorf("failed to cleanup quiz polls: %w", err)
	}

	suggestions, err := s.suggestions.DeleteStale(ctx, PollRetentionDays)
	if err != nil {
		s.logger.Error("Failed to cleanup suggestion polls", zap.Error(err))
		return fmt.Errorf("failed to cleanup suggestion polls: %w", err)
	}

	s.logger.Info("Cleanup completed successfully",
		zap.Int64("quiz_polls", quizzes),
		zap.Int64("suggestion_polls", suggestions),
	)
	return nil
}
