package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vocabpoll/internal/domain"
	"vocabpoll/internal/repository"

	"go.uber.org/zap"
)

const (
	msgAskSource       = "Send me the text of english phrase/word"
	msgAskTranslation  = "Send me the translation"
	msgFinishCurrent   = "Please, finish current operation or cancel it (/cancel)"
	msgNoActive        = "There is no active operations"
	msgCanceled        = "Operation is canceled"
	msgPairDeleted     = "Translation pair is deleted"
	msgPairNotFound    = "There is no pair with such english phrase. Please, try again or cancel the operation (/cancel)"
	msgRateIncorrect   = "Specified rate is incorrect. Please, try again or cancel the operation (/cancel)"
	msgNothingToAccept = "There is no suggested translation to accept. Send me the translation"
	msgEmptyText       = "The text is empty. Please, try again or cancel the operation (/cancel)"
)

// AcceptSuggestion is the reply that accepts a machine-suggested translation
const AcceptSuggestion = "+"

// ActionService drives the per-user multi-step operations
type ActionService struct {
	actions    repository.ActionRepository
	pairs      repository.PairRepository
	scheduler  Scheduler
	translator Translator
	logger     *zap.Logger
}

// NewActionService creates a new action service. translator may be nil.
func NewActionService(
	actions repository.ActionRepository,
	pairs repository.PairRepository,
	scheduler Scheduler,
	translator Translator,
	logger *zap.Logger,
) *ActionService {
	return &ActionService{
		actions:    actions,
		pairs:      pairs,
		scheduler:  scheduler,
		translator: translator,
		logger:     logger,
	}
}

// StartAddPair begins collecting a new pair
func (s *ActionService) StartAddPair(ctx context.Context, userID int64) (string, error) {
	if err := s.begin(ctx, userID, domain.CreatingPair{}); err != nil {
		return "", err
	}
	return msgAskSource, nil
}

// StartDeletePair begins deleting a pair
func (s *ActionService) StartDeletePair(ctx context.Context, userID int64) (string, error) {
	if err := s.begin(ctx, userID, domain.DeletingPair{}); err != nil {
		return "", err
	}
	return msgAskSource + " from the pair you want to delete", nil
}

// StartPollingRate begins changing the polling rate measured in unit
func (s *ActionService) StartPollingRate(ctx context.Context, userID int64, unit string) (string, error) {
	u, err := domain.ParseTimeUnit(unit)
	if err != nil {
		return "", domain.NewUserError(domain.ErrValidation,
			"Unsupported time unit. Use /set_polling_rate_in_minutes or /set_polling_rate_in_hours")
	}

	if err := s.begin(ctx, userID, domain.UpdatingPollingRate{Unit: u}); err != nil {
		return "", err
	}
	return fmt.Sprintf("Send me the rate of how often you want to get polls in %s", u), nil
}

// Cancel drops the pending action of the user
func (s *ActionService) Cancel(ctx context.Context, userID int64) (string, error) {
	existed, err := s.actions.Delete(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to delete pending action: %w", err)
	}
	if !existed {
		return "", domain.NewUserError(domain.ErrNoActiveOperation, msgNoActive)
	}
	return msgCanceled, nil
}

// Continue feeds free text into the user's pending action.
// It returns an empty reply when there is nothing pending.
func (s *ActionService) Continue(ctx context.Context, userID int64, text string) (string, error) {
	action, err := s.actions.Get(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to get pending action: %w", err)
	}

	text = strings.TrimSpace(text)

	switch a := action.(type) {
	case nil:
		return "", nil
	case domain.CreatingPair:
		if text == "" {
			return "", domain.NewUserError(domain.ErrValidation, msgEmptyText)
		}
		if a.Source == "" {
			return s.receiveSource(ctx, userID, text)
		}
		return s.receiveTarget(ctx, userID, a, text)
	case domain.DeletingPair:
		return s.receiveDeletion(ctx, userID, text)
	case domain.UpdatingPollingRate:
		return s.receiveRate(ctx, userID, a, text)
	case domain.OpenQuestion:
		return s.receiveAnswer(ctx, userID, a, text)
	default:
		return "", fmt.Errorf("unsupported pending action %T", action)
	}
}

// begin stores a new pending action, refusing when another one is in flight
func (s *ActionService) begin(ctx context.Context, userID int64, action domain.Action) error {
	err := s.actions.Create(ctx, userID, action)
	if errors.Is(err, domain.ErrConflict) {
		return domain.NewUserError(domain.ErrConflict, msgFinishCurrent)
	}
	if err != nil {
		return fmt.Errorf("failed to create %s action: %w", action.Kind(), err)
	}

	s.logger.Info("Pending action started",
		zap.Int64("user_id", userID),
		zap.String("kind", string(action.Kind())),
	)
	return nil
}

func (s *ActionService) finish(ctx context.Context, userID int64) error {
	if _, err := s.actions.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear pending action: %w", err)
	}
	return nil
}

func (s *ActionService) receiveSource(ctx context.Context, userID int64, source string) (string, error) {
	existing, err := s.pairs.GetActive(ctx, userID, source)
	if err != nil {
		return "", fmt.Errorf("failed to look up pair: %w", err)
	}
	if existing != nil {
		return "", domain.NewUserError(domain.ErrConflict, fmt.Sprintf(
			"You already have a pair for %q. Send another phrase or cancel the operation (/cancel)", source))
	}

	suggestion := s.suggestTranslation(ctx, userID, source)
	if err := s.actions.Update(ctx, userID, domain.CreatingPair{Source: source, Suggestion: suggestion}); err != nil {
		return "", fmt.Errorf("failed to save source text: %w", err)
	}

	if suggestion == "" {
		return msgAskTranslation, nil
	}
	return fmt.Sprintf("%s or send %s to use %q", msgAskTranslation, AcceptSuggestion, suggestion), nil
}

func (s *ActionService) suggestTranslation(ctx context.Context, userID int64, source string) string {
	if s.translator == nil {
		return ""
	}

	suggestion, err := s.translator.Translate(ctx, source)
	if err != nil {
		s.logger.Warn("Failed to suggest translation",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
		return ""
	}
	return strings.TrimSpace(suggestion)
}

func (s *ActionService) receiveTarget(ctx context.Context, userID int64, a domain.CreatingPair, text string) (string, error) {
	target := text
	if text == AcceptSuggestion {
		if a.Suggestion == "" {
			return "", domain.NewUserError(domain.ErrValidation, msgNothingToAccept)
		}
		target = a.Suggestion
	}

	err := s.pairs.Create(ctx, userID, a.Source, target)
	if errors.Is(err, domain.ErrConflict) {
		if err := s.finish(ctx, userID); err != nil {
			return "", err
		}
		return "", domain.NewUserError(domain.ErrConflict, fmt.Sprintf("Pair for %q already exists", a.Source))
	}
	if err != nil {
		return "", fmt.Errorf("failed to create pair: %w", err)
	}

	if err := s.finish(ctx, userID); err != nil {
		return "", err
	}

	s.logger.Info("Pair created",
		zap.Int64("user_id", userID),
		zap.String("source", a.Source),
		zap.String("target", target),
	)
	return fmt.Sprintf("New translation pair is added: %s - %s", a.Source, target), nil
}

func (s *ActionService) receiveDeletion(ctx context.Context, userID int64, source string) (string, error) {
	found, err := s.pairs.Deactivate(ctx, userID, source)
	if err != nil {
		return "", fmt.Errorf("failed to deactivate pair: %w", err)
	}
	if !found {
		return "", domain.NewUserError(domain.ErrNotFound, msgPairNotFound)
	}

	if err := s.finish(ctx, userID); err != nil {
		return "", err
	}

	s.logger.Info("Pair deactivated",
		zap.Int64("user_id", userID),
		zap.String("source", source),
	)
	return msgPairDeleted, nil
}

func (s *ActionService) receiveRate(ctx context.Context, userID int64, a domain.UpdatingPollingRate, text string) (string, error) {
	rate, err := domain.NewRate(text, a.Unit)
	if err != nil {
		return "", domain.NewUserError(domain.ErrValidation, msgRateIncorrect)
	}

	if err := s.scheduler.Put(ctx, userID, rate); err != nil {
		return "", fmt.Errorf("failed to schedule polling: %w", err)
	}
	if err := s.finish(ctx, userID); err != nil {
		return "", err
	}

	s.logger.Info("Polling rate updated",
		zap.Int64("user_id", userID),
		zap.String("rate", rate.String()),
	)
	return fmt.Sprintf("Okay, I will poll you every %s", rate), nil
}

func (s *ActionService) receiveAnswer(ctx context.Context, userID int64, q domain.OpenQuestion, text string) (string, error) {
	if q.Accepts(text) {
		if err := s.pairs.IncrementCorrect(ctx, userID, q.PairSource); err != nil {
			return "", fmt.Errorf("failed to record correct answer: %w", err)
		}
		if err := s.finish(ctx, userID); err != nil {
			return "", err
		}
		return fmt.Sprintf("Correct! %s - %s", q.Question, q.Answer), nil
	}

	if err := s.pairs.IncrementWrong(ctx, userID, q.PairSource); err != nil {
		return "", fmt.Errorf("failed to record wrong answer: %w", err)
	}

	next := q.WithNextTip()
	if err := s.actions.Update(ctx, userID, next); err != nil {
		return "", fmt.Errorf("failed to save hint: %w", err)
	}
	return fmt.Sprintf("Wrong, try again or /cancel. Hint: %s", next.Hint()), nil
}
