package handler

import (
	"context"
	"runtime/debug"
	"time"

	"vocabpoll/internal/domain"
	"vocabpoll/internal/middleware"
	"vocabpoll/internal/service"
	"vocabpoll/internal/telegram"

	"github.com/google/uuid"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// requestTimeout bounds the handling of a single update
const requestTimeout = 30 * time.Second

// Services groups the use cases the handler dispatches to
type Services struct {
	Users       *service.UserService
	Actions     *service.ActionService
	Pairs       *service.PairService
	Quizzes     *service.QuizService
	Suggestions *service.SuggestionService
}

// Handler manages all bot interactions
type Handler struct {
	users       *service.UserService
	actions     *service.ActionService
	pairs       *service.PairService
	quizzes     *service.QuizService
	suggestions *service.SuggestionService
	messenger   service.Messenger
	adminChatID int64
	logger      *zap.Logger
}

// NewHandler creates a new handler instance.
// Incident reports go to adminChatID unless it is zero.
func NewHandler(
	services Services,
	messenger service.Messenger,
	adminChatID int64,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		users:       services.Users,
		actions:     services.Actions,
		pairs:       services.Pairs,
		quizzes:     services.Quizzes,
		suggestions: services.Suggestions,
		messenger:   messenger,
		adminChatID: adminChatID,
		logger:      logger,
	}
}

// RegisterHandlers registers all bot handlers.
// Commands are not registered separately: telebot hands unknown commands to OnText.
func (h *Handler) RegisterHandlers(bot *tele.Bot) {
	bot.Handle(tele.OnText, h.handleText)
	bot.Handle(tele.OnPoll, h.handlePoll)
}

// handleText handles every text message, commands included
func (h *Handler) handleText(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	ctx = withRequestID(ctx, middleware.RequestID(c))

	h.process(ctx, sender.ID, sender.Username, c.Text())
	return nil
}

// process dispatches a text message and delivers the reply or the error outcome
func (h *Handler) process(ctx context.Context, userID int64, username, text string) {
	r, err := h.dispatch(ctx, userID, username, text)
	if err != nil {
		h.handleError(ctx, userID, username, err)
		return
	}

	for _, msg := range r.messages {
		if err := h.messenger.SendMessage(ctx, userID, msg, r.html); err != nil {
			h.handleError(ctx, userID, username, err)
			return
		}
	}
}

// handlePoll handles poll state updates
func (h *Handler) handlePoll(c tele.Context) error {
	poll := c.Poll()
	if poll == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	ctx = withRequestID(ctx, middleware.RequestID(c))

	h.HandlePollResult(ctx, telegram.PollResultFrom(poll))
	return nil
}

// HandlePollResult routes a poll result to the quiz or suggestion flow.
// Failures attributed to the poll's owner go through the usual error handling,
// the rest are only reported to the admin chat.
func (h *Handler) HandlePollResult(ctx context.Context, result domain.PollResult) {
	var err error
	if result.Quiz {
		err = h.quizzes.HandleQuizResult(ctx, result)
	} else {
		err = h.suggestions.HandleSuggestionResult(ctx, result)
	}
	if err == nil {
		return
	}

	if userID, ok := domain.OwnerOf(err); ok {
		h.handleError(ctx, userID, "", err)
		return
	}

	incidentID := uuid.NewString()
	h.logger.Error("Failed to handle poll result",
		zap.Error(err),
		zap.String("incident_id", incidentID),
		zap.String("poll_id", result.PollID),
		zap.Bool("quiz", result.Quiz),
		zap.String("request_id", requestIDFrom(ctx)),
	)
	h.reportIncident(ctx, incidentID, 0, "", err, debug.Stack())
}

// HandlePolling is the scheduled job that quizzes one user
func (h *Handler) HandlePolling(ctx context.Context, userID int64) {
	if err := h.quizzes.RunPoll(ctx, userID); err != nil {
		h.handleError(ctx, userID, "", err)
	}
}
