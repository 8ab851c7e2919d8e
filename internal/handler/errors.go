package handler

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"vocabpoll/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	msgSomethingWrong = "Sorry, something went wrong"
	maxReportLength   = 4000
)

type requestIDKey struct{}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// handleError turns a failure of any entry point into its outcome:
// user errors are replied, blocked users are removed, and anything else
// is logged, apologised for and reported to the admin chat
func (h *Handler) handleError(ctx context.Context, userID int64, username string, err error) {
	if msg, ok := domain.UserMessage(err); ok {
		if sendErr := h.messenger.SendMessage(ctx, userID, msg, false); sendErr != nil {
			if errors.Is(sendErr, domain.ErrUnauthorizedSender) {
				h.removeUser(ctx, userID)
				return
			}
			h.logger.Warn("Failed to deliver error reply", zap.Error(sendErr), zap.Int64("user_id", userID))
		}
		return
	}

	if errors.Is(err, domain.ErrUnauthorizedSender) {
		h.removeUser(ctx, userID)
		return
	}

	incidentID := uuid.NewString()
	caughtAt := debug.Stack()

	if username == "" {
		if u, getErr := h.users.Get(ctx, userID); getErr == nil && u != nil {
			username = u.DisplayName()
		}
	}

	h.logger.Error("Unhandled error",
		zap.Error(err),
		zap.String("incident_id", incidentID),
		zap.Int64("user_id", userID),
		zap.String("username", username),
		zap.String("request_id", requestIDFrom(ctx)),
		zap.ByteString("caught_at", caughtAt),
	)

	if sendErr := h.messenger.SendMessage(ctx, userID, msgSomethingWrong, false); sendErr != nil {
		if errors.Is(sendErr, domain.ErrUnauthorizedSender) {
			h.removeUser(ctx, userID)
		}
	}

	h.reportIncident(ctx, incidentID, userID, username, err, caughtAt)
}

// reportIncident forwards the failure to the admin chat. caughtAt is the stack
// of the entry point that handled the error, not of the call that produced it.
func (h *Handler) reportIncident(ctx context.Context, incidentID string, userID int64, username string, err error, caughtAt []byte) {
	if h.adminChatID == 0 {
		return
	}

	report := fmt.Sprintf("Incident %s\nUser: %d %s\nError: %v\n\nCaught at:\n%s", incidentID, userID, username, err, caughtAt)
	if runes := []rune(report); len(runes) > maxReportLength {
		report = string(runes[:maxReportLength])
	}

	if sendErr := h.messenger.SendMessage(ctx, h.adminChatID, report, false); sendErr != nil {
		h.logger.Error("Failed to report incident",
			zap.Error(sendErr),
			zap.String("incident_id", incidentID),
		)
	}
}

func (h *Handler) removeUser(ctx context.Context, userID int64) {
	h.logger.Info("User blocked the bot, removing", zap.Int64("user_id", userID))
	if err := h.users.Remove(ctx, userID); err != nil {
		h.logger.Error("Failed to remove user", zap.Error(err), zap.Int64("user_id", userID))
	}
}
