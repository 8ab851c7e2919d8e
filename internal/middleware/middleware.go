package middleware

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// requestIDKey is the telebot context key holding the update's request id
const requestIDKey = "request_id"

// RequestID returns the id assigned by RequestLogger, or an empty string
func RequestID(c tele.Context) string {
	id, _ := c.Get(requestIDKey).(string)
	return id
}

// RequestLogger assigns every update a request id and logs its handling
func RequestLogger(logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			id := uuid.NewString()
			c.Set(requestIDKey, id)

			fields := []zap.Field{
				zap.String("request_id", id),
				zap.Int("update_id", c.Update().ID),
			}
			if sender := c.Sender(); sender != nil {
				fields = append(fields, zap.Int64("user_id", sender.ID))
			}

			start := time.Now()
			err := next(c)
			fields = append(fields, zap.Duration("took", time.Since(start)))

			if err != nil {
				logger.Error("Update failed", append(fields, zap.Error(err))...)
				return err
			}
			logger.Debug("Update handled", fields...)
			return nil
		}
	}
}

// Recover stops a panicking handler from killing the poller
func Recover(logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("Handler panicked",
						zap.String("panic", fmt.Sprint(r)),
						zap.String("request_id", RequestID(c)),
						zap.ByteString("stack", debug.Stack()),
					)
					err = nil
				}
			}()
			return next(c)
		}
	}
}
