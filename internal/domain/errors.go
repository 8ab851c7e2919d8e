package domain

import (
	"errors"
	"fmt"
)

// Error kinds reported back to the user
var (
	ErrConflict          = errors.New("conflict")
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrNoActiveOperation = errors.New("no active operation")
	ErrForbidden         = errors.New("forbidden")
)

// ErrUpstreamFormat means the suggestion generator returned output that could not be parsed
var ErrUpstreamFormat = errors.New("upstream response has unexpected format")

// ErrUnauthorizedSender means the messenger refused to deliver to the user,
// usually because the user blocked the bot
var ErrUnauthorizedSender = errors.New("user blocked the bot")

// UserError is a failure whose Message is meant to be shown to the user
type UserError struct {
	Kind    error
	Message string
}

func (e *UserError) Error() string {
	return fmt.Sprintf("%v: %s", e.Kind, e.Message)
}

func (e *UserError) Unwrap() error {
	return e.Kind
}

// NewUserError creates a user-facing error of the given kind
func NewUserError(kind error, message string) error {
	return &UserError{Kind: kind, Message: message}
}

// UserMessage extracts the user-facing message from err, if any
func UserMessage(err error) (string, bool) {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.Message, true
	}
	return "", false
}

// OwnedError attaches the user a background failure belongs to
type OwnedError struct {
	UserID int64
	Err    error
}

func (e *OwnedError) Error() string {
	return e.Err.Error()
}

func (e *OwnedError) Unwrap() error {
	return e.Err
}

// WithOwner marks err as belonging to userID; nil stays nil
func WithOwner(userID int64, err error) error {
	if err == nil {
		return nil
	}
	return &OwnedError{UserID: userID, Err: err}
}

// OwnerOf returns the user err was attributed to with WithOwner
func OwnerOf(err error) (int64, bool) {
	var oe *OwnedError
	if errors.As(err, &oe) {
		return oe.UserID, true
	}
	return 0, false
}
