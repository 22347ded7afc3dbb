package apierr

import (
	"errors"
	"net/http"

	"github.com/mcoot/matchboard/internal/api/response"
	"github.com/mcoot/matchboard/internal/model"
)

// Messages shown to clients
const (
	MessageMissingParameters = "Missing parameters"
	MessageMissingUserCount  = "Missing usercount parameter"
	MessageInvalidAction     = "Invalid action"
	MessageInvalidGetAction  = "Invalid action or missing parameters"
	MessageUnsupportedMethod = "Unsupported request method"
	MessageTooManyRequests   = "Too many requests"
	MessageStoreUnavailable  = "Store unavailable"
	MessageCorruptRecord     = "Stored data is corrupt"
	MessageInternalError     = "Internal server error"
)

// httpError pins a message and status to an error
type httpError struct {
	status  int
	message string
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.message
}

// New creates an error with a fixed client message and HTTP 200
func New(message string) error {
	return &httpError{http.StatusOK, message}
}

// NewWithStatus creates an error with a fixed client message and status
func NewWithStatus(status int, message string) error {
	return &httpError{status, message}
}

// Message returns the client-facing text for err
func Message(err error) string {
	var he *httpError
	if errors.As(err, &he) {
		return he.message
	}

	switch {
	case errors.Is(err, model.ErrMissingParameters):
		return MessageMissingParameters
	case errors.Is(err, model.ErrInvalidAction):
		return MessageInvalidAction
	case errors.Is(err, model.ErrUnsupportedMethod):
		return MessageUnsupportedMethod
	case errors.Is(err, model.ErrUsernameExists):
		return "Username already exists"
	case errors.Is(err, model.ErrUserNotFound):
		return "User not found!"
	case errors.Is(err, model.ErrUserDataNotFound):
		return "User data not found!"
	case errors.Is(err, model.ErrInvalidPassword):
		return "Invalid password!"
	case errors.Is(err, model.ErrInvalidID):
		return "Invalid ID"
	case errors.Is(err, model.ErrTokenNotFound):
		return "Invalid token"
	case errors.Is(err, model.ErrInvalidScore):
		return "Scores must not be negative"
	case errors.Is(err, model.ErrTooFewUsers):
		return "At least 2 users are required for simulation."
	case errors.Is(err, model.ErrTooManyUsers):
		return "Too many users requested for simulation."
	case errors.Is(err, model.ErrStoreUnavailable):
		return MessageStoreUnavailable
	case errors.Is(err, model.ErrDecode):
		return MessageCorruptRecord
	default:
		return MessageInternalError
	}
}

// Status returns the HTTP status for err, or fallback when err carries none
func Status(err error, fallback int) int {
	var he *httpError
	if errors.As(err, &he) {
		return he.status
	}
	return fallback
}

// WriteError writes the error envelope with the given status
func WriteError(w http.ResponseWriter, status int, err error) {
	response.JSON(w, status, response.Envelope{Status: false, Message: Message(err)})
}
