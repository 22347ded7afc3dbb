package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/matchboard/internal/api/apierr"
	"github.com/mcoot/matchboard/internal/api/response"
)

// Result is the single outcome of handling a request. Handlers return one
// and write it exactly once, so nothing runs after the response is decided.
type Result struct {
	Status int
	Data   any
	Err    error
}

func ok(data any) Result {
	return Result{Status: http.StatusOK, Data: data}
}

func fail(err error) Result {
	return Result{Status: apierr.Status(err, http.StatusOK), Err: err}
}

func failWithStatus(status int, err error) Result {
	return Result{Status: status, Err: err}
}

// Write renders the result as an envelope
func (res Result) Write(w http.ResponseWriter) {
	if res.Err != nil {
		apierr.WriteError(w, res.Status, res.Err)
		return
	}
	response.Success(w, res.Status, res.Data)
}

// logFailure records errors that are not the client's fault
func logFailure(logger *slog.Logger, r *http.Request, action string, res Result) {
	if res.Err == nil {
		return
	}
	switch apierr.Message(res.Err) {
	case apierr.MessageInternalError, apierr.MessageStoreUnavailable, apierr.MessageCorruptRecord:
	default:
		return
	}
	logger.Error("action failed",
		slog.String("method", r.Method),
		slog.String("action", action),
		slog.String("error", res.Err.Error()),
	)
}
