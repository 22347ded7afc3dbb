package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mcoot/matchboard/internal/api/apierr"
	"github.com/mcoot/matchboard/internal/middleware"
)

// Recovery creates panic recovery middleware for the API
// Returns the error envelope on panic
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, apiPanicHandler)
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, http.StatusInternalServerError, errors.New(apierr.MessageInternalError))
}
