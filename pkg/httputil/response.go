package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	apperrors "github.com/CarlosMilan/Challenge-BCI/pkg/errors"
	"github.com/CarlosMilan/Challenge-BCI/pkg/logger"
	"github.com/CarlosMilan/Challenge-BCI/pkg/validator"
)

// ErrorBody is the error record returned by every endpoint.
type ErrorBody struct {
	Timestamp time.Time `json:"timestamp"`
	Code      int       `json:"code"`
	Detail    string    `json:"detail"`
}

// now is swapped in tests.
var now = func() time.Time { return time.Now().UTC() }

// NewErrorBody builds an ErrorBody stamped with the current time.
func NewErrorBody(status int, detail string) ErrorBody {
	return ErrorBody{Timestamp: now(), Code: status, Detail: detail}
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes an ErrorBody for err. AppErrors carry their own status
// and client message; anything else falls back to apperrors.HTTPStatus.
// Internal errors are logged with the request-scoped logger when the
// RequestLogger middleware is mounted, otherwise with fallback.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() {
		l = fallback
	}

	status := apperrors.HTTPStatus(err)
	detail := "an internal error occurred"

	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		detail = appErr.Message
	case status == http.StatusNotFound:
		detail = "resource not found"
	case status == http.StatusBadRequest:
		detail = err.Error()
	}

	if status >= http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, status, NewErrorBody(status, detail))
}

// WriteValidationErrors answers a failed structural validation with one
// ErrorBody per invalid field, detail formatted "<field> : <message>".
// Errors that are not validation failures produce a single-element list.
func WriteValidationErrors(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if !errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, []ErrorBody{NewErrorBody(http.StatusBadRequest, err.Error())})
		return
	}

	details := valErr.Details()
	bodies := make([]ErrorBody, 0, len(details))
	for _, d := range details {
		bodies = append(bodies, NewErrorBody(http.StatusBadRequest, fmt.Sprintf("%s : %s", d.Field, d.Message)))
	}
	WriteJSON(w, http.StatusBadRequest, bodies)
}
