package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/playperu/codexhunt/internal/hunt"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// MessageResponse is returned by endpoints with nothing else to report.
type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, kind hunt.Kind, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Kind: string(kind)})
}

// errorStatus maps domain errors to HTTP statuses. The odd ones (418 for a
// finished hunt, 422 for exhausted health) are what game clients expect.
var errorStatus = []struct {
	err    error
	status int
}{
	{hunt.ErrInvalidToken, http.StatusUnauthorized},
	{hunt.ErrSessionNotStarted, http.StatusUnauthorized},
	{hunt.ErrHealthExhausted, http.StatusUnprocessableEntity},
	{hunt.ErrGameCompleted, http.StatusTeapot},
	{hunt.ErrForbidden, http.StatusForbidden},
	{hunt.ErrUnknownCode, http.StatusUnprocessableEntity},
	{hunt.ErrAllStoriesPlayed, http.StatusUnprocessableEntity},
	{hunt.ErrInvalidCoupon, http.StatusUnprocessableEntity},
	{hunt.ErrCouponExhausted, http.StatusUnprocessableEntity},
	{hunt.ErrAlreadyRestored, http.StatusUnprocessableEntity},
	{hunt.ErrTeamNameTaken, http.StatusConflict},
	{hunt.ErrTooManyAttempts, http.StatusTooManyRequests},
	{hunt.ErrNotificationFailed, http.StatusInternalServerError},
}

// writeServiceError writes err as a response. Only the sentinel's message is
// exposed; wrapped details and unknown errors go to the log.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			if e.status >= http.StatusInternalServerError {
				logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
			}
			writeError(w, e.status, hunt.KindOf(e.err), e.err.Error())
			return
		}
	}

	logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, hunt.KindInternal, "internal error")
}
