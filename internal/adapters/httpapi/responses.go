package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/SV-Eichenlaub/club-roster-api/internal/app/members"
	"github.com/SV-Eichenlaub/club-roster-api/internal/app/roster"
	"github.com/SV-Eichenlaub/club-roster-api/internal/app/rules"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeStatus emits the generic status payload. code mirrors the HTTP
// status so clients inspecting only the body stay informed.
func writeStatus(w http.ResponseWriter, status int, message string) {
	label := "OK"
	if status >= 400 {
		label = "ERROR"
	}
	writeJSON(w, status, StatusDTO{Status: label, Code: status, Message: message})
}

// writeError maps an application error to its HTTP response. The three
// app packages share one error shape; anything else is a storage or
// internal failure whose message is passed through verbatim so the
// status payload stays diagnosable.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var (
		membersErr *members.Error
		rosterErr  *roster.Error
		rulesErr   *rules.Error
	)
	switch {
	case errors.As(err, &membersErr):
		writeStatus(w, membersErr.Status, membersErr.Message)
	case errors.As(err, &rosterErr):
		writeStatus(w, rosterErr.Status, rosterErr.Message)
	case errors.As(err, &rulesErr):
		writeStatus(w, rulesErr.Status, rulesErr.Message)
	default:
		log.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeStatus(w, http.StatusInternalServerError, err.Error())
	}
}
