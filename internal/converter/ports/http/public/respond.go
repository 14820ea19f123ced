package public

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/langowen/fxconverter/internal/converter/presenter"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func RespondWithJSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")

	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode response", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func RespondWithError(w http.ResponseWriter, code int, message string, details ...string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)

	errorText := message
	if len(details) > 0 {
		errorText += "\nDetails: " + details[0]
	}

	if _, err := w.Write([]byte(errorText)); err != nil {
		slog.Error("Failed to write error response", "error", err)
	}
}

// RespondWithPage renders into a buffer first so a template error never
// leaves a half-written page behind.
func RespondWithPage(w http.ResponseWriter, code int, page presenter.Page) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page); err != nil {
		slog.Error("Failed to render page", "error", err)
		RespondWithError(w, http.StatusInternalServerError, "failed to render page")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write page", "error", err)
	}
}
