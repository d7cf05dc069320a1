package response

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dskvich/llm-relay-bot/pkg/logger"
)

type JSONResponseWriter struct{}

func (j *JSONResponseWriter) WriteSuccessResponse(w http.ResponseWriter, r *http.Request, data any) {
	j.write(w, r, http.StatusOK, data)
}

func (j *JSONResponseWriter) WriteErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	slog.WarnContext(r.Context(), "Request failed", "path", r.URL.Path, "status", statusCode, "error", message)
	j.write(w, r, statusCode, ErrorResponse{Error: message})
}

func (j *JSONResponseWriter) write(w http.ResponseWriter, r *http.Request, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.ErrorContext(r.Context(), "encoding response", logger.Err(err))
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}
