package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Response is the envelope used by every endpoint except generation.
type Response struct {
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type PaginatedResponse struct {
	Data       any   `json:"data"`
	TotalCount int64 `json:"total_count"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
}

func JSON(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Response{Data: data})
}

// JSONBody writes body as the top-level document, without the data envelope.
// The generation endpoint uses it because its payload contract is fixed.
func JSONBody(w http.ResponseWriter, status int, body any) {
	writeJSON(w, status, body)
}

func JSONMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Message: message})
}

func JSONPaginated(w http.ResponseWriter, status int, data any, totalCount int64, page, pageSize int) {
	writeJSON(w, status, PaginatedResponse{
		Data:       data,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	})
}

func JSONErrorMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("writing response body", "error", err)
	}
}
