package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"finlog/internal/report"
	"finlog/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps pipeline sentinels to HTTP statuses. Forbidden
// deliberately answers as not-found so report IDs cannot be probed for
// existence.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, report.ErrNoData):
		writeError(w, http.StatusNotFound, "no transactions in the requested period")
	case errors.Is(err, report.ErrInvalidFormat):
		writeError(w, http.StatusBadRequest, "format must be one of pdf, csv, json")
	case errors.Is(err, report.ErrNotFound),
		errors.Is(err, report.ErrForbidden),
		errors.Is(err, report.ErrArtifactMissing),
		errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
