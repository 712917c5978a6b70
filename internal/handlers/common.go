package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/bookid/internal/images"
	"github.com/lehigh-university-libraries/bookid/internal/models"
)

// Identifier is the pipeline the handlers expose
type Identifier interface {
	Identify(ctx context.Context, data []byte) (*models.Result, error)
	Lookup(ctx context.Context, title, author string) (*models.Result, error)
	LookupISBN(ctx context.Context, isbn string) (*models.BookDetails, error)
	SimilarBooks(ctx context.Context, title string, authors []string) ([]models.SimilarBook, error)
}

type Handler struct {
	service Identifier
	fetcher *images.Fetcher
}

func New(service Identifier, fetcher *images.Fetcher) *Handler {
	if fetcher == nil {
		fetcher = images.NewFetcher()
	}
	return &Handler{service: service, fetcher: fetcher}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data any) {
	h.writeJSONStatus(w, data, http.StatusOK)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, data any, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, message string, code int) {
	level := slog.LevelWarn
	if code >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	slog.Log(r.Context(), level, message, "status", code, "request_id", RequestID(r.Context()))
	h.writeJSONStatus(w, map[string]string{"error": message}, code)
}
