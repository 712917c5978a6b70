package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/bookid/internal/catalog"
	"github.com/lehigh-university-libraries/bookid/internal/identify"
	"github.com/lehigh-university-libraries/bookid/internal/images"
	"github.com/lehigh-university-libraries/bookid/internal/models"
)

// HandleExtractAndSummarize identifies the cover uploaded in the multipart
// field "file", or fetched from the image_url of a JSON body
func (h *Handler) HandleExtractAndSummarize(w http.ResponseWriter, r *http.Request) {
	var (
		data []byte
		err  error
	)
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		data, err = h.imageFromURL(r)
	} else {
		data, err = imageFromForm(r)
	}
	if err != nil {
		h.writeError(w, r, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.Identify(r.Context(), data)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, result)
}

func imageFromForm(r *http.Request) ([]byte, error) {
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, errors.New("failed to read file: " + err.Error())
	}
	defer file.Close()
	return images.ReadLimited(file)
}

func (h *Handler) imageFromURL(r *http.Request) ([]byte, error) {
	var request struct {
		ImageURL string `json:"image_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return nil, errors.New("invalid JSON: " + err.Error())
	}
	if request.ImageURL == "" {
		return nil, errors.New("image_url is required")
	}
	return h.fetcher.Fetch(r.Context(), request.ImageURL)
}

// HandleSearchByISBN returns edition details for the isbn query parameter
func (h *Handler) HandleSearchByISBN(w http.ResponseWriter, r *http.Request) {
	isbn := r.URL.Query().Get("isbn")
	if isbn == "" {
		h.writeError(w, r, "isbn is required", http.StatusBadRequest)
		return
	}

	details, err := h.service.LookupISBN(r.Context(), isbn)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, details)
}

// HandleSearchBook looks a book up by ISBN when one is given, otherwise by
// title and author
func (h *Handler) HandleSearchBook(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Title  string `json:"title"`
		Author string `json:"author"`
		ISBN   string `json:"isbn"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, r, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(request.ISBN) != "" {
		details, err := h.service.LookupISBN(r.Context(), request.ISBN)
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		h.writeJSON(w, details)
		return
	}

	if strings.TrimSpace(request.Title) == "" && strings.TrimSpace(request.Author) == "" {
		h.writeError(w, r, "title, author or isbn is required", http.StatusBadRequest)
		return
	}
	result, err := h.service.Lookup(r.Context(), request.Title, request.Author)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, result)
}

// HandleSimilarBooks recommends books related to the title and the
// comma-separated authors query parameters
func (h *Handler) HandleSimilarBooks(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if strings.TrimSpace(title) == "" {
		h.writeError(w, r, "title is required", http.StatusBadRequest)
		return
	}

	var authors []string
	for _, a := range strings.Split(r.URL.Query().Get("authors"), ",") {
		if a = strings.TrimSpace(a); a != "" {
			authors = append(authors, a)
		}
	}

	books, err := h.service.SimilarBooks(r.Context(), title, authors)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if books == nil {
		books = []models.SimilarBook{}
	}
	h.writeJSON(w, books)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		h.writeError(w, r, "Book not found", http.StatusNotFound)
	case errors.Is(err, identify.ErrInvalidImage),
		errors.Is(err, identify.ErrInvalidISBN),
		errors.Is(err, identify.ErrMissingQuery):
		h.writeError(w, r, err.Error(), http.StatusBadRequest)
	default:
		h.writeError(w, r, err.Error(), http.StatusInternalServerError)
	}
}
