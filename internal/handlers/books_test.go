package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/bookid/internal/catalog"
	"github.com/lehigh-university-libraries/bookid/internal/identify"
	"github.com/lehigh-university-libraries/bookid/internal/models"
)

type fakeService struct {
	data       []byte
	identErr   error
	lookups    [][2]string
	isbns      []string
	details    *models.BookDetails
	detailsErr error
	lookupErr  error
	similar    []models.SimilarBook
	similarErr error
	similarQs  []similarQuery
}

type similarQuery struct {
	title   string
	authors []string
}

func (f *fakeService) Identify(_ context.Context, data []byte) (*models.Result, error) {
	f.data = data
	if f.identErr != nil {
		return nil, f.identErr
	}
	return &models.Result{Summary: "• Point", Title: "Dune", Authors: []string{"Frank Herbert"}}, nil
}

func (f *fakeService) Lookup(_ context.Context, title, author string) (*models.Result, error) {
	f.lookups = append(f.lookups, [2]string{title, author})
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	return &models.Result{Title: title, Authors: []string{author}}, nil
}

func (f *fakeService) LookupISBN(_ context.Context, isbn string) (*models.BookDetails, error) {
	f.isbns = append(f.isbns, isbn)
	return f.details, f.detailsErr
}

func (f *fakeService) SimilarBooks(_ context.Context, title string, authors []string) ([]models.SimilarBook, error) {
	f.similarQs = append(f.similarQs, similarQuery{title: title, authors: authors})
	return f.similar, f.similarErr
}

func multipartBody(t *testing.T, field string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, "cover.jpg")
	if err != nil {
		t.Fatal(err)
	}
	part.Write(data)
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode error body: %v", err)
	}
	return body["error"]
}

func TestExtractAndSummarize(t *testing.T) {
	svc := &fakeService{}
	routes := New(svc, nil).Routes()

	body, contentType := multipartBody(t, "file", []byte("jpeg bytes"))
	req := httptest.NewRequest(http.MethodPost, "/extract_and_summarize", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if string(svc.data) != "jpeg bytes" {
		t.Errorf("Expected uploaded bytes, got %q", svc.data)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("Expected a request id header")
	}

	var result models.Result
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Title != "Dune" || result.Summary != "• Point" {
		t.Errorf("Unexpected result: %+v", result)
	}
}

func TestExtractAndSummarizeFromURL(t *testing.T) {
	img := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("remote cover"))
	}))
	defer img.Close()

	svc := &fakeService{}
	routes := New(svc, nil).Routes()

	req := httptest.NewRequest(http.MethodPost, "/extract_and_summarize",
		strings.NewReader(fmt.Sprintf(`{"image_url": %q}`, img.URL+"/cover.jpg")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if string(svc.data) != "remote cover" {
		t.Errorf("Expected fetched bytes, got %q", svc.data)
	}
}

func TestExtractAndSummarizeErrors(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		err      error
		wantCode int
	}{
		{"missing file", "upload", nil, http.StatusBadRequest},
		{"invalid image", "file", fmt.Errorf("%w: unknown format", identify.ErrInvalidImage), http.StatusBadRequest},
		{"upstream failure", "file", errors.New("catalog search failed: connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			routes := New(&fakeService{identErr: tt.err}, nil).Routes()
			body, contentType := multipartBody(t, tt.field, []byte("x"))
			req := httptest.NewRequest(http.MethodPost, "/extract_and_summarize", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			routes.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("Expected %d, got %d", tt.wantCode, rec.Code)
			}
			if decodeError(t, rec) == "" {
				t.Error("Expected an error message")
			}
		})
	}
}

func TestSearchByISBN(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		details   *models.BookDetails
		err       error
		wantCode  int
		wantError string
	}{
		{"found", "?isbn=9780441013593", &models.BookDetails{Title: "Dune"}, nil, http.StatusOK, ""},
		{"not found", "?isbn=9780441013593", nil, catalog.ErrNotFound, http.StatusNotFound, "Book not found"},
		{"missing", "", nil, nil, http.StatusBadRequest, "isbn is required"},
		{"malformed", "?isbn=123", nil, fmt.Errorf("%w: \"123\"", identify.ErrInvalidISBN), http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			routes := New(&fakeService{details: tt.details, detailsErr: tt.err}, nil).Routes()
			rec := httptest.NewRecorder()
			routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search_by_isbn"+tt.query, nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("Expected %d, got %d", tt.wantCode, rec.Code)
			}
			if tt.wantCode == http.StatusOK {
				var details models.BookDetails
				if err := json.NewDecoder(rec.Body).Decode(&details); err != nil || details.Title != "Dune" {
					t.Errorf("Unexpected details: %+v, %v", details, err)
				}
				return
			}
			if got := decodeError(t, rec); tt.wantError != "" && got != tt.wantError {
				t.Errorf("Expected error %q, got %q", tt.wantError, got)
			}
		})
	}
}

func TestSearchBook(t *testing.T) {
	svc := &fakeService{details: &models.BookDetails{Title: "Dune"}}
	routes := New(svc, nil).Routes()

	post := func(body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/search_book", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		routes.ServeHTTP(rec, req)
		return rec
	}

	if rec := post(`{"isbn": "978-0441013593", "title": "ignored"}`); rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for isbn search, got %d", rec.Code)
	}
	if len(svc.isbns) != 1 || len(svc.lookups) != 0 {
		t.Errorf("Expected isbn lookup only, got %v and %v", svc.isbns, svc.lookups)
	}

	if rec := post(`{"title": "Dune", "author": "Frank Herbert"}`); rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for title search, got %d", rec.Code)
	}
	if len(svc.lookups) != 1 || svc.lookups[0] != [2]string{"Dune", "Frank Herbert"} {
		t.Errorf("Unexpected lookups: %v", svc.lookups)
	}

	if rec := post(`{}`); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for empty search, got %d", rec.Code)
	}
	if rec := post(`{`); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid JSON, got %d", rec.Code)
	}
}

func TestSearchBookMissingQuery(t *testing.T) {
	svc := &fakeService{lookupErr: identify.ErrMissingQuery}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/search_book", strings.NewReader(`{"title": "@@@"}`))
	req.Header.Set("Content-Type", "application/json")
	New(svc, nil).Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
	if got := decodeError(t, rec); got != identify.ErrMissingQuery.Error() {
		t.Errorf("Expected %q, got %q", identify.ErrMissingQuery.Error(), got)
	}
}

func TestSimilarBooks(t *testing.T) {
	rating := 4.1
	svc := &fakeService{similar: []models.SimilarBook{{
		Title:      "Children of Dune",
		Authors:    []string{"Frank Herbert"},
		Image:      "http://books.google.com/children.jpg",
		Rating:     &rating,
		Categories: []string{"Fiction"},
		MatchType:  models.MatchSameCategory,
	}}}
	routes := New(svc, nil).Routes()

	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/similar_books?title=Dune&authors=Frank%20Herbert,%20Brian%20Herbert,", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var books []map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&books); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if len(books) != 1 || books[0]["title"] != "Children of Dune" || books[0]["match_type"] != "same_category" {
		t.Errorf("Unexpected books: %v", books)
	}
	if books[0]["rating"] != 4.1 {
		t.Errorf("Expected rating 4.1, got %v", books[0]["rating"])
	}

	q := svc.similarQs[0]
	if q.title != "Dune" || len(q.authors) != 2 || q.authors[0] != "Frank Herbert" || q.authors[1] != "Brian Herbert" {
		t.Errorf("Unexpected query: %+v", q)
	}
}

func TestSimilarBooksEmpty(t *testing.T) {
	svc := &fakeService{similar: []models.SimilarBook{}}
	rec := httptest.NewRecorder()
	New(svc, nil).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/similar_books?title=Unknown", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("Expected [], got %s", got)
	}
	if svc.similarQs[0].authors != nil {
		t.Errorf("Expected no authors, got %v", svc.similarQs[0].authors)
	}
}

func TestSimilarBooksErrors(t *testing.T) {
	tests := []struct {
		name string
		url  string
		err  error
		want int
	}{
		{"missing title", "/similar_books?authors=Frank%20Herbert", nil, http.StatusBadRequest},
		{"nothing to search", "/similar_books?title=%40%40", identify.ErrMissingQuery, http.StatusBadRequest},
		{"catalog failure", "/similar_books?title=Dune", errors.New("catalog search failed"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			New(&fakeService{similarErr: tt.err}, nil).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))
			if rec.Code != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestHealthcheck(t *testing.T) {
	rec := httptest.NewRecorder()
	New(&fakeService{}, nil).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("Expected 200 OK, got %d %q", rec.Code, rec.Body.String())
	}
}
