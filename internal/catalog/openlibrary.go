package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/bookid/internal/models"
)

const (
	DefaultOpenLibraryURL = "https://openlibrary.org"
	DefaultCoversURL      = "https://covers.openlibrary.org"

	openLibrarySearchFields = "key,title,subtitle,author_name,isbn,first_sentence,cover_i,number_of_pages_median,subject,first_publish_year"
	openLibrarySearchLimit  = 20
)

// OpenLibrary is the fallback catalog. It never reports ratings.
type OpenLibrary struct {
	BaseURL    string
	CoversURL  string
	httpClient *http.Client
}

// NewOpenLibrary creates a client for the Open Library instance at baseURL,
// or openlibrary.org when empty
func NewOpenLibrary(baseURL string) *OpenLibrary {
	if baseURL == "" {
		baseURL = DefaultOpenLibraryURL
	}
	return &OpenLibrary{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		CoversURL: DefaultCoversURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (o *OpenLibrary) Source() models.Source {
	return models.SourceFallback
}

type openLibraryDoc struct {
	Title               string   `json:"title"`
	Subtitle            string   `json:"subtitle"`
	AuthorName          []string `json:"author_name"`
	ISBN                []string `json:"isbn"`
	FirstSentence       []string `json:"first_sentence"`
	CoverID             int64    `json:"cover_i"`
	NumberOfPagesMedian int      `json:"number_of_pages_median"`
	Subject             []string `json:"subject"`
	FirstPublishYear    int      `json:"first_publish_year"`
}

// Search runs a search.json query
func (o *OpenLibrary) Search(ctx context.Context, query string) ([]models.CatalogRecord, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("fields", openLibrarySearchFields)
	params.Set("limit", strconv.Itoa(openLibrarySearchLimit))

	var resp struct {
		Docs []openLibraryDoc `json:"docs"`
	}
	found, err := o.getJSON(ctx, "/search.json?"+params.Encode(), &resp)
	if err != nil || !found {
		return nil, err
	}

	records := make([]models.CatalogRecord, 0, len(resp.Docs))
	for _, doc := range resp.Docs {
		records = append(records, o.docRecord(doc))
	}
	return records, nil
}

func (o *OpenLibrary) docRecord(doc openLibraryDoc) models.CatalogRecord {
	rec := models.CatalogRecord{
		Title:      doc.Title,
		Subtitle:   doc.Subtitle,
		Authors:    doc.AuthorName,
		ISBNs:      doc.ISBN,
		Categories: doc.Subject,
		Source:     models.SourceFallback,
	}
	if len(doc.FirstSentence) > 0 {
		rec.Description = CleanDescription(doc.FirstSentence[0])
	}
	if doc.CoverID > 0 {
		rec.ImageURL = fmt.Sprintf("%s/b/id/%d-L.jpg", o.CoversURL, doc.CoverID)
	}
	if doc.NumberOfPagesMedian > 0 {
		pages := doc.NumberOfPagesMedian
		rec.PageCount = &pages
	}
	if doc.FirstPublishYear > 0 {
		rec.PublishedDate = strconv.Itoa(doc.FirstPublishYear)
	}
	return rec
}

type openLibraryEdition struct {
	Title         string          `json:"title"`
	Description   json.RawMessage `json:"description"`
	NumberOfPages int             `json:"number_of_pages"`
	Authors       []struct {
		Key string `json:"key"`
	} `json:"authors"`
}

func (o *OpenLibrary) edition(ctx context.Context, isbn string) (*openLibraryEdition, error) {
	var ed openLibraryEdition
	found, err := o.getJSON(ctx, "/isbn/"+url.PathEscape(isbn)+".json", &ed)
	if err != nil || !found {
		return nil, err
	}
	return &ed, nil
}

// PageCountByISBN reads number_of_pages from the edition record
func (o *OpenLibrary) PageCountByISBN(ctx context.Context, isbn string) (*int, error) {
	ed, err := o.edition(ctx, isbn)
	if err != nil || ed == nil || ed.NumberOfPages <= 0 {
		return nil, err
	}
	pages := ed.NumberOfPages
	return &pages, nil
}

// LookupISBN fetches the edition and its first author
func (o *OpenLibrary) LookupISBN(ctx context.Context, isbn string) (*models.BookDetails, error) {
	ed, err := o.edition(ctx, isbn)
	if err != nil || ed == nil {
		return nil, err
	}

	details := &models.BookDetails{
		Title:       ed.Title,
		Authors:     []string{},
		Description: CleanDescription(textValue(ed.Description)),
		Image:       fmt.Sprintf("%s/b/isbn/%s-L.jpg", o.CoversURL, url.PathEscape(isbn)),
	}
	if ed.NumberOfPages > 0 {
		pages := ed.NumberOfPages
		details.PageCount = &pages
	}

	if len(ed.Authors) > 0 && ed.Authors[0].Key != "" {
		var author struct {
			Name string `json:"name"`
		}
		found, err := o.getJSON(ctx, ed.Authors[0].Key+".json", &author)
		if err != nil {
			slog.Warn("Unable to fetch Open Library author", "key", ed.Authors[0].Key, "err", err)
		} else if found && author.Name != "" {
			details.Authors = []string{author.Name}
		}
	}
	return details, nil
}

// textValue accepts either a plain string or a {"type", "value"} object
func textValue(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var typed struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &typed); err == nil {
		return typed.Value
	}
	return ""
}

// getJSON decodes the response for path into v. A non-200 status reports
// found=false without an error.
func (o *OpenLibrary) getJSON(ctx context.Context, path string, v any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.BaseURL+path, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create open library request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to fetch from open library: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		slog.Debug("Open Library returned non-200 status", "path", path, "status", resp.StatusCode, "body", string(body))
		return false, nil
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return false, fmt.Errorf("failed to decode open library response: %w", err)
	}
	return true, nil
}
