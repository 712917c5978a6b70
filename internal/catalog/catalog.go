// Package catalog queries bibliographic search backends and resolves the
// best matching record for the book information read from a cover.
package catalog

import (
	"context"
	"errors"

	"github.com/lehigh-university-libraries/bookid/internal/models"
)

// ErrNotFound is returned when no backend knows an ISBN
var ErrNotFound = errors.New("book not found")

// Searcher runs a free-form query against one catalog. A non-success
// response from the backend yields no records and no error; only transport
// failures are returned as errors.
type Searcher interface {
	Source() models.Source
	Search(ctx context.Context, query string) ([]models.CatalogRecord, error)
}

// ISBNLookup fetches the details of a single edition. A nil result with a
// nil error means the backend does not know the ISBN.
type ISBNLookup interface {
	LookupISBN(ctx context.Context, isbn string) (*models.BookDetails, error)
}

// PageCounter reports the page count of an edition, or nil if unknown
type PageCounter interface {
	PageCountByISBN(ctx context.Context, isbn string) (*int, error)
}
