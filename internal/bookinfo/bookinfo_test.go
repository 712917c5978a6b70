package bookinfo

import (
	"testing"

	"github.com/lehigh-university-libraries/bookid/internal/models"
)

func TestExtractISBN(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"labeled 13", "ISBN: 978-0-13-468599-1", "9780134685991"},
		{"labeled 10", "isbn 0-306-40615-2", "0306406152"},
		{"lower x", "ISBN 0-8044-2957-x", "080442957X"},
		{"bare 13", "Printed 2019 9780134685991 USA", "9780134685991"},
		{"bare 10", "code 0306406152.", "0306406152"},
		{"too short", "123-456", ""},
		{"fourteen digits", "12345678901234", ""},
		{"no isbn", "The Hobbit", ""},
		{"isbn13 label", "ISBN-13: 978-1-4028-9462-6", "9781402894626"},
		{"bad labeled falls through", "ISBN 12-34-56-78-90-12\n9780306406157", "9780306406157"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractISBN(tt.text); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestValidISBN(t *testing.T) {
	tests := map[string]bool{
		"9780134685991":  true,
		"080442957X":     true,
		"080442957x":     false,
		"978013468599":   false,
		"97801346859911": false,
		"":               false,
	}
	for in, want := range tests {
		if got := ValidISBN(in); got != want {
			t.Errorf("ValidISBN(%q): expected %v, got %v", in, want, got)
		}
	}
}

func TestExtractCandidates(t *testing.T) {
	tests := []struct {
		name string
		in   models.ExtractionResult
		want models.BookInfo
	}{
		{
			name: "candidates win",
			in: models.ExtractionResult{
				FullText:         "Title: Something Else\nAuthor: Nobody",
				TitleCandidates:  []string{"The  Hobbit!", "Other"},
				AuthorCandidates: []string{"J.R.R. Tolkien", "by Christopher Tolkien"},
			},
			want: models.BookInfo{Title: "The Hobbit!", Author: "Christopher Tolkien"},
		},
		{
			name: "plain candidate when no by",
			in: models.ExtractionResult{
				AuthorCandidates: []string{"Frank Herbert", "Brian Herbert"},
			},
			want: models.BookInfo{Author: "Frank Herbert"},
		},
		{
			name: "bare by skipped",
			in: models.ExtractionResult{
				AuthorCandidates: []string{"by", "Ursula K. Le Guin"},
			},
			want: models.BookInfo{Author: "Ursula K. Le Guin"},
		},
		{
			name: "byline word boundary",
			in: models.ExtractionResult{
				AuthorCandidates: []string{"Abby Jones"},
			},
			want: models.BookInfo{Author: "Abby Jones"},
		},
		{
			name: "nameless byline falls back to patterns",
			in: models.ExtractionResult{
				FullText:         "Dune\nby Frank Herbert",
				AuthorCandidates: []string{"by"},
			},
			want: models.BookInfo{Title: "Dune", Author: "Frank Herbert"},
		},
		{
			name: "nameless byline without text",
			in: models.ExtractionResult{
				AuthorCandidates: []string{"by", "written by"},
			},
			want: models.BookInfo{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.in)
			if got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestExtractPatterns(t *testing.T) {
	tests := []struct {
		name string
		text string
		want models.BookInfo
	}{
		{
			name: "labeled",
			text: "Something\nTitle: The Left Hand of Darkness\nAuthor: Ursula K. Le Guin",
			want: models.BookInfo{Title: "The Left Hand of Darkness", Author: "Ursula K. Le Guin"},
		},
		{
			name: "first line and byline",
			text: "DUNE\nby Frank Herbert\nISBN 978-0-441-17271-9",
			want: models.BookInfo{Title: "DUNE", Author: "Frank Herbert", ISBN: "9780441172719"},
		},
		{
			name: "leading newline",
			text: "\nNeuromancer\nWilliam Gibson",
			want: models.BookInfo{Title: "Neuromancer", Author: "Neuromancer William Gibson"},
		},
		{
			name: "cleaning applied",
			text: "** Foundation **\nwritten by: Isaac   Asimov",
			want: models.BookInfo{Title: "Foundation", Author: "Isaac Asimov"},
		},
		{
			name: "empty",
			text: "",
			want: models.BookInfo{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(models.ExtractionResult{FullText: tt.text})
			if got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}
