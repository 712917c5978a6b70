package catalog

import (
	"fmt"
	"strings"

	"github.com/lehigh-university-libraries/bookid/internal/models"
)

// Strategy is one named query in an escalation chain
type Strategy struct {
	Name  string
	Query string
}

// PrimaryStrategies builds the Google Books query chain, most specific first
func PrimaryStrategies(info models.BookInfo, text string) []Strategy {
	var s []Strategy
	if info.ISBN != "" {
		s = append(s, Strategy{"isbn", "isbn:" + strings.ReplaceAll(info.ISBN, "-", "")})
	}
	if info.Title != "" && info.Author != "" {
		s = append(s, Strategy{"title+author", fmt.Sprintf(`intitle:"%s" inauthor:"%s"`, info.Title, info.Author)})
		if parts := strings.Fields(info.Author); len(parts) > 1 {
			s = append(s, Strategy{"title+partial_author", fmt.Sprintf(`intitle:"%s" inauthor:"%s"`, info.Title, parts[0])})
		}
	}
	if info.Title != "" {
		s = append(s,
			Strategy{"exact_title", fmt.Sprintf(`intitle:"%s"`, info.Title)},
			Strategy{"partial_title", "intitle:" + info.Title},
		)
	}
	if info.Author != "" {
		s = append(s,
			Strategy{"exact_author", fmt.Sprintf(`inauthor:"%s"`, info.Author)},
			Strategy{"partial_author", "inauthor:" + info.Author},
		)
	}
	if strings.TrimSpace(text) != "" {
		s = append(s, Strategy{"text", text})
	}
	return s
}

// FallbackStrategies builds the Open Library query chain
func FallbackStrategies(info models.BookInfo) []Strategy {
	var s []Strategy
	if info.ISBN != "" {
		s = append(s, Strategy{"isbn", "isbn:" + strings.ReplaceAll(info.ISBN, "-", "")})
	}
	if info.Title != "" && info.Author != "" {
		s = append(s, Strategy{"title+author", fmt.Sprintf("title:%s author:%s", info.Title, info.Author)})
	}
	if info.Title != "" {
		s = append(s, Strategy{"title", "title:" + info.Title})
	}
	if info.Author != "" {
		s = append(s, Strategy{"author", "author:" + info.Author})
	}
	return s
}
