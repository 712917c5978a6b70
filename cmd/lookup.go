package cmd

import (
	"errors"

	"github.com/lehigh-university-libraries/bookid/internal/config"
	"github.com/spf13/cobra"
)

func newLookupCmd() *cobra.Command {
	var isbn string
	var title string
	var author string

	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Look up a book by ISBN or by title and author",
		Long: `Looks a book up in the catalogs without a photo and prints the result as JSON.

With --isbn the catalog details for that ISBN are printed. Otherwise the
title and author are matched and summarized like an identified cover.`,
		Example: `  # Look up by ISBN
  bookid lookup --isbn 978-0-441-01359-3

  # Look up by title and author
  bookid lookup --title "Dune" --author "Frank Herbert"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if isbn == "" && title == "" && author == "" {
				return errors.New("one of --isbn, --title or --author is required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			svc, err := buildService(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer svc.Cache.Close()

			if isbn != "" {
				details, err := svc.LookupISBN(cmd.Context(), isbn)
				if err != nil {
					return err
				}
				return printJSON(cmd, details)
			}

			result, err := svc.Lookup(cmd.Context(), title, author)
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}

	cmd.Flags().StringVar(&isbn, "isbn", "", "ISBN-10 or ISBN-13")
	cmd.Flags().StringVar(&title, "title", "", "Book title")
	cmd.Flags().StringVar(&author, "author", "", "Book author")

	return cmd
}
