package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/lehigh-university-libraries/bookid/internal/config"
	"github.com/lehigh-university-libraries/bookid/internal/images"
	"github.com/spf13/cobra"
)

func newIdentifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identify <image>",
		Short: "Identify the book on a cover photo",
		Long: `Runs the full pipeline on one cover photo and prints the result as JSON.

The image may be a local file or an http(s) URL.`,
		Example: `  # Identify a local photo
  bookid identify cover.jpg

  # Identify a remote image
  bookid identify https://covers.openlibrary.org/b/isbn/9780441013593-L.jpg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readImage(cmd, args[0])
			if err != nil {
				return err
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

			result, err := svc.Identify(cmd.Context(), data)
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}

	return cmd
}

func readImage(cmd *cobra.Command, src string) ([]byte, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return images.NewFetcher().Fetch(cmd.Context(), src)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return data, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
