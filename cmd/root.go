package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var verbose bool
	var logFormat string

	cmd := &cobra.Command{
		Use:   "bookid",
		Short: "Identify books from cover photos",
		Long: `Bookid identifies a book from a photo of its cover.

It extracts the cover text with OCR, matches it against Google Books and
Open Library, and summarizes the match with an LLM. It runs as an HTTP
service or as one-shot CLI commands, and can score itself against a
labelled dataset of covers.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			return setupLogging(verbose, logFormat)
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text or json)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newIdentifyCmd())
	cmd.AddCommand(newLookupCmd())
	cmd.AddCommand(newEvalCmd())

	return cmd
}

// setupLogging installs the default logger. Logs go to stderr so command
// output on stdout stays machine readable.
func setupLogging(verbose bool, format string) error {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	switch format {
	case "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("invalid log format %q: must be text or json", format)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}
