package evalcmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/lehigh-university-libraries/bookid/internal/eval/dataset"
	"github.com/lehigh-university-libraries/bookid/internal/eval/metrics"
	"github.com/lehigh-university-libraries/bookid/internal/eval/results"
	"github.com/lehigh-university-libraries/bookid/internal/images"
	"github.com/spf13/cobra"
)

// Builder constructs the recognizer for a run. The returned func releases
// its resources.
type Builder func(ctx context.Context) (Recognizer, results.EvalConfig, func(), error)

// NewRunCmd creates the run command
func NewRunCmd(build Builder) *cobra.Command {
	var datasetPath string
	var outputDir string
	var sampleSize int
	var concurrency int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Identify every cover in a dataset and score the results",
		Long: `Runs cover identification (without summaries) over a labelled dataset and
compares the identified title, author and ISBN with the reference values.

Datasets are .parquet, .jsonl or .yaml files of items with id, image_path,
image_url, title, author and isbn. Results are written to <output>/<timestamp>.yaml.`,
		Example: `  # Evaluate the first 20 covers
  bookid eval run --dataset covers.jsonl --sample 20

  # Evaluate a parquet dataset with 8 workers
  bookid eval run --dataset covers.parquet --concurrency 8`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(datasetPath); os.IsNotExist(err) {
				return fmt.Errorf("dataset file not found: %s", datasetPath)
			}

			loader := dataset.NewLoader(datasetPath)
			items, err := loader.LoadSample(sampleSize)
			if err != nil {
				return fmt.Errorf("failed to load dataset: %w", err)
			}

			recognizer, cfg, cleanup, err := build(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			runner := &Runner{Recognizer: recognizer, Fetcher: images.NewFetcher(), Concurrency: concurrency}
			res, err := runner.Run(cmd.Context(), items, loader.Dir())
			if err != nil {
				return fmt.Errorf("evaluation interrupted: %w", err)
			}

			agg := metrics.AggregateEvaluationResults(res)
			agg.PrintSummary(cmd.OutOrStdout())

			cfg.DatasetPath = datasetPath
			cfg.SampleSize = len(items)
			cfg.Concurrency = concurrency
			cfg.Timestamp = time.Now().Format("2006-01-02_15-04-05")
			path, err := results.SaveToYAML(outputDir, cfg, agg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nResults saved to: %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "Path to the dataset file (required)")
	cmd.Flags().StringVar(&outputDir, "output", "evals", "Directory for result files")
	cmd.Flags().IntVar(&sampleSize, "sample", 0, "Number of items to evaluate (0 for all)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Number of items processed in parallel")

	_ = cmd.MarkFlagRequired("dataset")
	return cmd
}

// NewDownloadCoversCmd creates the download-covers command
func NewDownloadCoversCmd() *cobra.Command {
	var datasetPath string
	var outputDir string
	var sampleSize int

	cmd := &cobra.Command{
		Use:     "download-covers",
		Short:   "Download Open Library covers for dataset items that only have an ISBN",
		Example: `  bookid eval download-covers --dataset isbns.jsonl --output ./covers`,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := dataset.NewLoader(datasetPath).LoadSample(sampleSize)
			if err != nil {
				return fmt.Errorf("failed to load dataset: %w", err)
			}
			path, err := downloadCovers(cmd.Context(), images.NewFetcher(), items, outputDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Dataset written to: %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "Path to the dataset file (required)")
	cmd.Flags().StringVar(&outputDir, "output", "./covers", "Output directory for covers and the new dataset")
	cmd.Flags().IntVar(&sampleSize, "sample", 0, "Number of items to process (0 for all)")

	_ = cmd.MarkFlagRequired("dataset")
	return cmd
}
