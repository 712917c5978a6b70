package cmd

import (
	"context"

	"github.com/lehigh-university-libraries/bookid/internal/config"
	"github.com/lehigh-university-libraries/bookid/internal/eval/results"
	"github.com/lehigh-university-libraries/bookid/internal/evalcmd"
	"github.com/spf13/cobra"
)

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Identification accuracy evaluation tools",
		Long: `Evaluation tools for measuring how well covers are identified.

Runs the recognition pipeline over a labelled dataset and scores the
identified title, author and ISBN against the reference values.`,
	}

	cmd.AddCommand(evalcmd.NewRunCmd(buildRecognizer))
	cmd.AddCommand(evalcmd.NewDownloadCoversCmd())

	return cmd
}

func buildRecognizer(ctx context.Context) (evalcmd.Recognizer, results.EvalConfig, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, results.EvalConfig{}, nil, err
	}
	svc, err := buildService(ctx, cfg)
	if err != nil {
		return nil, results.EvalConfig{}, nil, err
	}

	structured := "none"
	if visionOptions(cfg) != nil {
		structured = "google_vision"
	}
	evalCfg := results.EvalConfig{
		StructuredOCR: structured,
		FallbackOCR:   cfg.FallbackOCR,
	}
	cleanup := func() { _ = svc.Cache.Close() }
	return svc, evalCfg, cleanup, nil
}
