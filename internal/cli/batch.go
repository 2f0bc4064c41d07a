package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mkravets/arbiter/internal/worker"
	"github.com/spf13/cobra"
)

var (
	batchConcurrency int
	batchTimeout     time.Duration
	batchOutputDir   string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Review multiple submissions from a file in parallel",
	Long: `Batch reviews multiple submissions concurrently:
- Read submission IDs from input file (one per line, # comments skipped)
- Review submissions in parallel with configurable worker count
- Share one oracle rate limit across all workers
- Persist every review for the leaderboard

Example:
  arbiter batch ids.txt
  arbiter batch ids.txt --concurrency 8 --oracle groq
  arbiter batch ids.txt --output-dir ./reviews`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "number of concurrent workers (default from config)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&batchOutputDir, "output-dir", "", "write each review as JSON into this directory")

	addEngineFlags(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	engine, err := openEngineWith(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = engine.Close() }()

	workers := batchConcurrency
	if workers <= 0 {
		workers = cfg.Concurrency.ReviewWorkers
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Arbiter Batch Review\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	if batchOutputDir != "" {
		if err := os.MkdirAll(batchOutputDir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	limiter := worker.NewOracleLimiter(cfg.Concurrency.OracleRequestsPerSecond, cfg.Concurrency.OracleBurst)
	processor := worker.NewBatchReviewer(engine, workers, limiter)

	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	successCount := 0
	failureCount := 0

	for _, result := range results {
		if result.Err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.SubmissionID, result.Err)
			continue
		}

		successCount++
		fmt.Fprintf(os.Stderr, "✓ %s (novelty: %d/100, overall: %d/100)\n",
			result.SubmissionID, result.Review.NoveltyScore, result.Review.OverallScore)

		if batchOutputDir != "" {
			path := batchOutputDir + "/" + result.SubmissionID + ".json"
			if err := writeJSON(path, result.Review); err != nil {
				fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.SubmissionID, err)
			}
		}
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d submissions\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}
