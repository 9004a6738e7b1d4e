package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/rainier/internal/model"
	"github.com/ppiankov/rainier/internal/pipeline"
	"github.com/ppiankov/rainier/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <files...|list-file>",
	Short: "Review multiple contracts in parallel",
	Long: `Batch reviews several contracts concurrently:
- Take contract paths as arguments, or a single .list/.lst file (one path per line)
- Analyze contracts in parallel with a configurable worker count
- Write a JSON and a Markdown report for each contract

Example:
  rainier batch contracts/*.pdf
  rainier batch contracts.list --concurrency 8 --output-dir ./reports
  rainier batch a.pdf b.pdf --timeout 30m`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Concurrency flags
	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: config, then CPU count)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./rainier-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&noContract, "no-contract", false, "omit the extracted contract text from reports")

	addAnalysisFlags(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	s, err := newSession(applyAnalysisFlags)
	if err != nil {
		return err
	}
	defer s.close()

	workers := batchWorkers(concurrency, s.cfg)

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Rainier Batch Review\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	if s.pipeline.Answerer().IsEnabled() {
		fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", s.pipeline.Answerer().ProviderName(), s.pipeline.Answerer().Model())
	}
	fmt.Fprintf(os.Stderr, "\n")

	paths, err := batchPaths(args)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "✓ Loaded %d contracts\n\n", len(paths))

	// Create output directory
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	processor := worker.NewBatchProcessor(s.pipeline, workers)
	results := processor.ProcessFiles(ctx, paths)

	renderer := pipeline.NewRenderer(s.cfg.Output.IncludeContract)
	used := make(map[string]int)
	successCount := 0
	failureCount := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Path, result.Error)
			continue
		}

		slug := uniqueSlug(sanitizeFilename(result.Path), used)
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")

		if err := renderer.WriteFile(jsonPath, result.Report, renderer.RenderJSON); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.Path, err)
			continue
		}
		if err := renderer.WriteFile(mdPath, result.Report, renderer.RenderMarkdown); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", result.Path, err)
			continue
		}

		successCount++
		fmt.Fprintf(os.Stderr, "✓ %s (%d flagged, %d answers)\n", result.Path, result.Report.TotalMatches(), len(result.Report.Answers))
		if verbose {
			renderer.RenderSummary(os.Stderr, result.Report)
		}
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d contracts\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if failureCount > 0 && successCount == 0 {
		return fmt.Errorf("all %d contracts failed", failureCount)
	}
	return nil
}

// batchWorkers picks the worker count: flag, then config, then CPU count
func batchWorkers(flag int, cfg *model.Config) int {
	if flag > 0 {
		return flag
	}
	if cfg.Concurrency.Workers > 0 {
		return cfg.Concurrency.Workers
	}
	return runtime.NumCPU()
}

// batchPaths expands the arguments. A single .list or .lst argument is read
// as a list file; anything else is taken as contract paths.
func batchPaths(args []string) ([]string, error) {
	if len(args) == 1 {
		switch strings.ToLower(filepath.Ext(args[0])) {
		case ".list", ".lst":
			paths, err := worker.ReadPathsFromFile(args[0])
			if err != nil {
				return nil, fmt.Errorf("read list file: %w", err)
			}
			return paths, nil
		}
	}
	return args, nil
}

// sanitizeFilename turns a contract path or URL into a report file stem
func sanitizeFilename(s string) string {
	s = strings.TrimSuffix(s, "/")
	if i := strings.LastIndexAny(s, `/\`); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(s, filepath.Ext(s))

	// Replace problematic characters
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	)
	s = replacer.Replace(s)

	// Limit length
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" || s == "." || s == ".." {
		s = "contract"
	}

	return s
}

// uniqueSlug suffixes repeated stems so reports never overwrite each other
func uniqueSlug(slug string, used map[string]int) string {
	used[slug]++
	if n := used[slug]; n > 1 {
		return fmt.Sprintf("%s-%d", slug, n)
	}
	return slug
}
