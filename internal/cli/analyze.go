package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/rainier/internal/model"
	"github.com/ppiankov/rainier/internal/pipeline"
)

var (
	outJSON      string
	outMD        string
	outFormat    string
	timeout      time.Duration
	noCache      bool
	noContract   bool
	showProgress bool
	llmProvider  string
	llmModel     string
	catalogFile  string
	questionFile string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file|url>",
	Short: "Review a single contract and print the report",
	Long: `Analyze reviews one contract:
- Extract the contract text (PDF, HTML or plain text)
- Split it into sentences
- Flag sentences containing ASC 606 trigger phrases, category by category
- Ask the AI model the contract review questions (when a provider is configured)

Example:
  rainier analyze contract.pdf
  rainier analyze contract.pdf --json report.json --md report.md
  rainier analyze https://example.com/msa.pdf --llm-provider openai --llm-model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	analyzeCmd.Flags().StringVar(&outFormat, "format", "text", "stdout format (text, json, md, summary, none)")
	analyzeCmd.Flags().BoolVar(&noContract, "no-contract", false, "omit the extracted contract text from reports")
	analyzeCmd.Flags().BoolVar(&showProgress, "progress", false, "show a progress bar on stderr")
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall analysis timeout")

	addAnalysisFlags(analyzeCmd)
}

// addAnalysisFlags registers the pipeline flags shared by analyze and batch
func addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the answer cache")
	cmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama); overrides config")
	cmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name; overrides config")
	cmd.Flags().StringVar(&catalogFile, "catalog", "", "phrase table YAML (default: built-in table)")
	cmd.Flags().StringVar(&questionFile, "questions", "", "CUAD-format question file (default: built-in questions)")
}

// applyAnalysisFlags copies the shared pipeline flags onto the config
func applyAnalysisFlags(cfg *model.Config) {
	if noCache {
		cfg.Cache.Enabled = false
	}
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	if catalogFile != "" {
		cfg.Catalog.File = catalogFile
	}
	if questionFile != "" {
		cfg.Questions.File = questionFile
	}
	if noContract {
		cfg.Output.IncludeContract = false
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s, err := newSession(applyAnalysisFlags)
	if err != nil {
		return err
	}
	defer s.close()

	if verbose {
		fmt.Fprintf(os.Stderr, "Analyzing: %s\n", path)
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", timeout)
		if s.pipeline.Answerer().IsEnabled() {
			fmt.Fprintf(os.Stderr, "LLM: %s/%s\n", s.pipeline.Answerer().ProviderName(), s.pipeline.Answerer().Model())
		} else {
			fmt.Fprintf(os.Stderr, "LLM: disabled\n")
		}
		fmt.Fprintln(os.Stderr)
	}

	var progress pipeline.ProgressFunc
	if showProgress {
		progress = progressBar(os.Stderr)
	}

	report, err := s.pipeline.AnalyzeFileWithProgress(ctx, path, progress)
	if err != nil {
		s.logger.Error("analysis failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("analyze failed: %w", err)
	}

	renderer := pipeline.NewRenderer(s.cfg.Output.IncludeContract)
	if err := writeOutputs(renderer, report, outJSON, outMD); err != nil {
		return err
	}

	return renderStdout(cmd.OutOrStdout(), renderer, report, outFormat)
}

// writeOutputs writes the optional JSON and Markdown report files
func writeOutputs(renderer *pipeline.Renderer, report *model.Report, jsonPath, mdPath string) error {
	if jsonPath != "" {
		if err := renderer.WriteFile(jsonPath, report, renderer.RenderJSON); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", jsonPath)
		}
	}
	if mdPath != "" {
		if err := renderer.WriteFile(mdPath, report, renderer.RenderMarkdown); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", mdPath)
		}
	}
	return nil
}

// renderStdout prints the report in the requested format
func renderStdout(w io.Writer, renderer *pipeline.Renderer, report *model.Report, format string) error {
	switch strings.ToLower(format) {
	case "text", "":
		return renderer.RenderText(w, report)
	case "json":
		return renderer.RenderJSON(w, report)
	case "md", "markdown":
		return renderer.RenderMarkdown(w, report)
	case "summary":
		renderer.RenderSummary(w, report)
		return nil
	case "none":
		return nil
	default:
		return fmt.Errorf("unknown format %q (expected text, json, md, summary or none)", format)
	}
}

// progressBar redraws a single-line progress bar on w
func progressBar(w io.Writer) pipeline.ProgressFunc {
	const width = 40
	return func(percent int, stage string) {
		filled := percent * width / 100
		fmt.Fprintf(w, "\r[%s%s] %3d%% %-8s", strings.Repeat("#", filled), strings.Repeat(".", width-filled), percent, stage)
		if percent >= 100 {
			fmt.Fprintln(w)
		}
	}
}
