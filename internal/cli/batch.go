package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/render"
	"github.com/ppiankov/factlens/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchMode    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Audit many claims or links from a file in parallel",
	Long: `Batch analyzes every item of an input file concurrently:
- Plain files hold one claim or URL per line (# starts a comment)
- JSON Lines files hold {"id","mode","type","text","url"} objects
- Model calls are paced by the rate_limiting settings
- Each result is written as JSON and Markdown to the output directory

Example:
  factlens batch claims.txt
  factlens batch claims.jsonl --concurrency 8 --output-dir ./audits
  factlens batch links.txt --mode narrative --timeout 30m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: concurrency.workers)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./factlens-reports", "output directory for results")
	batchCmd.Flags().StringVar(&batchMode, "mode", "forensic", "analysis mode for items without one")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if concurrency > 0 {
		cfg.Concurrency.Workers = concurrency
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}
	mode, err := model.ParseMode(batchMode)
	if err != nil {
		return err
	}

	items, err := worker.ReadItemsFromFile(file)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  FactLens Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s (%d items)\n", file, len(items))
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Provider:     %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	a, err := newApp(cfg, true)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	renderer := render.NewRenderer(a.analyzer.Locale(), cfg.Output.IncludeFooter)
	processor := worker.NewBatchProcessor(a.analyzer, cfg.Concurrency.Workers, mode)

	successCount := 0
	failureCount := 0

	processor.Process(ctx, items, func(done, total int, r *worker.AnalysisResult) {
		label := itemLabel(r.Item)
		if r.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "[%d/%d] ✗ %s: %v\n", done, total, label, r.Error)
			return
		}

		base := filepath.Join(outputDir, sanitizeFilename(r.RequestID))
		if err := renderer.WriteJSON(*r.Record, base+".json"); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "[%d/%d] ✗ %s: failed to write JSON: %v\n", done, total, label, err)
			return
		}
		if err := renderer.WriteMarkdown(*r.Record, base+".md"); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "[%d/%d] ✗ %s: failed to write Markdown: %v\n", done, total, label, err)
			return
		}

		successCount++
		fmt.Fprintf(os.Stderr, "[%d/%d] ✓ %s → %s (%d%%)\n", done, total, label,
			render.VerdictLabel(r.Record.Verdict, a.analyzer.Locale()), r.Record.AuditReliability)
	})

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d items\n", len(items))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if ctx.Err() != nil {
		return fmt.Errorf("batch interrupted: %w", ctx.Err())
	}
	return nil
}

// itemLabel is a short human label for progress lines
func itemLabel(it worker.Item) string {
	label := it.URL
	if label == "" {
		label = it.Text
	}
	if r := []rune(label); len(r) > 60 {
		label = string(r[:57]) + "..."
	}
	if it.ID != "" {
		label = it.ID + " " + label
	}
	return label
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// sanitizeFilename makes s safe to use as a single path element
func sanitizeFilename(s string) string {
	s = unsafeFilenameChars.ReplaceAllString(strings.TrimSpace(s), "_")
	s = strings.Trim(s, "._")
	if s == "" {
		s = "result"
	}
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}
