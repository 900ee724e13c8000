package cli

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/pipeline"
	"github.com/ppiankov/factlens/internal/render"
	"github.com/ppiankov/factlens/internal/store"
	"github.com/ppiankov/factlens/internal/telemetry"
	"github.com/ppiankov/factlens/internal/validate"
)

var (
	analyzeMode      string
	analyzeType      string
	analyzeURL       string
	analyzeTextFile  string
	analyzeMedia     []string
	analyzeRequestID string
	analyzeUserID    string
	outJSON          string
	outMD            string
	showShare        bool
	noFooter         bool
	timeout          time.Duration
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [text]",
	Short: "Audit one piece of evidence and print the result card",
	Long: `Analyze submits a claim to the configured model and prints the audit:
- verdict and audit reliability after the consistency ruleset
- canonical fact, temporality, opinion load and source rank
- top sources, flagged as official when they match authority domains
- the model's conclusion, verbatim

Example:
  factlens analyze "O prefeito anunciou três novos hospitais ontem."
  factlens analyze --url https://example.com/news/123 --mode narrative
  factlens analyze --type image --media print.png "Legenda que circula no WhatsApp"
  factlens analyze --file claim.txt --json result.json --md result.md --share`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeMode, "mode", "forensic", "analysis mode (factual, narrative, forensic)")
	analyzeCmd.Flags().StringVar(&analyzeType, "type", "", "input type (text, image, video, link, text_image); inferred when empty")
	analyzeCmd.Flags().StringVar(&analyzeURL, "url", "", "link to audit")
	analyzeCmd.Flags().StringVar(&analyzeTextFile, "file", "", "read the claim text from a file ('-' for stdin)")
	analyzeCmd.Flags().StringSliceVar(&analyzeMedia, "media", nil, "image or video file to attach (repeatable)")
	analyzeCmd.Flags().StringVar(&analyzeRequestID, "request-id", "", "request identifier (default: random UUID)")
	analyzeCmd.Flags().StringVar(&analyzeUserID, "user", "", "user identifier for the personal analysis counter")

	analyzeCmd.Flags().StringVar(&outJSON, "json", "", "write the result record as JSON to this path")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "write the result card as Markdown to this path")
	analyzeCmd.Flags().BoolVar(&showShare, "share", false, "print the share text after the summary")
	analyzeCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall analysis timeout")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}

	mode, err := model.ParseMode(analyzeMode)
	if err != nil {
		return err
	}
	ev, err := buildEvidence(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	if err := validate.Evidence(ev); err != nil {
		return err
	}

	a, err := newApp(cfg, true)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	requestID := analyzeRequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}

	ctx, cancel := context.WithTimeout(telemetry.WithUserID(cmd.Context(), analyzeUserID), timeout)
	defer cancel()

	record, err := a.analyzer.Analyze(ctx, mode, ev, requestID)
	if err != nil {
		fmt.Fprintln(os.Stderr, pipeline.UserMessage(err, a.analyzer.Locale()))
		return fmt.Errorf("analysis failed: %w", err)
	}

	renderer := render.NewRenderer(a.analyzer.Locale(), cfg.Output.IncludeFooter)
	out := cmd.OutOrStdout()
	renderer.Summary(out, record)
	if showShare {
		fmt.Fprintf(out, "\n%s\n", renderer.ShareText(record))
	}

	if outJSON != "" {
		if err := renderer.WriteJSON(record, outJSON); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
	}
	if outMD != "" {
		if err := renderer.WriteMarkdown(record, outMD); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
	}

	if analyzeUserID != "" {
		reportPersonalCount(ctx, os.Stderr, store.NewCounters(a.kv), analyzeUserID)
	}
	return nil
}

// reportPersonalCount bumps the user's counter; a failed update is only
// reported as a warning.
func reportPersonalCount(ctx context.Context, w io.Writer, counters *store.Counters, userID string) {
	n, err := counters.Increment(ctx, userID)
	if err != nil {
		fmt.Fprintf(w, "Warning: personal count not updated: %v\n", err)
		return
	}
	fmt.Fprintf(w, "✓ %d analyses by %s\n", n, userID)
}

// buildEvidence assembles the evidence from flags, args and attached files
func buildEvidence(stdin io.Reader, args []string) (model.EvidenceInput, error) {
	var ev model.EvidenceInput

	text := ""
	if len(args) == 1 {
		text = args[0]
	}
	if analyzeTextFile != "" {
		data, err := readTextSource(stdin, analyzeTextFile)
		if err != nil {
			return ev, err
		}
		text = strings.TrimSpace(text + "\n" + string(data))
	}
	ev.Text = text
	ev.URL = analyzeURL

	for _, path := range analyzeMedia {
		part, err := readMedia(path)
		if err != nil {
			return ev, err
		}
		ev.Media = append(ev.Media, part)
	}

	if analyzeType != "" {
		t, err := model.ParseInputType(analyzeType)
		if err != nil {
			return ev, err
		}
		ev.Type = t
	} else {
		ev.Type = inferInputType(ev)
	}
	return ev, nil
}

func inferInputType(ev model.EvidenceInput) model.InputType {
	switch {
	case ev.URL != "":
		return model.InputLink
	case len(ev.Media) > 0 && !ev.Media[0].IsImage():
		return model.InputVideo
	case len(ev.Media) > 0 && strings.TrimSpace(ev.Text) != "":
		return model.InputTextImage
	case len(ev.Media) > 0:
		return model.InputImage
	default:
		return model.InputText
	}
}

func readTextSource(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read text file: %w", err)
	}
	return data, nil
}

// readMedia loads a file; the MIME type comes from the extension, then the content
func readMedia(path string) (model.MediaPart, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.MediaPart{}, fmt.Errorf("read media: %w", err)
	}
	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return model.MediaPart{Data: data, MIMEType: mimeType, Name: filepath.Base(path)}, nil
}
