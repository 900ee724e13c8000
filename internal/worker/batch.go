package worker

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/validate"
)

// Analyzer defines the interface for analyzing one piece of evidence
type Analyzer interface {
	Analyze(ctx context.Context, mode model.AnalysisMode, ev model.EvidenceInput, requestID string) (model.ResultRecord, error)
}

// Item is one line of a batch file
type Item struct {
	ID   string `json:"id,omitempty"`
	Mode string `json:"mode,omitempty"`
	Type string `json:"type,omitempty"`
	Text string `json:"text,omitempty"`
	URL  string `json:"url,omitempty"`
	Line int    `json:"-"`
}

// AnalysisJob analyzes one batch item
type AnalysisJob struct {
	Item        Item
	DefaultMode model.AnalysisMode
	Analyzer    Analyzer
}

// Execute validates the item and runs the analysis
func (j *AnalysisJob) Execute(ctx context.Context) Result {
	requestID := j.Item.ID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	res := &AnalysisResult{Item: j.Item, RequestID: requestID}

	mode, ev, err := j.Item.evidence(j.DefaultMode)
	if err != nil {
		res.Error = err
		return res
	}
	if err := validate.Evidence(ev); err != nil {
		res.Error = err
		return res
	}

	record, err := j.Analyzer.Analyze(ctx, mode, ev, requestID)
	if err != nil {
		res.Error = err
		return res
	}
	res.Record = &record
	return res
}

// evidence converts the item into the analyzer's input
func (it Item) evidence(defaultMode model.AnalysisMode) (model.AnalysisMode, model.EvidenceInput, error) {
	mode := defaultMode
	if it.Mode != "" {
		m, err := model.ParseMode(it.Mode)
		if err != nil {
			return "", model.EvidenceInput{}, err
		}
		mode = m
	}

	ev := model.EvidenceInput{Text: it.Text, URL: it.URL}
	switch {
	case it.Type != "":
		t, err := model.ParseInputType(it.Type)
		if err != nil {
			return "", model.EvidenceInput{}, err
		}
		ev.Type = t
	case it.URL != "":
		ev.Type = model.InputLink
	default:
		ev.Type = model.InputText
	}

	return mode, ev, nil
}

// AnalysisResult represents the result of an analysis job
type AnalysisResult struct {
	Item      Item
	RequestID string
	Record    *model.ResultRecord
	Error     error
}

// GetError returns the error from the analysis result
func (r *AnalysisResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes many items concurrently
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
	mode        model.AnalysisMode
}

// NewBatchProcessor creates a new batch processor; items without a mode use mode
func NewBatchProcessor(analyzer Analyzer, concurrency int, mode model.AnalysisMode) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
		mode:        mode,
	}
}

// Process analyzes items and returns results in input order.
// progress, when set, is called as each item finishes.
func (b *BatchProcessor) Process(ctx context.Context, items []Item, progress func(done, total int, r *AnalysisResult)) []*AnalysisResult {
	if len(items) == 0 {
		return []*AnalysisResult{}
	}

	jobs := make([]Job, len(items))
	for i, it := range items {
		jobs[i] = &AnalysisJob{Item: it, DefaultMode: b.mode, Analyzer: b.analyzer}
	}

	done := 0
	var onResult func(int, Result)
	if progress != nil {
		onResult = func(_ int, r Result) {
			done++
			progress(done, len(items), r.(*AnalysisResult))
		}
	}

	results := NewPool(b.concurrency).Run(ctx, jobs, onResult)

	out := make([]*AnalysisResult, len(results))
	for i, r := range results {
		out[i] = r.(*AnalysisResult)
	}
	return out
}

// ProcessFile reads items from a file and processes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string, progress func(done, total int, r *AnalysisResult)) ([]*AnalysisResult, error) {
	items, err := ReadItemsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read items: %w", err)
	}

	return b.Process(ctx, items, progress), nil
}

// ReadItemsFromFile reads batch items from a file
func ReadItemsFromFile(filePath string) ([]Item, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return ReadItems(file)
}

// ReadItems parses one item per line. A line is either a JSON object or
// plain evidence: URLs become link items, anything else text items.
// Blank lines and # comments are skipped; duplicate lines are analyzed once.
func ReadItems(r io.Reader) ([]Item, error) {
	var items []Item
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if seen[line] {
			continue
		}
		seen[line] = true

		var it Item
		if strings.HasPrefix(line, "{") {
			if err := json.Unmarshal([]byte(line), &it); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
		} else if isURL(line) {
			it.URL = line
		} else {
			it.Text = line
		}
		it.Line = lineNo
		items = append(items, it)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return items, nil
}

func isURL(s string) bool {
	lower := strings.ToLower(s)
	return !strings.ContainsAny(s, " \t") &&
		(strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://"))
}
