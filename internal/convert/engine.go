// Package convert ties parsing and DOCX generation together into the
// engine shared by the CLI and the HTTP service.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/draftmill/draftmill/internal/config"
	"github.com/draftmill/draftmill/internal/docx"
	"github.com/draftmill/draftmill/internal/numbering"
	"github.com/draftmill/draftmill/internal/parser"
)

const defaultBatchWorkers = 4

// Engine converts source documents to DOCX using a base conversion
// configuration. The base config can be swapped at runtime; individual
// conversions may also override it per call. All methods are safe for
// concurrent use.
type Engine struct {
	mu      sync.RWMutex
	cfg     *config.Conversion
	log     *slog.Logger
	metrics *Metrics
}

// NewEngine builds an engine around cfg. A nil cfg falls back to the
// built-in defaults.
func NewEngine(cfg *config.Conversion, log *slog.Logger) *Engine {
	if cfg == nil {
		cfg = config.DefaultConversion()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		cfg:     cfg,
		log:     log,
		metrics: NewMetrics(0),
	}
}

// Config returns the engine's current base configuration.
func (e *Engine) Config() *config.Conversion {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg
}

// SetConfig validates cfg and makes it the new base configuration.
// Conversions already in flight keep the config they started with.
func (e *Engine) SetConfig(cfg *config.Conversion) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid conversion config: %w", err)
	}
	e.mu.Lock()
	e.cfg = cfg
	e.mu.Unlock()
	return nil
}

// Convert renders markdown source into a DOCX file using the base
// configuration.
func (e *Engine) Convert(ctx context.Context, md []byte) ([]byte, error) {
	return e.ConvertWith(ctx, md, e.Config())
}

// ConvertWith renders markdown source into a DOCX file using an explicit
// configuration instead of the engine's base one.
func (e *Engine) ConvertWith(ctx context.Context, md []byte, cfg *config.Conversion) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	p := &parser.MarkdownParser{}
	doc, err := p.Parse(bytes.NewReader(md), "document.md")
	if err != nil {
		return nil, fmt.Errorf("parse markdown: %w", err)
	}
	out, err := docx.NewGenerator(cfg, e.log).Generate(doc)
	if err != nil {
		return nil, fmt.Errorf("generate docx: %w", err)
	}

	e.metrics.Record(time.Since(start).Milliseconds())
	return out, nil
}

// ConvertUpload parses in-memory file bytes, picking a parser from the
// filename's extension, and renders the result with cfg. A nil cfg uses
// the engine's base configuration.
func (e *Engine) ConvertUpload(ctx context.Context, data []byte, filename string, cfg *config.Conversion) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	p, err := parser.ForFile(filename)
	if err != nil {
		return nil, err
	}
	doc, err := p.Parse(bytes.NewReader(data), filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	if cfg == nil {
		cfg = e.Config()
	}
	out, err := docx.NewGenerator(cfg, e.log).Generate(doc)
	if err != nil {
		return nil, fmt.Errorf("generate docx: %w", err)
	}

	e.metrics.Record(time.Since(start).Milliseconds())
	return out, nil
}

// ConvertFile reads inPath, picks a parser by file extension, and writes
// the generated DOCX to outPath, creating parent directories as needed.
func (e *Engine) ConvertFile(ctx context.Context, inPath, outPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()

	info, err := os.Stat(inPath)
	if err != nil {
		return fmt.Errorf("input file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("input file %s is a directory", inPath)
	}

	p, err := parser.ForFile(inPath)
	if err != nil {
		return err
	}
	f, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	doc, err := p.Parse(f, filepath.Base(inPath))
	f.Close()
	if err != nil {
		return fmt.Errorf("parse %s: %w", inPath, err)
	}

	data, err := docx.NewGenerator(e.Config(), e.log).Generate(doc)
	if err != nil {
		return fmt.Errorf("generate docx: %w", err)
	}
	e.metrics.Record(time.Since(start).Milliseconds())

	if dir := filepath.Dir(outPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// FilePair names one input file and the output path its DOCX goes to.
type FilePair struct {
	In  string
	Out string
}

// BatchResult reports the outcome of converting one file pair.
type BatchResult struct {
	In       string
	Out      string
	Err      error
	Duration time.Duration
}

type batchSlot struct {
	idx int
	res BatchResult
}

// ConvertBatch converts the given pairs with at most workers running at
// once. One file's failure never aborts the rest; results come back in
// input order, each carrying its own error.
func (e *Engine) ConvertBatch(ctx context.Context, pairs []FilePair, workers int) []BatchResult {
	if workers <= 0 {
		workers = defaultBatchWorkers
	}

	results := make(chan batchSlot, len(pairs))
	sem := make(chan struct{}, workers)

	for i, pair := range pairs {
		sem <- struct{}{}
		go func(i int, pair FilePair) {
			defer func() { <-sem }()
			start := time.Now()
			err := e.ConvertFile(ctx, pair.In, pair.Out)
			results <- batchSlot{i, BatchResult{
				In:       pair.In,
				Out:      pair.Out,
				Err:      err,
				Duration: time.Since(start),
			}}
		}(i, pair)
	}

	out := make([]BatchResult, len(pairs))
	for range pairs {
		s := <-results
		out[s.idx] = s.res
	}
	return out
}

// ValidateNumbering checks every heading numbering template in the base
// configuration and reports all failures, not just the first.
func (e *Engine) ValidateNumbering() error {
	cfg := e.Config()
	var errs []error
	for level := 1; level <= numbering.MaxLevels; level++ {
		style, ok := cfg.Styles.Headings[level]
		if !ok || style.Numbering == "" {
			continue
		}
		if err := numbering.ValidateTemplate(style.Numbering); err != nil {
			errs = append(errs, fmt.Errorf("heading level %d template %q: %w", level, style.Numbering, err))
		}
	}
	return errors.Join(errs...)
}

// MetricsSnapshot reports conversion latency over the rolling window.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	return e.metrics.Snapshot()
}
