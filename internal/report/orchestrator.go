// Package report orchestrates per-citation relevance analysis and assembles
// the final report payload.
package report

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackzampolin/citecheck/internal/config"
	"github.com/jackzampolin/citecheck/internal/extract"
	"github.com/jackzampolin/citecheck/internal/fetch"
	"github.com/jackzampolin/citecheck/internal/providers"
	"github.com/jackzampolin/citecheck/internal/resolve"
)

// Status tracks one report-generation run.
type Status int32

const (
	StatusIdle Status = iota
	StatusRunning
	StatusDone
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusDone:
		return "done"
	default:
		return "idle"
	}
}

// maxWorkers caps the citation worker pool. Each worker runs one citation's
// full pipeline to completion, so the pool size also caps outstanding
// external requests.
const maxWorkers = 10

// NotFoundMessage is the synthesized result for citations missing from the
// reference list; the backend is never invoked for these.
const NotFoundMessage = "citation not found in references"

// Config holds orchestrator construction options.
type Config struct {
	Backend providers.Backend
	Fetcher *fetch.Fetcher

	// Mode is the analysis depth: full, quick or subjective.
	Mode string

	// MaxPromptChars truncates assembled prompts.
	MaxPromptChars int

	Sink   ProgressSink
	Logger *slog.Logger
}

// Orchestrator runs relevance analysis for one document's citations over a
// bounded worker pool. One orchestrator handles one run at a time; progress
// counters are owned by the orchestrator for the duration of that run.
type Orchestrator struct {
	backend        providers.Backend
	fetcher        *fetch.Fetcher
	mode           string
	maxPromptChars int
	sink           ProgressSink
	logger         *slog.Logger

	status    atomic.Int32
	processed atomic.Int64
	total     atomic.Int64
}

// New creates an orchestrator.
func New(cfg Config) *Orchestrator {
	if cfg.Backend == nil {
		cfg.Backend = providers.Unconfigured{}
	}
	if cfg.Mode == "" {
		cfg.Mode = config.ModeFull
	}
	if cfg.MaxPromptChars <= 0 {
		cfg.MaxPromptChars = 3000
	}
	if cfg.Sink == nil {
		cfg.Sink = NopSink{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Orchestrator{
		backend:        cfg.Backend,
		fetcher:        cfg.Fetcher,
		mode:           cfg.Mode,
		maxPromptChars: cfg.MaxPromptChars,
		sink:           cfg.Sink,
		logger:         cfg.Logger,
	}
}

// Status returns the current run state.
func (o *Orchestrator) Status() Status {
	return Status(o.status.Load())
}

// Progress returns the current counters as a snapshot. Readable from any
// goroutine at any time.
func (o *Orchestrator) Progress() Snapshot {
	return snapshot(int(o.processed.Load()), int(o.total.Load()))
}

// Run analyzes every citation and returns the assembled report. Results are
// re-sorted by citation ordinal after collection, so the payload is
// deterministic despite out-of-order worker completion.
//
// Cancellation is best effort: once ctx is done no further results are
// consumed, but already-dispatched fetch/backend calls run to completion on
// their workers.
func (o *Orchestrator) Run(ctx context.Context, res *extract.Result, v extract.Validation, resolver *resolve.Resolver) *Report {
	total := len(res.Citations)
	o.total.Store(int64(total))
	o.processed.Store(0)
	o.status.Store(int32(StatusRunning))
	defer o.status.Store(int32(StatusDone))

	rep := &Report{
		MissingCitations: v.Missing,
		UnusedReferences: v.Unused,
	}
	if total == 0 {
		o.sink.Publish(snapshot(0, 0))
		o.sink.Clear()
		return rep
	}

	workers := maxWorkers
	if total < workers {
		workers = total
	}
	o.logger.Info("starting relevance analysis",
		"citations", total, "workers", workers, "mode", o.mode, "backend", o.backend.Name())

	jobs := make(chan extract.Citation)
	results := make(chan CitationResult)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				results <- o.processCitation(ctx, c, res, v, resolver)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, c := range res.Citations {
			select {
			case jobs <- c:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for r := range results {
		if ctx.Err() != nil {
			// Drain without consuming so workers can exit.
			continue
		}
		rep.Results = append(rep.Results, r)
	}

	sort.Slice(rep.Results, func(i, j int) bool {
		return rep.Results[i].Citation.Ordinal < rep.Results[j].Citation.Ordinal
	})

	o.sink.Publish(o.Progress())
	o.sink.Clear()
	o.logger.Info("relevance analysis complete", "processed", o.processed.Load(), "total", total)
	return rep
}

// processCitation runs one citation's full pipeline: context resolution,
// metadata/content fetch per analysis depth, prompt build, backend call.
func (o *Orchestrator) processCitation(ctx context.Context, c extract.Citation, res *extract.Result, v extract.Validation, resolver *resolve.Resolver) CitationResult {
	start := time.Now()
	cctx := resolver.Resolve(c)

	var analysis string
	switch {
	case v.IsMissing(c):
		analysis = NotFoundMessage
	default:
		ref := res.ReferenceFor(c)
		if ref == nil {
			analysis = NotFoundMessage
		} else {
			analysis = o.analyze(ctx, c, ref, cctx.Text)
		}
	}

	processed := o.processed.Add(1)
	o.sink.Publish(snapshot(int(processed), int(o.total.Load())))
	o.logger.Debug("citation analyzed",
		"citation", c.ID, "context_source", cctx.Source, "elapsed", time.Since(start))

	return CitationResult{Citation: c, Context: cctx, Analysis: analysis}
}

// analyze gathers evidence per the configured depth and asks the backend.
func (o *Orchestrator) analyze(ctx context.Context, c extract.Citation, ref *extract.Reference, contextText string) string {
	var (
		info    fetch.PaperInfo
		content string
	)
	if o.fetcher != nil {
		switch o.mode {
		case config.ModeSubjective:
			// Reference raw text only.
		case config.ModeQuick:
			info = o.fetcher.Info(ctx, ref)
		default:
			info = o.fetcher.Info(ctx, ref)
			content = o.fetcher.Content(ctx, ref)
		}
	}

	prompt := buildPrompt(promptData{
		citation:  c,
		reference: ref,
		context:   contextText,
		info:      info,
		content:   content,
	}, o.maxPromptChars)

	return o.backend.Analyze(ctx, prompt)
}

func snapshot(processed, total int) Snapshot {
	s := Snapshot{Processed: processed, Total: total}
	if total > 0 {
		s.Percentage = processed * 100 / total
	}
	return s
}
