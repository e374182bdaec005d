package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/Digital-Shane/media-renamer/internal/media"
	"github.com/Jeffail/tunny"
	log "github.com/sirupsen/logrus"
)

// EventType identifies a pipeline progress event.
type EventType int

const (
	// EventStarted is sent when a worker begins staging a file.
	EventStarted EventType = iota
	// EventFinished is sent once a file has its final outcome.
	EventFinished
	// EventDone is the last event of a run and carries the summary.
	EventDone
)

// Event is a progress update emitted while the pipeline runs.
type Event struct {
	Type    EventType
	Path    string
	Total   int
	Done    int
	Outcome media.Outcome
	Summary *media.Summary
}

// PipelineConfig wires the stages together.
type PipelineConfig struct {
	Extractor *media.Extractor
	Resolver  *Resolver
	Formatter *Formatter
	Executor  *Executor
	Workers   int
	// LocalFallback lets a file with no provider match be renamed from
	// its local guess instead of failing.
	LocalFallback bool
}

// Pipeline takes files through extract, resolve, format and execute.
type Pipeline struct {
	cfg PipelineConfig
}

// NewPipeline creates a pipeline. A missing extractor or resolver is
// replaced with an offline one.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	if cfg.Extractor == nil {
		cfg.Extractor = media.NewExtractor(nil)
	}
	if cfg.Resolver == nil {
		cfg.Resolver = NewResolver(nil)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Pipeline{cfg: cfg}
}

// stagedFile is the result of everything before execution.
type stagedFile struct {
	target   string
	warnings []string
	failure  *media.Outcome
}

// Start runs the pipeline in the background and streams its events. The
// channel is closed after the EventDone event.
func (p *Pipeline) Start(ctx context.Context, files []string) <-chan Event {
	events := make(chan Event, 128)
	go func() {
		defer close(events)
		p.Run(ctx, files, func(ev Event) { events <- ev })
	}()
	return events
}

// Run processes files and returns the summary. Lookups and formatting run
// on a worker pool; renames run one at a time in the order of files so
// collisions resolve the same way on every run. emit may be nil and is
// called from several goroutines.
func (p *Pipeline) Run(ctx context.Context, files []string, emit func(Event)) *media.Summary {
	if emit == nil {
		emit = func(Event) {}
	}
	total := len(files)
	summary := media.NewSummary()

	pool := tunny.NewFunc(min(p.cfg.Workers, max(total, 1)), func(payload interface{}) interface{} {
		path := payload.(string)
		emit(Event{Type: EventStarted, Path: path, Total: total})
		return p.stage(ctx, path)
	})
	defer pool.Close()

	results := make([]chan stagedFile, total)
	var wg sync.WaitGroup
	for i, path := range files {
		results[i] = make(chan stagedFile, 1)
		wg.Add(1)
		go func(ch chan<- stagedFile, path string) {
			defer wg.Done()
			res, err := pool.ProcessCtx(ctx, path)
			if err != nil {
				o := media.Failed(path, media.ReasonTransient, fmt.Sprintf("run cancelled: %v", ctxErr(ctx, err)))
				ch <- stagedFile{failure: &o}
				return
			}
			ch <- res.(stagedFile)
		}(results[i], path)
	}

	for i, path := range files {
		staged := <-results[i]

		var outcome media.Outcome
		switch {
		case staged.failure != nil:
			outcome = *staged.failure
		case ctx.Err() != nil:
			outcome = media.Failed(path, media.ReasonTransient, fmt.Sprintf("run cancelled: %v", ctx.Err()))
			outcome.ProposedPath = staged.target
		default:
			outcome = p.cfg.Executor.Execute(path, staged.target)
			outcome.Warnings = append(staged.warnings, outcome.Warnings...)
		}

		logOutcome(outcome)
		summary.Add(outcome)
		emit(Event{Type: EventFinished, Path: path, Total: total, Done: i + 1, Outcome: outcome})
	}
	wg.Wait()

	emit(Event{Type: EventDone, Total: total, Done: total, Summary: summary})
	return summary
}

// stage extracts, resolves and formats one file.
func (p *Pipeline) stage(ctx context.Context, path string) stagedFile {
	fail := func(reason media.Reason, detail string) stagedFile {
		o := media.Failed(path, reason, detail)
		return stagedFile{failure: &o}
	}

	if err := ctx.Err(); err != nil {
		return fail(media.ReasonTransient, fmt.Sprintf("run cancelled: %v", err))
	}

	guess := p.cfg.Extractor.Extract(ctx, path)
	if guess.Kind == media.KindUnknown && guess.Title == "" {
		return fail(media.ReasonIdentity, "could not determine media identity")
	}

	var warnings []string
	id, err := p.cfg.Resolver.Resolve(ctx, guess)
	if err != nil {
		var rerr *ResolveError
		if !errors.As(err, &rerr) {
			return fail(media.ReasonLookup, err.Error())
		}
		if rerr.Reason != media.ReasonNoMatch || !p.cfg.LocalFallback {
			return fail(rerr.Reason, rerr.Error())
		}
		warnings = append(warnings, rerr.Error()+"; using local data")
		id = guess
	}

	if id.Kind == media.KindUnknown {
		return fail(media.ReasonIdentity, fmt.Sprintf("could not determine whether %q is a movie or an episode", id.Title))
	}

	name, err := p.cfg.Formatter.Format(id)
	if err != nil {
		return fail(media.ReasonFormat, err.Error())
	}
	return stagedFile{
		target:   filepath.Join(filepath.Dir(path), name),
		warnings: warnings,
	}
}

func ctxErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func logOutcome(o media.Outcome) {
	entry := log.WithFields(log.Fields{
		"file":   filepath.Base(o.OriginalPath),
		"status": o.Status.String(),
	})
	switch o.Status {
	case media.StatusFailed:
		entry.WithField("reason", o.Reason).Debug(o.Detail)
	default:
		entry.WithField("target", filepath.Base(o.ProposedPath)).Debug("processed")
	}
	for _, w := range o.Warnings {
		entry.Debugf("warning: %s", w)
	}
}
