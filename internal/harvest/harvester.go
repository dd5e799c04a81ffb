// Package harvest runs the two harvest phases: URL collection across the
// enabled sources, then detail extraction of every collected URL.
package harvest

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/printer-harvest/internal/classify"
	"github.com/sells-group/printer-harvest/internal/model"
	"github.com/sells-group/printer-harvest/internal/navigate"
	"github.com/sells-group/printer-harvest/internal/plan"
	"github.com/sells-group/printer-harvest/internal/resilience"
	"github.com/sells-group/printer-harvest/internal/source"
	"github.com/sells-group/printer-harvest/internal/urlnorm"
)

// Options tunes a Harvester.
type Options struct {
	// PerTaskCap bounds URLs kept per (source, task).
	PerTaskCap int
	// Pause is the delay between search tasks.
	Pause time.Duration
	// SourceRPS paces navigation calls per source. Zero or less disables pacing.
	SourceRPS float64
	// SessionsPerSource bounds concurrent pages per source.
	SessionsPerSource int
	// Targets are per-category accepted-URL goals for early stopping.
	Targets map[model.Category]int
}

// Harvester owns all mutable state of one run: dedup sets, the stopping
// controller, per-source pools, limiters and the summary.
type Harvester struct {
	browser    navigate.Browser
	registry   *source.Registry
	adapters   []source.Adapter
	guard      *resilience.Guard
	classifier *classify.Classifier
	opts       Options

	urls       *urlnorm.Set[string]
	records    *urlnorm.Set[model.RecordKey]
	controller *plan.Controller
	summary    *Summary

	mu       sync.Mutex
	pools    map[model.SourceID]*navigate.Pool
	limiters map[model.SourceID]*rate.Limiter
}

// New builds a Harvester. adapters are the sources searched in Phase 1, in
// the order their results are merged; Phase 2 resolves adapters through
// registry so any source tag can be extracted.
func New(browser navigate.Browser, registry *source.Registry, adapters []source.Adapter, guard *resilience.Guard, classifier *classify.Classifier, opts Options) *Harvester {
	if opts.SessionsPerSource <= 0 {
		opts.SessionsPerSource = 1
	}
	if classifier == nil {
		classifier = classify.New()
	}
	return &Harvester{
		browser:    browser,
		registry:   registry,
		adapters:   adapters,
		guard:      guard,
		classifier: classifier,
		opts:       opts,
		urls:       urlnorm.NewSet[string](),
		records:    urlnorm.NewSet[model.RecordKey](),
		controller: plan.NewController(opts.Targets),
		summary:    NewSummary(),
		pools:      make(map[model.SourceID]*navigate.Pool),
		limiters:   make(map[model.SourceID]*rate.Limiter),
	}
}

// Summary returns the run summary.
func (h *Harvester) Summary() *Summary { return h.summary }

// Controller exposes the stopping controller.
func (h *Harvester) Controller() *plan.Controller { return h.controller }

// Close releases every pooled page. The browser itself is owned by the caller.
func (h *Harvester) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	var firstErr error
	for id, p := range h.pools {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = eris.Wrapf(err, "harvest: close %s pool", id)
		}
	}
	return firstErr
}

func (h *Harvester) pool(id model.SourceID) *navigate.Pool {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.pools[id]
	if !ok {
		p = navigate.NewPool(h.browser, h.opts.SessionsPerSource)
		h.pools[id] = p
	}
	return p
}

func (h *Harvester) limiter(id model.SourceID) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.limiters[id]
	if !ok {
		limit := rate.Inf
		if h.opts.SourceRPS > 0 {
			limit = rate.Limit(h.opts.SourceRPS)
		}
		l = rate.NewLimiter(limit, 1)
		h.limiters[id] = l
	}
	return l
}

// withPage runs fn on a pooled page of source id. Every attempt waits on the
// source's limiter and goes through the guard.
func withPage[T any](ctx context.Context, h *Harvester, id model.SourceID, op, url string, fn func(ctx context.Context, page navigate.Page) (T, error)) (T, error) {
	var zero T
	pool := h.pool(id)
	page, err := pool.Acquire(ctx)
	if err != nil {
		return zero, model.NewHarvestError(model.KindLoadError, id, url, eris.Wrap(err, "harvest: acquire page"))
	}
	defer pool.Release(page)

	lim := h.limiter(id)
	return resilience.GuardVal(ctx, h.guard, id, op, url, func(ctx context.Context) (T, error) {
		if err := lim.Wait(ctx); err != nil {
			return zero, err
		}
		return fn(ctx, page)
	})
}

// Run executes both phases and writes each artifact through sink as soon as
// its phase finishes.
func (h *Harvester) Run(ctx context.Context, tasks []model.SearchTask, sink Sink) ([]model.ProductRecord, error) {
	log := zap.L().With(zap.String("run_id", h.summary.RunID))
	log.Info("harvest: starting run",
		zap.Int("tasks", len(tasks)),
		zap.Int("sources", len(h.adapters)),
	)

	urls, err := h.Collect(ctx, tasks)
	if err != nil {
		return nil, err
	}
	if err := sink.WriteURLs(urls); err != nil {
		return nil, eris.Wrap(err, "harvest: write urls")
	}

	records, err := h.Extract(ctx, urls)
	if err != nil {
		return nil, err
	}
	if err := sink.WriteProducts(records); err != nil {
		return nil, eris.Wrap(err, "harvest: write products")
	}

	h.summary.Finish()
	log.Info("harvest: run complete",
		zap.Int("urls", len(urls)),
		zap.Int("records", len(records)),
		zap.Duration("elapsed", h.summary.Elapsed()),
	)
	return records, nil
}
