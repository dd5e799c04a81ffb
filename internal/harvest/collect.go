package harvest

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/printer-harvest/internal/model"
	"github.com/sells-group/printer-harvest/internal/navigate"
)

// Collect runs Phase 1 over tasks in plan order. Adapter failures are logged
// and counted; the only error returned is context cancellation.
func (h *Harvester) Collect(ctx context.Context, tasks []model.SearchTask) ([]model.CollectedURL, error) {
	log := zap.L().With(zap.String("run_id", h.summary.RunID))
	var out []model.CollectedURL

	for i, task := range tasks {
		if err := ctx.Err(); err != nil {
			return out, eris.Wrap(err, "collect: cancelled")
		}

		found := h.collectTask(ctx, task)

		accepted := 0
		for j, a := range h.adapters {
			for _, u := range found[j] {
				if !h.urls.Add(u) {
					h.summary.duplicateURL()
					continue
				}
				out = append(out, model.CollectedURL{URL: u, Source: a.ID(), Brand: task.Brand, Category: task.Category})
				h.summary.urlAccepted(a.ID(), task.Category)
				accepted++
			}
		}
		h.controller.Accept(task.Category, accepted)
		h.summary.taskDone()

		log.Info("collect: task done",
			zap.Int("task", i+1),
			zap.Int("of", len(tasks)),
			zap.String("query", task.Query()),
			zap.Stringer("category", task.Category),
			zap.Int("new_urls", accepted),
			zap.Int("total_urls", len(out)),
		)

		if h.controller.Satisfied() {
			remaining := len(tasks) - i - 1
			h.summary.stopEarly(remaining)
			log.Info("collect: targets reached, stopping", zap.Int("skipped_tasks", remaining))
			break
		}
		if i < len(tasks)-1 && !navigate.Pause(ctx, h.opts.Pause) {
			return out, eris.Wrap(ctx.Err(), "collect: cancelled")
		}
	}
	return out, nil
}

// collectTask searches every adapter for task concurrently. found[j] holds
// the canonical URLs of h.adapters[j]; a failed adapter leaves its slot nil.
func (h *Harvester) collectTask(ctx context.Context, task model.SearchTask) [][]string {
	found := make([][]string, len(h.adapters))
	var g errgroup.Group

	for j, a := range h.adapters {
		g.Go(func() error {
			id := a.ID()
			urls, err := withPage(ctx, h, id, "search", task.Query(), func(ctx context.Context, page navigate.Page) ([]string, error) {
				return a.CollectSearchURLs(ctx, page, task.Brand, task.Keyword, h.opts.PerTaskCap)
			})
			if err != nil {
				h.summary.failure(id, err)
				zap.L().Warn("collect: adapter failed",
					zap.String("run_id", h.summary.RunID),
					zap.String("source", string(id)),
					zap.String("query", task.Query()),
					zap.String("kind", string(model.KindOf(err))),
					zap.Error(err),
				)
				return nil // one source never cancels its siblings
			}
			if len(urls) == 0 {
				h.summary.noAnchors()
			}
			found[j] = urls
			return nil
		})
	}

	_ = g.Wait()
	return found
}
