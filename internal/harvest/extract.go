package harvest

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/printer-harvest/internal/model"
	"github.com/sells-group/printer-harvest/internal/navigate"
	"github.com/sells-group/printer-harvest/internal/source"
)

type extraction struct {
	// source labels the record: the tag carried by the URL row, or the
	// resolving adapter when the row has none.
	source model.SourceID
	detail source.Detail
	err    error
}

// Extract runs Phase 2. Pages are loaded concurrently, bounded per source,
// and results are accepted in input order so the first occurrence of a
// record key wins and product ids follow input positions.
func (h *Harvester) Extract(ctx context.Context, urls []model.CollectedURL) ([]model.ProductRecord, error) {
	log := zap.L().With(zap.String("run_id", h.summary.RunID))
	results := h.extractAll(ctx, urls)
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "extract: cancelled")
	}

	var out []model.ProductRecord
	for i, u := range urls {
		res := results[i]
		if res.err != nil {
			continue
		}
		if !model.HasImages(res.detail.Images) {
			h.summary.noImages()
			log.Debug("extract: no images", zap.String("url", u.URL))
			continue
		}

		title := strings.TrimSpace(res.detail.Title)
		cat := h.classifier.Classify(title)
		if !cat.Harvestable() {
			h.summary.rejected()
			log.Debug("extract: rejected",
				zap.String("url", u.URL),
				zap.String("title", title),
				zap.String("kind", string(model.KindRejected)),
			)
			continue
		}

		if !h.records.Add(model.NewRecordKey(res.source, u.Brand, title)) {
			h.summary.duplicateRecord()
			log.Debug("extract: duplicate record",
				zap.String("url", u.URL),
				zap.String("kind", string(model.KindDuplicateRecord)),
			)
			continue
		}

		out = append(out, model.ProductRecord{
			SourceURL: u.URL,
			Source:    res.source,
			Brand:     u.Brand,
			ProductID: model.ProductID(res.source, u.Brand, i+1),
			Title:     title,
			Category:  cat,
			Images:    res.detail.Images,
		})
		h.summary.recordAccepted(res.source, cat)
	}

	log.Info("extract: done",
		zap.Int("urls", len(urls)),
		zap.Int("records", len(out)),
	)
	return out, nil
}

// extractAll loads every URL. Each source gets its own worker group sized to
// its session bound; results[i] belongs to urls[i].
func (h *Harvester) extractAll(ctx context.Context, urls []model.CollectedURL) []extraction {
	results := make([]extraction, len(urls))

	bySource := make(map[model.SourceID][]int)
	adapters := make(map[model.SourceID]source.Adapter)
	var order []model.SourceID
	for i, u := range urls {
		a := h.registry.Resolve(u.Source, u.URL)
		if a == nil {
			err := model.NewHarvestError(model.KindExtraction, u.Source, u.URL, eris.New("extract: no adapter for url"))
			h.summary.failure(u.Source, err)
			results[i] = extraction{source: u.Source, err: err}
			continue
		}
		id := a.ID()
		if _, ok := adapters[id]; !ok {
			adapters[id] = a
			order = append(order, id)
		}
		bySource[id] = append(bySource[id], i)
	}

	var outer errgroup.Group
	for _, id := range order {
		a := adapters[id]
		idx := bySource[id]
		outer.Go(func() error {
			var g errgroup.Group
			g.SetLimit(h.opts.SessionsPerSource)
			for _, i := range idx {
				g.Go(func() error {
					results[i] = h.extractOne(ctx, a, urls[i])
					return nil
				})
			}
			return g.Wait()
		})
	}
	_ = outer.Wait()
	return results
}

func (h *Harvester) extractOne(ctx context.Context, a source.Adapter, u model.CollectedURL) extraction {
	id := a.ID()
	if ctx.Err() != nil {
		return extraction{source: id, err: ctx.Err()}
	}
	detail, err := withPage(ctx, h, id, "detail", u.URL, func(ctx context.Context, page navigate.Page) (source.Detail, error) {
		return a.ExtractDetail(ctx, page, u.URL)
	})
	if err != nil {
		if ctx.Err() == nil {
			h.summary.failure(id, err)
			zap.L().Warn("extract: detail failed",
				zap.String("run_id", h.summary.RunID),
				zap.String("source", string(id)),
				zap.String("url", u.URL),
				zap.String("kind", string(model.KindOf(err))),
				zap.Error(err),
			)
		}
		return extraction{source: id, err: err}
	}
	return extraction{source: recordSource(u, id), detail: detail}
}

func recordSource(u model.CollectedURL, adapter model.SourceID) model.SourceID {
	if u.Source != "" {
		return u.Source
	}
	return adapter
}
