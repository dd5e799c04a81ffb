package source

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/sells-group/printer-harvest/internal/model"
	"github.com/sells-group/printer-harvest/internal/navigate"
)

// Document is a parsed page plus the URL it was loaded from.
type Document struct {
	*goquery.Document
	URL string
}

// ParseDocument parses rendered HTML.
func ParseDocument(rawHTML, pageURL string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, eris.Wrap(err, "source: parse html")
	}
	return &Document{Document: goquery.NewDocumentFromNode(root), URL: pageURL}, nil
}

type renderProfile struct {
	timeout      time.Duration
	settle       time.Duration
	scrollSteps  int
	scrollPause  time.Duration
	waitIdle     bool
	idleTimeout  time.Duration
	idleFallback time.Duration
}

// render loads url, lets the page settle, and parses the result. A page that
// never reports idle falls back to a fixed pause instead of failing.
func render(ctx context.Context, page navigate.Page, id model.SourceID, url string, p renderProfile) (*Document, error) {
	if err := page.Load(ctx, url, p.timeout); err != nil {
		return nil, tagSource(err, id, url)
	}

	if p.waitIdle {
		if err := page.WaitIdle(ctx, p.idleTimeout); err != nil {
			zap.L().Debug("source: page never idle, using fixed settle",
				zap.String("source", string(id)),
				zap.String("url", url),
				zap.Error(err),
			)
			navigate.Pause(ctx, p.idleFallback)
		}
	}
	navigate.Pause(ctx, p.settle)
	if p.scrollSteps > 0 {
		page.ForceLazyRender(ctx, p.scrollSteps, p.scrollPause)
	}
	if err := ctx.Err(); err != nil {
		return nil, tagSource(err, id, url)
	}

	raw, err := page.HTML(ctx)
	if err != nil {
		return nil, model.NewHarvestError(model.KindLoadError, id, url, err)
	}
	if blocked, kind := navigate.DetectBlock(raw); blocked {
		return nil, model.NewHarvestError(model.KindBlocked, id, url, eris.Errorf("source: blocked by %s page", kind))
	}

	doc, err := ParseDocument(raw, url)
	if err != nil {
		return nil, model.NewHarvestError(model.KindExtraction, id, url, err)
	}
	return doc, nil
}

// tagSource attaches the source id to a navigation error.
func tagSource(err error, id model.SourceID, url string) error {
	var he *model.HarvestError
	if errors.As(err, &he) {
		return model.NewHarvestError(he.Kind, id, url, he.Err)
	}
	kind := model.KindLoadError
	if errors.Is(err, context.DeadlineExceeded) {
		kind = model.KindLoadTimeout
	}
	return model.NewHarvestError(kind, id, url, err)
}
