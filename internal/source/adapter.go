// Package source implements per-marketplace search collection and detail
// extraction behind one Adapter contract.
package source

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/printer-harvest/internal/model"
	"github.com/sells-group/printer-harvest/internal/navigate"
	"github.com/sells-group/printer-harvest/internal/urlnorm"
)

// Detail is the raw result of a detail extraction.
type Detail struct {
	Title  string
	Images [model.ImageSlots]string
}

// Adapter is the two-operation contract every source implements. Adapters
// keep no state between calls; the page is borrowed from the caller.
type Adapter interface {
	ID() model.SourceID
	// CollectSearchURLs returns at most limit distinct canonical listing URLs
	// for brand and keyword. An empty result with a nil error means the
	// results page had no matching anchors.
	CollectSearchURLs(ctx context.Context, page navigate.Page, brand, keyword string, limit int) ([]string, error)
	// ExtractDetail loads a listing and returns its title and image slots.
	ExtractDetail(ctx context.Context, page navigate.Page, url string) (Detail, error)
}

// Options are the run-level knobs shared by all adapters.
type Options struct {
	SearchTimeout time.Duration
	DetailTimeout time.Duration
	IdleTimeout   time.Duration
	// SkipSettle drops the fixed post-load pauses.
	SkipSettle bool
	// Exclude holds glob path patterns per source whose URLs are dropped.
	Exclude map[model.SourceID][]string
}

// DefaultOptions returns the production timeouts.
func DefaultOptions() Options {
	return Options{
		SearchTimeout: 20 * time.Second,
		DetailTimeout: 30 * time.Second,
		IdleTimeout:   5 * time.Second,
	}
}

// AcceptFunc decides whether a canonical href from a search page is a product listing.
type AcceptFunc func(canonical string, anchor *goquery.Selection, brand string) bool

// searchProfile describes how one source's results pages are queried.
type searchProfile struct {
	urlTemplate string // "{q}" is replaced by the escaped query
	baseURL     string
	settle      time.Duration
	scrollSteps int
	scrollPause time.Duration
	waitIdle    bool
	idleSettle  time.Duration // pause used when the idle signal never arrives
	anchors     SelectorChain
	accept      AcceptFunc
}

// detailProfile describes how one source's listing pages are parsed.
type detailProfile struct {
	settle time.Duration
	titles []TitleStrategy
	images []ImageStrategy
}

// adapter is the profile-driven Adapter used by every built-in source.
type adapter struct {
	id      model.SourceID
	search  searchProfile
	detail  detailProfile
	exclude *PathFilter
	opts    Options
}

func newAdapter(id model.SourceID, opts Options, search searchProfile, detail detailProfile) *adapter {
	return &adapter{
		id:      id,
		search:  search,
		detail:  detail,
		exclude: NewPathFilter(opts.Exclude[id]),
		opts:    opts,
	}
}

func (a *adapter) ID() model.SourceID { return a.id }

// SearchURL builds the results-page URL for brand and keyword.
func (a *adapter) SearchURL(brand, keyword string) string {
	q := url.QueryEscape(strings.TrimSpace(brand + " " + keyword))
	return strings.ReplaceAll(a.search.urlTemplate, "{q}", q)
}

func (a *adapter) CollectSearchURLs(ctx context.Context, page navigate.Page, brand, keyword string, limit int) ([]string, error) {
	if a.search.urlTemplate == "" {
		return nil, eris.Errorf("source: %s has no search page", a.id)
	}
	searchURL := a.SearchURL(brand, keyword)

	doc, err := render(ctx, page, a.id, searchURL, renderProfile{
		timeout:      a.opts.SearchTimeout,
		settle:       a.settle(a.search.settle),
		scrollSteps:  a.search.scrollSteps,
		scrollPause:  a.search.scrollPause,
		waitIdle:     a.search.waitIdle,
		idleTimeout:  a.opts.IdleTimeout,
		idleFallback: a.settle(a.search.idleSettle),
	})
	if err != nil {
		return nil, err
	}

	anchors := a.search.anchors.First(doc)
	if anchors.Length() == 0 {
		zap.L().Info("source: no product anchors",
			zap.String("source", string(a.id)),
			zap.String("brand", brand),
			zap.String("keyword", keyword),
		)
		return nil, nil
	}

	seen := make(map[string]bool)
	var out []string
	anchors.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, ok := s.Attr("href")
		if !ok {
			return true
		}
		canonical := urlnorm.Normalize(href, a.search.baseURL)
		if canonical == "" || seen[canonical] {
			return true
		}
		if a.search.accept != nil && !a.search.accept(canonical, s, brand) {
			return true
		}
		if a.exclude.IsExcluded(canonical) {
			return true
		}
		seen[canonical] = true
		out = append(out, canonical)
		return limit <= 0 || len(out) < limit
	})

	zap.L().Debug("source: collected search urls",
		zap.String("source", string(a.id)),
		zap.String("keyword", keyword),
		zap.Int("anchors", anchors.Length()),
		zap.Int("urls", len(out)),
	)
	return out, nil
}

func (a *adapter) ExtractDetail(ctx context.Context, page navigate.Page, listingURL string) (Detail, error) {
	doc, err := render(ctx, page, a.id, listingURL, renderProfile{
		timeout: a.opts.DetailTimeout,
		settle:  a.settle(a.detail.settle),
	})
	if err != nil {
		return Detail{}, err
	}

	d := Detail{
		Title:  FirstTitle(doc, a.detail.titles),
		Images: CollectImages(doc, a.detail.images),
	}
	if d.Title == "" && !model.HasImages(d.Images) {
		return d, model.NewHarvestError(model.KindExtraction, a.id, listingURL, eris.New("no title or images on page"))
	}
	return d, nil
}

func (a *adapter) settle(d time.Duration) time.Duration {
	if a.opts.SkipSettle {
		return 0
	}
	return d
}
