package harvest

import (
	"context"
	"sync"
	"time"

	"github.com/sells-group/printer-harvest/internal/model"
	"github.com/sells-group/printer-harvest/internal/navigate"
	"github.com/sells-group/printer-harvest/internal/resilience"
	"github.com/sells-group/printer-harvest/internal/source"
)

type nopPage struct{}

func (nopPage) Load(context.Context, string, time.Duration) error  { return nil }
func (nopPage) ForceLazyRender(context.Context, int, time.Duration) {}
func (nopPage) WaitIdle(context.Context, time.Duration) error       { return nil }
func (nopPage) HTML(context.Context) (string, error)                { return "", nil }
func (nopPage) Close() error                                        { return nil }

type fakeBrowser struct {
	mu    sync.Mutex
	pages int
}

func (b *fakeBrowser) NewPage(context.Context) (navigate.Page, error) {
	b.mu.Lock()
	b.pages++
	b.mu.Unlock()
	return nopPage{}, nil
}

func (b *fakeBrowser) Close() error { return nil }

// fakeAdapter serves scripted search results keyed by "brand keyword" and
// scripted details keyed by URL.
type fakeAdapter struct {
	id model.SourceID

	mu        sync.Mutex
	search    map[string][]string
	searchErr map[string]error
	details   map[string]source.Detail
	// detailErrs are returned in order for a URL before its detail is served.
	detailErrs map[string][]error
	queries    []string
	limits     []int
	extracted  []string
}

func newFakeAdapter(id model.SourceID) *fakeAdapter {
	return &fakeAdapter{
		id:         id,
		search:     make(map[string][]string),
		searchErr:  make(map[string]error),
		details:    make(map[string]source.Detail),
		detailErrs: make(map[string][]error),
	}
}

func (a *fakeAdapter) ID() model.SourceID { return a.id }

func (a *fakeAdapter) CollectSearchURLs(_ context.Context, _ navigate.Page, brand, keyword string, limit int) ([]string, error) {
	q := brand + " " + keyword
	a.mu.Lock()
	defer a.mu.Unlock()
	a.queries = append(a.queries, q)
	a.limits = append(a.limits, limit)
	if err := a.searchErr[q]; err != nil {
		return nil, err
	}
	urls := a.search[q]
	if limit > 0 && len(urls) > limit {
		urls = urls[:limit]
	}
	return urls, nil
}

func (a *fakeAdapter) ExtractDetail(_ context.Context, _ navigate.Page, url string) (source.Detail, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.extracted = append(a.extracted, url)
	if errs := a.detailErrs[url]; len(errs) > 0 {
		a.detailErrs[url] = errs[1:]
		return source.Detail{}, errs[0]
	}
	d, ok := a.details[url]
	if !ok {
		return source.Detail{}, model.NewHarvestError(model.KindExtraction, a.id, url, nil)
	}
	return d, nil
}

func (a *fakeAdapter) queryCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.queries)
}

func images(urls ...string) [model.ImageSlots]string {
	return model.PadImages(urls)
}

func testGuard(attempts, threshold int) *resilience.Guard {
	policy := resilience.Policy{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		Multiplier:     2,
	}
	cfg := resilience.DefaultBreakerConfig()
	cfg.FailureThreshold = threshold
	return resilience.NewGuard(policy, resilience.NewSourceBreakers(cfg))
}

func newTestHarvester(opts Options, fallback source.Adapter, adapters ...*fakeAdapter) *Harvester {
	return newGuardedHarvester(testGuard(1, 5), opts, fallback, adapters...)
}

func newGuardedHarvester(guard *resilience.Guard, opts Options, fallback source.Adapter, adapters ...*fakeAdapter) *Harvester {
	list := make([]source.Adapter, len(adapters))
	for i, a := range adapters {
		list[i] = a
	}
	reg := source.NewRegistry(fallback, list...)
	return New(&fakeBrowser{}, reg, list, guard, nil, opts)
}

type memorySink struct {
	urls    []model.CollectedURL
	records []model.ProductRecord
	calls   []string
}

func (s *memorySink) WriteURLs(urls []model.CollectedURL) error {
	s.calls = append(s.calls, "urls")
	s.urls = urls
	return nil
}

func (s *memorySink) WriteProducts(records []model.ProductRecord) error {
	s.calls = append(s.calls, "products")
	s.records = records
	return nil
}
