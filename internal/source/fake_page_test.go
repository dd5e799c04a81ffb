package source

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sells-group/printer-harvest/internal/model"
)

// fakePage serves canned HTML per URL.
type fakePage struct {
	mu       sync.Mutex
	pages    map[string]string
	loadErr  map[string]error
	idleErr  error
	current  string
	loads    []string
	scrolls  int
	idleWait int
}

func newFakePage(pages map[string]string) *fakePage {
	return &fakePage{pages: pages, loadErr: map[string]error{}}
}

func (p *fakePage) Load(_ context.Context, url string, _ time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loads = append(p.loads, url)
	if err := p.loadErr[url]; err != nil {
		return err
	}
	if _, ok := p.pages[url]; !ok {
		return model.NewHarvestError(model.KindLoadError, "", url, errors.New("no such page"))
	}
	p.current = url
	return nil
}

func (p *fakePage) ForceLazyRender(_ context.Context, steps int, _ time.Duration) {
	p.mu.Lock()
	p.scrolls += steps
	p.mu.Unlock()
}

func (p *fakePage) WaitIdle(context.Context, time.Duration) error {
	p.mu.Lock()
	p.idleWait++
	p.mu.Unlock()
	return p.idleErr
}

func (p *fakePage) HTML(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pages[p.current], nil
}

func (p *fakePage) Close() error { return nil }

func testOptions() Options {
	opts := DefaultOptions()
	opts.SkipSettle = true
	return opts
}
