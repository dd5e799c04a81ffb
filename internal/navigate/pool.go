package navigate

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
)

// ErrPoolClosed is returned by Acquire after Close.
var ErrPoolClosed = eris.New("navigate: pool closed")

// Pool bounds the number of concurrent pages for one source. Pages are
// opened lazily and reused.
type Pool struct {
	browser Browser
	slots   chan struct{}

	mu     sync.Mutex
	idle   []Page
	all    []Page
	closed bool
}

// NewPool creates a pool allowing size concurrent pages (minimum 1).
func NewPool(b Browser, size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{browser: b, slots: make(chan struct{}, size)}
}

// Size returns the concurrency bound.
func (p *Pool) Size() int { return cap(p.slots) }

// Acquire blocks until a page is free or ctx is done.
func (p *Pool) Acquire(ctx context.Context) (Page, error) {
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		<-p.slots
		return nil, ErrPoolClosed
	}
	if n := len(p.idle); n > 0 {
		page := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.mu.Unlock()
		return page, nil
	}
	p.mu.Unlock()

	page, err := p.browser.NewPage(ctx)
	if err != nil {
		<-p.slots
		return nil, err
	}

	p.mu.Lock()
	p.all = append(p.all, page)
	p.mu.Unlock()
	return page, nil
}

// Release returns a page obtained from Acquire.
func (p *Pool) Release(page Page) {
	p.mu.Lock()
	p.idle = append(p.idle, page)
	p.mu.Unlock()
	<-p.slots
}

// Close closes every page the pool opened.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true

	var firstErr error
	for _, page := range p.all {
		if err := page.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.all, p.idle = nil, nil
	if firstErr != nil {
		return eris.Wrap(firstErr, "navigate: close pool")
	}
	return nil
}
