package navigate

import (
	"context"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/rotisserie/eris"
)

// StaticOptions configures the HTTP-only browser.
type StaticOptions struct {
	UserAgent string
}

// StaticBrowser fetches documents over plain HTTP with colly. Pages see the
// server-rendered markup only, so lazy rendering and idle waits are no-ops.
type StaticBrowser struct {
	opts StaticOptions
}

// NewStaticBrowser creates a StaticBrowser.
func NewStaticBrowser(opts StaticOptions) *StaticBrowser {
	return &StaticBrowser{opts: opts}
}

func (b *StaticBrowser) NewPage(_ context.Context) (Page, error) {
	return &staticPage{opts: b.opts}, nil
}

func (b *StaticBrowser) Close() error { return nil }

type staticPage struct {
	opts StaticOptions

	mu   sync.Mutex
	body string
}

func (s *staticPage) Load(ctx context.Context, url string, timeout time.Duration) error {
	return loadWithFallback(ctx, url, timeout, s.fetch)
}

func (s *staticPage) fetch(ctx context.Context, url string, _ WaitCondition) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	opts := []colly.CollectorOption{colly.AllowURLRevisit()}
	if s.opts.UserAgent != "" {
		opts = append(opts, colly.UserAgent(s.opts.UserAgent))
	}
	c := colly.NewCollector(opts...)
	if deadline, ok := ctx.Deadline(); ok {
		c.SetRequestTimeout(time.Until(deadline))
	}

	var (
		body    []byte
		respErr error
	)
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode > 0 {
			respErr = &StatusError{Code: r.StatusCode, Err: err}
			return
		}
		respErr = eris.Wrap(err, "static: request")
	})

	if err := c.Visit(url); err != nil {
		if respErr != nil {
			return respErr
		}
		return eris.Wrap(err, "static: visit")
	}
	if respErr != nil {
		return respErr
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.mu.Lock()
	s.body = string(body)
	s.mu.Unlock()
	return nil
}

func (s *staticPage) ForceLazyRender(context.Context, int, time.Duration) {}

func (s *staticPage) WaitIdle(context.Context, time.Duration) error { return nil }

func (s *staticPage) HTML(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.body, nil
}

func (s *staticPage) Close() error { return nil }
