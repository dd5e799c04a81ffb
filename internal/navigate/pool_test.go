package navigate

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPage struct {
	closed atomic.Bool
}

func (p *stubPage) Load(context.Context, string, time.Duration) error  { return nil }
func (p *stubPage) ForceLazyRender(context.Context, int, time.Duration) {}
func (p *stubPage) WaitIdle(context.Context, time.Duration) error       { return nil }
func (p *stubPage) HTML(context.Context) (string, error)                { return "", nil }
func (p *stubPage) Close() error {
	p.closed.Store(true)
	return nil
}

type stubBrowser struct {
	mu    sync.Mutex
	pages []*stubPage
	err   error
}

func (b *stubBrowser) NewPage(context.Context) (Page, error) {
	if b.err != nil {
		return nil, b.err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	p := &stubPage{}
	b.pages = append(b.pages, p)
	return p, nil
}

func (b *stubBrowser) Close() error { return nil }

func TestPool_ReusesReleasedPages(t *testing.T) {
	b := &stubBrowser{}
	pool := NewPool(b, 2)
	ctx := context.Background()

	p1, err := pool.Acquire(ctx)
	require.NoError(t, err)
	pool.Release(p1)

	p2, err := pool.Acquire(ctx)
	require.NoError(t, err)
	assert.Same(t, p1, p2)
	assert.Len(t, b.pages, 1)
}

func TestPool_BoundsConcurrentPages(t *testing.T) {
	b := &stubBrowser{}
	pool := NewPool(b, 1)
	assert.Equal(t, 1, pool.Size())

	p1, err := pool.Acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = pool.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	pool.Release(p1)
	p2, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	assert.Same(t, p1, p2)
}

func TestPool_NewPageErrorFreesSlot(t *testing.T) {
	b := &stubBrowser{err: errors.New("target crashed")}
	pool := NewPool(b, 1)

	_, err := pool.Acquire(context.Background())
	require.Error(t, err)

	b.err = nil
	_, err = pool.Acquire(context.Background())
	assert.NoError(t, err)
}

func TestPool_CloseClosesPages(t *testing.T) {
	b := &stubBrowser{}
	pool := NewPool(b, 0)

	p, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	pool.Release(p)

	require.NoError(t, pool.Close())
	assert.True(t, b.pages[0].closed.Load())

	_, err = pool.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrPoolClosed)
}
