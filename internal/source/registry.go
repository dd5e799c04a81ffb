package source

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/printer-harvest/internal/model"
	"github.com/sells-group/printer-harvest/internal/urlnorm"
)

// Registry maps source ids to adapters. It is the only place a source name
// is turned into behavior.
type Registry struct {
	order    []model.SourceID
	adapters map[model.SourceID]Adapter
	fallback Adapter
}

// NewRegistry registers adapters in order. fallback handles detail pages from
// unknown sites and may be nil.
func NewRegistry(fallback Adapter, adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[model.SourceID]Adapter), fallback: fallback}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// DefaultRegistry returns every built-in adapter plus the generic fallback.
func DefaultRegistry(opts Options) *Registry {
	return NewRegistry(NewGeneric(opts),
		NewAmazon(opts),
		NewEbay(opts),
		NewAliExpress(opts),
		NewHarveyNorman(opts),
		NewChallenger(opts),
		NewLazada(opts),
	)
}

// Register adds or replaces an adapter. Replacing keeps the original position.
func (r *Registry) Register(a Adapter) {
	if _, ok := r.adapters[a.ID()]; !ok {
		r.order = append(r.order, a.ID())
	}
	r.adapters[a.ID()] = a
}

// Get returns the adapter registered for id.
func (r *Registry) Get(id model.SourceID) (Adapter, bool) {
	a, ok := r.adapters[id]
	return a, ok
}

// IDs returns the registered ids in registration order.
func (r *Registry) IDs() []model.SourceID {
	out := make([]model.SourceID, len(r.order))
	copy(out, r.order)
	return out
}

// Select returns the adapters for ids, in the order given.
func (r *Registry) Select(ids []model.SourceID) ([]Adapter, error) {
	out := make([]Adapter, 0, len(ids))
	for _, id := range ids {
		a, ok := r.adapters[id]
		if !ok {
			return nil, eris.Errorf("source: unknown source %q", id)
		}
		out = append(out, a)
	}
	return out, nil
}

// Resolve picks the adapter for a stored URL: the recorded id when it is
// registered, then the id inferred from the host, then the fallback.
func (r *Registry) Resolve(id model.SourceID, rawURL string) Adapter {
	if a, ok := r.adapters[id]; ok {
		return a
	}
	if a, ok := r.adapters[DomainOf(rawURL)]; ok {
		return a
	}
	return r.fallback
}

var hostFragments = []struct {
	fragment string
	id       model.SourceID
}{
	{"amazon.", model.SourceAmazon},
	{"lazada.", model.SourceLazada},
	{"ebay.", model.SourceEbay},
	{"aliexpress.", model.SourceAliExpress},
	{"harveynorman.", model.SourceHarveyNorman},
	{"challenger.", model.SourceChallenger},
}

// DomainOf infers a source id from the URL host.
func DomainOf(rawURL string) model.SourceID {
	host := urlnorm.Host(rawURL)
	if host == "" {
		return model.SourceOther
	}
	for _, hf := range hostFragments {
		if strings.Contains(host, hf.fragment) {
			return hf.id
		}
	}
	return model.SourceOther
}
