package resilience

import (
	"context"
	"errors"

	"github.com/sells-group/printer-harvest/internal/model"
)

// Guard applies a retry policy and the source's breaker to one page operation.
type Guard struct {
	policy   Policy
	breakers *SourceBreakers
}

// NewGuard combines a policy with per-source breakers.
func NewGuard(policy Policy, breakers *SourceBreakers) *Guard {
	return &Guard{policy: policy, breakers: breakers}
}

// Breakers exposes the per-source breakers.
func (g *Guard) Breakers() *SourceBreakers { return g.breakers }

// GuardVal runs fn against source. Each attempt goes through the breaker, so
// an open circuit ends the retries and surfaces as a circuit_open
// HarvestError for url.
func GuardVal[T any](ctx context.Context, g *Guard, source model.SourceID, op, url string, fn func(ctx context.Context) (T, error)) (T, error) {
	p := g.policy
	if p.OnRetry == nil {
		p.OnRetry = RetryLogger(source, op)
	}
	b := g.breakers.Get(source)

	val, err := DoVal(ctx, p, func(ctx context.Context) (T, error) {
		return ExecuteVal(ctx, b, fn)
	})
	if errors.Is(err, ErrCircuitOpen) {
		return val, model.NewHarvestError(model.KindCircuitOpen, source, url, err)
	}
	return val, err
}
