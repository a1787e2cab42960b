// Package matcher turns a triage disposition and a location into a short list
// of nearby care centers.
package matcher

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/GodofWar9000/tele-triage/internal/domain"
)

// FacilitySource performs the distance-constrained search. Implementations
// fill in Facility.DistanceKm and return candidates ordered nearest first.
// An unresolvable location is reported as a transient domain.ErrUnknownLocation.
type FacilitySource interface {
	FindWithin(ctx context.Context, zip string, radiusKm float64) ([]domain.Facility, error)
}

// Matcher picks up to max facilities for a case by weighted random sampling,
// so nearby, level-appropriate centers are favoured without sending every
// patient in an area to the same one.
type Matcher struct {
	source   FacilitySource
	radiusKm float64
	max      int

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

// New creates a Matcher. A nil rng seeds one from the runtime.
func New(source FacilitySource, radiusKm float64, max int, rng *rand.Rand) *Matcher {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Matcher{source: source, radiusKm: radiusKm, max: max, rng: rng}
}

// RadiusKm is the search radius used by Match.
func (m *Matcher) RadiusKm() float64 { return m.radiusKm }

// FindCandidates returns every facility within radiusKm of zip.
func (m *Matcher) FindCandidates(ctx context.Context, zip string, radiusKm float64) ([]domain.Facility, error) {
	return m.source.FindWithin(ctx, zip, radiusKm)
}

// Select draws up to the configured maximum candidates without replacement,
// each draw proportional to its weight. Candidates with a non-positive weight
// are never chosen. weights must be parallel to candidates.
func (m *Matcher) Select(candidates []domain.Facility, weights []float64) []domain.Facility {
	type entry struct {
		f domain.Facility
		w float64
	}
	pool := make([]entry, 0, len(candidates))
	var total float64
	for i, f := range candidates {
		if i < len(weights) && weights[i] > 0 {
			pool = append(pool, entry{f, weights[i]})
			total += weights[i]
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var picked []domain.Facility
	for len(picked) < m.max && len(pool) > 0 {
		x := m.rng.Float64() * total
		idx := len(pool) - 1
		for i, e := range pool {
			if x < e.w {
				idx = i
				break
			}
			x -= e.w
		}
		picked = append(picked, pool[idx].f)
		total -= pool[idx].w
		pool = append(pool[:idx], pool[idx+1:]...)
	}
	return picked
}

// Match runs the full lookup for one case: search, weigh, select.
func (m *Matcher) Match(ctx context.Context, zip, code string) ([]domain.Facility, error) {
	candidates, err := m.FindCandidates(ctx, zip, m.radiusKm)
	if err != nil {
		return nil, err
	}
	return m.Select(candidates, Weights(candidates, code)), nil
}
