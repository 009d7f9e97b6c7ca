// Package aggregate builds one embedding per profile from its groups.
package aggregate

import (
	"sync"

	"github.com/viterin/vek/vek32"

	"github.com/kailas-cloud/audience/internal/domain/group"
	"github.com/kailas-cloud/audience/internal/domain/profile"
	"github.com/kailas-cloud/audience/internal/domain/ranking"
	"github.com/kailas-cloud/audience/internal/usecase/resolve"
)

// GroupResolver maps a group to a vector.
type GroupResolver interface {
	Resolve(g group.Group) ([]float32, resolve.Outcome)
}

// Stats counts group outcomes and dropped profiles for one aggregation.
type Stats struct {
	Direct     int
	Fallback   int
	Unresolved int
	// Mismatched counts resolved vectors skipped because their length
	// differed from the profile's first resolved vector. They are also
	// counted as Direct or Fallback.
	Mismatched int
	// Dropped counts profiles left with no resolved vector.
	Dropped int
}

// Groups returns the number of groups seen.
func (s Stats) Groups() int { return s.Direct + s.Fallback + s.Unresolved }

// buildProfile resolves one profile's groups and returns the mean of the
// resolved vectors, or nil (with Dropped set) when none resolved. Vectors
// whose length differs from the first resolved one are skipped.
func buildProfile(groups []group.Group, r GroupResolver) ([]float32, Stats) {
	var stats Stats
	var vectors [][]float32
	for _, g := range groups {
		vec, outcome := r.Resolve(g)
		switch outcome {
		case resolve.Direct:
			stats.Direct++
		case resolve.Fallback:
			stats.Fallback++
		default:
			stats.Unresolved++
			continue
		}
		if len(vectors) > 0 && len(vec) != len(vectors[0]) {
			stats.Mismatched++
			continue
		}
		vectors = append(vectors, vec)
	}
	if len(vectors) == 0 {
		stats.Dropped = 1
		return nil, stats
	}
	return mean(vectors), stats
}

func (s *Stats) add(o Stats) {
	s.Direct += o.Direct
	s.Fallback += o.Fallback
	s.Unresolved += o.Unresolved
	s.Mismatched += o.Mismatched
	s.Dropped += o.Dropped
}

type profileVector struct {
	vector []float32
	stats  Stats
}

// Cache aggregates each profile at most once for the life of the process.
// A profile's vector depends only on its groups and the resolver, so it is
// keyed by profile id; ids must be unique within the pool. Safe for
// concurrent use.
type Cache struct {
	resolver  GroupResolver
	onResolve func(Stats)

	mu      sync.Mutex
	entries map[int64]func() profileVector
}

// NewCache creates a Cache over r. onResolve, if set, is called once per
// profile with the outcomes of its first and only resolution.
func NewCache(r GroupResolver, onResolve func(Stats)) *Cache {
	return &Cache{resolver: r, onResolve: onResolve, entries: make(map[int64]func() profileVector)}
}

// Aggregate returns one embedding per member with at least one resolved
// group, in input order, reusing vectors built by earlier calls. The
// returned Stats describe the members of this call, cached or not.
func (c *Cache) Aggregate(members []profile.Member) ([]ranking.ProfileEmbedding, Stats) {
	var stats Stats
	out := make([]ranking.ProfileEmbedding, 0, len(members))
	for _, m := range members {
		pv := c.entry(m.Profile)()
		stats.add(pv.stats)
		if pv.vector != nil {
			out = append(out, ranking.NewProfileEmbedding(m, pv.vector))
		}
	}
	return out, stats
}

func (c *Cache) entry(p profile.Profile) func() profileVector {
	c.mu.Lock()
	defer c.mu.Unlock()
	if f, ok := c.entries[p.ID()]; ok {
		return f
	}
	groups := p.Groups()
	f := sync.OnceValue(func() profileVector {
		vec, st := buildProfile(groups, c.resolver)
		if c.onResolve != nil {
			c.onResolve(st)
		}
		return profileVector{vector: vec, stats: st}
	})
	c.entries[p.ID()] = f
	return f
}

// mean returns the element-wise mean of equal-length vectors, or nil for
// no vectors. Inputs are not modified.
func mean(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return nil
	}
	sums := make([]float32, len(vectors[0]))
	for _, vec := range vectors {
		vek32.Add_Inplace(sums, vec)
	}
	vek32.MulNumber_Inplace(sums, 1/float32(len(vectors)))
	return sums
}
