// Package filter narrows a profile pool to the members satisfying criteria.
package filter

import (
	"strings"
	"time"

	"github.com/kailas-cloud/audience/internal/domain/criteria"
	"github.com/kailas-cloud/audience/internal/domain/profile"
)

// Apply resolves ages at now and keeps the profiles matching every set
// constraint. A profile with unknown age fails any age bound; a profile
// without a city fails a city constraint. Input order is preserved.
func Apply(c criteria.Criteria, pool []profile.Profile, now time.Time) []profile.Member {
	minAge, hasMin := c.MinAge()
	maxAge, hasMax := c.MaxAge()
	gender, hasGender := c.Gender()
	city, hasCity := c.City()
	city = strings.ToLower(city)

	out := make([]profile.Member, 0, len(pool))
	for _, p := range pool {
		m := profile.Resolve(p, now)
		if hasMin || hasMax {
			age, known := m.Age()
			if !known || (hasMin && age < minAge) || (hasMax && age > maxAge) {
				continue
			}
		}
		if hasGender && m.Sex() != gender {
			continue
		}
		if hasCity && (m.City() == "" || !strings.Contains(strings.ToLower(m.City()), city)) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Cities returns the distinct non-empty cities of the pool in
// first-appearance order.
func Cities(pool []profile.Profile) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range pool {
		c := p.City()
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
