package queryparse

import "slices"

// cityIndex holds the lemma set of each known city name. It is immutable
// once built; a different city list produces a new index.
type cityIndex struct {
	key    []string
	names  []string
	lemmas []map[string]struct{}
}

func (p *Parser) cityIndexFor(cities []string) *cityIndex {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cities != nil && slices.Equal(p.cities.key, cities) {
		return p.cities
	}

	idx := &cityIndex{key: slices.Clone(cities)}
	for _, name := range cities {
		if name == "" {
			continue
		}
		idx.names = append(idx.names, name)
		idx.lemmas = append(idx.lemmas, p.norm.LemmaSet(name))
	}
	p.cities = idx
	return idx
}
