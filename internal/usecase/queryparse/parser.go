// Package queryparse extracts structured audience criteria (age bounds,
// gender, city) from a free-text query.
package queryparse

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/kailas-cloud/audience/internal/domain/criteria"
	"github.com/kailas-cloud/audience/internal/domain/profile"
	"github.com/kailas-cloud/audience/internal/lexicon"
	"github.com/kailas-cloud/audience/internal/textnorm"
)

const dashes = `[-–—]`

// AgeRange is an inclusive age interval; either side may be open.
type AgeRange struct {
	Min, Max       int
	HasMin, HasMax bool
}

// Parser holds the vocabulary compiled from a Lexicon. The compiled tables
// are read-only after New; only the city lemma index is rebuilt, under a lock.
type Parser struct {
	norm *textnorm.Normalizer

	demonyms   map[string]string // demonym lemma -> canonical city
	synonyms   map[string]string // spelling variant -> canonical city
	categories []lexicon.Category
	female     []string
	male       []string
	minBare    int
	maxBare    int

	rangeUnit *regexp.Regexp // "18-22 years"
	rangeWord *regexp.Regexp // "from 18 to 22 years"
	rangeBare *regexp.Regexp // "18-22"
	lower     *regexp.Regexp // "from 18 years"
	upper     *regexp.Regexp // "up to 30 years"

	mu     sync.Mutex
	cities *cityIndex
}

// New compiles a Parser from a vocabulary and the normalizer used for lemmas.
func New(lx *lexicon.Lexicon, norm *textnorm.Normalizer) *Parser {
	p := &Parser{
		norm:       norm,
		demonyms:   make(map[string]string),
		synonyms:   make(map[string]string),
		categories: append([]lexicon.Category(nil), lx.Categories...),
		female:     append([]string(nil), lx.Gender.Female...),
		male:       append([]string(nil), lx.Gender.Male...),
		minBare:    lx.Age.MinBare,
		maxBare:    lx.Age.MaxBare,
	}
	for _, d := range lx.Demonyms {
		for _, form := range d.Forms {
			lemma := norm.Lemma(form)
			if _, taken := p.demonyms[lemma]; !taken {
				p.demonyms[lemma] = d.City
			}
		}
	}
	for city, variants := range lx.Synonyms {
		for _, v := range variants {
			p.synonyms[v] = city
		}
	}

	units := alternation(lx.Age.Units)
	from := alternation(lx.Age.From)
	to := alternation(lx.Age.To)
	p.rangeUnit = regexp.MustCompile(`(\d+)\s*` + dashes + `\s*(\d+)\s*` + units)
	p.rangeBare = regexp.MustCompile(`(\d+)\s*` + dashes + `\s*(\d+)\b`)
	p.lower = regexp.MustCompile(from + `\s*(\d+)\s*` + units)
	p.upper = regexp.MustCompile(to + `\s*(\d+)\s*` + units)
	if from != "" && to != "" {
		p.rangeWord = regexp.MustCompile(from + `\s*(\d+)\s*` + to + `\s*(\d+)\s*` + units)
	}
	return p
}

// NewNormalizer builds the default normalizer for a vocabulary: irregular
// forms from the lexicon in front of the snowball stemmers.
func NewNormalizer(lx *lexicon.Lexicon) *textnorm.Normalizer {
	return textnorm.NewNormalizer(textnorm.NewDictionaryLemmatizer(lx.Lemmas, textnorm.SnowballLemmatizer{}))
}

// Parse runs all three extractors. cities is the list of city names
// observed in the profile pool, in first-appearance order.
func (p *Parser) Parse(query string, cities []string) criteria.Criteria {
	var opts []criteria.Option
	age := p.Age(query)
	if age.HasMin {
		opts = append(opts, criteria.WithMinAge(age.Min))
	}
	if age.HasMax {
		opts = append(opts, criteria.WithMaxAge(age.Max))
	}
	opts = append(opts, criteria.WithGender(p.Gender(query)))
	if city, ok := p.City(query, cities); ok {
		opts = append(opts, criteria.WithCity(city))
	}
	return criteria.New(opts...)
}

// Age extracts an age interval. Ranges with a unit win over open bounds,
// then a bare "N-M" pair, then category words.
func (p *Parser) Age(query string) AgeRange {
	q := strings.ToLower(query)

	if m := p.rangeUnit.FindStringSubmatch(q); m != nil {
		return AgeRange{Min: atoi(m[1]), Max: atoi(m[2]), HasMin: true, HasMax: true}
	}
	if p.rangeWord != nil {
		if m := p.rangeWord.FindStringSubmatch(q); m != nil {
			return AgeRange{Min: atoi(m[1]), Max: atoi(m[2]), HasMin: true, HasMax: true}
		}
	}
	if m := p.lower.FindStringSubmatch(q); m != nil {
		return AgeRange{Min: atoi(m[1]), HasMin: true}
	}
	if m := p.upper.FindStringSubmatch(q); m != nil {
		return AgeRange{Max: atoi(m[1]), HasMax: true}
	}
	if r, ok := p.bareRange(q); ok {
		return r
	}
	for _, c := range p.categories {
		if strings.Contains(q, c.Term) || (c.Plural != "" && strings.Contains(q, c.Plural)) {
			return AgeRange{Min: c.Min, Max: c.Max, HasMin: true, HasMax: true}
		}
	}
	return AgeRange{}
}

// bareRange reads the first unit-less "N-M" pair that looks like ages: the
// bounds lie in [minBare, maxBare] and no other word follows the pair
// ("3-4 hours" counts hours).
func (p *Parser) bareRange(q string) (AgeRange, bool) {
	for _, loc := range p.rangeBare.FindAllStringSubmatchIndex(q, -1) {
		lo, hi := atoi(q[loc[2]:loc[3]]), atoi(q[loc[4]:loc[5]])
		if lo > hi || lo < p.minBare || hi > p.maxBare {
			continue
		}
		rest := []rune(strings.TrimLeft(q[loc[1]:], " \t"))
		if len(rest) > 0 && unicode.IsLetter(rest[0]) {
			continue
		}
		return AgeRange{Min: lo, Max: hi, HasMin: true, HasMax: true}, true
	}
	return AgeRange{}, false
}

// Gender returns the sex implied by the query, female terms first.
func (p *Parser) Gender(query string) profile.Sex {
	q := strings.ToLower(query)
	for _, term := range p.female {
		if strings.Contains(q, term) {
			return profile.SexFemale
		}
	}
	for _, term := range p.male {
		if strings.Contains(q, term) {
			return profile.SexMale
		}
	}
	return profile.SexUnknown
}

// City resolves the city constraint: demonym lemma, then spelling variant,
// then lemma overlap with a known city name.
func (p *Parser) City(query string, cities []string) (string, bool) {
	tokens := p.norm.Normalize(query)
	for _, t := range tokens {
		if city, ok := p.demonyms[t.Lemma]; ok {
			return city, true
		}
	}
	for _, t := range tokens {
		if city, ok := p.synonyms[t.Text]; ok {
			return city, true
		}
	}
	if len(tokens) == 0 || len(cities) == 0 {
		return "", false
	}

	lemmas := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		lemmas[t.Lemma] = struct{}{}
	}
	idx := p.cityIndexFor(cities)
	for i, name := range idx.names {
		for lemma := range idx.lemmas[i] {
			if _, ok := lemmas[lemma]; ok {
				return name, true
			}
		}
	}
	return "", false
}

func alternation(terms []string) string {
	if len(terms) == 0 {
		return ""
	}
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = strings.Join(strings.Fields(regexp.QuoteMeta(t)), `\s+`)
	}
	return `(?:` + strings.Join(parts, "|") + `)`
}

// atoi is only called on \d+ captures.
func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
