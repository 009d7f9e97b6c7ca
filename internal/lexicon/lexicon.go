// Package lexicon holds the vocabulary used to understand audience queries.
// The default vocabulary is embedded; a YAML file with the same layout can
// replace it. A loaded Lexicon is read-only configuration.
package lexicon

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Lexicon is the query vocabulary.
type Lexicon struct {
	Demonyms   []Demonym           `yaml:"demonyms"`
	Synonyms   map[string][]string `yaml:"synonyms"`
	Categories []Category          `yaml:"categories"`
	Gender     GenderTerms         `yaml:"gender"`
	Age        AgeTerms            `yaml:"age"`
	Lemmas     map[string]string   `yaml:"lemmas"`
}

// Demonym maps resident names to a canonical city.
type Demonym struct {
	City  string   `yaml:"city"`
	Forms []string `yaml:"forms"`
}

// Category is a named age range ("student" -> 17..25).
type Category struct {
	Term   string `yaml:"term"`
	Plural string `yaml:"plural"`
	Min    int    `yaml:"min"`
	Max    int    `yaml:"max"`
}

// GenderTerms lists words that imply a sex.
type GenderTerms struct {
	Female []string `yaml:"female"`
	Male   []string `yaml:"male"`
}

// AgeTerms lists the words around numeric age expressions.
type AgeTerms struct {
	Units   []string `yaml:"units"`
	From    []string `yaml:"from"`
	To      []string `yaml:"to"`
	MinBare int      `yaml:"min_bare"`
	MaxBare int      `yaml:"max_bare"`
}

// Default returns the embedded vocabulary.
func Default() (*Lexicon, error) {
	lx, err := Parse(defaultYAML)
	if err != nil {
		return nil, fmt.Errorf("default lexicon: %w", err)
	}
	return lx, nil
}

// Load reads a vocabulary file. An empty path returns the default.
func Load(path string) (*Lexicon, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon %s: %w", path, err)
	}
	lx, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("lexicon %s: %w", path, err)
	}
	return lx, nil
}

// Parse decodes and validates a YAML vocabulary.
func Parse(data []byte) (*Lexicon, error) {
	var lx Lexicon
	if err := yaml.Unmarshal(data, &lx); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon: %w", err)
	}
	lx.normalize()
	if err := lx.Validate(); err != nil {
		return nil, fmt.Errorf("invalid lexicon: %w", err)
	}
	return &lx, nil
}

// normalize lowercases every matched term; canonical city names keep their case.
func (lx *Lexicon) normalize() {
	for i := range lx.Demonyms {
		lx.Demonyms[i].Forms = lowerAll(lx.Demonyms[i].Forms)
	}
	for city, variants := range lx.Synonyms {
		lx.Synonyms[city] = lowerAll(variants)
	}
	for i := range lx.Categories {
		lx.Categories[i].Term = strings.ToLower(lx.Categories[i].Term)
		lx.Categories[i].Plural = strings.ToLower(lx.Categories[i].Plural)
	}
	lx.Gender.Female = lowerAll(lx.Gender.Female)
	lx.Gender.Male = lowerAll(lx.Gender.Male)
	lx.Age.Units = lowerAll(lx.Age.Units)
	lx.Age.From = lowerAll(lx.Age.From)
	lx.Age.To = lowerAll(lx.Age.To)
	if lx.Age.MinBare <= 0 {
		lx.Age.MinBare = 10
	}
	if lx.Age.MaxBare <= 0 {
		lx.Age.MaxBare = 120
	}
	lemmas := make(map[string]string, len(lx.Lemmas))
	for form, lemma := range lx.Lemmas {
		lemmas[strings.ToLower(form)] = strings.ToLower(lemma)
	}
	lx.Lemmas = lemmas
}

// Validate checks the vocabulary for contradictions.
func (lx *Lexicon) Validate() error {
	for i, d := range lx.Demonyms {
		if d.City == "" {
			return fmt.Errorf("demonyms[%d]: city is required", i)
		}
		if len(d.Forms) == 0 {
			return fmt.Errorf("demonyms[%d] (%s): at least one form is required", i, d.City)
		}
	}
	seen := make(map[string]string)
	for city, variants := range lx.Synonyms {
		for _, v := range variants {
			if prev, ok := seen[v]; ok && prev != city {
				return fmt.Errorf("synonym %q maps to both %q and %q", v, prev, city)
			}
			seen[v] = city
		}
	}
	for i, c := range lx.Categories {
		if c.Term == "" {
			return fmt.Errorf("categories[%d]: term is required", i)
		}
		if c.Min < 0 || c.Min > c.Max {
			return fmt.Errorf("categories[%d] (%s): invalid range %d..%d", i, c.Term, c.Min, c.Max)
		}
	}
	if len(lx.Age.Units) == 0 {
		return fmt.Errorf("age.units must not be empty")
	}
	return nil
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
