package textnorm

import (
	"unicode"

	"github.com/blevesearch/snowballstem"
	"github.com/blevesearch/snowballstem/english"
	"github.com/blevesearch/snowballstem/russian"
)

// SnowballLemmatizer stems Cyrillic tokens with the Russian snowball
// algorithm and Latin tokens with the English one. Other tokens
// (numbers, other scripts) are returned unchanged.
type SnowballLemmatizer struct{}

// Lemma implements Lemmatizer.
func (SnowballLemmatizer) Lemma(token string) string {
	var stem func(*snowballstem.Env) bool
	switch scriptOf(token) {
	case unicode.Cyrillic:
		stem = russian.Stem
	case unicode.Latin:
		stem = english.Stem
	default:
		return token
	}
	env := snowballstem.NewEnv(token)
	stem(env)
	return env.Current()
}

// scriptOf returns the first Cyrillic or Latin range found in token, or nil.
func scriptOf(token string) *unicode.RangeTable {
	for _, r := range token {
		switch {
		case unicode.Is(unicode.Cyrillic, r):
			return unicode.Cyrillic
		case unicode.Is(unicode.Latin, r):
			return unicode.Latin
		}
	}
	return nil
}

// DictionaryLemmatizer looks tokens up in a fixed form table and
// delegates misses to a fallback.
type DictionaryLemmatizer struct {
	forms    map[string]string
	fallback Lemmatizer
}

// NewDictionaryLemmatizer copies forms (surface form -> lemma) and wraps fallback.
func NewDictionaryLemmatizer(forms map[string]string, fallback Lemmatizer) *DictionaryLemmatizer {
	cp := make(map[string]string, len(forms))
	for k, v := range forms {
		cp[k] = v
	}
	return &DictionaryLemmatizer{forms: cp, fallback: fallback}
}

// Lemma implements Lemmatizer. Dictionary lemmas are passed through the
// fallback too, so a dictionary entry lands on the same form as the
// regular inflections of its lemma.
func (d *DictionaryLemmatizer) Lemma(token string) string {
	if lemma, ok := d.forms[token]; ok {
		token = lemma
	}
	if d.fallback == nil {
		return token
	}
	return d.fallback.Lemma(token)
}
