// Package textnorm tokenizes text and reduces tokens to a canonical form.
//
// The canonical form comes from a pluggable Lemmatizer. The default
// implementation is a snowball stemmer (Russian for Cyrillic tokens,
// English for Latin ones) behind an optional dictionary of irregular
// forms. A stemmer is a reduced-precision substitute for a dictionary
// lemmatizer: distinct words may share a stem and some inflections of
// one word do not.
package textnorm

import (
	"regexp"
	"strings"
)

var tokenRegex = regexp.MustCompile(`[\p{L}\p{N}_\-]+`)

// Lemmatizer maps a lowercase token to its canonical form.
// Implementations must be deterministic and return the token itself
// when no better form is known.
type Lemmatizer interface {
	Lemma(token string) string
}

// Tokenize returns the lowercase runs of word characters and hyphens in text.
func Tokenize(text string) []string {
	return tokenRegex.FindAllString(strings.ToLower(text), -1)
}

// Token is a surface token with its lemma.
type Token struct {
	Text  string
	Lemma string
}

// Normalizer pairs the tokenizer with a Lemmatizer.
type Normalizer struct {
	lemmatizer Lemmatizer
}

// NewNormalizer creates a Normalizer.
func NewNormalizer(l Lemmatizer) *Normalizer {
	return &Normalizer{lemmatizer: l}
}

// Normalize tokenizes text and lemmatizes every token.
func (n *Normalizer) Normalize(text string) []Token {
	toks := Tokenize(text)
	out := make([]Token, len(toks))
	for i, t := range toks {
		out[i] = Token{Text: t, Lemma: n.lemmatizer.Lemma(t)}
	}
	return out
}

// Lemma lemmatizes a single token after lowercasing it.
func (n *Normalizer) Lemma(token string) string {
	return n.lemmatizer.Lemma(strings.ToLower(token))
}

// LemmaSet returns the distinct lemmas of text.
func (n *Normalizer) LemmaSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range n.Normalize(text) {
		set[t.Lemma] = struct{}{}
	}
	return set
}
