// Package resolve maps groups to dense embedding vectors, falling back to
// the lexically nearest known group when a group has no embedding of its own.
package resolve

import (
	"github.com/kailas-cloud/audience/internal/domain/group"
	"github.com/kailas-cloud/audience/internal/domain/tfidf"
)

// DefaultThreshold is the minimum fallback similarity accepted.
const DefaultThreshold = 0.45

// Outcome classifies how a group was resolved.
type Outcome int

// Resolution outcomes.
const (
	Unresolved Outcome = iota
	Direct
	Fallback
)

func (o Outcome) String() string {
	switch o {
	case Direct:
		return "direct"
	case Fallback:
		return "fallback"
	default:
		return "unresolved"
	}
}

// Matcher finds the metadata row lexically closest to text.
// ok is false when there is nothing to match against.
type Matcher interface {
	Nearest(text string) (row int, score float64, ok bool)
}

// Resolver is read-only after construction and safe for concurrent use.
type Resolver struct {
	embeddings map[int64][]float32
	rowIDs     []int64
	matcher    Matcher
	threshold  float64
}

// New creates a Resolver. rowIDs[i] is the group id of matcher row i.
func New(embeddings map[int64][]float32, rowIDs []int64, matcher Matcher, threshold float64) *Resolver {
	return &Resolver{
		embeddings: embeddings,
		rowIDs:     rowIDs,
		matcher:    matcher,
		threshold:  threshold,
	}
}

// FitMetadata fits a TF-IDF index over the metadata table's lexical texts.
// ids[i] is the group id of index row i.
func FitMetadata(metadata []group.Group, minDF int) (*tfidf.Index, []int64) {
	docs := make([]string, len(metadata))
	ids := make([]int64, len(metadata))
	for i, g := range metadata {
		docs[i] = g.Text()
		ids[i] = g.ID()
	}
	return tfidf.Fit(docs, minDF), ids
}

// NewFromMetadata returns a Resolver backed by a TF-IDF index over metadata.
func NewFromMetadata(embeddings map[int64][]float32, metadata []group.Group, minDF int, threshold float64) *Resolver {
	index, ids := FitMetadata(metadata, minDF)
	return New(embeddings, ids, index, threshold)
}

// Resolve returns the group's vector. A fallback match is accepted when its
// similarity is at least the threshold and the matched group has a vector.
func (r *Resolver) Resolve(g group.Group) ([]float32, Outcome) {
	if vec, ok := r.embeddings[g.ID()]; ok {
		return vec, Direct
	}
	if r.matcher == nil {
		return nil, Unresolved
	}

	row, score, ok := r.matcher.Nearest(g.Text())
	if !ok || score <= 0 || score < r.threshold || row < 0 || row >= len(r.rowIDs) {
		return nil, Unresolved
	}
	vec, ok := r.embeddings[r.rowIDs[row]]
	if !ok {
		return nil, Unresolved
	}
	return vec, Fallback
}
