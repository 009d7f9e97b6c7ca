// Package rank scores profile embeddings against a query embedding.
package rank

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/viterin/vek/vek32"

	"github.com/kailas-cloud/audience/internal/domain"
	"github.com/kailas-cloud/audience/internal/domain/ranking"
)

// Ranker embeds queries through a shared embedder and ranks candidates.
type Ranker struct {
	embedder domain.Embedder
}

// New creates a Ranker. The embedder is reused across calls.
func New(embedder domain.Embedder) *Ranker {
	return &Ranker{embedder: embedder}
}

// Rank embeds the query and returns the topK candidates by cosine similarity.
func (r *Ranker) Rank(
	ctx context.Context, query string, candidates []ranking.ProfileEmbedding, topK int,
) ([]ranking.Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrEmptyQuery
	}
	if topK <= 0 {
		return nil, domain.ErrInvalidTopK
	}

	emb, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return Score(emb.Embedding, candidates, topK)
}

// Score ranks candidates whose vectors have the query's dimensionality.
// Results are sorted by descending similarity; equal scores keep input order.
// If no candidate has a matching dimensionality it returns ErrNoValidProfiles.
func Score(query []float32, candidates []ranking.ProfileEmbedding, topK int) ([]ranking.Result, error) {
	if topK <= 0 {
		return nil, domain.ErrInvalidTopK
	}

	qNorm := norm(query)
	results := make([]ranking.Result, 0, len(candidates))
	for _, c := range candidates {
		vec := c.Vector()
		if len(query) == 0 || len(vec) != len(query) {
			continue
		}
		results = append(results, ranking.NewResult(c, cosine(query, vec, qNorm)))
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%d candidates, query dimension %d: %w",
			len(candidates), len(query), domain.ErrNoValidProfiles)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score() > results[j].Score()
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func cosine(a, b []float32, aNorm float64) float64 {
	bNorm := norm(b)
	if aNorm == 0 || bNorm == 0 {
		return 0
	}
	return float64(vek32.Dot(a, b)) / (aNorm * bNorm)
}

func norm(v []float32) float64 {
	if len(v) == 0 {
		return 0
	}
	return math.Sqrt(float64(vek32.Dot(v, v)))
}
