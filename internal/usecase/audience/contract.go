package audience

import (
	"context"

	"github.com/kailas-cloud/audience/internal/domain/criteria"
	"github.com/kailas-cloud/audience/internal/domain/group"
	"github.com/kailas-cloud/audience/internal/domain/ranking"
	"github.com/kailas-cloud/audience/internal/usecase/resolve"
)

// QueryParser extracts criteria from a query given the pool's cities.
type QueryParser interface {
	Parse(query string, cities []string) criteria.Criteria
}

// GroupResolver maps a group to its embedding.
type GroupResolver interface {
	Resolve(g group.Group) ([]float32, resolve.Outcome)
}

// Ranker scores profile embeddings against a query.
type Ranker interface {
	Rank(ctx context.Context, query string, candidates []ranking.ProfileEmbedding, topK int) ([]ranking.Result, error)
}

// Refiner rewrites a raw query. index selects among the generated options.
type Refiner interface {
	Refine(ctx context.Context, query, location string, index int) (string, error)
}
