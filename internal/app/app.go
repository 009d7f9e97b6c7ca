// Package app wires the recommendation pipeline from configuration. Both
// binaries share it so the server and the CLI rank identically.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/audience/internal/config"
	"github.com/kailas-cloud/audience/internal/db"
	dbRedis "github.com/kailas-cloud/audience/internal/db/redis"
	"github.com/kailas-cloud/audience/internal/domain"
	"github.com/kailas-cloud/audience/internal/lexicon"
	"github.com/kailas-cloud/audience/internal/metrics"
	"github.com/kailas-cloud/audience/internal/repository/embcache"
	"github.com/kailas-cloud/audience/internal/repository/embstore"
	"github.com/kailas-cloud/audience/internal/repository/groupmeta"
	"github.com/kailas-cloud/audience/internal/repository/profilesrc"
	openaiTransport "github.com/kailas-cloud/audience/internal/transport/openai"
	audienceuc "github.com/kailas-cloud/audience/internal/usecase/audience"
	embeddinguc "github.com/kailas-cloud/audience/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/audience/internal/usecase/health"
	"github.com/kailas-cloud/audience/internal/usecase/queryparse"
	"github.com/kailas-cloud/audience/internal/usecase/rank"
	"github.com/kailas-cloud/audience/internal/usecase/refine"
	"github.com/kailas-cloud/audience/internal/usecase/resolve"
)

// App is the assembled pipeline plus the resources it owns.
type App struct {
	Audience *audienceuc.Service
	Health   *healthuc.Service
	Embedder *domain.LazyEmbedder

	store db.Store
}

// Close releases the cache connection, if any.
func (a *App) Close() {
	if a.store != nil {
		a.store.Close()
	}
}

// New loads the static data sources and builds every pipeline stage.
// Any unreadable source aborts startup.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	lx, err := lexicon.Load(cfg.Data.LexiconPath)
	if err != nil {
		return nil, fmt.Errorf("load lexicon: %w", err)
	}

	profiles, err := profilesrc.Load(cfg.Data.ProfilesPath, logger)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	groups, err := groupmeta.Load(cfg.Data.GroupsPath, logger)
	if err != nil {
		return nil, fmt.Errorf("load group metadata: %w", err)
	}
	vectors, err := embstore.Load(cfg.Data.EmbeddingsPath, logger)
	if err != nil {
		return nil, fmt.Errorf("load group embeddings: %w", err)
	}

	a := &App{}
	if cfg.Cache.Enabled() {
		store, err := connectCache(ctx, cfg.Cache)
		if err != nil {
			return nil, err
		}
		a.store = store
		logger.Info("Connected to embedding cache", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	index, rowIDs := resolve.FitMetadata(groups, cfg.Resolver.MinDF)
	resolver := resolve.New(vectors, rowIDs, index, cfg.Resolver.SimilarityThreshold)
	parser := queryparse.New(lx, queryparse.NewNormalizer(lx))

	a.Embedder = domain.NewLazyEmbedder(func() (domain.Embedder, error) {
		return buildEmbedder(cfg.Embedding, a.store, cfg.Cache.TTL(), logger), nil
	})

	a.Audience = audienceuc.New(profiles, parser, resolver, rank.New(a.Embedder), logger)
	if cfg.Refiner.Enabled {
		completer := openaiTransport.NewCompleter(&openaiTransport.Config{
			APIKey:  cfg.Refiner.APIKey,
			BaseURL: cfg.Refiner.BaseURL,
			Model:   cfg.Refiner.Model,
			Timeout: time.Duration(cfg.Refiner.TimeoutSec) * time.Second,
			Logger:  logger,
		}, cfg.Refiner.Temperature)
		a.Audience.WithRefiner(refine.NewService(completer, logger))
	}

	var cache healthuc.CachePinger
	if a.store != nil {
		cache = a.store
	}
	a.Health = healthuc.New(len(profiles), cache, a.Embedder)

	logger.Info("Pipeline ready",
		zap.Int("profiles", len(profiles)),
		zap.Int("groups", len(groups)),
		zap.Int("group_vectors", len(vectors)),
		zap.Int("fallback_rows", index.Len()),
		zap.Int("fallback_vocabulary", index.VocabularySize()),
		zap.Float64("similarity_threshold", cfg.Resolver.SimilarityThreshold),
		zap.Bool("refiner", cfg.Refiner.Enabled),
		zap.Bool("cache", a.store != nil),
	)
	return a, nil
}

func connectCache(ctx context.Context, cfg config.CacheConfig) (db.Store, error) {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Addrs,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("create cache store: %w", err)
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("cache not ready: %w", err)
	}
	return store, nil
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented -> Instruction.
// The instruction is outermost so the cache key includes it.
func buildEmbedder(
	cfg config.EmbeddingConfig,
	store db.Store,
	ttl time.Duration,
	logger *zap.Logger,
) domain.Embedder {
	var embedder domain.Embedder = openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		Provider:   cfg.Provider,
		Timeout:    time.Duration(cfg.TimeoutSec) * time.Second,
		Logger:     logger,
	})

	if store != nil {
		embedder = embcache.New(embedder, store, cfg.Model, ttl, metrics.EmbeddingCacheTotal, logger)
	}

	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Provider, cfg.Model, cfg.Dimensions, logger)

	if cfg.QueryInstruction != "" {
		return domain.NewInstructionEmbedder(embedder, cfg.QueryInstruction)
	}
	return embedder
}
