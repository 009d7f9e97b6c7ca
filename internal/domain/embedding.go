package domain

import (
	"context"
	"fmt"
	"sync"
)

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// InstructionEmbedder is a domain decorator that prepends instruction text before embedding.
type InstructionEmbedder struct {
	inner       Embedder
	instruction string
}

// NewInstructionEmbedder creates a decorator that prepends instruction text.
func NewInstructionEmbedder(inner Embedder, instruction string) *InstructionEmbedder {
	return &InstructionEmbedder{inner: inner, instruction: instruction}
}

// Embed prepends instruction and delegates to inner embedder.
func (e *InstructionEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	result, err := e.inner.Embed(ctx, e.instruction+text)
	if err != nil {
		return EmbeddingResult{}, fmt.Errorf("instruction embed: %w", err)
	}
	return result, nil
}

// HealthCheck forwards to the inner embedder when it supports health checks.
func (e *InstructionEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := e.inner.(HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

// LazyEmbedder builds its inner embedder on first use and shares it for the
// rest of the process. A failed build is retried on the next call.
type LazyEmbedder struct {
	build func() (Embedder, error)

	mu    sync.Mutex
	inner Embedder
}

// NewLazyEmbedder wraps a constructor that is invoked at most once successfully.
func NewLazyEmbedder(build func() (Embedder, error)) *LazyEmbedder {
	return &LazyEmbedder{build: build}
}

func (e *LazyEmbedder) get() (Embedder, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inner != nil {
		return e.inner, nil
	}
	inner, err := e.build()
	if err != nil {
		return nil, fmt.Errorf("init embedder: %w", err)
	}
	e.inner = inner
	return inner, nil
}

// Embed delegates to the shared inner embedder, creating it if needed.
func (e *LazyEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	inner, err := e.get()
	if err != nil {
		return EmbeddingResult{}, err
	}
	return inner.Embed(ctx, text)
}

// HealthCheck forwards to the inner embedder when it supports health checks.
func (e *LazyEmbedder) HealthCheck(ctx context.Context) error {
	inner, err := e.get()
	if err != nil {
		return err
	}
	if hc, ok := inner.(HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}
