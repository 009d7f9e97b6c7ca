package domain

import "errors"

var (
	// ErrNoValidProfiles signals that no profile embedding matched the query embedding dimensionality.
	ErrNoValidProfiles = errors.New("no valid profiles")
	// ErrEmptyQuery signals a blank query.
	ErrEmptyQuery = errors.New("empty query")
	// ErrInvalidTopK signals a non-positive result limit.
	ErrInvalidTopK = errors.New("top_k must be positive")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrRefinerError signals a query refiner failure.
	ErrRefinerError = errors.New("query refiner error")
	// ErrSourceUnavailable signals that a static data source could not be read.
	ErrSourceUnavailable = errors.New("data source unavailable")
)
