package audience

import (
	"fmt"

	"github.com/kailas-cloud/audience/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrEmptyQuery             = domain.ErrEmptyQuery
	ErrInvalidTopK            = domain.ErrInvalidTopK
	ErrNoValidProfiles        = domain.ErrNoValidProfiles
	ErrVectorDimMismatch      = domain.ErrVectorDimMismatch
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrRefinerError           = domain.ErrRefinerError
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("audience: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Unwrap maps the server error onto the matching sentinel, if any.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case "no_valid_profiles":
		return ErrNoValidProfiles
	case "embedding_provider_error":
		return ErrEmbeddingProviderError
	case "vector_dim_mismatch":
		return ErrVectorDimMismatch
	case "refiner_error":
		return ErrRefinerError
	case "validation_failed":
		switch e.Message {
		case ErrEmptyQuery.Error():
			return ErrEmptyQuery
		case ErrInvalidTopK.Error():
			return ErrInvalidTopK
		}
	}
	return nil
}
