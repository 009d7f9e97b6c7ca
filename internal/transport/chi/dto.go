package chi

// ErrorCode is a machine-readable error classifier in API responses.
type ErrorCode string

// API error codes.
const (
	CodeBadRequest        ErrorCode = "bad_request"
	CodeValidationFailed  ErrorCode = "validation_failed"
	CodeUnauthorized      ErrorCode = "unauthorized"
	CodeNoValidProfiles   ErrorCode = "no_valid_profiles"
	CodeEmbeddingProvider ErrorCode = "embedding_provider_error"
	CodeVectorDimMismatch ErrorCode = "vector_dim_mismatch"
	CodeRefiner           ErrorCode = "refiner_error"
	CodeInternal          ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// RecommendationRequest is the body of POST /v1/recommendations.
type RecommendationRequest struct {
	Query    string `json:"query"`
	TopK     *int   `json:"top_k,omitempty"`
	Location string `json:"location,omitempty"`
	Refine   bool   `json:"refine,omitempty"`
	Option   int    `json:"option,omitempty"`
}

// CriteriaRequest is the body of POST /v1/criteria.
type CriteriaRequest struct {
	Query string `json:"query"`
}

// Criteria mirrors the extracted criteria; absent fields are unconstrained.
type Criteria struct {
	MinAge *int    `json:"min_age,omitempty"`
	MaxAge *int    `json:"max_age,omitempty"`
	Gender *string `json:"gender,omitempty"`
	City   *string `json:"city,omitempty"`
}

// GroupStats counts group resolution outcomes over the filtered pool.
type GroupStats struct {
	Direct     int `json:"direct"`
	Fallback   int `json:"fallback"`
	Unresolved int `json:"unresolved"`
	Mismatched int `json:"mismatched"`
}

// PipelineStats reports candidate counts per stage.
type PipelineStats struct {
	Pool     int        `json:"pool"`
	Filtered int        `json:"filtered"`
	Embedded int        `json:"embedded"`
	Dropped  int        `json:"dropped"`
	Groups   GroupStats `json:"groups"`
}

// RecommendationItem is one ranked profile.
type RecommendationItem struct {
	UserID     int64   `json:"user_id"`
	City       string  `json:"city,omitempty"`
	Country    string  `json:"country,omitempty"`
	Age        *int    `json:"age,omitempty"`
	Gender     string  `json:"gender"`
	Similarity float64 `json:"similarity"`
}

// RecommendationResponse is the body of a successful recommendation.
type RecommendationResponse struct {
	RunID         string               `json:"run_id"`
	Query         string               `json:"query"`
	Refined       bool                 `json:"refined"`
	NeedsLocation bool                 `json:"needs_location"`
	Criteria      Criteria             `json:"criteria"`
	Stats         PipelineStats        `json:"stats"`
	Items         []RecommendationItem `json:"items"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
