package audience

// RecommendRequest describes the wanted audience. Zero TopK uses the server
// default; Option is the 0-based refiner suggestion index.
type RecommendRequest struct {
	Query    string `json:"query"`
	TopK     int    `json:"top_k,omitempty"`
	Location string `json:"location,omitempty"`
	Refine   bool   `json:"refine,omitempty"`
	Option   int    `json:"option,omitempty"`
}

// Criteria are the constraints the server extracted from a query.
// Nil fields are unconstrained.
type Criteria struct {
	MinAge *int    `json:"min_age,omitempty"`
	MaxAge *int    `json:"max_age,omitempty"`
	Gender *string `json:"gender,omitempty"`
	City   *string `json:"city,omitempty"`
}

// GroupStats counts group resolution outcomes.
type GroupStats struct {
	Direct     int `json:"direct"`
	Fallback   int `json:"fallback"`
	Unresolved int `json:"unresolved"`
	Mismatched int `json:"mismatched"`
}

// Stats reports candidate counts per pipeline stage.
type Stats struct {
	Pool     int        `json:"pool"`
	Filtered int        `json:"filtered"`
	Embedded int        `json:"embedded"`
	Dropped  int        `json:"dropped"`
	Groups   GroupStats `json:"groups"`
}

// Item is one ranked profile.
type Item struct {
	UserID     int64   `json:"user_id"`
	City       string  `json:"city,omitempty"`
	Country    string  `json:"country,omitempty"`
	Age        *int    `json:"age,omitempty"`
	Gender     string  `json:"gender"`
	Similarity float64 `json:"similarity"`
}

// Recommendation is a ranked audience.
type Recommendation struct {
	RunID         string   `json:"run_id"`
	Query         string   `json:"query"`
	Refined       bool     `json:"refined"`
	NeedsLocation bool     `json:"needs_location"`
	Criteria      Criteria `json:"criteria"`
	Stats         Stats    `json:"stats"`
	Items         []Item   `json:"items"`

	// EmbeddingTokens is read from the X-Embedding-Tokens header; -1 when absent.
	EmbeddingTokens int `json:"-"`
}

// Health is the server health report.
type Health struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
