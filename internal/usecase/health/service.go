package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy means the service cannot answer any request.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	profiles  int
	cache     CachePinger
	embedding EmbeddingChecker
}

// New creates a Service. profiles is the loaded pool size; cache and
// embedding may be nil, in which case their checks are omitted.
func New(profiles int, cache CachePinger, embedding EmbeddingChecker) *Service {
	return &Service{profiles: profiles, cache: cache, embedding: embedding}
}

// Check runs health checks against all components.
// An empty profile pool is fatal since every recommendation would fail.
func (s *Service) Check(ctx context.Context) Report {
	checks := map[string]CheckResult{"profiles": CheckOK}
	if s.profiles == 0 {
		checks["profiles"] = CheckError
	}

	if s.cache != nil {
		checks["cache"] = result(s.cache.Ping(ctx))
	}
	if s.embedding != nil {
		checks["embedding"] = result(s.embedding.HealthCheck(ctx))
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if checks["profiles"] == CheckError {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
