package health

import (
	"context"

	"github.com/travellive/tourquery/internal/domain"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
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

// Check names.
const (
	CheckConfig    = "config"
	CheckDatabase  = "database"
	CheckEmbedding = "embedding"
)

// Service coordinates health checks.
type Service struct {
	resources Resources
	config    ConfigSource
}

// New creates a Service.
func New(resources Resources, config ConfigSource) *Service {
	return &Service{resources: resources, config: config}
}

// Check runs health checks against all components. Handles are taken from the
// shared cache, so a check against a cold cache builds them.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	cfg, err := s.config.Connection()
	if err != nil {
		checks[CheckConfig] = CheckError
		return Report{Status: Unhealthy, Checks: checks}
	}
	checks[CheckConfig] = CheckOK

	checks[CheckDatabase] = s.checkDatabase(ctx, cfg)
	checks[CheckEmbedding] = s.checkEmbedding(ctx, cfg)

	status := Healthy
	failed := 0
	for _, v := range checks {
		if v == CheckError {
			failed++
		}
	}
	switch {
	case failed == len(checks)-1:
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}

func (s *Service) checkDatabase(ctx context.Context, cfg domain.ConnectionConfig) CheckResult {
	conn, err := s.resources.DatabaseConnection(ctx, cfg)
	if err != nil {
		return CheckError
	}
	if err := conn.Ping(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}

func (s *Service) checkEmbedding(ctx context.Context, cfg domain.ConnectionConfig) CheckResult {
	emb, err := s.resources.EmbeddingClient(ctx, cfg)
	if err != nil {
		return CheckError
	}
	if hc, ok := emb.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return CheckError
		}
	}
	return CheckOK
}
