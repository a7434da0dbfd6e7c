package agents

import (
	"context"
	"log/slog"

	"github.com/sentinelstack/sentinel-agents/internal/models"
	"github.com/sentinelstack/sentinel-agents/internal/repo"
)

// Check is one post-execution probe. Its result is recorded under Name
// in the validation report.
type Check struct {
	Name string
	Run  func(ctx context.Context, incident models.Context) (any, error)
}

// Validator runs the configured checks in order. The first check error
// aborts the remainder; partial results are retained. Single pass, no
// retry.
type Validator struct {
	checks []Check
	logger *slog.Logger
}

func NewValidator(checks []Check, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{checks: append([]Check(nil), checks...), logger: logger}
}

// Validate aggregates check outcomes under their names.
func (v *Validator) Validate(ctx context.Context, incident models.Context) models.ValidationReport {
	report := models.ValidationReport{Success: true, Results: map[string]any{}}

	for _, check := range v.checks {
		result, err := check.Run(ctx, incident)
		if err != nil {
			report.Success = false
			report.Error = err.Error()
			v.logValidation(incident, report)
			return report
		}
		report.Results[check.Name] = result
	}

	v.logValidation(incident, report)
	return report
}

func (v *Validator) logValidation(incident models.Context, report models.ValidationReport) {
	level := slog.LevelInfo
	if !report.Success {
		level = slog.LevelError
	}
	v.logger.Log(context.Background(), level, "remediation_validated",
		"incident_id", incident.IncidentID,
		"success", report.Success,
		"results", report.Results,
		"error", report.Error,
	)
}

// resourceFor prefers the explicit resource hint over the incident id.
func resourceFor(incident models.Context) string {
	if v, ok := incident.AdditionalInfo["resource"].(string); ok && v != "" {
		return v
	}
	return incident.IncidentID
}

// WarehouseCheck probes the analytics warehouse for healthy instances
// of the incident's resource.
func WarehouseCheck(client *repo.WarehouseClient) Check {
	return Check{
		Name: "warehouse",
		Run: func(ctx context.Context, incident models.Context) (any, error) {
			count, err := client.CountHealthy(ctx, resourceFor(incident))
			if err != nil {
				return nil, err
			}
			status := "unhealthy"
			if count > 0 {
				status = "healthy"
			}
			return map[string]any{"status": status, "count": count}, nil
		},
	}
}

// ClusterCheck probes the cluster state service for the pods backing
// the incident's resource.
func ClusterCheck(client *repo.ClusterClient) Check {
	return Check{
		Name: "cluster",
		Run: func(ctx context.Context, incident models.Context) (any, error) {
			pods, err := client.ListPods(ctx, resourceFor(incident))
			if err != nil {
				return nil, err
			}
			status := "unhealthy"
			if len(pods) > 0 {
				status = "healthy"
			}
			return map[string]any{"status": status, "pods": pods}, nil
		},
	}
}
