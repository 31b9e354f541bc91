// Package repository defines the insight store interface and errors.
package repository

import (
	"context"
	"time"

	"github.com/sefakor20/kingdomvitals-insights/internal/domain/alerts"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/assess"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/forecast"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/roster"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/types"
)

// Counts summarizes store occupancy for metrics and health reporting.
type Counts struct {
	Assessments int
	Forecasts   int
	Plans       int
	AlertEvents int
}

// Store provides read/write access to computed insight state. Writes replace:
// each (branch, domain, subject) keeps only its latest assessment.
type Store interface {
	// PutAssessment stores or replaces a subject's latest assessment.
	PutAssessment(ctx context.Context, a assess.Assessment) error
	// Assessment returns the latest assessment for a subject in a domain.
	// Returns ErrNotFound if the subject was never assessed.
	Assessment(ctx context.Context, branchID string, domain types.Domain, subjectID string) (assess.Assessment, error)
	// AssessmentsByBranch returns a branch's latest assessments for a domain,
	// ordered by score descending.
	AssessmentsByBranch(ctx context.Context, branchID string, domain types.Domain) ([]assess.Assessment, error)

	// PutForecast stores or replaces a forecast by ID.
	PutForecast(ctx context.Context, f forecast.Result) error
	// Forecast returns a forecast by ID. Returns ErrNotFound if unknown.
	Forecast(ctx context.Context, id string) (forecast.Result, error)
	// ForecastsByBranch returns a branch's forecasts for a metric, newest
	// generation first.
	ForecastsByBranch(ctx context.Context, branchID string, metric forecast.Metric) ([]forecast.Result, error)
	// ReconciledSince returns the branch's reconciled forecasts generated
	// within the window ending at asOf, any metric.
	ReconciledSince(ctx context.Context, branchID string, asOf time.Time, window time.Duration) ([]forecast.Result, error)

	// PutPlan stores a roster plan by ID.
	PutPlan(ctx context.Context, p roster.Plan) error
	// Plan returns a roster plan by ID. Returns ErrNotFound if unknown.
	Plan(ctx context.Context, id string) (roster.Plan, error)

	// PutAlertEvent appends an alert event to the branch's history.
	PutAlertEvent(ctx context.Context, ev alerts.Event) error
	// AlertEvents returns a branch's alert events, newest first, capped at
	// limit when limit > 0.
	AlertEvents(ctx context.Context, branchID string, limit int) ([]alerts.Event, error)

	// Counts reports current store occupancy.
	Counts(ctx context.Context) Counts
}
