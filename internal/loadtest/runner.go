package loadtest

import (
	"context"
	"fmt"
	"time"

	"github.com/sefakor20/kingdomvitals-insights/pkg/logger"
)

// Run executes the complete batch load test.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}
	asOf := time.Now().UTC()

	logger.Get().Info(ctx, "starting insights load test",
		logger.String("baseURL", config.BaseURL),
		logger.String("branchID", config.BranchID),
		logger.Int("members", config.NumMembers),
		logger.Int("batchSize", config.BatchSize),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate synthetic churn subjects
	subjects, profiles := generateSubjects(ctx, config, stats, asOf)

	// Step 3: Submit batches concurrently
	if err := submitBatches(ctx, config, subjects, asOf, stats); err != nil {
		return fmt.Errorf("batch submission failed: %w", err)
	}

	// Step 4: Wait for the queue to drain
	logger.Get().Info(ctx, "waiting for assessments to be processed")
	if err := waitForDrain(ctx, config, stats.SubjectsAccepted); err != nil {
		return fmt.Errorf("drain wait failed: %w", err)
	}

	// Step 5: Fetch the stored assessments
	assessments, err := fetchAssessments(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("assessment retrieval failed: %w", err)
	}

	// Step 6: Evaluate alert rules against the fresh scores
	if err := evaluateAlerts(ctx, config, asOf, stats); err != nil {
		logger.Get().Warn(ctx, "alert evaluation failed", logger.Error(err))
	}

	// Step 7: Verify results
	if err := verifyResults(ctx, config, assessments, profiles); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "load test completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Accept any 200 response as healthy (the endpoint serves Prometheus metrics)
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// displayFinalStats prints the final test statistics.
func displayFinalStats(stats *Stats) {
	var successRate, subjectsPerSecond float64

	total := stats.SubjectsAccepted + stats.SubjectsDuplicate + stats.SubjectsRejected
	if total > 0 {
		successRate = float64(stats.SubjectsAccepted) / float64(total) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		subjectsPerSecond = float64(stats.SubjectsAccepted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("membersGenerated", stats.MembersGenerated),
		logger.Int("batchesSubmitted", stats.BatchesSubmitted),
		logger.Int("subjectsAccepted", stats.SubjectsAccepted),
		logger.Int("subjectsDuplicate", stats.SubjectsDuplicate),
		logger.Int("subjectsRejected", stats.SubjectsRejected),
		logger.Int("assessmentsRetrieved", stats.AssessmentsRetrieved),
		logger.Int("alertEvents", stats.AlertEvents),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("subjectsPerSecond", subjectsPerSecond))
}
