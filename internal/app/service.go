// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	jobqueue "github.com/sefakor20/kingdomvitals-insights/internal/adapters/mq/queue"
	workerpool "github.com/sefakor20/kingdomvitals-insights/internal/adapters/mq/worker"
	"github.com/sefakor20/kingdomvitals-insights/internal/adapters/repository"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/alerts"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/assess"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/dedupe"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/forecast"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/model"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/roster"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/types"
	"github.com/sefakor20/kingdomvitals-insights/pkg/logger"
	"github.com/sefakor20/kingdomvitals-insights/pkg/metrics"
)

// BatchResult summarizes an EnqueueBatch call.
type BatchResult struct {
	RunID      string `json:"run_id"`
	Accepted   int    `json:"accepted"`
	Duplicates int    `json:"duplicates"`
	Rejected   int    `json:"rejected"`
}

// Service wires the scoring engines, stores, and queue into one facade for
// the HTTP API and batch workers.
type Service struct {
	mu sync.RWMutex

	// Core components
	store       *repository.MemoryStore
	deduper     dedupe.Deduper
	jobQueue    jobqueue.Queue
	engine      *assess.Engine
	forecaster  *forecast.Engine
	rosterOpt   *roster.Optimizer
	rosterScore *roster.Scorer
	alertEngine *alerts.Engine
	workerPool  *workerpool.Pool

	// Configuration
	workerCount            int
	queueSize              int
	dedupeSize             int
	alertHistoryLimit      int
	accuracyWindow         time.Duration
	householdPartialMean   float64
	householdPartialSpread float64
	rosterWeights          map[string]float64

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the idempotency cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithAlertHistoryLimit caps the per-branch alert event history.
func WithAlertHistoryLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.alertHistoryLimit = limit
		}
	}
}

// WithAccuracyWindow sets the trailing window for branch accuracy summaries.
func WithAccuracyWindow(window time.Duration) Option {
	return func(s *Service) {
		if window > 0 {
			s.accuracyWindow = window
		}
	}
}

// WithHouseholdPartialBoundary sets the mean/spread boundary for the
// partially-engaged household classification.
func WithHouseholdPartialBoundary(mean, spread float64) Option {
	return func(s *Service) {
		if mean > 0 && spread > 0 {
			s.householdPartialMean = mean
			s.householdPartialSpread = spread
		}
	}
}

// WithRosterWeights sets the roster suitability factor weights. Recognized
// keys: fairness, experience, reliability, preference.
func WithRosterWeights(weights map[string]float64) Option {
	return func(s *Service) {
		if weights != nil {
			s.rosterWeights = weights
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:            runtime.NumCPU() * 2,
		queueSize:              100000,
		dedupeSize:             50000,
		alertHistoryLimit:      500,
		accuracyWindow:         90 * 24 * time.Hour,
		householdPartialMean:   60,
		householdPartialSpread: 25,
		stopCh:                 make(chan struct{}),
		logger:                 nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting insights service...")

	s.store = repository.NewMemoryStore(
		repository.WithAlertHistoryLimit(s.alertHistoryLimit),
	)
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.jobQueue = jobqueue.NewInMemoryQueue(
		jobqueue.WithCapacity(s.queueSize),
		jobqueue.WithBufferSize(s.queueSize),
	)
	s.engine = assess.NewEngine(
		assess.WithHouseholdScorer(assess.NewHouseholdScorer(
			assess.WithPartialBoundary(s.householdPartialMean, s.householdPartialSpread),
		)),
	)
	s.forecaster = forecast.NewEngine()
	s.rosterScore = roster.NewScorer(roster.WithWeights(
		s.rosterWeights["fairness"],
		s.rosterWeights["experience"],
		s.rosterWeights["reliability"],
		s.rosterWeights["preference"],
	))
	s.rosterOpt = roster.NewOptimizer(s.rosterScore)
	s.alertEngine = alerts.NewEngine()

	s.workerPool = workerpool.NewPool(s.workerCount, s.jobQueue, s.engine, s.store)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "insights service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping insights service...")

	if s.workerPool != nil {
		s.workerPool.Stop()
	}

	if q, ok := s.jobQueue.(*jobqueue.InMemoryQueue); ok {
		_ = q.Close()
	}

	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(context.Background(), "insights service stopped")
}

// ComputeAssessment scores one subject synchronously and persists the result.
func (s *Service) ComputeAssessment(ctx context.Context, in assess.Input, asOf time.Time) (assess.Assessment, error) {
	start := time.Now()
	a, err := s.engine.Compute(in, asOf)
	metrics.RecordAssessmentLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordAssessmentError()
		return assess.Assessment{}, err
	}
	if err := s.store.PutAssessment(ctx, a); err != nil {
		return assess.Assessment{}, err
	}
	metrics.RecordAssessmentComputed(string(a.Domain))
	return a, nil
}

// Assessment returns the stored assessment for a subject.
func (s *Service) Assessment(ctx context.Context, branchID string, domain types.Domain, subjectID string) (assess.Assessment, error) {
	return s.store.Assessment(ctx, branchID, domain, subjectID)
}

// AssessmentsByBranch returns a branch's stored assessments for a domain,
// highest score first.
func (s *Service) AssessmentsByBranch(ctx context.Context, branchID string, domain types.Domain) ([]assess.Assessment, error) {
	return s.store.AssessmentsByBranch(ctx, branchID, domain)
}

// EnqueueBatch submits a batch of subjects for asynchronous assessment under
// one run ID. Subjects the run already covered are counted as duplicates and
// skipped; subjects the queue cannot absorb are counted as rejected and left
// unrecorded so a retry can pick them up.
func (s *Service) EnqueueBatch(ctx context.Context, runID, branchID string, inputs []assess.Input, asOf time.Time) BatchResult {
	res := BatchResult{RunID: runID}
	for _, in := range inputs {
		key := dedupe.Key(runID, in.Domain(), in.SubjectID())
		if s.deduper.SeenAndRecord(ctx, key) {
			metrics.RecordDuplicateJob()
			res.Duplicates++
			continue
		}

		ok := s.jobQueue.Enqueue(ctx, jobqueue.Job{
			RunID:    runID,
			BranchID: branchID,
			Input:    in,
			AsOf:     asOf,
		})
		if !ok {
			s.deduper.Unrecord(ctx, key)
			res.Rejected++
			continue
		}
		res.Accepted++
	}

	s.logger.Debug(ctx, "batch enqueued",
		logger.String("runID", runID),
		logger.String("branchID", branchID),
		logger.Int("accepted", res.Accepted),
		logger.Int("duplicates", res.Duplicates),
		logger.Int("rejected", res.Rejected),
	)
	return res
}

// Forecast generates and persists a forecast for a branch metric.
func (s *Service) Forecast(ctx context.Context, branchID string, metric forecast.Metric, history []forecast.Point, periodStart, periodEnd, asOf time.Time) (forecast.Result, error) {
	r, err := s.forecaster.Forecast(branchID, metric, history, periodStart, periodEnd, asOf)
	if err != nil {
		metrics.RecordForecastError()
		return forecast.Result{}, err
	}
	if err := s.store.PutForecast(ctx, r); err != nil {
		return forecast.Result{}, err
	}
	metrics.RecordForecastGenerated()
	return r, nil
}

// RecordActual reconciles a stored forecast against the observed value and
// persists the updated result.
func (s *Service) RecordActual(ctx context.Context, forecastID string, actual float64) (forecast.Result, error) {
	r, err := s.store.Forecast(ctx, forecastID)
	if err != nil {
		return forecast.Result{}, err
	}
	r = forecast.Reconcile(r, actual)
	if err := s.store.PutForecast(ctx, r); err != nil {
		return forecast.Result{}, err
	}
	metrics.RecordForecastReconciled()
	return r, nil
}

// ForecastsByBranch returns a branch's forecasts for a metric, newest first.
func (s *Service) ForecastsByBranch(ctx context.Context, branchID string, metric forecast.Metric) ([]forecast.Result, error) {
	return s.store.ForecastsByBranch(ctx, branchID, metric)
}

// BranchAccuracy returns the mean accuracy of the branch's reconciled
// forecasts inside the configured trailing window, or nil when none exist.
func (s *Service) BranchAccuracy(ctx context.Context, branchID string, asOf time.Time) (*float64, error) {
	results, err := s.store.ReconciledSince(ctx, branchID, asOf, s.accuracyWindow)
	if err != nil {
		return nil, err
	}
	return forecast.BranchAccuracy(results, asOf, s.accuracyWindow), nil
}

// RankCandidates scores a volunteer pool for one open slot.
func (s *Service) RankCandidates(_ context.Context, slot model.Slot, pool []model.PoolMember, asOf time.Time) ([]roster.Suitability, []roster.Exclusion) {
	return s.rosterScore.Rank(slot, pool, asOf)
}

// OptimizeAssignments fills a batch of slots from a volunteer pool and
// persists the resulting plan.
func (s *Service) OptimizeAssignments(ctx context.Context, branchID string, slots []model.Slot, pool []model.PoolMember, asOf time.Time) (roster.Plan, error) {
	plan, err := s.rosterOpt.Optimize(branchID, slots, pool, asOf)
	if err != nil {
		return roster.Plan{}, err
	}
	if err := s.store.PutPlan(ctx, plan); err != nil {
		return roster.Plan{}, err
	}
	metrics.RecordRosterPlanGenerated()
	metrics.RecordRosterSlotsFilled(len(plan.Assignments))
	metrics.RecordRosterSlotsUnfilled(len(plan.Unfilled))
	return plan, nil
}

// Plan returns a stored roster plan by ID.
func (s *Service) Plan(ctx context.Context, id string) (roster.Plan, error) {
	return s.store.Plan(ctx, id)
}

// UpsertAlertRule installs or replaces a branch's alert rule.
func (s *Service) UpsertAlertRule(_ context.Context, rule model.AlertRule) error {
	return s.alertEngine.UpsertRule(rule)
}

// AlertRule returns the effective rule for a branch and alert type.
func (s *Service) AlertRule(_ context.Context, branchID string, t types.AlertType) model.AlertRule {
	return s.alertEngine.Rule(branchID, t)
}

// EvaluateAlerts runs the branch's stored assessments for the given domains
// through the alert engine and persists any triggered events. An empty domain
// list evaluates every domain.
func (s *Service) EvaluateAlerts(ctx context.Context, branchID string, domains []types.Domain, asOf time.Time) ([]alerts.Event, error) {
	if len(domains) == 0 {
		domains = types.Domains()
	}

	var batch []assess.Assessment
	for _, d := range domains {
		as, err := s.store.AssessmentsByBranch(ctx, branchID, d)
		if err != nil {
			return nil, err
		}
		batch = append(batch, as...)
	}

	events := s.alertEngine.Evaluate(branchID, batch, asOf)
	for _, ev := range events {
		if err := s.store.PutAlertEvent(ctx, ev); err != nil {
			return nil, err
		}
		metrics.RecordAlertEvent(string(ev.Severity))
		s.logger.Info(ctx, "alert triggered",
			logger.String("branchID", ev.BranchID),
			logger.String("type", string(ev.Type)),
			logger.String("severity", string(ev.Severity)),
			logger.Int("subjects", len(ev.Subjects)),
		)
	}
	return events, nil
}

// AlertEvents returns a branch's alert history, newest first.
func (s *Service) AlertEvents(ctx context.Context, branchID string, limit int) ([]alerts.Event, error) {
	return s.store.AlertEvents(ctx, branchID, limit)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		queueLen := s.jobQueue.Len(ctx)
		counts := s.store.Counts(ctx)

		stats["queueLength"] = queueLen
		stats["assessments"] = counts.Assessments
		stats["forecasts"] = counts.Forecasts
		stats["plans"] = counts.Plans
		stats["alertEvents"] = counts.AlertEvents

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateStoreCounts(counts.Assessments, counts.Forecasts, counts.Plans, counts.AlertEvents)
		metrics.UpdateWorkerActiveCount(s.workerCount)
	}

	return stats
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}
