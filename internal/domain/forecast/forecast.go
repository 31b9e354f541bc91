// Package forecast produces point forecasts with confidence intervals for
// attendance and giving, from historical period totals.
//
// Pipeline: trailing historical mean, fixed monthly seasonal multiplier,
// bounded trend adjustment from the recent sub-window, proportional category
// split, then a data-quantity confidence score and symmetric interval.
package forecast

import (
	"time"

	"github.com/google/uuid"

	"github.com/sefakor20/kingdomvitals-insights/internal/domain/scoring"
)

// Metric selects the series being forecast.
type Metric string

// Forecastable metrics.
const (
	MetricAttendance Metric = "attendance"
	MetricGiving     Metric = "giving"
)

// Forecast engine constants.
const (
	// trendSubWindow is how many of the most recent points feed the trend
	// comparison against the points immediately before them.
	trendSubWindow = 4

	// Trend adjustments are bounded so one hot month cannot swing a forecast.
	trendFloor = 0.85
	trendCeil  = 1.15

	attendanceConfidenceFloor = 40.0
	attendanceConfidenceCeil  = 95.0
	givingConfidenceFloor     = 35.0
	givingConfidenceCeil      = 90.0
	confidencePerPoint        = 2.5
)

// seasonal holds the fixed monthly multipliers applied to the trailing mean.
// Summer months run light; December peaks.
var seasonal = map[time.Month]float64{
	time.January:   0.95,
	time.February:  0.97,
	time.March:     1.00,
	time.April:     1.05,
	time.May:       1.00,
	time.June:      0.92,
	time.July:      0.85,
	time.August:    0.88,
	time.September: 1.02,
	time.October:   1.00,
	time.November:  1.03,
	time.December:  1.10,
}

// Point is one historical period observation with its category breakdown
// (members/visitors for attendance, giving categories for donations).
type Point struct {
	PeriodStart time.Time          `json:"period_start"`
	Value       float64            `json:"value"`
	Breakdown   map[string]float64 `json:"breakdown,omitempty"`
}

// Result is one forecast, optionally reconciled against the actual value.
type Result struct {
	ID          string    `json:"id"`
	BranchID    string    `json:"branch_id"`
	Metric      Metric    `json:"metric"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`

	Predicted float64            `json:"predicted"`
	Breakdown map[string]float64 `json:"breakdown,omitempty"`

	ConfidenceLow  float64 `json:"confidence_low"`
	ConfidenceHigh float64 `json:"confidence_high"`
	Confidence     float64 `json:"confidence"`

	Factors map[string]scoring.Factor `json:"factors,omitempty"`

	Actual      *float64  `json:"actual,omitempty"`
	Accuracy    *float64  `json:"accuracy,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Reconciled reports whether an actual value has been recorded.
func (r Result) Reconciled() bool { return r.Actual != nil }

// Engine computes forecasts. It is stateless; persistence of results is the
// caller's concern.
type Engine struct {
	seasonal map[time.Month]float64
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithSeasonalTable overrides the monthly multiplier table. Nil or partial
// maps keep the defaults for unlisted months.
func WithSeasonalTable(table map[time.Month]float64) Option {
	return func(e *Engine) {
		for m, v := range table {
			if v > 0 {
				e.seasonal[m] = v
			}
		}
	}
}

// NewEngine creates a forecast engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{seasonal: make(map[time.Month]float64, len(seasonal))}
	for m, v := range seasonal {
		e.seasonal[m] = v
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Forecast predicts the metric total for the target period from historical
// points. History must hold at least one point; points after asOf are ignored
// so backtesting stays honest.
func (e *Engine) Forecast(branchID string, metric Metric, history []Point, periodStart, periodEnd, asOf time.Time) (Result, error) {
	usable := make([]Point, 0, len(history))
	for _, p := range history {
		if !p.PeriodStart.After(asOf) {
			usable = append(usable, p)
		}
	}
	if len(usable) == 0 {
		return Result{}, ErrInsufficientHistory
	}

	base := meanValue(usable)
	season := e.seasonal[periodStart.Month()]
	trend := trendAdjustment(usable)
	predicted := base * season * trend

	confidence := confidenceFor(metric, len(usable))
	margin := predicted * (100 - confidence) / 100

	factors := map[string]scoring.Factor{
		"historical_mean": scoring.NewFactor("historical_mean", base, scoring.Ratio(float64(len(usable)), 24), 0,
			"Trailing mean over the available history."),
		"seasonal": scoring.NewFactor("seasonal", season, scoring.Ratio(season, 2), 0,
			"Calendar-month seasonal multiplier."),
		"trend": scoring.NewFactor("trend", trend, scoring.Ratio(trend, 2), 0,
			"Bounded adjustment from the recent sub-window slope."),
	}

	return Result{
		ID:             uuid.NewString(),
		BranchID:       branchID,
		Metric:         metric,
		PeriodStart:    periodStart,
		PeriodEnd:      periodEnd,
		Predicted:      scoring.Round2(predicted),
		Breakdown:      splitByMix(predicted, usable),
		ConfidenceLow:  scoring.Round2(maxFloat(0, predicted-margin)),
		ConfidenceHigh: scoring.Round2(predicted + margin),
		Confidence:     confidence,
		Factors:        factors,
		GeneratedAt:    asOf,
	}, nil
}

// Reconcile records the actual value for a forecast and derives accuracy:
// 100 - |predicted-actual|/actual*100, clamped to [0,100]. Pure; the stored
// result is replaced by the caller.
func Reconcile(r Result, actual float64) Result {
	r.Actual = &actual
	var accuracy float64
	if actual != 0 {
		diff := r.Predicted - actual
		if diff < 0 {
			diff = -diff
		}
		accuracy = scoring.Clamp(100 - diff/actual*100)
	}
	accuracy = scoring.Round2(accuracy)
	r.Accuracy = &accuracy
	return r
}

// BranchAccuracy is the mean accuracy across reconciled forecasts whose
// period started within the trailing window. Returns nil, not zero, when no
// reconciled forecasts exist; absence of data is not zero accuracy.
func BranchAccuracy(results []Result, asOf time.Time, window time.Duration) *float64 {
	cutoff := asOf.Add(-window)
	var total float64
	var n int
	for _, r := range results {
		if r.Accuracy == nil || r.PeriodStart.Before(cutoff) {
			continue
		}
		total += *r.Accuracy
		n++
	}
	if n == 0 {
		return nil
	}
	mean := scoring.Round2(total / float64(n))
	return &mean
}

func meanValue(points []Point) float64 {
	var total float64
	for _, p := range points {
		total += p.Value
	}
	return total / float64(len(points))
}

// trendAdjustment compares the recent sub-window mean against the sub-window
// before it, bounded to [trendFloor, trendCeil].
func trendAdjustment(points []Point) float64 {
	if len(points) < 2*trendSubWindow {
		return 1.0
	}
	recent := points[len(points)-trendSubWindow:]
	prior := points[len(points)-2*trendSubWindow : len(points)-trendSubWindow]
	priorMean := meanValue(prior)
	if priorMean == 0 {
		return 1.0
	}
	ratio := meanValue(recent) / priorMean
	if ratio < trendFloor {
		return trendFloor
	}
	if ratio > trendCeil {
		return trendCeil
	}
	return ratio
}

// splitByMix distributes the prediction across categories proportionally to
// the historical category mix.
func splitByMix(predicted float64, points []Point) map[string]float64 {
	totals := make(map[string]float64)
	var grand float64
	for _, p := range points {
		for cat, v := range p.Breakdown {
			totals[cat] += v
			grand += v
		}
	}
	if grand == 0 {
		return nil
	}
	out := make(map[string]float64, len(totals))
	for cat, v := range totals {
		out[cat] = scoring.Round2(predicted * v / grand)
	}
	return out
}

func confidenceFor(metric Metric, points int) float64 {
	floor, ceil := givingConfidenceFloor, givingConfidenceCeil
	if metric == MetricAttendance {
		floor, ceil = attendanceConfidenceFloor, attendanceConfidenceCeil
	}
	c := floor + float64(points)*confidencePerPoint
	if c > ceil {
		return ceil
	}
	return c
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
