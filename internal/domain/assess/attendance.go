package assess

import (
	"math"
	"time"

	"github.com/sefakor20/kingdomvitals-insights/internal/domain/model"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/scoring"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/types"
)

// Attendance anomaly constants. The score measures deviation from the
// member's own pattern, so a once-a-month attender missing one week is not
// anomalous while a weekly attender missing four in a row is.
const (
	attendanceBaselineWeeks = 26
	attendanceRecentWeeks   = 4
	irregularityWeeks       = 12

	attendanceDeviationWeight    = 0.5
	attendanceStreakWeight       = 0.3
	attendanceIrregularityWeight = 0.2

	// streakSaturationWeeks is the consecutive-absence streak at which the
	// streak factor saturates.
	streakSaturationWeeks = 8.0
)

var attendanceRecommendations = map[string]string{
	"rate_deviation": "Attendance has dropped sharply from this member's usual pattern; follow up.",
	"absence_streak": "Several consecutive absences; a personal check-in is overdue.",
	"irregularity":   "Attendance has become erratic; consider a gentle re-engagement touch.",
}

// AttendanceInput is a member's attendance history ready for anomaly scoring.
// Attended holds the service dates the member was present, ascending.
type AttendanceInput struct {
	Member   model.MemberSnapshot
	Attended []time.Time
}

func (in AttendanceInput) SubjectID() string    { return in.Member.MemberID }
func (in AttendanceInput) SubjectType() string  { return "member" }
func (in AttendanceInput) Branch() string       { return in.Member.BranchID }
func (in AttendanceInput) Domain() types.Domain { return types.DomainAttendanceAnomaly }

// AttendanceResult is the typed outcome of an anomaly scoring run.
type AttendanceResult struct {
	Assessment Assessment
	Level      types.RiskLevel
}

// AttendanceScorer detects departures from a member's own attendance pattern.
type AttendanceScorer struct {
	deviationWeight    float64
	streakWeight       float64
	irregularityWeight float64
}

// NewAttendanceScorer creates an attendance anomaly scorer.
func NewAttendanceScorer() *AttendanceScorer {
	return &AttendanceScorer{
		deviationWeight:    attendanceDeviationWeight,
		streakWeight:       attendanceStreakWeight,
		irregularityWeight: attendanceIrregularityWeight,
	}
}

// Score computes the anomaly score for one member as of the given time.
func (s *AttendanceScorer) Score(in AttendanceInput, asOf time.Time) AttendanceResult {
	var factors []scoring.Factor

	baseline := weeklyRate(in.Attended, asOf, attendanceBaselineWeeks)
	recent := weeklyRate(in.Attended, asOf, attendanceRecentWeeks)

	// Deviation of the recent rate below the member's baseline. No baseline
	// means no pattern to deviate from; the factor is omitted.
	if baseline > 0 {
		drop := math.Max(0, baseline-recent) / baseline
		factors = append(factors, scoring.NewFactor("rate_deviation", recent,
			scoring.Ratio(drop, 1), s.deviationWeight,
			"Recent attendance rate versus this member's trailing baseline."))

		streak := absenceStreakWeeks(in.Attended, asOf)
		factors = append(factors, scoring.NewFactor("absence_streak", streak,
			scoring.Ratio(streak, streakSaturationWeeks), s.streakWeight,
			"Consecutive weeks absent."))

		factors = append(factors, scoring.NewFactor("irregularity",
			weeklyVariability(in.Attended, asOf),
			scoring.Ratio(weeklyVariability(in.Attended, asOf), 0.5), s.irregularityWeight,
			"Week-to-week variability of attendance."))
	}

	score := scoring.Aggregate(factors)
	level := types.RiskLevelFor(score)
	recs := scoring.Recommend(scoring.Above(factors, 60), attendanceRecommendations, maxRecommendations)
	a := newAssessment(in, score, string(level), historyConfidence(len(in.Attended)), factors, recs, asOf)

	return AttendanceResult{Assessment: a, Level: level}
}

// weeklyRate is the share of the trailing weeks window with at least one
// attendance.
func weeklyRate(attended []time.Time, asOf time.Time, weeks int) float64 {
	if weeks <= 0 {
		return 0
	}
	seen := make(map[int]bool)
	start := asOf.AddDate(0, 0, -7*weeks)
	for _, d := range attended {
		if d.After(start) && !d.After(asOf) {
			seen[weekIndex(d, asOf)] = true
		}
	}
	return float64(len(seen)) / float64(weeks)
}

// weekIndex buckets a date by whole weeks back from asOf.
func weekIndex(d, asOf time.Time) int {
	return int(asOf.Sub(d).Hours() / (24 * 7))
}

// absenceStreakWeeks counts whole weeks since the most recent attendance.
func absenceStreakWeeks(attended []time.Time, asOf time.Time) float64 {
	var last time.Time
	for _, d := range attended {
		if !d.After(asOf) && d.After(last) {
			last = d
		}
	}
	if last.IsZero() {
		return streakSaturationWeeks
	}
	return math.Floor(asOf.Sub(last).Hours() / (24 * 7))
}

// weeklyVariability is the population standard deviation of the weekly 0/1
// attendance series over the irregularity window.
func weeklyVariability(attended []time.Time, asOf time.Time) float64 {
	series := make([]float64, irregularityWeeks)
	start := asOf.AddDate(0, 0, -7*irregularityWeeks)
	for _, d := range attended {
		if d.After(start) && !d.After(asOf) {
			idx := weekIndex(d, asOf)
			if idx >= 0 && idx < irregularityWeeks {
				series[idx] = 1
			}
		}
	}
	var mean float64
	for _, v := range series {
		mean += v
	}
	mean /= float64(len(series))
	var variance float64
	for _, v := range series {
		variance += (v - mean) * (v - mean)
	}
	return math.Sqrt(variance / float64(len(series)))
}
