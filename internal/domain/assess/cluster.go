package assess

import (
	"time"

	"github.com/sefakor20/kingdomvitals-insights/internal/domain/model"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/scoring"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/types"
)

// Cluster health thresholds. All five dimensions carry equal weight; the
// overall score is their arithmetic mean.
const (
	clusterConcernCeiling  = 30.0
	clusterStrengthFloor   = 75.0
	clusterConfidenceFixed = 95.0
)

var clusterRecommendations = map[string]string{
	"attendance": "Cluster attendance is weak; review meeting cadence and reminders.",
	"engagement": "Low participation inside meetings; equip the leader with discussion material.",
	"growth":     "The cluster is not adding members; plan an open invite event.",
	"retention":  "Members are leaving the cluster; schedule exit conversations.",
	"leadership": "Leadership pipeline is thin; identify and develop an apprentice leader.",
}

// ClusterInput wraps the five dimension sub-scores.
type ClusterInput struct {
	Cluster model.ClusterDimensions
}

func (in ClusterInput) SubjectID() string    { return in.Cluster.ClusterID }
func (in ClusterInput) SubjectType() string  { return "cluster" }
func (in ClusterInput) Branch() string       { return in.Cluster.BranchID }
func (in ClusterInput) Domain() types.Domain { return types.DomainClusterHealth }

// ClusterResult is the typed outcome of a cluster health run.
type ClusterResult struct {
	Assessment     Assessment
	Level          types.HealthLevel
	NeedsAttention bool
	Concerns       []string // dimensions at or under the concern ceiling
	Strengths      []string // dimensions at or over the strength floor
}

// ClusterScorer grades small-group cluster health.
type ClusterScorer struct {
	concernCeiling float64
	strengthFloor  float64
}

// NewClusterScorer creates a cluster health scorer with default thresholds.
func NewClusterScorer() *ClusterScorer {
	return &ClusterScorer{
		concernCeiling: clusterConcernCeiling,
		strengthFloor:  clusterStrengthFloor,
	}
}

// Score grades one cluster as of the given time.
func (s *ClusterScorer) Score(in ClusterInput, asOf time.Time) ClusterResult {
	factors := []scoring.Factor{
		dimension("attendance", in.Cluster.Attendance),
		dimension("engagement", in.Cluster.Engagement),
		dimension("growth", in.Cluster.Growth),
		dimension("retention", in.Cluster.Retention),
		dimension("leadership", in.Cluster.Leadership),
	}

	score := scoring.Mean(factors)
	level := types.HealthLevelFor(score)

	concerns := scoring.Below(factors, s.concernCeiling)
	strengths := scoring.Above(factors, s.strengthFloor)
	recs := scoring.Recommend(concerns, clusterRecommendations, maxRecommendations)

	a := newAssessment(in, score, string(level), clusterConfidenceFixed, factors, recs, asOf)

	return ClusterResult{
		Assessment:     a,
		Level:          level,
		NeedsAttention: level.NeedsAttention(),
		Concerns:       scoring.Names(concerns),
		Strengths:      scoring.Names(strengths),
	}
}

func dimension(name string, value float64) scoring.Factor {
	return scoring.NewFactor(name, value, value, 1.0/5.0, "Cluster "+name+" dimension sub-score.")
}
