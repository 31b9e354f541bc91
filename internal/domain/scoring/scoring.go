// Package scoring provides the factor primitive and aggregator every domain
// scorer builds on: a named, weighted, normalized contribution and a clamped
// weighted-sum combiner.
//
// The aggregator never fails. A factor whose raw signal is unavailable is
// simply never built, so subjects with sparse history contribute fewer
// factors rather than artificially depressed scores.
package scoring

import (
	"math"
	"sort"
)

// Score bounds.
const (
	MinScore = 0.0
	MaxScore = 100.0
)

// Factor is a single named contribution to a score. Normalized is always in
// [0,100]; Weight may be negative for factors that subtract from an additive
// base (e.g. an improving giving trend reducing churn risk).
type Factor struct {
	Name        string  `json:"name"`
	Raw         float64 `json:"raw"`
	Normalized  float64 `json:"normalized"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description,omitempty"`
}

// NewFactor builds a factor, clamping the normalized value.
func NewFactor(name string, raw, normalized, weight float64, description string) Factor {
	return Factor{
		Name:        name,
		Raw:         raw,
		Normalized:  Clamp(normalized),
		Weight:      weight,
		Description: description,
	}
}

// Clamp bounds a score to [0,100].
func Clamp(v float64) float64 {
	return math.Max(MinScore, math.Min(MaxScore, v))
}

// Round2 rounds a score to two decimals, the precision persisted assessments use.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Ratio normalizes value against max onto [0,100]. A non-positive max yields 0.
func Ratio(value, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return Clamp(value / max * MaxScore)
}

// Aggregate combines weighted factor contributions into one clamped score.
func Aggregate(factors []Factor) float64 {
	var total float64
	for _, f := range factors {
		total += f.Normalized * f.Weight
	}
	return Clamp(total)
}

// Mean averages normalized factor values with equal weight, for domains whose
// overall score is a plain arithmetic mean of dimension sub-scores.
func Mean(factors []Factor) float64 {
	if len(factors) == 0 {
		return 0
	}
	var total float64
	for _, f := range factors {
		total += f.Normalized
	}
	return Clamp(total / float64(len(factors)))
}

// ByName indexes factors for persistence alongside the aggregate score.
func ByName(factors []Factor) map[string]Factor {
	m := make(map[string]Factor, len(factors))
	for _, f := range factors {
		m[f.Name] = f
	}
	return m
}

// Below returns the factors whose normalized value is at or under max,
// weakest first. Health-style domains use this for concerns; risk-style
// domains use it for strengths.
func Below(factors []Factor, max float64) []Factor {
	var out []Factor
	for _, f := range factors {
		if f.Normalized <= max {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Normalized != out[j].Normalized {
			return out[i].Normalized < out[j].Normalized
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Above returns the factors whose normalized value is at or over min,
// strongest first.
func Above(factors []Factor, min float64) []Factor {
	var out []Factor
	for _, f := range factors {
		if f.Normalized >= min {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Normalized != out[j].Normalized {
			return out[i].Normalized > out[j].Normalized
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Recommend assembles up to limit recommendation strings for the given
// factors, in order, using the domain's per-factor message table. Factors
// without a message are skipped.
func Recommend(factors []Factor, messages map[string]string, limit int) []string {
	var out []string
	for _, f := range factors {
		if len(out) >= limit {
			break
		}
		if msg, ok := messages[f.Name]; ok {
			out = append(out, msg)
		}
	}
	return out
}

// Names projects factor names in the given order.
func Names(factors []Factor) []string {
	out := make([]string, len(factors))
	for i, f := range factors {
		out[i] = f.Name
	}
	return out
}
