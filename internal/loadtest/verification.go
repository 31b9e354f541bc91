package loadtest

import (
	"context"
	"fmt"
	"log"
)

// verifyResults checks the stored assessments for internal consistency: valid
// score bounds, descending order, and dormant members scoring above regular
// givers on average.
func verifyResults(_ context.Context, config *Config, assessments []AssessmentEntry, profiles map[string]int64) error {
	log.Println("verifying results...")

	if len(assessments) == 0 {
		return fmt.Errorf("no assessments to verify")
	}

	for i, a := range assessments {
		if a.Score < 0 || a.Score > 100 {
			return fmt.Errorf("assessment %d for %s has out-of-range score %.2f", i, a.SubjectID, a.Score)
		}
		if i > 0 && a.Score > assessments[i-1].Score {
			return fmt.Errorf("assessments not sorted: entry %d scores above entry %d", i, i-1)
		}
	}
	log.Println("score bounds and ordering verified")

	verifyProfileSeparation(assessments, profiles)
	displayTopRisks(assessments, config.Verbose)

	log.Println("result verification completed")
	return nil
}

// verifyProfileSeparation warns when dormant members do not average a higher
// churn score than regular givers.
func verifyProfileSeparation(assessments []AssessmentEntry, profiles map[string]int64) {
	var (
		dormantSum, regularSum     float64
		dormantCount, regularCount int
	)
	for _, a := range assessments {
		switch profiles[a.SubjectID] {
		case caseDormant:
			dormantSum += a.Score
			dormantCount++
		case caseRegular:
			regularSum += a.Score
			regularCount++
		}
	}
	if dormantCount == 0 || regularCount == 0 {
		return
	}

	dormantAvg := dormantSum / float64(dormantCount)
	regularAvg := regularSum / float64(regularCount)
	if dormantAvg <= regularAvg {
		log.Printf("warning: dormant members average %.2f, not above regular givers at %.2f", dormantAvg, regularAvg)
		return
	}
	log.Printf("profile separation verified: dormant avg %.2f > regular avg %.2f", dormantAvg, regularAvg)
}

// displayTopRisks shows the highest-risk members from the assessment list.
func displayTopRisks(assessments []AssessmentEntry, verbose bool) {
	topN := 10
	if len(assessments) < topN {
		topN = len(assessments)
	}

	log.Printf("top %d churn risks:", topN)
	for i := 0; i < topN; i++ {
		a := assessments[i]
		log.Printf("   %d. %s - score: %.2f (%s)", i+1, a.SubjectID, a.Score, a.Level)
	}

	if verbose && len(assessments) > 0 {
		sum := 0.0
		for _, a := range assessments {
			sum += a.Score
		}
		log.Printf("score statistics: average=%.2f maximum=%.2f minimum=%.2f",
			sum/float64(len(assessments)), assessments[0].Score, assessments[len(assessments)-1].Score)
	}
}
