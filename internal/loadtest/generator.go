package loadtest

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/sefakor20/kingdomvitals-insights/pkg/logger"
)

// Engagement profile cases. The distribution skews toward regular givers so
// the resulting score list has a realistic shape: a long healthy tail with a
// visible at-risk head.
const (
	caseRegular  = 0 // monthly giver, most common
	caseLapsing  = 1 // gave steadily, stopped ~10 weeks ago
	caseDormant  = 2 // no gift in five months
	caseNewcomer = 3 // joined recently, one or two gifts
	caseGenerous = 4 // frequent large gifts
	caseSporadic = 5 // irregular small gifts
	profileCount = 6
)

// Generation range constants.
const (
	randomFloatDivisor = 1000000
	regularAmountMin   = 20.0
	regularAmountRange = 80.0
	generousAmountMin  = 200.0
	generousAmountsVar = 300.0
	sporadicAmountMin  = 5.0
	sporadicAmountVar  = 25.0
	daysPerWeek        = 7
	weeksPerMonth      = 4
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

func randomCase(n int64) int64 {
	v, _ := rand.Int(rand.Reader, big.NewInt(n))
	return v.Int64()
}

// generateSubjects creates synthetic churn-risk subjects with varied
// engagement profiles. It returns the subjects plus a member-to-profile map
// used later for verification.
func generateSubjects(ctx context.Context, config *Config, stats *Stats, asOf time.Time) ([]Subject, map[string]int64) {
	logger.Get().Info(ctx, "generating synthetic members", logger.Int("numMembers", config.NumMembers))

	subjects := make([]Subject, config.NumMembers)
	profiles := make(map[string]int64, config.NumMembers)

	for i := 0; i < config.NumMembers; i++ {
		memberID := uuid.New().String()
		profile := randomCase(profileCount)
		// Bias toward regular members: re-roll half the non-regular draws.
		if profile != caseRegular && randomCase(2) == 0 {
			profile = caseRegular
		}
		profiles[memberID] = profile
		subjects[i] = generateSubject(memberID, config.BranchID, profile, asOf)
	}

	stats.MembersGenerated = len(subjects)
	logger.Get().Info(ctx, "generated subjects successfully", logger.Int("count", len(subjects)))

	return subjects, profiles
}

// generateSubject builds one churn subject for the given engagement profile.
func generateSubject(memberID, branchID string, profile int64, asOf time.Time) Subject {
	var (
		joined    time.Time
		donations []Donation
	)

	switch profile {
	case caseLapsing:
		joined = asOf.AddDate(-2, 0, 0)
		donations = monthlyGifts(asOf.AddDate(0, 0, -10*daysPerWeek), 6, regularAmountMin+getRandomFloat()*regularAmountRange)
	case caseDormant:
		joined = asOf.AddDate(-3, 0, 0)
		donations = monthlyGifts(asOf.AddDate(0, -5, 0), 3, regularAmountMin+getRandomFloat()*regularAmountRange)
	case caseNewcomer:
		joined = asOf.AddDate(0, 0, -2*daysPerWeek)
		donations = monthlyGifts(asOf.AddDate(0, 0, -daysPerWeek), 1+int(randomCase(2)), sporadicAmountMin+getRandomFloat()*sporadicAmountVar)
	case caseGenerous:
		joined = asOf.AddDate(-4, 0, 0)
		donations = weeklyGifts(asOf.AddDate(0, 0, -12*daysPerWeek), 12, generousAmountMin+getRandomFloat()*generousAmountsVar)
	case caseSporadic:
		joined = asOf.AddDate(-1, 0, 0)
		donations = monthlyGifts(asOf.AddDate(0, -int(randomCase(4))-1, 0), 2, sporadicAmountMin+getRandomFloat()*sporadicAmountVar)
	default: // caseRegular
		joined = asOf.AddDate(-1, -int(randomCase(12)), 0)
		donations = monthlyGifts(asOf.AddDate(0, -6, 0), 6, regularAmountMin+getRandomFloat()*regularAmountRange)
	}

	return Subject{
		Domain: "churn_risk",
		Member: &Member{
			MemberID: memberID,
			BranchID: branchID,
			JoinedAt: joined.Format(time.RFC3339),
		},
		Donations: donations,
	}
}

// monthlyGifts produces count gifts starting at start, one every four weeks.
func monthlyGifts(start time.Time, count int, amount float64) []Donation {
	out := make([]Donation, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, Donation{
			Amount:   amount,
			GivenAt:  start.AddDate(0, 0, i*weeksPerMonth*daysPerWeek).Format(time.RFC3339),
			Category: "tithe",
		})
	}
	return out
}

// weeklyGifts produces count gifts starting at start, one per week.
func weeklyGifts(start time.Time, count int, amount float64) []Donation {
	out := make([]Donation, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, Donation{
			Amount:   amount,
			GivenAt:  start.AddDate(0, 0, i*daysPerWeek).Format(time.RFC3339),
			Category: "offering",
		})
	}
	return out
}
