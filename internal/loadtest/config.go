package loadtest

import "time"

// Config holds configuration for the batch load test.
type Config struct {
	BaseURL    string        // Base URL of the service
	BranchID   string        // Branch all synthetic members belong to
	NumMembers int           // Number of synthetic members to generate
	BatchSize  int           // Subjects per batch submission
	Workers    int           // Number of concurrent submit workers
	Timeout    time.Duration // HTTP request timeout
	LogFile    string        // Log file for test output
	Verbose    bool          // Enable verbose logging
}

// Member mirrors the member block of the assessment subject wire format.
type Member struct {
	MemberID string `json:"member_id"`
	BranchID string `json:"branch_id"`
	JoinedAt string `json:"joined_at"`
}

// Donation mirrors the donation wire format.
type Donation struct {
	Amount   float64 `json:"amount"`
	GivenAt  string  `json:"given_at"`
	Category string  `json:"category"`
}

// Subject is one churn-risk assessment subject on the wire.
type Subject struct {
	Domain    string     `json:"domain"`
	Member    *Member    `json:"member"`
	Donations []Donation `json:"donations,omitempty"`
}

// BatchRequest is the POST /batch payload.
type BatchRequest struct {
	RunID    string    `json:"run_id"`
	BranchID string    `json:"branch_id"`
	AsOf     string    `json:"as_of"`
	Subjects []Subject `json:"subjects"`
}

// BatchResult is the POST /batch response.
type BatchResult struct {
	RunID      string `json:"run_id"`
	Accepted   int    `json:"accepted"`
	Duplicates int    `json:"duplicates"`
	Rejected   int    `json:"rejected"`
}

// AssessmentEntry is the subset of the stored assessment the test inspects.
type AssessmentEntry struct {
	SubjectID string  `json:"subject_id"`
	Score     float64 `json:"score"`
	Level     string  `json:"level"`
}

// Stats holds test statistics.
type Stats struct {
	MembersGenerated     int
	BatchesSubmitted     int
	SubjectsAccepted     int
	SubjectsDuplicate    int
	SubjectsRejected     int
	AssessmentsRetrieved int
	AlertEvents          int
	StartTime            time.Time
	EndTime              time.Time
	Duration             time.Duration
}
