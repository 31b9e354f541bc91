package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{Timeout: timeout},
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// submitBatches splits subjects into batches and submits them concurrently.
func submitBatches(ctx context.Context, config *Config, subjects []Subject, asOf time.Time, stats *Stats) error {
	runID := uuid.New().String()

	batches := make([][]Subject, 0, len(subjects)/config.BatchSize+1)
	for start := 0; start < len(subjects); start += config.BatchSize {
		end := start + config.BatchSize
		if end > len(subjects) {
			end = len(subjects)
		}
		batches = append(batches, subjects[start:end])
	}

	log.Printf("submitting %d subjects in %d batches with %d workers", len(subjects), len(batches), config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/batch"

	var (
		accepted   int64
		duplicates int64
		rejected   int64
		submitted  int64
	)

	batchChan := make(chan []Subject, config.Workers)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for batch := range batchChan {
				select {
				case <-ctx.Done():
					return
				default:
					result, err := submitSingleBatch(ctx, client, url, runID, config.BranchID, batch, asOf)
					atomic.AddInt64(&submitted, 1)
					if err != nil {
						atomic.AddInt64(&rejected, int64(len(batch)))
						if config.Verbose {
							log.Printf("batch submission failed: %v", err)
						}
						continue
					}
					atomic.AddInt64(&accepted, int64(result.Accepted))
					atomic.AddInt64(&duplicates, int64(result.Duplicates))
					atomic.AddInt64(&rejected, int64(result.Rejected))
				}
			}
		}()
	}

	go func() {
		defer close(batchChan)
		for _, batch := range batches {
			select {
			case <-ctx.Done():
				return
			case batchChan <- batch:
			}
		}
	}()

	wg.Wait()

	stats.BatchesSubmitted = int(atomic.LoadInt64(&submitted))
	stats.SubjectsAccepted = int(atomic.LoadInt64(&accepted))
	stats.SubjectsDuplicate = int(atomic.LoadInt64(&duplicates))
	stats.SubjectsRejected = int(atomic.LoadInt64(&rejected))

	log.Printf("batch submission completed: accepted=%d duplicates=%d rejected=%d",
		stats.SubjectsAccepted, stats.SubjectsDuplicate, stats.SubjectsRejected)

	return nil
}

// submitSingleBatch submits one batch and parses the result.
func submitSingleBatch(ctx context.Context, client *HTTPClient, url, runID, branchID string, batch []Subject, asOf time.Time) (*BatchResult, error) {
	req := BatchRequest{
		RunID:    runID,
		BranchID: branchID,
		AsOf:     asOf.Format(time.RFC3339),
		Subjects: batch,
	}

	resp, err := client.Post(ctx, url, req)
	if err != nil {
		return nil, err
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != StatusAccepted {
		return nil, fmt.Errorf("batch rejected with status %d: %s", resp.StatusCode, string(body))
	}

	var result BatchResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse batch result: %w", err)
	}
	return &result, nil
}

// waitForDrain polls /stats until the queue is empty and the store holds at
// least the accepted number of assessments.
func waitForDrain(ctx context.Context, config *Config, expected int) error {
	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/stats"
	deadline := time.Now().Add(DrainTimeout)

	for {
		if time.Now().After(deadline) {
			return fmt.Errorf("queue did not drain within %s", DrainTimeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(DrainPollInterval):
		}

		resp, err := client.Get(ctx, url)
		if err != nil {
			continue
		}
		body, err := readResponseBody(resp)
		if err != nil || resp.StatusCode != StatusOK {
			continue
		}

		var payload map[string]interface{}
		if err := json.Unmarshal(body, &payload); err != nil {
			continue
		}

		queueLen, _ := payload["queueLength"].(float64)
		assessments, _ := payload["assessments"].(float64)
		if queueLen == 0 && int(assessments) >= expected {
			return nil
		}
		if config.Verbose {
			log.Printf("draining: queueLength=%d assessments=%d/%d", int(queueLen), int(assessments), expected)
		}
	}
}

// fetchAssessments retrieves the stored churn assessments for the branch.
func fetchAssessments(ctx context.Context, config *Config, stats *Stats) ([]AssessmentEntry, error) {
	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/assessments?branch=" + config.BranchID + "&domain=churn_risk"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assessments: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != StatusOK {
		return nil, fmt.Errorf("assessments fetch failed with status %d", resp.StatusCode)
	}

	var entries []AssessmentEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse assessments: %w", err)
	}

	stats.AssessmentsRetrieved = len(entries)
	return entries, nil
}

// evaluateAlerts runs the branch's alert rules against the fresh assessments.
func evaluateAlerts(ctx context.Context, config *Config, asOf time.Time, stats *Stats) error {
	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/alerts/evaluate"

	payload := map[string]interface{}{
		"branch_id": config.BranchID,
		"domains":   []string{"churn_risk"},
		"as_of":     asOf.Format(time.RFC3339),
	}

	resp, err := client.Post(ctx, url, payload)
	if err != nil {
		return fmt.Errorf("failed to evaluate alerts: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return err
	}
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("alert evaluation failed with status %d", resp.StatusCode)
	}

	var events []json.RawMessage
	if err := json.Unmarshal(body, &events); err != nil {
		return fmt.Errorf("failed to parse alert events: %w", err)
	}

	stats.AlertEvents = len(events)
	log.Printf("alert evaluation produced %d event(s)", len(events))
	return nil
}
