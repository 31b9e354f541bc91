package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/sefakor20/kingdomvitals-insights/internal/loadtest"
)

// Default configuration constants.
const (
	defaultNumMembers  = 10000
	defaultBatchSize   = 200
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		branchID   = flag.String("branch", "branch-loadtest", "Branch ID for synthetic members")
		numMembers = flag.Int("members", defaultNumMembers, "Number of synthetic members to generate")
		batchSize  = flag.Int("batch", defaultBatchSize, "Subjects per batch submission")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile    = flag.String("log", "", "Log file for test output (default: loadtest_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		loadtest.ShowHelp()
		return
	}

	// Setup logging
	if err := loadtest.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	config := &loadtest.Config{
		BaseURL:    *baseURL,
		BranchID:   *branchID,
		NumMembers: *numMembers,
		BatchSize:  *batchSize,
		Workers:    *workers,
		Timeout:    *timeout,
		LogFile:    *logFile,
		Verbose:    *verbose,
	}

	if err := loadtest.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Load test failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
