package searchprobe

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/dreamteam/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string, verbose bool) (io.Closer, error) {
	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "search_probe_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	if err := logger.Init(logger.WithOutput(io.MultiWriter(os.Stdout, file))); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return file, nil
}

// ShowHelp prints usage information for the search probe.
func ShowHelp() {
	os.Stdout.WriteString(`Dream Team Search Probe
=======================

Runs one search against a live server, reads the event stream and checks it.

Usage:
  go run cmd/search-probe/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -skills string
        Comma separated skills (default "python,sql")
  -size int
        Requested team size (default 3)
  -timeout duration
        Bound for the whole stream (default 2m)
  -log string
        Log file for probe output (default: search_probe_TIMESTAMP.log)
  -verbose
        Log every event
  -help
        Show this help message

Checks:
  - the first event is a status
  - candidates only arrive before the second status
  - exactly one dreamTeam or error event, and it is the last one
  - the team is no larger than the requested size
  - no username appears twice in the team

Examples:
  go run cmd/search-probe/main.go -skills go,react -size 4
  go run cmd/search-probe/main.go -url http://localhost:8080 -verbose
`)
}
