package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/dreamteam/internal/searchprobe"
)

// Default configuration constants.
const (
	defaultSkills  = "python,sql"
	defaultSize    = 3
	defaultTimeout = 2 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:9080", "Base URL of the service")
		skills  = flag.String("skills", defaultSkills, "Comma separated skills")
		size    = flag.Int("size", defaultSize, "Requested team size")
		timeout = flag.Duration("timeout", defaultTimeout, "Bound for the whole stream")
		logFile = flag.String("log", "", "Log file for probe output (default: search_probe_TIMESTAMP.log)")
		verbose = flag.Bool("verbose", false, "Log every event")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		searchprobe.ShowHelp()
		return
	}

	closer, err := searchprobe.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	config := &searchprobe.Config{
		BaseURL: *baseURL,
		Skills:  *skills,
		Size:    *size,
		Timeout: *timeout,
		LogFile: *logFile,
		Verbose: *verbose,
	}

	if _, err := searchprobe.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Probe failed: " + err.Error() + "\n")
		_ = closer.Close()
		os.Exit(1)
	}
}
