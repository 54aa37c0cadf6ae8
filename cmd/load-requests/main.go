package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/tourdesk/internal/loadgen"
	"github.com/okian/tourdesk/pkg/logger"
)

const (
	defaultNumRequests = 1000
	defaultPageSize    = 100
	defaultTimeout     = 30 * time.Second
	defaultRunTimeout  = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:5000", "Base URL of the service")
		requests   = flag.Int("requests", defaultNumRequests, "Number of submissions to generate")
		workers    = flag.Int("workers", runtime.NumCPU()*2, "Number of concurrent submitters")
		pageSize   = flag.Int("page-size", defaultPageSize, "pageSize used while verifying the listing")
		decide     = flag.Bool("decide", false, "Approve every generated user after submitting")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile = flag.String("output", "", "Write generated submissions to this JSON file")
		logFormat  = flag.String("log-format", logger.FormatText, "Log format: text or json")
		verbose    = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Parse()

	if err := logger.Init(logger.WithFormat(*logFormat)); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	_, err := loadgen.Run(ctx, &loadgen.Config{
		BaseURL:     *baseURL,
		NumRequests: *requests,
		Workers:     *workers,
		PageSize:    *pageSize,
		Decide:      *decide,
		Timeout:     *timeout,
		OutputFile:  *outputFile,
	})
	if err != nil {
		logger.Get().Error(ctx, "load run failed", logger.Error(err))
		cancel()
		stop()
		os.Exit(1)
	}
}
