package loadgen

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/tourdesk/pkg/logger"
)

const (
	directoryPermission = 0o750
	filePermission      = 0o600
	percent             = 100
)

// Run executes a complete load run against cfg.BaseURL.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("loadgen")
	client := newHTTPClient(cfg.Timeout)
	tag := NewRunTag()

	log.Info(ctx, "starting load run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("requests", cfg.NumRequests),
		logger.Int("workers", cfg.Workers),
		logger.String("tag", tag),
	)

	if err := checkHealth(ctx, client, cfg.BaseURL); err != nil {
		return stats, err
	}

	subs := Generate(cfg.NumRequests, tag)
	stats.Generated = len(subs)

	accepted := submitAll(ctx, client, cfg, subs, stats)
	log.Info(ctx, "submission completed",
		logger.Int("successful", stats.Successful),
		logger.Int("failed", stats.Failed),
	)

	if cfg.Decide {
		decideAll(ctx, client, cfg, accepted, stats)
	}

	if err := verifyListing(ctx, client, cfg, tag, accepted, stats); err != nil {
		return stats, err
	}

	if cfg.OutputFile != "" {
		if err := saveSubmissions(cfg.OutputFile, subs); err != nil {
			log.Warn(ctx, "failed to save submissions", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	logFinalStats(ctx, log, stats)
	return stats, nil
}

func checkHealth(ctx context.Context, client *HTTPClient, baseURL string) error {
	status, _, err := client.Get(ctx, baseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, status)
	}
	return nil
}

// submitAll posts every submission through a pool of cfg.Workers and
// returns the uids the server acknowledged.
func submitAll(ctx context.Context, client *HTTPClient, cfg *Config, subs []Submission, stats *Stats) []string {
	url := cfg.BaseURL + "/submit-user-data"
	workers := max(cfg.Workers, 1)

	var (
		submitted, failed atomic.Int64
		mu                sync.Mutex
		accepted          = make([]string, 0, len(subs))
		wg                sync.WaitGroup
	)

	jobs := make(chan Submission, workers*2)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sub := range jobs {
				submitted.Add(1)
				status, _, err := client.Post(ctx, url, sub)
				if err != nil || status != http.StatusOK {
					failed.Add(1)
					continue
				}
				mu.Lock()
				accepted = append(accepted, sub.UID)
				mu.Unlock()
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, sub := range subs {
			select {
			case <-ctx.Done():
				return
			case jobs <- sub:
			}
		}
	}()
	wg.Wait()

	stats.Submitted = int(submitted.Load())
	stats.Failed = int(failed.Load())
	stats.Successful = len(accepted)
	return accepted
}

func decideAll(ctx context.Context, client *HTTPClient, cfg *Config, uids []string, stats *Stats) {
	url := cfg.BaseURL + "/accept-request"
	for _, uid := range uids {
		status, _, err := client.Post(ctx, url, map[string]string{"userId": uid})
		if err != nil || status != http.StatusAccepted {
			stats.DecisionsFailed++
			continue
		}
		stats.DecisionsQueued++
	}
}

func saveSubmissions(filename string, subs []Submission) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(subs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal submissions: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}

func logFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var successRate, perSecond float64
	if stats.Submitted > 0 {
		successRate = float64(stats.Successful) / float64(stats.Submitted) * percent
	}
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("successful", stats.Successful),
		logger.Int("failed", stats.Failed),
		logger.Int("decisionsQueued", stats.DecisionsQueued),
		logger.Int("decisionsFailed", stats.DecisionsFailed),
		logger.Int("listedTotal", stats.ListedTotal),
		logger.Int("pagesRead", stats.PagesRead),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("submissionsPerSecond", perSecond),
	)
}
