// Package jobs runs scheduled maintenance.
package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"investment-research/logging"
	"investment-research/report"
)

// ReportStore deletes expired report rows.
type ReportStore interface {
	CleanupExpiredReports(ctx context.Context) (int64, error)
}

// Cleanup removes expired reports from the database and stale report files
// from the reports directory.
type Cleanup struct {
	store     ReportStore
	dir       string
	retention time.Duration
	logger    arbor.ILogger
	now       func() time.Time
}

func NewCleanup(store ReportStore, dir string, retention time.Duration, logger arbor.ILogger) *Cleanup {
	if logger == nil {
		logger = logging.Get()
	}
	return &Cleanup{store: store, dir: dir, retention: retention, logger: logger, now: time.Now}
}

// Run performs one cleanup pass and returns the rows and files removed.
func (c *Cleanup) Run(ctx context.Context) (rows int64, files int, err error) {
	rows, err = c.store.CleanupExpiredReports(ctx)
	if err != nil {
		return 0, 0, err
	}
	files, err = c.pruneFiles()
	if err != nil {
		return rows, files, err
	}
	c.logger.Info().
		Int64("rows", rows).
		Int("files", files).
		Msg("Report cleanup finished")
	return rows, files, nil
}

func (c *Cleanup) pruneFiles() (int, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read reports directory: %w", err)
	}

	cutoff := c.now().Add(-c.retention)
	removed := 0
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != report.FormatPDF.Extension() && ext != report.FormatLaTeX.Extension()) {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
			c.logger.Warn().Err(err).Str("file", e.Name()).Msg("Failed to remove report file")
			continue
		}
		removed++
	}
	return removed, nil
}

// Scheduler runs the cleanup on a cron schedule.
type Scheduler struct {
	cron *cron.Cron
}

// Start schedules cleanup with a standard cron spec or descriptor such
// as "@hourly".
func Start(ctx context.Context, spec string, cleanup *Cleanup) (*Scheduler, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if _, _, err := cleanup.Run(ctx); err != nil {
			cleanup.logger.Error().Err(err).Msg("Report cleanup failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule cleanup %q: %w", spec, err)
	}
	c.Start()
	cleanup.logger.Info().Str("schedule", spec).Msg("Report cleanup scheduled")
	return &Scheduler{cron: c}, nil
}

// Stop halts the schedule and waits for a running cleanup to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
