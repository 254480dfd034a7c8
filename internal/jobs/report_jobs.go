package jobs

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pocket-crm/analytics-api/internal/analytics"
	"github.com/pocket-crm/analytics-api/internal/service"
	"github.com/pocket-crm/analytics-api/internal/storage"
)

const (
	// CacheWarmJobName is the name of the job that recomputes cached reports
	CacheWarmJobName = "report_cache_warm"
	// SnapshotJobName is the name of the job that archives daily report snapshots
	SnapshotJobName = "report_snapshot"
)

// ReportRefresher recomputes a report and returns its JSON payload.
// *service.ReportService satisfies it.
type ReportRefresher interface {
	RefreshReport(ctx context.Context, name service.ReportName, period analytics.Period) ([]byte, error)
}

// RunResult counts the report/period pairs a job processed
type RunResult struct {
	Succeeded int
	Failed    int
}

// CacheWarmJob recomputes every report for every period so requests hit a warm cache
type CacheWarmJob struct {
	reports ReportRefresher
	logger  *zap.Logger
	timeout time.Duration
}

// NewCacheWarmJob creates a new cache warm job.
// The timeout bounds a whole run.
func NewCacheWarmJob(reports ReportRefresher, logger *zap.Logger, timeout time.Duration) *CacheWarmJob {
	return &CacheWarmJob{reports: reports, logger: logger, timeout: timeout}
}

// Run is called by the scheduler
func (j *CacheWarmJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	j.RunContext(ctx)
}

// RunContext refreshes every report/period pair. A failing pair is logged and skipped.
func (j *CacheWarmJob) RunContext(ctx context.Context) RunResult {
	start := time.Now()
	var result RunResult
	for _, name := range service.ReportNames {
		for _, period := range analytics.Periods {
			if _, err := j.reports.RefreshReport(ctx, name, period); err != nil {
				result.Failed++
				j.logger.Warn("failed to warm report cache",
					zap.String("report", string(name)),
					zap.String("period", string(period)),
					zap.Error(err))
				continue
			}
			result.Succeeded++
		}
	}

	j.logger.Info("report cache warm finished",
		zap.Int("refreshed", result.Succeeded),
		zap.Int("failed", result.Failed),
		zap.Duration("duration", time.Since(start)))
	return result
}

// SnapshotJob archives every report for every period as JSON.
// Archived snapshots keep the figures as they were on the day they were taken.
type SnapshotJob struct {
	reports  ReportRefresher
	store    storage.Storage
	logger   *zap.Logger
	timeout  time.Duration
	location *time.Location
	now      func() time.Time
}

// NewSnapshotJob creates a new snapshot job.
// Snapshot dates are taken in location.
func NewSnapshotJob(reports ReportRefresher, store storage.Storage, logger *zap.Logger, timeout time.Duration, location *time.Location) *SnapshotJob {
	if location == nil {
		location = time.UTC
	}
	return &SnapshotJob{
		reports:  reports,
		store:    store,
		logger:   logger,
		timeout:  timeout,
		location: location,
		now:      time.Now,
	}
}

// SnapshotName returns the storage name of a report snapshot taken on day
func SnapshotName(day time.Time, name service.ReportName, period analytics.Period) string {
	return fmt.Sprintf("snapshots/%s/%s-%s.json", day.Format("2006-01-02"), name, period)
}

// Run is called by the scheduler
func (j *SnapshotJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	j.RunContext(ctx)
}

// RunContext archives every report/period pair. A failing pair is logged and skipped.
func (j *SnapshotJob) RunContext(ctx context.Context) RunResult {
	start := time.Now()
	day := j.now().In(j.location)
	var result RunResult
	for _, name := range service.ReportNames {
		for _, period := range analytics.Periods {
			if err := j.snapshot(ctx, day, name, period); err != nil {
				result.Failed++
				j.logger.Error("failed to archive report snapshot",
					zap.String("report", string(name)),
					zap.String("period", string(period)),
					zap.Error(err))
				continue
			}
			result.Succeeded++
		}
	}

	j.logger.Info("report snapshot finished",
		zap.String("day", day.Format("2006-01-02")),
		zap.Int("archived", result.Succeeded),
		zap.Int("failed", result.Failed),
		zap.Duration("duration", time.Since(start)))
	return result
}

func (j *SnapshotJob) snapshot(ctx context.Context, day time.Time, name service.ReportName, period analytics.Period) error {
	payload, err := j.reports.RefreshReport(ctx, name, period)
	if err != nil {
		return err
	}
	if _, err := j.store.Put(ctx, SnapshotName(day, name, period), "application/json", bytes.NewReader(payload)); err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}
	return nil
}

// Register adds the jobs to the scheduler. A nil job is not scheduled.
func Register(s *Scheduler, warm *CacheWarmJob, warmSchedule string, snapshot *SnapshotJob, snapshotSchedule string) error {
	if warm != nil {
		if err := s.AddJob(CacheWarmJobName, warmSchedule, warm.Run); err != nil {
			return err
		}
	}
	if snapshot != nil {
		if err := s.AddJob(SnapshotJobName, snapshotSchedule, snapshot.Run); err != nil {
			return err
		}
	}
	return nil
}
