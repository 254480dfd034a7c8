package jobs

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pocket-crm/analytics-api/internal/analytics"
	"github.com/pocket-crm/analytics-api/internal/service"
	"github.com/pocket-crm/analytics-api/internal/storage"
)

type stubRefresher struct {
	mu    sync.Mutex
	calls []string
	fail  service.ReportName
}

func (s *stubRefresher) RefreshReport(_ context.Context, name service.ReportName, period analytics.Period) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, string(name)+":"+string(period))
	if name == s.fail {
		return nil, errors.New("record store unavailable")
	}
	return []byte(`{"report":"` + string(name) + `","period":"` + string(period) + `"}`), nil
}

func TestCacheWarmJob_RefreshesEveryReportAndPeriod(t *testing.T) {
	refresher := &stubRefresher{}
	job := NewCacheWarmJob(refresher, zap.NewNop(), time.Minute)

	result := job.RunContext(context.Background())

	total := len(service.ReportNames) * len(analytics.Periods)
	assert.Equal(t, RunResult{Succeeded: total}, result)
	assert.Len(t, refresher.calls, total)
	assert.Contains(t, refresher.calls, "marketing:quarter")
}

func TestCacheWarmJob_ContinuesAfterFailure(t *testing.T) {
	refresher := &stubRefresher{fail: service.ReportFinancial}
	job := NewCacheWarmJob(refresher, zap.NewNop(), time.Minute)

	result := job.RunContext(context.Background())

	assert.Equal(t, len(analytics.Periods), result.Failed)
	assert.Equal(t, (len(service.ReportNames)-1)*len(analytics.Periods), result.Succeeded)
}

func TestSnapshotJob_ArchivesPayloads(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	refresher := &stubRefresher{fail: service.ReportClients}
	job := NewSnapshotJob(refresher, store, zap.NewNop(), time.Minute, paris)
	// 23:30 UTC is already the next day in Paris
	job.now = func() time.Time { return time.Date(2026, 3, 14, 23, 30, 0, 0, time.UTC) }

	result := job.RunContext(context.Background())
	assert.Equal(t, len(analytics.Periods), result.Failed)
	assert.Equal(t, (len(service.ReportNames)-1)*len(analytics.Periods), result.Succeeded)

	rc, err := store.Get(context.Background(), "snapshots/2026-03-15/sales-week.json")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"report":"sales","period":"week"}`, string(data))

	_, err = store.Get(context.Background(), "snapshots/2026-03-15/clients-month.json")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSnapshotName(t *testing.T) {
	day := time.Date(2026, 1, 5, 2, 0, 0, 0, time.UTC)
	assert.Equal(t, "snapshots/2026-01-05/financial-year.json", SnapshotName(day, service.ReportFinancial, analytics.PeriodYear))
}

func TestScheduler_AddAndRemoveJobs(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	warm := NewCacheWarmJob(&stubRefresher{}, zap.NewNop(), time.Minute)

	require.NoError(t, Register(s, warm, "0 */5 * * * *", nil, ""))
	assert.Equal(t, []string{CacheWarmJobName}, s.JobNames())

	assert.Error(t, s.AddJob(CacheWarmJobName, "@every 1h", func() {}), "duplicate names are rejected")
	assert.Error(t, s.AddJob("broken", "not a cron expression", func() {}))

	require.NoError(t, s.RemoveJob(CacheWarmJobName))
	assert.Empty(t, s.JobNames())
	assert.Error(t, s.RemoveJob(CacheWarmJobName))
}

func TestScheduler_RunsJobs(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	ran := make(chan struct{}, 1)
	require.NoError(t, s.AddJob("tick", "@every 1s", func() {
		select {
		case ran <- struct{}{}:
		default:
		}
	}))

	s.Start()
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}
