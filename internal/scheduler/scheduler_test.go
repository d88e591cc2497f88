package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mlm-network/pkg/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingJob struct {
	mu   sync.Mutex
	runs int
	err  error
	name string
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.runs++
	return j.err
}

func (j *countingJob) count() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.runs
}

type fakeStats struct {
	stats *models.DashboardStats
	err   error
}

func (f *fakeStats) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	return f.stats, f.err
}

type fakeRecorder struct {
	stats      *models.DashboardStats
	operations []string
}

func (f *fakeRecorder) SetDashboardStats(stats *models.DashboardStats) {
	f.stats = stats
}

func (f *fakeRecorder) ObserveComputation(operation string, seconds float64) {
	f.operations = append(f.operations, operation)
}

func TestRunJobsContinuesAfterError(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	failing := &countingJob{name: "failing", err: errors.New("сбой")}
	ok := &countingJob{name: "ok"}
	s.AddJob(failing)
	s.AddJob(ok)

	s.RunJobs(context.Background())

	assert.Equal(t, 1, failing.count())
	assert.Equal(t, 1, ok.count())
}

func TestStartRunsImmediatelyAndStops(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	job := &countingJob{name: "job"}
	s.AddJob(job)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx, time.Hour)
		close(done)
	}()

	require.Eventually(t, func() bool { return job.count() == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("планировщик не остановился после отмены контекста")
	}
}

func TestStatsSnapshotJob(t *testing.T) {
	stats := &models.DashboardStats{
		TotalSales:           4,
		TotalSalesAmount:     decimal.NewFromInt(600),
		TotalDistributors:    4,
		TotalCommissionsPaid: decimal.NewFromInt(76),
	}
	recorder := &fakeRecorder{}
	job := NewStatsSnapshotJob(&fakeStats{stats: stats}, recorder, zap.NewNop())

	assert.Equal(t, "stats_snapshot", job.Name())
	require.NoError(t, job.Run(context.Background()))
	assert.Same(t, stats, recorder.stats)
	assert.Equal(t, []string{"stats_snapshot"}, recorder.operations)
}

func TestStatsSnapshotJobError(t *testing.T) {
	recorder := &fakeRecorder{}
	job := NewStatsSnapshotJob(&fakeStats{err: errors.New("база недоступна")}, recorder, zap.NewNop())

	err := job.Run(context.Background())
	assert.Error(t, err)
	assert.Nil(t, recorder.stats, "метрики не должны обновляться при ошибке")
}
