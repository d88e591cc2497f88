package scheduler

import (
	"context"
	"fmt"
	"time"

	"mlm-network/pkg/models"

	"go.uber.org/zap"
)

// StatsProvider рассчитывает сводную статистику сети
type StatsProvider interface {
	GetDashboardStats(ctx context.Context) (*models.DashboardStats, error)
}

// StatsRecorder публикует статистику сети
type StatsRecorder interface {
	SetDashboardStats(stats *models.DashboardStats)
	ObserveComputation(operation string, seconds float64)
}

// StatsSnapshotJob периодически пересчитывает статистику сети и обновляет gauge метрики
type StatsSnapshotJob struct {
	stats    StatsProvider
	recorder StatsRecorder
	logger   *zap.Logger
}

// NewStatsSnapshotJob создает джобу снимка статистики
func NewStatsSnapshotJob(stats StatsProvider, recorder StatsRecorder, logger *zap.Logger) *StatsSnapshotJob {
	return &StatsSnapshotJob{
		stats:    stats,
		recorder: recorder,
		logger:   logger,
	}
}

// Name возвращает имя джобы
func (j *StatsSnapshotJob) Name() string {
	return "stats_snapshot"
}

// Run пересчитывает статистику
func (j *StatsSnapshotJob) Run(ctx context.Context) error {
	start := time.Now()

	stats, err := j.stats.GetDashboardStats(ctx)
	if err != nil {
		return fmt.Errorf("ошибка расчета статистики сети: %w", err)
	}

	j.recorder.ObserveComputation("stats_snapshot", time.Since(start).Seconds())
	j.recorder.SetDashboardStats(stats)

	j.logger.Info("снимок статистики сети обновлен",
		zap.Int64("total_distributors", stats.TotalDistributors),
		zap.Int64("total_sales", stats.TotalSales),
		zap.String("total_sales_amount", stats.TotalSalesAmount.String()),
		zap.String("total_commissions_paid", stats.TotalCommissionsPaid.String()))

	return nil
}
