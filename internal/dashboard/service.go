package dashboard

import (
	"context"
	"fmt"

	"mlm-network/internal/commission"
	"mlm-network/internal/store"
	"mlm-network/pkg/models"

	"go.uber.org/zap"
)

// Service собирает сводную статистику по всей сети
type Service struct {
	store       store.Store
	commissions *commission.Service
	logger      *zap.Logger
}

// NewService создает сервис статистики
func NewService(store store.Store, commissions *commission.Service, logger *zap.Logger) *Service {
	return &Service{
		store:       store,
		commissions: commissions,
		logger:      logger,
	}
}

// GetDashboardStats возвращает количество и сумму продаж, количество дистрибьюторов
// и сумму начисленных комиссий по действующей политике. На пустых данных все поля нулевые.
func (s *Service) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	distributors, err := s.store.Distributor().Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчета дистрибьюторов: %w", err)
	}

	summary, err := s.store.Sale().Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения сводки продаж: %w", err)
	}

	commissions, err := s.commissions.GetCommissions(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.DashboardStats{
		TotalSales:           summary.Count,
		TotalSalesAmount:     summary.TotalAmount,
		TotalDistributors:    distributors,
		TotalCommissionsPaid: commission.Total(commissions),
	}

	s.logger.Debug("статистика сети рассчитана",
		zap.Int64("total_sales", stats.TotalSales),
		zap.String("total_sales_amount", stats.TotalSalesAmount.String()),
		zap.Int64("total_distributors", stats.TotalDistributors),
		zap.String("total_commissions_paid", stats.TotalCommissionsPaid.String()))

	return stats, nil
}
