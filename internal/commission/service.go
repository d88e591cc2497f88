package commission

import (
	"context"
	"fmt"

	"mlm-network/internal/hierarchy"
	"mlm-network/internal/store"
	"mlm-network/pkg/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Snapshot содержит состояние сети, прочитанное для одного расчета
type Snapshot struct {
	Resolver *hierarchy.Resolver
	OwnSales map[int64]decimal.Decimal
}

// Service пересчитывает комиссии из текущего состояния хранилища при каждом запросе
type Service struct {
	store  store.Store
	engine *Engine
	logger *zap.Logger
}

// NewService создает сервис комиссий
func NewService(store store.Store, engine *Engine, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		engine: engine,
		logger: logger,
	}
}

// Engine возвращает движок расчета
func (s *Service) Engine() *Engine {
	return s.engine
}

// LoadSnapshot читает всех дистрибьюторов и суммы их продаж
func (s *Service) LoadSnapshot(ctx context.Context) (*Snapshot, error) {
	distributors, err := s.store.Distributor().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения дистрибьюторов: %w", err)
	}

	totals, err := s.store.Sale().TotalsByDistributor(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения сумм продаж: %w", err)
	}

	return &Snapshot{
		Resolver: hierarchy.NewResolver(distributors),
		OwnSales: totals,
	}, nil
}

// GetCommissions рассчитывает комиссию каждого дистрибьютора
func (s *Service) GetCommissions(ctx context.Context) ([]models.Commission, error) {
	snapshot, err := s.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	commissions, err := s.engine.Calculate(snapshot.Resolver, snapshot.OwnSales)
	if err != nil {
		s.logger.Error("ошибка расчета комиссий", zap.Error(err))
		return nil, fmt.Errorf("ошибка расчета комиссий: %w", err)
	}

	s.logger.Debug("комиссии рассчитаны",
		zap.Int("distributors", len(commissions)),
		zap.String("total", Total(commissions).String()))

	return commissions, nil
}
