package distributor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mlm-network/internal/commission"
	"mlm-network/internal/hierarchy"
	"mlm-network/internal/notify"
	"mlm-network/internal/store"
	"mlm-network/internal/validation"
	"mlm-network/pkg/models"

	"go.uber.org/zap"
)

// Service представляет сервис для управления реферальной сетью дистрибьюторов
type Service struct {
	repo        store.DistributorRepository
	commissions *commission.Service
	validator   *validation.Validator
	notifier    notify.Notifier
	logger      *zap.Logger
}

// NewService создает новый сервис дистрибьюторов
func NewService(repo store.DistributorRepository, commissions *commission.Service, validator *validation.Validator, notifier notify.Notifier, logger *zap.Logger) *Service {
	return &Service{
		repo:        repo,
		commissions: commissions,
		validator:   validator,
		notifier:    notifier,
		logger:      logger,
	}
}

// CreateDistributor создает дистрибьютора, проверяя существование реферера
func (s *Service) CreateDistributor(ctx context.Context, req *models.CreateDistributorRequest) (*models.Distributor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	// Проверяем, что реферер существует
	if req.ReferrerID != nil {
		exists, err := s.repo.Exists(ctx, *req.ReferrerID)
		if err != nil {
			return nil, fmt.Errorf("ошибка проверки реферера: %w", err)
		}
		if !exists {
			s.logger.Warn("реферер не найден", zap.Int64("referrer_id", *req.ReferrerID))
			return nil, fmt.Errorf("%w: id %d", models.ErrReferrerNotFound, *req.ReferrerID)
		}
	}

	distributor := &models.Distributor{
		Name:       strings.TrimSpace(req.Name),
		ReferrerID: req.ReferrerID,
	}

	if err := s.repo.Create(ctx, distributor); err != nil {
		if errors.Is(err, models.ErrReferrerNotFound) {
			return nil, fmt.Errorf("%w: id %d", models.ErrReferrerNotFound, *req.ReferrerID)
		}
		return nil, fmt.Errorf("ошибка создания дистрибьютора: %w", err)
	}

	fields := []zap.Field{
		zap.Int64("distributor_id", distributor.ID),
		zap.String("name", distributor.Name),
	}
	if distributor.ReferrerID != nil {
		fields = append(fields, zap.Int64("referrer_id", *distributor.ReferrerID))
	}
	s.logger.Info("создан новый дистрибьютор", fields...)

	s.notifier.DistributorCreated(distributor)

	return distributor, nil
}

// ListDistributors возвращает всех дистрибьюторов, новые первыми
func (s *Service) ListDistributors(ctx context.Context) ([]*models.Distributor, error) {
	distributors, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения дистрибьюторов: %w", err)
	}
	return distributors, nil
}

// ListDistributorsWithStats возвращает дистрибьюторов с личными продажами,
// заработанной комиссией и размером даунлайна по действующей политике
func (s *Service) ListDistributorsWithStats(ctx context.Context) ([]models.DistributorWithStats, error) {
	snapshot, err := s.commissions.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	commissions, err := s.commissions.Engine().Calculate(snapshot.Resolver, snapshot.OwnSales)
	if err != nil {
		return nil, fmt.Errorf("ошибка расчета показателей дистрибьюторов: %w", err)
	}

	result := make([]models.DistributorWithStats, 0, len(commissions))
	for _, c := range commissions {
		d, _ := snapshot.Resolver.Get(c.DistributorID)
		result = append(result, models.DistributorWithStats{
			ID:               d.ID,
			Name:             d.Name,
			ReferrerID:       d.ReferrerID,
			DirectSales:      c.OwnSales,
			EarnedCommission: c.TotalCommission,
			DownlineCount:    c.DownlineCount,
			CreatedAt:        d.CreatedAt,
		})
	}

	return result, nil
}

// GetDownlineHierarchy строит дерево даунлайна дистрибьютора.
// Для несуществующего дистрибьютора возвращает nil без ошибки.
func (s *Service) GetDownlineHierarchy(ctx context.Context, distributorID int64) (*models.DownlineHierarchy, error) {
	distributors, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения дистрибьюторов: %w", err)
	}

	tree, err := hierarchy.NewResolver(distributors).Tree(distributorID)
	if err != nil {
		s.logger.Error("ошибка построения дерева даунлайна",
			zap.Int64("distributor_id", distributorID),
			zap.Error(err))
		return nil, fmt.Errorf("ошибка построения дерева даунлайна: %w", err)
	}

	return tree, nil
}
