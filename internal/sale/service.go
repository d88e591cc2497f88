package sale

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mlm-network/internal/notify"
	"mlm-network/internal/store"
	"mlm-network/internal/validation"
	"mlm-network/pkg/models"

	"go.uber.org/zap"
)

// Service представляет сервис для работы с продажами
type Service struct {
	store     store.Store
	validator *validation.Validator
	notifier  notify.Notifier
	logger    *zap.Logger
}

// NewService создает новый сервис продаж
func NewService(store store.Store, validator *validation.Validator, notifier notify.Notifier, logger *zap.Logger) *Service {
	return &Service{
		store:     store,
		validator: validator,
		notifier:  notifier,
		logger:    logger,
	}
}

// CreateSale регистрирует продажу существующего дистрибьютора.
// Сумма сохраняется с исходной точностью.
func (s *Service) CreateSale(ctx context.Context, req *models.CreateSaleRequest) (*models.Sale, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	// Проверяем, существует ли дистрибьютор
	exists, err := s.store.Distributor().Exists(ctx, req.DistributorID)
	if err != nil {
		return nil, fmt.Errorf("ошибка проверки дистрибьютора: %w", err)
	}
	if !exists {
		s.logger.Warn("продажа для несуществующего дистрибьютора", zap.Int64("distributor_id", req.DistributorID))
		return nil, fmt.Errorf("%w: id %d", models.ErrDistributorNotFound, req.DistributorID)
	}

	sale := &models.Sale{
		DistributorID: req.DistributorID,
		ProductName:   strings.TrimSpace(req.ProductName),
		Quantity:      req.Quantity,
		Amount:        req.Amount,
		Date:          req.Date,
	}

	if err := s.store.Sale().Create(ctx, sale); err != nil {
		if errors.Is(err, models.ErrDistributorNotFound) {
			return nil, fmt.Errorf("%w: id %d", models.ErrDistributorNotFound, req.DistributorID)
		}
		return nil, fmt.Errorf("ошибка создания продажи: %w", err)
	}

	s.logger.Info("зарегистрирована продажа",
		zap.Int64("sale_id", sale.ID),
		zap.Int64("distributor_id", sale.DistributorID),
		zap.String("product", sale.ProductName),
		zap.Int("quantity", sale.Quantity),
		zap.String("amount", sale.Amount.String()))

	s.notifier.SaleCreated(sale)

	return sale, nil
}

// ListSales возвращает все продажи, последние по дате первыми
func (s *Service) ListSales(ctx context.Context) ([]*models.Sale, error) {
	sales, err := s.store.Sale().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения продаж: %w", err)
	}
	return sales, nil
}
