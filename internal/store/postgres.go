package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mlm-network/internal/config"
	"mlm-network/pkg/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// pgForeignKeyViolation код SQLSTATE нарушения внешнего ключа
const pgForeignKeyViolation = "23503"

// Store представляет интерфейс для работы с хранилищем
type Store interface {
	Distributor() DistributorRepository
	Sale() SaleRepository
	Close() error
}

// DistributorRepository интерфейс для работы с дистрибьюторами
type DistributorRepository interface {
	Create(ctx context.Context, distributor *models.Distributor) error
	GetByID(ctx context.Context, id int64) (*models.Distributor, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]*models.Distributor, error)
	ListReferrals(ctx context.Context, referrerID int64) ([]*models.Distributor, error)
	Count(ctx context.Context) (int64, error)
}

// SaleRepository интерфейс для работы с продажами
type SaleRepository interface {
	Create(ctx context.Context, sale *models.Sale) error
	List(ctx context.Context) ([]*models.Sale, error)
	Summary(ctx context.Context) (*models.SalesSummary, error)
	TotalsByDistributor(ctx context.Context) (map[int64]decimal.Decimal, error)
}

// store реализует интерфейс Store поверх PostgreSQL
type store struct {
	db          *pgxpool.Pool
	logger      *zap.Logger
	distributor DistributorRepository
	sale        SaleRepository
}

// New создает хранилище согласно выбранному драйверу
func New(cfg *config.Config, logger *zap.Logger) (Store, error) {
	switch cfg.Database.Driver {
	case config.StorageDriverMemory:
		logger.Info("используется хранилище в памяти")
		return NewMemoryStore(), nil
	case config.StorageDriverPostgres:
		return NewStore(cfg, logger)
	default:
		return nil, fmt.Errorf("неизвестный драйвер хранилища: %s", cfg.Database.Driver)
	}
}

// NewStore создает новое подключение к базе данных
func NewStore(cfg *config.Config, logger *zap.Logger) (Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Создание пула подключений
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга DSN: %w", err)
	}

	// Настройка пула
	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	db, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к базе данных: %w", err)
	}

	// Проверка подключения
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка проверки подключения к базе данных: %w", err)
	}

	logger.Info("успешное подключение к базе данных PostgreSQL")

	return &store{
		db:          db,
		logger:      logger,
		distributor: NewDistributorRepository(db, logger),
		sale:        NewSaleRepository(db, logger),
	}, nil
}

// Distributor возвращает репозиторий дистрибьюторов
func (s *store) Distributor() DistributorRepository {
	return s.distributor
}

// Sale возвращает репозиторий продаж
func (s *store) Sale() SaleRepository {
	return s.sale
}

// Close закрывает подключение к базе данных
func (s *store) Close() error {
	s.logger.Info("закрытие подключения к базе данных")
	s.db.Close()
	return nil
}

// isForeignKeyViolation проверяет, что ошибка вызвана нарушением внешнего ключа
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}
