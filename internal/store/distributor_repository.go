package store

import (
	"context"
	"errors"
	"fmt"

	"mlm-network/pkg/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const distributorColumns = `id, name, referrer_id, created_at`

// PostgresDistributorRepository реализует DistributorRepository для PostgreSQL
type PostgresDistributorRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewDistributorRepository создает новый репозиторий дистрибьюторов
func NewDistributorRepository(db *pgxpool.Pool, logger *zap.Logger) DistributorRepository {
	return &PostgresDistributorRepository{
		db:     db,
		logger: logger,
	}
}

// Create создает нового дистрибьютора, id и created_at назначает база
func (r *PostgresDistributorRepository) Create(ctx context.Context, distributor *models.Distributor) error {
	query := `
		INSERT INTO distributors (name, referrer_id)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query, distributor.Name, distributor.ReferrerID).
		Scan(&distributor.ID, &distributor.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.ErrReferrerNotFound
		}
		return fmt.Errorf("ошибка создания дистрибьютора: %w", err)
	}

	r.logger.Info("дистрибьютор создан в БД",
		zap.Int64("distributor_id", distributor.ID),
		zap.String("name", distributor.Name))

	return nil
}

// GetByID получает дистрибьютора по ID
func (r *PostgresDistributorRepository) GetByID(ctx context.Context, id int64) (*models.Distributor, error) {
	query := `SELECT ` + distributorColumns + ` FROM distributors WHERE id = $1`

	distributor := &models.Distributor{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&distributor.ID,
		&distributor.Name,
		&distributor.ReferrerID,
		&distributor.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDistributorNotFound
		}
		return nil, fmt.Errorf("ошибка получения дистрибьютора: %w", err)
	}

	return distributor, nil
}

// Exists проверяет существование дистрибьютора
func (r *PostgresDistributorRepository) Exists(ctx context.Context, id int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM distributors WHERE id = $1)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("ошибка проверки дистрибьютора: %w", err)
	}

	return exists, nil
}

// List получает всех дистрибьюторов, новые первыми
func (r *PostgresDistributorRepository) List(ctx context.Context) ([]*models.Distributor, error) {
	query := `SELECT ` + distributorColumns + ` FROM distributors ORDER BY created_at DESC, id DESC`
	return r.query(ctx, query)
}

// ListReferrals получает прямых рефералов в порядке создания
func (r *PostgresDistributorRepository) ListReferrals(ctx context.Context, referrerID int64) ([]*models.Distributor, error) {
	query := `SELECT ` + distributorColumns + ` FROM distributors WHERE referrer_id = $1 ORDER BY id ASC`
	return r.query(ctx, query, referrerID)
}

// Count подсчитывает количество дистрибьюторов
func (r *PostgresDistributorRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM distributors`).Scan(&count); err != nil {
		return 0, fmt.Errorf("ошибка подсчета дистрибьюторов: %w", err)
	}
	return count, nil
}

func (r *PostgresDistributorRepository) query(ctx context.Context, query string, args ...any) ([]*models.Distributor, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("ошибка получения дистрибьюторов", zap.Error(err))
		return nil, fmt.Errorf("ошибка получения дистрибьюторов: %w", err)
	}
	defer rows.Close()

	distributors := make([]*models.Distributor, 0)
	for rows.Next() {
		distributor := &models.Distributor{}
		if err := rows.Scan(
			&distributor.ID,
			&distributor.Name,
			&distributor.ReferrerID,
			&distributor.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования дистрибьютора: %w", err)
		}
		distributors = append(distributors, distributor)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения дистрибьюторов: %w", err)
	}

	return distributors, nil
}
