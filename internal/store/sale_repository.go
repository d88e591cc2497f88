package store

import (
	"context"
	"fmt"

	"mlm-network/pkg/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PostgresSaleRepository реализует SaleRepository для PostgreSQL.
// Суммы передаются в БД и читаются из нее как текст, чтобы numeric не терял точность.
type PostgresSaleRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewSaleRepository создает новый репозиторий продаж
func NewSaleRepository(db *pgxpool.Pool, logger *zap.Logger) SaleRepository {
	return &PostgresSaleRepository{
		db:     db,
		logger: logger,
	}
}

// Create создает новую продажу
func (r *PostgresSaleRepository) Create(ctx context.Context, sale *models.Sale) error {
	query := `
		INSERT INTO sales (distributor_id, product_name, quantity, amount, date)
		VALUES ($1, $2, $3, $4::numeric, $5)
		RETURNING id, created_at`

	err := r.db.QueryRow(
		ctx, query,
		sale.DistributorID,
		sale.ProductName,
		sale.Quantity,
		sale.Amount.String(),
		sale.Date,
	).Scan(&sale.ID, &sale.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.ErrDistributorNotFound
		}
		return fmt.Errorf("ошибка создания продажи: %w", err)
	}

	r.logger.Info("продажа создана в БД",
		zap.Int64("sale_id", sale.ID),
		zap.Int64("distributor_id", sale.DistributorID),
		zap.String("amount", sale.Amount.String()))

	return nil
}

// List получает все продажи, последние по дате первыми
func (r *PostgresSaleRepository) List(ctx context.Context) ([]*models.Sale, error) {
	query := `
		SELECT id, distributor_id, product_name, quantity, amount::text, date, created_at
		FROM sales
		ORDER BY date DESC, id DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("ошибка получения продаж", zap.Error(err))
		return nil, fmt.Errorf("ошибка получения продаж: %w", err)
	}
	defer rows.Close()

	sales := make([]*models.Sale, 0)
	for rows.Next() {
		sale := &models.Sale{}
		var amount string
		if err := rows.Scan(
			&sale.ID,
			&sale.DistributorID,
			&sale.ProductName,
			&sale.Quantity,
			&amount,
			&sale.Date,
			&sale.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования продажи: %w", err)
		}
		if sale.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("некорректная сумма продажи %d: %w", sale.ID, err)
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения продаж: %w", err)
	}

	return sales, nil
}

// Summary подсчитывает количество и сумму всех продаж
func (r *PostgresSaleRepository) Summary(ctx context.Context) (*models.SalesSummary, error) {
	query := `SELECT COUNT(*), COALESCE(SUM(amount), 0)::text FROM sales`

	summary := &models.SalesSummary{}
	var total string
	if err := r.db.QueryRow(ctx, query).Scan(&summary.Count, &total); err != nil {
		return nil, fmt.Errorf("ошибка получения сводки продаж: %w", err)
	}

	amount, err := decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("некорректная сумма продаж: %w", err)
	}
	summary.TotalAmount = amount

	return summary, nil
}

// TotalsByDistributor возвращает сумму продаж по каждому дистрибьютору
func (r *PostgresSaleRepository) TotalsByDistributor(ctx context.Context) (map[int64]decimal.Decimal, error) {
	query := `
		SELECT distributor_id, SUM(amount)::text
		FROM sales
		GROUP BY distributor_id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка агрегации продаж: %w", err)
	}
	defer rows.Close()

	totals := make(map[int64]decimal.Decimal)
	for rows.Next() {
		var (
			distributorID int64
			total         string
		)
		if err := rows.Scan(&distributorID, &total); err != nil {
			return nil, fmt.Errorf("ошибка сканирования суммы продаж: %w", err)
		}
		amount, err := decimal.NewFromString(total)
		if err != nil {
			return nil, fmt.Errorf("некорректная сумма продаж дистрибьютора %d: %w", distributorID, err)
		}
		totals[distributorID] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения сумм продаж: %w", err)
	}

	return totals, nil
}
