package commission

import (
	"fmt"

	"mlm-network/internal/hierarchy"
	"mlm-network/pkg/models"

	"github.com/shopspring/decimal"
)

// centPlaces количество знаков после запятой у денежных значений комиссии
const centPlaces = 2

// Engine рассчитывает комиссии по одной таблице ставок
type Engine struct {
	rates models.CommissionRates
}

// NewEngine создает движок расчета комиссий
func NewEngine(rates models.CommissionRates) (*Engine, error) {
	if rates.OwnRate.IsNegative() || rates.DownlineRate.IsNegative() {
		return nil, fmt.Errorf("%w: ставка комиссии не может быть отрицательной", models.ErrValidation)
	}
	if !rates.DownlineScope.IsValid() {
		return nil, fmt.Errorf("%w: неизвестная область даунлайна %q", models.ErrValidation, rates.DownlineScope)
	}
	return &Engine{rates: rates}, nil
}

// Rates возвращает таблицу ставок движка
func (e *Engine) Rates() models.CommissionRates {
	return e.rates
}

// Calculate возвращает по одной записи Commission на каждого дистрибьютора снимка,
// упорядоченные по id. ownSales содержит сумму продаж по id дистрибьютора.
func (e *Engine) Calculate(resolver *hierarchy.Resolver, ownSales map[int64]decimal.Decimal) ([]models.Commission, error) {
	downlineSales, err := e.downlineSales(resolver, ownSales)
	if err != nil {
		return nil, err
	}
	downlineCounts, err := e.downlineCounts(resolver)
	if err != nil {
		return nil, err
	}

	ids := resolver.IDs()
	commissions := make([]models.Commission, 0, len(ids))
	for _, id := range ids {
		distributor, _ := resolver.Get(id)
		own := ownSales[id]
		downline := downlineSales[id]
		ownCommission := e.OwnCommission(own)
		downlineCommission := e.DownlineCommission(downline)

		commissions = append(commissions, models.Commission{
			DistributorID:      id,
			DistributorName:    distributor.Name,
			OwnSales:           own,
			DownlineSales:      downline,
			OwnCommission:      ownCommission,
			DownlineCommission: downlineCommission,
			TotalCommission:    ownCommission.Add(downlineCommission),
			DownlineCount:      downlineCounts[id],
		})
	}

	return commissions, nil
}

// OwnCommission считает комиссию с личных продаж, округленную до копеек
func (e *Engine) OwnCommission(ownSales decimal.Decimal) decimal.Decimal {
	return ownSales.Mul(e.rates.OwnRate).Round(centPlaces)
}

// DownlineCommission считает комиссию с продаж даунлайна, округленную до копеек
func (e *Engine) DownlineCommission(downlineSales decimal.Decimal) decimal.Decimal {
	return downlineSales.Mul(e.rates.DownlineRate).Round(centPlaces)
}

// downlineSales суммирует продажи даунлайна каждого дистрибьютора в выбранной области
func (e *Engine) downlineSales(resolver *hierarchy.Resolver, ownSales map[int64]decimal.Decimal) (map[int64]decimal.Decimal, error) {
	if e.rates.DownlineScope == models.DownlineScopeDirect {
		totals := make(map[int64]decimal.Decimal)
		for _, id := range resolver.IDs() {
			sum := decimal.Zero
			for _, child := range resolver.DirectIDs(id) {
				sum = sum.Add(ownSales[child])
			}
			totals[id] = sum
		}
		return totals, nil
	}

	return hierarchy.Subtotals(resolver,
		func(id int64) decimal.Decimal { return ownSales[id] },
		decimal.Decimal.Add,
		decimal.Zero,
	)
}

// downlineCounts считает размер даунлайна каждого дистрибьютора в выбранной области
func (e *Engine) downlineCounts(resolver *hierarchy.Resolver) (map[int64]int, error) {
	if e.rates.DownlineScope == models.DownlineScopeDirect {
		counts := make(map[int64]int)
		for _, id := range resolver.IDs() {
			counts[id] = len(resolver.DirectIDs(id))
		}
		return counts, nil
	}

	return hierarchy.Subtotals(resolver,
		func(int64) int { return 1 },
		func(a, b int) int { return a + b },
		0,
	)
}

// Total суммирует итоговые комиссии
func Total(commissions []models.Commission) decimal.Decimal {
	total := decimal.Zero
	for _, c := range commissions {
		total = total.Add(c.TotalCommission)
	}
	return total
}
