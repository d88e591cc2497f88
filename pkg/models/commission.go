package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DownlineScope определяет глубину даунлайна, учитываемую при расчете комиссии
type DownlineScope string

const (
	// DownlineScopeTransitive учитывает всех потомков на любой глубине
	DownlineScopeTransitive DownlineScope = "transitive"
	// DownlineScopeDirect учитывает только прямых рефералов
	DownlineScopeDirect DownlineScope = "direct"
)

// IsValid проверяет валидность области даунлайна
func (s DownlineScope) IsValid() bool {
	switch s {
	case DownlineScopeTransitive, DownlineScopeDirect:
		return true
	default:
		return false
	}
}

// CommissionRates содержит таблицу ставок комиссии
type CommissionRates struct {
	OwnRate       decimal.Decimal `json:"ownRate"`
	DownlineRate  decimal.Decimal `json:"downlineRate"`
	DownlineScope DownlineScope   `json:"downlineScope"`
}

// DefaultCommissionRates возвращает ставки по умолчанию: 10% с личных продаж, 2% со всего даунлайна
func DefaultCommissionRates() CommissionRates {
	return CommissionRates{
		OwnRate:       decimal.RequireFromString("0.10"),
		DownlineRate:  decimal.RequireFromString("0.02"),
		DownlineScope: DownlineScopeTransitive,
	}
}

// Commission представляет рассчитанную комиссию дистрибьютора
type Commission struct {
	DistributorID      int64           `json:"distributorId"`
	DistributorName    string          `json:"distributorName"`
	OwnSales           decimal.Decimal `json:"ownSales"`
	DownlineSales      decimal.Decimal `json:"downlineSales"`
	OwnCommission      decimal.Decimal `json:"ownCommission"`
	DownlineCommission decimal.Decimal `json:"downlineCommission"`
	TotalCommission    decimal.Decimal `json:"totalCommission"`
	DownlineCount      int             `json:"downlineCount"`
}

// DistributorWithStats представляет дистрибьютора с его показателями
type DistributorWithStats struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	ReferrerID       *int64          `json:"referrerId"`
	DirectSales      decimal.Decimal `json:"directSales"`
	EarnedCommission decimal.Decimal `json:"earnedCommission"`
	DownlineCount    int             `json:"downlineCount"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// DownlineHierarchy представляет узел дерева даунлайна
type DownlineHierarchy struct {
	Distributor Distributor          `json:"distributor"`
	Children    []*DownlineHierarchy `json:"children"`
}

// Size возвращает количество узлов в дереве, включая корень
func (h *DownlineHierarchy) Size() int {
	n := 1
	for _, child := range h.Children {
		n += child.Size()
	}
	return n
}

// DashboardStats представляет сводку по всей сети
type DashboardStats struct {
	TotalSales           int64           `json:"totalSales"`
	TotalSalesAmount     decimal.Decimal `json:"totalSalesAmount"`
	TotalDistributors    int64           `json:"totalDistributors"`
	TotalCommissionsPaid decimal.Decimal `json:"totalCommissionsPaid"`
}
