package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Distributor представляет участника реферальной сети
type Distributor struct {
	ID         int64     `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	ReferrerID *int64    `json:"referrerId" db:"referrer_id"` // nil для дистрибьютора верхнего уровня
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// IsTopLevel проверяет, что у дистрибьютора нет аплайна
func (d *Distributor) IsTopLevel() bool {
	return d.ReferrerID == nil
}

// Sale представляет продажу, закрепленную за дистрибьютором
type Sale struct {
	ID            int64           `json:"id" db:"id"`
	DistributorID int64           `json:"distributorId" db:"distributor_id"`
	ProductName   string          `json:"productName" db:"product_name"`
	Quantity      int             `json:"quantity" db:"quantity"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	Date          time.Time       `json:"date" db:"date"`            // бизнес-дата продажи
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"` // время вставки записи
}

// CreateDistributorRequest представляет запрос на создание дистрибьютора
type CreateDistributorRequest struct {
	Name       string `json:"name" validate:"required,notblank"`
	ReferrerID *int64 `json:"referrerId" validate:"omitempty,gt=0"`
}

// CreateSaleRequest представляет запрос на регистрацию продажи
type CreateSaleRequest struct {
	DistributorID int64           `json:"distributorId" validate:"required,gt=0"`
	ProductName   string          `json:"productName" validate:"required,notblank"`
	Quantity      int             `json:"quantity" validate:"gt=0"`
	Amount        decimal.Decimal `json:"amount" validate:"gt=0"`
	Date          time.Time       `json:"date" validate:"required"`
}

// SalesSummary содержит агрегаты по всем продажам
type SalesSummary struct {
	Count       int64           `json:"count"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}
