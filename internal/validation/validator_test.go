package validation

import (
	"testing"
	"time"

	"mlm-network/pkg/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidateCreateDistributorRequest(t *testing.T) {
	v := New()
	zero := int64(0)
	one := int64(1)

	tests := []struct {
		name    string
		req     models.CreateDistributorRequest
		wantErr string
	}{
		{name: "верхний уровень", req: models.CreateDistributorRequest{Name: "Анна"}},
		{name: "с реферером", req: models.CreateDistributorRequest{Name: "Анна", ReferrerID: &one}},
		{name: "пустое имя", req: models.CreateDistributorRequest{Name: ""}, wantErr: "name"},
		{name: "имя из пробелов", req: models.CreateDistributorRequest{Name: "   "}, wantErr: "name"},
		{name: "нулевой реферер", req: models.CreateDistributorRequest{Name: "Анна", ReferrerID: &zero}, wantErr: "referrerId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.req)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, models.ErrValidation)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateCreateSaleRequest(t *testing.T) {
	v := New()
	valid := func() models.CreateSaleRequest {
		return models.CreateSaleRequest{
			DistributorID: 1,
			ProductName:   "Крем",
			Quantity:      2,
			Amount:        decimal.RequireFromString("19.99"),
			Date:          time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		}
	}

	tests := []struct {
		name    string
		mutate  func(r *models.CreateSaleRequest)
		wantErr string
	}{
		{name: "корректная продажа", mutate: func(r *models.CreateSaleRequest) {}},
		{name: "копеечная сумма", mutate: func(r *models.CreateSaleRequest) { r.Amount = decimal.RequireFromString("0.01") }},
		{name: "нулевая сумма", mutate: func(r *models.CreateSaleRequest) { r.Amount = decimal.Zero }, wantErr: "amount"},
		{name: "отрицательная сумма", mutate: func(r *models.CreateSaleRequest) { r.Amount = decimal.NewFromInt(-5) }, wantErr: "amount"},
		{name: "нулевое количество", mutate: func(r *models.CreateSaleRequest) { r.Quantity = 0 }, wantErr: "quantity"},
		{name: "отрицательное количество", mutate: func(r *models.CreateSaleRequest) { r.Quantity = -1 }, wantErr: "quantity"},
		{name: "пустой товар", mutate: func(r *models.CreateSaleRequest) { r.ProductName = "" }, wantErr: "productName"},
		{name: "без дистрибьютора", mutate: func(r *models.CreateSaleRequest) { r.DistributorID = 0 }, wantErr: "distributorId"},
		{name: "без даты", mutate: func(r *models.CreateSaleRequest) { r.Date = time.Time{} }, wantErr: "date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(&req)
			err := v.Struct(req)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, models.ErrValidation)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
