package sale

import (
	"context"
	"sync"
	"testing"
	"time"

	"mlm-network/internal/store"
	"mlm-network/internal/validation"
	"mlm-network/pkg/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingNotifier struct {
	mu    sync.Mutex
	sales []*models.Sale
}

func (n *recordingNotifier) DistributorCreated(*models.Distributor) {}

func (n *recordingNotifier) SaleCreated(sale *models.Sale) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sales = append(n.sales, sale)
}

func setup(t *testing.T) (*Service, store.Store, *recordingNotifier, int64) {
	t.Helper()
	st := store.NewMemoryStore()
	d := &models.Distributor{Name: "Анна"}
	require.NoError(t, st.Distributor().Create(context.Background(), d))

	n := &recordingNotifier{}
	return NewService(st, validation.New(), n, zap.NewNop()), st, n, d.ID
}

func TestCreateSale(t *testing.T) {
	svc, _, n, distributorID := setup(t)
	date := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)

	sale, err := svc.CreateSale(context.Background(), &models.CreateSaleRequest{
		DistributorID: distributorID,
		ProductName:   "  Крем  ",
		Quantity:      2,
		Amount:        decimal.RequireFromString("123.456789"),
		Date:          date,
	})
	require.NoError(t, err)

	assert.NotZero(t, sale.ID)
	assert.False(t, sale.CreatedAt.IsZero())
	assert.Equal(t, "Крем", sale.ProductName)
	assert.Equal(t, "123.456789", sale.Amount.String(), "сумма хранится с исходной точностью")
	assert.True(t, sale.Date.Equal(date))
	require.Len(t, n.sales, 1)
	assert.Equal(t, sale.ID, n.sales[0].ID)
}

func TestCreateSaleUnknownDistributor(t *testing.T) {
	svc, st, n, _ := setup(t)

	_, err := svc.CreateSale(context.Background(), &models.CreateSaleRequest{
		DistributorID: 999,
		ProductName:   "Крем",
		Quantity:      1,
		Amount:        decimal.NewFromInt(10),
		Date:          time.Now(),
	})
	assert.ErrorIs(t, err, models.ErrDistributorNotFound)

	sales, err := st.Sale().List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sales, "строка продажи не должна быть вставлена")
	assert.Empty(t, n.sales)
}

func TestCreateSaleValidation(t *testing.T) {
	svc, st, _, distributorID := setup(t)

	tests := []struct {
		name string
		req  models.CreateSaleRequest
	}{
		{name: "нулевая сумма", req: models.CreateSaleRequest{DistributorID: distributorID, ProductName: "X", Quantity: 1, Amount: decimal.Zero, Date: time.Now()}},
		{name: "нулевое количество", req: models.CreateSaleRequest{DistributorID: distributorID, ProductName: "X", Quantity: 0, Amount: decimal.NewFromInt(1), Date: time.Now()}},
		{name: "пустой товар", req: models.CreateSaleRequest{DistributorID: distributorID, ProductName: "", Quantity: 1, Amount: decimal.NewFromInt(1), Date: time.Now()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateSale(context.Background(), &tt.req)
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}

	summary, err := st.Sale().Summary(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Count)
}

func TestListSales(t *testing.T) {
	svc, _, _, distributorID := setup(t)
	ctx := context.Background()

	empty, err := svc.ListSales(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, product := range []string{"старая", "новая", "средняя"} {
		offset := map[int]int{0: 0, 1: 10, 2: 5}[i]
		_, err := svc.CreateSale(ctx, &models.CreateSaleRequest{
			DistributorID: distributorID,
			ProductName:   product,
			Quantity:      1,
			Amount:        decimal.NewFromInt(1),
			Date:          base.AddDate(0, 0, offset),
		})
		require.NoError(t, err)
	}

	sales, err := svc.ListSales(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 3)
	assert.Equal(t, "новая", sales[0].ProductName)
	assert.Equal(t, "средняя", sales[1].ProductName)
	assert.Equal(t, "старая", sales[2].ProductName)
}
