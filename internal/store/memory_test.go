package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"mlm-network/pkg/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedClock возвращает часы, которые сдвигаются на минуту при каждом вызове
func fixedClock() func() time.Time {
	t := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func int64Ptr(v int64) *int64 {
	return &v
}

func TestMemoryDistributorCreate(t *testing.T) {
	ctx := context.Background()
	s := newMemoryStore(fixedClock())

	top := &models.Distributor{Name: "Анна"}
	require.NoError(t, s.Distributor().Create(ctx, top))
	assert.Equal(t, int64(1), top.ID)
	assert.False(t, top.CreatedAt.IsZero())
	assert.True(t, top.IsTopLevel())

	child := &models.Distributor{Name: "Борис", ReferrerID: int64Ptr(top.ID)}
	require.NoError(t, s.Distributor().Create(ctx, child))
	assert.Equal(t, int64(2), child.ID)

	got, err := s.Distributor().GetByID(ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, "Борис", got.Name)
	require.NotNil(t, got.ReferrerID)
	assert.Equal(t, top.ID, *got.ReferrerID)
}

func TestMemoryDistributorCreateUnknownReferrer(t *testing.T) {
	ctx := context.Background()
	s := newMemoryStore(fixedClock())

	err := s.Distributor().Create(ctx, &models.Distributor{Name: "Вера", ReferrerID: int64Ptr(42)})
	assert.ErrorIs(t, err, models.ErrReferrerNotFound)

	count, err := s.Distributor().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "неудачное создание не должно оставлять запись")
}

func TestMemoryDistributorListOrdering(t *testing.T) {
	ctx := context.Background()
	s := newMemoryStore(fixedClock())

	a := &models.Distributor{Name: "A"}
	require.NoError(t, s.Distributor().Create(ctx, a))
	b := &models.Distributor{Name: "B", ReferrerID: int64Ptr(a.ID)}
	require.NoError(t, s.Distributor().Create(ctx, b))
	c := &models.Distributor{Name: "C", ReferrerID: int64Ptr(a.ID)}
	require.NoError(t, s.Distributor().Create(ctx, c))

	all, err := s.Distributor().List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"C", "B", "A"}, []string{all[0].Name, all[1].Name, all[2].Name})

	referrals, err := s.Distributor().ListReferrals(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, referrals, 2)
	assert.Equal(t, b.ID, referrals[0].ID)
	assert.Equal(t, c.ID, referrals[1].ID)

	none, err := s.Distributor().ListReferrals(ctx, c.ID)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestMemoryDistributorGetByIDNotFound(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Distributor().GetByID(context.Background(), 7)
	assert.ErrorIs(t, err, models.ErrDistributorNotFound)

	exists, err := s.Distributor().Exists(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryDistributorReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	d := &models.Distributor{Name: "Оригинал"}
	require.NoError(t, s.Distributor().Create(ctx, d))
	d.Name = "Изменено снаружи"

	got, err := s.Distributor().GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Оригинал", got.Name)
}

func TestMemorySales(t *testing.T) {
	ctx := context.Background()
	s := newMemoryStore(fixedClock())

	a := &models.Distributor{Name: "A"}
	require.NoError(t, s.Distributor().Create(ctx, a))
	b := &models.Distributor{Name: "B"}
	require.NoError(t, s.Distributor().Create(ctx, b))

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	sales := []*models.Sale{
		{DistributorID: a.ID, ProductName: "Крем", Quantity: 1, Amount: decimal.RequireFromString("100.10"), Date: day},
		{DistributorID: a.ID, ProductName: "Шампунь", Quantity: 2, Amount: decimal.RequireFromString("0.20"), Date: day.AddDate(0, 0, 2)},
		{DistributorID: b.ID, ProductName: "Мыло", Quantity: 3, Amount: decimal.RequireFromString("50.005"), Date: day.AddDate(0, 0, 1)},
	}
	for _, sale := range sales {
		require.NoError(t, s.Sale().Create(ctx, sale))
		assert.NotZero(t, sale.ID)
		assert.False(t, sale.CreatedAt.IsZero())
	}

	list, err := s.Sale().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Шампунь", list[0].ProductName)
	assert.Equal(t, "Мыло", list[1].ProductName)
	assert.Equal(t, "Крем", list[2].ProductName)

	summary, err := s.Sale().Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.Count)
	assert.Equal(t, "150.305", summary.TotalAmount.String())

	totals, err := s.Sale().TotalsByDistributor(ctx)
	require.NoError(t, err)
	assert.Equal(t, "100.3", totals[a.ID].String())
	assert.Equal(t, "50.005", totals[b.ID].String())
}

func TestMemorySaleUnknownDistributor(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	err := s.Sale().Create(ctx, &models.Sale{DistributorID: 99, ProductName: "X", Quantity: 1, Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, models.ErrDistributorNotFound)

	summary, err := s.Sale().Summary(ctx)
	require.NoError(t, err)
	assert.Zero(t, summary.Count)
	assert.True(t, summary.TotalAmount.IsZero())
}

func TestMemoryStoreCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewMemoryStore()
	_, err := s.Distributor().List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsForeignKeyViolation(t *testing.T) {
	fk := &pgconn.PgError{Code: pgForeignKeyViolation}
	assert.True(t, isForeignKeyViolation(fk))
	assert.True(t, isForeignKeyViolation(fmt.Errorf("обертка: %w", fk)))
	assert.False(t, isForeignKeyViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isForeignKeyViolation(errors.New("другая ошибка")))
}
