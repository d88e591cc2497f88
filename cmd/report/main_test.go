package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"mlm-network/internal/commission"
	"mlm-network/internal/store"
	"mlm-network/pkg/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seededStore(t *testing.T) (store.Store, *models.Distributor) {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemoryStore()

	a := &models.Distributor{Name: "A"}
	require.NoError(t, st.Distributor().Create(ctx, a))
	b := &models.Distributor{Name: "B", ReferrerID: &a.ID}
	require.NoError(t, st.Distributor().Create(ctx, b))

	require.NoError(t, st.Sale().Create(ctx, &models.Sale{
		DistributorID: b.ID,
		ProductName:   "Крем",
		Quantity:      1,
		Amount:        decimal.NewFromInt(100),
		Date:          time.Now(),
	}))
	return st, a
}

func runReport(t *testing.T, st store.Store, report string, id int64) ([]byte, error) {
	t.Helper()
	engine, err := commission.NewEngine(models.DefaultCommissionRates())
	require.NoError(t, err)

	var buf bytes.Buffer
	err = run(context.Background(), &buf, st, engine, report, id, zap.NewNop())
	return buf.Bytes(), err
}

func TestReports(t *testing.T) {
	st, a := seededStore(t)

	out, err := runReport(t, st, "dashboard", 0)
	require.NoError(t, err)
	var stats models.DashboardStats
	require.NoError(t, json.Unmarshal(out, &stats))
	assert.Equal(t, int64(2), stats.TotalDistributors)
	// 10 с личных продаж B и 2 с даунлайна A
	assert.True(t, stats.TotalCommissionsPaid.Equal(decimal.NewFromInt(12)), stats.TotalCommissionsPaid.String())

	out, err = runReport(t, st, "commissions", 0)
	require.NoError(t, err)
	var commissions []models.Commission
	require.NoError(t, json.Unmarshal(out, &commissions))
	assert.Len(t, commissions, 2)

	out, err = runReport(t, st, "stats", 0)
	require.NoError(t, err)
	var withStats []models.DistributorWithStats
	require.NoError(t, json.Unmarshal(out, &withStats))
	assert.Len(t, withStats, 2)

	out, err = runReport(t, st, "tree", a.ID)
	require.NoError(t, err)
	var tree models.DownlineHierarchy
	require.NoError(t, json.Unmarshal(out, &tree))
	assert.Equal(t, a.ID, tree.Distributor.ID)
	assert.Len(t, tree.Children, 1)
}

func TestReportErrors(t *testing.T) {
	st, _ := seededStore(t)

	tests := []struct {
		name   string
		report string
		id     int64
	}{
		{name: "неизвестный отчет", report: "payouts"},
		{name: "дерево без id", report: "tree"},
		{name: "дерево несуществующего", report: "tree", id: 404},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runReport(t, st, tt.report, tt.id)
			assert.Error(t, err)
		})
	}
}
