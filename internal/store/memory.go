package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"mlm-network/pkg/models"

	"github.com/shopspring/decimal"
)

// memoryStore хранит дистрибьюторов и продажи в памяти процесса.
// Каждая операция атомарна относительно остальных.
type memoryStore struct {
	mu           sync.RWMutex
	now          func() time.Time
	distributors []models.Distributor
	byID         map[int64]int
	sales        []models.Sale
	nextDistID   int64
	nextSaleID   int64

	distributor *memoryDistributorRepository
	sale        *memorySaleRepository
}

// NewMemoryStore создает пустое хранилище в памяти
func NewMemoryStore() Store {
	return newMemoryStore(time.Now)
}

func newMemoryStore(now func() time.Time) *memoryStore {
	s := &memoryStore{
		now:  now,
		byID: make(map[int64]int),
	}
	s.distributor = &memoryDistributorRepository{s: s}
	s.sale = &memorySaleRepository{s: s}
	return s
}

func (s *memoryStore) Distributor() DistributorRepository {
	return s.distributor
}

func (s *memoryStore) Sale() SaleRepository {
	return s.sale
}

func (s *memoryStore) Close() error {
	return nil
}

type memoryDistributorRepository struct {
	s *memoryStore
}

func (r *memoryDistributorRepository) Create(ctx context.Context, distributor *models.Distributor) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if distributor.ReferrerID != nil {
		if _, ok := r.s.byID[*distributor.ReferrerID]; !ok {
			return models.ErrReferrerNotFound
		}
	}

	r.s.nextDistID++
	distributor.ID = r.s.nextDistID
	distributor.CreatedAt = r.s.now()

	stored := *distributor
	if distributor.ReferrerID != nil {
		referrerID := *distributor.ReferrerID
		stored.ReferrerID = &referrerID
	}
	r.s.byID[stored.ID] = len(r.s.distributors)
	r.s.distributors = append(r.s.distributors, stored)

	return nil
}

func (r *memoryDistributorRepository) GetByID(ctx context.Context, id int64) (*models.Distributor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	idx, ok := r.s.byID[id]
	if !ok {
		return nil, models.ErrDistributorNotFound
	}
	return copyDistributor(r.s.distributors[idx]), nil
}

func (r *memoryDistributorRepository) Exists(ctx context.Context, id int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.byID[id]
	return ok, nil
}

func (r *memoryDistributorRepository) List(ctx context.Context) ([]*models.Distributor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	result := make([]*models.Distributor, 0, len(r.s.distributors))
	for _, d := range r.s.distributors {
		result = append(result, copyDistributor(d))
	}
	r.s.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (r *memoryDistributorRepository) ListReferrals(ctx context.Context, referrerID int64) ([]*models.Distributor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	// distributors хранятся в порядке возрастания id
	result := make([]*models.Distributor, 0)
	for _, d := range r.s.distributors {
		if d.ReferrerID != nil && *d.ReferrerID == referrerID {
			result = append(result, copyDistributor(d))
		}
	}
	return result, nil
}

func (r *memoryDistributorRepository) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return int64(len(r.s.distributors)), nil
}

type memorySaleRepository struct {
	s *memoryStore
}

func (r *memorySaleRepository) Create(ctx context.Context, sale *models.Sale) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.byID[sale.DistributorID]; !ok {
		return models.ErrDistributorNotFound
	}

	r.s.nextSaleID++
	sale.ID = r.s.nextSaleID
	sale.CreatedAt = r.s.now()
	r.s.sales = append(r.s.sales, *sale)

	return nil
}

func (r *memorySaleRepository) List(ctx context.Context) ([]*models.Sale, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	result := make([]*models.Sale, 0, len(r.s.sales))
	for _, sale := range r.s.sales {
		sale := sale
		result = append(result, &sale)
	}
	r.s.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (r *memorySaleRepository) Summary(ctx context.Context) (*models.SalesSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	summary := &models.SalesSummary{TotalAmount: decimal.Zero}
	for _, sale := range r.s.sales {
		summary.Count++
		summary.TotalAmount = summary.TotalAmount.Add(sale.Amount)
	}
	return summary, nil
}

func (r *memorySaleRepository) TotalsByDistributor(ctx context.Context) (map[int64]decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	totals := make(map[int64]decimal.Decimal)
	for _, sale := range r.s.sales {
		totals[sale.DistributorID] = totals[sale.DistributorID].Add(sale.Amount)
	}
	return totals, nil
}

func copyDistributor(d models.Distributor) *models.Distributor {
	c := d
	if d.ReferrerID != nil {
		referrerID := *d.ReferrerID
		c.ReferrerID = &referrerID
	}
	return &c
}
