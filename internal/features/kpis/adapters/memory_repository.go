package adapters

import (
	"context"
	"sort"
	"sync"
	"time"

	"digo-dashboard/internal/features/kpis/domain"
	"digo-dashboard/internal/features/kpis/ports"
)

// MemoryKpiRepository is a map-backed ports.KpiRepository for tests.
type MemoryKpiRepository struct {
	mu     sync.RWMutex
	nextID int
	kpis   map[int]domain.Kpi
}

func NewMemoryKpiRepository() *MemoryKpiRepository {
	return &MemoryKpiRepository{nextID: 1, kpis: make(map[int]domain.Kpi)}
}

func (r *MemoryKpiRepository) Create(_ context.Context, kpi *domain.Kpi) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kpi.ID = r.nextID
	r.nextID++
	if kpi.CreatedAt.IsZero() {
		kpi.CreatedAt = time.Now()
	}
	r.kpis[kpi.ID] = *kpi
	return nil
}

func (r *MemoryKpiRepository) GetByID(_ context.Context, id int) (*domain.Kpi, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kpi, ok := r.kpis[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &kpi, nil
}

func (r *MemoryKpiRepository) List(_ context.Context, filter ports.KpiFilter) ([]domain.Kpi, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Kpi{}
	for _, kpi := range r.kpis {
		if filter.CompanyID != nil && kpi.CompanyID != *filter.CompanyID {
			continue
		}
		if filter.AreaID != nil && kpi.AreaID != *filter.AreaID {
			continue
		}
		out = append(out, kpi)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryKpiRepository) Update(_ context.Context, kpi *domain.Kpi) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.kpis[kpi.ID]; !ok {
		return domain.ErrNotFound
	}
	r.kpis[kpi.ID] = *kpi
	return nil
}

func (r *MemoryKpiRepository) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.kpis[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.kpis, id)
	return nil
}

// MemoryKpiValueRepository is a map-backed ports.KpiValueRepository for
// tests.
type MemoryKpiValueRepository struct {
	mu     sync.RWMutex
	nextID int
	values map[int]domain.KpiValue
}

func NewMemoryKpiValueRepository() *MemoryKpiValueRepository {
	return &MemoryKpiValueRepository{nextID: 1, values: make(map[int]domain.KpiValue)}
}

func (r *MemoryKpiValueRepository) Create(_ context.Context, value *domain.KpiValue) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	value.ID = r.nextID
	r.nextID++
	if value.Date.IsZero() {
		value.Date = time.Now()
	}
	r.values[value.ID] = *value
	return nil
}

func (r *MemoryKpiValueRepository) ListByKpi(_ context.Context, kpiID int) ([]domain.KpiValue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.KpiValue{}
	for _, v := range r.values {
		if v.KpiID == kpiID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *MemoryKpiValueRepository) LatestByKpi(ctx context.Context, kpiID int) (*domain.KpiValue, error) {
	values, err := r.ListByKpi(ctx, kpiID)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, domain.ErrNotFound
	}
	return &values[0], nil
}
