package adapters

import (
	"context"
	"sort"
	"strings"
	"sync"

	kpidomain "digo-dashboard/internal/features/kpis/domain"
	"digo-dashboard/internal/features/sales/domain"
)

// MemorySalesRepository is an in memory ports.SalesRepository for tests.
type MemorySalesRepository struct {
	mu     sync.Mutex
	nextID int
	kpis   map[int]kpidomain.Kpi
	values map[int]kpidomain.KpiValue
}

func NewMemorySalesRepository() *MemorySalesRepository {
	return &MemorySalesRepository{
		nextID: 1,
		kpis:   map[int]kpidomain.Kpi{},
		values: map[int]kpidomain.KpiValue{},
	}
}

// SeedKpi registers a KPI so FindSalesKpi can locate it.
func (r *MemorySalesRepository) SeedKpi(kpi kpidomain.Kpi) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kpis[kpi.ID] = kpi
}

func (r *MemorySalesRepository) FindSalesKpi(_ context.Context, companyID int) (*kpidomain.Kpi, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]int, 0, len(r.kpis))
	for id := range r.kpis {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		kpi := r.kpis[id]
		if kpi.CompanyID == companyID && strings.Contains(strings.ToLower(kpi.Name), strings.ToLower(domain.SalesKpiName)) {
			out := kpi
			return &out, nil
		}
	}
	return nil, domain.ErrNoSalesKpi
}

func (r *MemorySalesRepository) ListMonthValues(_ context.Context, kpiID int, month string, year int) ([]kpidomain.KpiValue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	monthNum := domain.MonthNumber(month)
	out := []kpidomain.KpiValue{}
	for _, v := range r.values {
		if v.KpiID == kpiID && v.Month == monthNum && v.Year == year {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemorySalesRepository) FindMonthlyRecord(_ context.Context, kpiID int, period string) (*kpidomain.KpiValue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findByPeriod(kpiID, period)
}

func (r *MemorySalesRepository) findByPeriod(kpiID int, period string) (*kpidomain.KpiValue, error) {
	var found *kpidomain.KpiValue
	for _, v := range r.values {
		if v.KpiID == kpiID && v.Period == period {
			if found == nil || v.ID > found.ID {
				vv := v
				found = &vv
			}
		}
	}
	if found == nil {
		return nil, kpidomain.ErrNotFound
	}
	return found, nil
}

func (r *MemorySalesRepository) CreateValue(_ context.Context, v *kpidomain.KpiValue) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	v.ID = r.nextID
	r.nextID++
	r.values[v.ID] = *v
	return nil
}

func (r *MemorySalesRepository) CloseMonth(_ context.Context, v *kpidomain.KpiValue, override bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wasOverride := false
	if _, err := r.findByPeriod(v.KpiID, v.Period); err == nil {
		if !override {
			return false, domain.ErrMonthClosed
		}
		wasOverride = true
	}

	v.ID = r.nextID
	r.nextID++
	r.values[v.ID] = *v
	return wasOverride, nil
}
