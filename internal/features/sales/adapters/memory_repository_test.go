package adapters

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kpidomain "digo-dashboard/internal/features/kpis/domain"
	"digo-dashboard/internal/features/sales/domain"
)

func monthlyRecord(kpiID int) *kpidomain.KpiValue {
	return &kpidomain.KpiValue{
		KpiID:     kpiID,
		CompanyID: 1,
		Value:     "50,000 KG",
		Period:    "Marzo 2025",
		Month:     3,
		Year:      2025,
		Date:      time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
	}
}

// Closing a month for the first time must admit exactly one writer even
// under concurrency; the losers get the closed-month rejection.
func TestMemorySalesRepository_CloseMonth_ConcurrentFirstClose(t *testing.T) {
	repo := NewMemorySalesRepository()
	repo.SeedKpi(kpidomain.Kpi{ID: 1, CompanyID: 1, Name: "Volumen de ventas", AnnualGoal: "600000"})

	const writers = 8
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.CloseMonth(context.Background(), monthlyRecord(1), false)
		}(i)
	}
	wg.Wait()

	closed := 0
	for _, err := range errs {
		if err == nil {
			closed++
		} else {
			assert.ErrorIs(t, err, domain.ErrMonthClosed)
		}
	}
	assert.Equal(t, 1, closed)

	records, err := repo.ListMonthValues(context.Background(), 1, "Marzo", 2025)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestMemorySalesRepository_CloseMonth_OverrideAppends(t *testing.T) {
	repo := NewMemorySalesRepository()
	repo.SeedKpi(kpidomain.Kpi{ID: 1, CompanyID: 1, Name: "Volumen de ventas", AnnualGoal: "600000"})

	wasOverride, err := repo.CloseMonth(context.Background(), monthlyRecord(1), false)
	require.NoError(t, err)
	assert.False(t, wasOverride)

	_, err = repo.CloseMonth(context.Background(), monthlyRecord(1), false)
	assert.True(t, errors.Is(err, domain.ErrMonthClosed))

	wasOverride, err = repo.CloseMonth(context.Background(), monthlyRecord(1), true)
	require.NoError(t, err)
	assert.True(t, wasOverride)
}
