package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	kpidomain "digo-dashboard/internal/features/kpis/domain"
	"digo-dashboard/internal/features/sales/adapters"
	"digo-dashboard/internal/features/sales/domain"
	"digo-dashboard/internal/features/sales/ports"
)

// annual goal 600000 gives a monthly target of 50000 and a weekly
// target of 12500.
func seedSalesKpi(repo *adapters.MemorySalesRepository, companyID int) kpidomain.Kpi {
	kpi := kpidomain.Kpi{
		ID:         companyID,
		CompanyID:  companyID,
		AreaID:     1,
		Name:       "Volumen de ventas mensual",
		Target:     "50,000",
		AnnualGoal: "600,000",
		Unit:       "KG",
	}
	repo.SeedKpi(kpi)
	return kpi
}

func newTestService(repo *adapters.MemorySalesRepository, now time.Time) *SalesServiceImpl {
	svc := NewSalesService(repo, nil, zap.NewNop())
	svc.now = func() time.Time { return now }
	return svc
}

func TestSalesService_WeeklyUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("detects period from the clock", func(t *testing.T) {
		repo := adapters.NewMemorySalesRepository()
		seedSalesKpi(repo, 1)
		svc := newTestService(repo, time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC))

		res, err := svc.WeeklyUpdate(ctx, ports.WeeklyUpdateInput{CompanyID: 1, Value: 13000, UserID: 7})
		require.NoError(t, err)

		assert.Equal(t, "Semana 2 - Marzo 2025", res.Record.Period)
		assert.Equal(t, "13,000 KG", res.Record.Value)
		assert.Equal(t, 3, res.Record.Month)
		assert.Equal(t, 2025, res.Record.Year)
		assert.Equal(t, 7, res.Record.UpdatedBy)
		// 13000 against a weekly target of 12500.
		assert.Equal(t, "104.0%", res.Record.CompliancePercentage)
		assert.Equal(t, kpidomain.StatusComplies, res.Record.Status)
	})

	t.Run("admin pins the period", func(t *testing.T) {
		repo := adapters.NewMemorySalesRepository()
		seedSalesKpi(repo, 2)
		svc := newTestService(repo, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC))

		res, err := svc.WeeklyUpdate(ctx, ports.WeeklyUpdateInput{
			CompanyID:     2,
			Value:         980,
			AdminOverride: true,
			WeekNumber:    3,
			Month:         "Abril",
			Year:          2025,
		})
		require.NoError(t, err)

		assert.Equal(t, "Semana 3 - Abril 2025", res.Record.Period)
		assert.Equal(t, "980 unidades", res.Record.Value)
		assert.Equal(t, 4, res.Record.Month)
	})

	t.Run("pinned period with unknown month is rejected", func(t *testing.T) {
		repo := adapters.NewMemorySalesRepository()
		kpi := seedSalesKpi(repo, 2)
		svc := newTestService(repo, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC))

		_, err := svc.WeeklyUpdate(ctx, ports.WeeklyUpdateInput{
			CompanyID:     2,
			Value:         980,
			AdminOverride: true,
			WeekNumber:    3,
			Month:         "April",
			Year:          2025,
		})
		assert.ErrorIs(t, err, domain.ErrUnknownMonth)

		records, lerr := repo.ListMonthValues(ctx, kpi.ID, "Junio", 2025)
		require.NoError(t, lerr)
		assert.Empty(t, records)
	})

	t.Run("monthly preview accumulates weekly records", func(t *testing.T) {
		repo := adapters.NewMemorySalesRepository()
		seedSalesKpi(repo, 1)
		svc := newTestService(repo, time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC))

		_, err := svc.WeeklyUpdate(ctx, ports.WeeklyUpdateInput{CompanyID: 1, Value: 12000})
		require.NoError(t, err)

		svc.now = func() time.Time { return time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC) }
		res, err := svc.WeeklyUpdate(ctx, ports.WeeklyUpdateInput{CompanyID: 1, Value: 14000})
		require.NoError(t, err)

		assert.Equal(t, 26000.0, res.MonthlyPreview.TotalValue)
		assert.Equal(t, "26,000 KG", res.MonthlyPreview.FormattedValue)
		// 26000 of a 50000 monthly target.
		assert.Equal(t, "52.0%", res.MonthlyPreview.CompliancePercentage)
		assert.Equal(t, kpidomain.StatusNotCompliant, res.MonthlyPreview.Status)
		assert.Equal(t, 2, res.MonthlyPreview.WeekCount)
	})

	t.Run("rejects writes into a closed month", func(t *testing.T) {
		repo := adapters.NewMemorySalesRepository()
		kpi := seedSalesKpi(repo, 1)
		svc := newTestService(repo, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC))

		require.NoError(t, repo.CreateValue(ctx, &kpidomain.KpiValue{
			KpiID: kpi.ID, CompanyID: 1, Period: "Marzo 2025", Month: 3, Year: 2025, Value: "48,000 KG",
		}))

		_, err := svc.WeeklyUpdate(ctx, ports.WeeklyUpdateInput{CompanyID: 1, Value: 5000})
		assert.ErrorIs(t, err, domain.ErrMonthClosed)
	})

	t.Run("admin override writes into a closed month", func(t *testing.T) {
		repo := adapters.NewMemorySalesRepository()
		kpi := seedSalesKpi(repo, 1)
		svc := newTestService(repo, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC))

		require.NoError(t, repo.CreateValue(ctx, &kpidomain.KpiValue{
			KpiID: kpi.ID, CompanyID: 1, Period: "Marzo 2025", Month: 3, Year: 2025, Value: "48,000 KG",
		}))

		res, err := svc.WeeklyUpdate(ctx, ports.WeeklyUpdateInput{
			CompanyID: 1, Value: 5000, AdminOverride: true, WeekNumber: 2, Month: "Marzo", Year: 2025,
		})
		require.NoError(t, err)
		assert.Equal(t, "Semana 2 - Marzo 2025", res.Record.Period)
	})

	t.Run("company without a sales kpi", func(t *testing.T) {
		repo := adapters.NewMemorySalesRepository()
		svc := newTestService(repo, time.Now())

		_, err := svc.WeeklyUpdate(ctx, ports.WeeklyUpdateInput{CompanyID: 9, Value: 100})
		assert.ErrorIs(t, err, domain.ErrNoSalesKpi)
	})
}

func TestSalesService_MonthlyClose(t *testing.T) {
	ctx := context.Background()

	seedWeeks := func(repo *adapters.MemorySalesRepository, kpi kpidomain.Kpi, values ...string) {
		for i, v := range values {
			_ = repo.CreateValue(ctx, &kpidomain.KpiValue{
				KpiID:     kpi.ID,
				CompanyID: kpi.CompanyID,
				Period:    domain.ManualPeriod(i+1, "Marzo", 2025).Label,
				Month:     3,
				Year:      2025,
				Date:      time.Date(2025, time.March, 1+7*i, 0, 0, 0, 0, time.UTC),
				Value:     v,
			})
		}
	}

	t.Run("sums the weekly records", func(t *testing.T) {
		repo := adapters.NewMemorySalesRepository()
		kpi := seedSalesKpi(repo, 1)
		seedWeeks(repo, kpi, "12,000 KG", "13,500 KG", "11,000 KG", "12,500 KG")
		svc := newTestService(repo, time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC))

		res, err := svc.MonthlyClose(ctx, ports.MonthlyCloseInput{CompanyID: 1, Month: "Marzo", Year: 2025, ClosedBy: 3})
		require.NoError(t, err)

		assert.False(t, res.WasOverride)
		assert.Equal(t, "Marzo 2025", res.Record.Period)
		assert.Equal(t, "49,000 KG", res.Record.Value)
		// 49000 of a 50000 monthly target.
		assert.Equal(t, "98.0%", res.Record.CompliancePercentage)
		assert.Equal(t, kpidomain.StatusComplies, res.Record.Status)
		assert.Equal(t, "Cierre mensual: acumulado de 4 semanas", res.Record.Comments)
	})

	t.Run("refuses a second close without override", func(t *testing.T) {
		repo := adapters.NewMemorySalesRepository()
		kpi := seedSalesKpi(repo, 1)
		seedWeeks(repo, kpi, "12,000 KG")
		svc := newTestService(repo, time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC))

		_, err := svc.MonthlyClose(ctx, ports.MonthlyCloseInput{CompanyID: 1, Month: "Marzo", Year: 2025})
		require.NoError(t, err)

		_, err = svc.MonthlyClose(ctx, ports.MonthlyCloseInput{CompanyID: 1, Month: "Marzo", Year: 2025})
		assert.ErrorIs(t, err, domain.ErrMonthClosed)

		res, err := svc.MonthlyClose(ctx, ports.MonthlyCloseInput{CompanyID: 1, Month: "Marzo", Year: 2025, Override: true})
		require.NoError(t, err)
		assert.True(t, res.WasOverride)
	})

	t.Run("no weekly records", func(t *testing.T) {
		repo := adapters.NewMemorySalesRepository()
		seedSalesKpi(repo, 1)
		svc := newTestService(repo, time.Now())

		_, err := svc.MonthlyClose(ctx, ports.MonthlyCloseInput{CompanyID: 1, Month: "Marzo", Year: 2025})
		assert.ErrorIs(t, err, domain.ErrNoWeeklyData)
	})

	t.Run("unknown month name", func(t *testing.T) {
		repo := adapters.NewMemorySalesRepository()
		seedSalesKpi(repo, 1)
		svc := newTestService(repo, time.Now())

		_, err := svc.MonthlyClose(ctx, ports.MonthlyCloseInput{CompanyID: 1, Month: "March", Year: 2025})
		assert.ErrorIs(t, err, domain.ErrUnknownMonth)
	})
}

func TestSalesService_AutoCloseMonth(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to the previous month for both companies", func(t *testing.T) {
		repo := adapters.NewMemorySalesRepository()
		kpi := seedSalesKpi(repo, 1)
		seedSalesKpi(repo, 2)
		_ = repo.CreateValue(ctx, &kpidomain.KpiValue{
			KpiID: kpi.ID, CompanyID: 1, Period: "Semana 1 - Febrero 2025", Month: 2, Year: 2025, Value: "12,000 KG",
		})
		svc := newTestService(repo, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC))

		results, err := svc.AutoCloseMonth(ctx, nil, "", 0, 1)
		require.NoError(t, err)
		require.Len(t, results, 2)

		assert.True(t, results[0].Closed)
		assert.Equal(t, 12000.0, results[0].Total)
		assert.False(t, results[1].Closed)
		assert.Equal(t, "Sin registros semanales para el período", results[1].Message)

		closed, err := repo.FindMonthlyRecord(ctx, kpi.ID, "Febrero 2025")
		require.NoError(t, err)
		assert.Equal(t, "Febrero 2025", closed.Period)
	})

	t.Run("january rolls back to december", func(t *testing.T) {
		repo := adapters.NewMemorySalesRepository()
		kpi := seedSalesKpi(repo, 1)
		_ = repo.CreateValue(ctx, &kpidomain.KpiValue{
			KpiID: kpi.ID, CompanyID: 1, Period: "Semana 4 - Diciembre 2024", Month: 12, Year: 2024, Value: "11,000 KG",
		})
		svc := newTestService(repo, time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC))

		results, err := svc.AutoCloseMonth(ctx, []int{1}, "", 0, 1)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.True(t, results[0].Closed)

		_, err = repo.FindMonthlyRecord(ctx, kpi.ID, "Diciembre 2024")
		assert.NoError(t, err)
	})

	t.Run("company without kpi is reported", func(t *testing.T) {
		repo := adapters.NewMemorySalesRepository()
		svc := newTestService(repo, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC))

		results, err := svc.AutoCloseMonth(ctx, []int{5}, "Febrero", 2025, 1)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.False(t, results[0].Closed)
		assert.Equal(t, "Sin KPI de volumen de ventas", results[0].Message)
	})
}

func TestSalesService_MonthStatus(t *testing.T) {
	ctx := context.Background()

	repo := adapters.NewMemorySalesRepository()
	kpi := seedSalesKpi(repo, 1)
	_ = repo.CreateValue(ctx, &kpidomain.KpiValue{
		KpiID: kpi.ID, CompanyID: 1, Period: "Semana 1 - Marzo 2025", Month: 3, Year: 2025, Value: "12,000 KG",
	})
	svc := newTestService(repo, time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC))

	status, err := svc.MonthStatus(ctx, 1, "", 0)
	require.NoError(t, err)
	assert.Equal(t, "Marzo 2025", status.Period)
	assert.False(t, status.Closed)
	assert.Nil(t, status.MonthlyRecord)
	require.Len(t, status.WeeklyRecords, 1)

	_, err = svc.MonthlyClose(ctx, ports.MonthlyCloseInput{CompanyID: 1, Month: "Marzo", Year: 2025})
	require.NoError(t, err)

	status, err = svc.MonthStatus(ctx, 1, "Marzo", 2025)
	require.NoError(t, err)
	assert.True(t, status.Closed)
	require.NotNil(t, status.MonthlyRecord)
	assert.Equal(t, "12,000 KG", status.MonthlyRecord.Value)
	assert.Len(t, status.WeeklyRecords, 1)
}
