package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"digo-dashboard/internal/core/cache"
	"digo-dashboard/internal/features/kpis/adapters"
	"digo-dashboard/internal/features/kpis/domain"
	"digo-dashboard/internal/features/kpis/ports"
)

// MockNotifier is a mock implementation of ports.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyUser(ctx context.Context, userID int, title, message, notifType string) error {
	args := m.Called(ctx, userID, title, message, notifType)
	return args.Error(0)
}

func newTestService(notifier ports.Notifier) *KpiServiceImpl {
	return NewKpiService(
		adapters.NewMemoryKpiRepository(),
		adapters.NewMemoryKpiValueRepository(),
		notifier,
		nil,
		0,
		zap.NewNop(),
	)
}

func seedKpi(t *testing.T, s *KpiServiceImpl, in ports.CreateKpiInput) *domain.Kpi {
	t.Helper()
	kpi, err := s.CreateKpi(context.Background(), in)
	require.NoError(t, err)
	return kpi
}

func TestKpiService_CreateKpi(t *testing.T) {
	service := newTestService(nil)

	t.Run("InvertedDefaultFromName", func(t *testing.T) {
		kpi := seedKpi(t, service, ports.CreateKpiInput{
			CompanyID: 1, AreaID: 1, Name: "Días de cobro promedio", Target: "60",
		})
		assert.True(t, kpi.InvertedMetric)
	})

	t.Run("ExplicitInvertedWins", func(t *testing.T) {
		inverted := false
		kpi := seedKpi(t, service, ports.CreateKpiInput{
			CompanyID: 1, AreaID: 1, Name: "Días de cobro", Target: "60", Inverted: &inverted,
		})
		assert.False(t, kpi.InvertedMetric)
	})

	t.Run("NormalMetricDefaultsNotInverted", func(t *testing.T) {
		kpi := seedKpi(t, service, ports.CreateKpiInput{
			CompanyID: 2, AreaID: 3, Name: "Volumen de ventas", Target: "55,620 KG",
		})
		assert.False(t, kpi.InvertedMetric)
	})
}

func TestKpiService_CreateValue(t *testing.T) {
	ctx := context.Background()

	t.Run("ComputesStatusAndCompliance", func(t *testing.T) {
		service := newTestService(nil)
		kpi := seedKpi(t, service, ports.CreateKpiInput{
			CompanyID: 1, AreaID: 1, Name: "Volumen de ventas", Target: "55,620 KG",
		})

		value, err := service.CreateValue(ctx, ports.CreateValueInput{
			KpiID: kpi.ID, UpdatedBy: 7, Value: "50,000 KG", Period: "Enero 2025", Month: 1, Year: 2025,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusNotCompliant, value.Status)
		assert.Equal(t, "89.9%", value.CompliancePercentage)
		assert.Equal(t, kpi.CompanyID, value.CompanyID)
	})

	t.Run("InvertedMetricUsesStoredFlag", func(t *testing.T) {
		service := newTestService(nil)
		kpi := seedKpi(t, service, ports.CreateKpiInput{
			CompanyID: 1, AreaID: 1, Name: "Tiempo de entrega", Target: "60",
		})

		value, err := service.CreateValue(ctx, ports.CreateValueInput{
			KpiID: kpi.ID, UpdatedBy: 7, Value: "58",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusComplies, value.Status)
	})

	t.Run("KpiMissing", func(t *testing.T) {
		service := newTestService(nil)
		_, err := service.CreateValue(ctx, ports.CreateValueInput{KpiID: 999, Value: "1"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("CriticalTransitionNotifies", func(t *testing.T) {
		notifier := new(MockNotifier)
		service := newTestService(notifier)
		kpi := seedKpi(t, service, ports.CreateKpiInput{
			CompanyID: 1, AreaID: 1, Name: "Margen bruto", Target: "100",
		})

		_, err := service.CreateValue(ctx, ports.CreateValueInput{KpiID: kpi.ID, UpdatedBy: 7, Value: "100"})
		require.NoError(t, err)

		notifier.On("NotifyUser", ctx, 7, mock.Anything, mock.Anything, "warning").Return(nil).Once()
		value, err := service.CreateValue(ctx, ports.CreateValueInput{KpiID: kpi.ID, UpdatedBy: 7, Value: "50"})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusNotCompliant, value.Status)
		notifier.AssertExpectations(t)
	})

	t.Run("RecoveryNotifiesSuccess", func(t *testing.T) {
		notifier := new(MockNotifier)
		service := newTestService(notifier)
		kpi := seedKpi(t, service, ports.CreateKpiInput{
			CompanyID: 1, AreaID: 1, Name: "Margen bruto", Target: "100",
		})

		_, err := service.CreateValue(ctx, ports.CreateValueInput{KpiID: kpi.ID, UpdatedBy: 7, Value: "10"})
		require.NoError(t, err)

		notifier.On("NotifyUser", ctx, 7, mock.Anything, mock.Anything, "success").Return(nil).Once()
		_, err = service.CreateValue(ctx, ports.CreateValueInput{KpiID: kpi.ID, UpdatedBy: 7, Value: "120"})
		require.NoError(t, err)
		notifier.AssertExpectations(t)
	})

	t.Run("NonCriticalTransitionStaysQuiet", func(t *testing.T) {
		notifier := new(MockNotifier)
		service := newTestService(notifier)
		kpi := seedKpi(t, service, ports.CreateKpiInput{
			CompanyID: 1, AreaID: 1, Name: "Margen bruto", Target: "100",
		})

		_, err := service.CreateValue(ctx, ports.CreateValueInput{KpiID: kpi.ID, UpdatedBy: 7, Value: "100"})
		require.NoError(t, err)
		_, err = service.CreateValue(ctx, ports.CreateValueInput{KpiID: kpi.ID, UpdatedBy: 7, Value: "95"})
		require.NoError(t, err)
		notifier.AssertNotCalled(t, "NotifyUser")
	})

	t.Run("NotifierFailureDoesNotFailWrite", func(t *testing.T) {
		notifier := new(MockNotifier)
		service := newTestService(notifier)
		kpi := seedKpi(t, service, ports.CreateKpiInput{
			CompanyID: 1, AreaID: 1, Name: "Margen bruto", Target: "100",
		})

		_, err := service.CreateValue(ctx, ports.CreateValueInput{KpiID: kpi.ID, UpdatedBy: 7, Value: "100"})
		require.NoError(t, err)

		notifier.On("NotifyUser", ctx, 7, mock.Anything, mock.Anything, "warning").
			Return(assert.AnError).Once()
		_, err = service.CreateValue(ctx, ports.CreateValueInput{KpiID: kpi.ID, UpdatedBy: 7, Value: "10"})
		assert.NoError(t, err)
		notifier.AssertExpectations(t)
	})
}

func TestKpiService_UpdateKpi(t *testing.T) {
	service := newTestService(nil)
	ctx := context.Background()

	kpi := seedKpi(t, service, ports.CreateKpiInput{
		CompanyID: 1, AreaID: 1, Name: "Rotación", Target: "5",
	})

	t.Run("PartialUpdate", func(t *testing.T) {
		target := "6"
		inverted := true
		updated, err := service.UpdateKpi(ctx, kpi.ID, ports.UpdateKpiInput{Target: &target, Inverted: &inverted})
		require.NoError(t, err)
		assert.Equal(t, "6", updated.Target)
		assert.True(t, updated.InvertedMetric)
		assert.Equal(t, "Rotación", updated.Name)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := service.UpdateKpi(ctx, 999, ports.UpdateKpiInput{})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestKpiService_ListAndLatestValues(t *testing.T) {
	service := newTestService(nil)
	ctx := context.Background()

	kpi := seedKpi(t, service, ports.CreateKpiInput{
		CompanyID: 1, AreaID: 1, Name: "Margen", Target: "100",
	})

	_, err := service.CreateValue(ctx, ports.CreateValueInput{KpiID: kpi.ID, Value: "90"})
	require.NoError(t, err)
	_, err = service.CreateValue(ctx, ports.CreateValueInput{KpiID: kpi.ID, Value: "110"})
	require.NoError(t, err)

	values, err := service.ListValues(ctx, kpi.ID)
	require.NoError(t, err)
	assert.Len(t, values, 2)

	latest, err := service.LatestValue(ctx, kpi.ID)
	require.NoError(t, err)
	assert.Equal(t, "110", latest.Value)

	t.Run("LatestMissing", func(t *testing.T) {
		_, err := service.LatestValue(ctx, 999)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func newCachedTestService(t *testing.T) (*KpiServiceImpl, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := cache.NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	service := NewKpiService(
		adapters.NewMemoryKpiRepository(),
		adapters.NewMemoryKpiValueRepository(),
		nil,
		c,
		time.Minute,
		zap.NewNop(),
	)
	return service, mr
}

func TestKpiService_CollaboratorsPerformance(t *testing.T) {
	ctx := context.Background()
	service, mr := newCachedTestService(t)

	ana := seedKpi(t, service, ports.CreateKpiInput{
		CompanyID: 1, AreaID: 1, Name: "Volumen de ventas", Target: "50000", Responsible: "Ana Torres",
	})
	seedKpi(t, service, ports.CreateKpiInput{
		CompanyID: 1, AreaID: 1, Name: "Costo de Transporte", Target: "10000", Responsible: "Luis Pérez",
	})
	seedKpi(t, service, ports.CreateKpiInput{
		CompanyID: 1, AreaID: 1, Name: "KPI huérfano", Target: "10",
	})

	_, err := service.CreateValue(ctx, ports.CreateValueInput{KpiID: ana.ID, Value: "52000", UpdatedBy: 4})
	require.NoError(t, err)

	performance, err := service.CollaboratorsPerformance(ctx, nil)
	require.NoError(t, err)

	require.Len(t, performance, 2)
	assert.Equal(t, "Ana Torres", performance[0].Name)
	assert.Equal(t, 104.0, performance[0].AvgCompliance)
	require.Len(t, performance[0].Kpis, 1)
	assert.Equal(t, domain.StatusComplies, performance[0].Kpis[0].Status)
	assert.Equal(t, "Luis Pérez", performance[1].Name)
	assert.Nil(t, performance[1].Kpis[0].LatestValue)
	assert.Equal(t, 0.0, performance[1].AvgCompliance)

	t.Run("PopulatesDashboardCache", func(t *testing.T) {
		assert.True(t, mr.Exists(DashboardCachePrefix+"collaborators:all"))
	})

	t.Run("ServedFromCacheUntilInvalidated", func(t *testing.T) {
		// A direct repo write bypasses the service, so a cached read
		// must not see it yet.
		require.NoError(t, service.values.Create(ctx, &domain.KpiValue{
			KpiID: ana.ID, CompanyID: 1, Value: "10000",
			CompliancePercentage: "20.0%", Status: domain.StatusNotCompliant,
		}))

		cached, err := service.CollaboratorsPerformance(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, 104.0, cached[0].AvgCompliance)

		// A value write through the service flushes the aggregate.
		_, err = service.CreateValue(ctx, ports.CreateValueInput{KpiID: ana.ID, Value: "48000", UpdatedBy: 4})
		require.NoError(t, err)
		assert.False(t, mr.Exists(DashboardCachePrefix+"collaborators:all"))

		fresh, err := service.CollaboratorsPerformance(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, 96.0, fresh[0].AvgCompliance)
	})

	t.Run("CompanyFilterKeyedSeparately", func(t *testing.T) {
		companyID := 2
		_, err := service.CollaboratorsPerformance(ctx, &companyID)
		require.NoError(t, err)
		assert.True(t, mr.Exists(DashboardCachePrefix+"collaborators:2"))
	})
}
