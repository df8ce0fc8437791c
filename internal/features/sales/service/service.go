package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"digo-dashboard/internal/core/cache"
	kpidomain "digo-dashboard/internal/features/kpis/domain"
	kpiservice "digo-dashboard/internal/features/kpis/service"
	"digo-dashboard/internal/features/sales/domain"
	"digo-dashboard/internal/features/sales/ports"
)

// SalesServiceImpl implements ports.SalesService.
type SalesServiceImpl struct {
	repo  ports.SalesRepository
	cache cache.Cache
	log   *zap.Logger
	now   func() time.Time
}

// NewSalesService creates a new SalesServiceImpl. cache may be nil.
func NewSalesService(repo ports.SalesRepository, c cache.Cache, log *zap.Logger) *SalesServiceImpl {
	return &SalesServiceImpl{
		repo:  repo,
		cache: c,
		log:   log,
		now:   time.Now,
	}
}

// WeeklyUpdate records one weekly sales value. The period is detected
// from the current date unless an admin pins it explicitly. Writes into
// a closed month are rejected unless the admin override is set.
func (s *SalesServiceImpl) WeeklyUpdate(ctx context.Context, in ports.WeeklyUpdateInput) (*ports.WeeklyUpdateResult, error) {
	period := domain.DetectPeriod(s.now())
	if in.AdminOverride && in.WeekNumber > 0 && in.Month != "" && in.Year > 0 {
		if domain.MonthNumber(in.Month) == 0 {
			return nil, domain.ErrUnknownMonth
		}
		period = domain.ManualPeriod(in.WeekNumber, in.Month, in.Year)
	}

	kpi, err := s.repo.FindSalesKpi(ctx, in.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("service: find sales kpi: %w", err)
	}

	if !in.AdminOverride {
		monthLabel := domain.MonthLabel(period.Month, period.Year)
		if _, err := s.repo.FindMonthlyRecord(ctx, kpi.ID, monthLabel); err == nil {
			return nil, domain.ErrMonthClosed
		} else if !errors.Is(err, kpidomain.ErrNotFound) {
			return nil, fmt.Errorf("service: check month closed: %w", err)
		}
	}

	annual := s.annualGoal(kpi)
	weeklyTarget := domain.WeeklyTarget(annual)

	pct := 0.0
	if weeklyTarget > 0 {
		pct = in.Value / weeklyTarget * 100
	}

	record := &kpidomain.KpiValue{
		KpiID:                kpi.ID,
		CompanyID:            in.CompanyID,
		UpdatedBy:            in.UserID,
		Value:                domain.FormatAmount(in.Value, in.CompanyID),
		Period:               period.Label,
		Month:                domain.MonthNumber(period.Month),
		Year:                 period.Year,
		Date:                 s.now(),
		CompliancePercentage: fmt.Sprintf("%.1f%%", pct),
		Status:               domain.StatusForCompliance(pct),
		Comments:             "Actualización semanal de ventas",
	}
	if err := s.repo.CreateValue(ctx, record); err != nil {
		return nil, fmt.Errorf("service: create weekly record: %w", err)
	}

	preview, err := s.monthlyPreview(ctx, kpi, period.Month, period.Year, annual)
	if err != nil {
		return nil, err
	}

	s.flushDashboardCache(ctx)

	return &ports.WeeklyUpdateResult{
		Record:         *record,
		Period:         period,
		MonthlyPreview: *preview,
	}, nil
}

// MonthlyClose writes the official monthly record from the accumulated
// weekly values. A closed month is only overwritten with the override.
func (s *SalesServiceImpl) MonthlyClose(ctx context.Context, in ports.MonthlyCloseInput) (*ports.MonthlyCloseResult, error) {
	if domain.MonthNumber(in.Month) == 0 {
		return nil, domain.ErrUnknownMonth
	}

	kpi, err := s.repo.FindSalesKpi(ctx, in.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("service: find sales kpi: %w", err)
	}

	weekly, err := s.weeklyRecords(ctx, kpi.ID, in.Month, in.Year)
	if err != nil {
		return nil, err
	}
	if len(weekly) == 0 {
		return nil, domain.ErrNoWeeklyData
	}

	total := sumValues(weekly)
	annual := s.annualGoal(kpi)
	monthlyTarget := domain.MonthlyTarget(annual)

	pct := 0.0
	if monthlyTarget > 0 {
		pct = total / monthlyTarget * 100
	}

	record := &kpidomain.KpiValue{
		KpiID:                kpi.ID,
		CompanyID:            in.CompanyID,
		UpdatedBy:            in.ClosedBy,
		Value:                domain.FormatAmount(total, in.CompanyID),
		Period:               domain.MonthLabel(in.Month, in.Year),
		Month:                domain.MonthNumber(in.Month),
		Year:                 in.Year,
		Date:                 s.now(),
		CompliancePercentage: fmt.Sprintf("%.1f%%", pct),
		Status:               domain.StatusForCompliance(pct),
		Comments:             fmt.Sprintf("Cierre mensual: acumulado de %d semanas", len(weekly)),
	}

	wasOverride, err := s.repo.CloseMonth(ctx, record, in.Override)
	if err != nil {
		if errors.Is(err, domain.ErrMonthClosed) {
			return nil, err
		}
		return nil, fmt.Errorf("service: close month: %w", err)
	}

	s.flushDashboardCache(ctx)

	return &ports.MonthlyCloseResult{Record: *record, WasOverride: wasOverride}, nil
}

// AutoCloseMonth closes the given month for each company, defaulting to
// every company and the previous month. Companies that cannot be closed
// are reported, not failed.
func (s *SalesServiceImpl) AutoCloseMonth(ctx context.Context, companyIDs []int, month string, year int, closedBy int) ([]ports.AutoCloseResult, error) {
	if len(companyIDs) == 0 {
		companyIDs = []int{1, 2}
	}
	if month == "" {
		month, year = domain.PreviousMonth(s.now())
	} else if domain.MonthNumber(month) == 0 {
		return nil, domain.ErrUnknownMonth
	}

	results := make([]ports.AutoCloseResult, 0, len(companyIDs))
	for _, companyID := range companyIDs {
		res := ports.AutoCloseResult{CompanyID: companyID}

		closed, err := s.MonthlyClose(ctx, ports.MonthlyCloseInput{
			CompanyID: companyID,
			Month:     month,
			Year:      year,
			ClosedBy:  closedBy,
		})
		switch {
		case err == nil:
			res.Closed = true
			res.Message = fmt.Sprintf("Mes %s %d cerrado", month, year)
			if total, perr := kpidomain.ParseLocalizedNumber(closed.Record.Value); perr == nil {
				res.Total = total
			}
		case errors.Is(err, domain.ErrNoSalesKpi):
			res.Message = "Sin KPI de volumen de ventas"
		case errors.Is(err, domain.ErrNoWeeklyData):
			res.Message = "Sin registros semanales para el período"
		case errors.Is(err, domain.ErrMonthClosed):
			res.Message = "El mes ya estaba cerrado"
		default:
			s.log.Error("auto close month failed",
				zap.Int("company_id", companyID),
				zap.String("month", month),
				zap.Error(err),
			)
			res.Message = "Error al cerrar el mes"
		}
		results = append(results, res)
	}
	return results, nil
}

// MonthStatus reports whether a month is closed along with its records.
// Month and year default to the current date.
func (s *SalesServiceImpl) MonthStatus(ctx context.Context, companyID int, month string, year int) (*ports.MonthStatus, error) {
	if month == "" {
		now := s.now()
		month = domain.MonthName(now.Month())
		year = now.Year()
	} else if domain.MonthNumber(month) == 0 {
		return nil, domain.ErrUnknownMonth
	}

	kpi, err := s.repo.FindSalesKpi(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("service: find sales kpi: %w", err)
	}

	status := &ports.MonthStatus{Period: domain.MonthLabel(month, year)}

	monthly, err := s.repo.FindMonthlyRecord(ctx, kpi.ID, status.Period)
	switch {
	case err == nil:
		status.Closed = true
		status.MonthlyRecord = monthly
	case errors.Is(err, kpidomain.ErrNotFound):
	default:
		return nil, fmt.Errorf("service: find monthly record: %w", err)
	}

	weekly, err := s.weeklyRecords(ctx, kpi.ID, month, year)
	if err != nil {
		return nil, err
	}
	status.WeeklyRecords = weekly

	return status, nil
}

func (s *SalesServiceImpl) monthlyPreview(ctx context.Context, kpi *kpidomain.Kpi, month string, year int, annual float64) (*ports.MonthlyPreview, error) {
	weekly, err := s.weeklyRecords(ctx, kpi.ID, month, year)
	if err != nil {
		return nil, err
	}

	total := sumValues(weekly)
	monthlyTarget := domain.MonthlyTarget(annual)

	pct := 0.0
	if monthlyTarget > 0 {
		pct = total / monthlyTarget * 100
	}

	return &ports.MonthlyPreview{
		TotalValue:           total,
		FormattedValue:       domain.FormatAmount(total, kpi.CompanyID),
		CompliancePercentage: fmt.Sprintf("%.1f%%", pct),
		Status:               domain.StatusForCompliance(pct),
		WeekCount:            len(weekly),
		Comment:              fmt.Sprintf("Acumulado de %d semanas registradas", len(weekly)),
	}, nil
}

func (s *SalesServiceImpl) weeklyRecords(ctx context.Context, kpiID int, month string, year int) ([]kpidomain.KpiValue, error) {
	values, err := s.repo.ListMonthValues(ctx, kpiID, month, year)
	if err != nil {
		return nil, fmt.Errorf("service: list month values: %w", err)
	}

	weekly := []kpidomain.KpiValue{}
	for _, v := range values {
		if domain.IsWeeklyPeriod(v.Period) {
			weekly = append(weekly, v)
		}
	}
	return weekly, nil
}

func (s *SalesServiceImpl) annualGoal(kpi *kpidomain.Kpi) float64 {
	if goal, err := kpidomain.ParseLocalizedNumber(kpi.AnnualGoal); err == nil {
		return goal
	}
	if goal, err := kpidomain.ParseLocalizedNumber(kpi.Target); err == nil {
		return goal
	}
	return 0
}

func sumValues(values []kpidomain.KpiValue) float64 {
	total := 0.0
	for _, v := range values {
		n, err := kpidomain.ParseLocalizedNumber(v.Value)
		if err != nil {
			continue
		}
		total += n
	}
	return total
}

func (s *SalesServiceImpl) flushDashboardCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPrefix(ctx, kpiservice.DashboardCachePrefix); err != nil {
		s.log.Warn("dashboard cache flush failed", zap.Error(err))
	}
}
