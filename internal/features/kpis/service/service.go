package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"digo-dashboard/internal/core/cache"
	"digo-dashboard/internal/features/kpis/domain"
	"digo-dashboard/internal/features/kpis/ports"
)

// DashboardCachePrefix marks the cached dashboard aggregates flushed on
// every KPI value write.
const DashboardCachePrefix = "dashboard:"

// KpiServiceImpl implements ports.KpiService.
type KpiServiceImpl struct {
	kpis     ports.KpiRepository
	values   ports.KpiValueRepository
	notifier ports.Notifier
	cache    cache.Cache
	cacheTTL time.Duration
	log      *zap.Logger
}

// NewKpiService creates a new KpiServiceImpl. notifier and cache may be
// nil when those side effects are not wanted. cacheTTL bounds the life of
// dashboard aggregates; zero or negative falls back to five minutes.
func NewKpiService(kpis ports.KpiRepository, values ports.KpiValueRepository, notifier ports.Notifier, c cache.Cache, cacheTTL time.Duration, log *zap.Logger) *KpiServiceImpl {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &KpiServiceImpl{
		kpis:     kpis,
		values:   values,
		notifier: notifier,
		cache:    c,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

// CreateKpi registers a KPI. When the request does not state whether the
// metric is inverted, the name decides the default.
func (s *KpiServiceImpl) CreateKpi(ctx context.Context, in ports.CreateKpiInput) (*domain.Kpi, error) {
	inverted := domain.SuggestInverted(in.Name)
	if in.Inverted != nil {
		inverted = *in.Inverted
	}

	kpi := &domain.Kpi{
		CompanyID:      in.CompanyID,
		AreaID:         in.AreaID,
		Name:           in.Name,
		Description:    in.Description,
		Target:         in.Target,
		AnnualGoal:     in.AnnualGoal,
		Unit:           in.Unit,
		Frequency:      in.Frequency,
		Responsible:    in.Responsible,
		InvertedMetric: inverted,
	}
	if err := s.kpis.Create(ctx, kpi); err != nil {
		return nil, fmt.Errorf("service: failed to create kpi: %w", err)
	}
	return kpi, nil
}

func (s *KpiServiceImpl) GetKpi(ctx context.Context, id int) (*domain.Kpi, error) {
	kpi, err := s.kpis.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service: failed to get kpi: %w", err)
	}
	return kpi, nil
}

func (s *KpiServiceImpl) ListKpis(ctx context.Context, filter ports.KpiFilter) ([]domain.Kpi, error) {
	kpis, err := s.kpis.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list kpis: %w", err)
	}
	return kpis, nil
}

func (s *KpiServiceImpl) UpdateKpi(ctx context.Context, id int, in ports.UpdateKpiInput) (*domain.Kpi, error) {
	kpi, err := s.kpis.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service: failed to load kpi: %w", err)
	}

	if in.Name != nil {
		kpi.Name = *in.Name
	}
	if in.Description != nil {
		kpi.Description = *in.Description
	}
	if in.Target != nil {
		kpi.Target = *in.Target
	}
	if in.AnnualGoal != nil {
		kpi.AnnualGoal = *in.AnnualGoal
	}
	if in.Unit != nil {
		kpi.Unit = *in.Unit
	}
	if in.Frequency != nil {
		kpi.Frequency = *in.Frequency
	}
	if in.Responsible != nil {
		kpi.Responsible = *in.Responsible
	}
	if in.Inverted != nil {
		kpi.InvertedMetric = *in.Inverted
	}

	if err := s.kpis.Update(ctx, kpi); err != nil {
		return nil, fmt.Errorf("service: failed to update kpi: %w", err)
	}
	return kpi, nil
}

func (s *KpiServiceImpl) DeleteKpi(ctx context.Context, id int) error {
	if err := s.kpis.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("service: failed to delete kpi: %w", err)
	}
	return nil
}

// CreateValue computes status and compliance from the KPI target, stores
// the value, raises a notification on a critical status transition and
// flushes the dashboard cache. Notification and cache failures never fail
// the write.
func (s *KpiServiceImpl) CreateValue(ctx context.Context, in ports.CreateValueInput) (*domain.KpiValue, error) {
	kpi, err := s.kpis.GetByID(ctx, in.KpiID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service: failed to load kpi: %w", err)
	}

	var previous *domain.KpiValue
	previous, err = s.values.LatestByKpi(ctx, in.KpiID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("service: failed to load previous value: %w", err)
	}

	month, year := in.Month, in.Year
	if month == 0 || year == 0 {
		now := time.Now()
		month, year = int(now.Month()), now.Year()
	}

	value := &domain.KpiValue{
		KpiID:                kpi.ID,
		CompanyID:            kpi.CompanyID,
		UpdatedBy:            in.UpdatedBy,
		Value:                in.Value,
		Period:               in.Period,
		Month:                month,
		Year:                 year,
		CompliancePercentage: domain.CompliancePercent(in.Value, kpi.Target, kpi.InvertedMetric),
		Status:               domain.ClassifyStrings(in.Value, kpi.Target, kpi.InvertedMetric),
		Comments:             in.Comments,
	}
	if err := s.values.Create(ctx, value); err != nil {
		return nil, fmt.Errorf("service: failed to save kpi value: %w", err)
	}

	if previous != nil {
		s.notifyOnTransition(ctx, kpi, previous.Status, value.Status, in.UpdatedBy)
	}
	s.flushDashboardCache(ctx)

	return value, nil
}

func (s *KpiServiceImpl) ListValues(ctx context.Context, kpiID int) ([]domain.KpiValue, error) {
	values, err := s.values.ListByKpi(ctx, kpiID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list kpi values: %w", err)
	}
	return values, nil
}

func (s *KpiServiceImpl) LatestValue(ctx context.Context, kpiID int) (*domain.KpiValue, error) {
	value, err := s.values.LatestByKpi(ctx, kpiID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service: failed to get latest kpi value: %w", err)
	}
	return value, nil
}

// CollaboratorsPerformance groups every KPI that has a responsible
// person, attaches its latest value and averages compliance per person.
// The aggregate is served from the dashboard cache; every KPI value
// write flushes it.
func (s *KpiServiceImpl) CollaboratorsPerformance(ctx context.Context, companyID *int) ([]ports.CollaboratorPerformance, error) {
	key := DashboardCachePrefix + "collaborators:all"
	if companyID != nil {
		key = fmt.Sprintf("%scollaborators:%d", DashboardCachePrefix, *companyID)
	}

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key); err == nil {
			var cached []ports.CollaboratorPerformance
			uerr := json.Unmarshal(raw, &cached)
			if uerr == nil {
				return cached, nil
			}
			s.log.Warn("discarding unreadable dashboard cache entry", zap.String("key", key), zap.Error(uerr))
		}
	}

	kpis, err := s.kpis.List(ctx, ports.KpiFilter{CompanyID: companyID})
	if err != nil {
		return nil, fmt.Errorf("service: failed to list kpis: %w", err)
	}

	byName := make(map[string][]ports.CollaboratorKpi)
	for _, kpi := range kpis {
		responsible := strings.TrimSpace(kpi.Responsible)
		if responsible == "" {
			continue
		}

		entry := ports.CollaboratorKpi{Kpi: kpi, Status: domain.StatusNotCompliant}
		latest, err := s.values.LatestByKpi(ctx, kpi.ID)
		switch {
		case err == nil:
			entry.LatestValue = latest
			entry.Compliance = compliancePct(latest, &kpi)
			entry.Status = latest.Status
			if entry.Status == "" {
				entry.Status = domain.ClassifyStrings(latest.Value, kpi.Target, kpi.InvertedMetric)
			}
		case errors.Is(err, domain.ErrNotFound):
		default:
			return nil, fmt.Errorf("service: failed to load latest value for kpi %d: %w", kpi.ID, err)
		}

		byName[responsible] = append(byName[responsible], entry)
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]ports.CollaboratorPerformance, 0, len(names))
	for _, name := range names {
		entries := byName[name]
		sum := 0.0
		measured := 0
		for _, e := range entries {
			if e.LatestValue != nil {
				sum += e.Compliance
				measured++
			}
		}
		avg := 0.0
		if measured > 0 {
			avg = math.Round(sum/float64(measured)*10) / 10
		}
		result = append(result, ports.CollaboratorPerformance{
			Name:          name,
			Kpis:          entries,
			AvgCompliance: avg,
			KpiCount:      len(entries),
		})
	}

	if s.cache != nil {
		if raw, err := json.Marshal(result); err == nil {
			if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
				s.log.Warn("failed to cache dashboard aggregate", zap.String("key", key), zap.Error(err))
			}
		}
	}

	return result, nil
}

// compliancePct reads the stored compliance percentage, recomputing it
// from the target when the stored value is missing or zero.
func compliancePct(value *domain.KpiValue, kpi *domain.Kpi) float64 {
	pct, _ := strconv.ParseFloat(strings.TrimSuffix(value.CompliancePercentage, "%"), 64)
	if pct == 0 && kpi.Target != "" {
		recomputed := domain.CompliancePercent(value.Value, kpi.Target, kpi.InvertedMetric)
		pct, _ = strconv.ParseFloat(strings.TrimSuffix(recomputed, "%"), 64)
	}
	return pct
}

func (s *KpiServiceImpl) notifyOnTransition(ctx context.Context, kpi *domain.Kpi, from, to domain.Status, userID int) {
	critical, recovered := domain.IsCriticalTransition(from, to)
	if !critical || s.notifier == nil {
		return
	}

	title := fmt.Sprintf("KPI en incumplimiento: %s", kpi.Name)
	message := fmt.Sprintf("El KPI %q pasó de %s a %s.", kpi.Name, from, to)
	notifType := "warning"
	if recovered {
		title = fmt.Sprintf("KPI recuperado: %s", kpi.Name)
		notifType = "success"
	}

	if err := s.notifier.NotifyUser(ctx, userID, title, message, notifType); err != nil {
		s.log.Warn("failed to create kpi transition notification",
			zap.Int("kpi_id", kpi.ID),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
			zap.Error(err),
		)
	}
}

func (s *KpiServiceImpl) flushDashboardCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPrefix(ctx, DashboardCachePrefix); err != nil {
		s.log.Warn("failed to flush dashboard cache", zap.Error(err))
	}
}
