package adapters

import (
	"context"
	"fmt"

	kpiports "digo-dashboard/internal/features/kpis/ports"
	"digo-dashboard/internal/features/shipments/ports"
)

// KpiServiceUpdater implements ports.LogisticsKpiUpdater on top of the
// kpis feature. The target KPI is located by exact name within the
// company; companies without the KPI are skipped silently, matching the
// manual KPI setup the dashboards rely on.
type KpiServiceUpdater struct {
	kpis kpiports.KpiService
}

func NewKpiServiceUpdater(kpis kpiports.KpiService) *KpiServiceUpdater {
	return &KpiServiceUpdater{kpis: kpis}
}

func (u *KpiServiceUpdater) RecordLogisticsValue(ctx context.Context, companyID int, kpiName, value, period string) error {
	kpis, err := u.kpis.ListKpis(ctx, kpiports.KpiFilter{CompanyID: &companyID})
	if err != nil {
		return fmt.Errorf("list kpis: %w", err)
	}

	for _, kpi := range kpis {
		if kpi.Name != kpiName {
			continue
		}
		_, err := u.kpis.CreateValue(ctx, kpiports.CreateValueInput{
			KpiID:    kpi.ID,
			Value:    value,
			Period:   period,
			Comments: "Actualización automática de logística",
		})
		if err != nil {
			return fmt.Errorf("create value for %q: %w", kpiName, err)
		}
		return nil
	}
	return nil
}

var _ ports.LogisticsKpiUpdater = (*KpiServiceUpdater)(nil)
