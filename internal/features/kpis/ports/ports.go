package ports

import (
	"context"

	"digo-dashboard/internal/features/kpis/domain"
)

// KpiFilter narrows KPI listings.
type KpiFilter struct {
	CompanyID *int
	AreaID    *int
}

// CreateKpiInput carries the fields needed to register a KPI. When
// Inverted is nil the lower-is-better default is derived from the name.
type CreateKpiInput struct {
	CompanyID   int
	AreaID      int
	Name        string
	Description string
	Target      string
	AnnualGoal  string
	Unit        string
	Frequency   string
	Responsible string
	Inverted    *bool
}

// UpdateKpiInput carries partial KPI updates. Nil fields are left as is.
type UpdateKpiInput struct {
	Name        *string
	Description *string
	Target      *string
	AnnualGoal  *string
	Unit        *string
	Frequency   *string
	Responsible *string
	Inverted    *bool
}

// CreateValueInput carries one reported measurement.
type CreateValueInput struct {
	KpiID     int
	UpdatedBy int
	Value     string
	Period    string
	Month     int
	Year      int
	Comments  string
}

// CollaboratorKpi is one assigned KPI with its latest measurement and
// derived compliance.
type CollaboratorKpi struct {
	Kpi         domain.Kpi       `json:"kpi"`
	LatestValue *domain.KpiValue `json:"latestValue"`
	Compliance  float64          `json:"compliance"`
	Status      domain.Status    `json:"status"`
}

// CollaboratorPerformance groups KPI compliance by the person responsible
// for the metric.
type CollaboratorPerformance struct {
	Name          string            `json:"name"`
	Kpis          []CollaboratorKpi `json:"kpis"`
	AvgCompliance float64           `json:"avgCompliance"`
	KpiCount      int               `json:"kpiCount"`
}

// KpiService is the primary port for KPI operations.
type KpiService interface {
	CreateKpi(ctx context.Context, in CreateKpiInput) (*domain.Kpi, error)
	GetKpi(ctx context.Context, id int) (*domain.Kpi, error)
	ListKpis(ctx context.Context, filter KpiFilter) ([]domain.Kpi, error)
	UpdateKpi(ctx context.Context, id int, in UpdateKpiInput) (*domain.Kpi, error)
	DeleteKpi(ctx context.Context, id int) error

	CreateValue(ctx context.Context, in CreateValueInput) (*domain.KpiValue, error)
	ListValues(ctx context.Context, kpiID int) ([]domain.KpiValue, error)
	LatestValue(ctx context.Context, kpiID int) (*domain.KpiValue, error)

	// CollaboratorsPerformance serves the dashboard aggregate, cached
	// until the next KPI value write invalidates it.
	CollaboratorsPerformance(ctx context.Context, companyID *int) ([]CollaboratorPerformance, error)
}

// KpiRepository is the secondary port for KPI storage.
type KpiRepository interface {
	Create(ctx context.Context, kpi *domain.Kpi) error
	GetByID(ctx context.Context, id int) (*domain.Kpi, error)
	List(ctx context.Context, filter KpiFilter) ([]domain.Kpi, error)
	Update(ctx context.Context, kpi *domain.Kpi) error
	Delete(ctx context.Context, id int) error
}

// KpiValueRepository is the secondary port for KPI value storage.
type KpiValueRepository interface {
	Create(ctx context.Context, value *domain.KpiValue) error
	ListByKpi(ctx context.Context, kpiID int) ([]domain.KpiValue, error)
	// LatestByKpi returns the most recent value or domain.ErrNotFound.
	LatestByKpi(ctx context.Context, kpiID int) (*domain.KpiValue, error)
}

// Notifier lets the KPI service raise user notifications without
// depending on the notifications feature directly.
type Notifier interface {
	NotifyUser(ctx context.Context, userID int, title, message, notifType string) error
}
