package ports

import (
	"context"

	kpidomain "digo-dashboard/internal/features/kpis/domain"
	"digo-dashboard/internal/features/sales/domain"
)

// WeeklyUpdateInput carries one weekly sales capture. Admins may pin
// the period explicitly and force writes into closed months.
type WeeklyUpdateInput struct {
	CompanyID     int
	Value         float64
	UserID        int
	AdminOverride bool
	WeekNumber    int
	Month         string
	Year          int
}

// MonthlyPreview projects how the month would close with the weekly
// records captured so far.
type MonthlyPreview struct {
	TotalValue           float64          `json:"totalValue"`
	FormattedValue       string           `json:"formattedValue"`
	CompliancePercentage string           `json:"compliancePercentage"`
	Status               kpidomain.Status `json:"status"`
	WeekCount            int              `json:"weekCount"`
	Comment              string           `json:"comment"`
}

// WeeklyUpdateResult is the outcome of a weekly sales capture.
type WeeklyUpdateResult struct {
	Record         kpidomain.KpiValue `json:"record"`
	Period         domain.Period      `json:"period"`
	MonthlyPreview MonthlyPreview     `json:"monthlyPreview"`
}

// MonthlyCloseInput requests the official close of a sales month.
type MonthlyCloseInput struct {
	CompanyID int
	Month     string
	Year      int
	Override  bool
	ClosedBy  int
}

// MonthlyCloseResult is the outcome of a monthly close.
type MonthlyCloseResult struct {
	Record      kpidomain.KpiValue `json:"record"`
	WasOverride bool               `json:"wasOverride"`
}

// AutoCloseResult reports the auto close outcome for one company.
type AutoCloseResult struct {
	CompanyID int     `json:"companyId"`
	Closed    bool    `json:"closed"`
	Message   string  `json:"message"`
	Total     float64 `json:"total,omitempty"`
}

// MonthStatus describes whether a month is closed and what records it
// holds.
type MonthStatus struct {
	Period        string               `json:"period"`
	Closed        bool                 `json:"closed"`
	MonthlyRecord *kpidomain.KpiValue  `json:"monthlyRecord,omitempty"`
	WeeklyRecords []kpidomain.KpiValue `json:"weeklyRecords"`
}

// SalesService drives weekly captures and monthly closes of the sales
// volume KPI.
type SalesService interface {
	WeeklyUpdate(ctx context.Context, in WeeklyUpdateInput) (*WeeklyUpdateResult, error)
	MonthlyClose(ctx context.Context, in MonthlyCloseInput) (*MonthlyCloseResult, error)
	AutoCloseMonth(ctx context.Context, companyIDs []int, month string, year int, closedBy int) ([]AutoCloseResult, error)
	MonthStatus(ctx context.Context, companyID int, month string, year int) (*MonthStatus, error)
}

// SalesRepository reads and writes sales KPI values. It shares the KPI
// tables with the kpis feature but only sees the sales volume KPI.
type SalesRepository interface {
	// FindSalesKpi locates a company's sales volume KPI by name.
	// Returns domain.ErrNoSalesKpi when the company has none.
	FindSalesKpi(ctx context.Context, companyID int) (*kpidomain.Kpi, error)
	// ListMonthValues returns all values of a KPI for a month, weekly
	// and monthly records alike, oldest first.
	ListMonthValues(ctx context.Context, kpiID int, month string, year int) ([]kpidomain.KpiValue, error)
	// FindMonthlyRecord returns the official monthly record for a
	// period label, or kpidomain.ErrNotFound when the month is open.
	FindMonthlyRecord(ctx context.Context, kpiID int, period string) (*kpidomain.KpiValue, error)
	// CreateValue inserts a weekly sales record.
	CreateValue(ctx context.Context, v *kpidomain.KpiValue) error
	// CloseMonth atomically checks for an existing monthly record and
	// inserts the new one. Returns domain.ErrMonthClosed when a record
	// exists and override is false; wasOverride reports that an
	// existing record was superseded.
	CloseMonth(ctx context.Context, v *kpidomain.KpiValue, override bool) (wasOverride bool, err error)
}
