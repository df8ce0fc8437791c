package adapters

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	kpidomain "digo-dashboard/internal/features/kpis/domain"
	"digo-dashboard/internal/features/sales/domain"
)

// PostgresSalesRepository implements ports.SalesRepository over the
// shared kpis and kpi_values tables.
type PostgresSalesRepository struct {
	db *sqlx.DB
}

func NewPostgresSalesRepository(db *sqlx.DB) *PostgresSalesRepository {
	return &PostgresSalesRepository{db: db}
}

const kpiColumns = `id, company_id, area_id, name, description, target, annual_goal, unit, frequency, responsible, inverted_metric, created_at`

const valueColumns = `id, kpi_id, company_id, updated_by, value, period, month, year, date, compliance_percentage, status, comments`

func (r *PostgresSalesRepository) FindSalesKpi(ctx context.Context, companyID int) (*kpidomain.Kpi, error) {
	var kpi kpidomain.Kpi
	query := fmt.Sprintf(`
        SELECT %s FROM kpis
        WHERE company_id = $1 AND name ILIKE '%%' || $2 || '%%'
        ORDER BY id LIMIT 1
    `, kpiColumns)

	err := r.db.GetContext(ctx, &kpi, query, companyID, domain.SalesKpiName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNoSalesKpi
	}
	if err != nil {
		return nil, err
	}
	return &kpi, nil
}

func (r *PostgresSalesRepository) ListMonthValues(ctx context.Context, kpiID int, month string, year int) ([]kpidomain.KpiValue, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM kpi_values
        WHERE kpi_id = $1 AND month = $2 AND year = $3
        ORDER BY date, id
    `, valueColumns)

	values := []kpidomain.KpiValue{}
	if err := r.db.SelectContext(ctx, &values, query, kpiID, domain.MonthNumber(month), year); err != nil {
		return nil, err
	}
	return values, nil
}

func (r *PostgresSalesRepository) FindMonthlyRecord(ctx context.Context, kpiID int, period string) (*kpidomain.KpiValue, error) {
	var v kpidomain.KpiValue
	query := fmt.Sprintf(`
        SELECT %s FROM kpi_values
        WHERE kpi_id = $1 AND period = $2
        ORDER BY id DESC LIMIT 1
    `, valueColumns)

	err := r.db.GetContext(ctx, &v, query, kpiID, period)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, kpidomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *PostgresSalesRepository) CreateValue(ctx context.Context, v *kpidomain.KpiValue) error {
	query := `
        INSERT INTO kpi_values (kpi_id, company_id, updated_by, value, period, month, year, date, compliance_percentage, status, comments)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING id
    `
	return r.db.QueryRowContext(ctx, query,
		v.KpiID,
		v.CompanyID,
		v.UpdatedBy,
		v.Value,
		v.Period,
		v.Month,
		v.Year,
		v.Date,
		v.CompliancePercentage,
		v.Status,
		v.Comments,
	).Scan(&v.ID)
}

// CloseMonth checks for an existing monthly record and inserts the new
// one inside a single transaction so concurrent closes cannot both
// succeed. The advisory lock covers the first close of a month, where
// FOR UPDATE has no row to lock yet.
func (r *PostgresSalesRepository) CloseMonth(ctx context.Context, v *kpidomain.KpiValue, override bool) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", v.KpiID); err != nil {
		return false, err
	}

	var existingID int
	err = tx.QueryRowContext(ctx, `
        SELECT id FROM kpi_values
        WHERE kpi_id = $1 AND period = $2
        ORDER BY id DESC LIMIT 1
        FOR UPDATE
    `, v.KpiID, v.Period).Scan(&existingID)

	wasOverride := false
	switch {
	case err == nil:
		if !override {
			return false, domain.ErrMonthClosed
		}
		wasOverride = true
	case errors.Is(err, sql.ErrNoRows):
	default:
		return false, err
	}

	query := `
        INSERT INTO kpi_values (kpi_id, company_id, updated_by, value, period, month, year, date, compliance_percentage, status, comments)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING id
    `
	if err := tx.QueryRowContext(ctx, query,
		v.KpiID,
		v.CompanyID,
		v.UpdatedBy,
		v.Value,
		v.Period,
		v.Month,
		v.Year,
		v.Date,
		v.CompliancePercentage,
		v.Status,
		v.Comments,
	).Scan(&v.ID); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return wasOverride, nil
}
