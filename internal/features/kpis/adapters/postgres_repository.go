package adapters

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"digo-dashboard/internal/features/kpis/domain"
	"digo-dashboard/internal/features/kpis/ports"
)

// PostgresKpiRepository implements ports.KpiRepository over Postgres.
type PostgresKpiRepository struct {
	db *sqlx.DB
}

func NewPostgresKpiRepository(db *sqlx.DB) *PostgresKpiRepository {
	return &PostgresKpiRepository{db: db}
}

const kpiColumns = `id, company_id, area_id, name, description, target, annual_goal, unit, frequency, responsible, inverted_metric, created_at`

func (r *PostgresKpiRepository) Create(ctx context.Context, kpi *domain.Kpi) error {
	query := `
        INSERT INTO kpis (company_id, area_id, name, description, target, annual_goal, unit, frequency, responsible, inverted_metric, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
        RETURNING id, created_at
    `
	return r.db.QueryRowContext(ctx, query,
		kpi.CompanyID,
		kpi.AreaID,
		kpi.Name,
		kpi.Description,
		kpi.Target,
		kpi.AnnualGoal,
		kpi.Unit,
		kpi.Frequency,
		kpi.Responsible,
		kpi.InvertedMetric,
	).Scan(&kpi.ID, &kpi.CreatedAt)
}

func (r *PostgresKpiRepository) GetByID(ctx context.Context, id int) (*domain.Kpi, error) {
	var kpi domain.Kpi
	query := fmt.Sprintf(`SELECT %s FROM kpis WHERE id = $1`, kpiColumns)

	err := r.db.GetContext(ctx, &kpi, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &kpi, nil
}

func (r *PostgresKpiRepository) List(ctx context.Context, filter ports.KpiFilter) ([]domain.Kpi, error) {
	query := fmt.Sprintf(`SELECT %s FROM kpis WHERE 1=1`, kpiColumns)
	args := []interface{}{}

	if filter.CompanyID != nil {
		args = append(args, *filter.CompanyID)
		query += fmt.Sprintf(" AND company_id = $%d", len(args))
	}
	if filter.AreaID != nil {
		args = append(args, *filter.AreaID)
		query += fmt.Sprintf(" AND area_id = $%d", len(args))
	}
	query += " ORDER BY id"

	kpis := []domain.Kpi{}
	if err := r.db.SelectContext(ctx, &kpis, query, args...); err != nil {
		return nil, err
	}
	return kpis, nil
}

func (r *PostgresKpiRepository) Update(ctx context.Context, kpi *domain.Kpi) error {
	query := `
        UPDATE kpis
        SET name = $1, description = $2, target = $3, annual_goal = $4, unit = $5,
            frequency = $6, responsible = $7, inverted_metric = $8
        WHERE id = $9
    `
	result, err := r.db.ExecContext(ctx, query,
		kpi.Name,
		kpi.Description,
		kpi.Target,
		kpi.AnnualGoal,
		kpi.Unit,
		kpi.Frequency,
		kpi.Responsible,
		kpi.InvertedMetric,
		kpi.ID,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresKpiRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM kpis WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// PostgresKpiValueRepository implements ports.KpiValueRepository.
type PostgresKpiValueRepository struct {
	db *sqlx.DB
}

func NewPostgresKpiValueRepository(db *sqlx.DB) *PostgresKpiValueRepository {
	return &PostgresKpiValueRepository{db: db}
}

const kpiValueColumns = `id, kpi_id, company_id, updated_by, value, period, month, year, date, compliance_percentage, status, comments`

func (r *PostgresKpiValueRepository) Create(ctx context.Context, value *domain.KpiValue) error {
	query := `
        INSERT INTO kpi_values (kpi_id, company_id, updated_by, value, period, month, year, date, compliance_percentage, status, comments)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), $8, $9, $10)
        RETURNING id, date
    `
	return r.db.QueryRowContext(ctx, query,
		value.KpiID,
		value.CompanyID,
		value.UpdatedBy,
		value.Value,
		value.Period,
		value.Month,
		value.Year,
		value.CompliancePercentage,
		value.Status,
		value.Comments,
	).Scan(&value.ID, &value.Date)
}

func (r *PostgresKpiValueRepository) ListByKpi(ctx context.Context, kpiID int) ([]domain.KpiValue, error) {
	query := fmt.Sprintf(`SELECT %s FROM kpi_values WHERE kpi_id = $1 ORDER BY date DESC`, kpiValueColumns)

	values := []domain.KpiValue{}
	if err := r.db.SelectContext(ctx, &values, query, kpiID); err != nil {
		return nil, err
	}
	return values, nil
}

func (r *PostgresKpiValueRepository) LatestByKpi(ctx context.Context, kpiID int) (*domain.KpiValue, error) {
	var value domain.KpiValue
	query := fmt.Sprintf(`SELECT %s FROM kpi_values WHERE kpi_id = $1 ORDER BY date DESC, id DESC LIMIT 1`, kpiValueColumns)

	err := r.db.GetContext(ctx, &value, query, kpiID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
