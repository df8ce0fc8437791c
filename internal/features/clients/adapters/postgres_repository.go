package adapters

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"digo-dashboard/internal/features/clients/domain"
)

// PostgresClientRepository implements ports.ClientRepository.
type PostgresClientRepository struct {
	db *sqlx.DB
}

func NewPostgresClientRepository(db *sqlx.DB) *PostgresClientRepository {
	return &PostgresClientRepository{db: db}
}

const clientColumns = `id, name, email, phone, contact_person, address, company_id, email_notifications, is_active, notes, created_at, updated_at`

func (r *PostgresClientRepository) Create(ctx context.Context, client *domain.Client) error {
	query := `
        INSERT INTO clients (name, email, phone, contact_person, address, company_id, email_notifications, is_active, notes, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, true, $8, NOW(), NOW())
        RETURNING id, is_active, created_at, updated_at
    `
	return r.db.QueryRowContext(ctx, query,
		client.Name,
		client.Email,
		client.Phone,
		client.ContactPerson,
		client.Address,
		client.CompanyID,
		client.EmailNotifications,
		client.Notes,
	).Scan(&client.ID, &client.IsActive, &client.CreatedAt, &client.UpdatedAt)
}

func (r *PostgresClientRepository) GetByID(ctx context.Context, id int) (*domain.Client, error) {
	var client domain.Client
	query := fmt.Sprintf(`SELECT %s FROM clients WHERE id = $1`, clientColumns)

	err := r.db.GetContext(ctx, &client, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *PostgresClientRepository) List(ctx context.Context, companyID *int) ([]domain.Client, error) {
	query := fmt.Sprintf(`SELECT %s FROM clients`, clientColumns)
	args := []interface{}{}

	if companyID != nil {
		query += ` WHERE company_id = $1`
		args = append(args, *companyID)
	}
	query += ` ORDER BY name`

	clients := []domain.Client{}
	if err := r.db.SelectContext(ctx, &clients, query, args...); err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *PostgresClientRepository) Update(ctx context.Context, client *domain.Client) error {
	query := `
        UPDATE clients
        SET name = $1, email = $2, phone = $3, contact_person = $4, address = $5,
            email_notifications = $6, is_active = $7, notes = $8, updated_at = NOW()
        WHERE id = $9
    `
	result, err := r.db.ExecContext(ctx, query,
		client.Name,
		client.Email,
		client.Phone,
		client.ContactPerson,
		client.Address,
		client.EmailNotifications,
		client.IsActive,
		client.Notes,
		client.ID,
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

func (r *PostgresClientRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
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
