package ports

import (
	"context"

	"digo-dashboard/internal/features/clients/domain"
)

// CreateClientInput carries the fields for registering a client.
// EmailNotifications defaults to true when nil.
type CreateClientInput struct {
	Name               string
	Email              string
	Phone              string
	ContactPerson      string
	Address            string
	CompanyID          int
	EmailNotifications *bool
	Notes              string
}

// UpdateClientInput carries partial client updates.
type UpdateClientInput struct {
	Name               *string
	Email              *string
	Phone              *string
	ContactPerson      *string
	Address            *string
	EmailNotifications *bool
	IsActive           *bool
	Notes              *string
}

// ClientService is the primary port for client operations.
type ClientService interface {
	Create(ctx context.Context, in CreateClientInput) (*domain.Client, error)
	Get(ctx context.Context, id int) (*domain.Client, error)
	List(ctx context.Context, companyID *int) ([]domain.Client, error)
	Update(ctx context.Context, id int, in UpdateClientInput) (*domain.Client, error)
	Delete(ctx context.Context, id int) error
}

// ClientRepository is the secondary port for client storage.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, id int) (*domain.Client, error)
	List(ctx context.Context, companyID *int) ([]domain.Client, error)
	Update(ctx context.Context, client *domain.Client) error
	Delete(ctx context.Context, id int) error
}
