package service

import (
	"context"
	"errors"
	"fmt"

	"digo-dashboard/internal/features/clients/domain"
	"digo-dashboard/internal/features/clients/ports"
)

// ClientServiceImpl implements ports.ClientService.
type ClientServiceImpl struct {
	repo ports.ClientRepository
}

// NewClientService creates a new ClientServiceImpl.
func NewClientService(repo ports.ClientRepository) *ClientServiceImpl {
	return &ClientServiceImpl{repo: repo}
}

// Create registers a client. Email notifications are on unless the
// request turns them off.
func (s *ClientServiceImpl) Create(ctx context.Context, in ports.CreateClientInput) (*domain.Client, error) {
	emailNotifications := true
	if in.EmailNotifications != nil {
		emailNotifications = *in.EmailNotifications
	}

	client := &domain.Client{
		Name:               in.Name,
		Email:              in.Email,
		Phone:              in.Phone,
		ContactPerson:      in.ContactPerson,
		Address:            in.Address,
		CompanyID:          in.CompanyID,
		EmailNotifications: emailNotifications,
		Notes:              in.Notes,
	}
	if err := s.repo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("service: failed to create client: %w", err)
	}
	return client, nil
}

func (s *ClientServiceImpl) Get(ctx context.Context, id int) (*domain.Client, error) {
	client, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service: failed to get client: %w", err)
	}
	return client, nil
}

func (s *ClientServiceImpl) List(ctx context.Context, companyID *int) ([]domain.Client, error) {
	clients, err := s.repo.List(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list clients: %w", err)
	}
	return clients, nil
}

func (s *ClientServiceImpl) Update(ctx context.Context, id int, in ports.UpdateClientInput) (*domain.Client, error) {
	client, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service: failed to load client: %w", err)
	}

	if in.Name != nil {
		client.Name = *in.Name
	}
	if in.Email != nil {
		client.Email = *in.Email
	}
	if in.Phone != nil {
		client.Phone = *in.Phone
	}
	if in.ContactPerson != nil {
		client.ContactPerson = *in.ContactPerson
	}
	if in.Address != nil {
		client.Address = *in.Address
	}
	if in.EmailNotifications != nil {
		client.EmailNotifications = *in.EmailNotifications
	}
	if in.IsActive != nil {
		client.IsActive = *in.IsActive
	}
	if in.Notes != nil {
		client.Notes = *in.Notes
	}

	if err := s.repo.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("service: failed to update client: %w", err)
	}
	return client, nil
}

func (s *ClientServiceImpl) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("service: failed to delete client: %w", err)
	}
	return nil
}
