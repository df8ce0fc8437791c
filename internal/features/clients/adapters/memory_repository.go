package adapters

import (
	"context"
	"sort"
	"sync"
	"time"

	"digo-dashboard/internal/features/clients/domain"
)

// MemoryClientRepository is a map-backed repository for tests.
type MemoryClientRepository struct {
	mu      sync.RWMutex
	nextID  int
	clients map[int]domain.Client
}

func NewMemoryClientRepository() *MemoryClientRepository {
	return &MemoryClientRepository{nextID: 1, clients: make(map[int]domain.Client)}
}

func (r *MemoryClientRepository) Create(_ context.Context, client *domain.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	client.ID = r.nextID
	r.nextID++
	client.IsActive = true
	now := time.Now()
	client.CreatedAt = now
	client.UpdatedAt = now
	r.clients[client.ID] = *client
	return nil
}

func (r *MemoryClientRepository) GetByID(_ context.Context, id int) (*domain.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, ok := r.clients[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &client, nil
}

func (r *MemoryClientRepository) List(_ context.Context, companyID *int) ([]domain.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Client{}
	for _, client := range r.clients {
		if companyID != nil && client.CompanyID != *companyID {
			continue
		}
		out = append(out, client)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryClientRepository) Update(_ context.Context, client *domain.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[client.ID]; !ok {
		return domain.ErrNotFound
	}
	client.UpdatedAt = time.Now()
	r.clients[client.ID] = *client
	return nil
}

func (r *MemoryClientRepository) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.clients, id)
	return nil
}
