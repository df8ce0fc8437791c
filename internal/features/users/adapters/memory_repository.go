package adapters

import (
	"context"
	"sort"
	"sync"
	"time"

	"digo-dashboard/internal/features/users/domain"
)

// MemoryUserRepository is a map-backed repository for tests.
type MemoryUserRepository struct {
	mu     sync.RWMutex
	nextID int
	users  map[int]domain.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{nextID: 1, users: make(map[int]domain.User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id int) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &user, nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MemoryUserRepository) List(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.User{}
	for _, user := range r.users {
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryUserRepository) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrNotFound
	}
	for id, u := range r.users {
		if id != user.ID && u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *MemoryUserRepository) TouchLastLogin(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	now := time.Now()
	user.LastLogin = &now
	r.users[id] = user
	return nil
}

// MemoryCompanyRepository serves fixed tenant reference data in tests.
type MemoryCompanyRepository struct {
	companies []domain.Company
}

func NewMemoryCompanyRepository(companies ...domain.Company) *MemoryCompanyRepository {
	if len(companies) == 0 {
		companies = []domain.Company{
			{ID: 1, Name: "Dura International", Sector: "Químicos"},
			{ID: 2, Name: "Grupo Orsega", Sector: "Distribución"},
		}
	}
	return &MemoryCompanyRepository{companies: companies}
}

func (r *MemoryCompanyRepository) List(_ context.Context) ([]domain.Company, error) {
	return append([]domain.Company{}, r.companies...), nil
}

func (r *MemoryCompanyRepository) GetByID(_ context.Context, id int) (*domain.Company, error) {
	for _, c := range r.companies {
		if c.ID == id {
			company := c
			return &company, nil
		}
	}
	return nil, domain.ErrNotFound
}

// MemoryAreaRepository serves fixed area reference data in tests.
type MemoryAreaRepository struct {
	areas []domain.Area
}

func NewMemoryAreaRepository(areas ...domain.Area) *MemoryAreaRepository {
	return &MemoryAreaRepository{areas: areas}
}

func (r *MemoryAreaRepository) List(_ context.Context, companyID *int) ([]domain.Area, error) {
	out := []domain.Area{}
	for _, a := range r.areas {
		if companyID != nil && a.CompanyID != *companyID {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}
