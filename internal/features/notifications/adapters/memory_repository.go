package adapters

import (
	"context"
	"sort"
	"sync"
	"time"

	"digo-dashboard/internal/features/notifications/domain"
)

// MemoryNotificationRepository is a map-backed repository for tests.
type MemoryNotificationRepository struct {
	mu     sync.RWMutex
	nextID int
	items  map[int]domain.Notification
}

func NewMemoryNotificationRepository() *MemoryNotificationRepository {
	return &MemoryNotificationRepository{nextID: 1, items: make(map[int]domain.Notification)}
}

func (r *MemoryNotificationRepository) Create(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n.ID = r.nextID
	r.nextID++
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	r.items[n.ID] = *n
	return nil
}

func (r *MemoryNotificationRepository) ListForUser(_ context.Context, userID int) ([]domain.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Notification{}
	for _, n := range r.items {
		if n.ToUserID == nil || *n.ToUserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *MemoryNotificationRepository) GetByID(_ context.Context, id int) (*domain.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &n, nil
}

func (r *MemoryNotificationRepository) MarkRead(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	now := time.Now()
	n.Read = true
	n.ReadAt = &now
	r.items[id] = n
	return nil
}

func (r *MemoryNotificationRepository) MarkAllRead(_ context.Context, userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for id, n := range r.items {
		if n.Read {
			continue
		}
		if n.ToUserID == nil || *n.ToUserID == userID {
			n.Read = true
			n.ReadAt = &now
			r.items[id] = n
		}
	}
	return nil
}

func (r *MemoryNotificationRepository) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.items, id)
	return nil
}
