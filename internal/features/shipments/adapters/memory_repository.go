package adapters

import (
	"context"
	"sort"
	"sync"
	"time"

	"digo-dashboard/internal/features/shipments/domain"
	"digo-dashboard/internal/features/shipments/ports"
)

// MemoryShipmentRepository is an in memory ports.ShipmentRepository for
// tests.
type MemoryShipmentRepository struct {
	mu            sync.Mutex
	nextID        int
	shipments     map[int]domain.Shipment
	items         map[int]domain.ShipmentItem
	updates       map[int]domain.ShipmentUpdate
	cycles        map[int]domain.CycleTimes
	notifications map[int]domain.ShipmentNotification
	clients       map[int]memoryClient
}

type memoryClient struct {
	email   string
	enabled bool
}

func NewMemoryShipmentRepository() *MemoryShipmentRepository {
	return &MemoryShipmentRepository{
		nextID:        1,
		shipments:     map[int]domain.Shipment{},
		items:         map[int]domain.ShipmentItem{},
		updates:       map[int]domain.ShipmentUpdate{},
		cycles:        map[int]domain.CycleTimes{},
		notifications: map[int]domain.ShipmentNotification{},
		clients:       map[int]memoryClient{},
	}
}

// SeedClient registers a client the email resolution can find.
func (r *MemoryShipmentRepository) SeedClient(id int, email string, enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[id] = memoryClient{email: email, enabled: enabled}
}

func (r *MemoryShipmentRepository) allocID() int {
	id := r.nextID
	r.nextID++
	return id
}

func (r *MemoryShipmentRepository) List(_ context.Context, filter ports.ShipmentFilter) ([]domain.Shipment, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := []domain.Shipment{}
	for _, s := range r.shipments {
		if filter.CompanyID != nil && s.CompanyID != *filter.CompanyID {
			continue
		}
		if filter.Status != nil && s.Status != *filter.Status {
			continue
		}
		if filter.Since != nil && s.EffectiveDate().Before(*filter.Since) {
			continue
		}
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool {
		di, dj := all[i].EffectiveDate(), all[j].EffectiveDate()
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return all[i].ID > all[j].ID
	})

	total := len(all)
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit
	if offset >= len(all) {
		return []domain.Shipment{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *MemoryShipmentRepository) GetByID(_ context.Context, id int) (*domain.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.shipments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (r *MemoryShipmentRepository) GetByTrackingCode(_ context.Context, code string) (*domain.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.shipments {
		if s.TrackingCode == code {
			out := s
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MemoryShipmentRepository) Create(_ context.Context, s *domain.Shipment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s.ID = r.allocID()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = s.CreatedAt
	}
	r.shipments[s.ID] = *s
	return nil
}

func (r *MemoryShipmentRepository) Update(_ context.Context, id int, in ports.UpdateShipmentInput) (*domain.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.shipments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if in.CustomerID != nil {
		s.CustomerID = in.CustomerID
	}
	if in.CustomerName != nil {
		s.CustomerName = *in.CustomerName
	}
	if in.CustomerEmail != nil {
		s.CustomerEmail = *in.CustomerEmail
	}
	if in.InvoiceNumber != nil {
		s.InvoiceNumber = *in.InvoiceNumber
	}
	if in.Origin != nil {
		s.Origin = *in.Origin
	}
	if in.Destination != nil {
		s.Destination = *in.Destination
	}
	if in.Product != nil {
		s.Product = *in.Product
	}
	if in.Quantity != nil {
		s.Quantity = *in.Quantity
	}
	if in.Unit != nil {
		s.Unit = *in.Unit
	}
	if in.Carrier != nil {
		s.Carrier = *in.Carrier
	}
	if in.TransportCost != nil {
		s.TransportCost = *in.TransportCost
	}
	if in.DepartureDate != nil {
		s.DepartureDate = in.DepartureDate
	}
	if in.EstimatedDeliveryDate != nil {
		s.EstimatedDeliveryDate = in.EstimatedDeliveryDate
	}
	if in.ActualDeliveryDate != nil {
		s.ActualDeliveryDate = in.ActualDeliveryDate
	}
	s.UpdatedAt = time.Now()
	r.shipments[id] = s
	return &s, nil
}

func (r *MemoryShipmentRepository) ListItems(_ context.Context, shipmentID int) ([]domain.ShipmentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := []domain.ShipmentItem{}
	for _, item := range r.items {
		if item.ShipmentID == shipmentID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (r *MemoryShipmentRepository) CreateItem(_ context.Context, item *domain.ShipmentItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item.ID = r.allocID()
	r.items[item.ID] = *item
	return nil
}

func (r *MemoryShipmentRepository) UpdateItem(_ context.Context, itemID int, in ports.UpdateItemInput) (*domain.ShipmentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[itemID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if in.Product != nil {
		item.Product = *in.Product
	}
	if in.Quantity != nil {
		item.Quantity = *in.Quantity
	}
	if in.Unit != nil {
		item.Unit = *in.Unit
	}
	if in.Description != nil {
		item.Description = *in.Description
	}
	r.items[itemID] = item
	return &item, nil
}

func (r *MemoryShipmentRepository) DeleteItem(_ context.Context, itemID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[itemID]; !ok {
		return domain.ErrNotFound
	}
	delete(r.items, itemID)
	return nil
}

func (r *MemoryShipmentRepository) ListUpdates(_ context.Context, shipmentID int) ([]domain.ShipmentUpdate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	updates := []domain.ShipmentUpdate{}
	for _, u := range r.updates {
		if u.ShipmentID == shipmentID {
			updates = append(updates, u)
		}
	}
	sort.Slice(updates, func(i, j int) bool {
		if !updates[i].Timestamp.Equal(updates[j].Timestamp) {
			return updates[i].Timestamp.After(updates[j].Timestamp)
		}
		return updates[i].ID > updates[j].ID
	})
	return updates, nil
}

func (r *MemoryShipmentRepository) ApplyStatusChange(_ context.Context, s *domain.Shipment, update *domain.ShipmentUpdate, cycle *domain.CycleTimes) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.shipments[s.ID]; !ok {
		return domain.ErrNotFound
	}
	r.shipments[s.ID] = *s

	update.ID = r.allocID()
	r.updates[update.ID] = *update

	r.cycles[cycle.ShipmentID] = *cycle
	return nil
}

func (r *MemoryShipmentRepository) UpsertCycleTimes(_ context.Context, cycle *domain.CycleTimes) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cycles[cycle.ShipmentID] = *cycle
	return nil
}

func (r *MemoryShipmentRepository) ListCycleTimes(_ context.Context, filter ports.CycleTimeFilter) ([]domain.CycleTimes, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cycles := []domain.CycleTimes{}
	for _, c := range r.cycles {
		if filter.CompanyID != nil && c.CompanyID != *filter.CompanyID {
			continue
		}
		if filter.StartDate != nil && c.CreatedAt.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && c.CreatedAt.After(*filter.EndDate) {
			continue
		}
		cycles = append(cycles, c)
	}
	sort.Slice(cycles, func(i, j int) bool { return cycles[i].ShipmentID < cycles[j].ShipmentID })
	return cycles, nil
}

func (r *MemoryShipmentRepository) ListNotifications(_ context.Context, shipmentID int) ([]domain.ShipmentNotification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	notifications := []domain.ShipmentNotification{}
	for _, n := range r.notifications {
		if n.ShipmentID == shipmentID {
			notifications = append(notifications, n)
		}
	}
	sort.Slice(notifications, func(i, j int) bool { return notifications[i].ID > notifications[j].ID })
	return notifications, nil
}

func (r *MemoryShipmentRepository) HasSentNotification(_ context.Context, shipmentID int, status domain.Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, n := range r.notifications {
		if n.ShipmentID == shipmentID && n.ShipmentStatus == status && n.Status == domain.NotificationSent {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryShipmentRepository) CreateNotification(_ context.Context, n *domain.ShipmentNotification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n.ID = r.allocID()
	if n.SentAt.IsZero() {
		n.SentAt = time.Now()
	}
	r.notifications[n.ID] = *n
	return nil
}

func (r *MemoryShipmentRepository) ClientEmailSettings(_ context.Context, clientID int) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.clients[clientID]
	if !ok {
		return "", false, domain.ErrNotFound
	}
	return c.email, c.enabled, nil
}

func (r *MemoryShipmentRepository) ListDeliveredBetween(_ context.Context, companyID int, from, to time.Time) ([]domain.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	shipments := []domain.Shipment{}
	for _, s := range r.shipments {
		if s.CompanyID != companyID || s.Status != domain.StatusDelivered || s.DeliveredAt == nil {
			continue
		}
		if s.DeliveredAt.Before(from) || s.DeliveredAt.After(to) {
			continue
		}
		shipments = append(shipments, s)
	}
	sort.Slice(shipments, func(i, j int) bool { return shipments[i].ID < shipments[j].ID })
	return shipments, nil
}
