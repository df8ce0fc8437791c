package ports

import (
	"context"
	"time"

	"digo-dashboard/internal/features/shipments/domain"
)

// ShipmentFilter narrows shipment listings. Since keeps shipments whose
// effective date (delivery, last update or creation) is not older.
type ShipmentFilter struct {
	CompanyID *int
	Status    *domain.Status
	Since     *time.Time
	Page      int
	Limit     int
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasMore    bool `json:"hasMore"`
}

// ShipmentPage is one page of shipments, newest first.
type ShipmentPage struct {
	Shipments  []domain.Shipment `json:"shipments"`
	Pagination Pagination        `json:"pagination"`
}

// ShipmentWithItems is a shipment together with its product lines.
type ShipmentWithItems struct {
	domain.Shipment
	Items []domain.ShipmentItem `json:"items"`
}

// ItemInput is one product line of a new shipment.
type ItemInput struct {
	Product     string
	Quantity    float64
	Unit        string
	Description string
}

// CreateShipmentInput carries a new shipment and its items.
type CreateShipmentInput struct {
	TrackingCode          string
	CompanyID             int
	CustomerID            *int
	CustomerName          string
	CustomerEmail         string
	InvoiceNumber         string
	Origin                string
	Destination           string
	Product               string
	Quantity              float64
	Unit                  string
	Carrier               string
	TransportCost         float64
	DepartureDate         *time.Time
	EstimatedDeliveryDate *time.Time
	Items                 []ItemInput
}

// UpdateShipmentInput carries a partial shipment edit. Nil fields are
// left untouched.
type UpdateShipmentInput struct {
	CustomerID            *int
	CustomerName          *string
	CustomerEmail         *string
	InvoiceNumber         *string
	Origin                *string
	Destination           *string
	Product               *string
	Quantity              *float64
	Unit                  *string
	Carrier               *string
	TransportCost         *float64
	DepartureDate         *time.Time
	EstimatedDeliveryDate *time.Time
	ActualDeliveryDate    *time.Time
}

// UpdateItemInput carries a partial item edit.
type UpdateItemInput struct {
	Product     *string
	Quantity    *float64
	Unit        *string
	Description *string
}

// StatusChangeInput moves a shipment to a new lifecycle state.
type StatusChangeInput struct {
	Status           domain.Status
	Location         string
	Comments         string
	InvoiceNumber    string
	SendNotification bool
	UpdatedBy        int
}

// StatusChangeResult reports the applied change and the email outcome.
// Email problems never fail the change, they surface as a warning.
type StatusChangeResult struct {
	Shipment              domain.Shipment       `json:"shipment"`
	Update                domain.ShipmentUpdate `json:"update"`
	EmailNotificationSent bool                  `json:"emailNotificationSent"`
	EmailWarning          string                `json:"emailWarning,omitempty"`
}

// CycleTimeFilter narrows the aggregate cycle-time metrics.
type CycleTimeFilter struct {
	CompanyID *int
	StartDate *time.Time
	EndDate   *time.Time
}

// CycleTimeMetrics is the aggregate view over stored cycle times.
// Averages are nil when no shipment reached the phase.
type CycleTimeMetrics struct {
	Period                string   `json:"period"`
	StartDate             string   `json:"startDate"`
	EndDate               string   `json:"endDate"`
	CompanyID             *int     `json:"companyId"`
	AvgPendingToTransit   *float64 `json:"avgPendingToTransit"`
	AvgTransitToDelivered *float64 `json:"avgTransitToDelivered"`
	AvgDeliveredToClosed  *float64 `json:"avgDeliveredToClosed"`
	AvgTotalCycle         *float64 `json:"avgTotalCycle"`
	AvgToDelivery         *float64 `json:"avgToDelivery"`
	TotalShipments        int      `json:"totalShipments"`
	CompletedShipments    int      `json:"completedShipments"`
}

// ShipmentService drives the shipment lifecycle.
type ShipmentService interface {
	List(ctx context.Context, filter ShipmentFilter) (*ShipmentPage, error)
	Get(ctx context.Context, id int) (*ShipmentWithItems, error)
	GetByTrackingCode(ctx context.Context, code string) (*domain.Shipment, error)
	Create(ctx context.Context, in CreateShipmentInput) (*ShipmentWithItems, error)
	Update(ctx context.Context, id int, in UpdateShipmentInput) (*domain.Shipment, error)
	AddItem(ctx context.Context, shipmentID int, in ItemInput) (*domain.ShipmentItem, error)
	UpdateItem(ctx context.Context, shipmentID, itemID int, in UpdateItemInput) (*domain.ShipmentItem, error)
	DeleteItem(ctx context.Context, shipmentID, itemID int) error
	ListUpdates(ctx context.Context, shipmentID int) ([]domain.ShipmentUpdate, error)
	ListNotifications(ctx context.Context, shipmentID int) ([]domain.ShipmentNotification, error)
	ChangeStatus(ctx context.Context, id int, in StatusChangeInput) (*StatusChangeResult, error)
	// RecalculateCycleTimes returns domain.ErrNotFound for a missing
	// shipment; any other failure is logged and yields nil, nil
	// ("cycle time unavailable").
	RecalculateCycleTimes(ctx context.Context, shipmentID int) (*domain.CycleTimes, error)
	AggregateCycleTimes(ctx context.Context, filter CycleTimeFilter) (*CycleTimeMetrics, error)
}

// ShipmentRepository persists shipments and their satellite records.
type ShipmentRepository interface {
	List(ctx context.Context, filter ShipmentFilter) ([]domain.Shipment, int, error)
	GetByID(ctx context.Context, id int) (*domain.Shipment, error)
	GetByTrackingCode(ctx context.Context, code string) (*domain.Shipment, error)
	Create(ctx context.Context, s *domain.Shipment) error
	Update(ctx context.Context, id int, in UpdateShipmentInput) (*domain.Shipment, error)

	ListItems(ctx context.Context, shipmentID int) ([]domain.ShipmentItem, error)
	CreateItem(ctx context.Context, item *domain.ShipmentItem) error
	UpdateItem(ctx context.Context, itemID int, in UpdateItemInput) (*domain.ShipmentItem, error)
	DeleteItem(ctx context.Context, itemID int) error

	// ListUpdates returns the append-only history, newest first.
	ListUpdates(ctx context.Context, shipmentID int) ([]domain.ShipmentUpdate, error)

	// ApplyStatusChange persists the shipment row, the history entry
	// and the recomputed cycle times in one transaction.
	ApplyStatusChange(ctx context.Context, s *domain.Shipment, update *domain.ShipmentUpdate, cycle *domain.CycleTimes) error

	UpsertCycleTimes(ctx context.Context, cycle *domain.CycleTimes) error
	ListCycleTimes(ctx context.Context, filter CycleTimeFilter) ([]domain.CycleTimes, error)

	ListNotifications(ctx context.Context, shipmentID int) ([]domain.ShipmentNotification, error)
	HasSentNotification(ctx context.Context, shipmentID int, status domain.Status) (bool, error)
	CreateNotification(ctx context.Context, n *domain.ShipmentNotification) error

	// ClientEmailSettings resolves a client's email and notification
	// preference. Returns domain.ErrNotFound for an unknown client.
	ClientEmailSettings(ctx context.Context, clientID int) (email string, enabled bool, err error)

	ListDeliveredBetween(ctx context.Context, companyID int, from, to time.Time) ([]domain.Shipment, error)
}

// LogisticsKpiUpdater pushes derived logistics averages into the KPI
// ledger after a delivery.
type LogisticsKpiUpdater interface {
	RecordLogisticsValue(ctx context.Context, companyID int, kpiName, value, period string) error
}
