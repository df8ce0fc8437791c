package domain

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Status is a shipment lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusInTransit Status = "in_transit"
	StatusDelayed   Status = "delayed"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// ValidStatus reports whether s is a known shipment status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusInTransit, StatusDelayed, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

var (
	// ErrNotFound is returned when a shipment, item or related record
	// does not exist.
	ErrNotFound = errors.New("shipment: not found")
	// ErrInvalidStatus is returned for an unknown lifecycle state.
	ErrInvalidStatus = errors.New("shipment: invalid status")
	// ErrInvoiceRequired is returned when a shipment moves to
	// in_transit without an invoice number.
	ErrInvoiceRequired = errors.New("shipment: invoice number required")
)

// Shipment is one tracked delivery.
type Shipment struct {
	ID                    int        `db:"id" json:"id"`
	TrackingCode          string     `db:"tracking_code" json:"trackingCode"`
	CompanyID             int        `db:"company_id" json:"companyId"`
	CustomerID            *int       `db:"customer_id" json:"customerId"`
	CustomerName          string     `db:"customer_name" json:"customerName"`
	CustomerEmail         string     `db:"customer_email" json:"customerEmail"`
	InvoiceNumber         string     `db:"invoice_number" json:"invoiceNumber"`
	Origin                string     `db:"origin" json:"origin"`
	Destination           string     `db:"destination" json:"destination"`
	Product               string     `db:"product" json:"product"`
	Quantity              float64    `db:"quantity" json:"quantity"`
	Unit                  string     `db:"unit" json:"unit"`
	Carrier               string     `db:"carrier" json:"carrier"`
	TransportCost         float64    `db:"transport_cost" json:"transportCost"`
	Status                Status     `db:"status" json:"status"`
	DepartureDate         *time.Time `db:"departure_date" json:"departureDate"`
	EstimatedDeliveryDate *time.Time `db:"estimated_delivery_date" json:"estimatedDeliveryDate"`
	ActualDeliveryDate    *time.Time `db:"actual_delivery_date" json:"actualDeliveryDate"`
	InRouteAt             *time.Time `db:"in_route_at" json:"inRouteAt"`
	DeliveredAt           *time.Time `db:"delivered_at" json:"deliveredAt"`
	CreatedAt             time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updatedAt"`
}

// EffectiveDate is the date used for recency sorting and the since
// filter: actual delivery first, then last update, then creation.
func (s *Shipment) EffectiveDate() time.Time {
	if s.ActualDeliveryDate != nil {
		return *s.ActualDeliveryDate
	}
	if !s.UpdatedAt.IsZero() {
		return s.UpdatedAt
	}
	return s.CreatedAt
}

// ShipmentItem is one product line of a shipment.
type ShipmentItem struct {
	ID          int     `db:"id" json:"id"`
	ShipmentID  int     `db:"shipment_id" json:"shipmentId"`
	Product     string  `db:"product" json:"product"`
	Quantity    float64 `db:"quantity" json:"quantity"`
	Unit        string  `db:"unit" json:"unit"`
	Description string  `db:"description" json:"description"`
}

// ShipmentUpdate is one append-only history entry. Rows are never
// mutated or deleted.
type ShipmentUpdate struct {
	ID         int       `db:"id" json:"id"`
	ShipmentID int       `db:"shipment_id" json:"shipmentId"`
	Status     Status    `db:"status" json:"status"`
	Location   string    `db:"location" json:"location"`
	Comments   string    `db:"comments" json:"comments"`
	UpdatedBy  int       `db:"updated_by" json:"updatedBy"`
	Timestamp  time.Time `db:"timestamp" json:"timestamp"`
}

// CycleTimes holds the derived phase timestamps and durations of one
// shipment. One row per shipment, fully recomputed on every upsert.
type CycleTimes struct {
	ShipmentID              int        `db:"shipment_id" json:"shipmentId"`
	CompanyID               int        `db:"company_id" json:"companyId"`
	CreatedAt               time.Time  `db:"created_at" json:"createdAt"`
	PendingAt               *time.Time `db:"pending_at" json:"pendingAt"`
	InTransitAt             *time.Time `db:"in_transit_at" json:"inTransitAt"`
	DeliveredAt             *time.Time `db:"delivered_at" json:"deliveredAt"`
	ClosedAt                *time.Time `db:"closed_at" json:"closedAt"`
	HoursPendingToTransit   *string    `db:"hours_pending_to_transit" json:"hoursPendingToTransit"`
	HoursTransitToDelivered *string    `db:"hours_transit_to_delivered" json:"hoursTransitToDelivered"`
	HoursDeliveredToClosed  *string    `db:"hours_delivered_to_closed" json:"hoursDeliveredToClosed"`
	HoursTotalCycle         *string    `db:"hours_total_cycle" json:"hoursTotalCycle"`
	HoursToDelivery         *string    `db:"hours_to_delivery" json:"hoursToDelivery"`
	ComputedAt              time.Time  `db:"computed_at" json:"computedAt"`
	UpdatedAt               time.Time  `db:"updated_at" json:"updatedAt"`
}

// ShipmentNotification records one email attempt for a shipment status.
type ShipmentNotification struct {
	ID             int       `db:"id" json:"id"`
	ShipmentID     int       `db:"shipment_id" json:"shipmentId"`
	EmailTo        string    `db:"email_to" json:"emailTo"`
	Subject        string    `db:"subject" json:"subject"`
	Status         string    `db:"status" json:"status"`
	SentBy         int       `db:"sent_by" json:"sentBy"`
	ShipmentStatus Status    `db:"shipment_status" json:"shipmentStatus"`
	ErrorMessage   string    `db:"error_message" json:"errorMessage"`
	SentAt         time.Time `db:"sent_at" json:"sentAt"`
}

const (
	NotificationSent   = "sent"
	NotificationFailed = "failed"
)

// ComputeCycleTimes derives phase timestamps and durations from a
// shipment's update history. Updates are ordered oldest first and the
// first occurrence of each status wins; a cancellation closes the
// cycle. The computation is a pure full recompute, running it twice on
// the same history yields the same result.
func ComputeCycleTimes(shipment *Shipment, updates []ShipmentUpdate) CycleTimes {
	ordered := make([]ShipmentUpdate, len(updates))
	copy(ordered, updates)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	var pendingAt, inTransitAt, deliveredAt, closedAt *time.Time
	for i := range ordered {
		u := &ordered[i]
		switch u.Status {
		case StatusPending:
			if pendingAt == nil {
				pendingAt = &u.Timestamp
			}
		case StatusInTransit:
			if inTransitAt == nil {
				inTransitAt = &u.Timestamp
			}
		case StatusDelivered:
			if deliveredAt == nil {
				deliveredAt = &u.Timestamp
			}
		case StatusCancelled:
			if closedAt == nil {
				closedAt = &u.Timestamp
			}
		}
	}

	created := shipment.CreatedAt
	return CycleTimes{
		ShipmentID:              shipment.ID,
		CompanyID:               shipment.CompanyID,
		CreatedAt:               created,
		PendingAt:               pendingAt,
		InTransitAt:             inTransitAt,
		DeliveredAt:             deliveredAt,
		ClosedAt:                closedAt,
		HoursPendingToTransit:   hoursBetween(pendingAt, inTransitAt),
		HoursTransitToDelivered: hoursBetween(inTransitAt, deliveredAt),
		HoursDeliveredToClosed:  hoursBetween(deliveredAt, closedAt),
		HoursTotalCycle:         hoursBetween(&created, closedAt),
		HoursToDelivery:         hoursBetween(&created, deliveredAt),
	}
}

// hoursBetween renders the duration between two timestamps as hours
// with two decimals, or nil when either endpoint is missing.
func hoursBetween(start, end *time.Time) *string {
	if start == nil || end == nil {
		return nil
	}
	h := fmt.Sprintf("%.2f", end.Sub(*start).Hours())
	return &h
}
