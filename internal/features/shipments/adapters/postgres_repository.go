package adapters

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"digo-dashboard/internal/features/shipments/domain"
	"digo-dashboard/internal/features/shipments/ports"
)

// PostgresShipmentRepository implements ports.ShipmentRepository.
type PostgresShipmentRepository struct {
	db *sqlx.DB
}

func NewPostgresShipmentRepository(db *sqlx.DB) *PostgresShipmentRepository {
	return &PostgresShipmentRepository{db: db}
}

const shipmentColumns = `id, tracking_code, company_id, customer_id, customer_name, customer_email, invoice_number, origin, destination, product, quantity, unit, carrier, transport_cost, status, departure_date, estimated_delivery_date, actual_delivery_date, in_route_at, delivered_at, created_at, updated_at`

const cycleColumns = `shipment_id, company_id, created_at, pending_at, in_transit_at, delivered_at, closed_at, hours_pending_to_transit, hours_transit_to_delivered, hours_delivered_to_closed, hours_total_cycle, hours_to_delivery, computed_at, updated_at`

func (r *PostgresShipmentRepository) List(ctx context.Context, filter ports.ShipmentFilter) ([]domain.Shipment, int, error) {
	where := "WHERE 1=1"
	args := []interface{}{}

	if filter.CompanyID != nil {
		args = append(args, *filter.CompanyID)
		where += fmt.Sprintf(" AND company_id = $%d", len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Since != nil {
		args = append(args, *filter.Since)
		where += fmt.Sprintf(" AND COALESCE(actual_delivery_date, updated_at, created_at) >= $%d", len(args))
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM shipments "+where, args...); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)

	query := fmt.Sprintf(`
        SELECT %s FROM shipments %s
        ORDER BY COALESCE(actual_delivery_date, updated_at, created_at) DESC, id DESC
        LIMIT $%d OFFSET $%d
    `, shipmentColumns, where, len(args)-1, len(args))

	shipments := []domain.Shipment{}
	if err := r.db.SelectContext(ctx, &shipments, query, args...); err != nil {
		return nil, 0, err
	}
	return shipments, total, nil
}

func (r *PostgresShipmentRepository) GetByID(ctx context.Context, id int) (*domain.Shipment, error) {
	var s domain.Shipment
	query := fmt.Sprintf(`SELECT %s FROM shipments WHERE id = $1`, shipmentColumns)

	err := r.db.GetContext(ctx, &s, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PostgresShipmentRepository) GetByTrackingCode(ctx context.Context, code string) (*domain.Shipment, error) {
	var s domain.Shipment
	query := fmt.Sprintf(`SELECT %s FROM shipments WHERE tracking_code = $1`, shipmentColumns)

	err := r.db.GetContext(ctx, &s, query, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PostgresShipmentRepository) Create(ctx context.Context, s *domain.Shipment) error {
	query := `
        INSERT INTO shipments (tracking_code, company_id, customer_id, customer_name, customer_email, invoice_number, origin, destination, product, quantity, unit, carrier, transport_cost, status, departure_date, estimated_delivery_date, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW(), NOW())
        RETURNING id, created_at, updated_at
    `
	return r.db.QueryRowContext(ctx, query,
		s.TrackingCode,
		s.CompanyID,
		s.CustomerID,
		s.CustomerName,
		s.CustomerEmail,
		s.InvoiceNumber,
		s.Origin,
		s.Destination,
		s.Product,
		s.Quantity,
		s.Unit,
		s.Carrier,
		s.TransportCost,
		s.Status,
		s.DepartureDate,
		s.EstimatedDeliveryDate,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *PostgresShipmentRepository) Update(ctx context.Context, id int, in ports.UpdateShipmentInput) (*domain.Shipment, error) {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{}

	add := func(col string, v interface{}) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if in.CustomerID != nil {
		add("customer_id", *in.CustomerID)
	}
	if in.CustomerName != nil {
		add("customer_name", *in.CustomerName)
	}
	if in.CustomerEmail != nil {
		add("customer_email", *in.CustomerEmail)
	}
	if in.InvoiceNumber != nil {
		add("invoice_number", *in.InvoiceNumber)
	}
	if in.Origin != nil {
		add("origin", *in.Origin)
	}
	if in.Destination != nil {
		add("destination", *in.Destination)
	}
	if in.Product != nil {
		add("product", *in.Product)
	}
	if in.Quantity != nil {
		add("quantity", *in.Quantity)
	}
	if in.Unit != nil {
		add("unit", *in.Unit)
	}
	if in.Carrier != nil {
		add("carrier", *in.Carrier)
	}
	if in.TransportCost != nil {
		add("transport_cost", *in.TransportCost)
	}
	if in.DepartureDate != nil {
		add("departure_date", *in.DepartureDate)
	}
	if in.EstimatedDeliveryDate != nil {
		add("estimated_delivery_date", *in.EstimatedDeliveryDate)
	}
	if in.ActualDeliveryDate != nil {
		add("actual_delivery_date", *in.ActualDeliveryDate)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE shipments SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), shipmentColumns)

	var s domain.Shipment
	err := r.db.GetContext(ctx, &s, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PostgresShipmentRepository) ListItems(ctx context.Context, shipmentID int) ([]domain.ShipmentItem, error) {
	items := []domain.ShipmentItem{}
	query := `SELECT id, shipment_id, product, quantity, unit, description FROM shipment_items WHERE shipment_id = $1 ORDER BY id`

	if err := r.db.SelectContext(ctx, &items, query, shipmentID); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PostgresShipmentRepository) CreateItem(ctx context.Context, item *domain.ShipmentItem) error {
	query := `
        INSERT INTO shipment_items (shipment_id, product, quantity, unit, description)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `
	return r.db.QueryRowContext(ctx, query,
		item.ShipmentID,
		item.Product,
		item.Quantity,
		item.Unit,
		item.Description,
	).Scan(&item.ID)
}

func (r *PostgresShipmentRepository) UpdateItem(ctx context.Context, itemID int, in ports.UpdateItemInput) (*domain.ShipmentItem, error) {
	sets := []string{}
	args := []interface{}{}

	add := func(col string, v interface{}) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if in.Product != nil {
		add("product", *in.Product)
	}
	if in.Quantity != nil {
		add("quantity", *in.Quantity)
	}
	if in.Unit != nil {
		add("unit", *in.Unit)
	}
	if in.Description != nil {
		add("description", *in.Description)
	}
	if len(sets) == 0 {
		var item domain.ShipmentItem
		err := r.db.GetContext(ctx, &item, `SELECT id, shipment_id, product, quantity, unit, description FROM shipment_items WHERE id = $1`, itemID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return &item, err
	}

	args = append(args, itemID)
	query := fmt.Sprintf(`UPDATE shipment_items SET %s WHERE id = $%d RETURNING id, shipment_id, product, quantity, unit, description`,
		strings.Join(sets, ", "), len(args))

	var item domain.ShipmentItem
	err := r.db.GetContext(ctx, &item, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *PostgresShipmentRepository) DeleteItem(ctx context.Context, itemID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM shipment_items WHERE id = $1`, itemID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresShipmentRepository) ListUpdates(ctx context.Context, shipmentID int) ([]domain.ShipmentUpdate, error) {
	updates := []domain.ShipmentUpdate{}
	query := `
        SELECT id, shipment_id, status, location, comments, updated_by, timestamp
        FROM shipment_updates WHERE shipment_id = $1
        ORDER BY timestamp DESC, id DESC
    `
	if err := r.db.SelectContext(ctx, &updates, query, shipmentID); err != nil {
		return nil, err
	}
	return updates, nil
}

// ApplyStatusChange writes the shipment row, the history entry and the
// cycle-time upsert in one transaction.
func (r *PostgresShipmentRepository) ApplyStatusChange(ctx context.Context, s *domain.Shipment, update *domain.ShipmentUpdate, cycle *domain.CycleTimes) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
        UPDATE shipments
        SET status = $1, invoice_number = $2, in_route_at = $3, delivered_at = $4, actual_delivery_date = $5, updated_at = $6
        WHERE id = $7
    `, s.Status, s.InvoiceNumber, s.InRouteAt, s.DeliveredAt, s.ActualDeliveryDate, s.UpdatedAt, s.ID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	if err := tx.QueryRowContext(ctx, `
        INSERT INTO shipment_updates (shipment_id, status, location, comments, updated_by, timestamp)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `, update.ShipmentID, update.Status, update.Location, update.Comments, update.UpdatedBy, update.Timestamp).Scan(&update.ID); err != nil {
		return err
	}

	if err := upsertCycleTimes(ctx, tx, cycle); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PostgresShipmentRepository) UpsertCycleTimes(ctx context.Context, cycle *domain.CycleTimes) error {
	return upsertCycleTimes(ctx, r.db, cycle)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func upsertCycleTimes(ctx context.Context, db execer, cycle *domain.CycleTimes) error {
	_, err := db.ExecContext(ctx, `
        INSERT INTO shipment_cycle_times (shipment_id, company_id, created_at, pending_at, in_transit_at, delivered_at, closed_at, hours_pending_to_transit, hours_transit_to_delivered, hours_delivered_to_closed, hours_total_cycle, hours_to_delivery, computed_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
        ON CONFLICT (shipment_id) DO UPDATE SET
            company_id = EXCLUDED.company_id,
            created_at = EXCLUDED.created_at,
            pending_at = EXCLUDED.pending_at,
            in_transit_at = EXCLUDED.in_transit_at,
            delivered_at = EXCLUDED.delivered_at,
            closed_at = EXCLUDED.closed_at,
            hours_pending_to_transit = EXCLUDED.hours_pending_to_transit,
            hours_transit_to_delivered = EXCLUDED.hours_transit_to_delivered,
            hours_delivered_to_closed = EXCLUDED.hours_delivered_to_closed,
            hours_total_cycle = EXCLUDED.hours_total_cycle,
            hours_to_delivery = EXCLUDED.hours_to_delivery,
            computed_at = NOW(),
            updated_at = NOW()
    `,
		cycle.ShipmentID,
		cycle.CompanyID,
		cycle.CreatedAt,
		cycle.PendingAt,
		cycle.InTransitAt,
		cycle.DeliveredAt,
		cycle.ClosedAt,
		cycle.HoursPendingToTransit,
		cycle.HoursTransitToDelivered,
		cycle.HoursDeliveredToClosed,
		cycle.HoursTotalCycle,
		cycle.HoursToDelivery,
	)
	return err
}

func (r *PostgresShipmentRepository) ListCycleTimes(ctx context.Context, filter ports.CycleTimeFilter) ([]domain.CycleTimes, error) {
	query := fmt.Sprintf(`SELECT %s FROM shipment_cycle_times WHERE 1=1`, cycleColumns)
	args := []interface{}{}

	if filter.CompanyID != nil {
		args = append(args, *filter.CompanyID)
		query += fmt.Sprintf(" AND company_id = $%d", len(args))
	}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}

	cycles := []domain.CycleTimes{}
	if err := r.db.SelectContext(ctx, &cycles, query, args...); err != nil {
		return nil, err
	}
	return cycles, nil
}

func (r *PostgresShipmentRepository) ListNotifications(ctx context.Context, shipmentID int) ([]domain.ShipmentNotification, error) {
	notifications := []domain.ShipmentNotification{}
	query := `
        SELECT id, shipment_id, email_to, subject, status, sent_by, shipment_status, error_message, sent_at
        FROM shipment_notifications WHERE shipment_id = $1
        ORDER BY sent_at DESC, id DESC
    `
	if err := r.db.SelectContext(ctx, &notifications, query, shipmentID); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *PostgresShipmentRepository) HasSentNotification(ctx context.Context, shipmentID int, status domain.Status) (bool, error) {
	var id int
	err := r.db.GetContext(ctx, &id, `
        SELECT id FROM shipment_notifications
        WHERE shipment_id = $1 AND shipment_status = $2 AND status = 'sent'
        LIMIT 1
    `, shipmentID, status)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *PostgresShipmentRepository) CreateNotification(ctx context.Context, n *domain.ShipmentNotification) error {
	query := `
        INSERT INTO shipment_notifications (shipment_id, email_to, subject, status, sent_by, shipment_status, error_message, sent_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
        RETURNING id, sent_at
    `
	return r.db.QueryRowContext(ctx, query,
		n.ShipmentID,
		n.EmailTo,
		n.Subject,
		n.Status,
		n.SentBy,
		n.ShipmentStatus,
		n.ErrorMessage,
	).Scan(&n.ID, &n.SentAt)
}

func (r *PostgresShipmentRepository) ClientEmailSettings(ctx context.Context, clientID int) (string, bool, error) {
	var row struct {
		Email              string `db:"email"`
		EmailNotifications bool   `db:"email_notifications"`
	}
	err := r.db.GetContext(ctx, &row, `SELECT email, email_notifications FROM clients WHERE id = $1`, clientID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, domain.ErrNotFound
	}
	if err != nil {
		return "", false, err
	}
	return row.Email, row.EmailNotifications, nil
}

func (r *PostgresShipmentRepository) ListDeliveredBetween(ctx context.Context, companyID int, from, to time.Time) ([]domain.Shipment, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM shipments
        WHERE company_id = $1 AND status = 'delivered' AND delivered_at >= $2 AND delivered_at <= $3
        ORDER BY delivered_at
    `, shipmentColumns)

	shipments := []domain.Shipment{}
	if err := r.db.SelectContext(ctx, &shipments, query, companyID, from, to); err != nil {
		return nil, err
	}
	return shipments, nil
}
