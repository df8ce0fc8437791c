package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"digo-dashboard/internal/core/mailer"
	salesdomain "digo-dashboard/internal/features/sales/domain"
	"digo-dashboard/internal/features/shipments/domain"
	"digo-dashboard/internal/features/shipments/ports"
)

// Logistics KPI names refreshed after each delivery.
const (
	kpiTransportCost   = "Costo de Transporte"
	kpiPreparationTime = "Tiempo de Preparación"
	kpiDeliveryTime    = "Tiempo de Entrega"
)

// ShipmentServiceImpl implements ports.ShipmentService.
type ShipmentServiceImpl struct {
	repo     ports.ShipmentRepository
	mailer   mailer.Mailer
	renderer *mailer.Renderer
	kpis     ports.LogisticsKpiUpdater
	log      *zap.Logger
	now      func() time.Time
}

// NewShipmentService creates a new ShipmentServiceImpl. mailer,
// renderer and kpis may be nil; the matching side effects are skipped.
func NewShipmentService(repo ports.ShipmentRepository, m mailer.Mailer, renderer *mailer.Renderer, kpis ports.LogisticsKpiUpdater, log *zap.Logger) *ShipmentServiceImpl {
	return &ShipmentServiceImpl{
		repo:     repo,
		mailer:   m,
		renderer: renderer,
		kpis:     kpis,
		log:      log,
		now:      time.Now,
	}
}

func (s *ShipmentServiceImpl) List(ctx context.Context, filter ports.ShipmentFilter) (*ports.ShipmentPage, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	shipments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service: list shipments: %w", err)
	}

	totalPages := (total + filter.Limit - 1) / filter.Limit
	return &ports.ShipmentPage{
		Shipments: shipments,
		Pagination: ports.Pagination{
			Page:       filter.Page,
			Limit:      filter.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasMore:    filter.Page*filter.Limit < total,
		},
	}, nil
}

func (s *ShipmentServiceImpl) Get(ctx context.Context, id int) (*ports.ShipmentWithItems, error) {
	shipment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: get shipment: %w", err)
	}

	items, err := s.repo.ListItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: list items: %w", err)
	}
	return &ports.ShipmentWithItems{Shipment: *shipment, Items: items}, nil
}

func (s *ShipmentServiceImpl) GetByTrackingCode(ctx context.Context, code string) (*domain.Shipment, error) {
	shipment, err := s.repo.GetByTrackingCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("service: get by tracking code: %w", err)
	}
	return shipment, nil
}

func (s *ShipmentServiceImpl) Create(ctx context.Context, in ports.CreateShipmentInput) (*ports.ShipmentWithItems, error) {
	shipment := &domain.Shipment{
		TrackingCode:          in.TrackingCode,
		CompanyID:             in.CompanyID,
		CustomerID:            in.CustomerID,
		CustomerName:          in.CustomerName,
		CustomerEmail:         in.CustomerEmail,
		InvoiceNumber:         in.InvoiceNumber,
		Origin:                in.Origin,
		Destination:           in.Destination,
		Product:               in.Product,
		Quantity:              in.Quantity,
		Unit:                  in.Unit,
		Carrier:               in.Carrier,
		TransportCost:         in.TransportCost,
		Status:                domain.StatusPending,
		DepartureDate:         in.DepartureDate,
		EstimatedDeliveryDate: in.EstimatedDeliveryDate,
	}
	if err := s.repo.Create(ctx, shipment); err != nil {
		return nil, fmt.Errorf("service: create shipment: %w", err)
	}

	for _, itemIn := range in.Items {
		item := &domain.ShipmentItem{
			ShipmentID:  shipment.ID,
			Product:     itemIn.Product,
			Quantity:    itemIn.Quantity,
			Unit:        itemIn.Unit,
			Description: itemIn.Description,
		}
		if err := s.repo.CreateItem(ctx, item); err != nil {
			return nil, fmt.Errorf("service: create item: %w", err)
		}
	}

	items, err := s.repo.ListItems(ctx, shipment.ID)
	if err != nil {
		return nil, fmt.Errorf("service: list items: %w", err)
	}
	return &ports.ShipmentWithItems{Shipment: *shipment, Items: items}, nil
}

func (s *ShipmentServiceImpl) Update(ctx context.Context, id int, in ports.UpdateShipmentInput) (*domain.Shipment, error) {
	shipment, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("service: update shipment: %w", err)
	}
	return shipment, nil
}

func (s *ShipmentServiceImpl) AddItem(ctx context.Context, shipmentID int, in ports.ItemInput) (*domain.ShipmentItem, error) {
	if _, err := s.repo.GetByID(ctx, shipmentID); err != nil {
		return nil, fmt.Errorf("service: get shipment: %w", err)
	}

	item := &domain.ShipmentItem{
		ShipmentID:  shipmentID,
		Product:     in.Product,
		Quantity:    in.Quantity,
		Unit:        in.Unit,
		Description: in.Description,
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("service: create item: %w", err)
	}
	return item, nil
}

func (s *ShipmentServiceImpl) UpdateItem(ctx context.Context, shipmentID, itemID int, in ports.UpdateItemInput) (*domain.ShipmentItem, error) {
	if err := s.itemBelongsTo(ctx, shipmentID, itemID); err != nil {
		return nil, err
	}

	item, err := s.repo.UpdateItem(ctx, itemID, in)
	if err != nil {
		return nil, fmt.Errorf("service: update item: %w", err)
	}
	return item, nil
}

func (s *ShipmentServiceImpl) DeleteItem(ctx context.Context, shipmentID, itemID int) error {
	if err := s.itemBelongsTo(ctx, shipmentID, itemID); err != nil {
		return err
	}
	if err := s.repo.DeleteItem(ctx, itemID); err != nil {
		return fmt.Errorf("service: delete item: %w", err)
	}
	return nil
}

func (s *ShipmentServiceImpl) itemBelongsTo(ctx context.Context, shipmentID, itemID int) error {
	items, err := s.repo.ListItems(ctx, shipmentID)
	if err != nil {
		return fmt.Errorf("service: list items: %w", err)
	}
	for _, item := range items {
		if item.ID == itemID {
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *ShipmentServiceImpl) ListUpdates(ctx context.Context, shipmentID int) ([]domain.ShipmentUpdate, error) {
	updates, err := s.repo.ListUpdates(ctx, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("service: list updates: %w", err)
	}
	return updates, nil
}

func (s *ShipmentServiceImpl) ListNotifications(ctx context.Context, shipmentID int) ([]domain.ShipmentNotification, error) {
	notifications, err := s.repo.ListNotifications(ctx, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("service: list notifications: %w", err)
	}
	return notifications, nil
}

// ChangeStatus applies a lifecycle transition. The shipment row, the
// history entry and the cycle-time recompute commit together; the
// customer email and the logistics KPI refresh run after commit and
// never fail the change.
func (s *ShipmentServiceImpl) ChangeStatus(ctx context.Context, id int, in ports.StatusChangeInput) (*ports.StatusChangeResult, error) {
	if !domain.ValidStatus(in.Status) {
		return nil, domain.ErrInvalidStatus
	}

	shipment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: get shipment: %w", err)
	}

	if in.Status == domain.StatusInTransit && in.InvoiceNumber == "" && shipment.InvoiceNumber == "" {
		return nil, domain.ErrInvoiceRequired
	}

	statusChanged := shipment.Status != in.Status
	now := s.now()

	shipment.Status = in.Status
	shipment.UpdatedAt = now
	if in.InvoiceNumber != "" {
		shipment.InvoiceNumber = in.InvoiceNumber
	}
	if in.Status == domain.StatusInTransit && shipment.InRouteAt == nil {
		shipment.InRouteAt = &now
	}
	if in.Status == domain.StatusDelivered && shipment.DeliveredAt == nil {
		shipment.DeliveredAt = &now
		shipment.ActualDeliveryDate = &now
	}

	update := &domain.ShipmentUpdate{
		ShipmentID: id,
		Status:     in.Status,
		Location:   in.Location,
		Comments:   in.Comments,
		UpdatedBy:  in.UpdatedBy,
		Timestamp:  now,
	}

	history, err := s.repo.ListUpdates(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: list updates: %w", err)
	}
	cycle := domain.ComputeCycleTimes(shipment, append(history, *update))

	if err := s.repo.ApplyStatusChange(ctx, shipment, update, &cycle); err != nil {
		return nil, fmt.Errorf("service: apply status change: %w", err)
	}

	if in.Status == domain.StatusDelivered && statusChanged {
		if err := s.refreshLogisticsKpis(ctx, shipment.CompanyID); err != nil {
			s.log.Error("logistics kpi refresh failed",
				zap.Int("company_id", shipment.CompanyID),
				zap.Error(err),
			)
		}
	}

	result := &ports.StatusChangeResult{Shipment: *shipment, Update: *update}
	if statusChanged && in.SendNotification {
		result.EmailNotificationSent, result.EmailWarning = s.sendStatusEmail(ctx, shipment, in)
	}
	return result, nil
}

// sendStatusEmail resolves the recipient, renders the status template
// and records the outcome. It only ever returns a warning.
func (s *ShipmentServiceImpl) sendStatusEmail(ctx context.Context, shipment *domain.Shipment, in ports.StatusChangeInput) (bool, string) {
	if s.mailer == nil || s.renderer == nil {
		return false, "Notificaciones por correo deshabilitadas"
	}

	recipient := ""
	enabled := true
	if shipment.CustomerID != nil {
		email, clientEnabled, err := s.repo.ClientEmailSettings(ctx, *shipment.CustomerID)
		switch {
		case err == nil:
			recipient = email
			enabled = clientEnabled
		case errors.Is(err, domain.ErrNotFound):
		default:
			s.log.Warn("client lookup failed", zap.Int("client_id", *shipment.CustomerID), zap.Error(err))
		}
	}
	if recipient == "" && shipment.CustomerEmail != "" {
		// Legacy shipments carry the email directly, with
		// notifications implicitly enabled.
		recipient = shipment.CustomerEmail
		enabled = true
	}

	if recipient == "" {
		return false, "No hay email de cliente configurado"
	}
	if !enabled {
		return false, "Cliente tiene notificaciones deshabilitadas"
	}

	alreadySent, err := s.repo.HasSentNotification(ctx, shipment.ID, in.Status)
	if err != nil {
		s.log.Warn("sent notification lookup failed", zap.Int("shipment_id", shipment.ID), zap.Error(err))
		return false, "No se pudo verificar el historial de notificaciones"
	}
	if alreadySent {
		return false, "Notificación ya enviada previamente para este estado"
	}

	subject, html, err := s.renderer.RenderShipmentStatus(string(in.Status), mailer.ShipmentEmailData{
		TrackingCode:      shipment.TrackingCode,
		Origin:            shipment.Origin,
		Destination:       shipment.Destination,
		Product:           shipment.Product,
		EstimatedDelivery: shipment.EstimatedDeliveryDate,
	})
	if err != nil {
		s.log.Warn("email render failed", zap.String("status", string(in.Status)), zap.Error(err))
		return false, "No se pudo generar el correo de notificación"
	}

	sendErr := s.mailer.Send(ctx, mailer.Message{To: recipient, Subject: subject, HTML: html})

	notification := &domain.ShipmentNotification{
		ShipmentID:     shipment.ID,
		EmailTo:        recipient,
		Subject:        subject,
		Status:         domain.NotificationSent,
		SentBy:         in.UpdatedBy,
		ShipmentStatus: in.Status,
	}
	warning := ""
	if sendErr != nil {
		notification.Status = domain.NotificationFailed
		notification.ErrorMessage = sendErr.Error()
		warning = "No se pudo enviar el correo de notificación"
		s.log.Error("status email failed",
			zap.Int("shipment_id", shipment.ID),
			zap.String("to", recipient),
			zap.Error(sendErr),
		)
	}
	if err := s.repo.CreateNotification(ctx, notification); err != nil {
		s.log.Warn("notification record failed", zap.Int("shipment_id", shipment.ID), zap.Error(err))
	}

	return sendErr == nil, warning
}

// RecalculateCycleTimes recomputes and stores the cycle times of one
// shipment. A missing shipment is reported as domain.ErrNotFound; any
// other failure is logged and surfaces as nil, nil.
func (s *ShipmentServiceImpl) RecalculateCycleTimes(ctx context.Context, shipmentID int) (*domain.CycleTimes, error) {
	shipment, err := s.repo.GetByID(ctx, shipmentID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		s.log.Error("cycle time recompute failed", zap.Int("shipment_id", shipmentID), zap.Error(err))
		return nil, nil
	}

	updates, err := s.repo.ListUpdates(ctx, shipmentID)
	if err != nil {
		s.log.Error("cycle time recompute failed", zap.Int("shipment_id", shipmentID), zap.Error(err))
		return nil, nil
	}

	cycle := domain.ComputeCycleTimes(shipment, updates)
	if err := s.repo.UpsertCycleTimes(ctx, &cycle); err != nil {
		s.log.Error("cycle time upsert failed", zap.Int("shipment_id", shipmentID), zap.Error(err))
		return nil, nil
	}
	return &cycle, nil
}

func (s *ShipmentServiceImpl) AggregateCycleTimes(ctx context.Context, filter ports.CycleTimeFilter) (*ports.CycleTimeMetrics, error) {
	cycles, err := s.repo.ListCycleTimes(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service: list cycle times: %w", err)
	}

	metrics := &ports.CycleTimeMetrics{
		Period:    "all",
		CompanyID: filter.CompanyID,
	}
	if filter.StartDate != nil {
		metrics.StartDate = filter.StartDate.Format("2006-01-02")
	}
	if filter.EndDate != nil {
		metrics.EndDate = filter.EndDate.Format("2006-01-02")
	}

	metrics.TotalShipments = len(cycles)
	for _, c := range cycles {
		if c.ClosedAt != nil {
			metrics.CompletedShipments++
		}
	}
	metrics.AvgPendingToTransit = avgHours(cycles, func(c domain.CycleTimes) *string { return c.HoursPendingToTransit })
	metrics.AvgTransitToDelivered = avgHours(cycles, func(c domain.CycleTimes) *string { return c.HoursTransitToDelivered })
	metrics.AvgDeliveredToClosed = avgHours(cycles, func(c domain.CycleTimes) *string { return c.HoursDeliveredToClosed })
	metrics.AvgTotalCycle = avgHours(cycles, func(c domain.CycleTimes) *string { return c.HoursTotalCycle })
	metrics.AvgToDelivery = avgHours(cycles, func(c domain.CycleTimes) *string { return c.HoursToDelivery })

	return metrics, nil
}

func avgHours(cycles []domain.CycleTimes, pick func(domain.CycleTimes) *string) *float64 {
	sum := 0.0
	n := 0
	for _, c := range cycles {
		h := pick(c)
		if h == nil {
			continue
		}
		var v float64
		if _, err := fmt.Sscanf(*h, "%f", &v); err != nil {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}

// refreshLogisticsKpis recomputes the company's logistics averages over
// the shipments delivered this month and records them as KPI values.
func (s *ShipmentServiceImpl) refreshLogisticsKpis(ctx context.Context, companyID int) error {
	if s.kpis == nil {
		return nil
	}

	now := s.now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, 0).Add(-time.Second)

	delivered, err := s.repo.ListDeliveredBetween(ctx, companyID, from, to)
	if err != nil {
		return fmt.Errorf("list delivered shipments: %w", err)
	}

	costSum, costN := 0.0, 0
	prepSum, prepN := 0.0, 0
	delivSum, delivN := 0.0, 0
	for _, sh := range delivered {
		if sh.TransportCost > 0 {
			costSum += sh.TransportCost
			costN++
		}
		if sh.InRouteAt != nil {
			prepSum += sh.InRouteAt.Sub(sh.CreatedAt).Hours()
			prepN++
			if sh.DeliveredAt != nil {
				delivSum += sh.DeliveredAt.Sub(*sh.InRouteAt).Hours()
				delivN++
			}
		}
	}

	avg := func(sum float64, n int) float64 {
		if n == 0 {
			return 0
		}
		return sum / float64(n)
	}

	period := salesdomain.MonthLabel(salesdomain.MonthName(now.Month()), now.Year())
	values := []struct {
		name  string
		value float64
	}{
		{kpiTransportCost, avg(costSum, costN)},
		{kpiPreparationTime, avg(prepSum, prepN)},
		{kpiDeliveryTime, avg(delivSum, delivN)},
	}
	for _, v := range values {
		if err := s.kpis.RecordLogisticsValue(ctx, companyID, v.name, fmt.Sprintf("%.2f", v.value), period); err != nil {
			return fmt.Errorf("record %q: %w", v.name, err)
		}
	}
	return nil
}
