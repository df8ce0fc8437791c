package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"digo-dashboard/internal/core/auth"
	"digo-dashboard/internal/core/httperr"
	"digo-dashboard/internal/core/logger"
	"digo-dashboard/internal/features/shipments/domain"
	"digo-dashboard/internal/features/shipments/ports"
)

// ShipmentHandler handles HTTP requests for shipments, their items,
// history and cycle-time metrics.
type ShipmentHandler struct {
	service ports.ShipmentService
}

// NewShipmentHandler creates a new ShipmentHandler.
func NewShipmentHandler(service ports.ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{service: service}
}

// ItemRequest represents one product line in a request body.
type ItemRequest struct {
	Product     string  `json:"product"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	Description string  `json:"description"`
}

// CreateShipmentRequest represents the request body for creating a
// shipment. Dates are accepted as "2006-01-02" or RFC 3339 strings.
type CreateShipmentRequest struct {
	TrackingCode          string        `json:"trackingCode"`
	CompanyID             int           `json:"companyId"`
	CustomerID            *int          `json:"customerId"`
	CustomerName          string        `json:"customerName"`
	CustomerEmail         string        `json:"customerEmail"`
	InvoiceNumber         string        `json:"invoiceNumber"`
	Origin                string        `json:"origin"`
	Destination           string        `json:"destination"`
	Product               string        `json:"product"`
	Quantity              float64       `json:"quantity"`
	Unit                  string        `json:"unit"`
	Carrier               string        `json:"carrier"`
	TransportCost         float64       `json:"transportCost"`
	DepartureDate         string        `json:"departureDate"`
	EstimatedDeliveryDate string        `json:"estimatedDeliveryDate"`
	Items                 []ItemRequest `json:"items"`
}

// UpdateShipmentRequest represents a partial shipment edit.
type UpdateShipmentRequest struct {
	CustomerID            *int     `json:"customerId"`
	CustomerName          *string  `json:"customerName"`
	CustomerEmail         *string  `json:"customerEmail"`
	InvoiceNumber         *string  `json:"invoiceNumber"`
	Origin                *string  `json:"origin"`
	Destination           *string  `json:"destination"`
	Product               *string  `json:"product"`
	Quantity              *float64 `json:"quantity"`
	Unit                  *string  `json:"unit"`
	Carrier               *string  `json:"carrier"`
	TransportCost         *float64 `json:"transportCost"`
	DepartureDate         *string  `json:"departureDate"`
	EstimatedDeliveryDate *string  `json:"estimatedDeliveryDate"`
	ActualDeliveryDate    *string  `json:"actualDeliveryDate"`
}

// UpdateItemRequest represents a partial item edit.
type UpdateItemRequest struct {
	Product     *string  `json:"product"`
	Quantity    *float64 `json:"quantity"`
	Unit        *string  `json:"unit"`
	Description *string  `json:"description"`
}

// StatusChangeRequest represents the request body for a status change.
type StatusChangeRequest struct {
	Status           string `json:"status"`
	Location         string `json:"location"`
	Comments         string `json:"comments"`
	InvoiceNumber    string `json:"invoiceNumber"`
	SendNotification *bool  `json:"sendNotification"`
}

// parseDate accepts "2006-01-02" and RFC 3339 timestamps.
func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseSince accepts a relative window like "30d" or an absolute date.
func parseSince(raw string, now time.Time) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if strings.HasSuffix(raw, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(raw, "d"))
		if err != nil {
			return nil, err
		}
		t := now.AddDate(0, 0, -days)
		return &t, nil
	}
	return parseDate(raw)
}

// List handles GET /api/shipments.
// @Summary List shipments
// @Description Lists shipments newest first with pagination and optional filters.
// @Tags Shipments
// @Produce json
// @Param companyId query int false "Company filter"
// @Param status query string false "Status filter"
// @Param since query string false "Date or relative window like 30d"
// @Param page query int false "Page, default 1"
// @Param limit query int false "Page size, default 50"
// @Success 200 {object} ports.ShipmentPage
// @Failure 400 {object} httperr.ErrorResponse
// @Failure 500 {object} httperr.ErrorResponse
// @Router /api/shipments [get]
func (h *ShipmentHandler) List(c *fiber.Ctx) error {
	filter := ports.ShipmentFilter{
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", 50),
	}
	if v := c.QueryInt("companyId", 0); v > 0 {
		filter.CompanyID = &v
	}
	if v := c.Query("status"); v != "" {
		status := domain.Status(v)
		if !domain.ValidStatus(status) {
			return httperr.Respond(c, http.StatusBadRequest, "Invalid status filter")
		}
		filter.Status = &status
	}
	since, err := parseSince(c.Query("since"), time.Now())
	if err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid since filter")
	}
	filter.Since = since

	page, err := h.service.List(c.Context(), filter)
	if err != nil {
		logger.Get().Error("Failed to list shipments", zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusOK).JSON(page)
}

// Get handles GET /api/shipments/:id.
// @Summary Get a shipment with its items
// @Tags Shipments
// @Produce json
// @Param id path int true "Shipment id"
// @Success 200 {object} ports.ShipmentWithItems
// @Failure 404 {object} httperr.ErrorResponse
// @Failure 500 {object} httperr.ErrorResponse
// @Router /api/shipments/{id} [get]
func (h *ShipmentHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid shipment id")
	}

	shipment, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return httperr.Respond(c, http.StatusNotFound, "Shipment not found")
		}
		logger.Get().Error("Failed to get shipment", zap.Int("id", id), zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusOK).JSON(shipment)
}

// GetByTrackingCode handles GET /api/shipments/tracking/:trackingCode.
// @Summary Get a shipment by tracking code
// @Tags Shipments
// @Produce json
// @Param trackingCode path string true "Tracking code"
// @Success 200 {object} domain.Shipment
// @Failure 404 {object} httperr.ErrorResponse
// @Failure 500 {object} httperr.ErrorResponse
// @Router /api/shipments/tracking/{trackingCode} [get]
func (h *ShipmentHandler) GetByTrackingCode(c *fiber.Ctx) error {
	code := c.Params("trackingCode")

	shipment, err := h.service.GetByTrackingCode(c.Context(), code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return httperr.Respond(c, http.StatusNotFound, "Shipment not found")
		}
		logger.Get().Error("Failed to get shipment by tracking code", zap.String("code", code), zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusOK).JSON(shipment)
}

// Create handles POST /api/shipments.
// @Summary Create a shipment
// @Tags Shipments
// @Accept json
// @Produce json
// @Param shipment body CreateShipmentRequest true "Shipment with optional items"
// @Success 201 {object} ports.ShipmentWithItems
// @Failure 400 {object} httperr.ErrorResponse
// @Failure 500 {object} httperr.ErrorResponse
// @Router /api/shipments [post]
func (h *ShipmentHandler) Create(c *fiber.Ctx) error {
	var req CreateShipmentRequest
	if err := c.BodyParser(&req); err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.TrackingCode == "" || req.CompanyID == 0 {
		return httperr.Respond(c, http.StatusBadRequest, "trackingCode and companyId are required")
	}

	departure, err := parseDate(req.DepartureDate)
	if err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid departureDate")
	}
	estimated, err := parseDate(req.EstimatedDeliveryDate)
	if err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid estimatedDeliveryDate")
	}

	in := ports.CreateShipmentInput{
		TrackingCode:          req.TrackingCode,
		CompanyID:             req.CompanyID,
		CustomerID:            req.CustomerID,
		CustomerName:          req.CustomerName,
		CustomerEmail:         req.CustomerEmail,
		InvoiceNumber:         req.InvoiceNumber,
		Origin:                req.Origin,
		Destination:           req.Destination,
		Product:               req.Product,
		Quantity:              req.Quantity,
		Unit:                  req.Unit,
		Carrier:               req.Carrier,
		TransportCost:         req.TransportCost,
		DepartureDate:         departure,
		EstimatedDeliveryDate: estimated,
	}
	for _, item := range req.Items {
		in.Items = append(in.Items, ports.ItemInput{
			Product:     item.Product,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			Description: item.Description,
		})
	}

	shipment, err := h.service.Create(c.Context(), in)
	if err != nil {
		logger.Get().Error("Failed to create shipment", zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusCreated).JSON(shipment)
}

// Update handles PATCH /api/shipments/:id.
// @Summary Edit shipment details
// @Tags Shipments
// @Accept json
// @Produce json
// @Param id path int true "Shipment id"
// @Param shipment body UpdateShipmentRequest true "Fields to update"
// @Success 200 {object} domain.Shipment
// @Failure 400 {object} httperr.ErrorResponse
// @Failure 404 {object} httperr.ErrorResponse
// @Failure 500 {object} httperr.ErrorResponse
// @Router /api/shipments/{id} [patch]
func (h *ShipmentHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid shipment id")
	}

	var req UpdateShipmentRequest
	if err := c.BodyParser(&req); err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid request body")
	}

	in := ports.UpdateShipmentInput{
		CustomerID:    req.CustomerID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		InvoiceNumber: req.InvoiceNumber,
		Origin:        req.Origin,
		Destination:   req.Destination,
		Product:       req.Product,
		Quantity:      req.Quantity,
		Unit:          req.Unit,
		Carrier:       req.Carrier,
		TransportCost: req.TransportCost,
	}
	for _, d := range []struct {
		raw  *string
		dest **time.Time
	}{
		{req.DepartureDate, &in.DepartureDate},
		{req.EstimatedDeliveryDate, &in.EstimatedDeliveryDate},
		{req.ActualDeliveryDate, &in.ActualDeliveryDate},
	} {
		if d.raw == nil {
			continue
		}
		parsed, err := parseDate(*d.raw)
		if err != nil {
			return httperr.Respond(c, http.StatusBadRequest, "Invalid date field")
		}
		*d.dest = parsed
	}

	shipment, err := h.service.Update(c.Context(), id, in)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return httperr.Respond(c, http.StatusNotFound, "Shipment not found")
		}
		logger.Get().Error("Failed to update shipment", zap.Int("id", id), zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusOK).JSON(shipment)
}

// ListItems handles GET /api/shipments/:id/items.
// @Summary List shipment items
// @Tags Shipments
// @Produce json
// @Param id path int true "Shipment id"
// @Success 200 {array} domain.ShipmentItem
// @Failure 404 {object} httperr.ErrorResponse
// @Failure 500 {object} httperr.ErrorResponse
// @Router /api/shipments/{id}/items [get]
func (h *ShipmentHandler) ListItems(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid shipment id")
	}

	shipment, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return httperr.Respond(c, http.StatusNotFound, "Shipment not found")
		}
		logger.Get().Error("Failed to list items", zap.Int("id", id), zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusOK).JSON(shipment.Items)
}

// AddItem handles POST /api/shipments/:id/items.
// @Summary Add a shipment item
// @Tags Shipments
// @Accept json
// @Produce json
// @Param id path int true "Shipment id"
// @Param item body ItemRequest true "Item"
// @Success 201 {object} domain.ShipmentItem
// @Failure 400 {object} httperr.ErrorResponse
// @Failure 404 {object} httperr.ErrorResponse
// @Failure 500 {object} httperr.ErrorResponse
// @Router /api/shipments/{id}/items [post]
func (h *ShipmentHandler) AddItem(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid shipment id")
	}

	var req ItemRequest
	if err := c.BodyParser(&req); err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.Product == "" || req.Quantity == 0 || req.Unit == "" {
		return httperr.Respond(c, http.StatusBadRequest, "product, quantity and unit are required")
	}

	item, err := h.service.AddItem(c.Context(), id, ports.ItemInput{
		Product:     req.Product,
		Quantity:    req.Quantity,
		Unit:        req.Unit,
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return httperr.Respond(c, http.StatusNotFound, "Shipment not found")
		}
		logger.Get().Error("Failed to add item", zap.Int("shipment_id", id), zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusCreated).JSON(item)
}

// UpdateItem handles PATCH /api/shipments/:id/items/:itemId.
// @Summary Edit a shipment item
// @Tags Shipments
// @Accept json
// @Produce json
// @Param id path int true "Shipment id"
// @Param itemId path int true "Item id"
// @Param item body UpdateItemRequest true "Fields to update"
// @Success 200 {object} domain.ShipmentItem
// @Failure 404 {object} httperr.ErrorResponse
// @Failure 500 {object} httperr.ErrorResponse
// @Router /api/shipments/{id}/items/{itemId} [patch]
func (h *ShipmentHandler) UpdateItem(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid shipment id")
	}
	itemID, err := c.ParamsInt("itemId")
	if err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid item id")
	}

	var req UpdateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid request body")
	}

	item, err := h.service.UpdateItem(c.Context(), id, itemID, ports.UpdateItemInput{
		Product:     req.Product,
		Quantity:    req.Quantity,
		Unit:        req.Unit,
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return httperr.Respond(c, http.StatusNotFound, "Item not found in this shipment")
		}
		logger.Get().Error("Failed to update item", zap.Int("item_id", itemID), zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusOK).JSON(item)
}

// DeleteItem handles DELETE /api/shipments/:id/items/:itemId.
// @Summary Delete a shipment item
// @Tags Shipments
// @Produce json
// @Param id path int true "Shipment id"
// @Param itemId path int true "Item id"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} httperr.ErrorResponse
// @Failure 500 {object} httperr.ErrorResponse
// @Router /api/shipments/{id}/items/{itemId} [delete]
func (h *ShipmentHandler) DeleteItem(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid shipment id")
	}
	itemID, err := c.ParamsInt("itemId")
	if err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid item id")
	}

	if err := h.service.DeleteItem(c.Context(), id, itemID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return httperr.Respond(c, http.StatusNotFound, "Item not found")
		}
		logger.Get().Error("Failed to delete item", zap.Int("item_id", itemID), zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"success": true})
}

// ListUpdates handles GET /api/shipments/:id/updates.
// @Summary Shipment status history
// @Tags Shipments
// @Produce json
// @Param id path int true "Shipment id"
// @Success 200 {array} domain.ShipmentUpdate
// @Failure 500 {object} httperr.ErrorResponse
// @Router /api/shipments/{id}/updates [get]
func (h *ShipmentHandler) ListUpdates(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid shipment id")
	}

	updates, err := h.service.ListUpdates(c.Context(), id)
	if err != nil {
		logger.Get().Error("Failed to list updates", zap.Int("id", id), zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusOK).JSON(updates)
}

// ListNotifications handles GET /api/shipments/:id/notifications.
// @Summary Shipment email history
// @Tags Shipments
// @Produce json
// @Param id path int true "Shipment id"
// @Success 200 {array} domain.ShipmentNotification
// @Failure 500 {object} httperr.ErrorResponse
// @Router /api/shipments/{id}/notifications [get]
func (h *ShipmentHandler) ListNotifications(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid shipment id")
	}

	notifications, err := h.service.ListNotifications(c.Context(), id)
	if err != nil {
		logger.Get().Error("Failed to list shipment notifications", zap.Int("id", id), zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusOK).JSON(notifications)
}

// ChangeStatus handles PATCH /api/shipments/:id/status.
// @Summary Change shipment status
// @Description Applies a lifecycle transition, appends history, recomputes cycle times and notifies the customer by email.
// @Tags Shipments
// @Accept json
// @Produce json
// @Param id path int true "Shipment id"
// @Param change body StatusChangeRequest true "New status"
// @Success 200 {object} ports.StatusChangeResult
// @Failure 400 {object} httperr.ErrorResponse
// @Failure 404 {object} httperr.ErrorResponse
// @Failure 500 {object} httperr.ErrorResponse
// @Router /api/shipments/{id}/status [patch]
func (h *ShipmentHandler) ChangeStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid shipment id")
	}

	var req StatusChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.Status == "" {
		return httperr.Respond(c, http.StatusBadRequest, "status is required")
	}

	in := ports.StatusChangeInput{
		Status:           domain.Status(req.Status),
		Location:         req.Location,
		Comments:         req.Comments,
		InvoiceNumber:    req.InvoiceNumber,
		SendNotification: req.SendNotification == nil || *req.SendNotification,
	}
	if claims := auth.UserFromCtx(c); claims != nil {
		in.UpdatedBy = claims.UserID
	}

	result, err := h.service.ChangeStatus(c.Context(), id, in)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return httperr.Respond(c, http.StatusNotFound, "Envío no encontrado")
		case errors.Is(err, domain.ErrInvalidStatus):
			return httperr.Respond(c, http.StatusBadRequest, "Estado de envío inválido")
		case errors.Is(err, domain.ErrInvoiceRequired):
			return httperr.Respond(c, http.StatusBadRequest, "Número de factura requerido")
		}
		logger.Get().Error("Failed to change shipment status", zap.Int("id", id), zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusOK).JSON(result)
}

// CycleTimes handles GET /api/shipments/:id/cycle-times.
// @Summary Shipment cycle times
// @Description Recomputes and returns the derived cycle times of one shipment.
// @Tags Metrics
// @Produce json
// @Param id path int true "Shipment id"
// @Success 200 {object} domain.CycleTimes
// @Failure 404 {object} httperr.ErrorResponse
// @Failure 500 {object} httperr.ErrorResponse
// @Router /api/shipments/{id}/cycle-times [get]
func (h *ShipmentHandler) CycleTimes(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid shipment id")
	}

	cycle, err := h.service.RecalculateCycleTimes(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return httperr.Respond(c, http.StatusNotFound, "Envío no encontrado")
		}
		logger.Get().Error("Failed to recalculate cycle times", zap.Int("id", id), zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	if cycle == nil {
		return httperr.Respond(c, http.StatusNotFound, "Tiempos de ciclo no disponibles")
	}
	return c.Status(http.StatusOK).JSON(cycle)
}

// AggregateCycleTimes handles GET /api/metrics/cycle-times.
// @Summary Aggregate cycle-time metrics
// @Tags Metrics
// @Produce json
// @Param companyId query int false "Company filter"
// @Param startDate query string false "Creation window start (2006-01-02)"
// @Param endDate query string false "Creation window end (2006-01-02)"
// @Success 200 {object} ports.CycleTimeMetrics
// @Failure 400 {object} httperr.ErrorResponse
// @Failure 500 {object} httperr.ErrorResponse
// @Router /api/metrics/cycle-times [get]
func (h *ShipmentHandler) AggregateCycleTimes(c *fiber.Ctx) error {
	filter := ports.CycleTimeFilter{}
	if v := c.QueryInt("companyId", 0); v > 0 {
		filter.CompanyID = &v
	}

	start, err := parseDate(c.Query("startDate"))
	if err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid startDate")
	}
	end, err := parseDate(c.Query("endDate"))
	if err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid endDate")
	}
	filter.StartDate = start
	filter.EndDate = end

	metrics, err := h.service.AggregateCycleTimes(c.Context(), filter)
	if err != nil {
		logger.Get().Error("Failed to aggregate cycle times", zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusOK).JSON(metrics)
}
