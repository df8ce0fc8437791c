package handler

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"digo-dashboard/internal/core/httperr"
	"digo-dashboard/internal/core/logger"
	"digo-dashboard/internal/features/clients/domain"
	"digo-dashboard/internal/features/clients/ports"
)

// ClientHandler handles HTTP requests for clients.
type ClientHandler struct {
	service ports.ClientService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(service ports.ClientService) *ClientHandler {
	return &ClientHandler{service: service}
}

// CreateClientRequest represents the request body for creating a client.
type CreateClientRequest struct {
	Name               string `json:"name"`
	Email              string `json:"email"`
	Phone              string `json:"phone"`
	ContactPerson      string `json:"contactPerson"`
	Address            string `json:"address"`
	CompanyID          int    `json:"companyId"`
	EmailNotifications *bool  `json:"emailNotifications"`
	Notes              string `json:"notes"`
}

// UpdateClientRequest represents the request body for updating a client.
type UpdateClientRequest struct {
	Name               *string `json:"name"`
	Email              *string `json:"email"`
	Phone              *string `json:"phone"`
	ContactPerson      *string `json:"contactPerson"`
	Address            *string `json:"address"`
	EmailNotifications *bool   `json:"emailNotifications"`
	IsActive           *bool   `json:"isActive"`
	Notes              *string `json:"notes"`
}

// List handles GET /api/clients.
// @Summary List clients
// @Tags Clients
// @Produce json
// @Param companyId query int false "Company filter"
// @Success 200 {array} domain.Client
// @Failure 500 {object} httperr.ErrorResponse
// @Router /api/clients [get]
func (h *ClientHandler) List(c *fiber.Ctx) error {
	var companyID *int
	if v := c.QueryInt("companyId", 0); v > 0 {
		companyID = &v
	}

	clients, err := h.service.List(c.Context(), companyID)
	if err != nil {
		logger.Get().Error("Failed to list clients", zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusOK).JSON(clients)
}

// Get handles GET /api/clients/:id.
// @Summary Get a client
// @Tags Clients
// @Produce json
// @Param id path int true "Client id"
// @Success 200 {object} domain.Client
// @Failure 404 {object} httperr.ErrorResponse
// @Failure 500 {object} httperr.ErrorResponse
// @Router /api/clients/{id} [get]
func (h *ClientHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid client id")
	}

	client, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return httperr.Respond(c, http.StatusNotFound, "Client not found")
		}
		logger.Get().Error("Failed to get client", zap.Int("id", id), zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusOK).JSON(client)
}

// Create handles POST /api/clients.
// @Summary Create a client
// @Tags Clients
// @Accept json
// @Produce json
// @Param client body CreateClientRequest true "Client details"
// @Success 201 {object} domain.Client
// @Failure 400 {object} httperr.ErrorResponse
// @Failure 500 {object} httperr.ErrorResponse
// @Router /api/clients [post]
func (h *ClientHandler) Create(c *fiber.Ctx) error {
	var req CreateClientRequest
	if err := c.BodyParser(&req); err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.Name == "" || req.CompanyID == 0 {
		return httperr.Respond(c, http.StatusBadRequest, "name and companyId are required")
	}

	client, err := h.service.Create(c.Context(), ports.CreateClientInput{
		Name:               req.Name,
		Email:              req.Email,
		Phone:              req.Phone,
		ContactPerson:      req.ContactPerson,
		Address:            req.Address,
		CompanyID:          req.CompanyID,
		EmailNotifications: req.EmailNotifications,
		Notes:              req.Notes,
	})
	if err != nil {
		logger.Get().Error("Failed to create client", zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusCreated).JSON(client)
}

// Update handles PUT /api/clients/:id.
// @Summary Update a client
// @Tags Clients
// @Accept json
// @Produce json
// @Param id path int true "Client id"
// @Param client body UpdateClientRequest true "Fields to update"
// @Success 200 {object} domain.Client
// @Failure 404 {object} httperr.ErrorResponse
// @Failure 500 {object} httperr.ErrorResponse
// @Router /api/clients/{id} [put]
func (h *ClientHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid client id")
	}

	var req UpdateClientRequest
	if err := c.BodyParser(&req); err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid request body")
	}

	client, err := h.service.Update(c.Context(), id, ports.UpdateClientInput{
		Name:               req.Name,
		Email:              req.Email,
		Phone:              req.Phone,
		ContactPerson:      req.ContactPerson,
		Address:            req.Address,
		EmailNotifications: req.EmailNotifications,
		IsActive:           req.IsActive,
		Notes:              req.Notes,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return httperr.Respond(c, http.StatusNotFound, "Client not found")
		}
		logger.Get().Error("Failed to update client", zap.Int("id", id), zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusOK).JSON(client)
}

// Delete handles DELETE /api/clients/:id.
// @Summary Delete a client
// @Tags Clients
// @Produce json
// @Param id path int true "Client id"
// @Success 200 {object} map[string]string
// @Failure 404 {object} httperr.ErrorResponse
// @Failure 500 {object} httperr.ErrorResponse
// @Router /api/clients/{id} [delete]
func (h *ClientHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid client id")
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return httperr.Respond(c, http.StatusNotFound, "Client not found")
		}
		logger.Get().Error("Failed to delete client", zap.Int("id", id), zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Client deleted"})
}
