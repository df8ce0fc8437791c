package handler

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"digo-dashboard/internal/core/auth"
	"digo-dashboard/internal/core/httperr"
	"digo-dashboard/internal/core/logger"
	kpidomain "digo-dashboard/internal/features/kpis/domain"
	"digo-dashboard/internal/features/sales/domain"
	"digo-dashboard/internal/features/sales/ports"
)

// SalesHandler handles HTTP requests for weekly sales captures and
// monthly closes.
type SalesHandler struct {
	service ports.SalesService
}

// NewSalesHandler creates a new SalesHandler.
func NewSalesHandler(service ports.SalesService) *SalesHandler {
	return &SalesHandler{service: service}
}

// WeeklyUpdateRequest represents the request body for a weekly sales
// capture. The period fields are honored for admins only.
type WeeklyUpdateRequest struct {
	CompanyID     int     `json:"companyId"`
	Value         float64 `json:"value"`
	AdminOverride bool    `json:"adminOverride"`
	WeekNumber    int     `json:"weekNumber"`
	Month         string  `json:"month"`
	Year          int     `json:"year"`
}

// MonthlyCloseRequest represents the request body for closing a month.
type MonthlyCloseRequest struct {
	CompanyID int    `json:"companyId"`
	Month     string `json:"month"`
	Year      int    `json:"year"`
	Override  bool   `json:"override"`
}

// AutoCloseRequest represents the request body for the automatic close.
type AutoCloseRequest struct {
	CompanyID int    `json:"companyId"`
	Month     string `json:"month"`
	Year      int    `json:"year"`
}

// monthClosedResponse is the conflict payload returned when a month is
// already closed, carrying the record that closed it.
type monthClosedResponse struct {
	Message        string              `json:"message"`
	RayID          string              `json:"ray_id"`
	ExistingRecord *kpidomain.KpiValue `json:"existingRecord,omitempty"`
}

// WeeklyUpdate handles POST /api/sales/weekly-update.
// @Summary Record a weekly sales value
// @Description Records one weekly sales value for the detected period. Admins may pin the period and write into closed months.
// @Tags Sales
// @Accept json
// @Produce json
// @Param update body WeeklyUpdateRequest true "Weekly sales value"
// @Success 201 {object} ports.WeeklyUpdateResult
// @Failure 400 {object} httperr.ErrorResponse
// @Failure 404 {object} httperr.ErrorResponse
// @Failure 409 {object} httperr.ErrorResponse
// @Failure 500 {object} httperr.ErrorResponse
// @Router /api/sales/weekly-update [post]
func (h *SalesHandler) WeeklyUpdate(c *fiber.Ctx) error {
	var req WeeklyUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.CompanyID == 0 || req.Value <= 0 {
		return httperr.Respond(c, http.StatusBadRequest, "companyId and a positive value are required")
	}

	claims := auth.UserFromCtx(c)
	in := ports.WeeklyUpdateInput{
		CompanyID: req.CompanyID,
		Value:     req.Value,
	}
	if claims != nil {
		in.UserID = claims.UserID
		if claims.IsAdmin() {
			in.AdminOverride = req.AdminOverride
			in.WeekNumber = req.WeekNumber
			in.Month = req.Month
			in.Year = req.Year
		}
	}

	res, err := h.service.WeeklyUpdate(c.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMonthClosed):
			return httperr.Respond(c, http.StatusConflict, "El mes ya está cerrado oficialmente")
		case errors.Is(err, domain.ErrNoSalesKpi):
			return httperr.Respond(c, http.StatusNotFound, "No existe KPI de volumen de ventas para la empresa")
		case errors.Is(err, domain.ErrUnknownMonth):
			return httperr.Respond(c, http.StatusBadRequest, "Nombre de mes inválido")
		}
		logger.Get().Error("Failed to record weekly sales", zap.Int("company_id", req.CompanyID), zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusCreated).JSON(res)
}

// MonthlyClose handles POST /api/sales/monthly-close. Admin only.
// @Summary Close a sales month
// @Description Writes the official monthly record from the accumulated weekly values.
// @Tags Sales
// @Accept json
// @Produce json
// @Param close body MonthlyCloseRequest true "Month to close"
// @Success 201 {object} ports.MonthlyCloseResult
// @Failure 400 {object} httperr.ErrorResponse
// @Failure 404 {object} httperr.ErrorResponse
// @Failure 409 {object} httperr.ErrorResponse
// @Failure 500 {object} httperr.ErrorResponse
// @Router /api/sales/monthly-close [post]
func (h *SalesHandler) MonthlyClose(c *fiber.Ctx) error {
	var req MonthlyCloseRequest
	if err := c.BodyParser(&req); err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.CompanyID == 0 || req.Month == "" || req.Year == 0 {
		return httperr.Respond(c, http.StatusBadRequest, "companyId, month and year are required")
	}

	in := ports.MonthlyCloseInput{
		CompanyID: req.CompanyID,
		Month:     req.Month,
		Year:      req.Year,
		Override:  req.Override,
	}
	if claims := auth.UserFromCtx(c); claims != nil {
		in.ClosedBy = claims.UserID
	}

	res, err := h.service.MonthlyClose(c.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMonthClosed):
			return h.respondMonthClosed(c, req.CompanyID, req.Month, req.Year)
		case errors.Is(err, domain.ErrNoSalesKpi):
			return httperr.Respond(c, http.StatusNotFound, "No existe KPI de volumen de ventas para la empresa")
		case errors.Is(err, domain.ErrNoWeeklyData):
			return httperr.Respond(c, http.StatusBadRequest, "No hay registros semanales para el período")
		case errors.Is(err, domain.ErrUnknownMonth):
			return httperr.Respond(c, http.StatusBadRequest, "Nombre de mes inválido")
		}
		logger.Get().Error("Failed to close sales month", zap.Int("company_id", req.CompanyID), zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusCreated).JSON(res)
}

// AutoCloseMonth handles POST /api/sales/auto-close-month. Admin only.
// @Summary Automatically close the previous month
// @Description Closes the given month for the given company, or the previous month for every company when omitted.
// @Tags Sales
// @Accept json
// @Produce json
// @Param close body AutoCloseRequest false "Scope of the close"
// @Success 200 {array} ports.AutoCloseResult
// @Failure 500 {object} httperr.ErrorResponse
// @Router /api/sales/auto-close-month [post]
func (h *SalesHandler) AutoCloseMonth(c *fiber.Ctx) error {
	var req AutoCloseRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return httperr.Respond(c, http.StatusBadRequest, "Invalid request body")
		}
	}

	var companyIDs []int
	if req.CompanyID > 0 {
		companyIDs = []int{req.CompanyID}
	}

	closedBy := 0
	if claims := auth.UserFromCtx(c); claims != nil {
		closedBy = claims.UserID
	}

	results, err := h.service.AutoCloseMonth(c.Context(), companyIDs, req.Month, req.Year, closedBy)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownMonth) {
			return httperr.Respond(c, http.StatusBadRequest, "Nombre de mes inválido")
		}
		logger.Get().Error("Failed to auto close month", zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusOK).JSON(results)
}

// MonthStatus handles GET /api/sales/monthly-status.
// @Summary Month close status
// @Description Reports whether a month is closed along with its weekly and monthly records.
// @Tags Sales
// @Produce json
// @Param companyId query int true "Company"
// @Param month query string false "Spanish month name, defaults to the current month"
// @Param year query int false "Year, defaults to the current year"
// @Success 200 {object} ports.MonthStatus
// @Failure 400 {object} httperr.ErrorResponse
// @Failure 404 {object} httperr.ErrorResponse
// @Failure 500 {object} httperr.ErrorResponse
// @Router /api/sales/monthly-status [get]
func (h *SalesHandler) MonthStatus(c *fiber.Ctx) error {
	companyID := c.QueryInt("companyId", 0)
	if companyID == 0 {
		return httperr.Respond(c, http.StatusBadRequest, "companyId is required")
	}

	status, err := h.service.MonthStatus(c.Context(), companyID, c.Query("month"), c.QueryInt("year", 0))
	if err != nil {
		if errors.Is(err, domain.ErrNoSalesKpi) {
			return httperr.Respond(c, http.StatusNotFound, "No existe KPI de volumen de ventas para la empresa")
		}
		if errors.Is(err, domain.ErrUnknownMonth) {
			return httperr.Respond(c, http.StatusBadRequest, "Nombre de mes inválido")
		}
		logger.Get().Error("Failed to get month status", zap.Int("company_id", companyID), zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusOK).JSON(status)
}

func (h *SalesHandler) respondMonthClosed(c *fiber.Ctx, companyID int, month string, year int) error {
	resp := monthClosedResponse{
		Message: "El mes ya está cerrado oficialmente",
		RayID:   c.GetRespHeader("X-Ray-ID"),
	}
	if status, err := h.service.MonthStatus(c.Context(), companyID, month, year); err == nil {
		resp.ExistingRecord = status.MonthlyRecord
	}
	return c.Status(http.StatusConflict).JSON(resp)
}
