package handler

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"digo-dashboard/internal/core/auth"
	"digo-dashboard/internal/core/httperr"
	"digo-dashboard/internal/core/logger"
	"digo-dashboard/internal/features/kpis/domain"
	"digo-dashboard/internal/features/kpis/ports"
)

// KpiHandler handles HTTP requests for KPIs and their values.
type KpiHandler struct {
	service ports.KpiService
}

// NewKpiHandler creates a new KpiHandler.
func NewKpiHandler(service ports.KpiService) *KpiHandler {
	return &KpiHandler{service: service}
}

// CreateKpiRequest represents the request body for creating a KPI.
type CreateKpiRequest struct {
	CompanyID      int    `json:"companyId"`
	AreaID         int    `json:"areaId"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Target         string `json:"target"`
	AnnualGoal     string `json:"annualGoal"`
	Unit           string `json:"unit"`
	Frequency      string `json:"frequency"`
	Responsible    string `json:"responsible"`
	InvertedMetric *bool  `json:"invertedMetric"`
}

// UpdateKpiRequest represents the request body for updating a KPI.
type UpdateKpiRequest struct {
	Name           *string `json:"name"`
	Description    *string `json:"description"`
	Target         *string `json:"target"`
	AnnualGoal     *string `json:"annualGoal"`
	Unit           *string `json:"unit"`
	Frequency      *string `json:"frequency"`
	Responsible    *string `json:"responsible"`
	InvertedMetric *bool   `json:"invertedMetric"`
}

// CreateValueRequest represents the request body for reporting a KPI value.
type CreateValueRequest struct {
	KpiID    int    `json:"kpiId"`
	Value    string `json:"value"`
	Period   string `json:"period"`
	Month    int    `json:"month"`
	Year     int    `json:"year"`
	Comments string `json:"comments"`
}

// ListKpis handles GET /api/kpis.
// @Summary List KPIs
// @Description Lists KPIs, optionally filtered by company and area.
// @Tags KPIs
// @Produce json
// @Param companyId query int false "Company filter"
// @Param areaId query int false "Area filter"
// @Success 200 {array} domain.Kpi
// @Failure 500 {object} httperr.ErrorResponse
// @Router /api/kpis [get]
func (h *KpiHandler) ListKpis(c *fiber.Ctx) error {
	filter := ports.KpiFilter{}
	if v := c.QueryInt("companyId", 0); v > 0 {
		filter.CompanyID = &v
	}
	if v := c.QueryInt("areaId", 0); v > 0 {
		filter.AreaID = &v
	}

	kpis, err := h.service.ListKpis(c.Context(), filter)
	if err != nil {
		logger.Get().Error("Failed to list kpis", zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusOK).JSON(kpis)
}

// CollaboratorsPerformance handles GET /api/collaborators-performance.
// @Summary KPI compliance grouped by responsible person
// @Description Dashboard aggregate served from cache until the next KPI value write.
// @Tags KPIs
// @Produce json
// @Param companyId query int false "Company filter (1=Dura, 2=Orsega)"
// @Success 200 {array} ports.CollaboratorPerformance
// @Failure 400 {object} httperr.ErrorResponse
// @Failure 500 {object} httperr.ErrorResponse
// @Router /api/collaborators-performance [get]
func (h *KpiHandler) CollaboratorsPerformance(c *fiber.Ctx) error {
	var companyID *int
	if raw := c.Query("companyId"); raw != "" {
		v := c.QueryInt("companyId", 0)
		if v != 1 && v != 2 {
			return httperr.Respond(c, http.StatusBadRequest, "companyId query param inválido (1=Dura, 2=Orsega)")
		}
		companyID = &v
	}

	performance, err := h.service.CollaboratorsPerformance(c.Context(), companyID)
	if err != nil {
		logger.Get().Error("Failed to aggregate collaborators performance", zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusOK).JSON(performance)
}

// GetKpi handles GET /api/kpis/:id.
// @Summary Get a KPI
// @Tags KPIs
// @Produce json
// @Param id path int true "KPI id"
// @Success 200 {object} domain.Kpi
// @Failure 404 {object} httperr.ErrorResponse
// @Failure 500 {object} httperr.ErrorResponse
// @Router /api/kpis/{id} [get]
func (h *KpiHandler) GetKpi(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid KPI id")
	}

	kpi, err := h.service.GetKpi(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return httperr.Respond(c, http.StatusNotFound, "KPI not found")
		}
		logger.Get().Error("Failed to get kpi", zap.Int("id", id), zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusOK).JSON(kpi)
}

// CreateKpi handles POST /api/kpis.
// @Summary Create a KPI
// @Tags KPIs
// @Accept json
// @Produce json
// @Param kpi body CreateKpiRequest true "KPI details"
// @Success 201 {object} domain.Kpi
// @Failure 400 {object} httperr.ErrorResponse
// @Failure 500 {object} httperr.ErrorResponse
// @Router /api/kpis [post]
func (h *KpiHandler) CreateKpi(c *fiber.Ctx) error {
	var req CreateKpiRequest
	if err := c.BodyParser(&req); err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.Name == "" || req.CompanyID == 0 || req.AreaID == 0 {
		return httperr.Respond(c, http.StatusBadRequest, "name, companyId and areaId are required")
	}

	kpi, err := h.service.CreateKpi(c.Context(), ports.CreateKpiInput{
		CompanyID:   req.CompanyID,
		AreaID:      req.AreaID,
		Name:        req.Name,
		Description: req.Description,
		Target:      req.Target,
		AnnualGoal:  req.AnnualGoal,
		Unit:        req.Unit,
		Frequency:   req.Frequency,
		Responsible: req.Responsible,
		Inverted:    req.InvertedMetric,
	})
	if err != nil {
		logger.Get().Error("Failed to create kpi", zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusCreated).JSON(kpi)
}

// UpdateKpi handles PUT /api/kpis/:id.
// @Summary Update a KPI
// @Tags KPIs
// @Accept json
// @Produce json
// @Param id path int true "KPI id"
// @Param kpi body UpdateKpiRequest true "Fields to update"
// @Success 200 {object} domain.Kpi
// @Failure 400 {object} httperr.ErrorResponse
// @Failure 404 {object} httperr.ErrorResponse
// @Failure 500 {object} httperr.ErrorResponse
// @Router /api/kpis/{id} [put]
func (h *KpiHandler) UpdateKpi(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid KPI id")
	}

	var req UpdateKpiRequest
	if err := c.BodyParser(&req); err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid request body")
	}

	kpi, err := h.service.UpdateKpi(c.Context(), id, ports.UpdateKpiInput{
		Name:        req.Name,
		Description: req.Description,
		Target:      req.Target,
		AnnualGoal:  req.AnnualGoal,
		Unit:        req.Unit,
		Frequency:   req.Frequency,
		Responsible: req.Responsible,
		Inverted:    req.InvertedMetric,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return httperr.Respond(c, http.StatusNotFound, "KPI not found")
		}
		logger.Get().Error("Failed to update kpi", zap.Int("id", id), zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusOK).JSON(kpi)
}

// DeleteKpi handles DELETE /api/kpis/:id.
// @Summary Delete a KPI
// @Tags KPIs
// @Produce json
// @Param id path int true "KPI id"
// @Success 200 {object} map[string]string
// @Failure 404 {object} httperr.ErrorResponse
// @Failure 500 {object} httperr.ErrorResponse
// @Router /api/kpis/{id} [delete]
func (h *KpiHandler) DeleteKpi(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid KPI id")
	}

	if err := h.service.DeleteKpi(c.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return httperr.Respond(c, http.StatusNotFound, "KPI not found")
		}
		logger.Get().Error("Failed to delete kpi", zap.Int("id", id), zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "KPI deleted"})
}

// ListValues handles GET /api/kpi-values.
// @Summary KPI value history
// @Tags KPIs
// @Produce json
// @Param kpiId query int true "KPI id"
// @Success 200 {array} domain.KpiValue
// @Failure 400 {object} httperr.ErrorResponse
// @Failure 500 {object} httperr.ErrorResponse
// @Router /api/kpi-values [get]
func (h *KpiHandler) ListValues(c *fiber.Ctx) error {
	kpiID := c.QueryInt("kpiId", 0)
	if kpiID <= 0 {
		return httperr.Respond(c, http.StatusBadRequest, "kpiId is required")
	}

	values, err := h.service.ListValues(c.Context(), kpiID)
	if err != nil {
		logger.Get().Error("Failed to list kpi values", zap.Int("kpi_id", kpiID), zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusOK).JSON(values)
}

// LatestValue handles GET /api/kpi-values/latest.
// @Summary Latest KPI value
// @Tags KPIs
// @Produce json
// @Param kpiId query int true "KPI id"
// @Success 200 {object} domain.KpiValue
// @Failure 404 {object} httperr.ErrorResponse
// @Failure 500 {object} httperr.ErrorResponse
// @Router /api/kpi-values/latest [get]
func (h *KpiHandler) LatestValue(c *fiber.Ctx) error {
	kpiID := c.QueryInt("kpiId", 0)
	if kpiID <= 0 {
		return httperr.Respond(c, http.StatusBadRequest, "kpiId is required")
	}

	value, err := h.service.LatestValue(c.Context(), kpiID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return httperr.Respond(c, http.StatusNotFound, "No values reported for this KPI")
		}
		logger.Get().Error("Failed to get latest kpi value", zap.Int("kpi_id", kpiID), zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusOK).JSON(value)
}

// CreateValue handles POST /api/kpi-values.
// @Summary Report a KPI value
// @Description Stores a measurement, computing its status and compliance against the KPI target.
// @Tags KPIs
// @Accept json
// @Produce json
// @Param value body CreateValueRequest true "Measurement"
// @Success 201 {object} domain.KpiValue
// @Failure 400 {object} httperr.ErrorResponse
// @Failure 404 {object} httperr.ErrorResponse
// @Failure 500 {object} httperr.ErrorResponse
// @Router /api/kpi-values [post]
func (h *KpiHandler) CreateValue(c *fiber.Ctx) error {
	var req CreateValueRequest
	if err := c.BodyParser(&req); err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.KpiID == 0 || req.Value == "" {
		return httperr.Respond(c, http.StatusBadRequest, "kpiId and value are required")
	}

	userID := 0
	if claims := auth.UserFromCtx(c); claims != nil {
		userID = claims.UserID
	}

	value, err := h.service.CreateValue(c.Context(), ports.CreateValueInput{
		KpiID:     req.KpiID,
		UpdatedBy: userID,
		Value:     req.Value,
		Period:    req.Period,
		Month:     req.Month,
		Year:      req.Year,
		Comments:  req.Comments,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return httperr.Respond(c, http.StatusNotFound, "KPI not found")
		}
		logger.Get().Error("Failed to create kpi value", zap.Int("kpi_id", req.KpiID), zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusCreated).JSON(value)
}
