package handler

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"digo-dashboard/internal/core/auth"
	"digo-dashboard/internal/core/httperr"
	"digo-dashboard/internal/core/logger"
	"digo-dashboard/internal/features/users/domain"
	"digo-dashboard/internal/features/users/ports"
)

// UserHandler handles HTTP requests for auth, users and tenant
// reference data.
type UserHandler struct {
	service ports.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// LoginRequest represents the request body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateUserRequest represents the request body for creating a user.
type CreateUserRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	CompanyID *int   `json:"companyId"`
	AreaID    *int   `json:"areaId"`
}

// UpdateUserRequest represents the request body for updating a user.
type UpdateUserRequest struct {
	Name      *string `json:"name"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	Role      *string `json:"role"`
	CompanyID *int    `json:"companyId"`
	AreaID    *int    `json:"areaId"`
}

// Login handles POST /api/auth/login.
// @Summary Log in
// @Description Verifies credentials and returns a bearer token with the user profile.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Credentials"
// @Success 200 {object} ports.LoginResult
// @Failure 400 {object} httperr.ErrorResponse
// @Failure 401 {object} httperr.ErrorResponse
// @Router /api/auth/login [post]
func (h *UserHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return httperr.Respond(c, http.StatusBadRequest, "email and password are required")
	}

	result, err := h.service.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return httperr.Respond(c, http.StatusUnauthorized, "Invalid email or password")
		}
		logger.Get().Error("Login failed", zap.String("email", req.Email), zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusOK).JSON(result)
}

// Me handles GET /api/auth/me.
// @Summary Current user
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.User
// @Failure 401 {object} httperr.ErrorResponse
// @Router /api/auth/me [get]
func (h *UserHandler) Me(c *fiber.Ctx) error {
	claims := auth.UserFromCtx(c)
	if claims == nil {
		return httperr.Respond(c, http.StatusUnauthorized, "Authentication required")
	}

	user, err := h.service.GetUser(c.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return httperr.Respond(c, http.StatusUnauthorized, "Account no longer exists")
		}
		logger.Get().Error("Failed to load current user", zap.Int("user_id", claims.UserID), zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusOK).JSON(user)
}

// ListUsers handles GET /api/users.
// @Summary List users
// @Tags Users
// @Produce json
// @Success 200 {array} domain.User
// @Failure 500 {object} httperr.ErrorResponse
// @Router /api/users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.service.ListUsers(c.Context())
	if err != nil {
		logger.Get().Error("Failed to list users", zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusOK).JSON(users)
}

// GetUser handles GET /api/users/:id.
// @Summary Get a user
// @Tags Users
// @Produce json
// @Param id path int true "User id"
// @Success 200 {object} domain.User
// @Failure 404 {object} httperr.ErrorResponse
// @Router /api/users/{id} [get]
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid user id")
	}

	user, err := h.service.GetUser(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return httperr.Respond(c, http.StatusNotFound, "User not found")
		}
		logger.Get().Error("Failed to get user", zap.Int("id", id), zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusOK).JSON(user)
}

// CreateUser handles POST /api/users. Admin only.
// @Summary Create a user
// @Tags Users
// @Accept json
// @Produce json
// @Param user body CreateUserRequest true "User details"
// @Success 201 {object} domain.User
// @Failure 400 {object} httperr.ErrorResponse
// @Failure 409 {object} httperr.ErrorResponse
// @Router /api/users [post]
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return httperr.Respond(c, http.StatusBadRequest, "name, email and password are required")
	}

	user, err := h.service.CreateUser(c.Context(), ports.CreateUserInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
		CompanyID: req.CompanyID,
		AreaID:    req.AreaID,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmailTaken):
			return httperr.Respond(c, http.StatusConflict, "Email already registered")
		case errors.Is(err, domain.ErrInvalidRole):
			return httperr.Respond(c, http.StatusBadRequest, "Invalid role")
		}
		logger.Get().Error("Failed to create user", zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusCreated).JSON(user)
}

// UpdateUser handles PUT /api/users/:id.
// @Summary Update a user
// @Tags Users
// @Accept json
// @Produce json
// @Param id path int true "User id"
// @Param user body UpdateUserRequest true "Fields to update"
// @Success 200 {object} domain.User
// @Failure 404 {object} httperr.ErrorResponse
// @Failure 409 {object} httperr.ErrorResponse
// @Router /api/users/{id} [put]
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid user id")
	}

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid request body")
	}

	user, err := h.service.UpdateUser(c.Context(), id, ports.UpdateUserInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
		CompanyID: req.CompanyID,
		AreaID:    req.AreaID,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return httperr.Respond(c, http.StatusNotFound, "User not found")
		case errors.Is(err, domain.ErrEmailTaken):
			return httperr.Respond(c, http.StatusConflict, "Email already registered")
		case errors.Is(err, domain.ErrInvalidRole):
			return httperr.Respond(c, http.StatusBadRequest, "Invalid role")
		}
		logger.Get().Error("Failed to update user", zap.Int("id", id), zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusOK).JSON(user)
}

// DeleteUser handles DELETE /api/users/:id. Admin only.
// @Summary Delete a user
// @Tags Users
// @Produce json
// @Param id path int true "User id"
// @Success 200 {object} map[string]string
// @Failure 404 {object} httperr.ErrorResponse
// @Router /api/users/{id} [delete]
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid user id")
	}

	if err := h.service.DeleteUser(c.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return httperr.Respond(c, http.StatusNotFound, "User not found")
		}
		logger.Get().Error("Failed to delete user", zap.Int("id", id), zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "User deleted"})
}

// ListCompanies handles GET /api/companies.
// @Summary List companies
// @Tags Companies
// @Produce json
// @Success 200 {array} domain.Company
// @Failure 500 {object} httperr.ErrorResponse
// @Router /api/companies [get]
func (h *UserHandler) ListCompanies(c *fiber.Ctx) error {
	companies, err := h.service.ListCompanies(c.Context())
	if err != nil {
		logger.Get().Error("Failed to list companies", zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusOK).JSON(companies)
}

// GetCompany handles GET /api/companies/:id.
// @Summary Get a company
// @Tags Companies
// @Produce json
// @Param id path int true "Company id"
// @Success 200 {object} domain.Company
// @Failure 404 {object} httperr.ErrorResponse
// @Router /api/companies/{id} [get]
func (h *UserHandler) GetCompany(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid company id")
	}

	company, err := h.service.GetCompany(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return httperr.Respond(c, http.StatusNotFound, "Company not found")
		}
		logger.Get().Error("Failed to get company", zap.Int("id", id), zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusOK).JSON(company)
}

// ListAreas handles GET /api/areas.
// @Summary List areas
// @Tags Companies
// @Produce json
// @Param companyId query int false "Company filter"
// @Success 200 {array} domain.Area
// @Failure 500 {object} httperr.ErrorResponse
// @Router /api/areas [get]
func (h *UserHandler) ListAreas(c *fiber.Ctx) error {
	var companyID *int
	if v := c.QueryInt("companyId", 0); v > 0 {
		companyID = &v
	}

	areas, err := h.service.ListAreas(c.Context(), companyID)
	if err != nil {
		logger.Get().Error("Failed to list areas", zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusOK).JSON(areas)
}
