package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"digo-dashboard/internal/core/auth"
	"digo-dashboard/internal/features/shipments/domain"
	"digo-dashboard/internal/features/shipments/ports"
)

// MockShipmentService is a mock implementation of ports.ShipmentService.
type MockShipmentService struct {
	mock.Mock
}

func (m *MockShipmentService) List(ctx context.Context, filter ports.ShipmentFilter) (*ports.ShipmentPage, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.ShipmentPage), args.Error(1)
}

func (m *MockShipmentService) Get(ctx context.Context, id int) (*ports.ShipmentWithItems, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.ShipmentWithItems), args.Error(1)
}

func (m *MockShipmentService) GetByTrackingCode(ctx context.Context, code string) (*domain.Shipment, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Shipment), args.Error(1)
}

func (m *MockShipmentService) Create(ctx context.Context, in ports.CreateShipmentInput) (*ports.ShipmentWithItems, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.ShipmentWithItems), args.Error(1)
}

func (m *MockShipmentService) Update(ctx context.Context, id int, in ports.UpdateShipmentInput) (*domain.Shipment, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Shipment), args.Error(1)
}

func (m *MockShipmentService) AddItem(ctx context.Context, shipmentID int, in ports.ItemInput) (*domain.ShipmentItem, error) {
	args := m.Called(ctx, shipmentID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShipmentItem), args.Error(1)
}

func (m *MockShipmentService) UpdateItem(ctx context.Context, shipmentID, itemID int, in ports.UpdateItemInput) (*domain.ShipmentItem, error) {
	args := m.Called(ctx, shipmentID, itemID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShipmentItem), args.Error(1)
}

func (m *MockShipmentService) DeleteItem(ctx context.Context, shipmentID, itemID int) error {
	args := m.Called(ctx, shipmentID, itemID)
	return args.Error(0)
}

func (m *MockShipmentService) ListUpdates(ctx context.Context, shipmentID int) ([]domain.ShipmentUpdate, error) {
	args := m.Called(ctx, shipmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ShipmentUpdate), args.Error(1)
}

func (m *MockShipmentService) ListNotifications(ctx context.Context, shipmentID int) ([]domain.ShipmentNotification, error) {
	args := m.Called(ctx, shipmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ShipmentNotification), args.Error(1)
}

func (m *MockShipmentService) ChangeStatus(ctx context.Context, id int, in ports.StatusChangeInput) (*ports.StatusChangeResult, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.StatusChangeResult), args.Error(1)
}

func (m *MockShipmentService) RecalculateCycleTimes(ctx context.Context, shipmentID int) (*domain.CycleTimes, error) {
	args := m.Called(ctx, shipmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CycleTimes), args.Error(1)
}

func (m *MockShipmentService) AggregateCycleTimes(ctx context.Context, filter ports.CycleTimeFilter) (*ports.CycleTimeMetrics, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.CycleTimeMetrics), args.Error(1)
}

func setupApp(service *MockShipmentService, claims *auth.Claims) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if claims != nil {
			auth.SetUserForTest(c, claims)
		}
		return c.Next()
	})
	h := NewShipmentHandler(service)
	app.Get("/api/shipments", h.List)
	app.Post("/api/shipments", h.Create)
	app.Get("/api/shipments/tracking/:trackingCode", h.GetByTrackingCode)
	app.Get("/api/shipments/:id", h.Get)
	app.Patch("/api/shipments/:id", h.Update)
	app.Get("/api/shipments/:id/items", h.ListItems)
	app.Post("/api/shipments/:id/items", h.AddItem)
	app.Patch("/api/shipments/:id/items/:itemId", h.UpdateItem)
	app.Delete("/api/shipments/:id/items/:itemId", h.DeleteItem)
	app.Get("/api/shipments/:id/updates", h.ListUpdates)
	app.Get("/api/shipments/:id/notifications", h.ListNotifications)
	app.Patch("/api/shipments/:id/status", h.ChangeStatus)
	app.Get("/api/shipments/:id/cycle-times", h.CycleTimes)
	app.Get("/api/metrics/cycle-times", h.AggregateCycleTimes)
	return app
}

func sendJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func getJSON(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func operatorClaims() *auth.Claims {
	return &auth.Claims{UserID: 7, Name: "Sofía", Email: "sofia@digo.mx", Role: "manager"}
}

func TestListShipments_Filters(t *testing.T) {
	service := new(MockShipmentService)
	app := setupApp(service, operatorClaims())

	companyID := 1
	status := domain.StatusInTransit
	service.On("List", mock.Anything, mock.MatchedBy(func(f ports.ShipmentFilter) bool {
		return f.CompanyID != nil && *f.CompanyID == companyID &&
			f.Status != nil && *f.Status == status &&
			f.Since != nil &&
			f.Page == 2 && f.Limit == 10
	})).Return(&ports.ShipmentPage{
		Shipments:  []domain.Shipment{{ID: 3, TrackingCode: "ECO-2025-003", CompanyID: 1}},
		Pagination: ports.Pagination{Page: 2, Limit: 10, Total: 11, TotalPages: 2, HasMore: false},
	}, nil)

	resp := getJSON(t, app, "/api/shipments?companyId=1&status=in_transit&since=30d&page=2&limit=10")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var page ports.ShipmentPage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	assert.Len(t, page.Shipments, 1)
	assert.Equal(t, 11, page.Pagination.Total)
	service.AssertExpectations(t)
}

func TestListShipments_InvalidStatus(t *testing.T) {
	service := new(MockShipmentService)
	app := setupApp(service, operatorClaims())

	resp := getJSON(t, app, "/api/shipments?status=lost")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	service.AssertNotCalled(t, "List")
}

func TestGetShipment_NotFound(t *testing.T) {
	service := new(MockShipmentService)
	app := setupApp(service, operatorClaims())

	service.On("Get", mock.Anything, 999).Return(nil, domain.ErrNotFound)

	resp := getJSON(t, app, "/api/shipments/999")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetShipmentByTrackingCode(t *testing.T) {
	service := new(MockShipmentService)
	app := setupApp(service, operatorClaims())

	service.On("GetByTrackingCode", mock.Anything, "ECO-2025-001").
		Return(&domain.Shipment{ID: 1, TrackingCode: "ECO-2025-001"}, nil)

	resp := getJSON(t, app, "/api/shipments/tracking/ECO-2025-001")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var shipment domain.Shipment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&shipment))
	assert.Equal(t, "ECO-2025-001", shipment.TrackingCode)
}

func TestCreateShipment(t *testing.T) {
	service := new(MockShipmentService)
	app := setupApp(service, operatorClaims())

	service.On("Create", mock.Anything, mock.MatchedBy(func(in ports.CreateShipmentInput) bool {
		return in.TrackingCode == "ECO-2025-010" && in.CompanyID == 1 &&
			in.DepartureDate != nil && in.DepartureDate.Format("2006-01-02") == "2025-03-01" &&
			len(in.Items) == 1 && in.Items[0].Product == "Grasa industrial"
	})).Return(&ports.ShipmentWithItems{
		Shipment: domain.Shipment{ID: 10, TrackingCode: "ECO-2025-010", Status: domain.StatusPending},
		Items:    []domain.ShipmentItem{{ID: 1, Product: "Grasa industrial"}},
	}, nil)

	resp := sendJSON(t, app, http.MethodPost, "/api/shipments", fiber.Map{
		"trackingCode":  "ECO-2025-010",
		"companyId":     1,
		"origin":        "CDMX",
		"destination":   "Monterrey",
		"departureDate": "2025-03-01",
		"items": []fiber.Map{
			{"product": "Grasa industrial", "quantity": 500, "unit": "KG"},
		},
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	service.AssertExpectations(t)
}

func TestCreateShipment_MissingTrackingCode(t *testing.T) {
	service := new(MockShipmentService)
	app := setupApp(service, operatorClaims())

	resp := sendJSON(t, app, http.MethodPost, "/api/shipments", fiber.Map{"companyId": 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	service.AssertNotCalled(t, "Create")
}

func TestUpdateShipment_ParsesDates(t *testing.T) {
	service := new(MockShipmentService)
	app := setupApp(service, operatorClaims())

	service.On("Update", mock.Anything, 4, mock.MatchedBy(func(in ports.UpdateShipmentInput) bool {
		return in.Carrier != nil && *in.Carrier == "Estafeta" &&
			in.EstimatedDeliveryDate != nil &&
			in.EstimatedDeliveryDate.Format("2006-01-02") == "2025-03-15"
	})).Return(&domain.Shipment{ID: 4, Carrier: "Estafeta"}, nil)

	resp := sendJSON(t, app, http.MethodPatch, "/api/shipments/4", fiber.Map{
		"carrier":               "Estafeta",
		"estimatedDeliveryDate": "2025-03-15",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	service.AssertExpectations(t)
}

func TestAddItem_MissingFields(t *testing.T) {
	service := new(MockShipmentService)
	app := setupApp(service, operatorClaims())

	resp := sendJSON(t, app, http.MethodPost, "/api/shipments/1/items", fiber.Map{
		"product": "Aceite",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	service.AssertNotCalled(t, "AddItem")
}

func TestUpdateItem_NotFound(t *testing.T) {
	service := new(MockShipmentService)
	app := setupApp(service, operatorClaims())

	service.On("UpdateItem", mock.Anything, 1, 77, mock.Anything).Return(nil, domain.ErrNotFound)

	resp := sendJSON(t, app, http.MethodPatch, "/api/shipments/1/items/77", fiber.Map{
		"quantity": 10,
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteItem(t *testing.T) {
	service := new(MockShipmentService)
	app := setupApp(service, operatorClaims())

	service.On("DeleteItem", mock.Anything, 1, 2).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/shipments/1/items/2", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	service.AssertExpectations(t)
}

func TestChangeStatus_DefaultsNotificationAndStampsUser(t *testing.T) {
	service := new(MockShipmentService)
	app := setupApp(service, operatorClaims())

	service.On("ChangeStatus", mock.Anything, 5, ports.StatusChangeInput{
		Status:           domain.StatusInTransit,
		Location:         "CEDIS Toluca",
		InvoiceNumber:    "F-1001",
		SendNotification: true,
		UpdatedBy:        7,
	}).Return(&ports.StatusChangeResult{
		Shipment:              domain.Shipment{ID: 5, Status: domain.StatusInTransit},
		Update:                domain.ShipmentUpdate{ID: 1, ShipmentID: 5, Status: domain.StatusInTransit},
		EmailNotificationSent: true,
	}, nil)

	resp := sendJSON(t, app, http.MethodPatch, "/api/shipments/5/status", fiber.Map{
		"status":        "in_transit",
		"location":      "CEDIS Toluca",
		"invoiceNumber": "F-1001",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result ports.StatusChangeResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.EmailNotificationSent)
	service.AssertExpectations(t)
}

func TestChangeStatus_OptOutNotification(t *testing.T) {
	service := new(MockShipmentService)
	app := setupApp(service, operatorClaims())

	service.On("ChangeStatus", mock.Anything, 5, mock.MatchedBy(func(in ports.StatusChangeInput) bool {
		return !in.SendNotification
	})).Return(&ports.StatusChangeResult{
		Shipment: domain.Shipment{ID: 5, Status: domain.StatusDelivered},
	}, nil)

	resp := sendJSON(t, app, http.MethodPatch, "/api/shipments/5/status", fiber.Map{
		"status":           "delivered",
		"sendNotification": false,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	service.AssertExpectations(t)
}

func TestChangeStatus_InvoiceRequired(t *testing.T) {
	service := new(MockShipmentService)
	app := setupApp(service, operatorClaims())

	service.On("ChangeStatus", mock.Anything, 5, mock.Anything).Return(nil, domain.ErrInvoiceRequired)

	resp := sendJSON(t, app, http.MethodPatch, "/api/shipments/5/status", fiber.Map{
		"status": "in_transit",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Número de factura requerido", body.Message)
}

func TestChangeStatus_InvalidStatus(t *testing.T) {
	service := new(MockShipmentService)
	app := setupApp(service, operatorClaims())

	service.On("ChangeStatus", mock.Anything, 5, mock.Anything).Return(nil, domain.ErrInvalidStatus)

	resp := sendJSON(t, app, http.MethodPatch, "/api/shipments/5/status", fiber.Map{
		"status": "teleported",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChangeStatus_MissingStatus(t *testing.T) {
	service := new(MockShipmentService)
	app := setupApp(service, operatorClaims())

	resp := sendJSON(t, app, http.MethodPatch, "/api/shipments/5/status", fiber.Map{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	service.AssertNotCalled(t, "ChangeStatus")
}

func TestCycleTimes_Unavailable(t *testing.T) {
	service := new(MockShipmentService)
	app := setupApp(service, operatorClaims())

	service.On("RecalculateCycleTimes", mock.Anything, 6).Return(nil, nil)

	resp := getJSON(t, app, "/api/shipments/6/cycle-times")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Tiempos de ciclo no disponibles", body.Message)
}

func TestCycleTimes_Success(t *testing.T) {
	service := new(MockShipmentService)
	app := setupApp(service, operatorClaims())

	total := "28.50"
	service.On("RecalculateCycleTimes", mock.Anything, 6).
		Return(&domain.CycleTimes{ShipmentID: 6, HoursTotalCycle: &total}, nil)

	resp := getJSON(t, app, "/api/shipments/6/cycle-times")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var cycle domain.CycleTimes
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cycle))
	require.NotNil(t, cycle.HoursTotalCycle)
	assert.Equal(t, "28.50", *cycle.HoursTotalCycle)
}

func TestAggregateCycleTimes_Filters(t *testing.T) {
	service := new(MockShipmentService)
	app := setupApp(service, operatorClaims())

	avg := 22.5
	service.On("AggregateCycleTimes", mock.Anything, mock.MatchedBy(func(f ports.CycleTimeFilter) bool {
		return f.CompanyID != nil && *f.CompanyID == 2 &&
			f.StartDate != nil && f.StartDate.Format("2006-01-02") == "2025-01-01" &&
			f.EndDate != nil && f.EndDate.Format("2006-01-02") == "2025-03-31"
	})).Return(&ports.CycleTimeMetrics{
		Period:             "all",
		AvgTotalCycle:      &avg,
		TotalShipments:     8,
		CompletedShipments: 5,
	}, nil)

	resp := getJSON(t, app, "/api/metrics/cycle-times?companyId=2&startDate=2025-01-01&endDate=2025-03-31")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var metrics ports.CycleTimeMetrics
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&metrics))
	assert.Equal(t, 8, metrics.TotalShipments)
	require.NotNil(t, metrics.AvgTotalCycle)
	assert.Equal(t, 22.5, *metrics.AvgTotalCycle)
}

func TestAggregateCycleTimes_InvalidDate(t *testing.T) {
	service := new(MockShipmentService)
	app := setupApp(service, operatorClaims())

	resp := getJSON(t, app, "/api/metrics/cycle-times?startDate=not-a-date")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	service.AssertNotCalled(t, "AggregateCycleTimes")
}
