package main

import (
	"log"
	"time"

	"digo-dashboard/internal/core/auth"
	"digo-dashboard/internal/core/cache"
	"digo-dashboard/internal/core/config"
	"digo-dashboard/internal/core/database"
	"digo-dashboard/internal/core/logger"
	"digo-dashboard/internal/core/mailer"
	"digo-dashboard/internal/core/server"
	clientadapter "digo-dashboard/internal/features/clients/adapters"
	clienthandler "digo-dashboard/internal/features/clients/handler"
	clientservice "digo-dashboard/internal/features/clients/service"
	kpiadapter "digo-dashboard/internal/features/kpis/adapters"
	kpihandler "digo-dashboard/internal/features/kpis/handler"
	kpiservice "digo-dashboard/internal/features/kpis/service"
	notificationadapter "digo-dashboard/internal/features/notifications/adapters"
	notificationhandler "digo-dashboard/internal/features/notifications/handler"
	notificationservice "digo-dashboard/internal/features/notifications/service"
	salesadapter "digo-dashboard/internal/features/sales/adapters"
	saleshandler "digo-dashboard/internal/features/sales/handler"
	salesservice "digo-dashboard/internal/features/sales/service"
	shipmentadapter "digo-dashboard/internal/features/shipments/adapters"
	shipmenthandler "digo-dashboard/internal/features/shipments/handler"
	shipmentservice "digo-dashboard/internal/features/shipments/service"
	useradapter "digo-dashboard/internal/features/users/adapters"
	userhandler "digo-dashboard/internal/features/users/handler"
	userservice "digo-dashboard/internal/features/users/service"

	"go.uber.org/zap"
)

// @title DIGO Dashboard API
// @version 1.0
// @description Business dashboard API for Dura International and Grupo Orsega: KPIs, sales tracking, shipments and notifications.
// @contact.name API Support
// @contact.email soporte@digo.mx
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		l.Fatal("Database connection failed", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		l.Fatal("Database migration failed", zap.Error(err))
	}
	l.Info("Database ready")

	// Cache is optional: services degrade to uncached reads when nil.
	var dashboardCache cache.Cache
	if redisCache, err := cache.NewRedisAdapter(cfg.Redis.URL); err != nil {
		l.Warn("Redis unavailable, dashboard caching disabled", zap.Error(err))
	} else {
		defer redisCache.Close()
		dashboardCache = redisCache
	}

	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	authMW := auth.NewMiddleware(issuer)

	var mail mailer.Mailer
	if cfg.Email.Enabled {
		mail = mailer.NewSendGridAdapter(cfg.Email)
		l.Info("Email dispatch enabled", zap.String("from", cfg.Email.FromEmail))
	} else {
		mail = mailer.NewLogAdapter(l)
		l.Info("Email dispatch disabled, messages will be logged only")
	}

	renderer, err := mailer.NewRenderer()
	if err != nil {
		l.Fatal("Failed to load email templates", zap.Error(err))
	}

	// Users and auth
	userRepo := useradapter.NewPostgresUserRepository(db)
	companyRepo := useradapter.NewPostgresCompanyRepository(db)
	areaRepo := useradapter.NewPostgresAreaRepository(db)
	userSvc := userservice.NewUserService(userRepo, companyRepo, areaRepo, issuer, l)
	userHdl := userhandler.NewUserHandler(userSvc)

	// Notifications
	notificationRepo := notificationadapter.NewPostgresNotificationRepository(db)
	notificationSvc := notificationservice.NewNotificationService(notificationRepo)
	notificationHdl := notificationhandler.NewNotificationHandler(notificationSvc)

	// KPIs
	kpiRepo := kpiadapter.NewPostgresKpiRepository(db)
	kpiValueRepo := kpiadapter.NewPostgresKpiValueRepository(db)
	dashboardTTL := time.Duration(cfg.Redis.DashboardTTLSeconds) * time.Second
	kpiSvc := kpiservice.NewKpiService(kpiRepo, kpiValueRepo, notificationSvc, dashboardCache, dashboardTTL, l)
	kpiHdl := kpihandler.NewKpiHandler(kpiSvc)

	// Sales
	salesRepo := salesadapter.NewPostgresSalesRepository(db)
	salesSvc := salesservice.NewSalesService(salesRepo, dashboardCache, l)
	salesHdl := saleshandler.NewSalesHandler(salesSvc)

	// Clients
	clientRepo := clientadapter.NewPostgresClientRepository(db)
	clientSvc := clientservice.NewClientService(clientRepo)
	clientHdl := clienthandler.NewClientHandler(clientSvc)

	// Shipments
	shipmentRepo := shipmentadapter.NewPostgresShipmentRepository(db)
	logisticsKpis := shipmentadapter.NewKpiServiceUpdater(kpiSvc)
	shipmentSvc := shipmentservice.NewShipmentService(shipmentRepo, mail, renderer, logisticsKpis, l)
	shipmentHdl := shipmenthandler.NewShipmentHandler(shipmentSvc)

	srv := server.New(cfg)
	app := srv.App

	// Auth
	app.Post("/api/auth/login", userHdl.Login)
	app.Get("/api/auth/me", authMW.RequireAuth, userHdl.Me)

	// Users, companies and areas
	app.Get("/api/users", authMW.RequireAuth, userHdl.ListUsers)
	app.Get("/api/users/:id", authMW.RequireAuth, userHdl.GetUser)
	app.Post("/api/users", authMW.RequireAuth, authMW.RequireAdmin, userHdl.CreateUser)
	app.Put("/api/users/:id", authMW.RequireAuth, userHdl.UpdateUser)
	app.Delete("/api/users/:id", authMW.RequireAuth, authMW.RequireAdmin, userHdl.DeleteUser)
	app.Get("/api/companies", authMW.RequireAuth, userHdl.ListCompanies)
	app.Get("/api/companies/:id", authMW.RequireAuth, userHdl.GetCompany)
	app.Get("/api/areas", authMW.RequireAuth, userHdl.ListAreas)

	// KPIs
	app.Get("/api/kpis", authMW.RequireAuth, kpiHdl.ListKpis)
	app.Get("/api/kpis/:id", authMW.RequireAuth, kpiHdl.GetKpi)
	app.Post("/api/kpis", authMW.RequireAuth, kpiHdl.CreateKpi)
	app.Put("/api/kpis/:id", authMW.RequireAuth, kpiHdl.UpdateKpi)
	app.Delete("/api/kpis/:id", authMW.RequireAuth, kpiHdl.DeleteKpi)
	app.Get("/api/kpi-values", authMW.RequireAuth, kpiHdl.ListValues)
	app.Get("/api/kpi-values/latest", authMW.RequireAuth, kpiHdl.LatestValue)
	app.Post("/api/kpi-values", authMW.RequireAuth, kpiHdl.CreateValue)
	app.Get("/api/collaborators-performance", authMW.RequireAuth, kpiHdl.CollaboratorsPerformance)

	// Sales
	app.Post("/api/sales/weekly-update", authMW.RequireAuth, salesHdl.WeeklyUpdate)
	app.Post("/api/sales/monthly-close", authMW.RequireAuth, authMW.RequireAdmin, salesHdl.MonthlyClose)
	app.Post("/api/sales/auto-close-month", authMW.RequireAuth, authMW.RequireAdmin, salesHdl.AutoCloseMonth)
	app.Get("/api/sales/monthly-status", authMW.RequireAuth, salesHdl.MonthStatus)

	// Clients
	app.Get("/api/clients", authMW.RequireAuth, clientHdl.List)
	app.Get("/api/clients/:id", authMW.RequireAuth, clientHdl.Get)
	app.Post("/api/clients", authMW.RequireAuth, clientHdl.Create)
	app.Put("/api/clients/:id", authMW.RequireAuth, clientHdl.Update)
	app.Delete("/api/clients/:id", authMW.RequireAuth, clientHdl.Delete)

	// Shipments
	app.Get("/api/shipments", authMW.RequireAuth, shipmentHdl.List)
	app.Post("/api/shipments", authMW.RequireAuth, shipmentHdl.Create)
	app.Get("/api/shipments/tracking/:trackingCode", authMW.RequireAuth, shipmentHdl.GetByTrackingCode)
	app.Get("/api/shipments/:id", authMW.RequireAuth, shipmentHdl.Get)
	app.Patch("/api/shipments/:id", authMW.RequireAuth, shipmentHdl.Update)
	app.Get("/api/shipments/:id/items", authMW.RequireAuth, shipmentHdl.ListItems)
	app.Post("/api/shipments/:id/items", authMW.RequireAuth, shipmentHdl.AddItem)
	app.Patch("/api/shipments/:id/items/:itemId", authMW.RequireAuth, shipmentHdl.UpdateItem)
	app.Delete("/api/shipments/:id/items/:itemId", authMW.RequireAuth, shipmentHdl.DeleteItem)
	app.Get("/api/shipments/:id/updates", authMW.RequireAuth, shipmentHdl.ListUpdates)
	app.Get("/api/shipments/:id/notifications", authMW.RequireAuth, shipmentHdl.ListNotifications)
	app.Patch("/api/shipments/:id/status", authMW.RequireAuth, shipmentHdl.ChangeStatus)
	app.Get("/api/shipments/:id/cycle-times", authMW.RequireAuth, shipmentHdl.CycleTimes)
	app.Get("/api/metrics/cycle-times", authMW.RequireAuth, shipmentHdl.AggregateCycleTimes)

	// Notifications
	app.Get("/api/notifications", authMW.RequireAuth, notificationHdl.List)
	app.Post("/api/notifications", authMW.RequireAuth, notificationHdl.Create)
	app.Patch("/api/notifications/:id/read", authMW.RequireAuth, notificationHdl.MarkRead)
	app.Patch("/api/notifications/read-all", authMW.RequireAuth, notificationHdl.MarkAllRead)
	app.Delete("/api/notifications/:id", authMW.RequireAuth, notificationHdl.Delete)

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
}
