package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"smart-inventory/internal/handler"
	"smart-inventory/internal/jobs"
	"smart-inventory/internal/metrics"
	"smart-inventory/internal/middleware"
	"smart-inventory/internal/model"
	"smart-inventory/internal/repository"
	"smart-inventory/internal/service"
	"smart-inventory/internal/ws"
	"smart-inventory/pkg/config"
	"smart-inventory/pkg/database"
	"smart-inventory/pkg/jwt"
	pkglogger "smart-inventory/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := pkglogger.Init(cfg.AppEnv); err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer pkglogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Setup Database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		zap.L().Fatal("connect database", zap.Error(err))
	}
	if err := repository.Migrate(db); err != nil {
		zap.L().Fatal("migrate", zap.Error(err))
	}

	// 3. Setup WebSocket Hub
	hub := ws.NewHub()
	go hub.Run(ctx)

	// 4. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	movementRepo := repository.NewMovementRepo(db)
	supplierRepo := repository.NewSupplierRepo(db)
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	tokens := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.TTL, cfg.JWT.Issuer)

	invService := service.NewInventoryService(db, productRepo, movementRepo, supplierRepo, hub)
	supplierService := service.NewSupplierService(db, supplierRepo, productRepo)
	policy := service.NewAccessPolicy(db, userRepo, hub)
	userService := service.NewUserService(db, userRepo, policy)
	authService := service.NewAuthService(userRepo, tokens, cfg.Lockout)
	dashService := service.NewDashboardService(productRepo, supplierRepo, movementRepo)

	// 5. Seed roles, default accounts and supplier
	if err := seed(ctx, cfg.Seed, roleRepo, userService, supplierService); err != nil {
		zap.L().Fatal("seed", zap.Error(err))
	}

	invHandler := handler.NewInventoryHandler(invService)
	supplierHandler := handler.NewSupplierHandler(supplierService)
	dashHandler := handler.NewDashboardHandler(dashService)
	authHandler := handler.NewAuthHandler(authService, policy)
	userHandler := handler.NewUserHandler(userService, policy)
	roleHandler := handler.NewRoleHandler(roleRepo)

	// 6. Scheduled jobs
	scheduler, err := jobs.Start(ctx, cfg.LowStockCron, jobs.NewLowStockReport(dashService))
	if err != nil {
		zap.L().Fatal("cron", zap.Error(err))
	}

	// 7. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:      "Smart Inventory v1.0",
		ErrorHandler: handler.ErrorHandler,
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS
	app.Use(metrics.Middleware())

	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	// 8. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(authService))
	anyRole := middleware.RequireRole(model.RoleAdmin, model.RoleStaff)
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	protected.Get("/auth/me", authHandler.Me)
	protected.Post("/auth/change-password", authHandler.ChangePassword)

	// Dashboard Routes
	protected.Get("/dashboard/stats", dashHandler.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", dashHandler.GetStockMovement)
	protected.Get("/dashboard/low-stock", dashHandler.GetLowStock)

	// Product Routes
	protected.Get("/products", invHandler.GetProducts)
	protected.Get("/products/:id", invHandler.GetProduct)
	protected.Get("/products/:id/history", invHandler.GetProductHistory)
	protected.Post("/products", adminOnly, invHandler.CreateProduct)
	protected.Put("/products/:id", adminOnly, invHandler.UpdateProduct)
	protected.Delete("/products/:id", adminOnly, invHandler.DeleteProduct)

	// Stock movement Routes
	protected.Post("/stock/in", anyRole, invHandler.StockIn)
	protected.Post("/stock/out", anyRole, invHandler.StockOut)
	protected.Get("/movements", invHandler.GetMovements)
	protected.Get("/movements/:id", invHandler.GetMovement)
	protected.Delete("/movements/:id", anyRole, invHandler.DeleteMovement)

	// Supplier Routes
	protected.Get("/suppliers", supplierHandler.GetSuppliers)
	protected.Get("/suppliers/:id", supplierHandler.GetSupplier)
	protected.Post("/suppliers", adminOnly, supplierHandler.CreateSupplier)
	protected.Put("/suppliers/:id", adminOnly, supplierHandler.UpdateSupplier)
	protected.Delete("/suppliers/:id", adminOnly, supplierHandler.DeleteSupplier)

	// User Management Routes
	users := protected.Group("/users", adminOnly)
	users.Get("/", userHandler.GetUsers)
	users.Get("/:id", userHandler.GetUser)
	users.Post("/", userHandler.CreateUser)
	users.Put("/:id", userHandler.UpdateUser)
	users.Delete("/:id", userHandler.DeleteUser)
	users.Post("/:id/unlock", userHandler.UnlockUser)
	users.Post("/:id/reset-password", userHandler.ResetPassword)

	// Role Routes
	protected.Get("/roles", roleHandler.GetRoles)
	protected.Get("/roles/:name", roleHandler.GetRole)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(hub.Handler))

	// 9. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			zap.L().Panic("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()

	zap.L().Info("Shutting down server...")
	<-scheduler.Stop().Done()
	if err := app.Shutdown(); err != nil {
		zap.L().Fatal("Server forced to shutdown", zap.Error(err))
	}

	zap.L().Info("Server exited")
}
