package main

import (
	"context"
	"os"

	"erp-backend/internal/database"
	"erp-backend/internal/handler"
	"erp-backend/internal/middleware"
	"erp-backend/internal/repository"
	"erp-backend/internal/service"
	"erp-backend/internal/storage"
	"erp-backend/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Procurement & Inventory API
// @version         1.0
// @description     Backend for purchase orders, supplier invoices, budget allocations and warehouse stock tracking.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		logrus.Info("no configs/.env file found")
	}

	dbHost := getenv("DB_HOST", "localhost")
	dbPort := getenv("DB_PORT", "5432")
	dbUser := getenv("DB_USER", "postgres")
	dbPassword := getenv("DB_PASSWORD", "postgres")
	dbName := getenv("DB_NAME", "postgres")
	dbSslMode := getenv("DB_SSLMODE", "disable")

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		logrus.WithError(err).Fatal("database connection failed")
	}
	logrus.Info("connected to PostgreSQL")

	middleware.InitPermissionMiddleware(db)

	// Evidence file storage: GCS when a bucket is configured, in-memory otherwise
	var store storage.Storage
	if bucket := os.Getenv("STORAGE_BUCKET"); bucket != "" {
		gcsStore, err := storage.NewGCSStorage(context.Background(), bucket)
		if err != nil {
			logrus.WithError(err).Fatal("failed to initialize GCS storage")
		}
		store = gcsStore
		logrus.WithField("bucket", bucket).Info("using GCS evidence storage")
	} else {
		store = storage.NewMemoryStorage()
		logrus.Warn("STORAGE_BUCKET not set, evidence files are kept in memory and lost on restart")
	}

	// WebSocket hub for stock movement events
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Repositories
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	productRepo := repository.NewProductRepository(db)
	warehouseRepo := repository.NewWarehouseRepository(db)
	currencyRepo := repository.NewCurrencyRepository(db)
	orderRepo := repository.NewPurchaseOrderRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	budgetRepo := repository.NewBudgetRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	stockRepo := repository.NewStockTxRepository(db)
	statusRepo := repository.NewSmartStatusRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	// Services
	userService := service.NewUserService(userRepo, roleRepo)
	roleService := service.NewRoleService(roleRepo)
	supplierService := service.NewSupplierService(supplierRepo)
	catalogService := service.NewCatalogService(productRepo, warehouseRepo, currencyRepo)
	orderService := service.NewPurchaseOrderService(orderRepo, invoiceRepo, budgetRepo, statusRepo, auditRepo, txManager)
	invoiceService := service.NewInvoiceService(invoiceRepo, orderRepo, statusRepo, txManager)
	budgetService := service.NewBudgetService(budgetRepo, orderRepo)
	stockService := service.NewStockService(stockRepo, inventoryRepo, invoiceRepo, orderRepo, statusRepo, txManager, store, wsHub)
	auditService := service.NewAuditService(auditRepo)

	if err := roleService.SeedDefaultRoles(context.Background()); err != nil {
		logrus.WithError(err).Fatal("failed to seed default roles")
	}

	// Handlers
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleService)
	supplierHandler := handler.NewSupplierHandler(supplierService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	orderHandler := handler.NewPurchaseOrderHandler(orderService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	budgetHandler := handler.NewBudgetHandler(budgetService)
	stockHandler := handler.NewStockHandler(stockService)
	auditHandler := handler.NewAuditHandler(auditService)

	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// API routing
	root := router.Group("")
	userHandler.RegisterRoutes(root)
	roleHandler.RegisterRoutes(root)
	supplierHandler.RegisterRoutes(root)
	catalogHandler.RegisterRoutes(root)
	orderHandler.RegisterRoutes(root)
	invoiceHandler.RegisterRoutes(root)
	budgetHandler.RegisterRoutes(root)
	stockHandler.RegisterRoutes(root)
	auditHandler.RegisterRoutes(root)

	port := getenv("PORT", "8080")
	logrus.WithField("port", port).Info("server listening")
	if err := router.Run(":" + port); err != nil {
		logrus.WithError(err).Fatal("server failed")
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
