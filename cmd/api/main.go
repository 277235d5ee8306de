package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "smartpos/api/swagger" // swagger docs
	"smartpos/internal/auth"
	"smartpos/internal/config"
	"smartpos/internal/database"
	"smartpos/internal/handler"
	"smartpos/internal/logger"
	"smartpos/internal/middleware"
	"smartpos/internal/permission"
	"smartpos/internal/repository"
	"smartpos/internal/service"
	"smartpos/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           SmartPOS API
// @version         1.0
// @description     Point-of-sale backend: sales, purchasing, returns, stock ledger and reporting.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(cfg.GinMode)

	db, err := database.NewConnection(cfg.DB.Driver, cfg.DatabaseDSN(), log)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	log.WithField("driver", cfg.DB.Driver).Info("connected to database")

	wsHub := websocket.NewHub(log)
	go wsHub.Run()

	// Repository -> Service -> Handler
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	productRepo := repository.NewProductRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	returnRepo := repository.NewReturnRepository(db)
	countRepo := repository.NewInventoryCountRepository(db)
	invTxRepo := repository.NewInventoryTxRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	reportRepo := repository.NewReportRepository(db)

	evaluator := permission.NewEvaluator(roleRepo, 5*time.Minute)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL(), cfg.RefreshTokenTTL())

	audit := service.NewAuditRecorder(auditRepo, log)
	ledger := service.NewStockLedger(productRepo, invTxRepo, wsHub, log)
	settingsService := service.NewSettingsService(settingRepo, txManager, audit)
	saleService := service.NewSaleService(saleRepo, customerRepo, ledger, audit, txManager, wsHub, log)
	purchaseService := service.NewPurchaseService(purchaseRepo, ledger, audit, txManager)
	returnService := service.NewReturnService(returnRepo, saleRepo, ledger, audit, txManager)
	inventoryService := service.NewInventoryService(countRepo, invTxRepo, ledger, audit, txManager)
	productService := service.NewProductService(productRepo, ledger, audit, txManager)
	customerService := service.NewCustomerService(customerRepo, saleRepo, audit, txManager)
	promotionService := service.NewPromotionService(repository.NewPromotionRepository(db), audit, txManager)
	userService := service.NewUserService(userRepo, tokens, audit, txManager)
	roleService := service.NewRoleService(roleRepo, evaluator, audit, txManager)
	reportService := service.NewReportService(reportRepo, productRepo, customerRepo, txManager, log)

	if err := roleService.SeedPermissions(context.Background()); err != nil {
		log.WithError(err).Warn("failed to seed permission catalogue")
	}

	guards := handler.Guards{Authenticate: middleware.Authenticate(userService), Evaluator: evaluator}
	cookies := middleware.CookieOptions{
		Secure:     cfg.Release(),
		AccessTTL:  cfg.AccessTokenTTL(),
		RefreshTTL: cfg.RefreshTokenTTL(),
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(log))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", handler.IdempotencyHeader}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "ws_clients": wsHub.ClientCount()})
	})

	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, func(token string) (string, error) {
			claims, err := tokens.Parse(token, auth.TypeAccess)
			if err != nil {
				return "", err
			}
			return claims.Subject, nil
		})
	})

	api := router.Group("/api")
	handler.NewUserHandler(userService, evaluator, cookies).RegisterRoutes(api, guards)
	handler.NewRoleHandler(roleService).RegisterRoutes(api, guards)
	handler.NewProductHandler(productService).RegisterRoutes(api, guards)
	handler.NewCustomerHandler(customerService).RegisterRoutes(api, guards)
	handler.NewPromotionHandler(promotionService).RegisterRoutes(api, guards)
	handler.NewSaleHandler(saleService, settingsService).RegisterRoutes(api, guards)
	handler.NewPurchaseHandler(purchaseService).RegisterRoutes(api, guards)
	handler.NewReturnHandler(returnService).RegisterRoutes(api, guards)
	handler.NewInventoryHandler(inventoryService, productService, reportService).RegisterRoutes(api, guards)
	handler.NewSettingsHandler(settingsService).RegisterRoutes(api, guards)
	handler.NewReportHandler(reportService).RegisterRoutes(api, guards)
	handler.NewAuditHandler(audit).RegisterRoutes(api, guards)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		log.WithField("port", cfg.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	log.Info("server stopped")
}
