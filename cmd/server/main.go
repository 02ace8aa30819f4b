package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appaudit "github.com/usv008/pizza-inventory-system-sub002/internal/application/audit"
	appcat "github.com/usv008/pizza-inventory-system-sub002/internal/application/catalog"
	appinv "github.com/usv008/pizza-inventory-system-sub002/internal/application/inventory"
	apptrade "github.com/usv008/pizza-inventory-system-sub002/internal/application/trade"
	"github.com/usv008/pizza-inventory-system-sub002/internal/infrastructure/config"
	"github.com/usv008/pizza-inventory-system-sub002/internal/infrastructure/logger"
	"github.com/usv008/pizza-inventory-system-sub002/internal/infrastructure/persistence"
	"github.com/usv008/pizza-inventory-system-sub002/internal/interfaces/http/handler"
	"github.com/usv008/pizza-inventory-system-sub002/internal/interfaces/http/middleware"
	"github.com/usv008/pizza-inventory-system-sub002/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync() //nolint:errcheck

	log.Info("starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("driver", cfg.Database.Driver))

	gormLogger := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogger)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if err := persistence.Migrate(db.DB); err != nil {
		log.Fatal("failed to migrate schema", zap.Error(err))
	}

	// repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	batchRepo := persistence.NewGormProductionBatchRepository(db.DB)
	movementRepo := persistence.NewGormStockMovementRepository(db.DB)
	writeoffRepo := persistence.NewGormWriteoffRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	auditRepo := persistence.NewGormOperationLogRepository(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)

	// services
	productService := appcat.NewProductService(productRepo, log.Named("catalog"))
	batchService := appinv.NewBatchService(scope, batchRepo, productRepo, log.Named("batches"))
	reservationService := appinv.NewReservationService(scope, batchRepo, writeoffRepo, log.Named("reservations"))
	movementService := appinv.NewMovementService(scope, movementRepo, productRepo, log.Named("movements"))
	orderService := apptrade.NewOrderService(scope, orderRepo, reservationService, log.Named("orders"))
	operationService := appaudit.NewOperationService(auditRepo)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := handler.RegisterValidations(); err != nil {
		log.Fatal("failed to register validations", zap.Error(err))
	}

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
	)
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.GET("/health", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.NewRouter(engine).
		Register(handler.NewProductHandler(productService)).
		Register(handler.NewBatchHandler(batchService, reservationService)).
		Register(handler.NewOrderHandler(orderService)).
		Register(handler.NewMovementHandler(movementService)).
		Register(handler.NewOperationsHandler(operationService)).
		Setup()

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}
