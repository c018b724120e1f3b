package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vendora/config"
	"vendora/cron"
	"vendora/database"
	blockedRepo "vendora/database/repository/blocked"
	bookingRepo "vendora/database/repository/booking"
	catalogRepo "vendora/database/repository/catalog"
	orderRepo "vendora/database/repository/order"
	"vendora/handlers"
	"vendora/middleware"
	"vendora/routes"
	"vendora/services/booking"
	"vendora/services/notification"
	"vendora/services/order"
	"vendora/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync() //nolint:errcheck

	mongoClient, err := database.Connect(config.AppConfig)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to connect to mongodb: %v", err)
	}
	db := mongoClient.Database(config.AppConfig.DatabaseName)

	cacheClient, err := utils.NewCacheClient(config.AppConfig)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to connect to redis: %v", err)
	}

	business, err := utils.NewBusinessTime(config.AppConfig.BusinessTimezone)
	if err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}

	stripe.Key = config.AppConfig.StripeKey

	// Repositories.
	bkRepo := bookingRepo.NewMongoBookingRepo(db)
	blkRepo := blockedRepo.NewMongoBlockedRepo(db)
	ctlgRepo := catalogRepo.NewMongoCatalogRepo(db)
	ordRepo := orderRepo.NewMongoOrderRepo(db, ctlgRepo)

	if err := bookingRepo.EnsureIndexes(db); err != nil {
		logger.Warn("main: failed to ensure booking indexes", zap.Error(err))
	}

	// Notifications.
	ctx := context.Background()
	var notifSvc notification.NotificationService
	fcmSvc, err := notification.NewDefaultNotificationService(ctx,
		config.AppConfig.FirebaseCredentialsFile,
		notification.NewMongoTokenSource(db))
	if err != nil {
		logger.Warn("main: push notifications disabled", zap.Error(err))
	} else {
		notifSvc = fcmSvc
	}

	// Core services.
	bookingSvc := &booking.DefaultBookingService{
		Repo:            bkRepo,
		BlockedRepo:     blkRepo,
		CatalogRepo:     ctlgRepo,
		NotificationSvc: notifSvc,
		Payments:        booking.StripeVerifier{},
		Cache:           cacheClient,
		Clock:           utils.RealClock{},
		Business:        business,
		PendingTTL:      time.Duration(config.AppConfig.PendingBookingTTLHours) * time.Hour,
		SweepBatchSize:  int64(config.AppConfig.SweepBatchSize),
	}
	orderSvc := &order.DefaultOrderService{
		Repo:            ordRepo,
		CatalogRepo:     ctlgRepo,
		NotificationSvc: notifSvc,
		Clock:           utils.RealClock{},
		PlatformFeeRate: config.AppConfig.PlatformFeeRate,
		Timeout:         time.Duration(config.AppConfig.CheckoutTimeoutSeconds) * time.Second,
	}

	// Background expiration sweep.
	sweepSrv, sweepScheduler := cron.InitSweepWorker(bookingSvc)

	// HTTP surface.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))

	routes.Register(router,
		handlers.NewBookingHandler(bookingSvc),
		handlers.NewOrderHandler(orderSvc))

	srv := &http.Server{
		Addr:    ":" + config.AppConfig.AppPort,
		Handler: router,
	}

	go func() {
		logger.Info("Server listening", zap.String("port", config.AppConfig.AppPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")

	sweepScheduler.Shutdown()
	sweepSrv.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Forced shutdown", zap.Error(err))
	}
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		logger.Warn("Mongo disconnect failed", zap.Error(err))
	}
}
