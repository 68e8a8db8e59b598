package main

import (
	"context"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	aws_pkg "github.com/LiverNeZelc/vikaproject/backend/pkg/aws"
	"github.com/LiverNeZelc/vikaproject/backend/services/common/auth"
	"github.com/LiverNeZelc/vikaproject/backend/services/common/logger"
	commonmw "github.com/LiverNeZelc/vikaproject/backend/services/common/middleware"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/cache"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/controllers"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/database"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/events"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/kafka"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/metrics"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/middleware"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/repository"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/routes"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/services"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const serviceName = "storefront-service"

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	// --- 1. Logging & AWS ---

	awsCfg, awsErr := aws_pkg.LoadAWSConfig(context.Background())

	var sinks []io.Writer
	if cfg.LogFile != "" {
		sinks = append(sinks, logger.NewFileSink(cfg.LogFile))
	}
	if awsErr == nil && cfg.CloudWatchEnabled {
		if cwLogs, err := aws_pkg.NewCloudWatchLogsClient(context.Background(), awsCfg, serviceName); err == nil {
			sinks = append(sinks, cwLogs)
		}
	}
	log, err := logger.Initialize(cfg.AppEnv, sinks...)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)

	var (
		cw  *aws_pkg.MetricsClient
		sns aws_pkg.SNSPublisher
	)
	if awsErr != nil {
		log.Warn("AWS config unavailable; SNS, SQS and CloudWatch disabled", zap.Error(awsErr))
	} else {
		cw = aws_pkg.NewMetricsClient(awsCfg)
		if cfg.OrderSNSTopicArn != "" {
			sns = aws_pkg.NewSNSClient(awsCfg)
		}
	}

	// --- 2. Storage ---

	db, err := database.ConnectPostgres(cfg.Postgres, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer database.Close(db)

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClient(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Warn("Redis unavailable; guest carts, idempotency and catalog cache disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	// --- 3. Events & metrics ---

	var sink events.OrderEventSink
	if len(cfg.KafkaBrokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.OrderEventsTopic)
		defer producer.Close()
		sink = producer
	}
	dispatcher := events.NewDispatcher(sink, sns, cfg.OrderSNSTopicArn, log)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := metrics.New(registry)

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, 24*time.Hour)
	if err != nil {
		log.Fatal("Failed to configure tokens", zap.Error(err))
	}

	// --- 4. Dependency Injection ---

	userRepo := repository.NewGormUserRepository(db)
	productRepo := repository.NewGormProductRepository(db)
	cartRepo := repository.NewGormCartRepository(db)
	orderRepo := repository.NewGormOrderRepository(db)

	var (
		guestCarts   services.GuestCartStore
		checkoutIdem services.IdempotencyStore
		mergeIdem    services.IdempotencyStore
		pageCache    services.CatalogPageCache
	)
	checkoutOpts := []services.CheckoutOption{
		services.WithCheckoutTimeout(cfg.CheckoutTimeout),
		services.WithCheckoutMetrics(cw, prom),
	}
	if redisClient != nil {
		guestCarts = database.NewGuestCartRepository(redisClient, cfg.GuestCartTTL)
		checkoutIdem = database.NewIdempotencyStore(redisClient, "checkout")
		mergeIdem = database.NewIdempotencyStore(redisClient, "merge")
		catalogCache := cache.NewCatalogCache(redisClient, cfg.CatalogCacheTTL, log)
		pageCache = catalogCache
		checkoutOpts = append(checkoutOpts,
			services.WithIdempotency(checkoutIdem),
			services.WithCatalogInvalidator(catalogCache))
	}

	orderService := services.NewOrderService(orderRepo, dispatcher, cw, log)
	checkoutService := services.NewCheckoutService(repository.NewGormCheckoutStore(db), orderRepo, dispatcher, log, checkoutOpts...)
	cartService := services.NewCartService(cartRepo, productRepo, guestCarts, mergeIdem, log)
	catalogService := services.NewCatalogService(productRepo, pageCache, cw, prom, log)
	reviewService := services.NewReviewService(repository.NewGormReviewRepository(db), log)
	analyticsService := services.NewAnalyticsService(repository.NewGormAnalyticsRepository(db), log)
	accountService := services.NewAccountService(userRepo, tokens, log)
	cardService := services.NewCardService(repository.NewGormCardRepository(db), log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.FulfillmentQueueURL != "" && awsErr == nil {
		poller := aws_pkg.NewSQSConsumer(awsCfg, cfg.FulfillmentQueueURL, log)
		go services.NewSQSFulfillmentConsumer(poller, orderService, cw, log).Start(ctx)
	}

	// --- 5. HTTP Server & Middleware ---

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(commonmw.RequestID(), commonmw.RequestLogger(log))
	r.Use(commonmw.SecurityHeaders(), commonmw.CORS(cfg.AllowedOrigins))
	r.Use(commonmw.RateLimitMiddleware(cfg.RateLimitPerMinute))
	r.Use(commonmw.MetricsMiddleware(cw, serviceName), prom.Middleware())

	// Add request timeout middleware
	r.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	routes.RegisterRoutes(r, middleware.NewAuthenticator(tokens, cfg.TrustGatewayHeaders), routes.Controllers{
		Accounts:  controllers.NewAccountController(accountService, cardService),
		Catalog:   controllers.NewCatalogController(catalogService),
		Cart:      controllers.NewCartController(cartService),
		Checkout:  controllers.NewCheckoutController(checkoutService),
		Orders:    controllers.NewOrderController(orderService),
		Reviews:   controllers.NewReviewController(reviewService),
		Analytics: controllers.NewAnalyticsController(analyticsService),
	})

	r.GET("/metrics", gin.WrapH(metrics.Handler(registry)))
	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "DOWN", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	// --- 6. Graceful Shutdown ---

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Info("Storefront service starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited")
}
