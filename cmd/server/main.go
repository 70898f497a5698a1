package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"stocksim/internal/auth"
	"stocksim/internal/client/yahoo"
	"stocksim/internal/config"
	cronrunner "stocksim/internal/cron"
	"stocksim/internal/db"
	"stocksim/internal/handler"
	"stocksim/internal/logger"
	gormrepository "stocksim/internal/repository/gorm"
	"stocksim/internal/service"

	_ "stocksim/docs"
)

func main() {
	cfgPath := os.Getenv("SIM_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("SIM_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)

	marketHTTP := &http.Client{Timeout: cfg.MarketData.Timeout}
	priceClient := yahoo.NewClient(marketHTTP, cfg.MarketData.BaseURL)
	stockSvc := service.NewStockService(priceClient, logger, cfg.MarketData)

	tradingSvc := &service.TradingService{Repo: store, Logger: logger}
	portfolioSvc := &service.PortfolioService{
		Repo:             store,
		Stocks:           stockSvc,
		Logger:           logger,
		PriceConcurrency: cfg.Trading.PriceConcurrency,
		PriceTimeout:     cfg.Trading.PriceTimeout,
	}
	snapshotSvc := &service.SnapshotService{Repo: store, Portfolio: portfolioSvc, Logger: logger}
	leaderboardSvc := &service.LeaderboardService{
		Repo:            store,
		Portfolio:       portfolioSvc,
		Logger:          logger,
		StartingBalance: decimal.NewFromFloat(cfg.Trading.StartingBalance),
		Concurrency:     cfg.Trading.PriceConcurrency,
	}
	watchlistSvc := &service.WatchlistService{Repo: store, Stocks: stockSvc}
	authSvc := &auth.Service{Repo: store, SessionTTL: cfg.Trading.SessionTTL}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := engine.Group("/api/v1")
	api.Use(auth.Middleware(store))

	stockHandler := &handler.StockHandler{Stocks: stockSvc, Logger: logger}
	stockHandler.Register(api)
	tradingHandler := &handler.TradingHandler{
		Repo:    store,
		Trading: tradingSvc,
		Stocks:  stockSvc,
		Logger:  logger,
	}
	tradingHandler.Register(api)
	watchlistHandler := &handler.WatchlistHandler{Watchlist: watchlistSvc}
	watchlistHandler.Register(api)
	portfolioHandler := &handler.PortfolioHandler{
		Portfolio: portfolioSvc,
		Snapshots: snapshotSvc,
		Logger:    logger,
	}
	portfolioHandler.Register(api)
	leaderboardHandler := &handler.LeaderboardHandler{Leaderboard: leaderboardSvc, Logger: logger}
	leaderboardHandler.Register(api)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Cron.Enabled {
		_, err = cronRunner.Add(cfg.Cron.SnapshotSpec, func(ctx context.Context) {
			if err := snapshotSvc.RunDaily(ctx); err != nil {
				logger.Warn("cron daily snapshot failed", zap.Error(err))
			}
		})
		if err != nil {
			logger.Warn("cron register daily snapshot failed", zap.Error(err))
		}

		_, err = cronRunner.Add(cfg.Cron.SessionPurgeSpec, func(ctx context.Context) {
			n, err := authSvc.PurgeExpired(ctx)
			if err != nil {
				logger.Warn("session purge failed", zap.Error(err))
				return
			}
			if n > 0 {
				logger.Info("purged expired sessions", zap.Int64("count", n))
			}
		})
		if err != nil {
			logger.Warn("cron register session purge failed", zap.Error(err))
		}

		cronRunner.Start()
		defer cronRunner.Stop()
	}

	errCh := make(chan error, 2)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
