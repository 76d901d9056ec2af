package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-participation/internal/api"
	"github.com/sanosuguru/go-event-participation/internal/api/handler"
	"github.com/sanosuguru/go-event-participation/internal/api/middleware"
	"github.com/sanosuguru/go-event-participation/internal/application"
	"github.com/sanosuguru/go-event-participation/internal/config"
	"github.com/sanosuguru/go-event-participation/internal/infrastructure/postgres"
	redisinfra "github.com/sanosuguru/go-event-participation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-event-participation/internal/pkg/logger"
	"github.com/sanosuguru/go-event-participation/internal/pkg/metrics"
	"github.com/sanosuguru/go-event-participation/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger(os.Getenv("APP_ENV"))
	logger.Set(log)
	defer logger.Sync()

	m := metrics.Init()

	// データベース接続とマイグレーション
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続に失敗", zap.Error(err))
	}
	defer db.Close()

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}
	if err := postgres.RunMigrations(db.DB, migrationsPath); err != nil {
		logger.Fatal("マイグレーションに失敗", zap.Error(err))
	}

	// Redis接続（ロックと閲覧カウント）
	redisClient, err := redisinfra.NewClient(&redisinfra.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Fatal("Redis接続に失敗", zap.Error(err))
	}
	defer redisClient.Close()

	lockManager := redisinfra.NewLockManager(redisClient)
	viewCounter := redisinfra.NewViewCounter(redisClient)

	// リポジトリ
	eventRepo := postgres.NewEventRepository(db)
	requestRepo := postgres.NewRequestRepository(db)
	userRepo := postgres.NewUserRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)
	txManager := postgres.NewTxManager(db)

	// アプリケーションサービス
	eventService := application.NewEventService(eventRepo, userRepo, categoryRepo,
		viewCounter, m, cfg.Event.UserEventLeadTime, cfg.Event.AdminEventLeadTime)
	requestService := application.NewRequestService(txManager, requestRepo, eventRepo,
		userRepo, lockManager, m)
	userService := application.NewUserService(userRepo)
	categoryService := application.NewCategoryService(categoryRepo)

	// 閲覧数シンクワーカー
	viewSyncer := worker.NewViewSyncer(viewCounter, eventRepo, cfg.Worker.ViewSyncInterval)
	workerCtx, cancelWorker := context.WithCancel(context.Background())
	go viewSyncer.Start(workerCtx)

	// Echoセットアップ
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler

	middleware.SetupMiddleware(e)
	e.Use(middleware.PrometheusMiddleware(m))

	// ルーティング
	eventHandler := handler.NewEventHandler(eventService)
	requestHandler := handler.NewRequestHandler(requestService)
	userHandler := handler.NewUserHandler(userService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	healthHandler := handler.NewHealthHandler()

	v1 := e.Group("/api/v1")

	v1.GET("/health", healthHandler.Check)

	// 公開API
	v1.GET("/events", eventHandler.ListPublic)
	v1.GET("/events/:id", eventHandler.GetPublic)
	v1.GET("/categories", categoryHandler.List)
	v1.GET("/categories/:id", categoryHandler.GetByID)

	// 主催者・参加者API
	v1.POST("/users/:userId/events", eventHandler.Create)
	v1.GET("/users/:userId/events", eventHandler.ListByInitiator)
	v1.GET("/users/:userId/events/:eventId", eventHandler.GetByInitiator)
	v1.PATCH("/users/:userId/events/:eventId", eventHandler.UpdateByInitiator)
	v1.GET("/users/:userId/events/:eventId/requests", requestHandler.ListByEvent)
	v1.PATCH("/users/:userId/events/:eventId/requests", requestHandler.UpdateStatus)
	v1.POST("/users/:userId/requests", requestHandler.Create)
	v1.GET("/users/:userId/requests", requestHandler.ListByRequester)
	v1.PATCH("/users/:userId/requests/:requestId/cancel", requestHandler.Cancel)

	// 管理者API
	v1.GET("/admin/events", eventHandler.ListByAdmin)
	v1.PATCH("/admin/events/:eventId", eventHandler.UpdateByAdmin)
	v1.POST("/admin/users", userHandler.Create)
	v1.GET("/admin/users", userHandler.List)
	v1.DELETE("/admin/users/:id", userHandler.Delete)
	v1.POST("/admin/categories", categoryHandler.Create)
	v1.PATCH("/admin/categories/:id", categoryHandler.Update)
	v1.DELETE("/admin/categories/:id", categoryHandler.Delete)

	// メトリクスエンドポイント（Basic認証）
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), middleware.MetricsBasicAuth())

	// サーバー起動
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		if err := e.StartServer(server); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()
	logger.Info("サーバー起動", zap.String("port", cfg.Server.Port))

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("シャットダウン開始")

	// ワーカー停止（停止時に残りの閲覧数をフラッシュする）
	viewSyncer.Stop()
	cancelWorker()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("サーバーシャットダウンエラー", zap.Error(err))
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}
