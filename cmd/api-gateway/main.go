package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/banco-questoes-web/api/swagger"
	"github.com/noah-isme/banco-questoes-web/internal/handler"
	internalmiddleware "github.com/noah-isme/banco-questoes-web/internal/middleware"
	"github.com/noah-isme/banco-questoes-web/internal/repository"
	"github.com/noah-isme/banco-questoes-web/internal/service"
	"github.com/noah-isme/banco-questoes-web/internal/web"
	"github.com/noah-isme/banco-questoes-web/internal/websocket"
	"github.com/noah-isme/banco-questoes-web/pkg/cache"
	"github.com/noah-isme/banco-questoes-web/pkg/config"
	"github.com/noah-isme/banco-questoes-web/pkg/jobs"
	"github.com/noah-isme/banco-questoes-web/pkg/logger"
	corsmiddleware "github.com/noah-isme/banco-questoes-web/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/banco-questoes-web/pkg/middleware/requestid"
	sessionmiddleware "github.com/noah-isme/banco-questoes-web/pkg/middleware/session"
)

// @title Banco de Questões Web
// @version 1.0.0
// @description Filter, search and browse exam questions from the question bank backend
// @BasePath /api/v1
// @schemes http

const pruneInterval = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricsSvc := service.NewMetricsService()

	catalog := repository.NewCatalogRepository(cfg.Backend.BaseURL, cfg.Backend.Timeout, logr,
		repository.WithObserver(metricsSvc))

	sessionRepo, redisClient := newSessionRepository(cfg, logr)
	sessionSvc := service.NewSessionService(sessionRepo, cfg.Session.TTL, metricsSvc, logr)
	filterSvc := service.NewFilterService(catalog, sessionSvc, cfg.Reference.Years, validator.New(), logr)

	cors := corsmiddleware.NewPolicy(cfg.CORS.AllowedOrigins)
	var hub *websocket.Hub
	var notifier service.Notifier
	if cfg.Notifications.Enabled {
		hub = websocket.NewHub(cors.AllowsRequest, metricsSvc, logr)
		notifier = hub
	}

	searchSvc := service.NewSearchService(catalog, notifier, metricsSvc, logr)
	queue := jobs.NewQueue("search", searchSvc.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Search.Workers,
		BufferSize: cfg.Search.BufferSize,
		MaxRetries: 0,
		Logger:     logr,
	})
	queue.Start(ctx)
	searchSvc.SetDispatcher(queue)

	presenter := service.NewPresenterService(cfg.Notifications.Enabled, cfg.Exports.Enabled)
	exportSvc := service.NewExportService(cfg.Exports.Title, logr, nil, nil)

	tmpl, err := web.Templates()
	if err != nil {
		logr.Fatal("failed to parse templates", zap.Error(err))
	}

	checks := map[string]handler.ReadinessCheck{
		"backend": func(ctx context.Context) error {
			_, err := catalog.ListSubjects(ctx)
			return err
		},
	}
	if redisClient != nil {
		checks["sessions"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	pageHandler := handler.NewPageHandler(filterSvc, searchSvc, presenter, cfg.APIPrefix, logr)
	filterHandler := handler.NewFilterHandler(filterSvc)
	searchHandler := handler.NewSearchHandler(filterSvc, searchSvc, presenter)
	exportHandler := handler.NewExportHandler(searchSvc, exportSvc, cfg.Exports.Enabled)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks)

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(sessionmiddleware.Middleware(sessionmiddleware.Options{
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.Session.Secure,
	}))
	r.Use(logger.GinMiddleware(logr))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	r.StaticFS("/static", web.Static())

	r.GET("/", pageHandler.Index)
	r.POST("/filtros/campo", pageHandler.SetField)
	r.POST("/filtros/limpar", pageHandler.ClearField)
	r.POST("/filtros/redefinir", pageHandler.ResetFilters)
	r.POST("/filtros/assunto/:id", pageHandler.ToggleTopic)
	r.POST("/buscar", pageHandler.Search)
	r.GET("/exportar.csv", exportHandler.CSV)
	r.GET("/exportar.pdf", exportHandler.PDF)
	if hub != nil {
		r.GET("/ws", hub.Handle)
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	{
		api.GET("/referencias", filterHandler.Reference)
		api.GET("/filtros", filterHandler.Current)
		api.DELETE("/filtros", filterHandler.Reset)
		api.PUT("/filtros/campo", filterHandler.SetField)
		api.DELETE("/filtros/campo/:field", filterHandler.ClearField)
		api.POST("/filtros/assuntos/:id/toggle", filterHandler.ToggleTopic)
		api.POST("/buscas", searchHandler.Search)
		api.GET("/buscas/atual", searchHandler.Current)
		api.GET("/questoes/:id/resolucao", searchHandler.Resolution)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	go pruneIdleState(ctx, sessionSvc, searchSvc, cfg.Session.TTL, logr)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "backend", cfg.Backend.BaseURL, "session_store", cfg.Session.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if hub != nil {
		hub.Close()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("server shutdown failed", zap.Error(err))
	}
	queue.Stop()
	if closer, ok := sessionRepo.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			logr.Warn("session store close failed", zap.Error(err))
		}
	}
}

// newSessionRepository picks the configured session store. A Redis store that
// cannot be reached falls back to process memory.
func newSessionRepository(cfg *config.Config, logr *zap.Logger) (service.SessionRepository, *redis.Client) {
	if cfg.Session.Store != config.SessionStoreRedis {
		return repository.NewMemorySessionRepository(), nil
	}
	client, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, keeping sessions in memory", zap.Error(err))
		return repository.NewMemorySessionRepository(), nil
	}
	return repository.NewRedisSessionRepository(client, logr), client
}

func pruneIdleState(ctx context.Context, sessionSvc *service.SessionService, searchSvc *service.SearchService, maxIdle time.Duration, logr *zap.Logger) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := searchSvc.Prune(maxIdle); removed > 0 {
				logr.Debug("pruned idle search state", zap.Int("sessions", removed))
			}
			if removed := sessionSvc.Prune(); removed > 0 {
				logr.Debug("pruned expired sessions", zap.Int("sessions", removed))
			}
		}
	}
}
