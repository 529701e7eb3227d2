// Package server exposes the HTTP API over gin.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/inkhaus/studio/internal/analytics"
	analyticsdomain "github.com/inkhaus/studio/internal/analytics/domain"
	"github.com/inkhaus/studio/internal/booking"
	bookingdomain "github.com/inkhaus/studio/internal/booking/domain"
	"github.com/inkhaus/studio/internal/calcom"
	"github.com/inkhaus/studio/internal/config"
	"github.com/inkhaus/studio/internal/design"
	designdomain "github.com/inkhaus/studio/internal/design/domain"
	"github.com/inkhaus/studio/internal/ratelimit"
	"github.com/inkhaus/studio/internal/realtime"
	syncsvc "github.com/inkhaus/studio/internal/sync"
	"github.com/inkhaus/studio/pkg/telemetry"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	analytics.Module,
	design.Module,
	booking.Module,
	calcom.Module,
	realtime.Module,
	ratelimit.Module,
	syncsvc.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, metrics *telemetry.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(telemetry.GinMiddleware(metrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type engineParams struct {
	fx.In

	Log     *zap.Logger
	Metrics *telemetry.Metrics `optional:"true"`
}

func registerGin(p engineParams) *gin.Engine {
	return NewEngine(p.Log, p.Metrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	analyticsSvc  analyticsdomain.Service
	designSvc     designdomain.Service
	bookingSvc    bookingdomain.Service
	syncSvc       *syncsvc.Service
	hub           *realtime.Hub
	ingestLimiter *ratelimit.IngestLimiter
	metrics       *telemetry.Metrics
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	AnalyticsSvc analyticsdomain.Service
	DesignSvc    designdomain.Service
	BookingSvc   bookingdomain.Service
	SyncSvc      *syncsvc.Service

	Hub           *realtime.Hub            `optional:"true"`
	IngestLimiter *ratelimit.IngestLimiter `optional:"true"`
	Metrics       *telemetry.Metrics       `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		analyticsSvc:  p.AnalyticsSvc,
		designSvc:     p.DesignSvc,
		bookingSvc:    p.BookingSvc,
		syncSvc:       p.SyncSvc,
		hub:           p.Hub,
		ingestLimiter: p.IngestLimiter,
		metrics:       p.Metrics,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")

	analyticsGroup := api.Group("/analytics")
	analyticsGroup.POST("/events", s.IngestEvent)
	analyticsGroup.GET("/events", s.QueryEvents)
	analyticsGroup.GET("/summary", s.GetSummary)
	analyticsGroup.GET("/trend", s.GetDailyTrend)
	analyticsGroup.GET("/designs/top", s.GetTopDesigns)
	analyticsGroup.GET("/funnel", s.GetBookingFunnel)

	designGroup := api.Group("/designs")
	designGroup.POST("", s.CreateDesign)
	designGroup.GET("", s.ListDesigns)
	designGroup.PATCH("/:id", s.UpdateDesign)

	bookingGroup := api.Group("/bookings")
	bookingGroup.GET("", s.ListBookings)

	syncGroup := api.Group("/sync")
	syncGroup.POST("/appointments", s.TriggerSync)
	syncGroup.GET("/status", s.GetSyncStatus)

	api.GET("/streams/:topic", s.StreamTopic)
}
