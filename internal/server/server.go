package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	billingdomain "github.com/smallbiznis/billcollect/internal/billing/domain"
	"github.com/smallbiznis/billcollect/internal/config"
	jobstatedomain "github.com/smallbiznis/billcollect/internal/jobstate/domain"
	sbdomain "github.com/smallbiznis/billcollect/internal/scheduledbilling/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Server struct {
	engine       *gin.Engine
	log          *zap.Logger
	collectorSvc billingdomain.Service
	jobStore     jobstatedomain.Store
	scheduledSvc sbdomain.Service
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Log          *zap.Logger
	CollectorSvc billingdomain.Service
	JobStore     jobstatedomain.Store
	ScheduledSvc sbdomain.Service
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:       p.Gin,
		log:          p.Log.Named("http.server"),
		collectorSvc: p.CollectorSvc,
		jobStore:     p.JobStore,
		scheduledSvc: p.ScheduledSvc,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	v1 := s.engine.Group("/v1")

	v1.POST("/triggers/:flowInstanceId", s.TriggerEvent)
	v1.POST("/triggers", s.TriggerBetweenDates)

	v1.GET("/jobs/latest", s.GetLatestJob)
	v1.GET("/fallouts", s.ListFallouts)

	v1.POST("/scheduled-billings", s.CreateScheduledBilling)
	v1.PATCH("/scheduled-billings/:id", s.UpdateScheduledBilling)
	v1.GET("/scheduled-billings/:id", s.GetScheduledBilling)
	v1.GET("/scheduled-billings", s.ListScheduledBillings)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
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
