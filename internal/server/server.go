package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	analyticsdomain "github.com/smallbiznis/spendlens/internal/analytics/domain"
	chatdomain "github.com/smallbiznis/spendlens/internal/chat/domain"
	"github.com/smallbiznis/spendlens/internal/clock"
	"github.com/smallbiznis/spendlens/internal/config"
	"github.com/smallbiznis/spendlens/internal/export"
	invoicedomain "github.com/smallbiznis/spendlens/internal/invoice/domain"
	"github.com/smallbiznis/spendlens/internal/observability"
	obsmiddleware "github.com/smallbiznis/spendlens/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/spendlens/internal/observability/metrics"
	obstracing "github.com/smallbiznis/spendlens/internal/observability/tracing"
	"github.com/smallbiznis/spendlens/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(RunHTTP),
)

type EngineParams struct {
	fx.In

	Config      config.Config
	ObsConfig   observability.Config
	HTTPMetrics *obsmetrics.HTTPMetrics
}

func NewEngine(p EngineParams) *gin.Engine {
	if p.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           p.ObsConfig.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(p.HTTPMetrics.Middleware())
	r.Use(CORS(p.Config.CORSOrigin))
	r.Use(ErrorHandlingMiddleware(p.Config.IsDevelopment()))

	r.GET("/metrics", gin.WrapH(p.HTTPMetrics.Handler()))

	return r
}

func RunHTTP(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, s *Server) {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log = log.Named("http.server")

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server failed", zap.Error(err))
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
	engine       *gin.Engine
	cfg          config.Config
	db           *gorm.DB
	clock        clock.Clock
	invoiceSvc   invoicedomain.Service
	analyticsSvc analyticsdomain.Service
	chatSvc      chatdomain.Service
	exportSvc    *export.Service
	chatLimiter  *ratelimit.ChatLimiter
	obsMetrics   *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	DB           *gorm.DB
	Clock        clock.Clock
	InvoiceSvc   invoicedomain.Service
	AnalyticsSvc analyticsdomain.Service
	ChatSvc      chatdomain.Service
	ExportSvc    *export.Service
	ChatLimiter  *ratelimit.ChatLimiter `optional:"true"`
	ObsMetrics   *obsmetrics.Metrics    `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		db:           p.DB,
		clock:        p.Clock,
		invoiceSvc:   p.InvoiceSvc,
		analyticsSvc: p.AnalyticsSvc,
		chatSvc:      p.ChatSvc,
		exportSvc:    p.ExportSvc,
		chatLimiter:  p.ChatLimiter,
		obsMetrics:   p.ObsMetrics,
	}
	if svc.clock == nil {
		svc.clock = clock.NewSystemClock()
	}

	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	s.engine.GET("/", s.Index)

	api := s.engine.Group("/api")

	api.GET("/health", s.Health)
	api.GET("/stats", s.GetStats)

	// -------- Invoices --------
	api.GET("/invoices", s.ListInvoices)
	api.GET("/invoices/:id", s.GetInvoiceByID)
	api.GET("/invoices/:id/pdf", s.GetInvoicePDF)

	// -------- Vendors --------
	api.GET("/vendors", s.ListVendors)
	api.GET("/vendors/top10", s.TopVendors)

	// -------- Analytics --------
	api.GET("/category-spend", s.GetCategorySpend)
	api.GET("/invoice-trends", s.GetInvoiceTrends)
	api.GET("/cash-outflow", s.GetCashOutflow)

	// -------- Chat --------
	api.POST("/chat-with-data", s.ChatRateLimit(), s.ChatWithData)
	api.GET("/chat-with-data/history", s.ChatHistory)

	// -------- Export --------
	api.POST("/export/csv", s.ExportCSV)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
