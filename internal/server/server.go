package server

import (
	"context"
	"net/http"
	"time"

	checkoutdomain "github.com/SeredDEV/store-payments/internal/checkout/domain"
	"github.com/SeredDEV/store-payments/internal/config"
	"github.com/SeredDEV/store-payments/internal/observability/logger"
	webhookdomain "github.com/SeredDEV/store-payments/internal/webhook/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Cfg      config.Config
	DB       *gorm.DB `optional:"true"`
	Checkout checkoutdomain.Service
	Webhook  webhookdomain.Service
}

type Server struct {
	log            *zap.Logger
	cfg            config.Config
	db             *gorm.DB
	checkoutSvc    checkoutdomain.Service
	webhookSvc     webhookdomain.Service
	webhookLimiter *rateLimiter
}

func NewServer(p Params) *Server {
	return &Server{
		log:            p.Log.Named("server"),
		cfg:            p.Cfg,
		db:             p.DB,
		checkoutSvc:    p.Checkout,
		webhookSvc:     p.Webhook,
		webhookLimiter: newRateLimiter(120, time.Minute),
	}
}

func NewEngine(s *Server) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		SkipPaths: []string{"/healthz"},
	}))

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := engine.Group("/v1")
	{
		v1.POST("/payment-collections", s.CreateCollection)
		v1.GET("/payment-collections/:id", s.GetCollection)
		v1.POST("/payment-collections/:id/complete", s.CompleteCollection)
		v1.GET("/payment-collections/:id/sessions", s.ListSessions)
		v1.POST("/payment-collections/:id/sessions", s.CreateSession)

		v1.GET("/payment-sessions/:id", s.GetSession)
		v1.POST("/payment-sessions/:id", s.UpdateSession)
		v1.DELETE("/payment-sessions/:id", s.DeleteSession)
		v1.GET("/payment-sessions/:id/status", s.RefreshSessionStatus)
		v1.POST("/payment-sessions/:id/authorize", s.AuthorizeSession)
		v1.POST("/payment-sessions/:id/capture", s.CaptureSession)
		v1.POST("/payment-sessions/:id/refund", s.RefundSession)
		v1.POST("/payment-sessions/:id/cancel", s.CancelSession)
	}

	engine.POST("/webhooks/payment/:provider/:subprovider", s.HandleProviderWebhook)

	if s.cfg.Environment != "production" && s.db != nil {
		engine.POST("/internal/test-cleanup", s.TestCleanup)
	}

	return engine
}

func RunHTTP(lc fx.Lifecycle, s *Server, engine *gin.Engine) {
	srv := &http.Server{
		Addr:    s.cfg.HTTPAddr,
		Handler: engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				s.log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					s.log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

var Module = fx.Module("server",
	fx.Provide(NewServer),
	fx.Provide(NewEngine),
	fx.Invoke(RunHTTP),
)
