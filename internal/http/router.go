package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/neurobridge-tutor/internal/http/handlers"
	httpMW "github.com/yungbote/neurobridge-tutor/internal/http/middleware"
	"github.com/yungbote/neurobridge-tutor/internal/observability"
	"github.com/yungbote/neurobridge-tutor/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AuthMiddleware *httpMW.AuthMiddleware

	TutorHandler  *httpH.TutorHandler
	ReportHandler *httpH.ReportHandler
	AdminHandler  *httpH.AdminHandler
	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.TraceContext())
	r.Use(httpMW.Metrics())
	r.Use(httpMW.CORS())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	r.GET("/metrics", gin.WrapH(observability.Handler()))

	api := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.RequireAuth())
	}

	tutor := api.Group("/tutor")
	{
		if cfg.TutorHandler != nil {
			tutor.POST("/next", cfg.TutorHandler.Next)
			tutor.GET("/preview", cfg.TutorHandler.Preview)
			tutor.POST("/answers", cfg.TutorHandler.SubmitAnswer)
			tutor.DELETE("/topics/:id", cfg.TutorHandler.ResetTopic)
		}
		if cfg.ReportHandler != nil {
			tutor.GET("/report/ability", cfg.ReportHandler.Ability)
			tutor.GET("/report/topics", cfg.ReportHandler.Topics)
			tutor.POST("/metrics/recalculate", cfg.ReportHandler.RecalculateMine)
		}
	}

	admin := api.Group("/admin")
	if cfg.AuthMiddleware != nil {
		admin.Use(cfg.AuthMiddleware.RequireAdmin())
	}
	if cfg.AdminHandler != nil {
		admin.POST("/metrics/recalculate", cfg.AdminHandler.RecalculateAll)
		admin.POST("/topics/sync", cfg.AdminHandler.SyncTopics)
	}

	return r
}
