package app

import (
	"github.com/gin-gonic/gin"

	tutorhttp "github.com/yungbote/neurobridge-tutor/internal/http"
	"github.com/yungbote/neurobridge-tutor/internal/platform/logger"
)

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) *gin.Engine {
	if cfg.LogMode == "production" || cfg.LogMode == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	return tutorhttp.NewRouter(tutorhttp.RouterConfig{
		Log:            log,
		ServiceName:    cfg.ServiceName,
		AuthMiddleware: middleware.Auth,
		TutorHandler:   handlers.Tutor,
		ReportHandler:  handlers.Report,
		AdminHandler:   handlers.Admin,
		HealthHandler:  handlers.Health,
	})
}
