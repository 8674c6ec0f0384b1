package app

import (
	"gorm.io/gorm"

	httpH "github.com/yungbote/neurobridge-tutor/internal/http/handlers"
	"github.com/yungbote/neurobridge-tutor/internal/platform/logger"
)

type Handlers struct {
	Tutor  *httpH.TutorHandler
	Report *httpH.ReportHandler
	Admin  *httpH.AdminHandler
	Health *httpH.HealthHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, s Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Tutor:  httpH.NewTutorHandler(log, s.Tutor),
		Report: httpH.NewReportHandler(log, s.Reports, s.Metrics),
		Admin:  httpH.NewAdminHandler(log, s.Metrics, s.Catalog),
		Health: httpH.NewHealthHandler(db),
	}
}
