package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-tutor/internal/platform/logger"
	"github.com/yungbote/neurobridge-tutor/internal/services"
)

func wireRepos(db *gorm.DB, log *logger.Logger) services.TutorRepos {
	log.Info("Wiring repos...")
	return services.NewTutorRepos(db, log)
}
