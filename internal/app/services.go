package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-tutor/internal/platform/logger"
	"github.com/yungbote/neurobridge-tutor/internal/services"
)

type Services struct {
	Centrality services.CentralityProvider
	Tutor      services.TutorService
	Metrics    services.MetricsService
	Reports    services.ReportService
	Catalog    services.TopicCatalogService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, clients Clients, r services.TutorRepos) Services {
	log.Info("Wiring services...")

	var locks services.LearnerLocker
	if clients.Redis != nil {
		locks = clients.Redis
	}
	centrality := services.NewCentralityProvider(log, clients.Redis, clients.Graph, r.Topics, cfg.Policy)

	return Services{
		Centrality: centrality,
		Tutor:      services.NewTutorService(db, log, r, centrality, locks, cfg.Policy),
		Metrics:    services.NewMetricsService(db, log, r, locks, cfg.Policy, cfg.MetricsWorkers),
		Reports:    services.NewReportService(log, r),
		Catalog:    services.NewTopicCatalogService(db, log, r, clients.Graph, centrality),
	}
}
