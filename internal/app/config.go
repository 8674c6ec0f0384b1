package app

import (
	"github.com/yungbote/neurobridge-tutor/internal/platform/envutil"
	"github.com/yungbote/neurobridge-tutor/internal/platform/logger"
	"github.com/yungbote/neurobridge-tutor/internal/services"
)

type Config struct {
	LogMode     string
	Port        string
	ServiceName string
	Environment string
	Version     string

	JWTSecretKey string
	JWTIssuer    string

	MetricsWorkers int
	Policy         services.Policy
}

func LoadConfig(log *logger.Logger) (Config, error) {
	policy, err := services.PolicyFromEnv()
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		LogMode:        envutil.String("LOG_MODE", "development"),
		Port:           envutil.String("PORT", "8080"),
		ServiceName:    envutil.String("OTEL_SERVICE_NAME", "neurobridge-tutor"),
		Environment:    envutil.String("APP_ENV", "development"),
		Version:        envutil.String("APP_VERSION", "dev"),
		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", ""),
		JWTIssuer:      envutil.String("JWT_ISSUER", ""),
		MetricsWorkers: envutil.Int("METRICS_RECALC_WORKERS", 4),
		Policy:         policy,
	}
	if cfg.JWTSecretKey == "" {
		log.Warn("JWT_SECRET_KEY not set; every protected route will answer 401")
	}
	return cfg, nil
}
