package app

import (
	apphttp "github.com/yungbote/survey-backend/internal/http"
	httpH "github.com/yungbote/survey-backend/internal/http/handlers"
	"github.com/yungbote/survey-backend/internal/observability"
	"github.com/yungbote/survey-backend/internal/platform/logger"
)

type Handlers struct {
	Health *httpH.HealthHandler
	Survey *httpH.SurveyHandler
}

func wireHandlers(log *logger.Logger, cfg Config, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: httpH.NewHealthHandler(log, services.Survey),
		Survey: httpH.NewSurveyHandler(log, services.Survey, cfg.Survey.WriteTimeout()),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics) *apphttp.Server {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return apphttp.NewServer(apphttp.RouterConfig{
		Log:           log,
		Metrics:       metrics,
		ServiceName:   serviceName,
		CORSOrigins:   cfg.HTTP.CORSAllowOrigins,
		StaticDir:     cfg.HTTP.StaticDir,
		SurveyHandler: handlers.Survey,
		HealthHandler: handlers.Health,
	})
}
