package app

import (
	"context"
	"fmt"

	"github.com/yungbote/survey-backend/internal/data/docstore"
	types "github.com/yungbote/survey-backend/internal/domain"
	"github.com/yungbote/survey-backend/internal/modules/survey"
	"github.com/yungbote/survey-backend/internal/observability"
	"github.com/yungbote/survey-backend/internal/platform/logger"
	"github.com/yungbote/survey-backend/internal/services"
)

type Services struct {
	Store  *survey.Store
	Survey services.SurveyService
}

func wireServices(ctx context.Context, log *logger.Logger, medium docstore.Medium, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	store := survey.NewStore(medium, log)
	if err := store.Initialize(ctx); err != nil {
		return Services{}, fmt.Errorf("initialize survey store: %w", err)
	}
	// A corrupt document is reported here but does not stop startup; requests keep failing
	// with persistence_failure until an operator fixes it.
	if stats, err := store.ReadStats(ctx); err != nil {
		log.Error("Survey document unreadable at startup", "error", err)
	} else {
		metrics.SetParticipants(string(types.RoleStudent), stats.Students)
		metrics.SetParticipants(string(types.RoleProfessor), stats.Professors)
		log.Info("Survey store ready", "students", stats.Students, "professors", stats.Professors)
	}

	var publisher services.EventPublisher
	if clients.Events != nil {
		publisher = clients.Events
	}
	return Services{
		Store:  store,
		Survey: services.NewSurveyService(log, store, metrics, publisher),
	}, nil
}
