package services

import (
	"context"
	"sync"
	"time"

	types "github.com/yungbote/survey-backend/internal/domain"
	"github.com/yungbote/survey-backend/internal/modules/survey"
	"github.com/yungbote/survey-backend/internal/observability"
	"github.com/yungbote/survey-backend/internal/platform/logger"
)

const eventPublishTimeout = 2 * time.Second

// SurveyStore is the part of *survey.Store the service relies on.
type SurveyStore interface {
	Append(ctx context.Context, role types.Role, fields types.Fields) (types.Response, error)
	ReadAll(ctx context.Context) (types.ResponseSet, types.Summary, error)
	ReadStats(ctx context.Context) (types.Stats, error)
	Verify(ctx context.Context) error
}

type EventPublisher interface {
	Publish(ctx context.Context, ev types.SubmissionEvent) error
}

type SurveyService interface {
	Submit(ctx context.Context, role types.Role, fields types.Fields) (types.Response, error)
	Results(ctx context.Context) (types.ResponseSet, types.Summary, error)
	Stats(ctx context.Context) (types.Stats, error)
	Health(ctx context.Context) error
	// Close waits for in-flight event publications.
	Close()
}

type surveyService struct {
	log       *logger.Logger
	store     SurveyStore
	metrics   *observability.Metrics
	publisher EventPublisher
	pending   sync.WaitGroup
}

// NewSurveyService accepts nil metrics and a nil publisher.
func NewSurveyService(baseLog *logger.Logger, store SurveyStore, metrics *observability.Metrics, publisher EventPublisher) SurveyService {
	return &surveyService{
		log:       baseLog.With("service", "SurveyService"),
		store:     store,
		metrics:   metrics,
		publisher: publisher,
	}
}

func (s *surveyService) Submit(ctx context.Context, role types.Role, fields types.Fields) (types.Response, error) {
	start := time.Now()
	resp, err := s.store.Append(ctx, role, fields)
	if err != nil {
		s.metrics.ObserveSubmission(string(role), survey.Code(err), time.Since(start))
		return types.Response{}, err
	}
	s.metrics.ObserveSubmission(string(role), "ok", time.Since(start))

	if s.metrics == nil && s.publisher == nil {
		return resp, nil
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		s.afterSubmit(context.WithoutCancel(ctx), resp)
	}()
	return resp, nil
}

// afterSubmit runs once the response is durable; nothing here can fail the submission.
func (s *surveyService) afterSubmit(ctx context.Context, resp types.Response) {
	ev := types.SubmissionEvent{
		Type:        types.EventSurveySubmitted,
		ID:          resp.ID,
		Role:        resp.Role,
		SubmittedAt: resp.SubmittedAt,
	}
	if stats, err := s.store.ReadStats(ctx); err != nil {
		s.log.Warn("Reading stats after submit failed", "id", resp.ID.String(), "error", err)
	} else {
		s.metrics.SetParticipants(string(types.RoleStudent), stats.Students)
		s.metrics.SetParticipants(string(types.RoleProfessor), stats.Professors)
		ev.Stats = &stats
	}

	if s.publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, eventPublishTimeout)
	defer cancel()
	if err := s.publisher.Publish(pubCtx, ev); err != nil {
		s.metrics.IncEventPublishFailure(ev.Type)
		s.log.Warn("Publishing submission event failed", "id", resp.ID.String(), "role", resp.Role, "error", err)
	}
}

func (s *surveyService) Results(ctx context.Context) (types.ResponseSet, types.Summary, error) {
	return s.store.ReadAll(ctx)
}

func (s *surveyService) Stats(ctx context.Context) (types.Stats, error) {
	return s.store.ReadStats(ctx)
}

func (s *surveyService) Health(ctx context.Context) error {
	return s.store.Verify(ctx)
}

func (s *surveyService) Close() {
	s.pending.Wait()
}
