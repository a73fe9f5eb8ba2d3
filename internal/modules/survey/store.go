package survey

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/survey-backend/internal/data/docstore"
	types "github.com/yungbote/survey-backend/internal/domain"
	"github.com/yungbote/survey-backend/internal/platform/logger"
)

const tracerName = "github.com/yungbote/survey-backend/internal/modules/survey"

// Store accumulates survey responses on a durable medium and keeps the persisted summary
// in step with them.
//
// The medium is the only copy of the state. Append holds the single writer slot across
// load, recompute and save, so two appends can never start from the same prior document.
// Reads do not take the slot: every docstore.Medium replaces the document atomically.
type Store struct {
	medium docstore.Medium
	log    *logger.Logger
	writer chan struct{}
	now    func() time.Time
	newID  func() (uuid.UUID, error)
	tracer trace.Tracer
}

type Option func(*Store)

// WithClock overrides the time source used for submitted_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides how response ids are minted.
func WithIDGenerator(fn func() (uuid.UUID, error)) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

func NewStore(medium docstore.Medium, baseLog *logger.Logger, opts ...Option) *Store {
	s := &Store{
		medium: medium,
		log:    baseLog.With("component", "SurveyStore", "medium", medium.Describe()),
		writer: make(chan struct{}, 1),
		now:    time.Now,
		newID:  uuid.NewV7,
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize creates the empty document when none exists. It never touches an existing
// document, corrupt or not.
func (s *Store) Initialize(ctx context.Context) error {
	const op = "initialize"
	ctx, span := s.tracer.Start(ctx, "survey.Store.Initialize")
	defer span.End()

	if err := s.acquire(ctx); err != nil {
		return s.fail(span, newError(op, ErrStorageUnavailable, err))
	}
	defer s.release()

	seed, err := encodeDocument(types.EmptyDocument())
	if err != nil {
		return s.fail(span, newError(op, ErrPersistenceFailure, err))
	}
	created, err := s.medium.Init(ctx, seed)
	if err != nil {
		return s.fail(span, newError(op, ErrStorageUnavailable, err))
	}
	if created {
		s.log.Info("Created empty survey document")
	} else {
		s.log.Debug("Survey document already present")
	}
	span.SetAttributes(attribute.Bool("survey.created", created))
	return nil
}

// Append stores a new response for role and returns it with its assigned id and timestamp.
// The response is visible to readers only once the updated document is durable.
func (s *Store) Append(ctx context.Context, role types.Role, fields types.Fields) (types.Response, error) {
	const op = "append"
	ctx, span := s.tracer.Start(ctx, "survey.Store.Append", trace.WithAttributes(attribute.String("survey.role", string(role))))
	defer span.End()

	if err := validate(role, fields); err != nil {
		return types.Response{}, s.fail(span, newError(op, ErrValidation, err))
	}

	if err := s.acquire(ctx); err != nil {
		return types.Response{}, s.fail(span, newError(op, ErrPersistenceFailure, err))
	}
	defer s.release()

	doc, err := s.load(ctx, op)
	if err != nil {
		return types.Response{}, s.fail(span, err)
	}

	id, err := s.newID()
	if err != nil {
		return types.Response{}, s.fail(span, newError(op, ErrPersistenceFailure, fmt.Errorf("mint id: %w", err)))
	}
	submittedAt := s.now().UTC()
	if last := doc.LatestSubmittedAt(); submittedAt.Before(last) {
		submittedAt = last
	}
	resp := types.Response{
		ID:          id,
		Role:        role,
		SubmittedAt: submittedAt,
		Fields:      fields.Clone(),
	}

	next := types.Document{ResponseSet: doc.ResponseSet.With(resp)}
	next.Summary = Aggregate(next.ResponseSet)

	raw, err := encodeDocument(next)
	if err != nil {
		return types.Response{}, s.fail(span, newError(op, ErrPersistenceFailure, err))
	}
	if err := s.medium.Save(ctx, raw); err != nil {
		kind := ErrPersistenceFailure
		if errors.Is(err, docstore.ErrNotFound) {
			kind = ErrStorageUnavailable
		}
		s.log.Error("Survey document write failed", "role", role, "id", id.String(), "error", err)
		return types.Response{}, s.fail(span, newError(op, kind, err))
	}

	span.SetAttributes(attribute.String("survey.response_id", id.String()))
	s.log.Info("Survey response stored",
		"role", role,
		"id", id.String(),
		"total_students", next.Summary.TotalStudents,
		"total_professors", next.Summary.TotalProfessors,
	)
	return resp, nil
}

// ReadAll returns the durable response set and its summary.
func (s *Store) ReadAll(ctx context.Context) (types.ResponseSet, types.Summary, error) {
	ctx, span := s.tracer.Start(ctx, "survey.Store.ReadAll")
	defer span.End()

	doc, err := s.load(ctx, "read")
	if err != nil {
		return types.ResponseSet{}, types.Summary{}, s.fail(span, err)
	}
	return doc.ResponseSet, doc.Summary, nil
}

// ReadStats projects the persisted summary plus the most recent response of each role.
func (s *Store) ReadStats(ctx context.Context) (types.Stats, error) {
	ctx, span := s.tracer.Start(ctx, "survey.Store.ReadStats")
	defer span.End()

	doc, err := s.load(ctx, "stats")
	if err != nil {
		return types.Stats{}, s.fail(span, err)
	}
	return projectStats(doc), nil
}

// Verify recomputes the summary and reports a persistence failure if the stored one drifted.
func (s *Store) Verify(ctx context.Context) error {
	const op = "verify"
	ctx, span := s.tracer.Start(ctx, "survey.Store.Verify")
	defer span.End()

	doc, err := s.load(ctx, op)
	if err != nil {
		return s.fail(span, err)
	}
	if !Matches(doc.ResponseSet, doc.Summary) {
		return s.fail(span, newError(op, ErrPersistenceFailure, errors.New("stored summary diverges from stored responses")))
	}
	return nil
}

func projectStats(doc types.Document) types.Stats {
	sum := doc.Summary.Clone()
	stats := types.Stats{
		TotalParticipants: sum.TotalStudents + sum.TotalProfessors,
		Students:          sum.TotalStudents,
		Professors:        sum.TotalProfessors,
		SystemsRanking:    sum.Ranking,
	}
	if r, ok := doc.Latest(types.RoleStudent); ok {
		stats.LatestStudent = &r
	}
	if r, ok := doc.Latest(types.RoleProfessor); ok {
		stats.LatestProfessor = &r
	}
	return stats
}

func (s *Store) load(ctx context.Context, op string) (types.Document, error) {
	raw, err := s.medium.Load(ctx)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return types.Document{}, newError(op, ErrStorageUnavailable, errors.New("survey document not initialized"))
		}
		return types.Document{}, newError(op, ErrPersistenceFailure, err)
	}
	doc, err := decodeDocument(raw)
	if err != nil {
		s.log.Error("Survey document is corrupt", "error", err)
		return types.Document{}, newError(op, ErrPersistenceFailure, err)
	}
	return doc, nil
}

func (s *Store) acquire(ctx context.Context) error {
	select {
	case s.writer <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for writer slot: %w", ctx.Err())
	}
}

func (s *Store) release() { <-s.writer }

func (s *Store) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func validate(role types.Role, fields types.Fields) error {
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", role)
	}
	for key, v := range fields {
		if key == "" {
			return errors.New("empty field name")
		}
		if v.Kind() == types.KindInvalid {
			return fmt.Errorf("field %q has no value", key)
		}
	}
	return nil
}

func encodeDocument(doc types.Document) ([]byte, error) {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return b, nil
}

// documentWire uses pointers so a missing top-level member is told apart from an empty one.
type documentWire struct {
	Students   *[]types.Response `json:"students"`
	Professors *[]types.Response `json:"professors"`
	Summary    *types.Summary    `json:"summary"`
}

func decodeDocument(raw []byte) (types.Document, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return types.Document{}, errors.New("corrupt survey document: empty")
	}
	var w documentWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return types.Document{}, fmt.Errorf("corrupt survey document: not valid JSON: %w", err)
	}
	switch {
	case w.Students == nil:
		return types.Document{}, errors.New("corrupt survey document: missing students")
	case w.Professors == nil:
		return types.Document{}, errors.New("corrupt survey document: missing professors")
	case w.Summary == nil:
		return types.Document{}, errors.New("corrupt survey document: missing summary")
	case w.Summary.Ranking == nil:
		return types.Document{}, errors.New("corrupt survey document: missing systems_ranking")
	}
	doc := types.Document{
		ResponseSet: types.ResponseSet{Students: *w.Students, Professors: *w.Professors},
		Summary:     *w.Summary,
	}
	for _, role := range []types.Role{types.RoleStudent, types.RoleProfessor} {
		for i, r := range doc.ByRole(role) {
			if r.Role != role {
				return types.Document{}, fmt.Errorf("corrupt survey document: %s[%d] has role %q", role, i, r.Role)
			}
			if r.ID == uuid.Nil {
				return types.Document{}, fmt.Errorf("corrupt survey document: %s[%d] has no id", role, i)
			}
		}
	}
	return doc, nil
}
