package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/survey-backend/internal/data/docstore"
	types "github.com/yungbote/survey-backend/internal/domain"
	"github.com/yungbote/survey-backend/internal/modules/survey"
	"github.com/yungbote/survey-backend/internal/platform/logger"
	"github.com/yungbote/survey-backend/internal/services"
)

type surveyFixture struct {
	router *gin.Engine
	path   string
}

func newSurveyFixture(t *testing.T) surveyFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	path := filepath.Join(t.TempDir(), "survey-results.json")
	store := survey.NewStore(docstore.NewFileMedium(path, logger.Nop()), logger.Nop())
	if err := store.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	svc := services.NewSurveyService(logger.Nop(), store, nil, nil)
	t.Cleanup(svc.Close)

	h := NewSurveyHandler(logger.Nop(), svc, 0)
	health := NewHealthHandler(logger.Nop(), svc)
	r := gin.New()
	r.GET("/healthcheck", health.HealthCheck)
	r.POST("/api/survey/student", h.SubmitStudent)
	r.POST("/api/survey/professor", h.SubmitProfessor)
	r.GET("/api/results", h.Results)
	r.GET("/api/stats", h.Stats)
	return surveyFixture{router: r, path: path}
}

func (f surveyFixture) do(t *testing.T, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

type submitBody struct {
	Success  bool           `json:"success"`
	Message  string         `json:"message"`
	Code     string         `json:"code"`
	Response types.Response `json:"response"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestSubmitStudentJSON(t *testing.T) {
	f := newSurveyFixture(t)

	body := `{"most_effective":"نظام التحضير الآلي","year":3,"consent":true,"comment":null}`
	rec := f.do(t, http.MethodPost, "/api/survey/student", "application/json", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	got := decode[submitBody](t, rec)
	if !got.Success || got.Message != msgStudentSaved {
		t.Fatalf("unexpected envelope: %+v", got)
	}
	if got.Response.Role != types.RoleStudent || got.Response.SubmittedAt.IsZero() {
		t.Fatalf("unexpected response: %+v", got.Response)
	}
	if n, ok := got.Response.Fields["year"].AsNumber(); !ok || n != 3 {
		t.Fatalf("year field: %v", got.Response.Fields["year"])
	}
	if _, ok := got.Response.Fields["comment"]; ok {
		t.Fatalf("null member should be dropped")
	}
}

func TestSubmitProfessorForm(t *testing.T) {
	f := newSurveyFixture(t)

	form := url.Values{}
	form.Set(types.FieldMostImpactful, types.CategoryExam.Label())
	form.Add("department", "CS")
	form.Add("department", "EE")
	rec := f.do(t, http.MethodPost, "/api/survey/professor", "application/x-www-form-urlencoded", form.Encode())
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	got := decode[submitBody](t, rec)
	if got.Message != msgProfessorSaved {
		t.Fatalf("message: %q", got.Message)
	}
	if dep, _ := got.Response.Fields.String("department"); dep != "CS" {
		t.Fatalf("expected first form value, got %q", dep)
	}

	stats := decode[types.Stats](t, f.do(t, http.MethodGet, "/api/stats", "", ""))
	if stats.Professors != 1 || stats.SystemsRanking[types.CategoryExam] != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.LatestProfessor == nil || stats.LatestProfessor.ID != got.Response.ID {
		t.Fatalf("latest professor mismatch: %+v", stats.LatestProfessor)
	}
}

func TestSubmitEmptyBodyStoresEmptyResponse(t *testing.T) {
	f := newSurveyFixture(t)
	rec := f.do(t, http.MethodPost, "/api/survey/student", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	if got := decode[submitBody](t, rec); len(got.Response.Fields) != 0 {
		t.Fatalf("expected no fields, got %v", got.Response.Fields)
	}
}

func TestSubmitRejectsNestedValues(t *testing.T) {
	f := newSurveyFixture(t)
	rec := f.do(t, http.MethodPost, "/api/survey/student", "application/json", `{"answers":{"q1":"a"}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: want=400 got=%d", rec.Code)
	}
	got := decode[submitBody](t, rec)
	if got.Success || got.Code != "validation_error" || got.Message != msgSaveFailed {
		t.Fatalf("unexpected envelope: %+v", got)
	}

	set := decode[types.Document](t, f.do(t, http.MethodGet, "/api/results", "", ""))
	if set.Len() != 0 {
		t.Fatalf("rejected submission was stored")
	}
}

func TestSubmitRejectsOversizedBody(t *testing.T) {
	f := newSurveyFixture(t)
	body := `{"comment":"` + strings.Repeat("x", maxSubmitBody) + `"}`
	rec := f.do(t, http.MethodPost, "/api/survey/student", "application/json", body)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status: want=413 got=%d", rec.Code)
	}
}

func TestResultsEnvelope(t *testing.T) {
	f := newSurveyFixture(t)
	for i := 0; i < 2; i++ {
		rec := f.do(t, http.MethodPost, "/api/survey/student", "application/json",
			`{"most_effective":"نظام إدارة المحاضرات"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("submit %d: %d", i, rec.Code)
		}
	}

	rec := f.do(t, http.MethodGet, "/api/results", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d", rec.Code)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"students", "professors", "summary"} {
		if _, ok := raw[key]; !ok {
			t.Fatalf("missing %q in %s", key, rec.Body.String())
		}
	}
	doc := decode[types.Document](t, rec)
	if doc.Summary.TotalStudents != 2 || doc.Summary.Ranking[types.CategoryLecture] != 2 {
		t.Fatalf("unexpected summary: %+v", doc.Summary)
	}
}

func TestCorruptDocumentIsReported(t *testing.T) {
	f := newSurveyFixture(t)
	if err := os.WriteFile(f.path, []byte(`{"students":[`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	rec := f.do(t, http.MethodGet, "/api/results", "", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("results status: want=500 got=%d", rec.Code)
	}
	var env struct {
		Error struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Error.Message != msgResultsFailed || env.Error.Code != "persistence_failure" {
		t.Fatalf("unexpected error envelope: %+v", env)
	}

	rec = f.do(t, http.MethodGet, "/api/stats", "", "")
	if rec.Code != http.StatusInternalServerError || !strings.Contains(rec.Body.String(), msgStatsFailed) {
		t.Fatalf("stats: %d %s", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodPost, "/api/survey/student", "application/json", `{}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("submit status: want=500 got=%d", rec.Code)
	}

	if rec := f.do(t, http.MethodGet, "/healthcheck", "", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("healthcheck: want=503 got=%d", rec.Code)
	}

	raw, err := os.ReadFile(f.path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(raw) != `{"students":[` {
		t.Fatalf("corrupt document was overwritten: %q", raw)
	}
}

func TestMissingDocumentIsStorageUnavailable(t *testing.T) {
	f := newSurveyFixture(t)
	if err := os.Remove(f.path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	rec := f.do(t, http.MethodPost, "/api/survey/student", "application/json", `{}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status: want=503 got=%d", rec.Code)
	}
	if got := decode[submitBody](t, rec); got.Code != "storage_unavailable" {
		t.Fatalf("code: %q", got.Code)
	}
}

func TestHealthCheckOK(t *testing.T) {
	f := newSurveyFixture(t)
	rec := f.do(t, http.MethodGet, "/healthcheck", "", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck: %d %q", rec.Code, rec.Body.String())
	}
}

func TestToAPIErrorMapping(t *testing.T) {
	cases := []struct {
		kind   error
		status int
	}{
		{survey.ErrValidation, http.StatusBadRequest},
		{survey.ErrStorageUnavailable, http.StatusServiceUnavailable},
		{survey.ErrPersistenceFailure, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		err := &survey.Error{Op: "append", Kind: tc.kind, Err: errors.New("x")}
		if got := toAPIError(err).Status; got != tc.status {
			t.Fatalf("%v: want=%d got=%d", tc.kind, tc.status, got)
		}
	}
	if got := toAPIError(errors.New("boom")); got.Status != http.StatusInternalServerError || got.Code != "internal_error" {
		t.Fatalf("unexpected mapping for foreign error: %+v", got)
	}
}
