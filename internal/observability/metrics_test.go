package observability

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/api/stats", "200", time.Millisecond)
	m.ApiInflightInc()
	m.ApiInflightDec()
	m.ObserveSubmission("student", "ok", time.Millisecond)
	m.SetParticipants("student", 3)
	m.IncEventPublishFailure("survey.submitted")

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
	if NewMetrics(false) != nil {
		t.Fatalf("expected disabled metrics to be nil")
	}
}

func TestWritePrometheusSurveySeries(t *testing.T) {
	m := NewMetrics(true)
	m.ObserveSubmission("student", "ok", 20*time.Millisecond)
	m.ObserveSubmission("student", "ok", 30*time.Millisecond)
	m.ObserveSubmission("professor", "persistence_failure", 2*time.Millisecond)
	m.SetParticipants("student", 2)
	m.ObserveAPI("POST", "/api/survey/student", "200", 40*time.Millisecond)

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`survey_submissions_total{role="student",status="ok"} 2.000000`,
		`survey_submissions_total{role="professor",status="persistence_failure"} 1.000000`,
		`survey_participants{role="student"} 2.000000`,
		`survey_append_duration_seconds_count{role="student"} 2`,
		`survey_append_duration_seconds_bucket{role="student",le="+Inf"} 2`,
		`survey_api_requests_total{method="POST",route="/api/survey/student",status="200"} 1.000000`,
		"# TYPE survey_api_inflight_requests gauge",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestHistogramBucketsAreCumulative(t *testing.T) {
	h := NewHistogramVec("x_seconds", "x", []string{"role"}, []float64{0.1, 1})
	h.Observe(0.05, "student")
	h.Observe(0.5, "student")

	var buf bytes.Buffer
	if err := h.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `x_seconds_bucket{role="student",le="0.1"} 1`) {
		t.Fatalf("bad 0.1 bucket:\n%s", out)
	}
	if !strings.Contains(out, `x_seconds_bucket{role="student",le="1"} 2`) {
		t.Fatalf("bad 1 bucket:\n%s", out)
	}
}

func TestEscapeLabel(t *testing.T) {
	got := labelString([]string{"route"}, []string{"a\"b\\c\n"})
	if got != `{route="a\"b\\c\n"}` {
		t.Fatalf("unexpected label string: %s", got)
	}
	if withLe("", "+Inf") != `{le="+Inf"}` {
		t.Fatalf("unexpected le-only labels")
	}
}

func TestWriteHTTPContentType(t *testing.T) {
	m := NewMetrics(true)
	rec := httptest.NewRecorder()
	m.WriteHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("unexpected content type %q", ct)
	}

	var disabled *Metrics
	rec = httptest.NewRecorder()
	disabled.WriteHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 503 {
		t.Fatalf("expected 503 when disabled, got %d", rec.Code)
	}
}
