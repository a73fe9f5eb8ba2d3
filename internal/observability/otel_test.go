package observability

import (
	"context"
	"testing"
)

func TestParseHeaders(t *testing.T) {
	got := ParseHeaders(" x-api-key = abc ,broken, empty=,authorization=Bearer t=1")
	if len(got) != 2 {
		t.Fatalf("unexpected headers: %v", got)
	}
	if got["x-api-key"] != "abc" {
		t.Fatalf("x-api-key: %q", got["x-api-key"])
	}
	if got["authorization"] != "Bearer t=1" {
		t.Fatalf("authorization: %q", got["authorization"])
	}
	if ParseHeaders("  ") != nil {
		t.Fatalf("expected nil for blank input")
	}
}

func TestClampRatio(t *testing.T) {
	for in, want := range map[float64]float64{-1: 0, 0.25: 0.25, 3: 1} {
		if got := clampRatio(in); got != want {
			t.Fatalf("clampRatio(%v): want=%v got=%v", in, want, got)
		}
	}
}

func TestInitOTelDisabled(t *testing.T) {
	if shutdown := InitOTel(context.Background(), nil, OtelConfig{Enabled: false}); shutdown != nil {
		t.Fatalf("expected nil shutdown when tracing is disabled")
	}
}
