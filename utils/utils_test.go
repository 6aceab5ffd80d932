package utils

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"
)

func TestRoundTo2Decimals(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{18.871233644010992, 18.87},
		{2119.628252957086, 2119.63},
		{81.128766355989, 81.13},
		{100, 100},
		{-0.004, 0},
		{-12.345678, -12.35},
	}

	for _, tt := range tests {
		if got := RoundTo2Decimals(tt.in); got != tt.want {
			t.Errorf("RoundTo2Decimals(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRoundTo2DecimalsKeepsNaN(t *testing.T) {
	if got := RoundTo2Decimals(math.NaN()); !math.IsNaN(got) {
		t.Errorf("expected NaN, got %v", got)
	}
	if got := RoundTo2Decimals(math.Inf(1)); !math.IsInf(got, 1) {
		t.Errorf("expected +Inf, got %v", got)
	}
}

func TestRoundTo2DecimalsLargeValues(t *testing.T) {
	for _, v := range []float64{math.MaxFloat64, -math.MaxFloat64, 1e300, 1 << 53} {
		if got := RoundTo2Decimals(v); got != v {
			t.Errorf("RoundTo2Decimals(%v) = %v, want unchanged", v, got)
		}
	}
}

func TestSaturate(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{math.NaN(), 0},
		{math.Inf(1), math.MaxFloat64},
		{math.Inf(-1), -math.MaxFloat64},
		{42.5, 42.5},
		{-1e300, -1e300},
	}

	for _, tt := range tests {
		if got := Saturate(tt.in); got != tt.want {
			t.Errorf("Saturate(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(-3, 0, 100); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
	if got := Clamp(130, 0, 100); got != 100 {
		t.Errorf("expected 100, got %v", got)
	}
	if got := Clamp(42.5, 0, 100); got != 42.5 {
		t.Errorf("expected 42.5, got %v", got)
	}
}

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.Allow("10.0.0.1") || !rl.Allow("10.0.0.1") {
		t.Fatal("first two requests should be allowed")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("third request should be rejected")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("other clients should not be affected")
	}
	if got := rl.GetRemaining("10.0.0.1"); got != 0 {
		t.Errorf("expected 0 remaining, got %d", got)
	}

	now = now.Add(61 * time.Second)
	if !rl.Allow("10.0.0.1") {
		t.Error("request after the window should be allowed")
	}
	if got := rl.GetRemaining("10.0.0.1"); got != 1 {
		t.Errorf("expected 1 remaining, got %d", got)
	}
}

func TestRateLimiterReset(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	rl.Allow("k")
	if rl.Allow("k") {
		t.Fatal("expected limit to be reached")
	}
	rl.Reset("k")
	if !rl.Allow("k") {
		t.Error("expected request to be allowed after reset")
	}
}

func TestMetricsErrorKinds(t *testing.T) {
	errDataset := errors.New("dataset unavailable")
	m := NewMetrics()
	m.RegisterErrorKind(errDataset, "dataset_unavailable")
	m.RegisterErrorKind(errDataset, "dataset_unavailable")

	for _, path := range []string{"/data/a.csv", "/data/b.csv", "/tmp/c.csv"} {
		m.RecordError(fmt.Errorf("%w: open %s: no such file", errDataset, path))
	}
	m.RecordError(errors.New("client N23017007413: boom"))
	m.RecordError(errors.New("client N23017007414: boom"))
	m.RecordError(nil)

	types := m.GetMetricsSnapshot()["error_types"].(map[string]int64)
	if len(types) != 3 {
		t.Fatalf("expected 3 error kinds, got %v", types)
	}
	if types["dataset_unavailable"] != 3 || types["other"] != 2 || types["unknown"] != 1 {
		t.Errorf("unexpected error kinds: %v", types)
	}
}

func TestMetricsRecordEvaluation(t *testing.T) {
	m := NewMetrics()
	m.RecordEvaluation([]string{"HighSolvency", "NotSolvent"})
	m.RecordEvaluation(nil)
	m.RecordError(errors.New("boom"))
	m.RecordRequest(10*time.Millisecond, false)
	m.RecordRequest(30*time.Millisecond, true)

	snap := m.GetMetricsSnapshot()
	if snap["total_evaluations"].(int64) != 2 {
		t.Errorf("unexpected total evaluations: %v", snap["total_evaluations"])
	}
	if snap["clients_not_found"].(int64) != 1 {
		t.Errorf("unexpected not-found count: %v", snap["clients_not_found"])
	}
	tiers := snap["tiers"].(map[string]int64)
	if tiers["HighSolvency"] != 1 || tiers["NotSolvent"] != 1 {
		t.Errorf("unexpected tier counts: %v", tiers)
	}
	if snap["error_count"].(int64) != 1 {
		t.Errorf("unexpected error count: %v", snap["error_count"])
	}
	if snap["failed_requests"].(int64) != 1 {
		t.Errorf("unexpected failed requests: %v", snap["failed_requests"])
	}

	m.ResetMetrics()
	if m.GetMetricsSnapshot()["total_evaluations"].(int64) != 0 {
		t.Error("expected metrics to be reset")
	}
}
