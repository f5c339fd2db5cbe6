package metrics

import (
	"testing"
	"time"
)

func TestInitIdempotent(t *testing.T) {
	Init()
	Init()

	// Observations after Init must not panic.
	ObserveRun(OutcomeFound, 150*time.Millisecond)
	ObserveRun(OutcomeNotFound, 80*time.Millisecond)
	ObserveRun(OutcomeFetchError, 0)
	ObserveMatches(3)
	ObserveMatches(0)
	ObserveDelivery("webhook", true)
	ObserveDelivery("email", false)
}

func TestHandlerServesMetrics(t *testing.T) {
	Init()
	if Handler() == nil {
		t.Fatal("expected non-nil metrics handler")
	}
}
