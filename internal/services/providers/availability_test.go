package providers

import (
	"context"
	"testing"
	"time"
)

func TestAvailabilityCachesProbeResult(t *testing.T) {
	probes := 0
	probe := func(context.Context) bool {
		probes++
		return true
	}

	a := newAvailability(time.Millisecond)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if !a.check(ctx, probe) {
			t.Fatal("check returned false")
		}
	}
	if probes != 1 {
		t.Errorf("probe ran %d times, want 1", probes)
	}
}

func TestAvailabilityInvalidateForcesReprobe(t *testing.T) {
	probes := 0
	probe := func(context.Context) bool {
		probes++
		return probes > 1 // first probe fails, second succeeds
	}

	a := newAvailability(0)
	ctx := context.Background()

	if a.check(ctx, probe) {
		t.Fatal("first probe should report unavailable")
	}

	a.invalidate()
	time.Sleep(2 * time.Second) // let the limiter refill

	if !a.check(ctx, probe) {
		t.Error("re-probe after invalidation should report available")
	}
	if probes != 2 {
		t.Errorf("probe ran %d times, want 2", probes)
	}
}
