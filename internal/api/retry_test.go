package api

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryPolicy_Next(t *testing.T) {
	t.Parallel()

	p := defaultRetryPolicy()
	tests := []struct {
		name      string
		state     retryState
		outcome   outcome
		wantPhase phase
		wantRetry int
		wantWait  time.Duration
	}{
		{"success", retryState{target: targetPrimary}, outcomeSuccess, phaseSucceeded, 0, 0},
		{"terminal on first attempt", retryState{target: targetPrimary}, outcomeTerminal, phaseFailed, 0, 0},
		{"first transient", retryState{target: targetPrimary}, outcomeTransient, phaseAttempting, 1, time.Second},
		{"second transient", retryState{target: targetPrimary, retries: 1}, outcomeTransient, phaseAttempting, 2, 2 * time.Second},
		{"half budget switches", retryState{target: targetPrimary, retries: 2}, outcomeTransient, phaseSwitching, 2, 0},
		{"fallback exhausted", retryState{target: targetFallback, retries: 3}, outcomeTransient, phaseFailed, 3, 0},
		{"fallback terminal", retryState{target: targetFallback, retries: 3}, outcomeTerminal, phaseFailed, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, wait := p.next(tt.state, tt.outcome)
			if got.phase != tt.wantPhase || got.retries != tt.wantRetry || wait != tt.wantWait {
				t.Fatalf("next(%+v, %d) = (%s, %d, %s), want (%s, %d, %s)",
					tt.state, tt.outcome, got.phase, got.retries, wait, tt.wantPhase, tt.wantRetry, tt.wantWait)
			}
		})
	}
}

func TestRetryPolicy_EngageMovesToFallback(t *testing.T) {
	t.Parallel()

	p := defaultRetryPolicy()
	s := p.engage(retryState{phase: phaseSwitching, target: targetPrimary, retries: 2})
	if s.phase != phaseAttempting || s.target != targetFallback || s.retries != 3 {
		t.Fatalf("engage = %+v, want attempting fallback with 3 retries", s)
	}

	unchanged := retryState{phase: phaseAttempting, target: targetPrimary, retries: 1}
	if got := p.engage(unchanged); got != unchanged {
		t.Fatalf("engage outside switching = %+v, want %+v", got, unchanged)
	}
}

func TestRetryPolicy_AlwaysTransientWalk(t *testing.T) {
	t.Parallel()

	p := defaultRetryPolicy()
	s := p.start()
	var targets []target
	var waits []time.Duration
	switches := 0
	for attempts := 1; attempts <= 10; attempts++ {
		targets = append(targets, s.target)
		next, wait := p.next(s, outcomeTransient)
		if next.phase == phaseFailed {
			break
		}
		if next.phase == phaseSwitching {
			switches++
			next = p.engage(next)
		} else {
			waits = append(waits, wait)
		}
		s = next
	}

	want := []target{targetPrimary, targetPrimary, targetPrimary, targetFallback}
	if len(targets) != len(want) {
		t.Fatalf("attempt targets = %v, want %v", targets, want)
	}
	for i := range want {
		if targets[i] != want[i] {
			t.Fatalf("attempt targets = %v, want %v", targets, want)
		}
	}
	if switches != 1 {
		t.Fatalf("switches = %d, want 1", switches)
	}
	if len(waits) != 2 || waits[0] != time.Second || waits[1] != 2*time.Second {
		t.Fatalf("waits = %v, want [1s 2s]", waits)
	}
}

func TestRetryPolicy_SwitchAfterRoundsUp(t *testing.T) {
	t.Parallel()

	for max, want := range map[int]int{0: 0, 1: 1, 2: 1, 3: 2, 4: 2, 5: 3} {
		p := retryPolicy{maxRetries: max, delay: time.Second}
		if got := p.switchAfter(); got != want {
			t.Fatalf("switchAfter(max=%d) = %d, want %d", max, got, want)
		}
	}
}

func TestOutcomeOf(t *testing.T) {
	t.Parallel()

	cases := map[Kind]outcome{
		KindTransport: outcomeTransient,
		KindTimeout:   outcomeTerminal,
		KindStatus:    outcomeTerminal,
		KindDecode:    outcomeTerminal,
		KindCanceled:  outcomeTerminal,
		KindRequest:   outcomeTerminal,
	}
	for kind, want := range cases {
		if got := outcomeOf(&Error{Kind: kind}); got != want {
			t.Fatalf("outcomeOf(%s) = %d, want %d", kind, got, want)
		}
	}
	if got := outcomeOf(nil); got != outcomeSuccess {
		t.Fatalf("outcomeOf(nil) = %d, want success", got)
	}
}

func TestSleepHonoursContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("sleep on canceled ctx = %v, want context.Canceled", err)
	}
	if err := sleep(context.Background(), 0); err != nil {
		t.Fatalf("sleep(0) = %v, want nil", err)
	}
}
