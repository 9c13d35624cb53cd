package api

import (
	"context"
	"fmt"
	"time"
)

const (
	// MaxRetries bounds the retries of one logical call; attempts never exceed
	// MaxRetries+1.
	MaxRetries = 3
	// RetryDelay is the linear backoff unit: the n-th retry waits n*RetryDelay.
	RetryDelay = time.Second
)

// phase is the state of a logical call.
type phase int

const (
	phaseAttempting phase = iota
	phaseSwitching
	phaseSucceeded
	phaseFailed
)

func (p phase) String() string {
	switch p {
	case phaseAttempting:
		return "attempting"
	case phaseSwitching:
		return "switching"
	case phaseSucceeded:
		return "succeeded"
	case phaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// outcome summarises one attempt for the state machine.
type outcome int

const (
	outcomeSuccess outcome = iota
	// outcomeTransient: no response and not a timeout.
	outcomeTransient
	// outcomeTerminal: HTTP error status, timeout, decode failure, cancellation.
	outcomeTerminal
)

func outcomeOf(err *Error) outcome {
	switch {
	case err == nil:
		return outcomeSuccess
	case err.Kind == KindTransport:
		return outcomeTransient
	default:
		return outcomeTerminal
	}
}

// retryState lives for one logical call only.
type retryState struct {
	phase   phase
	target  target
	retries int
}

// retryPolicy holds the pure transition rules of a logical call.
type retryPolicy struct {
	maxRetries int
	delay      time.Duration
}

func defaultRetryPolicy() retryPolicy {
	return retryPolicy{maxRetries: MaxRetries, delay: RetryDelay}
}

func (p retryPolicy) start() retryState {
	return retryState{phase: phaseAttempting, target: targetPrimary}
}

// switchAfter is the number of primary retries after which the next transient
// failure moves the call to the fallback host: half the budget, rounded up.
func (p retryPolicy) switchAfter() int {
	return (p.maxRetries + 1) / 2
}

// next returns the state that follows an attempt with outcome o, and how long
// to wait before the next attempt.
func (p retryPolicy) next(s retryState, o outcome) (retryState, time.Duration) {
	switch o {
	case outcomeSuccess:
		s.phase = phaseSucceeded
		return s, 0
	case outcomeTerminal:
		s.phase = phaseFailed
		return s, 0
	}
	if s.retries >= p.maxRetries {
		s.phase = phaseFailed
		return s, 0
	}
	if s.target == targetPrimary && s.retries >= p.switchAfter() {
		s.phase = phaseSwitching
		return s, 0
	}
	s.retries++
	s.phase = phaseAttempting
	return s, p.delay * time.Duration(s.retries)
}

// engage completes a switch: the fallback host is used from now on and the
// switch consumes one retry. It is a no-op outside phaseSwitching.
func (p retryPolicy) engage(s retryState) retryState {
	if s.phase != phaseSwitching {
		return s
	}
	s.target = targetFallback
	s.retries++
	s.phase = phaseAttempting
	return s
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
