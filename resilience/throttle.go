package resilience

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// Rate-limit header names most APIs use.
const (
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
)

const (
	defaultThrottleThreshold = 100
	defaultThrottleMaxDelay  = 60 * time.Second

	// Reset values above this are unix timestamps rather than seconds.
	epochCutoff = 1_000_000_000
)

// HeaderThrottle paces a client by the rate-limit headers of the last
// response. When the remaining quota drops to Threshold or below, the next
// request is spread over the reset window: reset / remaining seconds.
type HeaderThrottle struct {
	// Threshold is the remaining-request count at which pacing starts.
	Threshold int
	// MaxDelay caps a single pause. Zero means no cap.
	MaxDelay time.Duration
	// RemainingHeader defaults to X-RateLimit-Remaining.
	RemainingHeader string
	// ResetHeader defaults to X-RateLimit-Reset.
	ResetHeader string

	now func() time.Time
}

// DefaultHeaderThrottle returns a throttle with threshold 100 and a 60s cap.
func DefaultHeaderThrottle() *HeaderThrottle {
	return &HeaderThrottle{
		Threshold: defaultThrottleThreshold,
		MaxDelay:  defaultThrottleMaxDelay,
	}
}

// Delay computes the pause implied by the given header lookup. Missing or
// malformed headers yield zero.
func (t *HeaderThrottle) Delay(header func(name string) string) time.Duration {
	if t == nil || header == nil {
		return 0
	}

	remaining := headerInt(header(nonEmpty(t.RemainingHeader, HeaderRateLimitRemaining)), 1)
	reset := headerInt(header(nonEmpty(t.ResetHeader, HeaderRateLimitReset)), 0)
	if remaining > int64(t.Threshold) || reset <= 0 {
		return 0
	}

	if reset > epochCutoff {
		reset = reset - t.clock().Unix()
		if reset <= 0 {
			return 0
		}
	}

	delay := time.Duration(float64(reset) / float64(max(remaining, 1)) * float64(time.Second))
	if t.MaxDelay > 0 && delay > t.MaxDelay {
		delay = t.MaxDelay
	}
	return delay
}

// Wait sleeps for d or until ctx is done.
func (t *HeaderThrottle) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (t *HeaderThrottle) clock() time.Time {
	if t.now != nil {
		return t.now()
	}
	return time.Now()
}

func headerInt(v string, def int64) int64 {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		if f, ferr := strconv.ParseFloat(v, 64); ferr == nil {
			return int64(f)
		}
		return def
	}
	return n
}

func nonEmpty(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
