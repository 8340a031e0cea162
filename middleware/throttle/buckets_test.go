package throttle

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestBuckets_SameKeySameLimiter(t *testing.T) {
	b := NewBuckets(10, 1)
	if b.Limiter("k") != b.Limiter("k") {
		t.Fatalf("expected same limiter for same key")
	}
	if b.Len() != 1 {
		t.Fatalf("expected 1 tracked key, got %d", b.Len())
	}
}

func TestBuckets_AllowThenDenyWithRetryAfter(t *testing.T) {
	b := NewBuckets(0.02, 1)

	ok, wait := b.Allow("k")
	if !ok || wait != 0 {
		t.Fatalf("expected first allow, got ok=%v wait=%s", ok, wait)
	}

	ok, wait = b.Allow("k")
	if ok {
		t.Fatalf("expected second call to be denied")
	}
	if wait < time.Second {
		t.Fatalf("expected wait >= 1s, got %s", wait)
	}
}

func TestBuckets_DeniedCallDoesNotConsumeToken(t *testing.T) {
	b := NewBuckets(0.02, 1)
	b.Allow("k")

	_, first := b.Allow("k")
	_, second := b.Allow("k")
	// a reserva negada é cancelada, então a espera não acumula
	if second > first+time.Second {
		t.Fatalf("expected wait not to grow, got %s then %s", first, second)
	}
}

func TestBuckets_SweepRemovesIdle(t *testing.T) {
	b := NewBuckets(10, 1, WithIdleTTL(2*time.Millisecond), WithSweepEvery(0))

	before := b.Limiter("k")
	time.Sleep(5 * time.Millisecond)
	b.Sweep()

	if b.Len() != 0 {
		t.Fatalf("expected idle key to be removed")
	}
	if before == b.Limiter("k") {
		t.Fatalf("expected limiter to be recreated after sweep")
	}
}

func TestBuckets_JanitorStopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := NewBuckets(10, 1, WithIdleTTL(time.Millisecond), WithSweepEvery(2*time.Millisecond))
	b.Limiter("k")

	ctx, cancel := context.WithCancel(context.Background())
	done := b.StartJanitor(ctx)

	deadline := time.After(time.Second)
	for b.Len() != 0 {
		select {
		case <-deadline:
			cancel()
			t.Fatalf("janitor did not sweep idle key")
		case <-time.After(2 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("janitor did not stop")
	}
}

func TestBuckets_JanitorDisabled(t *testing.T) {
	b := NewBuckets(10, 1, WithSweepEvery(0))
	select {
	case <-b.StartJanitor(context.Background()):
	default:
		t.Fatalf("expected closed channel when sweep is disabled")
	}
}

func TestCeilSecond(t *testing.T) {
	cases := []struct{ in, want time.Duration }{
		{time.Second, time.Second},
		{49400 * time.Millisecond, 50 * time.Second},
		{49*time.Second + time.Nanosecond, 50 * time.Second},
		{50 * time.Second, 50 * time.Second},
	}
	for _, tc := range cases {
		if got := ceilSecond(tc.in); got != tc.want {
			t.Fatalf("ceilSecond(%s) = %s, want %s", tc.in, got, tc.want)
		}
	}
}
