package throttle

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Buckets mantém um token bucket (x/time/rate) por chave de cliente.
type Buckets struct {
	mu         sync.Mutex
	entries    map[string]*bucket
	limit      rate.Limit
	burst      int
	idleTTL    time.Duration
	sweepEvery time.Duration
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

type BucketsOption func(*Buckets)

func WithIdleTTL(d time.Duration) BucketsOption {
	return func(b *Buckets) { b.idleTTL = d }
}

func WithSweepEvery(d time.Duration) BucketsOption {
	return func(b *Buckets) { b.sweepEvery = d }
}

func NewBuckets(rps float64, burst int, opts ...BucketsOption) *Buckets {
	b := &Buckets{
		entries:    make(map[string]*bucket),
		limit:      rate.Limit(rps),
		burst:      burst,
		idleTTL:    10 * time.Minute,
		sweepEvery: time.Minute,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Buckets) RPS() float64 { return float64(b.limit) }
func (b *Buckets) Burst() int   { return b.burst }

// Len é o número de chaves rastreadas.
func (b *Buckets) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

func (b *Buckets) Limiter(key string) *rate.Limiter {
	now := time.Now()

	b.mu.Lock()
	defer b.mu.Unlock()

	if ent, ok := b.entries[key]; ok {
		ent.lastSeen = now
		return ent.lim
	}
	lim := rate.NewLimiter(b.limit, b.burst)
	b.entries[key] = &bucket{lim: lim, lastSeen: now}
	return lim
}

// Allow consome um token da chave. Quando nega, devolve quanto falta para o
// próximo token (arredondado para cima, mínimo 1s).
func (b *Buckets) Allow(key string) (bool, time.Duration) {
	lim := b.Limiter(key)
	now := time.Now()
	r := lim.ReserveN(now, 1)
	if !r.OK() {
		return false, time.Second
	}
	delay := r.DelayFrom(now)
	if delay == 0 {
		return true, 0
	}
	r.CancelAt(now)
	if delay < time.Second {
		delay = time.Second
	}
	return false, ceilSecond(delay)
}

func (b *Buckets) Sweep() {
	cutoff := time.Now().Add(-b.idleTTL)

	b.mu.Lock()
	defer b.mu.Unlock()

	for k, ent := range b.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(b.entries, k)
		}
	}
}

// StartJanitor roda Sweep periodicamente até ctx encerrar.
// Retorna um canal fechado quando a goroutine termina.
func (b *Buckets) StartJanitor(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	if b.sweepEvery <= 0 {
		close(done)
		return done
	}

	t := time.NewTicker(b.sweepEvery)
	go func() {
		defer close(done)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				b.Sweep()
			}
		}
	}()
	return done
}

func ceilSecond(d time.Duration) time.Duration {
	return (d + time.Second - 1).Truncate(time.Second)
}
