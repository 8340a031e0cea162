package pagecache

import (
	"context"
	"sync"
	"time"
)

const defaultMaxEntries = 10_000

type memEntry struct {
	val     []byte
	expires time.Time
	stored  time.Time
}

// Memory é um Store em memória com TTL e limite de entradas. Ao encher, as
// expiradas saem primeiro e depois a mais antiga. Entradas expiradas que nunca
// são relidas saem pelo janitor (StartJanitor).
type Memory struct {
	mu         sync.Mutex
	entries    map[string]memEntry
	ttl        time.Duration
	maxEntries int
	sweepEvery time.Duration
	now        func() time.Time
}

type MemoryOption func(*Memory)

func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

// WithMaxEntries limita o número de páginas guardadas. n <= 0 usa o padrão.
func WithMaxEntries(n int) MemoryOption {
	return func(m *Memory) {
		if n > 0 {
			m.maxEntries = n
		}
	}
}

func WithMemorySweepEvery(d time.Duration) MemoryOption {
	return func(m *Memory) { m.sweepEvery = d }
}

// NewMemory cria o store. ttl <= 0 significa sem expiração.
func NewMemory(ttl time.Duration, opts ...MemoryOption) *Memory {
	m := &Memory{
		entries:    make(map[string]memEntry),
		ttl:        ttl,
		maxEntries: defaultMaxEntries,
		sweepEvery: time.Minute,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ent, ok := m.entries[key]
	if !ok {
		return nil, ErrMiss
	}
	if m.expired(ent, m.now()) {
		delete(m.entries, key)
		return nil, ErrMiss
	}
	return append([]byte(nil), ent.val...), nil
}

func (m *Memory) Set(_ context.Context, key string, val []byte) error {
	now := m.now()
	ent := memEntry{val: append([]byte(nil), val...), stored: now}
	if m.ttl > 0 {
		ent.expires = now.Add(m.ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[key]; !ok && len(m.entries) >= m.maxEntries {
		m.sweepLocked(now)
		if len(m.entries) >= m.maxEntries {
			m.evictOldestLocked()
		}
	}
	m.entries[key] = ent
	return nil
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Sweep remove todas as entradas expiradas.
func (m *Memory) Sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked(m.now())
}

// StartJanitor roda Sweep periodicamente até ctx encerrar.
// Retorna um canal fechado quando a goroutine termina.
func (m *Memory) StartJanitor(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	if m.sweepEvery <= 0 || m.ttl <= 0 {
		close(done)
		return done
	}

	t := time.NewTicker(m.sweepEvery)
	go func() {
		defer close(done)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				m.Sweep()
			}
		}
	}()
	return done
}

func (m *Memory) expired(ent memEntry, now time.Time) bool {
	return !ent.expires.IsZero() && !now.Before(ent.expires)
}

func (m *Memory) sweepLocked(now time.Time) {
	for k, ent := range m.entries {
		if m.expired(ent, now) {
			delete(m.entries, k)
		}
	}
}

func (m *Memory) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	first := true
	for k, ent := range m.entries {
		if first || ent.stored.Before(oldest) {
			oldestKey, oldest, first = k, ent.stored, false
		}
	}
	if !first {
		delete(m.entries, oldestKey)
	}
}
