package throttle

import (
	"context"
	"net/http"
	"time"
)

// Slots é um semáforo baseado em channel.
type Slots struct {
	sem chan struct{}
}

func NewSlots(max int) *Slots {
	return &Slots{sem: make(chan struct{}, max)}
}

// Acquire bloqueia até haver vaga ou ctx encerrar. release deve ser chamado uma vez.
func (s *Slots) Acquire(ctx context.Context) (release func(), ok bool) {
	select {
	case s.sem <- struct{}{}:
		return func() { <-s.sem }, true
	case <-ctx.Done():
		return nil, false
	}
}

// Concurrency limita requests simultâneos; quem espera mais que timeout recebe 503.
// max <= 0 desliga o limite.
func Concurrency(max int, timeout time.Duration) func(next http.Handler) http.Handler {
	if max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	slots := NewSlots(max)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			release, ok := slots.Acquire(ctx)
			if !ok {
				http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}
