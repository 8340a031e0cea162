package throttle

import (
	"net"
	"net/http"
	"strconv"
	"strings"
)

type KeyFunc func(r *http.Request) string

// ClientKey usa o primeiro IP do X-Forwarded-For quando trustXFF, senão o host do RemoteAddr.
func ClientKey(trustXFF bool) KeyFunc {
	return func(r *http.Request) string {
		if trustXFF {
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				first, _, _ := strings.Cut(xff, ",")
				if ip := strings.TrimSpace(first); ip != "" {
					return ip
				}
			}
		}

		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
}

type Options struct {
	Buckets            *Buckets
	KeyFn              KeyFunc
	// TrustXForwardedFor só é usado quando KeyFn é nil.
	TrustXForwardedFor bool
}

// Middleware responde 429 + Retry-After (segundos) quando o bucket da chave esvazia.
// Buckets nil desliga o throttle.
func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.Buckets == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.KeyFn == nil {
		opts.KeyFn = ClientKey(opts.TrustXForwardedFor)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, wait := opts.Buckets.Allow(opts.KeyFn(r))
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(wait.Seconds())))
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
