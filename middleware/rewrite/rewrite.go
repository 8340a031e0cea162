// Package rewrite substitui paths antes do roteamento (aliases de feed/sitemap).
package rewrite

import (
	"net/http"

	"shiro/internal/buildconfig"
)

// Table mapeia source exato -> destination.
type Table map[string]string

func NewTable(rules []buildconfig.RewriteRule) Table {
	t := make(Table, len(rules))
	for _, r := range rules {
		t[r.Source] = r.Destination
	}
	return t
}

// Resolve devolve o destino para path, se houver regra.
func (t Table) Resolve(path string) (string, bool) {
	dst, ok := t[path]
	return dst, ok
}

// Middleware reescreve r.URL.Path (query preservada). O cliente não vê redirect.
func Middleware(rules []buildconfig.RewriteRule) func(next http.Handler) http.Handler {
	table := NewTable(rules)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			dst, ok := table.Resolve(r.URL.Path)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			r2 := r.Clone(r.Context())
			r2.URL.Path = dst
			r2.URL.RawPath = ""
			next.ServeHTTP(w, r2)
		})
	}
}
