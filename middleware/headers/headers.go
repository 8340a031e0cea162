// Package headers aplica regras de headers por padrão de path.
package headers

import (
	"fmt"
	"net/http"
	"regexp"

	"shiro/internal/buildconfig"
)

type compiledRule struct {
	re      *regexp.Regexp
	headers []buildconfig.Header
}

// Middleware anexa os headers de toda regra cujo Source casa com o path.
// Os headers são escritos antes do próximo handler, então valem também para 404/5xx.
func Middleware(rules []buildconfig.HeaderRule) (func(next http.Handler) http.Handler, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		re, err := CompileSource(r.Source)
		if err != nil {
			return nil, fmt.Errorf("header rule %q: %w", r.Source, err)
		}
		compiled = append(compiled, compiledRule{re: re, headers: r.Headers})
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, c := range compiled {
				if !c.re.MatchString(r.URL.Path) {
					continue
				}
				for _, h := range c.headers {
					w.Header().Set(h.Key, h.Value)
				}
			}
			next.ServeHTTP(w, r)
		})
	}, nil
}

// CompileSource transforma um source (ex: "/(.*)") em regexp ancorada.
func CompileSource(source string) (*regexp.Regexp, error) {
	return regexp.Compile("^" + source + "$")
}
