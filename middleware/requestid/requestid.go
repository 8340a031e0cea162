// Package requestid garante um X-Request-ID por request.
package requestid

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// Header é o nome canônico usado no middleware, nos logs e nos testes.
const Header = "X-Request-ID"

type ctxKey struct{}

// FromContext devolve o id associado ao request ("" se não houver).
func FromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKey{}).(string)
	return v
}

// Middleware reaproveita um X-Request-ID recebido (até 128 bytes) ou gera um uuid v4.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(Header))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}

		w.Header().Set(Header, id)
		r.Header.Set(Header, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}
