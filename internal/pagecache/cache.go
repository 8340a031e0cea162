// Package pagecache guarda HTML já renderizado.
//
// As chaves incluem o hash do commit, então um deploy novo nunca lê páginas do
// deploy anterior. Erros de cache são best-effort: quem chama loga e renderiza.
package pagecache

import (
	"context"
	"errors"
)

// ErrMiss indica que a chave não está no cache (ou expirou).
var ErrMiss = errors.New("pagecache: miss")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte) error
}

// Key monta a chave de uma página: <commit>:<path>.
func Key(commit, path string) string {
	if commit == "" {
		commit = "dev"
	}
	return commit + ":" + path
}
