package buildconfig

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Env é uma visão somente-leitura de variáveis de ambiente.
type Env map[string]string

func (e Env) Get(k string) string { return e[k] }

// IsSet segue a semântica de `process.env.X` truthy: definida e não vazia.
func (e Env) IsSet(k string) bool { return e[k] != "" }

// EnvFromOS captura o ambiente do processo.
func EnvFromOS() Env {
	out := make(Env)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		out[k] = v
	}
	return out
}

// LoadDotEnv lê um arquivo .env sem tocar no ambiente do processo.
// Arquivo inexistente não é erro: retorna um Env vazio.
func LoadDotEnv(path string) (Env, error) {
	m, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Env{}, nil
		}
		return Env{}, err
	}
	return Env(m), nil
}
