package buildconfig

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// GitRunner executa um subcomando do git e devolve o stdout sem espaços nas pontas.
type GitRunner interface {
	Run(ctx context.Context, args ...string) (string, error)
}

// GitError carrega o stderr do comando que falhou, que é o que vale a pena logar.
type GitError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *GitError) Error() string {
	msg := "git " + strings.Join(e.Args, " ") + ": " + e.Err.Error()
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *GitError) Unwrap() error { return e.Err }

// ExecGit roda o binário `git` do PATH. Dir vazio usa o diretório atual.
type ExecGit struct {
	Dir string
}

func (g ExecGit) Run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &GitError{
			Args:   args,
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}
	return strings.TrimSpace(stdout.String()), nil
}

func runGit(ctx context.Context, g GitRunner, args ...string) (string, error) {
	out, err := g.Run(ctx, args...)
	if err != nil {
		return "", err
	}
	if out == "" {
		return "", fmt.Errorf("git %s: empty output", strings.Join(args, " "))
	}
	return out, nil
}
