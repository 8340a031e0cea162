package buildconfig

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeGit struct {
	out   map[string]string
	fail  map[string]error
	calls []string
}

func (g *fakeGit) Run(_ context.Context, args ...string) (string, error) {
	k := strings.Join(args, " ")
	g.calls = append(g.calls, k)
	if err, ok := g.fail[k]; ok {
		return "", err
	}
	return g.out[k], nil
}

func gitWithRemote(remote string) *fakeGit {
	return &fakeGit{out: map[string]string{
		"rev-parse --abbrev-ref HEAD": "main",
		"config branch.main.remote":   "origin",
		"remote get-url origin":       remote,
		"rev-parse HEAD":              "abc123",
	}}
}

func TestRepoInfoFromEnv_ProviderPatterns(t *testing.T) {
	cases := []struct {
		provider string
		want     string
	}{
		{"github", "https://github.com/Innei/Shiro/commit/deadbeef"},
		{"gitlab", "https://gitlab.com/Innei/Shiro/-/commit/deadbeef"},
		{"bitbucket", "https://bitbucket.org/Innei/Shiro/commits/deadbeef"},
	}
	for _, tc := range cases {
		env := Env{
			"VERCEL":                "1",
			"VERCEL_GIT_PROVIDER":   tc.provider,
			"VERCEL_GIT_REPO_OWNER": "Innei",
			"VERCEL_GIT_REPO_SLUG":  "Shiro",
			"VERCEL_GIT_COMMIT_SHA": "deadbeef",
		}
		info := RepoInfoFromEnv(env)
		if info == nil {
			t.Fatalf("%s: expected info", tc.provider)
		}
		if info.Hash != "deadbeef" {
			t.Fatalf("%s: expected hash deadbeef, got %q", tc.provider, info.Hash)
		}
		if info.URL != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.provider, tc.want, info.URL)
		}
	}
}

func TestRepoInfoFromEnv_UnknownProvider(t *testing.T) {
	if info := RepoInfoFromEnv(Env{"VERCEL": "1", "VERCEL_GIT_PROVIDER": "gitea"}); info != nil {
		t.Fatalf("expected nil for unknown provider, got %+v", info)
	}
}

func TestResolveRepoInfo_VercelSkipsGit(t *testing.T) {
	git := gitWithRemote("git@github.com:Innei/Shiro.git")
	info := ResolveRepoInfo(context.Background(), Env{"VERCEL": "1", "VERCEL_GIT_PROVIDER": "gitea"}, git, nil)
	if info != nil {
		t.Fatalf("expected nil, got %+v", info)
	}
	if len(git.calls) != 0 {
		t.Fatalf("expected git not to be called, got %v", git.calls)
	}
}

func TestRepoInfoFromGit_NormalizesSSHRemote(t *testing.T) {
	info, err := RepoInfoFromGit(context.Background(), gitWithRemote("git@github.com:Innei/Shiro.git"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.URL != "https://github.com/Innei/Shiro/commit/abc123" {
		t.Fatalf("unexpected url %q", info.URL)
	}
	if info.Hash != "abc123" {
		t.Fatalf("unexpected hash %q", info.Hash)
	}
}

func TestRepoInfoFromGit_HTTPSRemotePerHost(t *testing.T) {
	cases := map[string]string{
		"https://github.com/a/b.git":        "https://github.com/a/b/commit/abc123",
		"https://gitlab.com/a/b.git":        "https://gitlab.com/a/b/-/commit/abc123",
		"https://bitbucket.org/a/b.git":     "https://bitbucket.org/a/b/commits/abc123",
		"https://git.example.com/a/b":       "https://git.example.com/a/b/commits/abc123",
		"git@gitlab.com:group/sub/repo.git": "https://gitlab.com/group/sub/repo/-/commit/abc123",
	}
	for remote, want := range cases {
		info, err := RepoInfoFromGit(context.Background(), gitWithRemote(remote))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", remote, err)
		}
		if info.URL != want {
			t.Fatalf("%s: expected %q, got %q", remote, want, info.URL)
		}
	}
}

func TestNormalizeRemoteURL(t *testing.T) {
	cases := map[string]string{
		"git@github.com:Innei/Shiro.git":         "https://github.com/Innei/Shiro",
		"ssh://git@github.com/Innei/Shiro.git":   "https://github.com/Innei/Shiro",
		"ssh://git@example.com:2222/a/b.git":     "https://example.com/a/b",
		"https://github.com/Innei/Shiro.git":     "https://github.com/Innei/Shiro",
		"https://github.com/Innei/Shiro":         "https://github.com/Innei/Shiro",
		"  https://github.com/Innei/Shiro.git\n": "https://github.com/Innei/Shiro",
		"git@git.example.com:team/project.git":   "https://git.example.com/team/project",
	}
	for in, want := range cases {
		if got := NormalizeRemoteURL(in); got != want {
			t.Fatalf("NormalizeRemoteURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveRepoInfo_GitFailureIsLoggedAndNil(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	git := gitWithRemote("git@github.com:a/b.git")
	git.fail = map[string]error{
		"rev-parse --abbrev-ref HEAD": &GitError{
			Args:   []string{"rev-parse", "--abbrev-ref", "HEAD"},
			Stderr: "fatal: not a git repository",
			Err:    errors.New("exit status 128"),
		},
	}

	info := ResolveRepoInfo(context.Background(), Env{}, git, zap.New(core))
	if info != nil {
		t.Fatalf("expected nil info, got %+v", info)
	}
	if logs.Len() != 1 {
		t.Fatalf("expected one error log, got %d", logs.Len())
	}
	if got := logs.All()[0].ContextMap()["stderr"]; got != "fatal: not a git repository" {
		t.Fatalf("expected stderr to be logged, got %v", got)
	}
}

func TestRepoInfoFromGit_EmptyRemoteIsError(t *testing.T) {
	git := gitWithRemote("")
	if _, err := RepoInfoFromGit(context.Background(), git); err == nil {
		t.Fatalf("expected error for empty remote url")
	}
}

func TestGitError_MessageIncludesStderr(t *testing.T) {
	err := &GitError{Args: []string{"rev-parse", "HEAD"}, Stderr: "boom", Err: errors.New("exit status 1")}
	if got := err.Error(); got != "git rev-parse HEAD: exit status 1: boom" {
		t.Fatalf("unexpected message %q", got)
	}
	if !errors.Is(err, err.Err) {
		t.Fatalf("expected Unwrap to expose underlying error")
	}
}
