package buildconfig

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// RepoInfo identifica a revisão em execução e o link web para ela.
type RepoInfo struct {
	Hash string `json:"hash" yaml:"hash"`
	URL  string `json:"url" yaml:"url"`
}

// ResolveRepoInfo decide a origem dos metadados: se VERCEL estiver definida,
// apenas as variáveis da plataforma são consultadas (sem fallback para o git).
// Retorna nil quando não há metadados.
func ResolveRepoInfo(ctx context.Context, env Env, git GitRunner, log *zap.Logger) *RepoInfo {
	if env.IsSet("VERCEL") {
		return RepoInfoFromEnv(env)
	}
	if git == nil {
		return nil
	}
	if log == nil {
		log = zap.NewNop()
	}

	info, err := RepoInfoFromGit(ctx, git)
	if err != nil {
		var gerr *GitError
		if errors.As(err, &gerr) {
			log.Error("error fetching repo info", zap.Strings("args", gerr.Args), zap.String("stderr", gerr.Stderr))
		} else {
			log.Error("error fetching repo info", zap.Error(err))
		}
		return nil
	}
	return info
}

// RepoInfoFromEnv monta os metadados a partir das variáveis VERCEL_GIT_*.
// Provedor desconhecido => nil.
func RepoInfoFromEnv(env Env) *RepoInfo {
	owner := env.Get("VERCEL_GIT_REPO_OWNER")
	slug := env.Get("VERCEL_GIT_REPO_SLUG")
	sha := env.Get("VERCEL_GIT_COMMIT_SHA")

	switch env.Get("VERCEL_GIT_PROVIDER") {
	case "github":
		return &RepoInfo{Hash: sha, URL: "https://github.com/" + owner + "/" + slug + "/commit/" + sha}
	case "gitlab":
		return &RepoInfo{Hash: sha, URL: "https://gitlab.com/" + owner + "/" + slug + "/-/commit/" + sha}
	case "bitbucket":
		return &RepoInfo{Hash: sha, URL: "https://bitbucket.org/" + owner + "/" + slug + "/commits/" + sha}
	}
	return nil
}

// RepoInfoFromGit consulta o repositório local: branch atual -> remote da
// branch -> URL do remote -> HEAD.
func RepoInfoFromGit(ctx context.Context, git GitRunner) (*RepoInfo, error) {
	branch, err := runGit(ctx, git, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return nil, err
	}
	remote, err := runGit(ctx, git, "config", "branch."+branch+".remote")
	if err != nil {
		return nil, err
	}
	remoteURL, err := runGit(ctx, git, "remote", "get-url", remote)
	if err != nil {
		return nil, err
	}
	hash, err := runGit(ctx, git, "rev-parse", "HEAD")
	if err != nil {
		return nil, err
	}

	web := NormalizeRemoteURL(remoteURL)
	return &RepoInfo{Hash: hash, URL: CommitURL(web, hash)}, nil
}

// NormalizeRemoteURL converte remotes SSH (scp-like ou ssh://) para HTTPS e
// remove o sufixo .git.
//
//	git@github.com:owner/repo.git      -> https://github.com/owner/repo
//	ssh://git@host:2222/owner/repo.git -> https://host/owner/repo
func NormalizeRemoteURL(raw string) string {
	u := strings.TrimSpace(raw)

	switch {
	case strings.HasPrefix(u, "git@"):
		u = strings.TrimPrefix(u, "git@")
		u = "https://" + strings.Replace(u, ":", "/", 1)
	case strings.HasPrefix(u, "ssh://"):
		u = strings.TrimPrefix(u, "ssh://")
		if _, rest, ok := strings.Cut(u, "@"); ok {
			u = rest
		}
		host, path, _ := strings.Cut(u, "/")
		if h, _, ok := strings.Cut(host, ":"); ok {
			host = h
		}
		u = "https://" + host + "/" + path
	}

	u = strings.TrimSuffix(u, "/")
	return strings.TrimSuffix(u, ".git")
}

// CommitURL aplica o padrão de link de commit de cada provedor.
// Hosts desconhecidos usam o formato do bitbucket (/commits/).
func CommitURL(webURL, hash string) string {
	switch {
	case strings.Contains(webURL, "github.com"):
		return webURL + "/commit/" + hash
	case strings.Contains(webURL, "gitlab.com"):
		return webURL + "/-/commit/" + hash
	default:
		return webURL + "/commits/" + hash
	}
}
