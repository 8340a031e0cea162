package buildconfig

import (
	"context"

	"go.uber.org/zap"
)

type Header struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// HeaderRule associa headers a um padrão de path (ex: "/(.*)").
type HeaderRule struct {
	Source  string   `json:"source" yaml:"source"`
	Headers []Header `json:"headers" yaml:"headers"`
}

// RewriteRule substitui o path antes do roteamento.
type RewriteRule struct {
	Source      string `json:"source" yaml:"source"`
	Destination string `json:"destination" yaml:"destination"`
}

type RemotePattern struct {
	Protocol string `json:"protocol" yaml:"protocol"`
	Hostname string `json:"hostname" yaml:"hostname"`
}

type ImagePolicy struct {
	RemotePatterns        []RemotePattern `json:"remotePatterns" yaml:"remotePatterns"`
	DangerouslyAllowSVG   bool            `json:"dangerouslyAllowSVG" yaml:"dangerouslyAllowSVG"`
	ContentSecurityPolicy string          `json:"contentSecurityPolicy" yaml:"contentSecurityPolicy"`
}

type RemoveConsole struct {
	Exclude []string `json:"exclude" yaml:"exclude"`
}

type Compiler struct {
	// RemoveProperties são regexps de atributos removidos do HTML em produção.
	RemoveProperties []string       `json:"reactRemoveProperties,omitempty" yaml:"reactRemoveProperties,omitempty"`
	RemoveConsole    *RemoveConsole `json:"removeConsole,omitempty" yaml:"removeConsole,omitempty"`
}

type Analyzer struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// Config é o registro de configuração de inicialização. Trate como imutável.
type Config struct {
	Production                  bool              `json:"production" yaml:"production"`
	ReactStrictMode             bool              `json:"reactStrictMode" yaml:"reactStrictMode"`
	Output                      string            `json:"output" yaml:"output"`
	ProductionBrowserSourceMaps bool              `json:"productionBrowserSourceMaps" yaml:"productionBrowserSourceMaps"`
	AssetPrefix                 string            `json:"assetPrefix,omitempty" yaml:"assetPrefix,omitempty"`
	Env                         map[string]string `json:"env" yaml:"env"`

	ServerExternalPackages []string          `json:"serverComponentsExternalPackages" yaml:"serverComponentsExternalPackages"`
	ServerExternals        map[string]string `json:"serverExternals" yaml:"serverExternals"`
	OptimizePackageImports []string          `json:"optimizePackageImports" yaml:"optimizePackageImports"`

	Compiler Compiler      `json:"compiler" yaml:"compiler"`
	Images   ImagePolicy   `json:"images" yaml:"images"`
	Headers  []HeaderRule  `json:"headers" yaml:"headers"`
	Rewrites []RewriteRule `json:"rewrites" yaml:"rewrites"`
	Analyzer Analyzer      `json:"analyzer" yaml:"analyzer"`
}

func (c Config) CommitHash() string { return c.Env["COMMIT_HASH"] }
func (c Config) CommitURL() string  { return c.Env["COMMIT_URL"] }

type Options struct {
	// Env é o ambiente do processo.
	Env    Env
	// DotEnv são os valores lidos do arquivo .env (ASSETPREFIX vem só daqui).
	DotEnv Env
	// Git é usado quando não há variáveis da plataforma. nil desliga o fallback.
	Git    GitRunner
	Logger *zap.Logger
}

// Build monta a configuração. Nunca falha: a ausência de metadados do git
// resulta em COMMIT_HASH/COMMIT_URL vazios.
func Build(ctx context.Context, opts Options) Config {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	isProd := opts.Env.Get("APP_ENV") == "production"

	var hash, url string
	if info := ResolveRepoInfo(ctx, opts.Env, opts.Git, opts.Logger); info != nil {
		hash, url = info.Hash, info.URL
	}

	cfg := Config{
		Production:                  isProd,
		ReactStrictMode:             true,
		Output:                      "standalone",
		ProductionBrowserSourceMaps: false,
		Env: map[string]string{
			"COMMIT_HASH": hash,
			"COMMIT_URL":  url,
		},
		ServerExternalPackages: ServerExternalPackages(),
		ServerExternals: map[string]string{
			"utf-8-validate": "commonjs utf-8-validate",
			"bufferutil":     "commonjs bufferutil",
		},
		OptimizePackageImports: []string{"dayjs", "lodash", "jotai", "clsx", "chroma-js", "fuse.js"},
		Images:                 DefaultImagePolicy(),
		Headers:                SecurityHeaders(),
		Rewrites:               Rewrites(),
	}

	if isProd {
		cfg.AssetPrefix = opts.DotEnv.Get("ASSETPREFIX")
		cfg.Compiler.RemoveProperties = []string{`^data-id$`, `^data-(\w+)-id$`}
		cfg.Compiler.RemoveConsole = &RemoveConsole{Exclude: []string{"error", "warn"}}
	}

	if opts.Env.Get("ANALYZE") == "true" {
		cfg = WithBundleAnalyzer(cfg)
	}
	return cfg
}

// WithBundleAnalyzer devolve uma cópia com o analisador de assets ligado.
func WithBundleAnalyzer(c Config) Config {
	c.Analyzer = Analyzer{Enabled: true}
	return c
}

// ServerExternalPackages lista pacotes que ficam fora do bundle do servidor.
func ServerExternalPackages() []string {
	return []string{
		"@aws-sdk/client-s3",
		"@upstash/redis",
		"better-auth",
		"crossbell",
		"mongoose",
		"@prisma/client",
		"drizzle-orm",
		"js-yaml",
		"katex",
		"mermaid",
		"openai",
		"pngjs",
		"rss",
		"socket.io-client",
		"unified",
		"xss",
	}
}

func SecurityHeaders() []HeaderRule {
	return []HeaderRule{
		{
			Source: "/(.*)",
			Headers: []Header{
				{Key: "X-Content-Type-Options", Value: "nosniff"},
				{Key: "X-Frame-Options", Value: "DENY"},
				{Key: "X-XSS-Protection", Value: "1; mode=block"},
			},
		},
	}
}

// Rewrites são aplicados antes de qualquer arquivo/rota.
func Rewrites() []RewriteRule {
	return []RewriteRule{
		{Source: "/atom.xml", Destination: "/feed"},
		{Source: "/feed.xml", Destination: "/feed"},
		{Source: "/sitemap.xml", Destination: "/sitemap"},
	}
}

func DefaultImagePolicy() ImagePolicy {
	return ImagePolicy{
		RemotePatterns:        []RemotePattern{{Protocol: "https", Hostname: "**"}},
		DangerouslyAllowSVG:   true,
		ContentSecurityPolicy: "default-src 'self'; script-src 'none'; sandbox; style-src 'unsafe-inline';",
	}
}
