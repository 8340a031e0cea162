// Package server monta o handler HTTP do Shiro a partir da buildconfig.Config.
package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"shiro/internal/buildconfig"
	"shiro/internal/imageproxy"
	"shiro/internal/pagecache"
	"shiro/internal/view"
	"shiro/middleware/accesslog"
	"shiro/middleware/headers"
	"shiro/middleware/requestid"
	"shiro/middleware/rewrite"
	"shiro/middleware/throttle"
)

type Options struct {
	Config           buildconfig.Config
	Logger           *zap.Logger
	// Upstream é a API de conteúdo que gera feed e sitemap. nil => 503 nessas rotas.
	Upstream         *url.URL
	StaticDir        string
	// Cache nil desliga o cache de páginas.
	Cache            pagecache.Store
	Buckets          *throttle.Buckets
	TrustXFF         bool
	SiteTitle        string
	// ImageClient permite trocar o client do proxy de imagens (testes com TLS).
	ImageClient      *http.Client
	// ImageConcurrency limita downloads simultâneos no proxy de imagens (0 = sem limite).
	ImageConcurrency int
}

// New devolve o handler completo: rewrite -> requestid -> accesslog -> headers -> rotas.
func New(opts Options) (http.Handler, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.StaticDir == "" {
		opts.StaticDir = "public"
	}
	if opts.SiteTitle == "" {
		opts.SiteTitle = "Shiro"
	}

	renderer, err := view.NewRenderer(opts.Config)
	if err != nil {
		return nil, err
	}
	secHeaders, err := headers.Middleware(opts.Config.Headers)
	if err != nil {
		return nil, err
	}

	h := &handlers{
		cfg:       opts.Config,
		log:       opts.Logger,
		renderer:  renderer,
		cache:     opts.Cache,
		staticDir: opts.StaticDir,
		siteTitle: opts.SiteTitle,
	}

	limit := throttle.Middleware(throttle.Options{
		Buckets:            opts.Buckets,
		TrustXForwardedFor: opts.TrustXFF,
	})

	imgOpts := []imageproxy.Option{imageproxy.WithLogger(opts.Logger)}
	if opts.ImageClient != nil {
		imgOpts = append(imgOpts, imageproxy.WithClient(opts.ImageClient))
	}
	images := imageproxy.New(opts.Config.Images, imgOpts...)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.home)
	mux.HandleFunc("GET /posts/{slug}", h.post)
	mux.HandleFunc("GET /api/build-info", h.buildInfo)
	mux.Handle("GET /_image", limit(throttle.Concurrency(opts.ImageConcurrency, 0)(images)))
	mux.Handle("GET /static/", h.static())

	upstream := upstreamHandler(opts.Upstream, opts.Logger)
	mux.Handle("GET /feed", limit(upstream))
	mux.Handle("GET /sitemap", limit(upstream))

	if opts.Config.Analyzer.Enabled {
		mux.HandleFunc("GET /_analyze", h.analyze)
	}

	var out http.Handler = mux
	out = secHeaders(out)
	out = accesslog.Middleware(opts.Logger)(out)
	out = requestid.Middleware(out)
	out = rewrite.Middleware(opts.Config.Rewrites)(out)
	return out, nil
}

// upstreamHandler faz proxy mantendo o path (/feed, /sitemap) sob o path base do upstream.
func upstreamHandler(target *url.URL, log *zap.Logger) http.Handler {
	if target == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream not configured", http.StatusServiceUnavailable)
		})
	}

	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.Error("upstream error",
				zap.String("path", r.URL.Path),
				zap.String("request_id", requestid.FromContext(r.Context())),
				zap.Error(err))
			http.Error(w, "bad gateway", http.StatusBadGateway)
		},
	}
}

// ParseUpstream valida UPSTREAM_URL; vazio => nil sem erro.
func ParseUpstream(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid UPSTREAM_URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.New("invalid UPSTREAM_URL: scheme must be http or https")
	}
	if u.Host == "" {
		return nil, errors.New("invalid UPSTREAM_URL: missing host")
	}
	return u, nil
}
