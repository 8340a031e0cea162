package imageproxy

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"shiro/internal/buildconfig"
)

const (
	defaultMaxBytes = 10 << 20
	maxRedirects    = 5
)

// Proxy atende GET /_image?url=<https://...>.
type Proxy struct {
	policy   buildconfig.ImagePolicy
	client   *http.Client
	log      *zap.Logger
	maxBytes int64
}

type Option func(*Proxy)

func WithClient(c *http.Client) Option {
	return func(p *Proxy) { p.client = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(p *Proxy) { p.log = l }
}

func WithMaxBytes(n int64) Option {
	return func(p *Proxy) { p.maxBytes = n }
}

func New(policy buildconfig.ImagePolicy, opts ...Option) *Proxy {
	p := &Proxy{
		policy:   policy,
		client:   &http.Client{Timeout: 15 * time.Second},
		log:      zap.NewNop(),
		maxBytes: defaultMaxBytes,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.client = p.guardRedirects(p.client)
	return p
}

// guardRedirects devolve uma cópia do client em que cada salto de redirect
// passa de novo pela ImagePolicy. O client original não é alterado.
func (p *Proxy) guardRedirects(c *http.Client) *http.Client {
	if c == nil {
		c = &http.Client{Timeout: 15 * time.Second}
	}
	cp := *c
	cp.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		if !Allowed(p.policy, req.URL) {
			return fmt.Errorf("redirect to %s is not allowed", req.URL.Redacted())
		}
		return nil
	}
	return &cp
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	raw := r.URL.Query().Get("url")
	if raw == "" {
		http.Error(w, `"url" parameter is required`, http.StatusBadRequest)
		return
	}
	target, err := url.Parse(raw)
	if err != nil || !Allowed(p.policy, target) {
		http.Error(w, `"url" parameter is not allowed`, http.StatusBadRequest)
		return
	}

	body, contentType, cacheControl, err := p.fetch(r, target)
	if err != nil {
		p.log.Warn("image fetch failed", zap.String("url", target.String()), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		http.Error(w, "upstream response is not an image", http.StatusUnsupportedMediaType)
		return
	}
	if mediaType == "image/svg+xml" && !p.policy.DangerouslyAllowSVG {
		http.Error(w, "svg images are not allowed", http.StatusUnsupportedMediaType)
		return
	}

	h := w.Header()
	h.Set("Content-Type", mediaType)
	h.Set("Content-Length", strconv.Itoa(len(body)))
	h.Set("X-Content-Type-Options", "nosniff")
	if p.policy.ContentSecurityPolicy != "" {
		h.Set("Content-Security-Policy", p.policy.ContentSecurityPolicy)
	}
	if cacheControl == "" {
		cacheControl = "public, max-age=60, must-revalidate"
	}
	h.Set("Cache-Control", cacheControl)

	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodGet {
		_, _ = w.Write(body)
	}
}

func (p *Proxy) fetch(r *http.Request, target *url.URL) ([]byte, string, string, error) {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, "", "", err
	}
	req.Header.Set("Accept", "image/*")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", "", fmt.Errorf("upstream status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBytes+1))
	if err != nil {
		return nil, "", "", err
	}
	if int64(len(body)) > p.maxBytes {
		return nil, "", "", fmt.Errorf("image exceeds %d bytes", p.maxBytes)
	}
	return body, resp.Header.Get("Content-Type"), resp.Header.Get("Cache-Control"), nil
}
