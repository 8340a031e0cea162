package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"shiro/internal/buildconfig"
	"shiro/internal/pagecache"
	"shiro/internal/view"
	"shiro/middleware/requestid"
)

type handlers struct {
	cfg       buildconfig.Config
	log       *zap.Logger
	renderer  *view.Renderer
	cache     pagecache.Store
	staticDir string
	siteTitle string
}

func (h *handlers) home(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, func() (view.Page, error) {
		content, err := h.renderer.Fragment("home", struct {
			SiteTitle string
			Links     []view.Link
		}{
			SiteTitle: h.siteTitle,
			Links: []view.Link{
				{Href: "/feed", Label: "RSS"},
				{Href: "/sitemap", Label: "Sitemap"},
			},
		})
		return view.Page{Title: h.siteTitle, Content: content}, err
	})
}

func (h *handlers) post(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	h.page(w, r, func() (view.Page, error) {
		content, err := h.renderer.Fragment("post", struct {
			Slug, Title, Summary string
		}{Slug: slug, Title: slug})
		return view.Page{Title: slug + " | " + h.siteTitle, Content: content}, err
	})
}

// page resolve o HTML pelo cache (chave com commit) e renderiza em caso de miss.
func (h *handlers) page(w http.ResponseWriter, r *http.Request, build func() (view.Page, error)) {
	ctx := r.Context()
	key := pagecache.Key(h.cfg.CommitHash(), r.URL.Path)

	if body, ok := h.cached(ctx, key); ok {
		writeHTML(w, body, "HIT")
		return
	}

	p, err := build()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, p); err != nil {
		h.fail(w, r, err)
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, key, buf.Bytes()); err != nil {
			h.log.Warn("page cache set failed", zap.String("key", key), zap.Error(err))
		}
	}
	writeHTML(w, buf.Bytes(), "MISS")
}

func (h *handlers) cached(ctx context.Context, key string) ([]byte, bool) {
	if h.cache == nil {
		return nil, false
	}
	body, err := h.cache.Get(ctx, key)
	if err == nil {
		return body, true
	}
	if !errors.Is(err, pagecache.ErrMiss) {
		h.log.Warn("page cache get failed", zap.String("key", key), zap.Error(err))
	}
	return nil, false
}

func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Error("render failed",
		zap.String("path", r.URL.Path),
		zap.String("request_id", requestid.FromContext(r.Context())),
		zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func writeHTML(w http.ResponseWriter, body []byte, cacheStatus string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Cache", cacheStatus)
	_, _ = w.Write(body)
}

type buildInfo struct {
	CommitHash string `json:"commitHash"`
	CommitURL  string `json:"commitUrl"`
	Production bool   `json:"production"`
}

func (h *handlers) buildInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, buildInfo{
		CommitHash: h.cfg.CommitHash(),
		CommitURL:  h.cfg.CommitURL(),
		Production: h.cfg.Production,
	})
}

// static serve STATIC_DIR em /static/. Source maps só saem fora de produção,
// ou com ProductionBrowserSourceMaps ligado.
func (h *handlers) static() http.Handler {
	files := http.StripPrefix("/static/", http.FileServer(http.Dir(h.staticDir)))
	hideMaps := h.cfg.Production && !h.cfg.ProductionBrowserSourceMaps

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hideMaps && strings.HasSuffix(r.URL.Path, ".map") {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}

type assetSize struct {
	Path  string `json:"path"`
	Bytes int64  `json:"bytes"`
}

type analyzeReport struct {
	Total  int64       `json:"total"`
	Assets []assetSize `json:"assets"`
}

// analyze lista os assets estáticos por tamanho (maior primeiro).
func (h *handlers) analyze(w http.ResponseWriter, r *http.Request) {
	report, err := analyzeDir(h.staticDir)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, report)
}

func analyzeDir(root string) (analyzeReport, error) {
	report := analyzeReport{Assets: []assetSize{}}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == root {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		report.Assets = append(report.Assets, assetSize{Path: filepath.ToSlash(rel), Bytes: info.Size()})
		report.Total += info.Size()
		return nil
	})
	if err != nil {
		return analyzeReport{}, err
	}

	sort.Slice(report.Assets, func(i, j int) bool {
		if report.Assets[i].Bytes != report.Assets[j].Bytes {
			return report.Assets[i].Bytes > report.Assets[j].Bytes
		}
		return report.Assets[i].Path < report.Assets[j].Path
	})
	return report, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(v)
}
