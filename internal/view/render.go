package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"regexp"
	"strings"

	"shiro/internal/buildconfig"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page é o conteúdo de uma página; o layout (Container + glow + footer) é do Renderer.
type Page struct {
	Title   string
	Content template.HTML
}

type Link struct {
	Href  string
	Label string
}

// Renderer é imutável depois de criado e pode ser usado por várias goroutines.
type Renderer struct {
	tmpl        *template.Template
	strip       []*regexp.Regexp
	assetPrefix string
	commitHash  string
	commitURL   string
	lang        string
	glow        []GlowLayer
	keyframes   template.CSS
}

func NewRenderer(cfg buildconfig.Config) (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	strip := make([]*regexp.Regexp, 0, len(cfg.Compiler.RemoveProperties))
	for _, p := range cfg.Compiler.RemoveProperties {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("remove property %q: %w", p, err)
		}
		strip = append(strip, re)
	}

	glow := GlowLayers()
	return &Renderer{
		tmpl:        tmpl,
		strip:       strip,
		assetPrefix: strings.TrimSuffix(cfg.AssetPrefix, "/"),
		commitHash:  cfg.CommitHash(),
		commitURL:   cfg.CommitURL(),
		lang:        "zh-CN",
		glow:        glow,
		keyframes:   GlowKeyframes(glow),
	}, nil
}

type pageView struct {
	Page
	Lang       string
	Glow       []GlowLayer
	Keyframes  template.CSS
	CommitHash string
	CommitURL  string
	prefix     string
}

func (v pageView) AssetURL(path string) string { return v.prefix + path }

func (v pageView) ShortHash() string {
	if len(v.CommitHash) > 7 {
		return v.CommitHash[:7]
	}
	return v.CommitHash
}

// Render escreve o documento completo. Em produção os atributos de
// Compiler.RemoveProperties são removidos antes de escrever.
func (r *Renderer) Render(w io.Writer, p Page) error {
	var buf bytes.Buffer
	err := r.tmpl.ExecuteTemplate(&buf, "page", pageView{
		Page:       p,
		Lang:       r.lang,
		Glow:       r.glow,
		Keyframes:  r.keyframes,
		CommitHash: r.commitHash,
		CommitURL:  r.commitURL,
		prefix:     r.assetPrefix,
	})
	if err != nil {
		return fmt.Errorf("render page: %w", err)
	}

	out, err := StripAttributes(buf.Bytes(), r.strip)
	if err != nil {
		return fmt.Errorf("strip attributes: %w", err)
	}
	_, err = w.Write(out)
	return err
}

// Fragment executa um template parcial ("post", "home", ...) para virar Page.Content.
func (r *Renderer) Fragment(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

// BackgroundGlow renderiza só o glow, útil para embutir em outras páginas.
func (r *Renderer) BackgroundGlow() (template.HTML, error) {
	return r.Fragment("glow", r.glow)
}
