package view

import (
	"html/template"
	"strconv"
	"strings"
	"time"
)

// GlowLayer é uma camada do BackgroundGlow: um gradiente radial que oscila no eixo y.
type GlowLayer struct {
	Name     string
	// Position são as classes de posicionamento (left/right/top/translate).
	Position string
	Height   int
	Width    int
	Opacity  float64
	Blur     int
	// Alpha e Stop definem o gradiente: rgb(var(--a) / Alpha) 0%, transparent Stop%.
	Alpha    float64
	Stop     int
	// OffsetsY são os keyframes em px, distribuídos uniformemente no ciclo.
	OffsetsY []int
	Duration time.Duration
	Ease     string
}

// GlowLayers devolve as três camadas, sempre as mesmas. A cor vem da variável
// CSS --a, então tema e viewport não mudam a estrutura.
func GlowLayers() []GlowLayer {
	return []GlowLayer{
		{
			Name:     "primary",
			Position: "left-1/4 top-0 -translate-x-1/2",
			Height:   600,
			Width:    800,
			Opacity:  0.30,
			Blur:     120,
			Alpha:    0.4,
			Stop:     70,
			OffsetsY: []int{0, 100, 0},
			Duration: 12 * time.Second,
			Ease:     "ease-in-out",
		},
		{
			Name:     "secondary",
			Position: "right-1/4 top-[20%] translate-x-1/2",
			Height:   500,
			Width:    600,
			Opacity:  0.25,
			Blur:     100,
			Alpha:    0.3,
			Stop:     70,
			OffsetsY: []int{50, -50, 50},
			Duration: 15 * time.Second,
			Ease:     "ease-in-out",
		},
		{
			Name:     "tertiary",
			Position: "left-1/2 top-[40%] -translate-x-1/2",
			Height:   400,
			Width:    500,
			Opacity:  0.15,
			Blur:     80,
			Alpha:    0.2,
			Stop:     60,
			OffsetsY: []int{-30, 80, -30},
			Duration: 18 * time.Second,
			Ease:     "ease-in-out",
		},
	}
}

func (l GlowLayer) AnimationName() string { return "shiro-glow-" + l.Name }

func (l GlowLayer) Class() string {
	return "absolute " + l.Position +
		" h-[" + strconv.Itoa(l.Height) + "px] w-[" + strconv.Itoa(l.Width) + "px]" +
		" rounded-full opacity-" + strconv.Itoa(int(l.Opacity*100+0.5)) +
		" blur-[" + strconv.Itoa(l.Blur) + "px]"
}

func (l GlowLayer) Style() template.CSS {
	return template.CSS("background: radial-gradient(ellipse at center, rgb(var(--a) / " +
		formatFloat(l.Alpha) + ") 0%, transparent " + strconv.Itoa(l.Stop) + "%); " +
		"animation: " + l.AnimationName() + " " + formatFloat(l.Duration.Seconds()) + "s " +
		l.Ease + " infinite;")
}

// Keyframes gera o @keyframes da camada. Usa a propriedade `translate` para não
// brigar com o `transform` das classes -translate-x-*.
func (l GlowLayer) Keyframes() string {
	var b strings.Builder
	b.WriteString("@keyframes ")
	b.WriteString(l.AnimationName())
	b.WriteString(" {")
	n := len(l.OffsetsY)
	for i, y := range l.OffsetsY {
		pct := 0.0
		if n > 1 {
			pct = float64(i) * 100 / float64(n-1)
		}
		b.WriteString(" ")
		b.WriteString(formatFloat(pct))
		b.WriteString("% { translate: 0 ")
		b.WriteString(strconv.Itoa(y))
		b.WriteString("px; }")
	}
	b.WriteString(" }")
	return b.String()
}

// GlowKeyframes junta os @keyframes de todas as camadas.
func GlowKeyframes(layers []GlowLayer) template.CSS {
	parts := make([]string, 0, len(layers))
	for _, l := range layers {
		parts = append(parts, l.Keyframes())
	}
	return template.CSS(strings.Join(parts, "\n"))
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
