package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

const (
	defaultAxisColor = "#475569"
	defaultGridColor = "#cbd5e1"
)

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}

func bounds(series []float64) (float64, float64) {
	if len(series) == 0 {
		return 0, 0
	}
	minVal := series[0]
	maxVal := series[0]
	for _, v := range series[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	return minVal, maxVal
}

// zeroBased widens [minVal, maxVal] so that it contains zero and is never empty.
func zeroBased(minVal, maxVal float64) (float64, float64) {
	minVal = math.Min(minVal, 0)
	maxVal = math.Max(maxVal, 0)
	if almostEqual(maxVal, minVal) {
		maxVal = minVal + 1
	}
	return minVal, maxVal
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func makeID(base, suffix string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, strings.ToLower(strings.TrimSpace(base)))
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		cleaned = "chart"
	}
	return cleaned + "-" + suffix
}

func formatTick(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", v/1_000_000_000)
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fk", v/1_000)
	default:
		if almostEqual(v, math.Round(v)) {
			return fmt.Sprintf("%.0f", v)
		}
		return fmt.Sprintf("%.2f", v)
	}
}

func esc(s string) string {
	return template.HTMLEscapeString(s)
}

// open writes the svg root with its accessible title and description.
func open(b *strings.Builder, width, height int, kind, title, desc, defaultTitle, defaultDesc string) {
	titleID := makeID(title, kind+"-title")
	descID := makeID(title, kind+"-desc")
	fmt.Fprintf(b, "<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-labelledby=\"%s %s\">", width, height, titleID, descID)
	fmt.Fprintf(b, "<title id=\"%s\">%s</title>", titleID, esc(fallback(title, defaultTitle)))
	fmt.Fprintf(b, "<desc id=\"%s\">%s</desc>", descID, esc(fallback(desc, defaultDesc)))
}

type plot struct {
	left, top, width, height float64
}

func (p plot) bottom() float64 { return p.top + p.height }
func (p plot) right() float64  { return p.left + p.width }

func newPlot(width, height int, padding float64) (plot, error) {
	p := plot{left: padding, top: padding, width: float64(width) - 2*padding, height: float64(height) - 2*padding}
	if p.width <= 0 || p.height <= 0 {
		return plot{}, fmt.Errorf("svg: viewport too small")
	}
	return p, nil
}

// gridLines draws horizontal grid lines with value labels on the left edge,
// or on the right edge when right is set.
func gridLines(b *strings.Builder, p plot, minVal, maxVal float64, ticks int, axisColor, gridColor string, right bool) {
	for i := 0; i <= ticks; i++ {
		ratio := float64(i) / float64(ticks)
		y := p.bottom() - ratio*p.height
		value := minVal + (maxVal-minVal)*ratio
		if !right {
			fmt.Fprintf(b, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\" stroke-width=\"0.5\" stroke-dasharray=\"2,4\" aria-hidden=\"true\"></line>", p.left, y, p.right(), y, gridColor)
			fmt.Fprintf(b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"end\">%s</text>", p.left-6, y+4, axisColor, esc(formatTick(value)))
			continue
		}
		fmt.Fprintf(b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"start\">%s</text>", p.right()+6, y+4, axisColor, esc(formatTick(value)))
	}
}

func axes(b *strings.Builder, p plot, baseline float64, axisColor string) {
	fmt.Fprintf(b, "<g stroke=\"%s\" aria-hidden=\"true\">", axisColor)
	fmt.Fprintf(b, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", p.left, p.top, p.left, p.bottom())
	fmt.Fprintf(b, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", p.left, baseline, p.right(), baseline)
	b.WriteString("</g>")
}

type legendEntry struct {
	label string
	color string
}

func legend(b *strings.Builder, x, y float64, entries []legendEntry, textColor string) {
	for _, e := range entries {
		fmt.Fprintf(b, "<rect x=\"%.2f\" y=\"%.2f\" width=\"10\" height=\"10\" fill=\"%s\"></rect>", x, y-8, e.color)
		fmt.Fprintf(b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"start\">%s</text>", x+14, y, textColor, esc(e.label))
		x += 24 + float64(len(e.label))*5.5
	}
}

// Empty renders a placeholder for a chart without data.
func Empty(width, height int, title string) template.HTML {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	var b strings.Builder
	open(&b, width, height, "empty", title, "No data available", "Chart", "")
	fmt.Fprintf(&b, "<text x=\"%d\" y=\"%d\" fill=\"%s\" font-size=\"14\" text-anchor=\"middle\">No data available</text>", width/2, height/2, defaultAxisColor)
	b.WriteString("</svg>")
	return template.HTML(b.String())
}
