package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

var barPalette = []string{"#3a8a5d", "#2c5f7c", "#f39c12", "#e74c3c"}

// Bars renders a vertical bar chart with one bar per series in each label group.
func Bars(width, height int, labels []string, series []BarSeries, opts BarOpts) (template.HTML, error) {
	if len(series) == 0 {
		return "", fmt.Errorf("svg: at least one series required")
	}
	if len(labels) == 0 {
		return "", fmt.Errorf("svg: labels required")
	}
	var all []float64
	for _, s := range series {
		if len(s.Values) != len(labels) {
			return "", fmt.Errorf("svg: series %q length must match labels", s.Label)
		}
		all = append(all, s.Values...)
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	padding := opts.Padding
	if padding <= 0 {
		padding = DefaultPadding
	}
	ticks := opts.TickCount
	if ticks <= 0 {
		ticks = DefaultTicks
	}
	axisColor := fallback(opts.AxisColor, defaultAxisColor)
	gridColor := fallback(opts.GridColor, defaultGridColor)

	p, err := newPlot(width, height, padding)
	if err != nil {
		return "", err
	}

	minVal, maxVal := zeroBased(bounds(all))
	scale := p.height / (maxVal - minVal)
	zeroY := p.bottom() - (0-minVal)*scale

	groupWidth := p.width / float64(len(labels))
	barWidth := groupWidth * 0.8 / float64(len(series))
	groupInset := groupWidth * 0.1

	var b strings.Builder
	open(&b, width, height, "bar", opts.Title, opts.Description, "Bar chart", "Bar comparison")
	gridLines(&b, p, minVal, maxVal, ticks, axisColor, gridColor, false)
	axes(&b, p, zeroY, axisColor)

	entries := make([]legendEntry, 0, len(series))
	for si, s := range series {
		color := fallback(s.Color, barPalette[si%len(barPalette)])
		entries = append(entries, legendEntry{label: fallback(s.Label, fmt.Sprintf("Series %d", si+1)), color: color})
		for i, label := range labels {
			fill := color
			if len(s.Colors) > 0 {
				fill = s.Colors[i%len(s.Colors)]
			}
			x := p.left + float64(i)*groupWidth + groupInset + float64(si)*barWidth
			y, h := barPosition(s.Values[i], scale, zeroY, p.top, p.bottom())
			fmt.Fprintf(&b, "<rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" fill=\"%s\"><title>%s %s: %s</title></rect>",
				x, y, barWidth, h, fill, esc(s.Label), esc(label), esc(formatTick(s.Values[i])))
		}
	}

	for i, label := range labels {
		center := p.left + float64(i)*groupWidth + groupWidth/2
		fmt.Fprintf(&b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"middle\">%s</text>", center, p.bottom()+14, axisColor, esc(label))
	}
	if !opts.HideLegend {
		legend(&b, p.left, max(12, padding-14), entries, axisColor)
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

func barPosition(value, scale, zeroY, top, bottom float64) (float64, float64) {
	if value >= 0 {
		height := value * scale
		y := zeroY - height
		if y < top {
			height -= top - y
			y = top
		}
		return y, math.Max(height, 0)
	}
	height := math.Abs(value * scale)
	y := zeroY
	if y+height > bottom {
		height = bottom - y
	}
	return y, math.Max(height, 0)
}
