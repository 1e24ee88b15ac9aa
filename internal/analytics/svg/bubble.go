package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// Bubble renders a scatter chart of sized bubbles, one colour per group.
func Bubble(width, height int, groups []BubbleGroup, opts BubbleOpts) (template.HTML, error) {
	var xs, ys []float64
	for _, g := range groups {
		for _, pt := range g.Points {
			xs = append(xs, pt.X)
			ys = append(ys, pt.Y)
		}
	}
	if len(xs) == 0 {
		return "", fmt.Errorf("svg: bubble chart needs at least one point")
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

	xMin, xMax := opts.XMin, opts.XMax
	if xMax <= xMin {
		xMin, xMax = bounds(xs)
		if almostEqual(xMin, xMax) {
			xMin, xMax = xMin-1, xMax+1
		}
	}
	yMin, yMax := zeroBased(bounds(ys))
	xAt := func(v float64) float64 {
		v = math.Max(xMin, math.Min(xMax, v))
		return p.left + (v-xMin)/(xMax-xMin)*p.width
	}
	yAt := func(v float64) float64 { return p.bottom() - (v-yMin)/(yMax-yMin)*p.height }

	var b strings.Builder
	open(&b, width, height, "bubble", opts.Title, opts.Description, "Bubble chart", "Sized scatter plot")
	gridLines(&b, p, yMin, yMax, ticks, axisColor, gridColor, false)
	axes(&b, p, p.bottom(), axisColor)

	for i := 0; i <= ticks; i++ {
		v := xMin + (xMax-xMin)*float64(i)/float64(ticks)
		fmt.Fprintf(&b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"middle\">%.0f</text>", xAt(v), p.bottom()+14, axisColor, v)
	}
	if opts.XLabel != "" {
		fmt.Fprintf(&b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"11\" text-anchor=\"middle\">%s</text>", p.left+p.width/2, float64(height)-4, axisColor, esc(opts.XLabel))
	}
	if opts.YLabel != "" {
		fmt.Fprintf(&b, "<text x=\"12\" y=\"%.2f\" fill=\"%s\" font-size=\"11\" text-anchor=\"middle\" transform=\"rotate(-90 12 %.2f)\">%s</text>", p.top+p.height/2, axisColor, p.top+p.height/2, esc(opts.YLabel))
	}

	entries := make([]legendEntry, 0, len(groups))
	for _, g := range groups {
		if len(g.Points) == 0 {
			continue
		}
		color := fallback(g.Color, barPalette[len(entries)%len(barPalette)])
		for _, pt := range g.Points {
			fmt.Fprintf(&b, "<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\" fill=\"%s\" fill-opacity=\"0.6\" stroke=\"%s\" stroke-width=\"2\"><title>%s</title></circle>",
				xAt(pt.X), yAt(pt.Y), math.Max(pt.R, 1), color, color, esc(fmt.Sprintf("%s (%s): %s", pt.Label, g.Label, formatTick(pt.Y))))
		}
		entries = append(entries, legendEntry{label: g.Label, color: color})
	}
	legend(&b, p.left, max(12, padding-14), entries, axisColor)

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
