package svg

import (
	"fmt"
	"html/template"
	"strings"
)

var linePalette = []string{"#2c5f7c", "#3a8a5d", "#f39c12", "#e74c3c"}

// Line renders a line chart with one value axis per side. Series flagged
// Secondary are scaled independently against the right axis.
func Line(width, height int, labels []string, series []LineSeries, opts LineOpts) (template.HTML, error) {
	if len(series) == 0 {
		return "", fmt.Errorf("svg: series required")
	}
	for _, s := range series {
		if len(s.Values) != len(labels) {
			return "", fmt.Errorf("svg: series %q length must match labels", s.Label)
		}
	}
	if len(labels) == 0 {
		return "", fmt.Errorf("svg: labels required")
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

	var primary, secondary []float64
	hasSecondary := false
	for _, s := range series {
		if s.Secondary {
			hasSecondary = true
			secondary = append(secondary, s.Values...)
		} else {
			primary = append(primary, s.Values...)
		}
	}
	pMin, pMax := zeroBased(bounds(primary))
	sMin, sMax := zeroBased(bounds(secondary))

	step := 0.0
	if len(labels) > 1 {
		step = p.width / float64(len(labels)-1)
	}
	xAt := func(i int) float64 {
		if len(labels) == 1 {
			return p.left + p.width/2
		}
		return p.left + float64(i)*step
	}

	var b strings.Builder
	open(&b, width, height, "line", opts.Title, opts.Description, "Line chart", "Trend data")
	gridLines(&b, p, pMin, pMax, ticks, axisColor, gridColor, false)
	if hasSecondary {
		gridLines(&b, p, sMin, sMax, ticks, axisColor, gridColor, true)
	}
	axes(&b, p, p.bottom(), axisColor)

	entries := make([]legendEntry, 0, len(series))
	for idx, s := range series {
		color := fallback(s.Color, linePalette[idx%len(linePalette)])
		minVal, maxVal := pMin, pMax
		if s.Secondary {
			minVal, maxVal = sMin, sMax
		}
		scale := p.height / (maxVal - minVal)
		yAt := func(v float64) float64 { return p.bottom() - (v-minVal)*scale }

		var path strings.Builder
		for i, v := range s.Values {
			cmd := " L"
			if i == 0 {
				cmd = "M"
			}
			fmt.Fprintf(&path, "%s%.2f %.2f", cmd, xAt(i), yAt(v))
		}
		if s.Fill != "" {
			fmt.Fprintf(&b, "<path d=\"%s L%.2f %.2f L%.2f %.2f Z\" fill=\"%s\" stroke=\"none\" aria-hidden=\"true\"></path>",
				path.String(), xAt(len(s.Values)-1), p.bottom(), xAt(0), p.bottom(), s.Fill)
		}
		fmt.Fprintf(&b, "<path d=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"2\" stroke-linejoin=\"round\" stroke-linecap=\"round\"></path>", path.String(), color)
		if opts.ShowDots {
			for i, v := range s.Values {
				fmt.Fprintf(&b, "<circle cx=\"%.2f\" cy=\"%.2f\" r=\"3\" fill=\"%s\"><title>%s: %s</title></circle>",
					xAt(i), yAt(v), color, esc(labels[i]), esc(formatTick(v)))
			}
		}
		entries = append(entries, legendEntry{label: fallback(s.Label, fmt.Sprintf("Series %d", idx+1)), color: color})
	}

	for i, label := range labels {
		fmt.Fprintf(&b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"middle\">%s</text>", xAt(i), p.bottom()+14, axisColor, esc(label))
	}
	legend(&b, p.left, max(12, padding-14), entries, axisColor)

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
