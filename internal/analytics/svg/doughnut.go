package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

var defaultDoughnutPalette = []string{"#2c5f7c", "#3a8a5d", "#4a9f6e", "#5ab57f", "#6bc990", "#7edfa1", "#8fe5b2", "#a0efc3"}

// Doughnut renders a ring chart with a legend on the right. Non-positive
// slices are skipped.
func Doughnut(width, height int, slices []Slice, opts DoughnutOpts) (template.HTML, error) {
	total := 0.0
	for _, s := range slices {
		if s.Value > 0 {
			total += s.Value
		}
	}
	if total <= 0 {
		return "", fmt.Errorf("svg: doughnut needs a positive slice")
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	palette := opts.Palette
	if len(palette) == 0 {
		palette = defaultDoughnutPalette
	}
	hole := opts.HoleRatio
	if hole <= 0 || hole >= 1 {
		hole = 0.55
	}
	textColor := fallback(opts.TextColor, defaultAxisColor)

	outer := math.Min(float64(width)*0.6, float64(height)) / 2 * 0.9
	inner := outer * hole
	cx := outer + 16
	cy := float64(height) / 2

	var b strings.Builder
	open(&b, width, height, "doughnut", opts.Title, opts.Description, "Doughnut chart", "Share by category")

	angle := -math.Pi / 2
	entries := make([]legendEntry, 0, len(slices))
	for i, s := range slices {
		if s.Value <= 0 {
			continue
		}
		color := fallback(s.Color, palette[i%len(palette)])
		sweep := s.Value / total * 2 * math.Pi
		tooltip := fmt.Sprintf("%s: %s", s.Label, formatTick(s.Value))
		if sweep >= 2*math.Pi-1e-9 {
			fmt.Fprintf(&b, "<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\" fill=\"none\" stroke=\"%s\" stroke-width=\"%.2f\"><title>%s</title></circle>",
				cx, cy, (outer+inner)/2, color, outer-inner, esc(tooltip))
		} else {
			fmt.Fprintf(&b, "<path d=\"%s\" fill=\"%s\" stroke=\"#fff\" stroke-width=\"2\"><title>%s</title></path>",
				ringSegment(cx, cy, outer, inner, angle, angle+sweep), color, esc(tooltip))
		}
		angle += sweep
		entries = append(entries, legendEntry{label: s.Label, color: color})
	}

	legendX := cx + outer + 24
	legendY := math.Max(16, cy-float64(len(entries))*9)
	for _, e := range entries {
		legend(&b, legendX, legendY, []legendEntry{e}, textColor)
		legendY += 18
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

func ringSegment(cx, cy, outer, inner, from, to float64) string {
	large := 0
	if to-from > math.Pi {
		large = 1
	}
	ox1, oy1 := cx+outer*math.Cos(from), cy+outer*math.Sin(from)
	ox2, oy2 := cx+outer*math.Cos(to), cy+outer*math.Sin(to)
	ix1, iy1 := cx+inner*math.Cos(to), cy+inner*math.Sin(to)
	ix2, iy2 := cx+inner*math.Cos(from), cy+inner*math.Sin(from)
	return fmt.Sprintf("M%.2f %.2f A%.2f %.2f 0 %d 1 %.2f %.2f L%.2f %.2f A%.2f %.2f 0 %d 0 %.2f %.2f Z",
		ox1, oy1, outer, outer, large, ox2, oy2, ix1, iy1, inner, inner, large, ix2, iy2)
}
