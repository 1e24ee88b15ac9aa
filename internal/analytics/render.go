package analytics

import (
	"fmt"
	"html/template"
	"strconv"

	"github.com/agrilens/dashboard/internal/analytics/svg"
)

// ChartRenderer turns a chart description into markup.
type ChartRenderer interface {
	Render(chart Chart) (template.HTML, error)
}

// SVGRenderer renders charts as inline SVG.
type SVGRenderer struct {
	Width  int
	Height int
}

// Render implements ChartRenderer. Charts without data render a placeholder.
func (r SVGRenderer) Render(c Chart) (template.HTML, error) {
	if c.Empty() {
		return svg.Empty(r.Width, r.Height, c.Title), nil
	}
	switch c.Kind {
	case KindDoughnut:
		return r.doughnut(c)
	case KindBar:
		series := make([]svg.BarSeries, 0, len(c.Series))
		for _, s := range c.Series {
			series = append(series, svg.BarSeries{Label: s.Label, Values: s.Values, Color: s.Color, Colors: s.Colors})
		}
		return svg.Bars(r.Width, r.Height, c.Labels, series, svg.BarOpts{
			Title:       c.Title,
			Description: c.Description,
			HideLegend:  len(series) == 1,
		})
	case KindLine:
		series := make([]svg.LineSeries, 0, len(c.Series))
		for i, s := range c.Series {
			ls := svg.LineSeries{Label: s.Label, Values: s.Values, Color: s.Color, Secondary: s.Secondary}
			if i == 0 {
				ls.Fill = "rgba(44,95,124,0.1)"
			}
			series = append(series, ls)
		}
		return svg.Line(r.Width, r.Height, c.Labels, series, svg.LineOpts{
			Title:       c.Title,
			Description: c.Description,
			ShowDots:    true,
		})
	case KindBubble:
		return r.bubble(c)
	default:
		return "", fmt.Errorf("analytics: unknown chart kind %q", c.Kind)
	}
}

func (r SVGRenderer) doughnut(c Chart) (template.HTML, error) {
	if len(c.Series) == 0 {
		return svg.Empty(r.Width, r.Height, c.Title), nil
	}
	s := c.Series[0]
	slices := make([]svg.Slice, 0, len(c.Labels))
	for i, label := range c.Labels {
		if i >= len(s.Values) {
			break
		}
		slices = append(slices, svg.Slice{Label: label, Value: s.Values[i]})
	}
	out, err := svg.Doughnut(r.Width, r.Height, slices, svg.DoughnutOpts{
		Title:       c.Title,
		Description: c.Description,
		Palette:     s.Colors,
	})
	if err != nil {
		// all-zero categories
		return svg.Empty(r.Width, r.Height, c.Title), nil
	}
	return out, nil
}

func (r SVGRenderer) bubble(c Chart) (template.HTML, error) {
	groups := make([]svg.BubbleGroup, 0, len(StageColors))
	for _, sc := range StageColors {
		group := svg.BubbleGroup{Label: sc.Stage, Color: sc.Color}
		for _, pt := range c.Bubbles {
			if pt.Stage == sc.Stage {
				group.Points = append(group.Points, svg.BubblePoint{Label: pt.Company, X: pt.X, Y: pt.Y, R: pt.R})
			}
		}
		groups = append(groups, group)
	}
	return svg.Bubble(r.Width, r.Height, groups, svg.BubbleOpts{
		Title:       c.Title,
		Description: c.Description,
		XLabel:      "Year",
		YLabel:      "Funding ($M)",
		XMin:        2010,
		XMax:        2024,
	})
}

func itoa(v int) string {
	return strconv.Itoa(v)
}
