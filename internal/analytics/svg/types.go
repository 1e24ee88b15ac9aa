package svg

// LineSeries is one plotted line. Secondary series are scaled against a
// second value axis drawn on the right edge.
type LineSeries struct {
	Label     string
	Values    []float64
	Color     string
	Fill      string
	Secondary bool
}

// LineOpts customises the line chart renderer.
type LineOpts struct {
	Title       string
	Description string
	AxisColor   string
	GridColor   string
	Padding     float64
	ShowDots    bool
	TickCount   int
}

// BarSeries is one group member of a bar chart. Colors, when set, colours
// each bar individually and takes precedence over Color.
type BarSeries struct {
	Label  string
	Values []float64
	Color  string
	Colors []string
}

// BarOpts customises the bar chart renderer.
type BarOpts struct {
	Title       string
	Description string
	AxisColor   string
	GridColor   string
	Padding     float64
	TickCount   int
	HideLegend  bool
}

// Slice is one segment of a doughnut chart.
type Slice struct {
	Label string
	Value float64
	Color string
}

// DoughnutOpts customises the doughnut renderer. Palette is cycled for slices
// without their own colour.
type DoughnutOpts struct {
	Title       string
	Description string
	Palette     []string
	HoleRatio   float64
	TextColor   string
}

// BubblePoint is one bubble; R is the radius in viewport units.
type BubblePoint struct {
	Label string
	X     float64
	Y     float64
	R     float64
}

// BubbleGroup is a legend entry of the bubble chart.
type BubbleGroup struct {
	Label  string
	Color  string
	Points []BubblePoint
}

// BubbleOpts customises the bubble chart renderer. XMin and XMax pin the
// horizontal range when XMax > XMin.
type BubbleOpts struct {
	Title       string
	Description string
	XLabel      string
	YLabel      string
	AxisColor   string
	GridColor   string
	Padding     float64
	TickCount   int
	XMin        float64
	XMax        float64
}

// Defaults for the dashboard charts.
const (
	DefaultWidth   = 720
	DefaultHeight  = 280
	DefaultPadding = 36.0
	DefaultTicks   = 5
)
