package view

import (
	"math"
	"strconv"
	"strings"
)

// ChartKind selects how a series is drawn.
type ChartKind string

const (
	ChartBar       ChartKind = "bar"
	ChartLine      ChartKind = "line"
	ChartHistogram ChartKind = "histogram"
)

// Plot area in SVG user units.
const (
	chartWidth   = 640
	chartHeight  = 280
	marginLeft   = 56
	marginRight  = 12
	marginTop    = 16
	marginBottom = 44
	yTicks       = 4
	maxXLabels   = 12
)

// Rect is one bar.
type Rect struct {
	X, Y, W, H float64
	Label      string
	Value      string
}

// Label is positioned axis text.
type Label struct {
	X, Y float64
	Text string
}

// Chart holds precomputed SVG geometry so templates only place elements.
type Chart struct {
	Kind   ChartKind
	Title  string
	Width  int
	Height int
	// Plot box.
	Left, Top, Right, Bottom float64

	Bars    []Rect
	Points  string
	Dots    []Label
	XLabels []Label
	YLabels []Label
}

// Empty reports whether there is nothing to draw.
func (c Chart) Empty() bool { return len(c.Bars) == 0 && c.Points == "" }

// BarChart draws one bar per label.
func BarChart(title string, labels []string, values []float64) Chart {
	return barLike(ChartBar, title, labels, values, 0.2)
}

// Histogram draws adjacent bars for bins.
func Histogram(title string, bins []string, counts []int64) Chart {
	values := make([]float64, len(counts))
	for i, c := range counts {
		values[i] = float64(c)
	}
	return barLike(ChartHistogram, title, bins, values, 0.02)
}

// LineChart draws a polyline through values, one point per label.
func LineChart(title string, labels []string, values []float64) Chart {
	c := frame(ChartLine, title)
	n := min(len(labels), len(values))
	if n == 0 {
		return c
	}
	top := c.yAxis(values[:n])
	step := 0.0
	if n > 1 {
		step = (c.Right - c.Left) / float64(n-1)
	}
	pts := make([]string, 0, n)
	every := labelEvery(n)
	for i := 0; i < n; i++ {
		x := c.Left + step*float64(i)
		if n == 1 {
			x = (c.Left + c.Right) / 2
		}
		y := c.scaleY(values[i], top)
		pts = append(pts, fmtCoord(x)+","+fmtCoord(y))
		c.Dots = append(c.Dots, Label{X: x, Y: y, Text: labels[i] + ": " + shortNumber(values[i])})
		if i%every == 0 {
			c.XLabels = append(c.XLabels, Label{X: x, Y: c.Bottom + 16, Text: labels[i]})
		}
	}
	c.Points = strings.Join(pts, " ")
	return c
}

func barLike(kind ChartKind, title string, labels []string, values []float64, gap float64) Chart {
	c := frame(kind, title)
	n := min(len(labels), len(values))
	if n == 0 {
		return c
	}
	top := c.yAxis(values[:n])
	slot := (c.Right - c.Left) / float64(n)
	w := slot * (1 - gap)
	every := labelEvery(n)
	for i := 0; i < n; i++ {
		v := math.Max(values[i], 0)
		y := c.scaleY(v, top)
		x := c.Left + slot*float64(i) + (slot-w)/2
		c.Bars = append(c.Bars, Rect{X: x, Y: y, W: w, H: c.Bottom - y, Label: labels[i], Value: shortNumber(values[i])})
		if i%every == 0 {
			c.XLabels = append(c.XLabels, Label{X: x + w/2, Y: c.Bottom + 16, Text: labels[i]})
		}
	}
	return c
}

func frame(kind ChartKind, title string) Chart {
	return Chart{
		Kind:   kind,
		Title:  title,
		Width:  chartWidth,
		Height: chartHeight,
		Left:   marginLeft,
		Top:    marginTop,
		Right:  chartWidth - marginRight,
		Bottom: chartHeight - marginBottom,
	}
}

// yAxis picks a rounded maximum for values and adds tick labels.
func (c *Chart) yAxis(values []float64) float64 {
	hi := 0.0
	for _, v := range values {
		if v > hi && !math.IsInf(v, 0) {
			hi = v
		}
	}
	top := niceCeil(hi)
	for i := 0; i <= yTicks; i++ {
		v := top * float64(i) / yTicks
		c.YLabels = append(c.YLabels, Label{X: c.Left - 6, Y: c.scaleY(v, top), Text: shortNumber(v)})
	}
	return top
}

func (c Chart) scaleY(v, top float64) float64 {
	if top <= 0 || math.IsNaN(v) {
		return c.Bottom
	}
	v = math.Min(math.Max(v, 0), top)
	return c.Bottom - (c.Bottom-c.Top)*v/top
}

// niceCeil rounds v up to 1, 2, 5 or 10 times a power of ten.
func niceCeil(v float64) float64 {
	if v <= 0 || math.IsNaN(v) {
		return 1
	}
	exp := math.Pow(10, math.Floor(math.Log10(v)))
	f := v / exp
	switch {
	case f <= 1:
		f = 1
	case f <= 2:
		f = 2
	case f <= 5:
		f = 5
	default:
		f = 10
	}
	return f * exp
}

func labelEvery(n int) int {
	if n <= maxXLabels {
		return 1
	}
	return int(math.Ceil(float64(n) / maxXLabels))
}

// shortNumber abbreviates large axis values: 1.5K, 2.3M, 4B.
func shortNumber(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e9:
		return trimZero(v/1e9) + "B"
	case abs >= 1e6:
		return trimZero(v/1e6) + "M"
	case abs >= 1e3:
		return trimZero(v/1e3) + "K"
	default:
		return trimZero(v)
	}
}

func trimZero(v float64) string {
	s := strconv.FormatFloat(v, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0")
}

func fmtCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
