package sink

import (
	"bytes"
	"fmt"
	"html"
	"math"
	"strconv"

	"github.com/matzehuels/waterfall/pkg/chart"
)

// Default SVG canvas size in pixels.
const (
	DefaultWidth  = 800.0
	DefaultHeight = 400.0
)

const (
	marginLeft   = 64.0
	marginRight  = 24.0
	marginTop    = 40.0
	marginBottom = 56.0
	barFill      = 0.7
	axisTicks    = 5
	maxGridLines = 4 * axisTicks
)

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	width, height float64
	title         string
	font          string
	values        bool
}

// WithSize sets the canvas size. Non-positive values keep the default.
func WithSize(w, h float64) SVGOption {
	return func(r *svgRenderer) {
		if w > 0 {
			r.width = w
		}
		if h > 0 {
			r.height = h
		}
	}
}

// WithTitle overrides the chart title.
func WithTitle(s string) SVGOption { return func(r *svgRenderer) { r.title = s } }

// WithFont sets the CSS font-family for all text.
func WithFont(family string) SVGOption { return func(r *svgRenderer) { r.font = family } }

// WithoutValues hides the per-bar change labels.
func WithoutValues() SVGOption { return func(r *svgRenderer) { r.values = false } }

// scale maps data values to canvas y coordinates.
type scale struct {
	lo, hi      float64
	top, height float64
}

func (s scale) y(v float64) float64 {
	if span := s.hi - s.lo; !math.IsInf(span, 0) {
		return s.top + (s.hi-v)/span*s.height
	}
	// span exceeds MaxFloat64; halve both operands
	return s.top + (s.hi/2-v/2)/(s.hi/2-s.lo/2)*s.height
}

// RenderSVG draws the first dataset of c as floating bars over a zero axis.
func RenderSVG(c chart.Chart, opts ...SVGOption) []byte {
	r := svgRenderer{
		width:  DefaultWidth,
		height: DefaultHeight,
		title:  c.Title,
		font:   "system-ui, sans-serif",
		values: true,
	}
	for _, opt := range opts {
		opt(&r)
	}

	lo, hi := c.Bounds()
	if lo == hi {
		hi = lo + 1
	}
	plotW := r.width - marginLeft - marginRight
	sc := scale{lo: lo, hi: hi, top: marginTop, height: r.height - marginTop - marginBottom}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f" font-family="%s">`+"\n",
		r.width, r.height, r.width, r.height, html.EscapeString(r.font))
	fmt.Fprintf(&buf, `  <rect class="background" width="%.1f" height="%.1f" fill="white"/>`+"\n", r.width, r.height)

	if r.title != "" {
		fmt.Fprintf(&buf, `  <text class="title" x="%.1f" y="%.1f" text-anchor="middle" font-size="16" font-weight="bold">%s</text>`+"\n",
			r.width/2, marginTop/2+6, html.EscapeString(r.title))
	}

	renderGrid(&buf, sc, plotW)
	renderBars(&buf, c, sc, plotW, r.values)
	renderZeroAxis(&buf, sc, plotW)

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderGrid(buf *bytes.Buffer, sc scale, plotW float64) {
	step := niceStep(sc.hi/axisTicks - sc.lo/axisTicks)
	buf.WriteString(`  <g class="grid" stroke="#e5e5e5" font-size="11" fill="#555">` + "\n")
	decimals := max(0, int(-math.Floor(math.Log10(step))))
	k := math.Ceil(sc.lo / step)
	for n := 0; n < maxGridLines && k*step-sc.hi <= step/1e6; n, k = n+1, k+1 {
		v := k * step
		if v == 0 {
			v = 0 // drop negative zero
		}
		y := sc.y(v)
		fmt.Fprintf(buf, `    <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n", marginLeft, y, marginLeft+plotW, y)
		fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" text-anchor="end" stroke="none">%s</text>`+"\n",
			marginLeft-6, y+4, strconv.FormatFloat(v, 'f', decimals, 64))
	}
	buf.WriteString("  </g>\n")
}

func renderBars(buf *bytes.Buffer, c chart.Chart, sc scale, plotW float64, values bool) {
	if len(c.Datasets) == 0 || len(c.Datasets[0].Data) == 0 {
		return
	}
	ds := c.Datasets[0]
	band := plotW / float64(len(ds.Data))
	barW := band * barFill
	labelY := sc.top + sc.height + 18

	buf.WriteString(`  <g class="bars">` + "\n")
	for i, pair := range ds.Data {
		x := marginLeft + float64(i)*band + (band-barW)/2
		top := sc.y(max(pair[0], pair[1]))
		h := math.Max(math.Abs(sc.y(pair[0])-sc.y(pair[1])), 1)
		color := "gray"
		if i < len(ds.Colors) {
			color = ds.Colors[i]
		}
		class := "bar"
		if i < len(ds.Categories) {
			class += " " + ds.Categories[i].String()
		}
		label := ""
		if i < len(c.Labels) {
			label = c.Labels[i]
		}

		fmt.Fprintf(buf, `    <rect class="%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"><title>%s: %s → %s</title></rect>`+"\n",
			class, x, top, barW, h, html.EscapeString(color),
			html.EscapeString(label), formatValue(pair[0]), formatValue(pair[1]))
		if values {
			fmt.Fprintf(buf, `    <text class="value" x="%.1f" y="%.1f" text-anchor="middle" font-size="10" fill="#333">%s</text>`+"\n",
				x+barW/2, top-4, formatValue(pair[1]-pair[0]))
		}
		fmt.Fprintf(buf, `    <text class="label" x="%.1f" y="%.1f" text-anchor="middle" font-size="11" fill="#333">%s</text>`+"\n",
			x+barW/2, labelY, html.EscapeString(label))
	}
	buf.WriteString("  </g>\n")
}

func renderZeroAxis(buf *bytes.Buffer, sc scale, plotW float64) {
	y := sc.y(0)
	fmt.Fprintf(buf, `  <line class="zero-axis" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#333" stroke-width="1.5"/>`+"\n",
		marginLeft, y, marginLeft+plotW, y)
}

// niceStep rounds a raw tick interval to 1, 2 or 5 times a power of ten.
func niceStep(raw float64) float64 {
	if raw <= 0 || math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 1
	}
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	if mag == 0 {
		return raw
	}
	switch f := raw / mag; {
	case f <= 1:
		return mag
	case f <= 2:
		return 2 * mag
	case f <= 5:
		return 5 * mag
	default:
		return 10 * mag
	}
}

func formatValue(v float64) string {
	if math.Abs(v) < 1e-9 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
