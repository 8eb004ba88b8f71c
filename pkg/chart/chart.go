// Package chart defines the data contract handed to chart consumers.
//
// A [Chart] carries the bar labels and a single dataset of floating bars,
// each with its category and the colour the [Palette] assigns to it. The
// package is the boundary where categories become colours; everything
// upstream deals in [waterfall.Category] only.
package chart

import (
	"fmt"
	"strings"

	wferrors "github.com/matzehuels/waterfall/pkg/errors"
	"github.com/matzehuels/waterfall/pkg/waterfall"
)

// DefaultDatasetLabel is the dataset name used by the value dashboards.
const DefaultDatasetLabel = "Value"

// Palette maps categories to CSS colours.
type Palette struct {
	Increase string `json:"increase" toml:"increase"`
	Decrease string `json:"decrease" toml:"decrease"`
	Total    string `json:"total" toml:"total"`
}

// DefaultPalette matches the colours of the original value dashboard.
var DefaultPalette = Palette{
	Increase: "green",
	Decrease: "red",
	Total:    "blue",
}

// Color returns the colour for c. Unknown categories get a neutral grey.
func (p Palette) Color(c waterfall.Category) string {
	switch c {
	case waterfall.Increase:
		return p.Increase
	case waterfall.Decrease:
		return p.Decrease
	case waterfall.Total:
		return p.Total
	default:
		return "gray"
	}
}

// WithDefaults fills empty entries from [DefaultPalette].
func (p Palette) WithDefaults() Palette {
	if p.Increase == "" {
		p.Increase = DefaultPalette.Increase
	}
	if p.Decrease == "" {
		p.Decrease = DefaultPalette.Decrease
	}
	if p.Total == "" {
		p.Total = DefaultPalette.Total
	}
	return p
}

// ParsePalette parses "increase=#2a2,decrease=#c33,total=#36c".
// Omitted categories keep their default colour.
func ParsePalette(s string) (Palette, error) {
	p := DefaultPalette
	if strings.TrimSpace(s) == "" {
		return p, nil
	}
	for _, part := range strings.Split(s, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		value = strings.TrimSpace(value)
		if !ok || value == "" {
			return Palette{}, wferrors.New(wferrors.ErrCodeInvalidPalette, "invalid palette entry %q (want category=color)", part)
		}
		if strings.ContainsAny(value, `"<>&`) {
			return Palette{}, wferrors.New(wferrors.ErrCodeInvalidPalette, "invalid colour %q", value)
		}
		c, err := waterfall.ParseCategory(strings.TrimSpace(key))
		if err != nil {
			return Palette{}, wferrors.Wrap(wferrors.ErrCodeInvalidPalette, err, "invalid palette entry %q", part)
		}
		switch c {
		case waterfall.Increase:
			p.Increase = value
		case waterfall.Decrease:
			p.Decrease = value
		case waterfall.Total:
			p.Total = value
		default:
			return Palette{}, wferrors.New(wferrors.ErrCodeInvalidPalette, "category %q has no colour", key)
		}
	}
	return p, nil
}

// String formats the palette in the form accepted by [ParsePalette].
func (p Palette) String() string {
	return fmt.Sprintf("increase=%s,decrease=%s,total=%s", p.Increase, p.Decrease, p.Total)
}

// Dataset is one series of floating bars.
type Dataset struct {
	Label      string               `json:"label"`
	Data       [][2]float64         `json:"data"`
	Categories []waterfall.Category `json:"categories"`
	Colors     []string             `json:"backgroundColor"`
}

// Chart is the renderer-independent description of a waterfall chart.
type Chart struct {
	Title    string    `json:"title,omitempty"`
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// FromSeries builds a chart from a computed series, colouring bars with p.
func FromSeries(s waterfall.Series, p Palette) Chart {
	p = p.WithDefaults()
	ds := Dataset{
		Label:      DefaultDatasetLabel,
		Data:       s.Pairs(),
		Categories: make([]waterfall.Category, s.Len()),
		Colors:     make([]string, s.Len()),
	}
	for i := range s.Segments {
		c := waterfall.Classify(s.Segments, i)
		ds.Categories[i] = c
		ds.Colors[i] = p.Color(c)
	}
	return Chart{
		Labels:   append([]string(nil), s.Labels...),
		Datasets: []Dataset{ds},
	}
}

// Bounds returns the smallest and largest value any bar touches. The axis
// origin is always included so bars anchored at zero stay in range. Both
// bounds are finite for finite data, but hi-lo may overflow.
func (c Chart) Bounds() (lo, hi float64) {
	for _, ds := range c.Datasets {
		for _, pair := range ds.Data {
			lo = min(lo, pair[0], pair[1])
			hi = max(hi, pair[0], pair[1])
		}
	}
	return lo, hi
}

// Bars returns the number of bars in the first dataset.
func (c Chart) Bars() int {
	if len(c.Datasets) == 0 {
		return 0
	}
	return len(c.Datasets[0].Data)
}
