// Package pipeline runs the payload → series → chart → artifacts flow shared
// by the CLI and the HTTP service.
//
// The pipeline has two cached stages:
//
//  1. Compute: build the waterfall series of one period of a payload
//  2. Render: draw the chart in each requested format
//
// Usage:
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, payload, pipeline.Options{
//	    Period:  "month",
//	    Formats: []string{"svg", "json"},
//	})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/waterfall/pkg/cache"
	"github.com/matzehuels/waterfall/pkg/chart"
	"github.com/matzehuels/waterfall/pkg/dashboard"
	wferrors "github.com/matzehuels/waterfall/pkg/errors"
	"github.com/matzehuels/waterfall/pkg/render/sink"
	"github.com/matzehuels/waterfall/pkg/waterfall"
)

// Defaults shared by the CLI and the HTTP service.
const (
	DefaultWidth  = sink.DefaultWidth
	DefaultHeight = sink.DefaultHeight
	MaxDimension  = 10000.0
)

// Output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

// Formats lists the supported output formats.
var Formats = []string{FormatSVG, FormatPNG, FormatPDF, FormatJSON, FormatXLSX}

// ContentTypes maps formats to their MIME types.
var ContentTypes = map[string]string{
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
	FormatPDF:  "application/pdf",
	FormatJSON: "application/json",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// Options configures one pipeline run. It decodes from API request JSON.
type Options struct {
	Period  string   `json:"period,omitempty"`
	Formats []string `json:"formats,omitempty"`
	Width   float64  `json:"width,omitempty"`
	Height  float64  `json:"height,omitempty"`
	Palette string   `json:"palette,omitempty"`
	Title   string   `json:"title,omitempty"`
	Refresh bool     `json:"refresh,omitempty"`

	period    dashboard.Period
	palette   chart.Palette
	validated bool
}

// Result holds the outputs of a run.
type Result struct {
	Series     waterfall.Series
	SeriesHash string
	Chart      chart.Chart
	Artifacts  map[string][]byte
	Stats      Stats
	CacheInfo  CacheInfo
}

// Stats records sizes and timings.
type Stats struct {
	Bars        int
	ComputeTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo reports which stages were served from cache.
type CacheInfo struct {
	SeriesHit bool
	RenderHit bool // every requested artifact was cached
}

// ValidateFormat checks a single format name.
func ValidateFormat(format string) error {
	if !slices.Contains(Formats, format) {
		return wferrors.New(wferrors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: %s)", format, strings.Join(Formats, ", "))
	}
	return nil
}

// ValidateFormats checks every format.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidatePeriod checks a period name. Empty is allowed and means the default.
func ValidatePeriod(period string) error {
	_, err := dashboard.ParsePeriod(period)
	return err
}

// ParseFormats splits a comma-separated list, trimming blanks and duplicates.
func ParseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// ValidateAndSetDefaults validates the options and fills defaults. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	p, err := dashboard.ParsePeriod(o.Period)
	if err != nil {
		return err
	}
	o.period = p
	o.Period = string(p)

	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}

	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Width < 0 || o.Height < 0 || o.Width > MaxDimension || o.Height > MaxDimension {
		return wferrors.New(wferrors.ErrCodeInvalidInput,
			"size %gx%g out of range (1-%g)", o.Width, o.Height, MaxDimension)
	}

	o.palette = chart.DefaultPalette
	if o.Palette != "" {
		if o.palette, err = chart.ParsePalette(o.Palette); err != nil {
			return err
		}
	}
	o.Palette = o.palette.String()

	o.validated = true
	return nil
}

// Copy returns a copy whose validation state is cleared, so overrides applied
// to it are validated again.
func (o Options) Copy() Options {
	o.Formats = append([]string(nil), o.Formats...)
	o.period = ""
	o.palette = chart.Palette{}
	o.validated = false
	return o
}

// PeriodValue returns the validated period.
func (o *Options) PeriodValue() dashboard.Period {
	if o.period == "" {
		return dashboard.DefaultPeriod
	}
	return o.period
}

// PaletteValue returns the validated palette.
func (o *Options) PaletteValue() chart.Palette {
	return o.palette.WithDefaults()
}

// ArtifactKeyOpts returns the cache key options for one format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:  format,
		Width:   o.Width,
		Height:  o.Height,
		Palette: o.Palette,
		Title:   o.Title,
	}
}
