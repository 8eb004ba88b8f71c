// Package pkg provides the libraries behind waterfall, a tool that turns
// ordered per-period deltas into floating-bar waterfall charts.
//
// # Overview
//
// Each period contributes a bar that floats from the running total before it
// to the running total after it, and a trailing bar drops from the final total
// back to zero. The pkg directory is organized around that transformation:
//
//	dashboard payload (weekly + monthly labels and deltas)
//	         ↓
//	    [waterfall] package (segments + categories)
//	         ↓
//	    [chart] package (labels, [start, end] pairs, colours)
//	         ↓
//	    [render/sink] package (SVG, JSON, XLSX; PNG/PDF via [render])
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/waterfall/pkg/chart"
//	    "github.com/matzehuels/waterfall/pkg/render/sink"
//	    "github.com/matzehuels/waterfall/pkg/waterfall"
//	)
//
//	s, _ := waterfall.Build([]string{"W1", "W2", "W3"}, []float64{5, -2, 4})
//	c := chart.FromSeries(s, chart.DefaultPalette)
//	svg := sink.RenderSVG(c, sink.WithTitle("Weekly value"))
//
// # Main Packages
//
// ## Core Domain Logic
//
// [waterfall] - Compute, Classify and Build: deltas to segments, segments to
// increase/decrease/total categories.
//
// [dashboard] - The payload document with weekly and monthly series,
// bucketing of dated observations into weeks and months, CSV/XLSX readers.
//
// [chart] - The chart contract consumed by renderers and the HTTP API, and
// the colour palette.
//
// [mock] - Seeded demo data for dashboards without real numbers.
//
// ## Rendering
//
// [render/sink] - Output formats. [render] converts SVG to PNG and PDF with
// rsvg-convert.
//
// [pipeline] - Validate options, compute, build the chart and render, with
// caching of series and artifacts. Shared by the CLI and the HTTP service.
//
// ## Infrastructure
//
// [cache] - File, Redis and null caches behind one interface, plus key
// builders.
//
// [store] - Saved dashboards in memory or MongoDB.
//
// [config] - TOML configuration.
//
// [observability] - Hooks fired by the pipeline, cache and HTTP layer, with
// a Prometheus implementation.
//
// [errors] - Coded errors and their HTTP statuses.
//
// # Testing
//
//	go test ./pkg/...                                   # All tests
//	go test -run Example ./pkg/waterfall                # Examples only
//	WATERFALL_TEST_MONGO_URI=mongodb://localhost:27017 go test ./pkg/store
//
// [waterfall]: https://pkg.go.dev/github.com/matzehuels/waterfall/pkg/waterfall
// [dashboard]: https://pkg.go.dev/github.com/matzehuels/waterfall/pkg/dashboard
// [chart]: https://pkg.go.dev/github.com/matzehuels/waterfall/pkg/chart
// [mock]: https://pkg.go.dev/github.com/matzehuels/waterfall/pkg/mock
// [render]: https://pkg.go.dev/github.com/matzehuels/waterfall/pkg/render
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/waterfall/pkg/render/sink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/waterfall/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/waterfall/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/waterfall/pkg/store
// [config]: https://pkg.go.dev/github.com/matzehuels/waterfall/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/waterfall/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/waterfall/pkg/errors
package pkg
