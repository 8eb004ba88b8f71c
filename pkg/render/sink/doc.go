// Package sink renders a [chart.Chart] to output formats.
//
// SVG is drawn natively. PNG and PDF are produced from the SVG by
// [render.ToPNG] and [render.ToPDF]. JSON carries the chart contract
// unchanged and XLSX writes one row per bar for spreadsheet users.
//
// Every renderer is pure with respect to its input chart and safe for
// concurrent use.
package sink
