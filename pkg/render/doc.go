// Package render converts rendered SVG charts to raster and print formats.
//
// Conversion shells out to rsvg-convert from librsvg:
//
//	svg := sink.RenderSVG(c)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)
//
// Chart renderers live in the [sink] subpackage.
package render
