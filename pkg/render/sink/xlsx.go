package sink

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/matzehuels/waterfall/pkg/chart"
)

// SheetName is the worksheet RenderXLSX writes to.
const SheetName = "Waterfall"

var xlsxHeader = []any{"Label", "Start", "End", "Change", "Category"}

// namedColors maps the palette's CSS names to spreadsheet RGB.
var namedColors = map[string]string{
	"green":  "008000",
	"red":    "FF0000",
	"blue":   "0000FF",
	"gray":   "808080",
	"grey":   "808080",
	"orange": "FFA500",
	"teal":   "008080",
	"black":  "000000",
	"white":  "FFFFFF",
}

// XLSXOption configures [RenderXLSX].
type XLSXOption func(*xlsxRenderer)

type xlsxRenderer struct {
	fills bool
}

// WithoutFills leaves the Category cells uncoloured.
func WithoutFills() XLSXOption { return func(r *xlsxRenderer) { r.fills = false } }

// RenderXLSX writes one row per bar with its label, endpoints, change and
// category. Category cells are filled with the bar colour when it can be
// expressed as RGB.
func RenderXLSX(c chart.Chart, opts ...XLSXOption) ([]byte, error) {
	r := xlsxRenderer{fills: true}
	for _, opt := range opts {
		opt(&r)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, err
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(SheetName, "A1", &xlsxHeader); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(SheetName, "A1", "E1", header); err != nil {
		return nil, err
	}

	if len(c.Datasets) > 0 {
		ds := c.Datasets[0]
		fills := map[string]int{}
		for i, pair := range ds.Data {
			row := i + 2
			label := ""
			if i < len(c.Labels) {
				label = c.Labels[i]
			}
			category := ""
			if i < len(ds.Categories) {
				category = ds.Categories[i].String()
			}
			values := []any{label, pair[0], pair[1], pair[1] - pair[0], category}
			cell := fmt.Sprintf("A%d", row)
			if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
				return nil, err
			}

			if !r.fills || i >= len(ds.Colors) {
				continue
			}
			rgb, ok := toRGB(ds.Colors[i])
			if !ok {
				continue
			}
			style, ok := fills[rgb]
			if !ok {
				style, err = f.NewStyle(&excelize.Style{
					Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{rgb}},
				})
				if err != nil {
					return nil, err
				}
				fills[rgb] = style
			}
			ref := fmt.Sprintf("E%d", row)
			if err := f.SetCellStyle(SheetName, ref, ref, style); err != nil {
				return nil, err
			}
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", 18); err != nil {
		return nil, err
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// toRGB resolves "#rrggbb", "#rgb" or a known colour name to "RRGGBB".
func toRGB(color string) (string, bool) {
	c := strings.ToLower(strings.TrimSpace(color))
	if rgb, ok := namedColors[c]; ok {
		return rgb, true
	}
	if !strings.HasPrefix(c, "#") {
		return "", false
	}
	hex := c[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return "", false
	}
	for _, ch := range hex {
		if !strings.ContainsRune("0123456789abcdef", ch) {
			return "", false
		}
	}
	return strings.ToUpper(hex), true
}
