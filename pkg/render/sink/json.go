package sink

import (
	"encoding/json"

	"github.com/matzehuels/waterfall/pkg/chart"
)

// JSONOption configures [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	compact bool
	title   string
}

// WithCompact emits JSON without indentation.
func WithCompact() JSONOption { return func(r *jsonRenderer) { r.compact = true } }

// WithJSONTitle overrides the chart title.
func WithJSONTitle(s string) JSONOption { return func(r *jsonRenderer) { r.title = s } }

// RenderJSON encodes the chart contract: labels plus one dataset of
// [start, end] pairs with per-bar categories and colours. It does not modify c.
func RenderJSON(c chart.Chart, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	if r.title != "" {
		c.Title = r.title
	}
	if r.compact {
		return json.Marshal(c)
	}
	return json.MarshalIndent(c, "", "  ")
}
