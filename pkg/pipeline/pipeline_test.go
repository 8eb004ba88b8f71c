package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/waterfall/pkg/cache"
	"github.com/matzehuels/waterfall/pkg/chart"
	"github.com/matzehuels/waterfall/pkg/dashboard"
	wferrors "github.com/matzehuels/waterfall/pkg/errors"
	"github.com/matzehuels/waterfall/pkg/observability"
	"github.com/matzehuels/waterfall/pkg/waterfall"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"xlsx", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}
	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !wferrors.Is(err, wferrors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, wferrors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "xlsx"}); err != nil {
		t.Errorf("valid formats: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "gif"}); err == nil {
		t.Error("invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("empty formats: %v", err)
	}
}

func TestValidatePeriod(t *testing.T) {
	for _, p := range []string{"", "week", "month"} {
		if err := ValidatePeriod(p); err != nil {
			t.Errorf("ValidatePeriod(%q): %v", p, err)
		}
	}
	if err := ValidatePeriod("year"); !wferrors.Is(err, wferrors.ErrCodeInvalidPeriod) {
		t.Errorf("ValidatePeriod(year) = %v", err)
	}
}

func TestParseFormats(t *testing.T) {
	got := ParseFormats(" svg, JSON,,svg ,xlsx")
	want := []string{"svg", "json", "xlsx"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("ParseFormats() = %v, want %v", got, want)
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Period != "week" || opts.PeriodValue() != dashboard.PeriodWeek {
		t.Errorf("Period = %q", opts.Period)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v", opts.Formats)
	}
	if opts.Width != DefaultWidth || opts.Height != DefaultHeight {
		t.Errorf("size = %vx%v", opts.Width, opts.Height)
	}
	if opts.PaletteValue() != chart.DefaultPalette {
		t.Errorf("palette = %+v", opts.PaletteValue())
	}
	if opts.Palette != chart.DefaultPalette.String() {
		t.Errorf("Palette = %q", opts.Palette)
	}

	// Idempotent.
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
}

func TestOptionsErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code wferrors.Code
	}{
		{"period", Options{Period: "day"}, wferrors.ErrCodeInvalidPeriod},
		{"format", Options{Formats: []string{"gif"}}, wferrors.ErrCodeInvalidFormat},
		{"palette", Options{Palette: "sideways=red"}, wferrors.ErrCodeInvalidPalette},
		{"negative width", Options{Width: -1}, wferrors.ErrCodeInvalidInput},
		{"huge height", Options{Height: 1e6}, wferrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !wferrors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestArtifactKeyOptsVaryByFormat(t *testing.T) {
	opts := Options{Title: "T"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	a, b := opts.ArtifactKeyOpts("svg"), opts.ArtifactKeyOpts("json")
	if a == b {
		t.Error("key opts should differ by format")
	}
	if a.Title != "T" || a.Width != DefaultWidth {
		t.Errorf("key opts = %+v", a)
	}
}

// memCache is an in-memory cache.Cache that counts operations.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	gets int
	sets int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.data[key] = data
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

func quietLogger() *log.Logger { return log.NewWithOptions(io.Discard, log.Options{}) }

func testPayload() *dashboard.Payload {
	return &dashboard.Payload{
		WeekLabels:  []string{"W1", "W2", "W3"},
		WeekDeltas:  []float64{10, -5, 3},
		MonthLabels: []string{"2024-01"},
		MonthDeltas: []float64{-4},
	}
}

func TestRunnerExecute(t *testing.T) {
	ctx := context.Background()
	mc := newMemCache()
	r := NewRunner(mc, nil, quietLogger())

	opts := Options{Formats: []string{"svg", "json", "xlsx"}}
	res, err := r.Execute(ctx, testPayload(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	wantPairs := [][2]float64{{0, 10}, {10, 5}, {5, 8}, {8, 0}}
	got := res.Series.Pairs()
	if len(got) != len(wantPairs) {
		t.Fatalf("pairs = %v", got)
	}
	for i := range wantPairs {
		if got[i] != wantPairs[i] {
			t.Errorf("pair[%d] = %v, want %v", i, got[i], wantPairs[i])
		}
	}
	if res.Stats.Bars != 4 {
		t.Errorf("Bars = %d", res.Stats.Bars)
	}
	if res.Chart.Title != "Weekly value" {
		t.Errorf("Title = %q", res.Chart.Title)
	}
	if res.CacheInfo.SeriesHit || res.CacheInfo.RenderHit {
		t.Errorf("first run should miss: %+v", res.CacheInfo)
	}
	for _, f := range opts.Formats {
		if len(res.Artifacts[f]) == 0 {
			t.Errorf("missing artifact %s", f)
		}
	}

	var c chart.Chart
	if err := json.Unmarshal(res.Artifacts["json"], &c); err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if c.Labels[3] != waterfall.TotalLabel {
		t.Errorf("labels = %v", c.Labels)
	}

	again, err := r.Execute(ctx, testPayload(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !again.CacheInfo.SeriesHit || !again.CacheInfo.RenderHit {
		t.Errorf("second run should hit: %+v", again.CacheInfo)
	}
	if string(again.Artifacts["svg"]) != string(res.Artifacts["svg"]) {
		t.Error("cached svg differs")
	}

	refresh := opts
	refresh.Refresh = true
	fresh, err := r.Execute(ctx, testPayload(), refresh)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.CacheInfo.SeriesHit || fresh.CacheInfo.RenderHit {
		t.Errorf("refresh should bypass cache: %+v", fresh.CacheInfo)
	}
}

func TestRunnerPartialArtifactHit(t *testing.T) {
	ctx := context.Background()
	mc := newMemCache()
	r := NewRunner(mc, nil, quietLogger())

	if _, err := r.Execute(ctx, testPayload(), Options{Formats: []string{"svg"}}); err != nil {
		t.Fatal(err)
	}
	setsBefore := mc.sets
	res, err := r.Execute(ctx, testPayload(), Options{Formats: []string{"svg", "json"}})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.RenderHit {
		t.Error("RenderHit should be false when one format was rendered")
	}
	if mc.sets-setsBefore != 1 {
		t.Errorf("expected exactly the json artifact to be written, got %d sets", mc.sets-setsBefore)
	}
}

func TestRunnerPeriodAndTitle(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	p := testPayload()
	p.Title = "Incidents"

	res, err := r.Execute(context.Background(), p, Options{Period: "month", Formats: []string{"json"}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Chart.Title != "Incidents" {
		t.Errorf("Title = %q", res.Chart.Title)
	}
	cats := res.Series.Categories
	if len(cats) != 2 || cats[0] != waterfall.Decrease || cats[1] != waterfall.Total {
		t.Errorf("categories = %v", cats)
	}
}

func TestRunnerErrors(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	ctx := context.Background()

	p := &dashboard.Payload{WeekLabels: []string{"a"}, WeekDeltas: []float64{1}}
	_, err := r.Execute(ctx, p, Options{Period: "month"})
	if !wferrors.Is(err, wferrors.ErrCodeEmptyInput) {
		t.Errorf("empty period err = %v, want EMPTY_INPUT", err)
	}

	_, err = r.Execute(ctx, testPayload(), Options{Formats: []string{"bmp"}})
	if !wferrors.Is(err, wferrors.ErrCodeInvalidFormat) {
		t.Errorf("bad format err = %v", err)
	}
}

func TestRunnerExtremeValues(t *testing.T) {
	r := NewRunner(newMemCache(), nil, quietLogger())
	ctx := context.Background()
	opts := Options{Formats: []string{"svg", "json", "xlsx"}}

	tests := []struct {
		name   string
		deltas []float64
		code   wferrors.Code
	}{
		{"span wider than max float", []float64{-1e308, 1e308, 1e308}, ""},
		{"total overflows", []float64{1e308, 1e308}, wferrors.ErrCodeInvalidInput},
		{"total underflows", []float64{-1e308, -1e308}, wferrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			labels := make([]string, len(tt.deltas))
			for i := range labels {
				labels[i] = "W" + string(rune('1'+i))
			}
			p := &dashboard.Payload{WeekLabels: labels, WeekDeltas: tt.deltas}

			res, err := r.Execute(ctx, p, opts)
			if tt.code != "" {
				if !wferrors.Is(err, tt.code) {
					t.Errorf("Execute() error = %v, want %s", err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatalf("Execute() error: %v", err)
			}
			for _, f := range opts.Formats {
				if len(res.Artifacts[f]) == 0 {
					t.Errorf("missing artifact %s", f)
				}
			}
			if strings.Contains(string(res.Artifacts["svg"]), "Inf") {
				t.Error("svg contains infinite coordinates")
			}
		})
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	observability.NoopCacheHooks
	mu       sync.Mutex
	computes []string
	renders  [][]string
	hits     map[string]int
}

func (h *recordingHooks) OnComputeComplete(_ context.Context, period string, _ int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.computes = append(h.computes, period)
}

func (h *recordingHooks) OnRenderComplete(_ context.Context, formats []string, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.renders = append(h.renders, formats)
}

func (h *recordingHooks) OnCacheHit(_ context.Context, keyType string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits[keyType]++
}

func TestRunnerFiresHooks(t *testing.T) {
	h := &recordingHooks{hits: map[string]int{}}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	defer observability.Reset()

	ctx := context.Background()
	r := NewRunner(newMemCache(), nil, quietLogger())
	for i := 0; i < 2; i++ {
		if _, err := r.Execute(ctx, testPayload(), Options{Formats: []string{"json"}}); err != nil {
			t.Fatal(err)
		}
	}

	if len(h.computes) != 1 || h.computes[0] != "week" {
		t.Errorf("computes = %v, want one week compute", h.computes)
	}
	if len(h.renders) != 1 {
		t.Errorf("renders = %v, want one", h.renders)
	}
	if h.hits["series"] != 1 || h.hits["artifact"] != 1 {
		t.Errorf("hits = %v", h.hits)
	}
}

func TestScopedKeyerIsolatesTenants(t *testing.T) {
	ctx := context.Background()
	mc := newMemCache()
	a := NewRunner(mc, cache.NewScopedKeyer(nil, "a:"), quietLogger())
	b := NewRunner(mc, cache.NewScopedKeyer(nil, "b:"), quietLogger())

	if _, err := a.Execute(ctx, testPayload(), Options{Formats: []string{"json"}}); err != nil {
		t.Fatal(err)
	}
	res, err := b.Execute(ctx, testPayload(), Options{Formats: []string{"json"}})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.SeriesHit {
		t.Error("tenant b should not see tenant a's series")
	}
}

func TestOptionsCopyRevalidates(t *testing.T) {
	base := Options{Period: "week"}
	if err := base.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	c := base.Copy()
	c.Period = "quarter"
	if err := c.ValidateAndSetDefaults(); !wferrors.Is(err, wferrors.ErrCodeInvalidPeriod) {
		t.Errorf("copy should be validated again, got %v", err)
	}
	c.Formats[0] = "json"
	if base.Formats[0] != FormatSVG {
		t.Error("Copy should not share the Formats slice")
	}
}
