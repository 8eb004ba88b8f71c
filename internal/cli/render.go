package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/waterfall/pkg/dashboard"
	wferrors "github.com/matzehuels/waterfall/pkg/errors"
	"github.com/matzehuels/waterfall/pkg/pipeline"
)

// renderOpts holds the flags of the render command. Unset flags fall back
// to the [render] config section.
type renderOpts struct {
	output  string
	period  string
	formats string
	width   float64
	height  float64
	palette string
	title   string
	noCache bool
	refresh bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <payload.json>",
		Short: "Render a payload period as a waterfall chart",
		Long: `Render computes the waterfall for one period of a payload and writes it
in one or more formats. Use "-" to read the payload from stdin and -o - to
write a single format to stdout.`,
		Example: `  waterfall render data.json
  waterfall render data.json --period month --format svg,xlsx -o out/monthly
  waterfall mock | waterfall render - --format json -o -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			po, err := c.renderOptions(cmd, opts)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, po)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output path or base path (default: <input>-<period>)")
	cmd.Flags().StringVarP(&opts.period, "period", "p", "", "period to render: week, month")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "comma-separated formats: svg, png, pdf, json, xlsx")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "chart width in pixels")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "chart height in pixels")
	cmd.Flags().StringVar(&opts.palette, "palette", "", `bar colours, e.g. "increase=#2e7d32,decrease=#c62828,total=#1565c0"`)
	cmd.Flags().StringVar(&opts.title, "title", "", "chart title (default: payload title)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when cached")

	return cmd
}

// renderOptions layers changed flags over the configured defaults.
func (c *CLI) renderOptions(cmd *cobra.Command, ro renderOpts) (pipeline.Options, error) {
	opts := c.config().Render.Options()
	flags := cmd.Flags()
	if flags.Changed("period") {
		opts.Period = ro.period
	}
	if flags.Changed("format") {
		opts.Formats = pipeline.ParseFormats(ro.formats)
	}
	if flags.Changed("width") {
		opts.Width = ro.width
	}
	if flags.Changed("height") {
		opts.Height = ro.height
	}
	if flags.Changed("palette") {
		opts.Palette = ro.palette
	}
	opts.Title = ro.title
	opts.Refresh = ro.refresh

	if err := opts.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	if ro.output == "-" && len(opts.Formats) != 1 {
		return pipeline.Options{}, wferrors.New(wferrors.ErrCodeInvalidInput, "-o - needs exactly one format, got %d", len(opts.Formats))
	}
	return opts, nil
}

func (c *CLI) runRender(ctx context.Context, input string, ro renderOpts, opts pipeline.Options) error {
	logger := loggerFromContext(ctx)

	p, err := loadPayload(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, ro.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	var spinner *Spinner
	if slices.Contains(opts.Formats, pipeline.FormatPNG) || slices.Contains(opts.Formats, pipeline.FormatPDF) {
		spinner = newSpinnerWithContext(ctx, "Rendering "+strings.Join(opts.Formats, ", "))
		spinner.Start()
	}

	prog := newProgress(logger)
	res, err := runner.Execute(ctx, p, opts)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}
	prog.done("rendered", "bars", res.Stats.Bars, "formats", strings.Join(opts.Formats, ","))

	if ro.output == "-" {
		_, err := os.Stdout.Write(res.Artifacts[opts.Formats[0]])
		return err
	}

	paths := outputPaths(input, ro.output, opts.PeriodValue(), opts.Formats)
	for i, format := range opts.Formats {
		if err := writeArtifact(paths[i], res.Artifacts[format]); err != nil {
			return err
		}
	}

	printSuccess("Rendered %s waterfall", opts.PeriodValue())
	printStats(res.Stats.Bars, res.Series.Total(), res.CacheInfo.SeriesHit && res.CacheInfo.RenderHit)
	for _, path := range paths {
		printFile(path)
	}
	return nil
}

// outputPaths derives one file path per format. An output with a matching
// extension is used as-is for a single format; otherwise its extension is
// replaced. Without an output the input name gains a period suffix.
func outputPaths(input, output string, period dashboard.Period, formats []string) []string {
	base := output
	if base == "" {
		if input == "-" {
			base = "waterfall"
		} else {
			base = strings.TrimSuffix(input, filepath.Ext(input))
		}
		base += "-" + string(period)
	}

	paths := make([]string, len(formats))
	ext := strings.TrimPrefix(filepath.Ext(base), ".")
	if len(formats) == 1 && ext == formats[0] {
		paths[0] = base
		return paths
	}
	if pipeline.ValidateFormat(ext) == nil {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	for i, f := range formats {
		paths[i] = base + "." + f
	}
	return paths
}

func writeArtifact(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
