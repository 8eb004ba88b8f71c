package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/waterfall/pkg/dashboard"
	"github.com/matzehuels/waterfall/pkg/mock"
)

type mockOpts struct {
	output string
	seed   uint64
	weeks  int
	months int
	min    int
	max    int
	start  string
	title  string
}

// mockCommand writes a payload filled with seeded random deltas.
func (c *CLI) mockCommand() *cobra.Command {
	opts := mockOpts{seed: mock.DefaultSeed, weeks: 25, months: 7, min: -10, max: 20}

	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Generate a demo payload with random deltas",
		Example: `  waterfall mock -o demo.json
  waterfall mock --seed 7 --weeks 12 --min 0 --max 100 | waterfall show -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := mockPayload(opts)
			if err != nil {
				return err
			}
			data, err := p.Marshal()
			if err != nil {
				return err
			}
			data = append(data, '\n')

			if opts.output == "" || opts.output == "-" {
				_, err := os.Stdout.Write(data)
				return err
			}
			if err := writeArtifact(opts.output, data); err != nil {
				return err
			}
			printSuccess("Generated %d weeks and %d months", len(p.WeekDeltas), len(p.MonthDeltas))
			printFile(opts.output)
			printNextStep("Render it", fmt.Sprintf("%s render %s", appName, opts.output))
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", opts.seed, "random seed")
	cmd.Flags().IntVar(&opts.weeks, "weeks", opts.weeks, "number of weekly deltas")
	cmd.Flags().IntVar(&opts.months, "months", opts.months, "number of monthly deltas")
	cmd.Flags().IntVar(&opts.min, "min", opts.min, "smallest delta")
	cmd.Flags().IntVar(&opts.max, "max", opts.max, "largest delta (exclusive)")
	cmd.Flags().StringVar(&opts.start, "start", "", "first month as YYYY-MM (default: January this year)")
	cmd.Flags().StringVar(&opts.title, "title", "", "payload title")

	return cmd
}

func mockPayload(opts mockOpts) (*dashboard.Payload, error) {
	mo := mock.Options{Weeks: opts.weeks, Months: opts.months, Title: opts.title}
	if opts.start != "" {
		t, err := time.Parse(dashboard.MonthLabelLayout, opts.start)
		if err != nil {
			return nil, fmt.Errorf("invalid --start %q: want YYYY-MM", opts.start)
		}
		mo.Start = t
	}
	return mock.Payload(mock.NewSeeded(opts.seed, opts.min, opts.max), mo), nil
}
