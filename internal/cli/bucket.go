package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/waterfall/pkg/dashboard"
)

type bucketOpts struct {
	output string
	weeks  int
	months int
	end    string
	title  string
}

// bucketCommand builds a payload from dated observations.
func (c *CLI) bucketCommand() *cobra.Command {
	opts := bucketOpts{weeks: dashboard.DefaultWeeks, months: dashboard.DefaultMonths}

	cmd := &cobra.Command{
		Use:   "bucket <observations.csv|observations.xlsx>",
		Short: "Sum dated values into weekly and monthly deltas",
		Long: `Bucket reads time,value rows from a CSV file or the first sheet of an
XLSX workbook and sums them per calendar week (starting Monday) and month.
Empty periods count as zero.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			obs, err := dashboard.ReadObservationsFile(args[0])
			if err != nil {
				return err
			}
			logger.Debug("observations read", "count", len(obs), "file", args[0])

			end, err := bucketEnd(opts.end, obs)
			if err != nil {
				return err
			}
			p, err := dashboard.BuildPayload(obs, end, opts.weeks, opts.months)
			if err != nil {
				return err
			}
			p.Title = opts.title

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
			printSuccess("Bucketed %d observations", len(obs))
			printDetail("%d weeks, %d months up to %s", len(p.WeekDeltas), len(p.MonthDeltas), end.Format(dashboard.WeekLabelLayout))
			printFile(opts.output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().IntVar(&opts.weeks, "weeks", opts.weeks, "number of weeks")
	cmd.Flags().IntVar(&opts.months, "months", opts.months, "number of months")
	cmd.Flags().StringVar(&opts.end, "end", "", "last day to include as YYYY-MM-DD (default: newest observation)")
	cmd.Flags().StringVar(&opts.title, "title", "", "payload title")

	return cmd
}

// bucketEnd parses --end, defaulting to the newest observation.
func bucketEnd(s string, obs []dashboard.Observation) (time.Time, error) {
	if s == "" {
		return dashboard.Latest(obs), nil
	}
	t, err := time.Parse(dashboard.WeekLabelLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --end %q: want YYYY-MM-DD", s)
	}
	return t, nil
}
