package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/waterfall/pkg/dashboard"
	"github.com/matzehuels/waterfall/pkg/waterfall"
)

// showCommand prints the computed bars of one period as a table.
func (c *CLI) showCommand() *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "show <payload.json>",
		Short: "Print the waterfall bars of a payload as a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pv, err := c.periodFlag(cmd, period)
			if err != nil {
				return err
			}
			p, err := loadPayload(args[0])
			if err != nil {
				return err
			}
			s, err := p.Series(pv)
			if err != nil {
				return err
			}

			fmt.Fprintln(out, StyleTitle.Render(p.DisplayTitle(pv)))
			fmt.Fprintln(out, seriesTable(s, -1))
			printKeyValue("Total", formatValue(s.Total()))
			printNextStep("Render it", fmt.Sprintf("%s render %s --period %s", appName, args[0], pv))
			return nil
		},
	}

	cmd.Flags().StringVarP(&period, "period", "p", string(dashboard.DefaultPeriod), "period to show: week, month")
	return cmd
}

// seriesTable renders the series as a bordered table. The row at highlight
// is emphasised; pass -1 for none.
func seriesTable(s waterfall.Series, highlight int) string {
	points := s.Points()
	rows := make([][]string, len(points))
	for i, pt := range points {
		change := formatChange(pt.Segment.Change())
		if pt.Category == waterfall.Total {
			change = ""
		}
		rows[i] = []string{
			pt.Label,
			formatValue(pt.Segment.Start),
			formatValue(pt.Segment.End),
			change,
			pt.Category.String(),
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Label", "Start", "End", "Change", "Category").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader.Padding(0, 1)
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if col > 0 && col < 4 {
				base = base.Align(lipgloss.Right)
			}
			if row == highlight {
				base = base.Bold(true).Reverse(true)
			}
			if col == 3 || col == 4 {
				return base.Inherit(categoryStyle(points[row].Category))
			}
			return base.Foreground(colorWhite)
		}).
		String()
}

// formatChange renders a signed change, e.g. "+4" or "-2.5".
func formatChange(v float64) string {
	if v > 0 {
		return "+" + formatValue(v)
	}
	return formatValue(v)
}
