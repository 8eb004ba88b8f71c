package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/waterfall/pkg/dashboard"
	"github.com/matzehuels/waterfall/pkg/waterfall"
)

const (
	minBarWidth     = 10
	defaultBarWidth = 48
	labelWidth      = 12
)

var (
	tabActiveStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Underline(true)
	tabInactiveStyle = lipgloss.NewStyle().Foreground(colorDim)
	cursorStyle      = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
)

// viewCommand opens the interactive browser.
func (c *CLI) viewCommand() *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "view <payload.json>",
		Short: "Browse the weekly and monthly waterfalls interactively",
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

			prog := tea.NewProgram(NewViewModel(p, pv), tea.WithContext(cmd.Context()))
			_, err = prog.Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&period, "period", "p", string(dashboard.DefaultPeriod), "initial period: week, month")
	return cmd
}

// =============================================================================
// ViewModel - Interactive waterfall browser
// =============================================================================

// ViewModel is the bubbletea model for the view command. Tab switches
// between the weekly and monthly series.
type ViewModel struct {
	Title  string
	Period dashboard.Period
	Cursor int
	Width  int

	series map[dashboard.Period]waterfall.Series
	errs   map[dashboard.Period]error
}

// NewViewModel computes both periods of p up front. A period whose data
// does not compute is shown with its error.
func NewViewModel(p *dashboard.Payload, period dashboard.Period) ViewModel {
	m := ViewModel{
		Title:  p.Title,
		Period: period,
		series: make(map[dashboard.Period]waterfall.Series),
		errs:   make(map[dashboard.Period]error),
	}
	for _, pd := range dashboard.Periods {
		s, err := p.Series(pd)
		if err != nil {
			m.errs[pd] = err
			continue
		}
		m.series[pd] = s
	}
	return m
}

func (m ViewModel) Init() tea.Cmd {
	return nil
}

func (m ViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "shift+tab":
			m = m.switchTo(m.otherPeriod())
		case "w":
			m = m.switchTo(dashboard.PeriodWeek)
		case "m":
			m = m.switchTo(dashboard.PeriodMonth)
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < m.current().Len()-1 {
				m.Cursor++
			}
		case "home", "g":
			m.Cursor = 0
		case "end", "G":
			m.Cursor = max(m.current().Len()-1, 0)
		}
	case tea.WindowSizeMsg:
		m.Width = msg.Width
	}
	return m, nil
}

func (m ViewModel) otherPeriod() dashboard.Period {
	if m.Period == dashboard.PeriodMonth {
		return dashboard.PeriodWeek
	}
	return dashboard.PeriodMonth
}

func (m ViewModel) switchTo(p dashboard.Period) ViewModel {
	if m.Period != p {
		m.Period = p
		m.Cursor = 0
	}
	return m
}

func (m ViewModel) current() waterfall.Series {
	return m.series[m.Period]
}

func (m ViewModel) barWidth() int {
	if m.Width == 0 {
		return defaultBarWidth
	}
	// label, gap, bar, gap, value
	return max(m.Width-labelWidth-14, minBarWidth)
}

func (m ViewModel) View() string {
	var b strings.Builder

	title := m.Title
	if title == "" {
		title = "Waterfall"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	for i, pd := range dashboard.Periods {
		if i > 0 {
			b.WriteString("  ")
		}
		if pd == m.Period {
			b.WriteString(tabActiveStyle.Render(string(pd)))
		} else {
			b.WriteString(tabInactiveStyle.Render(string(pd)))
		}
	}
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("tab switch period  ↑/↓ move  q quit"))
	b.WriteString("\n\n")

	if err, ok := m.errs[m.Period]; ok {
		b.WriteString(StyleWarning.Render(err.Error()))
		b.WriteString("\n")
		return b.String()
	}

	s := m.current()
	lo, hi := seriesBounds(s)
	width := m.barWidth()
	for i, pt := range s.Points() {
		label := fmt.Sprintf("%-*s", labelWidth, truncate(pt.Label, labelWidth))
		bar := categoryStyle(pt.Category).Render(barLine(lo, hi, pt.Segment, width))
		value := formatChange(pt.Segment.Change())
		if pt.Category == waterfall.Total {
			value = formatValue(pt.Segment.Start)
		}
		if i == m.Cursor {
			b.WriteString(cursorStyle.Render("▸ " + label))
		} else {
			b.WriteString("  " + StyleDim.Render(label))
		}
		b.WriteString(" " + bar + " " + StyleValue.Render(value) + "\n")
	}

	if pt, ok := m.selected(); ok {
		b.WriteString("\n")
		b.WriteString(StyleDim.Render(fmt.Sprintf("%s: %s → %s (%s)",
			pt.Label, formatValue(pt.Segment.Start), formatValue(pt.Segment.End), pt.Category)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m ViewModel) selected() (waterfall.Point, bool) {
	points := m.current().Points()
	if m.Cursor < 0 || m.Cursor >= len(points) {
		return waterfall.Point{}, false
	}
	return points[m.Cursor], true
}

// seriesBounds returns the value range covered by s, always including zero.
func seriesBounds(s waterfall.Series) (lo, hi float64) {
	for _, seg := range s.Segments {
		lo = min(lo, seg.Start, seg.End)
		hi = max(hi, seg.Start, seg.End)
	}
	return lo, hi
}

// barLine draws seg as a run of block characters on a width-column axis
// spanning [lo, hi]. Every bar is at least one column wide.
func barLine(lo, hi float64, seg waterfall.Segment, width int) string {
	if width <= 0 {
		return ""
	}
	col := func(v float64) int {
		if hi/2 == lo/2 {
			return 0
		}
		// halved so spans wider than MaxFloat64 stay finite
		c := int((v/2-lo/2)/(hi/2-lo/2)*float64(width-1) + 0.5)
		return min(max(c, 0), width-1)
	}
	a, z := col(seg.Start), col(seg.End)
	if a > z {
		a, z = z, a
	}
	return strings.Repeat(" ", a) + strings.Repeat("█", z-a+1) + strings.Repeat(" ", width-z-1)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
