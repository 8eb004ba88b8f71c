package dashboard

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	wferrors "github.com/matzehuels/waterfall/pkg/errors"
	"github.com/matzehuels/waterfall/pkg/waterfall"
)

// Period selects the weekly or monthly half of a payload.
type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// DefaultPeriod is used when no period is requested.
const DefaultPeriod = PeriodWeek

// Periods lists the supported periods in display order.
var Periods = []Period{PeriodWeek, PeriodMonth}

// ParsePeriod validates a period name. An empty string yields [DefaultPeriod].
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "":
		return DefaultPeriod, nil
	case PeriodWeek, PeriodMonth:
		return Period(s), nil
	default:
		return "", wferrors.New(wferrors.ErrCodeInvalidPeriod, "invalid period: %q (must be one of: week, month)", s)
	}
}

// Payload is the dashboard data document.
type Payload struct {
	Title       string    `json:"title,omitempty" bson:"title,omitempty"`
	Section     string    `json:"section,omitempty" bson:"section,omitempty"`
	WeekLabels  []string  `json:"week_labels" bson:"week_labels"`
	WeekDeltas  []float64 `json:"week_deltas" bson:"week_deltas"`
	MonthLabels []string  `json:"month_labels" bson:"month_labels"`
	MonthDeltas []float64 `json:"month_deltas" bson:"month_deltas"`
}

// Decode reads a JSON payload from r and validates it.
func Decode(r io.Reader) (*Payload, error) {
	var p Payload
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return nil, wferrors.Wrap(wferrors.ErrCodeInvalidInput, err, "decode payload")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Load reads and validates a payload file.
func Load(path string) (*Payload, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, wferrors.Wrap(wferrors.ErrCodeFileNotFound, err, "payload %s", path)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Marshal returns the indented JSON form of the payload.
func (p *Payload) Marshal() ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// Validate checks that each period has one label per delta, that labels are
// usable and that deltas and their running total are finite. A period may be empty; at least one
// must not be.
func (p *Payload) Validate() error {
	if len(p.WeekDeltas) == 0 && len(p.MonthDeltas) == 0 && len(p.WeekLabels) == 0 && len(p.MonthLabels) == 0 {
		return wferrors.New(wferrors.ErrCodeEmptyInput, "payload has no weekly or monthly data")
	}
	for _, period := range Periods {
		labels, deltas := p.Data(period)
		if err := validatePeriod(period, labels, deltas); err != nil {
			return err
		}
	}
	return nil
}

func validatePeriod(period Period, labels []string, deltas []float64) error {
	if len(labels) != len(deltas) {
		return fmt.Errorf("%s: %w: %d labels, %d deltas", period, waterfall.ErrLengthMismatch, len(labels), len(deltas))
	}
	for _, l := range labels {
		if err := wferrors.ValidateLabel(l); err != nil {
			return fmt.Errorf("%s: %w", period, err)
		}
	}
	if err := wferrors.ValidateDeltas(deltas); err != nil {
		return fmt.Errorf("%s: %w", period, err)
	}
	if err := wferrors.ValidateRunningTotal(deltas); err != nil {
		return fmt.Errorf("%s: %w", period, err)
	}
	return nil
}

// Data returns the labels and deltas for period. Unknown periods yield nil slices.
func (p *Payload) Data(period Period) ([]string, []float64) {
	switch period {
	case PeriodWeek:
		return p.WeekLabels, p.WeekDeltas
	case PeriodMonth:
		return p.MonthLabels, p.MonthDeltas
	default:
		return nil, nil
	}
}

// Series computes the waterfall for one period. A running total that
// overflows is rejected with an INVALID_INPUT error.
func (p *Payload) Series(period Period) (waterfall.Series, error) {
	if _, err := ParsePeriod(string(period)); err != nil {
		return waterfall.Series{}, err
	}
	labels, deltas := p.Data(period)
	if err := wferrors.ValidateRunningTotal(deltas); err != nil {
		return waterfall.Series{}, fmt.Errorf("%s: %w", period, err)
	}
	s, err := waterfall.Build(labels, deltas)
	if err != nil {
		return waterfall.Series{}, fmt.Errorf("%s: %w", period, err)
	}
	return s, nil
}

// DisplayTitle returns the payload title, or a generic one naming the period.
func (p *Payload) DisplayTitle(period Period) string {
	if p.Title != "" {
		return p.Title
	}
	switch period {
	case PeriodMonth:
		return "Monthly value"
	default:
		return "Weekly value"
	}
}
