package dashboard

import (
	"slices"
	"time"

	wferrors "github.com/matzehuels/waterfall/pkg/errors"
)

// Label layouts for bucketed periods.
const (
	WeekLabelLayout  = "2006-01-02"
	MonthLabelLayout = "2006-01"
)

// Default window sizes for [BuildPayload].
const (
	DefaultWeeks  = 52
	DefaultMonths = 12
)

// Observation is a dated value, e.g. the rand value lost by one incident.
type Observation struct {
	Time  time.Time
	Value float64
}

// weekStart returns midnight of the Monday starting t's week, in t's location.
func weekStart(t time.Time) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func monthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// WeeklyDeltas sums observations into the given number of Monday-based weeks
// ending with the week that contains end. Weeks without observations get a
// zero delta. Labels are the week start dates, oldest first. Observations are
// interpreted in end's location; those outside the window are ignored. A
// negative count yields no weeks.
func WeeklyDeltas(obs []Observation, end time.Time, weeks int) ([]string, []float64) {
	weeks = max(weeks, 0)
	last := weekStart(end)
	starts := make([]time.Time, weeks)
	for i := range starts {
		starts[i] = last.AddDate(0, 0, -7*(weeks-1-i))
	}
	return bucket(obs, end.Location(), starts, weekStart, WeekLabelLayout)
}

// MonthlyDeltas is the calendar-month counterpart of [WeeklyDeltas]. Labels
// are formatted as "2006-01".
func MonthlyDeltas(obs []Observation, end time.Time, months int) ([]string, []float64) {
	months = max(months, 0)
	last := monthStart(end)
	starts := make([]time.Time, months)
	for i := range starts {
		starts[i] = last.AddDate(0, -(months - 1 - i), 0)
	}
	return bucket(obs, end.Location(), starts, monthStart, MonthLabelLayout)
}

func bucket(obs []Observation, loc *time.Location, starts []time.Time, startOf func(time.Time) time.Time, layout string) ([]string, []float64) {
	labels := make([]string, len(starts))
	deltas := make([]float64, len(starts))
	index := make(map[string]int, len(starts))
	for i, s := range starts {
		labels[i] = s.Format(layout)
		index[labels[i]] = i
	}
	for _, o := range obs {
		key := startOf(o.Time.In(loc)).Format(layout)
		if i, ok := index[key]; ok {
			deltas[i] += o.Value
		}
	}
	return labels, deltas
}

// BuildPayload buckets observations into both weekly and monthly series.
// Non-positive window sizes fall back to [DefaultWeeks] and [DefaultMonths].
func BuildPayload(obs []Observation, end time.Time, weeks, months int) (*Payload, error) {
	if len(obs) == 0 {
		return nil, wferrors.New(wferrors.ErrCodeEmptyInput, "no observations to bucket")
	}
	if weeks <= 0 {
		weeks = DefaultWeeks
	}
	if months <= 0 {
		months = DefaultMonths
	}

	p := &Payload{}
	p.WeekLabels, p.WeekDeltas = WeeklyDeltas(obs, end, weeks)
	p.MonthLabels, p.MonthDeltas = MonthlyDeltas(obs, end, months)
	return p, nil
}

// Latest returns the time of the newest observation, or the zero time.
func Latest(obs []Observation) time.Time {
	if len(obs) == 0 {
		return time.Time{}
	}
	return slices.MaxFunc(obs, func(a, b Observation) int { return a.Time.Compare(b.Time) }).Time
}
