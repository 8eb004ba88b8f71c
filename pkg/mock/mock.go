// Package mock generates demonstration dashboard data.
//
// Randomness is confined to a [Generator], so anything that consumes mock
// data can be handed a deterministic sequence in tests. [NewSeeded] gives
// reproducible pseudo-random integers in [min, max), the same distribution
// the demo dashboards drew bar heights from.
package mock

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/matzehuels/waterfall/pkg/dashboard"
)

// DefaultSeed is used when no seed is given.
const DefaultSeed = uint64(42)

// Generator yields the next value of a sequence.
type Generator interface {
	Next() float64
}

// Seeded draws integers uniformly from [Min, Max) using a PCG source.
type Seeded struct {
	Min, Max int
	rng      *rand.Rand
}

// NewSeeded returns a reproducible generator. A zero seed selects [DefaultSeed].
// Bounds are swapped if given in the wrong order.
func NewSeeded(seed uint64, lo, hi int) *Seeded {
	if seed == 0 {
		seed = DefaultSeed
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return &Seeded{
		Min: lo,
		Max: hi,
		rng: rand.New(rand.NewPCG(seed, seed^0xdeadbeef)),
	}
}

// Next returns floor(min + (max-min)*u) for a uniform u in [0, 1).
func (g *Seeded) Next() float64 {
	if g.Max == g.Min {
		return float64(g.Min)
	}
	return math.Floor(float64(g.Min) + float64(g.Max-g.Min)*g.rng.Float64())
}

// Sequence replays fixed values in order and wraps around at the end.
// An empty sequence always yields zero.
type Sequence struct {
	Values []float64
	pos    int
}

// NewSequence returns a generator over values.
func NewSequence(values ...float64) *Sequence {
	return &Sequence{Values: values}
}

// Next returns the next value of the sequence.
func (s *Sequence) Next() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	v := s.Values[s.pos%len(s.Values)]
	s.pos++
	return v
}

// Deltas draws n values from g.
func Deltas(g Generator, n int) []float64 {
	out := make([]float64, max(n, 0))
	for i := range out {
		out[i] = g.Next()
	}
	return out
}

// WeekLabels returns "Week 1" .. "Week n", the labels of the demo dashboards.
func WeekLabels(n int) []string {
	out := make([]string, max(n, 0))
	for i := range out {
		out[i] = fmt.Sprintf("Week %d", i+1)
	}
	return out
}

// MonthLabels returns n consecutive "2006-01" labels starting at start's month.
func MonthLabels(start time.Time, n int) []string {
	y, m, _ := start.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	out := make([]string, max(n, 0))
	for i := range out {
		out[i] = first.AddDate(0, i, 0).Format(dashboard.MonthLabelLayout)
	}
	return out
}

// Options controls [Payload].
type Options struct {
	Weeks  int
	Months int
	Start  time.Time // first month; zero means January of the current year
	Title  string
}

// Payload builds a demo payload. Weekly deltas are drawn first, then monthly.
func Payload(g Generator, opts Options) *dashboard.Payload {
	if opts.Weeks <= 0 {
		opts.Weeks = 25
	}
	if opts.Months <= 0 {
		opts.Months = 7
	}
	if opts.Start.IsZero() {
		opts.Start = time.Date(time.Now().Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return &dashboard.Payload{
		Title:       opts.Title,
		WeekLabels:  WeekLabels(opts.Weeks),
		WeekDeltas:  Deltas(g, opts.Weeks),
		MonthLabels: MonthLabels(opts.Start, opts.Months),
		MonthDeltas: Deltas(g, opts.Months),
	}
}
