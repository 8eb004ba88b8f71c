package waterfall

import (
	"fmt"

	wferrors "github.com/matzehuels/waterfall/pkg/errors"
)

// TotalLabel is the label appended for the trailing cumulative segment.
const TotalLabel = "Total"

// Sentinel errors. Both carry an error code so callers can use either
// errors.Is against the sentinel or wferrors.Is against the code.
var (
	// ErrEmptyInput is returned by [Compute] when there are no deltas.
	ErrEmptyInput = wferrors.New(wferrors.ErrCodeEmptyInput, "delta sequence is empty")

	// ErrLengthMismatch is returned by [Build] when labels and deltas differ in length.
	ErrLengthMismatch = wferrors.New(wferrors.ErrCodeLengthMismatch, "label and delta counts differ")
)

// Segment is a floating bar on the shared value axis.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Pair returns the segment as a [start, end] array, the shape chart widgets
// expect for floating bars.
func (s Segment) Pair() [2]float64 { return [2]float64{s.Start, s.End} }

// Change returns End - Start.
func (s Segment) Change() float64 { return s.End - s.Start }

// Compute converts ordered deltas into waterfall segments.
//
// Segment i runs from the running total before delta i to the running total
// after it; the first segment therefore starts at zero. One extra segment is
// appended that runs from the final total back to zero. The result has
// len(deltas)+1 entries. deltas is not modified.
func Compute(deltas []float64) ([]Segment, error) {
	if len(deltas) == 0 {
		return nil, ErrEmptyInput
	}

	segments := make([]Segment, 0, len(deltas)+1)
	var total float64
	for i, d := range deltas {
		if i == 0 {
			total = d
			segments = append(segments, Segment{Start: 0, End: d})
			continue
		}
		prev := total
		total = prev + d
		segments = append(segments, Segment{Start: prev, End: total})
	}
	segments = append(segments, Segment{Start: total, End: 0})
	return segments, nil
}

// Classify returns the category of segments[index].
//
// The last index is always [Total] regardless of its values. Other segments
// are [Decrease] when Start > End and [Increase] otherwise. Indexes outside
// the slice yield [Unknown].
func Classify(segments []Segment, index int) Category {
	if index < 0 || index >= len(segments) {
		return Unknown
	}
	if index == len(segments)-1 {
		return Total
	}
	if s := segments[index]; s.Start > s.End {
		return Decrease
	}
	return Increase
}

// Categories classifies every segment.
func Categories(segments []Segment) []Category {
	out := make([]Category, len(segments))
	for i := range segments {
		out[i] = Classify(segments, i)
	}
	return out
}

// AppendTotalLabel returns a copy of labels with [TotalLabel] appended.
func AppendTotalLabel(labels []string) []string {
	out := make([]string, len(labels), len(labels)+1)
	copy(out, labels)
	return append(out, TotalLabel)
}

// Series is a computed waterfall: labels, segments and categories aligned by index.
type Series struct {
	Labels     []string   `json:"labels"`
	Segments   []Segment  `json:"segments"`
	Categories []Category `json:"categories"`
}

// Point is one bar of a [Series].
type Point struct {
	Label    string
	Segment  Segment
	Category Category
}

// Build computes a full series from period labels and deltas.
// It returns [ErrLengthMismatch] when the counts differ and [ErrEmptyInput]
// when both are empty.
func Build(labels []string, deltas []float64) (Series, error) {
	if len(labels) != len(deltas) {
		return Series{}, fmt.Errorf("%w: %d labels, %d deltas", ErrLengthMismatch, len(labels), len(deltas))
	}
	segments, err := Compute(deltas)
	if err != nil {
		return Series{}, err
	}
	return Series{
		Labels:     AppendTotalLabel(labels),
		Segments:   segments,
		Categories: Categories(segments),
	}, nil
}

// Len returns the number of bars including the total.
func (s Series) Len() int { return len(s.Segments) }

// Points returns the series as (label, segment, category) triples.
func (s Series) Points() []Point {
	points := make([]Point, len(s.Segments))
	for i, seg := range s.Segments {
		p := Point{Segment: seg, Category: Classify(s.Segments, i)}
		if i < len(s.Labels) {
			p.Label = s.Labels[i]
		}
		points[i] = p
	}
	return points
}

// Total returns the cumulative total, the start of the trailing segment.
func (s Series) Total() float64 {
	if len(s.Segments) == 0 {
		return 0
	}
	return s.Segments[len(s.Segments)-1].Start
}

// Pairs returns every segment as a [start, end] array.
func (s Series) Pairs() [][2]float64 {
	out := make([][2]float64, len(s.Segments))
	for i, seg := range s.Segments {
		out[i] = seg.Pair()
	}
	return out
}
