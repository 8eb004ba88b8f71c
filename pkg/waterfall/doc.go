// Package waterfall turns period-over-period deltas into waterfall chart series.
//
// # Overview
//
// A waterfall chart draws each period as a floating bar that starts where the
// previous period ended. The final bar, labelled "Total", spans from the
// cumulative total back to the axis origin:
//
//	deltas:   10   -5    3
//	segments: (0,10) (10,5) (5,8) (8,0)
//	labels:   W1    W2    W3    Total
//
// [Compute] produces the segments, [Classify] assigns each one a [Category]
// (increase, decrease or total) and [AppendTotalLabel] keeps the label list in
// step with the extra segment. [Build] runs all three and checks that labels
// and deltas line up.
//
// # Categories
//
// Categories are a presentation concern. The last segment is always [Total];
// any other segment is [Decrease] when its start lies above its end, and
// [Increase] otherwise. A zero-height segment therefore counts as an increase.
//
// # Errors
//
// [Compute] rejects an empty delta sequence with [ErrEmptyInput]. [Build]
// additionally returns [ErrLengthMismatch] when the label and delta counts
// differ. Both are wrapped in a coded error from the errors package so that
// callers can map them to HTTP statuses or CLI messages.
//
// All functions are pure: inputs are never modified and results depend only on
// the arguments, so concurrent use is safe.
package waterfall
