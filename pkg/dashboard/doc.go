// Package dashboard models the data document behind the value dashboards.
//
// A [Payload] holds weekly and monthly label/delta pairs, the same shape the
// dashboard pages embed as their "graph-data" JSON element:
//
//	{
//	  "week_labels":  ["2024-01-01", "2024-01-08"],
//	  "week_deltas":  [12.5, -3],
//	  "month_labels": ["2024-01"],
//	  "month_deltas": [9.5]
//	}
//
// [Payload.Series] turns one period of the payload into a
// [waterfall.Series]. Payloads can be decoded from JSON, generated from dated
// observations with [BuildPayload], or produced by the mock package for demos.
package dashboard
