package waterfall

import "fmt"

// Category classifies a segment for colouring.
type Category int

const (
	// Unknown is returned for indexes outside the series.
	Unknown Category = iota
	// Increase marks a segment whose end is at or above its start.
	Increase
	// Decrease marks a segment whose start is above its end.
	Decrease
	// Total marks the trailing cumulative segment.
	Total
)

var categoryNames = map[Category]string{
	Unknown:  "unknown",
	Increase: "increase",
	Decrease: "decrease",
	Total:    "total",
}

// String returns the lower-case category name.
func (c Category) String() string {
	if s, ok := categoryNames[c]; ok {
		return s
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// ParseCategory converts a name produced by [Category.String] back into a Category.
func ParseCategory(s string) (Category, error) {
	for c, name := range categoryNames {
		if name == s {
			return c, nil
		}
	}
	return Unknown, fmt.Errorf("unknown category %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(b []byte) error {
	parsed, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
