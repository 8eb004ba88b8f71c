package dashboard

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	wferrors "github.com/matzehuels/waterfall/pkg/errors"
)

func date(s string) time.Time {
	t, err := parseTime(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestWeekStart(t *testing.T) {
	tests := []struct{ in, want string }{
		{"2024-01-15", "2024-01-15"}, // Monday
		{"2024-01-17 13:45", "2024-01-15"},
		{"2024-01-21 23:59", "2024-01-15"}, // Sunday
		{"2024-01-01", "2024-01-01"},
		{"2023-12-31", "2023-12-25"},
	}
	for _, tt := range tests {
		if got := weekStart(date(tt.in)).Format(WeekLabelLayout); got != tt.want {
			t.Errorf("weekStart(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestWeeklyDeltas(t *testing.T) {
	obs := []Observation{
		{date("2024-01-02"), 5},
		{date("2024-01-07 18:00"), 1},
		{date("2024-01-14"), -2},
		{date("2024-01-15 10:00"), 3},
		{date("2023-12-31"), 100}, // before the window
	}

	labels, deltas := WeeklyDeltas(obs, date("2024-01-17"), 3)

	if want := []string{"2024-01-01", "2024-01-08", "2024-01-15"}; !reflect.DeepEqual(labels, want) {
		t.Errorf("labels = %v, want %v", labels, want)
	}
	if want := []float64{6, -2, 3}; !reflect.DeepEqual(deltas, want) {
		t.Errorf("deltas = %v, want %v", deltas, want)
	}
}

func TestWeeklyDeltasEmptyWeeks(t *testing.T) {
	labels, deltas := WeeklyDeltas(nil, date("2024-01-17"), 4)
	if len(labels) != 4 || len(deltas) != 4 {
		t.Fatalf("got %d labels, %d deltas", len(labels), len(deltas))
	}
	for i, d := range deltas {
		if d != 0 {
			t.Errorf("deltas[%d] = %v, want 0", i, d)
		}
	}
}

func TestDeltasNegativeWindow(t *testing.T) {
	obs := []Observation{{date("2024-01-02"), 5}}
	if labels, deltas := WeeklyDeltas(obs, date("2024-01-17"), -1); len(labels) != 0 || len(deltas) != 0 {
		t.Errorf("WeeklyDeltas(-1) = %v, %v; want empty", labels, deltas)
	}
	if labels, deltas := MonthlyDeltas(obs, date("2024-01-17"), -3); len(labels) != 0 || len(deltas) != 0 {
		t.Errorf("MonthlyDeltas(-3) = %v, %v; want empty", labels, deltas)
	}
}

func TestMonthlyDeltas(t *testing.T) {
	obs := []Observation{
		{date("2024-01-31"), 4},
		{date("2024-02-29"), -1.5},
		{date("2024-03-01"), 2},
		{date("2023-12-31"), 50},
	}

	labels, deltas := MonthlyDeltas(obs, date("2024-03-10"), 3)

	if want := []string{"2024-01", "2024-02", "2024-03"}; !reflect.DeepEqual(labels, want) {
		t.Errorf("labels = %v, want %v", labels, want)
	}
	if want := []float64{4, -1.5, 2}; !reflect.DeepEqual(deltas, want) {
		t.Errorf("deltas = %v, want %v", deltas, want)
	}
}

func TestBuildPayload(t *testing.T) {
	obs := []Observation{{date("2024-03-01"), 2}}

	p, err := BuildPayload(obs, date("2024-03-10"), 0, 0)
	if err != nil {
		t.Fatalf("BuildPayload() error: %v", err)
	}
	if len(p.WeekLabels) != DefaultWeeks || len(p.MonthLabels) != DefaultMonths {
		t.Errorf("window sizes = %d weeks, %d months", len(p.WeekLabels), len(p.MonthLabels))
	}
	if err := p.Validate(); err != nil {
		t.Errorf("built payload invalid: %v", err)
	}

	if _, err := BuildPayload(nil, time.Now(), 1, 1); !wferrors.Is(err, wferrors.ErrCodeEmptyInput) {
		t.Errorf("BuildPayload(nil) error = %v", err)
	}
}

func TestLatest(t *testing.T) {
	obs := []Observation{{date("2024-01-02"), 1}, {date("2024-03-02"), 1}, {date("2024-02-02"), 1}}
	if got := Latest(obs); !got.Equal(date("2024-03-02")) {
		t.Errorf("Latest() = %v", got)
	}
	if !Latest(nil).IsZero() {
		t.Error("Latest(nil) should be zero")
	}
}

func TestReadObservationsCSV(t *testing.T) {
	in := "time,value\n2024-01-02,5\n2024-01-03T10:00:00Z, -2.5\n2024-01-04 08:30,\n"
	obs, err := ReadObservationsCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadObservationsCSV() error: %v", err)
	}
	if len(obs) != 3 {
		t.Fatalf("got %d observations, want 3", len(obs))
	}
	if obs[1].Value != -2.5 || obs[2].Value != 0 {
		t.Errorf("values = %v, %v", obs[1].Value, obs[2].Value)
	}
	if !obs[1].Time.Equal(date("2024-01-03 10:00")) {
		t.Errorf("time = %v", obs[1].Time)
	}
}

func TestReadObservationsCSVErrors(t *testing.T) {
	tests := []struct{ name, in string }{
		{"bad time after header", "time,value\nyesterday,1\n"},
		{"bad value", "2024-01-02,abc\n"},
		{"one column", "2024-01-02\n"},
		{"nan", "2024-01-02,NaN\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadObservationsCSV(strings.NewReader(tt.in))
			if !wferrors.Is(err, wferrors.ErrCodeInvalidInput) {
				t.Errorf("error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestReadObservationsXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "incidents.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"time", "rand_value_loss"},
		{"2024-01-02", 1200.5},
		{"2024-01-09", "-300"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	f.Close()

	obs, err := ReadObservationsFile(path)
	if err != nil {
		t.Fatalf("ReadObservationsFile() error: %v", err)
	}
	if len(obs) != 2 {
		t.Fatalf("got %d observations, want 2", len(obs))
	}
	if obs[0].Value != 1200.5 || obs[1].Value != -300 {
		t.Errorf("values = %v, %v", obs[0].Value, obs[1].Value)
	}
}
