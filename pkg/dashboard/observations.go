package dashboard

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	wferrors "github.com/matzehuels/waterfall/pkg/errors"
)

// timeLayouts are tried in order when parsing observation timestamps.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var firstErr error
	for _, layout := range timeLayouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// parseRow converts a (time, value) record. A header row is reported with
// ok=false so callers can skip it.
func parseRow(line int, rec []string) (Observation, bool, error) {
	if len(rec) < 2 {
		return Observation{}, false, wferrors.New(wferrors.ErrCodeInvalidInput, "line %d: want 2 columns, got %d", line, len(rec))
	}
	t, err := parseTime(rec[0])
	if err != nil {
		if line == 1 {
			return Observation{}, false, nil
		}
		return Observation{}, false, wferrors.Wrap(wferrors.ErrCodeInvalidInput, err, "line %d: time", line)
	}
	raw := strings.TrimSpace(rec[1])
	v := 0.0
	if raw != "" {
		v, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return Observation{}, false, wferrors.Wrap(wferrors.ErrCodeInvalidInput, err, "line %d: value", line)
		}
		if err := wferrors.ValidateDelta(v); err != nil {
			return Observation{}, false, wferrors.Wrap(wferrors.ErrCodeInvalidInput, err, "line %d", line)
		}
	}
	return Observation{Time: t, Value: v}, true, nil
}

// ReadObservationsCSV reads "time,value" rows. An optional header row is
// skipped. Times may be RFC 3339, "2006-01-02 15:04[:05]" or a plain date
// (interpreted as UTC); an empty value counts as zero.
func ReadObservationsCSV(r io.Reader) ([]Observation, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var obs []Observation
	for line := 1; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, wferrors.Wrap(wferrors.ErrCodeInvalidInput, err, "read csv")
		}
		o, ok, err := parseRow(line, rec)
		if err != nil {
			return nil, err
		}
		if ok {
			obs = append(obs, o)
		}
	}
	return obs, nil
}

// ReadObservationsXLSX reads "time,value" rows from the first sheet of a
// workbook, with the same rules as [ReadObservationsCSV].
func ReadObservationsXLSX(path string) ([]Observation, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, wferrors.Wrap(wferrors.ErrCodeInvalidInput, err, "open workbook %s", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, wferrors.New(wferrors.ErrCodeInvalidInput, "workbook %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, wferrors.Wrap(wferrors.ErrCodeInvalidInput, err, "read sheet %s", sheets[0])
	}

	var obs []Observation
	for i, rec := range rows {
		if len(rec) == 0 {
			continue
		}
		o, ok, err := parseRow(i+1, rec)
		if err != nil {
			return nil, err
		}
		if ok {
			obs = append(obs, o)
		}
	}
	return obs, nil
}

// ReadObservationsFile dispatches on the file extension: .xlsx goes through
// excelize, anything else is read as CSV.
func ReadObservationsFile(path string) ([]Observation, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ReadObservationsXLSX(path)
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, wferrors.Wrap(wferrors.ErrCodeFileNotFound, err, "observations %s", path)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadObservationsCSV(f)
}
