// Package dataset loads the hourly bike-rental CSV into memory.
package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/hashicorp/go-multierror"
)

// DefaultPath is the dashboard's data file, relative to the working directory.
const DefaultPath = "df_hour_cleaned.csv"

// RequiredColumns must all be present in the CSV header.
var RequiredColumns = []string{"dteday", "hr", "weathersit", "windspeed", "hum", "casual", "registered", "cnt", "yr"}

// Numeric columns are read as floats so that "8" and "8.0" both load; integer
// columns are checked for integrality per row.
var columnTypes = map[string]series.Type{
	"dteday":     series.String,
	"hr":         series.Float,
	"weathersit": series.Float,
	"windspeed":  series.Float,
	"hum":        series.Float,
	"casual":     series.Float,
	"registered": series.Float,
	"cnt":        series.Float,
	"yr":         series.Float,
	"temp":       series.Float,
	"season":     series.Float,
}

const maxRowErrors = 10

// Dataset is the loaded, read-only record collection.
type Dataset struct {
	Path     string
	Records  []Record
	Frame    dataframe.DataFrame
	LoadedAt time.Time
	maxDate  time.Time
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.Records) }

// MaxDate returns the latest record date, or the zero time for an empty dataset.
func (d *Dataset) MaxDate() time.Time { return d.maxDate }

// Columns returns the CSV header in file order.
func (d *Dataset) Columns() []string { return d.Frame.Names() }

// Head returns the first n rows of the raw frame formatted as strings.
func (d *Dataset) Head(n int) [][]string {
	if n > d.Frame.Nrow() {
		n = d.Frame.Nrow()
	}
	if n <= 0 {
		return nil
	}
	names := d.Frame.Names()
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = make([]string, len(names))
	}
	for j, name := range names {
		s := d.Frame.Col(name)
		for i := 0; i < n; i++ {
			el := s.Elem(i)
			switch {
			case el.IsNA():
				rows[i][j] = ""
			case s.Type() == series.Float:
				rows[i][j] = strconv.FormatFloat(el.Float(), 'f', -1, 64)
			default:
				rows[i][j] = el.String()
			}
		}
	}
	return rows
}

// Load reads the CSV at path. It fails with ErrDataUnavailable when the file
// cannot be read and ErrSchemaMismatch when columns are missing or a row does
// not fit the schema. Header names are trimmed of surrounding whitespace. A
// file holding only a valid header loads as an empty dataset.
func Load(path string) (*Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrDataUnavailable, path, err)
	}

	header, empty, err := readHeader(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSchemaMismatch, path, err)
	}
	names := make([]string, len(header))
	for i, h := range header {
		names[i] = strings.TrimSpace(h)
	}
	if err := checkColumns(names); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSchemaMismatch, path, err)
	}
	if empty {
		return &Dataset{Path: path, Records: []Record{}, Frame: emptyFrame(names), LoadedAt: time.Now()}, nil
	}

	types := make(map[string]series.Type, 2*len(header))
	for i, h := range header {
		if t, ok := columnTypes[names[i]]; ok {
			types[h] = t
			types[names[i]] = t
		}
	}
	df := dataframe.ReadCSV(bytes.NewReader(raw), dataframe.WithTypes(types))
	if df.Err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrDataUnavailable, path, df.Err)
	}
	for i, got := range df.Names() {
		if i < len(names) && got != names[i] {
			df = df.Rename(names[i], got)
		}
	}
	if df.Err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSchemaMismatch, path, df.Err)
	}
	if err := checkColumns(df.Names()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSchemaMismatch, path, err)
	}

	recs, err := toRecords(df)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSchemaMismatch, path, err)
	}
	ds := &Dataset{Path: path, Records: recs, Frame: df, LoadedAt: time.Now()}
	for _, r := range recs {
		if r.Date.After(ds.maxDate) {
			ds.maxDate = r.Date
		}
	}
	return ds, nil
}

// readHeader returns the first CSV record and whether no data row follows it.
func readHeader(raw []byte) (header []string, empty bool, err error) {
	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1
	header, err = r.Read()
	if errors.Is(err, io.EOF) {
		return nil, false, errors.New("file has no header")
	}
	if err != nil {
		return nil, false, fmt.Errorf("header: %w", err)
	}
	_, err = r.Read()
	return header, errors.Is(err, io.EOF), nil
}

// emptyFrame builds a zero-row frame with the given columns.
func emptyFrame(names []string) dataframe.DataFrame {
	cols := make([]series.Series, len(names))
	for i, n := range names {
		t, ok := columnTypes[n]
		if !ok {
			t = series.String
		}
		cols[i] = series.New([]string{}, t, n)
	}
	return dataframe.New(cols...)
}

// checkColumns expects names already trimmed.
func checkColumns(names []string) error {
	have := make(map[string]bool, len(names))
	var merr *multierror.Error
	for _, n := range names {
		if have[n] {
			merr = multierror.Append(merr, fmt.Errorf("duplicate column %q", n))
		}
		have[n] = true
	}
	for _, c := range RequiredColumns {
		if !have[c] {
			merr = multierror.Append(merr, fmt.Errorf("missing column %q", c))
		}
	}
	return merr.ErrorOrNil()
}

func toRecords(df dataframe.DataFrame) ([]Record, error) {
	n := df.Nrow()
	rr := &rowReader{floats: map[string][]float64{}}
	for _, name := range df.Names() {
		if t, ok := columnTypes[name]; ok && t == series.Float {
			rr.floats[name] = df.Col(name).Float()
		}
	}
	dates := df.Col("dteday").Records()

	recs := make([]Record, 0, n)
	var merr *multierror.Error
	for i := 0; i < n; i++ {
		rr.reset(i)
		rec := Record{
			Hour:       rr.int("hr", 0, 23),
			Weather:    rr.int("weathersit", 1, 4),
			Year:       rr.int("yr", 0, 1),
			Humidity:   rr.float("hum"),
			Windspeed:  rr.float("windspeed"),
			Casual:     rr.int("casual", 0, math.MaxInt32),
			Registered: rr.int("registered", 0, math.MaxInt32),
			Total:      rr.int("cnt", 0, math.MaxInt32),
			Temp:       rr.optFloat("temp"),
			Season:     int(rr.optFloat("season")),
		}
		if rr.err == nil {
			d, err := parseDate(dates[i])
			if err != nil {
				rr.err = err
			}
			rec.Date = d
			rec.Weekday = weekdayIndex(d)
		}
		if rr.err == nil && rec.Total != rec.Casual+rec.Registered {
			rr.err = fmt.Errorf("cnt=%d does not equal casual+registered=%d", rec.Total, rec.Casual+rec.Registered)
		}
		if rr.err != nil {
			merr = multierror.Append(merr, fmt.Errorf("row %d: %w", i+1, rr.err))
			if merr.Len() >= maxRowErrors {
				merr = multierror.Append(merr, fmt.Errorf("further row errors omitted"))
				break
			}
			continue
		}
		recs = append(recs, rec)
	}
	if err := merr.ErrorOrNil(); err != nil {
		return nil, err
	}
	return recs, nil
}

// rowReader pulls typed values out of float columns for one row and keeps the
// first conversion error.
type rowReader struct {
	floats map[string][]float64
	i      int
	err    error
}

func (r *rowReader) reset(i int) {
	r.i = i
	r.err = nil
}

func (r *rowReader) int(name string, lo, hi int) int {
	if r.err != nil {
		return 0
	}
	v, ok := r.value(name)
	if !ok {
		return 0
	}
	if math.IsNaN(v) || v != math.Trunc(v) {
		r.err = fmt.Errorf("%s=%v is not an integer", name, v)
		return 0
	}
	n := int(v)
	if n < lo || n > hi {
		r.err = fmt.Errorf("%s=%d outside [%d, %d]", name, n, lo, hi)
		return 0
	}
	return n
}

func (r *rowReader) float(name string) float64 {
	if r.err != nil {
		return 0
	}
	v, ok := r.value(name)
	if !ok {
		return 0
	}
	if math.IsNaN(v) {
		r.err = fmt.Errorf("%s is empty or not a number", name)
		return 0
	}
	return v
}

func (r *rowReader) value(name string) (float64, bool) {
	col, ok := r.floats[name]
	if !ok || r.i >= len(col) {
		r.err = fmt.Errorf("column %q is not numeric", name)
		return 0, false
	}
	return col[r.i], true
}

func (r *rowReader) optFloat(name string) float64 {
	col, ok := r.floats[name]
	if !ok || r.err != nil || math.IsNaN(col[r.i]) {
		return 0
	}
	return col[r.i]
}

var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339, "1/2/2006", "2006/01/02"}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("dteday=%q is not a date", s)
}
