// Package overview computes column-level descriptive statistics for the loaded dataset.
package overview

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/series"

	"github.com/KaramelBytes/bikedash/internal/dataset"
)

// Options controls the summary.
type Options struct {
	// SampleRows determines how many example rows to include in the report.
	SampleRows int
	// Outlier detection via robust Z-score (MAD). If Outliers is true, counts |z|>threshold.
	Outliers         bool
	OutlierThreshold float64
}

// DefaultOptions samples five rows and flags outliers above |z| 3.5.
func DefaultOptions() Options {
	return Options{SampleRows: 5, Outliers: true, OutlierThreshold: 3.5}
}

// Report is a markdown-friendly summary of the dataset.
type Report struct {
	Name     string          `json:"name"`
	Rows     int             `json:"rows"`
	Header   []string        `json:"header"`
	Cols     []ColumnSummary `json:"columns"`
	Samples  [][]string      `json:"samples"`
	Warnings []string        `json:"warnings,omitempty"`
}

// ColumnSummary captures inferred kind and statistics per column.
type ColumnSummary struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"` // numeric|datetime|categorical
	NonNull int    `json:"non_null"`
	Missing int    `json:"missing"`
	Unique  int    `json:"unique,omitempty"`
	// Numeric stats
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	// Outliers (robust Z via MAD)
	OutliersCount    int     `json:"outliers_count,omitempty"`
	OutliersMaxAbsZ  float64 `json:"outliers_max_abs_z,omitempty"`
	OutlierThreshold float64 `json:"outlier_threshold,omitempty"`
	// Categorical top values
	TopValues []CategoryCount `json:"top_values,omitempty"`
}

// CategoryCount is a categorical value and how often it occurs.
type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Analyze summarizes every column of the dataset frame.
func Analyze(ds *dataset.Dataset, opt Options) *Report {
	rep := &Report{Name: filepath.Base(ds.Path), Rows: ds.Frame.Nrow(), Header: ds.Columns()}
	sampleRows := opt.SampleRows
	if sampleRows <= 0 {
		sampleRows = 5
	}
	rep.Samples = ds.Head(sampleRows)

	for _, name := range ds.Columns() {
		s := ds.Frame.Col(name)
		switch s.Type() {
		case series.Float, series.Int:
			rep.Cols = append(rep.Cols, numericSummary(name, s.Float(), opt))
		default:
			rep.Cols = append(rep.Cols, textSummary(name, s.Records(), s.IsNaN()))
		}
	}
	if rep.Rows == 0 {
		rep.Warnings = append(rep.Warnings, "dataset has no rows")
	}
	return rep
}

func numericSummary(name string, raw []float64, opt Options) ColumnSummary {
	s := ColumnSummary{Name: name, Kind: "numeric"}
	vals := make([]float64, 0, len(raw))
	// Welford
	var n int
	var mean, m2 float64
	for _, x := range raw {
		if math.IsNaN(x) {
			s.Missing++
			continue
		}
		vals = append(vals, x)
		n++
		delta := x - mean
		mean += delta / float64(n)
		m2 += delta * (x - mean)
	}
	s.NonNull = n
	if n == 0 {
		return s
	}
	s.Mean = mean
	if n > 1 {
		s.Std = math.Sqrt(m2 / float64(n-1))
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.Q1 = quantile(sorted, 0.25)
	s.Median = quantile(sorted, 0.5)
	s.Q3 = quantile(sorted, 0.75)

	if opt.Outliers && len(vals) >= 8 {
		median, mad := medianMAD(vals)
		thr := opt.OutlierThreshold
		if thr <= 0 {
			thr = 3.5
		}
		var cnt int
		maxAbsZ := 0.0
		if mad > 0 {
			for _, v := range vals {
				az := math.Abs(0.6745 * (v - median) / mad)
				if az > thr {
					cnt++
				}
				if az > maxAbsZ {
					maxAbsZ = az
				}
			}
		}
		s.OutliersCount = cnt
		s.OutliersMaxAbsZ = maxAbsZ
		s.OutlierThreshold = thr
	}
	return s
}

func textSummary(name string, vals []string, nan []bool) ColumnSummary {
	s := ColumnSummary{Name: name}
	cats := map[string]int{}
	dt := 0
	for i, v := range vals {
		v = strings.TrimSpace(v)
		if nan[i] || v == "" {
			s.Missing++
			continue
		}
		s.NonNull++
		if _, ok := parseTimeMaybe(v); ok {
			dt++
		}
		if len(cats) <= 10000 { // guard memory
			cats[v]++
		}
	}
	if s.NonNull > 0 && dt == s.NonNull {
		s.Kind = "datetime"
	} else {
		s.Kind = "categorical"
	}
	s.Unique = len(cats)
	tops := make([]CategoryCount, 0, len(cats))
	for k, v := range cats {
		tops = append(tops, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if len(tops) > 8 {
		tops = tops[:8]
	}
	s.TopValues = tops
	return s
}

// DescribeTable lays numeric summaries out as rows of statistics by column,
// the shape of a dataframe describe().
func (r *Report) DescribeTable() (header []string, rows [][]string) {
	header = []string{""}
	var nums []ColumnSummary
	for _, c := range r.Cols {
		if c.Kind == "numeric" {
			nums = append(nums, c)
			header = append(header, c.Name)
		}
	}
	stats := []struct {
		label string
		get   func(ColumnSummary) float64
	}{
		{"count", func(c ColumnSummary) float64 { return float64(c.NonNull) }},
		{"mean", func(c ColumnSummary) float64 { return c.Mean }},
		{"std", func(c ColumnSummary) float64 { return c.Std }},
		{"min", func(c ColumnSummary) float64 { return c.Min }},
		{"25%", func(c ColumnSummary) float64 { return c.Q1 }},
		{"50%", func(c ColumnSummary) float64 { return c.Median }},
		{"75%", func(c ColumnSummary) float64 { return c.Q3 }},
		{"max", func(c ColumnSummary) float64 { return c.Max }},
	}
	for _, st := range stats {
		row := []string{st.label}
		for _, c := range nums {
			row = append(row, FormatFloat(st.get(c)))
		}
		rows = append(rows, row)
	}
	return header, rows
}

// FormatFloat renders v with up to six significant decimals and no trailing zeros.
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	s := strconv.FormatFloat(v, 'f', 6, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// Markdown renders a compact report suitable for a terminal or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(r.Cols)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", safeName(c.Name), c.Kind, c.NonNull, missPct))
		switch c.Kind {
		case "numeric":
			b.WriteString(fmt.Sprintf(" — min %.4g, max %.4g, mean %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Std))
			if c.OutlierThreshold > 0 {
				b.WriteString(fmt.Sprintf("; outliers: %d above |z|>%.1f", c.OutliersCount, c.OutlierThreshold))
				if c.OutliersMaxAbsZ > 0 {
					b.WriteString(fmt.Sprintf(" (max |z|≈%.2f)", c.OutliersMaxAbsZ))
				}
			}
		case "categorical", "datetime":
			if len(c.TopValues) > 0 {
				b.WriteString(" — top: ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
				}
				if c.Unique > len(c.TopValues) {
					b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
				}
			}
		}
		b.WriteString("\n")
	}
	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		b.WriteString(markdownRow(r.Header))
		sep := make([]string, len(r.Header))
		for i := range sep {
			sep[i] = "---"
		}
		b.WriteString(markdownRow(sep))
		for _, row := range r.Samples {
			b.WriteString(markdownRow(row))
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func markdownRow(cells []string) string {
	var b strings.Builder
	b.WriteString("| ")
	for i, c := range cells {
		if i > 0 {
			b.WriteString(" | ")
		}
		if len(c) > 80 {
			c = c[:77] + "..."
		}
		b.WriteString(safeVal(c))
	}
	b.WriteString(" |\n")
	return b.String()
}

func parseTimeMaybe(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
		"2006-01-02 15:04", "2006-01-02 15:04:05",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}
func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
