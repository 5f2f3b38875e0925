package overview

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/bikedash/internal/dataset"
	"github.com/KaramelBytes/bikedash/internal/dataset/datasettest"
)

func loadSample(t *testing.T) *dataset.Dataset {
	t.Helper()
	p := datasettest.WriteSample(t, t.TempDir(), "hour.csv")
	ds, err := dataset.Load(p)
	require.NoError(t, err)
	return ds
}

func TestAnalyze_Sample(t *testing.T) {
	ds := loadSample(t)
	rep := Analyze(ds, DefaultOptions())

	assert.Equal(t, "hour.csv", rep.Name)
	assert.Equal(t, 4, rep.Rows)
	assert.Len(t, rep.Cols, 17)
	assert.Len(t, rep.Samples, 4)

	cnt, ok := column(rep, "cnt")
	require.True(t, ok)
	assert.Equal(t, "numeric", cnt.Kind)
	assert.Equal(t, 4, cnt.NonNull)
	assert.Equal(t, 10.0, cnt.Min)
	assert.Equal(t, 70.0, cnt.Max)
	assert.InDelta(t, 40.0, cnt.Mean, 1e-9)
	assert.InDelta(t, 40.0, cnt.Median, 1e-9)
	// sample std of 50,10,70,30
	assert.InDelta(t, math.Sqrt(2000.0/3.0), cnt.Std, 1e-9)

	day, ok := column(rep, "dteday")
	require.True(t, ok)
	assert.Equal(t, "datetime", day.Kind)
	assert.Equal(t, 2, day.Unique)
	require.NotEmpty(t, day.TopValues)
	assert.Equal(t, 2, day.TopValues[0].Count)
}

func TestDescribeTable(t *testing.T) {
	rep := Analyze(loadSample(t), DefaultOptions())
	header, rows := rep.DescribeTable()
	require.Len(t, rows, 8)
	assert.Equal(t, "", header[0])
	assert.NotContains(t, header, "dteday")

	col := -1
	for i, h := range header {
		if h == "cnt" {
			col = i
		}
	}
	require.Positive(t, col)
	assert.Equal(t, []string{"count", "4"}, []string{rows[0][0], rows[0][col]})
	assert.Equal(t, "40", rows[1][col])
	assert.Equal(t, "10", rows[3][col])
	assert.Equal(t, "70", rows[7][col])
}

func TestMarkdown_Sections(t *testing.T) {
	md := Analyze(loadSample(t), DefaultOptions()).Markdown()
	for _, want := range []string{"[DATASET SUMMARY]", "Rows: 4", "[SCHEMA]", "- cnt: numeric", "[HEAD AND SAMPLE ROWS]", "2011-01-02"} {
		assert.Contains(t, md, want)
	}
	assert.NotContains(t, md, "[NOTES]")
}

func TestNumericSummary_Outliers(t *testing.T) {
	vals := []float64{10, 11, 9, 10, 12, 10, 11, 9, 10, 500}
	s := numericSummary("x", vals, Options{Outliers: true, OutlierThreshold: 3.5})
	assert.Equal(t, 1, s.OutliersCount)
	assert.Greater(t, s.OutliersMaxAbsZ, 3.5)

	s = numericSummary("x", []float64{1, math.NaN(), 3}, DefaultOptions())
	assert.Equal(t, 1, s.Missing)
	assert.Equal(t, 2, s.NonNull)
	assert.Zero(t, s.OutlierThreshold, "too few values for outlier detection")
}

func TestBox(t *testing.T) {
	st := Box([]float64{1, 2, 3, 4, 5, 6, 7, 8, 100, math.NaN()})
	assert.Equal(t, 9, st.Count)
	assert.Equal(t, 3.0, st.Q1)
	assert.Equal(t, 5.0, st.Median)
	assert.Equal(t, 7.0, st.Q3)
	assert.Equal(t, 1.0, st.LowerWhisker)
	assert.Equal(t, 8.0, st.UpperWhisker)
	assert.Equal(t, 1, st.Outliers)

	assert.Equal(t, BoxStats{}, Box(nil))
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "40", FormatFloat(40))
	assert.Equal(t, "0.25", FormatFloat(0.25))
	assert.Equal(t, "0.333333", FormatFloat(1.0/3))
	assert.Equal(t, "NaN", FormatFloat(math.NaN()))
	assert.True(t, strings.HasPrefix(FormatFloat(-2.5), "-"))
}

func column(r *Report, name string) (ColumnSummary, bool) {
	for _, c := range r.Cols {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnSummary{}, false
}

func TestAnalyze_HeaderOnly(t *testing.T) {
	p := datasettest.Write(t, t.TempDir(), "hour.csv", datasettest.Header+"\n")
	ds, err := dataset.Load(p)
	require.NoError(t, err)

	rep := Analyze(ds, DefaultOptions())
	assert.Equal(t, 0, rep.Rows)
	assert.Len(t, rep.Cols, 17)
	assert.Empty(t, rep.Samples)
	assert.Contains(t, rep.Warnings, "dataset has no rows")
	cnt, ok := column(rep, "cnt")
	require.True(t, ok)
	assert.Equal(t, "numeric", cnt.Kind)
	assert.Equal(t, 0, cnt.NonNull)
}
