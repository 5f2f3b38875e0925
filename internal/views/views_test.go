package views

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/bikedash/internal/dataset"
	"github.com/KaramelBytes/bikedash/internal/dataset/datasettest"
	"github.com/KaramelBytes/bikedash/internal/render"
)

func sampleLoader(t *testing.T) Loader {
	t.Helper()
	p := datasettest.WriteSample(t, t.TempDir(), "hour.csv")
	c := dataset.NewCache(p)
	return c.Get
}

func failingLoader(err error) Loader {
	return func() (*dataset.Dataset, error) { return nil, err }
}

func TestParse(t *testing.T) {
	cases := map[string]View{
		"about":                     About,
		" Overview ":                Overview,
		"Data Visualization":        Visualization,
		"rfm":                       RFMClustering,
		"RFM & Clustering Analysis": RFMClustering,
	}
	for in, want := range cases {
		got, err := Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := Parse("clusters")
	assert.ErrorIs(t, err, ErrUnknownView)
	assert.Equal(t, []string{"about", "overview", "visualization", "rfm"}, Slugs())
}

func TestBuild_AboutNeedsNoData(t *testing.T) {
	called := false
	load := func() (*dataset.Dataset, error) {
		called = true
		return nil, dataset.ErrDataUnavailable
	}
	p, err := Build(About, load, Options{})
	require.NoError(t, err)
	assert.False(t, called)
	assert.Equal(t, "About Dataset", p.Title)
	assert.Contains(t, p.Sections[1].Text, "freemeteo.com")
}

func TestBuild_LoadErrorsFailTheView(t *testing.T) {
	for _, sentinel := range []error{dataset.ErrDataUnavailable, dataset.ErrSchemaMismatch} {
		for _, v := range []View{Overview, Visualization, RFMClustering} {
			_, err := Build(v, failingLoader(sentinel), DefaultOptions())
			assert.True(t, errors.Is(err, sentinel), "%s: %v", v, err)
		}
	}
	_, err := Build(View(9), failingLoader(nil), DefaultOptions())
	assert.ErrorIs(t, err, ErrUnknownView)
}

func TestBuild_Overview(t *testing.T) {
	p, err := Build(Overview, sampleLoader(t), Options{HeadRows: 2})
	require.NoError(t, err)

	head, ok := p.Table("head")
	require.True(t, ok)
	assert.Len(t, head.Rows, 2)
	assert.Equal(t, "instant", head.Columns[0])

	desc, ok := p.Table("describe")
	require.True(t, ok)
	assert.Len(t, desc.Rows, 8)
	assert.Equal(t, "count", desc.Rows[0][0])
	assert.Empty(t, p.Charts())
}

func TestBuild_Visualization(t *testing.T) {
	p, err := Build(Visualization, sampleLoader(t), DefaultOptions())
	require.NoError(t, err)

	for _, col := range BoxColumns {
		c, ok := p.Chart("box_" + col)
		require.True(t, ok, col)
		assert.Equal(t, render.BoxChart, c.Kind)
		assert.Equal(t, 4, c.Box.Stats.Count)
	}

	w, ok := p.Chart("weather_mean")
	require.True(t, ok)
	assert.Equal(t, []string{"1", "2", "3"}, w.Labels)
	assert.Equal(t, []float64{60, 10, 30}, w.Values)

	wt, ok := p.Table("weather_mean")
	require.True(t, ok)
	assert.Equal(t, []string{"2", "Cloudy", "1", "10"}, wt.Rows[1])

	h, ok := p.Chart("hour_mean")
	require.True(t, ok)
	assert.Equal(t, []float64{8, 12, 22}, h.X)
	assert.Equal(t, []float64{60, 30, 10}, h.Values)

	heat, ok := p.Chart("weekday_hour")
	require.True(t, ok)
	// 2011-01-01 is a Saturday, 2011-01-02 a Sunday.
	assert.Equal(t, []string{"Sat", "Sun"}, heat.Grid.Rows)
	assert.Equal(t, []string{"8", "12", "22"}, heat.Grid.Cols)
	assert.Nil(t, heat.Grid.Cells[1][2], "no Sunday 22h record")
	require.NotNil(t, heat.Grid.Cells[0][0])
	assert.Equal(t, 50.0, *heat.Grid.Cells[0][0])
}

func TestBuild_RFM(t *testing.T) {
	p, err := Build(RFMClustering, sampleLoader(t), DefaultOptions())
	require.NoError(t, err)

	rfm, ok := p.Table("rfm")
	require.True(t, ok)
	assert.Equal(t, [][]string{
		{"2011-01-01", "1", "2", "60"},
		{"2011-01-02", "0", "2", "100"},
	}, rfm.Rows)

	b, ok := p.Chart("hour_bucket")
	require.True(t, ok)
	assert.Equal(t, []string{"Normal", "Off-Peak", "Peak"}, b.Labels)
	assert.Equal(t, []float64{30, 10, 60}, b.Values)
}

func TestBuild_RFMHeadRows(t *testing.T) {
	p, err := Build(RFMClustering, sampleLoader(t), Options{HeadRows: 1})
	require.NoError(t, err)
	rfm, _ := p.Table("rfm")
	assert.Len(t, rfm.Rows, 1)
}
