package views

import (
	"fmt"
	"strconv"

	"github.com/KaramelBytes/bikedash/internal/aggregate"
	"github.com/KaramelBytes/bikedash/internal/dataset"
	"github.com/KaramelBytes/bikedash/internal/overview"
	"github.com/KaramelBytes/bikedash/internal/render"
)

// Loader returns the shared dataset. dataset.Default satisfies it.
type Loader func() (*dataset.Dataset, error)

// Options tune page contents.
type Options struct {
	// HeadRows is the number of rows shown in table previews.
	HeadRows int
}

// DefaultOptions shows five rows, like a dataframe head().
func DefaultOptions() Options { return Options{HeadRows: 5} }

// BoxColumns are the columns drawn as box plots on the visualization page.
var BoxColumns = []string{"cnt", "casual", "registered", "windspeed", "hum"}

// Build assembles the page for v. Only data views call load, and each runs
// just the aggregations it shows. A load error fails the whole page.
func Build(v View, load Loader, opt Options) (*render.Page, error) {
	if opt.HeadRows <= 0 {
		opt.HeadRows = DefaultOptions().HeadRows
	}
	if v == About {
		return aboutPage(), nil
	}
	if v < About || v > RFMClustering {
		return nil, fmt.Errorf("%w: %d", ErrUnknownView, int(v))
	}
	ds, err := load()
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", v.Slug(), err)
	}
	switch v {
	case Overview:
		return overviewPage(ds, opt), nil
	case Visualization:
		return visualizationPage(ds), nil
	default:
		return rfmPage(ds, opt), nil
	}
}

func newPage(v View) *render.Page {
	return &render.Page{Slug: v.Slug(), Title: v.Title()}
}

func aboutPage() *render.Page {
	p := newPage(About)
	p.Sections = []render.Section{
		{Text: "This dataset records bike rentals from the Capital Bikeshare system in Washington D.C., USA, " +
			"over 2011 and 2012. Riders pick up a bike at one station and return it at another."},
		{Heading: "Dataset information", Text: "" +
			"- Source: Capital Bikeshare system, Washington D.C., USA.\n" +
			"- Period: 2011 to 2012.\n" +
			"- Structure: one row per hour with weather and season information, rental counts split into " +
			"casual and registered riders, temperature, humidity and wind speed.\n" +
			"- Weather source: freemeteo.com.\n" +
			"- Uses: rental patterns by time and weather, RFM analysis per day, and grouping of hours " +
			"into peak, normal and off-peak by rental volume."},
	}
	return p
}

func overviewPage(ds *dataset.Dataset, opt Options) *render.Page {
	rep := overview.Analyze(ds, overview.Options{SampleRows: opt.HeadRows})
	descCols, descRows := rep.DescribeTable()

	p := newPage(Overview)
	p.Sections = []render.Section{
		{Text: fmt.Sprintf("%d rows, %d columns.", ds.Len(), len(ds.Columns()))},
		{Heading: "First rows", Table: &render.Table{
			ID: "head", Title: "First rows of the dataset",
			Columns: ds.Columns(), Rows: ds.Head(opt.HeadRows),
		}},
		{Heading: "Descriptive statistics", Table: &render.Table{
			ID: "describe", Title: "Descriptive statistics",
			Columns: descCols, Rows: descRows,
		}},
	}
	return p
}

func visualizationPage(ds *dataset.Dataset) *render.Page {
	p := newPage(Visualization)

	p.Sections = append(p.Sections, render.Section{Heading: "Box plots of the main variables"})
	for _, col := range BoxColumns {
		vals := ds.Frame.Col(col).Float()
		p.Sections = append(p.Sections, render.Section{Chart: &render.Chart{
			ID: "box_" + col, Kind: render.BoxChart, Title: "Boxplot of " + col,
			Box: &render.BoxSeries{Name: col, Values: vals, Stats: overview.Box(vals)},
		}})
	}

	weather := aggregate.WeatherMean(ds.Records)
	wt := &render.Table{
		ID: "weather_mean", Title: "Mean rentals by weather",
		Columns: []string{"weathersit", "weather", "records", "mean_cnt"},
	}
	wc := &render.Chart{
		ID: "weather_mean", Kind: render.BarChart, Title: "Effect of weather on bike rentals",
		XLabel: "Weather (1=Clear, 2=Cloudy, 3=Rain, 4=Storm)", YLabel: "Mean rentals per hour",
	}
	for _, g := range weather {
		wt.Rows = append(wt.Rows, []string{
			strconv.Itoa(g.Key), dataset.WeatherLabel(g.Key), strconv.Itoa(g.Count), overview.FormatFloat(g.Mean),
		})
		wc.Labels = append(wc.Labels, strconv.Itoa(g.Key))
		wc.Values = append(wc.Values, g.Mean)
	}
	p.Sections = append(p.Sections,
		render.Section{Heading: "Effect of weather on bike rentals", Chart: wc},
		render.Section{Table: wt},
	)

	hours := aggregate.HourMean(ds.Records)
	ht := &render.Table{ID: "hour_mean", Title: "Mean rentals by hour", Columns: []string{"hr", "records", "mean_cnt"}}
	hc := &render.Chart{
		ID: "hour_mean", Kind: render.LineChart, Title: "Rental demand by hour of day",
		XLabel: "Hour of day", YLabel: "Mean rentals",
	}
	for _, g := range hours {
		ht.Rows = append(ht.Rows, []string{strconv.Itoa(g.Key), strconv.Itoa(g.Count), overview.FormatFloat(g.Mean)})
		hc.Labels = append(hc.Labels, strconv.Itoa(g.Key))
		hc.X = append(hc.X, float64(g.Key))
		hc.Values = append(hc.Values, g.Mean)
	}
	p.Sections = append(p.Sections,
		render.Section{Heading: "Rental demand by hour of day", Chart: hc},
		render.Section{Table: ht},
	)

	pivot := aggregate.WeekdayHourPivot(ds.Records)
	grid := &render.Grid{Cells: pivot.Cells}
	for _, wd := range pivot.Weekdays {
		grid.Rows = append(grid.Rows, dataset.WeekdayLabel(wd))
	}
	for _, h := range pivot.Hours {
		grid.Cols = append(grid.Cols, strconv.Itoa(h))
	}
	p.Sections = append(p.Sections, render.Section{
		Heading: "Mean rentals by weekday and hour",
		Chart: &render.Chart{
			ID: "weekday_hour", Kind: render.HeatmapChart, Title: "Mean rentals by weekday and hour",
			XLabel: "Hour of day", YLabel: "Weekday", Grid: grid,
		},
	})
	return p
}

func rfmPage(ds *dataset.Dataset, opt Options) *render.Page {
	p := newPage(RFMClustering)

	rows := aggregate.RFM(ds.Records)
	rt := &render.Table{
		ID: "rfm", Title: "RFM table",
		Columns: []string{"dteday", "Recency", "Frequency", "Monetary"},
	}
	for i, r := range rows {
		if i == opt.HeadRows {
			break
		}
		rt.Rows = append(rt.Rows, []string{
			r.Date.Format("2006-01-02"), strconv.Itoa(r.Recency), strconv.Itoa(r.Frequency), strconv.Itoa(r.Monetary),
		})
	}

	buckets := aggregate.BucketMean(ds.Records)
	bt := &render.Table{ID: "hour_bucket", Title: "Mean rentals by hour category", Columns: []string{"hour_category", "records", "mean_cnt"}}
	bc := &render.Chart{
		ID: "hour_bucket", Kind: render.BarChart, Title: "Mean rentals by hour category",
		XLabel: "Hour category", YLabel: "Mean rentals",
	}
	for _, b := range buckets {
		bt.Rows = append(bt.Rows, []string{b.Bucket.String(), strconv.Itoa(b.Count), overview.FormatFloat(b.Mean)})
		bc.Labels = append(bc.Labels, b.Bucket.String())
		bc.Values = append(bc.Values, b.Mean)
	}

	p.Sections = []render.Section{
		{Heading: "RFM analysis", Text: fmt.Sprintf("%d days; recency counts days before %s.", len(rows), ds.MaxDate().Format("2006-01-02"))},
		{Table: rt},
		{Heading: "Hour category clustering", Text: "Peak: 7-9 and 16-19. Normal: 10-15. Off-Peak: all other hours.", Chart: bc},
		{Table: bt},
	}
	return p
}
