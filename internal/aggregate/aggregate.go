// Package aggregate derives small summary tables from loaded records.
//
// Every function is pure: it reads the records, never modifies them, and
// returns freshly allocated results. Empty input yields an empty, non-nil result.
package aggregate

import (
	"math"
	"sort"
	"time"

	"github.com/KaramelBytes/bikedash/internal/dataset"
)

// Group is one row of a keyed mean table over total rentals.
type Group struct {
	Key   int     `json:"key"`
	Count int     `json:"count"`
	Sum   int     `json:"sum"`
	Mean  float64 `json:"mean"`
}

// WeatherMean groups records by weather code, ascending.
func WeatherMean(recs []dataset.Record) []Group {
	return meanBy(recs, func(r dataset.Record) int { return r.Weather })
}

// HourMean groups records by hour of day, ascending.
func HourMean(recs []dataset.Record) []Group {
	return meanBy(recs, func(r dataset.Record) int { return r.Hour })
}

func meanBy(recs []dataset.Record, key func(dataset.Record) int) []Group {
	acc := map[int]*Group{}
	for _, r := range recs {
		k := key(r)
		g := acc[k]
		if g == nil {
			g = &Group{Key: k}
			acc[k] = g
		}
		g.Count++
		g.Sum += r.Total
	}
	out := make([]Group, 0, len(acc))
	for _, g := range acc {
		g.Mean = float64(g.Sum) / float64(g.Count)
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// BucketGroup is the mean of total rentals within one hour bucket.
type BucketGroup struct {
	Bucket dataset.Bucket `json:"bucket"`
	Count  int            `json:"count"`
	Sum    int            `json:"sum"`
	Mean   float64        `json:"mean"`
}

// BucketMean groups records by hour bucket. Buckets without records are
// omitted; the rest are ordered by label (Normal, Off-Peak, Peak).
func BucketMean(recs []dataset.Record) []BucketGroup {
	acc := map[dataset.Bucket]*BucketGroup{}
	for _, r := range recs {
		b := r.Bucket()
		g := acc[b]
		if g == nil {
			g = &BucketGroup{Bucket: b}
			acc[b] = g
		}
		g.Count++
		g.Sum += r.Total
	}
	out := make([]BucketGroup, 0, len(acc))
	for _, g := range acc {
		g.Mean = float64(g.Sum) / float64(g.Count)
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Bucket.String() < out[j].Bucket.String() })
	return out
}

// Pivot is a weekday by hour matrix of mean total rentals. Rows and columns
// list only the weekdays and hours present in the input; a nil cell means the
// combination has no records.
type Pivot struct {
	Weekdays []int        `json:"weekdays"`
	Hours    []int        `json:"hours"`
	Cells    [][]*float64 `json:"cells"`
}

// At returns the mean for (weekday, hour) and whether it is defined.
func (p Pivot) At(weekday, hour int) (float64, bool) {
	i := sort.SearchInts(p.Weekdays, weekday)
	j := sort.SearchInts(p.Hours, hour)
	if i >= len(p.Weekdays) || p.Weekdays[i] != weekday || j >= len(p.Hours) || p.Hours[j] != hour {
		return 0, false
	}
	if c := p.Cells[i][j]; c != nil {
		return *c, true
	}
	return 0, false
}

// WeekdayHourPivot builds the weekday x hour mean table.
func WeekdayHourPivot(recs []dataset.Record) Pivot {
	type cell struct{ sum, n int }
	acc := map[[2]int]*cell{}
	days, hours := map[int]bool{}, map[int]bool{}
	for _, r := range recs {
		k := [2]int{r.Weekday, r.Hour}
		c := acc[k]
		if c == nil {
			c = &cell{}
			acc[k] = c
		}
		c.sum += r.Total
		c.n++
		days[r.Weekday] = true
		hours[r.Hour] = true
	}
	p := Pivot{Weekdays: sortedKeys(days), Hours: sortedKeys(hours)}
	p.Cells = make([][]*float64, len(p.Weekdays))
	for i, wd := range p.Weekdays {
		p.Cells[i] = make([]*float64, len(p.Hours))
		for j, h := range p.Hours {
			if c := acc[[2]int{wd, h}]; c != nil {
				m := float64(c.sum) / float64(c.n)
				p.Cells[i][j] = &m
			}
		}
	}
	return p
}

func sortedKeys(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

// RFMRow summarizes one calendar day.
type RFMRow struct {
	Date      time.Time `json:"date"`
	Recency   int       `json:"recency"`   // days before the latest date in the collection
	Frequency int       `json:"frequency"` // records on the day
	Monetary  int       `json:"monetary"`  // total rentals on the day
}

// RFM groups records by date, ordered by date ascending.
func RFM(recs []dataset.Record) []RFMRow {
	acc := map[time.Time]*RFMRow{}
	var maxDate time.Time
	for _, r := range recs {
		row := acc[r.Date]
		if row == nil {
			row = &RFMRow{Date: r.Date}
			acc[r.Date] = row
		}
		row.Frequency++
		row.Monetary += r.Total
		if r.Date.After(maxDate) {
			maxDate = r.Date
		}
	}
	out := make([]RFMRow, 0, len(acc))
	for _, row := range acc {
		row.Recency = int(math.Round(maxDate.Sub(row.Date).Hours() / 24))
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
