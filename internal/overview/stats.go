package overview

import (
	"math"
	"sort"
)

// BoxStats are Tukey box plot statistics: whiskers reach the most extreme
// values within 1.5 IQR of the quartiles.
type BoxStats struct {
	Count        int     `json:"count"`
	Q1           float64 `json:"q1"`
	Median       float64 `json:"median"`
	Q3           float64 `json:"q3"`
	LowerWhisker float64 `json:"lower_whisker"`
	UpperWhisker float64 `json:"upper_whisker"`
	Outliers     int     `json:"outliers"`
}

// Box computes box plot statistics, skipping NaN values.
func Box(vals []float64) BoxStats {
	sorted := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			sorted = append(sorted, v)
		}
	}
	if len(sorted) == 0 {
		return BoxStats{}
	}
	sort.Float64s(sorted)
	st := BoxStats{
		Count:  len(sorted),
		Q1:     quantile(sorted, 0.25),
		Median: quantile(sorted, 0.5),
		Q3:     quantile(sorted, 0.75),
	}
	iqr := st.Q3 - st.Q1
	lo, hi := st.Q1-1.5*iqr, st.Q3+1.5*iqr
	st.LowerWhisker, st.UpperWhisker = st.Q1, st.Q3
	for _, v := range sorted {
		if v < lo || v > hi {
			st.Outliers++
			continue
		}
		if v < st.LowerWhisker {
			st.LowerWhisker = v
		}
		if v > st.UpperWhisker {
			st.UpperWhisker = v
		}
	}
	return st
}

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		d := v - median
		if d < 0 {
			d = -d
		}
		dev[i] = d
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

// quantile uses linear interpolation between closest ranks.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
