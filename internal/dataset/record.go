package dataset

import "time"

// Record is one hourly observation.
type Record struct {
	Date       time.Time `json:"date"`
	Weekday    int       `json:"weekday"` // 0=Monday .. 6=Sunday
	Hour       int       `json:"hour"`
	Weather    int       `json:"weather"`
	Season     int       `json:"season,omitempty"`
	Year       int       `json:"year"` // 0=2011, 1=2012
	Temp       float64   `json:"temp,omitempty"`
	Humidity   float64   `json:"humidity"`
	Windspeed  float64   `json:"windspeed"`
	Casual     int       `json:"casual"`
	Registered int       `json:"registered"`
	Total      int       `json:"total"`
}

// Bucket returns the hour bucket of the record.
func (r Record) Bucket() Bucket { return BucketOf(r.Hour) }

// Bucket is the fixed peak/normal/off-peak label derived from hour of day.
type Bucket int

const (
	Peak Bucket = iota
	Normal
	OffPeak
)

// Buckets lists every bucket in declaration order.
var Buckets = []Bucket{Peak, Normal, OffPeak}

// BucketOf maps an hour of day to its bucket: 7-9 and 16-19 are Peak,
// 10-15 Normal, everything else Off-Peak.
func BucketOf(hour int) Bucket {
	switch {
	case hour >= 7 && hour <= 9, hour >= 16 && hour <= 19:
		return Peak
	case hour >= 10 && hour <= 15:
		return Normal
	default:
		return OffPeak
	}
}

func (b Bucket) String() string {
	switch b {
	case Peak:
		return "Peak"
	case Normal:
		return "Normal"
	default:
		return "Off-Peak"
	}
}

// MarshalText encodes the bucket as its label.
func (b Bucket) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

// WeatherLabel names a weathersit code.
func WeatherLabel(code int) string {
	switch code {
	case 1:
		return "Clear"
	case 2:
		return "Cloudy"
	case 3:
		return "Light Rain"
	case 4:
		return "Heavy Rain"
	default:
		return "Unknown"
	}
}

// WeekdayLabel names a weekday index where 0 is Monday.
func WeekdayLabel(wd int) string {
	names := [...]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	if wd < 0 || wd >= len(names) {
		return "?"
	}
	return names[wd]
}

// weekdayIndex converts a time.Weekday (Sunday=0) to a Monday-first index.
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
