package domain

import (
	"fmt"
	"math"
	"time"
)

// Observation is a single monthly value. A missing value is NaN.
type Observation struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// IsMissing reports whether the observation carries no value
func (o Observation) IsMissing() bool {
	return math.IsNaN(o.Value)
}

// Series is an ordered monthly time series
type Series struct {
	Name         string        `json:"name" validate:"required"`
	Observations []Observation `json:"observations"`
}

// NewSeries builds a series from parallel date and value slices
func NewSeries(name string, dates []time.Time, values []float64) (*Series, error) {
	if len(dates) != len(values) {
		return nil, fmt.Errorf("series %s: %d dates but %d values", name, len(dates), len(values))
	}
	s := &Series{Name: name, Observations: make([]Observation, len(dates))}
	for i := range dates {
		s.Observations[i] = Observation{Date: MonthStart(dates[i]), Value: values[i]}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks that dates are strictly ascending
func (s *Series) Validate() error {
	for i := 1; i < len(s.Observations); i++ {
		prev, cur := s.Observations[i-1].Date, s.Observations[i].Date
		if !cur.After(prev) {
			return fmt.Errorf("series %s: date %s not after %s", s.Name,
				cur.Format(DateLayout), prev.Format(DateLayout))
		}
	}
	return nil
}

// Len returns the number of observations
func (s *Series) Len() int {
	return len(s.Observations)
}

// Dates returns the observation dates
func (s *Series) Dates() []time.Time {
	dates := make([]time.Time, len(s.Observations))
	for i, o := range s.Observations {
		dates[i] = o.Date
	}
	return dates
}

// Values returns the observation values
func (s *Series) Values() []float64 {
	values := make([]float64, len(s.Observations))
	for i, o := range s.Observations {
		values[i] = o.Value
	}
	return values
}

// Between returns the observations inside [start, end]
func (s *Series) Between(start, end time.Time) *Series {
	out := &Series{Name: s.Name}
	for _, o := range s.Observations {
		if o.Date.Before(start) || o.Date.After(end) {
			continue
		}
		out.Observations = append(out.Observations, o)
	}
	return out
}

// Regular returns the series on a contiguous monthly calendar from its first
// to its last observation. Months without an observation are missing.
func (s *Series) Regular() *Series {
	out := &Series{Name: s.Name}
	if len(s.Observations) == 0 {
		return out
	}
	byMonth := make(map[time.Time]float64, len(s.Observations))
	for _, o := range s.Observations {
		byMonth[MonthStart(o.Date)] = o.Value
	}
	first := MonthStart(s.Observations[0].Date)
	last := MonthStart(s.Observations[len(s.Observations)-1].Date)
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		v, ok := byMonth[m]
		if !ok {
			v = math.NaN()
		}
		out.Observations = append(out.Observations, Observation{Date: m, Value: v})
	}
	return out
}

// TrimMissing drops leading and trailing missing observations. Interior
// gaps are kept.
func (s *Series) TrimMissing() *Series {
	lo, hi := 0, len(s.Observations)
	for lo < hi && s.Observations[lo].IsMissing() {
		lo++
	}
	for hi > lo && s.Observations[hi-1].IsMissing() {
		hi--
	}
	return &Series{Name: s.Name, Observations: append([]Observation(nil), s.Observations[lo:hi]...)}
}

// Missing counts the missing observations
func (s *Series) Missing() int {
	n := 0
	for _, o := range s.Observations {
		if o.IsMissing() {
			n++
		}
	}
	return n
}

// Table converts the series into a single-column table
func (s *Series) Table() *Table {
	t := NewTable(s.Dates())
	// lengths always match
	_ = t.AddColumn(s.Name, s.Values())
	return t
}

// DateLayout is the ISO layout used for every date column
const DateLayout = "2006-01-02"

// MonthStart truncates a time to the first day of its month in UTC
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthsBetween returns the number of whole months from a to b
func MonthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}
