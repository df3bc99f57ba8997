package frame

import (
	"fmt"
	"time"

	"github.com/aristath/quintile/pkg/formulas"
)

// Series is one value per timestamp, ascending by time.
type Series struct {
	times  []time.Time
	values []float64
}

// NewSeries builds a series from strictly ascending times.
func NewSeries(times []time.Time, values []float64) (*Series, error) {
	if len(times) != len(values) {
		return nil, fmt.Errorf("%w: %d times but %d values", ErrInvalidShape, len(times), len(values))
	}
	for i := 1; i < len(times); i++ {
		if !times[i-1].Before(times[i]) {
			return nil, fmt.Errorf("%w: times must be strictly ascending", ErrInvalidShape)
		}
	}
	return &Series{
		times:  append([]time.Time(nil), times...),
		values: append([]float64(nil), values...),
	}, nil
}

// Len returns the number of timestamps.
func (s *Series) Len() int { return len(s.times) }

// Times returns a copy of the timestamps.
func (s *Series) Times() []time.Time { return append([]time.Time(nil), s.times...) }

// Values returns a copy of the values.
func (s *Series) Values() []float64 { return append([]float64(nil), s.values...) }

// At returns the timestamp and value at position i.
func (s *Series) At(i int) (time.Time, float64) { return s.times[i], s.values[i] }

// Value returns the value recorded at t.
func (s *Series) Value(t time.Time) (float64, bool) {
	i, ok := searchTime(s.times, t)
	if !ok {
		return 0, false
	}
	return s.values[i], true
}

// Mean averages the series, skipping NaN.
func (s *Series) Mean() float64 { return formulas.NanMean(s.values) }
