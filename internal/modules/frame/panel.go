package frame

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Panel is a (time, asset) x class table: one-hot realised quintiles or
// predicted class probabilities. Panels are immutable once built.
type Panel struct {
	keys    []Key
	classes []float64
	data    *mat.Dense
	index   map[keyID]int
}

// NewClassLabels returns the labels 0..n-1.
func NewClassLabels(n int) []float64 {
	labels := make([]float64, n)
	for i := range labels {
		labels[i] = float64(i)
	}
	return labels
}

// NewPanel builds a panel from row keys, ordered class labels and one value
// row per key. All inputs are copied.
func NewPanel(keys []Key, classes []float64, values [][]float64) (*Panel, error) {
	if len(keys) == 0 || len(classes) == 0 {
		return nil, ErrEmptyPanel
	}
	if len(values) != len(keys) {
		return nil, fmt.Errorf("%w: %d keys but %d value rows", ErrInvalidShape, len(keys), len(values))
	}

	seenClass := make(map[float64]struct{}, len(classes))
	for _, c := range classes {
		if _, dup := seenClass[c]; dup {
			return nil, fmt.Errorf("%w: duplicate class label %v", ErrInvalidShape, c)
		}
		seenClass[c] = struct{}{}
	}

	index := make(map[keyID]int, len(keys))
	flat := make([]float64, 0, len(keys)*len(classes))
	for i, k := range keys {
		if _, dup := index[k.id()]; dup {
			return nil, fmt.Errorf("%w: duplicate row %s/%s", ErrInvalidShape, k.Time.Format(time.RFC3339), k.Asset)
		}
		index[k.id()] = i
		if len(values[i]) != len(classes) {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrInvalidShape, i, len(values[i]), len(classes))
		}
		flat = append(flat, values[i]...)
	}

	return &Panel{
		keys:    append([]Key(nil), keys...),
		classes: append([]float64(nil), classes...),
		data:    mat.NewDense(len(keys), len(classes), flat),
		index:   index,
	}, nil
}

// Len returns the number of rows.
func (p *Panel) Len() int { return len(p.keys) }

// NumClasses returns the number of class columns.
func (p *Panel) NumClasses() int { return len(p.classes) }

// Classes returns a copy of the class labels.
func (p *Panel) Classes() []float64 { return append([]float64(nil), p.classes...) }

// Keys returns a copy of the row keys.
func (p *Panel) Keys() []Key { return append([]Key(nil), p.keys...) }

// Key returns the key of row i.
func (p *Panel) Key(i int) Key { return p.keys[i] }

// Row returns a copy of row i.
func (p *Panel) Row(i int) []float64 { return mat.Row(nil, i, p.data) }

// At returns the value at row i, class column j.
func (p *Panel) At(i, j int) float64 { return p.data.At(i, j) }

// Lookup returns the row index of key.
func (p *Panel) Lookup(key Key) (int, bool) {
	i, ok := p.index[key.id()]
	return i, ok
}

// Times returns the distinct timestamps in ascending order.
func (p *Panel) Times() []time.Time { return sortedTimes(p.keys) }

// Assets returns the distinct asset identifiers in ascending order.
func (p *Panel) Assets() []string { return sortedAssets(p.keys) }

// TimeGroups returns the rows of each timestamp, ascending by time.
func (p *Panel) TimeGroups() []TimeGroup { return groupByTime(p.keys) }

// SameClasses reports whether both panels carry identical class labels in
// the same order.
func (p *Panel) SameClasses(other *Panel) bool {
	return floats.Equal(p.classes, other.classes)
}

// ValidateOneHot checks that every row holds exactly one 1 and zeros elsewhere.
func (p *Panel) ValidateOneHot() error {
	for i, k := range p.keys {
		ones := 0
		for j := range p.classes {
			switch p.data.At(i, j) {
			case 1:
				ones++
			case 0:
			default:
				return p.rowError(k, "value %v is neither 0 nor 1", p.data.At(i, j))
			}
		}
		if ones != 1 {
			return p.rowError(k, "%d classes set, want exactly 1", ones)
		}
	}
	return nil
}

// ValidateDistribution checks that every row is a probability distribution:
// values in [0, 1] and a sum within tol of 1.
func (p *Panel) ValidateDistribution(tol float64) error {
	for i, k := range p.keys {
		row := p.data.RawRowView(i)
		for _, v := range row {
			if math.IsNaN(v) || v < -tol || v > 1+tol {
				return p.rowError(k, "probability %v outside [0, 1]", v)
			}
		}
		if sum := floats.Sum(row); math.Abs(sum-1) > tol {
			return p.rowError(k, "probabilities sum to %v", sum)
		}
	}
	return nil
}

func (p *Panel) rowError(k Key, format string, args ...any) error {
	return fmt.Errorf("%w: %s/%s: %s", ErrInvalidRow, k.Time.Format(time.RFC3339), k.Asset, fmt.Sprintf(format, args...))
}
