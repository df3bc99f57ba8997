package frame

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/aristath/quintile/pkg/formulas"
)

// WeightTable holds portfolio weights: one row per timestamp (ascending),
// one column per asset (ascending). A pair with no input row is NaN.
type WeightTable struct {
	times  []time.Time
	assets []string
	data   *mat.Dense
}

// NewWeightTable builds a table from strictly ascending times, strictly
// ascending assets and one value row per time.
func NewWeightTable(times []time.Time, assets []string, values [][]float64) (*WeightTable, error) {
	if len(times) == 0 || len(assets) == 0 {
		return nil, ErrEmptyPanel
	}
	if len(values) != len(times) {
		return nil, fmt.Errorf("%w: %d times but %d value rows", ErrInvalidShape, len(times), len(values))
	}
	for i := 1; i < len(times); i++ {
		if !times[i-1].Before(times[i]) {
			return nil, fmt.Errorf("%w: times must be strictly ascending", ErrInvalidShape)
		}
	}
	for j := 1; j < len(assets); j++ {
		if assets[j-1] >= assets[j] {
			return nil, fmt.Errorf("%w: assets must be strictly ascending, %q follows %q", ErrInvalidShape, assets[j], assets[j-1])
		}
	}

	flat := make([]float64, 0, len(times)*len(assets))
	for i, row := range values {
		if len(row) != len(assets) {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrInvalidShape, i, len(row), len(assets))
		}
		flat = append(flat, row...)
	}

	return &WeightTable{
		times:  append([]time.Time(nil), times...),
		assets: append([]string(nil), assets...),
		data:   mat.NewDense(len(times), len(assets), flat),
	}, nil
}

// Unstack pivots one value per (time, asset) key into a time x asset table.
// Pairs that never appear are NaN.
func Unstack(keys []Key, values []float64) (*WeightTable, error) {
	if len(keys) != len(values) {
		return nil, fmt.Errorf("%w: %d keys but %d values", ErrInvalidShape, len(keys), len(values))
	}
	if len(keys) == 0 {
		return nil, ErrEmptyPanel
	}

	times := sortedTimes(keys)
	assets := sortedAssets(keys)
	col := make(map[string]int, len(assets))
	for j, a := range assets {
		col[a] = j
	}

	data := mat.NewDense(len(times), len(assets), nil)
	for i := 0; i < len(times); i++ {
		for j := 0; j < len(assets); j++ {
			data.Set(i, j, math.NaN())
		}
	}
	for n, k := range keys {
		i, _ := searchTime(times, k.Time)
		data.Set(i, col[k.Asset], values[n])
	}

	return &WeightTable{times: times, assets: assets, data: data}, nil
}

// Rows returns the number of timestamps.
func (w *WeightTable) Rows() int { return len(w.times) }

// Cols returns the number of assets.
func (w *WeightTable) Cols() int { return len(w.assets) }

// Times returns a copy of the row timestamps.
func (w *WeightTable) Times() []time.Time { return append([]time.Time(nil), w.times...) }

// Assets returns a copy of the column asset identifiers.
func (w *WeightTable) Assets() []string { return append([]string(nil), w.assets...) }

// At returns the weight at row i, column j.
func (w *WeightTable) At(i, j int) float64 { return w.data.At(i, j) }

// Row returns a copy of row i.
func (w *WeightTable) Row(i int) []float64 { return mat.Row(nil, i, w.data) }

// SetRow overwrites row i. len(row) must equal Cols.
func (w *WeightTable) SetRow(i int, row []float64) { w.data.SetRow(i, row) }

// RowSum returns the signed sum of row i, skipping NaN.
func (w *WeightTable) RowSum(i int) float64 { return formulas.NanSum(w.data.RawRowView(i)) }

// Weight returns the weight of asset at t.
func (w *WeightTable) Weight(t time.Time, asset string) (float64, bool) {
	i, ok := searchTime(w.times, t)
	if !ok {
		return 0, false
	}
	j := sort.SearchStrings(w.assets, asset)
	if j >= len(w.assets) || w.assets[j] != asset {
		return 0, false
	}
	return w.data.At(i, j), true
}

// Positions returns the non-zero finite weights at t keyed by asset.
func (w *WeightTable) Positions(t time.Time) map[string]float64 {
	i, ok := searchTime(w.times, t)
	if !ok {
		return nil
	}
	positions := make(map[string]float64)
	for j, asset := range w.assets {
		v := w.data.At(i, j)
		if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		positions[asset] = v
	}
	return positions
}
