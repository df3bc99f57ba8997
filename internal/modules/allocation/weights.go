// Package allocation turns predicted quintile probabilities into portfolio
// weights. Each class gets a signed tilt that grows toward the extremes, the
// expected tilt of each asset becomes its raw weight, and every timestamp is
// normalized to sum to one, optionally after a cutoff and a position cap.
package allocation

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"

	"github.com/aristath/quintile/internal/modules/frame"
	"github.com/aristath/quintile/internal/utils"
	"github.com/aristath/quintile/pkg/formulas"
)

// TiltCoefficients returns (label - median(labels))^(2k-1) per class.
// Callers must pass k >= 1.
func TiltCoefficients(labels []float64, k int) []float64 {
	med := formulas.Median(labels)
	exp := float64(2*k - 1)

	tilt := make([]float64, len(labels))
	for i, l := range labels {
		tilt[i] = math.Pow(l-med, exp)
	}
	return tilt
}

// Allocator converts prediction panels into weight tables.
type Allocator struct {
	log zerolog.Logger
}

// NewAllocator creates a new weight allocator.
func NewAllocator(log zerolog.Logger) *Allocator {
	return &Allocator{
		log: log.With().Str("component", "weight_allocator").Logger(),
	}
}

// Allocate converts predictions without logging.
func Allocate(prediction *frame.Panel, opts Options) (*frame.WeightTable, error) {
	return NewAllocator(zerolog.Nop()).Allocate(prediction, opts)
}

// Allocate returns one row of weights per timestamp and one column per asset.
// Rows sum to one unless a zero row sum was handled by opts.ZeroSum.
func (a *Allocator) Allocate(prediction *frame.Panel, opts Options) (*frame.WeightTable, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	k := int(opts.K)
	policy := opts.policy()

	timer := utils.NewTimer("allocate_weights", a.log)

	a.log.Debug().
		Int("rows", prediction.Len()).
		Int("classes", prediction.NumClasses()).
		Int("k", k).
		Float64("cutoff", opts.Cutoff).
		Int("max_positions", opts.MaxPositions).
		Msg("Allocating weights from predictions")

	tilt := TiltCoefficients(prediction.Classes(), k)
	for i, c := range tilt {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, fmt.Errorf("%w: k=%d overflows the tilt of class %v", ErrInvalidParameter, k, prediction.Classes()[i])
		}
	}
	raw := make([]float64, prediction.Len())
	for i := range raw {
		raw[i] = floats.Dot(prediction.Row(i), tilt)
	}

	table, err := frame.Unstack(prediction.Keys(), raw)
	if err != nil {
		return nil, fmt.Errorf("failed to unstack raw weights: %w", err)
	}

	if err := a.normalize(table, allRows(table), policy); err != nil {
		return nil, err
	}

	if opts.Cutoff > 0 {
		applyCutoff(table, opts.Cutoff)
		if err := a.normalize(table, allRows(table), policy); err != nil {
			return nil, err
		}
	}

	if opts.MaxPositions > 0 {
		capped := capPositions(table, opts.MaxPositions)
		if len(capped) > 0 {
			a.log.Debug().
				Int("rows_capped", len(capped)).
				Int("max_positions", opts.MaxPositions).
				Msg("Capped number of positions")
			if err := a.normalize(table, capped, policy); err != nil {
				return nil, err
			}
		}
	}

	timer.StopWithFields(map[string]interface{}{
		"timestamps": table.Rows(),
		"assets":     table.Cols(),
	})

	return table, nil
}

// normalize divides each listed row by its signed NaN-skipping sum.
func (a *Allocator) normalize(table *frame.WeightTable, rows []int, policy ZeroSumPolicy) error {
	times := table.Times()
	for _, i := range rows {
		sum := table.RowSum(i)
		row := table.Row(i)

		if sum == 0 {
			switch policy {
			case ZeroSumError:
				return fmt.Errorf("%w at %s", ErrZeroRowSum, times[i])
			case ZeroSumNaN:
				for j := range row {
					row[j] = math.NaN()
				}
				table.SetRow(i, row)
			default:
				a.log.Warn().
					Time("time", times[i]).
					Msg("Row weights sum to zero, leaving row unscaled")
			}
			continue
		}

		floats.Scale(1/sum, row)
		table.SetRow(i, row)
	}
	return nil
}

// applyCutoff zeroes every weight whose magnitude is not above cutoff.
// NaN fails the comparison and becomes zero too.
func applyCutoff(table *frame.WeightTable, cutoff float64) {
	for i := 0; i < table.Rows(); i++ {
		row := table.Row(i)
		for j, w := range row {
			if !(math.Abs(w) > cutoff) {
				row[j] = 0
			}
		}
		table.SetRow(i, row)
	}
}

// capPositions keeps the maxPositions largest weights by magnitude in each
// row that holds more non-zero weights than that, zeroing the rest. Ties go
// to the asset that sorts first. Returns the rows it changed.
func capPositions(table *frame.WeightTable, maxPositions int) []int {
	var capped []int
	for i := 0; i < table.Rows(); i++ {
		row := table.Row(i)

		var held []int
		for j, w := range row {
			if w != 0 && !math.IsNaN(w) {
				held = append(held, j)
			}
		}
		if len(held) <= maxPositions {
			continue
		}

		sort.SliceStable(held, func(a, b int) bool {
			return math.Abs(row[held[a]]) > math.Abs(row[held[b]])
		})

		kept := make([]float64, len(row))
		for _, j := range held[:maxPositions] {
			kept[j] = row[j]
		}
		table.SetRow(i, kept)
		capped = append(capped, i)
	}
	return capped
}

func allRows(table *frame.WeightTable) []int {
	rows := make([]int, table.Rows())
	for i := range rows {
		rows[i] = i
	}
	return rows
}
