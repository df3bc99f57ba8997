// Package scoring evaluates quintile forecasts with the Ranked Probability
// Score: the mean squared gap between a one-hot realised class vector and a
// predicted probability vector, averaged over the cross-section at each time.
package scoring

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/quintile/internal/modules/frame"
	"github.com/aristath/quintile/internal/utils"
	"github.com/aristath/quintile/pkg/formulas"
)

// MaxScore is the worst per-time RPS for n classes: all probability mass on
// a class other than the realised one.
func MaxScore(numClasses int) float64 {
	if numClasses <= 0 {
		return 0
	}
	return 2 / float64(numClasses)
}

// Scorer computes RPS series. It holds no state besides its logger.
type Scorer struct {
	log zerolog.Logger
}

// NewScorer creates a new RPS scorer.
func NewScorer(log zerolog.Logger) *Scorer {
	return &Scorer{
		log: log.With().Str("component", "rps_scorer").Logger(),
	}
}

// RankedProbabilityScore scores without logging.
func RankedProbabilityScore(yTrue, proba *frame.Panel) (*frame.Series, error) {
	return NewScorer(zerolog.Nop()).Score(yTrue, proba)
}

// Score returns one RPS value per timestamp, ascending. Rows of proba are
// matched to yTrue by key, so row order may differ between the two panels.
// A NaN cell in either panel is not skipped: it makes its row and therefore
// its whole timestamp NaN. Other timestamps are unaffected.
func (s *Scorer) Score(yTrue, proba *frame.Panel) (*frame.Series, error) {
	timer := utils.NewTimer("rps_score", s.log)

	index, err := align(yTrue, proba)
	if err != nil {
		return nil, err
	}

	groups := yTrue.TimeGroups()
	times := make([]time.Time, 0, len(groups))
	values := make([]float64, 0, len(groups))
	for _, g := range groups {
		perAsset := make([]float64, len(g.Rows))
		for n, i := range g.Rows {
			perAsset[n] = formulas.MeanSquaredError(yTrue.Row(i), proba.Row(index[i]))
		}
		times = append(times, g.Time)
		values = append(values, formulas.Mean(perAsset))
	}

	series, err := frame.NewSeries(times, values)
	if err != nil {
		return nil, fmt.Errorf("failed to build score series: %w", err)
	}

	timer.StopWithFields(map[string]interface{}{
		"rows":       yTrue.Len(),
		"timestamps": series.Len(),
		"classes":    yTrue.NumClasses(),
	})

	return series, nil
}

// ScoreMean returns the per-time series and its average over time.
func (s *Scorer) ScoreMean(yTrue, proba *frame.Panel) (*frame.Series, float64, error) {
	series, err := s.Score(yTrue, proba)
	if err != nil {
		return nil, 0, err
	}
	return series, series.Mean(), nil
}

// align maps each yTrue row to its proba row.
func align(yTrue, proba *frame.Panel) ([]int, error) {
	if !yTrue.SameClasses(proba) {
		return nil, fmt.Errorf("%w: class labels %v vs %v", frame.ErrMisaligned, yTrue.Classes(), proba.Classes())
	}
	if yTrue.Len() != proba.Len() {
		return nil, fmt.Errorf("%w: %d rows vs %d rows", frame.ErrMisaligned, yTrue.Len(), proba.Len())
	}

	index := make([]int, yTrue.Len())
	for i := range index {
		k := yTrue.Key(i)
		j, ok := proba.Lookup(k)
		if !ok {
			return nil, fmt.Errorf("%w: no prediction for %s at %s", frame.ErrMisaligned, k.Asset, k.Time)
		}
		index[i] = j
	}
	return index, nil
}
