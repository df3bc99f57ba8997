// Package quintile is the public entry point for scoring quintile forecasts
// with the Ranked Probability Score and turning predicted class probabilities
// into portfolio weights.
//
// Both operations are pure: an Engine only carries its logger and the
// default allocation options, so one Engine may be shared across goroutines.
package quintile

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/quintile/internal/config"
	"github.com/aristath/quintile/internal/modules/allocation"
	"github.com/aristath/quintile/internal/modules/frame"
	"github.com/aristath/quintile/internal/modules/scoring"
	"github.com/aristath/quintile/pkg/logger"
)

// Table and option types. Panels hold (time, asset) rows by class columns,
// weight tables hold time rows by asset columns, series hold one value per time.
type (
	Key           = frame.Key
	Panel         = frame.Panel
	WeightTable   = frame.WeightTable
	Series        = frame.Series
	Options       = allocation.Options
	ZeroSumPolicy = allocation.ZeroSumPolicy
)

// Zero row sum policies for Options.ZeroSum, plus the largest accepted K.
const (
	MaxK = allocation.MaxK

	ZeroSumLeave = allocation.ZeroSumLeave
	ZeroSumNaN   = allocation.ZeroSumNaN
	ZeroSumError = allocation.ZeroSumError
)

// Constructors, codecs and helpers.
var (
	NewPanel         = frame.NewPanel
	NewClassLabels   = frame.NewClassLabels
	DefaultOptions   = allocation.DefaultOptions
	MaxScore         = scoring.MaxScore
	EncodePanel      = frame.EncodePanel
	DecodePanel      = frame.DecodePanel
	EncodeWeights    = frame.EncodeWeightTable
	DecodeWeights    = frame.DecodeWeightTable
	EncodeSeries     = frame.EncodeSeries
	DecodeSeries     = frame.DecodeSeries
	TiltCoefficients = allocation.TiltCoefficients

	// Score and Allocate are the logger-free forms of the Engine methods.
	Score    = scoring.RankedProbabilityScore
	Allocate = allocation.Allocate

	// Errors returned by scoring, allocation and table construction; match
	// with errors.Is.
	ErrInvalidParameter = allocation.ErrInvalidParameter
	ErrZeroRowSum       = allocation.ErrZeroRowSum
	ErrMisaligned       = frame.ErrMisaligned
	ErrInvalidRow       = frame.ErrInvalidRow
	ErrInvalidShape     = frame.ErrInvalidShape
	ErrEmptyPanel       = frame.ErrEmptyPanel
)

// Engine bundles a scorer and an allocator with configured defaults.
type Engine struct {
	scorer    *scoring.Scorer
	allocator *allocation.Allocator
	options   Options
	log       zerolog.Logger
}

// NewEngine creates an engine from loaded configuration.
func NewEngine(cfg *config.Config, log zerolog.Logger) (*Engine, error) {
	opts := cfg.Allocation.Options()
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid allocation defaults: %w", err)
	}

	log = log.With().Str("service", "quintile").Logger()
	log.Info().
		Float64("k", opts.K).
		Float64("cutoff", opts.Cutoff).
		Int("max_positions", opts.MaxPositions).
		Str("zero_sum_policy", string(opts.ZeroSum)).
		Msg("Quintile engine configured")

	return &Engine{
		scorer:    scoring.NewScorer(log),
		allocator: allocation.NewAllocator(log),
		options:   opts,
		log:       log,
	}, nil
}

// NewDefaultEngine loads configuration from the environment and builds the
// logger it describes.
func NewDefaultEngine() (*Engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})

	return NewEngine(cfg, log)
}

// Options returns the configured allocation defaults.
func (e *Engine) Options() Options {
	return e.options
}

// Score returns the RPS of each timestamp.
func (e *Engine) Score(yTrue, proba *Panel) (*Series, error) {
	return e.scorer.Score(yTrue, proba)
}

// ScoreMean returns the RPS series and its mean over time.
func (e *Engine) ScoreMean(yTrue, proba *Panel) (*Series, float64, error) {
	return e.scorer.ScoreMean(yTrue, proba)
}

// Allocate converts predictions into weights with the configured options.
func (e *Engine) Allocate(prediction *Panel) (*WeightTable, error) {
	return e.allocator.Allocate(prediction, e.options)
}

// AllocateWith converts predictions into weights with explicit options.
func (e *Engine) AllocateWith(prediction *Panel, opts Options) (*WeightTable, error) {
	return e.allocator.Allocate(prediction, opts)
}
