package allocation

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidParameter is returned when allocation options fail validation.
	ErrInvalidParameter = errors.New("allocation: invalid parameter")
	// ErrZeroRowSum is returned under ZeroSumError when a row cannot be normalized.
	ErrZeroRowSum = errors.New("allocation: row weights sum to zero")
)

// ZeroSumPolicy decides what happens to a row whose weights sum to zero
// during normalization.
type ZeroSumPolicy string

const (
	// ZeroSumLeave keeps the row unscaled and logs a warning.
	ZeroSumLeave ZeroSumPolicy = "leave"
	// ZeroSumNaN fills the row with NaN, as a plain division would.
	ZeroSumNaN ZeroSumPolicy = "nan"
	// ZeroSumError aborts the allocation.
	ZeroSumError ZeroSumPolicy = "error"
)

// Options controls how predictions become weights.
//
// K sets the tilt exponent 2K-1 and is truncated toward zero after
// validation; it must be finite and at most MaxK. Cutoff zeroes weights whose magnitude is not above it; 0
// disables. MaxPositions caps non-zero weights per timestamp; 0 disables.
type Options struct {
	K            float64       `validate:"gte=1,lte=2147483647"`
	Cutoff       float64       `validate:"gte=0"`
	MaxPositions int           `validate:"gte=0"`
	ZeroSum      ZeroSumPolicy `validate:"omitempty,oneof=leave nan error"`
}

// MaxK is the largest accepted tilt exponent parameter.
const MaxK = math.MaxInt32

// DefaultOptions returns k=1, no cutoff, at most 100 positions.
func DefaultOptions() Options {
	return Options{
		K:            1,
		Cutoff:       0,
		MaxPositions: 100,
		ZeroSum:      ZeroSumLeave,
	}
}

var validate = validator.New()

// Validate checks the options, wrapping failures in ErrInvalidParameter.
func (o Options) Validate() error {
	if math.IsNaN(o.K) || math.IsInf(o.K, 0) {
		return fmt.Errorf("%w: K must be finite, got %v", ErrInvalidParameter, o.K)
	}

	err := validate.Struct(o)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}

	msgs := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidParameter, strings.Join(msgs, "; "))
}

func (o Options) policy() ZeroSumPolicy {
	if o.ZeroSum == "" {
		return ZeroSumLeave
	}
	return o.ZeroSum
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s, got %v", field, fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s, got %v", field, fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}
