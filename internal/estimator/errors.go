package estimator

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidPricing = errors.New("invalid pricing")
	// ErrPriceOverflow is returned when the price does not fit in int64.
	ErrPriceOverflow = errors.New("price out of range")
)

type Constraint string

const (
	ConstraintMissing  Constraint = "missing"
	ConstraintBelowMin Constraint = "below_min"
	ConstraintAboveMax Constraint = "above_max"
)

// FieldError describes one rejected input field. Min and Max are the
// allowed range; for multipliers Min is exclusive and there is no Max.
type FieldError struct {
	Field      string     `json:"field"`
	Constraint Constraint `json:"constraint"`
	Value      float64    `json:"value"`
	Min        float64    `json:"min"`
	Max        float64    `json:"max,omitempty"`
}

func (f FieldError) String() string {
	switch f.Constraint {
	case ConstraintBelowMin:
		return fmt.Sprintf("%s: %g is below minimum %g", f.Field, f.Value, f.Min)
	case ConstraintAboveMax:
		if f.Max == 0 {
			return fmt.Sprintf("%s: is not finite", f.Field)
		}
		return fmt.Sprintf("%s: %g is above maximum %g", f.Field, f.Value, f.Max)
	default:
		return fmt.Sprintf("%s: missing", f.Field)
	}
}

// ValidationError lists every offending field of an Input, in field order.
type ValidationError struct {
	Fields []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.String())
	}
	return "invalid estimate input: " + strings.Join(parts, "; ")
}

// Has reports whether field was rejected.
func (e *ValidationError) Has(field string) bool {
	_, ok := e.Field(field)
	return ok
}

func (e *ValidationError) Field(field string) (FieldError, bool) {
	for _, f := range e.Fields {
		if f.Field == field {
			return f, true
		}
	}
	return FieldError{}, false
}

func (e *ValidationError) add(f FieldError) {
	e.Fields = append(e.Fields, f)
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
