// Package estimator prices a kitchen cabinet installation from the room
// dimensions and the chosen cabinet style and material.
//
// The calculation is pure: no I/O, no shared state. Surfaces (bot, HTTP
// API, CLI) parse user input into an Input and present the Result or the
// *ValidationError themselves.
package estimator

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var (
	maxPrice = decimal.NewFromInt(math.MaxInt64)

	two                = decimal.NewFromInt(2)
	perimeterCoverage  = decimal.NewFromFloat(PerimeterCoverage)
	counterHeight      = decimal.NewFromFloat(CounterHeight)
	upperHeightFactor  = decimal.NewFromFloat(UpperHeightFactor)
	lowerCabinetHeight = decimal.NewFromFloat(LowerCabinetHeight)
)

// Input is one estimate request. Dimensions are meters; a zero value
// means the field was not provided.
type Input struct {
	Length                float64 `json:"length"`
	Width                 float64 `json:"width"`
	Height                float64 `json:"height"`
	CabinetTypeMultiplier float64 `json:"cabinet_type_multiplier"`
	MaterialMultiplier    float64 `json:"material_multiplier"`
}

// Result areas are m² rounded to two decimals; TotalArea is the sum of
// the already rounded upper and lower areas.
type Result struct {
	UpperArea  float64 `json:"upper_area"`
	LowerArea  float64 `json:"lower_area"`
	TotalArea  float64 `json:"total_area"`
	TotalPrice int64   `json:"total_price"`
}

type Pricing struct {
	BasePricePerSqm int64
}

func NewDefaultPricing() Pricing {
	return Pricing{BasePricePerSqm: DefaultBasePricePerSqm}
}

func (p Pricing) Validate() error {
	if p.BasePricePerSqm <= 0 {
		return fmt.Errorf("%w: base price per m² %d", ErrInvalidPricing, p.BasePricePerSqm)
	}
	return nil
}

// Estimator binds a pricing table to the calculation.
type Estimator struct {
	pricing Pricing
}

func New(pricing Pricing) (*Estimator, error) {
	if err := pricing.Validate(); err != nil {
		return nil, err
	}
	return &Estimator{pricing: pricing}, nil
}

func (e *Estimator) Pricing() Pricing {
	return e.pricing
}

func (e *Estimator) Estimate(in Input) (Result, error) {
	return Estimate(in, e.pricing)
}

// Estimate validates in and computes the covered cabinet area and price.
// Invalid input yields a *ValidationError naming every offending field; a
// price beyond int64 yields ErrPriceOverflow.
func Estimate(in Input, pricing Pricing) (Result, error) {
	if err := pricing.Validate(); err != nil {
		return Result{}, err
	}
	if err := Validate(in); err != nil {
		return Result{}, err
	}
	return calculate(in, pricing)
}

// Validate checks every field independently and reports all violations.
func Validate(in Input) error {
	verr := &ValidationError{}

	checkRange(verr, FieldLength, in.Length, MinLength, MaxLength)
	checkRange(verr, FieldWidth, in.Width, MinWidth, MaxWidth)
	checkRange(verr, FieldHeight, in.Height, MinHeight, MaxHeight)
	checkMultiplier(verr, FieldCabinetType, in.CabinetTypeMultiplier)
	checkMultiplier(verr, FieldMaterial, in.MaterialMultiplier)

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

func checkRange(verr *ValidationError, field string, v, lo, hi float64) {
	fe := FieldError{Field: field, Value: finite(v), Min: lo, Max: hi}
	switch {
	case v == 0 || math.IsNaN(v):
		fe.Constraint = ConstraintMissing
	case v < lo:
		fe.Constraint = ConstraintBelowMin
	case v > hi:
		fe.Constraint = ConstraintAboveMax
	default:
		return
	}
	verr.add(fe)
}

// checkMultiplier accepts any positive finite factor. +Inf is reported as
// above_max without a Max.
func checkMultiplier(verr *ValidationError, field string, v float64) {
	fe := FieldError{Field: field, Value: finite(v), Min: 0}
	switch {
	case v == 0 || math.IsNaN(v):
		fe.Constraint = ConstraintMissing
	case v < 0:
		fe.Constraint = ConstraintBelowMin
	case math.IsInf(v, 1):
		fe.Constraint = ConstraintAboveMax
	default:
		return
	}
	verr.add(fe)
}

// finite keeps NaN and ±Inf out of FieldError so it stays JSON encodable.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func calculate(in Input, pricing Pricing) (Result, error) {
	length := decimal.NewFromFloat(in.Length)
	width := decimal.NewFromFloat(in.Width)
	height := decimal.NewFromFloat(in.Height)

	perimeter := length.Add(width).Mul(two).Mul(perimeterCoverage)

	upper := perimeter.Mul(upperCabinetHeight(height)).Round(areaDecimals)
	lower := perimeter.Mul(lowerCabinetHeight).Round(areaDecimals)
	total := upper.Add(lower).Round(areaDecimals)

	price := total.
		Mul(decimal.NewFromInt(pricing.BasePricePerSqm)).
		Mul(decimal.NewFromFloat(in.CabinetTypeMultiplier)).
		Mul(decimal.NewFromFloat(in.MaterialMultiplier)).
		Round(0)
	if price.GreaterThan(maxPrice) {
		return Result{}, fmt.Errorf("%w: %s", ErrPriceOverflow, price.String())
	}

	return Result{
		UpperArea:  upper.InexactFloat64(),
		LowerArea:  lower.InexactFloat64(),
		TotalArea:  total.InexactFloat64(),
		TotalPrice: price.IntPart(),
	}, nil
}

// upperCabinetHeight never goes negative, even for rooms lower than the
// counter. Validation keeps height >= 2 m so the clamp does not trigger
// for accepted input.
func upperCabinetHeight(height decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, height.Sub(counterHeight).Mul(upperHeightFactor))
}
