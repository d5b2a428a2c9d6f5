package estimator

const DefaultBasePricePerSqm = 18_000_000 // toman per m²

const (
	MinLength = 1.0
	MaxLength = 20.0
	MinWidth  = 1.0
	MaxWidth  = 20.0
	MinHeight = 2.0
	MaxHeight = 5.0
)

const (
	// Share of the two-wall perimeter lined with cabinets.
	PerimeterCoverage = 0.6

	// Upper cabinets start above the counter and take 65% of the
	// remaining wall height.
	CounterHeight     = 0.95
	UpperHeightFactor = 0.65

	LowerCabinetHeight = 0.85

	areaDecimals = 2
)

const (
	FieldLength      = "length"
	FieldWidth       = "width"
	FieldHeight      = "height"
	FieldCabinetType = "cabinet_type"
	FieldMaterial    = "material"
)
