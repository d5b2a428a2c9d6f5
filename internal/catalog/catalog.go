// Package catalog lists the cabinet styles and materials offered in the
// estimate form together with their price multipliers.
package catalog

import (
	"errors"
	"fmt"
)

var ErrUnknownOption = errors.New("unknown option")

type Kind string

const (
	KindCabinetType Kind = "cabinet_type"
	KindMaterial    Kind = "material"
)

type Option struct {
	ID         string  `json:"id" db:"id"`
	Title      string  `json:"title" db:"title"`
	Multiplier float64 `json:"multiplier" db:"multiplier"`
	Position   int     `json:"-" db:"position"`
}

type Catalog struct {
	CabinetTypes []Option `json:"cabinet_types"`
	Materials    []Option `json:"materials"`
}

// Default is the catalog seeded by the initial migration.
func Default() Catalog {
	return Catalog{
		CabinetTypes: []Option{
			{ID: "classic", Title: "کلاسیک", Multiplier: 1.0, Position: 1},
			{ID: "modern", Title: "مدرن", Multiplier: 1.2, Position: 2},
			{ID: "premium", Title: "لوکس", Multiplier: 1.5, Position: 3},
		},
		Materials: []Option{
			{ID: "mdf", Title: "ام‌دی‌اف", Multiplier: 1.0, Position: 1},
			{ID: "high_gloss", Title: "هایگلاس", Multiplier: 1.25, Position: 2},
			{ID: "solid_wood", Title: "چوب طبیعی", Multiplier: 1.6, Position: 3},
		},
	}
}

func (c Catalog) Options(kind Kind) []Option {
	if kind == KindMaterial {
		return c.Materials
	}
	return c.CabinetTypes
}

func (c Catalog) Lookup(kind Kind, id string) (Option, error) {
	for _, o := range c.Options(kind) {
		if o.ID == id {
			return o, nil
		}
	}
	return Option{}, fmt.Errorf("%w: %s %q", ErrUnknownOption, kind, id)
}

// LookupTitle resolves a keyboard button label back to its option.
func (c Catalog) LookupTitle(kind Kind, title string) (Option, error) {
	for _, o := range c.Options(kind) {
		if o.Title == title {
			return o, nil
		}
	}
	return Option{}, fmt.Errorf("%w: %s titled %q", ErrUnknownOption, kind, title)
}

func (c Catalog) Empty() bool {
	return len(c.CabinetTypes) == 0 || len(c.Materials) == 0
}
