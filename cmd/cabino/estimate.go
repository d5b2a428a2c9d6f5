package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"cabino/internal/catalog"
	"cabino/internal/config"
	"cabino/internal/estimator"

	"github.com/spf13/cobra"
)

var errInvalidInput = errors.New("invalid input")

type estimateOptions struct {
	length, width, height float64
	cabinetType, material string
	typeMultiplier        float64
	materialMultiplier    float64
	asJSON                bool
}

var (
	estimateOpts estimateOptions

	estimateCmd = &cobra.Command{
		Use:   "estimate",
		Short: "Price a kitchen from the room dimensions",
		Example: "  cabino estimate --length 4 --width 3 --height 2.8 --type modern --material mdf\n" +
			"  cabino estimate -l 4 -w 3 -H 2.8 --type-multiplier 1.3 --json",
		RunE: func(cmd *cobra.Command, args []string) error {
			pricing, err := config.LoadPricing()
			if err != nil {
				return err
			}
			return runEstimate(cmd.OutOrStdout(), cmd.ErrOrStderr(), estimateOpts,
				estimator.Pricing{BasePricePerSqm: pricing.BasePricePerSqm})
		},
	}
)

func init() {
	f := estimateCmd.Flags()
	f.Float64VarP(&estimateOpts.length, "length", "l", 0, "room length, meters (1-20)")
	f.Float64VarP(&estimateOpts.width, "width", "w", 0, "room width, meters (1-20)")
	f.Float64VarP(&estimateOpts.height, "height", "H", 0, "room height, meters (2-5)")
	f.StringVar(&estimateOpts.cabinetType, "type", "classic", "cabinet type: classic, modern or premium")
	f.StringVar(&estimateOpts.material, "material", "mdf", "material: mdf, high_gloss or solid_wood")
	f.Float64Var(&estimateOpts.typeMultiplier, "type-multiplier", 0, "explicit cabinet type multiplier, overrides --type")
	f.Float64Var(&estimateOpts.materialMultiplier, "material-multiplier", 0, "explicit material multiplier, overrides --material")
	f.BoolVar(&estimateOpts.asJSON, "json", false, "print the result as JSON")
}

func runEstimate(stdout, stderr io.Writer, opts estimateOptions, pricing estimator.Pricing) error {
	cat := catalog.Default()

	in := estimator.Input{
		Length:                opts.length,
		Width:                 opts.width,
		Height:                opts.height,
		CabinetTypeMultiplier: opts.typeMultiplier,
		MaterialMultiplier:    opts.materialMultiplier,
	}
	if in.CabinetTypeMultiplier == 0 {
		o, err := cat.Lookup(catalog.KindCabinetType, opts.cabinetType)
		if err != nil {
			return err
		}
		in.CabinetTypeMultiplier = o.Multiplier
	}
	if in.MaterialMultiplier == 0 {
		o, err := cat.Lookup(catalog.KindMaterial, opts.material)
		if err != nil {
			return err
		}
		in.MaterialMultiplier = o.Multiplier
	}

	res, err := estimator.Estimate(in, pricing)
	if verr, ok := estimator.AsValidationError(err); ok {
		for _, f := range verr.Fields {
			fmt.Fprintln(stderr, f.String())
		}
		return errInvalidInput
	}
	if err != nil {
		return err
	}

	if opts.asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	_, err = fmt.Fprintf(stdout,
		"Upper cabinets: %g m²\nLower cabinets: %g m²\nTotal area:     %g m²\nTotal price:    %s toman\n",
		res.UpperArea, res.LowerArea, res.TotalArea, estimator.GroupThousands(res.TotalPrice))
	return err
}
