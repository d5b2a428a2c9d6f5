package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"cabino/internal/estimator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunEstimate(t *testing.T) {
	var out, errOut bytes.Buffer
	opts := estimateOptions{length: 4, width: 3, height: 2.8, cabinetType: "classic", material: "mdf"}

	require.NoError(t, runEstimate(&out, &errOut, opts, estimator.NewDefaultPricing()))
	assert.Contains(t, out.String(), "Total area:     17.24 m²")
	assert.Contains(t, out.String(), "Total price:    310,320,000 toman")
	assert.Empty(t, errOut.String())
}

func TestRunEstimate_JSONWithExplicitMultiplier(t *testing.T) {
	var out, errOut bytes.Buffer
	opts := estimateOptions{
		length: 4, width: 3, height: 2.8,
		cabinetType: "classic", material: "mdf",
		typeMultiplier: 2, asJSON: true,
	}

	require.NoError(t, runEstimate(&out, &errOut, opts, estimator.NewDefaultPricing()))

	var res estimator.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, int64(620_640_000), res.TotalPrice)
}

func TestRunEstimate_InvalidInput(t *testing.T) {
	var out, errOut bytes.Buffer
	opts := estimateOptions{length: 25, width: 25, height: 6, cabinetType: "classic", material: "mdf"}

	err := runEstimate(&out, &errOut, opts, estimator.NewDefaultPricing())
	assert.ErrorIs(t, err, errInvalidInput)
	assert.Equal(t,
		"length: 25 is above maximum 20\nwidth: 25 is above maximum 20\nheight: 6 is above maximum 5\n",
		errOut.String())
	assert.Empty(t, out.String())
}

func TestRunEstimate_UnknownOption(t *testing.T) {
	var out, errOut bytes.Buffer
	opts := estimateOptions{length: 4, width: 3, height: 2.8, cabinetType: "gothic", material: "mdf"}

	assert.Error(t, runEstimate(&out, &errOut, opts, estimator.NewDefaultPricing()))
}
