package storage

import (
	"testing"
	"time"

	"cabino/internal/estimator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleLead() Lead {
	in := estimator.Input{Length: 4, Width: 3, Height: 2.8, CabinetTypeMultiplier: 1, MaterialMultiplier: 1}
	res := estimator.Result{UpperArea: 10.1, LowerArea: 7.14, TotalArea: 17.24, TotalPrice: 310_320_000}

	lead := NewLead(42, in, "classic", "mdf", res)
	lead.ID = 7
	lead.Contact = "+989121234567"
	lead.CreatedAt = time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	return lead
}

func TestNewLead(t *testing.T) {
	lead := sampleLead()

	assert.NotEmpty(t, lead.PublicID)
	assert.Equal(t, StatusNew, lead.Status)
	assert.Equal(t, int64(310_320_000), lead.TotalPrice)
	assert.Equal(t, 2.8, lead.Height)
}

func TestExportLeadToExcel(t *testing.T) {
	path, err := ExportLeadToExcel(sampleLead(), t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, path, "lead_7_20260301_1030.xlsx")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue(leadSheet, "B10")
	require.NoError(t, err)
	assert.Equal(t, "310,320,000", v)
}

func TestWriteLeadsWorkbook(t *testing.T) {
	leads := []Lead{sampleLead(), sampleLead()}
	leads[1].ID = 8

	path, err := WriteLeadsWorkbook(leads, t.TempDir(), "all_leads")
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(leadsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, leadHeaders, rows[0])
	assert.Equal(t, "8", rows[2][0])
	assert.Equal(t, "classic", rows[1][8])
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(StatusCompleted))
	assert.False(t, ValidStatus("shipped"))
}
