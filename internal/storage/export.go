package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"cabino/internal/estimator"

	"github.com/xuri/excelize/v2"
)

const (
	leadSheet   = "Lead"
	leadsSheet  = "Leads"
	exportLimit = 10_000
)

var leadHeaders = []string{
	"ID", "Public ID", "User ID", "Username", "Source",
	"Length (m)", "Width (m)", "Height (m)", "Cabinet type", "Material",
	"Type multiplier", "Material multiplier",
	"Upper area (m²)", "Lower area (m²)", "Total area (m²)", "Total price (toman)",
	"Contact", "Status", "Created at",
}

func leadRow(lead Lead) []any {
	return []any{
		lead.ID, lead.PublicID, lead.UserID, lead.Username, lead.Source,
		lead.Length, lead.Width, lead.Height, lead.CabinetType, lead.Material,
		lead.CabinetTypeMultiplier, lead.MaterialMultiplier,
		lead.UpperArea, lead.LowerArea, lead.TotalArea, lead.TotalPrice,
		lead.Contact, lead.Status, lead.CreatedAt.Format("2006-01-02 15:04"),
	}
}

// ExportLeadToExcel writes a one-lead report into dir and returns its path.
func ExportLeadToExcel(lead Lead, dir string) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", leadSheet); err != nil {
		return "", fmt.Errorf("failed to create sheet: %w", err)
	}

	rows := [][2]any{
		{"Lead ID", lead.ID},
		{"User ID", lead.UserID},
		{"Created At", lead.CreatedAt.Format("2006-01-02 15:04")},
		{"Room", fmt.Sprintf("%g × %g × %g m", lead.Length, lead.Width, lead.Height)},
		{"Cabinet type", fmt.Sprintf("%s (×%g)", lead.CabinetType, lead.CabinetTypeMultiplier)},
		{"Material", fmt.Sprintf("%s (×%g)", lead.Material, lead.MaterialMultiplier)},
		{"Upper area (m²)", lead.UpperArea},
		{"Lower area (m²)", lead.LowerArea},
		{"Total area (m²)", lead.TotalArea},
		{"Total price (toman)", estimator.GroupThousands(lead.TotalPrice)},
		{"Contact", lead.Contact},
		{"Status", lead.Status},
	}
	for i, row := range rows {
		if err := f.SetSheetRow(leadSheet, fmt.Sprintf("A%d", i+1), &[]any{row[0], row[1]}); err != nil {
			return "", fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetCellStyle(leadSheet, "A1", fmt.Sprintf("A%d", len(rows)), style)
	}

	name := fmt.Sprintf("lead_%d_%s.xlsx", lead.ID, lead.CreatedAt.Format("20060102_1504"))
	return saveWorkbook(f, dir, name)
}

// ExportLeadsToExcel writes every lead, newest first, into dir.
func (s *PostgresStorage) ExportLeadsToExcel(ctx context.Context, dir, name string) (string, error) {
	leads, err := s.ListLeads(ctx, exportLimit)
	if err != nil {
		return "", err
	}
	return WriteLeadsWorkbook(leads, dir, name)
}

func WriteLeadsWorkbook(leads []Lead, dir, name string) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", leadsSheet); err != nil {
		return "", fmt.Errorf("failed to create sheet: %w", err)
	}

	header := make([]any, len(leadHeaders))
	for i, h := range leadHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(leadsSheet, "A1", &header); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}

	for i, lead := range leads {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", err
		}
		row := leadRow(lead)
		if err := f.SetSheetRow(leadsSheet, cell, &row); err != nil {
			return "", fmt.Errorf("failed to write lead %d: %w", lead.ID, err)
		}
	}

	if err := f.SetPanes(leadsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return "", fmt.Errorf("failed to freeze header: %w", err)
	}

	return saveWorkbook(f, dir, name+".xlsx")
}

func saveWorkbook(f *excelize.File, dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save Excel file: %w", err)
	}
	return path, nil
}
