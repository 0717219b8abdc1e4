// Package export renders deal lists as spreadsheet downloads.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/wonny/dealflow/internal/contracts"
)

// SheetName is the worksheet holding the exported deals
const SheetName = "Deals"

// ContentType is the MIME type of WriteDealsXLSX output
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var headers = []string{
	"Deal ID", "Company", "Contact", "Mode", "Stage", "Value", "Probability",
	"Weighted Value", "Created", "Updated", "Expected Close", "Sales Rep",
	"Origin", "Destination", "Cargo Type",
}

// WriteDealsXLSX writes deals, one per row under a bold header, to w
func WriteDealsXLSX(w io.Writer, deals []contracts.Deal) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	// Set header style
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", lastHeader, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	// Write data
	for i, d := range deals {
		cargo := ""
		if d.CargoType != nil {
			cargo = *d.CargoType
		}
		row := []interface{}{
			d.DealID, d.CompanyName, d.ContactName, string(d.TransportationMode), string(d.Stage),
			d.Value, d.Probability, d.WeightedValue(), d.CreatedDate, d.UpdatedDate,
			d.ExpectedCloseDate, d.SalesRep, d.OriginCity, d.DestinationCity, cargo,
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2) // Start from row 2 (after header)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write deal %s: %w", d.DealID, err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "A", lastCol, 18); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
