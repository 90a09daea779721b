// Package report renders profitability reports into XLSX workbooks for
// distribution outside the API.
package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/ordena/backend-go/internal/domain"
)

const sheetName = "Profitability"

var headers = []string{
	"Product ID", "Product", "Units Sold", "Revenue", "Cost", "Profit", "Margin %",
}

// WriteXLSX renders the report as a single-sheet workbook and returns the
// serialized file contents.
func WriteXLSX(report domain.ProfitReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to compute header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, row := range report.Rows {
		values := []interface{}{
			row.ProductID, row.ProductName, row.UnitsSold,
			row.Revenue, row.Cost, row.Profit, row.Margin,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, fmt.Errorf("failed to compute cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
			}
		}
	}

	summaryRow := len(report.Rows) + 3
	summary := []struct {
		label string
		value interface{}
	}{
		{"Business", report.BusinessID},
		{"Generated", report.GeneratedAt.Format(time.RFC3339)},
		{"Uncosted lines", report.UncostedLines},
		{"Name-matched lines", report.NameMatched},
	}
	for i, item := range summary {
		labelCell, err := excelize.CoordinatesToCellName(1, summaryRow+i)
		if err != nil {
			return nil, fmt.Errorf("failed to compute summary cell: %w", err)
		}
		valueCell, err := excelize.CoordinatesToCellName(2, summaryRow+i)
		if err != nil {
			return nil, fmt.Errorf("failed to compute summary cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, labelCell, item.label); err != nil {
			return nil, fmt.Errorf("failed to write summary: %w", err)
		}
		if err := f.SetCellValue(sheetName, valueCell, item.value); err != nil {
			return nil, fmt.Errorf("failed to write summary: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// FileName builds the archive key for a generated report.
func FileName(businessID string, generatedAt time.Time) string {
	return fmt.Sprintf("profitability_%s_%s.xlsx", businessID, generatedAt.Format("20060102_150405"))
}
