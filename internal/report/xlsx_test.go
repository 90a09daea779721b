package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/ordena/backend-go/internal/domain"
)

func TestWriteXLSX(t *testing.T) {
	generated := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	data, err := WriteXLSX(domain.ProfitReport{
		BusinessID: "biz-1",
		Rows: []domain.ProductProfit{
			{ProductID: "p-caja", ProductName: "Caja", UnitsSold: 3, Revenue: 4400, Cost: 2400, Profit: 2000, Margin: 45.45},
			{ProductID: "p-torta", ProductName: "Torta", UnitsSold: 2, Revenue: 3000, Cost: 2000, Profit: 1000, Margin: 33.33},
		},
		UncostedLines: 1,
		GeneratedAt:   generated,
	})
	if err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) < 3 {
		t.Fatalf("rows = %d, want header plus two data rows", len(rows))
	}
	if rows[0][0] != "Product ID" {
		t.Fatalf("header = %v", rows[0])
	}
	if rows[1][1] != "Caja" || rows[2][1] != "Torta" {
		t.Fatalf("data rows = %v", rows[1:3])
	}
}

func TestFileName(t *testing.T) {
	generated := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	got := FileName("biz-1", generated)
	want := "profitability_biz-1_20260301_120000.xlsx"
	if got != want {
		t.Fatalf("FileName = %s, want %s", got, want)
	}
}
