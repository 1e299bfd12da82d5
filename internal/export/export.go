// Package export writes the inventory as an Excel workbook.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/printroom/stockroom/internal/model"
)

// SheetName is the worksheet holding the inventory.
const SheetName = "Inventory"

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Header is the first row of the sheet.
var Header = []string{"Barcode", "Name", "Description", "Location", "Count"}

// Filename returns the download name for an export taken at t.
func Filename(t time.Time) string {
	return "inventory_" + t.Format("01.02.06_15.04.05") + ".xlsx"
}

// WriteInventory writes items, in the given order, as an xlsx workbook to w.
func WriteInventory(w io.Writer, items []model.Item) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Border:    border,
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	cellStyle, err := f.NewStyle(&excelize.Style{Border: border})
	if err != nil {
		return fmt.Errorf("creating cell style: %w", err)
	}

	if err := f.SetColWidth(SheetName, "A", "E", 20); err != nil {
		return fmt.Errorf("setting column width: %w", err)
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "E1", headerStyle); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for i, item := range items {
		row := i + 2
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		values := []any{item.Code, item.Name, item.Description, item.Location, item.Count}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("writing row %d: %w", row, err)
		}
	}
	if len(items) > 0 {
		last := fmt.Sprintf("E%d", len(items)+1)
		if err := f.SetCellStyle(SheetName, "A2", last, cellStyle); err != nil {
			return fmt.Errorf("styling rows: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
