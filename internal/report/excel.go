package report

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"javamap/internal/crud"
	"javamap/internal/resolver"
)

// WriteWorkbook writes the CRUD matrix and wiring list to an XLSX workbook
// with one sheet per product.
func WriteWorkbook(path, project string, edges []resolver.Edge, matrix *crud.Matrix) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	_ = f.SetDocProps(&excelize.DocProperties{
		Title:   "javamap report: " + project,
		Creator: "javamap",
	})

	matrixRows := make([][]any, 0)
	if matrix != nil {
		for _, row := range matrix.Rows {
			matrixRows = append(matrixRows, []any{
				row.Package, row.Class, row.Method, row.Schema, row.Table,
				strings.Join(row.Ops, ","),
			})
		}
	}
	if err := writeSheet(f, "Matrix",
		[]any{"Package", "Class", "Method", "Schema", "Table", "Ops"},
		matrixRows); err != nil {
		return err
	}

	wiringRows := make([][]any, 0, len(edges))
	for _, e := range edges {
		wiringRows = append(wiringRows, []any{
			e.Src(), e.SrcBean, e.Kind, e.Name, e.Type, e.Dst(), e.DstBean,
		})
	}
	if err := writeSheet(f, "Wiring",
		[]any{"Source", "Source bean", "Kind", "Name", "Declared type", "Target", "Target bean"},
		wiringRows); err != nil {
		return err
	}

	// Drop the default sheet so the workbook opens on Matrix.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}
	idx, err := f.GetSheetIndex("Matrix")
	if err != nil {
		return fmt.Errorf("locate matrix sheet: %w", err)
	}
	f.SetActiveSheet(idx)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, name string, header []any, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("write header %s: %w", name, err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return fmt.Errorf("header range %s: %w", name, err)
	}
	if err := f.SetCellStyle(name, "A1", lastHeader, bold); err != nil {
		return fmt.Errorf("style header %s: %w", name, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row cell %s: %w", name, err)
		}
		r := row
		if err := f.SetSheetRow(name, cell, &r); err != nil {
			return fmt.Errorf("write row %s: %w", name, err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return fmt.Errorf("column name %s: %w", name, err)
	}
	if err := f.SetColWidth(name, "A", lastCol, 24); err != nil {
		return fmt.Errorf("column width %s: %w", name, err)
	}
	return nil
}
