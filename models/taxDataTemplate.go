package models

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const templateSheet = "Datos"

// BuildTaxDataTemplate produces the downloadable example spreadsheet:
// the four canonical columns and three sample rows users can overwrite.
func BuildTaxDataTemplate() (*excelize.File, error) {

	f := excelize.NewFile()
	index, err := f.NewSheet(templateSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	// Add headers
	f.SetCellValue(templateSheet, "A1", "Nombre")
	f.SetCellValue(templateSheet, "B1", "Monto")
	f.SetCellValue(templateSheet, "C1", "Factor")
	f.SetCellValue(templateSheet, "D1", "Fecha")

	exampleRows := []struct {
		Name   string
		Amount float64
		Factor float64
		Date   string
	}{
		{"Ejemplo Dato 1", 1000000.50, 1.05, "2024-01-15"},
		{"Ejemplo Dato 2", 2500000.00, 1.15, "2024-02-20"},
		{"Ejemplo Dato 3", 500000.75, 1.02, "2024-03-10"},
	}

	// Add data
	for i, row := range exampleRows {
		f.SetCellValue(templateSheet, "A"+fmt.Sprint(i+2), row.Name)
		f.SetCellValue(templateSheet, "B"+fmt.Sprint(i+2), row.Amount)
		f.SetCellValue(templateSheet, "C"+fmt.Sprint(i+2), row.Factor)
		f.SetCellValue(templateSheet, "D"+fmt.Sprint(i+2), row.Date)
	}

	return f, nil
}
