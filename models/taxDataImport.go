package models

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"bitbucket.org/nuamsoft/taxadmin_backend/config"
	"bitbucket.org/nuamsoft/taxadmin_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const MaxImportFileSize = 10 * 1024 * 1024

// cells pandas would have written for a missing value
const missingCellPlaceholder = "nan"

/*
Column inference.

Spreadsheets arrive with arbitrary header names; each header is matched
case-insensitively against the alias sets below and the first column
matching a role claims it. Aliases are data, not code: extending a
synonym list is a one-line change.
*/

var nameAliases = []string{"nombre", "name", "nombre_dato", "descripcion", "desc", "dato", "item"}
var amountAliases = []string{"monto", "amount", "valor", "value", "precio", "price", "importe"}
var factorAliases = []string{"factor", "factor_", "multiplicador", "multiplier", "ratio", "coeficiente"}
var dateAliases = []string{"fecha", "date", "fecha_dato", "fecha_creacion", "created_at"}

// columnMap holds the resolved header index per semantic field, -1 when
// the file carries no such column. Only name is mandatory.
type columnMap struct {
	name   int
	amount int
	factor int
	date   int
}

func matchesAlias(header string, aliases []string) bool {
	header = strings.ToLower(strings.TrimSpace(header))
	for _, alias := range aliases {
		if header == alias {
			return true
		}
	}
	return false
}

func inferColumns(headers []string) (columnMap, error) {
	cm := columnMap{name: -1, amount: -1, factor: -1, date: -1}

	for i, header := range headers {
		switch {
		case cm.name == -1 && matchesAlias(header, nameAliases):
			cm.name = i
		case cm.amount == -1 && matchesAlias(header, amountAliases):
			cm.amount = i
		case cm.factor == -1 && matchesAlias(header, factorAliases):
			cm.factor = i
		case cm.date == -1 && matchesAlias(header, dateAliases):
			cm.date = i
		}
	}

	if cm.name == -1 {
		return cm, errors.New("no name column found in file")
	}
	return cm, nil
}

/*
Row coercion.

Per-field best effort: a cell that fails to parse leaves its field unset
and never aborts the row, and a row without a usable name is skipped
without aborting the batch.
*/

type importRow struct {
	Name       string
	Amount     *decimal.Decimal
	Factor     *decimal.Decimal
	RecordDate *time.Time
}

// short records happen: csv with ragged rows, xlsx with trailing blanks trimmed
func cellAt(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// buildImportRow coerces one raw record. ok=false means the row is
// excluded (empty or placeholder name), which is not an error.
func buildImportRow(record []string, cm columnMap) (importRow, bool) {
	row := importRow{}

	row.Name = cellAt(record, cm.name)
	if row.Name == "" || strings.EqualFold(row.Name, missingCellPlaceholder) {
		return row, false
	}

	if cell := cellAt(record, cm.amount); cell != "" && !strings.EqualFold(cell, missingCellPlaceholder) {
		if amount, err := utils.ParseDecimal(cell); err == nil {
			row.Amount = &amount
		}
	}

	if cell := cellAt(record, cm.factor); cell != "" && !strings.EqualFold(cell, missingCellPlaceholder) {
		if factor, err := utils.ParseDecimal(cell); err == nil {
			row.Factor = &factor
		}
	}

	if cell := cellAt(record, cm.date); cell != "" && !strings.EqualFold(cell, missingCellPlaceholder) {
		if date, err := utils.ParseDate(cell); err == nil {
			row.RecordDate = &date
		}
	}

	return row, true
}

/*
File parsing. Format is picked by extension: .csv via encoding/csv,
.xlsx/.xls via excelize. Anything else is a file-level error.
*/

func readImportTable(filename string, file io.Reader) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		reader := csv.NewReader(file)
		reader.FieldsPerRecord = -1
		reader.TrimLeadingSpace = true
		rows, err := reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("could not read csv file: %v", err)
		}
		return rows, nil
	case ".xlsx", ".xls":
		f, err := excelize.OpenReader(file)
		if err != nil {
			return nil, fmt.Errorf("could not open spreadsheet: %v", err)
		}
		defer f.Close()
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("spreadsheet has no sheets")
		}
		rows, err := f.GetRows(sheets[0])
		if err != nil {
			return nil, fmt.Errorf("could not read spreadsheet rows: %v", err)
		}
		return rows, nil
	default:
		return nil, errors.New("unsupported file format: use .csv, .xlsx or .xls")
	}
}

/*
Reconciliation + orchestration.
*/

type ImportSummary struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// applyImportRow writes one coerced row inside the given transaction.
// In update mode an existing record matched on (classification, name)
// keeps any stored field the incoming row did not supply.
func applyImportRow(tx *gorm.DB, classificationId int, mode ImportMode, row importRow) (created bool, err error) {

	if mode == ImportModeUpdate {
		var existing TaxData
		err := tx.Model(&TaxData{}).
			Where("classification_id = ? AND name = ?", classificationId, row.Name).
			Take(&existing).Error
		if err == nil {
			updates := map[string]interface{}{}
			if row.Amount != nil {
				updates["amount"] = *row.Amount
			}
			if row.Factor != nil {
				updates["factor"] = *row.Factor
			}
			if row.RecordDate != nil {
				updates["record_date"] = *row.RecordDate
			}
			if len(updates) > 0 {
				if err := tx.Model(&existing).Updates(updates).Error; err != nil {
					return false, err
				}
			}
			return false, nil
		}
		if err != gorm.ErrRecordNotFound {
			return false, err
		}
		// fall through to insert
	}

	record := TaxData{
		ClassificationId: classificationId,
		Name:             row.Name,
		Amount:           row.Amount,
		Factor:           row.Factor,
		RecordDate:       row.RecordDate,
	}
	if err := tx.Create(&record).Error; err != nil {
		return false, err
	}
	return true, nil
}

// ImportTaxData drives a whole upload batch: parse, infer columns once,
// coerce and reconcile row by row, and report created/updated counts.
// Each row commits in its own transaction; the batch is deliberately
// not atomic, so a failure at row N keeps rows 1..N-1.
func ImportTaxData(ctx context.Context, authz *AuthContext, classificationId int, filename string, file io.Reader, size int64, mode ImportMode) (*ImportSummary, error) {

	if !authz.IsAdmin() {
		return nil, utils.ErrorForbidden
	}
	if size > MaxImportFileSize {
		return nil, errors.New("file too large: maximum size is 10MB")
	}
	if err := utils.ValidateResourceId[Classification](ctx, classificationId); err != nil {
		return nil, errors.New("classification not found")
	}

	rows, err := readImportTable(filename, file)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("no name column found in file")
	}

	cm, err := inferColumns(rows[0])
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	summary := ImportSummary{}

	for i, record := range rows[1:] {
		row, ok := buildImportRow(record, cm)
		if !ok {
			continue
		}

		var created bool
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var txErr error
			created, txErr = applyImportRow(tx, classificationId, mode, row)
			return txErr
		})
		if err != nil {
			// storage failure, not a cell problem: stop here, keep prior rows
			return &summary, fmt.Errorf("error in row %d: %v", i+2, err)
		}

		if created {
			summary.Created++
		} else {
			summary.Updated++
		}
	}

	return &summary, nil
}
