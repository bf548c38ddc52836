package models

import (
	"context"
	"strings"
	"testing"

	"bitbucket.org/nuamsoft/taxadmin_backend/utils"
	"github.com/xuri/excelize/v2"
)

func TestInferColumns_SynonymHeaders(t *testing.T) {
	cases := []struct {
		name    string
		headers []string
		want    columnMap
	}{
		{
			name:    "spanish headers",
			headers: []string{"Nombre", "Monto", "Factor", "Fecha"},
			want:    columnMap{name: 0, amount: 1, factor: 2, date: 3},
		},
		{
			name:    "english headers",
			headers: []string{"name", "amount", "ratio", "date"},
			want:    columnMap{name: 0, amount: 1, factor: 2, date: 3},
		},
		{
			name:    "mixed case and padding",
			headers: []string{"  NOMBRE_DATO ", "Precio", "MULTIPLICADOR", "fecha_creacion"},
			want:    columnMap{name: 0, amount: 1, factor: 2, date: 3},
		},
		{
			name:    "shuffled order with extra columns",
			headers: []string{"id", "fecha", "valor", "dato", "ignored"},
			want:    columnMap{name: 3, amount: 2, factor: -1, date: 1},
		},
		{
			name:    "name only",
			headers: []string{"item"},
			want:    columnMap{name: 0, amount: -1, factor: -1, date: -1},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := inferColumns(tc.headers)
			if err != nil {
				t.Fatalf("inferColumns(%v): %v", tc.headers, err)
			}
			if got != tc.want {
				t.Errorf("inferColumns(%v) = %+v, want %+v", tc.headers, got, tc.want)
			}
		})
	}
}

func TestInferColumns_FirstMatchWins(t *testing.T) {
	cm, err := inferColumns([]string{"nombre", "descripcion", "monto", "valor"})
	if err != nil {
		t.Fatal(err)
	}
	if cm.name != 0 {
		t.Errorf("name claimed by column %d, want 0", cm.name)
	}
	if cm.amount != 2 {
		t.Errorf("amount claimed by column %d, want 2", cm.amount)
	}
}

func TestInferColumns_NoNameColumnIsFatal(t *testing.T) {
	_, err := inferColumns([]string{"monto", "factor", "fecha"})
	if err == nil {
		t.Fatal("expected error for headers without a name column")
	}
}

func TestBuildImportRow_SkipsMissingNames(t *testing.T) {
	cm := columnMap{name: 0, amount: 1, factor: 2, date: 3}

	for _, record := range [][]string{
		{"", "100", "1.5", "2024-01-01"},
		{"   ", "100", "1.5", "2024-01-01"},
		{"nan", "100", "1.5", "2024-01-01"},
		{"NaN", "100", "1.5", "2024-01-01"},
		{},
	} {
		if _, ok := buildImportRow(record, cm); ok {
			t.Errorf("buildImportRow(%v) kept a row without a usable name", record)
		}
	}
}

func TestBuildImportRow_BestEffortCoercion(t *testing.T) {
	cm := columnMap{name: 0, amount: 1, factor: 2, date: 3}

	row, ok := buildImportRow([]string{"Dato A", "1000.50", "1.05", "2024-01-15"}, cm)
	if !ok {
		t.Fatal("expected row to survive")
	}
	if row.Amount == nil || row.Amount.String() != "1000.5" {
		t.Errorf("amount = %v, want 1000.5", row.Amount)
	}
	if row.Factor == nil || row.Factor.String() != "1.05" {
		t.Errorf("factor = %v, want 1.05", row.Factor)
	}
	if row.RecordDate == nil {
		t.Fatal("record date not parsed")
	}
	if y, m, d := row.RecordDate.Date(); y != 2024 || int(m) != 1 || d != 15 {
		t.Errorf("record date = %v, want 2024-01-15", row.RecordDate)
	}

	// unparseable cells leave the field unset, the row survives
	row, ok = buildImportRow([]string{"Dato B", "not-a-number", "nan", "someday"}, cm)
	if !ok {
		t.Fatal("expected row to survive despite bad cells")
	}
	if row.Amount != nil || row.Factor != nil || row.RecordDate != nil {
		t.Errorf("bad cells should leave fields unset, got %+v", row)
	}
}

func TestBuildImportRow_RaggedRecord(t *testing.T) {
	cm := columnMap{name: 0, amount: 1, factor: 2, date: 3}

	row, ok := buildImportRow([]string{"Dato C", "250"}, cm)
	if !ok {
		t.Fatal("expected short record to survive")
	}
	if row.Amount == nil || row.Amount.String() != "250" {
		t.Errorf("amount = %v, want 250", row.Amount)
	}
	if row.Factor != nil || row.RecordDate != nil {
		t.Errorf("columns past the record end must stay unset, got %+v", row)
	}
}

func TestReadImportTable_CSV(t *testing.T) {
	csvData := "Nombre,Monto,Factor,Fecha\nA,100.50,1.05,2024-01-15\nB,200,1.10,2024-02-01\n"

	rows, err := readImportTable("datos.csv", strings.NewReader(csvData))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[1][0] != "A" || rows[2][0] != "B" {
		t.Errorf("unexpected rows: %v", rows)
	}
}

func TestReadImportTable_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	_ = f.SetSheetRow(sheet, "A1", &[]interface{}{"Nombre", "Monto"})
	_ = f.SetSheetRow(sheet, "A2", &[]interface{}{"Dato X", "99.99"})

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	rows, err := readImportTable("datos.xlsx", buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[1][0] != "Dato X" {
		t.Errorf("unexpected first data row: %v", rows[1])
	}
}

func TestReadImportTable_UnsupportedExtension(t *testing.T) {
	if _, err := readImportTable("datos.pdf", strings.NewReader("x")); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

// Rejections the orchestrator raises before touching storage.
func TestImportTaxData_PreflightRejections(t *testing.T) {
	ctx := context.Background()
	admin := &AuthContext{Role: RoleAdmin}
	broker := &AuthContext{Role: RoleBroker}

	_, err := ImportTaxData(ctx, broker, 1, "datos.csv", strings.NewReader("Nombre\nA\n"), 10, ImportModeCreate)
	if err != utils.ErrorForbidden {
		t.Errorf("non-admin import: err = %v, want ErrorForbidden", err)
	}

	_, err = ImportTaxData(ctx, admin, 1, "datos.csv", strings.NewReader("x"), MaxImportFileSize+1, ImportModeCreate)
	if err == nil || !strings.Contains(err.Error(), "too large") {
		t.Errorf("oversized import: err = %v, want size error", err)
	}
}

// End-to-end through parse, inference and coercion: a realistic messy
// upload where one row has no name and another has a bad amount.
func TestImportPipeline_MixedQualityRows(t *testing.T) {
	csvData := "Nombre,Monto,Factor,Fecha\n" +
		"A,100.50,1.05,2024-01-15\n" +
		",,,\n" +
		"B,bad,2.0,2024-02-01\n"

	rows, err := readImportTable("datos.csv", strings.NewReader(csvData))
	if err != nil {
		t.Fatal(err)
	}
	cm, err := inferColumns(rows[0])
	if err != nil {
		t.Fatal(err)
	}

	var kept []importRow
	for _, record := range rows[1:] {
		if row, ok := buildImportRow(record, cm); ok {
			kept = append(kept, row)
		}
	}

	if len(kept) != 2 {
		t.Fatalf("kept %d rows, want 2", len(kept))
	}
	if kept[0].Name != "A" || kept[0].Amount == nil {
		t.Errorf("row A mangled: %+v", kept[0])
	}
	if kept[1].Name != "B" {
		t.Errorf("row B mangled: %+v", kept[1])
	}
	if kept[1].Amount != nil {
		t.Errorf("row B amount should be unset after failed coercion, got %v", kept[1].Amount)
	}
	if kept[1].Factor == nil || kept[1].Factor.String() != "2" {
		t.Errorf("row B factor = %v, want 2", kept[1].Factor)
	}
}
