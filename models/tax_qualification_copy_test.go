package models

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"bitbucket.org/nuamsoft/taxadmin_backend/utils"
	"github.com/shopspring/decimal"
)

func sampleQualification() *TaxQualification {
	period := 30
	creator := 7
	return &TaxQualification{
		ID:               42,
		Market:           MarketStocks,
		Instrument:       "FALABELLA",
		Description:      "Dividendo definitivo",
		PaymentDate:      time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
		EventSequence:    "100000807",
		Dividend:         decimal.RequireFromString("12.34567890"),
		HistoricalValue:  decimal.RequireFromString("0.98765432"),
		UpdateFactor:     decimal.RequireFromString("1.01230000"),
		Year:             2024,
		IsFut:            utils.NewTrue(),
		Origin:           OriginBroker,
		Pending:          utils.NewTrue(),
		CommercialPeriod: &period,
		CapitalEvent:     decimal.RequireFromString("3.5"),
		Factor08:         decimal.RequireFromString("0.11111111"),
		Factor21:         decimal.RequireFromString("0.22222222"),
		Factor37:         decimal.RequireFromString("0.33333333"),
		Factor198:        decimal.RequireFromString("0.44444444"),
		CreatedById:      &creator,
		CreatedAt:        time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		UpdatedAt:        time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC),
	}
}

func TestBuildQualificationCopy_FieldFidelity(t *testing.T) {
	src := sampleQualification()
	sequence := fmt.Sprintf("%s_COPIA_%d", src.EventSequence, time.Now().Unix())

	duplicate := buildQualificationCopy(src, sequence, 99)

	if duplicate.ID != 0 {
		t.Errorf("copy must not carry the source primary key, got %d", duplicate.ID)
	}
	if duplicate.EventSequence != sequence {
		t.Errorf("event sequence = %q, want %q", duplicate.EventSequence, sequence)
	}
	if !strings.HasPrefix(duplicate.EventSequence, "100000807_COPIA_") {
		t.Errorf("event sequence %q lacks the copy marker", duplicate.EventSequence)
	}
	if duplicate.CreatedById == nil || *duplicate.CreatedById != 99 {
		t.Errorf("creator = %v, want 99", duplicate.CreatedById)
	}
	if !duplicate.CreatedAt.IsZero() || !duplicate.UpdatedAt.IsZero() {
		t.Error("copy must get fresh timestamps")
	}

	if duplicate.Market != src.Market || duplicate.Instrument != src.Instrument ||
		duplicate.Description != src.Description || duplicate.Year != src.Year ||
		duplicate.Origin != src.Origin || !duplicate.PaymentDate.Equal(src.PaymentDate) {
		t.Errorf("scalar fields diverged: %+v", duplicate)
	}
	if !duplicate.Dividend.Equal(src.Dividend) ||
		!duplicate.HistoricalValue.Equal(src.HistoricalValue) ||
		!duplicate.UpdateFactor.Equal(src.UpdateFactor) ||
		!duplicate.CapitalEvent.Equal(src.CapitalEvent) {
		t.Errorf("decimal fields diverged: %+v", duplicate)
	}
	if !duplicate.Factor08.Equal(src.Factor08) || !duplicate.Factor21.Equal(src.Factor21) ||
		!duplicate.Factor37.Equal(src.Factor37) || !duplicate.Factor198.Equal(src.Factor198) {
		t.Errorf("factor fields diverged: %+v", duplicate)
	}
}

func TestBuildQualificationCopy_NoPointerAliasing(t *testing.T) {
	src := sampleQualification()
	duplicate := buildQualificationCopy(src, "100000807_COPIA_1", 99)

	if duplicate.IsFut == src.IsFut || duplicate.Pending == src.Pending ||
		duplicate.CommercialPeriod == src.CommercialPeriod {
		t.Fatal("copy shares pointers with the source")
	}

	*src.Pending = false
	*src.CommercialPeriod = 99
	if !*duplicate.Pending {
		t.Error("mutating the source changed the copy's pending flag")
	}
	if *duplicate.CommercialPeriod != 30 {
		t.Error("mutating the source changed the copy's commercial period")
	}
}

func TestValidFactorColumn(t *testing.T) {
	for _, key := range factorColumns {
		if !validFactorColumn(key) {
			t.Errorf("%q rejected", key)
		}
	}
	for _, key := range []string{"factor_07", "factor_38", "factor", "password", ""} {
		if validFactorColumn(key) {
			t.Errorf("%q accepted", key)
		}
	}
}

func TestFactorDescriptions_CoverAllColumns(t *testing.T) {
	descriptions := FactorDescriptions()
	if len(descriptions) != len(factorColumns) {
		t.Fatalf("got %d descriptions, want %d", len(descriptions), len(factorColumns))
	}
	for _, col := range factorColumns {
		if descriptions[col] == "" {
			t.Errorf("no description for %q", col)
		}
	}
}
