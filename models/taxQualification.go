package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/nuamsoft/taxadmin_backend/config"
	"bitbucket.org/nuamsoft/taxadmin_backend/utils"
	"github.com/shopspring/decimal"
)

// TaxQualification is a yearly tax-credit event for a financial
// instrument. The 31 factor columns are always present, defaulted to
// zero, never null. EventSequence is the external identity and must
// stay unique, copies included.
type TaxQualification struct {
	ID               int             `gorm:"primary_key" json:"id"`
	Market           Market          `gorm:"size:50;not null;default:'AC';index:idx_market_origin" json:"market"`
	Instrument       string          `gorm:"size:100;not null;index:idx_year_instrument" json:"instrument"`
	Description      string          `gorm:"size:255" json:"description"`
	PaymentDate      time.Time       `gorm:"not null" json:"payment_date"`
	EventSequence    string          `gorm:"size:50;not null;unique" json:"event_sequence"`
	Dividend         decimal.Decimal `gorm:"type:decimal(15,8);not null;default:0" json:"dividend"`
	HistoricalValue  decimal.Decimal `gorm:"type:decimal(15,8);not null;default:0" json:"historical_value"`
	UpdateFactor     decimal.Decimal `gorm:"type:decimal(15,8);not null;default:0" json:"update_factor"`
	Year             int             `gorm:"not null;index:idx_year_instrument" json:"year"`
	IsFut            *bool           `gorm:"not null;default:false" json:"is_fut"`
	Origin           Origin          `gorm:"size:50;not null;default:'BROKER';index:idx_market_origin" json:"origin"`
	Pending          *bool           `gorm:"not null;default:false;index" json:"pending"`
	CommercialPeriod *int            `json:"commercial_period"`
	CapitalEvent     decimal.Decimal `gorm:"type:decimal(15,8);not null;default:0" json:"capital_event"`

	Factor08  decimal.Decimal `gorm:"type:decimal(15,8);not null;default:0" json:"factor_08"`
	Factor09  decimal.Decimal `gorm:"type:decimal(15,8);not null;default:0" json:"factor_09"`
	Factor10  decimal.Decimal `gorm:"type:decimal(15,8);not null;default:0" json:"factor_10"`
	Factor11  decimal.Decimal `gorm:"type:decimal(15,8);not null;default:0" json:"factor_11"`
	Factor12  decimal.Decimal `gorm:"type:decimal(15,8);not null;default:0" json:"factor_12"`
	Factor13  decimal.Decimal `gorm:"type:decimal(15,8);not null;default:0" json:"factor_13"`
	Factor14  decimal.Decimal `gorm:"type:decimal(15,8);not null;default:0" json:"factor_14"`
	Factor15  decimal.Decimal `gorm:"type:decimal(15,8);not null;default:0" json:"factor_15"`
	Factor16  decimal.Decimal `gorm:"type:decimal(15,8);not null;default:0" json:"factor_16"`
	Factor17  decimal.Decimal `gorm:"type:decimal(15,8);not null;default:0" json:"factor_17"`
	Factor18  decimal.Decimal `gorm:"type:decimal(15,8);not null;default:0" json:"factor_18"`
	Factor19  decimal.Decimal `gorm:"type:decimal(15,8);not null;default:0" json:"factor_19"`
	Factor20  decimal.Decimal `gorm:"type:decimal(15,8);not null;default:0" json:"factor_20"`
	Factor21  decimal.Decimal `gorm:"type:decimal(15,8);not null;default:0" json:"factor_21"`
	Factor22  decimal.Decimal `gorm:"type:decimal(15,8);not null;default:0" json:"factor_22"`
	Factor23  decimal.Decimal `gorm:"type:decimal(15,8);not null;default:0" json:"factor_23"`
	Factor24  decimal.Decimal `gorm:"type:decimal(15,8);not null;default:0" json:"factor_24"`
	Factor25  decimal.Decimal `gorm:"type:decimal(15,8);not null;default:0" json:"factor_25"`
	Factor26  decimal.Decimal `gorm:"type:decimal(15,8);not null;default:0" json:"factor_26"`
	Factor27  decimal.Decimal `gorm:"type:decimal(15,8);not null;default:0" json:"factor_27"`
	Factor28  decimal.Decimal `gorm:"type:decimal(15,8);not null;default:0" json:"factor_28"`
	Factor29  decimal.Decimal `gorm:"type:decimal(15,8);not null;default:0" json:"factor_29"`
	Factor30  decimal.Decimal `gorm:"type:decimal(15,8);not null;default:0" json:"factor_30"`
	Factor31  decimal.Decimal `gorm:"type:decimal(15,8);not null;default:0" json:"factor_31"`
	Factor32  decimal.Decimal `gorm:"type:decimal(15,8);not null;default:0" json:"factor_32"`
	Factor33  decimal.Decimal `gorm:"type:decimal(15,8);not null;default:0" json:"factor_33"`
	Factor34  decimal.Decimal `gorm:"type:decimal(15,8);not null;default:0" json:"factor_34"`
	Factor35  decimal.Decimal `gorm:"type:decimal(15,8);not null;default:0" json:"factor_35"`
	Factor36  decimal.Decimal `gorm:"type:decimal(15,8);not null;default:0" json:"factor_36"`
	Factor37  decimal.Decimal `gorm:"type:decimal(15,8);not null;default:0" json:"factor_37"`
	Factor198 decimal.Decimal `gorm:"type:decimal(15,8);not null;default:0" json:"factor_198"`

	CreatedById *int      `json:"created_by_id"`
	CreatedBy   *User     `gorm:"foreignKey:CreatedById;constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// NewTaxQualification is the short entry form: factors start at zero
// and are filled in on the full edit form afterwards.
type NewTaxQualification struct {
	Market          Market          `json:"market" binding:"required"`
	Instrument      string          `json:"instrument" binding:"required"`
	Description     string          `json:"description"`
	PaymentDate     string          `json:"payment_date" binding:"required"`
	EventSequence   string          `json:"event_sequence" binding:"required"`
	Dividend        decimal.Decimal `json:"dividend"`
	HistoricalValue decimal.Decimal `json:"historical_value"`
	UpdateFactor    decimal.Decimal `json:"update_factor"`
	Year            int             `json:"year" binding:"required"`
	IsFut           *bool           `json:"is_fut"`
}

func CreateTaxQualification(ctx context.Context, authz *AuthContext, input *NewTaxQualification) (*TaxQualification, error) {
	if !authz.CanManageQualifications() {
		return nil, utils.ErrorForbidden
	}

	if _, err := ParseMarket(string(input.Market)); err != nil {
		return nil, err
	}
	paymentDate, err := utils.ParseDate(input.PaymentDate)
	if err != nil {
		return nil, errors.New("invalid payment date")
	}
	if err := utils.ValidateUnique[TaxQualification](ctx, "event_sequence", input.EventSequence, 0); err != nil {
		return nil, errors.New("duplicate event sequence")
	}

	qualification := TaxQualification{
		Market:          input.Market,
		Instrument:      input.Instrument,
		Description:     input.Description,
		PaymentDate:     paymentDate,
		EventSequence:   input.EventSequence,
		Dividend:        input.Dividend,
		HistoricalValue: input.HistoricalValue,
		UpdateFactor:    input.UpdateFactor,
		Year:            input.Year,
		IsFut:           input.IsFut,
		// provenance comes from the creator's role, never from the client
		Origin:      authz.Origin(),
		Pending:     utils.NewFalse(),
		CreatedById: &authz.UserID,
	}
	if qualification.IsFut == nil {
		qualification.IsFut = utils.NewFalse()
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&qualification).Error; err != nil {
		return nil, err
	}
	return &qualification, nil
}

// UpdateTaxQualification is the full edit form, factors included.
type UpdateTaxQualificationInput struct {
	Market           Market          `json:"market" binding:"required"`
	Instrument       string          `json:"instrument" binding:"required"`
	Description      string          `json:"description"`
	PaymentDate      string          `json:"payment_date" binding:"required"`
	EventSequence    string          `json:"event_sequence" binding:"required"`
	Year             int             `json:"year" binding:"required"`
	Pending          *bool           `json:"pending"`
	CommercialPeriod *int            `json:"commercial_period"`
	HistoricalValue  decimal.Decimal `json:"historical_value"`
	CapitalEvent     decimal.Decimal `json:"capital_event"`

	Factors map[string]decimal.Decimal `json:"factors"`
}

// factorColumns maps the wire/form factor keys to model columns.
var factorColumns = []string{
	"factor_08", "factor_09", "factor_10", "factor_11", "factor_12", "factor_13",
	"factor_14", "factor_15", "factor_16", "factor_17", "factor_18", "factor_19",
	"factor_20", "factor_21", "factor_22", "factor_23", "factor_24", "factor_25",
	"factor_26", "factor_27", "factor_28", "factor_29", "factor_30", "factor_31",
	"factor_32", "factor_33", "factor_34", "factor_35", "factor_36", "factor_37",
	"factor_198",
}

func validFactorColumn(key string) bool {
	for _, col := range factorColumns {
		if key == col {
			return true
		}
	}
	return false
}

func UpdateTaxQualification(ctx context.Context, authz *AuthContext, id int, input *UpdateTaxQualificationInput) (*TaxQualification, error) {
	if !authz.CanManageQualifications() {
		return nil, utils.ErrorForbidden
	}

	if _, err := utils.FetchSingleModel[TaxQualification](ctx, id); err != nil {
		return nil, err
	}
	if _, err := ParseMarket(string(input.Market)); err != nil {
		return nil, err
	}
	paymentDate, err := utils.ParseDate(input.PaymentDate)
	if err != nil {
		return nil, errors.New("invalid payment date")
	}
	if err := utils.ValidateUnique[TaxQualification](ctx, "event_sequence", input.EventSequence, id); err != nil {
		return nil, errors.New("duplicate event sequence")
	}

	updates := map[string]interface{}{
		"market":           input.Market,
		"instrument":       input.Instrument,
		"description":      input.Description,
		"payment_date":     paymentDate,
		"event_sequence":   input.EventSequence,
		"year":             input.Year,
		"historical_value": input.HistoricalValue,
		"capital_event":    input.CapitalEvent,
	}
	if input.Pending != nil {
		updates["pending"] = *input.Pending
	}
	if input.CommercialPeriod != nil {
		updates["commercial_period"] = *input.CommercialPeriod
	}
	for key, value := range input.Factors {
		if !validFactorColumn(key) {
			return nil, errors.New("unknown factor field: " + key)
		}
		updates[key] = value
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(&TaxQualification{ID: id}).Updates(updates).Error; err != nil {
		return nil, err
	}
	return utils.FetchSingleModel[TaxQualification](ctx, id)
}

func DeleteTaxQualification(ctx context.Context, authz *AuthContext, id int) (*TaxQualification, error) {
	if !authz.IsAdmin() {
		return nil, utils.ErrorForbidden
	}

	qualification, err := utils.FetchSingleModel[TaxQualification](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(qualification).Error; err != nil {
		return nil, err
	}
	return qualification, nil
}

func GetTaxQualification(ctx context.Context, id int) (*TaxQualification, error) {
	return utils.FetchSingleModel[TaxQualification](ctx, id)
}

/*
Copy operation.
*/

const copySequenceSeparator = "_COPIA_"

// buildQualificationCopy assembles the duplicate record in memory: all
// scalar and factor fields carried over, identity and provenance fresh.
func buildQualificationCopy(src *TaxQualification, sequence string, creatorId int) TaxQualification {
	duplicate := *src

	duplicate.ID = 0
	duplicate.EventSequence = sequence
	duplicate.CreatedById = &creatorId
	duplicate.CreatedBy = nil
	duplicate.CreatedAt = time.Time{}
	duplicate.UpdatedAt = time.Time{}

	// pointer fields must not alias the source record
	if src.IsFut != nil {
		isFut := *src.IsFut
		duplicate.IsFut = &isFut
	}
	if src.Pending != nil {
		pending := *src.Pending
		duplicate.Pending = &pending
	}
	if src.CommercialPeriod != nil {
		period := *src.CommercialPeriod
		duplicate.CommercialPeriod = &period
	}

	return duplicate
}

// CopyTaxQualification deep-copies a record under a synthesized unique
// event sequence ({original}_COPIA_{timestamp}). The copy is fully
// independent of its source afterwards.
func CopyTaxQualification(ctx context.Context, authz *AuthContext, id int) (*TaxQualification, error) {
	if !authz.CanManageQualifications() {
		return nil, utils.ErrorForbidden
	}

	src, err := utils.FetchSingleModel[TaxQualification](ctx, id)
	if err != nil {
		return nil, err
	}

	sequence := fmt.Sprintf("%s%s%d", src.EventSequence, copySequenceSeparator, time.Now().Unix())
	if err := utils.ValidateUnique[TaxQualification](ctx, "event_sequence", sequence, 0); err != nil {
		// two copies inside the same second: fall back to nanoseconds
		sequence = fmt.Sprintf("%s%s%d", src.EventSequence, copySequenceSeparator, time.Now().UnixNano())
	}

	duplicate := buildQualificationCopy(src, sequence, authz.UserID)

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&duplicate).Error; err != nil {
		return nil, err
	}
	return &duplicate, nil
}

/*
Listing.
*/

type TaxQualificationFilter struct {
	Market   string `form:"market"`
	Origin   string `form:"origin"`
	Pending  string `form:"pending"`
	Year     int    `form:"year"`
	Search   string `form:"q"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

const qualificationPageSize = 15

func GetPagedTaxQualifications(ctx context.Context, filter *TaxQualificationFilter) ([]*TaxQualification, *PageInfo, error) {
	db := config.GetDB()

	dbCtx := db.WithContext(ctx).Model(&TaxQualification{}).
		Order("year DESC, payment_date DESC, instrument")

	if filter.Market != "" {
		dbCtx = dbCtx.Where("market = ?", filter.Market)
	}
	if filter.Origin != "" {
		dbCtx = dbCtx.Where("origin = ?", filter.Origin)
	}
	switch filter.Pending {
	case "true":
		dbCtx = dbCtx.Where("pending = ?", true)
	case "false":
		dbCtx = dbCtx.Where("pending = ?", false)
	}
	if filter.Year > 0 {
		dbCtx = dbCtx.Where("year = ?", filter.Year)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		dbCtx = dbCtx.Where("instrument LIKE ? OR description LIKE ? OR event_sequence LIKE ?", like, like, like)
	}

	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > config.SearchLimit {
		pageSize = qualificationPageSize
	}

	var results []*TaxQualification
	pageInfo, err := fetchPage(dbCtx, filter.Page, pageSize, &results)
	if err != nil {
		return nil, nil, err
	}
	return results, pageInfo, nil
}

// FactorDescriptions labels each factor column for the edit form.
func FactorDescriptions() map[string]string {
	return map[string]string{
		"factor_08":  "Con crédito por IDPC generados a contar del 01.01.2017",
		"factor_09":  "Con crédito por IDPC acumulados hasta el 31.12.2016",
		"factor_10":  "Con derecho a crédito por pago IDPC Voluntario",
		"factor_11":  "Sin derecho a credito",
		"factor_12":  "Impto. 1ra Categ. Exento Gl Comp. Con Devolución",
		"factor_13":  "Impto. 1ra Categ. Afecto Gl Comp. Sin Devolución",
		"factor_14":  "Impto. 1ra Categ. Exento Gl Comp. Sin Devolución",
		"factor_15":  "Impto. Créditos pro Impuestos Externos",
		"factor_16":  "No Constitutiva de Renta Acogido a Impto.",
		"factor_17":  "No Constitutiva de Renta Devolución de Capital Art.17",
		"factor_18":  "Rentas Exentas de Impto. GC Y/O Impto Adicional",
		"factor_19":  "Ingreso no Constitutivos de Renta",
		"factor_20":  "Sin Derecho a Devolucion",
		"factor_21":  "Con Derecho a Devolucion",
		"factor_22":  "Sin Derecho a Devolucion",
		"factor_23":  "Con Derecho a Devolucion",
		"factor_24":  "Sin Derecho a Devolucion",
		"factor_25":  "Con Derecho a Devolucion",
		"factor_26":  "Sin Derecho a Devolucion",
		"factor_27":  "Con Derecho a Devolucion",
		"factor_28":  "Credito por IPE",
		"factor_29":  "Sin Derecho a Devolucion",
		"factor_30":  "Con Derecho a Devolucion",
		"factor_31":  "Sin Derecho a Devolucion",
		"factor_32":  "Con Derecho a Devolucion",
		"factor_33":  "Credito por IPE",
		"factor_34":  "Cred. Por Impto. Tasa Adicional, Ex Art. 21 UR",
		"factor_35":  "Tasa Efectiva Del Cred. Del FUT (TEF)",
		"factor_36":  "TASA EFECTIVA DEL CRED. DEL FUNT (TEX)",
		"factor_37":  "DEVOLUCION DE CAPITAL ART. 17 NUM 7 UR",
		"factor_198": "Ingreso no Constitutivos de Renta",
	}
}
