package models

import (
	"context"
	"time"

	"bitbucket.org/nuamsoft/taxadmin_backend/config"
	"bitbucket.org/nuamsoft/taxadmin_backend/utils"
	"github.com/shopspring/decimal"
)

// TaxData is one amount/factor/date record under a classification.
// Amount, factor and date are all optional: the ingestion pipeline sets
// only the fields it could coerce.
type TaxData struct {
	ID               int              `gorm:"primary_key" json:"id"`
	ClassificationId int              `gorm:"not null;index" json:"classification_id"`
	Classification   Classification   `json:"classification"`
	Name             string           `gorm:"size:255;not null;index" json:"name"`
	Amount           *decimal.Decimal `gorm:"type:decimal(15,2)" json:"amount"`
	Factor           *decimal.Decimal `gorm:"type:decimal(10,4)" json:"factor"`
	RecordDate       *time.Time       `json:"record_date"`
	CreatedAt        time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

// Pluralization of "data" is ambiguous, pin the table name.
func (TaxData) TableName() string {
	return "tax_data"
}

type TaxDataFilter struct {
	Search           string `form:"q"`
	ClassificationId int    `form:"classification"`
	Page             int    `form:"page"`
	PageSize         int    `form:"page_size"`
}

func GetPagedTaxData(ctx context.Context, filter *TaxDataFilter) ([]*TaxData, *PageInfo, error) {
	db := config.GetDB()

	dbCtx := db.WithContext(ctx).Model(&TaxData{}).
		Preload("Classification").
		Order("created_at DESC")

	if filter.Search != "" {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+filter.Search+"%")
	}
	if filter.ClassificationId > 0 {
		dbCtx = dbCtx.Where("classification_id = ?", filter.ClassificationId)
	}

	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > config.SearchLimit {
		pageSize = config.SearchLimit
	}

	var results []*TaxData
	pageInfo, err := fetchPage(dbCtx, filter.Page, pageSize, &results)
	if err != nil {
		return nil, nil, err
	}
	return results, pageInfo, nil
}

func DeleteTaxData(ctx context.Context, authz *AuthContext, id int) (*TaxData, error) {
	if !authz.IsAdmin() {
		return nil, utils.ErrorForbidden
	}

	record, err := utils.FetchSingleModel[TaxData](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func GetRecentTaxData(ctx context.Context, limit int) ([]*TaxData, error) {
	db := config.GetDB()
	var results []*TaxData
	err := db.WithContext(ctx).Model(&TaxData{}).
		Preload("Classification").
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
