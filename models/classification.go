package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"bitbucket.org/nuamsoft/taxadmin_backend/config"
	"bitbucket.org/nuamsoft/taxadmin_backend/utils"
)

// Classification is a named bucket grouping tax-data records
// (e.g. "Renta Fija"). Managed by administrators only.
type Classification struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;not null;unique" json:"name" binding:"required"`
	TaxData   []TaxData `gorm:"foreignKey:ClassificationId;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type NewClassification struct {
	Name string `json:"name" binding:"required"`
}

func (input *NewClassification) validate(ctx context.Context, id int) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return errors.New("classification name is required")
	}
	return utils.ValidateUnique[Classification](ctx, "name", input.Name, id)
}

func CreateClassification(ctx context.Context, authz *AuthContext, input *NewClassification) (*Classification, error) {
	if !authz.IsAdmin() {
		return nil, utils.ErrorForbidden
	}
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	classification := Classification{Name: input.Name}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&classification).Error; err != nil {
		return nil, err
	}
	return &classification, nil
}

func UpdateClassification(ctx context.Context, authz *AuthContext, id int, input *NewClassification) (*Classification, error) {
	if !authz.IsAdmin() {
		return nil, utils.ErrorForbidden
	}

	classification, err := utils.FetchSingleModel[Classification](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(classification).Update("name", input.Name).Error; err != nil {
		return nil, err
	}
	return classification, nil
}

// DeleteClassification removes the classification and, through the FK
// constraint, every tax-data record it owns.
func DeleteClassification(ctx context.Context, authz *AuthContext, id int) (*Classification, error) {
	if !authz.IsAdmin() {
		return nil, utils.ErrorForbidden
	}

	classification, err := utils.FetchSingleModel[Classification](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Select("TaxData").Delete(classification).Error; err != nil {
		return nil, err
	}
	return classification, nil
}

// ClassificationStat is the list row for the management page: each
// classification annotated with how many records it holds and their sum.
type ClassificationStat struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
	TotalData   int64     `json:"total_data"`
	AmountTotal *string   `json:"amount_total"`
}

func GetClassificationStats(ctx context.Context) ([]ClassificationStat, error) {
	db := config.GetDB()
	var stats []ClassificationStat
	err := db.WithContext(ctx).Model(&Classification{}).
		Select("classifications.id, classifications.name, classifications.created_at, " +
			"COUNT(tax_data.id) AS total_data, SUM(tax_data.amount) AS amount_total").
		Joins("LEFT JOIN tax_data ON tax_data.classification_id = classifications.id").
		Group("classifications.id").
		Order("classifications.created_at DESC").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func GetAllClassifications(ctx context.Context) ([]*Classification, error) {
	db := config.GetDB()
	var results []*Classification
	if err := db.WithContext(ctx).Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
