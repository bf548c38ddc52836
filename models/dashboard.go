package models

import (
	"context"
	"time"

	"bitbucket.org/nuamsoft/taxadmin_backend/config"
	"bitbucket.org/nuamsoft/taxadmin_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UserDashboard is the landing panel for brokers and tax specialists.
type UserDashboard struct {
	TotalClassifications int64                 `json:"total_classifications"`
	TotalTaxData         int64                 `json:"total_tax_data"`
	TotalQualifications  int64                 `json:"total_qualifications"`
	AmountTotal          decimal.Decimal       `json:"amount_total"`
	RecentTaxData        []*TaxData           `json:"recent_tax_data"`
	ClassificationStats  []ClassificationStat `json:"classification_stats"`
}

func GetUserDashboard(ctx context.Context) (*UserDashboard, error) {
	db := config.GetDB()
	dashboard := UserDashboard{AmountTotal: decimal.Zero}

	if err := db.WithContext(ctx).Model(&Classification{}).Count(&dashboard.TotalClassifications).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(&TaxData{}).Count(&dashboard.TotalTaxData).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(&TaxQualification{}).Count(&dashboard.TotalQualifications).Error; err != nil {
		return nil, err
	}

	var sum struct {
		AmountTotal *decimal.Decimal
	}
	err := db.WithContext(ctx).Model(&TaxData{}).
		Select("SUM(amount) AS amount_total").Scan(&sum).Error
	if err != nil {
		return nil, err
	}
	if sum.AmountTotal != nil {
		dashboard.AmountTotal = *sum.AmountTotal
	}

	recent, err := GetRecentTaxData(ctx, 5)
	if err != nil {
		return nil, err
	}
	dashboard.RecentTaxData = recent

	stats, err := GetClassificationStats(ctx)
	if err != nil {
		return nil, err
	}
	dashboard.ClassificationStats = stats

	return &dashboard, nil
}

// FinancialStats aggregates the stored tax-data amounts and factors.
// Pointers stay nil when the table is empty.
type FinancialStats struct {
	AmountTotal   *decimal.Decimal `json:"amount_total"`
	AmountAverage *decimal.Decimal `json:"amount_average"`
	AmountMax     *decimal.Decimal `json:"amount_max"`
	AmountMin     *decimal.Decimal `json:"amount_min"`
	FactorAverage *decimal.Decimal `json:"factor_average"`
	WithAmount    int64            `json:"with_amount"`
}

func GetFinancialStats(ctx context.Context) (*FinancialStats, error) {
	db := config.GetDB()

	var stats FinancialStats
	err := db.WithContext(ctx).Model(&TaxData{}).
		Select("SUM(amount) AS amount_total, " +
			"AVG(amount) AS amount_average, " +
			"MAX(amount) AS amount_max, " +
			"MIN(amount) AS amount_min, " +
			"AVG(factor) AS factor_average, " +
			"COUNT(amount) AS with_amount").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// GroupCount is one bucket of a grouped count query.
type GroupCount struct {
	Key   string `json:"key"`
	Total int64  `json:"total"`
}

func countQualificationsBy(ctx context.Context, column string, ownerId *int) ([]*GroupCount, error) {
	db := config.GetDB()

	dbCtx := db.WithContext(ctx).Model(&TaxQualification{}).
		Select(column + " AS `key`, COUNT(*) AS total").
		Group(column).
		Order("total DESC")
	if ownerId != nil {
		dbCtx = dbCtx.Where("created_by_id = ?", *ownerId)
	}

	var buckets []*GroupCount
	if err := dbCtx.Scan(&buckets).Error; err != nil {
		return nil, err
	}
	return buckets, nil
}

// AdminDashboard is the full administration panel: user, registration
// and data statistics plus the last 30 days of activity.
type AdminDashboard struct {
	TotalUsers        int64 `json:"total_users"`
	TotalStaff        int64 `json:"total_staff"`
	TotalRegularUsers int64 `json:"total_regular_users"`

	TotalClassifications int64 `json:"total_classifications"`
	TotalTaxData         int64 `json:"total_tax_data"`
	TotalRegistrations   int64 `json:"total_registrations"`
	TotalQualifications  int64 `json:"total_qualifications"`

	FinancialStats *FinancialStats `json:"financial_stats"`

	NewUsers30d         int64 `json:"new_users_30d"`
	NewTaxData30d       int64 `json:"new_tax_data_30d"`
	NewRegistrations30d int64 `json:"new_registrations_30d"`

	RecentUsers         []*User         `json:"recent_users"`
	RecentRegistrations []*Registration `json:"recent_registrations"`
	RecentTaxData       []*TaxData      `json:"recent_tax_data"`

	CountryStats        []CountryStat        `json:"country_stats"`
	ClassificationStats []ClassificationStat `json:"classification_stats"`

	QualificationsByMarket []*GroupCount `json:"qualifications_by_market"`
	QualificationsByOrigin []*GroupCount `json:"qualifications_by_origin"`
}

const recentListLimit = 10

func GetAdminDashboard(ctx context.Context, authz *AuthContext) (*AdminDashboard, error) {
	if !authz.IsAdmin() {
		return nil, utils.ErrorForbidden
	}

	db := config.GetDB()
	dashboard := AdminDashboard{}

	if err := db.WithContext(ctx).Model(&User{}).Count(&dashboard.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(&User{}).Where("is_staff = ?", true).Count(&dashboard.TotalStaff).Error; err != nil {
		return nil, err
	}
	dashboard.TotalRegularUsers = dashboard.TotalUsers - dashboard.TotalStaff

	if err := db.WithContext(ctx).Model(&Classification{}).Count(&dashboard.TotalClassifications).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(&TaxData{}).Count(&dashboard.TotalTaxData).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(&Registration{}).Count(&dashboard.TotalRegistrations).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(&TaxQualification{}).Count(&dashboard.TotalQualifications).Error; err != nil {
		return nil, err
	}

	financial, err := GetFinancialStats(ctx)
	if err != nil {
		return nil, err
	}
	dashboard.FinancialStats = financial

	since := time.Now().AddDate(0, 0, -30)
	if err := db.WithContext(ctx).Model(&User{}).Where("created_at >= ?", since).Count(&dashboard.NewUsers30d).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(&TaxData{}).Where("created_at >= ?", since).Count(&dashboard.NewTaxData30d).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(&Registration{}).Where("created_at >= ?", since).Count(&dashboard.NewRegistrations30d).Error; err != nil {
		return nil, err
	}

	var recentUsers []*User
	if err := db.WithContext(ctx).Order("created_at DESC").Limit(recentListLimit).Find(&recentUsers).Error; err != nil {
		return nil, err
	}
	for _, user := range recentUsers {
		user.PrepareGive()
	}
	dashboard.RecentUsers = recentUsers

	var recentRegistrations []*Registration
	if err := db.WithContext(ctx).Order("created_at DESC").Limit(recentListLimit).Find(&recentRegistrations).Error; err != nil {
		return nil, err
	}
	dashboard.RecentRegistrations = recentRegistrations

	recentTaxData, err := GetRecentTaxData(ctx, recentListLimit)
	if err != nil {
		return nil, err
	}
	dashboard.RecentTaxData = recentTaxData

	countryStats, err := GetRegistrationCountryStats(ctx)
	if err != nil {
		return nil, err
	}
	dashboard.CountryStats = countryStats

	classificationStats, err := GetClassificationStats(ctx)
	if err != nil {
		return nil, err
	}
	dashboard.ClassificationStats = classificationStats

	byMarket, err := countQualificationsBy(ctx, "market", nil)
	if err != nil {
		return nil, err
	}
	dashboard.QualificationsByMarket = byMarket

	byOrigin, err := countQualificationsBy(ctx, "origin", nil)
	if err != nil {
		return nil, err
	}
	dashboard.QualificationsByOrigin = byOrigin

	return &dashboard, nil
}

// QualificationPanel is the personal view for brokers and tax
// specialists: only records the requesting user created. Brokers see
// their market spread, tax specialists their origin spread.
type QualificationPanel struct {
	TotalOwn   int64               `json:"total_own"`
	PendingOwn int64               `json:"pending_own"`
	Recent     []*TaxQualification `json:"recent"`
	ByMarket   []*GroupCount       `json:"by_market,omitempty"`
	ByOrigin   []*GroupCount       `json:"by_origin,omitempty"`
	ByYear     []*GroupCount       `json:"by_year"`
}

func GetQualificationPanel(ctx context.Context, authz *AuthContext) (*QualificationPanel, error) {
	if !authz.CanManageQualifications() {
		return nil, utils.ErrorForbidden
	}

	db := config.GetDB()
	panel := QualificationPanel{}
	owned := db.WithContext(ctx).Model(&TaxQualification{}).Where("created_by_id = ?", authz.UserID)

	if err := owned.Session(&gorm.Session{}).Count(&panel.TotalOwn).Error; err != nil {
		return nil, err
	}
	if err := owned.Session(&gorm.Session{}).Where("pending = ?", true).Count(&panel.PendingOwn).Error; err != nil {
		return nil, err
	}

	err := db.WithContext(ctx).
		Where("created_by_id = ?", authz.UserID).
		Order("created_at DESC").
		Limit(recentListLimit).
		Find(&panel.Recent).Error
	if err != nil {
		return nil, err
	}

	switch authz.Role {
	case RoleBroker:
		panel.ByMarket, err = countQualificationsBy(ctx, "market", &authz.UserID)
	default:
		panel.ByOrigin, err = countQualificationsBy(ctx, "origin", &authz.UserID)
	}
	if err != nil {
		return nil, err
	}

	panel.ByYear, err = countQualificationsBy(ctx, "year", &authz.UserID)
	if err != nil {
		return nil, err
	}

	return &panel, nil
}

// MonthCount is one month bucket of tax-data activity.
type MonthCount struct {
	Month       string           `json:"month"`
	Total       int64            `json:"total"`
	AmountTotal *decimal.Decimal `json:"amount_total"`
}

// FinancialReport is the reporting page for administrators.
type FinancialReport struct {
	TotalTaxData        int64                `json:"total_tax_data"`
	FinancialStats      *FinancialStats      `json:"financial_stats"`
	ClassificationStats []ClassificationStat `json:"classification_stats"`
	TopByAmount         []*TaxData           `json:"top_by_amount"`
	MonthlyCounts       []*MonthCount        `json:"monthly_counts"`
	MostUsed            []*GroupCount        `json:"most_used_classifications"`
}

func GetFinancialReport(ctx context.Context, authz *AuthContext) (*FinancialReport, error) {
	if !authz.IsAdmin() {
		return nil, utils.ErrorForbidden
	}

	db := config.GetDB()
	report := FinancialReport{}

	if err := db.WithContext(ctx).Model(&TaxData{}).Count(&report.TotalTaxData).Error; err != nil {
		return nil, err
	}

	financial, err := GetFinancialStats(ctx)
	if err != nil {
		return nil, err
	}
	report.FinancialStats = financial

	stats, err := GetClassificationStats(ctx)
	if err != nil {
		return nil, err
	}
	report.ClassificationStats = stats

	err = db.WithContext(ctx).
		Where("amount IS NOT NULL").
		Order("amount DESC").
		Limit(recentListLimit).
		Preload("Classification").
		Find(&report.TopByAmount).Error
	if err != nil {
		return nil, err
	}

	since := time.Now().AddDate(0, -6, 0)
	err = db.WithContext(ctx).Model(&TaxData{}).
		Select("DATE_FORMAT(created_at, '%Y-%m') AS month, COUNT(*) AS total, SUM(amount) AS amount_total").
		Where("created_at >= ?", since).
		Group("month").
		Order("month DESC").
		Scan(&report.MonthlyCounts).Error
	if err != nil {
		return nil, err
	}

	err = db.WithContext(ctx).Model(&Classification{}).
		Select("classifications.name AS `key`, COUNT(tax_data.id) AS total").
		Joins("LEFT JOIN tax_data ON tax_data.classification_id = classifications.id").
		Group("classifications.id, classifications.name").
		Order("total DESC").
		Limit(5).
		Scan(&report.MostUsed).Error
	if err != nil {
		return nil, err
	}

	return &report, nil
}
