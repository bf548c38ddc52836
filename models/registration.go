package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"bitbucket.org/nuamsoft/taxadmin_backend/config"
	"bitbucket.org/nuamsoft/taxadmin_backend/utils"
)

// Registration is the back-office registry record captured at signup,
// kept separate from the login account.
type Registration struct {
	ID            int       `gorm:"primary_key" json:"id"`
	FullName      string    `gorm:"size:255;not null" json:"full_name"`
	Email         string    `gorm:"size:100;not null;unique" json:"email"`
	Country       string    `gorm:"size:100;not null" json:"country"`
	TaxIdentifier string    `gorm:"size:100;not null" json:"tax_identifier"`
	BirthDate     time.Time `gorm:"not null" json:"birth_date"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

var registrationCountries = map[string]bool{
	"chile":     true,
	"colombia":  true,
	"peru":      true,
	"argentina": true,
	"mexico":    true,
	"brasil":    true,
	"ecuador":   true,
	"venezuela": true,
	"uruguay":   true,
	"paraguay":  true,
	"bolivia":   true,
}

type NewRegistration struct {
	FullName      string `json:"full_name" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required"`
	Password2     string `json:"password2" binding:"required,eqfield=Password"`
	Country       string `json:"country" binding:"required"`
	TaxIdentifier string `json:"tax_identifier" binding:"required"`
	BirthDate     string `json:"birth_date" binding:"required,adult"`
}

func (input *NewRegistration) validate(ctx context.Context) (time.Time, error) {
	if !registrationCountries[strings.ToLower(input.Country)] {
		return time.Time{}, errors.New("unsupported country: " + input.Country)
	}

	birthDate, err := utils.ParseDate(input.BirthDate)
	if err != nil {
		return time.Time{}, errors.New("invalid birth date")
	}
	if utils.AgeAt(birthDate, time.Now()) < 18 {
		return time.Time{}, errors.New("must be at least 18 years old to register")
	}

	if err := utils.ValidateUnique[Registration](ctx, "email", strings.ToLower(input.Email), 0); err != nil {
		return time.Time{}, errors.New("email already registered")
	}
	return birthDate, nil
}

// Signup creates the login account and the registry record together.
// Self-registered accounts are never staff; the profile hook seeds the
// broker role.
func Signup(ctx context.Context, input *NewRegistration) (*Registration, error) {

	birthDate, err := input.validate(ctx)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(input.Email)

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	var count int64
	if err := tx.Model(&User{}).Where("username = ?", email).Count(&count).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if count > 0 {
		tx.Rollback()
		return nil, errors.New("email already registered")
	}

	user := User{
		Username: email,
		Name:     input.FullName,
		Email:    &email,
		Password: string(hashedPassword),
		IsStaff:  utils.NewFalse(),
	}
	if err := tx.Create(&user).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	registration := Registration{
		FullName:      input.FullName,
		Email:         email,
		Country:       strings.ToLower(input.Country),
		TaxIdentifier: input.TaxIdentifier,
		BirthDate:     birthDate,
	}
	if err := tx.Create(&registration).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	return &registration, nil
}

// country counts for the admin dashboard
type CountryStat struct {
	Country string `json:"country"`
	Total   int64  `json:"total"`
}

func GetRegistrationCountryStats(ctx context.Context) ([]CountryStat, error) {
	db := config.GetDB()
	var stats []CountryStat
	err := db.WithContext(ctx).Model(&Registration{}).
		Select("country, COUNT(id) AS total").
		Group("country").
		Order("total DESC").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}
