package models

import (
	"log"

	"bitbucket.org/nuamsoft/taxadmin_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&User{}, &UserProfile{}, &Registration{},
		&Classification{}, &TaxData{},
		&TaxQualification{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
