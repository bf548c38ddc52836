package models

import (
	"bitbucket.org/nuamsoft/taxadmin_backend/utils"
	"gorm.io/gorm"
)

// Every account gets a profile row the moment it is created: staff
// accounts seed as admin, everyone else as broker. Mirrors the profile
// invariant the rest of the code relies on (RoleOf never creates).
func (u *User) AfterCreate(tx *gorm.DB) (err error) {
	role := RoleBroker
	if utils.DereferencePtr(u.IsStaff) {
		role = RoleAdmin
	}

	profile := UserProfile{
		UserId: u.ID,
		Role:   role,
	}
	return tx.Create(&profile).Error
}
