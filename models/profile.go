package models

import (
	"context"
	"time"

	"bitbucket.org/nuamsoft/taxadmin_backend/config"
	"bitbucket.org/nuamsoft/taxadmin_backend/utils"
)

// UserProfile carries the application-level role on top of the account.
// One row per user, auto-created by the User AfterCreate hook.
type UserProfile struct {
	ID        int       `gorm:"primary_key" json:"id"`
	UserId    int       `gorm:"not null;unique" json:"user_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Role      Role      `gorm:"size:20;not null;default:'broker'" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// RoleOf resolves a user's role from the profile table, falling back to
// the staff flag when the profile row is missing. The fallback keeps
// accounts created before profiles existed usable.
func RoleOf(ctx context.Context, userId int, isStaff bool) Role {
	db := config.GetDB()
	var profile UserProfile
	err := db.WithContext(ctx).Model(&UserProfile{}).Where("user_id = ?", userId).Take(&profile).Error
	if err != nil {
		if isStaff {
			return RoleAdmin
		}
		return RoleBroker
	}
	return profile.Role
}

func SetRole(ctx context.Context, userId int, role Role) error {
	db := config.GetDB()
	result := db.WithContext(ctx).Model(&UserProfile{}).
		Where("user_id = ?", userId).
		Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}
