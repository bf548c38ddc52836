package models

import (
	"context"
	"errors"

	"bitbucket.org/nuamsoft/taxadmin_backend/config"
	"bitbucket.org/nuamsoft/taxadmin_backend/utils"
)

// AuthContext is the per-request authorization snapshot: identity plus
// resolved role, built once at the operation boundary and passed
// explicitly into every protected operation. Nothing below the handler
// layer reads role state from ambient globals.
type AuthContext struct {
	UserID   int
	Username string
	Role     Role
	IsStaff  bool
}

// LoadAuthContext builds the snapshot from the session values the
// middleware put on the request context. Role resolution goes through
// the profile lookup with the staff-flag fallback.
func LoadAuthContext(ctx context.Context) (*AuthContext, error) {
	username, ok := utils.GetUsernameFromContext(ctx)
	if !ok || username == "" {
		return nil, errors.New("no session")
	}

	db := config.GetDB()
	var user User
	if err := db.WithContext(ctx).Model(&User{}).Where("username = ?", username).Take(&user).Error; err != nil {
		return nil, errors.New("session user not found")
	}

	isStaff := utils.DereferencePtr(user.IsStaff)
	return &AuthContext{
		UserID:   user.ID,
		Username: user.Username,
		Role:     RoleOf(ctx, user.ID, isStaff),
		IsStaff:  isStaff,
	}, nil
}

func (a *AuthContext) IsAdmin() bool {
	return a.Role == RoleAdmin || a.IsStaff
}

// admins, brokers and tax specialists may create/edit/copy qualifications
func (a *AuthContext) CanManageQualifications() bool {
	switch a.Role {
	case RoleAdmin, RoleBroker, RoleTaxSpecialist:
		return true
	}
	return a.IsStaff
}

// Origin derives the provenance tag stamped on qualification records.
func (a *AuthContext) Origin() Origin {
	switch a.Role {
	case RoleBroker:
		return OriginBroker
	case RoleTaxSpecialist:
		return OriginTaxSpecialist
	case RoleAdmin:
		return OriginAdmin
	}
	if a.IsStaff {
		return OriginAdmin
	}
	return OriginBroker
}
