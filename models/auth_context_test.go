package models

import "testing"

func TestAuthContext_OriginDerivation(t *testing.T) {
	cases := []struct {
		name  string
		authz AuthContext
		want  Origin
	}{
		{"admin", AuthContext{Role: RoleAdmin}, OriginAdmin},
		{"broker", AuthContext{Role: RoleBroker}, OriginBroker},
		{"tax specialist", AuthContext{Role: RoleTaxSpecialist}, OriginTaxSpecialist},
		{"no profile, staff flag", AuthContext{IsStaff: true}, OriginAdmin},
		{"no profile, regular", AuthContext{}, OriginBroker},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.authz.Origin(); got != tc.want {
				t.Errorf("Origin() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestAuthContext_Permissions(t *testing.T) {
	admin := AuthContext{Role: RoleAdmin}
	broker := AuthContext{Role: RoleBroker}
	specialist := AuthContext{Role: RoleTaxSpecialist}
	staffNoProfile := AuthContext{IsStaff: true}

	if !admin.IsAdmin() || !staffNoProfile.IsAdmin() {
		t.Error("admin role and staff flag must both grant admin")
	}
	if broker.IsAdmin() || specialist.IsAdmin() {
		t.Error("non-admin roles must not grant admin")
	}

	for _, a := range []AuthContext{admin, broker, specialist, staffNoProfile} {
		if !a.CanManageQualifications() {
			t.Errorf("%+v should manage qualifications", a)
		}
	}
}
