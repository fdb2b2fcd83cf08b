package models

import "github.com/golang-jwt/jwt/v5"

// Role is the closed set of account roles.
type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleAdmin      Role = "admin"
)

// Capability names one privileged operation.
type Capability string

const (
	CapSubmitRecharge    Capability = "recharge:submit"
	CapModerateRecharges Capability = "recharge:moderate"
	CapViewAllRecharges  Capability = "recharge:view-all"
	CapManageCenters     Capability = "center:manage"
	CapEnrollStudents    Capability = "student:enroll"
	CapViewAudit         Capability = "ledger:audit"
)

var roleCapabilities = map[Role][]Capability{
	RoleSuperadmin: {
		CapSubmitRecharge,
		CapModerateRecharges,
		CapViewAllRecharges,
		CapManageCenters,
		CapEnrollStudents,
		CapViewAudit,
	},
	RoleAdmin: {
		CapSubmitRecharge,
		CapEnrollStudents,
	},
}

// Can reports whether the role holds a capability.
func (r Role) Can(cap Capability) bool {
	for _, c := range roleCapabilities[r] {
		if c == cap {
			return true
		}
	}
	return false
}

// Valid reports whether the role is a known role.
func (r Role) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// UserClaims is the resolved identity carried by a signed token. The ledger
// trusts it completely; CenterID is zero for superadmins.
type UserClaims struct {
	jwt.RegisteredClaims
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	CenterID     uint   `json:"center_id,omitempty"`
	TokenVersion int    `json:"token_version"`
}
