package domain

// Platform roles. Single-role model: a principal holds exactly one of these
// and route access is an exact match, no hierarchy.
const (
	RoleAdmin    = "admin"
	RoleAthlete  = "athlete"
	RoleInvestor = "investor"
	RoleFan      = "fan"
)

// ValidRole reports whether role is one of the closed role enumeration.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleAthlete, RoleInvestor, RoleFan:
		return true
	}
	return false
}

// Identity is the authenticated principal attached to a request after the
// auth service has verified its token. It lives for the duration of a single
// request and is never persisted by the gateway.
type Identity struct {
	ID       int64  `json:"id" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=admin athlete investor fan"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}
