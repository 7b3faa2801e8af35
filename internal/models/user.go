package models

// Role enum
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// ParseRole returns the role named by s, if it is one this service accepts.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleDoctor, RolePatient:
		return Role(s), true
	}
	return "", false
}

// Actor is the authenticated caller of an operation. ID is the account id
// issued by the authentication layer. DoctorID is filled in for doctors once
// their directory profile has been resolved.
type Actor struct {
	ID       string `json:"id"`
	Role     Role   `json:"role"`
	DoctorID string `json:"doctorId,omitempty"`
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }
