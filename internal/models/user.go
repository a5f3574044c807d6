package models

// Role is the account role reported by the backend.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole maps a backend role string to a [Role], defaulting to [RoleUser].
func ParseRole(s string) Role {
	if Role(s) == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// User is the authenticated account as returned by the backend.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// IsAdmin reports whether the user has the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// DashboardStats holds the admin dashboard counters.
type DashboardStats struct {
	TotalChalets   int `json:"totalChalets"`
	TotalUsers     int `json:"totalUsers"`
	TotalFavorites int `json:"totalFavorites"`
	TotalInquiries int `json:"totalInquiries"`
}
