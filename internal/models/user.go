package models

// User is the identity the session gate derives from a bearer token.
// Accounts live with the external auth provider, not in this service.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role"`
}

// IsAdmin reports whether the user carries the admin role
func (u User) IsAdmin() bool {
	return u.Role == "admin"
}
