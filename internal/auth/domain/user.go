package domain

import "time"

// Roles a user can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           string
	Username     string // unique
	Email        string // unique
	PasswordHash string // argon2id encoded
	Role         string
	MFASecret    *string    // TOTP secret (nullable, base32 encoded)
	MFAEnabled   *time.Time // timestamp when MFA was activated (nullable)
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// MFAActive reports whether the user has completed MFA enrolment.
func (u User) MFAActive() bool { return u.MFAEnabled != nil }

// UserView is the outward representation of a user. The password hash never
// leaves the service.
type UserView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// View strips a User down to its public fields.
func (u User) View() UserView {
	return UserView{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}
