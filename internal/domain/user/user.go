package user

import "errors"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already in use")
)

type User struct {
	ID               int64   `json:"id"`
	Email            string  `json:"email"`
	PasswordHash     string  `json:"-"` // never expose hash in JSON
	Role             string  `json:"role"`
	TwoFactorEnabled bool    `json:"twoFactorEnabled"`
	TwoFactorSecret  *string `json:"-"`
}

// Summary is the admin listing shape.
type Summary struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (u User) Summary() Summary {
	return Summary{ID: u.ID, Email: u.Email, Role: u.Role}
}

func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}
