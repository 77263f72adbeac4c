package users

import "time"

// Roles stored on a user record.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the persisted account record.
type User struct {
	ID                    string     `db:"id" json:"id"`
	Name                  string     `db:"name" json:"name"`
	Email                 string     `db:"email" json:"email"`
	PasswordHash          string     `db:"password_hash" json:"-"`
	Role                  string     `db:"role" json:"role"`
	IsVerified            bool       `db:"is_verified" json:"is_verified"`
	VerificationToken     *string    `db:"verification_token" json:"-"`
	VerificationExpiresAt *time.Time `db:"verification_expires_at" json:"-"`
	TokenVersion          int        `db:"token_version" json:"-"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
}

// Summary is the non-sensitive view of a user returned by login.
type Summary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	IsVerified bool   `json:"is_verified"`
}

func (u *User) Summary() Summary {
	return Summary{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		IsVerified: u.IsVerified,
	}
}
