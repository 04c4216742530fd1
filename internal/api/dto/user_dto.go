package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// RegisterRequest is the payload for local account registration.
type RegisterRequest struct {
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	FullName     string  `json:"full_name"`
	Password     string  `json:"password"`
	DepartmentID *string `json:"department_id,omitempty"`
}

// LoginRequest is the payload for local login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      UserSummary `json:"user"`
}

// UserSummary is the wire representation of a user.
type UserSummary struct {
	ID           string          `json:"id"`
	Username     string          `json:"username"`
	Email        string          `json:"email"`
	FullName     string          `json:"full_name"`
	Role         domain.UserRole `json:"role"`
	IsAdmin      bool            `json:"is_admin"`
	IsLDAP       bool            `json:"is_ldap"`
	DepartmentID *string         `json:"department_id,omitempty"`
	Active       bool            `json:"active"`
}

// FromUser maps a domain user to its wire form.
func FromUser(u *domain.User) UserSummary {
	return UserSummary{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		FullName:     u.FullName,
		Role:         u.Role,
		IsAdmin:      u.IsAdmin,
		IsLDAP:       u.IsLDAP,
		DepartmentID: u.DepartmentID,
		Active:       u.Active,
	}
}
