package models

import (
	"fmt"
	"time"
)

// Role identifies what a user is allowed to do in the system
type Role string

const (
	RoleUsuario Role = "Usuario"
	RoleTecnico Role = "Tecnico"
	RoleAdmin   Role = "Admin"
)

// Roles lists every valid role, in display order
func Roles() []Role {
	return []Role{RoleUsuario, RoleTecnico, RoleAdmin}
}

// ParseRole validates a role value coming in from a request boundary
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUsuario, RoleTecnico, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("invalid role %q", s)
}

// CanManageTickets reports whether the role may edit any ticket and assign
// technicians. Ordinary users may only touch their own tickets.
func (r Role) CanManageTickets() bool {
	return r == RoleTecnico || r == RoleAdmin
}

// User represents an account in the system.
//
// Email uniqueness is case-insensitive and only enforced among active
// rows, so there is no database-level unique index; registration and
// profile-edit queries check it with LOWER(email).
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"not null;index" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         Role      `gorm:"type:varchar(20);not null;default:'Usuario'" json:"role"`
	Active       bool      `gorm:"not null" json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}
