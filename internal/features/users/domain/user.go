package domain

import (
	"errors"
	"time"
)

var (
	ErrNotFound           = errors.New("user: not found")
	ErrInvalidCredentials = errors.New("user: invalid credentials")
	ErrEmailTaken         = errors.New("user: email already registered")
	ErrInvalidRole        = errors.New("user: invalid role")
)

// Roles ordered by privilege. Admin gates user management and sales
// closes.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleViewer  = "viewer"
)

// User is an account on the dashboard. CompanyID and AreaID are nil for
// cross-company admins.
type User struct {
	ID           int        `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password" json:"-"`
	Role         string     `db:"role" json:"role"`
	CompanyID    *int       `db:"company_id" json:"companyId"`
	AreaID       *int       `db:"area_id" json:"areaId"`
	LastLogin    *time.Time `db:"last_login" json:"lastLogin"`
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleViewer:
		return true
	}
	return false
}

// Company is one of the two tenant companies.
type Company struct {
	ID          int    `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	Sector      string `db:"sector" json:"sector"`
}

// Area is a department within a company.
type Area struct {
	ID          int    `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	CompanyID   int    `db:"company_id" json:"companyId"`
}
