package models

import "time"

// Roles a user can hold.
const (
	RoleBuyer = "buyer"
	RoleAdmin = "admin"
)

// User represents a customer or administrator account.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"type:varchar(100);not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;type:varchar(255);not null"` // Never serialized
	Role         string    `json:"role" gorm:"type:varchar(20);not null;default:buyer"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleBuyer || role == RoleAdmin
}
