package model

import (
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleBuyer  UserRole = "buyer"
	RoleSeller UserRole = "seller"
)

type User struct {
	gorm.Model
	Email    string   `json:"email" gorm:"uniqueIndex;not null"`
	Password string   `json:"-" gorm:"not null"`
	Name     string   `json:"name" gorm:"not null"`
	Role     UserRole `json:"role" gorm:"not null;default:'buyer'"`

	Businesses []Business `json:"-"`
}

// IsSeller reports whether the user holds the seller capability.
func (u *User) IsSeller() bool {
	return u.Role == RoleSeller
}

func (u *User) GetPublicProfile() map[string]interface{} {
	return map[string]interface{}{
		"id":    u.ID,
		"email": u.Email,
		"name":  u.Name,
		"role":  u.Role,
	}
}
