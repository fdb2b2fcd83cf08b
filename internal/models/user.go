package models

import (
	"time"
)

// User is a login account. Superadmins carry global authority; center
// admins are bound to exactly one center.
type User struct {
	ID           uint   `gorm:"primarykey" json:"id"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	Password     string `gorm:"not null" json:"-"`
	Name         string `gorm:"not null" json:"name"`
	Role         Role   `gorm:"type:varchar(16);not null;default:'admin'" json:"role"`
	CenterID     *uint  `gorm:"index" json:"centerId,omitempty"`
	TokenVersion int    `gorm:"default:1" json:"-"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
